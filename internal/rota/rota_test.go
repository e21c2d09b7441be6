package rota

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, time.UTC)
}

func shift(id, role string, start, end time.Time) *domain.Shift {
	return &domain.Shift{
		ID:        id,
		CompanyID: "acme",
		Role:      role,
		StartTime: start,
		EndTime:   end,
		Status:    domain.ShiftStatusPublished,
		Bids:      []string{},
	}
}

func assertCloneInvariant(t *testing.T, src *domain.Shift, clones []*domain.Shift) {
	t.Helper()
	for _, c := range clones {
		assert.Equal(t, domain.ShiftStatusDraft, c.Status)
		assert.Nil(t, c.UserID)
		assert.Nil(t, c.UserName)
		assert.Empty(t, c.Bids)
		assert.False(t, c.IsOffered)
		assert.Equal(t, src.Duration(), c.Duration())
		assert.Equal(t, src.Role, c.Role)
		assert.NotEqual(t, src.ID, c.ID)
	}
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
	}{
		{"monday", at(10, 0, 0)},
		{"midweek", at(12, 15, 30)},
		{"sunday night", at(16, 23, 59)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WeekOf(tt.ref)
			assert.Equal(t, at(10, 0, 0), w.Start)
			assert.Equal(t, time.Date(2025, time.March, 16, 23, 59, 59, int(999*time.Millisecond), time.UTC), w.End)
			assert.True(t, w.Contains(tt.ref))
		})
	}

	assert.Len(t, WeekOf(at(10, 0, 0)).Days(), 7)
	assert.False(t, WeekOf(at(10, 0, 0)).Contains(at(17, 0, 0)))
}

func TestNormalizeEnd(t *testing.T) {
	assert.Equal(t, at(11, 2, 0), NormalizeEnd(at(10, 18, 0), at(10, 2, 0)))
	assert.Equal(t, at(11, 18, 0), NormalizeEnd(at(10, 18, 0), at(10, 18, 0)))
	assert.Equal(t, at(10, 23, 0), NormalizeEnd(at(10, 18, 0), at(10, 23, 0)))
}

func TestGroupKeyStability(t *testing.T) {
	loc := "bar"
	a := shift("a", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	b := shift("b", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	c := shift("c", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	c.LocationID = &loc

	assert.Equal(t, GroupKey(a), GroupKey(b))
	assert.NotEqual(t, GroupKey(a), GroupKey(c))
	assert.Contains(t, GroupKey(a), "_nil")

	forward := GroupShifts([]*domain.Shift{a, b, c})
	backward := GroupShifts([]*domain.Shift{c, b, a})
	assert.Len(t, forward, 2)
	assert.Len(t, forward[GroupKey(a)], 2)
	assert.Len(t, backward[GroupKey(a)], 2)

	d := shift("d", "Security", at(10, 18, 0), at(10, 23, 0))
	e := shift("e", "Bar Staff", at(10, 18, 0), at(10, 22, 0))
	assert.NotEqual(t, GroupKey(a), GroupKey(d))
	assert.NotEqual(t, GroupKey(a), GroupKey(e))
}

func TestCollectionsFill(t *testing.T) {
	u := "u1"
	a := shift("a", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	b := shift("b", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	c := shift("c", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	other := shift("d", "Server", at(10, 9, 0), at(10, 17, 0))

	cols := Collections([]*domain.Shift{a, other, b, c})
	require.Len(t, cols, 2)
	assert.Equal(t, "Bar Staff", cols[0].Role)
	assert.Equal(t, []*domain.Shift{a, b, c}, cols[0].Shifts)
	assert.Equal(t, FillEmpty, cols[0].Fill())

	b.UserID = &u
	assert.Equal(t, 1, cols[0].Assigned())
	assert.Equal(t, 3, cols[0].Total())
	assert.Equal(t, FillPartial, cols[0].Fill())

	a.UserID, c.UserID = &u, &u
	assert.Equal(t, FillFull, cols[0].Fill())
}

func TestCollectionJSON(t *testing.T) {
	u := "u1"
	a := shift("a", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	b := shift("b", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	a.UserID = &u

	raw, err := json.Marshal(Collections([]*domain.Shift{a, b})[0])
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Bar Staff", got["role"])
	assert.EqualValues(t, 1, got["assigned"])
	assert.EqualValues(t, 2, got["total"])
	assert.Equal(t, "partial", got["fill"])
	assert.Len(t, got["shifts"], 2)
}

func TestRepeatDailyWeek(t *testing.T) {
	src := shift("src", "Bar Staff", at(10, 9, 0), at(10, 17, 0))
	uid := "u1"
	src.UserID = &uid
	src.Bids = []string{"u2"}
	src.IsOffered = true

	out, err := Repeat(src, RepeatOptions{Pattern: RepeatDailyWeek, ViewedWeek: WeekOf(src.StartTime)}, sequentialIDs())
	require.NoError(t, err)
	require.Len(t, out, 6)
	assertCloneInvariant(t, src, out)

	for i, s := range out {
		assert.Equal(t, at(11+i, 9, 0), s.StartTime)
		assert.Equal(t, at(11+i, 17, 0), s.EndTime)
		assert.Equal(t, "Bar Staff", s.Role)
	}
}

func TestRepeatDailyWeekFromSunday(t *testing.T) {
	src := shift("src", "Bar Staff", at(16, 9, 0), at(16, 17, 0))

	out, err := Repeat(src, RepeatOptions{Pattern: RepeatDailyWeek, ViewedWeek: WeekOf(src.StartTime)}, sequentialIDs())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRepeatCustom(t *testing.T) {
	src := shift("src", "Server", at(10, 22, 0), at(11, 6, 0))
	until := at(23, 0, 0)

	t.Run("selected weekdays", func(t *testing.T) {
		out, err := Repeat(src, RepeatOptions{
			Pattern:  RepeatCustom,
			Until:    &until,
			Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		}, sequentialIDs())
		require.NoError(t, err)
		require.Len(t, out, 3)
		assertCloneInvariant(t, src, out)
		assert.Equal(t, at(12, 22, 0), out[0].StartTime)
		assert.Equal(t, at(17, 22, 0), out[1].StartTime)
		assert.Equal(t, at(19, 22, 0), out[2].StartTime)
		assert.Equal(t, at(20, 6, 0), out[2].EndTime)
		for _, s := range out {
			assert.False(t, s.StartTime.After(EndOfDay(until)))
		}
	})

	t.Run("no weekdays means all days", func(t *testing.T) {
		opts := RepeatOptions{Pattern: RepeatCustom, Until: &until}
		assert.True(t, opts.DefaultsToAllDays())
		out, err := Repeat(src, opts, sequentialIDs())
		require.NoError(t, err)
		assert.Len(t, out, 13)
	})

	t.Run("cutoff required", func(t *testing.T) {
		_, err := Repeat(src, RepeatOptions{Pattern: RepeatCustom}, sequentialIDs())
		require.ErrorIs(t, err, ErrCutoffRequired)
	})

	t.Run("cutoff must be after shift date", func(t *testing.T) {
		sameDay := at(10, 23, 0)
		_, err := Repeat(src, RepeatOptions{Pattern: RepeatCustom, Until: &sameDay}, sequentialIDs())
		require.ErrorIs(t, err, ErrCutoffNotAfterShift)
	})

	t.Run("unknown pattern", func(t *testing.T) {
		_, err := Repeat(src, RepeatOptions{Pattern: "monthly"}, sequentialIDs())
		require.ErrorIs(t, err, ErrUnknownPattern)
	})
}

func TestDuplicateAndPasteShift(t *testing.T) {
	loc, name := "loc-1", "Main Bar"
	src := shift("src", "Bar Staff", at(10, 18, 0), at(11, 2, 0))
	src.LocationID, src.LocationName = &loc, &name
	uid := "u1"
	src.UserID = &uid

	dup := Duplicate(src, sequentialIDs())
	assertCloneInvariant(t, src, []*domain.Shift{dup})
	assert.Equal(t, src.StartTime, dup.StartTime)
	assert.Equal(t, GroupKey(src), GroupKey(dup))
	assert.Equal(t, "Main Bar", *dup.LocationName)

	pasted := PasteShift(src, time.Date(2025, time.April, 2, 7, 45, 0, 0, time.UTC), sequentialIDs())
	assertCloneInvariant(t, src, []*domain.Shift{pasted})
	assert.Equal(t, time.Date(2025, time.April, 2, 18, 0, 0, 0, time.UTC), pasted.StartTime)
	assert.Equal(t, time.Date(2025, time.April, 3, 2, 0, 0, 0, time.UTC), pasted.EndTime)
}

func TestPasteDay(t *testing.T) {
	day := []*domain.Shift{
		shift("a", "Server", at(10, 9, 0), at(10, 17, 0)),
		shift("b", "Server", at(10, 12, 0), at(10, 20, 0)),
		shift("c", "Security", at(10, 18, 0), at(11, 2, 0)),
		shift("d", "Server", at(11, 9, 0), at(11, 17, 0)),
	}

	out, err := PasteDay(day, at(10, 0, 0), at(17, 0, 0), sequentialIDs())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assertCloneInvariant(t, day[0], out[:1])
	assert.Equal(t, at(17, 9, 0), out[0].StartTime)
	assert.Equal(t, at(17, 12, 0), out[1].StartTime)
	assert.Equal(t, at(17, 18, 0), out[2].StartTime)
	assert.Equal(t, at(18, 2, 0), out[2].EndTime)

	_, err = PasteDay(day, at(12, 0, 0), at(17, 0, 0), sequentialIDs())
	require.ErrorIs(t, err, ErrNothingToCopy)
}

func TestPasteWeek(t *testing.T) {
	src := []*domain.Shift{
		shift("a", "Server", at(10, 9, 0), at(10, 17, 0)),
		shift("b", "Security", at(16, 22, 0), at(17, 6, 0)),
		shift("c", "Server", at(17, 9, 0), at(17, 17, 0)),
	}

	out, err := PasteWeek(src, at(12, 0, 0), at(26, 15, 0), sequentialIDs())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, at(24, 9, 0), out[0].StartTime)
	assert.Equal(t, at(30, 22, 0), out[1].StartTime)
	assert.Equal(t, at(31, 6, 0), out[1].EndTime)
	assertCloneInvariant(t, src[1], out[1:])

	_, err = PasteWeek(src, at(3, 0, 0), at(26, 0, 0), sequentialIDs())
	require.ErrorIs(t, err, ErrEmptyWeek)
}

func TestDrop(t *testing.T) {
	uid := "u1"
	src := shift("src", "Server", at(10, 18, 0), at(11, 1, 0))
	src.UserID = &uid

	patch := MovePatch(src, at(13, 8, 30))
	assert.Equal(t, at(13, 18, 0), patch.StartTime.Value)
	assert.Equal(t, at(14, 1, 0), patch.EndTime.Value)
	assert.Equal(t, domain.ShiftStatusDraft, patch.Status.Value)
	assert.True(t, patch.UserID.IsKeep())

	cp := DropCopyOf(src, at(13, 0, 0), sequentialIDs())
	assertCloneInvariant(t, src, []*domain.Shift{cp})
	assert.Equal(t, at(13, 18, 0), cp.StartTime)
	assert.Equal(t, at(10, 18, 0), src.StartTime)
}

func TestBidSet(t *testing.T) {
	bids := AddBid(nil, "u1")
	bids = AddBid(bids, "u2")
	bids = AddBid(bids, "u1")
	assert.Equal(t, []string{"u1", "u2"}, bids)
	assert.Equal(t, []string{"u2"}, RemoveBid(bids, "u1"))
	assert.Equal(t, []string{"u1", "u2"}, RemoveBid(bids, "u3"))
}

func TestStateOf(t *testing.T) {
	s := shift("s", "Server", at(10, 9, 0), at(10, 17, 0))
	assert.Equal(t, StateOpen, StateOf(s))
	s.Bids = []string{"u1"}
	assert.Equal(t, StateBidPending, StateOf(s))
	uid := "u1"
	s.UserID = &uid
	assert.Equal(t, StateAssigned, StateOf(s))
}

func TestPlanAssignmentCleansSiblingBids(t *testing.T) {
	a := shift("a", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	b := shift("b", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	c := shift("c", "Bar Staff", at(10, 18, 0), at(10, 23, 0))
	elsewhere := shift("d", "Bar Staff", at(11, 18, 0), at(11, 23, 0))
	for _, s := range []*domain.Shift{a, b, c, elsewhere} {
		s.Bids = []string{"u", "v"}
	}
	a.IsOffered = true

	updates, err := PlanAssignment(a, Assignee{UserID: "u", UserName: "Una"}, []*domain.Shift{a, b, c, elsewhere})
	require.NoError(t, err)
	require.Len(t, updates, 3)

	target := updates[0]
	assert.Equal(t, "a", target.ID)
	assert.Equal(t, "u", target.Patch.UserID.Value)
	assert.Equal(t, "Una", target.Patch.UserName.Value)
	assert.Empty(t, target.Patch.Bids.Value)
	assert.False(t, target.Patch.IsOffered.Value)
	assert.Equal(t, domain.ShiftStatusDraft, target.Patch.Status.Value)

	for _, u := range updates[1:] {
		assert.Contains(t, []string{"b", "c"}, u.ID)
		assert.Equal(t, []string{"v"}, u.Patch.Bids.Value)
		assert.True(t, u.Patch.Status.IsKeep())
		assert.True(t, u.Patch.UserID.IsKeep())
	}

	_, err = PlanAssignment(&domain.Shift{ID: "x", UserID: domain.StringPtr("u")}, Assignee{UserID: "u"}, nil)
	require.ErrorIs(t, err, ErrAlreadyAssigned)
}

func TestUnassignPatch(t *testing.T) {
	p := UnassignPatch()
	assert.Equal(t, domain.FieldRemove, p.UserID.Op)
	assert.Equal(t, domain.FieldRemove, p.UserName.Op)
	assert.Equal(t, domain.ShiftStatusDraft, p.Status.Value)
}

func TestPublishPlanAndFilter(t *testing.T) {
	draft := shift("a", "Server", at(10, 9, 0), at(10, 17, 0))
	draft.Status = domain.ShiftStatusDraft
	published := shift("b", "Server", at(10, 9, 0), at(10, 17, 0))

	updates := PlanPublish([]*domain.Shift{draft, published})
	require.Len(t, updates, 1)
	assert.Equal(t, "a", updates[0].ID)
	assert.Equal(t, domain.ShiftStatusPublished, updates[0].Patch.Status.Value)

	f := DraftFilter("acme", WeekScope(WeekOf(at(12, 0, 0))))
	assert.True(t, f.Matches(draft))
	assert.False(t, f.Matches(published))
	outside := draft.Copy()
	outside.StartTime = at(17, 9, 0)
	assert.False(t, f.Matches(outside))
	assert.True(t, DraftFilter("acme", nil).Matches(outside))
}

func TestTimeOffConflicts(t *testing.T) {
	s := shift("s", "Server", at(10, 9, 0), at(10, 17, 0))
	reqs := []*domain.TimeOffRequest{
		{ID: "1", UserID: "u", StartTime: at(10, 0, 0), EndTime: at(11, 0, 0), Status: domain.TimeOffApproved},
		{ID: "2", UserID: "u", StartTime: at(10, 0, 0), EndTime: at(11, 0, 0), Status: domain.TimeOffRejected},
		{ID: "3", UserID: "v", StartTime: at(10, 0, 0), EndTime: at(11, 0, 0), Status: domain.TimeOffPending},
		{ID: "4", UserID: "u", StartTime: at(10, 17, 0), EndTime: at(10, 20, 0), Status: domain.TimeOffPending},
	}
	got := TimeOffConflicts(s, "u", reqs)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	uid := "u"
	other := shift("o", "Server", at(10, 16, 0), at(10, 20, 0))
	other.UserID = &uid
	assert.Len(t, DoubleBookings(s, "u", []*domain.Shift{s, other}), 1)
}

func TestNewShiftBuild(t *testing.T) {
	s := NewShift{CompanyID: "acme", StartTime: at(10, 22, 0), EndTime: at(10, 3, 0)}.Build(sequentialIDs())
	assert.Equal(t, domain.DefaultRole, s.Role)
	assert.Equal(t, at(11, 3, 0), s.EndTime)
	assert.Equal(t, domain.ShiftStatusDraft, s.Status)
	assert.NotNil(t, s.Bids)
}

func TestNewShiftIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewShiftID()
		require.False(t, seen[id])
		seen[id] = true
	}
}
