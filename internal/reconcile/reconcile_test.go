package reconcile

import (
	"fmt"
	"testing"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster() []*domain.User {
	return []*domain.User{
		{ID: "u-bella", FullName: "Bella Smith", Positions: []string{"Bartender"}},
		{ID: "u-tom", FullName: "Tom O'Neil", Positions: []string{"Server", "Bartender"}},
		{ID: "u-ana", FullName: "Ana Lopez", Positions: nil},
		{ID: "u-wang", FullName: "王伟", Positions: []string{"Kitchen"}},
	}
}

func ids() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestMatch(t *testing.T) {
	m := NewMatcher(roster(), DefaultThreshold)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"exact ignoring case", "bella smith", "u-bella"},
		{"quotes stripped", `"Tom ONeil"`, "u-tom"},
		{"typo", "Bela Smth", "u-bella"},
		{"first name only", "Bella", "u-bella"},
		{"last name only", "Lopez", "u-ana"},
		{"pinyin", "Wang Wei", "u-wang"},
		{"han characters", "王伟", "u-wang"},
		{"empty is open", "   ", domain.MatchOpen},
		{"nobody", "Zed Quark", domain.MatchUnknown},
		{"scattered letters are not a substring", "Bsh", domain.MatchUnknown},
		{"one typo in the first name only", "Bela", domain.MatchUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.raw))
		})
	}
}

func TestScore(t *testing.T) {
	// a typo in both tokens scores the two partial token matches
	assert.Equal(t, 16, score("bela smth", "bella smith"))
	assert.Equal(t, 40, score("bella smith", "bella smith"))
	assert.Equal(t, 8, score("bel x", "bella smith"))
	assert.Equal(t, 0, score("zed", "bella smith"))
}

func TestMatchRejectsLooseNames(t *testing.T) {
	m := NewMatcher([]*domain.User{
		{ID: "u-amanda", FullName: "Amanda Brown"},
		{ID: "u-mark", FullName: "Mark Evans"},
	}, DefaultThreshold)

	assert.Equal(t, domain.MatchUnknown, m.Match("Ann"))
	assert.Equal(t, domain.MatchUnknown, m.Match("Mars"))
	assert.Equal(t, domain.MatchUnknown, m.Match("Mars Jones"))
	assert.Equal(t, "u-mark", m.Match("Mark Evens"))
	assert.Equal(t, "u-amanda", m.Match("manda"))
}

func TestMatchThreshold(t *testing.T) {
	// "bel x" only scores the partial first token
	assert.Equal(t, domain.MatchUnknown, NewMatcher(roster(), DefaultThreshold).Match("Bel X"))
	assert.Equal(t, "u-bella", NewMatcher(roster(), 5).Match("Bel X"))
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"15/3/2025", "2025-03-15", true},
		{"15-03-2025", "2025-03-15", true},
		{"15.3.2025", "2025-03-15", true},
		{"2025-03-15", "2025-03-15", true},
		{"2025/3/5", "2025-03-05", true},
		{"5/3/25", "2025-03-05", true},
		{"15 March 2025", "2025-03-15", true},
		{"2025-03-15T09:00:00Z", "2025-03-15", true},
		{"31/2/2025", "", false},
		{"3/15/2025", "", false},
		{"tomorrow", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"9", "09:00", true},
		{"9:5", "09:05", true},
		{"09:30", "09:30", true},
		{"17.45", "17:45", true},
		{"9:30:00", "09:30", true},
		{"5pm", "17:00", true},
		{"12 am", "00:00", true},
		{"24:00", "", false},
		{"9:75", "", false},
		{"noon", "", false},
		{" ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeTime(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInferRole(t *testing.T) {
	users := roster()
	bella, tom, ana := users[0], users[1], users[2]

	tests := []struct {
		name      string
		matched   string
		rawRole   string
		user      *domain.User
		want      string
		ambiguous bool
	}{
		{"unknown person", domain.MatchUnknown, "Server", nil, "", true},
		{"specific raw role wins", tom.ID, "Host", tom, "Host", false},
		{"generic raw role ignored", bella.ID, "staff", bella, "Bartender", false},
		{"null raw role ignored", bella.ID, "NULL", bella, "Bartender", false},
		{"single position", bella.ID, "", bella, "Bartender", false},
		{"several positions", tom.ID, "", tom, "", true},
		{"no positions", ana.ID, "", ana, domain.DefaultRole, false},
		{"open shift", domain.MatchOpen, "", nil, domain.DefaultRole, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ambiguous := InferRole(tt.matched, tt.rawRole, tt.user)
			assert.Equal(t, tt.want, role)
			assert.Equal(t, tt.ambiguous, ambiguous)
		})
	}
}

func TestReconcileTypoRowWithoutEnd(t *testing.T) {
	r := New(roster(), DefaultThreshold)

	rows := r.Reconcile([]domain.RawImportRow{
		{Name: "Bela Smth", Date: "15/3/2025", Start: "9", End: ""},
	})
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "u-bella", row.MatchedUserID)
	assert.Equal(t, "2025-03-15", row.ParsedDate)
	assert.Equal(t, "09:00", row.ParsedStart)
	assert.Equal(t, "Bartender", row.FinalRole)
	assert.Equal(t, []domain.ImportError{domain.ImportMissingEndTime}, row.Errors)

	n, err := FillEndTime(rows, "17:00")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, rows[0].Errors)
	assert.Equal(t, "17:00", rows[0].ParsedEnd)
}

func TestReconcileSortsAndFlags(t *testing.T) {
	r := New(roster(), DefaultThreshold)

	rows := r.Reconcile([]domain.RawImportRow{
		{Name: "Tom O'Neil", Date: "16/3/2025", Start: "18:00", End: "23:00"},
		{Name: "Stranger Danger", Date: "15/3/2025", Start: "12:00", End: "20:00", Role: "Server"},
		{Name: "", Date: "15/3/2025", Start: "9:00", End: "17:00"},
		{Name: "Bella Smith", Date: "not a date", Start: "", End: "17:00"},
	})
	require.Len(t, rows, 4)

	assert.Equal(t, "not a date", rows[0].RawDate)
	assert.ElementsMatch(t, []domain.ImportError{domain.ImportInvalidDate, domain.ImportMissingTime}, rows[0].Errors)

	assert.Equal(t, domain.MatchOpen, rows[1].MatchedUserID)
	assert.Equal(t, domain.DefaultRole, rows[1].FinalRole)
	assert.Empty(t, rows[1].Errors)

	assert.Equal(t, domain.MatchUnknown, rows[2].MatchedUserID)
	assert.Empty(t, rows[2].FinalRole)
	assert.ElementsMatch(t, []domain.ImportError{domain.ImportNameUnknown, domain.ImportAmbiguousRole}, rows[2].Errors)

	assert.Equal(t, "u-tom", rows[3].MatchedUserID)
	assert.Empty(t, rows[3].FinalRole)
	assert.Equal(t, []domain.ImportError{domain.ImportAmbiguousRole}, rows[3].Errors)
}

func TestSelectUserReinfersRole(t *testing.T) {
	r := New(roster(), DefaultThreshold)
	rows := r.Reconcile([]domain.RawImportRow{
		{Name: "Somebody", Date: "15/3/2025", Start: "9", End: "17"},
	})
	require.True(t, rows[0].HasError(domain.ImportAmbiguousRole))

	require.NoError(t, r.SelectUser(rows, 0, "u-bella"))
	assert.Equal(t, "Bartender", rows[0].FinalRole)
	assert.Empty(t, rows[0].Errors)

	require.NoError(t, r.SelectUser(rows, 0, "u-tom"))
	assert.Empty(t, rows[0].FinalRole)
	assert.Equal(t, []domain.ImportError{domain.ImportAmbiguousRole}, rows[0].Errors)

	require.NoError(t, r.SelectUser(rows, 0, domain.MatchOpen))
	assert.Equal(t, domain.DefaultRole, rows[0].FinalRole)

	assert.ErrorIs(t, r.SelectUser(rows, 0, "u-ghost"), ErrUnknownUser)
	assert.ErrorIs(t, r.SelectUser(rows, 3, "u-bella"), ErrRowOutOfRange)
}

func TestCopyDown(t *testing.T) {
	r := New(roster(), DefaultThreshold)
	rows := r.Reconcile([]domain.RawImportRow{
		{Name: "Bella Smith", Date: "15/3/2025", Start: "9", End: "17", Role: "Host"},
		{Name: "Bella Smith", Date: "15/3/2025", Start: "", End: "", Role: ""},
	})
	// both rows share a date; the complete one sorts second by start time
	require.Equal(t, "", rows[0].ParsedStart)
	rows[0], rows[1] = rows[1], rows[0]

	require.NoError(t, CopyDown(rows, 0, ColumnStart))
	require.NoError(t, CopyDown(rows, 0, ColumnEnd))
	require.NoError(t, CopyDown(rows, 0, ColumnRole))
	assert.Equal(t, "09:00", rows[1].ParsedStart)
	assert.Equal(t, "17:00", rows[1].ParsedEnd)
	assert.Equal(t, "Host", rows[1].FinalRole)
	assert.Empty(t, rows[1].Errors)

	assert.ErrorIs(t, CopyDown(rows, 1, ColumnDate), ErrRowOutOfRange)
	assert.ErrorIs(t, CopyDown(rows, 0, "colour"), ErrUnknownColumn)
}

func TestEditRow(t *testing.T) {
	rows := []domain.ImportRow{{
		MatchedUserID: domain.MatchUnknown,
		Errors:        []domain.ImportError{domain.ImportInvalidDate, domain.ImportAmbiguousRole, domain.ImportNameUnknown},
	}}

	date, role := "1.4.2025", "Cleaner"
	require.NoError(t, EditRow(rows, 0, RowEdit{Date: &date, Role: &role}))
	assert.Equal(t, "2025-04-01", rows[0].ParsedDate)
	assert.Equal(t, "Cleaner", rows[0].FinalRole)
	assert.Equal(t, []domain.ImportError{domain.ImportNameUnknown}, rows[0].Errors)

	bad := "99:99"
	assert.ErrorIs(t, EditRow(rows, 0, RowEdit{Start: &bad}), ErrInvalidTime)
}

func TestCommitGate(t *testing.T) {
	ok := domain.ImportRow{MatchedUserID: domain.MatchOpen, ParsedDate: "2025-03-15", ParsedStart: "09:00", ParsedEnd: "17:00", FinalRole: "Staff"}

	withFlag := func(flags ...domain.ImportError) domain.ImportRow {
		r := ok
		r.Errors = flags
		return r
	}

	assert.ErrorIs(t, CheckCommit(nil), ErrNoRows)
	assert.ErrorIs(t, CheckCommit([]domain.ImportRow{ok, withFlag(domain.ImportInvalidDate)}), ErrInvalidDates)
	assert.ErrorIs(t, CheckCommit([]domain.ImportRow{withFlag(domain.ImportAmbiguousRole)}), ErrAmbiguousRoles)
	assert.ErrorIs(t, CheckCommit([]domain.ImportRow{withFlag(domain.ImportAmbiguousRole, domain.ImportInvalidDate)}), ErrInvalidDates)
	assert.ErrorIs(t, CheckCommit([]domain.ImportRow{withFlag(domain.ImportMissingTime)}), ErrMissingStartTimes)
	assert.NoError(t, CheckCommit([]domain.ImportRow{ok, withFlag(domain.ImportMissingEndTime, domain.ImportNameUnknown)}))
}

func TestCommit(t *testing.T) {
	r := New(roster(), DefaultThreshold)
	loc := time.FixedZone("UTC+1", 3600)
	rows := []domain.ImportRow{
		{RawName: "Bella Smith", MatchedUserID: "u-bella", ParsedDate: "2025-03-15", ParsedStart: "18:00", ParsedEnd: "02:00", FinalRole: "Bartender"},
		{RawName: "", MatchedUserID: domain.MatchOpen, ParsedDate: "2025-03-15", ParsedStart: "09:00", ParsedEnd: "17:00", FinalRole: "Staff"},
		{RawName: " Zed Quark ", MatchedUserID: domain.MatchUnknown, ParsedDate: "2025-03-16", ParsedStart: "10:00", FinalRole: "Cleaner",
			Errors: []domain.ImportError{domain.ImportNameUnknown, domain.ImportMissingEndTime}},
	}

	shifts, err := r.Commit(rows, CommitOptions{CompanyID: "acme", Location: loc, NewID: ids()})
	require.NoError(t, err)
	require.Len(t, shifts, 3)

	for _, s := range shifts {
		assert.Equal(t, domain.ShiftStatusDraft, s.Status)
		assert.Equal(t, "acme", s.CompanyID)
		assert.True(t, s.EndTime.After(s.StartTime))
	}

	assert.Equal(t, "u-bella", *shifts[0].UserID)
	assert.Equal(t, "Bella Smith", *shifts[0].UserName)
	assert.Equal(t, time.Date(2025, 3, 15, 18, 0, 0, 0, loc), shifts[0].StartTime)
	assert.Equal(t, time.Date(2025, 3, 16, 2, 0, 0, 0, loc), shifts[0].EndTime)

	assert.Nil(t, shifts[1].UserID)
	assert.Nil(t, shifts[1].UserName)

	assert.Nil(t, shifts[2].UserID)
	assert.Equal(t, "Zed Quark (Unregistered)", *shifts[2].UserName)
	assert.Equal(t, DefaultShiftLength, shifts[2].Duration())

	_, err = r.Commit([]domain.ImportRow{{Errors: []domain.ImportError{domain.ImportAmbiguousRole}}}, CommitOptions{})
	assert.ErrorIs(t, err, ErrAmbiguousRoles)
}
