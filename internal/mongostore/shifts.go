package mongostore

import (
	"context"

	"github.com/rotadesk/rota/backend/internal/domain"
	"github.com/rotadesk/rota/backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// shiftDoc adds the insertion sequence used to break start time ties.
type shiftDoc struct {
	domain.Shift `bson:",inline"`
	Seq          int64 `bson:"seq"`
}

func (s *Store) decodeShifts(ctx context.Context, cur *mongo.Cursor) ([]*domain.Shift, error) {
	defer cur.Close(ctx)

	shifts := make([]*domain.Shift, 0)
	for cur.Next(ctx) {
		var doc shiftDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		shifts = append(shifts, normalize(&doc.Shift))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return shifts, nil
}

func normalize(shift *domain.Shift) *domain.Shift {
	if shift.Bids == nil {
		shift.Bids = []string{}
	}
	return shift
}

func filterDoc(f domain.ShiftFilter) bson.M {
	q := bson.M{}
	if f.CompanyID != "" {
		q["company_id"] = f.CompanyID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.StartFrom != nil || f.StartTo != nil {
		rng := bson.M{}
		if f.StartFrom != nil {
			rng["$gte"] = *f.StartFrom
		}
		if f.StartTo != nil {
			rng["$lte"] = *f.StartTo
		}
		q["start_time"] = rng
	}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	if len(f.IDs) > 0 {
		q["_id"] = bson.M{"$in": f.IDs}
	}
	return q
}

func (s *Store) GetShift(ctx context.Context, id string) (*domain.Shift, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var doc shiftDoc
	if err := s.shifts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return normalize(&doc.Shift), nil
}

func (s *Store) QueryShifts(ctx context.Context, filter domain.ShiftFilter) ([]*domain.Shift, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "seq", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := s.shifts.Find(ctx, filterDoc(filter), opts)
	if err != nil {
		return nil, err
	}
	return s.decodeShifts(ctx, cur)
}

func (s *Store) CountShifts(ctx context.Context, filter domain.ShiftFilter) (int, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	n, err := s.shifts.CountDocuments(ctx, filterDoc(filter))
	return int(n), err
}

func (s *Store) CreateShift(ctx context.Context, shift *domain.Shift) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	_, err := s.shifts.InsertOne(ctx, shiftDoc{Shift: *shift, Seq: s.seq.Add(1)})
	return err
}

// updateDoc turns a patch into $set and $unset operators. Remove drops the key from the
// document while Null keeps it with a null value.
func updateDoc(p domain.ShiftPatch) bson.M {
	set := bson.M{}
	unset := bson.M{}

	optional := func(key string, op domain.FieldOp, value any) {
		switch op {
		case domain.FieldSet:
			set[key] = value
		case domain.FieldNull:
			set[key] = nil
		case domain.FieldRemove:
			unset[key] = ""
		}
	}

	optional("location_id", p.LocationID.Op, p.LocationID.Value)
	optional("location_name", p.LocationName.Op, p.LocationName.Value)
	optional("user_id", p.UserID.Op, p.UserID.Value)
	optional("user_name", p.UserName.Op, p.UserName.Value)
	optional("bids", p.Bids.Op, p.Bids.Value)
	optional("is_offered", p.IsOffered.Op, p.IsOffered.Value)
	if p.Role.Op == domain.FieldSet {
		set["role"] = p.Role.Value
	}
	if p.StartTime.Op == domain.FieldSet {
		set["start_time"] = p.StartTime.Value
	}
	if p.EndTime.Op == domain.FieldSet {
		set["end_time"] = p.EndTime.Value
	}
	if p.Status.Op == domain.FieldSet {
		set["status"] = p.Status.Value
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (s *Store) UpdateShift(ctx context.Context, id string, patch domain.ShiftPatch) error {
	if patch.IsEmpty() {
		_, err := s.GetShift(ctx, id)
		return err
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	res, err := s.shifts.UpdateOne(ctx, bson.M{"_id": id}, updateDoc(patch))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteShift(ctx context.Context, id string) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	res, err := s.shifts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) BatchCreateShifts(ctx context.Context, shifts []*domain.Shift) (int, error) {
	committed := 0
	for _, chunk := range utils.Chunk(shifts, s.batchSize) {
		docs := make([]interface{}, 0, len(chunk))
		for _, shift := range chunk {
			docs = append(docs, shiftDoc{Shift: *shift, Seq: s.seq.Add(1)})
		}

		err := s.inTransaction(ctx, func(sc mongo.SessionContext) error {
			_, err := s.shifts.InsertMany(sc, docs)
			return err
		})
		if err != nil {
			return committed, err
		}
		committed += len(chunk)
	}
	return committed, nil
}

func (s *Store) BatchUpdateShifts(ctx context.Context, updates []domain.ShiftUpdate) (int, error) {
	committed := 0
	for _, chunk := range utils.Chunk(updates, s.batchSize) {
		models := make([]mongo.WriteModel, 0, len(chunk))
		for _, u := range chunk {
			if u.Patch.IsEmpty() {
				continue
			}
			models = append(models, mongo.NewUpdateOneModel().SetFilter(bson.M{"_id": u.ID}).SetUpdate(updateDoc(u.Patch)))
		}
		if len(models) == 0 {
			committed += len(chunk)
			continue
		}

		err := s.inTransaction(ctx, func(sc mongo.SessionContext) error {
			res, err := s.shifts.BulkWrite(sc, models)
			if err != nil {
				return err
			}
			if int(res.MatchedCount) != len(models) {
				return domain.ErrNotFound
			}
			return nil
		})
		if err != nil {
			return committed, err
		}
		committed += len(chunk)
	}
	return committed, nil
}

func (s *Store) BatchDeleteShifts(ctx context.Context, ids []string) (int, error) {
	committed := 0
	for _, chunk := range utils.Chunk(ids, s.batchSize) {
		var deleted int64
		err := s.inTransaction(ctx, func(sc mongo.SessionContext) error {
			res, err := s.shifts.DeleteMany(sc, bson.M{"_id": bson.M{"$in": chunk}})
			if err != nil {
				return err
			}
			deleted = res.DeletedCount
			return nil
		})
		if err != nil {
			return committed, err
		}
		committed += int(deleted)
	}
	return committed, nil
}
