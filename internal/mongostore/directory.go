package mongostore

import (
	"context"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) GetCompanySettings(ctx context.Context, companyID string) (*domain.CompanySettings, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var settings domain.CompanySettings
	if err := s.companies.FindOne(ctx, bson.M{"_id": companyID}).Decode(&settings); err != nil {
		return nil, notFound(err)
	}
	return &settings, nil
}

func (s *Store) GetRoster(ctx context.Context, companyID string) ([]*domain.User, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.users.Find(ctx, bson.M{"company_id": companyID, "is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := make([]*domain.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var user domain.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	if user.Positions == nil {
		user.Positions = []string{}
	}
	return &user, nil
}

func (s *Store) GetLocations(ctx context.Context, companyID string) ([]*domain.Location, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.locations.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	locations := make([]*domain.Location, 0)
	if err := cur.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (s *Store) GetLocationByID(ctx context.Context, id string) (*domain.Location, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var loc domain.Location
	if err := s.locations.FindOne(ctx, bson.M{"_id": id}).Decode(&loc); err != nil {
		return nil, notFound(err)
	}
	return &loc, nil
}

// GetTimeOffInRange returns requests that overlap [start, end).
func (s *Store) GetTimeOffInRange(ctx context.Context, companyID string, start, end time.Time) ([]*domain.TimeOffRequest, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	filter := bson.M{
		"company_id": companyID,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.timeOff.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	requests := make([]*domain.TimeOffRequest, 0)
	if err := cur.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Store) InsertCompany(ctx context.Context, settings *domain.CompanySettings) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	_, err := s.companies.InsertOne(ctx, settings)
	return err
}

func (s *Store) InsertUser(ctx context.Context, user *domain.User) error {
	if user.Positions == nil {
		user.Positions = []string{}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	_, err := s.users.InsertOne(ctx, user)
	return err
}

func (s *Store) InsertLocation(ctx context.Context, loc *domain.Location) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	_, err := s.locations.InsertOne(ctx, loc)
	return err
}

func (s *Store) InsertTimeOff(ctx context.Context, t *domain.TimeOffRequest) error {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	_, err := s.timeOff.InsertOne(ctx, t)
	return err
}
