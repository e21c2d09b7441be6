// Package mongostore keeps shifts and the company directory in MongoDB. It backs
// STORE_DRIVER=mongo. Batch writes run one transaction per chunk, so the server must be a
// replica set or a sharded cluster.
package mongostore

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rotadesk/rota/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	client       *mongo.Client
	shifts       *mongo.Collection
	users        *mongo.Collection
	locations    *mongo.Collection
	companies    *mongo.Collection
	timeOff      *mongo.Collection
	batchSize    int
	queryTimeout time.Duration
	seq          atomic.Int64
}

func New(db *mongo.Database, batchSize int, queryTimeout time.Duration) *Store {
	s := &Store{
		client:       db.Client(),
		shifts:       db.Collection("shifts"),
		users:        db.Collection("users"),
		locations:    db.Collection("locations"),
		companies:    db.Collection("companies"),
		timeOff:      db.Collection("time_off_requests"),
		batchSize:    batchSize,
		queryTimeout: queryTimeout,
	}
	s.seq.Store(time.Now().UnixNano())
	return s
}

// EnsureIndexes creates the indexes the rota queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	shiftIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetName("idx_shifts_company_status_start"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetName("idx_shifts_user_start"),
		},
	}
	if _, err := s.shifts.Indexes().CreateMany(ctx, shiftIndexes); err != nil {
		return err
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_users_username").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "full_name", Value: 1}},
			Options: options.Index().SetName("idx_users_company_name"),
		},
	}
	if _, err := s.users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return err
	}

	_, err := s.timeOff.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "start_time", Value: 1}},
		Options: options.Index().SetName("idx_time_off_company_start"),
	})
	return err
}

func (s *Store) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}

// inTransaction runs fn inside a session transaction; returning an error aborts it.
func (s *Store) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
