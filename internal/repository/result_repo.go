package repository

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agenteval/internal/model"
)

// ResultRepo handles MongoDB operations for persisted judgment rows.
// The unique compound index on (q_id, answer_title, user_name) backs the
// upsert contract: one row per natural key, ever.
type ResultRepo interface {
	Upsert(ctx context.Context, row *model.ResultRow) error
	GetByUserAndTopic(ctx context.Context, userName string, topicID int) ([]*model.ResultRow, error)
	List(ctx context.Context, page, limit int) ([]*model.ResultRow, int64, error)
	Count(ctx context.Context) (int64, error)
	DistinctUsers(ctx context.Context) ([]string, error)
	DeleteByUserAndTopic(ctx context.Context, userName string, topicID int) error
}

type resultRepo struct {
	collection *mongo.Collection
}

// NewResultRepo creates the repository and ensures its indexes
func NewResultRepo(db *mongo.Database) ResultRepo {
	repo := &resultRepo{collection: db.Collection("results")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *resultRepo) ensureIndexes(ctx context.Context) {
	r.createIndex(ctx, bson.D{
		{Key: "q_id", Value: 1},
		{Key: "answer_title", Value: 1},
		{Key: "user_name", Value: 1},
	}, true)
	r.createIndex(ctx, bson.D{
		{Key: "user_name", Value: 1},
		{Key: "topic_id", Value: 1},
		{Key: "q_id", Value: 1},
	}, false)
	r.createIndex(ctx, bson.D{{Key: "updated_at", Value: -1}}, false)

	log.Println("result indexes ensured")
}

func (r *resultRepo) createIndex(ctx context.Context, keys bson.D, unique bool) {
	opts := options.Index().SetUnique(unique)
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		log.Printf("Warning: failed to create index on %s: %v", r.collection.Name(), err)
	}
}

func naturalKeyFilter(row *model.ResultRow) bson.M {
	return bson.M{
		"q_id":         row.QID,
		"answer_title": row.AnswerTitle,
		"user_name":    row.UserName,
	}
}

// Upsert inserts the row or replaces all value columns of the row already
// stored under the same natural key. Single atomic operation: no
// read-then-write, so concurrent upserts for one key cannot duplicate it.
func (r *resultRepo) Upsert(ctx context.Context, row *model.ResultRow) error {
	row.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, naturalKeyFilter(row), row, opts)
	return err
}

// GetByUserAndTopic returns the user's rows for one topic set ordered by q_id
func (r *resultRepo) GetByUserAndTopic(ctx context.Context, userName string, topicID int) ([]*model.ResultRow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "q_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"user_name": userName,
		"topic_id":  topicID,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []*model.ResultRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns a page of rows ordered by update time, newest first
func (r *resultRepo) List(ctx context.Context, page, limit int) ([]*model.ResultRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var rows []*model.ResultRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *resultRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// DistinctUsers lists the user names that have at least one persisted row
func (r *resultRepo) DistinctUsers(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "user_name", bson.M{"user_name": bson.M{"$ne": ""}})
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			users = append(users, s)
		}
	}
	return users, nil
}

// DeleteByUserAndTopic removes all of one user's rows for a topic set.
// Administrative companion to the session-level clear.
func (r *resultRepo) DeleteByUserAndTopic(ctx context.Context, userName string, topicID int) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{
		"user_name": userName,
		"topic_id":  topicID,
	})
	return err
}
