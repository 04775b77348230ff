package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agenteval/internal/model"
)

// TopicRepo handles MongoDB operations for topic sets and their questions
type TopicRepo interface {
	CreateSet(ctx context.Context, set *model.TopicSet) (int, error)
	GetSet(ctx context.Context, id int) (*model.TopicSet, error)
	ListSets(ctx context.Context) ([]*model.TopicSet, error)
	UpdateSet(ctx context.Context, id int, fields bson.M) error
	DeleteSet(ctx context.Context, id int) error

	GetQuestionsBySet(ctx context.Context, topicID int) ([]model.Question, error)
	ReplaceQuestions(ctx context.Context, topicID int, questions []model.Question) error
	MaxQuestionID(ctx context.Context) (int, error)
}

type topicRepo struct {
	sets      *mongo.Collection
	questions *mongo.Collection
}

// NewTopicRepo creates a new topic repository
func NewTopicRepo(db *mongo.Database) TopicRepo {
	return &topicRepo{
		sets:      db.Collection("topic_sets"),
		questions: db.Collection("questions"),
	}
}

// CreateSet inserts a new topic set with the next sequential id
func (r *topicRepo) CreateSet(ctx context.Context, set *model.TopicSet) (int, error) {
	nextID := 1
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	var last model.TopicSet
	err := r.sets.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if err == nil {
		nextID = last.ID + 1
	} else if err != mongo.ErrNoDocuments {
		return 0, err
	}

	set.ID = nextID
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now()
	}
	if _, err := r.sets.InsertOne(ctx, set); err != nil {
		return 0, err
	}
	return nextID, nil
}

func (r *topicRepo) GetSet(ctx context.Context, id int) (*model.TopicSet, error) {
	var set model.TopicSet
	err := r.sets.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *topicRepo) ListSets(ctx context.Context) ([]*model.TopicSet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "row_num", Value: 1}})
	cursor, err := r.sets.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sets []*model.TopicSet
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// UpdateSet applies a partial update (name, status, description, ...)
func (r *topicRepo) UpdateSet(ctx context.Context, id int, fields bson.M) error {
	_, err := r.sets.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}

// DeleteSet removes the set together with its questions
func (r *topicRepo) DeleteSet(ctx context.Context, id int) error {
	if _, err := r.questions.DeleteMany(ctx, bson.M{"topic_id": id}); err != nil {
		return err
	}
	_, err := r.sets.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// GetQuestionsBySet returns the set's questions ordered by id
func (r *topicRepo) GetQuestionsBySet(ctx context.Context, topicID int) ([]model.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.questions.Find(ctx, bson.M{"topic_id": topicID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []model.Question
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ReplaceQuestions swaps the set's questions wholesale. Delete-then-insert
// keeps repeated imports of the same file idempotent.
func (r *topicRepo) ReplaceQuestions(ctx context.Context, topicID int, questions []model.Question) error {
	if _, err := r.questions.DeleteMany(ctx, bson.M{"topic_id": topicID}); err != nil {
		return err
	}
	if len(questions) == 0 {
		return nil
	}

	docs := make([]interface{}, len(questions))
	for i := range questions {
		questions[i].TopicID = topicID
		docs[i] = questions[i]
	}
	_, err := r.questions.InsertMany(ctx, docs)
	return err
}

// MaxQuestionID returns the highest question id across all sets, 0 when empty.
// Imports without explicit ids continue from here.
func (r *topicRepo) MaxQuestionID(ctx context.Context) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	var q model.Question
	err := r.questions.FindOne(ctx, bson.M{}, opts).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return q.ID, nil
}
