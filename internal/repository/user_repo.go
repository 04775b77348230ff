package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agenteval/internal/model"
)

// UserRepo handles MongoDB operations for users and topic assignments
type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, id string) error

	UpsertTopicMapping(ctx context.Context, mapping *model.UserTopicMapping) error
	GetTopicForUser(ctx context.Context, userID string) (int, error)
}

type userRepo struct {
	users    *mongo.Collection
	mappings *mongo.Collection
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepo{
		users:    db.Collection("users"),
		mappings: db.Collection("user_topic_mappings"),
	}
}

// Create inserts a user under a generated string id
func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.Role == "" {
		user.Role = model.RoleRater
	}
	_, err := r.users.InsertOne(ctx, user)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"user_name": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes the user and any topic assignment
func (r *userRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.users.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	_, err := r.mappings.DeleteMany(ctx, bson.M{"user_id": id})
	return err
}

// UpsertTopicMapping assigns a topic set to a user, replacing any prior
// assignment: one mapping per user_id.
func (r *userRepo) UpsertTopicMapping(ctx context.Context, mapping *model.UserTopicMapping) error {
	mapping.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := r.mappings.ReplaceOne(ctx, bson.M{"user_id": mapping.UserID}, mapping, opts)
	return err
}

// GetTopicForUser returns the user's assigned topic set id, 0 when unassigned
func (r *userRepo) GetTopicForUser(ctx context.Context, userID string) (int, error) {
	var mapping model.UserTopicMapping
	err := r.mappings.FindOne(ctx, bson.M{"user_id": userID}).Decode(&mapping)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return mapping.TopicID, nil
}
