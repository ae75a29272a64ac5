package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"roost/internal/auth"
	"roost/pkg/platform/sentinel"
)

// MongoStore persists users in the "users" collection. A unique index on
// email is expected; duplicate writes surface as sentinel.ErrConflict.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("users")}
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func toDomain(doc userDocument) auth.User {
	return auth.User{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}
}

func (s *MongoStore) Create(ctx context.Context, user auth.User) (auth.User, error) {
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Email:        strings.ToLower(user.Email),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.User{}, sentinel.ErrConflict
		}
		return auth.User{}, fmt.Errorf("insert user: %w", err)
	}
	return toDomain(doc), nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (auth.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return auth.User{}, sentinel.ErrNotFound
	}

	var doc userDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.User{}, sentinel.ErrNotFound
		}
		return auth.User{}, fmt.Errorf("find user %s: %w", id, err)
	}
	return toDomain(doc), nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	var doc userDocument
	err := s.collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.User{}, sentinel.ErrNotFound
		}
		return auth.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return toDomain(doc), nil
}
