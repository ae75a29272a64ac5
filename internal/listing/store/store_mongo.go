package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roost/internal/listing"
	"roost/pkg/platform/sentinel"
)

// MongoStore persists listings in the "listings" collection.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("listings")}
}

// listingDocument mirrors listing.Listing with an ObjectID primary key. The
// hex form of the id is what leaves the store.
type listingDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	listing.Listing `bson:",inline"`
}

func toDomain(doc listingDocument) listing.Listing {
	l := doc.Listing
	l.ID = doc.ID.Hex()
	return l
}

func (s *MongoStore) Create(ctx context.Context, l listing.Listing) (listing.Listing, error) {
	doc := listingDocument{ID: primitive.NewObjectID(), Listing: l}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return listing.Listing{}, fmt.Errorf("insert listing: %w", err)
	}
	return toDomain(doc), nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (listing.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id can never exist; same outcome as a missing record.
		return listing.Listing{}, sentinel.ErrNotFound
	}

	var doc listingDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return listing.Listing{}, sentinel.ErrNotFound
		}
		return listing.Listing{}, fmt.Errorf("find listing %s: %w", id, err)
	}
	return toDomain(doc), nil
}

func (s *MongoStore) FindAll(ctx context.Context) ([]listing.Listing, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	listings := make([]listing.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, toDomain(doc))
	}
	return listings, nil
}

// UpdateByID applies the patch in one write and returns the updated record.
func (s *MongoStore) UpdateByID(ctx context.Context, id string, patch listing.Patch) (listing.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return listing.Listing{}, sentinel.ErrNotFound
	}

	var doc listingDocument
	err = s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": patch},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return listing.Listing{}, sentinel.ErrNotFound
		}
		return listing.Listing{}, fmt.Errorf("update listing %s: %w", id, err)
	}
	return toDomain(doc), nil
}

// DeleteByID removes the record. Deleting a missing id succeeds so the
// operation stays idempotent.
func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": objID}); err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	return nil
}
