//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"roost/internal/geocode"
	"roost/internal/listing"
	"roost/internal/media"
	"roost/pkg/platform/sentinel"
	"roost/pkg/testutil/containers"
)

// =============================================================================
// Mongo Listing Store Integration Suite
// =============================================================================
// Runs the real store against a MongoDB container to cover what the memory
// fake cannot: bson round-tripping of embedded image and geometry documents,
// ObjectID handling, sort order, and the single-write update.

type MongoListingStoreSuite struct {
	suite.Suite
	mongo *containers.MongoContainer
	store *MongoStore
}

func TestMongoListingStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MongoListingStoreSuite))
}

func (s *MongoListingStoreSuite) SetupSuite() {
	s.mongo = containers.NewMongoContainer(s.T())
}

func (s *MongoListingStoreSuite) SetupTest() {
	db := s.mongo.Database("roost_test")
	s.Require().NoError(db.Collection("listings").Drop(context.Background()))
	s.store = NewMongoStore(db)
}

func (s *MongoListingStoreSuite) seed() listing.Listing {
	created, err := s.store.Create(context.Background(), listing.Listing{
		Title:       "Seaside cabin",
		Description: "Two rooms, own pier",
		Price:       120,
		Location:    "Tallinn, Estonia",
		Country:     "Estonia",
		Image:       &media.Object{URL: "https://cdn.example/o/1", Key: "listings/1"},
		Geometry:    &geocode.Point{Type: "Point", Coordinates: [2]float64{24.7536, 59.4370}},
		OwnerID:     "user-1",
		CreatedAt:   time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	return created
}

func (s *MongoListingStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	created := s.seed()
	s.Require().NotEmpty(created.ID)

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.Title, found.Title)
	s.Equal("user-1", found.OwnerID)
	s.Require().NotNil(found.Image)
	s.Equal("listings/1", found.Image.Key)
	s.Require().NotNil(found.Geometry)
	s.Equal("Point", found.Geometry.Type)
	s.Equal([2]float64{24.7536, 59.4370}, found.Geometry.Coordinates)
}

func (s *MongoListingStoreSuite) TestFindByID() {
	ctx := context.Background()

	s.Run("malformed id reads as not found", func() {
		_, err := s.store.FindByID(ctx, "not-a-hex-objectid")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("well-formed but absent id", func() {
		_, err := s.store.FindByID(ctx, "6563b8f60000000000000000")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MongoListingStoreSuite) TestFindAllNewestFirst() {
	ctx := context.Background()
	for i, title := range []string{"oldest", "middle", "newest"} {
		_, err := s.store.Create(ctx, listing.Listing{
			Title:     title,
			CreatedAt: time.Date(2026, 2, 10, 12, i, 0, 0, time.UTC),
		})
		s.Require().NoError(err)
	}

	all, err := s.store.FindAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("newest", all[0].Title)
	s.Equal("oldest", all[2].Title)
}

func (s *MongoListingStoreSuite) TestUpdateByID() {
	ctx := context.Background()
	created := s.seed()

	s.Run("patch without image or geometry keeps both", func() {
		updated, err := s.store.UpdateByID(ctx, created.ID, listing.Patch{
			Title:       "Seaside cabin, renovated",
			Description: created.Description,
			Price:       150,
			Location:    created.Location,
			Country:     created.Country,
			UpdatedAt:   time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC),
		})
		s.Require().NoError(err)
		s.Equal("Seaside cabin, renovated", updated.Title)
		s.Equal(float64(150), updated.Price)
		s.Require().NotNil(updated.Image)
		s.Equal("listings/1", updated.Image.Key)
		s.Require().NotNil(updated.Geometry)
	})

	s.Run("patch with new image and geometry replaces both", func() {
		updated, err := s.store.UpdateByID(ctx, created.ID, listing.Patch{
			Title:    created.Title,
			Location: "Riga, Latvia",
			Image:    &media.Object{URL: "https://cdn.example/o/2", Key: "listings/2"},
			Geometry: &geocode.Point{Type: "Point", Coordinates: [2]float64{24.1052, 56.9496}},
		})
		s.Require().NoError(err)
		s.Equal("listings/2", updated.Image.Key)
		s.Equal([2]float64{24.1052, 56.9496}, updated.Geometry.Coordinates)
	})

	s.Run("absent id", func() {
		_, err := s.store.UpdateByID(ctx, "6563b8f60000000000000000", listing.Patch{Title: "x"})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MongoListingStoreSuite) TestDeleteByID() {
	ctx := context.Background()
	created := s.seed()

	s.NoError(s.store.DeleteByID(ctx, created.ID))
	_, err := s.store.FindByID(ctx, created.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	// Repeat deletes and malformed ids are no-ops.
	s.NoError(s.store.DeleteByID(ctx, created.ID))
	s.NoError(s.store.DeleteByID(ctx, "not-a-hex-objectid"))
}
