package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roost/internal/geocode"
	"roost/internal/listing"
	"roost/internal/media"
	"roost/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns an id and lists newest first", func(t *testing.T) {
		s := NewInMemoryStore()
		base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
		first, err := s.Create(ctx, listing.Listing{Title: "first", CreatedAt: base})
		require.NoError(t, err)
		require.NotEmpty(t, first.ID)
		_, err = s.Create(ctx, listing.Listing{Title: "second", CreatedAt: base.Add(time.Minute)})
		require.NoError(t, err)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "second", all[0].Title)
		assert.Equal(t, "first", all[1].Title)
	})

	t.Run("equal timestamps list the later insertion first", func(t *testing.T) {
		s := NewInMemoryStore()
		at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
		for _, title := range []string{"older", "newer"} {
			_, err := s.Create(ctx, listing.Listing{Title: title, CreatedAt: at})
			require.NoError(t, err)
		}

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "newer", all[0].Title)
		assert.Equal(t, "older", all[1].Title)
	})

	t.Run("find unknown id", func(t *testing.T) {
		s := NewInMemoryStore()
		_, err := s.FindByID(ctx, "gone")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("update replaces scalars, keeps image and geometry when absent", func(t *testing.T) {
		s := NewInMemoryStore()
		created, err := s.Create(ctx, listing.Listing{
			Title:    "Seaside cabin",
			Location: "Tallinn, Estonia",
			Image:    &media.Object{Key: "listings/old"},
			Geometry: &geocode.Point{Type: "Point", Coordinates: [2]float64{24.7536, 59.4370}},
		})
		require.NoError(t, err)

		updated, err := s.UpdateByID(ctx, created.ID, listing.Patch{
			Title:    "Seaside cabin, renovated",
			Location: "Tallinn, Estonia",
		})
		require.NoError(t, err)
		assert.Equal(t, "Seaside cabin, renovated", updated.Title)
		require.NotNil(t, updated.Image)
		assert.Equal(t, "listings/old", updated.Image.Key)
		require.NotNil(t, updated.Geometry)

		replaced, err := s.UpdateByID(ctx, created.ID, listing.Patch{
			Title: "Moved",
			Image: &media.Object{Key: "listings/new"},
		})
		require.NoError(t, err)
		assert.Equal(t, "listings/new", replaced.Image.Key)
	})

	t.Run("update unknown id", func(t *testing.T) {
		s := NewInMemoryStore()
		_, err := s.UpdateByID(ctx, "gone", listing.Patch{})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := NewInMemoryStore()
		created, err := s.Create(ctx, listing.Listing{Title: "doomed"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteByID(ctx, created.ID))
		require.NoError(t, s.DeleteByID(ctx, created.ID))
		assert.Equal(t, 0, s.Len())
	})
}
