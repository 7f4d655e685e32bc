package service

import (
	"context"
	"testing"

	"github.com/brntsllvn/devlunch/internal/models"
	"github.com/brntsllvn/devlunch/internal/repository"
	"github.com/brntsllvn/devlunch/internal/repository/memory"
	"github.com/brntsllvn/devlunch/internal/repository/sqlite"
	"github.com/brntsllvn/devlunch/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores runs fn against every store implementation
func stores(t *testing.T, fn func(t *testing.T, store repository.Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, memory.NewStore(nil))
	})
	t.Run("sqlite", func(t *testing.T) {
		ctx := context.Background()
		store, err := sqlite.New(ctx, sqlite.Config{Path: ":memory:"}, nil)
		require.NoError(t, err)
		require.NoError(t, store.Migrate(ctx))
		t.Cleanup(func() { _ = store.Close() })
		fn(t, store)
	})
}

// newService opens a fresh session, the way a request would
func newService(t *testing.T, store repository.Store) *RestaurantService {
	t.Helper()
	session, err := store.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return NewRestaurantService(session, nil)
}

func ptr(id int64) *int64 { return &id }

func TestRestaurantService_CreateThenList(t *testing.T) {
	stores(t, func(t *testing.T, store repository.Store) {
		ctx := context.Background()

		r := &models.Restaurant{Name: "Brave Horse", Longitude: -122.3, Latitude: 47.6}
		require.NoError(t, newService(t, store).Create(ctx, r))
		assert.Equal(t, int64(1), r.ID)

		list, err := newService(t, store).List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, *r, list[0])
	})
}

func TestRestaurantService_CreateRejectsShortName(t *testing.T) {
	stores(t, func(t *testing.T, store repository.Store) {
		ctx := context.Background()

		r := &models.Restaurant{Name: "B"}
		err := newService(t, store).Create(ctx, r)
		require.Error(t, err)
		assert.True(t, validation.IsValidationError(err))
		assert.Zero(t, r.ID)

		list, err := newService(t, store).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestRestaurantService_Detail(t *testing.T) {
	stores(t, func(t *testing.T, store repository.Store) {
		ctx := context.Background()
		seeded := &models.Restaurant{Name: "Yard House"}
		require.NoError(t, newService(t, store).Create(ctx, seeded))

		tests := []struct {
			name    string
			id      *int64
			wantErr error
		}{
			{name: "existing restaurant", id: ptr(seeded.ID)},
			{name: "missing id", id: nil, wantErr: ErrMissingIdentifier},
			{name: "unknown id", id: ptr(999), wantErr: repository.ErrRestaurantNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := newService(t, store).Detail(ctx, tt.id)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					assert.Nil(t, got)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, *seeded, *got)
			})
		}
	})
}

func TestRestaurantService_Edit(t *testing.T) {
	stores(t, func(t *testing.T, store repository.Store) {
		ctx := context.Background()
		seeded := &models.Restaurant{Name: "Brave Horse"}
		require.NoError(t, newService(t, store).Create(ctx, seeded))

		t.Run("Should copy editable fields and keep the id", func(t *testing.T) {
			edited := models.Restaurant{ID: 777, Name: "Linda's", Longitude: -5, Latitude: 5}
			got, err := newService(t, store).Edit(ctx, ptr(seeded.ID), edited)
			require.NoError(t, err)
			assert.Equal(t, seeded.ID, got.ID)

			stored, err := newService(t, store).Detail(ctx, ptr(seeded.ID))
			require.NoError(t, err)
			assert.Equal(t, models.Restaurant{ID: seeded.ID, Name: "Linda's", Longitude: -5, Latitude: 5}, *stored)
		})

		t.Run("Should reject invalid edits without saving", func(t *testing.T) {
			_, err := newService(t, store).Edit(ctx, ptr(seeded.ID), models.Restaurant{Name: "x"})
			assert.True(t, validation.IsValidationError(err))

			stored, err := newService(t, store).Detail(ctx, ptr(seeded.ID))
			require.NoError(t, err)
			assert.Equal(t, "Linda's", stored.Name)
		})

		t.Run("Should report missing and unknown ids", func(t *testing.T) {
			_, err := newService(t, store).Edit(ctx, nil, models.Restaurant{Name: "Valid"})
			assert.ErrorIs(t, err, ErrMissingIdentifier)
			_, err = newService(t, store).Edit(ctx, ptr(404), models.Restaurant{Name: "Valid"})
			assert.ErrorIs(t, err, repository.ErrRestaurantNotFound)
		})
	})
}

func TestRestaurantService_Delete(t *testing.T) {
	stores(t, func(t *testing.T, store repository.Store) {
		ctx := context.Background()
		first := &models.Restaurant{Name: "Brave Horse"}
		second := &models.Restaurant{Name: "Yard House"}
		require.NoError(t, newService(t, store).Create(ctx, first))
		require.NoError(t, newService(t, store).Create(ctx, second))

		require.NoError(t, newService(t, store).Delete(ctx, ptr(first.ID)))

		list, err := newService(t, store).List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Yard House", list[0].Name)

		assert.ErrorIs(t, newService(t, store).Delete(ctx, ptr(first.ID)), repository.ErrRestaurantNotFound)
		assert.ErrorIs(t, newService(t, store).Delete(ctx, nil), ErrMissingIdentifier)
	})
}

func TestRestaurantService_CreateForm(t *testing.T) {
	svc := NewRestaurantService(nil, nil)
	assert.Equal(t, models.Restaurant{}, svc.CreateForm())
}
