// Package memory implements repository.Store in process memory. Tests open a
// fresh Store per case, the same way a transient database would be used.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/brntsllvn/devlunch/internal/models"
	"github.com/brntsllvn/devlunch/internal/repository"
	"github.com/google/uuid"
)

// Store is an in-memory repository.Store. Committed state is shared by all
// sessions and guarded by a mutex.
type Store struct {
	mu          sync.Mutex
	restaurants *table[models.Restaurant]
	products    *table[models.Product]
	logger      *slog.Logger
}

// NewStore creates an empty in-memory store
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		restaurants: newTable[models.Restaurant](),
		products:    newTable[models.Product](),
		logger:      logger,
	}
}

// Open starts a new session
func (s *Store) Open(ctx context.Context) (repository.Session, error) {
	return &session{store: s, id: uuid.NewString()}, nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op; committed data lives as long as the Store value.
func (s *Store) Close() error {
	return nil
}

type session struct {
	repository.ChangeSet
	store  *Store
	id     string
	closed bool
}

func (s *session) Restaurants() repository.RestaurantSet {
	return restaurantSet{s}
}

func (s *session) Products() repository.ProductSet {
	return productSet{s}
}

func (s *session) Close() error {
	s.closed = true
	s.Reset()
	return nil
}

// SaveChanges applies the staged changes to copies of the tables and swaps
// them in only when every change succeeded.
func (s *session) SaveChanges(ctx context.Context) error {
	if s.closed {
		return repository.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Len() == 0 {
		return nil
	}

	st := s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	restaurants := st.restaurants.clone()
	products := st.products.clone()
	var assign []func()
	ids := repository.PendingIDs{}

	for _, ch := range s.Pending() {
		switch {
		case ch.Restaurant != nil:
			a, err := applyRestaurant(restaurants, ids, ch.Op, ch.Restaurant)
			if err != nil {
				return fmt.Errorf("memory: %s restaurant: %w", ch.Op, err)
			}
			if a != nil {
				assign = append(assign, a)
			}
		case ch.Product != nil:
			a, err := applyProduct(products, ids, ch.Op, ch.Product)
			if err != nil {
				return fmt.Errorf("memory: %s product: %w", ch.Op, err)
			}
			if a != nil {
				assign = append(assign, a)
			}
		}
	}

	st.restaurants = restaurants
	st.products = products
	for _, a := range assign {
		a()
	}

	added, updated, removed := s.Counts()
	st.logger.Debug("changes saved",
		"store", "memory",
		"session", s.id,
		"added", added,
		"updated", updated,
		"removed", removed,
	)
	s.Reset()
	return nil
}

func applyRestaurant(t *table[models.Restaurant], ids repository.PendingIDs, op repository.Op, r *models.Restaurant) (func(), error) {
	switch op {
	case repository.OpAdd:
		id := t.nextID()
		row := *r
		row.ID = id
		t.insert(id, row)
		ids[r] = id
		return func() { r.ID = id }, nil
	case repository.OpUpdate:
		row := *r
		row.ID = ids.Resolve(r, r.ID)
		if !t.replace(row.ID, row) {
			return nil, repository.ErrRestaurantNotFound
		}
	case repository.OpRemove:
		if !t.delete(ids.Resolve(r, r.ID)) {
			return nil, repository.ErrRestaurantNotFound
		}
	}
	return nil, nil
}

func applyProduct(t *table[models.Product], ids repository.PendingIDs, op repository.Op, p *models.Product) (func(), error) {
	switch op {
	case repository.OpAdd:
		id := t.nextID()
		row := *p
		row.ID = id
		t.insert(id, row)
		ids[p] = id
		return func() { p.ID = id }, nil
	case repository.OpUpdate:
		row := *p
		row.ID = ids.Resolve(p, p.ID)
		if !t.replace(row.ID, row) {
			return nil, repository.ErrProductNotFound
		}
	case repository.OpRemove:
		if !t.delete(ids.Resolve(p, p.ID)) {
			return nil, repository.ErrProductNotFound
		}
	}
	return nil, nil
}

type restaurantSet struct{ s *session }

func (rs restaurantSet) Find(ctx context.Context, id int64) (*models.Restaurant, error) {
	if rs.s.closed {
		return nil, repository.ErrSessionClosed
	}
	st := rs.s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	row, ok := st.restaurants.get(id)
	if !ok {
		return nil, repository.ErrRestaurantNotFound
	}
	return &row, nil
}

func (rs restaurantSet) List(ctx context.Context) ([]models.Restaurant, error) {
	if rs.s.closed {
		return nil, repository.ErrSessionClosed
	}
	st := rs.s.store
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.restaurants.all(), nil
}

func (rs restaurantSet) Add(r *models.Restaurant)    { rs.s.StageRestaurant(repository.OpAdd, r) }
func (rs restaurantSet) Update(r *models.Restaurant) { rs.s.StageRestaurant(repository.OpUpdate, r) }
func (rs restaurantSet) Remove(r *models.Restaurant) { rs.s.StageRestaurant(repository.OpRemove, r) }

type productSet struct{ s *session }

func (ps productSet) Find(ctx context.Context, id int64) (*models.Product, error) {
	if ps.s.closed {
		return nil, repository.ErrSessionClosed
	}
	st := ps.s.store
	st.mu.Lock()
	defer st.mu.Unlock()

	row, ok := st.products.get(id)
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &row, nil
}

func (ps productSet) List(ctx context.Context) ([]models.Product, error) {
	if ps.s.closed {
		return nil, repository.ErrSessionClosed
	}
	st := ps.s.store
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.products.all(), nil
}

func (ps productSet) Add(p *models.Product)    { ps.s.StageProduct(repository.OpAdd, p) }
func (ps productSet) Update(p *models.Product) { ps.s.StageProduct(repository.OpUpdate, p) }
func (ps productSet) Remove(p *models.Product) { ps.s.StageProduct(repository.OpRemove, p) }
