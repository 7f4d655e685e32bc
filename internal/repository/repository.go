package repository

import (
	"context"
	"errors"

	"github.com/brntsllvn/devlunch/internal/models"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrSessionClosed      = errors.New("session closed")
)

// Store hands out one Session per request or test case.
type Store interface {
	Open(ctx context.Context) (Session, error)
	Close() error
}

// Session is a unit of work over the store. Changes staged through its
// collections are applied together by SaveChanges, in the order they were
// staged. A Session is not safe for concurrent use.
type Session interface {
	Restaurants() RestaurantSet
	Products() ProductSet

	// SaveChanges applies every staged add, update and remove in a single
	// transaction. Added entities receive their identifiers on success.
	SaveChanges(ctx context.Context) error

	// Close discards anything still staged. Calling it twice is harmless.
	Close() error
}

// RestaurantSet is the restaurant collection of a Session.
//
// Find returns a handle the caller may mutate; the mutation only reaches
// the store once the handle is passed to Update and SaveChanges succeeds.
// A handle passed to Add may be updated or removed before the commit that
// assigns its id; the changes apply in staging order.
type RestaurantSet interface {
	Find(ctx context.Context, id int64) (*models.Restaurant, error)
	List(ctx context.Context) ([]models.Restaurant, error)
	Add(r *models.Restaurant)
	Update(r *models.Restaurant)
	Remove(r *models.Restaurant)
}

// ProductSet is the product collection of a Session.
type ProductSet interface {
	Find(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Add(p *models.Product)
	Update(p *models.Product)
	Remove(p *models.Product)
}
