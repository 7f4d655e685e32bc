package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/brntsllvn/devlunch/internal/models"
	"github.com/brntsllvn/devlunch/internal/repository"
	"github.com/brntsllvn/devlunch/internal/validation"
)

var (
	ErrMissingIdentifier = errors.New("restaurant id is required")
)

// RestaurantService implements the restaurant actions over one session.
// Every action performs at most one lookup and at most one SaveChanges.
type RestaurantService struct {
	session   repository.Session
	validator *validation.Validator
}

// NewRestaurantService creates a service bound to session. A nil validator
// means the default rules.
func NewRestaurantService(session repository.Session, validator *validation.Validator) *RestaurantService {
	if validator == nil {
		validator = validation.New()
	}
	return &RestaurantService{
		session:   session,
		validator: validator,
	}
}

// List returns every restaurant in commit order
func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	restaurants, err := s.session.Restaurants().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return restaurants, nil
}

// Detail returns the restaurant with the given id.
// A nil id yields ErrMissingIdentifier without touching the store.
func (s *RestaurantService) Detail(ctx context.Context, id *int64) (*models.Restaurant, error) {
	return s.find(ctx, id)
}

// CreateForm returns the blank restaurant shown on the create form
func (s *RestaurantService) CreateForm() models.Restaurant {
	return models.Restaurant{}
}

// Create validates r, stages it and commits. On success r.ID holds the
// assigned identifier. On validation failure nothing is staged and r is
// left untouched.
func (s *RestaurantService) Create(ctx context.Context, r *models.Restaurant) error {
	if err := s.validator.Validate(*r); err != nil {
		return err
	}
	s.session.Restaurants().Add(r)
	if err := s.session.SaveChanges(ctx); err != nil {
		return fmt.Errorf("create restaurant: %w", err)
	}
	return nil
}

// EditForm returns the restaurant to show on the edit form
func (s *RestaurantService) EditForm(ctx context.Context, id *int64) (*models.Restaurant, error) {
	return s.find(ctx, id)
}

// Edit copies Name, Longitude and Latitude from edited onto the stored
// restaurant and commits. The identifier never changes.
func (s *RestaurantService) Edit(ctx context.Context, id *int64, edited models.Restaurant) (*models.Restaurant, error) {
	stored, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(edited); err != nil {
		return nil, err
	}

	stored.Name = edited.Name
	stored.Longitude = edited.Longitude
	stored.Latitude = edited.Latitude

	s.session.Restaurants().Update(stored)
	if err := s.session.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("edit restaurant %d: %w", stored.ID, err)
	}
	return stored, nil
}

// Delete removes the restaurant with the given id and commits
func (s *RestaurantService) Delete(ctx context.Context, id *int64) error {
	restaurant, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	s.session.Restaurants().Remove(restaurant)
	if err := s.session.SaveChanges(ctx); err != nil {
		return fmt.Errorf("delete restaurant %d: %w", restaurant.ID, err)
	}
	return nil
}

func (s *RestaurantService) find(ctx context.Context, id *int64) (*models.Restaurant, error) {
	if id == nil {
		return nil, ErrMissingIdentifier
	}
	restaurant, err := s.session.Restaurants().Find(ctx, *id)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find restaurant %d: %w", *id, err)
	}
	return restaurant, nil
}
