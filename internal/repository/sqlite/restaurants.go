package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/brntsllvn/devlunch/internal/models"
	"github.com/brntsllvn/devlunch/internal/repository"
	"github.com/georgysavva/scany/v2/sqlscan"
)

const restaurantsTable = "restaurants"

var restaurantColumns = []string{"id", "name", "longitude", "latitude"}

type restaurantSet struct{ s *session }

func (rs restaurantSet) Find(ctx context.Context, id int64) (*models.Restaurant, error) {
	if rs.s.closed {
		return nil, repository.ErrSessionClosed
	}
	query, args, err := squirrel.Select(restaurantColumns...).
		From(restaurantsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build find restaurant: %w", err)
	}
	var r models.Restaurant
	if err := sqlscan.Get(ctx, rs.s.store.db, &r, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, repository.ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("sqlite: find restaurant: %w", err)
	}
	return &r, nil
}

func (rs restaurantSet) List(ctx context.Context) ([]models.Restaurant, error) {
	if rs.s.closed {
		return nil, repository.ErrSessionClosed
	}
	query, args, err := squirrel.Select(restaurantColumns...).
		From(restaurantsTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build list restaurants: %w", err)
	}
	var out []models.Restaurant
	if err := sqlscan.Select(ctx, rs.s.store.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list restaurants: %w", err)
	}
	if out == nil {
		out = []models.Restaurant{}
	}
	return out, nil
}

func (rs restaurantSet) Add(r *models.Restaurant)    { rs.s.StageRestaurant(repository.OpAdd, r) }
func (rs restaurantSet) Update(r *models.Restaurant) { rs.s.StageRestaurant(repository.OpUpdate, r) }
func (rs restaurantSet) Remove(r *models.Restaurant) { rs.s.StageRestaurant(repository.OpRemove, r) }

func applyRestaurant(ctx context.Context, tx *sql.Tx, ids repository.PendingIDs, op repository.Op, r *models.Restaurant) (func(), error) {
	id := ids.Resolve(r, r.ID)
	switch op {
	case repository.OpAdd:
		query, args, err := squirrel.Insert(restaurantsTable).
			Columns("name", "longitude", "latitude").
			Values(r.Name, r.Longitude, r.Latitude).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("sqlite: build insert restaurant: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: insert restaurant: %w", err)
		}
		newID, err := lastInsertID(res, "insert restaurant")
		if err != nil {
			return nil, err
		}
		ids[r] = newID
		return func() { r.ID = newID }, nil

	case repository.OpUpdate:
		query, args, err := squirrel.Update(restaurantsTable).
			Set("name", r.Name).
			Set("longitude", r.Longitude).
			Set("latitude", r.Latitude).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("sqlite: build update restaurant: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: update restaurant: %w", err)
		}
		return nil, expectOneRow(res, "update restaurant", repository.ErrRestaurantNotFound)

	case repository.OpRemove:
		query, args, err := squirrel.Delete(restaurantsTable).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("sqlite: build delete restaurant: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: delete restaurant: %w", err)
		}
		return nil, expectOneRow(res, "delete restaurant", repository.ErrRestaurantNotFound)
	}
	return nil, fmt.Errorf("sqlite: unsupported op %s", op)
}
