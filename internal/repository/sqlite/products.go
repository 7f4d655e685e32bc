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

const productsTable = "products"

var productColumns = []string{"id", "name", "price", "category"}

type productSet struct{ s *session }

func (ps productSet) Find(ctx context.Context, id int64) (*models.Product, error) {
	if ps.s.closed {
		return nil, repository.ErrSessionClosed
	}
	query, args, err := squirrel.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build find product: %w", err)
	}
	var p models.Product
	if err := sqlscan.Get(ctx, ps.s.store.db, &p, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("sqlite: find product: %w", err)
	}
	return &p, nil
}

func (ps productSet) List(ctx context.Context) ([]models.Product, error) {
	if ps.s.closed {
		return nil, repository.ErrSessionClosed
	}
	query, args, err := squirrel.Select(productColumns...).
		From(productsTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build list products: %w", err)
	}
	var out []models.Product
	if err := sqlscan.Select(ctx, ps.s.store.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	if out == nil {
		out = []models.Product{}
	}
	return out, nil
}

func (ps productSet) Add(p *models.Product)    { ps.s.StageProduct(repository.OpAdd, p) }
func (ps productSet) Update(p *models.Product) { ps.s.StageProduct(repository.OpUpdate, p) }
func (ps productSet) Remove(p *models.Product) { ps.s.StageProduct(repository.OpRemove, p) }

func applyProduct(ctx context.Context, tx *sql.Tx, ids repository.PendingIDs, op repository.Op, p *models.Product) (func(), error) {
	id := ids.Resolve(p, p.ID)
	switch op {
	case repository.OpAdd:
		query, args, err := squirrel.Insert(productsTable).
			Columns("name", "price", "category").
			Values(p.Name, p.Price, p.Category).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("sqlite: build insert product: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: insert product: %w", err)
		}
		newID, err := lastInsertID(res, "insert product")
		if err != nil {
			return nil, err
		}
		ids[p] = newID
		return func() { p.ID = newID }, nil

	case repository.OpUpdate:
		query, args, err := squirrel.Update(productsTable).
			Set("name", p.Name).
			Set("price", p.Price).
			Set("category", p.Category).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("sqlite: build update product: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: update product: %w", err)
		}
		return nil, expectOneRow(res, "update product", repository.ErrProductNotFound)

	case repository.OpRemove:
		query, args, err := squirrel.Delete(productsTable).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("sqlite: build delete product: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlite: delete product: %w", err)
		}
		return nil, expectOneRow(res, "delete product", repository.ErrProductNotFound)
	}
	return nil, fmt.Errorf("sqlite: unsupported op %s", op)
}
