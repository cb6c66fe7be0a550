package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/theaccountant/accountant/internal/model"
)

// ErrNotFound is returned when an entity row does not exist for the
// requesting user.
var ErrNotFound = errors.New("record not found")

// Categories is the category repository. All queries are scoped to the
// owning username; a caller can never reach another user's rows.
type Categories struct {
	db *bun.DB
}

func NewCategories(db *bun.DB) *Categories {
	return &Categories{db: db}
}

func (r *Categories) Create(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := r.db.NewInsert().Model(c).Exec(ctx); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Categories) FindByID(ctx context.Context, id, username string) (*model.Category, error) {
	category := new(model.Category)
	err := r.db.NewSelect().Model(category).
		Where("id = ? AND username = ?", id, username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select category: %w", err)
	}
	return category, nil
}

func (r *Categories) FindByName(ctx context.Context, name, username string) (*model.Category, error) {
	category := new(model.Category)
	err := r.db.NewSelect().Model(category).
		Where("name = ? AND username = ?", name, username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select category: %w", err)
	}
	return category, nil
}

func (r *Categories) FindAllForUser(ctx context.Context, username string) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.NewSelect().Model(&categories).
		Where("username = ?", username).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return categories, nil
}

func (r *Categories) Update(ctx context.Context, c *model.Category) error {
	res, err := r.db.NewUpdate().Model(c).
		Column("name", "colour", "threshold").
		Where("id = ? AND username = ?", c.ID, c.Username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Categories) Delete(ctx context.Context, id, username string) error {
	res, err := r.db.NewDelete().Model((*model.Category)(nil)).
		Where("id = ? AND username = ?", id, username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Categories) DeleteAllForUser(ctx context.Context, username string) error {
	if _, err := r.db.NewDelete().Model((*model.Category)(nil)).
		Where("username = ?", username).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	return nil
}
