package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/theaccountant/accountant/internal/model"
)

// Loans is the loan repository, scoped to the owning username.
type Loans struct {
	db *bun.DB
}

func NewLoans(db *bun.DB) *Loans {
	return &Loans{db: db}
}

func (r *Loans) Create(ctx context.Context, l *model.Loan) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	if _, err := r.db.NewInsert().Model(l).Exec(ctx); err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func (r *Loans) FindByID(ctx context.Context, id, username string) (*model.Loan, error) {
	loan := new(model.Loan)
	err := r.db.NewSelect().Model(loan).
		Where("id = ? AND username = ?", id, username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select loan: %w", err)
	}
	return loan, nil
}

func (r *Loans) FindAllForUser(ctx context.Context, username string) ([]model.Loan, error) {
	var loans []model.Loan
	err := r.db.NewSelect().Model(&loans).
		Where("username = ?", username).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select loans: %w", err)
	}
	return loans, nil
}

func (r *Loans) Update(ctx context.Context, l *model.Loan) error {
	res, err := r.db.NewUpdate().Model(l).
		Column("counterparty", "amount", "currency", "receiving", "active", "until_date").
		Where("id = ? AND username = ?", l.ID, l.Username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Loans) Delete(ctx context.Context, id, username string) error {
	res, err := r.db.NewDelete().Model((*model.Loan)(nil)).
		Where("id = ? AND username = ?", id, username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Loans) DeleteAllForUser(ctx context.Context, username string) error {
	if _, err := r.db.NewDelete().Model((*model.Loan)(nil)).
		Where("username = ?", username).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete loans: %w", err)
	}
	return nil
}
