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

// Incomes is the income repository, scoped to the owning username.
type Incomes struct {
	db *bun.DB
}

func NewIncomes(db *bun.DB) *Incomes {
	return &Incomes{db: db}
}

func (r *Incomes) Create(ctx context.Context, i *model.Income) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now()
	}
	if _, err := r.db.NewInsert().Model(i).Exec(ctx); err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	return nil
}

func (r *Incomes) FindByID(ctx context.Context, id, username string) (*model.Income, error) {
	income := new(model.Income)
	err := r.db.NewSelect().Model(income).
		Where("id = ? AND username = ?", id, username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select income: %w", err)
	}
	return income, nil
}

func (r *Incomes) FindAllForUser(ctx context.Context, username string) ([]model.Income, error) {
	var incomes []model.Income
	err := r.db.NewSelect().Model(&incomes).
		Where("username = ?", username).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select incomes: %w", err)
	}
	return incomes, nil
}

// FindRecurrentDue returns recurring incomes due on the given day of
// month: monthly entries ("*") matching the start day, and interval
// entries whose month distance from the start month is a multiple of the
// interval.
func (r *Incomes) FindRecurrentDue(ctx context.Context, day, month int) ([]model.Income, error) {
	var incomes []model.Income
	err := r.db.NewSelect().Model(&incomes).
		Where("frequency != ''").
		Where("start_day = ?", day).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select recurrent incomes: %w", err)
	}

	due := incomes[:0]
	for _, income := range incomes {
		if income.Frequency == "*" {
			due = append(due, income)
			continue
		}
		interval := 0
		if _, err := fmt.Sscanf(income.Frequency, "%d", &interval); err != nil || interval <= 0 {
			continue
		}
		delta := month - income.StartMonth
		if delta < 0 {
			delta += 12
		}
		if delta%interval == 0 {
			due = append(due, income)
		}
	}
	return due, nil
}

func (r *Incomes) Update(ctx context.Context, i *model.Income) error {
	res, err := r.db.NewUpdate().Model(i).
		Column("name", "amount", "currency", "default_currency_amount", "description", "frequency", "start_day", "start_month").
		Where("id = ? AND username = ?", i.ID, i.Username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Incomes) Delete(ctx context.Context, id, username string) error {
	res, err := r.db.NewDelete().Model((*model.Income)(nil)).
		Where("id = ? AND username = ?", id, username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Incomes) DeleteAllForUser(ctx context.Context, username string) error {
	if _, err := r.db.NewDelete().Model((*model.Income)(nil)).
		Where("username = ?", username).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete incomes: %w", err)
	}
	return nil
}
