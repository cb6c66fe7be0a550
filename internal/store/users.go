package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	accountant "github.com/theaccountant/accountant"
	"github.com/theaccountant/accountant/internal/model"
)

// ErrDuplicateUser is returned by Users.Create when the username or email
// is already taken.
var ErrDuplicateUser = errors.New("username or email already registered")

// Users is the account repository. It also implements
// [accountant.UserProvider] for the session service.
type Users struct {
	db *bun.DB
}

func NewUsers(db *bun.DB) *Users {
	return &Users{db: db}
}

// Create inserts a new account. The ID is minted here when empty.
func (r *Users) Create(ctx context.Context, u *model.AppUser) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	exists, err := r.db.NewSelect().Model((*model.AppUser)(nil)).
		Where("username = ? OR email = ?", u.Username, u.Email).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return ErrDuplicateUser
	}

	if _, err := r.db.NewInsert().Model(u).Exec(ctx); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByUsername loads the full account row.
func (r *Users) FindByUsername(ctx context.Context, username string) (*model.AppUser, error) {
	user := new(model.AppUser)
	err := r.db.NewSelect().Model(user).Where("username = ?", username).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountant.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// FindByEmail loads the account registered under email.
func (r *Users) FindByEmail(ctx context.Context, email string) (*model.AppUser, error) {
	user := new(model.AppUser)
	err := r.db.NewSelect().Model(user).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountant.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// MarkActivated flips the activation flag. Activation-code delivery is
// outside this backend; operators or an upstream service call this.
func (r *Users) MarkActivated(ctx context.Context, username string) error {
	res, err := r.db.NewUpdate().Model((*model.AppUser)(nil)).
		Set("activated = ?", true).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("activate user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return accountant.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *Users) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	res, err := r.db.NewUpdate().Model((*model.AppUser)(nil)).
		Set("password_hash = ?", hash).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return accountant.ErrUserNotFound
	}
	return nil
}

// Delete removes the account row. Entity cleanup and session
// invalidation are the caller's responsibility.
func (r *Users) Delete(ctx context.Context, username string) error {
	res, err := r.db.NewDelete().Model((*model.AppUser)(nil)).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return accountant.ErrUserNotFound
	}
	return nil
}

// GetUserByUsername implements [accountant.UserProvider].
func (r *Users) GetUserByUsername(ctx context.Context, username string) (accountant.UserRecord, error) {
	user, err := r.FindByUsername(ctx, username)
	if err != nil {
		return accountant.UserRecord{}, err
	}
	return accountant.UserRecord{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Activated:    user.Activated,
	}, nil
}
