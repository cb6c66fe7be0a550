// Package model defines the bun table models for the finance entities.
package model

import (
	"time"

	"github.com/uptrace/bun"
)

// AppUser is a registered account. PasswordHash holds the argon2id PHC
// string; the plaintext never reaches this layer. Accounts start
// unactivated and cannot log in until Activated is set.
type AppUser struct {
	bun.BaseModel `bun:"table:app_user,alias:au" json:"-"`

	ID              string     `bun:"id,pk,type:uuid" json:"id"`
	Username        string     `bun:"username,notnull,unique" json:"username"`
	Email           string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash    string     `bun:"password_hash,notnull" json:"-"`
	FirstName       string     `bun:"first_name" json:"firstName"`
	Surname         string     `bun:"surname" json:"surname"`
	Birthdate       *time.Time `bun:"birthdate" json:"birthdate,omitempty"`
	Activated       bool       `bun:"activated,notnull,default:false" json:"activated"`
	DefaultCurrency string     `bun:"default_currency,notnull,default:'USD'" json:"defaultCurrency"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
