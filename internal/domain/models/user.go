package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	Password         []byte    `db:"password" json:"-"`
	RegistrationDate time.Time `db:"registration_date,omitempty" json:"registration_date,omitempty"`
	LastLogin        time.Time `db:"last_login,omitempty" json:"last_login,omitempty"`
}
