package models

import (
	"fmt"
	"net/mail"
	"strings"
)

// User is a registered account in the media library.
type User struct {
	entity
	email string
	name  string
}

// NewUser creates a [User] with the given sequence, email and display name.
func NewUser(sequence int, email, name string) *User {
	return &User{entity: newEntity(sequence), email: strings.TrimSpace(email), name: strings.TrimSpace(name)}
}

func (u *User) Email() string { return u.email }
func (u *User) Name() string  { return u.name }

func (u *User) SetEmail(email string) { u.email = strings.TrimSpace(email) }
func (u *User) SetName(name string)   { u.name = strings.TrimSpace(name) }

// Validate checks that the user has an ID, a well-formed email and a name.
func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("user ID is required")
	}
	if u.email == "" {
		return fmt.Errorf("user email is required")
	}
	if _, err := mail.ParseAddress(u.email); err != nil {
		return fmt.Errorf("invalid email %q: %w", u.email, err)
	}
	if u.name == "" {
		return fmt.Errorf("user name is required")
	}
	return nil
}
