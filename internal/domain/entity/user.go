// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"fmt"
	"time"
)

// Length bounds shared by FirstName and LastName.
const (
	NameMinLength = 3
	NameMaxLength = 50
)

// User is the single record type kept by the store.
// A zero ID means the user has not been persisted yet.
type User struct {
	ID        uint64    `json:"id"`
	FirstName string    `json:"firstName" validate:"notblank,min=3,max=50"`
	LastName  string    `json:"lastName" validate:"notblank,min=3,max=50"`
	BirthDate time.Time `json:"birthDate" validate:"required"` // Only the calendar date is persisted.
	Sex       Sex       `json:"sex,omitempty" validate:"omitempty,oneof=FEMALE MALE"`
}

// NewUser builds an unsaved user.
func NewUser(firstName, lastName string, birthDate time.Time, sex Sex) *User {
	return &User{
		FirstName: firstName,
		LastName:  lastName,
		BirthDate: birthDate,
		Sex:       sex,
	}
}

// IsPersisted reports whether the store has assigned an ID.
func (u *User) IsPersisted() bool {
	return u != nil && u.ID != 0
}

// Equal compares users by identity key. Unsaved users are only equal to themselves.
func (u *User) Equal(other *User) bool {
	if u == other {
		return true
	}
	if !u.IsPersisted() || !other.IsPersisted() {
		return false
	}

	return u.ID == other.ID
}

// String implements fmt.Stringer.
func (u *User) String() string {
	if u == nil {
		return "User <nil>"
	}

	return fmt.Sprintf("User [id=%d, firstName=%s, lastName=%s]", u.ID, u.FirstName, u.LastName)
}

// Clone returns a copy that shares no state with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cloned := *u

	return &cloned
}

// DateOnly drops the time of day, keeping the calendar date as written by the caller.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
