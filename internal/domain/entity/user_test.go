package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_Equal(t *testing.T) {
	birth := time.Date(1992, 5, 10, 0, 0, 0, 0, time.UTC)
	unsaved := NewUser("Ana", "Silva", birth, SexFemale)
	unsavedCopy := unsaved.Clone()

	tests := []struct {
		name  string
		left  *User
		right *User
		want  bool
	}{
		{name: "same pointer without id", left: unsaved, right: unsaved, want: true},
		{name: "value copy without id", left: unsaved, right: unsavedCopy, want: false},
		{name: "same id", left: &User{ID: 7, FirstName: "Ana"}, right: &User{ID: 7, FirstName: "Other"}, want: true},
		{name: "different id", left: &User{ID: 7}, right: &User{ID: 8}, want: false},
		{name: "one side unsaved", left: &User{ID: 7}, right: &User{}, want: false},
		{name: "nil right", left: &User{ID: 7}, right: nil, want: false},
		{name: "both nil", left: nil, right: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.left.Equal(tt.right))
		})
	}
}

func TestUser_String(t *testing.T) {
	u := &User{ID: 3, FirstName: "Luiz", LastName: "dos Santos"}

	assert.Equal(t, "User [id=3, firstName=Luiz, lastName=dos Santos]", u.String())
}

func TestUser_CloneIsIndependent(t *testing.T) {
	u := &User{ID: 1, FirstName: "Mariana"}
	c := u.Clone()
	c.FirstName = "Changed"

	assert.Equal(t, "Mariana", u.FirstName)
	assert.Nil(t, (*User)(nil).Clone())
}

func TestParseSex(t *testing.T) {
	tests := []struct {
		in     string
		want   Sex
		wantOK bool
	}{
		{in: "FEMALE", want: SexFemale, wantOK: true},
		{in: "MALE", want: SexMale, wantOK: true},
		{in: "", want: SexUnspecified, wantOK: true},
		{in: "female", want: Sex("female"), wantOK: false},
		{in: "0", want: Sex("0"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSex(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	in := time.Date(1992, 5, 10, 23, 30, 0, 0, loc)

	got := DateOnly(in)

	assert.Equal(t, time.Date(1992, 5, 10, 0, 0, 0, 0, time.UTC), got)
	assert.True(t, DateOnly(time.Time{}).IsZero())
}
