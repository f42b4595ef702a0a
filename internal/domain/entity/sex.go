package entity

// Sex is stored by its name, never by position, so reordering the constants is safe.
type Sex string

const (
	// SexUnspecified marks an absent value; it persists as NULL.
	SexUnspecified Sex = ""
	// SexFemale is persisted as "FEMALE".
	SexFemale Sex = "FEMALE"
	// SexMale is persisted as "MALE".
	SexMale Sex = "MALE"
)

// String returns the persisted token.
func (s Sex) String() string {
	return string(s)
}

// IsValid reports whether s is one of the named variants.
func (s Sex) IsValid() bool {
	switch s {
	case SexFemale, SexMale:
		return true
	default:
		return false
	}
}

// IsSpecified reports whether a value was set.
func (s Sex) IsSpecified() bool {
	return s != SexUnspecified
}

// ParseSex converts a persisted token back to a Sex. Empty input yields SexUnspecified.
func ParseSex(s string) (Sex, bool) {
	if s == "" {
		return SexUnspecified, true
	}
	sex := Sex(s)

	return sex, sex.IsValid()
}
