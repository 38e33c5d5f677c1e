package domain

import "fmt"

// Field names a mutable column of the user record. Only the three fields
// below may be changed after creation; email and id are rejected.
type Field string

const (
	FieldSessionToken   Field = "session_token"
	FieldResetToken     Field = "reset_token"
	FieldHashedPassword Field = "hashed_password"
)

// mutableFields is the closed set of fields UpdateFields will accept.
var mutableFields = map[Field]struct{}{
	FieldSessionToken:   {},
	FieldResetToken:     {},
	FieldHashedPassword: {},
}

// Changeset is an explicit set of field updates applied atomically to one
// user record. A nil value clears the field; a non-nil value replaces it.
type Changeset map[Field]*string

// Set records a replacement value for field.
func (c Changeset) Set(field Field, value string) Changeset {
	c[field] = &value
	return c
}

// Clear records removal of field's value.
func (c Changeset) Clear(field Field) Changeset {
	c[field] = nil
	return c
}

// Validate checks every key against the mutable-field set. A hashed
// password may be replaced but never cleared or blanked.
func (c Changeset) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: empty changeset", ErrInvalidField)
	}
	for field, value := range c {
		if _, ok := mutableFields[field]; !ok {
			return fmt.Errorf("%w: %q", ErrInvalidField, string(field))
		}
		if field == FieldHashedPassword && (value == nil || *value == "") {
			return fmt.Errorf("%w: hashed_password cannot be cleared", ErrInvalidField)
		}
	}
	return nil
}
