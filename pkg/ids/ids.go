// Package ids provides the strong identifier used for every booking entity.
package ids

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalid = errors.New("invalid id")

// ID is a UUID-backed identifier. The zero value is not a valid reference.
type ID uuid.UUID

var Nil ID

func New() ID {
	return ID(uuid.New())
}

// Parse validates s and rejects the nil UUID.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	if u == uuid.Nil {
		return Nil, fmt.Errorf("%w: nil uuid", ErrInvalid)
	}
	return ID(u), nil
}

func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) IsZero() bool { return id == Nil }

func (id ID) String() string { return uuid.UUID(id).String() }

func (id ID) UUID() uuid.UUID { return uuid.UUID(id) }

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText accepts the nil UUID so the text form round-trips; callers
// validating input check IsZero.
func (id *ID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalid, b)
	}
	*id = ID(u)
	return nil
}

// Value encodes the id as text for uuid columns.
func (id ID) Value() (driver.Value, error) {
	return id.String(), nil
}

func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalid, v)
		}
		*id = ID(u)
	case []byte:
		if len(v) == 16 {
			copy(id[:], v)
			return nil
		}
		u, err := uuid.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalid, v)
		}
		*id = ID(u)
	case [16]byte:
		*id = ID(v)
	case nil:
		*id = Nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalid, src)
	}
	return nil
}

// Contains reports whether list holds id.
func Contains(list []ID, id ID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
