// Package identifier parses and mints the opaque record identifiers used as
// Record Store keys. Identifiers are MongoDB ObjectIDs rendered as 24
// lowercase hex characters.
package identifier

import (
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidIdentifier is returned when a raw string is not a well-formed
// identifier. It is a client error and never means "not found".
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ID is an opaque handle to a stored record.
type ID struct {
	oid primitive.ObjectID
}

// Parse validates raw and returns the identifier it encodes.
func Parse(raw string) (ID, error) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return ID{}, errors.Wrapf(ErrInvalidIdentifier, "%q", raw)
	}
	return ID{oid: oid}, nil
}

// New mints a fresh identifier.
func New() ID {
	return ID{oid: primitive.NewObjectID()}
}

// FromObjectID wraps a store-native key.
func FromObjectID(oid primitive.ObjectID) ID {
	return ID{oid: oid}
}

// ObjectID returns the store-native key.
func (id ID) ObjectID() primitive.ObjectID {
	return id.oid
}

// Hex returns the string form exposed to clients as "id".
func (id ID) Hex() string {
	return id.oid.Hex()
}

func (id ID) String() string {
	return id.Hex()
}

// IsZero reports whether id was never assigned.
func (id ID) IsZero() bool {
	return id.oid.IsZero()
}

// MarshalText renders id as hex so it serialises as a JSON string.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
