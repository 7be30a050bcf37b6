package db

import (
	"strings"

	"github.com/pkg/errors"
)

// TupleDesc describes the shape of a tuple: an ordered list of field types
// with optional names. A TupleDesc is immutable and may be shared.
type TupleDesc struct {
	types []FieldType
	names []string
	size  int
}

// NewTupleDesc returns a descriptor with len(types) fields. names may be nil
// or shorter than types; missing names are empty.
func NewTupleDesc(types []FieldType, names []string) (*TupleDesc, error) {
	if len(types) == 0 {
		return nil, errors.Wrap(ErrInvalidSchema, "schema needs at least one field")
	}
	if len(names) > len(types) {
		return nil, errors.Wrapf(ErrInvalidSchema, "%d names for %d fields", len(names), len(types))
	}
	td := &TupleDesc{
		types: make([]FieldType, len(types)),
		names: make([]string, len(types)),
	}
	copy(td.types, types)
	copy(td.names, names)
	for i, ft := range td.types {
		if !ft.valid() {
			return nil, errors.Wrapf(ErrInvalidSchema, "field %d has unknown type %d", i, int(ft))
		}
		td.size += ft.Width()
	}
	if td.size*8+1 > PageSize*8 {
		return nil, errors.Wrapf(ErrInvalidSchema, "tuple of %d bytes does not fit a %d byte page", td.size, PageSize)
	}
	return td, nil
}

func (td *TupleDesc) NumFields() int {
	return len(td.types)
}

// Type returns the type of the i-th field.
func (td *TupleDesc) Type(i int) (FieldType, error) {
	if i < 0 || i >= len(td.types) {
		return 0, errors.Wrapf(ErrNoSuchField, "field index %d", i)
	}
	return td.types[i], nil
}

// FieldName returns the possibly empty name of the i-th field.
func (td *TupleDesc) FieldName(i int) (string, error) {
	if i < 0 || i >= len(td.names) {
		return "", errors.Wrapf(ErrNoSuchField, "field index %d", i)
	}
	return td.names[i], nil
}

// NameToIndex returns the index of the first field called name.
func (td *TupleDesc) NameToIndex(name string) (int, error) {
	if name != "" {
		for i, n := range td.names {
			if n == name {
				return i, nil
			}
		}
	}
	return -1, errors.Wrapf(ErrNoSuchField, "field %q", name)
}

// Size returns the number of bytes a tuple of this shape occupies on a page.
func (td *TupleDesc) Size() int {
	return td.size
}

// Equal reports whether both descriptors have the same field types in the
// same order. Names are ignored.
func (td *TupleDesc) Equal(other *TupleDesc) bool {
	if td == other {
		return true
	}
	if td == nil || other == nil || len(td.types) != len(other.types) {
		return false
	}
	for i := range td.types {
		if td.types[i] != other.types[i] {
			return false
		}
	}
	return true
}

func (td *TupleDesc) String() string {
	parts := make([]string, len(td.types))
	for i, ft := range td.types {
		parts[i] = ft.String() + "(" + td.names[i] + ")"
	}
	return strings.Join(parts, ", ")
}
