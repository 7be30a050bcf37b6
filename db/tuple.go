package db

import (
	"strings"

	"github.com/pkg/errors"
)

const noLocation = -1

// Tuple is one row of a table. Its fields are addressed by index in the
// order of its TupleDesc. Once stored, a tuple records the page and slot that
// hold it; after deletion that location is stale.
type Tuple struct {
	desc   *TupleDesc
	fields []Field
	pageID int
	slotID int
}

// NewTuple returns a tuple with every field unset.
func NewTuple(desc *TupleDesc) *Tuple {
	return &Tuple{
		desc:   desc,
		fields: make([]Field, desc.NumFields()),
		pageID: noLocation,
		slotID: noLocation,
	}
}

// NewTupleFrom builds a tuple from values given in field order.
func NewTupleFrom(desc *TupleDesc, values ...Field) (*Tuple, error) {
	if len(values) != desc.NumFields() {
		return nil, errors.Wrapf(ErrSchemaMismatch, "%d values for %d fields", len(values), desc.NumFields())
	}
	t := NewTuple(desc)
	for i, v := range values {
		if err := t.SetField(i, v); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ParseTuple converts one string per field into a tuple.
func ParseTuple(desc *TupleDesc, values []string) (*Tuple, error) {
	if len(values) != desc.NumFields() {
		return nil, errors.Wrapf(ErrSchemaMismatch, "%d values for %d fields", len(values), desc.NumFields())
	}
	t := NewTuple(desc)
	for i, s := range values {
		f, err := ParseField(desc.types[i], s)
		if err != nil {
			return nil, errors.WithMessagef(err, "field %d", i)
		}
		t.fields[i] = f
	}
	return t, nil
}

func (t *Tuple) TupleDesc() *TupleDesc {
	return t.desc
}

// SetField stores v as the i-th field. v must have the schema's type.
func (t *Tuple) SetField(i int, v Field) error {
	ft, err := t.desc.Type(i)
	if err != nil {
		return err
	}
	if v == nil || v.Type() != ft {
		return errors.Wrapf(ErrTypeMismatch, "field %d expects %s", i, ft)
	}
	t.fields[i] = v
	return nil
}

// Field returns the i-th field, or nil if it has not been set.
func (t *Tuple) Field(i int) (Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, errors.Wrapf(ErrNoSuchField, "field index %d", i)
	}
	return t.fields[i], nil
}

func (t *Tuple) SetFieldByName(name string, v Field) error {
	i, err := t.desc.NameToIndex(name)
	if err != nil {
		return err
	}
	return t.SetField(i, v)
}

func (t *Tuple) FieldByName(name string) (Field, error) {
	i, err := t.desc.NameToIndex(name)
	if err != nil {
		return nil, err
	}
	return t.fields[i], nil
}

// Fields returns a copy of the field values in schema order.
func (t *Tuple) Fields() []Field {
	fields := make([]Field, len(t.fields))
	copy(fields, t.fields)
	return fields
}

func (t *Tuple) complete() bool {
	for _, f := range t.fields {
		if f == nil {
			return false
		}
	}
	return true
}

// PageID returns the id of the page holding the tuple, or -1.
func (t *Tuple) PageID() int {
	return t.pageID
}

// SlotID returns the slot holding the tuple within its page, or -1.
func (t *Tuple) SlotID() int {
	return t.slotID
}

// SetLocation records where the tuple is stored.
func (t *Tuple) SetLocation(pageID, slotID int) {
	t.pageID = pageID
	t.slotID = slotID
}

// Stored reports whether the tuple has been assigned a page and a slot.
func (t *Tuple) Stored() bool {
	return t.pageID != noLocation && t.slotID != noLocation
}

// String renders the fields separated by tabs.
func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		if f == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = f.String()
	}
	return strings.Join(parts, "\t")
}
