package db

import (
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/v3/assert"
)

func mustDesc(t *testing.T, types []FieldType, names []string) *TupleDesc {
	t.Helper()
	desc, err := NewTupleDesc(types, names)
	assert.NilError(t, err)
	return desc
}

func TestTupleDescSize(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType}, []string{"id"})
	assert.Equal(t, 4, desc.Size())

	desc = mustDesc(t, []FieldType{IntType, StringType, IntType}, nil)
	assert.Equal(t, 4+129+4, desc.Size())
	assert.Equal(t, 3, desc.NumFields())
}

func TestTupleDescInvalid(t *testing.T) {
	_, err := NewTupleDesc(nil, nil)
	assert.Assert(t, errors.Is(err, ErrInvalidSchema))

	_, err = NewTupleDesc([]FieldType{IntType}, []string{"a", "b"})
	assert.Assert(t, errors.Is(err, ErrInvalidSchema))

	_, err = NewTupleDesc([]FieldType{FieldType(9)}, nil)
	assert.Assert(t, errors.Is(err, ErrInvalidSchema))
}

func TestTupleDescTooWide(t *testing.T) {
	types := make([]FieldType, 32)
	for i := range types {
		types[i] = StringType
	}
	_, err := NewTupleDesc(types, nil)
	assert.Assert(t, errors.Is(err, ErrInvalidSchema))

	desc := mustDesc(t, types[:31], nil)
	assert.Equal(t, 1, NumSlotsFor(desc))
	assert.Assert(t, HeaderSizeFor(desc)+desc.Size() <= PageSize)
}

func TestTupleDescEqual(t *testing.T) {
	a := mustDesc(t, []FieldType{IntType, StringType}, []string{"id", "name"})
	b := mustDesc(t, []FieldType{IntType, StringType}, []string{"x", "y"})
	c := mustDesc(t, []FieldType{StringType, IntType}, nil)
	d := mustDesc(t, []FieldType{IntType}, nil)

	assert.Assert(t, a.Equal(b))
	assert.Assert(t, !a.Equal(c))
	assert.Assert(t, !a.Equal(d))
	assert.Assert(t, !a.Equal(nil))
}

func TestTupleDescNames(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType, StringType, IntType}, []string{"id", "name", "id"})

	i, err := desc.NameToIndex("id")
	assert.NilError(t, err)
	assert.Equal(t, 0, i)

	i, err = desc.NameToIndex("name")
	assert.NilError(t, err)
	assert.Equal(t, 1, i)

	_, err = desc.NameToIndex("missing")
	assert.Assert(t, errors.Is(err, ErrNoSuchField))

	name, err := desc.FieldName(1)
	assert.NilError(t, err)
	assert.Equal(t, "name", name)

	_, err = desc.Type(3)
	assert.Assert(t, errors.Is(err, ErrNoSuchField))

	assert.Equal(t, "INT(id), STRING(name), INT(id)", desc.String())
}

func TestTupleDescUnnamed(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType, IntType}, nil)
	_, err := desc.NameToIndex("")
	assert.Assert(t, errors.Is(err, ErrNoSuchField))
	assert.Equal(t, "INT(), INT()", desc.String())
}
