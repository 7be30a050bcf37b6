package db

import (
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/v3/assert"
)

const testTableID = 1

func newTestPage(t *testing.T, desc *TupleDesc) (*HeapPage, *MemCatalog) {
	t.Helper()
	cat := NewMemCatalog()
	cat.AddTable(testTableID, desc)
	page, err := NewEmptyHeapPage(0, testTableID, cat)
	assert.NilError(t, err)
	return page, cat
}

func intTuple(t *testing.T, desc *TupleDesc, v int32) *Tuple {
	t.Helper()
	tup, err := NewTupleFrom(desc, IntField{Value: v})
	assert.NilError(t, err)
	return tup
}

func TestPageCapacity(t *testing.T) {
	fixture := []struct {
		types    []FieldType
		slots    int
		hdrBytes int
	}{
		{[]FieldType{IntType}, 992, 124},
		{[]FieldType{StringType}, 31, 4},
		{[]FieldType{IntType, StringType}, 30, 4},
		{[]FieldType{IntType, IntType, IntType}, 337, 43},
	}
	for _, fx := range fixture {
		desc := mustDesc(t, fx.types, nil)
		page, _ := newTestPage(t, desc)
		assert.Equal(t, fx.slots, page.NumSlots())
		assert.Equal(t, fx.hdrBytes, page.HeaderSize())
		assert.Assert(t, page.HeaderSize()+page.NumSlots()*desc.Size() <= PageSize)
	}
}

func TestPage(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType}, []string{"id"})
	page, _ := newTestPage(t, desc)
	assert.Equal(t, page.NumSlots(), page.NumEmptySlots())
	assert.Equal(t, 0, page.Iterator().Len())

	fixture := []int32{10, 20, 30}
	for i, v := range fixture {
		tup := intTuple(t, desc, v)
		assert.NilError(t, page.AddTuple(tup))
		assert.Equal(t, i, tup.SlotID())
		assert.Assert(t, page.SlotOccupied(i))
	}
	assert.Equal(t, page.NumSlots()-len(fixture), page.NumEmptySlots())

	it := page.Iterator()
	for _, v := range fixture {
		assert.Assert(t, it.Next())
		assert.DeepEqual(t, []Field{IntField{Value: v}}, it.Tuple().Fields())
	}
	assert.Assert(t, !it.Next())
}

func TestPageAddTupleFirstFreeSlot(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType}, nil)
	page, _ := newTestPage(t, desc)

	var tuples []*Tuple
	for i := 0; i < 4; i++ {
		tup := intTuple(t, desc, int32(i))
		assert.NilError(t, page.AddTuple(tup))
		tup.SetLocation(page.ID(), tup.SlotID())
		tuples = append(tuples, tup)
	}
	assert.NilError(t, page.DeleteTuple(tuples[1]))
	assert.Assert(t, !page.SlotOccupied(1))

	tup := intTuple(t, desc, 99)
	assert.NilError(t, page.AddTuple(tup))
	assert.Equal(t, 1, tup.SlotID())

	tup = intTuple(t, desc, 100)
	assert.NilError(t, page.AddTuple(tup))
	assert.Equal(t, 4, tup.SlotID())
}

func TestPageFull(t *testing.T) {
	desc := mustDesc(t, []FieldType{StringType}, nil)
	page, _ := newTestPage(t, desc)
	for i := 0; i < page.NumSlots(); i++ {
		tup, err := NewTupleFrom(desc, NewStringField("s"))
		assert.NilError(t, err)
		assert.NilError(t, page.AddTuple(tup))
	}
	assert.Equal(t, 0, page.NumEmptySlots())

	tup, err := NewTupleFrom(desc, NewStringField("one too many"))
	assert.NilError(t, err)
	err = page.AddTuple(tup)
	assert.Assert(t, errors.Is(err, ErrPageFull))
	assert.Equal(t, -1, tup.SlotID())
}

func TestPageSchemaMismatch(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType}, nil)
	page, _ := newTestPage(t, desc)
	assert.NilError(t, page.AddTuple(intTuple(t, desc, 1)))
	before, err := page.PageData()
	assert.NilError(t, err)

	other := mustDesc(t, []FieldType{IntType, IntType}, nil)
	tup, err := NewTupleFrom(other, IntField{Value: 1}, IntField{Value: 2})
	assert.NilError(t, err)
	err = page.AddTuple(tup)
	assert.Assert(t, errors.Is(err, ErrSchemaMismatch))

	after, err := page.PageData()
	assert.NilError(t, err)
	assert.DeepEqual(t, before, after)
	assert.Equal(t, 1, page.Iterator().Len())
}

func TestPageAddIncompleteTuple(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType, IntType}, nil)
	page, _ := newTestPage(t, desc)
	tup := NewTuple(desc)
	assert.NilError(t, tup.SetField(0, IntField{Value: 1}))

	err := page.AddTuple(tup)
	assert.Assert(t, errors.Is(err, ErrIncompleteTuple))
	assert.Assert(t, !page.SlotOccupied(0))
}

func TestPageDeleteTuple(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType}, nil)
	page, _ := newTestPage(t, desc)
	tup := intTuple(t, desc, 5)
	assert.NilError(t, page.AddTuple(tup))

	err := page.DeleteTuple(tup)
	assert.Assert(t, errors.Is(err, ErrPageMismatch))

	tup.SetLocation(page.ID(), tup.SlotID())
	assert.NilError(t, page.DeleteTuple(tup))
	assert.Assert(t, !page.SlotOccupied(0))

	err = page.DeleteTuple(tup)
	assert.Assert(t, errors.Is(err, ErrSlotAlreadyEmpty))
}

func TestPageBitmapLayout(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType}, nil)
	page, _ := newTestPage(t, desc)

	page.SetSlotOccupied(0, true)
	page.SetSlotOccupied(9, true)
	page.SetSlotOccupied(15, true)
	page.SetSlotOccupied(9, false)
	page.SetSlotOccupied(10, true)
	assert.Equal(t, byte(0x01), page.header[0])
	assert.Equal(t, byte(0x84), page.header[1])

	assert.Assert(t, !page.SlotOccupied(-1))
	assert.Assert(t, !page.SlotOccupied(page.HeaderSize()*8))
}

func TestPageRoundTrip(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType, StringType}, []string{"id", "name"})
	page, cat := newTestPage(t, desc)

	names := []string{"ann", "", "carl", "dora", "ed"}
	var tuples []*Tuple
	for i, name := range names {
		tup, err := NewTupleFrom(desc, IntField{Value: int32(i * 100)}, NewStringField(name))
		assert.NilError(t, err)
		assert.NilError(t, page.AddTuple(tup))
		tup.SetLocation(page.ID(), tup.SlotID())
		tuples = append(tuples, tup)
	}
	assert.NilError(t, page.DeleteTuple(tuples[1]))
	assert.NilError(t, page.DeleteTuple(tuples[3]))

	data, err := page.PageData()
	assert.NilError(t, err)
	assert.Equal(t, PageSize, len(data))
	assert.Equal(t, byte(0x15), data[0])

	decoded, err := NewHeapPage(page.ID(), testTableID, data, cat)
	assert.NilError(t, err)
	assert.DeepEqual(t, page.header, decoded.header)
	for slot := 0; slot < page.NumSlots(); slot++ {
		assert.Equal(t, page.SlotOccupied(slot), decoded.SlotOccupied(slot))
		if !page.SlotOccupied(slot) {
			assert.Assert(t, decoded.tuples[slot] == nil)
			continue
		}
		got := decoded.tuples[slot]
		assert.DeepEqual(t, page.tuples[slot].Fields(), got.Fields())
		assert.Equal(t, page.ID(), got.PageID())
		assert.Equal(t, slot, got.SlotID())
	}

	again, err := decoded.PageData()
	assert.NilError(t, err)
	assert.DeepEqual(t, data, again)
}

func TestPageEmptySlotsEncodeAsZero(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType}, nil)
	page, _ := newTestPage(t, desc)
	tup := intTuple(t, desc, -1)
	assert.NilError(t, page.AddTuple(tup))
	tup.SetLocation(page.ID(), tup.SlotID())
	assert.NilError(t, page.DeleteTuple(tup))

	data, err := page.PageData()
	assert.NilError(t, err)
	for i, b := range data {
		assert.Equal(t, byte(0), b, "byte %d", i)
	}
}

func TestNewHeapPageMalformed(t *testing.T) {
	desc := mustDesc(t, []FieldType{StringType}, nil)
	cat := NewMemCatalog()
	cat.AddTable(testTableID, desc)

	_, err := NewHeapPage(0, testTableID, make([]byte, PageSize-1), cat)
	assert.Assert(t, errors.Is(err, ErrMalformedPage))

	data := make([]byte, PageSize)
	data[0] = 0x01
	data[HeaderSizeFor(desc)] = 255
	_, err = NewHeapPage(0, testTableID, data, cat)
	assert.Assert(t, errors.Is(err, ErrMalformedPage))

	_, err = NewHeapPage(0, testTableID+1, make([]byte, PageSize), cat)
	assert.Assert(t, errors.Is(err, ErrUnknownTable))
}

func TestPageIteratorSnapshot(t *testing.T) {
	desc := mustDesc(t, []FieldType{IntType}, nil)
	page, _ := newTestPage(t, desc)
	assert.NilError(t, page.AddTuple(intTuple(t, desc, 1)))
	assert.NilError(t, page.AddTuple(intTuple(t, desc, 2)))

	it := page.Iterator()
	assert.NilError(t, page.AddTuple(intTuple(t, desc, 3)))

	count := 0
	for it.Next() {
		count++
	}
	assert.Equal(t, 2, count)

	it.Rewind()
	assert.Assert(t, it.Next())
	assert.DeepEqual(t, []Field{IntField{Value: 1}}, it.Tuple().Fields())
	assert.Equal(t, 3, page.Iterator().Len())
}
