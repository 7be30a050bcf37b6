package db

import (
	"github.com/pkg/errors"
)

// PageSize is the size in bytes of every page of a heap file.
const PageSize = 4096

// HeapPage is the in-memory form of one slotted page. The page starts with
// an occupancy bitmap of HeaderSize bytes (bit i of the bitmap, LSB first in
// each byte, marks slot i as used), followed by NumSlots fixed-size tuple
// records and zero padding up to PageSize.
type HeapPage struct {
	id      int
	tableID int
	desc    *TupleDesc
	header  []byte
	tuples  []*Tuple
}

// NumSlotsFor returns how many tuples of desc fit on a page. Every slot costs
// its tuple bytes plus one header bit.
func NumSlotsFor(desc *TupleDesc) int {
	return (PageSize * 8) / (desc.Size()*8 + 1)
}

// HeaderSizeFor returns the bitmap size in bytes for pages of desc.
func HeaderSizeFor(desc *TupleDesc) int {
	return (NumSlotsFor(desc) + 7) / 8
}

// NewHeapPage decodes the page with the given id from data. The schema is
// looked up in cat under tableID.
func NewHeapPage(id, tableID int, data []byte, cat Catalog) (*HeapPage, error) {
	desc, err := cat.TupleDesc(tableID)
	if err != nil {
		return nil, err
	}
	if len(data) < PageSize {
		return nil, errors.Wrapf(ErrMalformedPage, "page %d has %d bytes, want %d", id, len(data), PageSize)
	}
	numSlots := NumSlotsFor(desc)
	p := &HeapPage{
		id:      id,
		tableID: tableID,
		desc:    desc,
		header:  make([]byte, HeaderSizeFor(desc)),
		tuples:  make([]*Tuple, numSlots),
	}
	off := copy(p.header, data)
	size := desc.Size()
	for slot := 0; slot < numSlots; slot++ {
		if p.SlotOccupied(slot) {
			t, err := p.readTuple(data[off:off+size], slot)
			if err != nil {
				return nil, err
			}
			p.tuples[slot] = t
		}
		off += size
	}
	return p, nil
}

// NewEmptyHeapPage returns a page with every slot free.
func NewEmptyHeapPage(id, tableID int, cat Catalog) (*HeapPage, error) {
	return NewHeapPage(id, tableID, make([]byte, PageSize), cat)
}

func (p *HeapPage) readTuple(rec []byte, slot int) (*Tuple, error) {
	t := NewTuple(p.desc)
	off := 0
	for i, ft := range p.desc.types {
		f, err := DecodeField(ft, rec[off:])
		if err != nil {
			return nil, errors.WithMessagef(err, "page %d slot %d field %d", p.id, slot, i)
		}
		t.fields[i] = f
		off += ft.Width()
	}
	t.SetLocation(p.id, slot)
	return t, nil
}

func (p *HeapPage) ID() int {
	return p.id
}

func (p *HeapPage) TableID() int {
	return p.tableID
}

func (p *HeapPage) TupleDesc() *TupleDesc {
	return p.desc
}

func (p *HeapPage) NumSlots() int {
	return len(p.tuples)
}

func (p *HeapPage) HeaderSize() int {
	return len(p.header)
}

// NumEmptySlots counts the slots whose bitmap bit is clear.
func (p *HeapPage) NumEmptySlots() int {
	n := 0
	for slot := range p.tuples {
		if !p.SlotOccupied(slot) {
			n++
		}
	}
	return n
}

// SlotOccupied reports whether slot holds a tuple. Slots outside the header
// are never occupied.
func (p *HeapPage) SlotOccupied(slot int) bool {
	if slot < 0 || slot/8 >= len(p.header) {
		return false
	}
	return p.header[slot/8]&(1<<uint(slot%8)) != 0
}

// SetSlotOccupied sets or clears the bitmap bit of slot.
func (p *HeapPage) SetSlotOccupied(slot int, value bool) {
	if slot < 0 || slot/8 >= len(p.header) {
		return
	}
	if value {
		p.header[slot/8] |= 1 << uint(slot%8)
	} else {
		p.header[slot/8] &^= 1 << uint(slot%8)
	}
}

func (p *HeapPage) firstEmptySlot() int {
	for slot := range p.tuples {
		if !p.SlotOccupied(slot) {
			return slot
		}
	}
	return -1
}

// AddTuple stores t in the first free slot and records that slot in t. The
// page id of t is left to the heap file that owns the page.
func (p *HeapPage) AddTuple(t *Tuple) error {
	if !p.desc.Equal(t.desc) {
		return errors.Wrapf(ErrSchemaMismatch, "page schema %s, tuple schema %s", p.desc, t.desc)
	}
	if !t.complete() {
		return ErrIncompleteTuple
	}
	slot := p.firstEmptySlot()
	if slot < 0 {
		return errors.Wrapf(ErrPageFull, "page %d", p.id)
	}
	p.SetSlotOccupied(slot, true)
	p.tuples[slot] = t
	t.slotID = slot
	return nil
}

// DeleteTuple frees the slot recorded in t.
func (p *HeapPage) DeleteTuple(t *Tuple) error {
	if t.pageID != p.id {
		return errors.Wrapf(ErrPageMismatch, "tuple on page %d, page is %d", t.pageID, p.id)
	}
	if !p.SlotOccupied(t.slotID) {
		return errors.Wrapf(ErrSlotAlreadyEmpty, "page %d slot %d", p.id, t.slotID)
	}
	p.SetSlotOccupied(t.slotID, false)
	p.tuples[t.slotID] = nil
	return nil
}

// Iterator returns the tuples occupying the page at the time of the call, in
// slot order.
func (p *HeapPage) Iterator() *TupleIterator {
	var tuples []*Tuple
	for slot, t := range p.tuples {
		if p.SlotOccupied(slot) && t != nil {
			tuples = append(tuples, t)
		}
	}
	return &TupleIterator{tuples: tuples}
}

// PageData encodes the page into exactly PageSize bytes. Passing the result
// to NewHeapPage yields an equal page.
func (p *HeapPage) PageData() ([]byte, error) {
	buf := make([]byte, 0, PageSize)
	buf = append(buf, p.header...)
	size := p.desc.Size()
	for slot, t := range p.tuples {
		if !p.SlotOccupied(slot) || t == nil {
			buf = append(buf, make([]byte, size)...)
			continue
		}
		var err error
		for i, f := range t.fields {
			if f == nil {
				return nil, errors.Wrapf(ErrIncompleteTuple, "page %d slot %d field %d", p.id, slot, i)
			}
			if buf, err = EncodeField(buf, f); err != nil {
				return nil, errors.WithMessagef(err, "page %d slot %d field %d", p.id, slot, i)
			}
		}
	}
	return append(buf, make([]byte, PageSize-len(buf))...), nil
}
