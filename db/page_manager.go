package db

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// AddTuple stores t in the first page, by increasing page id, that has a
// free slot, and writes that page back. When every page is full a new page
// is appended to the file. The returned page holds t.
func (hf *HeapFile) AddTuple(t *Tuple) (*HeapPage, error) {
	desc, err := hf.TupleDesc()
	if err != nil {
		return nil, err
	}
	if !desc.Equal(t.desc) {
		return nil, errors.Wrapf(ErrSchemaMismatch, "table schema %s, tuple schema %s", desc, t.desc)
	}
	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}
	for id := 0; id < numPages; id++ {
		page, err := hf.ReadPage(id)
		if err != nil {
			return nil, err
		}
		if page.firstEmptySlot() < 0 {
			continue
		}
		if err := hf.insertInto(page, t); err != nil {
			return nil, err
		}
		return page, nil
	}

	page, err := NewEmptyHeapPage(numPages, hf.tableID, hf.catalog)
	if err != nil {
		return nil, err
	}
	hf.log.Debug("allocating page",
		zap.String("path", hf.path),
		zap.Int("page", numPages),
		zap.Int("slots", page.NumSlots()))
	if err := hf.insertInto(page, t); err != nil {
		return nil, err
	}
	return page, nil
}

// insertInto leaves the location of t untouched unless the page reached
// the file.
func (hf *HeapFile) insertInto(page *HeapPage, t *Tuple) error {
	pageID, slotID := t.pageID, t.slotID
	if err := page.AddTuple(t); err != nil {
		return err
	}
	t.pageID = page.id
	if err := hf.WritePage(page); err != nil {
		t.SetLocation(pageID, slotID)
		return err
	}
	return nil
}

// DeleteTuple frees the slot recorded in t and writes its page back.
func (hf *HeapFile) DeleteTuple(t *Tuple) error {
	if !t.Stored() {
		return errors.Wrap(ErrPageMismatch, "tuple has not been stored")
	}
	page, err := hf.ReadPage(t.pageID)
	if err != nil {
		return err
	}
	if err := page.DeleteTuple(t); err != nil {
		return err
	}
	hf.log.Debug("deleted tuple",
		zap.String("path", hf.path),
		zap.Int("page", t.pageID),
		zap.Int("slot", t.slotID))
	return hf.WritePage(page)
}

// AllTuples reads every page and returns their tuples in page and slot
// order.
func (hf *HeapFile) AllTuples() ([]*Tuple, error) {
	tuples := []*Tuple{}
	c := hf.Cursor()
	for c.Next() {
		tuples = append(tuples, c.Scan())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return tuples, nil
}
