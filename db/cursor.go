package db

// TupleIterator walks a fixed snapshot of the tuples of one page.
type TupleIterator struct {
	tuples []*Tuple
	pos    int
}

// Next advances to the next tuple and reports whether there is one.
func (it *TupleIterator) Next() bool {
	if it.pos >= len(it.tuples) {
		return false
	}
	it.pos++
	return true
}

// Tuple returns the tuple Next moved to.
func (it *TupleIterator) Tuple() *Tuple {
	if it.pos == 0 || it.pos > len(it.tuples) {
		return nil
	}
	return it.tuples[it.pos-1]
}

// Rewind restarts the iteration from the first tuple.
func (it *TupleIterator) Rewind() {
	it.pos = 0
}

// Len returns the number of tuples in the snapshot.
func (it *TupleIterator) Len() int {
	return len(it.tuples)
}

// Cursor scans the tuples of a heap file in page and slot order. Only the
// page under the cursor is held in memory.
type Cursor struct {
	file   *HeapFile
	pageID int
	iter   *TupleIterator
	err    error
}

// Next loads pages until it finds another tuple. It returns false at the end
// of the file or on error; check Err afterwards.
func (c *Cursor) Next() bool {
	if c.err != nil {
		return false
	}
	for {
		if c.iter != nil && c.iter.Next() {
			return true
		}
		numPages, err := c.file.NumPages()
		if err != nil {
			c.err = err
			return false
		}
		if c.pageID >= numPages {
			return false
		}
		page, err := c.file.ReadPage(c.pageID)
		if err != nil {
			c.err = err
			return false
		}
		c.iter = page.Iterator()
		c.pageID++
	}
}

// Scan returns the current tuple.
func (c *Cursor) Scan() *Tuple {
	if c.iter == nil {
		return nil
	}
	return c.iter.Tuple()
}

func (c *Cursor) Err() error {
	return c.err
}
