package db

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// HeapFile stores the pages of one table as a flat file of PageSize pages.
// Pages are numbered by their position in the file; the file length is the
// only record of how many pages exist. Every page access opens and closes
// the file, and nothing is cached between calls.
//
// A HeapFile is not safe for concurrent use.
type HeapFile struct {
	path    string
	tableID int
	catalog Catalog
	open    Opener
	log     *zap.Logger
}

type Option func(*HeapFile)

func WithLogger(log *zap.Logger) Option {
	return func(hf *HeapFile) {
		hf.log = log
	}
}

// WithOpener replaces the function used to open the backing file.
func WithOpener(open Opener) Option {
	return func(hf *HeapFile) {
		hf.open = open
	}
}

// NewHeapFile returns the heap file stored at path. The schema of its tuples
// is looked up in cat under the file's table id; the file itself does not
// need to exist yet.
func NewHeapFile(path string, cat Catalog, opts ...Option) (*HeapFile, error) {
	id, err := TableIDFor(path)
	if err != nil {
		return nil, err
	}
	if _, err := cat.TupleDesc(id); err != nil {
		return nil, errors.WithMessagef(err, "heap file %s", path)
	}
	hf := &HeapFile{
		path:    path,
		tableID: id,
		catalog: cat,
		open:    openFileSink,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(hf)
	}
	return hf, nil
}

func (hf *HeapFile) Path() string {
	return hf.path
}

// ID returns the table id of the file.
func (hf *HeapFile) ID() int {
	return hf.tableID
}

func (hf *HeapFile) TupleDesc() (*TupleDesc, error) {
	return hf.catalog.TupleDesc(hf.tableID)
}

func (hf *HeapFile) ioError(op string, err error) error {
	hf.log.Warn("heap file i/o failed",
		zap.String("op", op),
		zap.String("path", hf.path),
		zap.Error(err))
	return &IOError{Op: op, Path: hf.path, Err: err}
}

func (hf *HeapFile) withSink(op string, write bool, fn func(Sink) error) (err error) {
	sink, err := hf.open(hf.path, write)
	if err != nil {
		return hf.ioError(op, err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			err = multierr.Append(err, hf.ioError("close", cerr))
		}
	}()
	return fn(sink)
}

func numPagesOf(sink Sink) (int, error) {
	size, err := sink.Size()
	if err != nil {
		return 0, err
	}
	return int((size + PageSize - 1) / PageSize), nil
}

// NumPages returns the number of pages in the file, counting a trailing
// partial page. A missing file has no pages.
func (hf *HeapFile) NumPages() (int, error) {
	sink, err := hf.open(hf.path, false)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, hf.ioError("stat", err)
	}
	n, err := numPagesOf(sink)
	if err != nil {
		err = hf.ioError("stat", err)
	}
	if cerr := sink.Close(); cerr != nil {
		err = multierr.Append(err, hf.ioError("close", cerr))
	}
	return n, err
}

// ReadPage reads and decodes page id.
func (hf *HeapFile) ReadPage(id int) (*HeapPage, error) {
	buf := make([]byte, PageSize)
	err := hf.withSink("read", false, func(sink Sink) error {
		size, err := sink.Size()
		if err != nil {
			return hf.ioError("read", err)
		}
		off := int64(id) * PageSize
		if id < 0 || off+PageSize > size {
			return hf.ioError("read", errors.Errorf("page %d out of range, file has %d bytes", id, size))
		}
		if _, err := sink.ReadAt(buf, off); err != nil {
			return hf.ioError("read", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewHeapPage(id, hf.tableID, buf, hf.catalog)
}

// WritePage writes page at its position in the file. The page must start at
// or before the current end of the file, so writing never leaves a hole.
func (hf *HeapFile) WritePage(page *HeapPage) error {
	if page.tableID != hf.tableID {
		return errors.Wrapf(ErrPageMismatch, "page of table %d written to table %d", page.tableID, hf.tableID)
	}
	data, err := page.PageData()
	if err != nil {
		return err
	}
	return hf.withSink("write", true, func(sink Sink) error {
		size, err := sink.Size()
		if err != nil {
			return hf.ioError("write", err)
		}
		off := int64(page.id) * PageSize
		if page.id < 0 || off > size {
			return hf.ioError("write", errors.Errorf("page %d out of range, file has %d bytes", page.id, size))
		}
		if _, err := sink.WriteAt(data, off); err != nil {
			return hf.ioError("write", err)
		}
		return nil
	})
}

// Cursor returns a cursor positioned before the first tuple of the file.
func (hf *HeapFile) Cursor() *Cursor {
	return &Cursor{file: hf}
}
