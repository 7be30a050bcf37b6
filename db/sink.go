package db

import (
	"io"
	"os"
)

// Sink is the backing storage of a heap file.
type Sink interface {
	io.Closer
	io.WriterAt
	io.ReaderAt

	Size() (int64, error)
}

// Opener opens the backing storage at path. With write set the storage is
// created if missing.
type Opener func(path string, write bool) (Sink, error)

type fileSink struct {
	*os.File
}

func (sink fileSink) Size() (size int64, err error) {
	stat, err := sink.Stat()
	if err != nil {
		return
	}
	size = stat.Size()
	return
}

func openFileSink(path string, write bool) (Sink, error) {
	flag := os.O_RDONLY
	if write {
		flag = os.O_RDWR | os.O_CREATE
	}
	file, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, err
	}
	return fileSink{file}, nil
}
