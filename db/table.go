package db

import (
	"fmt"
	"os"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
)

const schemaSuffix = ".schema"

// SchemaPath returns the path of the schema file kept next to a heap file.
func SchemaPath(path string) string {
	return path + schemaSuffix
}

// WriteSchema stores desc in the properties file at path.
func WriteSchema(path string, desc *TupleDesc) (err error) {
	p := properties.NewProperties()
	if _, _, err := p.Set("fields", fmt.Sprint(desc.NumFields())); err != nil {
		return err
	}
	for i := range desc.types {
		if _, _, err := p.Set(fmt.Sprintf("field.%d.type", i), desc.types[i].String()); err != nil {
			return err
		}
		if _, _, err := p.Set(fmt.Sprintf("field.%d.name", i), desc.names[i]); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()
	if _, err := p.Write(file, properties.UTF8); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ReadSchema loads a descriptor written by WriteSchema.
func ReadSchema(path string) (*TupleDesc, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	v, ok := p.Get("fields")
	if !ok {
		return nil, errors.Wrapf(ErrInvalidSchema, "%s: missing fields", path)
	}
	n, err := cast.ToIntE(v)
	if err != nil || n < 1 {
		return nil, errors.Wrapf(ErrInvalidSchema, "%s: bad field count %q", path, v)
	}
	types := make([]FieldType, n)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		s, ok := p.Get(fmt.Sprintf("field.%d.type", i))
		if !ok {
			return nil, errors.Wrapf(ErrInvalidSchema, "%s: missing type of field %d", path, i)
		}
		if types[i], err = ParseFieldType(s); err != nil {
			return nil, errors.WithMessage(err, path)
		}
		names[i] = p.GetString(fmt.Sprintf("field.%d.name", i), "")
	}
	return NewTupleDesc(types, names)
}

// CreateTable creates an empty heap file at path with its schema file and
// registers the table in cat.
func CreateTable(path string, desc *TupleDesc, cat *MemCatalog, opts ...Option) (*HeapFile, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, &IOError{Op: "create", Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return nil, &IOError{Op: "close", Path: path, Err: err}
	}
	if err := WriteSchema(SchemaPath(path), desc); err != nil {
		return nil, multierr.Append(err, os.Remove(path))
	}
	if _, err := cat.AddFile(path, desc); err != nil {
		return nil, err
	}
	return NewHeapFile(path, cat, opts...)
}

// OpenTable reads the schema file of the heap file at path, registers the
// table in cat and returns the heap file.
func OpenTable(path string, cat *MemCatalog, opts ...Option) (*HeapFile, error) {
	desc, err := ReadSchema(SchemaPath(path))
	if err != nil {
		return nil, err
	}
	if _, err := cat.AddFile(path, desc); err != nil {
		return nil, err
	}
	return NewHeapFile(path, cat, opts...)
}
