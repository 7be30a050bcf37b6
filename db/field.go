package db

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// FieldType identifies the on-disk representation of a column.
type FieldType int

const (
	IntType FieldType = iota
	StringType
)

const (
	IntFieldSize = 4

	// StringMaxLen is the number of data bytes of a string field. The field
	// is stored as one length byte followed by StringMaxLen bytes.
	StringMaxLen    = 128
	StringFieldSize = 1 + StringMaxLen
)

// Width returns the fixed number of bytes a field of this type occupies on a
// page, or 0 for an unknown type.
func (ft FieldType) Width() int {
	switch ft {
	case IntType:
		return IntFieldSize
	case StringType:
		return StringFieldSize
	}
	return 0
}

func (ft FieldType) valid() bool {
	return ft.Width() > 0
}

func (ft FieldType) String() string {
	switch ft {
	case IntType:
		return "INT"
	case StringType:
		return "STRING"
	}
	return fmt.Sprintf("FieldType(%d)", int(ft))
}

// ParseFieldType accepts the names used by String, case-insensitively.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "int", "integer":
		return IntType, nil
	case "string", "str":
		return StringType, nil
	}
	return 0, errors.Wrapf(ErrInvalidSchema, "unknown field type %q", s)
}

// Field is a single column value.
type Field interface {
	Type() FieldType
	String() string
}

type IntField struct {
	Value int32
}

func (f IntField) Type() FieldType {
	return IntType
}

func (f IntField) String() string {
	return fmt.Sprint(f.Value)
}

type StringField struct {
	Value string
}

// NewStringField truncates s to at most StringMaxLen bytes without
// splitting a UTF-8 sequence.
func NewStringField(s string) StringField {
	if len(s) > StringMaxLen {
		n := StringMaxLen
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	return StringField{Value: s}
}

func (f StringField) Type() FieldType {
	return StringType
}

func (f StringField) String() string {
	return f.Value
}

// EncodeField appends the fixed-width encoding of f to buf.
func EncodeField(buf []byte, f Field) ([]byte, error) {
	switch v := f.(type) {
	case IntField:
		var b [IntFieldSize]byte
		binary.BigEndian.PutUint32(b[:], uint32(v.Value))
		return append(buf, b[:]...), nil
	case StringField:
		if len(v.Value) > StringMaxLen {
			return nil, errors.Wrapf(ErrTypeMismatch, "string of %d bytes exceeds %d", len(v.Value), StringMaxLen)
		}
		var b [StringFieldSize]byte
		b[0] = byte(len(v.Value))
		copy(b[1:], v.Value)
		return append(buf, b[:]...), nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "cannot encode %T", f)
}

// DecodeField decodes one field of type ft from the start of b.
func DecodeField(ft FieldType, b []byte) (Field, error) {
	if !ft.valid() {
		return nil, errors.Wrapf(ErrMalformedPage, "unknown field type %d", int(ft))
	}
	if len(b) < ft.Width() {
		return nil, errors.Wrapf(ErrMalformedPage, "%s field needs %d bytes, have %d", ft, ft.Width(), len(b))
	}
	switch ft {
	case IntType:
		return IntField{Value: int32(binary.BigEndian.Uint32(b))}, nil
	default:
		n := int(b[0])
		if n > StringMaxLen {
			return nil, errors.Wrapf(ErrMalformedPage, "string length %d exceeds %d", n, StringMaxLen)
		}
		return StringField{Value: string(b[1 : 1+n])}, nil
	}
}

// ParseField converts user input into a field of type ft.
func ParseField(ft FieldType, s string) (Field, error) {
	switch ft {
	case IntType:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, errors.Wrapf(ErrTypeMismatch, "parse %q as INT: %v", s, err)
		}
		return IntField{Value: int32(v)}, nil
	case StringType:
		return NewStringField(s), nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "unknown field type %d", int(ft))
}
