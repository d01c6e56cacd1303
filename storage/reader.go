// Package storage wraps the files read by the media parsers.
package storage

import (
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
)

// Reader reads little-endian media files and keeps count of the offset, so
// parse errors can say where they happened.
type Reader struct {
	reader io.Reader
	offset int64
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: r}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.offset += int64(n)
	return n, err
}

// ReadLE decodes a fixed-size value, usually a header struct.
func (r *Reader) ReadLE(data interface{}) error {
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return errors.Wrapf(err, "binary read at offset %d", r.offset)
	}
	return nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.Wrapf(err, "reading %d bytes at offset %d", n, r.offset)
	}
	return b, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int64) error {
	if _, err := io.CopyN(ioutil.Discard, r, n); err != nil {
		return errors.Wrapf(err, "skipping %d bytes at offset %d", n, r.offset)
	}
	return nil
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}
