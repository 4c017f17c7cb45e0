// Package codec implements the on-disk binary format for a single log
// record: a length-prefixed key/value pair, or a tombstone when the value
// is absent.
//
// Layout (little-endian, no padding):
//
//	offset  size  field
//	  0      8    key_len
//	  8      8    value_len
//	 16      K    key bytes (UTF-8)
//	 16+K     V    value bytes (UTF-8, absent if value_len == 0)
package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// headerLen is the fixed size of the key_len/value_len prefix.
const headerLen = 16

// Record is a single decoded log entry: either a Set or a Remove.
type Record interface {
	// Encode returns the on-disk byte representation of the record.
	Encode() []byte
	isRecord()
}

// Set represents a SET command: a key paired with a non-empty value.
type Set struct {
	Key   string
	Value []byte
}

func (Set) isRecord() {}

// Encode implements Record.
func (s Set) Encode() []byte {
	return encode(s.Key, s.Value)
}

// Remove represents a REMOVE command: a tombstone for a key, encoded with a
// zero-length value.
type Remove struct {
	Key string
}

func (Remove) isRecord() {}

// Encode implements Record.
func (r Remove) Encode() []byte {
	return encode(r.Key, nil)
}

func encode(key string, value []byte) []byte {
	buf := make([]byte, headerLen+len(key)+len(value))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(len(key)))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(len(value)))
	copy(buf[16:16+len(key)], key)
	copy(buf[16+len(key):], value)
	return buf
}

// ErrCorrupt is returned when a byte slice cannot be decoded into a
// well-formed record: the input is shorter than its own declared lengths,
// or the key/value bytes are not valid UTF-8.
var ErrCorrupt = fmt.Errorf("codec: corrupt record")

// Decode parses a single record out of buf. buf must contain exactly one
// encoded record (headerLen + key_len + value_len bytes) — callers that
// read raw segment bytes are responsible for slicing out that exact range
// first (internal/segment does this using the length recorded in the
// index).
func Decode(buf []byte) (Record, error) {
	if len(buf) < headerLen {
		return nil, ErrCorrupt
	}

	keyLen := binary.LittleEndian.Uint64(buf[0:8])
	valueLen := binary.LittleEndian.Uint64(buf[8:16])

	want := headerLen + keyLen + valueLen
	if uint64(len(buf)) != want {
		return nil, ErrCorrupt
	}

	keyBytes := buf[headerLen : headerLen+keyLen]
	valueBytes := buf[headerLen+keyLen:]

	if !utf8.Valid(keyBytes) || !utf8.Valid(valueBytes) {
		return nil, ErrCorrupt
	}

	key := string(keyBytes)

	if valueLen == 0 {
		return Remove{Key: key}, nil
	}

	value := make([]byte, len(valueBytes))
	copy(value, valueBytes)
	return Set{Key: key, Value: value}, nil
}

// DecodeHeader reads only the key_len/value_len prefix from buf, which must
// be at least headerLen bytes. It is used by segment scanning to size the
// next read before the full record is available.
func DecodeHeader(buf []byte) (keyLen, valueLen uint64, err error) {
	if len(buf) < headerLen {
		return 0, 0, ErrCorrupt
	}
	keyLen = binary.LittleEndian.Uint64(buf[0:8])
	valueLen = binary.LittleEndian.Uint64(buf[8:16])
	return keyLen, valueLen, nil
}

// HeaderLen is the number of bytes occupied by a record's key_len/value_len
// prefix.
const HeaderLen = headerLen

// Len returns the total encoded length of a record with the given key and
// value sizes.
func Len(keyLen, valueLen int) int64 {
	return int64(headerLen + keyLen + valueLen)
}
