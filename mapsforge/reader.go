package mapsforge

import (
	"encoding/binary"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jamesrr39/goutil/errorsx"
)

const (
	// a varint holds at most 64 bits, i.e. 10 bytes of 7 payload bits
	maxVarintLen = 10

	// tag and header strings are short; a declared length beyond this
	// cannot come from a well-formed writer
	maxStringLen = 1 << 20
)

func readFull(r io.Reader, buf []byte) errorsx.Error {
	_, err := io.ReadFull(r, buf)
	switch err {
	case nil:
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		return errorsx.Wrap(ErrTruncatedInput)
	default:
		return errorsx.Wrap(err)
	}
}

// readVarint reads an unsigned variable-length integer. The low 7 bits of
// each byte are payload, the high bit signals a following byte.
func readVarint(r io.Reader) (uint64, errorsx.Error) {
	var buf [1]byte
	var result uint64
	var shift uint

	for i := 0; i < maxVarintLen; i++ {
		err := readFull(r, buf[:])
		if err != nil {
			return 0, err
		}

		b := buf[0]
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}

	return 0, errorsx.Wrap(ErrInvalidEncoding, "field", "varint", "reason", "no terminating byte found")
}

// readString reads a varint length prefix followed by that many bytes of
// UTF-8 text. Invalid byte sequences are replaced with U+FFFD rather than
// failing the decode.
func readString(r io.Reader) (string, errorsx.Error) {
	length, err := readVarint(r)
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	if length > maxStringLen {
		return "", errorsx.Wrap(ErrInvalidEncoding, "field", "string", "declaredLength", length)
	}

	buf := make([]byte, length)
	err = readFull(r, buf)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(buf) {
		return strings.ToValidUTF8(string(buf), string(utf8.RuneError)), nil
	}
	return string(buf), nil
}

func readUint8(r io.Reader) (uint8, errorsx.Error) {
	var buf [1]byte
	err := readFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readUint16(r io.Reader) (uint16, errorsx.Error) {
	var buf [2]byte
	err := readFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func readUint32(r io.Reader) (uint32, errorsx.Error) {
	var buf [4]byte
	err := readFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, errorsx.Error) {
	var buf [8]byte
	err := readFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func readInt32(r io.Reader) (int32, errorsx.Error) {
	val, err := readUint32(r)
	if err != nil {
		return 0, err
	}
	return int32(val), nil
}
