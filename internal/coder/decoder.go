// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"reflect"
	"sync"
	"unicode/utf8"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/errors"
)

// Byte buffers no longer than this are read into a buffer allocated up front;
// longer ones grow as their bytes actually arrive, so that a corrupt length
// can not force a huge allocation
const eagerAllocLimit = 64 * 1024

var decoderPool = sync.Pool{
	New: func() interface{} {
		return new(decoder)
	},
}

type decoder struct {
	r  io.Reader
	cr *Coder

	// Byte order of the payload
	order binary.ByteOrder

	// Payload bytes consumed since the last header
	pos uint64

	// Total bytes consumed, checked against the caller's limit
	size sizeCounter

	scratch [8]byte
}

var _ cdrinterfaces.Decoder = &decoder{}

func (d *decoder) reset(cr *Coder, r io.Reader, format cdrinterfaces.RepresentationFormat, limit cdrinterfaces.SizeLimit) {
	d.r = r
	d.cr = cr
	d.order = format.Endianness().ByteOrder()
	d.pos = 0
	d.size.reset(limit)
}

func (d *decoder) Position() uint64 {
	return d.pos
}

// consume accounts for n bytes about to be read
func (d *decoder) consume(n uint64) error {
	d.pos += n
	return d.size.add(n)
}

// read reads exactly len(buf) unaligned bytes
func (d *decoder) read(buf []byte) error {
	if err := d.consume(uint64(len(buf))); err != nil {
		return err
	}
	_, err := io.ReadFull(d.r, buf)
	return err
}

// readAligned discards the padding preceding a primitive of the given width,
// then reads the primitive into the scratch buffer
func (d *decoder) readAligned(width int) ([]byte, error) {
	if n := padding(d.pos, uint64(width)); n != 0 {
		if err := d.read(d.scratch[0:n]); err != nil {
			return nil, err
		}
	}

	b := d.scratch[0:width]
	if err := d.read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (d *decoder) DecodeBool() (bool, error) {
	u, err := d.DecodeUint8()
	switch {
	case err != nil:
		return false, err
	case u == 0:
		return false, nil
	case u == 1:
		return true, nil
	default:
		return false, errors.InvalidBoolEncodingError{Value: u}
	}
}

func (d *decoder) DecodeInt8() (int8, error) {
	u, err := d.DecodeUint8()
	return int8(u), err
}

func (d *decoder) DecodeUint8() (uint8, error) {
	if err := d.read(d.scratch[0:1]); err != nil {
		return 0, err
	}
	return d.scratch[0], nil
}

func (d *decoder) DecodeInt16() (int16, error) {
	u, err := d.DecodeUint16()
	return int16(u), err
}

func (d *decoder) DecodeUint16() (uint16, error) {
	b, err := d.readAligned(2)
	if err != nil {
		return 0, err
	}
	return d.order.Uint16(b), nil
}

func (d *decoder) DecodeInt32() (int32, error) {
	u, err := d.DecodeUint32()
	return int32(u), err
}

func (d *decoder) DecodeUint32() (uint32, error) {
	b, err := d.readAligned(4)
	if err != nil {
		return 0, err
	}
	return d.order.Uint32(b), nil
}

func (d *decoder) DecodeInt64() (int64, error) {
	u, err := d.DecodeUint64()
	return int64(u), err
}

func (d *decoder) DecodeUint64() (uint64, error) {
	b, err := d.readAligned(8)
	if err != nil {
		return 0, err
	}
	return d.order.Uint64(b), nil
}

func (d *decoder) DecodeFloat32() (float32, error) {
	i, err := d.DecodeUint32()
	return math.Float32frombits(i), err
}

func (d *decoder) DecodeFloat64() (float64, error) {
	i, err := d.DecodeUint64()
	return math.Float64frombits(i), err
}

func (d *decoder) DecodeChar() (cdrinterfaces.Char, error) {
	u, err := d.DecodeUint8()
	if err != nil {
		return 0, err
	}

	// Any lead byte which is not a complete UTF-8 sequence by itself
	if u >= utf8.RuneSelf {
		return 0, errors.ErrInvalidCharEncoding
	}
	return cdrinterfaces.Char(u), nil
}

func (d *decoder) BytesReader(maxLen uint32) (uint32, io.ReadCloser, error) {
	l, err := d.DecodeUint32()
	if err != nil {
		return 0, nil, err
	}

	if l > maxLen {
		return l, nil, errors.LengthError{Actual: uint64(l), Max: uint64(maxLen)}
	}

	if err := d.consume(uint64(l)); err != nil {
		return l, nil, err
	}
	return l, newBytesReader(d.r, int64(l)), nil
}

// readBody reads a byte buffer body of length l
func (d *decoder) readBody(l uint32) ([]byte, error) {
	if err := d.consume(uint64(l)); err != nil {
		return nil, err
	}

	var (
		buf []byte
		err error
	)
	if l <= eagerAllocLimit {
		buf = make([]byte, l)
		_, err = io.ReadFull(d.r, buf)
	} else {
		var b bytes.Buffer
		_, err = io.CopyN(&b, d.r, int64(l))
		buf = b.Bytes()
	}

	// The length has been read, so running out early is never a clean EOF
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return buf, err
}

func (d *decoder) DecodeBytes(maxLen int) ([]byte, error) {
	l, err := d.DecodeUint32()
	switch {
	case err != nil:
		return nil, err
	case l == 0:
		// Micro-optimisation: Just return nil when l==0, as there is nothing
		// for us to do.
		return nil, nil
	case uint64(l) > uint64(maxLen):
		return nil, errors.LengthError{Actual: uint64(l), Max: uint64(maxLen)}
	}

	buf, err := d.readBody(l)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *decoder) DecodeFixedBytes(buf []byte) error {
	return d.read(buf)
}

func (d *decoder) DecodeString(maxLen int) (string, error) {
	l, err := d.DecodeUint32()
	switch {
	case err != nil:
		return "", err
	case l == 0:
		// Not a valid CDR string (there is no terminator), but there is nothing
		// to strip either
		return "", nil
	case uint64(l-1) > uint64(maxLen):
		return "", errors.LengthError{Actual: uint64(l - 1), Max: uint64(maxLen)}
	}

	buf, err := d.readBody(l)
	if err != nil {
		return "", err
	}

	// Drop the terminator
	buf = buf[0 : len(buf)-1]
	if !utf8.Valid(buf) {
		return "", errors.InvalidUTF8EncodingError{ValidUpTo: validUpTo(buf)}
	}
	return string(buf), nil
}

// validUpTo returns the length of the longest valid UTF-8 prefix of buf
func validUpTo(buf []byte) int {
	n := 0
	for n < len(buf) {
		r, size := utf8.DecodeRune(buf[n:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		n += size
	}
	return n
}

func (d *decoder) Decode(op interface{}) (err error) {
	v := reflect.ValueOf(op)
	if !v.IsValid() || v.Type().Kind() != reflect.Ptr {
		return errors.ErrNotPointer
	}
	if v.IsNil() {
		return errors.ErrNilPointer
	}

	return d.decodeValue(v.Elem())
}

func (d *decoder) DecodeValue(v reflect.Value) (err error) {
	if !v.CanSet() {
		return errors.ErrNotPointer
	}
	return d.decodeValue(v)
}

func (d *decoder) decodeValue(v reflect.Value) (err error) {
	return d.cr.getCodec(v.Type(), nil).Decode(d, v)
}

func (d *decoder) release() {
	d.r = nil
	d.cr = nil
	decoderPool.Put(d)
}
