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

	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/errors"
)

var encoderPool = sync.Pool{
	New: func() interface{} {
		return &encoder{
			codecCacheSlot: 3,
		}
	},
}

type encoder struct {
	// Underlying writer
	w io.Writer
	// If the underlying writer is also an io.StringWriter, use that when writing
	// strings (to avoid allocs)
	ws io.StringWriter

	// Our coder
	cr *Coder

	// Byte order of the payload; fixed for the lifetime of one encode
	order binary.ByteOrder

	// Payload bytes written since the last header
	pos uint64

	// Small cache of most recently encoded types. Typically a small number of types
	// are repeatedly written to an encoder
	codecCache [4]struct {
		type_ reflect.Type
		codec xCodec
	}
	// Next slot for replacement
	codecCacheSlot int

	// Small scratch buffer (avoids needing to ever allocate when writing primitives)
	scratch [8]byte
}

var _ cdrinterfaces.Encoder = &encoder{}

func (e *encoder) reset(cr *Coder, w io.Writer, format cdrinterfaces.RepresentationFormat) {
	e.w = w
	if ws, ok := w.(io.StringWriter); ok {
		e.ws = ws
	} else {
		e.ws = nil
	}

	if e.cr != cr {
		for i := range e.codecCache {
			e.codecCache[i].type_ = nil
			e.codecCache[i].codec = nil
		}
	}

	e.cr = cr
	e.order = format.Endianness().ByteOrder()
	e.pos = 0
}

func (e *encoder) Position() uint64 {
	return e.pos
}

// write emits buf unaligned
func (e *encoder) write(buf []byte) error {
	e.pos += uint64(len(buf))
	_, err := e.w.Write(buf)
	return err
}

// align emits the zero padding which must precede a value of the given width
func (e *encoder) align(width uint64) error {
	n := padding(e.pos, width)
	if n == 0 {
		return nil
	}
	return e.write(pad[0:n])
}

// writeAligned emits buf (a primitive of width len(buf)) after its padding
func (e *encoder) writeAligned(buf []byte) error {
	if err := e.align(uint64(len(buf))); err != nil {
		return err
	}
	return e.write(buf)
}

func (e *encoder) EncodeBool(b bool) error {
	var u uint8
	if b {
		u = 1
	}
	return e.EncodeUint8(u)
}

func (e *encoder) EncodeInt8(i int8) error {
	return e.EncodeUint8(uint8(i))
}

func (e *encoder) EncodeUint8(u uint8) error {
	e.scratch[0] = u
	return e.write(e.scratch[0:1])
}

func (e *encoder) EncodeInt16(i int16) error {
	return e.EncodeUint16(uint16(i))
}

func (e *encoder) EncodeUint16(u uint16) error {
	e.order.PutUint16(e.scratch[0:2], u)
	return e.writeAligned(e.scratch[0:2])
}

func (e *encoder) EncodeInt32(i int32) error {
	return e.EncodeUint32(uint32(i))
}

func (e *encoder) EncodeUint32(u uint32) error {
	e.order.PutUint32(e.scratch[0:4], u)
	return e.writeAligned(e.scratch[0:4])
}

func (e *encoder) EncodeInt64(i int64) error {
	return e.EncodeUint64(uint64(i))
}

func (e *encoder) EncodeUint64(u uint64) error {
	e.order.PutUint64(e.scratch[0:8], u)
	return e.writeAligned(e.scratch[0:8])
}

func (e *encoder) EncodeFloat32(f float32) error {
	return e.EncodeUint32(math.Float32bits(f))
}

func (e *encoder) EncodeFloat64(f float64) error {
	return e.EncodeUint64(math.Float64bits(f))
}

func (e *encoder) EncodeChar(c cdrinterfaces.Char) error {
	if c < 0 || c >= 0x80 {
		return errors.ErrInvalidCharEncoding
	}
	return e.EncodeUint8(uint8(c))
}

func (e *encoder) EncodeBytes(buf []byte) error {
	if uint64(len(buf)) > uint64(math.MaxUint32) {
		return errors.LengthError{Actual: uint64(len(buf)), Max: math.MaxUint32}
	}

	if err := e.EncodeUint32(uint32(len(buf))); err != nil {
		return err
	}
	return e.write(buf)
}

func (e *encoder) EncodeFixedBytes(buf []byte) error {
	return e.write(buf)
}

func (e *encoder) EncodeString(s string) (err error) {
	// The length includes the terminator
	if uint64(len(s)) >= uint64(math.MaxUint32) {
		return errors.LengthError{Actual: uint64(len(s)), Max: math.MaxUint32 - 1}
	}

	if err := e.EncodeUint32(uint32(len(s) + 1)); err != nil {
		return err
	}

	e.pos += uint64(len(s))
	if e.ws != nil {
		_, err = e.ws.WriteString(s)
	} else {
		_, err = e.w.Write([]byte(s))
	}
	if err != nil {
		return err
	}

	return e.write(pad[0:1])
}

func (e *encoder) Encode(o interface{}) error {
	v := reflect.ValueOf(o)
	if !v.IsValid() {
		return errors.ErrNilPointer
	}
	return e.EncodeValue(v)
}

func (e *encoder) EncodeValue(v reflect.Value) error {
	t := v.Type()

	for _, c := range e.codecCache {
		if c.type_ == t {
			return c.codec.Encode(e, v)
		}
	}

	c := e.cr.getBaseCodec(t)
	e.codecCacheSlot = (e.codecCacheSlot + 1) & (len(e.codecCache) - 1)
	e.codecCache[e.codecCacheSlot].type_ = t
	e.codecCache[e.codecCacheSlot].codec = c

	return c.Encode(e, v)
}

func (e *encoder) release() {
	e.w = nil
	e.ws = nil
	encoderPool.Put(e)
}

var marshalEncoderPool = sync.Pool{
	New: func() interface{} {
		me := &marshalEncoder{
			encoder: encoder{
				codecCacheSlot: 3,
			},
		}
		me.w = &me.b
		me.ws = &me.b
		return me
	},
}

// marshalEncoder is an encoder bundled with the buffer it writes into
type marshalEncoder struct {
	b bytes.Buffer
	encoder
}

func (e *marshalEncoder) reset(cr *Coder, format cdrinterfaces.RepresentationFormat, size uint64) {
	e.encoder.reset(cr, &e.b, format)
	if size <= uint64(maxInt) {
		e.b.Grow(int(size))
	}
}

func (e *marshalEncoder) release() {
	e.b.Reset()
	marshalEncoderPool.Put(e)
}
