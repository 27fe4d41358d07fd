// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"math"
	"reflect"
	"sync"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/errors"
)

var sizerPool = sync.Pool{
	New: func() interface{} {
		return new(sizer)
	},
}

// sizer is an Encoder which writes nothing. It is driven through exactly the
// same codecs as the real encoder and runs the same alignment arithmetic, so
// that the size it arrives at is the length the encoder will produce.
//
// Byte order never affects size, so a sizer has none.
type sizer struct {
	cr *Coder

	// Payload position, for alignment
	pos uint64

	// Bytes counted, including any header
	size sizeCounter
}

var _ cdrinterfaces.Encoder = &sizer{}

func (s *sizer) reset(cr *Coder, limit cdrinterfaces.SizeLimit) {
	s.cr = cr
	s.pos = 0
	s.size.reset(limit)
}

func (s *sizer) Position() uint64 {
	return s.pos
}

func (s *sizer) total() uint64 {
	return s.size.total
}

// add counts n unaligned bytes
func (s *sizer) add(n uint64) error {
	s.pos += n
	return s.size.add(n)
}

// addAligned counts a primitive of the given width and its padding
func (s *sizer) addAligned(width uint64) error {
	return s.add(padding(s.pos, width) + width)
}

func (s *sizer) EncodeBool(b bool) error     { return s.add(1) }
func (s *sizer) EncodeInt8(i int8) error     { return s.add(1) }
func (s *sizer) EncodeUint8(u uint8) error   { return s.add(1) }
func (s *sizer) EncodeInt16(i int16) error   { return s.addAligned(2) }
func (s *sizer) EncodeUint16(u uint16) error { return s.addAligned(2) }
func (s *sizer) EncodeInt32(i int32) error   { return s.addAligned(4) }
func (s *sizer) EncodeUint32(u uint32) error { return s.addAligned(4) }
func (s *sizer) EncodeInt64(i int64) error   { return s.addAligned(8) }
func (s *sizer) EncodeUint64(u uint64) error { return s.addAligned(8) }

func (s *sizer) EncodeFloat32(f float32) error { return s.addAligned(4) }
func (s *sizer) EncodeFloat64(f float64) error { return s.addAligned(8) }

func (s *sizer) EncodeChar(c cdrinterfaces.Char) error {
	if c < 0 || c >= 0x80 {
		return errors.ErrInvalidCharEncoding
	}
	return s.add(1)
}

func (s *sizer) EncodeBytes(buf []byte) error {
	if uint64(len(buf)) > uint64(math.MaxUint32) {
		return errors.LengthError{Actual: uint64(len(buf)), Max: math.MaxUint32}
	}

	if err := s.addAligned(4); err != nil {
		return err
	}
	return s.add(uint64(len(buf)))
}

func (s *sizer) EncodeFixedBytes(buf []byte) error {
	return s.add(uint64(len(buf)))
}

func (s *sizer) EncodeString(str string) error {
	if uint64(len(str)) >= uint64(math.MaxUint32) {
		return errors.LengthError{Actual: uint64(len(str)), Max: math.MaxUint32 - 1}
	}

	if err := s.addAligned(4); err != nil {
		return err
	}
	return s.add(uint64(len(str)) + 1)
}

func (s *sizer) Encode(o interface{}) error {
	v := reflect.ValueOf(o)
	if !v.IsValid() {
		return errors.ErrNilPointer
	}
	return s.EncodeValue(v)
}

func (s *sizer) EncodeValue(v reflect.Value) error {
	return s.cr.getBaseCodec(v.Type()).Encode(s, v)
}

func (s *sizer) release() {
	s.cr = nil
	sizerPool.Put(s)
}
