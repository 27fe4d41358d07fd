// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package cdr

import (
	"io"
	"reflect"

	"go.uber.org/zap"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/coder"
)

type defaultCoder struct {
	coder.Coder
}

func (d *defaultCoder) RegisterCodec(template interface{}, c cdrinterfaces.Codec) {
	panic("Cannot register type on default codec")
}

func (d *defaultCoder) RegisterCodecReflect(type_ reflect.Type, c cdrinterfaces.Codec) {
	panic("Cannot register type on default codec")
}

// The default coder (used by the package global functions)
//
// This behaves identically to a coder created using NewCoder, except
// that it is not permitted to register any codecs upon it.
var DefaultCoder defaultCoder

// Serialize encodes o, preceded by an encapsulation header naming format, into
// the returned buffer. If limit is bounded and the encoding would be larger,
// ErrSizeLimitExceeded is returned before anything is encoded
func Serialize(o interface{}, format RepresentationFormat, limit SizeLimit) ([]byte, error) {
	return DefaultCoder.Serialize(o, format, limit)
}

// SerializeInto encodes o with an encapsulation header into w. If limit is
// bounded and the encoding would be larger, nothing is written
func SerializeInto(w io.Writer, o interface{}, format RepresentationFormat, limit SizeLimit) error {
	return DefaultCoder.SerializeInto(w, o, format, limit)
}

// Deserialize decodes buf into the object pointed to by op. The byte order is
// taken from the encapsulation header
func Deserialize(buf []byte, op interface{}) error {
	return DefaultCoder.Deserialize(buf, op)
}

// DeserializeFrom decodes an encapsulated object out of r into the object pointed
// to by op, reading no more than limit bytes (header included)
func DeserializeFrom(r io.Reader, op interface{}, limit SizeLimit) error {
	return DefaultCoder.DeserializeFrom(r, op, limit)
}

// SerializeData encodes o in the byte order of format, without an encapsulation header
func SerializeData(o interface{}, format RepresentationFormat) ([]byte, error) {
	return DefaultCoder.SerializeData(o, format)
}

// DeserializeData decodes a payload without an encapsulation header
func DeserializeData(buf []byte, format RepresentationFormat, op interface{}) error {
	return DefaultCoder.DeserializeData(buf, format, op)
}

// DeserializeDataFrom decodes a payload without an encapsulation header out of r,
// failing with ErrSizeLimitExceeded if it would consume more than limit
func DeserializeDataFrom(r io.Reader, format RepresentationFormat, op interface{}, limit SizeLimit) error {
	return DefaultCoder.DeserializeDataFrom(r, format, op, limit)
}

// CalcSerializedSize returns the number of bytes Serialize would produce for o
func CalcSerializedSize(o interface{}) (uint64, error) {
	return DefaultCoder.CalcSerializedSize(o)
}

// CalcSerializedSizeBounded is CalcSerializedSize, except that it returns
// ErrSizeLimitExceeded as soon as the size is known to be larger than max
func CalcSerializedSizeBounded(o interface{}, max uint64) (uint64, error) {
	return DefaultCoder.CalcSerializedSizeBounded(o, max)
}

// CalcSerializedDataSize returns the number of bytes SerializeData would produce for o
func CalcSerializedDataSize(o interface{}) (uint64, error) {
	return DefaultCoder.CalcSerializedDataSize(o)
}

// ReadHeader reads an encapsulation header from r
func ReadHeader(r io.Reader) (RepresentationFormat, error) {
	return coder.ReadHeader(r)
}

// Constructs a new encoder which writes a payload in the byte order of format to w
func NewEncoder(w io.Writer, format RepresentationFormat) Encoder {
	return DefaultCoder.NewEncoder(w, format)
}

// Constructs a new decoder which reads a payload in the byte order of format from r
func NewDecoder(r io.Reader, format RepresentationFormat) Decoder {
	return DefaultCoder.NewDecoder(r, format)
}

// Construct a new Coder
func NewCoder() Coder {
	return coder.NewCoder()
}

// SetLogger sets the logger to which debug records about codec construction
// and encapsulation headers are written. Passing nil silences logging (the default)
func SetLogger(l *zap.Logger) {
	coder.SetLogger(l)
}
