// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package cdrinterfaces defines the primary interfaces of the CDR encoder
//
// (This package is primarily separated out in order to permit the implementation to
// be broken down into multiple packages)
package cdrinterfaces

import (
	"io"
	"reflect"
)

// interface Marshaler is the interface implemented by a type which knows how to encode
// and decode itself to/from CDR
//
// The encoder and decoder handle alignment; an implementation need only emit its
// parts in order.
type Marshaler interface {
	MarshalCDR(e Encoder) error
	UnmarshalCDR(d Decoder) error
}

// interface Codec is the interface by which the marshalling of types which are
// not natively supported may be defined.
//
// Codecs may be registered with a Coder in order to specify how to handle a
// specific type.
//
// It is recommended to use a custom Marshaler (or `cdr` struct tags) implementation
// when defining your own types instead of defining a Codec. However, this may be useful
// when dealing with third party types.
type Codec interface {
	// Encodes v into the encoder e.
	Encode(e Encoder, v reflect.Value) error

	// Decodes v from the decoder d.
	Decode(d Decoder, v reflect.Value) error
}

// interface Coder is the top-level interface to the CDR library
//
// A coder (which may be safely used from multiple threads) provides the ability
// to marshal objects to and from CDR. It also contains a repository of Codecs
// which know how to marshal various types
type Coder interface {
	// Serialize encodes o, preceded by an encapsulation header for format, into
	// the returned buffer. If limit is bounded, the encoded size is checked
	// before anything is encoded
	Serialize(o interface{}, format RepresentationFormat, limit SizeLimit) ([]byte, error)

	// SerializeInto encodes o with an encapsulation header into w. If limit is
	// bounded, the encoded size is checked before anything is written
	SerializeInto(w io.Writer, o interface{}, format RepresentationFormat, limit SizeLimit) error

	// Deserialize decodes buf, whose format is read from its encapsulation header,
	// into the object pointed to by op
	Deserialize(buf []byte, op interface{}) error

	// DeserializeFrom decodes an encapsulated object from r into the object pointed to
	// by op, consuming no more than limit bytes (header included)
	DeserializeFrom(r io.Reader, op interface{}, limit SizeLimit) error

	// SerializeData encodes o without an encapsulation header
	SerializeData(o interface{}, format RepresentationFormat) ([]byte, error)

	// DeserializeData decodes a payload without an encapsulation header
	DeserializeData(buf []byte, format RepresentationFormat, op interface{}) error

	// DeserializeDataFrom decodes a payload without an encapsulation header from
	// r, failing if more than limit bytes would be consumed
	DeserializeDataFrom(r io.Reader, format RepresentationFormat, op interface{}, limit SizeLimit) error

	// CalcSerializedSize returns the size of o when serialized (header included)
	CalcSerializedSize(o interface{}) (uint64, error)

	// CalcSerializedSizeBounded is CalcSerializedSize, except that it fails
	// as soon as the running size exceeds max
	CalcSerializedSizeBounded(o interface{}, max uint64) (uint64, error)

	// CalcSerializedDataSize returns the size of o when serialized without a header
	CalcSerializedDataSize(o interface{}) (uint64, error)

	// Constructs a new encoder which writes payload data to w in the byte
	// order of format. No header is written
	NewEncoder(w io.Writer, format RepresentationFormat) Encoder

	// Constructs a new decoder which reads payload data from r in the byte
	// order of format. No header is expected
	NewDecoder(r io.Reader, format RepresentationFormat) Decoder

	// Registers the codec. Panics if a codec is already registered for
	// the type, or an attempt is made to register a codec for a type
	// for which it is not permitted to register codecs.
	RegisterCodec(template interface{}, c Codec)
	RegisterCodecReflect(type_ reflect.Type, c Codec)
}

// interface Encoder is the interface to the CDR encoder
//
// Every multi-byte value is preceded by the zero padding needed to align it to its
// own width, relative to the start of the payload.
type Encoder interface {
	// EncodeBool writes a bool (a single byte) to the CDR encoder
	EncodeBool(b bool) error

	EncodeInt8(i int8) error
	EncodeUint8(u uint8) error
	EncodeInt16(i int16) error
	EncodeUint16(u uint16) error
	EncodeInt32(i int32) error
	EncodeUint32(u uint32) error
	EncodeInt64(i int64) error
	EncodeUint64(u uint64) error

	// EncodeFloat32 writes a single precision floating point number to the CDR encoder
	EncodeFloat32(f float32) error

	// EncodeFloat64 writes a double precision floating point number to the CDR encoder
	EncodeFloat64(f float64) error

	// EncodeChar writes a char. Only runes below 0x80 can be encoded
	EncodeChar(c Char) error

	// EncodeString writes a NUL terminated, length prefixed string to the CDR encoder
	EncodeString(s string) error

	// EncodeBytes writes a length prefixed byte buffer to the CDR encoder
	EncodeBytes(b []byte) error

	// EncodeFixedBytes writes b with no length prefix (a fixed length octet array)
	EncodeFixedBytes(b []byte) error

	// Encode writes an object to the CDR encoder
	Encode(o interface{}) error

	// EncodeValue encodes an object to the CDR encoder (via reflection)
	EncodeValue(v reflect.Value) error

	// Position returns the number of payload bytes encoded so far
	Position() uint64
}

// interface Decoder is the interface to the CDR decoder
type Decoder interface {
	DecodeBool() (bool, error)
	DecodeInt8() (int8, error)
	DecodeUint8() (uint8, error)
	DecodeInt16() (int16, error)
	DecodeUint16() (uint16, error)
	DecodeInt32() (int32, error)
	DecodeUint32() (uint32, error)
	DecodeInt64() (int64, error)
	DecodeUint64() (uint64, error)

	// DecodeFloat32 reads a single precision floating point number from the CDR decoder
	DecodeFloat32() (float32, error)

	// DecodeFloat64 reads a double precision floating point number from the CDR decoder
	DecodeFloat64() (float64, error)

	// DecodeChar reads a single byte char
	DecodeChar() (Char, error)

	// DecodeString reads a string (with maximum length maxLen, terminator excluded)
	// from the decoder
	DecodeString(maxLen int) (string, error)

	// DecodeBytes reads a byte buffer of maximum length maxLen from the CDR decoder
	// A newly allocated buffer is returned.
	DecodeBytes(maxLen int) ([]byte, error)

	// BytesReader returns an io.Reader which reads the body of a byte buffer from
	// the CDR decoder.
	//
	// The stream *must* be closed before reading further. Close() discards any
	// unread part of the body.
	BytesReader(maxLen uint32) (uint32, io.ReadCloser, error)

	// DecodeFixedBytes reads a fixed length octet array into the passed buffer
	DecodeFixedBytes(buf []byte) error

	// Decode reads an object from the stream into *op.
	Decode(op interface{}) error

	// DecodeValue reads an object from the stream
	// v must be a settable value (v.CanSet() is true)
	DecodeValue(v reflect.Value) error

	// Position returns the number of payload bytes consumed so far
	Position() uint64
}
