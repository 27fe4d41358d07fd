// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package cdr implements encoding and decoding of the OMG Common Data
// Representation (CDR), as used by DDS/RTPS, together with the 4 byte
// encapsulation header which precedes a serialized payload.
//
// The Encoder/Decoder types in this package offer low level marshalling
// functions, but in most cases you will wish to use the higher level functions
// based upon reflection.
//
// Every primitive is aligned to a multiple of its own width, measured from the
// start of the payload (the encapsulation header is not counted). Padding is
// written as zeroes and skipped unchecked when read. The byte order of the
// payload is chosen by the RepresentationFormat; the header itself is always
// big endian.
//
// The mapping from Go types to CDR is:
//
//                        Go | CDR
//     ----------------------+--------------------
//                      bool | boolean (1 byte, 0 or 1)
//              int8,  uint8 | octet
//             int16, uint16 | short, unsigned short
//             int32, uint32 | long, unsigned long
//             int64, uint64 | long long, unsigned long long
//                   float32 | float
//                   float64 | double
//                 complex64 | struct { float  Re; float  Im; }
//                complex128 | struct { double Re; double Im; }
//                  cdr.Char | char (single byte; runes below 0x80 only)
//                    string | string (length includes a NUL terminator)
//                    []byte | sequence<octet>
//                   [N]byte | octet[N]
//                        *T | T (Go pointers are ignored)
//                       []T | sequence<T>
//                      [N]T | T[N]
//                  struct{} | (nothing)
//              struct{ ...} | struct { ... }
//               interface{} | the dynamic value (encode only)
//
// Maps, channels, functions and the platform sized int, uint and uintptr
// types have no CDR representation and are rejected with ErrTypeNotSupported.
// Decoding into an interface fails with ErrSchemaLessDecodingNotSupported, as
// CDR carries no type information.
//
// Additional control is provided using the `cdr:"..."` struct tag. Tags are
// applied heirarchically: tags separated by forward slashes and specified left
// to right apply in turn from the outer to the inner type. If it is necessary
// to skip a level, then that level should be left empty. For example,
//
//     Names *[]string `cdr:"/maxlen:4/maxlen:16"`
//
// is a pointer (no options) to a sequence of no more than four strings, each
// at most sixteen bytes long.
//
// Defined tags:
//
//     `-`
//         Must comprise the entirety of the tag; indicates that the field is to be skipped
//         from CDR (un)marshalling. Unexported fields are always skipped
//
//     `maxlen:N`
//         Only applicable to strings or slices, specifies a maximum permitted length
//         (in bytes, terminator excluded, for strings; in elements for slices)
//
//         Example: ident string `cdr:"maxlen:16"`
//
//     `opt`
//         Applicable to pointer or interface types. Plain CDR has no optional values,
//         so such fields are always rejected with ErrTypeNotSupported
//
// Enums (in the sense of tagged unions: a variant index followed by that variant's
// payload) are defined as structs whose fields are annotated with enum tags:
//
//     type Shape struct {
//         Variant uint32   `cdr:"enum:switch"`
//         Point   struct{} `cdr:"enum:0"`
//         Circle  float64  `cdr:"enum:1"`
//         Rect    Rect     `cdr:"enum:2"`
//     }
//
//     `enum:switch`
//          Specifies that the enclosing structure is an enum, and that this field holds
//          the variant index. The field must be of type int32 or uint32; it is always
//          encoded as an unsigned long.
//
//          Must be specified on the first field within the struct which is not skipped using
//          `-`. If specified, every other field must have a variant tag
//
//     `enum:N`
//          Specifies the variant index this field holds the payload of. A struct{} payload
//          is a unit variant (nothing follows the index). Indices with no declared variant
//          are rejected with ErrUnknownVariant, both when encoding and decoding
//
// Enum tags bind to the enclosing structure type; in this regard, they are a special case. They
// may be followed by type-related specifiers like normal.
//
// You can specify custom behaviour for your type using the Marshaler interface. If implemented,
// it replaces the default behaviour. You can override behaviour for third party types by
// implementing and regisering a Codec; see the documentation for that type and the Coder with
// which they are registered.
//
// To avoid confusion and conflicts between different packages, it is not possible to register new
// codecs with the default (global) Coder.
package cdr

import cdrinterfaces "go.e43.eu/cdr/interfaces"

// interface Coder is the top-level interface to the CDR library
//
// A coder (which may be safely used from multiple threads) provides the ability
// to marshal objects to and from CDR. It also contains a repository of Codecs
// which know how to marshal various types
type Coder = cdrinterfaces.Coder

// interface Encoder is the interface to the CDR encoder
type Encoder = cdrinterfaces.Encoder

// interface Decoder is the interface to the CDR decoder
type Decoder = cdrinterfaces.Decoder

// interface Marshaler is implemented by types which encode and decode themselves
type Marshaler = cdrinterfaces.Marshaler

// interface Codec defines how to marshal a type which cannot be changed to
// implement Marshaler
type Codec = cdrinterfaces.Codec

// RepresentationFormat identifies the wire variant named by the encapsulation header
type RepresentationFormat = cdrinterfaces.RepresentationFormat

// Endianness is the byte order of a payload
type Endianness = cdrinterfaces.Endianness

// SizeLimit bounds the number of bytes an operation may produce or consume
type SizeLimit = cdrinterfaces.SizeLimit

// Char is a single byte CDR char
type Char = cdrinterfaces.Char

const (
	CdrBE   = cdrinterfaces.CdrBE
	CdrLE   = cdrinterfaces.CdrLE
	PlCdrBE = cdrinterfaces.PlCdrBE
	PlCdrLE = cdrinterfaces.PlCdrLE

	BigEndian    = cdrinterfaces.BigEndian
	LittleEndian = cdrinterfaces.LittleEndian
)

// Infinite places no limit on size
var Infinite = cdrinterfaces.Infinite

// Bounded limits size to max bytes
func Bounded(max uint64) SizeLimit {
	return cdrinterfaces.Bounded(max)
}
