// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package cdr

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func i32ptr(v int32) *int32 {
	return &v
}

func TestCodecsPrimitive(t *testing.T) {
	testcases := []testcase{
		{
			Name:   "bool false",
			Object: false,
			Bytes:  []byte{0},
		}, {
			Name:   "bool true",
			Object: true,
			Bytes:  []byte{1},
		}, {
			Name:       "bool ???",
			Direction:  decodeTest,
			Object:     true,
			Bytes:      []byte{2},
			DecErrorIs: ErrInvalidBoolEncoding,
		}, {
			Name:   "int8 -1",
			Object: int8(-1),
			Bytes:  []byte{0xff},
		}, {
			Name:   "uint8",
			Object: uint8(0xAB),
			Bytes:  []byte{0xAB},
		}, {
			Name:   "int16 -2",
			Object: int16(-2),
			BE:     []byte{0xff, 0xfe},
			LE:     []byte{0xfe, 0xff},
		}, {
			Name:   "uint16",
			Object: uint16(0x1234),
			BE:     []byte{0x12, 0x34},
			LE:     []byte{0x34, 0x12},
		}, {
			Name:   "int32 -1",
			Object: int32(-1),
			Bytes:  []byte{0xff, 0xff, 0xff, 0xff},
		}, {
			Name:   "int32 0",
			Object: int32(0),
			Bytes:  []byte{0, 0, 0, 0},
		}, {
			Name:   "int32 1",
			Object: int32(1),
			BE:     []byte{0, 0, 0, 1},
			LE:     []byte{1, 0, 0, 0},
		}, {
			Name:   "uint32",
			Object: uint32(0x12345678),
			BE:     []byte{0x12, 0x34, 0x56, 0x78},
			LE:     []byte{0x78, 0x56, 0x34, 0x12},
		}, {
			Name:   "int64 min",
			Object: int64(math.MinInt64),
			BE:     []byte{0x80, 0, 0, 0, 0, 0, 0, 0},
			LE:     []byte{0, 0, 0, 0, 0, 0, 0, 0x80},
		}, {
			Name:   "uint64",
			Object: uint64(0x0102030405060708),
			BE:     []byte{1, 2, 3, 4, 5, 6, 7, 8},
			LE:     []byte{8, 7, 6, 5, 4, 3, 2, 1},
		}, {
			Name:   "float32 1.0",
			Object: float32(1.0),
			BE:     []byte{0x3F, 0x80, 0x00, 0x00},
			LE:     []byte{0x00, 0x00, 0x80, 0x3F},
		}, {
			Name:   "float32 -Inf",
			Object: float32(math.Inf(-1)),
			BE:     []byte{0xFF, 0x80, 0x00, 0x00},
			LE:     []byte{0x00, 0x00, 0x80, 0xFF},
		}, {
			Name:   "float64 1.0",
			Object: float64(1.0),
			BE:     []byte{0x3F, 0xF0, 0, 0, 0, 0, 0, 0},
			LE:     []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F},
		}, {
			Name:   "float64 NaN",
			Object: math.NaN(),
			BE:     []byte{0x7F, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
			DecodeComparator: func(t *testing.T, xi, ai interface{}) {
				assert.True(t, math.IsNaN(xi.(float64)), "decoded value should be NaN")
			},
		}, {
			Name:   "complex64",
			Object: complex64(complex(1.0, 2.0)),
			BE:     []byte{0x3F, 0x80, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00},
			LE:     []byte{0x00, 0x00, 0x80, 0x3F, 0x00, 0x00, 0x00, 0x40},
		}, {
			Name:   "char",
			Object: Char('a'),
			Bytes:  []byte{'a'},
		}, {
			Name:       "char multibyte",
			Direction:  encodeTest,
			Object:     Char('é'),
			EncErrorIs: ErrInvalidCharEncoding,
		}, {
			Name:       "char lead byte",
			Direction:  decodeTest,
			Object:     Char(0),
			Bytes:      []byte{0xC3},
			DecErrorIs: ErrInvalidCharEncoding,
		}, {
			Name:       "truncated",
			Direction:  decodeTest,
			Object:     uint32(0),
			Bytes:      []byte{0, 0},
			DecErrorIs: io.ErrUnexpectedEOF,
		},
	}

	RunTestcases(t, testcases)
}

func TestCodecsBasic(t *testing.T) {
	type nested struct {
		S    string `cdr:"maxlen:16"`
		Skip int32  `cdr:"-"`
		I    int32
	}

	type aligned struct {
		A uint8
		B uint32
		C uint8
		D uint64
	}

	type withPtr struct {
		P *int32
	}

	type withBytes struct {
		Fixed [4]byte
		Var   []byte `cdr:"maxlen:4"`
	}

	type withNames struct {
		Names []string `cdr:"maxlen:2/maxlen:3"`
	}

	type withHidden struct {
		A      uint16
		hidden uint16
		B      uint16
	}

	type withIface struct {
		V interface{}
	}

	testcases := []testcase{
		{
			Name:   "string AB",
			Object: "AB",
			BE:     []byte{0, 0, 0, 3, 'A', 'B', 0},
			LE:     []byte{3, 0, 0, 0, 'A', 'B', 0},
		}, {
			Name:   "string empty",
			Object: "",
			BE:     []byte{0, 0, 0, 1, 0},
			LE:     []byte{1, 0, 0, 0, 0},
		}, {
			Name:      "string zero length",
			Direction: decodeTest,
			Object:    "",
			Bytes:     []byte{0, 0, 0, 0},
		}, {
			Name:   "string utf8",
			Object: "é",
			BE:     []byte{0, 0, 0, 3, 0xC3, 0xA9, 0},
			LE:     []byte{3, 0, 0, 0, 0xC3, 0xA9, 0},
		}, {
			Name:       "string invalid utf8",
			Direction:  decodeTest,
			Object:     "",
			BE:         []byte{0, 0, 0, 3, 0xC3, 0x28, 0},
			DecErrorIs: ErrInvalidUTF8Encoding,
		}, {
			Name:   "bytes 1..5",
			Object: []uint8{1, 2, 3, 4, 5},
			BE:     []byte{0, 0, 0, 5, 1, 2, 3, 4, 5},
			LE:     []byte{5, 0, 0, 0, 1, 2, 3, 4, 5},
		}, {
			Name:   "bytes nil",
			Object: []byte(nil),
			Bytes:  []byte{0, 0, 0, 0},
		}, {
			Name:   "byte array",
			Object: [4]byte{1, 2, 3, 4},
			Bytes:  []byte{1, 2, 3, 4},
		}, {
			Name:   "uint16 sequence",
			Object: []uint16{1, 2},
			BE:     []byte{0, 0, 0, 2, 0, 1, 0, 2},
			LE:     []byte{2, 0, 0, 0, 1, 0, 2, 0},
		}, {
			Name:   "uint16 array",
			Object: [3]uint16{1, 2, 3},
			BE:     []byte{0, 1, 0, 2, 0, 3},
			LE:     []byte{1, 0, 2, 0, 3, 0},
		}, {
			Name: "Simple struct",
			Object: struct {
				X int32
				Y int64
			}{-1, 2},
			// Y is aligned to 8
			BE: []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2},
		}, {
			Name:   "Aligned struct",
			Object: aligned{0xAA, 1, 0xCC, 2},
			BE: []byte{
				0xAA, 0, 0, 0,
				0, 0, 0, 1,
				0xCC, 0, 0, 0, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 2,
			},
			LE: []byte{
				0xAA, 0, 0, 0,
				1, 0, 0, 0,
				0xCC, 0, 0, 0, 0, 0, 0, 0,
				2, 0, 0, 0, 0, 0, 0, 0,
			},
		}, {
			Name:   "Nested struct",
			Object: nested{S: "hi", I: 0x12345678},
			// The terminator leaves the string at 7 bytes; I is padded to 8
			BE: []byte{0, 0, 0, 3, 'h', 'i', 0, 0, 0x12, 0x34, 0x56, 0x78},
		}, {
			Name:       "Nested struct long string",
			Object:     nested{S: "0123456789abcdefg"},
			BE:         append([]byte{0, 0, 0, 18}, []byte("0123456789abcdefg\x00\x00\x00\x00\x00\x00\x00")...),
			EncErrorIs: ErrLengthExceedsMax,
			DecErrorIs: ErrLengthExceedsMax,
		}, {
			Name:   "pointers are transparent",
			Object: withPtr{i32ptr(0x0EA7BEEF)},
			BE:     []byte{0x0E, 0xA7, 0xBE, 0xEF},
		}, {
			Name:       "nil pointer",
			Direction:  encodeTest,
			Object:     withPtr{},
			EncErrorIs: ErrNilPointer,
		}, {
			Name:   "bytes fields",
			Object: withBytes{Fixed: [4]byte{9, 8, 7, 6}, Var: []byte{1, 2, 3}},
			BE:     []byte{9, 8, 7, 6, 0, 0, 0, 3, 1, 2, 3},
		}, {
			Name:       "bytes too long",
			Object:     withBytes{Var: []byte{1, 2, 3, 4, 5}},
			BE:         []byte{0, 0, 0, 0, 0, 0, 0, 5, 1, 2, 3, 4, 5},
			EncErrorIs: ErrLengthExceedsMax,
			DecErrorIs: ErrLengthExceedsMax,
		}, {
			Name:   "layered maxlen",
			Object: withNames{[]string{"a", "bcd"}},
			BE: []byte{
				0, 0, 0, 2,
				0, 0, 0, 2, 'a', 0, 0, 0,
				0, 0, 0, 4, 'b', 'c', 'd', 0,
			},
		}, {
			Name:       "layered maxlen sequence too long",
			Object:     withNames{[]string{"a", "b", "c"}},
			BE:         []byte{0, 0, 0, 3},
			EncErrorIs: ErrLengthExceedsMax,
			DecErrorIs: ErrLengthExceedsMax,
		}, {
			Name:       "layered maxlen string too long",
			Object:     withNames{[]string{"abcd"}},
			BE:         []byte{0, 0, 0, 1, 0, 0, 0, 5, 'a', 'b', 'c', 'd', 0},
			EncErrorIs: ErrLengthExceedsMax,
			DecErrorIs: ErrLengthExceedsMax,
		}, {
			Name:   "unexported fields are skipped",
			Object: withHidden{A: 1, B: 2},
			BE:     []byte{0, 1, 0, 2},
		}, {
			Name:       "interface",
			Object:     withIface{uint16(7)},
			BE:         []byte{0, 7},
			LE:         []byte{7, 0},
			DecErrorIs: ErrSchemaLessDecodingNotSupported,
		}, {
			Name:       "nil interface",
			Direction:  encodeTest,
			Object:     withIface{},
			EncErrorIs: ErrNilPointer,
		},
	}

	RunTestcases(t, testcases)
}

func TestCodecsEnum(t *testing.T) {
	type pair struct {
		X uint8
		Y uint32
	}

	type shape struct {
		Variant uint32   `cdr:"enum:switch"`
		Unit    struct{} `cdr:"enum:0"`
		Newtype int16    `cdr:"enum:1"`
		Tuple   pair     `cdr:"enum:2"`
		Skipped uint64   `cdr:"-"`
		Str     string   `cdr:"enum:5/maxlen:4"`
	}

	type signed struct {
		Variant int32  `cdr:"enum:switch"`
		Minus   uint8  `cdr:"enum:0xFFFFFFFF"`
		Plus    uint16 `cdr:"enum:1"`
	}

	testcases := []testcase{
		{
			Name:   "unit variant",
			Object: shape{Variant: 0},
			Bytes:  []byte{0, 0, 0, 0},
		}, {
			Name:   "newtype variant",
			Object: shape{Variant: 1, Newtype: -2},
			BE:     []byte{0, 0, 0, 1, 0xff, 0xfe},
			LE:     []byte{1, 0, 0, 0, 0xfe, 0xff},
		}, {
			Name:   "struct variant",
			Object: shape{Variant: 2, Tuple: pair{1, 2}},
			BE:     []byte{0, 0, 0, 2, 1, 0, 0, 0, 0, 0, 0, 2},
			LE:     []byte{2, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0},
		}, {
			Name:   "string variant",
			Object: shape{Variant: 5, Str: "Hi!!"},
			BE:     []byte{0, 0, 0, 5, 0, 0, 0, 5, 'H', 'i', '!', '!', 0},
		}, {
			Name:       "string variant too long",
			Object:     shape{Variant: 5, Str: "Hello"},
			BE:         []byte{0, 0, 0, 5, 0, 0, 0, 6, 'H', 'e', 'l', 'l', 'o', 0},
			EncErrorIs: ErrLengthExceedsMax,
			DecErrorIs: ErrLengthExceedsMax,
		}, {
			Name:       "unknown variant",
			Object:     shape{Variant: 3},
			BE:         []byte{0, 0, 0, 3},
			LE:         []byte{3, 0, 0, 0},
			EncErrorIs: ErrUnknownVariant,
			DecErrorIs: ErrUnknownVariant,
		}, {
			Name:   "signed switch",
			Object: signed{Variant: -1, Minus: 9},
			Bytes:  []byte{0xff, 0xff, 0xff, 0xff, 9},
		}, {
			Name:   "signed switch positive",
			Object: signed{Variant: 1, Plus: 0x0102},
			BE:     []byte{0, 0, 0, 1, 1, 2},
		},
	}

	RunTestcases(t, testcases)
}

func TestCodecsUnsupported(t *testing.T) {
	type withOpt struct {
		P *int32 `cdr:"opt"`
	}

	type badTag struct {
		I int32 `cdr:"maxlen:3"`
	}

	type notEnum struct {
		A int32
		B int32 `cdr:"enum:1"`
	}

	testcases := []testcase{
		{
			Name:       "map",
			Object:     map[string]int32{"a": 1},
			Bytes:      []byte{},
			EncErrorIs: ErrTypeNotSupported,
			DecErrorIs: ErrTypeNotSupported,
		}, {
			Name:       "int",
			Object:     int(1),
			Bytes:      []byte{},
			EncErrorIs: ErrTypeNotSupported,
			DecErrorIs: ErrTypeNotSupported,
		}, {
			Name:       "uint",
			Object:     uint(1),
			Bytes:      []byte{},
			EncErrorIs: ErrTypeNotSupported,
			DecErrorIs: ErrTypeNotSupported,
		}, {
			Name:       "opt",
			Object:     withOpt{i32ptr(1)},
			Bytes:      []byte{},
			EncErrorIs: ErrTypeNotSupported,
			DecErrorIs: ErrTypeNotSupported,
		}, {
			Name:       "chan",
			Direction:  encodeTest,
			Object:     make(chan int32),
			EncErrorIs: ErrTypeNotSupported,
		},
	}

	RunTestcases(t, testcases)

	t.Run("bad tags", func(t *testing.T) {
		_, err := SerializeData(badTag{}, CdrBE)
		assert.Error(t, err)

		_, err = SerializeData(notEnum{}, CdrBE)
		assert.Error(t, err)
	})
}

func TestCodecsPlatformLimits(t *testing.T) {
	// These check behaviour on systems where the sizes encoded in the CDR may exceed
	// the maximum value of an int()
	testcases := []testcase{
		{
			Name:       "[32-bit only] MaxU32 bytes",
			ShouldSkip: skipOn64,
			Direction:  decodeTest,
			Object: struct {
				Blob []byte // No max length specified
			}{},
			ReaderFactory: infintelyPaddedReaderFactory([]byte{
				0xFF, 0xFF, 0xFF, 0xFF,
			}),
			DecErrorIs: ErrLengthExceedsPlatformLimit,
		}, {
			Name:       "[32-bit only] MaxU32 []int32",
			ShouldSkip: skipOn64,
			Direction:  decodeTest,
			Object: struct {
				Blob []int32 // No max length specified
			}{},
			ReaderFactory: infintelyPaddedReaderFactory([]byte{
				0xFF, 0xFF, 0xFF, 0xFF,
			}),
			DecErrorIs: ErrLengthExceedsPlatformLimit,
		}, {
			Name:       "[32-bit only] MaxU32 string",
			ShouldSkip: skipOn64,
			Direction:  decodeTest,
			Object: struct {
				Blob string // No max length specified
			}{},
			ReaderFactory: infintelyPaddedReaderFactory([]byte{
				0xFF, 0xFF, 0xFF, 0xFF,
			}),
			DecErrorIs: ErrLengthExceedsPlatformLimit,
		},
	}

	RunTestcases(t, testcases)
}
