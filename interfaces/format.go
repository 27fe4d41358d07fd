// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package cdrinterfaces

import (
	"encoding/binary"
	"fmt"
)

// RepresentationFormat identifies the wire variant of an encapsulated payload.
// Its value is the format id carried in the encapsulation header.
type RepresentationFormat uint16

const (
	CdrBE   RepresentationFormat = 0x0000
	CdrLE   RepresentationFormat = 0x0001
	PlCdrBE RepresentationFormat = 0x0002
	PlCdrLE RepresentationFormat = 0x0003
)

// The low bit of a format id selects little endian
const endiannessBitMask = 0x0001

// ID returns the format id written to the encapsulation header
func (f RepresentationFormat) ID() uint16 {
	return uint16(f)
}

// Valid reports whether f is one of the known formats
func (f RepresentationFormat) Valid() bool {
	return f <= PlCdrLE
}

// Endianness returns the byte order of payloads in this format. The PL
// variants share the byte order of their plain counterparts.
func (f RepresentationFormat) Endianness() Endianness {
	if f&endiannessBitMask != 0 {
		return LittleEndian
	}
	return BigEndian
}

func (f RepresentationFormat) String() string {
	switch f {
	case CdrBE:
		return "CDR_BE"
	case CdrLE:
		return "CDR_LE"
	case PlCdrBE:
		return "PL_CDR_BE"
	case PlCdrLE:
		return "PL_CDR_LE"
	default:
		return fmt.Sprintf("RepresentationFormat(0x%04x)", uint16(f))
	}
}

type Endianness byte

const (
	BigEndian Endianness = iota
	LittleEndian
)

// ByteOrder returns the encoding/binary order for e
func (e Endianness) ByteOrder() binary.ByteOrder {
	switch e {
	case LittleEndian:
		return binary.LittleEndian
	default:
		return binary.BigEndian
	}
}

func (e Endianness) String() string {
	switch e {
	case LittleEndian:
		return "little endian"
	default:
		return "big endian"
	}
}

// SizeLimit bounds the total number of bytes an operation may produce or
// consume. The zero value is unbounded.
type SizeLimit struct {
	max     uint64
	bounded bool
}

// Infinite places no limit on size
var Infinite SizeLimit

// Bounded limits size to max bytes
func Bounded(max uint64) SizeLimit {
	return SizeLimit{max: max, bounded: true}
}

// Max returns the limit, and false if there is none
func (l SizeLimit) Max() (uint64, bool) {
	return l.max, l.bounded
}

func (l SizeLimit) String() string {
	if !l.bounded {
		return "Infinite"
	}
	return fmt.Sprintf("Bounded(%d)", l.max)
}

// Char is a CDR char. It occupies a single byte on the wire, so only runes
// below 0x80 may be encoded or decoded.
type Char rune
