// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"encoding/binary"
	"io"

	"go.uber.org/zap"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/errors"
)

// HeaderSize is the length of the encapsulation header which precedes every
// serialized payload
const HeaderSize = 4

// The header is always big endian, whatever the payload byte order, so that
// it can be parsed before the payload byte order is known:
//
//    bytes 0-1  format id
//    bytes 2-3  options (reserved; written as zero, ignored when read)

func checkFormat(format cdrinterfaces.RepresentationFormat) error {
	if !format.Valid() {
		return errors.InvalidEncapsulationError{ID: format.ID()}
	}
	return nil
}

func writeHeader(w io.Writer, format cdrinterfaces.RepresentationFormat) error {
	var hdr [HeaderSize]byte
	binary.BigEndian.PutUint16(hdr[0:2], format.ID())
	_, err := w.Write(hdr[:])
	return err
}

// parseHeader maps a header to its format
func parseHeader(hdr []byte) (cdrinterfaces.RepresentationFormat, error) {
	id := binary.BigEndian.Uint16(hdr[0:2])
	format := cdrinterfaces.RepresentationFormat(id)
	if !format.Valid() {
		Logger().Debug("rejected encapsulation header", zap.Uint16("id", id))
		return format, errors.InvalidEncapsulationError{ID: id}
	}
	return format, nil
}

// ReadHeader reads an encapsulation header from r
func ReadHeader(r io.Reader) (cdrinterfaces.RepresentationFormat, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, err
	}
	return parseHeader(hdr[:])
}

// readHeader reads the header through the decoder (so that it counts against
// the size limit), switches the decoder to the format it names and restarts
// the payload position
func (d *decoder) readHeader() (cdrinterfaces.RepresentationFormat, error) {
	var hdr [HeaderSize]byte
	if err := d.read(hdr[:]); err != nil {
		return 0, err
	}

	format, err := parseHeader(hdr[:])
	if err != nil {
		return format, err
	}

	Logger().Debug("decoded encapsulation header",
		zap.Stringer("format", format),
		zap.Stringer("endianness", format.Endianness()))

	d.order = format.Endianness().ByteOrder()
	d.pos = 0
	return format, nil
}
