// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"fmt"
	"reflect"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/errors"
	"go.e43.eu/cdr/internal/tags"
)

// varStringCodec handles strings, optionally bounded
type varStringCodec struct {
	maxlen  int
	origMax uint32
}

var _ xCodec = &varStringCodec{}

func makeStringCodec(t reflect.Type, tag tags.CDRTag) cdrinterfaces.Codec {
	if !tag.Next().Empty() {
		return &errorCodec{fmt.Errorf("string must not have any following tags (%s)", tag)}
	}

	var len uint32
	switch tag.Kind() {
	case tags.MaxLen:
		len = tag.OnlyValue()

	case tags.Noop:
		// The length prefix counts the terminator
		len = ^uint32(0) - 1

	default:
		return &errorCodec{errors.InvalidTagForTypeError{T: t, Tag: tag}}
	}

	origMax := len
	if uint64(len) > uint64(maxInt) {
		// Do two step assignment to prevent the compiler from being too smart
		// and complaining at us on builds where this code is unreachable
		i := maxInt
		len = uint32(i)
	}

	return &varStringCodec{int(len), origMax}
}

func (c *varStringCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return c.encode(e, v.String())
}

func (c *varStringCodec) encode(e cdrinterfaces.Encoder, s string) error {
	if uint64(len(s)) <= uint64(c.maxlen) {
		return e.EncodeString(s)
	} else {
		return errors.LengthError{Actual: uint64(len(s)), Max: uint64(c.origMax)}
	}
}

func (c *varStringCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	s, err := c.decode(d)
	v.SetString(s)
	return err
}

func (c *varStringCodec) decode(d cdrinterfaces.Decoder) (string, error) {
	s, err := d.DecodeString(c.maxlen)
	if err != nil {
		if le, ok := err.(errors.LengthError); ok {
			le.Max = uint64(c.origMax)
			return s, le
		}
		return s, err
	}
	return s, nil
}
