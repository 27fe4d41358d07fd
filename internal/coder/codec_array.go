// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"reflect"
	"sync"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/errors"
	"go.e43.eu/cdr/internal/tags"
)

// Sequences are first allocated with at most this many bytes of elements
// (and at least one element); any more are appended as they are decoded
const sliceInitialAllocLimit = 64 * 1024

func newForT(t reflect.Type) func() interface{} {
	return func() interface{} {
		return reflect.New(t)
	}
}

// isRawByte returns whether t may be copied to and from the wire as plain bytes
func isRawByte(t reflect.Type) bool {
	if t.Kind() != reflect.Uint8 {
		return false
	}
	return !t.Implements(marshalerType) && !reflect.PtrTo(t).Implements(marshalerType)
}

// byteArrayCodec handles [N]byte, which encode as exactly N octets
type byteArrayCodec struct {
	bufs sync.Pool
	len  int
}

var _ xCodec = &byteArrayCodec{}

type arrayCodec struct {
	elem xCodec
	len  int
}

func makeArrayCodec(cr *Coder, t reflect.Type, tag tags.CDRTag) cdrinterfaces.Codec {
	switch {
	case tag.Kind() != tags.Noop:
		return &errorCodec{errors.InvalidTagForTypeError{T: t, Tag: tag}}
	case tag.Next().Empty() && isRawByte(t.Elem()):
		c := new(byteArrayCodec)
		c.bufs.New = newForT(t)
		c.len = t.Len()
		return c
	default:
		return &arrayCodec{
			elem: cr.getCodec(t.Elem(), tag.Next()),
			len:  t.Len(),
		}
	}
}

func (c *byteArrayCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	// If the user passed in an on-the-stack struct, e.g.
	// e.Encode(struct{v [4]byte}{}), then v.CanAddr() may be false
	// which means we cannot slice it.
	//
	// In that scenario, we can either
	//   (1) Copy byte-by-byte, using v.Index(i) each time, or
	//   (2) Copy the data into a temporary buffer on the heap
	// We choose to do (2). Any allocation overhead is amortised by
	// storing these temporary buffers in a sync.Pool.
	//
	// We can't hit this case on decode because Decode must always be
	// passed a pointer
	if !v.CanAddr() {
		p := c.bufs.Get().(reflect.Value)
		defer c.bufs.Put(p)

		e := p.Elem()
		e.Set(v)
		v = e
	}

	s := v.Slice(0, v.Len()).Bytes()
	return e.EncodeFixedBytes(s)
}

func (c *byteArrayCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	l := v.Len()
	s := v.Slice(0, l).Bytes()
	return d.DecodeFixedBytes(s)
}

func (c *arrayCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	for i, l := 0, v.Len(); i < l; i++ {
		if err := c.elem.Encode(e, v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *arrayCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	for i, l := 0, v.Len(); i < l; i++ {
		if err := c.elem.Decode(d, v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// byteSliceCodec handles []byte, which encodes as a byte buffer
type byteSliceCodec struct {
	t       reflect.Type
	maxlen  int
	origMax uint32
}

var _ xCodec = &byteSliceCodec{}

type sliceCodec struct {
	elem    xCodec
	t       reflect.Type
	maxlen  int
	origMax uint32
}

func makeSliceCodec(cr *Coder, t reflect.Type, tag tags.CDRTag) cdrinterfaces.Codec {
	maxlen := ^uint32(0)

	switch tag.Kind() {
	case tags.MaxLen:
		maxlen = tag.OnlyValue()
	case tags.Noop:
		// Nothing
	default:
		return &errorCodec{errors.InvalidTagForTypeError{T: t, Tag: tag}}
	}

	// Cap lengths at maxInt
	origMax := maxlen
	if uint64(maxlen) > uint64(maxInt) {
		// Do two step assignment to prevent the compiler from being too smart
		// and complaining at us on builds where this code is unreachable
		i := maxInt
		maxlen = uint32(i)
	}

	switch {
	case tag.Next().Empty() && isRawByte(t.Elem()):
		return &byteSliceCodec{t, int(maxlen), origMax}
	default:
		return &sliceCodec{
			elem:    cr.getCodec(t.Elem(), tag.Next()),
			t:       t,
			maxlen:  int(maxlen),
			origMax: origMax,
		}
	}
}

func (c *byteSliceCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	s := v.Bytes()
	if len(s) > c.maxlen {
		return errors.LengthError{Actual: uint64(len(s)), Max: uint64(c.origMax)}
	}

	return e.EncodeBytes(s)
}

func (c *byteSliceCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	s, err := d.DecodeBytes(c.maxlen)
	if err != nil {
		if le, ok := err.(errors.LengthError); ok {
			le.Max = uint64(c.origMax)
			return le
		}
		return err
	}

	if s == nil {
		v.Set(reflect.Zero(c.t))
	} else {
		v.SetBytes(s)
	}
	return nil
}

func (c *sliceCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	l := v.Len()
	if uint64(l) > uint64(c.maxlen) {
		return errors.LengthError{Actual: uint64(l), Max: uint64(c.origMax)}
	}

	if err := e.EncodeUint32(uint32(l)); err != nil {
		return err
	}

	for i := 0; i < l; i++ {
		if err := c.elem.Encode(e, v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// sliceInitialCap returns how many elements of t to allocate up front for a
// sequence of l elements
func sliceInitialCap(t reflect.Type, l uint32) int {
	limit := uint64(sliceInitialAllocLimit)
	if size := uint64(t.Size()); size != 0 {
		limit /= size
	}
	if limit == 0 {
		limit = 1
	}
	if uint64(l) < limit {
		return int(l)
	}
	return int(limit)
}

func (c *sliceCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	l, err := d.DecodeUint32()
	switch {
	case err != nil:
		return err
	case l == 0:
		// Tiny optimisation: Skip allocating zero-length slices
		v.Set(reflect.Zero(c.t))
		return nil
	case uint64(l) > uint64(c.maxlen):
		return errors.LengthError{Actual: uint64(l), Max: uint64(c.origMax)}
	}

	// The count is untrusted until the elements arrive, so grow as we go
	initialCap := sliceInitialCap(c.t.Elem(), l)

	s := reflect.MakeSlice(c.t, initialCap, initialCap)
	for i := 0; i < int(l); i++ {
		if i == s.Len() {
			s = reflect.Append(s, reflect.Zero(c.t.Elem()))
		}
		if err := c.elem.Decode(d, s.Index(i)); err != nil {
			return err
		}
	}

	v.Set(s)
	return nil
}
