// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"reflect"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/errors"
	"go.e43.eu/cdr/internal/tags"
)

// ptrCodec handles pointers. CDR has no notion of a reference, so a pointer
// is encoded as the value it points to
type ptrCodec struct {
	elem  xCodec
	elemt reflect.Type
}

func makePtrCodec(cr *Coder, t reflect.Type, tag tags.CDRTag) xCodec {
	if tag.Kind() != tags.Noop {
		return &errorCodec{errors.InvalidTagForTypeError{T: t, Tag: tag}}
	}

	elemt := t.Elem()
	c := cr.getCodec(elemt, tag.Next())
	return &ptrCodec{
		elem:  c,
		elemt: elemt,
	}
}

func (pc *ptrCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	if v.IsNil() {
		return errors.ErrNilPointer
	}
	return pc.elem.Encode(e, v.Elem())
}

func (pc *ptrCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	if v.IsNil() {
		v.Set(reflect.New(pc.elemt))
	}
	return pc.elem.Decode(d, v.Elem())
}

// interfaceCodec handles interface values. They encode as whatever they
// hold, but can never be decoded as nothing on the wire says what to
// decode them as
type interfaceCodec struct{}

var interfaceCodecI xCodec = interfaceCodec{}

func (_ interfaceCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	if v.IsNil() {
		return errors.ErrNilPointer
	}
	return e.EncodeValue(v.Elem())
}

func (_ interfaceCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	return errors.ErrSchemaLessDecodingNotSupported
}
