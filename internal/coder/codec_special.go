// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"reflect"
	"sync"
	"sync/atomic"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
)

// codec embedding a fixed, memoised error (generally
// indicating that a type can't be marshalled)
type errorCodec struct {
	err error
}

func (c *errorCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return c.err
}

func (c *errorCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	return c.err
}

// placeholder codec for types under construction, to handle cycles
type deferredCodec struct {
	real atomic.Value // xCodec
	wg   sync.WaitGroup
}

var _ xCodec = &deferredCodec{}

func newDeferredCodec() *deferredCodec {
	dc := new(deferredCodec)
	dc.wg.Add(1)
	return dc
}

func (dc *deferredCodec) get() xCodec {
	real := dc.real.Load()
	if real == nil {
		dc.wg.Wait()
		real = dc.real.Load()
	}
	return real.(xCodec)
}

func (dc *deferredCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return dc.get().Encode(e, v)
}

func (dc *deferredCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	return dc.get().Decode(d, v)
}

func (dc *deferredCodec) resolve(real xCodec) {
	dc.real.Store(real)
	dc.wg.Done()
}

// marshalerCodec handles types which know how to self marshal
type marshalerCodec struct{}

var marshalerCodecI marshalerCodec

func (mc *marshalerCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return v.Interface().(cdrinterfaces.Marshaler).MarshalCDR(e)
}

func (mc *marshalerCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	return v.Interface().(cdrinterfaces.Marshaler).UnmarshalCDR(d)
}

// addrMarshalerCodec handles types which self marshal through pointer receivers
type addrMarshalerCodec struct {
	t reflect.Type
}

func (mc *addrMarshalerCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	if !v.CanAddr() {
		// e.g. a value passed directly to Encode; copy it somewhere addressable
		p := reflect.New(mc.t)
		p.Elem().Set(v)
		v = p.Elem()
	}
	return v.Addr().Interface().(cdrinterfaces.Marshaler).MarshalCDR(e)
}

func (mc *addrMarshalerCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	// Decode targets are always settable, and so addressable
	return v.Addr().Interface().(cdrinterfaces.Marshaler).UnmarshalCDR(d)
}
