// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"reflect"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
)

// boolCodec handles booleans
type boolCodec struct{}

var boolCodecI xCodec = boolCodec{}

func (_ boolCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeBool(v.Bool())
}

func (_ boolCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	b, err := d.DecodeBool()
	if err != nil {
		return err
	}
	v.SetBool(b)
	return nil
}

// charCodec handles cdr.Char (which, being a rune, would otherwise be an int32)
type charCodec struct{}

var charCodecI xCodec = charCodec{}

func (_ charCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeChar(cdrinterfaces.Char(v.Int()))
}

func (_ charCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	c, err := d.DecodeChar()
	if err != nil {
		return err
	}
	v.SetInt(int64(c))
	return nil
}

// int{8,16,32,64}Codec and uint{8,16,32,64}Codec handle integers of their own width
type int8Codec struct{}
type int16Codec struct{}
type int32Codec struct{}
type int64Codec struct{}
type uint8Codec struct{}
type uint16Codec struct{}
type uint32Codec struct{}
type uint64Codec struct{}

var (
	int8CodecI   xCodec = int8Codec{}
	int16CodecI  xCodec = int16Codec{}
	int32CodecI  xCodec = int32Codec{}
	int64CodecI  xCodec = int64Codec{}
	uint8CodecI  xCodec = uint8Codec{}
	uint16CodecI xCodec = uint16Codec{}
	uint32CodecI xCodec = uint32Codec{}
	uint64CodecI xCodec = uint64Codec{}
)

func (_ int8Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeInt8(int8(v.Int()))
}

func (_ int8Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	i, err := d.DecodeInt8()
	v.SetInt(int64(i))
	return err
}

func (_ int16Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeInt16(int16(v.Int()))
}

func (_ int16Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	i, err := d.DecodeInt16()
	v.SetInt(int64(i))
	return err
}

func (_ int32Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeInt32(int32(v.Int()))
}

func (_ int32Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	i, err := d.DecodeInt32()
	v.SetInt(int64(i))
	return err
}

func (_ int64Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeInt64(v.Int())
}

func (_ int64Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	i, err := d.DecodeInt64()
	v.SetInt(i)
	return err
}

func (_ uint8Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeUint8(uint8(v.Uint()))
}

func (_ uint8Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	u, err := d.DecodeUint8()
	v.SetUint(uint64(u))
	return err
}

func (_ uint16Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeUint16(uint16(v.Uint()))
}

func (_ uint16Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	u, err := d.DecodeUint16()
	v.SetUint(uint64(u))
	return err
}

func (_ uint32Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeUint32(uint32(v.Uint()))
}

func (_ uint32Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	u, err := d.DecodeUint32()
	v.SetUint(uint64(u))
	return err
}

func (_ uint64Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeUint64(v.Uint())
}

func (_ uint64Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	u, err := d.DecodeUint64()
	v.SetUint(u)
	return err
}

// floatCodec handles floats
type floatCodec struct{}

var floatCodecI xCodec = floatCodec{}

func (_ floatCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeFloat32(float32(v.Float()))
}

func (_ floatCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	f, err := d.DecodeFloat32()
	v.SetFloat(float64(f))
	return err
}

// doubleCodec handles doubles
type doubleCodec struct{}

var doubleCodecI xCodec = doubleCodec{}

func (_ doubleCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	return e.EncodeFloat64(v.Float())
}

func (_ doubleCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	f, err := d.DecodeFloat64()
	v.SetFloat(f)
	return err
}

// complex64Codec handles complex64s
type complex64Codec struct{}

var complex64CodecI xCodec = complex64Codec{}

func (_ complex64Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	c := complex64(v.Complex())
	if err := e.EncodeFloat32(real(c)); err != nil {
		return err
	}
	return e.EncodeFloat32(imag(c))
}

func (_ complex64Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	re, err := d.DecodeFloat32()
	if err != nil {
		return err
	}
	im, err := d.DecodeFloat32()
	if err != nil {
		return err
	}
	c := complex(re, im)
	v.SetComplex(complex128(c))
	return nil
}

// complex128Codec handles complex128s
type complex128Codec struct{}

var complex128CodecI xCodec = complex128Codec{}

func (_ complex128Codec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	c := v.Complex()
	if err := e.EncodeFloat64(real(c)); err != nil {
		return err
	}
	return e.EncodeFloat64(imag(c))
}

func (_ complex128Codec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	re, err := d.DecodeFloat64()
	if err != nil {
		return err
	}
	im, err := d.DecodeFloat64()
	if err != nil {
		return err
	}
	v.SetComplex(complex(re, im))
	return nil
}
