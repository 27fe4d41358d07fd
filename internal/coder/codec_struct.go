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

// parseFieldTag parses the tag of f. Unexported fields are always skipped
func parseFieldTag(f reflect.StructField, isEnum *tags.IsInEnum) (tags.CDRTag, error) {
	if f.PkgPath != "" {
		return tags.ParseTag(f.Type, "-", isEnum)
	}
	return tags.ParseStructTag(f.Type, f.Tag, isEnum)
}

type field struct {
	index int
	codec xCodec
	name  string
}

func makeField(cr *Coder, f reflect.StructField, tag tags.CDRTag) field {
	if len(f.Index) != 1 {
		panic("Attempt to make field with index of depth >1")
	}

	return field{
		index: f.Index[0],
		codec: cr.getCodec(f.Type, tag),
		name:  f.Name,
	}
}

func (f *field) encode(e cdrinterfaces.Encoder, p reflect.Value) (reflect.Value, error) {
	v := p.Field(f.index)
	err := f.codec.Encode(e, v)
	return v, err
}

func (f *field) decode(d cdrinterfaces.Decoder, p reflect.Value) (reflect.Value, error) {
	v := p.Field(f.index)
	err := f.codec.Decode(d, v)
	return v, err
}

// structCodec encodes each field in declaration order, with no framing
type structCodec struct {
	name   string
	fields []field
}

var _ xCodec = &structCodec{}

type switchKind byte

const (
	switchKindInt switchKind = iota
	switchKindUint
)

// enumCodec encodes the variant index (always as a 32-bit integer) followed by
// the payload of that variant
type enumCodec struct {
	name        string
	switchField field
	bodyFields  []field
	cases       map[uint32]int
	switchKind  switchKind
}

var _ xCodec = &enumCodec{}

func makeStructCodec(cr *Coder, t reflect.Type) cdrinterfaces.Codec {
	var (
		f   reflect.StructField
		tag tags.CDRTag
		err error
	)

	// Iterate until we figure out if we're an enum or not
	isEnum := tags.MaybeInEnum
	i, fieldCount := 0, t.NumField()
	for ; i < fieldCount && isEnum == tags.MaybeInEnum; i++ {
		f = t.Field(i)
		tag, err = parseFieldTag(f, &isEnum)
		if err != nil {
			return &errorCodec{fmt.Errorf("Parsing tag of field '%s' of '%s': %v",
				f.Name, t, err)}
		}

		switch {
		case tag.Kind() == tags.Skip:
			continue
		case isEnum == tags.MaybeInEnum:
			// Should be unreachable
			panic("We found an unskipped field but somehow don't know if we're an enum or not")
		}
	}

	switch isEnum {
	case tags.MaybeInEnum:
		// We never figured it out but also we didn't find any (unskipped) fields. This
		// is the degenerate empty case (which is also how unit variants are spelled),
		// so we'll just construct an empty struct codec
		return &structCodec{name: t.Name()}

	case tags.NotInEnum:
		// We're actually a struct
		c := &structCodec{
			name:   t.Name(),
			fields: make([]field, 0, fieldCount),
		}

		c.fields = append(c.fields, makeField(cr, f, tag))
		for ; i < fieldCount; i++ {
			f = t.Field(i)
			tag, err = parseFieldTag(f, &isEnum)
			if err != nil {
				return &errorCodec{fmt.Errorf("Parsing tag of field '%s' of '%s': %v",
					f.Name, t, err)}
			}

			if tag.Kind() == tags.Skip {
				continue
			}

			c.fields = append(c.fields, makeField(cr, f, tag))
		}

		return c

	case tags.InEnum:
		// We're actually an enum, and f is our switch
		// Every following field is going to be prefixed by an enum:N tag
		if tag.Kind() != tags.EnumSwitch {
			// Shouldn't happen
			panic("First element of enum not switch")
		}

		var switchKind switchKind
		switch f.Type.Kind() {
		case reflect.Int32:
			switchKind = switchKindInt

		case reflect.Uint32:
			switchKind = switchKindUint

		default:
			// Shouldn't happen - tag parsing should have validated legality
			panic("Switch field of enum not valid (must be int32 or uint32)")
		}

		c := &enumCodec{
			name:        t.Name(),
			switchField: makeField(cr, f, tag.Next()),
			bodyFields:  make([]field, fieldCount),
			cases:       make(map[uint32]int, fieldCount-1),
			switchKind:  switchKind,
		}

		for ; i < fieldCount; i++ {
			f = t.Field(i)
			tag, err = parseFieldTag(f, &isEnum)
			if err != nil {
				return &errorCodec{fmt.Errorf("Parsing tag of field '%s' of '%s': %v",
					f.Name, t, err)}
			}

			if tag.Kind() == tags.Skip {
				continue
			}

			if tag.Kind() != tags.EnumCase {
				return &errorCodec{fmt.Errorf("Field '%s' of enum %s is not a variant", f.Name, t)}
			}

			v := tag.OnlyValue()
			if _, ok := c.cases[v]; ok {
				return &errorCodec{fmt.Errorf("Enum variant %d of %s duplicated", v, t)}
			}
			c.cases[v] = i
			c.bodyFields[i] = makeField(cr, f, tag.Next())
		}

		return c

	default:
		panic("unreachable")
	}
}

func (c *structCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) error {
	for _, f := range c.fields {
		_, err := f.encode(e, v)
		if err != nil {
			return errors.WithFieldError(err, c.name, f.name)
		}
	}
	return nil
}

func (c *structCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) error {
	for _, f := range c.fields {
		_, err := f.decode(d, v)
		if err != nil {
			return errors.WithFieldError(err, c.name, f.name)
		}
	}
	return nil
}

func (c *enumCodec) index(swv reflect.Value) uint32 {
	switch c.switchKind {
	case switchKindUint:
		return uint32(swv.Uint())
	default: // switchKindInt
		return uint32(swv.Int())
	}
}

// variant returns the payload field of the variant with index idx
func (c *enumCodec) variant(idx uint32) (*field, error) {
	caseField, exists := c.cases[idx]
	if !exists {
		err := errors.UnknownVariantError{Index: idx}
		return nil, errors.WithFieldError(err, c.name, "?", fmt.Sprintf("enum:%d", idx))
	}
	return &c.bodyFields[caseField], nil
}

func (c *enumCodec) Encode(e cdrinterfaces.Encoder, v reflect.Value) (err error) {
	idx := c.index(v.Field(c.switchField.index))

	// Check before writing anything so that nothing is emitted for undeclared variants
	f, err := c.variant(idx)
	if err != nil {
		return err
	}

	if _, err = c.switchField.encode(e, v); err != nil {
		return errors.WithFieldError(err, c.name, c.switchField.name, "enum:switch")
	}

	_, err = f.encode(e, v)
	if err != nil {
		err = errors.WithFieldError(err, c.name, f.name, fmt.Sprintf("enum:%d", idx))
	}
	return
}

func (c *enumCodec) Decode(d cdrinterfaces.Decoder, v reflect.Value) (err error) {
	swv, err := c.switchField.decode(d, v)
	if err != nil {
		err = errors.WithFieldError(err, c.name, c.switchField.name, "enum:switch")
		return
	}

	idx := c.index(swv)
	f, err := c.variant(idx)
	if err != nil {
		return err
	}

	_, err = f.decode(d, v)
	if err != nil {
		err = errors.WithFieldError(err, c.name, f.name, fmt.Sprintf("enum:%d", idx))
	}
	return
}
