// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"reflect"
	"sync"

	"go.uber.org/zap"

	cdrinterfaces "go.e43.eu/cdr/interfaces"
	"go.e43.eu/cdr/internal/errors"
	"go.e43.eu/cdr/internal/tags"
)

const (
	// maxUint is the maximum value a uint can hold
	maxUint = ^uint(0)
	// maxInt is the maximum value an int can hold
	maxInt = int(maxUint >> 1)
)

// type xCodec is the internal codec representation we use
type xCodec = cdrinterfaces.Codec

var (
	marshalerType = reflect.TypeOf((*cdrinterfaces.Marshaler)(nil)).Elem()
	charType      = reflect.TypeOf(cdrinterfaces.Char(0))
)

type xType struct {
	Type       reflect.Type
	EncodedTag string
}

type Coder struct {
	knownBaseCodecs sync.Map // map[reflect.Type]xCodec
	knownCodecs     sync.Map // map[xType]xCodec
}

var _ cdrinterfaces.Coder = &Coder{}

func NewCoder() *Coder {
	return new(Coder)
}

func (cr *Coder) getBaseCodec(t reflect.Type) xCodec {
	c, ok := cr.knownBaseCodecs.Load(t)
	if ok {
		return c.(xCodec)
	}

	// Less common case: need to construct a codec
	return cr.getNewCodec(xType{t, ""}, nil)
}

func (cr *Coder) getCodec(t reflect.Type, tag tags.CDRTag) xCodec {
	// Common case: already known; just lookup type
	xt := xType{t, tag.ByteString()}
	c, ok := cr.knownCodecs.Load(xt)
	if ok {
		return c.(xCodec)
	}

	// Less common case: need to construct a codec
	return cr.getNewCodec(xt, tag)
}

// Types of object you are prevented from registering codecs for
var prohibitedCustomCodecKinds = map[reflect.Kind]struct{}{
	reflect.Invalid: struct{}{},

	// Prohibited because these would interact poorly with tagged fields in structs.
	// These problems are not unsolvable, but we are protecting against them for now
	reflect.Array:  struct{}{},
	reflect.Slice:  struct{}{},
	reflect.String: struct{}{},
	reflect.Map:    struct{}{},

	// Would make behaviour of pointers in general inconsistent
	reflect.Ptr:       struct{}{},
	reflect.Interface: struct{}{},

	// These make little sense to support
	reflect.Chan: struct{}{},
	reflect.Func: struct{}{},

	reflect.UnsafePointer: struct{}{},
}

// These are blocked because implementing different behaviour for
// the primitive types would be incredibly confusing
var prohibitedPrimitives = map[reflect.Type]struct{}{
	reflect.TypeOf(false):         struct{}{},
	reflect.TypeOf(int8(0)):       struct{}{},
	reflect.TypeOf(int16(0)):      struct{}{},
	reflect.TypeOf(int32(0)):      struct{}{},
	reflect.TypeOf(int64(0)):      struct{}{},
	reflect.TypeOf(int(0)):        struct{}{},
	reflect.TypeOf(uint8(0)):      struct{}{},
	reflect.TypeOf(uint16(0)):     struct{}{},
	reflect.TypeOf(uint32(0)):     struct{}{},
	reflect.TypeOf(uint64(0)):     struct{}{},
	reflect.TypeOf(uint(0)):       struct{}{},
	reflect.TypeOf(uintptr(0)):    struct{}{},
	reflect.TypeOf(float32(0)):    struct{}{},
	reflect.TypeOf(float64(0)):    struct{}{},
	reflect.TypeOf(complex64(0)):  struct{}{},
	reflect.TypeOf(complex128(0)): struct{}{},
	charType:                      struct{}{},
}

func (cr *Coder) RegisterCodec(template interface{}, c cdrinterfaces.Codec) {
	cr.RegisterCodecReflect(reflect.TypeOf(template), c)
}

func (cr *Coder) RegisterCodecReflect(t reflect.Type, c cdrinterfaces.Codec) {
	if t == nil {
		panic("Attempt to register codec for nil type")
	}

	if _, badKind := prohibitedCustomCodecKinds[t.Kind()]; badKind {
		panic(fmt.Sprintf("Attempt to register codec for type %s which is of a prohibited kind", t))
	}

	if _, isPrimitive := prohibitedPrimitives[t]; isPrimitive {
		panic(fmt.Sprintf("Attempt to register codec for primitive %s is prohibited", t))
	}

	xt := xType{t, ""}
	existing, found := cr.knownCodecs.LoadOrStore(xt, c)
	if found && existing.(xCodec) != c {
		panic(fmt.Sprintf("Attempt to register codec '%s' for type '%s' but '%s' is already registered", c, t, existing))
	}
}

func (cr *Coder) getNewCodec(xt xType, tag tags.CDRTag) xCodec {
	// We create a "deferred codec" in order to handle cycles in the type graph. Note
	// that we also need to be prepared for the possibility that another goroutine
	// is constructing a type related to this one or looking this one up simultaneously,
	// so this codec must not explode if called while being constructed
	//
	// Every call to the deferred codec will block until we finish constructing the
	// real one.
	dc := newDeferredCodec()

	// We were potentially racing against someone else to build the codec up to this point,
	// so we must check that here. If someone else has built (or is building) the codec,
	// we'll go with theirs instead
	c, ok := cr.knownCodecs.LoadOrStore(xt, dc)
	if ok {
		return c.(xCodec)
	}

	// Actually construct the codec
	cc := cr.buildCodec(xt.Type, tag)
	Logger().Debug("built codec",
		zap.Stringer("type", xt.Type),
		zap.Stringer("tag", tag),
		zap.String("codec", fmt.Sprintf("%T", cc)))

	// Publish our newly built: Replace the deferred one in the store, and close the signalling channel
	// so that anyone waiting on us may progress
	cr.knownCodecs.Store(xt, cc)
	if tag.Empty() {
		cr.knownBaseCodecs.Store(xt.Type, cc)
	}
	dc.resolve(cc)
	return cc
}

func (cr *Coder) buildCodec(t reflect.Type, tag tags.CDRTag) cdrinterfaces.Codec {
	// Handle certain special case tags first
	switch tag.Kind() {
	case tags.Opt:
		// Plain CDR has no optional values
		return &errorCodec{errors.InvalidTypeError{T: t}}
	}

	k := t.Kind()

	// Delegate straight through to types with their own tag handling
	switch k {
	case reflect.Ptr:
		return makePtrCodec(cr, t, tag)

	case reflect.String:
		return makeStringCodec(t, tag)

	case reflect.Array:
		return makeArrayCodec(cr, t, tag)

	case reflect.Slice:
		return makeSliceCodec(cr, t, tag)
	}

	// None of the remaining types admit any tags
	if !tag.Empty() {
		return &errorCodec{errors.InvalidTagForTypeError{T: t, Tag: tag}}
	}

	switch {
	case k == reflect.Interface:
		return interfaceCodecI
	case t.Implements(marshalerType):
		return &marshalerCodecI
	case reflect.PtrTo(t).Implements(marshalerType):
		return &addrMarshalerCodec{t: t}
	case t == charType:
		return charCodecI
	}

	switch k {
	case reflect.Bool:
		return boolCodecI
	case reflect.Int8:
		return int8CodecI
	case reflect.Int16:
		return int16CodecI
	case reflect.Int32:
		return int32CodecI
	case reflect.Int64:
		return int64CodecI
	case reflect.Uint8:
		return uint8CodecI
	case reflect.Uint16:
		return uint16CodecI
	case reflect.Uint32:
		return uint32CodecI
	case reflect.Uint64:
		return uint64CodecI
	case reflect.Float32:
		return floatCodecI
	case reflect.Float64:
		return doubleCodecI
	case reflect.Complex64:
		return complex64CodecI
	case reflect.Complex128:
		return complex128CodecI
	case reflect.Struct:
		return makeStructCodec(cr, t)
	default:
		// Maps, platform sized integers, channels, functions...
		return &errorCodec{errors.InvalidTypeError{T: t}}
	}
}

func (cr *Coder) NewEncoder(w io.Writer, format cdrinterfaces.RepresentationFormat) cdrinterfaces.Encoder {
	return cr.newEncoder(w, format)
}

func (cr *Coder) newEncoder(w io.Writer, format cdrinterfaces.RepresentationFormat) *encoder {
	e := encoderPool.Get().(*encoder)
	e.reset(cr, w, format)
	return e
}

func (cr *Coder) NewDecoder(r io.Reader, format cdrinterfaces.RepresentationFormat) cdrinterfaces.Decoder {
	return cr.newDecoder(r, format, cdrinterfaces.Infinite)
}

func (cr *Coder) newDecoder(r io.Reader, format cdrinterfaces.RepresentationFormat, limit cdrinterfaces.SizeLimit) *decoder {
	d := decoderPool.Get().(*decoder)
	d.reset(cr, r, format, limit)
	return d
}

// calcSize runs the size pass over o, starting the count at base bytes
func (cr *Coder) calcSize(o interface{}, base uint64, limit cdrinterfaces.SizeLimit) (uint64, error) {
	s := sizerPool.Get().(*sizer)
	defer s.release()

	s.reset(cr, limit)
	if err := s.size.add(base); err != nil {
		return 0, err
	}
	if err := s.Encode(o); err != nil {
		return 0, err
	}
	return s.total(), nil
}

func (cr *Coder) CalcSerializedSize(o interface{}) (uint64, error) {
	return cr.calcSize(o, HeaderSize, cdrinterfaces.Infinite)
}

func (cr *Coder) CalcSerializedSizeBounded(o interface{}, max uint64) (uint64, error) {
	return cr.calcSize(o, HeaderSize, cdrinterfaces.Bounded(max))
}

func (cr *Coder) CalcSerializedDataSize(o interface{}) (uint64, error) {
	return cr.calcSize(o, 0, cdrinterfaces.Infinite)
}

// marshal encodes o into a new buffer, with a header if header is set
func (cr *Coder) marshal(o interface{}, format cdrinterfaces.RepresentationFormat, limit cdrinterfaces.SizeLimit, header bool) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	var base uint64
	if header {
		base = HeaderSize
	}

	size, err := cr.calcSize(o, base, limit)
	if err != nil {
		return nil, err
	}

	e := marshalEncoderPool.Get().(*marshalEncoder)
	defer e.release()

	e.reset(cr, format, size)
	if header {
		if err := writeHeader(&e.b, format); err != nil {
			return nil, err
		}
	}
	if err := e.Encode(o); err != nil {
		return nil, err
	}

	return append([]byte(nil), e.b.Bytes()...), nil
}

func (cr *Coder) Serialize(o interface{}, format cdrinterfaces.RepresentationFormat, limit cdrinterfaces.SizeLimit) ([]byte, error) {
	return cr.marshal(o, format, limit, true)
}

func (cr *Coder) SerializeData(o interface{}, format cdrinterfaces.RepresentationFormat) ([]byte, error) {
	return cr.marshal(o, format, cdrinterfaces.Infinite, false)
}

var writerPool = sync.Pool{
	New: func() interface{} {
		return bufio.NewWriter(nil)
	},
}

func (cr *Coder) SerializeInto(w io.Writer, o interface{}, format cdrinterfaces.RepresentationFormat, limit cdrinterfaces.SizeLimit) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	if _, bounded := limit.Max(); bounded {
		if _, err := cr.calcSize(o, HeaderSize, limit); err != nil {
			return err
		}
	}

	switch w.(type) {
	case *bytes.Buffer, *bufio.Writer:
		// Already buffered
		return cr.write(w, o, format)
	}

	bw := writerPool.Get().(*bufio.Writer)
	bw.Reset(w)
	err := cr.write(bw, o, format)
	if err == nil {
		err = bw.Flush()
	}
	bw.Reset(nil)
	writerPool.Put(bw)
	return err
}

func (cr *Coder) write(w io.Writer, o interface{}, format cdrinterfaces.RepresentationFormat) error {
	if err := writeHeader(w, format); err != nil {
		return err
	}

	e := cr.newEncoder(w, format)
	err := e.Encode(o)
	e.release()
	return err
}

func (cr *Coder) Deserialize(buf []byte, op interface{}) error {
	var r bytes.Reader
	r.Reset(buf)
	return cr.DeserializeFrom(&r, op, cdrinterfaces.Infinite)
}

func (cr *Coder) DeserializeFrom(r io.Reader, op interface{}, limit cdrinterfaces.SizeLimit) error {
	// The format is replaced once the header has been read
	d := cr.newDecoder(r, cdrinterfaces.CdrBE, limit)
	defer d.release()

	if _, err := d.readHeader(); err != nil {
		return err
	}
	return d.Decode(op)
}

func (cr *Coder) DeserializeData(buf []byte, format cdrinterfaces.RepresentationFormat, op interface{}) error {
	var r bytes.Reader
	r.Reset(buf)
	return cr.DeserializeDataFrom(&r, format, op, cdrinterfaces.Infinite)
}

func (cr *Coder) DeserializeDataFrom(r io.Reader, format cdrinterfaces.RepresentationFormat, op interface{}, limit cdrinterfaces.SizeLimit) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	d := cr.newDecoder(r, format, limit)
	err := d.Decode(op)
	d.release()
	return err
}
