// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package errors

import (
	"fmt"
	"reflect"
	"strings"

	"go.e43.eu/cdr/internal/tags"
)

const (
	// maxUint is the maximum value a uint can hold
	maxUint = ^uint(0)
	// maxInt is the maximum value an int can hold
	maxInt = int(maxUint >> 1)
)

type xerror string

func (e xerror) Error() string {
	return string(e)
}

const (
	// The bounded size of the encoding was exceeded, either by the size
	// precomputation pass or while decoding from a bounded source
	ErrSizeLimitExceeded = xerror("cdr: Size limit exceeded")

	// A decoded boolean was neither 0 nor 1
	ErrInvalidBoolEncoding = xerror("cdr: Invalid bool encoding")

	// A char was outside the single byte range (its UTF-8 encoding would
	// require more than one byte)
	ErrInvalidCharEncoding = xerror("cdr: Invalid char encoding")

	// The body of a string was not valid UTF-8
	ErrInvalidUTF8Encoding = xerror("cdr: Invalid UTF-8 encoding")

	// The encapsulation header named an unknown representation format
	ErrInvalidEncapsulation = xerror("cdr: Invalid encapsulation")

	// The type cannot be represented in plain CDR (options, maps, platform
	// sized integers, channels, functions)
	ErrTypeNotSupported = xerror("cdr: Type not supported")

	// CDR carries no type information; decoding requires a concrete target
	ErrSchemaLessDecodingNotSupported = xerror("cdr: Schema-less decoding not supported")

	// Enum variant index not declared by the target type
	ErrUnknownVariant = xerror("cdr: Unknown variant")

	// String or sequence longer than permitted by the schema (or by CDR; for
	// values where the schema specifies no limit, it is implicitly treated as
	// if 0xFFFFFFFF were specified)
	ErrLengthExceedsMax = xerror("cdr: Variable length object too long")

	// Sequence or string length longer than we can decode
	//
	// This error means that a received length was larger than can be represented
	// as the Go `int` type but less than any maximum specified by the schema.
	// It can only occur on 32-bit platforms.
	ErrLengthExceedsPlatformLimit = xerror("cdr: Variable length object too long for platform")

	// Decode expected pointer parameter
	ErrNotPointer = xerror("cdr: Expected pointer parameter")

	// Pointer was unexpectedly nil
	ErrNilPointer = xerror("cdr: Unexpected nil pointer")
)

type InvalidBoolEncodingError struct {
	Value byte
}

func (e InvalidBoolEncodingError) Is(target error) bool {
	return target == ErrInvalidBoolEncoding
}

func (e InvalidBoolEncodingError) Error() string {
	return fmt.Sprintf("%s (0x%02x)", ErrInvalidBoolEncoding, e.Value)
}

// InvalidUTF8EncodingError reports the length of the longest valid
// UTF-8 prefix of the rejected string body
type InvalidUTF8EncodingError struct {
	ValidUpTo int
}

func (e InvalidUTF8EncodingError) Is(target error) bool {
	return target == ErrInvalidUTF8Encoding
}

func (e InvalidUTF8EncodingError) Error() string {
	return fmt.Sprintf("%s (invalid sequence at byte %d)", ErrInvalidUTF8Encoding, e.ValidUpTo)
}

type InvalidEncapsulationError struct {
	ID uint16
}

func (e InvalidEncapsulationError) Is(target error) bool {
	return target == ErrInvalidEncapsulation
}

func (e InvalidEncapsulationError) Error() string {
	return fmt.Sprintf("%s (format id 0x%04x)", ErrInvalidEncapsulation, e.ID)
}

type UnknownVariantError struct {
	Index uint32
}

func (e UnknownVariantError) Is(target error) bool {
	return target == ErrUnknownVariant
}

func (e UnknownVariantError) Error() string {
	return fmt.Sprintf("%s (index %d)", ErrUnknownVariant, e.Index)
}

type SizeLimitError struct {
	Size, Max uint64
}

func (e SizeLimitError) Is(target error) bool {
	return target == ErrSizeLimitExceeded
}

func (e SizeLimitError) Error() string {
	return fmt.Sprintf("%s (%d > %d)", ErrSizeLimitExceeded, e.Size, e.Max)
}

type InvalidTypeError struct {
	T reflect.Type
}

func (e InvalidTypeError) Is(target error) bool {
	return target == ErrTypeNotSupported
}

func (e InvalidTypeError) Error() string {
	return fmt.Sprintf("cdr: Type '%s' unsupported", e.T)
}

type InvalidTagForTypeError struct {
	T   reflect.Type
	Tag tags.CDRTag
}

func (e InvalidTagForTypeError) Error() string {
	return fmt.Sprintf("cdr: Tag '%s' unsupported for type '%s'", e.Tag, e.T)
}

type LengthError struct {
	Actual, Max uint64
}

func (err LengthError) Is(target error) bool {
	switch target {
	case ErrLengthExceedsMax:
		return err.Actual > err.Max
	case ErrLengthExceedsPlatformLimit:
		return err.Actual > uint64(maxInt)
	default:
		return false
	}
}

func (err LengthError) Error() string {
	if err.Actual > err.Max {
		return fmt.Sprintf("%s (%d > %d)", ErrLengthExceedsMax, err.Actual, err.Max)
	} else {
		return fmt.Sprintf("%s (%d > %d)", ErrLengthExceedsPlatformLimit, err.Actual, maxInt)
	}
}

type FieldError struct {
	Underlying error
	Path       string
}

func (err FieldError) Unwrap() error {
	return err.Underlying
}

func (err FieldError) Error() string {
	uerr := strings.TrimPrefix(err.Underlying.Error(), "cdr: ")
	return fmt.Sprintf("cdr: %s (at %s)", uerr, err.Path)
}

func WithFieldError(err error, parts ...string) error {
	if err == nil {
		return nil
	}

	var combined string
	if parts[0] == "" {
		parts[0] = "<anonymous>"
	}

	switch len(parts) {
	case 1:
		combined = parts[0]
	case 3:
		combined = fmt.Sprintf("%s.%s(%s)", parts[0], parts[1], parts[2])
	default:
		combined = strings.Join(parts, ".")
	}

	switch err := err.(type) {
	case FieldError:
		err.Path = fmt.Sprintf("%s %s", combined, err.Path)
		return err
	default:
		return FieldError{err, combined}
	}
}
