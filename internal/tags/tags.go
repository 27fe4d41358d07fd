// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package tags

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// CDRTag represents a decoded CDR struct tag. It is a sequence of tag entries, where
// each one applies to the corresponding "layer" when multiple Go type definitions are
// nested on a field.
//
// As an example/clarification, consider the struct field:
//    Foo *[]string `cdr:"/maxlen:4/maxlen:16"`
//
// This contains three layers of type:
//    * The pointer, with no options
//    * The []string slice, with option "maxlen:4" (at most four elements)
//    * The string, with option "maxlen:16" (at most sixteen bytes)
//
// There are two kinds of entry:
//   * Those which are flags, e.g. opt, enum:switch. These are encoded as a single byte
//   * Those which are setting parameters with values, such as maxlen or an enum case.
//     These are encoded as a single flag byte followed by the parameter encoded as
//     32-bit integer
//
// The type of an entry is encoded in the most significant bits:
//   0b00 Tag, no value
//   0b10 Tag with single 32-bit value (immediately following)
//
// As a somewhat special case, the enum tags relate to the definition of the enclosing
// structure
//
// We encode this into a byte slice so that it may be converted into a string and used as a part
// of a map key for codec resolution
type CDRTag []byte
type CDRTagKind byte

const (
	// Kinds without value, starting at 0x00 (0b00xx_xxxx)

	// No-op tag, sometimes required to handle layers of indirection
	// Encoded whenever two slashes are encountered with no intervening value
	//
	// A tag must not contain trailing noops; by extension, a tag must not be composed
	// only of noops. They are only to be inserted when it is necessary to skip a level.
	Noop CDRTagKind = 0x00 | iota
	// Skip encoding this field (must be the only tag); Go struct tag `cdr:"-"`
	Skip
	// Marks a pointer or interface as optional. Plain CDR has no optional
	// values, so the codec for such a field always fails
	Opt
	// Indicates that this field (which must be a 32-bit integer, and also the first member
	// of the enclosing type) is an enum variant index, and that the enclosing struct
	// represents an enum
	EnumSwitch

	// Kinds with single value, starting at 0x80 (0b10xx_xxxx)

	// Specifies that this field (which must be a slice or string) may hold up to the
	// amount that follows (elements for slices, bytes for strings)
	MaxLen CDRTagKind = 0x80 | iota

	// Specifies that this field (which must be a member of an enum) holds the payload of
	// the variant with the index that follows
	EnumCase
)

// Empty returns if this tag is empty
func (t CDRTag) Empty() bool {
	return len(t) == 0
}

// Kind returns the kind of the tag
func (t CDRTag) Kind() CDRTagKind {
	if len(t) > 0 {
		return CDRTagKind(t[0])
	} else {
		return Noop
	}
}

// valAt returns the 32-bit value at offset `offs`
func (t CDRTag) valAt(offs int) uint32 {
	// Compiler bounds check hint; see golang.org/issue/14808 and the
	// encoding/binary source code
	_ = t[offs+3]
	return uint32(t[offs])<<24 | uint32(t[offs+1])<<16 | uint32(t[offs+2])<<8 + uint32(t[offs+3])
}

// thisLen returns the length (in bytes) of this tag (as encoded)
func (t CDRTag) thisLen() int {
	switch {
	case len(t) == 0:
		return 0
	case t[0] < 0x80:
		return 1
	default:
		return 5
	}
}

// Next returns the next tag in the sequence
func (t CDRTag) Next() CDRTag {
	l := t.thisLen()
	if len(t) == l {
		return CDRTag(nil)
	} else {
		return CDRTag(t[l:])
	}
}

// HasValue returns whether this entry carries a value
func (t CDRTag) HasValue() bool {
	return len(t) > 0 && t[0] >= 0x80
}

// Returns the only value for single valued options
func (t CDRTag) OnlyValue() uint32 {
	return t.valAt(1)
}

// Appends a tag with the specified values to the end of the current tag set
func (t CDRTag) Append(k CDRTagKind, values ...uint32) CDRTag {
	switch {
	case k < 0x80:
		if len(values) != 0 {
			panic(fmt.Sprintf("Attempt to append valueless tag %x with values %v", k, values))
		}

		tb := append([]byte(t), byte(k))
		return CDRTag(tb)

	default:
		if len(values) != 1 {
			panic(fmt.Sprintf("Attempt to append single-value tag %x with %d values (%v)",
				k, len(values), values))
		}

		v := values[0]
		tb := append([]byte(t), byte(k), byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		return CDRTag(tb)
	}
}

// Prepends the specified tag to the beginning of the current tag set
func (t CDRTag) Prepend(k CDRTagKind, values ...uint32) CDRTag {
	var nt CDRTag
	nt = nt.Append(k, values...)
	nt = CDRTag(append([]byte(nt), []byte(t)...))
	return nt
}

// Trimmed returns this tag with any trailing noops removed
func (t CDRTag) Trimmed() CDRTag {
	// e tracks the length of all of the tags explored so far, including
	// the current one (the end of the current tag)
	// mark tracks the length up to the last tag we explored which wasn't
	// a Noop
	var e, mark int

	for ct := t; !ct.Empty(); ct = ct.Next() {
		e += ct.thisLen()
		if ct.Kind() != Noop {
			mark = e
		}
	}

	return CDRTag(t[0:mark])
}

// Returns this tag list as a byte string
func (t CDRTag) ByteString() string {
	return string([]byte(t))
}

// Vaguely pretty prints this tag list (for debugging purposes)
func (t CDRTag) String() string {
	if t.Empty() {
		return "Noop<empty>"
	}

	s := fmt.Sprintf("[%x]", t.Kind())
	if t.HasValue() {
		s = fmt.Sprintf("%s(%08x)", s, t.OnlyValue())
	}

	nt := t.Next()
	if !nt.Empty() {
		s = fmt.Sprintf("%s;%s", s, nt)
	}

	return s
}

var (
	skipTag = CDRTag([]byte{byte(Skip)})
)

func validForEnumSwitch(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int32, reflect.Uint32:
		return true

	default:
		return false
	}
}

func canBeOpt(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Ptr:
		return true
	default:
		return false
	}
}

// Specifies whether or not we're parsing this type in the direct context of an enum
// If this is initially set to MaybeInEnum, then it will be bound to either of the two
// possible values as soon as we find the first indicative tag. If it's one of the two
// definitive values, then we'll never modify it
type IsInEnum int

const (
	// We're possibly in an enum (see if we parse an enum switch - then we'll know we are)
	MaybeInEnum IsInEnum = iota
	// We're defintely not in an enum
	NotInEnum
	// We're definitely in an enum
	InEnum
)

// Parse a struct tag to be applied to the specified type
func ParseStructTag(
	t reflect.Type,
	rtag reflect.StructTag,
	isEnum *IsInEnum,
) (CDRTag, error) {
	return ParseTag(t, rtag.Get("cdr"), isEnum)
}

func parseU32(s string) (uint32, error) {
	u64, err := strconv.ParseUint(s, 0, 32)
	return uint32(u64), err
}

// Parses the body of a CDR tag
func ParseTag(
	t reflect.Type,
	stags string,
	isEnum *IsInEnum,
) (
	ct CDRTag,
	err error,
) {
	stags = strings.TrimSpace(stags)

	switch stags {
	case "-":
		return skipTag, nil
	}

	parts := strings.Split(stags, "/")

	// Enum tags are special because they (a) always come first in the composite
	// tag, and (b) don't relate to a specific type in the stack (so we should not
	// pop a type)
	if strings.HasPrefix(parts[0], "enum:") {
		p := parts[0]
		parts = parts[1:]

		switch {
		case p == "enum:switch":
			if *isEnum != MaybeInEnum {
				return ct, errors.New("Found field annotated with `enum:switch` tag which is not legal in a struct which is not an enum or already has a switch")
			}

			if !validForEnumSwitch(t) {
				return ct, fmt.Errorf("Type %s not legal for enum switch (must be int32 or uint32)", t)
			}

			*isEnum = InEnum
			ct = ct.Append(EnumSwitch)

		case *isEnum != InEnum:
			return ct, fmt.Errorf("'%s' enum tag not valid as we are not inside an enum", p)

		default:
			v, err := parseU32(strings.TrimPrefix(p, "enum:"))
			if err != nil {
				return ct, fmt.Errorf("Parsing `enum:` value: %v", err)
			}

			ct = ct.Append(EnumCase, v)
		}
	} else if *isEnum == InEnum {
		return ct, errors.New("Every field inside an enum struct must have an `enum:` leading tag")
	} else {
		*isEnum = NotInEnum
	}

	// Next we should handle each of the tags which may correspond to one or more layers of
	// types
	for i, n := 0, len(parts); i < n; i++ {
		p := strings.TrimSpace(parts[i])
		switch {
		case p == "":
			ct = ct.Append(Noop)

		case p == "opt":
			if !canBeOpt(t) {
				return ct, fmt.Errorf("Type %s cannot be 'opt'", t)
			}
			ct = ct.Append(Opt)

		case strings.HasPrefix(p, "maxlen:"):
			len, err := parseU32(p[7:])
			if err != nil {
				return ct, fmt.Errorf("Error parsing CDR `maxlen:` tag: %v", err)
			}

			switch t.Kind() {
			case reflect.String, reflect.Slice:
				ct = ct.Append(MaxLen, len)
			default:
				return ct, fmt.Errorf("Cannot apply `maxlen:` tag to %s; must be slice or string", t)
			}

		default:
			return ct, fmt.Errorf("Unknown CDR tag '%s'", p)
		}

		// Descend one level through the types
		if i+1 != n {
			switch t.Kind() {
			case reflect.Array, reflect.Ptr, reflect.Slice:
				t = t.Elem()

			default:
				return ct, fmt.Errorf("Trailing tags (%v) after reaching type %s", parts[i:], t)
			}
		}
	}

	return ct.Trimmed(), nil
}
