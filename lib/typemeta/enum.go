package typemeta

import (
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// ErrUnknownEnumValue is returned when a name does not belong to the enumeration
var ErrUnknownEnumValue = xerrors.New("typemeta: unknown enumeration value")

// Integer is the constraint for the underlying type of an enumeration
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// EnumSpec is a closed set of named integer constants
type EnumSpec struct {
	Type    reflect.Type
	byValue map[int64]string
	byName  map[string]int64
}

// RegisterEnum registers T as an enumeration with the given constant names
func RegisterEnum[T Integer](r *Registry, names map[T]string) {
	spec := &EnumSpec{
		Type:    reflect.TypeFor[T](),
		byValue: make(map[int64]string, len(names)),
		byName:  make(map[string]int64, len(names)),
	}
	for v, name := range names {
		spec.byValue[int64(v)] = name
		spec.byName[name] = int64(v)
	}
	r.enums.Store(spec.Type, spec)
	r.invalidate()
}

// Names returns all names of the enumeration
func (e *EnumSpec) Names() []string {
	out := make([]string, 0, len(e.byName))
	for name := range e.byName {
		out = append(out, name)
	}
	return out
}

// Format returns the constant name of v, or its decimal value if v has no name
func (e *EnumSpec) Format(v reflect.Value) string {
	i := enumInt(v)
	if name, ok := e.byValue[i]; ok {
		return name
	}
	return strconv.FormatInt(i, 10)
}

// Parse resolves a constant name (case-insensitive as a fallback) or a decimal value
// that fits the underlying type
func (e *EnumSpec) Parse(s string) (reflect.Value, error) {
	i, ok := e.byName[s]
	if !ok {
		for name, v := range e.byName {
			if strings.EqualFold(name, s) {
				i, ok = v, true
				break
			}
		}
	}
	out := reflect.New(e.Type).Elem()
	unsigned := isUnsigned(e.Type.Kind())
	if ok {
		if unsigned {
			out.SetUint(uint64(i))
		} else {
			out.SetInt(i)
		}
		return out, nil
	}

	// decimal values are range checked against the underlying type
	bits := e.Type.Bits()
	if unsigned {
		u, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return reflect.Value{}, xerrors.Errorf("%w: %q for %s (%v)", ErrUnknownEnumValue, s, e.Type, err)
		}
		out.SetUint(u)
		return out, nil
	}
	n, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return reflect.Value{}, xerrors.Errorf("%w: %q for %s (%v)", ErrUnknownEnumValue, s, e.Type, err)
	}
	out.SetInt(n)
	return out, nil
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func enumInt(v reflect.Value) int64 {
	if isUnsigned(v.Kind()) {
		return int64(v.Uint())
	}
	return v.Int()
}
