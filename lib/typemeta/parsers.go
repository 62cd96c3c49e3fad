package typemeta

import (
	"encoding/base64"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

// Parser converts between a scalar value and its string form. Both functions work on
// values of the exact type the parser is registered for.
type Parser struct {
	Parse  func(s string) (reflect.Value, error)
	Format func(v reflect.Value) string
}

// ParserFor builds a Parser from typed functions
func ParserFor[T any](parse func(string) (T, error), format func(T) string) Parser {
	return Parser{
		Parse: func(s string) (reflect.Value, error) {
			v, err := parse(s)
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(reflect.TypeFor[T]()).Elem()
			out.Set(reflect.ValueOf(&v).Elem())
			return out, nil
		},
		Format: func(v reflect.Value) string {
			return format(v.Interface().(T))
		},
	}
}

// --------------------------------------------------------------------------
// Builtin Parsers
// --------------------------------------------------------------------------

// stringParser is the identity parser, used for String and named string types
var stringParser = Parser{
	Parse: func(s string) (reflect.Value, error) {
		return reflect.ValueOf(s), nil
	},
	Format: func(v reflect.Value) string {
		return v.String()
	},
}

// builtinTypeParsers are keyed by the exact type they handle
func builtinTypeParsers() map[reflect.Type]Parser {
	return map[reflect.Type]Parser{
		reflect.TypeFor[time.Time](): ParserFor(
			func(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) },
			func(t time.Time) string {
				if t.IsZero() {
					return ""
				}
				return t.Format(time.RFC3339Nano)
			},
		),
		reflect.TypeFor[time.Duration](): ParserFor(
			time.ParseDuration,
			time.Duration.String,
		),
		reflect.TypeFor[uuid.UUID](): ParserFor(
			uuid.Parse,
			func(u uuid.UUID) string {
				if u == uuid.Nil {
					return ""
				}
				return u.String()
			},
		),
		reflect.TypeFor[net.IP](): ParserFor(
			func(s string) (net.IP, error) {
				ip := net.ParseIP(s)
				if ip == nil {
					return nil, xerrors.Errorf("invalid IP address %q", s)
				}
				return ip, nil
			},
			func(ip net.IP) string {
				if ip == nil {
					return ""
				}
				return ip.String()
			},
		),
		reflect.TypeFor[*url.URL](): ParserFor(
			url.Parse,
			func(u *url.URL) string {
				if u == nil {
					return ""
				}
				return u.String()
			},
		),
		reflect.TypeFor[[]byte](): ParserFor(
			base64.StdEncoding.DecodeString,
			base64.StdEncoding.EncodeToString,
		),
	}
}

// kindParser returns the parser for a basic kind. The parsed value is converted to
// t, so named types like `type Celsius float64` share the parser of their kind.
func kindParser(t reflect.Type) (Parser, bool) {
	var parse func(s string) (reflect.Value, error)
	var format func(v reflect.Value) string

	switch t.Kind() {
	case reflect.Bool:
		parse = func(s string) (reflect.Value, error) {
			b, err := strconv.ParseBool(s)
			return reflect.ValueOf(b), err
		}
		format = func(v reflect.Value) string { return strconv.FormatBool(v.Bool()) }
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := t.Bits()
		parse = func(s string) (reflect.Value, error) {
			i, err := strconv.ParseInt(s, 10, bits)
			return reflect.ValueOf(i), err
		}
		format = func(v reflect.Value) string { return strconv.FormatInt(v.Int(), 10) }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		bits := t.Bits()
		parse = func(s string) (reflect.Value, error) {
			u, err := strconv.ParseUint(s, 10, bits)
			return reflect.ValueOf(u), err
		}
		format = func(v reflect.Value) string { return strconv.FormatUint(v.Uint(), 10) }
	case reflect.Float32, reflect.Float64:
		bits := t.Bits()
		parse = func(s string) (reflect.Value, error) {
			f, err := strconv.ParseFloat(s, bits)
			return reflect.ValueOf(f), err
		}
		format = func(v reflect.Value) string { return strconv.FormatFloat(v.Float(), 'g', -1, bits) }
	case reflect.Complex64, reflect.Complex128:
		bits := t.Bits()
		parse = func(s string) (reflect.Value, error) {
			c, err := strconv.ParseComplex(s, bits)
			return reflect.ValueOf(c), err
		}
		format = func(v reflect.Value) string { return strconv.FormatComplex(v.Complex(), 'g', -1, bits) }
	case reflect.String:
		parse = stringParser.Parse
		format = stringParser.Format
	default:
		return Parser{}, false
	}

	return Parser{
		Parse: func(s string) (reflect.Value, error) {
			v, err := parse(s)
			if err != nil {
				return reflect.Value{}, xerrors.Errorf("parse %s from %q: %w", t, s, err)
			}
			return v.Convert(t), nil
		},
		Format: format,
	}, true
}
