package marshal

import (
	"reflect"
	"regexp"

	"github.com/ValentinKolb/flatmsg/lib/typemeta"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/xerrors"
)

// CustomSerializer replaces the category based encoding of one type. Custom
// serializers are consulted before any other rule on both sides.
//
// Decode reports with ok=false that nothing was stored at key, the decoder then uses
// the zero value of the type.
type CustomSerializer struct {
	Encode func(e *Engine, msg *urlmsg.Message, key string, v reflect.Value) error
	Decode func(e *Engine, msg *urlmsg.Message, key string) (v reflect.Value, ok bool, err error)
}

// RegisterCustom registers a custom serializer for exactly type t
func (e *Engine) RegisterCustom(t reflect.Type, cs CustomSerializer) {
	e.customs.Store(t, cs)
}

// LookupCustom returns the custom serializer of t
func (e *Engine) LookupCustom(t reflect.Type) (CustomSerializer, bool) {
	return e.customs.Load(t)
}

// RegisterText registers a custom serializer storing T as a single text value.
// Empty texts follow Options.KeepEmpty.
func RegisterText[T any](e *Engine, format func(T) (string, error), parse func(string) (T, error)) {
	e.RegisterCustom(reflect.TypeFor[T](), CustomSerializer{
		Encode: func(e *Engine, msg *urlmsg.Message, key string, v reflect.Value) error {
			s, err := format(v.Interface().(T))
			if err != nil {
				return err
			}
			e.setScalar(msg, key, s)
			return nil
		},
		Decode: func(e *Engine, msg *urlmsg.Message, key string) (reflect.Value, bool, error) {
			s, ok := msg.Get(key)
			if !ok {
				return reflect.Value{}, false, nil
			}
			t, err := parse(s)
			if err != nil {
				return reflect.Value{}, false, err
			}
			return reflect.ValueOf(&t).Elem(), true, nil
		},
	})
}

// --------------------------------------------------------------------------
// Builtin Serializers
// --------------------------------------------------------------------------

var (
	regexpType = reflect.TypeFor[*regexp.Regexp]()
	bsonRawT   = reflect.TypeFor[bson.Raw]()
	bsonDocT   = reflect.TypeFor[bson.D]()
)

func registerBuiltinCustoms(e *Engine) {
	// type descriptors are stored by registered type name
	RegisterText(e,
		func(t reflect.Type) (string, error) {
			if t == nil {
				return "", nil
			}
			name, ok := e.TypeName(t)
			if !ok {
				return "", xerrors.Errorf("%w: %s", typemeta.ErrUnknownTypeName, t)
			}
			return name, nil
		},
		e.TypeByName,
	)

	// expressions are stored as their source text
	RegisterText(e,
		func(re *regexp.Regexp) (string, error) { return re.String(), nil },
		regexp.Compile,
	)

	// document nodes are stored as canonical extended JSON
	RegisterText(e,
		func(d bson.D) (string, error) {
			b, err := bson.MarshalExtJSON(d, true, false)
			return string(b), err
		},
		func(s string) (bson.D, error) {
			var d bson.D
			err := bson.UnmarshalExtJSON([]byte(s), true, &d)
			return d, err
		},
	)
	RegisterText(e,
		func(raw bson.Raw) (string, error) {
			if len(raw) == 0 {
				return "", nil
			}
			var d bson.D
			if err := bson.Unmarshal(raw, &d); err != nil {
				return "", err
			}
			b, err := bson.MarshalExtJSON(d, true, false)
			return string(b), err
		},
		func(s string) (bson.Raw, error) {
			var d bson.D
			if err := bson.UnmarshalExtJSON([]byte(s), true, &d); err != nil {
				return nil, err
			}
			b, err := bson.Marshal(d)
			return bson.Raw(b), err
		},
	)

	for _, t := range []reflect.Type{regexpType, bsonRawT, bsonDocT} {
		e.types.RegisterName(typemeta.QualifiedName(t), t)
	}
}
