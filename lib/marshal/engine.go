package marshal

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ValentinKolb/flatmsg/lib/coerce"
	"github.com/ValentinKolb/flatmsg/lib/typemeta"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/xerrors"
)

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is not set
const DefaultMaxDepth = 64

// DefaultMaxElements is the largest collection index accepted when Options.MaxElements
// is not set
const DefaultMaxElements = 1 << 20

// Options control the encoding. The zero value is the wire compatible default.
type Options struct {
	// StoreTypeNames emits key$T$ with the type name of every value whose type has a
	// registered name. Interface typed values always carry it.
	StoreTypeNames bool
	// KeepEmpty emits scalars whose string form is empty. By default they are omitted,
	// which makes "empty" and "absent" indistinguishable for nullable members.
	KeepEmpty bool
	// MaxDepth limits the nesting of the walk, 0 means DefaultMaxDepth
	MaxDepth int
	// MaxElements limits the indices accepted while decoding a slice, 0 means
	// DefaultMaxElements
	MaxElements int
}

// Instantiator creates the instance that a record, map or slice at key is decoded
// into. It may read the message, e.g. to select a variant.
type Instantiator func(msg *urlmsg.Message, key string) (reflect.Value, error)

// --------------------------------------------------------------------------
// Engine
// --------------------------------------------------------------------------

// Engine encodes values into flat messages and decodes them back. It bundles the type
// registry, the coercion registry, the custom serializer table and the instantiators.
//
// All tables are safe for concurrent use, registrations should happen before the
// first encode or decode.
type Engine struct {
	opts          Options
	types         *typemeta.Registry
	coercions     *coerce.Registry
	customs       *xsync.MapOf[reflect.Type, CustomSerializer]
	instantiators *xsync.MapOf[reflect.Type, Instantiator]
}

var defaultEngine = New(Options{})

// Default returns the process wide engine
func Default() *Engine {
	return defaultEngine
}

// New creates an engine with the builtin parsers and custom serializers
func New(opts Options, coerceOpts ...coerce.Option) *Engine {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxElements <= 0 {
		opts.MaxElements = DefaultMaxElements
	}

	e := &Engine{
		opts:          opts,
		types:         typemeta.NewRegistry(),
		customs:       xsync.NewMapOf[reflect.Type, CustomSerializer](),
		instantiators: xsync.NewMapOf[reflect.Type, Instantiator](),
	}
	e.coercions = coerce.NewRegistry(append([]coerce.Option{coerce.WithFormatter(e.formatAny)}, coerceOpts...)...)
	registerBuiltinCustoms(e)
	return e
}

// Options returns the options of the engine
func (e *Engine) Options() Options {
	return e.opts
}

// Types returns the type registry (parsers, enumerations, schemas, type names)
func (e *Engine) Types() *typemeta.Registry {
	return e.types
}

// Coercions returns the coercion registry
func (e *Engine) Coercions() *coerce.Registry {
	return e.coercions
}

// RegisterSchema registers the members of a record type
func (e *Engine) RegisterSchema(s *typemeta.Schema) {
	e.types.RegisterSchema(s)
}

// RegisterDerived derives the schema of T from its exported fields and registers it
func RegisterDerived[T any](e *Engine) error {
	s, err := typemeta.DeriveSchema[T]()
	if err != nil {
		return err
	}
	e.types.RegisterSchema(s)
	return nil
}

// RegisterInstantiator registers how instances of t are created while decoding
func (e *Engine) RegisterInstantiator(t reflect.Type, fn Instantiator) {
	e.instantiators.Store(t, fn)
}

// RegisterInstantiatorFunc is the typed variant of RegisterInstantiator
func RegisterInstantiatorFunc[T any](e *Engine, fn func(msg *urlmsg.Message, key string) (T, error)) {
	e.RegisterInstantiator(reflect.TypeFor[T](), func(msg *urlmsg.Message, key string) (reflect.Value, error) {
		v, err := fn(msg, key)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&v).Elem(), nil
	})
}

// --------------------------------------------------------------------------
// Type Names
// --------------------------------------------------------------------------

// TypeName returns the name stored in key$T$ for t. Pointers and slices of named
// types are written as *name and []name.
func (e *Engine) TypeName(t reflect.Type) (string, bool) {
	if name, ok := e.types.NameOf(t); ok {
		return name, true
	}
	switch t.Kind() {
	case reflect.Pointer:
		if name, ok := e.TypeName(t.Elem()); ok {
			return "*" + name, true
		}
	case reflect.Slice:
		if name, ok := e.TypeName(t.Elem()); ok {
			return "[]" + name, true
		}
	}
	return "", false
}

// TypeByName resolves a name produced by TypeName
func (e *Engine) TypeByName(name string) (reflect.Type, error) {
	t, err := e.types.TypeByName(name)
	if err == nil {
		return t, nil
	}
	switch {
	case strings.HasPrefix(name, "*"):
		elem, elemErr := e.TypeByName(name[1:])
		if elemErr != nil {
			return nil, elemErr
		}
		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(name, "[]"):
		elem, elemErr := e.TypeByName(name[2:])
		if elemErr != nil {
			return nil, elemErr
		}
		return reflect.SliceOf(elem), nil
	}
	return nil, err
}

// formatAny renders a value for coercions to string, scalars use their parser
func (e *Engine) formatAny(v reflect.Value) (string, error) {
	if d, err := e.types.Classify(v.Type()); err == nil && d.IsScalar() {
		return e.types.FormatScalar(d, v)
	}
	return fmt.Sprint(v.Interface()), nil
}

// depthError reports the key at which the nesting limit was hit
func (e *Engine) depthError(key string) error {
	return xerrors.Errorf("%w: %d levels at %q", ErrMaxDepth, e.opts.MaxDepth, key)
}
