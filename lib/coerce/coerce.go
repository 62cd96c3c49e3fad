package coerce

import (
	"fmt"
	"reflect"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/xerrors"
)

// ErrNoCoercion is returned by Convert if no conversion between two types exists
var ErrNoCoercion = xerrors.New("coerce: no coercion")

var (
	resolveTotal  = metrics.NewCounter("flatmsg_coerce_resolve_total")
	cacheHitTotal = metrics.NewCounter("flatmsg_coerce_cache_hit_total")
)

var stringType = reflect.TypeFor[string]()

// Func converts a value of the source type into a value of the destination type
type Func func(v reflect.Value) (reflect.Value, error)

// pair is the cache key of a resolution
type pair struct {
	src, dst reflect.Type
}

// resolution is a cached lookup result, fn is nil if no coercion exists
type resolution struct {
	fn Func
}

// Formatter renders a value as string for conversions to the string type
type Formatter func(v reflect.Value) (string, error)

// Option configures a Registry
type Option func(r *Registry)

// WithResolveHook installs a hook that is called for every uncached resolution
func WithResolveHook(hook func(src, dst reflect.Type)) Option {
	return func(r *Registry) {
		r.hook = hook
	}
}

// WithFormatter replaces the formatter used to convert values to string
func WithFormatter(f Formatter) Option {
	return func(r *Registry) {
		r.format = f
	}
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// Registry resolves and memoizes coercions between pairs of types.
//
// Resolution order, first success wins:
//  1. a conversion function registered for exactly (src, dst)
//  2. a Go conversion between two types of the same kind
//  3. a conversion to one of the registered alternates of dst that is assignable to dst
//  4. an element-wise conversion if both types are slices or arrays
//
// Positive and negative results are memoized per (src, dst) pair.
type Registry struct {
	funcs      *xsync.MapOf[pair, Func]
	alternates *xsync.MapOf[reflect.Type, []reflect.Type]
	cache      *xsync.MapOf[pair, resolution]
	hook       func(src, dst reflect.Type)
	format     Formatter
}

// NewRegistry creates an empty coercion registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		funcs:      xsync.NewMapOf[pair, Func](),
		alternates: xsync.NewMapOf[reflect.Type, []reflect.Type](),
		cache:      xsync.NewMapOf[pair, resolution](),
		format: func(v reflect.Value) (string, error) {
			return fmt.Sprint(v.Interface()), nil
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a conversion from S to D
func Register[S, D any](r *Registry, fn func(S) (D, error)) {
	r.RegisterFunc(reflect.TypeFor[S](), reflect.TypeFor[D](), func(v reflect.Value) (reflect.Value, error) {
		d, err := fn(v.Interface().(S))
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&d).Elem(), nil
	})
}

// RegisterFunc adds a conversion from src to dst
func (r *Registry) RegisterFunc(src, dst reflect.Type, fn Func) {
	r.funcs.Store(pair{src, dst}, fn)
	r.cache.Clear()
}

// RegisterAlternates declares concrete types that also implement dst. A coercion to
// dst may go through any of them.
func (r *Registry) RegisterAlternates(dst reflect.Type, alternates ...reflect.Type) {
	r.alternates.Compute(dst, func(old []reflect.Type, _ bool) ([]reflect.Type, bool) {
		return append(append([]reflect.Type(nil), old...), alternates...), false
	})
	r.cache.Clear()
}

// TryGet returns the coercion from src to dst if one exists
func (r *Registry) TryGet(src, dst reflect.Type) (Func, bool) {
	key := pair{src, dst}
	if res, ok := r.cache.Load(key); ok {
		cacheHitTotal.Inc()
		return res.fn, res.fn != nil
	}

	resolveTotal.Inc()
	if r.hook != nil {
		r.hook(src, dst)
	}

	fn := r.resolve(src, dst, map[pair]bool{})
	r.cache.Store(key, resolution{fn: fn})
	return fn, fn != nil
}

// Convert converts v to dst. Conversions to string always succeed through the
// formatter, values already assignable to dst are returned unchanged.
func (r *Registry) Convert(v reflect.Value, dst reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(dst), nil
	}
	if v.Type() == dst {
		return v, nil
	}
	if fn, ok := r.TryGet(v.Type(), dst); ok {
		return fn(v)
	}
	if v.Type().AssignableTo(dst) {
		return v, nil
	}
	if dst == stringType {
		s, err := r.format(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s), nil
	}
	return reflect.Value{}, xerrors.Errorf("%w: %s to %s", ErrNoCoercion, v.Type(), dst)
}

// --------------------------------------------------------------------------
// Resolution
// --------------------------------------------------------------------------

// resolve walks the resolution order. visiting guards against alternates that
// reference each other.
func (r *Registry) resolve(src, dst reflect.Type, visiting map[pair]bool) Func {
	key := pair{src, dst}
	if visiting[key] {
		return nil
	}
	visiting[key] = true
	defer delete(visiting, key)

	// 1. registered conversion
	if fn, ok := r.funcs.Load(key); ok {
		return fn
	}

	// 2. language conversion between types of the same kind
	if src.Kind() == dst.Kind() && src.ConvertibleTo(dst) && isConvertibleKind(src.Kind()) {
		return func(v reflect.Value) (reflect.Value, error) {
			return v.Convert(dst), nil
		}
	}

	// 3. alternates of dst
	if alts, ok := r.alternates.Load(dst); ok {
		for _, alt := range alts {
			if !alt.AssignableTo(dst) {
				continue
			}
			var fn Func
			if src == alt {
				fn = func(v reflect.Value) (reflect.Value, error) { return v, nil }
			} else {
				fn = r.resolve(src, alt, visiting)
			}
			if fn == nil {
				continue
			}
			return func(v reflect.Value) (reflect.Value, error) {
				out, err := fn(v)
				if err != nil {
					return reflect.Value{}, err
				}
				converted := reflect.New(dst).Elem()
				converted.Set(out)
				return converted, nil
			}
		}
	}

	// 4. element-wise conversion
	if isSequence(src) && isSequence(dst) {
		elemFn := r.elementFunc(src.Elem(), dst.Elem(), visiting)
		if elemFn == nil {
			return nil
		}
		return sequenceFunc(dst, elemFn)
	}

	return nil
}

// elementFunc resolves the conversion of a single element
func (r *Registry) elementFunc(src, dst reflect.Type, visiting map[pair]bool) Func {
	if src == dst {
		return func(v reflect.Value) (reflect.Value, error) { return v, nil }
	}
	if fn := r.resolve(src, dst, visiting); fn != nil {
		return fn
	}
	if src.AssignableTo(dst) {
		return func(v reflect.Value) (reflect.Value, error) { return v, nil }
	}
	return nil
}

// sequenceFunc maps every element and assembles an array, a slice or a named slice
// type depending on dst
func sequenceFunc(dst reflect.Type, elemFn Func) Func {
	return func(v reflect.Value) (reflect.Value, error) {
		n := v.Len()
		var out reflect.Value
		if dst.Kind() == reflect.Array {
			out = reflect.New(dst).Elem()
			if n > dst.Len() {
				return reflect.Value{}, xerrors.Errorf("coerce: %d elements do not fit into %s", n, dst)
			}
		} else {
			if v.Kind() == reflect.Slice && v.IsNil() {
				return reflect.Zero(dst), nil
			}
			out = reflect.MakeSlice(dst, n, n)
		}

		for i := 0; i < n; i++ {
			elem, err := elemFn(v.Index(i))
			if err != nil {
				return reflect.Value{}, xerrors.Errorf("coerce: element %d: %w", i, err)
			}
			if elem.IsValid() {
				out.Index(i).Set(elem)
			}
		}
		return out, nil
	}
}

func isSequence(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

// isConvertibleKind limits language conversions to kinds where they preserve the value
func isConvertibleKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Map, reflect.Slice, reflect.Struct:
		return true
	}
	return false
}
