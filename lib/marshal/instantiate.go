package marshal

import (
	"reflect"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"golang.org/x/xerrors"
)

// instantiate returns the instance a value of type t is decoded into: the registered
// instantiator, a copy of the existing instance or the zero value, in that order. An
// instantiator returning a pointer to t is dereferenced. Existing maps and slices are
// copied one level deep so decoding never writes into the caller's value.
func (e *Engine) instantiate(msg *urlmsg.Message, key string, t reflect.Type, existing reflect.Value) (reflect.Value, error) {
	if fn, ok := e.instantiators.Load(t); ok {
		v, err := fn(msg, key)
		if err != nil {
			return reflect.Value{}, xerrors.Errorf("instantiate %s at %q: %w", t, key, err)
		}
		switch {
		case !v.IsValid():
			return reflect.New(t).Elem(), nil
		case v.Type() == t:
			return addressable(v), nil
		case v.Kind() == reflect.Pointer && v.Type().Elem() == t && !v.IsNil():
			return v.Elem(), nil
		default:
			return reflect.Value{}, xerrors.Errorf("%w: instantiator of %s returned %s", ErrTypeMismatch, t, v.Type())
		}
	}

	out := reflect.New(t).Elem()
	if existing.IsValid() {
		out.Set(shallowCopy(existing))
	}
	return out, nil
}

// shallowCopy duplicates the entries of a map or the elements of a slice
func shallowCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(out, v)
		return out
	}
	return v
}
