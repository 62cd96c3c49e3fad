package marshal

import (
	"reflect"
	"sort"

	"github.com/ValentinKolb/flatmsg/lib/typemeta"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"golang.org/x/xerrors"
)

// Encode flattens value into msg below key. declared is the type the value is written
// as; nil means the runtime type of value. A nil value writes nothing.
func (e *Engine) Encode(msg *urlmsg.Message, key string, value any, declared reflect.Type) error {
	return e.EncodeValue(msg, key, reflect.ValueOf(value), declared)
}

// EncodeValue is the reflect.Value variant of Encode
func (e *Engine) EncodeValue(msg *urlmsg.Message, key string, v reflect.Value, declared reflect.Type) error {
	encodeTotal.Inc()
	if declared == nil {
		if !v.IsValid() {
			return nil
		}
		declared = v.Type()
	}
	if err := e.encode(msg, urlmsg.FormatKey(key, ""), v, declared, 0); err != nil {
		encodeErrorTotal.Inc()
		return err
	}
	return nil
}

func (e *Engine) encode(msg *urlmsg.Message, key string, v reflect.Value, declared reflect.Type, depth int) error {
	if depth > e.opts.MaxDepth {
		return e.depthError(key)
	}

	// interface typed values are encoded by their dynamic value
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if isNil(v) {
		return nil
	}

	if cs, ok := e.customs.Load(declared); ok {
		customTotal.Inc()
		if err := cs.Encode(e, msg, key, v); err != nil {
			return xerrors.Errorf("encode %s at %q: %w", declared, key, err)
		}
		return nil
	}

	t := declared
	if v.Type() != declared && declared.Kind() != reflect.Interface {
		if fn, ok := e.coercions.TryGet(v.Type(), declared); ok {
			converted, err := fn(v)
			if err != nil {
				return xerrors.Errorf("coerce %s to %s at %q: %w", v.Type(), declared, key, err)
			}
			v = converted
		} else if !v.Type().AssignableTo(declared) {
			// no way to write the declared shape, fall back to the runtime shape
			t = v.Type()
		}
		if isNil(v) {
			return nil
		}
		if v.Type() != t && t.Kind() != reflect.Interface {
			v = v.Convert(t)
		}
	}

	d, err := e.types.Classify(t)
	if err != nil {
		return xerrors.Errorf("encode at %q: %w", key, err)
	}

	switch d.Category {
	case typemeta.CatString, typemeta.CatParseable, typemeta.CatEnumeration:
		s, err := e.types.FormatScalar(d, v)
		if err != nil {
			return err
		}
		e.setScalar(msg, key, s)

	case typemeta.CatNullable:
		if err := e.encode(msg, key, v.Elem(), d.Elem, depth+1); err != nil {
			return err
		}

	case typemeta.CatDictionary:
		if err := e.encodeMap(msg, key, v, d, depth); err != nil {
			return err
		}

	case typemeta.CatArray, typemeta.CatEnumerable:
		for i := 0; i < v.Len(); i++ {
			if err := e.encode(msg, urlmsg.FormatIndexKey(key, i), v.Index(i), d.Elem, depth+1); err != nil {
				return err
			}
		}

	case typemeta.CatInterface:
		runtime := v.Type()
		if name, ok := e.TypeName(runtime); ok {
			msg.Set(urlmsg.TypeKey(key), name)
		}
		return e.encode(msg, key, v, runtime, depth+1)

	case typemeta.CatOther:
		if err := e.encodeRecord(msg, key, v, d.Schema, depth); err != nil {
			return err
		}
	}

	if e.opts.StoreTypeNames {
		if name, ok := e.TypeName(t); ok {
			msg.Set(urlmsg.TypeKey(key), name)
		}
	}
	return nil
}

// encodeMap writes key[k] for every entry, ordered by the formatted map key so that
// equal maps produce equal messages
func (e *Engine) encodeMap(msg *urlmsg.Message, key string, v reflect.Value, d *typemeta.Descriptor, depth int) error {
	keyDesc, err := e.types.Classify(d.Key)
	if err != nil {
		return err
	}

	type entry struct {
		name  string
		value reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		name, err := e.types.FormatScalar(keyDesc, iter.Key())
		if err != nil {
			return err
		}
		entries = append(entries, entry{name: name, value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	for _, ent := range entries {
		if err := e.encode(msg, urlmsg.FormatMapKey(key, ent.name), ent.value, d.Value, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// encodeRecord writes key.member for every persistable member using its wire type
func (e *Engine) encodeRecord(msg *urlmsg.Message, key string, v reflect.Value, schema *typemeta.Schema, depth int) error {
	obj := addressable(v)
	for _, f := range schema.Persistable() {
		if err := e.encode(msg, urlmsg.FormatKey(key, f.Name), f.Get(obj), f.SerializedType(), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// setScalar stores a scalar string, empty strings only with KeepEmpty
func (e *Engine) setScalar(msg *urlmsg.Message, key, s string) {
	if s == "" && !e.opts.KeepEmpty {
		return
	}
	msg.Set(key, s)
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// addressable returns v itself if it can be addressed, otherwise a settable copy
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}
