package marshal

import (
	"reflect"

	"github.com/ValentinKolb/flatmsg/lib/typemeta"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"golang.org/x/xerrors"
)

// Decode reconstructs a value of type target from the pairs below key. existing may
// hold an instance to decode into, records keep the members that are absent from the
// message. existing itself is never modified, maps and slices are copied before entries
// are merged in. Missing keys are never an error, they yield the default of the category.
func (e *Engine) Decode(msg *urlmsg.Message, key string, target reflect.Type, existing reflect.Value) (reflect.Value, error) {
	decodeTotal.Inc()
	v, err := e.decode(msg, urlmsg.FormatKey(key, ""), target, existing, 0)
	if err != nil {
		decodeErrorTotal.Inc()
		return reflect.Value{}, err
	}
	return v, nil
}

// DecodeInto decodes the value below key into the variable ptr points to
func (e *Engine) DecodeInto(msg *urlmsg.Message, key string, ptr any) error {
	p := reflect.ValueOf(ptr)
	if p.Kind() != reflect.Pointer || p.IsNil() {
		return xerrors.Errorf("%w: got %T", ErrInvalidTarget, ptr)
	}
	v, err := e.Decode(msg, key, p.Type().Elem(), p.Elem())
	if err != nil {
		return err
	}
	p.Elem().Set(v)
	return nil
}

func (e *Engine) decode(msg *urlmsg.Message, key string, t reflect.Type, existing reflect.Value, depth int) (reflect.Value, error) {
	if depth > e.opts.MaxDepth {
		return reflect.Value{}, e.depthError(key)
	}
	if existing.IsValid() && existing.Type() != t {
		existing = reflect.Value{}
	}

	if cs, ok := e.customs.Load(t); ok {
		customTotal.Inc()
		v, found, err := cs.Decode(e, msg, key)
		if err != nil {
			return reflect.Value{}, xerrors.Errorf("decode %s at %q: %w", t, key, err)
		}
		if !found {
			return reflect.Zero(t), nil
		}
		return v, nil
	}

	d, err := e.types.Classify(t)
	if err != nil {
		return reflect.Value{}, xerrors.Errorf("decode at %q: %w", key, err)
	}

	switch d.Category {
	case typemeta.CatString:
		return reflect.ValueOf(msg.Value(key)), nil

	case typemeta.CatParseable, typemeta.CatEnumeration:
		raw, ok := msg.Get(key)
		if !ok || (raw == "" && t.Kind() != reflect.String) {
			return reflect.Zero(t), nil
		}
		v, err := e.types.ParseScalar(d, raw)
		if err != nil {
			return reflect.Value{}, xerrors.Errorf("decode %s at %q: %w", t, key, err)
		}
		return v, nil

	case typemeta.CatNullable:
		if !msg.HasPrefix(key) {
			return reflect.Zero(t), nil
		}
		var prev reflect.Value
		if existing.IsValid() && !existing.IsNil() {
			prev = existing.Elem()
		}
		elem, err := e.decode(msg, key, d.Elem, prev, depth+1)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(d.Elem)
		p.Elem().Set(elem)
		return p, nil

	case typemeta.CatDictionary:
		return e.decodeMap(msg, key, d, existing, depth)

	case typemeta.CatArray:
		return e.decodeArray(msg, key, d, existing, depth)

	case typemeta.CatEnumerable:
		return e.decodeSlice(msg, key, d, existing, depth)

	case typemeta.CatInterface:
		return e.decodeInterface(msg, key, t, depth)

	case typemeta.CatOther:
		return e.decodeRecord(msg, key, d, existing, depth)
	}

	return reflect.Value{}, xerrors.Errorf("decode at %q: %w: %s", key, typemeta.ErrUnsupportedType, t)
}

// --------------------------------------------------------------------------
// Collections
// --------------------------------------------------------------------------

// decodeMap decodes one entry per distinct key[k]. Without entries the existing map
// (or nil) is returned.
func (e *Engine) decodeMap(msg *urlmsg.Message, key string, d *typemeta.Descriptor, existing reflect.Value, depth int) (reflect.Value, error) {
	children := urlmsg.ParseChildKeys(msg, key)
	if len(children) == 0 {
		if existing.IsValid() {
			return existing, nil
		}
		return reflect.Zero(d.Type), nil
	}

	keyDesc, err := e.types.Classify(d.Key)
	if err != nil {
		return reflect.Value{}, err
	}

	m, err := e.instantiate(msg, key, d.Type, existing)
	if err != nil {
		return reflect.Value{}, err
	}
	if m.IsNil() {
		m = reflect.MakeMapWithSize(d.Type, len(children))
	}

	for _, child := range children {
		k, err := e.types.ParseScalar(keyDesc, child.Name)
		if err != nil {
			return reflect.Value{}, xerrors.Errorf("decode map key at %q: %w", child.Key(key), err)
		}
		var prev reflect.Value
		if old := m.MapIndex(k); old.IsValid() {
			prev = old
		}
		v, err := e.decode(msg, child.Key(key), d.Value, prev, depth+1)
		if err != nil {
			return reflect.Value{}, err
		}
		m.SetMapIndex(k, v)
	}
	return m, nil
}

// decodeArray fills the positions of a fixed size array
func (e *Engine) decodeArray(msg *urlmsg.Message, key string, d *typemeta.Descriptor, existing reflect.Value, depth int) (reflect.Value, error) {
	arr := reflect.New(d.Type).Elem()
	if existing.IsValid() {
		arr.Set(existing)
	}

	for _, child := range urlmsg.ParseIndexKeys(msg, key) {
		if child.Index < 0 || child.Index >= d.Type.Len() {
			return reflect.Value{}, xerrors.Errorf("%w: %d at %q for %s", ErrIndexOutOfRange, child.Index, key, d.Type)
		}
		v, err := e.decode(msg, child.Key(key), d.Elem, arr.Index(child.Index), depth+1)
		if err != nil {
			return reflect.Value{}, err
		}
		arr.Index(child.Index).Set(v)
	}
	return arr, nil
}

// decodeSlice builds a slice long enough for the highest index. Positions without keys
// (omitted empty or nil elements) keep their zero value.
func (e *Engine) decodeSlice(msg *urlmsg.Message, key string, d *typemeta.Descriptor, existing reflect.Value, depth int) (reflect.Value, error) {
	children := urlmsg.ParseIndexKeys(msg, key)
	if len(children) == 0 {
		if existing.IsValid() {
			return existing, nil
		}
		return reflect.Zero(d.Type), nil
	}

	if first := children[0].Index; first < 0 {
		return reflect.Value{}, xerrors.Errorf("%w: %d at %q", ErrIndexOutOfRange, first, key)
	}
	n := children[len(children)-1].Index + 1
	if n > e.opts.MaxElements {
		return reflect.Value{}, xerrors.Errorf("%w: %d at %q exceeds %d elements", ErrIndexOutOfRange, n-1, key, e.opts.MaxElements)
	}

	s, err := e.instantiate(msg, key, d.Type, reflect.Value{})
	if err != nil {
		return reflect.Value{}, err
	}
	if s.Len() < n {
		grown := reflect.MakeSlice(d.Type, n, n)
		reflect.Copy(grown, s)
		s = grown
	}

	for _, child := range children {
		v, err := e.decode(msg, child.Key(key), d.Elem, reflect.Value{}, depth+1)
		if err != nil {
			return reflect.Value{}, err
		}
		s.Index(child.Index).Set(v)
	}
	return s, nil
}

// --------------------------------------------------------------------------
// Interfaces & Records
// --------------------------------------------------------------------------

// decodeInterface resolves the dynamic type from key$T$. Without a type name a plain
// string is returned if the interface can hold one.
func (e *Engine) decodeInterface(msg *urlmsg.Message, key string, t reflect.Type, depth int) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	name, ok := msg.Get(urlmsg.TypeKey(key))
	if !ok {
		raw, found := msg.Get(key)
		if found && stringType.AssignableTo(t) {
			out.Set(reflect.ValueOf(raw))
		}
		return out, nil
	}

	runtime, err := e.TypeByName(name)
	if err != nil {
		return reflect.Value{}, xerrors.Errorf("decode at %q: %w", key, err)
	}
	if runtime.Kind() == reflect.Interface || !runtime.AssignableTo(t) {
		return reflect.Value{}, xerrors.Errorf("%w: %s stored at %q does not implement %s", ErrTypeMismatch, runtime, key, t)
	}

	v, err := e.decode(msg, key, runtime, reflect.Value{}, depth+1)
	if err != nil {
		return reflect.Value{}, err
	}
	out.Set(v)
	return out, nil
}

// decodeRecord decodes every persistable member that is present in the message and
// assigns it through the member setter, coercing from the wire type if needed
func (e *Engine) decodeRecord(msg *urlmsg.Message, key string, d *typemeta.Descriptor, existing reflect.Value, depth int) (reflect.Value, error) {
	obj, err := e.instantiate(msg, key, d.Type, existing)
	if err != nil {
		return reflect.Value{}, err
	}
	obj = addressable(obj)

	for _, f := range d.Schema.Persistable() {
		memberKey := urlmsg.FormatKey(key, f.Name)
		if !msg.HasPrefix(memberKey) {
			continue
		}

		wire := f.SerializedType()
		var prev reflect.Value
		if wire == f.Type {
			prev = f.Get(obj)
		}
		v, err := e.decode(msg, memberKey, wire, prev, depth+1)
		if err != nil {
			return reflect.Value{}, err
		}
		if v.Type() != f.Type {
			if v, err = e.coercions.Convert(v, f.Type); err != nil {
				return reflect.Value{}, xerrors.Errorf("decode member %s.%s at %q: %w", d.Type, f.Name, memberKey, err)
			}
		}
		f.Set(obj, v)
	}
	return obj, nil
}

var stringType = reflect.TypeFor[string]()
