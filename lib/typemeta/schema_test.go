package typemeta

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldOfAccessors(t *testing.T) {
	field := FieldOf("X",
		func(p *point) int { return p.X },
		func(p *point, v int) { p.X = v },
	)
	assert.Equal(t, reflect.TypeFor[int](), field.Type)
	assert.True(t, field.Persistable())

	obj := reflect.New(reflect.TypeFor[point]()).Elem()
	field.Set(obj, reflect.ValueOf(7))
	assert.Equal(t, 7, obj.Interface().(point).X)
	assert.Equal(t, 7, field.Get(obj).Interface())

	field.Set(obj, reflect.Value{})
	assert.Equal(t, 0, obj.Interface().(point).X)
}

func TestReadOnlyAndExcludedFields(t *testing.T) {
	schema := NewSchema[point](
		FieldOf("X", func(p *point) int { return p.X }, func(p *point, v int) { p.X = v }),
		ReadOnlyField("Sum", func(p *point) int { return p.X + p.Y }),
		FieldOf("Y", func(p *point) int { return p.Y }, func(p *point, v int) { p.Y = v }).NotPersisted(),
	)

	persistable := schema.Persistable()
	require.Len(t, persistable, 1)
	assert.Equal(t, "X", persistable[0].Name)

	sum, ok := schema.Field("Sum")
	require.True(t, ok)
	obj := reflect.ValueOf(&point{X: 1, Y: 2}).Elem()
	assert.Equal(t, 3, sum.Get(obj).Interface())
}

func TestFieldInterfaceType(t *testing.T) {
	type holder struct{ V any }
	field := FieldOf("V", func(h *holder) any { return h.V }, func(h *holder, v any) { h.V = v })

	obj := reflect.New(reflect.TypeFor[holder]()).Elem()
	got := field.Get(obj)
	assert.Equal(t, reflect.Interface, got.Kind())
	assert.True(t, got.IsNil())

	field.Set(obj, reflect.ValueOf("x"))
	assert.Equal(t, "x", obj.Interface().(holder).V)
}

func TestDeriveSchema(t *testing.T) {
	schema, err := DeriveSchema[tagged]()
	require.NoError(t, err)
	require.Len(t, schema.Fields, 3)

	names := make([]string, 0)
	for _, f := range schema.Persistable() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Visible", "other"}, names)

	obj := reflect.New(reflect.TypeFor[tagged]()).Elem()
	f, _ := schema.Field("other")
	f.Set(obj, reflect.ValueOf(5))
	assert.Equal(t, 5, obj.Interface().(tagged).Renamed)

	_, err = DeriveSchema[int]()
	assert.Error(t, err)
}

func TestFieldWireType(t *testing.T) {
	field := FieldOf("T", func(c *struct{ T celsius }) celsius { return c.T }, func(c *struct{ T celsius }, v celsius) { c.T = v })
	assert.Equal(t, reflect.TypeFor[celsius](), field.SerializedType())

	field = field.As(reflect.TypeFor[string]())
	assert.Equal(t, reflect.TypeFor[string](), field.SerializedType())
	assert.Equal(t, reflect.TypeFor[celsius](), field.Type)
}
