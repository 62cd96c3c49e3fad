package typemeta

import (
	"net"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type celsius float64

type color int

const (
	colorRed color = iota
	colorGreen
)

type point struct {
	X, Y int
}

type tagged struct {
	Visible string
	Renamed int    `flatmsg:"other"`
	Hidden  string `flatmsg:"-"`
	private int
}

func TestClassifyPrecedence(t *testing.T) {
	r := NewRegistry()
	RegisterEnum(r, map[color]string{colorRed: "red", colorGreen: "green"})
	r.RegisterSchema(NewSchema[point]())

	tests := []struct {
		value any
		want  Category
	}{
		{"", CatString},
		{0, CatParseable},
		{uint16(0), CatParseable},
		{3.5, CatParseable},
		{true, CatParseable},
		{celsius(0), CatParseable},
		{time.Time{}, CatParseable},
		{time.Duration(0), CatParseable},
		{uuid.UUID{}, CatParseable},
		{net.IP{}, CatParseable},
		{[]byte{}, CatParseable},
		{new(int), CatNullable},
		{&point{}, CatNullable},
		{map[string]int{}, CatDictionary},
		{[3]int{}, CatArray},
		{[]string{}, CatEnumerable},
		{colorRed, CatEnumeration},
		{point{}, CatOther},
	}
	for _, tt := range tests {
		d, err := r.Classify(reflect.TypeOf(tt.value))
		require.NoError(t, err, "%T", tt.value)
		assert.Equal(t, tt.want, d.Category, "%T", tt.value)
	}

	d, err := r.Classify(reflect.TypeFor[any]())
	require.NoError(t, err)
	assert.Equal(t, CatInterface, d.Category)
}

func TestClassifyErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.Classify(reflect.TypeFor[point]())
	assert.ErrorIs(t, err, ErrNoSchema)

	_, err = r.Classify(reflect.TypeFor[chan int]())
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = r.Classify(reflect.TypeFor[map[[2]int]string]())
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestClassifyIsMemoized(t *testing.T) {
	r := NewRegistry()
	typ := reflect.TypeFor[[]int]()

	first, err := r.Classify(typ)
	require.NoError(t, err)
	second, err := r.Classify(typ)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, reflect.TypeFor[int](), first.Elem)
}

func TestRegistrationInvalidatesDescriptors(t *testing.T) {
	r := NewRegistry()
	typ := reflect.TypeFor[color]()

	d, err := r.Classify(typ)
	require.NoError(t, err)
	assert.Equal(t, CatParseable, d.Category)

	RegisterEnum(r, map[color]string{colorRed: "red"})
	d, err = r.Classify(typ)
	require.NoError(t, err)
	assert.Equal(t, CatEnumeration, d.Category)
}

func TestClassifyConcurrent(t *testing.T) {
	r := NewRegistry()
	r.RegisterSchema(NewSchema[point]())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := r.Classify(reflect.TypeFor[map[string][]point]())
			assert.NoError(t, err)
			assert.Equal(t, CatDictionary, d.Category)
		}()
	}
	wg.Wait()
}

func TestScalarRoundTrip(t *testing.T) {
	r := NewRegistry()
	RegisterEnum(r, map[color]string{colorRed: "red", colorGreen: "green"})

	values := []any{
		"text", 42, int8(-8), uint64(1 << 60), float32(1.25), 9.99, true,
		complex(1, -2), celsius(21.5), time.Date(2024, 5, 1, 12, 0, 0, 5, time.UTC),
		90 * time.Second, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		net.ParseIP("10.0.0.1"), []byte{1, 2, 3}, colorGreen,
	}
	for _, v := range values {
		d, err := r.Classify(reflect.TypeOf(v))
		require.NoError(t, err)

		s, err := r.FormatScalar(d, reflect.ValueOf(v))
		require.NoError(t, err)

		parsed, err := r.ParseScalar(d, s)
		require.NoError(t, err, "%T %q", v, s)
		assert.Equal(t, v, parsed.Interface(), "%T", v)
	}
}

func TestEnumParsing(t *testing.T) {
	r := NewRegistry()
	RegisterEnum(r, map[color]string{colorRed: "red", colorGreen: "green"})
	d, err := r.Classify(reflect.TypeFor[color]())
	require.NoError(t, err)

	v, err := r.ParseScalar(d, "GREEN")
	require.NoError(t, err)
	assert.Equal(t, colorGreen, v.Interface())

	v, err = r.ParseScalar(d, "7")
	require.NoError(t, err)
	assert.Equal(t, color(7), v.Interface())

	s, err := r.FormatScalar(d, reflect.ValueOf(color(7)))
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	_, err = r.ParseScalar(d, "blue")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)
}

type smallEnum int8

type byteEnum uint8

func TestEnumParsingRange(t *testing.T) {
	r := NewRegistry()
	RegisterEnum(r, map[smallEnum]string{1: "one"})
	RegisterEnum(r, map[byteEnum]string{1: "one"})

	small, err := r.Classify(reflect.TypeFor[smallEnum]())
	require.NoError(t, err)
	byt, err := r.Classify(reflect.TypeFor[byteEnum]())
	require.NoError(t, err)

	tests := []struct {
		name    string
		d       *Descriptor
		in      string
		want    any
		wantErr bool
	}{
		{"Int8Max", small, "127", smallEnum(127), false},
		{"Int8Min", small, "-128", smallEnum(-128), false},
		{"Int8Overflow", small, "300", nil, true},
		{"Int8Underflow", small, "-129", nil, true},
		{"Uint8Max", byt, "255", byteEnum(255), false},
		{"Uint8Overflow", byt, "256", nil, true},
		{"Uint8Negative", byt, "-1", nil, true},
		{"Name", byt, "ONE", byteEnum(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := r.ParseScalar(tt.d, tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownEnumValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Interface())
		})
	}
}

func TestTypeNames(t *testing.T) {
	r := NewRegistry()
	r.RegisterSchema(NewSchema[point]())

	name, ok := r.NameOf(reflect.TypeFor[point]())
	require.True(t, ok)
	assert.Equal(t, "github.com/ValentinKolb/flatmsg/lib/typemeta.point", name)

	typ, err := r.TypeByName(name)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[point](), typ)

	typ, err = r.TypeByName("int64")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[int64](), typ)

	_, err = r.TypeByName("nope")
	assert.ErrorIs(t, err, ErrUnknownTypeName)
}
