package marshal

import (
	"errors"
	"fmt"
	"math"
	"net"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/flatmsg/lib/coerce"
	"github.com/ValentinKolb/flatmsg/lib/typemeta"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// --------------------------------------------------------------------------
// Fixtures
// --------------------------------------------------------------------------

type status int

const (
	statusDraft status = iota
	statusActive
	statusRetired
)

type celsius float64

type widget struct {
	Name  string
	Tags  []string
	Price float64
}

type dims struct {
	Width, Height float64
}

type product struct {
	Widget widget
	Sizes  [3]int
	Stock  map[string]int
	Dims   *dims
	Status status
	Notes  *string
	Secret string `flatmsg:"-"`
	Parts  []widget
	Extra  any
	Label  string `flatmsg:"label"`
}

type node struct {
	Value int
	Next  *node
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e := New(opts)
	require.NoError(t, RegisterDerived[widget](e))
	require.NoError(t, RegisterDerived[dims](e))
	require.NoError(t, RegisterDerived[product](e))
	require.NoError(t, RegisterDerived[node](e))
	typemeta.RegisterEnum(e.Types(), map[status]string{
		statusDraft:   "draft",
		statusActive:  "active",
		statusRetired: "retired",
	})
	return e
}

func ptr[T any](v T) *T {
	return &v
}

// roundTrip encodes v below key and decodes it back as the same type
func roundTrip(t *testing.T, e *Engine, v any) any {
	t.Helper()
	msg := urlmsg.New()
	require.NoError(t, e.Encode(msg, "k", v, nil))
	out, err := e.Decode(msg, "k", reflect.TypeOf(v), reflect.Value{})
	require.NoError(t, err)
	return out.Interface()
}

// --------------------------------------------------------------------------
// Scalars
// --------------------------------------------------------------------------

func TestPrimitiveRoundTrip(t *testing.T) {
	e := newTestEngine(t, Options{})

	tests := []struct {
		name  string
		value any
	}{
		{"string", "hello world"},
		{"empty string", ""},
		{"bool", true},
		{"int", -42},
		{"int8", int8(-128)},
		{"uint16", uint16(65535)},
		{"uint64", uint64(math.MaxUint64)},
		{"zero float", 0.0},
		{"float32", float32(3.25)},
		{"float64", 9.99},
		{"complex", complex(1, -2)},
		{"duration", 90 * time.Second},
		{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")},
		{"bytes", []byte{0, 1, 2, 254}},
		{"ip", net.ParseIP("10.0.0.1")},
		{"named float", celsius(-3.5)},
		{"enum", statusRetired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, roundTrip(t, e, tt.value))
		})
	}
}

func TestTimeRoundTrip(t *testing.T) {
	e := newTestEngine(t, Options{})
	ts := time.Date(2024, 5, 17, 12, 30, 0, 123456789, time.UTC)

	out := roundTrip(t, e, ts).(time.Time)
	assert.True(t, ts.Equal(out))
}

func TestZeroFloatIsEmitted(t *testing.T) {
	e := newTestEngine(t, Options{})
	msg := urlmsg.New()
	require.NoError(t, e.Encode(msg, "k", 0.0, nil))
	assert.Equal(t, "0", msg.Value("k"))
}

func TestTopLevelScalar(t *testing.T) {
	e := newTestEngine(t, Options{})
	msg, err := Marshal(e, 42)
	require.NoError(t, err)
	assert.Equal(t, "42", msg.Value(urlmsg.RootKey))

	out, err := Unmarshal[int](e, msg)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestEnumeration(t *testing.T) {
	e := newTestEngine(t, Options{})

	msg, err := Marshal(e, product{Status: statusActive})
	require.NoError(t, err)
	assert.Equal(t, "active", msg.Value("Status"))

	msg.Set("Status", "bogus")
	_, err = Unmarshal[product](e, msg)
	assert.True(t, errors.Is(err, typemeta.ErrUnknownEnumValue))
}

// --------------------------------------------------------------------------
// Collections
// --------------------------------------------------------------------------

func TestArrayRoundTrip(t *testing.T) {
	e := newTestEngine(t, Options{})

	tests := []struct {
		name  string
		value any
	}{
		{"strings", []string{"a", "b", "c"}},
		{"ints", []int{3, 1, 2}},
		{"gap", []string{"a", "", "b"}},
		{"array", [3]int{1, 0, 3}},
		{"records", []dims{{1, 2}, {3, 4}}},
		{"nil element", []*dims{nil, {Width: 1, Height: 2}}},
		{"nested", [][]int{{1, 2}, {3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, roundTrip(t, e, tt.value))
		})
	}
}

func TestIndexOrderIsNumeric(t *testing.T) {
	e := newTestEngine(t, Options{})
	values := make([]int, 12)
	for i := range values {
		values[i] = i * 10
	}

	msg, err := Marshal(e, values)
	require.NoError(t, err)
	assert.Equal(t, "110", msg.Value("[11]"))

	out, err := Unmarshal[[]int](e, msg)
	require.NoError(t, err)
	assert.Equal(t, values, out)
}

func TestArrayIndexOutOfRange(t *testing.T) {
	e := newTestEngine(t, Options{})
	msg := urlmsg.New()
	msg.Set("[5]", "1")

	_, err := Unmarshal[[3]int](e, msg)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	small := New(Options{MaxElements: 4})
	_, err = Unmarshal[[]int](small, msg)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestDictionaryRoundTrip(t *testing.T) {
	e := newTestEngine(t, Options{})

	tests := []struct {
		name  string
		value any
	}{
		{"string to int", map[string]int{"x": 1, "y": 2}},
		{"escaped keys", map[string]string{"a b": "c", "x]y": "z", "p.q": "r"}},
		{"int keys", map[int]string{10: "a", 2: "b"}},
		{"enum keys", map[status]bool{statusActive: true, statusDraft: false}},
		{"record values", map[string]dims{"small": {1, 1}, "large": {10, 20}}},
		{"slice values", map[string][]int{"a": {1, 2}, "b": {3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, roundTrip(t, e, tt.value))
		})
	}
}

func TestDictionaryScenario(t *testing.T) {
	e := newTestEngine(t, Options{})

	msg, err := Marshal(e, map[string]int{"x": 1, "y": 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"[x]", "[y]"}, msg.Keys())

	out, err := Unmarshal[map[string]int](e, msg)
	require.NoError(t, err)
	assert.Equal(t, 1, out["x"])
	assert.Equal(t, 2, out["y"])
	assert.Len(t, out, 2)
}

// --------------------------------------------------------------------------
// Records
// --------------------------------------------------------------------------

func TestWidgetScenario(t *testing.T) {
	e := newTestEngine(t, Options{})
	in := widget{Name: "Widget", Tags: []string{"a", "b"}, Price: 9.99}

	s, err := MarshalString(e, in)
	require.NoError(t, err)
	assert.Equal(t, "Name=Widget&Tags%5B0%5D=a&Tags%5B1%5D=b&Price=9.99", s)

	out, err := UnmarshalString[widget](e, s)
	require.NoError(t, err)
	assert.Equal(t, "Widget", out.Name)
	assert.Equal(t, []string{"a", "b"}, out.Tags)
	assert.Equal(t, 9.99, out.Price)
}

func TestNestedRoundTrip(t *testing.T) {
	e := newTestEngine(t, Options{})
	in := product{
		Widget: widget{Name: "frame", Tags: []string{"wood"}, Price: 12.5},
		Sizes:  [3]int{1, 0, 3},
		Stock:  map[string]int{"berlin": 4, "new york": 0},
		Dims:   &dims{Width: 2, Height: 3.5},
		Status: statusActive,
		Notes:  ptr("fragile"),
		Secret: "hidden",
		Parts:  []widget{{Name: "p1", Tags: []string{"x", "y"}}, {Name: "p2", Price: 1}},
		Extra:  widget{Name: "inner"},
		Label:  "front",
	}

	msg, err := Marshal(e, in)
	require.NoError(t, err)
	assert.Equal(t, "2", msg.Value("Dims.Width"))
	assert.Equal(t, "p2", msg.Value("Parts[1].Name"))
	assert.Equal(t, "0", msg.Value("Stock[new+york]"))
	assert.Equal(t, "front", msg.Value("label"))
	assert.False(t, msg.Has("Secret"))
	assert.Equal(t, typemeta.QualifiedName(reflect.TypeFor[widget]()), msg.Value("Extra$T$"))

	out, err := Unmarshal[product](e, msg)
	require.NoError(t, err)
	assert.Empty(t, out.Secret)

	in.Secret = ""
	assert.Equal(t, in, out)
}

func TestNullMemberScenario(t *testing.T) {
	e := newTestEngine(t, Options{})

	msg, err := Marshal(e, product{Widget: widget{Name: "w"}})
	require.NoError(t, err)
	assert.False(t, msg.HasPrefix("Dims"))
	assert.False(t, msg.HasPrefix("Notes"))
	assert.False(t, msg.HasPrefix("Extra"))

	out, err := Unmarshal[product](e, msg)
	require.NoError(t, err)
	assert.Nil(t, out.Dims)
	assert.Nil(t, out.Notes)
	assert.Nil(t, out.Extra)
}

func TestKeepEmpty(t *testing.T) {
	in := product{Notes: ptr("")}

	sparse := newTestEngine(t, Options{})
	msg, err := Marshal(sparse, in)
	require.NoError(t, err)
	assert.False(t, msg.Has("Notes"))
	out, err := Unmarshal[product](sparse, msg)
	require.NoError(t, err)
	assert.Nil(t, out.Notes)

	keep := newTestEngine(t, Options{KeepEmpty: true})
	msg, err = Marshal(keep, in)
	require.NoError(t, err)
	require.True(t, msg.Has("Notes"))
	out, err = Unmarshal[product](keep, msg)
	require.NoError(t, err)
	require.NotNil(t, out.Notes)
	assert.Equal(t, "", *out.Notes)
}

func TestExistingInstance(t *testing.T) {
	e := newTestEngine(t, Options{})
	msg := urlmsg.New()
	msg.Set("Name", "renamed")

	w := widget{Name: "old", Price: 7}
	require.NoError(t, e.DecodeInto(msg, "", &w))
	assert.Equal(t, widget{Name: "renamed", Price: 7}, w)

	assert.True(t, errors.Is(e.DecodeInto(msg, "", w), ErrInvalidTarget))
}

func TestExistingCollectionsAreCopied(t *testing.T) {
	e := newTestEngine(t, Options{})

	orig := map[string]int{"x": 1}
	msg := urlmsg.New()
	msg.Set("[y]", "2")
	v, err := e.Decode(msg, "", reflect.TypeFor[map[string]int](), reflect.ValueOf(orig))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x": 1, "y": 2}, v.Interface())
	assert.Equal(t, map[string]int{"x": 1}, orig)

	bad := urlmsg.New()
	bad.Set("[a]", "3")
	bad.Set("[b]", "not a number")
	_, err = e.Decode(bad, "", reflect.TypeFor[map[string]int](), reflect.ValueOf(orig))
	require.Error(t, err)
	assert.Equal(t, map[string]int{"x": 1}, orig, "failed decode must not leave partial entries")

	nums := []int{1, 2}
	msg = urlmsg.New()
	msg.Set("[0]", "9")
	v, err = e.Decode(msg, "", reflect.TypeFor[[]int](), reflect.ValueOf(nums))
	require.NoError(t, err)
	assert.Equal(t, []int{9, 2}, v.Interface())
	assert.Equal(t, []int{1, 2}, nums)
}

func TestInstantiator(t *testing.T) {
	e := newTestEngine(t, Options{})
	RegisterInstantiatorFunc(e, func(msg *urlmsg.Message, key string) (widget, error) {
		return widget{Tags: []string{"default"}, Price: 1.5}, nil
	})

	msg := urlmsg.New()
	msg.Set("Name", "n")
	out, err := Unmarshal[widget](e, msg)
	require.NoError(t, err)
	assert.Equal(t, widget{Name: "n", Tags: []string{"default"}, Price: 1.5}, out)
}

func TestNoSchema(t *testing.T) {
	e := newTestEngine(t, Options{})
	_, err := Marshal(e, struct{ A int }{A: 1})
	assert.True(t, errors.Is(err, typemeta.ErrNoSchema))
}

// --------------------------------------------------------------------------
// Polymorphism
// --------------------------------------------------------------------------

func TestStoreTypeNames(t *testing.T) {
	e := newTestEngine(t, Options{StoreTypeNames: true})
	in := widget{Name: "w", Tags: []string{"a"}}

	msg, err := Marshal(e, in)
	require.NoError(t, err)
	assert.Equal(t, typemeta.QualifiedName(reflect.TypeFor[widget]()), msg.Value(urlmsg.TypeSuffix))
	assert.Equal(t, "string", msg.Value("Name$T$"))
	assert.Equal(t, "[]string", msg.Value("Tags$T$"))

	out, err := Unmarshal[widget](e, msg)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestInterfaceDecode(t *testing.T) {
	e := newTestEngine(t, Options{})

	tests := []struct {
		name  string
		value any
	}{
		{"record", widget{Name: "w"}},
		{"pointer", &dims{Width: 1}},
		{"int", 7},
		{"slice", []string{"a", "b"}},
		{"string", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Marshal(e, product{Extra: tt.value})
			require.NoError(t, err)
			out, err := Unmarshal[product](e, msg)
			require.NoError(t, err)
			assert.Equal(t, tt.value, out.Extra)
		})
	}

	t.Run("raw string without type name", func(t *testing.T) {
		msg := urlmsg.New()
		msg.Set("Extra", "plain")
		out, err := Unmarshal[product](e, msg)
		require.NoError(t, err)
		assert.Equal(t, "plain", out.Extra)
	})

	t.Run("unknown type name", func(t *testing.T) {
		msg := urlmsg.New()
		msg.Set("Extra$T$", "no.such.Type")
		_, err := Unmarshal[product](e, msg)
		assert.True(t, errors.Is(err, typemeta.ErrUnknownTypeName))
	})
}

// --------------------------------------------------------------------------
// Custom Serializers & Coercion
// --------------------------------------------------------------------------

func TestCustomSerializerPrecedence(t *testing.T) {
	e := newTestEngine(t, Options{})
	RegisterText(e,
		func(d dims) (string, error) {
			return strconv.FormatFloat(d.Width, 'g', -1, 64) + "x" + strconv.FormatFloat(d.Height, 'g', -1, 64), nil
		},
		func(s string) (dims, error) {
			w, h, ok := strings.Cut(s, "x")
			if !ok {
				return dims{}, fmt.Errorf("invalid dimensions %q", s)
			}
			width, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return dims{}, err
			}
			height, err := strconv.ParseFloat(h, 64)
			return dims{Width: width, Height: height}, err
		},
	)

	in := product{Dims: &dims{Width: 2, Height: 3}}
	msg, err := Marshal(e, in)
	require.NoError(t, err)
	assert.Equal(t, "2x3", msg.Value("Dims"))
	assert.False(t, msg.Has("Dims.Width"))

	out, err := Unmarshal[product](e, msg)
	require.NoError(t, err)
	assert.Equal(t, in.Dims, out.Dims)

	msg.Set("Dims", "broken")
	_, err = Unmarshal[product](e, msg)
	assert.Error(t, err)
}

type holder struct {
	Kind    reflect.Type
	Pattern *regexp.Regexp
	Doc     bson.D
	Raw     bson.Raw
}

func TestBuiltinCustomSerializers(t *testing.T) {
	e := newTestEngine(t, Options{})
	require.NoError(t, RegisterDerived[holder](e))

	raw, err := bson.Marshal(bson.D{{Key: "n", Value: "v"}})
	require.NoError(t, err)
	in := holder{
		Kind:    reflect.TypeFor[widget](),
		Pattern: regexp.MustCompile(`^items\[(\d+)\]$`),
		Doc:     bson.D{{Key: "a", Value: int32(1)}, {Key: "b", Value: "x"}},
		Raw:     raw,
	}

	msg, err := Marshal(e, in)
	require.NoError(t, err)
	assert.Equal(t, typemeta.QualifiedName(reflect.TypeFor[widget]()), msg.Value("Kind"))
	assert.Equal(t, `^items\[(\d+)\]$`, msg.Value("Pattern"))

	out, err := Unmarshal[holder](e, msg)
	require.NoError(t, err)
	assert.Equal(t, in.Kind, out.Kind)
	assert.Equal(t, in.Pattern.String(), out.Pattern.String())
	assert.Equal(t, in.Doc, out.Doc)
	assert.Equal(t, in.Raw, out.Raw)

	_, err = Marshal(e, holder{Kind: reflect.TypeFor[chan int]()})
	assert.True(t, errors.Is(err, typemeta.ErrUnknownTypeName))
}

type money int64

type invoice struct {
	Total money
	Lines []money
}

func TestMemberCoercion(t *testing.T) {
	e := newTestEngine(t, Options{})
	coerce.Register(e.Coercions(), func(m money) (string, error) {
		return fmt.Sprintf("%d.%02d", m/100, m%100), nil
	})
	coerce.Register(e.Coercions(), func(s string) (money, error) {
		f, err := strconv.ParseFloat(s, 64)
		return money(f*100 + 0.5), err
	})
	e.RegisterSchema(typemeta.NewSchema[invoice](
		typemeta.FieldOf("Total",
			func(i *invoice) money { return i.Total },
			func(i *invoice, m money) { i.Total = m },
		).As(reflect.TypeFor[string]()),
		typemeta.FieldOf("Lines",
			func(i *invoice) []money { return i.Lines },
			func(i *invoice, l []money) { i.Lines = l },
		).As(reflect.TypeFor[[]string]()),
		typemeta.ReadOnlyField("Count", func(i *invoice) int { return len(i.Lines) }),
	))

	in := invoice{Total: 1234, Lines: []money{1000, 234}}
	msg, err := Marshal(e, in)
	require.NoError(t, err)
	assert.Equal(t, "12.34", msg.Value("Total"))
	assert.Equal(t, "2.34", msg.Value("Lines[1]"))
	assert.False(t, msg.Has("Count"))

	out, err := Unmarshal[invoice](e, msg)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDeclaredTypeCoercion(t *testing.T) {
	e := newTestEngine(t, Options{})
	msg := urlmsg.New()

	// a celsius value written as float64 takes the float shape
	require.NoError(t, e.Encode(msg, "temp", celsius(21.5), reflect.TypeFor[float64]()))
	assert.Equal(t, "21.5", msg.Value("temp"))

	out, err := e.Decode(msg, "temp", reflect.TypeFor[celsius](), reflect.Value{})
	require.NoError(t, err)
	assert.Equal(t, celsius(21.5), out.Interface())
}

// --------------------------------------------------------------------------
// Depth Guard
// --------------------------------------------------------------------------

func TestCyclicGraph(t *testing.T) {
	e := newTestEngine(t, Options{})
	n := &node{Value: 1}
	n.Next = n

	_, err := Marshal(e, n)
	assert.True(t, errors.Is(err, ErrMaxDepth))
}

func TestDecodeDepthLimit(t *testing.T) {
	e := newTestEngine(t, Options{})
	var head *node
	for i := 0; i < 10; i++ {
		head = &node{Value: i, Next: head}
	}
	msg, err := Marshal(e, head)
	require.NoError(t, err)

	out, err := Unmarshal[*node](e, msg)
	require.NoError(t, err)
	assert.Equal(t, head, out)

	shallow := newTestEngine(t, Options{MaxDepth: 8})
	_, err = Unmarshal[*node](shallow, msg)
	assert.True(t, errors.Is(err, ErrMaxDepth))
}
