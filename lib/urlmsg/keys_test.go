package urlmsg

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatKey(t *testing.T) {
	tests := []struct {
		key, subkey, want string
	}{
		{"", "", "."},
		{"", "Name", "Name"},
		{".", "Name", "Name"},
		{"item", "", "item"},
		{"item", "Name", "item.Name"},
		{"item.", "Name", "item.Name"},
		{"items[2]", "Name", "items[2].Name"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatKey(tt.key, tt.subkey), "FormatKey(%q, %q)", tt.key, tt.subkey)
	}
}

func TestFormatIndexKey(t *testing.T) {
	assert.Equal(t, "items[3]", FormatIndexKey("items", 3))
	assert.Equal(t, "[0]", FormatIndexKey(".", 0))
	assert.Equal(t, "[0]", FormatIndexKey("", 0))
	assert.Equal(t, "map[a+b]", FormatMapKey("map", "a b"))
	assert.Equal(t, "map[x%5D%5By]", FormatMapKey("map", "x][y"))
	assert.Equal(t, "item$T$", TypeKey("item"))
	assert.Equal(t, "$T$", TypeKey("."))
}

func TestParseChildKeysNumericOrder(t *testing.T) {
	msg := New()
	msg.Set("items[10]", "k")
	msg.Set("items[2]", "c")
	msg.Set("items[0].Name", "a")
	msg.Set("items[0].Price", "1")
	msg.Set("items[1]", "b")
	msg.Set("itemsX[5]", "ignored")
	msg.Set("items", "ignored")

	children := ParseIndexKeys(msg, "items")
	require.Len(t, children, 4)

	var indices []int
	for _, c := range children {
		indices = append(indices, c.Index)
	}
	assert.Equal(t, []int{0, 1, 2, 10}, indices)
	assert.False(t, children[0].Exact)
	assert.True(t, children[1].Exact)
	assert.Equal(t, "items[10]", children[3].Key("items"))
}

func TestParseChildKeysMapNames(t *testing.T) {
	msg := New()
	msg.Set(FormatMapKey("attrs", "a b"), "1")
	msg.Set(FormatMapKey("attrs", "x]y"), "2")
	msg.Set(FormatKey(FormatMapKey("attrs", "nested"), "Field"), "3")

	children := ParseChildKeys(msg, "attrs")
	require.Len(t, children, 3)
	assert.Equal(t, "a b", children[0].Name)
	assert.Equal(t, "x]y", children[1].Name)
	assert.Equal(t, "nested", children[2].Name)
	assert.False(t, children[2].Exact)
}

func TestParseChildKeysEscapesParent(t *testing.T) {
	msg := New()
	msg.Set("a.b[1]", "x")
	msg.Set("aXb[2]", "y")
	msg.Set("m[k][0]", "z")

	children := ParseChildKeys(msg, "a.b")
	require.Len(t, children, 1)
	assert.Equal(t, 1, children[0].Index)

	nested := ParseChildKeys(msg, "m[k]")
	require.Len(t, nested, 1)
	assert.Equal(t, 0, nested[0].Index)
}

func TestParseChildKeysRoot(t *testing.T) {
	msg := New()
	msg.Set(FormatIndexKey(RootKey, 1), "b")
	msg.Set(FormatIndexKey(RootKey, 0), "a")

	children := ParseIndexKeys(msg, RootKey)
	require.Len(t, children, 2)
	assert.Equal(t, "[0]", children[0].Key(RootKey))
}

func TestParseIndexKeysCanonicalOnly(t *testing.T) {
	msg := New()
	msg.Set("k[1]", "b")
	msg.Set("k[01]", "c")
	msg.Set("k[+2]", "d")
	msg.Set("k[0]", "a")

	children := ParseIndexKeys(msg, "k")
	require.Len(t, children, 2)
	assert.Equal(t, "k[0]", children[0].Key("k"))
	assert.Equal(t, "k[1]", children[1].Key("k"))

	all := ParseChildKeys(msg, "k")
	require.Len(t, all, 4)
	assert.False(t, all[1].Numeric, "leading zero")
	assert.False(t, all[2].Numeric, "explicit sign")
}

func TestParseChildKeysManyParents(t *testing.T) {
	msg := New()
	for i := 0; i < 50; i++ {
		msg.Set(FormatIndexKey(FormatKey("p", strconv.Itoa(i)), 0), "x")
	}
	for i := 0; i < 50; i++ {
		children := ParseIndexKeys(msg, FormatKey("p", strconv.Itoa(i)))
		require.Len(t, children, 1, "parent p.%d", i)
		assert.Equal(t, 0, children[0].Index)
	}
}
