package urlmsg

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageSetKeepsOrder(t *testing.T) {
	msg := New()
	msg.Set("b", "1")
	msg.Set("a", "2")
	msg.Set("b", "3")

	assert.Equal(t, []string{"b", "a"}, msg.Keys())
	assert.Equal(t, "3", msg.Value("b"))
	assert.Equal(t, 2, msg.Len())

	msg.Delete("b")
	assert.False(t, msg.Has("b"))
	assert.Equal(t, []string{"a"}, msg.Keys())
}

func TestMessageWireRoundTrip(t *testing.T) {
	msg := NewCommand("catalog.put")
	msg.Set("Name", "Widget & Co")
	msg.Set("Tags[0]", "a=b")
	msg.Set("Attributes[a+b]", "")
	msg.Set("Notes", "line1\nline2 ? ")

	wire := msg.String()
	parsed, err := Parse(wire, 0)
	require.NoError(t, err)

	assert.Equal(t, "catalog.put", parsed.Command)
	assert.Equal(t, msg.Keys(), parsed.Keys())
	assert.True(t, msg.Equal(parsed))
}

func TestMessageCustomSeparator(t *testing.T) {
	msg := New().WithSeparator(';')
	msg.Set("a", "1;2")
	msg.Set("b", "3")

	wire := msg.String()
	assert.Equal(t, "a=1%3B2;b=3", wire)

	parsed, err := Parse(wire, ';')
	require.NoError(t, err)
	assert.Equal(t, "1;2", parsed.Value("a"))
	assert.Equal(t, "3", parsed.Value("b"))
}

func TestMessageSeparators(t *testing.T) {
	msg := New()
	msg.Set("Name", "a.b-c_d~e")
	msg.Set("Tags[0]", "x")

	for _, sep := range []byte{';', ',', '|', '!', ' '} {
		wire := msg.Clone().WithSeparator(sep).String()
		parsed, err := Parse(wire, sep)
		require.NoError(t, err, "separator %q", sep)
		assert.True(t, msg.Equal(parsed), "separator %q", sep)
	}

	for _, sep := range []byte{'.', '~', '-', '_', 'a', 'Z', '5', '=', '%', '+', '?', 0xc3} {
		assert.ErrorIs(t, ValidateSeparator(sep), ErrInvalidSeparator, "separator %q", sep)
		_, err := Parse("Name=a", sep)
		assert.ErrorIs(t, err, ErrInvalidSeparator, "separator %q", sep)
	}
	assert.NoError(t, ValidateSeparator(0))
}

func TestMessageCommandOnly(t *testing.T) {
	msg := NewCommand("catalog list")
	assert.Equal(t, "catalog+list", msg.String())

	parsed, err := Parse(msg.String(), 0)
	require.NoError(t, err)
	assert.Equal(t, "catalog list", parsed.Command)
	assert.Equal(t, 0, parsed.Len())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("a=1&b", 0)
	assert.ErrorIs(t, err, ErrMalformedPair)

	_, err = Parse("a=1&a=2", 0)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = Parse("a=%zz", 0)
	assert.Error(t, err)
}

func TestMessageHasPrefix(t *testing.T) {
	msg := New()
	msg.Set("item.Name", "x")
	msg.Set("list[0]", "y")

	assert.True(t, msg.HasPrefix("item"))
	assert.True(t, msg.HasPrefix("list"))
	assert.False(t, msg.HasPrefix("ite"))
	assert.False(t, msg.HasPrefix("other"))
	assert.True(t, msg.HasPrefix(RootKey))
	assert.False(t, New().HasPrefix(RootKey))
}

func TestFromValues(t *testing.T) {
	values := url.Values{"b": {"2"}, "a": {"1", "ignored"}}
	msg := FromValues("cmd", values)

	assert.Equal(t, "cmd", msg.Command)
	assert.Equal(t, []string{"a", "b"}, msg.Keys())
	assert.Equal(t, "1", msg.Value("a"))
}

func TestMessageClone(t *testing.T) {
	msg := NewCommand("c")
	msg.Set("a", "1")
	clone := msg.Clone()
	clone.Set("b", "2")

	assert.False(t, msg.Has("b"))
	assert.True(t, clone.Has("a"))
	assert.False(t, msg.Equal(clone))
}
