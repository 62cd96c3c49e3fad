package urlmsg

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// DefaultSeparator separates two pairs in the wire representation of a message
const DefaultSeparator byte = '&'

var (
	// ErrMalformedPair is returned by Parse for a pair that has no '=' sign
	ErrMalformedPair = xerrors.New("urlmsg: malformed pair")
	// ErrDuplicateKey is returned by Parse if a key occurs more than once
	ErrDuplicateKey = xerrors.New("urlmsg: duplicate key")
	// ErrInvalidSeparator is returned for a separator that can occur unescaped inside an
	// encoded key or value, or that has a meaning of its own in the wire format
	ErrInvalidSeparator = xerrors.New("urlmsg: invalid separator")
)

// ValidateSeparator checks that sep never appears in the output of url.QueryEscape
// and is none of '=', '%', '+' and '?'. Zero selects DefaultSeparator and is valid.
func ValidateSeparator(sep byte) error {
	switch {
	case sep == 0:
		return nil
	case sep >= 0x80,
		'a' <= sep && sep <= 'z', 'A' <= sep && sep <= 'Z', '0' <= sep && sep <= '9',
		strings.IndexByte("-_.~=%+?", sep) >= 0:
		return xerrors.Errorf("%w: %q", ErrInvalidSeparator, sep)
	}
	return nil
}

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message is an ordered collection of unique string keys mapped to string values.
// The optional Command names a remote operation when the message is used as a
// request. Messages are not safe for concurrent mutation.
type Message struct {
	Command   string
	Separator byte

	keys   []string
	values map[string]string
}

// New creates an empty message using the default separator
func New() *Message {
	return &Message{
		Separator: DefaultSeparator,
		values:    make(map[string]string),
	}
}

// NewCommand creates an empty message carrying the given command name
func NewCommand(command string) *Message {
	msg := New()
	msg.Command = command
	return msg
}

// WithSeparator changes the pair separator used by String and returns the message.
// Only separators accepted by ValidateSeparator render a parseable message.
func (m *Message) WithSeparator(sep byte) *Message {
	m.Separator = sep
	return m
}

// Set stores value under key. Replacing an existing key keeps its position.
func (m *Message) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether the key is present
func (m *Message) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value for key or the empty string if it is absent
func (m *Message) Value(key string) string {
	return m.values[key]
}

// Has reports whether key is present
func (m *Message) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key from the message
func (m *Message) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of pairs
func (m *Message) Len() int {
	return len(m.keys)
}

// Keys returns a copy of all keys in insertion order
func (m *Message) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Pair is a single key/value entry of a message
type Pair struct {
	Key   string
	Value string
}

// Pairs returns all pairs in insertion order
func (m *Message) Pairs() []Pair {
	out := make([]Pair, len(m.keys))
	for i, k := range m.keys {
		out[i] = Pair{Key: k, Value: m.values[k]}
	}
	return out
}

// Range calls fn for every pair in insertion order until fn returns false
func (m *Message) Range(fn func(key, value string) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// HasPrefix reports whether any key addresses prefix itself or a position below it,
// i.e. equals prefix or continues it with '.', '[' or the type-name marker.
func (m *Message) HasPrefix(prefix string) bool {
	if prefix == "" || prefix == RootKey {
		return len(m.keys) > 0
	}
	if m.Has(prefix) {
		return true
	}
	for _, k := range m.keys {
		if len(k) <= len(prefix) || !strings.HasPrefix(k, prefix) {
			continue
		}
		switch k[len(prefix)] {
		case '.', '[', '$':
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the message
func (m *Message) Clone() *Message {
	out := &Message{
		Command:   m.Command,
		Separator: m.Separator,
		keys:      make([]string, len(m.keys)),
		values:    make(map[string]string, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether both messages have the same command and the same pairs.
// Pair order is ignored.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Command != other.Command || len(m.values) != len(other.values) {
		return false
	}
	for k, v := range m.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Wire Format
// --------------------------------------------------------------------------

// String renders the message in its wire format:
//
//	[command "?"] key "=" value (SEP key "=" value)*
//
// Keys, values and the command are percent-encoded. A message without pairs renders
// as the encoded command alone.
func (m *Message) String() string {
	var sb strings.Builder
	sep := m.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}

	if m.Command != "" {
		sb.WriteString(url.QueryEscape(m.Command))
		if len(m.keys) == 0 {
			return sb.String()
		}
		sb.WriteByte('?')
	}

	for i, k := range m.keys {
		if i > 0 {
			sb.WriteByte(sep)
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(m.values[k]))
	}
	return sb.String()
}

// Parse reads a message from its wire format. sep is the pair separator, zero selects
// DefaultSeparator. Input without '=' and without '?' is read as a bare command.
func Parse(s string, sep byte) (*Message, error) {
	if err := ValidateSeparator(sep); err != nil {
		return nil, err
	}
	if sep == 0 {
		sep = DefaultSeparator
	}
	msg := New().WithSeparator(sep)
	if s == "" {
		return msg, nil
	}

	body := s
	if i := strings.IndexByte(s, '?'); i >= 0 {
		command, err := url.QueryUnescape(s[:i])
		if err != nil {
			return nil, xerrors.Errorf("urlmsg: invalid command %q: %w", s[:i], err)
		}
		msg.Command = command
		body = s[i+1:]
	} else if !strings.Contains(s, "=") {
		command, err := url.QueryUnescape(s)
		if err != nil {
			return nil, xerrors.Errorf("urlmsg: invalid command %q: %w", s, err)
		}
		msg.Command = command
		return msg, nil
	}

	if body == "" {
		return msg, nil
	}

	for _, raw := range strings.Split(body, string(sep)) {
		if raw == "" {
			continue
		}
		eq := strings.IndexByte(raw, '=')
		if eq < 0 {
			return nil, xerrors.Errorf("%w: %q", ErrMalformedPair, raw)
		}
		key, err := url.QueryUnescape(raw[:eq])
		if err != nil {
			return nil, xerrors.Errorf("urlmsg: invalid key %q: %w", raw[:eq], err)
		}
		value, err := url.QueryUnescape(raw[eq+1:])
		if err != nil {
			return nil, xerrors.Errorf("urlmsg: invalid value for %q: %w", key, err)
		}
		if msg.Has(key) {
			return nil, xerrors.Errorf("%w: %q", ErrDuplicateKey, key)
		}
		msg.Set(key, value)
	}
	return msg, nil
}

// FromValues builds a message from url.Values, keeping the first value of every key.
// Keys are added in sorted order since url.Values carries no order.
func FromValues(command string, values url.Values) *Message {
	msg := NewCommand(command)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if vs := values[k]; len(vs) > 0 {
			msg.Set(k, vs[0])
		}
	}
	return msg
}
