package urlmsg

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// RootKey addresses the top level value of a message
	RootKey = "."
	// TypeSuffix marks the key holding the runtime type name of a value
	TypeSuffix = "$T$"
)

// --------------------------------------------------------------------------
// Key Formatting
// --------------------------------------------------------------------------

// FormatKey builds the structural key of subkey below key. An empty key is the root
// marker, members of the root are addressed by their bare name. Without a subkey the
// (normalized) key itself is returned.
func FormatKey(key, subkey string) string {
	if key == "" {
		key = RootKey
	}
	if subkey == "" {
		return key
	}
	if key == RootKey {
		return subkey
	}
	if strings.HasSuffix(key, ".") {
		return key + subkey
	}
	return key + "." + subkey
}

// FormatIndexKey addresses position index of the collection at key, e.g. items[3]
func FormatIndexKey(key string, index int) string {
	return indexBase(key) + "[" + strconv.Itoa(index) + "]"
}

// FormatMapKey addresses the entry index of the map at key. The index is URL-encoded
// so it never contains the closing bracket.
func FormatMapKey(key string, index string) string {
	return indexBase(key) + "[" + url.QueryEscape(index) + "]"
}

// TypeKey returns the key holding the runtime type name of the value at key
func TypeKey(key string) string {
	if key == "" || key == RootKey {
		return TypeSuffix
	}
	return key + TypeSuffix
}

// indexBase strips the root marker so that a top level collection is addressed as [i]
func indexBase(key string) string {
	if key == RootKey {
		return ""
	}
	return key
}

// --------------------------------------------------------------------------
// Key Parsing
// --------------------------------------------------------------------------

// ChildKey is one distinct index found below a parent key
type ChildKey struct {
	// Raw is the captured index as it appears in the key
	Raw string
	// Name is the URL-decoded index, used for map entries
	Name string
	// Index is the numeric index, valid if Numeric is set. Only canonical decimals
	// (no sign, no leading zeros) are numeric.
	Index   int
	Numeric bool
	// Exact is set if a key without suffix (key[idx]) exists, i.e. a scalar element
	Exact bool
}

// Key returns the full structural key of the child below parent
func (c ChildKey) Key(parent string) string {
	return indexBase(parent) + "[" + c.Raw + "]"
}

// childPattern matches [capture] optionally followed by a member, index or type suffix.
// It is applied to the remainder of a key after the parent prefix.
var childPattern = regexp.MustCompile(`^\[([^\]]*)\]((?:[.\[$].*)?)$`)

// ParseChildKeys returns every distinct index directly below key in message order.
// The parent key is matched literally.
func ParseChildKeys(msg *Message, key string) []ChildKey {
	prefix := indexBase(key)
	seen := make(map[string]int)
	var out []ChildKey

	msg.Range(func(k, _ string) bool {
		if !strings.HasPrefix(k, prefix) {
			return true
		}
		match := childPattern.FindStringSubmatch(k[len(prefix):])
		if match == nil {
			return true
		}
		raw, suffix := match[1], match[2]
		if pos, ok := seen[raw]; ok {
			if suffix == "" {
				out[pos].Exact = true
			}
			return true
		}

		child := ChildKey{Raw: raw, Exact: suffix == ""}
		if name, err := url.QueryUnescape(raw); err == nil {
			child.Name = name
		} else {
			child.Name = raw
		}
		// only the canonical form is an index, so k[1] and k[01] never collide
		if idx, err := strconv.Atoi(raw); err == nil && strconv.Itoa(idx) == raw {
			child.Index = idx
			child.Numeric = true
		}

		seen[raw] = len(out)
		out = append(out, child)
		return true
	})
	return out
}

// ParseIndexKeys returns the numeric indices below key sorted ascending. Non numeric
// captures are ignored.
func ParseIndexKeys(msg *Message, key string) []ChildKey {
	all := ParseChildKeys(msg, key)
	out := all[:0]
	for _, c := range all {
		if c.Numeric {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
