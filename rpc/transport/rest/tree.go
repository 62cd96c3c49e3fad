package rest

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// typeField is the object member holding a type name key ($T$) in the tree view
const typeField = urlmsg.TypeSuffix

// Tree rebuilds the nested structure of a flat message as plain maps, slices and
// strings. Member keys become object members, indexed children become arrays if their
// indices are exactly 0..n-1 and objects otherwise. The root value is returned
// directly if the message only holds a top level scalar.
func Tree(msg *urlmsg.Message) any {
	root := map[string]any{}
	var scalar *string

	msg.Range(func(key, value string) bool {
		if key == urlmsg.RootKey {
			v := value
			scalar = &v
			return true
		}
		insert(root, tokenize(key), value)
		return true
	})

	if scalar != nil && len(root) == 0 {
		return *scalar
	}
	if scalar != nil {
		root[""] = *scalar
	}
	return normalize(root)
}

// tokenize splits a structural key into member names and decoded indices. A trailing
// type name marker becomes its own token.
func tokenize(key string) []string {
	var tokens []string
	isType := strings.HasSuffix(key, urlmsg.TypeSuffix)
	key = strings.TrimSuffix(key, urlmsg.TypeSuffix)

	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(key[i:], ']')
			if end < 0 {
				cur.WriteString(key[i:])
				i = len(key)
				continue
			}
			index := key[i+1 : i+end]
			if decoded, err := url.QueryUnescape(index); err == nil {
				index = decoded
			}
			tokens = append(tokens, index)
			i += end
		default:
			cur.WriteByte(key[i])
		}
	}
	flush()

	if isType {
		tokens = append(tokens, typeField)
	}
	return tokens
}

// insert stores value at the token path, a scalar colliding with an object is kept
// under the empty member name
func insert(node map[string]any, tokens []string, value string) {
	if len(tokens) == 0 {
		node[""] = value
		return
	}
	head := tokens[0]
	if len(tokens) == 1 {
		if child, ok := node[head].(map[string]any); ok {
			child[""] = value
			return
		}
		node[head] = value
		return
	}

	child, ok := node[head].(map[string]any)
	if !ok {
		child = map[string]any{}
		if s, isString := node[head].(string); isString {
			child[""] = s
		}
		node[head] = child
	}
	insert(child, tokens[1:], value)
}

// normalize turns objects whose members are the indices 0..n-1 into arrays
func normalize(v any) any {
	node, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, child := range node {
		node[k] = normalize(child)
	}

	if len(node) == 0 {
		return node
	}
	indices := make([]int, 0, len(node))
	for k := range node {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || strconv.Itoa(i) != k {
			return node
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for pos, i := range indices {
		if pos != i {
			return node
		}
	}

	out := make([]any, len(indices))
	for _, i := range indices {
		out[i] = node[strconv.Itoa(i)]
	}
	return out
}
