package serializer

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// IRPCSerializer is the interface for all message envelope serializers
type IRPCSerializer interface {
	// Serialize serializes a Message into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(msg *urlmsg.Message) ([]byte, error)
	// Deserialize deserializes a byte array into a Message
	// It takes a byte array and a pointer to a Message as parameters, the previous
	// content of the message is replaced
	// It returns an error if any
	Deserialize(b []byte, msg *urlmsg.Message) error
}

// Names lists the serializers known to ByName
var Names = []string{"url", "binary", "json", "bson", "gob", "yaml"}

// ByName returns the serializer with the given (case-insensitive) name
func ByName(name string) (IRPCSerializer, error) {
	switch strings.ToLower(name) {
	case "url", "":
		return NewURLSerializer(), nil
	case "binary":
		return NewBinarySerializer(), nil
	case "json":
		return NewJSONSerializer(), nil
	case "bson":
		return NewBSONSerializer(), nil
	case "gob":
		return NewGOBSerializer(), nil
	case "yaml":
		return NewYAMLSerializer(), nil
	default:
		return nil, fmt.Errorf("unknown serializer: %s. must be one of %s", name, strings.Join(Names, ", "))
	}
}
