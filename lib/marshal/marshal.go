package marshal

import (
	"reflect"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// Marshal encodes v as the root value of a new message
func Marshal[T any](e *Engine, v T) (*urlmsg.Message, error) {
	return MarshalCommand(e, "", v)
}

// MarshalCommand encodes v as the root value of a new message carrying command
func MarshalCommand[T any](e *Engine, command string, v T) (*urlmsg.Message, error) {
	msg := urlmsg.NewCommand(command)
	if err := e.EncodeValue(msg, urlmsg.RootKey, reflect.ValueOf(&v).Elem(), reflect.TypeFor[T]()); err != nil {
		return nil, err
	}
	return msg, nil
}

// Unmarshal decodes the root value of msg as T
func Unmarshal[T any](e *Engine, msg *urlmsg.Message) (T, error) {
	var out T
	err := e.DecodeInto(msg, urlmsg.RootKey, &out)
	return out, err
}

// MarshalString encodes v and returns the wire form of the message
func MarshalString[T any](e *Engine, v T) (string, error) {
	msg, err := Marshal(e, v)
	if err != nil {
		return "", err
	}
	return msg.String(), nil
}

// UnmarshalString parses the wire form s and decodes its root value as T
func UnmarshalString[T any](e *Engine, s string) (T, error) {
	msg, err := urlmsg.Parse(s, urlmsg.DefaultSeparator)
	if err != nil {
		var zero T
		return zero, err
	}
	return Unmarshal[T](e, msg)
}
