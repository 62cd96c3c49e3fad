package serializer

import (
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// NewURLSerializer creates a new serializer using the native wire format of a message
// (`command?key=value&key=value`)
func NewURLSerializer() IRPCSerializer {
	return &urlSerializerImpl{sep: urlmsg.DefaultSeparator}
}

// NewURLSerializerWithSeparator is like NewURLSerializer but separates pairs with sep.
// It fails with urlmsg.ErrInvalidSeparator if sep cannot be told apart from encoded text.
func NewURLSerializerWithSeparator(sep byte) (IRPCSerializer, error) {
	if err := urlmsg.ValidateSeparator(sep); err != nil {
		return nil, err
	}
	if sep == 0 {
		sep = urlmsg.DefaultSeparator
	}
	return &urlSerializerImpl{sep: sep}, nil
}

// urlSerializerImpl implements the IRPCSerializer interface using the url wire format
type urlSerializerImpl struct {
	sep byte
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (u urlSerializerImpl) Serialize(msg *urlmsg.Message) ([]byte, error) {
	if msg.Separator != u.sep {
		msg = msg.Clone().WithSeparator(u.sep)
	}
	return []byte(msg.String()), nil
}

func (u urlSerializerImpl) Deserialize(b []byte, msg *urlmsg.Message) error {
	parsed, err := urlmsg.Parse(string(b), u.sep)
	if err != nil {
		return err
	}
	*msg = *parsed
	return nil
}
