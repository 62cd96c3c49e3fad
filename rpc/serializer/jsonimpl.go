package serializer

import (
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/ugorji/go/codec"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{handle: &codec.JsonHandle{}}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
	handle *codec.JsonHandle
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(msg *urlmsg.Message) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, j.handle).Encode(toEnvelope(msg)); err != nil {
		return nil, err
	}
	return out, nil
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *urlmsg.Message) error {
	var env envelope
	if err := codec.NewDecoderBytes(b, j.handle).Decode(&env); err != nil {
		return err
	}
	return env.apply(msg)
}
