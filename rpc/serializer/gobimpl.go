package serializer

import (
	"bytes"
	"encoding/gob"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IRPCSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(msg *urlmsg.Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(toEnvelope(msg)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, msg *urlmsg.Message) error {
	var env envelope
	dec := gob.NewDecoder(bytes.NewBuffer(b))
	if err := dec.Decode(&env); err != nil {
		return err
	}
	return env.apply(msg)
}
