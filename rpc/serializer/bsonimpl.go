package serializer

import (
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"go.mongodb.org/mongo-driver/bson"
)

// NewBSONSerializer creates a new serializer using bson documents
func NewBSONSerializer() IRPCSerializer {
	return &bsonSerializerImpl{}
}

// bsonSerializerImpl implements the IRPCSerializer interface using bson encoding
type bsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (s bsonSerializerImpl) Serialize(msg *urlmsg.Message) ([]byte, error) {
	return bson.Marshal(toEnvelope(msg))
}

func (s bsonSerializerImpl) Deserialize(b []byte, msg *urlmsg.Message) error {
	var env envelope
	if err := bson.Unmarshal(b, &env); err != nil {
		return err
	}
	return env.apply(msg)
}
