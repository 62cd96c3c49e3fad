package serializer

import (
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"gopkg.in/yaml.v2"
)

// NewYAMLSerializer creates a new serializer using yaml documents
func NewYAMLSerializer() IRPCSerializer {
	return &yamlSerializerImpl{}
}

// yamlSerializerImpl implements the IRPCSerializer interface using yaml encoding
type yamlSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (y yamlSerializerImpl) Serialize(msg *urlmsg.Message) ([]byte, error) {
	return yaml.Marshal(toEnvelope(msg))
}

func (y yamlSerializerImpl) Deserialize(b []byte, msg *urlmsg.Message) error {
	var env envelope
	if err := yaml.Unmarshal(b, &env); err != nil {
		return err
	}
	return env.apply(msg)
}
