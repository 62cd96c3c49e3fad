package serializer

import (
	"fmt"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// envelope is the document form of a message used by the generic encodings
// (json, bson, gob, yaml). Pairs are a list to keep the message order.
type envelope struct {
	Command string         `codec:"command,omitempty" bson:"command,omitempty" yaml:"command,omitempty"`
	Pairs   []envelopePair `codec:"pairs,omitempty" bson:"pairs,omitempty" yaml:"pairs,omitempty"`
}

type envelopePair struct {
	Key   string `codec:"k" bson:"k" yaml:"k"`
	Value string `codec:"v" bson:"v" yaml:"v"`
}

// toEnvelope copies the command and pairs of msg
func toEnvelope(msg *urlmsg.Message) envelope {
	env := envelope{Command: msg.Command}
	if msg.Len() == 0 {
		return env
	}
	env.Pairs = make([]envelopePair, 0, msg.Len())
	msg.Range(func(key, value string) bool {
		env.Pairs = append(env.Pairs, envelopePair{Key: key, Value: value})
		return true
	})
	return env
}

// apply replaces the content of msg with the envelope
func (env envelope) apply(msg *urlmsg.Message) error {
	*msg = *urlmsg.NewCommand(env.Command)
	for _, p := range env.Pairs {
		if msg.Has(p.Key) {
			return fmt.Errorf("%w: %q", urlmsg.ErrDuplicateKey, p.Key)
		}
		msg.Set(p.Key, p.Value)
	}
	return nil
}
