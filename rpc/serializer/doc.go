// Package serializer provides the envelope formats a flat message travels in between
// the RPC client and server. It defines a common interface and multiple
// implementations for serializing and deserializing urlmsg.Message values.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//     Deserialize replaces the content of the passed message.
//
//   - urlSerializerImpl: The native wire format of a message
//     (`command?key=value&key=value`). Human readable and the only format the REST
//     bridge and the CLI speak.
//
//   - binarySerializerImpl: Length prefixed command and pairs behind a flag byte.
//     Compact and allocation friendly, recommended between Go peers.
//
//   - jsonSerializerImpl (ugorji codec), bsonSerializerImpl (mongo-driver),
//     gobSerializerImpl and yamlSerializerImpl: document encodings of an envelope
//     {command, pairs: [{k, v}]}. The pair list keeps the message order.
//
// All formats preserve the command, the pair order and empty values. Duplicate keys
// are rejected on deserialization.
//
// Thread Safety:
//
//	All serializer implementations are stateless (the json handle is read only after
//	construction) and safe for concurrent use across multiple goroutines.
//
// Usage:
//
//	s, err := serializer.ByName("binary")
//	data, err := s.Serialize(msg)
//	// ... send data ...
//	received := urlmsg.New()
//	err = s.Deserialize(data, received)
package serializer
