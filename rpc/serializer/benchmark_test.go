package serializer

import (
	"strconv"
	"strings"
	"testing"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]*urlmsg.Message {
	large := urlmsg.NewCommand("catalog.put")
	for i := 0; i < 256; i++ {
		large.Set(urlmsg.FormatIndexKey("tags", i), "tag-"+strconv.Itoa(i))
	}

	return map[string]*urlmsg.Message{
		"Empty":       urlmsg.NewCommand(""),
		"CommandOnly": newMessage("catalog.list"),
		"SmallItem": newMessage("catalog.put",
			"id", "0b6f3c1e-4a4f-4a38-9b7c-1f2f3e4d5c6b",
			"name", "Widget",
			"price", "9.99",
		),
		"LongValue":    newMessage("catalog.put", "notes", strings.Repeat("lorem ipsum ", 1024)),
		"ManyPairs":    large,
		"ErrorMessage": newMessage("error", "error", "Lorem ipsum dolor sit amet, consectetur adipiscing elit."),
	}
}

// BenchmarkSerialize benchmarks serialization for all implementations with various messages
func BenchmarkSerialize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_, err := serializer.Serialize(msg)
					if err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize benchmarks deserialization for all implementations with various messages
func BenchmarkDeserialize(b *testing.B) {
	messages := benchmarkMessages()
	serializedData := make(map[string]map[string][]byte)

	// Pre-serialize all messages with all serializers
	for name, factory := range testSerializers {
		serializer := factory()
		serializedData[name] = make(map[string][]byte)

		for msgName, msg := range messages {
			data, err := serializer.Serialize(msg)
			if err != nil {
				b.Fatalf("Failed to serialize %s with %s: %v", msgName, name, err)
			}
			serializedData[name][msgName] = data
		}
	}

	for name, factory := range testSerializers {
		for msgName := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				data := serializedData[name][msgName]
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					msg := urlmsg.New()
					if err := serializer.Deserialize(data, msg); err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSize measures and reports the serialized size for each message
func BenchmarkSize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		serializer := factory()

		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				data, err := serializer.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}

				// Report the size as a custom metric
				b.ReportMetric(float64(len(data)), "bytes")

				for i := 0; i < b.N; i++ {
					_ = data
				}
			})
		}
	}
}
