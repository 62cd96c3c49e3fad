package marshal

import "github.com/VictoriaMetrics/metrics"

var (
	encodeTotal      = metrics.NewCounter("flatmsg_marshal_encode_total")
	decodeTotal      = metrics.NewCounter("flatmsg_marshal_decode_total")
	encodeErrorTotal = metrics.NewCounter("flatmsg_marshal_encode_errors_total")
	decodeErrorTotal = metrics.NewCounter("flatmsg_marshal_decode_errors_total")
	customTotal      = metrics.NewCounter("flatmsg_marshal_custom_serializer_total")
)
