// Package pb holds the wire messages and service descriptor of the
// matchcore.v1.OrderBook gRPC API described in
// api/proto/matchcore/v1/orderbook.proto.
//
// Messages are encoded with protowire directly; servers and clients must
// use Codec (see ServerCodec and NewOrderBookClient).
package pb
