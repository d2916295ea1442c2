package pb

import (
	"fmt"

	"google.golang.org/grpc"
)

// Codec marshals Message values for grpc. It reports the "proto" content
// subtype so the wire stays compatible with generated clients.
type Codec struct{}

func (Codec) Name() string { return "proto" }

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("pb: cannot marshal %T", v)
	}
	return m.Marshal()
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("pb: cannot unmarshal into %T", v)
	}
	return m.Unmarshal(data)
}

// ServerCodec is the server option every server registering OrderBook
// must be built with.
func ServerCodec() grpc.ServerOption {
	return grpc.ForceServerCodec(Codec{})
}
