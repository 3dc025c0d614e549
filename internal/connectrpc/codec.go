package connectrpc

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// jsonCodec serializes plain Go structs. It replaces connect's built-in
// "json" codec, which only accepts generated protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	return b, errors.Wrap(err, "marshal message")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, v), "unmarshal message")
}
