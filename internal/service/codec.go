package service

import "encoding/json"

// jsonCodec lets Connect carry the plain Go message structs in this package.
// It is registered under "json", replacing the protobuf-only default.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
