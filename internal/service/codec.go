package service

import (
	"encoding/json"
)

// jsonCodec carries plain Go messages over Connect using encoding/json. It
// replaces Connect's protobuf-backed "json" codec for this service.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
