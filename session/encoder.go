package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is returned when a stored session entry cannot be decoded.
var ErrCorrupt = errors.New("session entry corrupt")

// Encode serializes a [Principal] for storage.
func Encode(p *Principal) ([]byte, error) {
	if p == nil || p.ID == "" {
		return nil, errors.New("principal missing id")
	}
	return json.Marshal(p)
}

// Decode deserializes a stored session entry into a [Principal].
func Decode(data []byte) (*Principal, error) {
	var p Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrCorrupt)
	}
	return &p, nil
}
