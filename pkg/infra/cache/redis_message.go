package cache

import (
	"encoding/json"
)

// RedisMessage is the envelope of every payload published on a channel.
type RedisMessage struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}
