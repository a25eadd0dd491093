package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotDirtyMessage announces that the snapshot under Key changed and the
// remote copy may lag. It carries only the key; the worker reads the current
// document from the local store, so a burst of messages for one key collapses
// into whatever is newest at mirror time.
type SnapshotDirtyMessage struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSnapshotDirtyMessage(key string) *SnapshotDirtyMessage {
	return &SnapshotDirtyMessage{
		Key:       key,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotDirtyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotDirtyMessageFromJSON creates a message from JSON bytes
func SnapshotDirtyMessageFromJSON(data []byte) (*SnapshotDirtyMessage, error) {
	var msg SnapshotDirtyMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
