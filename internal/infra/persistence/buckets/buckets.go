// Package buckets splits a snapshot into named JSON payloads so that the SQL
// and key-value state stores share one on-disk layout.
package buckets

import (
	"amity/pkg/domain"
	"encoding/json"
	"fmt"
)

const (
	// Rooms holds the room registry.
	Rooms = "rooms"
	// People holds the person registry.
	People = "people"
)

// Names lists every bucket written by Encode, in write order.
var Names = []string{Rooms, People}

// Encode marshals each registry of the snapshot into its own payload.
func Encode(snapshot domain.Snapshot) (map[string][]byte, error) {
	rooms := snapshot.Rooms
	if rooms == nil {
		rooms = []domain.Room{}
	}
	people := snapshot.People
	if people == nil {
		people = []domain.Person{}
	}
	out := make(map[string][]byte, len(Names))
	data, err := json.Marshal(rooms)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", Rooms, err)
	}
	out[Rooms] = data
	if data, err = json.Marshal(people); err != nil {
		return nil, fmt.Errorf("encode %s: %w", People, err)
	}
	out[People] = data
	return out, nil
}

// Decode rebuilds a snapshot from bucket payloads. Unknown buckets are
// ignored; a payload that does not decode yields domain.ErrInvalidState.
func Decode(payloads map[string][]byte) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	targets := map[string]any{
		Rooms:  &snapshot.Rooms,
		People: &snapshot.People,
	}
	for bucket, payload := range payloads {
		target, ok := targets[bucket]
		if !ok || len(payload) == 0 {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return domain.Snapshot{}, fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidState, bucket, err)
		}
	}
	return snapshot, nil
}
