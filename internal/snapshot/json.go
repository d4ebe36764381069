package snapshot

import "encoding/json"

// EncodeJSON produces the JSON form of s, the same encoding/json shape the
// server's wire messages embed.
func EncodeJSON(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeJSON(data []byte) (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(data, &s)
	return s, err
}
