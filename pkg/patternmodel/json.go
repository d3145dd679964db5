package patternmodel

import "encoding/json"

// marshalJSON/unmarshalJSON back Clone's deep-copy-by-round-trip. Kept as
// thin wrappers (rather than importing gjson/sjson here) because this is
// a generic struct copy, not a path-addressed read/write — the dot/path
// libraries wired elsewhere in this module earn their keep on
// contentMapping lookups, not on struct duplication.
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
