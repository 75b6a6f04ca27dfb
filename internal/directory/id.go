package directory

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errBadID = errors.New("id must be a string or a number")

// ID is a natural key sent as a JSON string or number. Numbers keep their
// literal digits, so 101 and "101" name the same record. null leaves it empty.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errBadID
	}
	*id = ID(n.String())
	return nil
}

// IDs converts ids to plain strings.
func IDs(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
