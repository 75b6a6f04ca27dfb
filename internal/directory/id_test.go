package directory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	cases := map[string]ID{
		`{"staff_id":"T01"}`: "T01",
		`{"staff_id":101}`:   "101",
		`{"staff_id":65001}`: "65001",
		`{"staff_id":null}`:  "",
		`{}`:                 "",
	}
	for in, want := range cases {
		var got NewStaff
		require.NoError(t, json.Unmarshal([]byte(in), &got), in)
		assert.Equal(t, want, got.StaffID, in)
	}

	var bad NewStaff
	assert.Error(t, json.Unmarshal([]byte(`{"staff_id":true}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"staff_id":{"x":1}}`), &bad))
}

func TestIDs(t *testing.T) {
	var req struct {
		IDs []ID `json:"student_ids"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"student_ids":["65001",65002]}`), &req))
	assert.Equal(t, []string{"65001", "65002"}, IDs(req.IDs))
}
