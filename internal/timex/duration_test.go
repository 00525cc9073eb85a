package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"3s"`, want: 3 * time.Second},
		{name: "compound string", input: `"1m30s"`, want: 90 * time.Second},
		{name: "nanoseconds", input: `1000000000`, want: time.Second},
		{name: "bad string", input: `"soon"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"3s"`, string(b))
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2025-12-31T23:59:59")
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, 59, got.Second())

	got, err = ParseTime("2025-12-31T23:59:59Z")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())

	_, err = ParseTime("tomorrow")
	require.Error(t, err)
}

func TestTime_UnmarshalJSON(t *testing.T) {
	var v struct {
		At Time `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2030-01-02T03:04:05Z"}`), &v))
	assert.True(t, v.At.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)))

	require.Error(t, json.Unmarshal([]byte(`{"at":"nope"}`), &v))
}
