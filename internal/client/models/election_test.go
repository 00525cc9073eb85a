package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElectionType(t *testing.T) {
	tests := []struct {
		in      string
		want    ElectionType
		wantErr bool
	}{
		{in: "presidential", want: Presidential},
		{in: " Governorship ", want: Governorship},
		{in: "SENATORIAL", want: Senatorial},
		{in: "mayoral", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseElectionType(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrUnknownElectionType, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestElectionType_Label(t *testing.T) {
	assert.Equal(t, "Presidential", Presidential.Label())
	assert.Equal(t, "Senatorial", Senatorial.Label())
	assert.Equal(t, "", ElectionType("").Label())
}

func TestProfile_FullName(t *testing.T) {
	assert.Equal(t, "Ada Obi", Profile{FirstName: "Ada", LastName: "Obi"}.FullName())
	assert.Equal(t, "Ada", Profile{FirstName: "Ada"}.FullName())
	assert.Equal(t, "", Profile{}.FullName())
}
