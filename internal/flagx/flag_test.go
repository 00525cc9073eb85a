package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "http://localhost:8000"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "flag with equals",
			args:         []string{"-config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-c", "-p", "5"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "several allowed flags keep order",
			args:         []string{"-p", "10", "-c", "conf.json", "-env", ".env"},
			allowedFlags: []string{"-c", "-p"},
			want:         []string{"-p", "10", "-c", "conf.json"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestStringFlag(t *testing.T) {
	assert.Equal(t, "a.json", StringFlag([]string{"-c", "a.json"}, "c", "config"))
	assert.Equal(t, "b.json", StringFlag([]string{"-c", "a.json", "-config=b.json"}, "c", "config"))
	assert.Equal(t, "", StringFlag([]string{"-a", "x"}, "c", "config"))
	assert.Equal(t, "", StringFlag(nil, "env"))
}

func TestConfigAndEnvFileFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"evote", "-a", "http://api:8000", "-config", "cfg.json", "-env", "prod.env"}
	assert.Equal(t, "cfg.json", ConfigFileFlag())
	assert.Equal(t, "prod.env", EnvFileFlag())

	os.Args = []string{"evote"}
	assert.Equal(t, "", ConfigFileFlag())
	assert.Equal(t, "", EnvFileFlag())
}
