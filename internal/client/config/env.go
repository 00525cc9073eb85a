package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/evote/internal/flagx"
	"github.com/dmitrijs2005/evote/internal/timex"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// lookupEnv is replaced in tests.
var lookupEnv = os.LookupEnv

// parseEnv overlays Config with EVOTE_* variables. Values come from the
// dotenv file (-env, or ./.env when present) and are overridden by the real
// environment. Panics on an unreadable file or a malformed value.
func parseEnv(cfg *Config, args []string) {
	vars := map[string]string{}

	path := flagx.StringFlag(args, "env")
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	fileVars, err := godotenv.Read(path)
	switch {
	case err == nil:
		vars = fileVars
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		panic(err)
	}

	get := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}

	if v, ok := get("EVOTE_SERVER_URL"); ok {
		cfg.ServerBaseURL = v
	}
	if v, ok := get("EVOTE_REQUEST_TIMEOUT"); ok {
		cfg.RequestTimeout = mustDuration(v)
	}
	if v, ok := get("EVOTE_DATABASE_DSN"); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := get("EVOTE_ELECTION_DEADLINE"); ok {
		t, err := timex.ParseTime(v)
		if err != nil {
			panic(err)
		}
		cfg.ElectionDeadline = t
	}
	if v, ok := get("EVOTE_PAGE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.PageSize = n
	}
	if v, ok := get("EVOTE_MESSAGE_TTL"); ok {
		cfg.MessageTTL = mustDuration(v)
	}
	if v, ok := get("EVOTE_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("EVOTE_COUNTDOWN_INTERVAL"); ok {
		cfg.CountdownInterval = mustDuration(v)
	}
}

func mustDuration(v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	return d
}
