package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/evote/internal/flagx"
	"github.com/dmitrijs2005/evote/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration ("3s" or integer nanoseconds) and the deadline
// timex.Time. Absent keys leave the current value alone.
type JsonConfig struct {
	ServerBaseURL     *string         `json:"server_base_url"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	DatabaseDSN       *string         `json:"database_dsn"`
	ElectionDeadline  *timex.Time     `json:"election_deadline"`
	PageSize          *int            `json:"page_size"`
	MessageTTL        *timex.Duration `json:"message_ttl"`
	LogLevel          *string         `json:"log_level"`
	CountdownInterval *timex.Duration `json:"countdown_interval"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without that flag nothing happens. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.StringFlag(args, "c", "config")
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DatabaseDSN != nil {
		cfg.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.ElectionDeadline != nil {
		cfg.ElectionDeadline = jc.ElectionDeadline.Time
	}
	if jc.PageSize != nil {
		cfg.PageSize = *jc.PageSize
	}
	if jc.MessageTTL != nil {
		cfg.MessageTTL = jc.MessageTTL.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.CountdownInterval != nil {
		cfg.CountdownInterval = jc.CountdownInterval.Duration
	}
}
