package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/evgsol/vipgate/internal/flagx"
	"github.com/evgsol/vipgate/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "1h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                  string         `json:"endpoint_addr"`
	DatabaseDSN                   string         `json:"database_dsn"`
	SecretKey                     string         `json:"secret_key"`
	AccessTokenValidityDuration   timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration  timex.Duration `json:"refresh_token_validity_duration"`
	HeartbeatThreshold            timex.Duration `json:"heartbeat_threshold"`
	SweepInterval                 timex.Duration `json:"sweep_interval"`
	StatusInterval                int            `json:"status_interval"`
	PasswordMinLength             int            `json:"password_min_length"`
	PasswordRequireLetterAndDigit bool           `json:"password_require_letter_and_digit"`
	SMTPHost                      string         `json:"smtp_host"`
	SMTPPort                      int            `json:"smtp_port"`
	SMTPUsername                  string         `json:"smtp_username"`
	SMTPPassword                  string         `json:"smtp_password"`
	SMTPFrom                      string         `json:"smtp_from"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.HeartbeatThreshold = time.Duration(c.HeartbeatThreshold.Duration)
	config.SweepInterval = time.Duration(c.SweepInterval.Duration)
	config.StatusInterval = c.StatusInterval
	config.PasswordMinLength = c.PasswordMinLength
	config.PasswordRequireLetterAndDigit = c.PasswordRequireLetterAndDigit
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
	config.SMTPFrom = c.SMTPFrom
}
