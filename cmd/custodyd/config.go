package main

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/custody/cmd/custodyd/app"
	"github.com/iov-one/custody/errors"
	"gopkg.in/yaml.v3"
)

const configFile = "config.yaml"

// Config is the process configuration, stored in the home directory.
// Relative paths are resolved against the home directory.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	EventLog EventLogConfig `yaml:"eventlog"`
	Log      LogConfig      `yaml:"log"`
	Genesis  string         `yaml:"genesis"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
	// RateLimit is the number of requests per second a single client can
	// make. Zero disables the limit.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

type StoreConfig struct {
	// Backend is either goleveldb or memdb.
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

type EventLogConfig struct {
	// Path of the SQLite journal. An empty path disables the journal.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Listen:    "localhost:8000",
			RateLimit: 20,
			Burst:     40,
		},
		Store: StoreConfig{
			Backend: app.BackendLevelDB,
			Dir:     "data/state.db",
		},
		EventLog: EventLogConfig{
			Path: "data/events.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "plain",
		},
		Genesis: "genesis.json",
	}
}

// LoadConfig reads the configuration from the home directory. Missing
// values are taken from the defaults.
func LoadConfig(home string) (Config, error) {
	conf := DefaultConfig()
	raw, err := ioutil.ReadFile(filepath.Join(home, configFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return conf, errors.Wrapf(errors.ErrInput, "read config: %s", err)
	default:
		if err := yaml.Unmarshal(raw, &conf); err != nil {
			return conf, errors.Wrapf(errors.ErrInput, "parse config: %s", err)
		}
	}
	conf.Store.Dir = resolve(home, conf.Store.Dir)
	conf.EventLog.Path = resolve(home, conf.EventLog.Path)
	conf.Genesis = resolve(home, conf.Genesis)
	return conf, conf.Validate()
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	var errs error
	switch c.Store.Backend {
	case app.BackendLevelDB, app.BackendMemDB:
	default:
		errs = errors.AppendField(errs, "store.backend", errors.Wrapf(errors.ErrInput, "unknown backend %q", c.Store.Backend))
	}
	switch c.Log.Format {
	case "plain", "json":
	default:
		errs = errors.AppendField(errs, "log.format", errors.Wrapf(errors.ErrInput, "unknown format %q", c.Log.Format))
	}
	if c.HTTP.Listen == "" {
		errs = errors.AppendField(errs, "http.listen", errors.ErrEmpty)
	}
	if c.HTTP.RateLimit < 0 {
		errs = errors.AppendField(errs, "http.rate_limit", errors.ErrInput)
	}
	return errs
}

// writeConfig writes the configuration file, unless it already exists.
func writeConfig(home string, conf Config) (bool, error) {
	path := filepath.Join(home, configFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	raw, err := yaml.Marshal(conf)
	if err != nil {
		return false, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return false, errors.Wrapf(errors.ErrInput, "write config: %s", err)
	}
	return true, nil
}

func resolve(home, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(home, path)
}
