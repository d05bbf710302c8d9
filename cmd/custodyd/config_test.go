package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cases := map[string]struct {
		content string
		wantErr *errors.Error
		check   func(t *testing.T, home string, c Config)
	}{
		"missing file uses defaults": {
			check: func(t *testing.T, home string, c Config) {
				assert.Equal(t, "localhost:8000", c.HTTP.Listen)
				assert.Equal(t, filepath.Join(home, "data/state.db"), c.Store.Dir)
				assert.Equal(t, filepath.Join(home, "genesis.json"), c.Genesis)
			},
		},
		"partial file keeps other defaults": {
			content: "http:\n  listen: \":9000\"\nstore:\n  backend: memdb\neventlog:\n  path: /var/lib/events.db\n",
			check: func(t *testing.T, home string, c Config) {
				assert.Equal(t, ":9000", c.HTTP.Listen)
				assert.Equal(t, float64(20), c.HTTP.RateLimit)
				assert.Equal(t, "memdb", c.Store.Backend)
				assert.Equal(t, "/var/lib/events.db", c.EventLog.Path)
			},
		},
		"unknown backend": {
			content: "store:\n  backend: rocksdb\n",
			wantErr: errors.ErrInput,
		},
		"unknown log format": {
			content: "log:\n  format: xml\n",
			wantErr: errors.ErrInput,
		},
		"malformed yaml": {
			content: "http: [",
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			home := t.TempDir()
			if tc.content != "" {
				require.NoError(t, ioutil.WriteFile(filepath.Join(home, configFile), []byte(tc.content), 0600))
			}
			c, err := LoadConfig(home)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.check != nil {
				tc.check(t, home, c)
			}
		})
	}
}

func TestInitWritesValidGenesis(t *testing.T) {
	home := t.TempDir()
	flagHome = home
	flagChainID = "init-test"
	defer func() {
		flagHome = ""
		flagChainID = ""
	}()

	require.NoError(t, runInit(initCmd, nil))
	conf, err := LoadConfig(home)
	require.NoError(t, err)
	require.NoError(t, runGenesisValidate(genesisValidateCmd, []string{conf.Genesis}))

	// A second run keeps existing files.
	require.NoError(t, runInit(initCmd, nil))
}
