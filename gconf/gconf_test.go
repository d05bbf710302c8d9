package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type limits struct {
	MaxOwners uint32 `json:"max_owners"`
}

func (l *limits) Marshal() ([]byte, error) {
	return json.Marshal(l)
}

func (l *limits) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, l)
}

func (l *limits) Validate() error {
	if l.MaxOwners == 0 {
		return errors.Wrap(errors.ErrModel, "max owners")
	}
	return nil
}

func TestSaveLoad(t *testing.T) {
	db := store.MemStore()

	var got limits
	err := Load(db, "test", &got)
	assert.True(t, errors.ErrNotFound.Is(err))

	err = Save(db, "test", &limits{})
	assert.True(t, errors.ErrModel.Is(err))

	require.NoError(t, Save(db, "test", &limits{MaxOwners: 7}))
	require.NoError(t, Load(db, "test", &got))
	assert.Equal(t, uint32(7), got.MaxOwners)
}

func TestInitConfig(t *testing.T) {
	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
		want    uint32
	}{
		"valid configuration": {
			genesis: `{"conf": {"test": {"max_owners": 12}}}`,
			want:    12,
		},
		"missing package": {
			genesis: `{"conf": {"other": {"max_owners": 12}}}`,
			wantErr: errors.ErrNotFound,
		},
		"invalid configuration": {
			genesis: `{"conf": {"test": {"max_owners": 0}}}`,
			wantErr: errors.ErrModel,
		},
		"malformed configuration": {
			genesis: `{"conf": {"test": {"max_owners": "many"}}}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts custody.Options
			require.NoError(t, json.Unmarshal([]byte(tc.genesis), &opts))

			db := store.MemStore()
			err := InitConfig(db, opts, "test", &limits{})
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			var got limits
			require.NoError(t, Load(db, "test", &got))
			assert.Equal(t, tc.want, got.MaxOwners)
		})
	}
}
