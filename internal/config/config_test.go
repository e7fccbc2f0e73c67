package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultSearchDelay, cfg.SearchDelay)
	assert.Equal(t, DefaultPersistenceKey, cfg.PersistenceKey)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Empty(t, cfg.RegionAPIURL)
	assert.NotContains(t, cfg.DatabasePath, "~")
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  delay: 250ms
preferences:
  commodity_unit_key: unit_pref
database:
  path: `+filepath.Join(dir, "prefs.db")+`
regions:
  api_url: https://regions.example.com
  timeout: 3s
ui:
  width: 100
`), 0600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.SearchDelay)
	assert.Equal(t, "unit_pref", cfg.PersistenceKey)
	assert.Equal(t, filepath.Join(dir, "prefs.db"), cfg.DatabasePath)
	assert.Equal(t, "https://regions.example.com", cfg.RegionAPIURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 100, cfg.ScreenWidth)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		wantErr error
		set     map[string]any
		name    string
	}{
		{name: "negative delay", set: map[string]any{KeySearchDelay: "-1s"}, wantErr: common.ErrInvalidConfig},
		{name: "zero timeout", set: map[string]any{KeyRequestTimeout: "0s"}, wantErr: common.ErrInvalidConfig},
		{name: "zero width", set: map[string]any{KeyScreenWidth: 0}, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FARMPREFS_TEST_DIR", "/srv/prefs")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/prefs.db", want: filepath.Join(home, "prefs.db")},
		{input: "$FARMPREFS_TEST_DIR/prefs.db", want: "/srv/prefs/prefs.db"},
		{input: "/abs/prefs.db", want: "/abs/prefs.db"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}
