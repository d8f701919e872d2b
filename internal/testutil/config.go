package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/mylibrary/internal/cache"
	"github.com/lepinkainen/mylibrary/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	LibraryDBFile      string
	CacheEnabled       bool
	GoogleBooksBaseURL string
	GoogleBooksAPIKey  string
	GoogleBooksRPS     float64
	ExportDir          string
	CoversDir          string
	CoversMaxWidth     int
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		LibraryDBFile:      config.LibraryDBFile,
		CacheEnabled:       config.CacheEnabled,
		GoogleBooksBaseURL: config.GoogleBooksBaseURL,
		GoogleBooksAPIKey:  config.GoogleBooksAPIKey,
		GoogleBooksRPS:     config.GoogleBooksRPS,
		ExportDir:          config.ExportDir,
		CoversDir:          config.CoversDir,
		CoversMaxWidth:     config.CoversMaxWidth,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.LibraryDBFile = state.LibraryDBFile
	config.CacheEnabled = state.CacheEnabled
	config.GoogleBooksBaseURL = state.GoogleBooksBaseURL
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
	config.GoogleBooksRPS = state.GoogleBooksRPS
	config.ExportDir = state.ExportDir
	config.CoversDir = state.CoversDir
	config.CoversMaxWidth = state.CoversMaxWidth
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetTestConfig points every file-backed setting into env, disables
// request pacing and loads the result into the config package. The global
// cache is closed when the test completes.
func SetTestConfig(t *testing.T, env *TestEnv) {
	t.Helper()

	ResetConfig(t)

	viper.Set("library.dbfile", env.Path("library.db"))
	viper.Set("cache.dbfile", env.Path("cache.db"))
	viper.Set("cache.ttl", "24h")
	viper.Set("googlebooks.rps", 0)
	viper.Set("googlebooks.apikey", "")
	viper.Set("export.dir", env.Path("exports"))
	viper.Set("covers.dir", env.Path("covers"))
	config.InitConfig()

	t.Cleanup(func() { _ = cache.ResetGlobalCache() })
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset, so an unset key stays set to the test value
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}
