package cmd

import (
	"os"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/mylibrary/internal/config"
	"github.com/lepinkainen/mylibrary/internal/testutil"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	originalArgs := os.Args
	os.Args = append([]string{"mylibrary"}, args...)
	t.Cleanup(func() { os.Args = originalArgs })

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("mylibrary"),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			t.Fatalf("unexpected Kong exit %d", code)
		}),
	)

	return cli, ctx
}

func TestUpdateGlobalConfig(t *testing.T) {
	testutil.ResetConfig(t)
	config.SetDefaults()

	cli := &CLI{
		LibraryDB:   "/tmp/books.db",
		CacheDBFile: "/tmp/cache.db",
		CacheTTL:    "12h",
		NoCache:     true,
	}

	updateGlobalConfig(cli)

	assert.Equal(t, "/tmp/books.db", config.LibraryDBFile)
	assert.False(t, config.CacheEnabled)
	assert.Equal(t, "/tmp/cache.db", viper.GetString("cache.dbfile"))
	assert.Equal(t, "12h", viper.GetString("cache.ttl"))
}

func TestUpdateGlobalConfig_EmptyFlagsKeepConfig(t *testing.T) {
	testutil.ResetConfig(t)
	viper.Set("library.dbfile", "from-config.db")

	updateGlobalConfig(&CLI{})

	assert.Equal(t, "from-config.db", config.LibraryDBFile)
	assert.True(t, config.CacheEnabled)
	assert.Equal(t, config.DefaultCacheTTL, viper.GetString("cache.ttl"))
}

func TestCommandParsing(t *testing.T) {
	testutil.ResetConfig(t)

	cli, _ := parseCLI(t, "add", "978-4-10-101001-4", "--skip-lookup")
	assert.Equal(t, "978-4-10-101001-4", cli.Add.ISBN)
	assert.True(t, cli.Add.SkipLookup)

	cli, _ = parseCLI(t, "import", "-f", "isbns.csv", "-c", "2")
	assert.Equal(t, "isbns.csv", cli.Import.Input)
	assert.Equal(t, 2, cli.Import.Concurrency)

	cli, _ = parseCLI(t, "list")
	assert.Equal(t, "created-asc", cli.List.Sort)

	cli, _ = parseCLI(t, "edit", "abc", "--set", "title=New", "--set", "memo=gift")
	assert.Equal(t, "abc", cli.Edit.ID)
	assert.Equal(t, map[string]string{"title": "New", "memo": "gift"}, cli.Edit.Set)

	cli, _ = parseCLI(t, "delete", "a", "b", "--yes")
	assert.Equal(t, []string{"a", "b"}, cli.Delete.IDs)
	assert.True(t, cli.Delete.Yes)

	cli, _ = parseCLI(t, "export", "--all", "-o", "out")
	assert.True(t, cli.Export.All)
	assert.Equal(t, "out", cli.Export.Output)

	cli, ctx := parseCLI(t, "--debug", "cache", "clear", "--expired")
	assert.True(t, cli.Debug)
	assert.True(t, cli.Cache.Clear.Expired)
	assert.Equal(t, "cache clear", ctx.Command())
}

func TestNewGoogleBooksClient_CacheDisabled(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.SetTestConfig(t, env)
	config.CacheEnabled = false

	require.NotNil(t, newGoogleBooksClient())
	assert.False(t, env.FileExists("cache.db"))
}

func TestNewGoogleBooksClient_OpensCache(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.SetTestConfig(t, env)

	require.NotNil(t, newGoogleBooksClient())
	env.RequireFileExists("cache.db")
}
