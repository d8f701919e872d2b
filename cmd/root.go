package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/mylibrary/internal/cache"
	"github.com/lepinkainen/mylibrary/internal/config"
	"github.com/lepinkainen/mylibrary/internal/cover"
	"github.com/lepinkainen/mylibrary/internal/googlebooks"
	"github.com/lepinkainen/mylibrary/internal/library"
	"github.com/lepinkainen/mylibrary/internal/register"
	"github.com/lepinkainen/mylibrary/internal/tui"
)

// Collaborators replaced in tests
var (
	stdout        io.Writer = os.Stdout
	openStore               = func(path string) (library.Store, error) { return library.Open(path) }
	newLookup               = newGoogleBooksClient
	selectBooks             = tui.SelectBooks
	confirm                 = tui.Confirm
	downloadCover           = cover.Download
)

// CLI represents the complete command structure for the mylibrary application
type CLI struct {
	// Global flags
	Debug bool `help:"Enable debug logging"`

	// Storage flags; empty values keep the config file settings
	LibraryDB   string `help:"Path to library SQLite database file"`
	CacheDBFile string `help:"Path to cache SQLite database file"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)"`
	NoCache     bool   `help:"Bypass the lookup cache"`

	Add    AddCmd    `cmd:"" help:"Register a book by ISBN-13"`
	Import ImportCmd `cmd:"" help:"Register every ISBN listed in a CSV file"`
	List   ListCmd   `cmd:"" help:"List the library"`
	Show   ShowCmd   `cmd:"" help:"Show a single book"`
	Edit   EditCmd   `cmd:"" help:"Edit fields of a book"`
	Delete DeleteCmd `cmd:"" help:"Delete books"`
	Export ExportCmd `cmd:"" help:"Export books to MyLibrary.csv"`
	Cover  CoverCmd  `cmd:"" help:"Download the cover thumbnail of a book"`
	Cache  CacheCmd  `cmd:"" help:"Manage the lookup cache"`
}

// CacheCmd groups cache maintenance subcommands
type CacheCmd struct {
	Clear cache.ClearCmd `cmd:"" help:"Remove cached catalog responses"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(slog.LevelInfo)
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("mylibrary"),
		kong.Description("A personal book catalog: register books by ISBN, browse, edit and export them."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)

	if cli.Debug {
		initLogging(slog.LevelDebug)
	}

	updateGlobalConfig(&cli)

	err := ctx.Run()
	if closeErr := cache.ResetGlobalCache(); closeErr != nil {
		slog.Warn("Failed to close cache", "error", closeErr)
	}
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	// A local .env may carry GOOGLE_BOOKS_API_KEY; a missing file is fine
	_ = godotenv.Load(".env")

	// Enable environment variable support
	viper.AutomaticEnv()
	if err := viper.BindEnv("googlebooks.apikey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.LibraryDB != "" {
		viper.Set("library.dbfile", cli.LibraryDB)
	}
	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
	if cli.CacheTTL != "" {
		viper.Set("cache.ttl", cli.CacheTTL)
	}
	if cli.NoCache {
		viper.Set("cache.enabled", false)
	}

	config.InitConfig()
}

func initLogging(level slog.Level) {
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

// newGoogleBooksClient builds the catalog client from the current config.
// A cache that cannot be opened is logged and skipped.
func newGoogleBooksClient() register.Lookuper {
	opts := []googlebooks.Option{
		googlebooks.WithBaseURL(config.GoogleBooksBaseURL),
		googlebooks.WithAPIKey(config.GoogleBooksAPIKey),
		googlebooks.WithRateLimit(config.GoogleBooksRPS),
	}

	if config.CacheEnabled {
		db, err := cache.GetGlobalCache()
		if err != nil {
			slog.Warn("Lookup cache unavailable, continuing without it", "error", err)
		} else {
			opts = append(opts, googlebooks.WithCache(db))
		}
	}

	return googlebooks.New(opts...)
}

// withStore opens the library for the duration of fn
func withStore(fn func(library.Store) error) error {
	store, err := openStore(config.LibraryDBFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close library", "error", err)
		}
	}()
	return fn(store)
}
