// Package config exposes the viper-backed settings as typed values.
package config

import (
	"github.com/spf13/viper"
)

// Default values written to a fresh config.yaml
const (
	DefaultLibraryDBFile      = "./mylibrary.db"
	DefaultCacheDBFile        = "./cache.db"
	DefaultCacheTTL           = "720h"
	DefaultGoogleBooksBaseURL = "https://www.googleapis.com/books/v1"
	DefaultGoogleBooksRPS     = 1.0
	DefaultCoversDir          = "./covers"
	DefaultCoversMaxWidth     = 300
)

// Global configuration variables
var (
	// LibraryDBFile is the SQLite file holding the book collection
	LibraryDBFile string
	// CacheEnabled controls whether catalog responses are cached
	CacheEnabled bool
	// GoogleBooksBaseURL is the catalog API root
	GoogleBooksBaseURL string
	// GoogleBooksAPIKey is optional; anonymous requests have a lower quota
	GoogleBooksAPIKey string
	// GoogleBooksRPS paces catalog requests. Zero or less disables pacing.
	GoogleBooksRPS float64
	// ExportDir is where MyLibrary.csv is written. Empty means the OS temp dir.
	ExportDir string
	// CoversDir is where downloaded covers are stored
	CoversDir string
	// CoversMaxWidth is the width covers are scaled down to
	CoversMaxWidth int
)

// SetDefaults registers default values with viper
func SetDefaults() {
	viper.SetDefault("library.dbfile", DefaultLibraryDBFile)
	viper.SetDefault("cache.dbfile", DefaultCacheDBFile)
	viper.SetDefault("cache.ttl", DefaultCacheTTL)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("googlebooks.baseurl", DefaultGoogleBooksBaseURL)
	viper.SetDefault("googlebooks.apikey", "")
	viper.SetDefault("googlebooks.rps", DefaultGoogleBooksRPS)
	viper.SetDefault("export.dir", "")
	viper.SetDefault("covers.dir", DefaultCoversDir)
	viper.SetDefault("covers.maxwidth", DefaultCoversMaxWidth)
}

// InitConfig initializes the global configuration from viper
func InitConfig() {
	SetDefaults()

	LibraryDBFile = viper.GetString("library.dbfile")
	CacheEnabled = viper.GetBool("cache.enabled")
	GoogleBooksBaseURL = viper.GetString("googlebooks.baseurl")
	GoogleBooksAPIKey = viper.GetString("googlebooks.apikey")
	GoogleBooksRPS = viper.GetFloat64("googlebooks.rps")
	ExportDir = viper.GetString("export.dir")
	CoversDir = viper.GetString("covers.dir")
	CoversMaxWidth = viper.GetInt("covers.maxwidth")
}
