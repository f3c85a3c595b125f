// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/meisai/internal/common"
	"github.com/Veraticus/meisai/internal/ingest"
	"github.com/Veraticus/meisai/internal/model"
	"github.com/Veraticus/meisai/internal/report"
)

// Configuration keys.
const (
	KeyDatabasePath      = "database.path"
	KeySentinel          = "categories.sentinel"
	KeyDefaultCategories = "categories.defaults"
	KeyEncodings         = "ingest.encodings"
	KeyReportLanguage    = "report.language"
	KeyServerAddr        = "server.addr"
	KeyAllowedOrigins    = "server.allowed_origins"
	KeyLogLevel          = "logging.level"
	KeyLogFormat         = "logging.format"
)

// DefaultDatabasePath is used when database.path is not set.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), "meisai.db")
}

// App is the resolved application configuration.
type App struct {
	DatabasePath      string
	Sentinel          string
	DefaultCategories []string
	Encodings         []string
	Language          string
	ServerAddr        string
	AllowedOrigins    []string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath())
	v.SetDefault(KeySentinel, model.DefaultSentinel)
	v.SetDefault(KeyDefaultCategories, model.DefaultCategories)
	v.SetDefault(KeyEncodings, ingest.DefaultEncodings)
	v.SetDefault(KeyReportLanguage, report.DefaultLanguage)
	v.SetDefault(KeyServerAddr, "127.0.0.1:8080")
	v.SetDefault(KeyAllowedOrigins, []string{"http://localhost:3000"})
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load resolves the application configuration from v and validates it.
func Load(v *viper.Viper) (App, error) {
	app := App{
		DatabasePath:      ExpandPath(v.GetString(KeyDatabasePath)),
		Sentinel:          strings.TrimSpace(v.GetString(KeySentinel)),
		DefaultCategories: v.GetStringSlice(KeyDefaultCategories),
		Encodings:         normalizeList(v.GetStringSlice(KeyEncodings)),
		Language:          strings.ToLower(strings.TrimSpace(v.GetString(KeyReportLanguage))),
		ServerAddr:        v.GetString(KeyServerAddr),
		AllowedOrigins:    v.GetStringSlice(KeyAllowedOrigins),
	}

	if app.DatabasePath == "" {
		app.DatabasePath = DefaultDatabasePath()
	}
	if app.Sentinel == "" {
		app.Sentinel = model.DefaultSentinel
	}

	for _, enc := range app.Encodings {
		if !ingest.KnownEncoding(enc) {
			return App{}, fmt.Errorf("%w: unknown encoding %q in %s", common.ErrInvalidConfig, enc, KeyEncodings)
		}
	}
	if _, err := report.LabelsFor(app.Language); err != nil {
		return App{}, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, KeyReportLanguage, err)
	}

	return app, nil
}

// normalizeList lowercases and trims entries, dropping blanks. Environment
// variables arrive as a single space or comma separated string.
func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
