package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/meisai/internal/sheets"
)

// sheetsKeys maps sheets.* configuration keys to their GOOGLE_SHEETS_*
// environment fallbacks.
var sheetsKeys = []struct {
	key string
	env string
	set func(*sheets.Config, string)
}{
	{"sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", func(c *sheets.Config, v string) { c.ServiceAccountPath = ExpandPath(v) }},
	{"sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID", func(c *sheets.Config, v string) { c.ClientID = v }},
	{"sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET", func(c *sheets.Config, v string) { c.ClientSecret = v }},
	{"sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN", func(c *sheets.Config, v string) { c.RefreshToken = v }},
	{"sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID", func(c *sheets.Config, v string) { c.SpreadsheetID = v }},
	{"sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME", func(c *sheets.Config, v string) { c.SpreadsheetName = v }},
	{"sheets.sheet_name", "GOOGLE_SHEETS_SHEET_NAME", func(c *sheets.Config, v string) { c.SheetName = v }},
	{"sheets.time_zone", "GOOGLE_SHEETS_TIME_ZONE", func(c *sheets.Config, v string) { c.TimeZone = v }},
}

// LoadSheetsConfig loads Google Sheets configuration. It follows this
// precedence:
// 1. Viper configuration (config file or MEISAI_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	for _, k := range sheetsKeys {
		value := v.GetString(k.key)
		if value == "" {
			value = os.Getenv(k.env)
		}
		if value != "" {
			k.set(&config, value)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
