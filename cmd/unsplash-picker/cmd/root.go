// Package cmd implements the CLI commands for unsplash-picker.
package cmd

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/unsplash-picker/internal/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "unsplash-picker",
		Short: "Browse, search and pick Unsplash photos",
		Long: "unsplash-picker pages through the Unsplash editorial feed, search results\n" +
			"and collections, and hands the photos you pick to a webhook. Run it as an\n" +
			"HTTP API with serve, or list photos directly from the terminal.",
		SilenceUsage: true,
	}
)

// persistentFlags are bound to viper under their snake_case names, so each
// can also be set as UNSPLASH_PICKER_<NAME>.
var persistentFlags = []string{
	"output",
	"access-key",
	"api-url",
	"log-level",
	"log-format",
	"per-page",
	"select",
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "config.yaml", "config file path")
	pf.String("output", "table", "output format (table, json)")
	pf.String("access-key", "", "Unsplash access key, overrides the config file")
	pf.String("api-url", "", "Unsplash API root, overrides the config file")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text, json, console)")
	pf.Int("per-page", 0, "photos per page (1-30)")
	pf.String("select", "", "comma-separated photo indices to commit after listing, e.g. 0,2")

	for _, name := range persistentFlags {
		cobra.CheckErr(viper.BindPFlag(viperKey(name), pf.Lookup(name)))
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(collectionCmd())
	rootCmd.AddCommand(remoteCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.SetEnvPrefix("UNSPLASH_PICKER")
	viper.AutomaticEnv()
}

func viperKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// loadConfig reads the config file and layers flag and environment values
// on top. The default config path may be absent; an explicit one may not.
func loadConfig(extra ...config.Override) (*config.Config, error) {
	overrides := append([]config.Override{flagOverrides}, extra...)

	cfg, err := config.Load(cfgFile, overrides...)
	if errors.Is(err, fs.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
		return config.Parse(nil, overrides...)
	}
	return cfg, err
}

func flagOverrides(c *config.Config) {
	if v := viper.GetString("access_key"); v != "" {
		c.Unsplash.AccessKey = v
	}
	if v := viper.GetString("api_url"); v != "" {
		c.Unsplash.APIURL = v
	}
	if v := viper.GetString("log_level"); v != "" {
		c.Logging.Level = v
	}
	if v := viper.GetString("log_format"); v != "" {
		c.Logging.Format = v
	}
	if v := viper.GetInt("per_page"); v != 0 {
		c.Picker.PerPage = v
	}
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
