// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"kaizoku/internal/audit"
	"kaizoku/internal/config"
	"kaizoku/internal/httputil"
	"kaizoku/internal/logging"
	"kaizoku/internal/provider"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagBase        string
	flagDebug       bool
	flagLogFormat   string
	flagFingerprint string
	flagNoAudit     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

// log is built from cfg once flags are parsed.
var log *logrus.Logger

var rootCmd = &cobra.Command{
	Use:   "kaizoku",
	Short: "Anime catalog and source extraction API",
	Long: `Kaizoku scrapes a HiAnime-style catalog and recovers playable video
sources and captions from encrypted embed pages. Run "kaizoku serve" for the
HTTP API, or use the subcommands directly.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBase, "base", "", "Catalog host (default: hianime.bz)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: auto | text | json")
	rootCmd.PersistentFlags().StringVar(&flagFingerprint, "fingerprint", "", "TLS fingerprint: none | chrome")
	rootCmd.PersistentFlags().BoolVar(&flagNoAudit, "no-audit", false, "Do not record extractions")
}

// loadConfig loads and merges configuration: defaults < config file < env < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	// CLI flags override config file values
	if flagBase != "" {
		cfg.Base = flagBase
	}
	if flagDebug {
		cfg.LogLevel = "debug"
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if flagFingerprint != "" {
		cfg.Fingerprint = flagFingerprint
	}
	if flagNoAudit {
		cfg.Audit = false
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	log = logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	log.WithFields(logrus.Fields{
		"base":        cfg.Base,
		"fingerprint": cfg.Fingerprint,
		"timeout":     cfg.Timeout.String(),
	}).Debug("configuration loaded")

	return nil
}

func newClient() *http.Client {
	return httputil.NewClient(cfg.Timeout, cfg.Fingerprint)
}

func newProvider(client *http.Client) *provider.HiAnime {
	return provider.NewHiAnime(cfg.Base, client)
}

// openAudit opens the audit store, or returns nil when auditing is off.
func openAudit() (*audit.Store, error) {
	if !cfg.Audit {
		return nil, nil
	}
	path, err := cfg.ExpandAuditPath()
	if err != nil {
		return nil, errors.Wrap(err, "resolving audit path")
	}
	store, err := audit.Open(path)
	if err != nil {
		return nil, err
	}
	log.WithField("path", path).Debug("audit log opened")
	return store, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
