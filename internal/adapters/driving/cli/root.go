// Package cli implements the kbctl command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driving"
	"github.com/forlandeivan/search-engine-sub011/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	importer    driving.Importer
	indexing    driving.IndexingController
	configStore driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "kbctl",
	Short: "Knowledge base ingestion and indexing tool",
	Long: `kbctl imports document archives into knowledge bases, converts the
documents to normalized markup, and drives chunking and vector indexing
runs over them.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Services bundles everything the command tree needs.
type Services struct {
	Importer    driving.Importer
	Indexing    driving.IndexingController
	ConfigStore driven.ConfigStore
}

// SetServices wires the service implementations into the command tree.
func SetServices(s Services) {
	importer = s.Importer
	indexing = s.Indexing
	configStore = s.ConfigStore
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
