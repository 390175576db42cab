package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/forlandeivan/search-engine-sub011/internal/watcher"
)

var (
	watchBaseID string
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <inbox-dir>",
	Short: "Watch a directory and import archives dropped into it",
	Long: `Watches the inbox directory and imports every archive that lands
there once its size settles. Handled archives are moved into processed/
or failed/ subdirectories. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchBaseID, "base", "", "target knowledge base id (required)")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watcher.DefaultSettleInterval,
		"how long a file's size must stay unchanged before import")
	_ = watchCmd.MarkFlagRequired("base")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if importer == nil {
		return errors.New("import service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	importFn := func(ctx context.Context, archivePath string) error {
		res, err := importer.ImportArchive(ctx, watchBaseID, archivePath)
		if err != nil {
			return err
		}
		cmd.Printf("Imported %d of %d files from %s.\n",
			res.Summary.ImportedFiles, res.Summary.TotalFiles, res.Summary.ArchiveName)
		return nil
	}

	w := watcher.New(args[0], importFn, watcher.WithSettleInterval(watchSettle))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("Watch stopped.")
	return nil
}
