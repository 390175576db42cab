package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driving"
)

var (
	indexBaseID       string
	indexCollection   string
	indexProviderID   string
	indexDimensions   int
	indexChunkSize    int
	indexChunkOverlap int
	indexDocumentIDs  []string
	indexFollow       bool
	indexDeleteData   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run and steer indexing actions",
	Long: `Starts, pauses, resumes, cancels and inspects indexing actions.
An action chunks every document in the base and writes the chunks to the
vector collection, reporting progress per stage.`,
}

var indexStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an indexing action for a knowledge base",
	RunE:  runIndexStart,
}

var indexPauseCmd = &cobra.Command{
	Use:   "pause <action-id>",
	Short: "Pause a running action at its next checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexPause,
}

var indexResumeCmd = &cobra.Command{
	Use:   "resume <action-id>",
	Short: "Resume a paused action from its frozen position",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexResume,
}

var indexCancelCmd = &cobra.Command{
	Use:   "cancel <action-id>",
	Short: "Cancel an action at its next checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexCancel,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status <action-id>",
	Short: "Show the state of an action",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexStatus,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a base's actions, newest first",
	RunE:  runIndexList,
}

func init() {
	indexStartCmd.Flags().StringVar(&indexBaseID, "base", "", "knowledge base id (required)")
	indexStartCmd.Flags().StringVar(&indexCollection, "collection", "", "vector collection name (required)")
	indexStartCmd.Flags().StringVar(&indexProviderID, "provider", "", "vector provider id")
	indexStartCmd.Flags().IntVar(&indexDimensions, "dimensions", 0, "embedding dimensionality (required)")
	indexStartCmd.Flags().IntVar(&indexChunkSize, "chunk-size", 0, "chunk size override")
	indexStartCmd.Flags().IntVar(&indexChunkOverlap, "chunk-overlap", 0, "chunk overlap override")
	indexStartCmd.Flags().StringSliceVar(&indexDocumentIDs, "doc", nil, "restrict the run to these document ids (repeatable)")
	indexStartCmd.Flags().BoolVar(&indexFollow, "follow", false, "poll progress until the action settles")
	_ = indexStartCmd.MarkFlagRequired("base")

	indexCancelCmd.Flags().BoolVar(&indexDeleteData, "delete-data", false, "remove records written during the run")

	indexListCmd.Flags().StringVar(&indexBaseID, "base", "", "knowledge base id (required)")
	_ = indexListCmd.MarkFlagRequired("base")

	indexCmd.AddCommand(indexStartCmd)
	indexCmd.AddCommand(indexPauseCmd)
	indexCmd.AddCommand(indexResumeCmd)
	indexCmd.AddCommand(indexCancelCmd)
	indexCmd.AddCommand(indexStatusCmd)
	indexCmd.AddCommand(indexListCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStart(cmd *cobra.Command, _ []string) error {
	if indexing == nil {
		return errors.New("indexing service not configured")
	}

	ctx := context.Background()
	params := driving.IndexingParams{
		Collection:   indexCollection,
		ProviderID:   indexProviderID,
		Dimensions:   indexDimensions,
		ChunkSize:    indexChunkSize,
		ChunkOverlap: indexChunkOverlap,
		DocumentIDs:  indexDocumentIDs,
	}
	if configStore != nil {
		if params.Collection == "" {
			params.Collection = configStore.GetString("vector.collection", "")
		}
		if params.ProviderID == "" {
			params.ProviderID = configStore.GetString("vector.provider", "")
		}
		if params.Dimensions == 0 {
			params.Dimensions = configStore.GetInt("vector.dimensions", 0)
		}
		if params.ChunkSize == 0 {
			params.ChunkSize = configStore.GetInt("chunker.size", 0)
		}
		if params.ChunkOverlap == 0 {
			params.ChunkOverlap = configStore.GetInt("chunker.overlap", 0)
		}
	}

	action, err := indexing.Start(ctx, indexBaseID, params)
	if err != nil {
		return fmt.Errorf("starting indexing: %w", err)
	}

	cmd.Printf("Started action %s for base %s.\n", action.ID, action.BaseID)

	if !indexFollow {
		return nil
	}
	return followAction(ctx, cmd, action.ID)
}

// followAction polls the action until it reaches a terminal status.
func followAction(ctx context.Context, cmd *cobra.Command, actionID string) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastLine string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			action, err := indexing.Status(ctx, actionID)
			if err != nil {
				return fmt.Errorf("reading status: %w", err)
			}

			line := fmt.Sprintf("%s %d%% (%d/%d documents)",
				action.Stage, action.Progress.PercentComplete(),
				action.Progress.ProcessedDocuments, action.Progress.TotalDocuments)
			if line != lastLine {
				cmd.Printf("\r%s", line)
				lastLine = line
			}

			if action.Terminal() {
				cmd.Printf("\nAction %s finished: %s\n", action.ID, action.Status)
				if action.Status == domain.StatusError {
					return fmt.Errorf("indexing failed: %s", action.Progress.DisplayText)
				}
				return nil
			}
		}
	}
}

func runIndexPause(cmd *cobra.Command, args []string) error {
	if indexing == nil {
		return errors.New("indexing service not configured")
	}
	if err := indexing.Pause(context.Background(), args[0]); err != nil {
		return fmt.Errorf("pausing action: %w", err)
	}
	cmd.Printf("Pause requested for action %s.\n", args[0])
	return nil
}

func runIndexResume(cmd *cobra.Command, args []string) error {
	if indexing == nil {
		return errors.New("indexing service not configured")
	}
	if err := indexing.Resume(context.Background(), args[0]); err != nil {
		return fmt.Errorf("resuming action: %w", err)
	}
	cmd.Printf("Resumed action %s.\n", args[0])
	return nil
}

func runIndexCancel(cmd *cobra.Command, args []string) error {
	if indexing == nil {
		return errors.New("indexing service not configured")
	}
	if err := indexing.Cancel(context.Background(), args[0], indexDeleteData); err != nil {
		return fmt.Errorf("canceling action: %w", err)
	}
	cmd.Printf("Cancel requested for action %s.\n", args[0])
	return nil
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	if indexing == nil {
		return errors.New("indexing service not configured")
	}

	action, err := indexing.Status(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	printAction(cmd, action)
	return nil
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if indexing == nil {
		return errors.New("indexing service not configured")
	}

	actions, err := indexing.List(context.Background(), indexBaseID)
	if err != nil {
		return fmt.Errorf("listing actions: %w", err)
	}

	if len(actions) == 0 {
		cmd.Printf("No actions for base %s.\n", indexBaseID)
		return nil
	}
	for _, action := range actions {
		cmd.Printf("%s  %-10s %-18s %3d%%  %s\n",
			action.ID, action.Status, action.Stage,
			action.Progress.PercentComplete(),
			action.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func printAction(cmd *cobra.Command, action *domain.IndexingAction) {
	cmd.Printf("Action:    %s\n", action.ID)
	cmd.Printf("Base:      %s\n", action.BaseID)
	cmd.Printf("Status:    %s\n", action.Status)
	cmd.Printf("Stage:     %s\n", action.Stage)
	cmd.Printf("Progress:  %d%% (%d/%d documents, %d/%d chunks, %d failed)\n",
		action.Progress.PercentComplete(),
		action.Progress.ProcessedDocuments, action.Progress.TotalDocuments,
		action.Progress.ProcessedChunks, action.Progress.TotalChunks,
		action.Progress.FailedDocuments)
	if action.Progress.DisplayText != "" {
		cmd.Printf("Detail:    %s\n", action.Progress.DisplayText)
	}
	cmd.Printf("Updated:   %s\n", action.UpdatedAt.Format(time.RFC3339))
}
