package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
)

var importBaseID string

var importCmd = &cobra.Command{
	Use:   "import <archive>",
	Short: "Import a document archive into a knowledge base",
	Long: `Extracts the archive, converts every supported document to
normalized markup, and arranges the documents in a folder tree mirroring
the archive layout. Entries that cannot be imported are reported but do
not abort the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importBaseID, "base", "", "target knowledge base id (required)")
	_ = importCmd.MarkFlagRequired("base")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importer == nil {
		return errors.New("import service not configured")
	}

	ctx := context.Background()
	archivePath := args[0]

	cmd.Printf("Importing %s into base %s...\n", archivePath, importBaseID)

	res, err := importer.ImportArchive(ctx, importBaseID, archivePath)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	summary := res.Summary
	cmd.Printf("Imported %d of %d files (%d skipped).\n",
		summary.ImportedFiles, summary.TotalFiles, summary.SkippedFiles)

	if len(summary.Errors) > 0 {
		cmd.Println("\nSkipped entries:")
		for _, e := range summary.Errors {
			cmd.Printf("  %-20s %s\n", e.Code, e.Path)
		}
	}

	if len(res.Tree) > 0 {
		cmd.Println("\nDocument tree:")
		for _, node := range res.Tree {
			printTreeNode(cmd, node, 1)
		}
	}
	return nil
}

func printTreeNode(cmd *cobra.Command, node domain.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if node.Kind == domain.NodeFolder {
		cmd.Printf("%s%s/\n", indent, node.Title)
		for _, child := range node.Children {
			printTreeNode(cmd, child, depth+1)
		}
		return
	}
	cmd.Printf("%s%s\n", indent, node.Title)
}
