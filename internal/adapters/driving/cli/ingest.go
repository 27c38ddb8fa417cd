package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]...",
	Short: "Ingest files into the index",
	Long: `Extract, chunk, embed and index one or more files.

Directories are walked recursively; hidden files and directories are
skipped. Files whose text cannot be extracted are still registered, with
their extraction status recorded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	ctx := commandContext(cmd)

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Println("No files to ingest.")
		return nil
	}

	var failed int
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
			continue
		}
		doc, err := ingestService.Ingest(ctx, filepath.Base(path), content)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("  %s -> %s (%s)\n", path, doc.ID, doc.Extraction)
		if doc.ExtractionNote != "" {
			cmd.Printf("      %s\n", doc.ExtractionNote)
		}
	}

	cmd.Printf("\nIngested %d of %d files.\n", len(files)-failed, len(files))
	if failed > 0 {
		return fmt.Errorf("%d files failed to ingest", failed)
	}
	return nil
}

// collectFiles expands directories into the visible regular files below them.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	return files, nil
}
