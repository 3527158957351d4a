package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ernie/ggtools/internal/pack"
	"github.com/ernie/ggtools/internal/worker"
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive> <outdir>",
	Short: "Extract every entry's raw (post-cipher) bytes to outdir",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ar, err := pack.Open(args[0])
		if err != nil {
			return err
		}
		defer ar.Close()

		outdir := args[1]
		if err := os.MkdirAll(outdir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		tasks := make([]worker.Task, len(ar.Entries))
		for i, e := range ar.Entries {
			e := e
			tasks[i] = func(ctx context.Context) (any, error) {
				data, err := ar.Extract(e)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", e.Filename, err)
				}
				dest := filepath.Join(outdir, filepath.FromSlash(e.Filename))
				if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
					return nil, err
				}
				if err := os.WriteFile(dest, data, 0644); err != nil {
					return nil, err
				}
				return nil, nil
			}
		}

		results := worker.Run(cmd.Context(), tasks,
			worker.WithConcurrency(cfg.Jobs),
			worker.WithFailFast(cfg.FailFast),
		)
		return reportFailures(results, ar.Entries, cfg.Quiet)
	},
}

// reportFailures prints one line per failed task and returns a combined
// error if any entry failed, so a batch command's exit code reflects
// partial failure even though individual entries were processed
// independently. On a non-terminal stdout (redirected to a file, or CI)
// it skips the per-entry "ok" lines even without --quiet, since a
// scrolling progress line is only useful interactively.
func reportFailures(results []worker.Result, entries []pack.FileEntry, quiet bool) error {
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", entries[i].Filename, r.Err)
			continue
		}
		if !quiet && interactive {
			fmt.Printf("ok %s\n", entries[i].Filename)
		}
	}
	if !quiet && !interactive {
		fmt.Printf("processed %d entries, %d failed\n", len(results), failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d entries failed", failed, len(results))
	}
	return nil
}
