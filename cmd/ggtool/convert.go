package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ernie/ggtools/internal/decompile"
	"github.com/ernie/ggtools/internal/pack"
	"github.com/ernie/ggtools/internal/payload"
	"github.com/ernie/ggtools/internal/valuetree"
	"github.com/ernie/ggtools/internal/worker"
)

var convertCmd = &cobra.Command{
	Use:   "convert <archive> <outdir>",
	Short: "Extract and convert every entry to a human-inspectable form",
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
				raw, err := ar.Extract(e)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", e.Filename, err)
				}
				p, err := payload.Convert(e, raw)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", e.Filename, err)
				}
				return nil, writeConverted(outdir, e, p)
			}
		}

		results := worker.Run(cmd.Context(), tasks,
			worker.WithConcurrency(cfg.Jobs),
			worker.WithFailFast(cfg.FailFast),
		)
		return reportFailures(results, ar.Entries, cfg.Quiet)
	},
}

func writeConverted(outdir string, e pack.FileEntry, p payload.Payload) error {
	dest := filepath.Join(outdir, filepath.FromSlash(e.Filename))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	switch p.Kind {
	case payload.Utf8Text:
		return os.WriteFile(dest, []byte(p.Text), 0644)
	case payload.Bytecode:
		var sb strings.Builder
		for _, script := range p.Scripts {
			for _, uid := range script.FunctionOrder {
				fn := script.FunctionsByUID[uid]
				sb.WriteString(fmt.Sprintf("// %s :: %s\n", script.Name, fn.Name))
				sb.WriteString(decompile.Decompile(fn))
				sb.WriteString("\n")
			}
		}
		return os.WriteFile(dest+".txt", []byte(sb.String()), 0644)
	case payload.Dialogue:
		var sb strings.Builder
		for _, stmt := range p.Yack {
			sb.WriteString(stmt.Render())
			sb.WriteString("\n")
		}
		return os.WriteFile(dest+".txt", []byte(sb.String()), 0644)
	case payload.Table:
		var sb strings.Builder
		for _, row := range p.Rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		return os.WriteFile(dest, []byte(sb.String()), 0644)
	case payload.Json:
		data, err := json.MarshalIndent(p.JSON, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(dest+".json", data, 0644)
	case payload.ValueTree:
		data, err := json.MarshalIndent(treeToJSON(p.Tree), "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(dest+".json", data, 0644)
	default:
		return os.WriteFile(dest, p.Raw, 0644)
	}
}

// treeToJSON renders a ValueTree node as a generic JSON-compatible value,
// for inspection only — it is lossy relative to the tree's literal wire
// text (see valuetree.Node's comment on Text), so it is never used to
// round-trip back into an archive.
func treeToJSON(n *valuetree.Node) any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case valuetree.KindNull:
		return nil
	case valuetree.KindDict:
		m := make(map[string]any, len(n.Dict.Entries))
		for _, e := range n.Dict.Entries {
			m[e.Key] = treeToJSON(e.Value)
		}
		return m
	case valuetree.KindArray:
		arr := make([]any, len(n.Array))
		for i, item := range n.Array {
			arr[i] = treeToJSON(item)
		}
		return arr
	default:
		return n.Text
	}
}
