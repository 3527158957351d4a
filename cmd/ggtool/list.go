package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ernie/ggtools/internal/pack"
)

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List the entries in an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ar, err := pack.Open(args[0])
		if err != nil {
			return err
		}
		defer ar.Close()

		fmt.Printf("%s  game=%s  guid=%s  %d entries\n", args[0], ar.Game, ar.GUID, len(ar.Entries))
		for _, e := range ar.Entries {
			fmt.Printf("  %-48s %10s\n", e.Filename, humanize.Bytes(uint64(e.Size)))
		}
		return nil
	},
}
