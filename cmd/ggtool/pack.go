package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ernie/ggtools/internal/game"
	"github.com/ernie/ggtools/internal/pack"
)

var packGameFlag string
var packNewGUID bool

var packCmd = &cobra.Command{
	Use:   "pack <srcdir> <archive>",
	Short: "Build a new archive from a directory tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcdir, outPath := args[0], args[1]
		g := game.FromArchiveBasename(filepath.Base(outPath))
		if packGameFlag != "" {
			g = parseGameFlag(packGameFlag)
		}
		if g == game.Unknown {
			return fmt.Errorf("pack: could not determine game from output filename %q; pass --game", outPath)
		}

		var files []pack.BuildInput
		err := filepath.WalkDir(srcdir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(srcdir, path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			files = append(files, pack.BuildInput{Filename: filepath.ToSlash(rel), Data: data})
			return nil
		})
		if err != nil {
			return fmt.Errorf("walk %s: %w", srcdir, err)
		}

		var opts []pack.BuildOption
		if packNewGUID {
			opts = append(opts, pack.WithNewGUID())
		}
		if err := pack.Build(files, outPath, g, opts...); err != nil {
			return err
		}
		fmt.Printf("wrote %s: %d files\n", outPath, len(files))
		return nil
	},
}

func parseGameFlag(s string) game.Game {
	switch s {
	case "twp", "thimbleweedpark":
		return game.ThimbleweedPark
	case "delores":
		return game.Delores
	case "rtmi", "weird":
		return game.ReturnToMonkeyIsland
	default:
		return game.Unknown
	}
}

func init() {
	packCmd.Flags().StringVar(&packGameFlag, "game", "", "override game detection: twp, delores, or rtmi")
	packCmd.Flags().BoolVar(&packNewGUID, "new-guid", false, "generate a fresh archive GUID instead of reusing the observed one")
}
