// Command ggtool opens, lists, extracts, and converts content-archive
// files from Thimbleweed Park, Delores, and Return to Monkey Island.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ernie/ggtools/internal/config"
	"github.com/ernie/ggtools/internal/ggerr"
)

var cfg config.Config
var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "ggtool",
	Short: "Inspect and convert Thimbleweed Park / Delores / Return to Monkey Island archives",
	// PersistentPreRunE loads the config file first, then lets any flag the
	// user actually passed on this invocation override it, so "ggtool
	// --jobs 8" always wins over a configured jobs: 2 in the file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded := config.Default()
		if cfgPath != "" {
			var err error
			loaded, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
		}
		flags := cmd.Flags()
		if !flags.Changed("jobs") {
			jobs = loaded.Jobs
		}
		if !flags.Changed("quiet") {
			quiet = loaded.Quiet
		}
		if !flags.Changed("fail-fast") {
			failFast = loaded.FailFast
		}
		cfg = loaded
		cfg.Jobs, cfg.Quiet, cfg.FailFast = jobs, quiet, failFast
		return nil
	},
}

var jobs int
var quiet, failFast bool

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().IntVar(&jobs, "jobs", 0, "worker pool size (0 = hardware thread count)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress the progress bar")
	rootCmd.PersistentFlags().BoolVar(&failFast, "fail-fast", false, "abort the batch on the first error")

	rootCmd.AddCommand(listCmd, extractCmd, convertCmd, packCmd, serveCmd, resolveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		// Container-format errors exit 2; every other failure exits 1.
		var mh *ggerr.MalformedHeader
		var mt *ggerr.MalformedTree
		var mf *ggerr.MalformedFunction
		if errors.As(err, &mh) || errors.As(err, &mt) || errors.As(err, &mf) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
