package main

import (
	"context"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ernie/ggtools/internal/pack"
	"github.com/ernie/ggtools/internal/progress"
	"github.com/ernie/ggtools/internal/worker"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <archive>",
	Short: "Extract an archive's entries while streaming progress over a websocket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ar, err := pack.Open(args[0])
		if err != nil {
			return err
		}
		defer ar.Close()

		if !cmd.Flags().Changed("addr") && cfg.ProgressAddr != "" {
			serveAddr = cfg.ProgressAddr
		}

		broadcaster := progress.NewBroadcaster()
		mux := http.NewServeMux()
		mux.HandleFunc("/progress", broadcaster.Handler)

		srv := &http.Server{Addr: serveAddr, Handler: mux}
		go func() {
			log.Printf("serve: progress stream listening on ws://%s/progress", serveAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("serve: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())

		total := len(ar.Entries)
		tasks := make([]worker.Task, total)
		for i, e := range ar.Entries {
			i, e := i, e
			tasks[i] = func(ctx context.Context) (any, error) {
				_, err := ar.Extract(e)
				evt := progress.Event{Index: i, Total: total, File: e.Filename}
				if err != nil {
					evt.Err = err.Error()
				}
				broadcaster.Publish(evt)
				return nil, err
			}
		}

		results := worker.Run(cmd.Context(), tasks, worker.WithConcurrency(cfg.Jobs), worker.WithFailFast(cfg.FailFast))
		broadcaster.Publish(progress.Event{Total: total, Done: true})
		return reportFailures(results, ar.Entries, cfg.Quiet)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8089", "listen address for the progress websocket")
}
