package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/abhisek/examforge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd, buildOptions{gated: true})
		if err != nil {
			return err
		}
		defer rt.Close()

		if !rt.cfg.RequireCredits {
			rt.pipeline.Ledger = nil
			rt.log.Warn("credit gating disabled")
		}

		srv := server.New(rt.pipeline, rt.ledger, rt.catalog, rt.log, server.Config{
			CORSOrigins:    rt.cfg.CORSOrigins,
			MaxUploadBytes: rt.cfg.MaxUploadBytes,
			RequestTimeout: rt.cfg.RequestTimeout,
		})
		srv.Ready = func(ctx context.Context) error {
			return rt.store.Ping(ctx)
		}

		if useLambda, _ := cmd.Flags().GetBool("lambda"); useLambda {
			rt.log.Info("starting lambda handler")
			lambda.Start(srv.LambdaHandler())
			return nil
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = rt.cfg.HTTPAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Serve(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides EXAMFORGE_HTTP_ADDR)")
	serveCmd.Flags().Bool("lambda", false, "Serve AWS Lambda API Gateway events instead of listening")
}
