package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/twingraph-backend/internal/app"
	"github.com/yungbote/twingraph-backend/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "twingraph",
		Short:         "Dependency graph service for software components",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		newServeCmd(),
		newSeedCmd(),
		newIngestCmd(),
		newImpactCmd(),
		newGraphCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Merge the bootstrap graph (Frontend -> API -> Database)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Services.Graph.Seed(ctx); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"status": "seeded"})
			})
		},
	}
}

func newIngestCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest \"Source -> Target\" lines from a file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				report, err := a.Services.Graph.Ingest(ctx, text)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"status":          "ingested",
					"lines_processed": report.LinesProcessed,
				})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "path to dependency text, or - for stdin")
	return cmd
}

func newImpactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact <component>",
		Short: "List components reachable from a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				names, err := a.Services.Graph.Impact(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"impacted_components": names})
			})
		},
	}
}

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print every dependency edge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				edges, err := a.Services.Graph.ListEdges(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"edges": edges})
			})
		},
	}
}

// serveSignals end the serve command; in-flight requests drain for HTTP_SHUTDOWN_TIMEOUT.
var serveSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(parent), serveSignals...)
	defer stop()

	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		a.Log.Info("Starting server", "addr", a.Cfg.Addr(), "store_backend", a.Cfg.App.StoreBackend)
		return a.Run(ctx)
	})
}

func withApp(parent context.Context, fn func(context.Context, *app.App) error) error {
	ctx := contextOrBackground(parent)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return fn(ctx, a)
}

func readInput(stdin io.Reader, file string) (string, error) {
	if file == "" || file == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(raw), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
