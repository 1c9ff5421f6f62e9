package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nemanja-m/gopool/internal/api/grpc"
	"github.com/nemanja-m/gopool/internal/pool"
	"github.com/nemanja-m/gopool/internal/shared/config"
	"github.com/nemanja-m/gopool/internal/tasks"
)

type globalFlags struct {
	configFile string
	addr       string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "poolctl",
		Short:        "Control a running poold worker pool over gRPC",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "client config file (default ./config/poolctl.yaml)")
	root.PersistentFlags().StringVar(&flags.addr, "addr", "", "pool gRPC address (overrides config)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "deadline for the whole call, 0 means none (overrides config)")

	root.AddCommand(
		newSubmitCmd(flags),
		newResultCmd(flags),
		simpleCmd(flags, "start", "Resume dispatching tasks", func(ctx context.Context, c *grpc.Client, _ io.Writer) error {
			return c.Start(ctx)
		}),
		simpleCmd(flags, "stop", "Pause dispatching tasks", func(ctx context.Context, c *grpc.Client, _ io.Writer) error {
			return c.Stop(ctx)
		}),
		simpleCmd(flags, "clear", "Drop completed results and pending signals", func(ctx context.Context, c *grpc.Client, _ io.Writer) error {
			return c.ClearCompleted(ctx)
		}),
		simpleCmd(flags, "wait", "Block until every submitted task completes", func(ctx context.Context, c *grpc.Client, _ io.Writer) error {
			return c.Wait(ctx)
		}),
		simpleCmd(flags, "wait-signal", "Block until a task raises a signal or all tasks complete", func(ctx context.Context, c *grpc.Client, out io.Writer) error {
			id, err := c.WaitForSignal(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, map[string]any{"signal": uint64(id)})
		}),
		simpleCmd(flags, "stats", "Show pool statistics", func(ctx context.Context, c *grpc.Client, out io.Writer) error {
			stats, err := c.Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, stats)
		}),
		newLoggingCmd(flags),
		newKindsCmd(),
	)
	return root
}

func newSubmitCmd(flags *globalFlags) *cobra.Command {
	var (
		description string
		params      []string
	)

	cmd := &cobra.Command{
		Use:   "submit KIND",
		Short: "Submit a task of the given kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseParams(params)
			if err != nil {
				return err
			}
			return withClient(cmd, flags, func(ctx context.Context, c *grpc.Client) error {
				id, err := c.Submit(ctx, args[0], description, parsed)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": uint64(id)})
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "task parameter as key=value, may be repeated")
	return cmd
}

func newResultCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "result ID",
		Short: "Show the result of a completed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid task ID: %q", args[0])
			}
			return withClient(cmd, flags, func(ctx context.Context, c *grpc.Client) error {
				res, err := c.GetResult(ctx, pool.ID(id))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func newLoggingCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "logging on|off",
		Short:     "Toggle per-task checkpoint logging",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch strings.ToLower(args[0]) {
			case "on", "true":
				enabled = true
			case "off", "false":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return withClient(cmd, flags, func(ctx context.Context, c *grpc.Client) error {
				return c.SetLogging(ctx, enabled)
			})
		},
	}
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the task kinds this client knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kind := range tasks.List() {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		},
	}
}

func simpleCmd(flags *globalFlags, use, short string, run func(context.Context, *grpc.Client, io.Writer) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, flags, func(ctx context.Context, c *grpc.Client) error {
				return run(ctx, c, cmd.OutOrStdout())
			})
		},
	}
}

// withClient resolves the client config, applies flag overrides and runs fn
// with a connected client.
func withClient(cmd *cobra.Command, flags *globalFlags, fn func(context.Context, *grpc.Client) error) error {
	cfg, err := config.LoadClient(flags.configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = flags.addr
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = flags.timeout
	}

	client, err := grpc.NewClient(*cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	return fn(ctx, client)
}

// parseParams turns key=value pairs into task params. Values stay strings;
// the task kind converts them to the types it expects.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
