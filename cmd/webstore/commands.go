package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"code.byted.org/khicago/webstore"
	"code.byted.org/khicago/webstore/config"
	"code.byted.org/khicago/webstore/logging"
)

// opener returns the store commands run against and a release function.
type opener func(ctx context.Context, opts globalOptions) (*webstore.Store, func() error, error)

type globalOptions struct {
	configFile string
	envFile    string
	namespace  string
	kind       string
}

func openFromConfig(ctx context.Context, opts globalOptions) (*webstore.Store, func() error, error) {
	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}

	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		return nil, nil, err
	}
	return config.Open(ctx, cfg, logging.New(cfg.Log, "webstore-cli"))
}

// newRootCmd creates the root command.
func newRootCmd(open opener) *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:   "webstore",
		Short: "Inspect and edit a webstore backend",
		Long: `A CLI tool over the configured webstore backend.
Values are JSON envelopes with optional expiration, addressed as namespace::key.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file to load before reading WEBSTORE_* variables")
	cmd.PersistentFlags().StringVarP(&opts.namespace, "namespace", "n", "", "Namespace (defaults to the configured one)")
	cmd.PersistentFlags().StringVar(&opts.kind, "kind", "", "Store kind: primary or session (defaults to the configured one)")

	// run opens the store and executes fn with the call options from flags.
	var run runner = func(fn func(ctx context.Context, s *webstore.Store, w io.Writer, callOpts []webstore.CallOption) error) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, _ []string) (err error) {
			ctx := c.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var callOpts []webstore.CallOption
			if c.Flags().Changed("namespace") {
				callOpts = append(callOpts, webstore.InNamespace(opts.namespace))
			}
			if opts.kind != "" {
				kind, err := webstore.ParseKind(opts.kind)
				if err != nil {
					return err
				}
				callOpts = append(callOpts, webstore.InKind(kind))
			}

			s, closeFn, err := open(ctx, opts)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer func() {
				if cerr := closeFn(); cerr != nil && err == nil {
					err = fmt.Errorf("closing store: %w", cerr)
				}
			}()

			return fn(ctx, s, c.OutOrStdout(), callOpts)
		}
	}

	cmd.AddCommand(
		newGetCmd(run),
		newSetCmd(run),
		newRemoveCmd(run),
		newKeysCmd(run),
		newClearNamespaceCmd(run),
		newClearCmd(run),
	)
	return cmd
}

type runner func(fn func(ctx context.Context, s *webstore.Store, w io.Writer, callOpts []webstore.CallOption) error) func(*cobra.Command, []string) error

func newGetCmd(run runner) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value of KEY as JSON, or null",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the key after reading it")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s *webstore.Store, w io.Writer, callOpts []webstore.CallOption) error {
			var v any
			var err error
			if remove {
				v, err = s.GetAndRemove(ctx, args[0], callOpts...)
			} else {
				v, err = s.Get(ctx, args[0], callOpts...)
			}
			if err != nil {
				return err
			}
			return writeJSON(w, v)
		})(c, args)
	}
	return cmd
}

func newSetCmd(run runner) *cobra.Command {
	var ttl string
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY; VALUE is parsed as JSON when valid, else kept as a string",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().StringVar(&ttl, "ttl", "", "Relative expiration such as 30s, 15m, 20h or 7d")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return run(func(ctx context.Context, s *webstore.Store, w io.Writer, callOpts []webstore.CallOption) error {
			if ttl != "" {
				callOpts = append(callOpts, webstore.ExpiresIn(ttl))
			}
			report, err := s.Set(ctx, args[0], parseValue(args[1]), callOpts...)
			if err != nil {
				return err
			}
			for _, warn := range report.Warnings {
				fmt.Fprintf(c.ErrOrStderr(), "warning: %v\n", warn)
			}
			if report.ExpiresAt.IsZero() {
				fmt.Fprintf(w, "stored %s\n", report.Key)
			} else {
				fmt.Fprintf(w, "stored %s until %s\n", report.Key, report.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"))
			}
			return nil
		})(c, args)
	}
	return cmd
}

func newRemoveCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:     "rm KEY",
		Aliases: []string{"remove"},
		Short:   "Remove KEY",
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func(ctx context.Context, s *webstore.Store, w io.Writer, callOpts []webstore.CallOption) error {
				return s.Remove(ctx, args[0], callOpts...)
			})(c, args)
		},
	}
}

func newKeysCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every raw key of the store kind, expired ones included",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, s *webstore.Store, w io.Writer, callOpts []webstore.CallOption) error {
			keys, err := s.Keys(ctx, callOpts...)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(w, k)
			}
			return nil
		}),
	}
}

func newClearNamespaceCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-namespace",
		Short: "Remove every key of the namespace",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, s *webstore.Store, w io.Writer, callOpts []webstore.CallOption) error {
			return s.ClearNamespace(ctx, callOpts...)
		}),
	}
}

func newClearCmd(run runner) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every key of the store kind",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm wiping the whole store kind")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		if !yes {
			return fmt.Errorf("refusing to clear without --yes")
		}
		return run(func(ctx context.Context, s *webstore.Store, w io.Writer, callOpts []webstore.CallOption) error {
			return s.ClearAll(ctx, callOpts...)
		})(c, args)
	}
	return cmd
}

func parseValue(raw string) any {
	var v any
	if json.Valid([]byte(raw)) && json.Unmarshal([]byte(raw), &v) == nil {
		return v
	}
	return raw
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
