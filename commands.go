package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-yii/framework/alias"
	"github.com/km-arc/go-yii/framework/app"
	"github.com/km-arc/go-yii/framework/providers"
)

var (
	infoColor    = color.New(color.FgCyan).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	headerColor  = color.New(color.FgGreen, color.Bold).SprintFunc()
)

// staticPrefix is where "serve" mounts @webroot.
const staticPrefix = "/static"

type rootOptions struct {
	envFiles    []string
	aliasesFile string
}

// application boots an Application for one command. The alias registry is
// built up front so that a broken aliases file is reported as an error.
func (o *rootOptions) application() (*app.Application, error) {
	a := app.New(o.envFiles...)
	cfg := a.Config()
	if o.aliasesFile != "" {
		cfg.AliasesFile = o.aliasesFile
	}
	registry, err := providers.NewAliasRegistry(cfg)
	if err != nil {
		return nil, err
	}
	a.Set("aliases", registry)
	a.Boot()
	return a, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "goyii",
		Short:         "goyii resolves path aliases and serves the application.",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "env files to load (default .env)")
	cmd.PersistentFlags().StringVar(&opts.aliasesFile, "aliases", "", "YAML file of aliases (overrides ALIASES_FILE)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newAliasCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// ── serve ────────────────────────────────────────────────────────────────────

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve /aliases and the @webroot directory over HTTP.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.application()
			if err != nil {
				return err
			}
			if err := mountRoutes(a); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
}

func mountRoutes(a *app.Application) error {
	r := a.Router()
	r.Get("/aliases", aliasesHandler(a.Aliases()))
	if _, err := os.Stat(a.Config().Paths.WebRoot); err == nil {
		if err := r.Static(staticPrefix, "@webroot"); err != nil {
			return err
		}
	} else {
		a.Warning(fmt.Sprintf("webroot %s not found, static files disabled", a.Config().Paths.WebRoot), "app")
	}
	return nil
}

func aliasesHandler(registry *alias.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"aliases": registry.All()})
	}
}

// ── alias ────────────────────────────────────────────────────────────────────

func newAliasCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Inspect path aliases.",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <alias>",
		Short: "Translate an alias into a path.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.application()
			if err != nil {
				return err
			}
			path, err := a.GetAlias(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "root <alias>",
		Short: "Show the registered alias an alias resolves through.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.application()
			if err != nil {
				return err
			}
			root, err := a.GetRootAlias(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered aliases.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.application()
			if err != nil {
				return err
			}
			return runAliasList(cmd, a.Aliases())
		},
	})
	return cmd
}

func runAliasList(cmd *cobra.Command, registry *alias.Registry) error {
	out := cmd.OutOrStdout()
	entries := registry.All()
	if len(entries) == 0 {
		fmt.Fprintln(out, infoColor("No aliases registered."))
		return nil
	}

	fmt.Fprintln(out, headerColor("Registered aliases:"))
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Alias", "Path"})
	table.SetBorder(true)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})
	for _, e := range entries {
		table.Append([]string{e.Alias, e.Path})
	}
	table.Render()
	return nil
}

// ── version ──────────────────────────────────────────────────────────────────

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the framework version.",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), successColor("goyii "+app.Version))
		},
	}
}

// contextOrBackground keeps RunE usable when a command is executed without
// ExecuteContext.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
