// Package cli implements the larder command-line interface: create, read,
// update, delete and search recipe-app entities against the configured API
// and keep a local cache of what was fetched.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/apiclient"
	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/internal/sqlite"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Output formats accepted by --format.
const (
	formatText  = "text"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
	server    string
	apiBase   string
	format    string
	logLevel  string
}

// app is the state shared by one command tree. The config is resolved once
// in the pre-run hook and one API client is built from it on first use.
type app struct {
	flags  rootFlags
	cfg    types.Config
	logger *slog.Logger
	client *apiclient.Client
}

// NewRootCmd creates the top-level "larder" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "larder",
		Short: "A command-line client for the recipe backend",
		Long: `Larder creates, reads, updates, deletes and searches recipes, meals,
ingredients, food items, unit types and categories on a recipe backend,
and keeps a local cache of fetched entities and past searches.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/larder)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "cache directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	pf.StringVar(&a.flags.server, "server", "", "backend origin, e.g. https://recipes.example.com")
	pf.StringVar(&a.flags.apiBase, "api-base", "", "API base path or absolute URL (default: "+types.DefaultAPIBase+")")
	pf.StringVar(&a.flags.format, "format", formatText, "output format: text, json, yaml or table")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newInitCmd(a),
		newCreateCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newListCmd(a),
		newSearchCmd(a),
		newHistoryCmd(a),
		newCacheCmd(a),
		newTypesCmd(a),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	return exitCode(err)
}

// systemError marks failures of the local environment rather than of the
// user's input.
type systemError struct {
	err error
}

func (e systemError) Error() string { return e.err.Error() }
func (e systemError) Unwrap() error { return e.err }

// exitCode maps an error to exitUserError or exitSysError. Server errors,
// transport failures and unparseable responses are system errors; 4xx
// responses and bad arguments are user errors.
func exitCode(err error) int {
	var reqErr *types.RequestError
	var sysErr systemError
	switch {
	case errors.As(err, &reqErr):
		if reqErr.StatusCode >= 500 {
			return exitSysError
		}
		return exitUserError
	case errors.As(err, &sysErr),
		errors.Is(err, types.ErrNetwork),
		errors.Is(err, types.ErrParse),
		errors.Is(err, types.ErrCacheDetached):
		return exitSysError
	default:
		return exitUserError
	}
}

// setup resolves directories, loads config.yaml and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	switch a.flags.format {
	case formatText, formatJSON, formatYAML, formatTable:
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, yaml, table)", a.flags.format)
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError{fmt.Errorf("resolve config dir: %w", err)}
	}
	v, err := loadConfig(configDir, cmd.Root().PersistentFlags())
	if err != nil {
		return systemError{err}
	}

	cfg := configFromViper(v)
	cfg.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return systemError{fmt.Errorf("resolve data dir: %w", err)}
	}
	if cfg.LogFormat != "" && cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("%w %q", types.ErrLogFormatUnknown, cfg.LogFormat)
	}

	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	a.logger.Debug("config loaded", "config_dir", configDir, "data_dir", cfg.DataDir, "server", cfg.Server, "api_base", cfg.APIBase)
	return nil
}

// apiClient returns the shared client, building it on first use. A missing
// server is reported here so offline commands work without one.
func (a *app) apiClient() (*apiclient.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := apiclient.NewFromConfig(a.cfg, apiclient.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("configure api: %w (set --server, LARDER_SERVER or server in config.yaml)", err)
	}
	a.client = c
	return c, nil
}

// openCache attaches the local cache. The caller must defer Detach.
func (a *app) openCache() (*sqlite.Backend, error) {
	b := sqlite.NewBackend()
	if err := b.Attach(a.cfg.DataDir); err != nil {
		return nil, systemError{fmt.Errorf("attach cache: %w", err)}
	}
	return b, nil
}

// status prints a human-readable note to stderr so stdout stays parseable.
func (a *app) status(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

// navigator reports redirects on stderr; the CLI has no pages to show.
func (a *app) navigator(w io.Writer) func(path string) {
	return func(path string) {
		fmt.Fprintf(w, "-> %s\n", path)
	}
}
