package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml and create the local cache",
		Long: `Init records the current settings (--server, --api-base, --data-dir and
their environment equivalents) in config.yaml and creates the cache
database. An existing config.yaml is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				a.logger.Warn("config is incomplete", "error", err)
			}

			configDir, err := paths.ResolveConfigDir(a.flags.configDir)
			if err != nil {
				return systemError{err}
			}
			path := filepath.Join(configDir, paths.ConfigFileName)
			if err := writeConfig(path, a.cfg, force); err != nil {
				return systemError{fmt.Errorf("write config: %w", err)}
			}

			cache, err := a.openCache()
			if err != nil {
				return err
			}
			if err := cache.Detach(); err != nil {
				return systemError{fmt.Errorf("finalize cache: %w", err)}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\nCache:  %s\n", path, a.cfg.DataDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config.yaml")
	return cmd
}

// writeConfig stores cfg as YAML. A config.yaml that only holds the
// first-run template is always replaced.
func writeConfig(path string, cfg types.Config, force bool) error {
	if existing, err := os.ReadFile(path); err == nil && !force && string(existing) != defaultConfigYAML {
		return nil
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
