package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY (or edit the file) to enable record updates and uploads.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ctx.cfgPath != "" {
				fmt.Fprintf(out, "# config: %s\n", ctx.cfgPath)
			} else {
				fmt.Fprintln(out, "# config: built-in defaults")
			}
			fmt.Fprintf(out, "work_dir             = %s\n", cfg.Paths.WorkDir)
			fmt.Fprintf(out, "log_dir              = %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "api_bind             = %s\n", cfg.Paths.APIBind)
			fmt.Fprintf(out, "storage_backend      = %s\n", cfg.Storage.Backend)
			fmt.Fprintf(out, "supabase_configured  = %t\n", strings.TrimSpace(cfg.Supabase.URL) != "" && strings.TrimSpace(cfg.Supabase.ServiceRoleKey) != "")
			fmt.Fprintf(out, "noise_threshold      = %s\n", cfg.Processing.NoiseThreshold)
			fmt.Fprintf(out, "min_silence_duration = %g\n", cfg.Processing.MinSilenceDuration)
			fmt.Fprintf(out, "whisper_model        = %s\n", cfg.Processing.WhisperModel)
			fmt.Fprintf(out, "max_concurrent_jobs  = %d\n", cfg.Workflow.MaxConcurrentJobs)
			return nil
		},
	}
}
