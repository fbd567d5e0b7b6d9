package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"modelhub/internal/catalog"
	"modelhub/internal/config"
	"modelhub/internal/logging"
	"modelhub/internal/registry"
)

// app carries the resolved configuration shared by every subcommand.
type app struct {
	v   *viper.Viper
	cfg config.Config
	log *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}
	var cfgPath, envFile string

	root := &cobra.Command{
		Use:           "modelhub",
		Short:         "Download, install and load local model artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			cfg := config.Defaults()
			if cfgPath != "" {
				fileCfg, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = cfg.Merge(fileCfg)
			}
			cfg = cfg.Merge(config.Overrides(a.v))
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			a.cfg = cfg
			a.log = logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}, nil)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "Path to a .yaml, .json or .toml config file")
	pf.StringVar(&envFile, "env-file", ".env", "Optional dotenv file with MODELHUB_* variables")
	pf.String("storage-root", "", "Directory holding installed artifacts (default ~/.modelhub/models)")
	pf.String("catalog-file", "", "Extra catalog (.yaml/.json) consulted before the built-ins")
	pf.String("log-level", "", "Log level: trace|debug|info|warn|error|off")
	pf.String("log-format", "", "Log format: console|json")
	pf.String("log-file", "", "Also write logs to this rotating file")
	pf.Int("chunk-size-bytes", 0, "Read size per transfer chunk (default 1MiB)")
	bindFlags(a.v, pf, "storage-root", "catalog-file", "log-level", "log-format", "log-file", "chunk-size-bytes")

	root.AddCommand(newServeCmd(a), newPullCmd(a), newListCmd(a), newCatalogCmd(a), newRmCmd(a))
	return root
}

// bindFlags maps dashed flag names to the underscored config keys.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, names ...string) {
	for _, n := range names {
		key := strings.ReplaceAll(n, "-", "_")
		_ = v.BindPFlag(key, fs.Lookup(n))
		_ = v.BindEnv(key)
	}
}

// loadEnvFile reads a dotenv file without overriding the real environment.
// A missing default file is fine; a missing explicit one is not.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (a *app) openStore() (*registry.Store, error) {
	return registry.Open(a.cfg.StorageRoot)
}

// resolver returns the catalog: the optional extra file first, then built-ins.
func (a *app) resolver() (*catalog.Resolver, error) {
	if a.cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	extra, err := catalog.LoadFile(a.cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	return catalog.NewResolver(extra, catalog.TextSource(), catalog.ImageSource()), nil
}

// splitCSV splits a comma-separated list, dropping blanks.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
