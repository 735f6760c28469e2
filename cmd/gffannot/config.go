package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys are the settings gffannot reads, with a short description.
var configKeys = map[string]string{
	keyPromoterSize:   "requested promoter length in bases",
	keyOperons:        "suppress promoters inside operons",
	keyOperonDistance: "maximum gap between operon members",
	keyFormat:         "output format (bed or gff)",
	keyTSS:            "include TSS sites in the output",
	keyWorkers:        "chromosome workers (0 = all CPUs)",
	keyCacheDir:       "directory for cached gene models",
	keyDB:             "DuckDB file written by annotate",
	keyQueryDB:        "DuckDB file read by query and summary",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gffannot configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.gffannot.yaml.",
		Example: `  gffannot config                                  # show all config
  gffannot config set annotate.promoter_size 500   # default promoter length
  gffannot config set annotate.operons true        # enable operon mode
  gffannot config get annotate.operon_distance     # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func runConfigShow(w io.Writer) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No configuration set. Config file: ~/.gffannot.yaml")
	} else {
		out, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		fmt.Fprint(w, string(out))
	}

	known := make([]string, 0, len(configKeys))
	for key := range configKeys {
		known = append(known, key)
	}
	slices.Sort(known)
	for _, key := range known {
		if !viper.IsSet(key) {
			fmt.Fprintf(w, "# %s (unset): %s\n", key, configKeys[key])
		}
	}
	keys := viper.AllKeys()
	slices.Sort(keys)
	for _, key := range keys {
		if _, ok := configKeys[key]; !ok {
			fmt.Fprintf(w, "# %s is not used by gffannot\n", key)
		}
	}
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	if _, ok := configKeys[key]; !ok {
		return fmt.Errorf("unknown config key %q", key)
	}

	// Parse boolean-like and integer values
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			viper.Set(key, n)
		} else {
			viper.Set(key, value)
		}
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
