package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mantonx/amalgam/internal/amalgamation/persistence"
	"github.com/mantonx/amalgam/internal/config"
	"github.com/mantonx/amalgam/internal/sources"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate-settings [settings-file]",
		Short: "check an amalgamation settings document",
		Long: "validate-settings lints the settings document against its schema and then " +
			"loads it the way the server does. Without an argument the configured settings file is checked.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				if err := config.Load(configPath); err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				path = config.Get().Storage.SettingsPath()
			}
			return validate(cmd, path)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv(config.ConfigPathEnv), "configuration file")
	return cmd
}

func validate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Validating %s ===\n", path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Fprintln(out, "✓ No settings file; defaults apply")
		return nil
	}
	if err != nil {
		fmt.Fprintf(out, "✗ Cannot read settings file: %v\n", err)
		return err
	}

	problems := persistence.LintDocument(data)
	if len(problems) == 0 {
		fmt.Fprintln(out, "✓ Document structure is valid")
	}
	for _, p := range problems {
		fmt.Fprintf(out, "✗ %v\n", p)
	}

	registry := sources.NewRegistry()
	if err := sources.RegisterBuiltins(registry); err != nil {
		return err
	}

	prefs, err := persistence.Load(path, registry)
	if err != nil {
		fmt.Fprintf(out, "✗ Document does not load: %v\n", err)
		return err
	}
	if prefs == nil {
		fmt.Fprintln(out, "✓ Document is empty; defaults apply")
	} else {
		for _, group := range prefs.Groups() {
			gp, _ := prefs.Get(group)
			fmt.Fprintf(out, "✓ %s: overall %v, %d field override(s)\n",
				group, gp.Overall().TypeIDs(), len(gp.OverrideFields()))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) found", len(problems))
	}
	return nil
}
