package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pomodoro/zenpomo/internal/config"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the timer settings",
	}
	cmd.AddCommand(newSettingsShowCmd(a))
	cmd.AddCommand(newSettingsSetCmd(a))
	return cmd
}

func newSettingsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.loadSettings()
			if err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), settings)
			}
			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("marshal settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newSettingsSetCmd(a *app) *cobra.Command {
	var timer timerFlags

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change timer settings",
		Long:  "Writes the settings file. A running session picks the change up and restarts its plan.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.loadSettings()
			if err != nil {
				return err
			}
			cfg, err := timer.apply(cmd, settings.Timer)
			if err != nil {
				return err
			}
			settings.Timer = cfg
			if err := config.SaveSettings(a.opts.settingsPath, *settings); err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), settings)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "settings saved to %s\n", a.opts.settingsPath)
			return nil
		},
	}

	addTimerFlags(cmd, &timer)
	return cmd
}
