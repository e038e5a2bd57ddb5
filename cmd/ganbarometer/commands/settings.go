package commands

import (
	"fmt"

	"ganbarometer/internal/settings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the GanbarOmeter settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		defer store.Close()

		loaded, err := settings.Resolve(cmd.Context(), store, cfg.SettingsID)
		if err != nil {
			return err
		}
		if notice := loaded.Notice(); notice != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), notice)
		}
		printSettings(cmd, loaded.Settings)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting; out-of-range values are rejected",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		defer store.Close()

		loaded, err := settings.Resolve(cmd.Context(), store, cfg.SettingsID)
		if err != nil {
			return err
		}
		updated, err := loaded.Settings.With(args[0], args[1])
		if err != nil {
			return err
		}
		if err := store.Save(cmd.Context(), cfg.SettingsID, updated); err != nil {
			return err
		}
		log.Info().Str("key", args[0]).Str("value", args[1]).Msg("Setting updated")
		printSettings(cmd, updated)
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Save(cmd.Context(), cfg.SettingsID, settings.Defaults()); err != nil {
			return err
		}
		printSettings(cmd, settings.Defaults())
		return nil
	},
}

func printSettings(cmd *cobra.Command, s settings.Settings) {
	values := map[string]any{
		"interval":             s.Interval,
		"sessionIntervalMax":   s.SessionIntervalMax,
		"normalApprenticeQty":  s.NormalApprenticeQty,
		"newKanjiWeighting":    s.NewKanjiWeighting,
		"normalMissPercent":    s.NormalMissPercent,
		"extraMissesWeighting": s.ExtraMissesWeighting,
		"maxPace":              s.MaxPace,
		"backgroundColor":      s.BackgroundColor,
		"debug":                s.Debug,
	}
	out := cmd.OutOrStdout()
	for _, key := range settings.Keys {
		fmt.Fprintf(out, "%-22s %v\n", key, values[key])
	}
	fmt.Fprintf(out, "%-22s %s\n", "version", s.Version)
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}
