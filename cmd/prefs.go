package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"tutor/internal/model"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change theme and student profile",
}

var prefsThemeCmd = &cobra.Command{
	Use:   "theme [dark|light|toggle]",
	Short: "Show, set or toggle the theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, svc *localServices) error {
		ctx := cmd.Context()

		var theme string
		var err error
		switch {
		case len(args) == 0:
			theme, err = svc.prefs.Theme(ctx)
		case args[0] == "toggle":
			theme, err = svc.prefs.ToggleTheme(ctx)
		default:
			theme, err = svc.prefs.SetTheme(ctx, args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme)
		return nil
	}),
}

var prefsProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the student profile",
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, svc *localServices) error {
		ctx := cmd.Context()
		profile, err := svc.prefs.Profile(ctx)
		if err != nil {
			return err
		}

		changed := false
		for flag, field := range profileFields(profile) {
			if cmd.Flags().Changed(flag) {
				*field, _ = cmd.Flags().GetString(flag)
				changed = true
			}
		}
		if changed {
			if err := svc.prefs.SaveProfile(ctx, profile); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}),
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsThemeCmd, prefsProfileCmd)
	prefsCmd.PersistentFlags().BoolVar(&useClientStore, "client", false, "use the terminal client storage instead of the server storage")

	for flag := range profileFields(&model.Profile{}) {
		prefsProfileCmd.Flags().String(flag, "", "set "+flag)
	}
}

// profileFields 命令行参数名到资料字段
func profileFields(p *model.Profile) map[string]*string {
	return map[string]*string{
		"name":          &p.Name,
		"age":           &p.Age,
		"class":         &p.Class,
		"school":        &p.School,
		"parent-name":   &p.ParentName,
		"parent-number": &p.ParentNumber,
	}
}
