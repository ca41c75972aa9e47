package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func stylesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List the main styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tLABEL\tCATEGORY")
			for _, style := range reg.Styles {
				fmt.Fprintf(w, "%s\t%s\t%s\n", style.Key, style.Label, style.Category)
			}
			return w.Flush()
		},
	}
}

func presetsCmd(a *app) *cobra.Command {
	var styleKey string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List presets, optionally those usable with one style",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			presets := reg.Presets
			if styleKey != "" {
				if _, ok := reg.Style(styleKey); !ok {
					return fmt.Errorf("unknown style %q", styleKey)
				}
				presets = reg.PresetsForStyle(styleKey)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tLABEL\tSTYLE")
			for _, preset := range presets {
				fmt.Fprintf(w, "%s\t%s\t%s\n", preset.Key, preset.Label, preset.Style)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&styleKey, "style", "", "only presets usable with this style key")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print promptform version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}
