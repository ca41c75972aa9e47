package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-promptform/pkg/renderers/tui"
)

func editCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the saved form interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			editor, err := tui.New(s.Controller, tui.WithOutput(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			preview, err := editor.Run(ctx)
			if errors.Is(err, tui.ErrAborted) {
				cmd.Println("Edit aborted; answers given so far are saved")
				return nil
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", preview.Prompt)
			return err
		},
	}
}
