package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-promptform/pkg/interchange"
)

func exportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the saved form as an export file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			file, err := s.Export()
			if err != nil {
				return err
			}
			data, err := file.Marshal()
			if err != nil {
				return err
			}
			if output == "-" {
				return writeOutput(cmd, output, data)
			}
			if output == "" {
				output = interchange.Filename(time.Now())
			}
			if err := writeOutput(cmd, output, data); err != nil {
				return err
			}
			cmd.Printf("Exported to %s\n", filepath.Clean(output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file; "-" for stdout, a timestamped name when empty`)
	return cmd
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the saved form with an export file, autosave payload or bare document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			payload, err := s.Import(data)
			if err != nil {
				return importFailure(err)
			}
			if err := s.Flush(ctx); err != nil {
				return fmt.Errorf("save imported form: %w", err)
			}
			cmd.Printf("Imported %s (style %s)\n", payload.Kind, s.ActiveStyle())
			return nil
		},
	}
}

func resetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the saved form and its history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if err := s.Reset(ctx); err != nil {
				return err
			}
			cmd.Println("Form reset")
			return nil
		},
	}
}

// importFailure leads with the sentence the form shows for err.
func importFailure(err error) error {
	var validation *interchange.ValidationError
	var migration *interchange.MigrationError
	if errors.As(err, &validation) || errors.As(err, &migration) {
		return fmt.Errorf("%s (%w)", interchange.Message(err), err)
	}
	return err
}
