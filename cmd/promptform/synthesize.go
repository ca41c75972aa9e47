package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-promptform/pkg/render"
)

func synthesizeCmd(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "synthesize [file]",
		Short: "Render a prompt from a file, or from the saved form when no file is given",
		Long: `Reads an export file, an autosave payload or a bare prompt document and
renders it in the chosen format. Pass "-" to read standard input. Without a
file the form saved in --store is rendered. Nothing is written to the store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				out []byte
				err error
			)
			if len(args) == 1 {
				out, err = a.synthesizeFile(ctx, cmd, args[0], format)
			} else {
				out, err = a.synthesizeStored(ctx, format)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatParagraph, "prompt format: json, paragraph, bullet, markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func (a *app) synthesizeFile(ctx context.Context, cmd *cobra.Command, path, format string) ([]byte, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	c, err := a.scratch(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close(ctx)
	if _, err := c.Import(data); err != nil {
		return nil, importFailure(err)
	}
	return c.Render(ctx, format)
}

func (a *app) synthesizeStored(ctx context.Context, format string) ([]byte, error) {
	s, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close(ctx)
	return s.Render(ctx, format)
}
