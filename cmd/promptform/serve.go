package main

import (
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-promptform/pkg/mcp"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			renderers, err := a.formats()
			if err != nil {
				return err
			}
			server, err := mcp.NewServer(reg, version, mcp.WithLogger(a.log()), mcp.WithRenderers(renderers))
			if err != nil {
				return err
			}
			return server.Run(cmd.Context(), &sdk.StdioTransport{})
		},
	}
}
