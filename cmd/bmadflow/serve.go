package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	bmadmcp "github.com/gorewood/bmadflow/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run bmadflow as a Model Context Protocol (MCP) server over stdio.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "bmad": {
        "command": "bmadflow",
        "args": ["serve"]
      }
    }
  }

Tools take the project root as projectPath, so one server can drive any
number of projects.

Available tools: bmad_init_project, bmad_list_workflows,
bmad_start_workflow, bmad_load_step, bmad_save_artifact,
bmad_complete_workflow, bmad_get_state`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, true)
			if err != nil {
				return err
			}
			a.logger.Info("serving MCP on stdio", "workflows", a.catalog.Len(), "persona_cache_ttl", a.settings.PersonaCacheTTL)
			server := bmadmcp.NewServer(buildVersion(), a.ctl)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
