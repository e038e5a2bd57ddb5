// Package mcp serves the GanbarOmeter over the Model Context Protocol.
package mcp

import (
	"context"

	"ganbarometer/internal/meter"
	"ganbarometer/internal/settings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Renderer produces reports and can be told that its inputs changed.
// *meter.Meter satisfies it.
type Renderer interface {
	Render(ctx context.Context) (meter.Report, error)
	Last() (meter.Report, bool)
	Invalidate()
}

// Server holds the state for the MCP server.
type Server struct {
	meter      Renderer
	store      settings.Store
	settingsID string

	sdk *sdk.Server
}

// NewServer creates a new MCP server with every tool registered.
func NewServer(m Renderer, store settings.Store, settingsID, version string) *Server {
	s := &Server{
		meter:      m,
		store:      store,
		settingsID: settingsID,
		sdk: sdk.NewServer(&sdk.Implementation{
			Name:    "ganbarometer",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Start runs the server over stdio until the client disconnects or ctx ends.
func (s *Server) Start(ctx context.Context) error {
	log.Info().Msg("MCP Server starting Stdio loop")
	return s.sdk.Run(ctx, &sdk.StdioTransport{})
}
