package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"shelf-dcs/internal/planner"
)

// Options configures the MCP server.
type Options struct {
	Version string
	// CandidatesFile is the default replacement-candidate feed for evaluate.
	CandidatesFile      string
	EnableMermaidCharts bool
}

// Server exposes the shelf planner as MCP tools.
type Server struct {
	planner *planner.Service
	opts    Options
	sdk     *sdk.Server
}

const instructions = `Shelf planning assistant for retail planograms.
Use get_workflow_guide to see the recommended tool sequence.
Shelf edits that would push a row past the shelf width are not applied until
the caller repeats them with confirm_overflow=true.`

// NewServer creates a new MCP server backed by the planner service.
func NewServer(svc *planner.Service, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{planner: svc, opts: opts}
	s.sdk = sdk.NewServer(&sdk.Implementation{Name: "shelf-dcs", Version: opts.Version}, &sdk.ServerOptions{
		Instructions: instructions,
	})
	s.registerTools()
	return s
}

// Serve runs the server over stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("version", s.opts.Version).Msg("MCP server listening on stdio")
	return s.sdk.Run(ctx, &sdk.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.sdk.Connect(ctx, t, nil)
}
