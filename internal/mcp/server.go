package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dyne/textsvc/internal/service"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Catalogue is the subset of the service registry the tools call into.
type Catalogue interface {
	Entries() []service.Entry
	Run(key, input string) (string, error)
}

type Server struct {
	cat    Catalogue
	server *mcp.Server
}

func NewServer(cat Catalogue) (*Server, error) {
	if cat == nil {
		return nil, ErrMissingCatalogue
	}
	impl := &mcp.Implementation{
		Name:    "textsvc",
		Version: Version,
	}
	s := &Server{
		cat:    cat,
		server: mcp.NewServer(impl, nil),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
