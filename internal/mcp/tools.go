package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ListServicesInput struct{}

type ListServicesOutput struct {
	Services []ServiceOutput `json:"services"`
}

type ServiceOutput struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type RunServiceInput struct {
	Service string `json:"service" jsonschema:"key of the service to run, as returned by list_services"`
	Input   string `json:"input" jsonschema:"text to transform"`
}

type RunServiceOutput struct {
	Service string `json:"service"`
	Output  string `json:"output"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_services",
		Description: "List the available text services with their keys and display names",
	}, s.handleListServices)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_service",
		Description: "Run one text service on the given input and return its output",
	}, s.handleRunService)
}

func (s *Server) handleListServices(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListServicesInput,
) (*mcp.CallToolResult, ListServicesOutput, error) {
	entries := s.cat.Entries()
	out := ListServicesOutput{Services: make([]ServiceOutput, len(entries))}
	for i, e := range entries {
		out.Services[i] = ServiceOutput{Key: e.Key, Name: e.Name}
	}
	return nil, out, nil
}

func (s *Server) handleRunService(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RunServiceInput,
) (*mcp.CallToolResult, RunServiceOutput, error) {
	if strings.TrimSpace(input.Service) == "" {
		return nil, RunServiceOutput{}, errors.New("service is required")
	}
	out, err := s.cat.Run(input.Service, input.Input)
	if err != nil {
		return nil, RunServiceOutput{}, err
	}
	return nil, RunServiceOutput{Service: input.Service, Output: out}, nil
}
