// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcpserver exposes the prompt library and the platform catalog
// over the Model Context Protocol. Each library prompt becomes an MCP
// prompt whose arguments are the template's variables, and each platform
// becomes a readable JSON resource under pipewright://platforms.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pipewright/pipewright-core/platforms"
	"github.com/pipewright/pipewright-core/prompts"
)

const serverName = "pipewright"

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// catalogURI is the resource listing every platform. Individual platforms
// live under catalogURI + "/" + key.
const catalogURI = "pipewright://platforms"

const instructions = `Pipewright provides AI prompt templates for software engineering
roles and reference data for CI/CD platforms.

Prompts are templates: supply a value for every listed argument when
requesting one. Resources under pipewright://platforms describe each
supported platform as JSON, including its config file location, required
keys, and lint rules.`

// New builds an MCP server with every prompt in the library and every
// platform in the catalog registered. This is the single place where the
// MCP surface is assembled.
func New(catalog *platforms.Catalog, library *prompts.Library) (*server.MCPServer, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if library == nil {
		return nil, fmt.Errorf("prompt library is required")
	}

	s := server.NewMCPServer(
		serverName,
		Version,
		server.WithPromptCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, p := range library.List() {
		s.AddPrompt(promptDefinition(p), promptHandler(p))
	}

	s.AddResource(catalogResource(), catalogHandler(catalog))
	for _, p := range catalog.All() {
		s.AddResource(platformResource(p), platformHandler(p))
	}

	return s, nil
}

// Serve runs the server over stdio until ctx is cancelled or stdin closes.
func Serve(ctx context.Context, s *server.MCPServer) error {
	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}

// promptDefinition maps a library prompt onto an MCP prompt. Every template
// variable becomes a required argument, matching what Render enforces.
func promptDefinition(p *prompts.Prompt) mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(p.Description)}
	for _, v := range p.Variables {
		opts = append(opts, mcp.WithArgument(v, mcp.RequiredArgument()))
	}
	return mcp.NewPrompt(p.Name, opts...)
}

func promptHandler(p *prompts.Prompt) server.PromptHandlerFunc {
	return func(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		body, err := p.Render(req.Params.Arguments)
		if err != nil {
			return nil, err
		}
		return mcp.NewGetPromptResult(p.Description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(body)),
		}), nil
	}
}

func catalogResource() mcp.Resource {
	return mcp.NewResource(
		catalogURI,
		"CI/CD platform catalog",
		mcp.WithResourceDescription("Summaries of every supported CI/CD platform"),
		mcp.WithMIMEType("application/json"),
	)
}

func catalogHandler(catalog *platforms.Catalog) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(catalogURI, catalog.All())
	}
}

func platformResource(p *platforms.Platform) mcp.Resource {
	return mcp.NewResource(
		catalogURI+"/"+p.Key,
		p.Name,
		mcp.WithResourceDescription(fmt.Sprintf("%s reference: config file, required keys, and lint rules", p.Name)),
		mcp.WithMIMEType("application/json"),
	)
}

func platformHandler(p *platforms.Platform) server.ResourceHandlerFunc {
	uri := catalogURI + "/" + p.Key
	return func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(uri, p)
	}
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
