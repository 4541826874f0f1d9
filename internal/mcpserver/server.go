// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the hotline directory for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/hotlines/internal/apperr"
	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/filter"
	"github.com/starford/hotlines/internal/models"
	"github.com/starford/hotlines/internal/render"
)

// Resource URIs.
const (
	CatalogURI = "hotlines://catalog"
	GuideURI   = "hotlines://search-guide"
)

// Server wraps the MCP server with directory tools.
type Server struct {
	mcp     *server.MCPServer
	catalog *catalog.Catalog
}

// New creates a new MCP server with all directory tools registered.
func New(cat *catalog.Catalog, version string) *Server {
	s := &Server{catalog: cat}

	s.mcp = server.NewMCPServer(
		"Hotlines",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_contacts",
		mcp.WithDescription("Search emergency and public-service numbers by free text, optionally within a category. "+
			"Read hotlines://search-guide for matching rules."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text; empty matches every contact")),
		mcp.WithString("category", mcp.Description("EMERGENCY, HEALTH, UTILITY, SECURITY, WELFARE, GOVERNMENT or ALL")),
		mcp.WithString("language", mcp.Description("Output language: he, en or ru (default he)")),
	), s.searchContacts)

	s.mcp.AddTool(mcp.NewTool("get_contact",
		mcp.WithDescription("Get one contact by id with all its translations."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Contact id (e.g. 100, 104-health)")),
	), s.getContact)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the directory categories in display order."),
		mcp.WithString("language", mcp.Description("Label language: he, en or ru (default he)")),
	), s.listCategories)

	s.mcp.AddResource(
		mcp.NewResource(CatalogURI, "Hotline Catalog",
			mcp.WithResourceDescription("The full contact catalog as YAML."),
			mcp.WithMIMEType("application/yaml"),
		),
		s.readCatalogResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(GuideURI, "Search Guide",
			mcp.WithResourceDescription("How search and category filtering behave."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// optionalString returns the named argument, or "" when it is absent.
func optionalString(req mcp.CallToolRequest, name string) string {
	v, err := req.RequireString(name)
	if err != nil {
		return ""
	}
	return v
}

func language(req mcp.CallToolRequest) (models.Language, error) {
	code := optionalString(req, "language")
	if code == "" {
		return models.DefaultLanguage, nil
	}
	lang, ok := models.ParseLanguage(code)
	if !ok {
		return "", fmt.Errorf("%w: %s", apperr.ErrInvalidLanguage, code)
	}
	return lang, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cat, err := models.ParseCategoryFilter(optionalString(req, "category"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lang, err := language(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	found := filter.Filter(s.catalog.Contacts(), s.catalog.Labels(), models.Criteria{SearchTerm: query, Category: cat})
	if len(found) == 0 {
		return mcp.NewToolResultText("no contacts found"), nil
	}
	return jsonResult(render.Rows(s.catalog, found, lang))
}

func (s *Server) getContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.catalog.Get(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(c)
}

type categoryEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lang, err := language(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]categoryEntry, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, categoryEntry{ID: string(c), Label: s.catalog.CategoryLabel(c, lang)})
	}
	return jsonResult(out)
}

func (s *Server) readCatalogResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/yaml",
			Text:     string(s.catalog.Raw()),
		},
	}, nil
}

func (s *Server) readGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GuideURI,
			MIMEType: "text/markdown",
			Text:     SearchGuide(s.catalog),
		},
	}, nil
}
