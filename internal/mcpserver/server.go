// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Byline article tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bylinehq/byline/internal/articleservice"
	"github.com/bylinehq/byline/internal/presenter"
	"github.com/bylinehq/byline/internal/store"
)

// Server wraps the MCP server with Byline tools.
type Server struct {
	mcp   *server.MCPServer
	store store.Provider
	svc   *articleservice.Service
}

// New creates a new MCP server with all Byline tools registered.
func New(st store.Provider, svc *articleservice.Service) *Server {
	s := &Server{store: st, svc: svc}

	s.mcp = server.NewMCPServer(
		"Byline",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Full-text search through article content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read the raw Markdown source of an article."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the article (e.g. username/slug.md)")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List all articles or articles under a specific author folder."),
		mcp.WithString("folder", mcp.Description("Optional author folder to list (empty for all)")),
	), s.listArticles)

	s.mcp.AddTool(mcp.NewTool("preview_article",
		mcp.WithDescription("Build the display projection of an article: selected raw fields "+
			"plus derived values such as current_state_path, description_and_tags, and "+
			"internal_utm_params. Articles MUST follow the canonical front matter format; "+
			"read it via the get_article_contract tool or the byline://article-format resource."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Author username")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Article slug")),
		mcp.WithString("only", mcp.Description("Comma-separated raw field names to include")),
		mcp.WithString("methods", mcp.Description("Comma-separated derived method names to include")),
	), s.previewArticle)

	s.mcp.AddTool(mcp.NewTool("get_article_contract",
		mcp.WithDescription("Returns the canonical Byline article format contract. "+
			"Call this before authoring article files to ensure correct structure."),
	), s.getArticleContract)

	// Resource: article format contract.
	s.mcp.AddResource(
		mcp.NewResource("byline://article-format", "Article Format Contract",
			mcp.WithResourceDescription("Canonical Markdown article format that all articles must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readArticleFormatResource,
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

func (s *Server) searchArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) previewArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := req.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := presenter.Options{
		Only:    splitCSV(req.GetString("only", "")),
		Methods: splitCSV(req.GetString("methods", "")),
	}
	if len(opts.Only) == 0 && len(opts.Methods) == 0 {
		// Sensible default projection for LLM consumers.
		opts = presenter.Options{
			Only: []string{"id", "title", "path"},
			Methods: []string{
				"current_state_path", "processed_canonical_url",
				"description_and_tags", "cached_tag_list_array",
				"title_length_classification",
			},
		}
	}

	projection, err := s.svc.Project(ctx, username, slug, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(projection, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getArticleContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ArticleFormatContract), nil
}

func (s *Server) readArticleFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "byline://article-format",
			MIMEType: "text/markdown",
			Text:     ArticleFormatContract,
		},
	}, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
