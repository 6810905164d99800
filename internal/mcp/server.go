package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfenderov/sitegen/internal/elasticsearch"
	"github.com/mfenderov/sitegen/internal/pipeline"
	"github.com/mfenderov/sitegen/internal/processor"
	"github.com/mfenderov/sitegen/internal/storage"
	"github.com/mfenderov/sitegen/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Generator runs a batch.
type Generator interface {
	Run(ctx context.Context, req models.Request) (*pipeline.Run, error)
}

// Searcher queries the site index.
type Searcher interface {
	Search(ctx context.Context, query string, opts elasticsearch.SearchOptions) ([]models.IndexedSite, error)
}

// Server exposes generation and stored sites as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	generator Generator
	store     storage.Store
	searcher  Searcher // nil if search is disabled
	processor *processor.Processor
}

type generateResult struct {
	RunID          string                   `json:"run_id"`
	Sites          []models.SiteSummary     `json:"sites"`
	Similarity     *models.SimilarityMatrix `json:"similarity,omitempty"`
	NearDuplicates []models.DuplicatePair   `json:"near_duplicates,omitempty"`
	Errors         []string                 `json:"errors,omitempty"`
}

// NewServer creates a new MCP server. searcher may be nil.
func NewServer(config Config, generator Generator, store storage.Store, searcher Searcher) (*Server, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		generator: generator,
		store:     store,
		searcher:  searcher,
		processor: processor.New(),
	}

	generateTool := mcp.NewTool("generate_sites",
		mcp.WithDescription("Generate one or more single-page sites about a topic. Returns site ids, titles and the similarity of the batch."),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Topic of the sites (3-200 characters)"),
		),
		mcp.WithNumber("pages_count",
			mcp.Description("Number of sites to generate, 1-30 (default: 1)"),
		),
		mcp.WithString("style",
			mcp.Description("educational, marketing, technical, minimalist, creative or casual (default: educational)"),
		),
		mcp.WithNumber("temperature",
			mcp.Description("Base sampling temperature, 0.1-1.5 (default: 0.8)"),
		),
		mcp.WithBoolean("randomize_temperature",
			mcp.Description("Draw each page temperature from [0.5, 1.2]"),
		),
		mcp.WithBoolean("generate_image",
			mcp.Description("Generate a header image per site (default: false)"),
		),
	)
	mcpServer.AddTool(generateTool, s.generateHandler)

	getSiteTool := mcp.NewTool("get_site",
		mcp.WithDescription("Get a generated site by id"),
		mcp.WithString("site_id",
			mcp.Required(),
			mcp.Description("Site id to retrieve"),
		),
		mcp.WithString("format",
			mcp.Description("markdown (default), html or record"),
		),
	)
	mcpServer.AddTool(getSiteTool, s.getSiteHandler)

	listTool := mcp.NewTool("list_sites",
		mcp.WithDescription("List generated sites, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of sites to return (default: 20)"),
		),
	)
	mcpServer.AddTool(listTool, s.listSitesHandler)

	if searcher != nil {
		searchTool := mcp.NewTool("search_sites",
			mcp.WithDescription("Search generated sites by query. Returns page content in markdown format."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query string"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results to return (default: 10)"),
			),
			mcp.WithString("style",
				mcp.Description("Only return sites of this style"),
			),
		)
		mcpServer.AddTool(searchTool, s.searchHandler)
	}

	return s, nil
}

func (s *Server) generateHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError("topic parameter is required"), nil
	}

	r := models.DefaultRequest()
	r.Topic = topic
	r.Pages = req.GetInt("pages_count", r.Pages)
	r.Style = models.Style(req.GetString("style", string(r.Style)))
	r.Temperature = req.GetFloat("temperature", r.Temperature)
	r.RandomizeTemperature = req.GetBool("randomize_temperature", r.RandomizeTemperature)
	r.GenerateImage = req.GetBool("generate_image", false)

	run, err := s.generator.Run(ctx, r)
	if err != nil && run == nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultError(verr.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	out := generateResult{
		RunID:          run.ID,
		Sites:          make([]models.SiteSummary, 0, len(run.Documents)),
		Similarity:     run.Similarity,
		NearDuplicates: run.NearDuplicates,
		Errors:         run.Errors,
	}
	for _, d := range run.Documents {
		out.Sites = append(out.Sites, models.Summarize(d))
	}
	return jsonResult(out)
}

func (s *Server) getSiteHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("site_id")
	if err != nil {
		return mcp.NewToolResultError("site_id parameter is required"), nil
	}
	if !models.ValidSiteID(id) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid site id: %s", id)), nil
	}

	switch format := req.GetString("format", "markdown"); format {
	case "record":
		doc, err := s.store.GetRecord(ctx, id)
		if err != nil {
			return notFoundOr(id, err), nil
		}
		return jsonResult(doc)
	case "html", "markdown":
		page, err := s.store.GetSite(ctx, id)
		if err != nil {
			return notFoundOr(id, err), nil
		}
		if format == "html" {
			return mcp.NewToolResultText(page), nil
		}
		md, err := s.processor.Convert(page)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to convert site: %v", err)), nil
		}
		return mcp.NewToolResultText(md), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format: %s", format)), nil
	}
}

func (s *Server) listSitesHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	docs, err := s.store.ListRecords(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	slices.Reverse(docs)
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	out := make([]models.SiteSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Summarize(d))
	}
	return jsonResult(out)
}

func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	opts := elasticsearch.SearchOptions{
		Limit: req.GetInt("limit", 10),
		Style: models.Style(req.GetString("style", "")),
	}

	sites, err := s.searcher.Search(ctx, query, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(sites)
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

func notFoundOr(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("site not found: %s", id))
	}
	return mcp.NewToolResultError(fmt.Sprintf("get site failed: %v", err))
}
