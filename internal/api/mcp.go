package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/skillmap/internal/assistant"
	"github.com/kalambet/skillmap/internal/catalog"
	"github.com/kalambet/skillmap/internal/extract"
	"github.com/kalambet/skillmap/internal/learning"
	"github.com/kalambet/skillmap/internal/recommend"
	"github.com/kalambet/skillmap/internal/skill"
	"github.com/kalambet/skillmap/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store     *storage.Store
	Catalog   *catalog.Catalog
	Extractor *extract.Extractor
	Assistant *assistant.Service
	Selector  *recommend.Selector
	Analyzer  *learning.Analyzer
}

// mcpUser is the conversation-log owner for chats that name no user.
const mcpUser = "mcp"

// NewMCPServer creates an MCP server with all skillmap tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"skillmap",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("skillmap maps volunteering activities to skills and gives growth advice."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("classify_text",
			mcp.WithDescription("Assign skill categories to an activity description."),
			mcp.WithString("text", mcp.Description("Activity description"), mcp.Required()),
			mcp.WithString("type", mcp.Description("Optional activity type, e.g. eğitim or çevre")),
		),
		mcpClassifyText(deps),
	)

	s.AddTool(
		mcp.NewTool("assistant_chat",
			mcp.WithDescription("Send a message to the volunteering assistant and get its reply."),
			mcp.WithString("message", mcp.Description("The message to send"), mcp.Required()),
			mcp.WithString("user_id", mcp.Description("Optional user whose skills the reply should use")),
		),
		mcpAssistantChat(deps),
	)

	s.AddTool(
		mcp.NewTool("learning_analysis",
			mcp.WithDescription("Report a user's skill levels, gaps, recommendations, and milestones."),
			mcp.WithString("user_id", mcp.Description("User ID"), mcp.Required()),
		),
		mcpLearningAnalysis(deps),
	)

	s.AddTool(
		mcp.NewTool("skill_recommendation",
			mcp.WithDescription("Get the growth tip for a skill at a proficiency level."),
			mcp.WithString("skill", mcp.Description("Skill key or Turkish label, e.g. teamwork or Liderlik"), mcp.Required()),
			mcp.WithString("level", mcp.Description("Level key or label: new, beginner, advanced, expert"), mcp.Required()),
		),
		mcpSkillRecommendation(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"skillmap://catalog/categories",
			"Skill Categories",
			mcp.WithResourceDescription("All skill categories with labels and keywords"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCategories(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"skillmap://catalog/activity-types",
			"Activity Types",
			mcp.WithResourceDescription("Accepted activity types and the skills each implies"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceActivityTypes(deps),
	)

	return s
}

func mcpClassifyText(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil || strings.TrimSpace(text) == "" {
			return mcpError("text is required"), nil
		}
		typ := req.GetString("type", "")

		cats := deps.Extractor.Extract(ctx, text, typ)
		return mcpJSON(ExtractResponse{
			Skills:     cats,
			Labels:     skill.Labels(cats),
			Confidence: deps.Extractor.Scores(cats, text),
		})
	}
}

func mcpAssistantChat(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}
		userID := req.GetString("user_id", "")

		var c assistant.Context
		owner := mcpUser
		if userID != "" {
			acts, err := deps.Store.ListActivitiesByUser(userID)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to load activities: %v", err)), nil
			}
			c = assistant.Context{Categories: skill.Tally(acts).Ranked(), ActivityCount: len(acts)}
			owner = userID
		}

		reply := deps.Assistant.Process(owner, message, c)
		return mcpText(reply.Response), nil
	}
}

func mcpLearningAnalysis(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcpError("user_id is required"), nil
		}
		if _, err := deps.Store.GetUser(userID); errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("user %s not found", userID)), nil
		} else if err != nil {
			return mcpError(fmt.Sprintf("failed to get user: %v", err)), nil
		}

		acts, err := deps.Store.ListActivitiesByUser(userID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load activities: %v", err)), nil
		}
		return mcpJSON(deps.Analyzer.Analyze(userID, skill.Tally(acts), len(acts), time.Now()))
	}
}

func mcpSkillRecommendation(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawSkill, err := req.RequireString("skill")
		if err != nil {
			return mcpError("skill is required"), nil
		}
		rawLevel, err := req.RequireString("level")
		if err != nil {
			return mcpError("level is required"), nil
		}
		cat, ok := skill.Parse(rawSkill)
		if !ok {
			return mcpError(fmt.Sprintf("unknown skill %q", rawSkill)), nil
		}
		level, ok := skill.ParseLevel(rawLevel)
		if !ok {
			return mcpError(fmt.Sprintf("unknown level %q", rawLevel)), nil
		}
		return mcpText(deps.Selector.Recommendation(cat, level)), nil
	}
}

func mcpResourceCategories(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		out := make([]SkillInfo, 0, len(skill.All()))
		for _, c := range skill.All() {
			out = append(out, SkillInfo{Key: c, Label: c.Label(), Keywords: deps.Catalog.Categories[c].Keywords})
		}
		return jsonResource(req.Params.URI, out)
	}
}

func mcpResourceActivityTypes(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(req.Params.URI, deps.Catalog.ActivityTypes)
	}
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
