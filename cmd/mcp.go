package cmd

import (
	"context"
	"fmt"
	"strings"

	"proof/internal/api"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing codebase Q&A tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	client := newClient()

	s := mcpserver.NewMCPServer("proof", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(askCodebaseTool(), makeAskHandler(client))
	s.AddTool(suggestRefactorTool(), makeRefactorHandler(client))
	s.AddTool(searchHistoryTool(), makeHistoryHandler(client))
	s.AddTool(listCodebaseFilesTool(), makeListFilesHandler(client))
	s.AddTool(getFileTool(), makeGetFileHandler(client))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func askCodebaseTool() mcp.Tool {
	return mcp.NewTool("ask_codebase",
		mcp.WithDescription("Ask a natural-language question about the loaded codebase. Returns an answer with cited file paths, line ranges and code excerpts."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to ask about the codebase"),
		),
		mcp.WithString("tags",
			mcp.Description("Optional comma-separated tags to record with the question"),
		),
	)
}

func suggestRefactorTool() mcp.Tool {
	return mcp.NewTool("suggest_refactor",
		mcp.WithDescription("Get specific refactor suggestions for a topic, with affected files, line ranges and before/after code."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("What to refactor, e.g. 'error handling patterns'"),
		),
	)
}

func searchHistoryTool() mcp.Tool {
	return mcp.NewTool("search_history",
		mcp.WithDescription("Search the recent Q&A history. Both filters are optional and combined server-side."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("search",
			mcp.Description("Free-text match over past questions and answers"),
		),
		mcp.WithString("tag",
			mcp.Description("Exact tag to filter by"),
		),
	)
}

func listCodebaseFilesTool() mcp.Tool {
	return mcp.NewTool("list_codebase_files",
		mcp.WithDescription("List all files in the codebase currently loaded on the backend."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

func getFileTool() mcp.Tool {
	return mcp.NewTool("get_file",
		mcp.WithDescription("Fetch the content of one file from the loaded codebase."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the codebase root"),
		),
	)
}

// --- Handler factories ---

func makeAskHandler(client *api.Client) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := strings.TrimSpace(req.GetString("question", ""))
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		var tags []string
		if raw := req.GetString("tags", ""); raw != "" {
			tags = normalizeTags(strings.Split(raw, ","))
		}

		answer, err := client.Ask(ctx, question, tags)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatAnswer(answer.Answer, answer.Snippets)), nil
	}
}

func makeRefactorHandler(client *api.Client) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic := strings.TrimSpace(req.GetString("topic", ""))
		if topic == "" {
			return mcp.NewToolResultError("topic is required"), nil
		}

		res, err := client.Refactor(ctx, topic)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("refactor failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatAnswer(res.Suggestions, res.Snippets)), nil
	}
}

func makeHistoryHandler(client *api.Client) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		search := req.GetString("search", "")
		tag := strings.ToLower(strings.TrimSpace(req.GetString("tag", "")))

		entries, err := client.History(ctx, search, tag)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText("No matching Q&A records."), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Recent Q&A (%d records)\n\n", len(entries))
		for _, e := range entries {
			fmt.Fprintf(&sb, "### #%d %s\n\n", e.ID, e.Question)
			if len(e.Tags) > 0 {
				fmt.Fprintf(&sb, "**Tags:** %s  \n", strings.Join(e.Tags, ", "))
			}
			fmt.Fprintf(&sb, "%s\n\n", e.Answer)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeListFilesHandler(client *api.Client) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		manifest, err := client.Files(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list files failed: %v", err)), nil
		}
		if manifest.FileCount == 0 {
			return mcp.NewToolResultText("No codebase loaded — load one with the proof CLI first."), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Loaded codebase (%d files)\n\n", manifest.FileCount)
		for _, f := range manifest.Files {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeGetFileHandler(client *api.Client) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}

		fc, err := client.FileContent(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get file failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("## %s (%d lines)\n\n```\n%s\n```", fc.Path, fc.LineCount, fc.Content)), nil
	}
}

// --- Formatting helpers ---

func formatAnswer(text string, snippets []api.Snippet) string {
	var sb strings.Builder
	sb.WriteString(text)

	for i, s := range snippets {
		fmt.Fprintf(&sb, "\n\n### Snippet %d: `%s`\n\n", i+1, s.File)
		if s.HasLines() {
			fmt.Fprintf(&sb, "**Lines:** %d–%d  \n", s.StartLine, s.EndLine)
		}
		if s.Description != "" {
			fmt.Fprintf(&sb, "%s\n", s.Description)
		}
		fmt.Fprintf(&sb, "\n```\n%s\n```\n", s.Code)
	}
	return sb.String()
}
