package slides_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/slides"
	"github.com/letterrip/letterrip/internal/tools/common"
)

// RegisterReadTools registers presentation reading tools with the MCP server
func RegisterReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Get presentation tool
	getPresentationTool := mcp.NewTool("slides_get_presentation",
		mcp.WithDescription("Get presentation metadata: title, locale, slide count and page size"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The ID of the presentation (from its URL)"),
		),
	)

	s.AddTool(getPresentationTool, common.InstrumentedToolHandlerWithService(
		"slides_get_presentation", "slides", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetPresentation(ctx, request, sc)
		}))

	// List slides tool
	listSlidesTool := mcp.NewTool("slides_list_slides",
		mcp.WithDescription("List the slides of a presentation with their element types and a text preview"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The ID of the presentation"),
		),
	)

	s.AddTool(listSlidesTool, common.InstrumentedToolHandlerWithService(
		"slides_list_slides", "slides", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSlides(ctx, request, sc)
		}))

	// Get slide text tool
	getSlideTextTool := mcp.NewTool("slides_get_slide_text",
		mcp.WithDescription("Get all text content of a single slide by its position"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The ID of the presentation"),
		),
		mcp.WithNumber("slideNumber",
			mcp.Required(),
			mcp.Description("1-indexed slide position"),
		),
	)

	s.AddTool(getSlideTextTool, common.InstrumentedToolHandlerWithService(
		"slides_get_slide_text", "slides", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSlideText(ctx, request, sc)
		}))

	// Get presentation text tool
	getPresentationTextTool := mcp.NewTool("slides_get_presentation_text",
		mcp.WithDescription("Get all text content of a presentation, slide by slide"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The ID of the presentation"),
		),
	)

	s.AddTool(getPresentationTextTool, common.InstrumentedToolHandlerWithService(
		"slides_get_presentation_text", "slides", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetPresentationText(ctx, request, sc)
		}))

	return nil
}

func handleGetPresentation(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, ok := args["presentationId"].(string)
	if !ok || presentationID == "" {
		return mcp.NewToolResultError("presentationId is required"), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.GetPresentation(ctx, presentationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get presentation: %v", err)), nil
	}

	result := fmt.Sprintf("Presentation: %s\n", info.Title)
	result += fmt.Sprintf("ID: %s\n", info.ID)
	result += fmt.Sprintf("Slides: %d\n", info.SlideCount)
	if info.Locale != "" {
		result += fmt.Sprintf("Locale: %s\n", info.Locale)
	}
	if info.PageWidth > 0 && info.PageHeight > 0 {
		result += fmt.Sprintf("Page size: %.0f x %.0f %s\n", info.PageWidth, info.PageHeight, info.PageUnit)
	}

	return mcp.NewToolResultText(result), nil
}

func handleListSlides(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, ok := args["presentationId"].(string)
	if !ok || presentationID == "" {
		return mcp.NewToolResultError("presentationId is required"), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slideList, err := client.ListSlides(ctx, presentationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list slides: %v", err)), nil
	}

	return mcp.NewToolResultText(formatSlideList(slideList)), nil
}

func handleGetSlideText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, ok := args["presentationId"].(string)
	if !ok || presentationID == "" {
		return mcp.NewToolResultError("presentationId is required"), nil
	}

	slideNumberVal, ok := args["slideNumber"].(float64)
	if !ok || slideNumberVal < 1 {
		return mcp.NewToolResultError("slideNumber is required and must be >= 1"), nil
	}
	slideNumber := int(slideNumberVal)

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slide, err := client.GetSlideByNumber(ctx, presentationID, slideNumber)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get slide: %v", err)), nil
	}
	if slide == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Slide %d does not exist in this presentation", slideNumber)), nil
	}

	text := slide.Text()
	if text == "" {
		return mcp.NewToolResultText(fmt.Sprintf("Slide %d has no text content.", slideNumber)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Slide %d text:\n%s", slideNumber, text)), nil
}

func handleGetPresentationText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, ok := args["presentationId"].(string)
	if !ok || presentationID == "" {
		return mcp.NewToolResultError("presentationId is required"), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slideList, err := client.ListSlides(ctx, presentationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get presentation text: %v", err)), nil
	}

	if len(slideList) == 0 {
		return mcp.NewToolResultText("Presentation has no slides."), nil
	}

	var b strings.Builder
	for i, slide := range slideList {
		fmt.Fprintf(&b, "--- Slide %d ---\n", i+1)
		if text := slide.Text(); text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

// formatSlideList renders slides with element types and a short text preview
func formatSlideList(slideList []slides.Slide) string {
	if len(slideList) == 0 {
		return "Presentation has no slides."
	}

	result := fmt.Sprintf("Found %d slide(s):\n\n", len(slideList))
	for i, slide := range slideList {
		result += fmt.Sprintf("%d. Slide ID: %s (%d element(s))\n", i+1, slide.ObjectID, len(slide.Elements))
		for _, el := range slide.Elements {
			line := "   - " + el.Type
			if el.Text != "" {
				line += ": " + previewText(el.Text, 80)
			}
			result += line + "\n"
		}
		result += "\n"
	}
	return result
}

// previewText collapses newlines and truncates to max runes
func previewText(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
