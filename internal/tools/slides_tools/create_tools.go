package slides_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/tools/common"
)

// RegisterCreateTools registers presentation creation tools with the MCP
// server. All of them are write operations and are skipped in read-only
// mode.
func RegisterCreateTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	// Create presentation tool
	createPresentationTool := mcp.NewTool("slides_create_presentation",
		mcp.WithDescription("Create a new, empty Google Slides presentation"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the new presentation"),
		),
	)

	s.AddTool(createPresentationTool, common.InstrumentedToolHandlerWithService(
		"slides_create_presentation", "slides", "write", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreatePresentation(ctx, request, sc)
		}))

	// Create slide tool
	createSlideTool := mcp.NewTool("slides_create_slide",
		mcp.WithDescription("Append a slide to a presentation using a predefined layout"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The ID of the presentation"),
		),
		mcp.WithString("layout",
			mcp.Description("Predefined layout: BLANK, TITLE, TITLE_AND_BODY, SECTION_HEADER, ... (default: BLANK)"),
		),
	)

	s.AddTool(createSlideTool, common.InstrumentedToolHandlerWithService(
		"slides_create_slide", "slides", "write", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateSlide(ctx, request, sc)
		}))

	// Add text to slide tool
	addTextTool := mcp.NewTool("slides_add_text_to_slide",
		mcp.WithDescription("Place a text box on a slide. Position and size are in points; the slide is identified by its object ID."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The ID of the presentation"),
		),
		mcp.WithString("slideId",
			mcp.Required(),
			mcp.Description("Object ID of the slide (from slides_list_slides)"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text content to place on the slide"),
		),
		mcp.WithNumber("x",
			mcp.Description("Horizontal position in points (default: 50)"),
		),
		mcp.WithNumber("y",
			mcp.Description("Vertical position in points (default: 50)"),
		),
		mcp.WithNumber("width",
			mcp.Description("Text box width in points (default: 400)"),
		),
		mcp.WithNumber("height",
			mcp.Description("Text box height in points (default: 100)"),
		),
	)

	s.AddTool(addTextTool, common.InstrumentedToolHandlerWithService(
		"slides_add_text_to_slide", "slides", "write", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddTextToSlide(ctx, request, sc)
		}))

	return nil
}

func handleCreatePresentation(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.CreatePresentation(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create presentation: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Presentation created successfully!\nTitle: %s\nID: %s", info.Title, info.ID)), nil
}

func handleCreateSlide(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, ok := args["presentationId"].(string)
	if !ok || presentationID == "" {
		return mcp.NewToolResultError("presentationId is required"), nil
	}

	layout := ""
	if layoutVal, ok := args["layout"].(string); ok {
		layout = layoutVal
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slideID, err := client.CreateSlide(ctx, presentationID, layout)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create slide: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Slide created successfully!\nSlide ID: %s", slideID)), nil
}

func handleAddTextToSlide(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	presentationID, ok := args["presentationId"].(string)
	if !ok || presentationID == "" {
		return mcp.NewToolResultError("presentationId is required"), nil
	}

	slideID, ok := args["slideId"].(string)
	if !ok || slideID == "" {
		return mcp.NewToolResultError("slideId is required"), nil
	}

	text, ok := args["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	x, y := 50.0, 50.0
	width, height := 400.0, 100.0
	if v, ok := args["x"].(float64); ok {
		x = v
	}
	if v, ok := args["y"].(float64); ok {
		y = v
	}
	if v, ok := args["width"].(float64); ok && v > 0 {
		width = v
	}
	if v, ok := args["height"].(float64); ok && v > 0 {
		height = v
	}

	client, err := getSlidesClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	elementID, err := client.AddTextBox(ctx, presentationID, slideID, text, x, y, width, height)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add text to slide: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Text added successfully!\nElement ID: %s\nSlide ID: %s", elementID, slideID)), nil
}
