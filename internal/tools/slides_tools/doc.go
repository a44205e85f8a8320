// Package slides_tools implements the Google Slides MCP tools: presentation
// metadata, slide text extraction, and presentation/slide creation.
//
// Creation tools are only registered when the server is not in read-only
// mode.
package slides_tools
