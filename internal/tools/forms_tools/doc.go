// Package forms_tools implements the Google Forms MCP tools: form and
// question inspection plus response retrieval, tabulation and
// summarization.
//
// All tools are read-only toward Forms.
package forms_tools
