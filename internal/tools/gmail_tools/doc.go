// Package gmail_tools implements the Gmail MCP tools: inbox listing and
// reading, triage labeling, drafting and sending.
//
// Label mutations go through the triage manager so that categorizing a
// message swaps its triage label in a single Gmail modify call. The label
// tools accept either a single message ID or an array of IDs; batched calls
// report per-message success and failure instead of aborting on the first
// error.
package gmail_tools
