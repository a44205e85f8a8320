// Package triage implements the label model used to track how a message
// should be handled: a small fixed set of triage categories, each backed by
// a Gmail label, with exclusivity enforced among them.
//
// The package owns no state of its own. Labels and their membership live in
// the mail store; the Manager re-reads them on every call and submits a
// single label mutation per operation. Arbitrary labels outside the triage
// set are left untouched and may coexist with a triage label.
//
// Categories:
//
//	fyi          -> FYI           informational, no action needed
//	respond      -> Respond       needs a reply
//	draft        -> Write-Reply   a reply should be drafted
//	archive      -> To-Archive    can be archived
//	needs_review -> Needs-Review  classification was uncertain
//
// Applying a category removes any other triage label in the same mutation,
// so a message never carries two triage labels at once.
package triage
