// Package gmail provides Gmail API integration for triaging mail.
//
// The package supports:
//   - Listing inbox messages, optionally restricted to untriaged mail
//   - Fetching full messages with plain-text body extraction
//   - Label catalog access and single-call label mutations, which back the
//     triage.Store interface
//   - Creating the triage labels on first use, tolerating Gmail's
//     space/hyphen equivalence in label names
//   - Drafting replies, listing drafts and sent mail, and sending email
//
// Clients are created per account:
//
//	client, err := gmail.NewClientForAccount(ctx, "work")
//	if err != nil {
//		// No valid OAuth token for the account
//	}
//	msgs, err := client.ListMessages(ctx, gmail.ListOptions{NewerThanDays: 7})
//
// All durable state lives in Gmail. The client caches nothing about
// messages or labels between calls.
package gmail
