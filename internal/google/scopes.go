package google

// DefaultOAuthScopes are the Google OAuth scopes required for full MCP functionality.
// These scopes are used consistently across the application for OAuth configurations.
//
// The scopes provide access to:
//   - Gmail: read, modify, compose, send
//   - Google Sheets: read-only
//   - Google Calendar: read-only (events and free/busy)
//   - Google Slides: read and write
//   - Google Forms: read forms and responses
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail scopes
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.compose",
	"https://www.googleapis.com/auth/gmail.send",

	// Google Sheets scope
	"https://www.googleapis.com/auth/spreadsheets.readonly",

	// Google Calendar scopes
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.events.readonly",

	// Google Slides scope
	"https://www.googleapis.com/auth/presentations",

	// Google Forms scopes
	"https://www.googleapis.com/auth/forms.body.readonly",
	"https://www.googleapis.com/auth/forms.responses.readonly",
}
