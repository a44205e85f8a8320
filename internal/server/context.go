package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/letterrip/letterrip/internal/calendar"
	"github.com/letterrip/letterrip/internal/forms"
	"github.com/letterrip/letterrip/internal/gmail"
	"github.com/letterrip/letterrip/internal/google"
	"github.com/letterrip/letterrip/internal/instrumentation"
	"github.com/letterrip/letterrip/internal/logging"
	"github.com/letterrip/letterrip/internal/sheets"
	"github.com/letterrip/letterrip/internal/slides"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx             context.Context
	cancel          context.CancelFunc
	tokenProvider   google.TokenProvider        // nil means file-based tokens
	gmailClients    map[string]*gmail.Client    // Maps account name to Gmail client
	sheetsClients   map[string]*sheets.Client   // Maps account name to Sheets client
	calendarClients map[string]*calendar.Client // Maps account name to Calendar client
	slidesClients   map[string]*slides.Client   // Maps account name to Slides client
	formsClients    map[string]*forms.Client    // Maps account name to Forms client
	metrics         *instrumentation.Metrics
	auditLogger     *instrumentation.AuditLogger
	mu              sync.RWMutex
	shutdown        bool
}

// NewServerContext creates a new server context using file-based tokens
func NewServerContext(ctx context.Context) (*ServerContext, error) {
	return NewServerContextWithProvider(ctx, nil)
}

// NewServerContextWithProvider creates a new server context whose Google API
// clients obtain tokens from the given provider (e.g. the OAuth store for the
// HTTP transport). A nil provider falls back to file-based tokens.
func NewServerContextWithProvider(ctx context.Context, provider google.TokenProvider) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		tokenProvider:   provider,
		gmailClients:    make(map[string]*gmail.Client),
		sheetsClients:   make(map[string]*sheets.Client),
		calendarClients: make(map[string]*calendar.Client),
		slidesClients:   make(map[string]*slides.Client),
		formsClients:    make(map[string]*forms.Client),
		shutdown:        false,
	}

	// Try to create the default Gmail client eagerly, but don't fail if the
	// token is missing. Clients are lazily initialized when first needed.
	if sc.hasToken("default") {
		client, err := sc.newGmailClient("default")
		if err != nil {
			slog.Warn("failed to create gmail client", logging.Account("default"), logging.Err(err))
		} else {
			sc.gmailClients["default"] = client
		}
	}

	return sc, nil
}

// hasToken reports whether a Google OAuth token is available for the account,
// consulting the token provider when one is configured.
func (sc *ServerContext) hasToken(account string) bool {
	if sc.tokenProvider != nil {
		return sc.tokenProvider.HasTokenForAccount(account)
	}
	return google.HasTokenForAccount(account)
}

func (sc *ServerContext) newGmailClient(account string) (*gmail.Client, error) {
	if sc.tokenProvider != nil {
		return gmail.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	}
	return gmail.NewClientForAccount(sc.ctx, account)
}

// Metrics returns the metrics recorder, or nil if instrumentation is disabled
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder used by instrumented tool handlers
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// AuditLogger returns the audit logger, or nil if audit logging is disabled
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger used by instrumented tool handlers
func (sc *ServerContext) SetAuditLogger(logger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = logger
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// GmailClientForAccount returns the Gmail client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) GmailClientForAccount(account string) *gmail.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.gmailClients[account]; ok {
		return client
	}

	if !sc.hasToken(account) {
		return nil
	}

	client, err := sc.newGmailClient(account)
	if err != nil {
		slog.Warn("failed to create gmail client", logging.Account(account), logging.Err(err))
		return nil
	}

	sc.gmailClients[account] = client
	return client
}

// GmailClient returns the Gmail client for the default account
func (sc *ServerContext) GmailClient() *gmail.Client {
	return sc.GmailClientForAccount("default")
}

// SetGmailClientForAccount sets the Gmail client for a specific account
func (sc *ServerContext) SetGmailClientForAccount(account string, client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClients[account] = client
}

// SetGmailClient sets the Gmail client for the default account
func (sc *ServerContext) SetGmailClient(client *gmail.Client) {
	sc.SetGmailClientForAccount("default", client)
}

// SheetsClientForAccount returns the Sheets client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) SheetsClientForAccount(account string) *sheets.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.sheetsClients[account]; ok {
		return client
	}

	if !sc.hasToken(account) {
		return nil
	}

	var client *sheets.Client
	var err error
	if sc.tokenProvider != nil {
		client, err = sheets.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	} else {
		client, err = sheets.NewClientForAccount(sc.ctx, account)
	}
	if err != nil {
		slog.Warn("failed to create sheets client", logging.Account(account), logging.Err(err))
		return nil
	}

	sc.sheetsClients[account] = client
	return client
}

// SheetsClient returns the Sheets client for the default account
func (sc *ServerContext) SheetsClient() *sheets.Client {
	return sc.SheetsClientForAccount("default")
}

// SetSheetsClientForAccount sets the Sheets client for a specific account
func (sc *ServerContext) SetSheetsClientForAccount(account string, client *sheets.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.sheetsClients[account] = client
}

// CalendarClientForAccount returns the Calendar client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) CalendarClientForAccount(account string) *calendar.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.calendarClients[account]; ok {
		return client
	}

	if !sc.hasToken(account) {
		return nil
	}

	var client *calendar.Client
	var err error
	if sc.tokenProvider != nil {
		client, err = calendar.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	} else {
		client, err = calendar.NewClientForAccount(sc.ctx, account)
	}
	if err != nil {
		slog.Warn("failed to create calendar client", logging.Account(account), logging.Err(err))
		return nil
	}

	sc.calendarClients[account] = client
	return client
}

// CalendarClient returns the Calendar client for the default account
func (sc *ServerContext) CalendarClient() *calendar.Client {
	return sc.CalendarClientForAccount("default")
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
}

// SlidesClientForAccount returns the Slides client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) SlidesClientForAccount(account string) *slides.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.slidesClients[account]; ok {
		return client
	}

	if !sc.hasToken(account) {
		return nil
	}

	var client *slides.Client
	var err error
	if sc.tokenProvider != nil {
		client, err = slides.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	} else {
		client, err = slides.NewClientForAccount(sc.ctx, account)
	}
	if err != nil {
		slog.Warn("failed to create slides client", logging.Account(account), logging.Err(err))
		return nil
	}

	sc.slidesClients[account] = client
	return client
}

// SlidesClient returns the Slides client for the default account
func (sc *ServerContext) SlidesClient() *slides.Client {
	return sc.SlidesClientForAccount("default")
}

// SetSlidesClientForAccount sets the Slides client for a specific account
func (sc *ServerContext) SetSlidesClientForAccount(account string, client *slides.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.slidesClients[account] = client
}

// FormsClientForAccount returns the Forms client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) FormsClientForAccount(account string) *forms.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.formsClients[account]; ok {
		return client
	}

	if !sc.hasToken(account) {
		return nil
	}

	var client *forms.Client
	var err error
	if sc.tokenProvider != nil {
		client, err = forms.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	} else {
		client, err = forms.NewClientForAccount(sc.ctx, account)
	}
	if err != nil {
		slog.Warn("failed to create forms client", logging.Account(account), logging.Err(err))
		return nil
	}

	sc.formsClients[account] = client
	return client
}

// FormsClient returns the Forms client for the default account
func (sc *ServerContext) FormsClient() *forms.Client {
	return sc.FormsClientForAccount("default")
}

// SetFormsClientForAccount sets the Forms client for a specific account
func (sc *ServerContext) SetFormsClientForAccount(account string, client *forms.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.formsClients[account] = client
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
