package app

import "context"

// Application wires the client, session store, gateway and exchange controller
// together for the TUI and the one-shot subcommands.
type Application struct {
	Config    Config
	Logger    *Logger
	Client    *Client
	Store     *SessionStore
	Gateway   *Gateway
	Exchanges *ExchangeController
}

func NewApplication(cfg Config, mockMode bool) *Application {
	logger := NewLogger(DefaultLogWriter())

	serverURL := cfg.ServerURL
	if mockMode {
		serverURL = "mock://"
	}
	client := NewClient(serverURL, cfg.Timeout())
	store := NewSessionStore()

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Store:     store,
		Gateway:   NewGateway(client, store, logger, cfg.DocumentType),
		Exchanges: NewExchangeController(client, store, logger, cfg.DocumentType),
	}
}

// Upload sends a document to the backend and records it as the session's
// current document on success.
func (a *Application) Upload(ctx context.Context, path string) (DocumentInfo, error) {
	doc, err := a.Client.Upload(ctx, path)
	if err != nil {
		a.Logger.Error("upload failed", map[string]interface{}{"path": path, "error": err.Error()})
		return DocumentInfo{}, err
	}
	a.Store.SetDocument(doc)
	a.Logger.Info("document uploaded", map[string]interface{}{
		"document_id": doc.ID,
		"filename":    doc.Filename,
		"chunks":      doc.TotalChunks,
	})
	return doc, nil
}
