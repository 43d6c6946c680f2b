package controllers

import (
	"context"
	"fmt"

	"atelier/atelier/types"

	"github.com/google/uuid"
)

// ObjectStore is the artifact sink. MinIO implements it in production.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

type ExportController struct {
	sessions SessionStore
	objects  ObjectStore
}

func NewExportController(sessions SessionStore, objects ObjectStore) *ExportController {
	return &ExportController{sessions: sessions, objects: objects}
}

type ExportResult struct {
	TSXKey string `json:"tsxKey"`
	CSSKey string `json:"cssKey"`
}

// Export writes the session's current code pair as two objects under
// the session id. Re-exports overwrite: the pair is last-writer-wins,
// so the export is too.
func (c *ExportController) Export(ctx context.Context, userID, sessionID uuid.UUID) (*ExportResult, error) {
	session, err := c.sessions.GetSessionForUser(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, types.ErrNotFound
	}
	if session.GeneratedCode.IsPlaceholder() {
		return nil, fmt.Errorf("%w: session has no generated code", types.ErrValidation)
	}

	result := &ExportResult{
		TSXKey: fmt.Sprintf("%s/component.tsx", sessionID),
		CSSKey: fmt.Sprintf("%s/component.css", sessionID),
	}
	if err := c.objects.PutObject(ctx, result.TSXKey, []byte(session.GeneratedCode.TSX), "text/plain; charset=utf-8"); err != nil {
		return nil, err
	}
	if err := c.objects.PutObject(ctx, result.CSSKey, []byte(session.GeneratedCode.CSS), "text/css; charset=utf-8"); err != nil {
		return nil, err
	}
	return result, nil
}
