package controllers

import (
	"context"

	"atelier/atelier/sources/psql/models"
	"atelier/atelier/types"

	"github.com/google/uuid"
)

const defaultSessionName = "New Project"

// SessionStore is the persistence surface for sessions. Every method
// is scoped by the owning user; a foreign-owned record reads as absent.
type SessionStore interface {
	CreateSession(ctx context.Context, userID uuid.UUID, name string) (*models.Session, error)
	ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]models.SessionSummary, error)
	GetSessionForUser(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error)
	UpdateSessionForUser(ctx context.Context, userID, sessionID uuid.UUID, name string, history types.ChatHistory, code types.GeneratedCode) (*models.Session, error)
}

// SessionCache sits in front of detail reads. All methods are best
// effort; nil is a valid cache.
type SessionCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Set(ctx context.Context, session *models.Session)
	Invalidate(ctx context.Context, id uuid.UUID)
}

type SessionController struct {
	sessions SessionStore
	cache    SessionCache
}

func NewSessionController(sessions SessionStore, cache SessionCache) *SessionController {
	return &SessionController{sessions: sessions, cache: cache}
}

func (c *SessionController) Create(ctx context.Context, userID uuid.UUID, name string) (*models.Session, error) {
	if name == "" {
		name = defaultSessionName
	}
	session, err := c.sessions.CreateSession(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(ctx, session)
	}
	return session, nil
}

func (c *SessionController) List(ctx context.Context, userID uuid.UUID) ([]models.SessionSummary, error) {
	return c.sessions.ListSessionsByUser(ctx, userID)
}

// Get checks the cache first. Ownership is re-checked on a cache hit:
// the cache is keyed by session id alone, and a hit for someone else's
// session must look exactly like a miss for a missing one.
func (c *SessionController) Get(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, sessionID); err == nil && cached != nil {
			if cached.UserID != userID {
				return nil, types.ErrNotFound
			}
			return cached, nil
		}
	}

	session, err := c.sessions.GetSessionForUser(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, types.ErrNotFound
	}
	if c.cache != nil {
		c.cache.Set(ctx, session)
	}
	return session, nil
}

// Update replaces name, transcript, and generated code wholesale. The
// owner id is pinned server-side regardless of what the request body
// carried.
func (c *SessionController) Update(ctx context.Context, userID, sessionID uuid.UUID, req types.UpdateSessionRequest) (*models.Session, error) {
	name := req.Name
	if name == "" {
		name = defaultSessionName
	}
	session, err := c.sessions.UpdateSessionForUser(ctx, userID, sessionID, name, req.ChatHistory, req.GeneratedCode)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, types.ErrNotFound
	}
	if c.cache != nil {
		c.cache.Set(ctx, session)
	}
	return session, nil
}
