package controllers

import (
	"context"
	"os"
	"sort"
	"testing"
	"time"

	"atelier/atelier/sources/psql/models"
	"atelier/atelier/types"
	"atelier/atelier/utils/logging"

	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	logging.InitTestLogger()
	os.Exit(m.Run())
}

type fakeUserStore struct {
	byEmail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*models.User)}
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.byEmail[email] = user
	return user, nil
}

type fakeSessionStore struct {
	byID map[uuid.UUID]*models.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{byID: make(map[uuid.UUID]*models.Session)}
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, userID uuid.UUID, name string) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		ChatHistory:   types.ChatHistory{},
		GeneratedCode: types.GeneratedCode{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.byID[session.ID] = session
	return cloneSession(session), nil
}

func (f *fakeSessionStore) ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]models.SessionSummary, error) {
	var sessions []*models.Session
	for _, s := range f.byID {
		if s.UserID == userID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, models.SessionSummary{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt})
	}
	return summaries, nil
}

func (f *fakeSessionStore) GetSessionForUser(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error) {
	session, ok := f.byID[sessionID]
	if !ok || session.UserID != userID {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (f *fakeSessionStore) UpdateSessionForUser(ctx context.Context, userID, sessionID uuid.UUID, name string, history types.ChatHistory, code types.GeneratedCode) (*models.Session, error) {
	session, ok := f.byID[sessionID]
	if !ok || session.UserID != userID {
		return nil, nil
	}
	session.Name = name
	session.ChatHistory = append(types.ChatHistory{}, history...)
	session.GeneratedCode = code
	session.UpdatedAt = time.Now()
	return cloneSession(session), nil
}

func cloneSession(s *models.Session) *models.Session {
	c := *s
	c.ChatHistory = append(types.ChatHistory{}, s.ChatHistory...)
	return &c
}

// fakeLLM records the prompt it was given and plays back a canned reply.
type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Run(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) RunStream(ctx context.Context, prompt string) (<-chan string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan string, 1)
	ch <- f.response
	close(ch)
	return ch, nil
}

type fakeObjectStore struct {
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

// fakeCache counts hits so tests can tell where a read was served from.
type fakeCache struct {
	byID map[uuid.UUID]*models.Session
	gets int
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{byID: make(map[uuid.UUID]*models.Session)}
}

func (f *fakeCache) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	f.gets++
	return f.byID[id], nil
}

func (f *fakeCache) Set(ctx context.Context, session *models.Session) {
	f.sets++
	f.byID[session.ID] = cloneSession(session)
}

func (f *fakeCache) Invalidate(ctx context.Context, id uuid.UUID) {
	delete(f.byID, id)
}
