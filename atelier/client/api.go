// Package client is the Go consumer of the atelier HTTP surface: a
// thin API wrapper plus the session state container that drives
// auto-save reconciliation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"atelier/atelier/types"

	"github.com/google/uuid"
)

// SessionRecord mirrors the persisted session document as the server
// returns it.
type SessionRecord struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"userId"`
	Name          string              `json:"name"`
	ChatHistory   types.ChatHistory   `json:"chatHistory"`
	GeneratedCode types.GeneratedCode `json:"generatedCode"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type SessionSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
	Error   string          `json:"error"`
}

// API is a stateless-ish HTTP client; the only thing it holds is the
// bearer token captured at login.
type API struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs a previously issued credential (load-at-startup).
func (a *API) SetToken(token string) { a.token = token }

// Token returns the current credential, empty after ClearToken.
func (a *API) Token() string { return a.token }

// ClearToken drops the credential (logout).
func (a *API) ClearToken() { a.token = "" }

func (a *API) Register(ctx context.Context, email, password string) (string, error) {
	env, err := a.call(ctx, http.MethodPost, "/auth/register", types.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	a.token = env.Token
	return env.Token, nil
}

func (a *API) Login(ctx context.Context, email, password string) (string, error) {
	env, err := a.call(ctx, http.MethodPost, "/auth/login", types.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	a.token = env.Token
	return env.Token, nil
}

func (a *API) Generate(ctx context.Context, history types.ChatHistory, currentCode *types.GeneratedCode) (types.GeneratedCode, error) {
	env, err := a.call(ctx, http.MethodPost, "/ai/generate", types.GenerateRequest{ChatHistory: history, CurrentCode: currentCode})
	if err != nil {
		return types.GeneratedCode{}, err
	}
	var code types.GeneratedCode
	if err := json.Unmarshal(env.Data, &code); err != nil {
		return types.GeneratedCode{}, err
	}
	return code, nil
}

func (a *API) CreateSession(ctx context.Context, name string) (*SessionRecord, error) {
	env, err := a.call(ctx, http.MethodPost, "/sessions/create", types.CreateSessionRequest{Name: name})
	if err != nil {
		return nil, err
	}
	var record SessionRecord
	if err := json.Unmarshal(env.Data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (a *API) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	env, err := a.call(ctx, http.MethodGet, "/sessions/list", nil)
	if err != nil {
		return nil, err
	}
	var summaries []SessionSummary
	if err := json.Unmarshal(env.Data, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (a *API) SessionDetails(ctx context.Context, id uuid.UUID) (*SessionRecord, error) {
	env, err := a.call(ctx, http.MethodGet, "/sessions/details/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	var record SessionRecord
	if err := json.Unmarshal(env.Data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (a *API) UpdateSession(ctx context.Context, id uuid.UUID, req types.UpdateSessionRequest) (*SessionRecord, error) {
	env, err := a.call(ctx, http.MethodPut, "/sessions/update/"+id.String(), req)
	if err != nil {
		return nil, err
	}
	var record SessionRecord
	if err := json.Unmarshal(env.Data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (a *API) call(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("bad response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%s (status %d)", env.Error, resp.StatusCode)
	}
	return &env, nil
}
