package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"atelier/atelier/types"
	"atelier/atelier/utils/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaveState tracks the auto-save reconciliation cycle:
// Empty -> Dirty (mutation) -> Saving -> Clean -> Dirty (next mutation).
type SaveState int

const (
	StateEmpty SaveState = iota
	StateDirty
	StateSaving
	StateClean
)

func (s SaveState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	case StateClean:
		return "clean"
	default:
		return "unknown"
	}
}

// Session is the client-side state container: active session id,
// transcript, generated code, and flags. Every mutation triggers the
// auto-save effect.
//
// Saves are single-flight: a trigger that lands while a save is
// outstanding is dropped, not queued. A burst of edits can therefore
// leave the last edit unpersisted until a later trigger fires; that is
// accepted behavior, not a bug to paper over here.
type Session struct {
	api *API

	mu         sync.Mutex
	activeID   uuid.UUID
	name       string
	history    types.ChatHistory
	code       types.GeneratedCode
	generating bool
	lastError  string
	state      SaveState

	saving atomic.Bool
	saves  sync.WaitGroup

	// saveTimeout bounds one auto-save round trip.
	saveTimeout time.Duration
}

func NewSession(api *API) *Session {
	return &Session{
		api:         api,
		name:        "New Project",
		history:     types.ChatHistory{},
		code:        types.GeneratedCode{TSX: types.PlaceholderTSX, CSS: types.PlaceholderCSS},
		state:       StateEmpty,
		saveTimeout: 30 * time.Second,
	}
}

// StartNew resets to a fresh, unpersisted session.
func (s *Session) StartNew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = uuid.Nil
	s.name = "New Project"
	s.history = types.ChatHistory{}
	s.code = types.GeneratedCode{TSX: types.PlaceholderTSX, CSS: types.PlaceholderCSS}
	s.lastError = ""
	s.state = StateEmpty
}

// Load replaces the whole state from a fetched record. No merging with
// pending edits: an in-flight save can lose against a switch, which
// matches how session switching behaves upstream.
func (s *Session) Load(record *SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = record.ID
	s.name = record.Name
	s.history = append(types.ChatHistory{}, record.ChatHistory...)
	s.code = record.GeneratedCode
	s.lastError = ""
	s.state = StateClean
}

// AddMessage appends one transcript turn.
func (s *Session) AddMessage(role, content string) {
	s.mu.Lock()
	s.history = append(s.history, types.ChatMessage{Role: role, Content: content})
	s.state = StateDirty
	s.mu.Unlock()
	s.autoSave()
}

// SetGeneratedCode replaces the whole code pair.
func (s *Session) SetGeneratedCode(code types.GeneratedCode) {
	s.mu.Lock()
	s.code = code
	s.state = StateDirty
	s.mu.Unlock()
	s.autoSave()
}

// UpdateCode edits one half of the pair ("tsx" or "css").
func (s *Session) UpdateCode(kind, content string) {
	s.mu.Lock()
	switch kind {
	case "tsx":
		s.code.TSX = content
	case "css":
		s.code.CSS = content
	}
	s.state = StateDirty
	s.mu.Unlock()
	s.autoSave()
}

func (s *Session) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.state = StateDirty
	s.mu.Unlock()
	s.autoSave()
}

func (s *Session) SetError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

// Ask runs one generation round trip: the user turn goes into the
// transcript, the model output becomes the current code pair. The
// loading flag stops duplicate submits from the same control; it does
// not serialize against auto-saves.
func (s *Session) Ask(ctx context.Context, text string) (types.GeneratedCode, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return types.GeneratedCode{}, fmt.Errorf("generation already in progress")
	}
	s.generating = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()

	s.AddMessage(types.RoleUser, text)

	s.mu.Lock()
	history := append(types.ChatHistory{}, s.history...)
	var currentCode *types.GeneratedCode
	if !s.code.IsPlaceholder() {
		c := s.code
		currentCode = &c
	}
	s.mu.Unlock()

	code, err := s.api.Generate(ctx, history, currentCode)
	if err != nil {
		s.SetError(err.Error())
		return types.GeneratedCode{}, err
	}

	s.SetGeneratedCode(code)
	s.AddMessage(types.RoleModel, "Here is the updated component.")
	return code, nil
}

// ActiveID returns uuid.Nil while the session is unpersisted.
func (s *Session) ActiveID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Session) History() types.ChatHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(types.ChatHistory{}, s.history...)
}

func (s *Session) Code() types.GeneratedCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

func (s *Session) State() SaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// WaitSaves blocks until no auto-save is in flight. The CLI calls it
// before exiting; tests use it to observe save completion.
func (s *Session) WaitSaves() {
	s.saves.Wait()
}

// autoSave is the effect fired by every mutation.
//
// Guards, in order: untouched placeholder code or an empty transcript
// is never persisted; a save already in flight wins and the new
// trigger is silently dropped.
func (s *Session) autoSave() {
	s.mu.Lock()
	if s.code.IsPlaceholder() || len(s.history) == 0 {
		s.mu.Unlock()
		return
	}
	if !s.saving.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return
	}
	s.state = StateSaving
	snap := saveSnapshot{
		id:      s.activeID,
		name:    s.name,
		history: append(types.ChatHistory{}, s.history...),
		code:    s.code,
	}
	s.mu.Unlock()

	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		defer s.saving.Store(false)
		s.save(snap)
	}()
}

type saveSnapshot struct {
	id      uuid.UUID
	name    string
	history types.ChatHistory
	code    types.GeneratedCode
}

// save performs create-then-update for a fresh session, update
// otherwise. Failures are logged and leave the state dirty; the user
// is never interrupted by a failed auto-save.
func (s *Session) save(snap saveSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	id := snap.id
	if id == uuid.Nil {
		record, err := s.api.CreateSession(ctx, snap.name)
		if err != nil {
			logging.ErrorLogger.Error("auto-save create failed", zap.Error(err))
			s.setState(StateDirty)
			return
		}
		id = record.ID
		// Capture the id so later saves go down the update path.
		s.mu.Lock()
		s.activeID = id
		s.mu.Unlock()
	}

	_, err := s.api.UpdateSession(ctx, id, types.UpdateSessionRequest{
		Name:          snap.name,
		ChatHistory:   snap.history,
		GeneratedCode: snap.code,
	})
	if err != nil {
		logging.ErrorLogger.Error("auto-save update failed", zap.Error(err))
		s.setState(StateDirty)
		return
	}
	s.setState(StateClean)
}

func (s *Session) setState(state SaveState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
