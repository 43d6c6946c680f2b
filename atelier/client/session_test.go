package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"atelier/atelier/types"
	"atelier/atelier/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.InitTestLogger()
	os.Exit(m.Run())
}

// stubBackend fakes just enough of the session surface to observe
// auto-save traffic.
type stubBackend struct {
	mu          sync.Mutex
	creates     int
	updates     int
	lastUpdate  types.UpdateSessionRequest
	sessionID   uuid.UUID
	failUpdates bool

	// when set, update handlers block until the channel closes; entered
	// is signaled once per blocked call
	blockUpdate chan struct{}
	entered     chan struct{}
}

func newStubBackend() *stubBackend {
	return &stubBackend{sessionID: uuid.New()}
}

func (b *stubBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()

	r.Post("/sessions/create", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		b.creates++
		b.mu.Unlock()
		writeEnv(w, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"id":   b.sessionID.String(),
				"name": "New Project",
			},
		})
	})

	r.Put("/sessions/update/{session_id}", func(w http.ResponseWriter, req *http.Request) {
		if b.blockUpdate != nil {
			b.entered <- struct{}{}
			<-b.blockUpdate
		}
		var body types.UpdateSessionRequest
		_ = json.NewDecoder(req.Body).Decode(&body)

		b.mu.Lock()
		b.updates++
		b.lastUpdate = body
		fail := b.failUpdates
		b.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			writeEnv(w, map[string]interface{}{"success": false, "error": "boom"})
			return
		}
		writeEnv(w, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"id":            chi.URLParam(req, "session_id"),
				"name":          body.Name,
				"chatHistory":   body.ChatHistory,
				"generatedCode": body.GeneratedCode,
			},
		})
	})

	r.Post("/ai/generate", func(w http.ResponseWriter, req *http.Request) {
		writeEnv(w, map[string]interface{}{
			"success": true,
			"data":    map[string]string{"tsx": "export default B", "css": ".b{}"},
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeEnv(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (b *stubBackend) counts() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creates, b.updates
}

func TestAutoSave_PlaceholderNeverPersisted(t *testing.T) {
	backend := newStubBackend()
	srv := backend.server(t)
	session := NewSession(NewAPI(srv.URL))

	// transcript mutations with placeholder code must not hit the wire,
	// even several of them
	session.AddMessage(types.RoleUser, "a red button")
	session.AddMessage(types.RoleUser, "no really, red")
	session.SetName("still nothing to save")
	session.WaitSaves()

	creates, updates := backend.counts()
	assert.Zero(t, creates)
	assert.Zero(t, updates)
	assert.Equal(t, StateDirty, session.State())
}

func TestAutoSave_EmptyTranscriptNeverPersisted(t *testing.T) {
	backend := newStubBackend()
	srv := backend.server(t)
	session := NewSession(NewAPI(srv.URL))

	session.SetGeneratedCode(types.GeneratedCode{TSX: "real code", CSS: ".a{}"})
	session.WaitSaves()

	creates, updates := backend.counts()
	assert.Zero(t, creates)
	assert.Zero(t, updates)
}

func TestAutoSave_FirstSaveCreatesThenUpdates(t *testing.T) {
	backend := newStubBackend()
	srv := backend.server(t)
	session := NewSession(NewAPI(srv.URL))

	session.AddMessage(types.RoleUser, "a red button")
	session.SetGeneratedCode(types.GeneratedCode{TSX: "export default B", CSS: ".b{}"})
	session.WaitSaves()

	creates, updates := backend.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
	assert.Equal(t, backend.sessionID, session.ActiveID())
	assert.Equal(t, StateClean, session.State())

	// later mutations go straight to update with the captured id
	session.AddMessage(types.RoleModel, "done")
	session.WaitSaves()

	creates, updates = backend.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 2, updates)
}

func TestAutoSave_SingleFlightDropsOverlappingTriggers(t *testing.T) {
	backend := newStubBackend()
	backend.blockUpdate = make(chan struct{})
	backend.entered = make(chan struct{}, 1)
	srv := backend.server(t)
	session := NewSession(NewAPI(srv.URL))

	session.AddMessage(types.RoleUser, "a red button")
	session.SetGeneratedCode(types.GeneratedCode{TSX: "v1", CSS: ".a{}"})

	// wait until the save is parked inside the update handler
	<-backend.entered

	// these triggers land while the save is outstanding: dropped
	session.SetGeneratedCode(types.GeneratedCode{TSX: "v2", CSS: ".a{}"})
	session.SetGeneratedCode(types.GeneratedCode{TSX: "v3", CSS: ".a{}"})

	close(backend.blockUpdate)
	session.WaitSaves()

	creates, updates := backend.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
	// the persisted snapshot is v1; v3 stays unsaved until a later trigger
	assert.Equal(t, "v1", backend.lastUpdate.GeneratedCode.TSX)
	assert.Equal(t, StateClean, session.State())
}

func TestAutoSave_FailureIsSilentAndLeavesDirty(t *testing.T) {
	backend := newStubBackend()
	backend.failUpdates = true
	srv := backend.server(t)
	session := NewSession(NewAPI(srv.URL))

	session.AddMessage(types.RoleUser, "a red button")
	session.SetGeneratedCode(types.GeneratedCode{TSX: "x", CSS: "y"})
	session.WaitSaves()

	assert.Equal(t, StateDirty, session.State())
	// failures never surface through the error flag
	assert.Empty(t, session.LastError())
}

func TestLoad_ReplacesStateWholesale(t *testing.T) {
	backend := newStubBackend()
	srv := backend.server(t)
	session := NewSession(NewAPI(srv.URL))

	session.AddMessage(types.RoleUser, "pending local edit")

	record := &SessionRecord{
		ID:   backend.sessionID,
		Name: "Loaded Project",
		ChatHistory: types.ChatHistory{
			{Role: types.RoleUser, Content: "from server"},
		},
		GeneratedCode: types.GeneratedCode{TSX: "server tsx", CSS: "server css"},
	}
	session.Load(record)

	assert.Equal(t, backend.sessionID, session.ActiveID())
	assert.Equal(t, "Loaded Project", session.Name())
	require.Len(t, session.History(), 1)
	assert.Equal(t, "from server", session.History()[0].Content)
	assert.Equal(t, "server tsx", session.Code().TSX)
	assert.Equal(t, StateClean, session.State())

	// mutations after a load update the loaded session, no create
	session.SetGeneratedCode(types.GeneratedCode{TSX: "edited", CSS: "server css"})
	session.WaitSaves()

	creates, updates := backend.counts()
	assert.Zero(t, creates)
	assert.Equal(t, 1, updates)
}

func TestAsk_RoundTrip(t *testing.T) {
	backend := newStubBackend()
	srv := backend.server(t)
	session := NewSession(NewAPI(srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	code, err := session.Ask(ctx, "a red button")
	require.NoError(t, err)
	assert.Equal(t, "export default B", code.TSX)

	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, types.RoleUser, history[0].Role)
	assert.Equal(t, types.RoleModel, history[1].Role)

	session.WaitSaves()
	creates, _ := backend.counts()
	assert.Equal(t, 1, creates)
}
