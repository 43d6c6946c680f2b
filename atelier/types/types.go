package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Chat roles. The model side is "model", matching what the prompt
// templates expect when the transcript is replayed.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Initial editor content. Sessions whose code still equals these
// placeholders are never persisted.
const (
	PlaceholderTSX = "// Your React component will appear here"
	PlaceholderCSS = "/* Your component's CSS will appear here */"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatHistory is the ordered transcript of a session. Stored as a
// single jsonb column, so it implements Valuer/Scanner.
type ChatHistory []ChatMessage

func (h ChatHistory) Value() (driver.Value, error) {
	if h == nil {
		h = ChatHistory{}
	}
	return json.Marshal(h)
}

func (h *ChatHistory) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*h = ChatHistory{}
		return nil
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return fmt.Errorf("chat history: unsupported scan type %T", src)
	}
}

// GeneratedCode is the current best tsx/css pair for a session.
// Last writer wins; no history beyond what the transcript implies.
type GeneratedCode struct {
	TSX string `json:"tsx"`
	CSS string `json:"css"`
}

func (c GeneratedCode) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *GeneratedCode) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = GeneratedCode{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("generated code: unsupported scan type %T", src)
	}
}

// IsPlaceholder reports whether the pair is still untouched editor
// boilerplate rather than model output.
func (c GeneratedCode) IsPlaceholder() bool {
	return c.TSX == "" || c.TSX == PlaceholderTSX
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GenerateRequest struct {
	ChatHistory ChatHistory    `json:"chatHistory"`
	CurrentCode *GeneratedCode `json:"currentCode,omitempty"`
}

type CreateSessionRequest struct {
	Name string `json:"name"`
}

// UpdateSessionRequest replaces the three mutable session fields
// wholesale. Any owner field a client smuggles in is ignored.
type UpdateSessionRequest struct {
	Name          string        `json:"name"`
	ChatHistory   ChatHistory   `json:"chatHistory"`
	GeneratedCode GeneratedCode `json:"generatedCode"`
}
