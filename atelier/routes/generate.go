package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"atelier/atelier/auth"
	"atelier/atelier/config"
	"atelier/atelier/controllers"
	"atelier/atelier/middlewares"
	"atelier/atelier/types"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

func GenerateRoutes(ctrl *controllers.GenerateController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /ai/generate : one blocking generation round trip
		gr.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req types.GenerateRequest
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, err)
				return
			}
			code, err := ctrl.Generate(r.Context(), req)
			if err != nil {
				writeError(w, err)
				return
			}
			writeData(w, http.StatusOK, code)
		})
	})

	// GET /ai/generate/ws : streaming variant. The token rides in the
	// first frame because browser websocket clients cannot set headers.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}

		var input struct {
			Token           string                `json:"token"`
			GenerateRequest types.GenerateRequest `json:"generate_request"`
		}
		if err := json.Unmarshal(data, &input); err != nil {
			writeWSError(ctx, conn, "invalid json")
			conn.Close(websocket.StatusPolicyViolation, "invalid json")
			return
		}

		if _, err := auth.UserIDFromToken(input.Token, []byte(cfg.JWTSecret)); err != nil {
			writeWSError(ctx, conn, "unauthorized")
			conn.Close(websocket.StatusPolicyViolation, "unauthorized")
			return
		}

		ch, err := ctrl.Stream(ctx, input.GenerateRequest)
		if err != nil {
			writeWSError(ctx, conn, err.Error())
			conn.Close(websocket.StatusInternalError, "stream error")
			return
		}

		var full strings.Builder
		for chunk := range ch {
			full.WriteString(chunk)
			frame, _ := json.Marshal(map[string]string{"type": "chunk", "text": chunk})
			if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
				return
			}
		}

		code, err := ctrl.ParseCompletion(full.String())
		if err != nil {
			writeWSError(ctx, conn, err.Error())
			conn.Close(websocket.StatusInternalError, "malformed response")
			return
		}

		frame, _ := json.Marshal(map[string]interface{}{"type": "result", "data": code})
		if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	})

	return r
}

func writeWSError(ctx context.Context, conn *websocket.Conn, msg string) {
	frame, _ := json.Marshal(map[string]string{"type": "error", "error": msg})
	_ = conn.Write(ctx, websocket.MessageText, frame)
}
