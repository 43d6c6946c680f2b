package routes

import (
	"net/http"

	"atelier/atelier/config"
	"atelier/atelier/controllers"
	"atelier/atelier/middlewares"
	"atelier/atelier/types"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func SessionRoutes(ctrl *controllers.SessionController, export *controllers.ExportController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		gr.Post("/create", func(w http.ResponseWriter, r *http.Request) {
			userID, ok := middlewares.UserID(r.Context())
			if !ok {
				writeError(w, types.ErrUnauthorized)
				return
			}
			var req types.CreateSessionRequest
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, err)
				return
			}
			session, err := ctrl.Create(r.Context(), userID, req.Name)
			if err != nil {
				writeError(w, err)
				return
			}
			writeData(w, http.StatusCreated, session)
		})

		gr.Get("/list", func(w http.ResponseWriter, r *http.Request) {
			userID, ok := middlewares.UserID(r.Context())
			if !ok {
				writeError(w, types.ErrUnauthorized)
				return
			}
			sessions, err := ctrl.List(r.Context(), userID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeData(w, http.StatusOK, sessions)
		})

		gr.Get("/details/{session_id}", func(w http.ResponseWriter, r *http.Request) {
			userID, ok := middlewares.UserID(r.Context())
			if !ok {
				writeError(w, types.ErrUnauthorized)
				return
			}
			sessionID, err := uuid.Parse(chi.URLParam(r, "session_id"))
			if err != nil {
				// an unparseable id cannot name an existing session
				writeError(w, types.ErrNotFound)
				return
			}
			session, err := ctrl.Get(r.Context(), userID, sessionID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeData(w, http.StatusOK, session)
		})

		gr.Put("/update/{session_id}", func(w http.ResponseWriter, r *http.Request) {
			userID, ok := middlewares.UserID(r.Context())
			if !ok {
				writeError(w, types.ErrUnauthorized)
				return
			}
			sessionID, err := uuid.Parse(chi.URLParam(r, "session_id"))
			if err != nil {
				writeError(w, types.ErrNotFound)
				return
			}
			var req types.UpdateSessionRequest
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, err)
				return
			}
			session, err := ctrl.Update(r.Context(), userID, sessionID, req)
			if err != nil {
				writeError(w, err)
				return
			}
			writeData(w, http.StatusOK, session)
		})

		gr.Post("/export/{session_id}", func(w http.ResponseWriter, r *http.Request) {
			userID, ok := middlewares.UserID(r.Context())
			if !ok {
				writeError(w, types.ErrUnauthorized)
				return
			}
			sessionID, err := uuid.Parse(chi.URLParam(r, "session_id"))
			if err != nil {
				writeError(w, types.ErrNotFound)
				return
			}
			result, err := export.Export(r.Context(), userID, sessionID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeData(w, http.StatusOK, result)
		})
	})

	return r
}
