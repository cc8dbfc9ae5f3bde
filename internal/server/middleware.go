package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const ctxKeyPlayer ctxKey = iota

// playerMiddleware resolves the calling player. There is no account system:
// clients mint a stable ID on install and send it with every request.
func playerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID := r.Header.Get("X-Player-ID")
		if playerID == "" {
			playerID = r.URL.Query().Get("playerId")
		}
		if playerID == "" {
			writeError(w, http.StatusUnauthorized, "player id required")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyPlayer, playerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerFrom(r *http.Request) string {
	return r.Context().Value(ctxKeyPlayer).(string)
}

func gameIDFrom(r *http.Request) string {
	return chi.URLParam(r, "gameID")
}
