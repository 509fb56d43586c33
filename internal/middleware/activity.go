package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chroniclehq/feedgen/internal/database"
)

// touchTimeout bounds the detached registry write
const touchTimeout = 10 * time.Second

// TouchFeedUser records API activity in the feed user registry so the cycle
// scheduler knows who is active. The write runs detached from the request
// lifecycle; a failed touch never fails the request.
func TouchFeedUser(users database.UserRepositoryInterface, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := mux.Vars(r)["user_id"]; ok {
				if userID, err := uuid.Parse(raw); err == nil {
					go func() {
						ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
						defer cancel()
						if err := users.Touch(ctx, userID); err != nil {
							logger.Warn("feed_user_touch_failed",
								zap.String("user_id", userID.String()),
								zap.Error(err))
						}
					}()
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
