package handler

import (
	"net/http"

	"contest_judge/internal/api/middleware"
	"contest_judge/internal/common"
)

// caller reads the authenticated user from the request, answering 401 when it is missing.
func caller(w http.ResponseWriter, r *http.Request) (userID string, isAdmin bool, ok bool) {
	userID, ok = middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return "", false, false
	}
	return userID, middleware.IsAdmin(r.Context()), true
}

func wantsWait(r *http.Request) bool {
	return r.URL.Query().Get("wait") == "true"
}
