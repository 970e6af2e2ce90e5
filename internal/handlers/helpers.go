package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"khata-backend/internal/middleware"
	"khata-backend/internal/models"
	"khata-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// requireUserID pulls the authenticated account-holder from the request
// context. The auth middleware guarantees it is present on protected routes;
// a missing value means the route was wired without authentication.
func requireUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return userID, true
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

// writeServiceError maps service errors onto HTTP statuses. Records outside
// the caller's ownership scope surface as not-found, never as forbidden.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "record not found")
	case errors.Is(err, models.ErrDuplicate):
		utils.Error(w, http.StatusConflict, err.Error())
	default:
		utils.Error(w, http.StatusBadRequest, err.Error())
	}
}
