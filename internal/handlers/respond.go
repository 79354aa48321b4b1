package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/dates"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/middleware"
	"github.com/ukydev/carlog/internal/models"
)

const maxBodyBytes = 1 << 20

var (
	errNotOwned  = errors.New("resource belongs to another user")
	errBadDate   = errors.New("invalid date")
	errNoSession = errors.New("user context not found")
	// errBadReference marks a body field naming a record the caller cannot
	// use.
	errBadReference = errors.New("unknown reference")
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// readJSON decodes a size-limited request body into v.
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func currentUser(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, errNoSession.Error(), http.StatusUnauthorized)
		return nil, false
	}
	return claims, true
}

// storeError maps a persistence or ownership error to a status code. Records
// owned by someone else look missing.
func storeError(w http.ResponseWriter, logger log.FieldLogger, err error, what string) {
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrInvalidID), errors.Is(err, errNotOwned):
		http.Error(w, what+" not found", http.StatusNotFound)
	case errors.Is(err, errBadReference):
		http.Error(w, "Unknown "+strings.ToLower(what), http.StatusBadRequest)
	case errors.Is(err, db.ErrDuplicate):
		http.Error(w, what+" already exists", http.StatusConflict)
	default:
		logger.WithError(err).WithField("resource", what).Error("store operation failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// canonicalDate rewrites a required date in canonical form.
func canonicalDate(text string) (string, error) {
	canonical, ok := dates.Normalize(text)
	if !ok {
		return "", errBadDate
	}
	return canonical, nil
}

// canonicalOptionalDate is canonicalDate for fields that may be blank.
func canonicalOptionalDate(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	return canonicalDate(text)
}

// checkOwnedRef confirms that id, when set, names a record userID owns.
// Missing, malformed and foreign ids all give errBadReference.
func checkOwnedRef[T any](ctx context.Context, coll db.Repository[T], owner func(*T) string, userID, id string) error {
	if id == "" {
		return nil
	}
	doc, err := coll.FindByID(ctx, id)
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrInvalidID):
		return errBadReference
	case err != nil:
		return err
	case owner(doc) != userID:
		return errBadReference
	}
	return nil
}

func workshopOwner(w *models.Workshop) string    { return w.UserID }
func driverOwner(d *models.DriverProfile) string { return d.UserID }
