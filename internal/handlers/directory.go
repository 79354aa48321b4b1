package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// userScoped serves CRUD over a collection whose documents belong to one user.
type userScoped[T any] struct {
	coll   db.Repository[T]
	what   string
	owner  func(*T) *string
	keep   func(dst, old *T)
	check  func(*T) error
	logger log.FieldLogger
}

func (h *userScoped[T]) owned(r *http.Request, userID string) (*T, error) {
	doc, err := h.coll.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if *h.owner(doc) != userID {
		return nil, errNotOwned
	}
	return doc, nil
}

func (h *userScoped[T]) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.coll.Find(r.Context(), bson.M{"user_id": claims.UserID}, nil)
	if err != nil {
		storeError(w, h.logger, err, h.what)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *userScoped[T]) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	var doc T
	if !readJSON(w, r, &doc) {
		return
	}
	var blank T
	h.keep(&doc, &blank)
	*h.owner(&doc) = claims.UserID
	if err := h.check(&doc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.coll.Insert(r.Context(), &doc); err != nil {
		storeError(w, h.logger, err, h.what)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *userScoped[T]) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	existing, err := h.owned(r, claims.UserID)
	if err != nil {
		storeError(w, h.logger, err, h.what)
		return
	}
	var doc T
	if !readJSON(w, r, &doc) {
		return
	}
	h.keep(&doc, existing)
	if err := h.check(&doc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.coll.Update(r.Context(), r.PathValue("id"), &doc); err != nil {
		storeError(w, h.logger, err, h.what)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *userScoped[T]) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	if _, err := h.owned(r, claims.UserID); err != nil {
		storeError(w, h.logger, err, h.what)
		return
	}
	if err := h.coll.Delete(r.Context(), r.PathValue("id")); err != nil {
		storeError(w, h.logger, err, h.what)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WorkshopHandler serves the caller's workshop directory.
type WorkshopHandler struct{ userScoped[models.Workshop] }

func NewWorkshopHandler(workshops db.WorkshopCollection, logger log.FieldLogger) *WorkshopHandler {
	return &WorkshopHandler{userScoped[models.Workshop]{
		coll:  workshops,
		what:  "Workshop",
		owner: func(w *models.Workshop) *string { return &w.UserID },
		keep: func(dst, old *models.Workshop) {
			dst.ID, dst.UserID, dst.CreatedAt = old.ID, old.UserID, old.CreatedAt
		},
		check: func(w *models.Workshop) error {
			w.Name = strings.TrimSpace(w.Name)
			if w.Name == "" {
				return errors.New("name is required")
			}
			if w.HourlyRate < 0 {
				return errors.New("hourly rate cannot be negative")
			}
			return nil
		},
		logger: logger,
	}}
}

// DriverHandler serves the caller's driver profiles.
type DriverHandler struct {
	userScoped[models.DriverProfile]
}

func NewDriverHandler(drivers db.DriverProfileCollection, logger log.FieldLogger) *DriverHandler {
	return &DriverHandler{userScoped[models.DriverProfile]{
		coll:  drivers,
		what:  "Driver",
		owner: func(d *models.DriverProfile) *string { return &d.UserID },
		keep: func(dst, old *models.DriverProfile) {
			dst.ID, dst.UserID, dst.CreatedAt = old.ID, old.UserID, old.CreatedAt
		},
		check: func(d *models.DriverProfile) error {
			d.Name = strings.TrimSpace(d.Name)
			if d.Name == "" {
				return errors.New("name is required")
			}
			if d.LicenseTypes == nil {
				d.LicenseTypes = []string{}
			}
			return nil
		},
		logger: logger,
	}}
}
