package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/models"
)

// ReminderHandler serves the free-form notes pinned to a vehicle.
type ReminderHandler struct {
	vehicles  db.VehicleCollection
	reminders db.ReminderCollection
	logger    log.FieldLogger
}

func NewReminderHandler(vehicles db.VehicleCollection, reminders db.ReminderCollection, logger log.FieldLogger) *ReminderHandler {
	return &ReminderHandler{vehicles: vehicles, reminders: reminders, logger: logger}
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	list, err := db.FindRemindersByVehicle(r.Context(), h.reminders, v.ID.Hex())
	if err != nil {
		storeError(w, h.logger, err, "Reminder")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}

	var in struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	rem := models.Reminder{VehicleID: v.ID.Hex(), Title: in.Title, Subtitle: strings.TrimSpace(in.Subtitle)}
	if err := h.reminders.Insert(r.Context(), &rem); err != nil {
		storeError(w, h.logger, err, "Reminder")
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	rem, err := h.reminders.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Reminder")
		return
	}
	if _, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, rem.VehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = errNotOwned
		}
		storeError(w, h.logger, err, "Reminder")
		return
	}
	if err := h.reminders.Delete(r.Context(), rem.ID.Hex()); err != nil {
		storeError(w, h.logger, err, "Reminder")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
