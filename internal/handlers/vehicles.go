package handlers

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/models"
	"github.com/ukydev/carlog/internal/schedule"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleHandler serves the vehicle resource and its quick checks.
type VehicleHandler struct {
	vehicles   db.VehicleCollection
	drivers    db.DriverProfileCollection
	dependents db.VehicleDependents
	engine     *schedule.Engine
	logger     log.FieldLogger
}

func NewVehicleHandler(vehicles db.VehicleCollection, drivers db.DriverProfileCollection, dependents db.VehicleDependents, engine *schedule.Engine, logger log.FieldLogger) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, drivers: drivers, dependents: dependents, engine: engine, logger: logger}
}

// checkDrivers confirms every driver profile on v belongs to userID.
func (h *VehicleHandler) checkDrivers(ctx context.Context, userID string, v *models.Vehicle) error {
	if err := checkOwnedRef(ctx, h.drivers, driverOwner, userID, v.DriverProfileID); err != nil {
		return err
	}
	for _, id := range v.SecondaryDriverIDs {
		if err := checkOwnedRef(ctx, h.drivers, driverOwner, userID, id); err != nil {
			return err
		}
	}
	return nil
}

// ownedVehicle loads vehicle id and checks that userID owns it.
func ownedVehicle(ctx context.Context, vehicles db.VehicleCollection, userID, id string) (*models.Vehicle, error) {
	v, err := vehicles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, errNotOwned
	}
	return v, nil
}

// prepareVehicle trims and validates client input and rewrites its dates in
// canonical form.
func prepareVehicle(v *models.Vehicle) error {
	v.Brand = strings.TrimSpace(v.Brand)
	v.Model = strings.TrimSpace(v.Model)
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	if err := v.Validate(); err != nil {
		return err
	}

	var err error
	if v.NextServiceDate, err = canonicalOptionalDate(v.NextServiceDate); err != nil {
		return errBadDate
	}
	if v.PurchaseDate, err = canonicalOptionalDate(v.PurchaseDate); err != nil {
		return errBadDate
	}
	v.LastCheckDates = schedule.Normalize(v.LastCheckDates).Strings()
	if v.SecondaryDriverIDs == nil {
		v.SecondaryDriverIDs = []string{}
	}
	return nil
}

// List returns the caller's vehicles.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	vehicles, err := db.FindVehiclesByUser(r.Context(), h.vehicles, claims.UserID)
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Create registers a vehicle for the caller.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	var v models.Vehicle
	if !readJSON(w, r, &v) {
		return
	}
	v.ID = primitive.NilObjectID
	v.UserID = claims.UserID
	if err := prepareVehicle(&v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.checkDrivers(r.Context(), claims.UserID, &v); err != nil {
		storeError(w, h.logger, err, "Driver profile")
		return
	}

	if err := h.vehicles.Insert(r.Context(), &v); err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	h.logger.WithFields(log.Fields{"vehicle_id": v.ID.Hex(), "user_id": claims.UserID}).Info("Vehicle created")
	writeJSON(w, http.StatusCreated, v)
}

// Get returns one of the caller's vehicles.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Update replaces a vehicle's editable fields. Quick-check dates are kept
// unless the body carries them.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	existing, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, id)
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}

	var v models.Vehicle
	if !readJSON(w, r, &v) {
		return
	}
	v.UserID = existing.UserID
	v.CreatedAt = existing.CreatedAt
	if v.LastCheckDates == nil {
		v.LastCheckDates = existing.LastCheckDates
	}
	if err := prepareVehicle(&v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.checkDrivers(r.Context(), claims.UserID, &v); err != nil {
		storeError(w, h.logger, err, "Driver profile")
		return
	}

	if err := h.vehicles.Update(r.Context(), id, &v); err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Delete removes a vehicle with everything recorded against it.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, id); err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	if err := db.DeleteVehicle(r.Context(), h.vehicles, h.dependents, id); err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	h.logger.WithField("vehicle_id", id).Info("Vehicle deleted")
	w.WriteHeader(http.StatusNoContent)
}

type checkView struct {
	schedule.CheckStatus
	Overdue bool `json:"overdue"`
}

type checksResponse struct {
	VehicleID string      `json:"vehicle_id"`
	Checks    []checkView `json:"checks"`
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
}

func (h *VehicleHandler) checks(v *models.Vehicle) checksResponse {
	statuses := h.engine.Statuses(schedule.FromStrings(v.LastCheckDates))
	views := make([]checkView, 0, len(statuses))
	for _, s := range statuses {
		views = append(views, checkView{CheckStatus: s, Overdue: s.Overdue()})
	}
	return checksResponse{
		VehicleID: v.ID.Hex(),
		Checks:    views,
		Completed: schedule.Completed(statuses),
		Total:     len(statuses),
	}
}

// Checks returns the derived status of every quick check.
func (h *VehicleHandler) Checks(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	writeJSON(w, http.StatusOK, h.checks(v))
}

// ToggleCheck marks a check done today or clears it, then returns the
// recomputed statuses.
func (h *VehicleHandler) ToggleCheck(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	checkID := schedule.CheckID(r.PathValue("check"))
	if !schedule.IsValidCheckID(checkID) {
		http.Error(w, "Unknown check", http.StatusNotFound)
		return
	}

	var body struct {
		Done *bool `json:"done"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.Done == nil {
		http.Error(w, "done is required", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, id)
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}

	last := h.engine.Toggle(schedule.FromStrings(v.LastCheckDates), checkID, *body.Done)
	if err := db.UpdateLastCheckDates(r.Context(), h.vehicles, id, last.Strings()); err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	v.LastCheckDates = last.Strings()

	h.logger.WithFields(log.Fields{"vehicle_id": id, "check": checkID, "done": *body.Done}).Debug("Check toggled")
	writeJSON(w, http.StatusOK, h.checks(v))
}
