package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/models"
)

// MaintenanceHandler serves workshop visits and their invoices.
type MaintenanceHandler struct {
	vehicles     db.VehicleCollection
	maintenances db.MaintenanceCollection
	invoices     db.InvoiceCollection
	workshops    db.WorkshopCollection
	logger       log.FieldLogger
}

func NewMaintenanceHandler(vehicles db.VehicleCollection, maintenances db.MaintenanceCollection, invoices db.InvoiceCollection, workshops db.WorkshopCollection, logger log.FieldLogger) *MaintenanceHandler {
	return &MaintenanceHandler{vehicles: vehicles, maintenances: maintenances, invoices: invoices, workshops: workshops, logger: logger}
}

type maintenanceInput struct {
	WorkshopID  string  `json:"workshop_id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Type        string  `json:"type"`
	Km          int     `json:"km"`
}

func (in maintenanceInput) apply(m *models.Maintenance) error {
	if in.Cost < 0 {
		return errors.New("cost cannot be negative")
	}
	if in.Km < 0 {
		return errors.New("km cannot be negative")
	}
	date, err := canonicalDate(in.Date)
	if err != nil {
		return err
	}
	m.WorkshopID = in.WorkshopID
	m.Date = date
	m.Description = strings.TrimSpace(in.Description)
	m.Cost = in.Cost
	m.Type = in.Type
	m.Km = in.Km
	return nil
}

func (h *MaintenanceHandler) ownedMaintenance(ctx context.Context, userID, id string) (*models.Maintenance, error) {
	m, err := h.maintenances.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedVehicle(ctx, h.vehicles, userID, m.VehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errNotOwned
		}
		return nil, err
	}
	return m, nil
}

// List returns a vehicle's maintenances, newest first.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	list, err := db.FindMaintenancesByVehicle(r.Context(), h.maintenances, v.ID.Hex())
	if err != nil {
		storeError(w, h.logger, err, "Maintenance")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create records a maintenance for a vehicle.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}

	var in maintenanceInput
	if !readJSON(w, r, &in) {
		return
	}
	m := models.Maintenance{VehicleID: v.ID.Hex()}
	if err := in.apply(&m); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := checkOwnedRef(r.Context(), h.workshops, workshopOwner, claims.UserID, m.WorkshopID); err != nil {
		storeError(w, h.logger, err, "Workshop")
		return
	}
	if err := h.maintenances.Insert(r.Context(), &m); err != nil {
		storeError(w, h.logger, err, "Maintenance")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Update edits a maintenance.
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	m, err := h.ownedMaintenance(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Maintenance")
		return
	}

	var in maintenanceInput
	if !readJSON(w, r, &in) {
		return
	}
	if err := in.apply(m); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := checkOwnedRef(r.Context(), h.workshops, workshopOwner, claims.UserID, m.WorkshopID); err != nil {
		storeError(w, h.logger, err, "Workshop")
		return
	}
	if err := h.maintenances.Update(r.Context(), m.ID.Hex(), m); err != nil {
		storeError(w, h.logger, err, "Maintenance")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Delete removes a maintenance and its invoices.
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	m, err := h.ownedMaintenance(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Maintenance")
		return
	}
	if err := db.DeleteMaintenance(r.Context(), h.maintenances, h.invoices, m.ID.Hex()); err != nil {
		storeError(w, h.logger, err, "Maintenance")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInvoices returns the invoices of a maintenance.
func (h *MaintenanceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	m, err := h.ownedMaintenance(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Maintenance")
		return
	}
	list, err := db.FindInvoicesByMaintenance(r.Context(), h.invoices, m.ID.Hex())
	if err != nil {
		storeError(w, h.logger, err, "Invoice")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateInvoice attaches an invoice to a maintenance. Status defaults to
// pending.
func (h *MaintenanceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	m, err := h.ownedMaintenance(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Maintenance")
		return
	}

	var in struct {
		Date   string               `json:"date"`
		Total  float64              `json:"total"`
		Status models.InvoiceStatus `json:"status"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.Status == "" {
		in.Status = models.InvoicePending
	}
	if !models.IsValidInvoiceStatus(in.Status) {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}
	if in.Total < 0 {
		http.Error(w, "total cannot be negative", http.StatusBadRequest)
		return
	}
	date, err := canonicalDate(in.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv := models.Invoice{MaintenanceID: m.ID.Hex(), Date: date, Total: in.Total, Status: in.Status}
	if err := h.invoices.Insert(r.Context(), &inv); err != nil {
		storeError(w, h.logger, err, "Invoice")
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// DeleteInvoice removes an invoice.
func (h *MaintenanceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	inv, err := h.invoices.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Invoice")
		return
	}
	if _, err := h.ownedMaintenance(r.Context(), claims.UserID, inv.MaintenanceID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = errNotOwned
		}
		storeError(w, h.logger, err, "Invoice")
		return
	}
	if err := h.invoices.Delete(r.Context(), inv.ID.Hex()); err != nil {
		storeError(w, h.logger, err, "Invoice")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
