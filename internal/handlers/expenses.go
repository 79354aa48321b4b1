package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/dates"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/expenses"
	"github.com/ukydev/carlog/internal/models"
)

// ExpenseHandler serves expense records and the per-vehicle summary.
type ExpenseHandler struct {
	vehicles db.VehicleCollection
	expenses db.ExpenseCollection
	clock    dates.Clock
	logger   log.FieldLogger
}

func NewExpenseHandler(vehicles db.VehicleCollection, expenses db.ExpenseCollection, clock dates.Clock, logger log.FieldLogger) *ExpenseHandler {
	return &ExpenseHandler{vehicles: vehicles, expenses: expenses, clock: clock, logger: logger}
}

type expenseInput struct {
	Description string                 `json:"description"`
	Date        string                 `json:"date"`
	Amount      float64                `json:"amount"`
	Category    models.ExpenseCategory `json:"category"`
}

func (in expenseInput) apply(e *models.Expense) error {
	if !models.IsValidExpenseCategory(in.Category) {
		return errors.New("invalid category")
	}
	if in.Amount < 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return errors.New("amount must be a non-negative number")
	}
	date, err := canonicalDate(in.Date)
	if err != nil {
		return err
	}
	e.Description = strings.TrimSpace(in.Description)
	e.Date = date
	e.Amount = in.Amount
	e.Category = in.Category
	return nil
}

// ownedExpense loads expense id and checks the caller owns its vehicle.
func (h *ExpenseHandler) ownedExpense(r *http.Request, userID string) (*models.Expense, error) {
	e, err := h.expenses.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if _, err := ownedVehicle(r.Context(), h.vehicles, userID, e.VehicleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, errNotOwned
		}
		return nil, err
	}
	return e, nil
}

// List returns a vehicle's expenses, newest first.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}
	list, err := db.FindExpensesByVehicle(r.Context(), h.expenses, v.ID.Hex())
	if err != nil {
		storeError(w, h.logger, err, "Expense")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create records an expense against a vehicle.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}

	var in expenseInput
	if !readJSON(w, r, &in) {
		return
	}
	e := models.Expense{VehicleID: v.ID.Hex()}
	if err := in.apply(&e); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.expenses.Insert(r.Context(), &e); err != nil {
		storeError(w, h.logger, err, "Expense")
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Update edits an expense.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	e, err := h.ownedExpense(r, claims.UserID)
	if err != nil {
		storeError(w, h.logger, err, "Expense")
		return
	}

	var in expenseInput
	if !readJSON(w, r, &in) {
		return
	}
	if err := in.apply(e); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.expenses.Update(r.Context(), e.ID.Hex(), e); err != nil {
		storeError(w, h.logger, err, "Expense")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	e, err := h.ownedExpense(r, claims.UserID)
	if err != nil {
		storeError(w, h.logger, err, "Expense")
		return
	}
	if err := h.expenses.Delete(r.Context(), e.ID.Hex()); err != nil {
		storeError(w, h.logger, err, "Expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	VehicleID string `json:"vehicle_id"`
	expenses.Summary
	RestOfYear float64 `json:"rest_of_year"`
	AsOf       string  `json:"as_of"`
}

// Summary totals a vehicle's expenses for the current month and year and
// its share of everything spent on every stored vehicle.
func (h *ExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := ownedVehicle(r.Context(), h.vehicles, claims.UserID, r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, err, "Vehicle")
		return
	}

	fleet, err := db.FindAllExpenses(r.Context(), h.expenses)
	if err != nil {
		storeError(w, h.logger, err, "Expense")
		return
	}

	vehicleID := v.ID.Hex()
	var own []models.Expense
	for _, e := range fleet {
		if e.VehicleID == vehicleID {
			own = append(own, e)
		}
	}

	today := h.clock.Today()
	s := expenses.Summarize(own, fleet, today)
	writeJSON(w, http.StatusOK, summaryResponse{
		VehicleID:  vehicleID,
		Summary:    s,
		RestOfYear: s.RestOfYear(),
		AsOf:       today.Canonical(),
	})
}
