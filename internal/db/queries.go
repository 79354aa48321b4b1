package db

import (
	"context"
	"fmt"

	"github.com/ukydev/carlog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Canonical dates sort lexicographically, so newest-first is a plain
// descending sort on the string field.
var newestFirst = bson.D{{Key: "date", Value: -1}}

// FindVehiclesByUser returns the vehicles owned by userID.
func FindVehiclesByUser(ctx context.Context, c VehicleCollection, userID string) ([]models.Vehicle, error) {
	return c.Find(ctx, bson.M{"user_id": userID}, bson.D{{Key: "created_at", Value: 1}})
}

// FindAllVehicles returns every vehicle regardless of owner.
func FindAllVehicles(ctx context.Context, c VehicleCollection) ([]models.Vehicle, error) {
	return c.Find(ctx, bson.M{}, nil)
}

// UpdateLastCheckDates replaces the stored quick-check dates of a vehicle.
func UpdateLastCheckDates(ctx context.Context, c VehicleCollection, vehicleID string, last map[string]string) error {
	if last == nil {
		last = map[string]string{}
	}
	return c.UpdateFields(ctx, vehicleID, bson.M{"last_check_dates": last})
}

// FindExpensesByVehicle returns a vehicle's expenses, newest first.
func FindExpensesByVehicle(ctx context.Context, c ExpenseCollection, vehicleID string) ([]models.Expense, error) {
	return c.Find(ctx, bson.M{"vehicle_id": vehicleID}, newestFirst)
}

// FindAllExpenses returns every stored expense, across all users' vehicles.
func FindAllExpenses(ctx context.Context, c ExpenseCollection) ([]models.Expense, error) {
	return c.Find(ctx, bson.M{}, nil)
}

// FindMaintenancesByVehicle returns a vehicle's maintenances, newest first.
func FindMaintenancesByVehicle(ctx context.Context, c MaintenanceCollection, vehicleID string) ([]models.Maintenance, error) {
	return c.Find(ctx, bson.M{"vehicle_id": vehicleID}, newestFirst)
}

// FindInvoicesByMaintenance returns the invoices of one maintenance.
func FindInvoicesByMaintenance(ctx context.Context, c InvoiceCollection, maintenanceID string) ([]models.Invoice, error) {
	return c.Find(ctx, bson.M{"maintenance_id": maintenanceID}, newestFirst)
}

// FindRemindersByVehicle returns the reminders pinned to a vehicle.
func FindRemindersByVehicle(ctx context.Context, c ReminderCollection, vehicleID string) ([]models.Reminder, error) {
	return c.Find(ctx, bson.M{"vehicle_id": vehicleID}, bson.D{{Key: "created_at", Value: 1}})
}

// VehicleDependents are the collections whose documents belong to a vehicle.
type VehicleDependents struct {
	Expenses     ExpenseCollection
	Maintenances MaintenanceCollection
	Invoices     InvoiceCollection
	Reminders    ReminderCollection
}

// DeleteVehicle removes a vehicle and everything recorded against it:
// expenses, reminders, maintenances and their invoices.
func DeleteVehicle(ctx context.Context, vehicles VehicleCollection, deps VehicleDependents, vehicleID string) error {
	if err := vehicles.Delete(ctx, vehicleID); err != nil {
		return err
	}

	byVehicle := bson.M{"vehicle_id": vehicleID}
	if deps.Maintenances != nil {
		maintenances, err := FindMaintenancesByVehicle(ctx, deps.Maintenances, vehicleID)
		if err != nil {
			return fmt.Errorf("list maintenances of %s: %w", vehicleID, err)
		}
		if deps.Invoices != nil && len(maintenances) > 0 {
			ids := make([]string, 0, len(maintenances))
			for _, m := range maintenances {
				ids = append(ids, m.ID.Hex())
			}
			if _, err := deps.Invoices.DeleteMany(ctx, bson.M{"maintenance_id": bson.M{"$in": ids}}); err != nil {
				return fmt.Errorf("delete invoices of %s: %w", vehicleID, err)
			}
		}
		if _, err := deps.Maintenances.DeleteMany(ctx, byVehicle); err != nil {
			return fmt.Errorf("delete maintenances of %s: %w", vehicleID, err)
		}
	}
	if deps.Expenses != nil {
		if _, err := deps.Expenses.DeleteMany(ctx, byVehicle); err != nil {
			return fmt.Errorf("delete expenses of %s: %w", vehicleID, err)
		}
	}
	if deps.Reminders != nil {
		if _, err := deps.Reminders.DeleteMany(ctx, byVehicle); err != nil {
			return fmt.Errorf("delete reminders of %s: %w", vehicleID, err)
		}
	}
	return nil
}

// DeleteMaintenance removes a maintenance and its invoices.
func DeleteMaintenance(ctx context.Context, maintenances MaintenanceCollection, invoices InvoiceCollection, id string) error {
	if err := maintenances.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := invoices.DeleteMany(ctx, bson.M{"maintenance_id": id}); err != nil {
		return fmt.Errorf("delete invoices of %s: %w", id, err)
	}
	return nil
}
