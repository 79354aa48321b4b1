package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Maintenance represents a service performed on a vehicle.
type Maintenance struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleID   string             `json:"vehicle_id" bson:"vehicle_id"`
	WorkshopID  string             `json:"workshop_id,omitempty" bson:"workshop_id,omitempty"`
	Date        string             `json:"date" bson:"date"` // YYYY-MM-DD
	Description string             `json:"description" bson:"description"`
	Cost        float64            `json:"cost" bson:"cost"`
	Type        string             `json:"type" bson:"type"` // "oil_change", "tire_rotation", "brake_service", "inspection", ...
	Km          int                `json:"km" bson:"km"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// IsValidInvoiceStatus checks if a status is valid
func IsValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceCancelled:
		return true
	default:
		return false
	}
}

// Invoice is the bill for a maintenance.
type Invoice struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MaintenanceID string             `json:"maintenance_id" bson:"maintenance_id"`
	Date          string             `json:"date" bson:"date"`
	Total         float64            `json:"total" bson:"total"`
	Status        InvoiceStatus      `json:"status" bson:"status"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
