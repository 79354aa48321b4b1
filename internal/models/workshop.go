package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workshop is a garage in the user's directory.
type Workshop struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     string             `json:"user_id" bson:"user_id"`
	Name       string             `json:"name" bson:"name"`
	Specialty  string             `json:"specialty" bson:"specialty"`
	Phone      string             `json:"phone" bson:"phone"`
	Location   string             `json:"location" bson:"location"`
	HourlyRate float64            `json:"hourly_rate" bson:"hourly_rate"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// Reminder is a free-form note pinned to a vehicle.
type Reminder struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleID string             `json:"vehicle_id" bson:"vehicle_id"`
	Title     string             `json:"title" bson:"title"`
	Subtitle  string             `json:"subtitle" bson:"subtitle"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// DriverProfile is a person who drives the user's vehicles.
type DriverProfile struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       string             `json:"user_id" bson:"user_id"`
	Name         string             `json:"name" bson:"name"`
	PhotoURL     string             `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Phone        string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Email        string             `json:"email,omitempty" bson:"email,omitempty"`
	LicenseTypes []string           `json:"license_types" bson:"license_types"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
