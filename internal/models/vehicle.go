package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle is a car owned by a user.
type Vehicle struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             string             `bson:"user_id" json:"user_id"`
	DriverProfileID    string             `bson:"driver_profile_id,omitempty" json:"driver_profile_id,omitempty"`
	SecondaryDriverIDs []string           `bson:"secondary_driver_ids" json:"secondary_driver_ids"`
	Brand              string             `bson:"brand" json:"brand"`
	Model              string             `bson:"model" json:"model"`
	Year               int                `bson:"year" json:"year"`
	Plate              string             `bson:"plate" json:"plate"`
	Km                 int                `bson:"km" json:"km"`
	ImageURL           string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	NextServiceDate    string             `bson:"next_service_date,omitempty" json:"next_service_date,omitempty"`
	Color              string             `bson:"color" json:"color"`
	Transmission       string             `bson:"transmission" json:"transmission"`
	FuelType           string             `bson:"fuel_type" json:"fuel_type"`
	PurchaseDate       string             `bson:"purchase_date,omitempty" json:"purchase_date,omitempty"`
	// LastCheckDates holds the canonical date each quick check was last done,
	// keyed by check id.
	LastCheckDates map[string]string `bson:"last_check_dates" json:"last_check_dates"`
	CreatedAt      time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `bson:"updated_at" json:"updated_at"`
}

// Validate checks the fields a vehicle cannot be saved without.
func (v *Vehicle) Validate() error {
	switch {
	case v.Brand == "":
		return errors.New("brand is required")
	case v.Model == "":
		return errors.New("model is required")
	case v.Plate == "":
		return errors.New("plate is required")
	case v.Year < 1886 || v.Year > time.Now().Year()+1:
		return errors.New("year is out of range")
	case v.Km < 0:
		return errors.New("km cannot be negative")
	}
	return nil
}
