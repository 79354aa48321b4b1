package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExpenseCategory is the symbolic tag of an expense.
type ExpenseCategory string

const (
	CategoryFuel        ExpenseCategory = "fuel"
	CategoryInsurance   ExpenseCategory = "insurance"
	CategoryWash        ExpenseCategory = "wash"
	CategoryMaintenance ExpenseCategory = "maintenance"
	CategoryTollParking ExpenseCategory = "toll_parking"
	CategoryTaxesOther  ExpenseCategory = "taxes_other"
	CategoryAccessory   ExpenseCategory = "accessory"
)

// ExpenseCategories lists every category in display order.
func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		CategoryFuel,
		CategoryInsurance,
		CategoryWash,
		CategoryMaintenance,
		CategoryTollParking,
		CategoryTaxesOther,
		CategoryAccessory,
	}
}

// IsValidExpenseCategory checks if a category is valid
func IsValidExpenseCategory(c ExpenseCategory) bool {
	for _, known := range ExpenseCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is money spent on a vehicle.
type Expense struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleID   string             `json:"vehicle_id" bson:"vehicle_id"`
	Description string             `json:"description" bson:"description"`
	Date        string             `json:"date" bson:"date"` // YYYY-MM-DD
	Amount      float64            `json:"amount" bson:"amount"`
	Category    ExpenseCategory    `json:"category" bson:"category"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
