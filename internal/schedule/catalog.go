// Package schedule computes due dates for the fixed set of periodic vehicle
// checks.
package schedule

// CheckID identifies one periodic check.
type CheckID string

const (
	CheckTires  CheckID = "tires"
	CheckOil    CheckID = "oil"
	CheckBrakes CheckID = "brakes"
	CheckLights CheckID = "lights"
	CheckWipers CheckID = "wipers"
)

// CheckDefinition describes one recurring check and its period.
type CheckDefinition struct {
	ID             CheckID `json:"id"`
	Label          string  `json:"label"`
	IntervalLabel  string  `json:"interval_label"`
	IntervalMonths int     `json:"interval_months"`
}

var catalog = [...]CheckDefinition{
	{ID: CheckTires, Label: "Tires", IntervalLabel: "Monthly", IntervalMonths: 1},
	{ID: CheckOil, Label: "Oil", IntervalLabel: "Every 6 months", IntervalMonths: 6},
	{ID: CheckBrakes, Label: "Brake fluid", IntervalLabel: "Every 12 months", IntervalMonths: 12},
	{ID: CheckLights, Label: "Lights", IntervalLabel: "Monthly", IntervalMonths: 1},
	{ID: CheckWipers, Label: "Wipers", IntervalLabel: "Every 6 months", IntervalMonths: 6},
}

// Catalog returns a copy of the check definitions in display order.
func Catalog() []CheckDefinition {
	out := make([]CheckDefinition, len(catalog))
	copy(out, catalog[:])
	return out
}

// Lookup finds the definition for id.
func Lookup(id CheckID) (CheckDefinition, bool) {
	for _, def := range catalog {
		if def.ID == id {
			return def, true
		}
	}
	return CheckDefinition{}, false
}

// IsValidCheckID reports whether id is part of the catalog.
func IsValidCheckID(id CheckID) bool {
	_, ok := Lookup(id)
	return ok
}
