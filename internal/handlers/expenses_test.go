package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExpenseHandler_Create(t *testing.T) {
	f := newFixture(t)
	v := aliceVehicle()
	f.ownVehicle(v)
	f.expenses.On("Insert", mock.Anything, mock.MatchedBy(func(e *models.Expense) bool {
		return e.VehicleID == v.ID.Hex() &&
			e.Date == "2024-06-03" &&
			e.Amount == 45.5 &&
			e.Category == models.CategoryFuel
	})).Return(nil)

	w := f.do("POST", "/api/vehicles/"+v.ID.Hex()+"/expenses", map[string]interface{}{
		"description": "Full tank",
		"date":        "03/06/2024",
		"amount":      45.5,
		"category":    "fuel",
	}, alice)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2024-06-03", decode[models.Expense](t, w).Date)
}

func TestExpenseHandler_CreateInvalid(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"unknown category", map[string]interface{}{"date": "2024-06-03", "amount": 1, "category": "snacks"}},
		{"negative amount", map[string]interface{}{"date": "2024-06-03", "amount": -1, "category": "fuel"}},
		{"missing date", map[string]interface{}{"amount": 1, "category": "fuel"}},
		{"bad date", map[string]interface{}{"date": "2024/06/03", "amount": 1, "category": "fuel"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			v := aliceVehicle()
			f.ownVehicle(v)

			w := f.do("POST", "/api/vehicles/"+v.ID.Hex()+"/expenses", tt.body, alice)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestExpenseHandler_List(t *testing.T) {
	f := newFixture(t)
	v := aliceVehicle()
	f.ownVehicle(v)
	f.expenses.On("Find", mock.Anything, bson.M{"vehicle_id": v.ID.Hex()}, bson.D{{Key: "date", Value: -1}}).
		Return([]models.Expense{{Date: "2024-06-01"}, {Date: "2024-05-01"}}, nil)

	w := f.do("GET", "/api/vehicles/"+v.ID.Hex()+"/expenses", nil, alice)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Expense](t, w), 2)
}

func TestExpenseHandler_Summary(t *testing.T) {
	f := newFixture(t)
	v := aliceVehicle()
	other := aliceVehicle()
	vid, oid := v.ID.Hex(), other.ID.Hex()
	f.ownVehicle(v)
	f.expenses.On("Find", mock.Anything, bson.M{}, mock.Anything).
		Return([]models.Expense{
			{VehicleID: vid, Date: "2024-06-01", Amount: 100, Category: models.CategoryFuel},
			{VehicleID: vid, Date: "2024-02-01", Amount: 50, Category: models.CategoryWash},
			{VehicleID: vid, Date: "2023-06-01", Amount: 50, Category: models.CategoryFuel},
			{VehicleID: oid, Date: "2024-06-02", Amount: 600, Category: models.CategoryInsurance},
		}, nil)

	w := f.do("GET", "/api/vehicles/"+vid+"/expenses/summary", nil, alice)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]interface{}](t, w)
	assert.Equal(t, vid, resp["vehicle_id"])
	assert.Equal(t, 200.0, resp["total_for_vehicle"])
	assert.Equal(t, 100.0, resp["monthly_for_vehicle"])
	assert.Equal(t, 150.0, resp["yearly_for_vehicle"])
	assert.Equal(t, 50.0, resp["rest_of_year"])
	assert.Equal(t, 25.0, resp["percent_of_fleet_total"])
	assert.Equal(t, "2024-06-15", resp["as_of"])
	assert.Equal(t, map[string]interface{}{"fuel": 150.0, "wash": 50.0}, resp["by_category"])
}

func TestExpenseHandler_SummaryCountsOtherUsersInFleet(t *testing.T) {
	f := newFixture(t)
	v := aliceVehicle()
	f.ownVehicle(v)
	bobsVehicle := primitive.NewObjectID().Hex()
	f.expenses.On("Find", mock.Anything, bson.M{}, mock.Anything).
		Return([]models.Expense{
			{VehicleID: v.ID.Hex(), Date: "2024-06-01", Amount: 100, Category: models.CategoryFuel},
			{VehicleID: bobsVehicle, Date: "2024-06-03", Amount: 300, Category: models.CategoryFuel},
		}, nil)

	w := f.do("GET", "/api/vehicles/"+v.ID.Hex()+"/expenses/summary", nil, alice)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]interface{}](t, w)
	assert.Equal(t, 100.0, resp["total_for_vehicle"])
	assert.Equal(t, 25.0, resp["percent_of_fleet_total"])
}

func TestExpenseHandler_UpdateOtherUsersExpense(t *testing.T) {
	f := newFixture(t)
	v := aliceVehicle()
	f.ownVehicle(v)
	e := &models.Expense{ID: primitive.NewObjectID(), VehicleID: v.ID.Hex(), Date: "2024-06-01", Amount: 10, Category: models.CategoryFuel}
	f.expenses.On("FindByID", mock.Anything, e.ID.Hex()).Return(e, nil)

	w := f.do("PUT", "/api/expenses/"+e.ID.Hex(), map[string]interface{}{
		"date": "2024-06-01", "amount": 99, "category": "fuel",
	}, bob)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpenseHandler_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	v := aliceVehicle()
	f.ownVehicle(v)
	e := &models.Expense{ID: primitive.NewObjectID(), VehicleID: v.ID.Hex(), Date: "2024-06-01", Amount: 10, Category: models.CategoryFuel}
	f.expenses.On("FindByID", mock.Anything, e.ID.Hex()).Return(e, nil)
	f.expenses.On("Update", mock.Anything, e.ID.Hex(), mock.MatchedBy(func(u *models.Expense) bool {
		return u.Amount == 12.5 && u.Category == models.CategoryTollParking && u.VehicleID == v.ID.Hex()
	})).Return(nil)
	f.expenses.On("Delete", mock.Anything, e.ID.Hex()).Return(nil)

	w := f.do("PUT", "/api/expenses/"+e.ID.Hex(), map[string]interface{}{
		"date": "2024-06-01", "amount": 12.5, "category": "toll_parking",
	}, alice)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do("DELETE", "/api/expenses/"+e.ID.Hex(), nil, alice)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestExpenseHandler_StoreFailure(t *testing.T) {
	f := newFixture(t)
	v := aliceVehicle()
	f.ownVehicle(v)
	f.expenses.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

	w := f.do("GET", "/api/vehicles/"+v.ID.Hex()+"/expenses", nil, alice)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExpenseHandler_MissingVehicle(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID().Hex()
	f.vehicles.On("FindByID", mock.Anything, id).Return(nil, db.ErrNotFound)

	w := f.do("GET", "/api/vehicles/"+id+"/expenses/summary", nil, alice)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
