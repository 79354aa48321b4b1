package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/carlog/internal/auth"
	"github.com/ukydev/carlog/internal/config"
	"github.com/ukydev/carlog/internal/dates"
	"github.com/ukydev/carlog/internal/db/dbmock"
	"github.com/ukydev/carlog/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var today = dates.New(2024, time.June, 15)

type fixture struct {
	t            *testing.T
	auth         *auth.Service
	users        *dbmock.UserCollection
	vehicles     *dbmock.Repository[models.Vehicle]
	expenses     *dbmock.Repository[models.Expense]
	maintenances *dbmock.Repository[models.Maintenance]
	invoices     *dbmock.Repository[models.Invoice]
	reminders    *dbmock.Repository[models.Reminder]
	workshops    *dbmock.Repository[models.Workshop]
	drivers      *dbmock.Repository[models.DriverProfile]
	router       http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	authService, err := auth.NewService(config.AuthConfig{JWTSecret: "test-secret", TokenExp: time.Hour})
	require.NoError(t, err)

	f := &fixture{
		t:            t,
		auth:         authService,
		users:        new(dbmock.UserCollection),
		vehicles:     new(dbmock.Repository[models.Vehicle]),
		expenses:     new(dbmock.Repository[models.Expense]),
		maintenances: new(dbmock.Repository[models.Maintenance]),
		invoices:     new(dbmock.Repository[models.Invoice]),
		reminders:    new(dbmock.Repository[models.Reminder]),
		workshops:    new(dbmock.Repository[models.Workshop]),
		drivers:      new(dbmock.Repository[models.DriverProfile]),
	}
	logger, _ := test.NewNullLogger()
	f.router = NewRouter(Collections{
		Users:        f.users,
		Vehicles:     f.vehicles,
		Expenses:     f.expenses,
		Maintenances: f.maintenances,
		Invoices:     f.invoices,
		Reminders:    f.reminders,
		Workshops:    f.workshops,
		Drivers:      f.drivers,
	}, Options{Auth: authService, Clock: dates.Fixed(today), Logger: logger})

	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.vehicles.AssertExpectations(t)
		f.expenses.AssertExpectations(t)
		f.maintenances.AssertExpectations(t)
		f.invoices.AssertExpectations(t)
		f.reminders.AssertExpectations(t)
		f.workshops.AssertExpectations(t)
		f.drivers.AssertExpectations(t)
	})
	return f
}

// do sends a request through the full router as userID; an empty userID
// sends no token.
func (f *fixture) do(method, path string, body interface{}, userID string) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		oid, err := primitive.ObjectIDFromHex(userID)
		require.NoError(f.t, err)
		token, err := f.auth.GenerateToken(&models.User{ID: oid, Email: "owner@example.com"})
		require.NoError(f.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// ownVehicle registers v as a FindByID result.
func (f *fixture) ownVehicle(v *models.Vehicle) {
	f.vehicles.On("FindByID", mock.Anything, v.ID.Hex()).Return(v, nil)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

var (
	alice = primitive.NewObjectID().Hex()
	bob   = primitive.NewObjectID().Hex()
)

func aliceVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:             primitive.NewObjectID(),
		UserID:         alice,
		Brand:          "Seat",
		Model:          "Ibiza",
		Year:           2019,
		Plate:          "1234ABC",
		LastCheckDates: map[string]string{"oil": "2024-01-15"},
	}
}
