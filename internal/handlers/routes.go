package handlers

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/auth"
	"github.com/ukydev/carlog/internal/dates"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/middleware"
	"github.com/ukydev/carlog/internal/schedule"
)

// Collections are the stores the API reads and writes.
type Collections struct {
	Users        db.UserCollection
	Vehicles     db.VehicleCollection
	Expenses     db.ExpenseCollection
	Maintenances db.MaintenanceCollection
	Invoices     db.InvoiceCollection
	Reminders    db.ReminderCollection
	Workshops    db.WorkshopCollection
	Drivers      db.DriverProfileCollection
}

// Options configure NewRouter.
type Options struct {
	Auth   *auth.Service
	Clock  dates.Clock
	Logger log.FieldLogger
	// Ping reports storage health for /health; nil means always healthy.
	Ping func(ctx context.Context) error
	// LoginLimit caps login and register attempts per client per minute;
	// zero disables the limit.
	LoginLimit int
	// TrustProxy lets the login limit read X-Forwarded-For.
	TrustProxy bool
}

// NewRouter builds the API mux with authentication, access logging and
// panic recovery applied.
func NewRouter(c Collections, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	engine := schedule.NewEngine(opts.Clock)

	authH := NewAuthHandler(opts.Auth, c.Users, logger)
	vehicles := NewVehicleHandler(c.Vehicles, c.Drivers, db.VehicleDependents{
		Expenses:     c.Expenses,
		Maintenances: c.Maintenances,
		Invoices:     c.Invoices,
		Reminders:    c.Reminders,
	}, engine, logger)
	expenses := NewExpenseHandler(c.Vehicles, c.Expenses, opts.Clock, logger)
	maintenances := NewMaintenanceHandler(c.Vehicles, c.Maintenances, c.Invoices, c.Workshops, logger)
	reminders := NewReminderHandler(c.Vehicles, c.Reminders, logger)
	workshops := NewWorkshopHandler(c.Workshops, logger)
	drivers := NewDriverHandler(c.Drivers, logger)

	limited := func(h http.HandlerFunc) http.Handler { return h }
	if opts.LoginLimit > 0 {
		limiter := middleware.NewRateLimitMiddleware(opts.TrustProxy).RateLimit(opts.LoginLimit, time.Minute)
		limited = func(h http.HandlerFunc) http.Handler { return limiter(h) }
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", Health(opts.Ping))

	mux.Handle("POST /api/auth/register", limited(authH.Register))
	mux.Handle("POST /api/auth/login", limited(authH.Login))
	mux.HandleFunc("GET /api/auth/profile", authH.GetProfile)
	mux.HandleFunc("POST /api/auth/password", authH.ChangePassword)

	mux.HandleFunc("GET /api/vehicles", vehicles.List)
	mux.HandleFunc("POST /api/vehicles", vehicles.Create)
	mux.HandleFunc("GET /api/vehicles/{id}", vehicles.Get)
	mux.HandleFunc("PUT /api/vehicles/{id}", vehicles.Update)
	mux.HandleFunc("DELETE /api/vehicles/{id}", vehicles.Delete)
	mux.HandleFunc("GET /api/vehicles/{id}/checks", vehicles.Checks)
	mux.HandleFunc("PUT /api/vehicles/{id}/checks/{check}", vehicles.ToggleCheck)

	mux.HandleFunc("GET /api/vehicles/{id}/expenses", expenses.List)
	mux.HandleFunc("POST /api/vehicles/{id}/expenses", expenses.Create)
	mux.HandleFunc("GET /api/vehicles/{id}/expenses/summary", expenses.Summary)
	mux.HandleFunc("PUT /api/expenses/{id}", expenses.Update)
	mux.HandleFunc("DELETE /api/expenses/{id}", expenses.Delete)

	mux.HandleFunc("GET /api/vehicles/{id}/maintenances", maintenances.List)
	mux.HandleFunc("POST /api/vehicles/{id}/maintenances", maintenances.Create)
	mux.HandleFunc("PUT /api/maintenances/{id}", maintenances.Update)
	mux.HandleFunc("DELETE /api/maintenances/{id}", maintenances.Delete)
	mux.HandleFunc("GET /api/maintenances/{id}/invoices", maintenances.ListInvoices)
	mux.HandleFunc("POST /api/maintenances/{id}/invoices", maintenances.CreateInvoice)
	mux.HandleFunc("DELETE /api/invoices/{id}", maintenances.DeleteInvoice)

	mux.HandleFunc("GET /api/vehicles/{id}/reminders", reminders.List)
	mux.HandleFunc("POST /api/vehicles/{id}/reminders", reminders.Create)
	mux.HandleFunc("DELETE /api/reminders/{id}", reminders.Delete)

	mux.HandleFunc("GET /api/workshops", workshops.List)
	mux.HandleFunc("POST /api/workshops", workshops.Create)
	mux.HandleFunc("PUT /api/workshops/{id}", workshops.Update)
	mux.HandleFunc("DELETE /api/workshops/{id}", workshops.Delete)

	mux.HandleFunc("GET /api/drivers", drivers.List)
	mux.HandleFunc("POST /api/drivers", drivers.Create)
	mux.HandleFunc("PUT /api/drivers/{id}", drivers.Update)
	mux.HandleFunc("DELETE /api/drivers/{id}", drivers.Delete)

	mux.HandleFunc("GET /api/checks/catalog", Catalog)

	var h http.Handler = mux
	h = middleware.NewAuthMiddleware(opts.Auth).Authenticate(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recover(logger)(h)
	return h
}

// Catalog lists the quick checks and their intervals.
func Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schedule.Catalog())
}

// Health reports liveness and, when ping is set, storage reachability.
func Health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
