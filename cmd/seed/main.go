// Command seed fills a running CarLog API with demo vehicles, check history
// and expenses for a single demo account.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/dates"
	"github.com/ukydev/carlog/internal/models"
	"github.com/ukydev/carlog/internal/schedule"
)

var (
	brands = []struct {
		name   string
		models []string
	}{
		{"Seat", []string{"Ibiza", "Leon", "Arona"}},
		{"Toyota", []string{"Corolla", "Yaris", "C-HR"}},
		{"Renault", []string{"Clio", "Megane", "Captur"}},
		{"Volkswagen", []string{"Golf", "Polo", "T-Roc"}},
		{"Peugeot", []string{"208", "308", "3008"}},
	}
	fuels         = []string{"gasoline", "diesel", "hybrid", "electric"}
	transmissions = []string{"manual", "automatic"}
	colors        = []string{"white", "black", "grey", "red", "blue"}
)

// errStatus is returned when the API answers with an unexpected status.
type errStatus struct {
	method, path string
	code         int
	body         string
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.method, e.path, e.code, e.body)
}

// apiClient talks to the CarLog REST API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *apiClient) do(method, path string, body, out interface{}, want int) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &errStatus{method: method, path: path, code: resp.StatusCode, body: string(bytes.TrimSpace(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// signIn logs in as the demo user, registering the account first if the
// login is refused.
func (c *apiClient) signIn(name, email, password string) error {
	var resp models.LoginResponse
	err := c.do(http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &resp, http.StatusOK)

	var se *errStatus
	if errors.As(err, &se) && se.code == http.StatusUnauthorized {
		log.WithField("email", email).Info("Demo user not found, registering")
		err = c.do(http.MethodPost, "/auth/register", models.RegisterRequest{
			Name:            name,
			Email:           email,
			Password:        password,
			ConfirmPassword: password,
		}, &resp, http.StatusCreated)
	}
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *apiClient) createVehicle(v models.Vehicle) (models.Vehicle, error) {
	var created models.Vehicle
	if err := c.do(http.MethodPost, "/vehicles", v, &created, http.StatusCreated); err != nil {
		return created, err
	}
	return created, nil
}

func (c *apiClient) toggleCheck(vehicleID string, check schedule.CheckID, done bool) error {
	return c.do(http.MethodPut, "/vehicles/"+vehicleID+"/checks/"+string(check), map[string]bool{"done": done}, nil, http.StatusOK)
}

type expenseRequest struct {
	Description string                 `json:"description"`
	Date        string                 `json:"date"`
	Amount      float64                `json:"amount"`
	Category    models.ExpenseCategory `json:"category"`
}

func (c *apiClient) createExpense(vehicleID string, e expenseRequest) error {
	return c.do(http.MethodPost, "/vehicles/"+vehicleID+"/expenses", e, nil, http.StatusCreated)
}

// randomVehicle builds a vehicle with check history spread over the past
// year. Dates use the display format so the API normalizes them.
func randomVehicle(rng *rand.Rand, today dates.Date) models.Vehicle {
	brand := brands[rng.Intn(len(brands))]

	last := map[string]string{}
	for _, def := range schedule.Catalog() {
		if rng.Intn(4) == 0 {
			continue
		}
		last[string(def.ID)] = today.AddDays(-rng.Intn(365)).Display()
	}

	return models.Vehicle{
		Brand:          brand.name,
		Model:          brand.models[rng.Intn(len(brand.models))],
		Year:           2012 + rng.Intn(today.Year-2012+1),
		Plate:          randomPlate(rng),
		Km:             5000 + rng.Intn(200000),
		Color:          colors[rng.Intn(len(colors))],
		Transmission:   transmissions[rng.Intn(len(transmissions))],
		FuelType:       fuels[rng.Intn(len(fuels))],
		LastCheckDates: last,
	}
}

// randomPlate returns a plate in the 0000XXX style, vowels excluded.
func randomPlate(rng *rand.Rand) string {
	const letters = "BCDFGHJKLMNPRSTVWXYZ"
	b := make([]byte, 3)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return fmt.Sprintf("%04d%s", rng.Intn(10000), b)
}

// randomExpenses returns n expenses dated within the past 18 months so the
// summary has data for both the current and the previous year.
func randomExpenses(rng *rand.Rand, today dates.Date, n int) []expenseRequest {
	categories := models.ExpenseCategories()
	out := make([]expenseRequest, 0, n)
	for i := 0; i < n; i++ {
		cat := categories[rng.Intn(len(categories))]
		amount := decimal.NewFromFloat(5 + rng.Float64()*300).Round(2)
		date := today.AddDays(-rng.Intn(540))
		out = append(out, expenseRequest{
			Description: fmt.Sprintf("Demo %s", cat),
			Date:        date.Canonical(),
			Amount:      amount.InexactFloat64(),
			Category:    cat,
		})
	}
	return out
}

// seed creates the demo fleet and returns how many vehicles were created.
func seed(c *apiClient, rng *rand.Rand, today dates.Date, fleetSize, expensesPerVehicle int) int {
	created := 0
	for i := 0; i < fleetSize; i++ {
		v, err := c.createVehicle(randomVehicle(rng, today))
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		created++
		id := v.ID.Hex()
		log.WithFields(log.Fields{
			"vehicle_id": id,
			"plate":      v.Plate,
			"brand":      v.Brand,
			"model":      v.Model,
		}).Info("Created vehicle")

		if err := c.toggleCheck(id, schedule.CheckLights, true); err != nil {
			log.WithError(err).WithField("vehicle_id", id).Warn("Failed to mark lights check")
		}

		for _, e := range randomExpenses(rng, today, expensesPerVehicle) {
			if err := c.createExpense(id, e); err != nil {
				log.WithError(err).WithField("vehicle_id", id).Warn("Failed to create expense")
			}
		}
	}
	return created
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		log.WithField(key, v).Warn("Ignoring invalid value")
	}
	return fallback
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	apiURL := envString("API_BASE_URL", "http://localhost:8080/api")
	fleetSize := envInt("SEED_VEHICLES", 3)
	perVehicle := envInt("SEED_EXPENSES", 12)
	email := envString("SEED_EMAIL", "demo@carlog.local")
	password := envString("SEED_PASSWORD", "demo-password")

	log.WithFields(log.Fields{
		"api_url":  apiURL,
		"vehicles": fleetSize,
		"expenses": perVehicle,
	}).Info("Seeding demo data")

	c := newAPIClient(apiURL)
	if err := c.signIn("Demo Driver", email, password); err != nil {
		log.WithError(err).Fatal("Could not sign in")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	n := seed(c, rng, dates.SystemClock.Today(), fleetSize, perVehicle)
	if n == 0 && fleetSize > 0 {
		log.Fatal("No vehicles created")
	}
	log.WithField("created_vehicles", n).Info("Seeding completed")
}
