package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/voltaic-labs/sipx-service/internal/models"
	"github.com/voltaic-labs/sipx-service/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testOrigin = "http://localhost:3000"

// memCustomerStore implementa services.CustomerStore en memoria
type memCustomerStore struct {
	customers map[int]*models.Customer
	nextID    int
}

func (m *memCustomerStore) List() ([]models.Customer, error) {
	out := []models.Customer{}
	for i := 1; i <= m.nextID; i++ {
		if c, ok := m.customers[i]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCustomerStore) GetByID(id int) (*models.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, models.ErrCustomerNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memCustomerStore) Create(c *models.Customer) (*models.Customer, error) {
	m.nextID++
	c.ID = m.nextID
	stored := *c
	m.customers[c.ID] = &stored
	return c, nil
}

func (m *memCustomerStore) Update(id int, c *models.Customer) (*models.Customer, error) {
	if _, ok := m.customers[id]; !ok {
		return nil, models.ErrCustomerNotFound
	}
	updated := *c
	updated.ID = id
	m.customers[id] = &updated
	result := updated
	return &result, nil
}

func (m *memCustomerStore) Delete(id int) error {
	if _, ok := m.customers[id]; !ok {
		return models.ErrCustomerNotFound
	}
	delete(m.customers, id)
	return nil
}

// memReadingStore implementa services.ReadingStore en memoria. Borrar un
// cliente no toca sus lecturas, igual que el esquema real.
type memReadingStore struct {
	rows   []models.TimeSeries
	nextID int
}

func (m *memReadingStore) ListByCustomer(customerID int) ([]models.TimeSeries, error) {
	out := []models.TimeSeries{}
	for _, r := range m.rows {
		if r.CustomerID == customerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReadingStore) Create(reading *models.TimeSeries) (*models.TimeSeries, error) {
	m.nextID++
	reading.ID = m.nextID
	m.rows = append(m.rows, *reading)
	return reading, nil
}

func newTestRouter() *gin.Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	customers := &memCustomerStore{customers: map[int]*models.Customer{}}
	readings := &memReadingStore{}

	customerService := services.NewCustomerService(customers, logger)
	billingService := services.NewBillingService(customers, readings, logger)

	handler := NewAPI(customerService, billingService, nil, logger)
	return NewRouter(handler, testOrigin)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func createCustomer(t *testing.T, router *gin.Engine, customerType string) models.Customer {
	t.Helper()
	rr := doJSON(t, router, http.MethodPost, "/customers/",
		`{"first_name":"Ana","last_name":"Kovac","customer_type":"`+customerType+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("creating fixture customer: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var customer models.Customer
	if err := json.Unmarshal(rr.Body.Bytes(), &customer); err != nil {
		t.Fatalf("unmarshal customer: %v", err)
	}
	return customer
}

func TestCreateCustomer_OK(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodPost, "/customers/",
		`{"first_name":"Ana","last_name":"Kovac","customer_type":"Consumer"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200, body=%s", rr.Code, rr.Body.String())
	}

	var customer models.Customer
	if err := json.Unmarshal(rr.Body.Bytes(), &customer); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if customer.ID != 1 {
		t.Errorf("id = %d, want 1", customer.ID)
	}
	if customer.CustomerType != models.CustomerTypeConsumer {
		t.Errorf("customer_type = %q, want consumer (lowercased)", customer.CustomerType)
	}
}

func TestCreateCustomer_ShortNames422(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodPost, "/customers/",
		`{"first_name":"A","last_name":"K","customer_type":"consumer"}`)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want 422, body=%s", rr.Code, rr.Body.String())
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Error.Details) != 2 {
		t.Errorf("expected both fields in details, got %v", resp.Error.Details)
	}
}

func TestCreateCustomer_UnknownType422(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodPost, "/customers/",
		`{"first_name":"Ana","last_name":"Kovac","customer_type":"prosumer"}`)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want 422, body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateCustomer_MissingFields422(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodPost, "/customers/", `{}`)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want 422, body=%s", rr.Code, rr.Body.String())
	}

	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Error.Details) == 0 {
		t.Error("expected field-level details for missing fields")
	}
}

func TestListCustomers_EmptyIsList(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodGet, "/customers/", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("body = %s, want []", rr.Body.String())
	}
}

func TestUpdateCustomer_OK(t *testing.T) {
	router := newTestRouter()
	created := createCustomer(t, router, "consumer")

	rr := doJSON(t, router, http.MethodPatch, "/customers/1",
		`{"first_name":"Ana","last_name":"Kovac","customer_type":"BOTH"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200, body=%s", rr.Code, rr.Body.String())
	}
	var updated models.Customer
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if updated.ID != created.ID || updated.CustomerType != models.CustomerTypeBoth {
		t.Errorf("unexpected update result: %+v", updated)
	}
}

func TestUpdateCustomer_NotFound404(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodPatch, "/customers/99",
		`{"first_name":"Ana","last_name":"Kovac","customer_type":"both"}`)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404, body=%s", rr.Code, rr.Body.String())
	}
}

func TestDeleteCustomer_OKMessage(t *testing.T) {
	router := newTestRouter()
	createCustomer(t, router, "consumer")

	rr := doJSON(t, router, http.MethodDelete, "/customers/1", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200, body=%s", rr.Code, rr.Body.String())
	}
	var resp models.MessageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "Customer deleted successfully" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestDeleteCustomer_NotFound404(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodDelete, "/customers/99", "")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404, body=%s", rr.Code, rr.Body.String())
	}
}

func TestDeleteCustomer_OrphansReadings(t *testing.T) {
	router := newTestRouter()
	createCustomer(t, router, "both")
	rr := doJSON(t, router, http.MethodPost, "/timeseries/",
		`{"customer_id":1,"timestamp":"2024-01-01T00:00:00","consumption_kWh":1,"sipx_price":0.1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("creating reading: status=%d body=%s", rr.Code, rr.Body.String())
	}

	if rr := doJSON(t, router, http.MethodDelete, "/customers/1", ""); rr.Code != http.StatusOK {
		t.Fatalf("delete: status=%d", rr.Code)
	}

	// Las lecturas sobreviven al cliente; el listado sigue respondiendo 200
	rr = doJSON(t, router, http.MethodGet, "/timeseries/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list after delete: status=%d", rr.Code)
	}
	var readings []models.TimeSeries
	if err := json.Unmarshal(rr.Body.Bytes(), &readings); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(readings) != 1 {
		t.Errorf("expected orphaned reading to remain, got %d", len(readings))
	}
}

func TestCreateTimeSeries_OK(t *testing.T) {
	router := newTestRouter()
	createCustomer(t, router, "consumer")

	rr := doJSON(t, router, http.MethodPost, "/timeseries/",
		`{"customer_id":1,"timestamp":"2024-01-01T00:00:00","consumption_kWh":5,"sipx_price":0.1}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200, body=%s", rr.Code, rr.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["id"].(float64) != 1 {
		t.Errorf("id = %v, want 1", body["id"])
	}
	if body["timestamp"] != "2024-01-01T00:00:00" {
		t.Errorf("timestamp = %v, want zone-less echo", body["timestamp"])
	}
	if body["production_kWh"].(float64) != 0 {
		t.Errorf("production_kWh = %v, want default 0", body["production_kWh"])
	}
}

func TestCreateTimeSeries_ConsumerWithProduction400(t *testing.T) {
	router := newTestRouter()
	createCustomer(t, router, "consumer")

	rr := doJSON(t, router, http.MethodPost, "/timeseries/",
		`{"customer_id":1,"timestamp":"2024-01-01T00:00:00","consumption_kWh":5,"production_kWh":3,"sipx_price":0.1}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400, body=%s", rr.Code, rr.Body.String())
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := "Consumers cannot have production_kWh, change customer type to both."
	if resp.Error.Message != want {
		t.Errorf("message = %q, want %q", resp.Error.Message, want)
	}
}

func TestCreateTimeSeries_ProducerWithConsumption400(t *testing.T) {
	router := newTestRouter()
	createCustomer(t, router, "producer")

	rr := doJSON(t, router, http.MethodPost, "/timeseries/",
		`{"customer_id":1,"timestamp":"2024-01-01T00:00:00","consumption_kWh":2,"sipx_price":0.1}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400, body=%s", rr.Code, rr.Body.String())
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := "Producers cannot have consumption_kWh, change customer type to both."
	if resp.Error.Message != want {
		t.Errorf("message = %q, want %q", resp.Error.Message, want)
	}
}

func TestCreateTimeSeries_UnknownCustomer404(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodPost, "/timeseries/",
		`{"customer_id":42,"timestamp":"2024-01-01T00:00:00","consumption_kWh":5,"sipx_price":0.1}`)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404, body=%s", rr.Code, rr.Body.String())
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Message != "Customer not found" {
		t.Errorf("message = %q, want Customer not found", resp.Error.Message)
	}
}

func TestCreateTimeSeries_MissingPrice422(t *testing.T) {
	router := newTestRouter()
	createCustomer(t, router, "consumer")

	rr := doJSON(t, router, http.MethodPost, "/timeseries/",
		`{"customer_id":1,"timestamp":"2024-01-01T00:00:00","consumption_kWh":5}`)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want 422, body=%s", rr.Code, rr.Body.String())
	}
}

func TestListTimeSeries_UnknownCustomerEmpty200(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodGet, "/timeseries/999", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200, body=%s", rr.Code, rr.Body.String())
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("body = %s, want []", rr.Body.String())
	}
}

func TestCalculations_BothScenario(t *testing.T) {
	router := newTestRouter()
	createCustomer(t, router, "both")
	doJSON(t, router, http.MethodPost, "/timeseries/",
		`{"customer_id":1,"timestamp":"2024-01-01T00:00:00","consumption_kWh":10,"sipx_price":0.2}`)
	doJSON(t, router, http.MethodPost, "/timeseries/",
		`{"customer_id":1,"timestamp":"2024-01-01T01:00:00","production_kWh":5,"sipx_price":0.3}`)

	rr := doJSON(t, router, http.MethodGet, "/calculations/1", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200, body=%s", rr.Code, rr.Body.String())
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["total_cost"].(float64) != 2.0 {
		t.Errorf("total_cost = %v, want 2.0", body["total_cost"])
	}
	if body["total_revenue"].(float64) != 1.5 {
		t.Errorf("total_revenue = %v, want 1.5", body["total_revenue"])
	}
	if body["net"].(float64) != -0.5 {
		t.Errorf("net = %v, want -0.5", body["net"])
	}
	if len(body["rows"].([]interface{})) != 2 {
		t.Errorf("rows = %v, want 2 entries", body["rows"])
	}
}

func TestCalculations_ConsumerShape(t *testing.T) {
	router := newTestRouter()
	createCustomer(t, router, "consumer")
	doJSON(t, router, http.MethodPost, "/timeseries/",
		`{"customer_id":1,"timestamp":"2024-01-01T00:00:00","consumption_kWh":4,"sipx_price":0.25}`)

	rr := doJSON(t, router, http.MethodGet, "/calculations/1", "")

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["total_cost"].(float64) != 1.0 {
		t.Errorf("total_cost = %v, want 1.0", body["total_cost"])
	}
	if _, ok := body["total_revenue"]; ok {
		t.Error("consumer summary must not carry total_revenue")
	}
	if _, ok := body["net"]; ok {
		t.Error("consumer summary must not carry net")
	}
}

func TestCalculations_UnknownCustomer404(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodGet, "/calculations/5", "")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404, body=%s", rr.Code, rr.Body.String())
	}
}

func TestInvalidPathID422(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodGet, "/calculations/abc", "")

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want 422, body=%s", rr.Code, rr.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodGet, "/customers/", "")

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, testOrigin)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
}

func TestCORSPreflight204(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodOptions, "/customers/", "")

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status=%d want 204", rr.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter()

	rr := doJSON(t, router, http.MethodGet, "/customers/", "")

	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header on every response")
	}
}
