package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/voltaic-labs/sipx-service/internal/models"
)

// CustomerService define las operaciones de clientes que consume la API
type CustomerService interface {
	List() ([]models.Customer, error)
	Create(req *models.CustomerRequest) (*models.Customer, error)
	Update(id int, req *models.CustomerRequest) (*models.Customer, error)
	Delete(id int) error
}

// BillingService define las operaciones de lecturas y cálculos que consume la API
type BillingService interface {
	CreateReading(req *models.TimeSeriesRequest) (*models.TimeSeries, error)
	ListReadings(customerID int) ([]models.TimeSeries, error)
	CalculateCosts(customerID int) (*models.Summary, error)
}

// HealthChecker verifica la disponibilidad del almacenamiento
type HealthChecker interface {
	HealthCheck() error
}

// API maneja todos los endpoints de la API
type API struct {
	customers CustomerService
	billing   BillingService
	health    HealthChecker
	logger    *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(customers CustomerService, billing BillingService, health HealthChecker, logger *logrus.Logger) *API {
	return &API{
		customers: customers,
		billing:   billing,
		health:    health,
		logger:    logger,
	}
}

// ListCustomers obtiene todos los clientes
func (api *API) ListCustomers(c *gin.Context) {
	customers, err := api.customers.List()
	if err != nil {
		api.logger.WithError(err).Error("Error listing customers")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error retrieving customers"))
		return
	}

	c.JSON(http.StatusOK, customers)
}

// CreateCustomer crea un nuevo cliente
func (api *API) CreateCustomer(c *gin.Context) {
	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding create customer request")
		c.JSON(http.StatusUnprocessableEntity, models.NewValidationError("Invalid request format", bindingDetails(err)))
		return
	}

	customer, err := api.customers.Create(&req)
	if err != nil {
		var fieldErrors models.FieldErrors
		if errors.As(err, &fieldErrors) {
			c.JSON(http.StatusUnprocessableEntity, models.NewValidationError("Invalid customer data", fieldErrors))
			return
		}
		api.logger.WithError(err).Error("Error creating customer")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error creating customer"))
		return
	}

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer sobrescribe los campos mutables de un cliente
func (api *API) UpdateCustomer(c *gin.Context) {
	id, ok := api.pathID(c, "id")
	if !ok {
		return
	}

	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding update customer request")
		c.JSON(http.StatusUnprocessableEntity, models.NewValidationError("Invalid request format", bindingDetails(err)))
		return
	}

	customer, err := api.customers.Update(id, &req)
	if err != nil {
		var fieldErrors models.FieldErrors
		if errors.As(err, &fieldErrors) {
			c.JSON(http.StatusUnprocessableEntity, models.NewValidationError("Invalid customer data", fieldErrors))
			return
		}
		if errors.Is(err, models.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Customer not found"))
			return
		}
		api.logger.WithError(err).Error("Error updating customer")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error updating customer"))
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer elimina un cliente por ID
func (api *API) DeleteCustomer(c *gin.Context) {
	id, ok := api.pathID(c, "id")
	if !ok {
		return
	}

	if err := api.customers.Delete(id); err != nil {
		if errors.Is(err, models.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Customer not found"))
			return
		}
		api.logger.WithError(err).Error("Error deleting customer")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error deleting customer"))
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Customer deleted successfully"})
}

// CreateTimeSeries valida y crea una lectura
func (api *API) CreateTimeSeries(c *gin.Context) {
	var req models.TimeSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding create timeseries request")
		c.JSON(http.StatusUnprocessableEntity, models.NewValidationError("Invalid request format", bindingDetails(err)))
		return
	}

	reading, err := api.billing.CreateReading(&req)
	if err != nil {
		if errors.Is(err, models.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Customer not found"))
			return
		}
		var ruleErr *models.RuleError
		if errors.As(err, &ruleErr) {
			c.JSON(http.StatusBadRequest, models.NewInvalidRuleError(ruleErr.Message))
			return
		}
		api.logger.WithError(err).Error("Error creating timeseries row")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error creating reading"))
		return
	}

	c.JSON(http.StatusOK, reading)
}

// ListTimeSeries obtiene las lecturas de un cliente
func (api *API) ListTimeSeries(c *gin.Context) {
	customerID, ok := api.pathID(c, "customer_id")
	if !ok {
		return
	}

	readings, err := api.billing.ListReadings(customerID)
	if err != nil {
		api.logger.WithError(err).Error("Error listing timeseries rows")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error retrieving readings"))
		return
	}

	c.JSON(http.StatusOK, readings)
}

// GetCalculations obtiene el resumen de costos/ingresos de un cliente
func (api *API) GetCalculations(c *gin.Context) {
	customerID, ok := api.pathID(c, "customer_id")
	if !ok {
		return
	}

	summary, err := api.billing.CalculateCosts(customerID)
	if err != nil {
		if errors.Is(err, models.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Customer not found"))
			return
		}
		api.logger.WithError(err).Error("Error calculating costs")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error calculating costs"))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Health reporta la disponibilidad del servicio
func (api *API) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	if api.health != nil {
		if err := api.health.HealthCheck(); err != nil {
			api.logger.WithError(err).Warn("Database health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"service":   "sipx-service",
		"version":   "1.0.0",
	})
}

// pathID parsea un parámetro de ruta entero; responde 422 si no lo es
func (api *API) pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, models.NewValidationError("Invalid path parameter", []models.ErrorDetail{
			{Field: name, Issue: "must be an integer"},
		}))
		return 0, false
	}
	return id, true
}
