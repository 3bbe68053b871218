package services

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/voltaic-labs/sipx-service/internal/models"
)

// ReadingStore define las operaciones de persistencia sobre las lecturas
type ReadingStore interface {
	ListByCustomer(customerID int) ([]models.TimeSeries, error)
	Create(reading *models.TimeSeries) (*models.TimeSeries, error)
}

// BillingService valida lecturas entrantes y calcula los totales de
// costo/ingreso por cliente
type BillingService struct {
	customers CustomerStore
	readings  ReadingStore
	logger    *logrus.Logger
}

// NewBillingService crea una nueva instancia del servicio
func NewBillingService(customers CustomerStore, readings ReadingStore, logger *logrus.Logger) *BillingService {
	return &BillingService{
		customers: customers,
		readings:  readings,
		logger:    logger,
	}
}

// CreateReading valida la lectura contra el tipo del cliente y la persiste.
// Una validación fallida garantiza que no se escribe nada.
func (s *BillingService) CreateReading(req *models.TimeSeriesRequest) (*models.TimeSeries, error) {
	customer, err := s.customers.GetByID(req.CustomerID)
	if err != nil {
		return nil, err
	}

	candidate := req.ToTimeSeries()
	if err := validateReading(candidate, customer); err != nil {
		return nil, err
	}

	reading, err := s.readings.Create(candidate)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reading_id":  reading.ID,
		"customer_id": reading.CustomerID,
	}).Info("Reading created successfully")

	return reading, nil
}

// ListReadings obtiene las lecturas de un cliente. No verifica la existencia
// del cliente: un ID desconocido produce una lista vacía.
func (s *BillingService) ListReadings(customerID int) ([]models.TimeSeries, error) {
	return s.readings.ListByCustomer(customerID)
}

// CalculateCosts agrega las lecturas del cliente en un resumen de
// costo/ingreso según su tipo
func (s *BillingService) CalculateCosts(customerID int) (*models.Summary, error) {
	customer, err := s.customers.GetByID(customerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.readings.ListByCustomer(customerID)
	if err != nil {
		return nil, err
	}

	var totalCost, totalRevenue float64
	for _, row := range rows {
		totalCost += row.ConsumptionKWh * row.SIPXPrice
		totalRevenue += row.ProductionKWh * row.SIPXPrice
	}

	summary := &models.Summary{
		CustomerID: customerID,
		Rows:       rows,
	}

	// Los totales se redondean al final; net se calcula sobre las sumas
	// sin redondear.
	switch customer.CustomerType {
	case models.CustomerTypeConsumer:
		summary.TotalCost = round2(totalCost)
	case models.CustomerTypeProducer:
		summary.TotalRevenue = round2(totalRevenue)
	case models.CustomerTypeBoth:
		summary.TotalCost = round2(totalCost)
		summary.TotalRevenue = round2(totalRevenue)
		summary.Net = round2(totalRevenue - totalCost)
	}

	return summary, nil
}

// validateReading aplica las reglas de negocio por tipo de cliente
func validateReading(reading *models.TimeSeries, customer *models.Customer) error {
	if customer.CustomerType == models.CustomerTypeConsumer && reading.ProductionKWh != 0.0 {
		return models.NewRuleError("Consumers cannot have production_kWh, change customer type to both.")
	}
	if customer.CustomerType == models.CustomerTypeProducer && reading.ConsumptionKWh != 0.0 {
		return models.NewRuleError("Producers cannot have consumption_kWh, change customer type to both.")
	}
	return nil
}

// round2 redondea a dos decimales
func round2(v float64) *float64 {
	rounded := math.Round(v*100) / 100
	return &rounded
}
