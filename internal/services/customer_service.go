package services

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/voltaic-labs/sipx-service/internal/models"
)

// CustomerStore define las operaciones de persistencia que necesita el servicio
type CustomerStore interface {
	List() ([]models.Customer, error)
	GetByID(id int) (*models.Customer, error)
	Create(customer *models.Customer) (*models.Customer, error)
	Update(id int, customer *models.Customer) (*models.Customer, error)
	Delete(id int) error
}

// CustomerService maneja la lógica de negocio para Customer
type CustomerService struct {
	store  CustomerStore
	logger *logrus.Logger
}

// NewCustomerService crea una nueva instancia del servicio
func NewCustomerService(store CustomerStore, logger *logrus.Logger) *CustomerService {
	return &CustomerService{
		store:  store,
		logger: logger,
	}
}

// List obtiene todos los clientes
func (s *CustomerService) List() ([]models.Customer, error) {
	return s.store.List()
}

// Create valida y crea un nuevo cliente
func (s *CustomerService) Create(req *models.CustomerRequest) (*models.Customer, error) {
	candidate, err := s.buildCustomer(req)
	if err != nil {
		return nil, err
	}

	customer, err := s.store.Create(candidate)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id":   customer.ID,
		"customer_type": customer.CustomerType,
	}).Info("Customer created successfully")

	return customer, nil
}

// Update valida y sobrescribe los campos mutables de un cliente
func (s *CustomerService) Update(id int, req *models.CustomerRequest) (*models.Customer, error) {
	candidate, err := s.buildCustomer(req)
	if err != nil {
		return nil, err
	}

	customer, err := s.store.Update(id, candidate)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id":   customer.ID,
		"customer_type": customer.CustomerType,
	}).Info("Customer updated successfully")

	return customer, nil
}

// Delete elimina un cliente existente
func (s *CustomerService) Delete(id int) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": id,
	}).Info("Customer deleted successfully")

	return nil
}

// buildCustomer valida los campos del request y construye la entidad con el
// tipo de cliente ya normalizado. Reporta todos los campos inválidos, no
// solamente el primero.
func (s *CustomerService) buildCustomer(req *models.CustomerRequest) (*models.Customer, error) {
	var fieldErrors models.FieldErrors

	firstName := strings.TrimSpace(req.FirstName)
	if len([]rune(firstName)) < 2 {
		fieldErrors = append(fieldErrors, models.ErrorDetail{
			Field: "first_name", Issue: "must be at least 2 characters",
		})
	}

	lastName := strings.TrimSpace(req.LastName)
	if len([]rune(lastName)) < 2 {
		fieldErrors = append(fieldErrors, models.ErrorDetail{
			Field: "last_name", Issue: "must be at least 2 characters",
		})
	}

	customerType, err := models.ParseCustomerType(req.CustomerType)
	if err != nil {
		fieldErrors = append(fieldErrors, models.ErrorDetail{
			Field: "customer_type", Issue: "must be one of consumer, producer, both",
		})
	}

	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	return &models.Customer{
		FirstName:    firstName,
		LastName:     lastName,
		CustomerType: customerType,
	}, nil
}
