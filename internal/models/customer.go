package models

import (
	"fmt"
	"strings"
)

// CustomerType clasifica a un cliente según los campos de medición permitidos
type CustomerType string

const (
	CustomerTypeConsumer CustomerType = "consumer"
	CustomerTypeProducer CustomerType = "producer"
	CustomerTypeBoth     CustomerType = "both"
)

// ParseCustomerType normaliza y valida el tipo de cliente recibido.
// La entrada es insensible a mayúsculas y se almacena siempre en minúsculas.
func ParseCustomerType(s string) (CustomerType, error) {
	switch CustomerType(strings.ToLower(strings.TrimSpace(s))) {
	case CustomerTypeConsumer:
		return CustomerTypeConsumer, nil
	case CustomerTypeProducer:
		return CustomerTypeProducer, nil
	case CustomerTypeBoth:
		return CustomerTypeBoth, nil
	default:
		return "", fmt.Errorf("invalid customer type: %q", s)
	}
}

// Valid retorna true si el tipo es uno de los valores canónicos
func (t CustomerType) Valid() bool {
	return t == CustomerTypeConsumer || t == CustomerTypeProducer || t == CustomerTypeBoth
}

// Customer representa un cliente de energía
type Customer struct {
	ID           int          `json:"id" db:"id"`
	FirstName    string       `json:"first_name" db:"first_name"`
	LastName     string       `json:"last_name" db:"last_name"`
	CustomerType CustomerType `json:"customer_type" db:"customer_type"`
}

// CustomerRequest representa el request para crear/actualizar un cliente
type CustomerRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	CustomerType string `json:"customer_type" binding:"required"`
}

// MessageResponse representa una respuesta con un mensaje simple
type MessageResponse struct {
	Message string `json:"message"`
}
