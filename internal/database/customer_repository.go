package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/voltaic-labs/sipx-service/internal/models"
)

// CustomerRepository maneja las operaciones de base de datos para Customer
type CustomerRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewCustomerRepository crea una nueva instancia del repositorio
func NewCustomerRepository(db *DB, logger *logrus.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:     db,
		logger: logger,
	}
}

// List obtiene todos los clientes en orden de inserción
func (r *CustomerRepository) List() ([]models.Customer, error) {
	query := `
		SELECT id, first_name, last_name, customer_type
		FROM customers
		ORDER BY id
	`

	rows, err := r.db.QueryWithTimeout(query)
	if err != nil {
		return nil, fmt.Errorf("error querying customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var customer models.Customer
		err := rows.Scan(
			&customer.ID, &customer.FirstName, &customer.LastName, &customer.CustomerType,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// GetByID obtiene un cliente por ID
func (r *CustomerRepository) GetByID(id int) (*models.Customer, error) {
	query := `
		SELECT id, first_name, last_name, customer_type
		FROM customers
		WHERE id = $1
	`

	var customer models.Customer
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&customer.ID, &customer.FirstName, &customer.LastName, &customer.CustomerType,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("error querying customer: %w", err)
	}

	return &customer, nil
}

// Create crea un nuevo cliente y retorna el registro con el ID asignado
func (r *CustomerRepository) Create(customer *models.Customer) (*models.Customer, error) {
	query := `
		INSERT INTO customers (first_name, last_name, customer_type)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRowWithTimeout(query,
		customer.FirstName, customer.LastName, customer.CustomerType,
	).Scan(&customer.ID)

	if err != nil {
		return nil, fmt.Errorf("error creating customer: %w", err)
	}

	return customer, nil
}

// Update sobrescribe los campos mutables de un cliente existente
func (r *CustomerRepository) Update(id int, customer *models.Customer) (*models.Customer, error) {
	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, customer_type = $3
		WHERE id = $4
	`

	result, err := r.db.ExecWithTimeout(query,
		customer.FirstName, customer.LastName, customer.CustomerType, id,
	)

	if err != nil {
		return nil, fmt.Errorf("error updating customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, models.ErrCustomerNotFound
	}

	// Obtener el cliente actualizado
	return r.GetByID(id)
}

// Delete elimina un cliente. Las lecturas asociadas no se tocan.
func (r *CustomerRepository) Delete(id int) error {
	query := `DELETE FROM customers WHERE id = $1`

	result, err := r.db.ExecWithTimeout(query, id)
	if err != nil {
		return fmt.Errorf("error deleting customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrCustomerNotFound
	}

	return nil
}

// EnsureWithID inserta un cliente con un ID explícito si no existe todavía.
// Lo usa el importador histórico, que trae los IDs en el propio archivo.
func (r *CustomerRepository) EnsureWithID(id int, firstName, lastName string, customerType models.CustomerType) error {
	query := `
		INSERT INTO customers (id, first_name, last_name, customer_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.db.ExecWithTimeout(query, id, firstName, lastName, customerType); err != nil {
		return fmt.Errorf("error ensuring customer %d: %w", id, err)
	}

	return nil
}

// SyncIDSequence realinea la secuencia de IDs después de insertar IDs explícitos
func (r *CustomerRepository) SyncIDSequence() error {
	query := `SELECT setval(pg_get_serial_sequence('customers', 'id'), COALESCE(MAX(id), 1)) FROM customers`

	if _, err := r.db.ExecWithTimeout(query); err != nil {
		return fmt.Errorf("error syncing customer id sequence: %w", err)
	}

	return nil
}
