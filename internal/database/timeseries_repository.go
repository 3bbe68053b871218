package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/voltaic-labs/sipx-service/internal/models"
)

// TimeSeriesRepository maneja las operaciones de base de datos para TimeSeries
type TimeSeriesRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewTimeSeriesRepository crea una nueva instancia del repositorio
func NewTimeSeriesRepository(db *DB, logger *logrus.Logger) *TimeSeriesRepository {
	return &TimeSeriesRepository{
		db:     db,
		logger: logger,
	}
}

// ListByCustomer obtiene todas las lecturas de un cliente. Un cliente
// inexistente produce una lista vacía, no un error.
func (r *TimeSeriesRepository) ListByCustomer(customerID int) ([]models.TimeSeries, error) {
	query := `
		SELECT id, customer_id, ts, consumption_kwh, production_kwh, sipx_price
		FROM timeseries
		WHERE customer_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryWithTimeout(query, customerID)
	if err != nil {
		return nil, fmt.Errorf("error querying timeseries: %w", err)
	}
	defer rows.Close()

	readings := []models.TimeSeries{}
	for rows.Next() {
		var reading models.TimeSeries
		err := rows.Scan(
			&reading.ID, &reading.CustomerID, &reading.Timestamp,
			&reading.ConsumptionKWh, &reading.ProductionKWh, &reading.SIPXPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning timeseries row: %w", err)
		}
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timeseries rows: %w", err)
	}

	return readings, nil
}

// Create persiste una lectura ya validada y retorna el registro con su ID
func (r *TimeSeriesRepository) Create(reading *models.TimeSeries) (*models.TimeSeries, error) {
	query := `
		INSERT INTO timeseries (customer_id, ts, consumption_kwh, production_kwh, sipx_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowWithTimeout(query,
		reading.CustomerID, reading.Timestamp, reading.ConsumptionKWh,
		reading.ProductionKWh, reading.SIPXPrice,
	).Scan(&reading.ID)

	if err != nil {
		return nil, fmt.Errorf("error creating timeseries row: %w", err)
	}

	return reading, nil
}
