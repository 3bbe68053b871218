package database

import "fmt"

// Sentencias idempotentes ejecutadas al arrancar el proceso. La FK de
// timeseries a customers no declara ON DELETE CASCADE: borrar un cliente
// deja sus lecturas en su lugar.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id            SERIAL PRIMARY KEY,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		customer_type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS timeseries (
		id              SERIAL PRIMARY KEY,
		customer_id     INTEGER NOT NULL REFERENCES customers(id),
		ts              TIMESTAMP NOT NULL,
		consumption_kwh DOUBLE PRECISION NOT NULL DEFAULT 0,
		production_kwh  DOUBLE PRECISION NOT NULL DEFAULT 0,
		sipx_price      DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timeseries_customer_id ON timeseries (customer_id)`,
}

// InitSchema crea las tablas si no existen
func InitSchema(db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecWithTimeout(stmt); err != nil {
			return fmt.Errorf("error initializing schema: %w", err)
		}
	}
	return nil
}
