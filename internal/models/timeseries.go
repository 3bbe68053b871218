package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Formatos de timestamp aceptados en la API. Las lecturas históricas llegan
// sin zona horaria, los clientes nuevos pueden enviar RFC3339.
const layoutNaive = "2006-01-02T15:04:05"

var timestampLayouts = []string{
	layoutNaive,
	time.RFC3339,
}

// Timestamp es un instante de lectura que acepta ISO-8601 con o sin zona
// horaria y se serializa en la misma forma en que fue recibido.
type Timestamp struct {
	time.Time
	zoned bool
}

// NewTimestamp crea un Timestamp sin zona horaria explícita
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp intenta interpretar el valor con los formatos soportados
func ParseTimestamp(s string) (Timestamp, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Timestamp{Time: t, zoned: layout != layoutNaive}, nil
		}
		lastErr = err
	}
	return Timestamp{}, fmt.Errorf("failed to parse timestamp %q: %w", s, lastErr)
}

// UnmarshalJSON implementa json.Unmarshaler
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return fmt.Errorf("timestamp is required")
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalJSON implementa json.Marshaler
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.Format() + `"`), nil
}

// Format retorna la representación ISO-8601 del instante
func (ts Timestamp) Format() string {
	if ts.zoned {
		return ts.Time.Format(time.RFC3339)
	}
	// La fracción de segundo se omite cuando es cero
	return ts.Time.Format("2006-01-02T15:04:05.999999999")
}

// Value implementa driver.Valuer para persistir el instante
func (ts Timestamp) Value() (driver.Value, error) {
	return ts.Time, nil
}

// Scan implementa sql.Scanner
func (ts *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*ts = Timestamp{Time: v}
		return nil
	case []byte:
		parsed, err := ParseTimestamp(string(v))
		if err != nil {
			return err
		}
		*ts = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

// TimeSeries representa una lectura de consumo/producción con su precio SIPX
type TimeSeries struct {
	ID             int       `json:"id" db:"id"`
	CustomerID     int       `json:"customer_id" db:"customer_id"`
	Timestamp      Timestamp `json:"timestamp" db:"ts"`
	ConsumptionKWh float64   `json:"consumption_kWh" db:"consumption_kwh"`
	ProductionKWh  float64   `json:"production_kWh" db:"production_kwh"`
	SIPXPrice      float64   `json:"sipx_price" db:"sipx_price"`
}

// TimeSeriesRequest representa el request para crear una lectura.
// Los campos de medición ausentes se tratan como 0.0.
type TimeSeriesRequest struct {
	CustomerID     int       `json:"customer_id" binding:"required"`
	Timestamp      Timestamp `json:"timestamp" binding:"required"`
	ConsumptionKWh *float64  `json:"consumption_kWh"`
	ProductionKWh  *float64  `json:"production_kWh"`
	SIPXPrice      *float64  `json:"sipx_price" binding:"required"`
}

// ToTimeSeries construye la lectura a persistir aplicando los defaults
func (r *TimeSeriesRequest) ToTimeSeries() *TimeSeries {
	ts := &TimeSeries{
		CustomerID: r.CustomerID,
		Timestamp:  r.Timestamp,
	}
	if r.ConsumptionKWh != nil {
		ts.ConsumptionKWh = *r.ConsumptionKWh
	}
	if r.ProductionKWh != nil {
		ts.ProductionKWh = *r.ProductionKWh
	}
	if r.SIPXPrice != nil {
		ts.SIPXPrice = *r.SIPXPrice
	}
	return ts
}

// Summary representa el resultado de la agregación de costos/ingresos.
// Los totales presentes dependen del tipo de cliente.
type Summary struct {
	CustomerID   int          `json:"customer_id"`
	TotalCost    *float64     `json:"total_cost,omitempty"`
	TotalRevenue *float64     `json:"total_revenue,omitempty"`
	Net          *float64     `json:"net,omitempty"`
	Rows         []TimeSeries `json:"rows"`
}
