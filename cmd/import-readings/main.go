package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/voltaic-labs/sipx-service/internal/config"
	"github.com/voltaic-labs/sipx-service/internal/database"
	"github.com/voltaic-labs/sipx-service/internal/models"
)

// Formato del archivo histórico: una columna de timestamp, el precio SIPX y
// una columna customer<N>_cons_kWh por cliente.
const (
	timestampColumn = "timestamp"
	priceColumn     = "SIPX_EUR_kWh"
	csvTimeLayout   = "2006-01-02 15:04:05"
)

var consumptionColumn = regexp.MustCompile(`^customer(\d+)_cons_kWh$`)

func main() {
	filePath := flag.String("file", "", "path to the historical readings CSV")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("missing required flag: -file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	if err := database.InitSchema(db); err != nil {
		logger.Fatalf("Error initializing schema: %v", err)
	}

	customerRepo := database.NewCustomerRepository(db, logger)
	timeSeriesRepo := database.NewTimeSeriesRepository(db, logger)

	imported, err := importFile(*filePath, customerRepo, timeSeriesRepo)
	if err != nil {
		logger.Fatalf("Import failed: %v", err)
	}

	// Realinear la secuencia tras insertar clientes con ID explícito
	if err := customerRepo.SyncIDSequence(); err != nil {
		logger.Fatalf("Error syncing id sequence: %v", err)
	}

	logger.WithField("readings", imported).Info("Import finished")
}

// importFile recorre el CSV fila por fila e inserta una lectura de consumo
// por cada columna customer<N>_cons_kWh, creando los clientes que falten.
// El primer error aborta la carga.
func importFile(path string, customers *database.CustomerRepository, readings *database.TimeSeriesRepository) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("error reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	tsIdx, ok := columns[timestampColumn]
	if !ok {
		return 0, fmt.Errorf("missing column %q", timestampColumn)
	}
	priceIdx, ok := columns[priceColumn]
	if !ok {
		return 0, fmt.Errorf("missing column %q", priceColumn)
	}

	seen := map[int]bool{}
	imported := 0
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("error reading line %d: %w", line+1, err)
		}
		line++

		ts, err := time.Parse(csvTimeLayout, record[tsIdx])
		if err != nil {
			return imported, fmt.Errorf("line %d: invalid timestamp: %w", line, err)
		}

		price, err := strconv.ParseFloat(record[priceIdx], 64)
		if err != nil {
			return imported, fmt.Errorf("line %d: invalid price: %w", line, err)
		}

		for name, idx := range columns {
			match := consumptionColumn.FindStringSubmatch(name)
			if match == nil {
				continue
			}

			customerID, err := strconv.Atoi(match[1])
			if err != nil {
				return imported, fmt.Errorf("invalid customer column %q: %w", name, err)
			}

			consumption, err := strconv.ParseFloat(record[idx], 64)
			if err != nil {
				return imported, fmt.Errorf("line %d: invalid value in %q: %w", line, name, err)
			}

			if !seen[customerID] {
				lastName := strconv.Itoa(customerID)
				err := customers.EnsureWithID(customerID, "Customer", lastName, models.CustomerTypeConsumer)
				if err != nil {
					return imported, err
				}
				seen[customerID] = true
			}

			_, err = readings.Create(&models.TimeSeries{
				CustomerID:     customerID,
				Timestamp:      models.NewTimestamp(ts),
				ConsumptionKWh: consumption,
				SIPXPrice:      price,
			})
			if err != nil {
				return imported, fmt.Errorf("line %d: %w", line, err)
			}
			imported++
		}
	}

	return imported, nil
}
