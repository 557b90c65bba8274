package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing seed CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with planning and logistics data",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "policies",
				Usage:  "Seed reorder policies",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: withTx(seedPolicies),
			},
			{
				Name:   "demand",
				Usage:  "Seed demand forecasts and inventory transactions",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: withTx(seedDemand),
			},
			{
				Name:   "inventory",
				Usage:  "Seed inventory snapshots",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: withTx(seedInventory),
			},
			{
				Name:   "shipments",
				Usage:  "Seed shipments, milestones and bookings",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: withTx(seedShipments),
			},
			{
				Name:  "all",
				Usage: "Seed every table",
				Flags: []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: withTx(func(ctx context.Context, tx *sql.Tx, dataDir string) error {
					for _, step := range []func(context.Context, *sql.Tx, string) error{
						seedPolicies, seedDemand, seedInventory, seedShipments,
					} {
						if err := step(ctx, tx, dataDir); err != nil {
							return err
						}
					}
					return nil
				}),
			},
			newDownloadCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withTx opens the database, runs the step inside a single transaction and
// commits only when every row landed.
func withTx(fn func(ctx context.Context, tx *sql.Tx, dataDir string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		db, err := sql.Open("pgx", c.String("db-url"))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		ctx := context.Background()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		log.Println("Starting database seeding...")
		if err := fn(ctx, tx, c.String("data-dir")); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		log.Println("Database seeding completed successfully!")
		return nil
	}
}

func seedPolicies(ctx context.Context, tx *sql.Tx, dataDir string) error {
	const query = `
        INSERT INTO reorder_policies (
            org_id, item_id, location_id, method, safety_stock, reorder_point,
            reorder_qty, lead_time_days, review_period_days, service_level_pct,
            moq, lot_multiple, active
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (org_id, item_id, location_id) DO UPDATE SET
            method = EXCLUDED.method,
            safety_stock = EXCLUDED.safety_stock,
            reorder_point = EXCLUDED.reorder_point,
            reorder_qty = EXCLUDED.reorder_qty,
            lead_time_days = EXCLUDED.lead_time_days,
            review_period_days = EXCLUDED.review_period_days,
            service_level_pct = EXCLUDED.service_level_pct,
            moq = EXCLUDED.moq,
            lot_multiple = EXCLUDED.lot_multiple,
            active = EXCLUDED.active,
            updated_at = CURRENT_TIMESTAMP
    `

	return seedFromCSV(ctx, tx, "reorder_policies", filepath.Join(dataDir, "reorder_policies.csv"), query,
		func(rec record) []interface{} {
			return []interface{}{
				rec.get("org_id"),
				rec.get("item_id"),
				rec.get("location_id"),
				rec.get("method"),
				nullIfEmpty(rec.get("safety_stock")),
				nullIfEmpty(rec.get("reorder_point")),
				nullIfEmpty(rec.get("reorder_qty")),
				nullIfEmpty(rec.get("lead_time_days")),
				nullIfEmpty(rec.get("review_period_days")),
				nullIfEmpty(rec.get("service_level_pct")),
				rec.get("moq"),
				rec.get("lot_multiple"),
				rec.get("active"),
			}
		})
}

func seedDemand(ctx context.Context, tx *sql.Tx, dataDir string) error {
	const forecastQuery = `
        INSERT INTO demand_forecasts (item_id, location_id, horizon_date, forecast_qty)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (item_id, location_id, horizon_date) DO UPDATE SET
            forecast_qty = EXCLUDED.forecast_qty
    `

	err := seedFromCSV(ctx, tx, "demand_forecasts", filepath.Join(dataDir, "demand_forecasts.csv"), forecastQuery,
		func(rec record) []interface{} {
			return []interface{}{
				rec.get("item_id"),
				rec.get("location_id"),
				rec.get("horizon_date"),
				rec.get("forecast_qty"),
			}
		})
	if err != nil {
		return err
	}

	const txnQuery = `
        INSERT INTO inventory_transactions (item_id, location_id, type, qty, occurred_at)
        VALUES ($1, $2, $3, $4, $5)
    `

	return seedFromCSV(ctx, tx, "inventory_transactions", filepath.Join(dataDir, "inventory_transactions.csv"), txnQuery,
		func(rec record) []interface{} {
			return []interface{}{
				rec.get("item_id"),
				rec.get("location_id"),
				rec.get("type"),
				rec.get("qty"),
				rec.get("occurred_at"),
			}
		})
}

func seedInventory(ctx context.Context, tx *sql.Tx, dataDir string) error {
	const query = `
        INSERT INTO inventory_snapshots (item_id, location_id, on_hand, reserved, on_order, backorder, as_of)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (item_id, location_id, as_of) DO UPDATE SET
            on_hand = EXCLUDED.on_hand,
            reserved = EXCLUDED.reserved,
            on_order = EXCLUDED.on_order,
            backorder = EXCLUDED.backorder
    `

	return seedFromCSV(ctx, tx, "inventory_snapshots", filepath.Join(dataDir, "inventory_snapshots.csv"), query,
		func(rec record) []interface{} {
			return []interface{}{
				rec.get("item_id"),
				rec.get("location_id"),
				rec.get("on_hand"),
				rec.get("reserved"),
				rec.get("on_order"),
				rec.get("backorder"),
				rec.get("as_of"),
			}
		})
}

func seedShipments(ctx context.Context, tx *sql.Tx, dataDir string) error {
	const shipmentQuery = `
        INSERT INTO shipments (org_id, reference, planned_eta, actual_eta)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (org_id, reference) DO UPDATE SET
            planned_eta = EXCLUDED.planned_eta,
            actual_eta = EXCLUDED.actual_eta
    `

	err := seedFromCSV(ctx, tx, "shipments", filepath.Join(dataDir, "shipments.csv"), shipmentQuery,
		func(rec record) []interface{} {
			return []interface{}{
				rec.get("org_id"),
				rec.get("reference"),
				nullIfEmpty(rec.get("planned_eta")),
				nullIfEmpty(rec.get("actual_eta")),
			}
		})
	if err != nil {
		return err
	}

	// Milestones and bookings reference the shipment by org + reference so the
	// CSV drops stay portable across environments.
	const milestoneQuery = `
        INSERT INTO shipment_milestones (shipment_id, type, planned_date, actual_date)
        SELECT s.id, $3, $4, $5
        FROM shipments s
        WHERE s.org_id = $1 AND s.reference = $2
        ON CONFLICT (shipment_id, type) DO UPDATE SET
            planned_date = EXCLUDED.planned_date,
            actual_date = EXCLUDED.actual_date
    `

	err = seedFromCSV(ctx, tx, "shipment_milestones", filepath.Join(dataDir, "shipment_milestones.csv"), milestoneQuery,
		func(rec record) []interface{} {
			return []interface{}{
				rec.get("org_id"),
				rec.get("reference"),
				rec.get("type"),
				nullIfEmpty(rec.get("planned_date")),
				nullIfEmpty(rec.get("actual_date")),
			}
		})
	if err != nil {
		return err
	}

	const bookingQuery = `
        INSERT INTO shipment_bookings (shipment_id, cutoff_date, sailing_date)
        SELECT s.id, $3, $4
        FROM shipments s
        WHERE s.org_id = $1 AND s.reference = $2
        ON CONFLICT (shipment_id) DO UPDATE SET
            cutoff_date = EXCLUDED.cutoff_date,
            sailing_date = EXCLUDED.sailing_date
    `

	return seedFromCSV(ctx, tx, "shipment_bookings", filepath.Join(dataDir, "shipment_bookings.csv"), bookingQuery,
		func(rec record) []interface{} {
			return []interface{}{
				rec.get("org_id"),
				rec.get("reference"),
				nullIfEmpty(rec.get("cutoff_date")),
				nullIfEmpty(rec.get("sailing_date")),
			}
		})
}

// record pairs one CSV row with its header for name-based access.
type record struct {
	header map[string]int
	values []string
}

func (r record) get(column string) string {
	idx, ok := r.header[column]
	if !ok {
		panic(fmt.Sprintf("column '%s' not found in header", column))
	}
	if idx >= len(r.values) {
		return ""
	}
	return r.values[idx]
}

func seedFromCSV(ctx context.Context, tx *sql.Tx, tableName, filePath, query string, bind func(record) []interface{}) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	headerRow, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[name] = i
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s statement: %w", tableName, err)
	}
	defer stmt.Close()

	rowCount := 0
	for {
		values, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := bind(record{header: header, values: values})
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert %s record: %w", tableName, err)
		}

		rowCount++
		if rowCount%5000 == 0 {
			log.Printf("Seeded %d %s rows...", rowCount, tableName)
		}
	}

	log.Printf("Successfully seeded %s (%d records)\n", tableName, rowCount)
	return nil
}
