// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"medledger/internal/core/id"
	"medledger/internal/core/types"
	"medledger/internal/domain/auth"
	"medledger/internal/domain/catalogs/medicine"
	"medledger/internal/domain/catalogs/vendor"
	"medledger/internal/domain/registers/stock"
	"medledger/internal/infrastructure/storage/postgres"
	"medledger/internal/infrastructure/storage/postgres/catalog_repo"
	"medledger/internal/infrastructure/storage/postgres/register_repo"
	"medledger/pkg/logger"
	"medledger/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedOwnerUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed owner user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedOwnerUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	ownerEmail := os.Getenv("OWNER_EMAIL")
	if ownerEmail == "" {
		ownerEmail = "owner@medledger.local"
	}

	ownerPassword := os.Getenv("OWNER_PASSWORD")
	if ownerPassword == "" {
		ownerPassword = "Owner123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`,
		ownerEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("owner user already exists", "email", ownerEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check owner exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(ownerPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, role,
			is_active, created_at, updated_at, version
		) VALUES ($1, $2, $3, 'Pharmacy', 'Owner', $4, true, $5, $5, 1)
	`, userID, ownerEmail, string(passwordHash), auth.RoleOwner, now)
	if err != nil {
		return fmt.Errorf("insert owner user: %w", err)
	}

	log.Infow("owner user created",
		"email", ownerEmail,
		"user_id", userID,
	)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	txManager := postgres.NewTxManager(pool)
	num := numerator.New(pool.Unwrap())
	stockService := stock.NewService(register_repo.NewStockRepo(txManager))

	vendorRepo := catalog_repo.NewVendorRepo(txManager)
	vendorService := vendor.NewService(vendorRepo, txManager, num)

	medicineRepo := catalog_repo.NewMedicineRepo(txManager)
	medicineService := medicine.NewService(medicineRepo, txManager, stockService, num)

	// 1. Vendors
	vendors := []struct {
		name  string
		email string
	}{
		{"Alpine Pharma Distribution", "orders@alpinepharma.example"},
		{"MedSupply Wholesale", "sales@medsupply.example"},
	}

	vendorIDs := make([]id.ID, 0, len(vendors))
	for _, v := range vendors {
		ven := vendor.NewVendor("", v.name)
		email := v.email
		ven.Email = &email

		if err := vendorService.Create(ctx, ven); err != nil {
			log.Warnw("failed to seed vendor", "name", v.name, "error", err)
			continue
		}
		vendorIDs = append(vendorIDs, ven.ID)
		log.Infow("vendor created", "code", ven.Code, "name", ven.Name)
	}

	if len(vendorIDs) == 0 {
		return fmt.Errorf("no vendors seeded")
	}

	// 2. Medicines with opening stock and vendor liability.
	// Prices and costs are in minor currency units (cents).
	medicines := []struct {
		name        string
		barcode     string
		price       int64
		quantity    int64
		totalCost   int64
		initialPaid int64
	}{
		{"Paracetamol 500mg (20 tabs)", "4600000000017", 450, 120, 28800, 28800},
		{"Ibuprofen 400mg (30 tabs)", "4600000000024", 620, 80, 33600, 20000},
		{"Amoxicillin 250mg (16 caps)", "4600000000031", 890, 40, 26000, 0},
		{"Loratadine 10mg (10 tabs)", "4600000000048", 380, 60, 15000, 15000},
		{"Omeprazole 20mg (28 caps)", "4600000000055", 740, 35, 18200, 9100},
	}

	for i, m := range medicines {
		med := medicine.NewMedicine("", m.name, types.MinorUnits(m.price))
		barcode := m.barcode
		med.Barcode = &barcode
		vendorID := vendorIDs[i%len(vendorIDs)]
		med.VendorID = &vendorID

		opening := medicine.Opening{
			Quantity:    types.Quantity(m.quantity),
			TotalCost:   types.MinorUnits(m.totalCost),
			InitialPaid: types.MinorUnits(m.initialPaid),
		}

		if err := medicineService.CreateWithOpening(ctx, med, opening); err != nil {
			log.Warnw("failed to seed medicine", "name", m.name, "error", err)
			continue
		}
		log.Infow("medicine created",
			"code", med.Code,
			"name", med.Name,
			"quantity", m.quantity,
			"payment_status", med.PaymentStatus,
		)
	}

	return nil
}
