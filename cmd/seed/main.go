package main

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/vendsight/vendsight-backend/config"
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/internal/app/service"
	"github.com/vendsight/vendsight-backend/internal/db"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"github.com/vendsight/vendsight-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	demoEmail    = "demo@vendsight.io"
	demoPassword = "demo1234"
)

// Seeds a demo operator account with one quarter of sales data. The
// rollup goes through the real import pipeline, so regions, locations,
// machines and fingerprints all come out exactly as a genuine upload
// would produce them.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	regionRepo := repository.NewRegionRepository(db.GetDB())
	locationRepo := repository.NewLocationRepository(db.GetDB())
	machineRepo := repository.NewMachineRepository(db.GetDB())
	salesRepo := repository.NewSalesRepository(db.GetDB())
	uploadRepo := repository.NewUploadRepository(db.GetDB())

	user, err := userRepo.FindByEmail(demoEmail)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Fatal("Failed to look up demo user", err)
	}
	if user == nil {
		hashed, err := util.HashPassword(demoPassword)
		if err != nil {
			logger.Fatal("Failed to hash demo password", err)
		}
		user = &model.User{
			Email:        demoEmail,
			Password:     hashed,
			BusinessName: "Demo Vending Co",
			Timezone:     "America/Chicago",
		}
		if err := userRepo.Create(user); err != nil {
			logger.Fatal("Failed to create demo user", err)
		}
		logger.Info("Demo user created", map[string]interface{}{
			"email":    demoEmail,
			"password": demoPassword,
		})
	}

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	importService := service.NewImportService(regionRepo, locationRepo, machineRepo, salesRepo, cfg.Import.BatchSize)
	analyticsService := service.NewAnalyticsService(salesRepo, regionRepo, locationRepo, machineRepo, cfg.Import.AnalyticsCacheTTL)
	uploadService := service.NewUploadService(uploadRepo, importService, analyticsService, authService, nil)

	upload, result, err := uploadService.Process(
		user.ID,
		"Sales Rollup from 10-1-2025 to 12-31-2025.csv",
		[]byte(demoRollup()),
		"", "",
		nil,
		nil,
	)
	if err != nil {
		logger.Fatal("Demo import failed", err)
	}

	logger.Info("Demo data seeded", map[string]interface{}{
		"upload_id":      upload.ID,
		"imported_rows":  result.ImportedRows,
		"duplicate_rows": result.DuplicateRows,
		"regions":        result.RegionsCreated,
		"locations":      result.LocationsCreated,
		"machines":       result.MachinesCreated,
	})
}

// demoRollup renders a Cantaloupe-shaped quarterly rollup.
func demoRollup() string {
	rng := rand.New(rand.NewSource(42))

	regions := []string{"North", "South", "East", "West"}
	locations := map[string][]string{
		"North": {"Airport Terminal", "Tech Campus"},
		"South": {"Gym Downtown", "Hospital Main"},
		"East":  {"Office Tower", "University Hall"},
		"West":  {"Factory Floor", "Mall Food Court"},
	}
	locationTypes := map[string]string{
		"Airport Terminal": "Transit",
		"Tech Campus":      "Office",
		"Gym Downtown":     "Gym",
		"Hospital Main":    "Hospital",
		"Office Tower":     "Office",
		"University Hall":  "School",
		"Factory Floor":    "Industrial",
		"Mall Food Court":  "Retail",
	}
	productTypes := []string{"Beverage", "Snack", "Food"}
	paymentMethods := []string{"Cash", "Credit Card Swipe", "Apple Pay", "Google Pay", "EMV Contactless"}

	var b strings.Builder
	b.WriteString("Customer,Region,Location,Location Type,Serial #,Asset #,Make,Model,Product Type,Trans Type Name,Tran Count,Vend Count,Amount,Two-Tier Pricing (Included in Net Revenue),Loyalty Discount (Included in Net Revenue)\n")

	serial := 1000
	for _, region := range regions {
		for _, location := range locations[region] {
			for m := 0; m < 2; m++ {
				serial++
				for _, productType := range productTypes {
					for _, method := range paymentMethods {
						trans := rng.Intn(40) + 1
						vends := trans + rng.Intn(5)
						amount := float64(vends)*2.25 + rng.Float64()*10
						fmt.Fprintf(&b, "Demo Vending Co,%s,%s,%s,VM%d,A-%d,Crane,187,%s,%s,%d,%d,\"$%.2f\",$0.00,$%.2f\n",
							region, location, locationTypes[location], serial, serial,
							productType, method, trans, vends, amount, rng.Float64(),
						)
					}
				}
			}
		}
	}

	return b.String()
}
