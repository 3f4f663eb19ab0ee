package main

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cuppa-app/backend/internal/models"
	"github.com/cuppa-app/backend/internal/service"
)

func strPtr(s string) *string { return &s }

var sampleTastings = []models.TastingRecord{
	{
		Name:    "Yirgacheffe Lot 4",
		Origin:  "Ethiopia",
		Notes:   "Washed process, jasmine on the nose, tea-like body.",
		Group:   strPtr("Filter"),
		Ratings: models.RatingsMap{"aroma": 9, "flavor": 8, "acidity": 9, "body": 4, "sweetness": 7},
		Flavors: models.FlavorList{"Floral", "Citrus", "Honey"},
	},
	{
		Name:    "Huila Decaf",
		Origin:  "Colombia",
		Notes:   "Sugarcane EA decaf, surprisingly sweet finish.",
		Group:   strPtr("Espresso"),
		Ratings: models.RatingsMap{"aroma": 6, "flavor": 7, "acidity": 5, "body": 7, "sweetness": 8},
		Flavors: models.FlavorList{"Chocolate", "Caramel"},
	},
	{
		Name:    "Mogiana Natural",
		Origin:  "Brazil",
		Notes:   "Heavy body, classic espresso base.",
		Group:   strPtr("Espresso"),
		Ratings: models.RatingsMap{"aroma": 6, "flavor": 7, "acidity": 3, "body": 9, "sweetness": 6},
		Flavors: models.FlavorList{"Nuts", "Chocolate", "Toasted"},
	},
	{
		Name:    "Nyeri AA",
		Origin:  "Kenya",
		Notes:   "Blackcurrant acidity, juicy.",
		Ratings: models.RatingsMap{"aroma": 8, "flavor": 9, "acidity": 9, "body": 6, "sweetness": 7},
		Flavors: models.FlavorList{"Fruity", "Citrus"},
	},
}

// Seeds a handful of tasting records through the service layer so IDs,
// defaults and rating vectors are produced exactly as the API would.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	tastings := service.NewTastingService(db)
	ctx := context.Background()

	for i := range sampleTastings {
		record := sampleTastings[i]
		saved, err := tastings.Save(ctx, &record)
		if err != nil {
			log.Fatalf("failed to seed %q: %v", record.Name, err)
		}
		log.Printf("Seeded %q (id %d)", saved.Name, saved.ID)
		// Keep millisecond IDs distinct even on fast machines.
		time.Sleep(5 * time.Millisecond)
	}

	log.Println("Seeding complete")
}
