package main

import (
	"log"
	"os"

	"soulscript-be/internal/constant"
	"soulscript-be/internal/model"
	"soulscript-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Predefined Feature Flags...")

	for _, predefined := range constant.PredefinedFeatureFlags {
		var existing model.FeatureFlag
		if err := db.Where("name = ?", predefined.Name).First(&existing).Error; err == nil {
			if existing.Description != predefined.Description {
				existing.Description = predefined.Description
				if err := db.Save(&existing).Error; err != nil {
					log.Printf("Error refreshing flag '%s': %v", predefined.Name, err)
				} else {
					log.Printf("Refreshed description for flag: %s", predefined.Name)
				}
			} else {
				log.Printf("Flag '%s' already exists, skipping...", predefined.Name)
			}
			continue
		}

		flag := model.FeatureFlag{
			Name:         predefined.Name,
			Description:  predefined.Description,
			IsEnabled:    false,
			IsPredefined: true,
		}
		if err := db.Create(&flag).Error; err != nil {
			log.Printf("Error creating flag '%s': %v", predefined.Name, err)
		} else {
			log.Printf("Created feature flag: %s", predefined.Name)
		}
	}

	color.Green("Feature flag seeding completed!")
}
