package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prodgeti/foodgram/cmd/config"
	migration "github.com/prodgeti/foodgram/cmd/database/migrate"
	"github.com/prodgeti/foodgram/cmd/database/seed"
	"github.com/prodgeti/foodgram/internal/utils"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "run database migrations and exit")
	seedIngredients := flag.String("seed-ingredients", "", "path to the ingredients JSON file to import")
	seedTags := flag.String("seed-tags", "", "comma separated tag names to create")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if *seedIngredients != "" {
		if err := seed.SeedIngredients(db, *seedIngredients); err != nil {
			log.Fatalf("Seeding ingredients failed: %v", err)
		}
	}
	if *seedTags != "" {
		if err := seed.SeedTags(db, strings.Split(*seedTags, ",")); err != nil {
			log.Fatalf("Seeding tags failed: %v", err)
		}
	}
	if *migrateOnly || *seedIngredients != "" || *seedTags != "" {
		return
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + utils.GetConfig("APP_PORT")); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
