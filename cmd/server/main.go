package main

import (
	"log"

	"blogicum/internal/config"
	"blogicum/internal/db"
	"blogicum/internal/router"
	"blogicum/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Database
	gdb, err := db.Open(db.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := db.Seed(gdb); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	r := router.New(router.Options{
		DB:            gdb,
		Clock:         services.SystemClock,
		Images:        services.NewImageStore(cfg.MediaDir),
		Mail:          services.NewMailService(cfg.SMTP, cfg.TemplatesDir),
		SessionSecret: cfg.SessionSecret,
		SiteURL:       cfg.SiteURL,
		TemplatesDir:  cfg.TemplatesDir,
		StaticDir:     cfg.StaticDir,
		MediaDir:      cfg.MediaDir,
	})

	log.Printf("Blogicum server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
