package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/roster/internal/app"
	"github.com/shrimpsizemoose/roster/internal/handlers"
)

// A small implementation of the student records API, used for local
// development of the roster client.
func main() {
	var configPath = flag.String("config", "", "Path to config file")
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	dsn := config.Database.DSN
	if dsn == "" {
		dsn = "students.db"
	}

	store, err := app.NewStore(dsn, config.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	mux := http.NewServeMux()
	handlers.NewStudentHandler(store).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting student records server on %s", config.Server.Port)
	if err := http.ListenAndServe(config.Server.Port, mux); err != nil {
		logger.Error.Fatalf("Student records server failed: %v", err)
	}
}
