// main.go
//
// Real-estate brokerage back office data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of brokerdb.
// brokerdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// brokerdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with brokerdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/brokerdb/internal/auth"
	"github.com/localnerve/brokerdb/internal/config"
	"github.com/localnerve/brokerdb/internal/database"
	"github.com/localnerve/brokerdb/internal/routes"
	"github.com/localnerve/brokerdb/internal/storage"
	"github.com/localnerve/brokerdb/internal/utils"

	_ "github.com/localnerve/brokerdb/docs/api" // Swagger docs
)

// @title BrokerDB API
// @version 1.0.0
// @description Real-estate brokerage back office: properties, clients, contracts, visits and interactions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/brokerdb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	utils.InitLogger("brokerdb")

	db, err := database.Connect(cfg)
	if err != nil {
		utils.Logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations and constraints
	if err := database.Migrate(db, cfg.DBType); err != nil {
		utils.Logger.Fatalf("Failed to run migrations: %v", err)
	}

	store, err := storage.NewLocalStore(cfg.MediaRoot)
	if err != nil {
		utils.Logger.Fatalf("Failed to open media store: %v", err)
	}
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	app := routes.NewApp(cfg)
	app.Use(logger.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("brokerdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	routes.Setup(app, routes.Deps{Config: cfg, DB: db, Store: store, Issuer: issuer})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		utils.Logger.Info("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	utils.Logger.Infof("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		utils.Logger.Fatalf("Failed to start server: %v", err)
	}

	utils.Logger.Info("Server stopped")
}
