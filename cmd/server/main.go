package main

import (
	"bygg_flow_app_go/config"
	"bygg_flow_app_go/db"
	"bygg_flow_app_go/handlers"
	"bygg_flow_app_go/services"
	"log"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize file storage and the document store
	services.InitializeStorage(cfg)
	services.InitializeDocumentStore(db.DB)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: cfg.AllowedOrigins,
		}))
	} else {
		e.Use(echomiddleware.CORS())
	}

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Static files (embedded PDF fonts live here)
	e.Static("/static", "static")

	// Project request routes
	e.POST("/api/requests", handlers.CreateRequestHandler)
	e.GET("/api/requests", handlers.GetRequestsHandler)
	e.GET("/api/requests/:id", handlers.GetRequestHandler)

	// Shared project files
	e.POST("/api/requests/:id/files", handlers.UploadAttachmentHandler)
	e.GET("/api/requests/:id/files/:fileId", handlers.DownloadAttachmentHandler)

	// Document routes
	docRoutes := e.Group("/api/documents")
	{
		docRoutes.GET("", handlers.GetDocumentsHandler)
		docRoutes.GET("/:id", handlers.GetDocumentHandler)
		docRoutes.PUT("/:id", handlers.SaveDocumentHandler)
		docRoutes.POST("/:id/versions", handlers.CreateVersionHandler)
		docRoutes.PUT("/:id/status", handlers.UpdateDocumentStatusHandler)
		docRoutes.POST("/:id/attachments", handlers.LinkAttachmentHandler)
		docRoutes.GET("/:id/preview", handlers.PreviewDocumentHandler)
		docRoutes.GET("/:id/pdf", handlers.DownloadDocumentPDFHandler)
		docRoutes.GET("/:id/excel", handlers.ExportDocumentExcelHandler)
	}

	// Documents scoped to a request
	e.GET("/api/requests/:id/documents", handlers.GetRequestDocumentsHandler)
	e.POST("/api/requests/:id/documents", handlers.CreateDocumentHandler)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
