// Package api stellt die REST-Schnittstelle unter /api bereit.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"chem-trans-api/config"
	"chem-trans-api/entity"
	"chem-trans-api/models"
	"chem-trans-api/services"
)

// Pinger prüft die Datenbankverbindung.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps sind alle Abhängigkeiten des Routers.
type Deps struct {
	Config          *config.Config
	DB              *gorm.DB
	Driver          string
	Pinger          Pinger
	Transformations *services.TransformationService
	Enricher        *services.Enricher
	Exporter        *services.Exporter
	Logger          *zap.Logger
}

// NewRouter baut die gin-Engine mit Middleware und allen Routen.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(d.Logger))
	if len(d.Config.CORSAllowOrigins) > 0 {
		router.Use(corsMiddleware(d.Config.CORSAllowOrigins))
	}
	router.Use(apiKeyAuthMiddleware(d.Config))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	log := d.Logger

	citations := entity.NewGateway[models.Citation](d.DB, log)
	registerEntity(api, entity.NewGateway[models.GenericSubstance](d.DB, log), log)
	registerEntity(api, entity.NewGateway[models.Compound](d.DB, log), log)
	registerEntity(api, entity.NewGateway[models.GenericSubstanceCompound](d.DB, log), log)
	registerEntity(api, entity.NewGateway[models.SubstanceRelationship](d.DB, log), log)
	registerEntity(api, entity.NewGateway[models.SubstanceRelationshipType](d.DB, log), log)
	registerEntity(api, entity.NewGateway[models.Kinetics](d.DB, log), log)
	registerEntity(api, entity.NewGateway[models.Author](d.DB, log), log)
	registerEntity(api, citations, log)
	registerEntity(api, entity.NewGateway[models.QCLevel](d.DB, log), log)

	setupViewRoutes(api, entity.NewView[models.SynonymMv](d.DB, log), log)
	setupTransformationRoutes(api, d.Transformations, log)
	setupEnrichRoutes(api, d.Enricher, log)
	setupExportRoutes(api, d.Exporter, log)
	setupConnectRoutes(api, d.Pinger, d.Driver)

	return router
}
