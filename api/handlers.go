package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chem-trans-api/entity"
	"chem-trans-api/models"
	"chem-trans-api/services"
)

func setupViewRoutes(rg *gin.RouterGroup, synonyms *entity.View[models.SynonymMv, *models.SynonymMv], log *zap.Logger) {
	g := rg.Group("/" + synonyms.Name())
	g.GET("", func(c *gin.Context) {
		rows, err := synonyms.List(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})
	g.GET("/search", func(c *gin.Context) {
		rows, err := synonyms.Search(c.Request.Context(), queryFilters(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})
}

func setupTransformationRoutes(rg *gin.RouterGroup, svc *services.TransformationService, log *zap.Logger) {
	rg.POST("/transformation", func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		payload, err := services.DecodePayload(raw)
		if err != nil {
			respondError(c, log, err)
			return
		}
		outcome, err := svc.Post(c.Request.Context(), payload)
		if err != nil {
			respondError(c, log, err)
			return
		}
		if outcome == services.OutcomeExists {
			c.JSON(http.StatusConflict, gin.H{"error": msgConflict})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": msgPosted})
	})

	g := rg.Group("/" + services.TransformationViewName)
	g.GET("", func(c *gin.Context) {
		rows, err := svc.ListView(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})
	g.GET("/search", func(c *gin.Context) {
		rows, err := svc.SearchView(c.Request.Context(), queryFilters(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})
}

func setupEnrichRoutes(rg *gin.RouterGroup, enricher *services.Enricher, log *zap.Logger) {
	rg.POST("/citation/:id/enrich", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		cit, err := enricher.Enrich(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		body, err := withURI(cit, "/api/citation/"+c.Param("id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, body)
	})
}

func setupExportRoutes(rg *gin.RouterGroup, exporter *services.Exporter, log *zap.Logger) {
	rg.POST("/exports", func(c *gin.Context) {
		if err := exporter.Trigger(); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Export started."})
	})
}

// setupConnectRoutes meldet jeden Verbindungsfehler als 500 mit dem Fehlertext.
func setupConnectRoutes(rg *gin.RouterGroup, db Pinger, driver string) {
	rg.GET("/connect", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Connected to " + driver})
	})
}
