package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chem-trans-api/entity"
	"chem-trans-api/services"
)

const (
	msgNotFound          = "Record not found."
	msgConflict          = "Record already exists."
	msgMalformedQuery    = "The URL parameter(s) are incorrect or not specified."
	msgSubstanceNotFound = "DSSTox Substance ID(s) not found."
	msgDeleted           = "Record deleted."
	msgPosted            = "Record successfully posted."
)

// respondError bildet Fehler einmalig auf HTTP-Status und Nachricht ab.
// Unbekannte Fehler werden geloggt und als 500 gemeldet.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, services.ErrSubstanceNotFound):
		status, msg = http.StatusNotFound, msgSubstanceNotFound
	case errors.Is(err, entity.ErrNotFound):
		status, msg = http.StatusNotFound, msgNotFound
	case errors.Is(err, entity.ErrConflict):
		status, msg = http.StatusConflict, msgConflict
	case errors.Is(err, entity.ErrMalformedQuery):
		status, msg = http.StatusBadRequest, msgMalformedQuery
	case errors.Is(err, entity.ErrInvalidPayload), errors.Is(err, services.ErrMissingDOI):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUpstream):
		status, msg = http.StatusBadGateway, err.Error()
	case errors.Is(err, services.ErrExportDisabled):
		status, msg = http.StatusServiceUnavailable, err.Error()
	default:
		log.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

// withURI rendert rec als JSON-Objekt mit zusätzlichem uri-Feld.
func withURI(rec any, uri string) (json.RawMessage, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if len(b) < 2 || b[0] != '{' || b[len(b)-1] != '}' {
		return nil, fmt.Errorf("record %T is not a JSON object", rec)
	}
	u, err := json.Marshal(uri)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(b)+len(u)+8)
	out = append(out, b[:len(b)-1]...)
	if len(b) > 2 {
		out = append(out, ',')
	}
	out = append(out, `"uri":`...)
	out = append(out, u...)
	out = append(out, '}')
	return out, nil
}

// queryFilters nimmt pro Parameter den ersten Wert.
func queryFilters(c *gin.Context) map[string]string {
	filters := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			filters[k] = v[0]
		}
	}
	return filters
}
