package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chem-trans-api/entity"
)

// entityRoutes stellt einen Gateway unter /api/{table} bereit.
type entityRoutes[T any, P entity.ModelPtr[T]] struct {
	gw  *entity.Gateway[T, P]
	log *zap.Logger
}

func registerEntity[T any, P entity.ModelPtr[T]](rg *gin.RouterGroup, gw *entity.Gateway[T, P], log *zap.Logger) {
	h := &entityRoutes[T, P]{gw: gw, log: log.With(zap.String("entity", gw.Name()))}
	g := rg.Group("/" + gw.Name())
	g.GET("", h.list)
	g.GET("/search", h.search)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.put)
	g.PATCH("/:id", h.patch)
	g.DELETE("/:id", h.delete)
}

func (h *entityRoutes[T, P]) uri(id uint) string {
	return fmt.Sprintf("/api/%s/%d", h.gw.Name(), id)
}

func (h *entityRoutes[T, P]) render(c *gin.Context, status int, rec P) {
	body, err := withURI(rec, h.uri(rec.PrimaryKey()))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, body)
}

func (h *entityRoutes[T, P]) renderList(c *gin.Context, recs []T) {
	out := make([]json.RawMessage, 0, len(recs))
	for i := range recs {
		rec := P(&recs[i])
		body, err := withURI(rec, h.uri(rec.PrimaryKey()))
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		out = append(out, body)
	}
	c.JSON(http.StatusOK, out)
}

func (h *entityRoutes[T, P]) list(c *gin.Context) {
	recs, err := h.gw.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.renderList(c, recs)
}

func (h *entityRoutes[T, P]) search(c *gin.Context) {
	recs, err := h.gw.Search(c.Request.Context(), queryFilters(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.renderList(c, recs)
}

func (h *entityRoutes[T, P]) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.gw.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.render(c, http.StatusOK, rec)
}

func (h *entityRoutes[T, P]) create(c *gin.Context) {
	rec, err := decodeRecord[T, P](c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out, err := h.gw.Create(c.Request.Context(), rec)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.render(c, http.StatusCreated, out)
}

func (h *entityRoutes[T, P]) put(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := decodeRecord[T, P](c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out, created, err := h.gw.Put(c.Request.Context(), id, rec)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.render(c, status, out)
}

func (h *entityRoutes[T, P]) patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, h.log, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err))
		return
	}
	var partial []byte
	if len(bytes.TrimSpace(raw)) > 0 {
		obj, err := entity.ObjectBody(raw)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		if partial, err = stripURI(obj); err != nil {
			respondError(c, h.log, err)
			return
		}
	}
	out, err := h.gw.Patch(c.Request.Context(), id, partial)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.render(c, http.StatusOK, out)
}

func (h *entityRoutes[T, P]) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.gw.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
}

// parseID antwortet selbst mit 404, wenn die ID keine positive Zahl ist.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return 0, false
	}
	return uint(id), true
}

// decodeRecord liest einen vollständigen Datensatz. Unbekannte Felder sind ein Fehler;
// ein mitgeschicktes uri-Feld wird ignoriert.
func decodeRecord[T any, P entity.ModelPtr[T]](c *gin.Context) (P, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}
	obj, err := entity.ObjectBody(raw)
	if err != nil {
		return nil, err
	}
	if obj, err = stripURI(obj); err != nil {
		return nil, err
	}
	rec := P(new(T))
	dec := json.NewDecoder(bytes.NewReader(obj))
	dec.DisallowUnknownFields()
	if err := dec.Decode(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}
	return rec, nil
}

func stripURI(obj []byte) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(obj, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}
	if _, ok := m["uri"]; !ok {
		return obj, nil
	}
	delete(m, "uri")
	return json.Marshal(m)
}
