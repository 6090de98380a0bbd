// Package pubchem löst Strukturen über PubChem PUG REST in InChIKeys auf.
package pubchem

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"chem-trans-api/config"
	"chem-trans-api/providers"
)

type propertyResponse struct {
	PropertyTable struct {
		Properties []struct {
			CID      int    `json:"CID"`
			InChIKey string `json:"InChIKey"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

// Resolver fragt PubChem nach dem InChIKey einer SMILES-Struktur.
type Resolver struct {
	BaseURL string
	Logger  *zap.Logger
	client  *http.Client
}

// NewResolver erstellt einen neuen Resolver.
func NewResolver(cfg *config.Config, logger *zap.Logger) *Resolver {
	return &Resolver{
		BaseURL: strings.TrimRight(cfg.StructureResolverURL, "/"),
		Logger:  logger.With(zap.String("provider", "pubchem")),
		client:  providers.NewHTTPClient(20 * time.Second),
	}
}

// InChIKey gibt den Key zur Struktur zurück, leer wenn PubChem die Struktur nicht kennt.
// SMILES wird als Formularfeld übertragen, weil es Zeichen wie / und # enthalten kann.
func (r *Resolver) InChIKey(ctx context.Context, smiles string) (string, error) {
	endpoint := r.BaseURL + "/compound/smiles/property/InChIKey/JSON"
	form := url.Values{"smiles": {smiles}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusBadRequest:
		r.Logger.Debug("Struktur unbekannt", zap.String("smiles", smiles), zap.Int("status", resp.StatusCode))
		return "", nil
	default:
		return "", fmt.Errorf("pubchem request failed with status: %d", resp.StatusCode)
	}

	var pr propertyResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", err
	}
	for _, p := range pr.PropertyTable.Properties {
		if p.InChIKey != "" {
			return p.InChIKey, nil
		}
	}
	return "", nil
}
