package unpaywall

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

// Response repräsentiert die JSON-Antwort der Unpaywall-API.
type Response struct {
	DOI         string `json:"doi"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	JournalName string `json:"journal_name"`
	Publisher   string `json:"publisher"`
	DOIURL      string `json:"doi_url"`

	BestOALocation *struct {
		URL       string `json:"url"`
		URLForPDF string `json:"url_for_pdf"`
	} `json:"best_oa_location"`
}

// Fetcher kapselt die Logik für Unpaywall.
type Fetcher struct {
	BaseURL string
	Email   string
	Logger  *zap.Logger
	client  *http.Client
}

// NewFetcher erstellt einen neuen Unpaywall-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		BaseURL: strings.TrimRight(cfg.UnpaywallBaseURL, "/"),
		Email:   cfg.UnpaywallEmail,
		Logger:  logger,
		client:  providers.NewHTTPClient(30 * time.Second),
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "unpaywall"
}

func (f *Fetcher) fetch(ctx context.Context, doi string) (*Response, error) {
	if f.Email == "" {
		return nil, fmt.Errorf("unpaywall email ist nicht konfiguriert")
	}

	u := fmt.Sprintf("%s/%s?email=%s", f.BaseURL, url.PathEscape(doi), url.QueryEscape(f.Email))
	log := f.Logger.With(zap.String("doi", doi))
	log.Debug("Rufe Unpaywall API auf.")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, providers.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unpaywall request failed with status: %d", resp.StatusCode)
	}

	var ur Response
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, err
	}
	return &ur, nil
}

// LookupDOI liefert die Basisdaten, die Unpaywall zu einer DOI kennt.
func (f *Fetcher) LookupDOI(ctx context.Context, doi string) (*providers.CitationMetadata, error) {
	ur, err := f.fetch(ctx, doi)
	if err != nil {
		return nil, err
	}
	md := &providers.CitationMetadata{
		DOI:       ur.DOI,
		URL:       ur.DOIURL,
		Title:     ur.Title,
		Journal:   ur.JournalName,
		Publisher: ur.Publisher,
		Year:      ur.Year,
	}
	if ur.BestOALocation != nil {
		md.PDFURL = ur.BestOALocation.URLForPDF
	}
	return md, nil
}

// PDFLink holt einen freien PDF-Link via Unpaywall anhand der DOI.
// Ein leerer String ohne Fehler heißt: kein Open-Access-PDF bekannt.
func (f *Fetcher) PDFLink(ctx context.Context, doi string) (string, error) {
	ur, err := f.fetch(ctx, doi)
	if err != nil {
		return "", err
	}
	if ur.BestOALocation != nil && ur.BestOALocation.URLForPDF != "" {
		f.Logger.Info("PDF-Link über Unpaywall gefunden.", zap.String("doi", doi))
		return ur.BestOALocation.URLForPDF, nil
	}
	f.Logger.Debug("Kein PDF-Link in Unpaywall-Antwort gefunden.", zap.String("doi", doi))
	return "", nil
}
