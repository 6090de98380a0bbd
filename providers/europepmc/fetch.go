package europepmc

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

// Fetcher implementiert das MetadataProvider-Interface für Europe PMC.
type Fetcher struct {
	BaseURL string
	Logger  *zap.Logger
	client  *http.Client
}

// NewFetcher erstellt einen neuen Europe PMC Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		BaseURL: strings.TrimRight(cfg.EuropePMCBaseURL, "/"),
		Logger:  logger,
		client:  providers.NewHTTPClient(60 * time.Second),
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "europepmc"
}

// LookupDOI sucht den Artikel mit exakt dieser DOI.
func (f *Fetcher) LookupDOI(ctx context.Context, doi string) (*providers.CitationMetadata, error) {
	log := f.Logger.With(zap.String("doi", doi))

	query := fmt.Sprintf("DOI:\"%s\"", doi)
	searchURL := fmt.Sprintf("%s/search?query=%s&format=json&resultType=core&pageSize=1", f.BaseURL, url.QueryEscape(query))
	log.Debug("Rufe Europe PMC API auf", zap.String("url", searchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("europepmc request failed with status: %d", resp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	for _, article := range searchResponse.ResultList.Result {
		if strings.EqualFold(article.DOI, doi) {
			log.Info("Artikel auf Europe PMC gefunden", zap.String("pmid", article.PMID))
			return mapArticle(&article), nil
		}
	}
	log.Debug("Keine Treffer auf Europe PMC.")
	return nil, providers.ErrNotFound
}

// mapArticle konvertiert ein Europe PMC Article-Objekt in Zitat-Metadaten.
func mapArticle(article *Article) *providers.CitationMetadata {
	md := &providers.CitationMetadata{
		DOI:     article.DOI,
		Title:   strings.TrimSuffix(strings.TrimSpace(article.Title), "."),
		Journal: article.JournalInfo.Journal.Title,
		Issue:   article.JournalInfo.Issue,
		Volume:  atoi(article.JournalInfo.Volume),
		Pages:   article.PageInfo,
		Year:    article.JournalInfo.YearOfPublication,
		Month:   article.JournalInfo.MonthOfPublication,
	}
	if md.Year == 0 {
		md.Year = atoi(article.PubYear)
	}
	if t := parseEuroDate(article.JournalInfo.PrintPublicationDate); t != nil {
		if md.Year == 0 {
			md.Year = t.Year()
		}
		if md.Month == 0 {
			md.Month = int(t.Month())
		}
		if len(article.JournalInfo.PrintPublicationDate) == len("2006-01-02") {
			md.Day = t.Day()
		}
	}
	if article.PMID != "" {
		md.URL = fmt.Sprintf("https://europepmc.org/article/MED/%s", article.PMID)
	}
	for _, a := range article.AuthorList.Author {
		if a.FirstName != "" && a.LastName != "" {
			md.Authors = append(md.Authors, a.FirstName+" "+a.LastName)
		} else if a.FullName != "" {
			md.Authors = append(md.Authors, a.FullName)
		}
	}

	// Finde den besten PDF-Link
	for _, u := range article.FullTextURLList.FullTextURL {
		if u.DocumentStyle == "pdf" && u.AvailabilityCode == "OA" {
			md.PDFURL = u.URL
			break
		}
	}
	return md
}
