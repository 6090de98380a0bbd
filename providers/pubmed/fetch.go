package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"chem-trans-api/config"
	"chem-trans-api/providers"
)

var (
	pdfRegex = regexp.MustCompile(`href="([^"]+\.pdf)"`)
	tarRegex = regexp.MustCompile(`href="([^"]+\.tar\.gz)"`)
)

// Fetcher ist eine Struktur, die die Logik zur Interaktion mit PubMed kapselt.
type Fetcher struct {
	BaseURL     string
	PMCUtilsURL string
	APIKey      string
	Logger      *zap.Logger
	client      *http.Client
}

// NewFetcher erstellt eine neue Instanz des PubMed-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		BaseURL:     strings.TrimRight(cfg.PubMedBaseURL, "/"),
		PMCUtilsURL: strings.TrimRight(cfg.PMCUtilsURL, "/"),
		APIKey:      cfg.PubMedAPIKey,
		Logger:      logger,
		client:      providers.NewHTTPClient(60 * time.Second),
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "pubmed"
}

// LookupDOI sucht die PMID zur DOI, holt die Metadaten via EFetch und, wenn der
// Artikel in PMC liegt, den Download-Link aus dem OA-Feed.
func (f *Fetcher) LookupDOI(ctx context.Context, doi string) (*providers.CitationMetadata, error) {
	log := f.Logger.With(zap.String("doi", doi))

	pmid, err := f.searchPMID(ctx, doi+"[doi]")
	if err != nil {
		return nil, fmt.Errorf("pubmed id lookup: %w", err)
	}
	if pmid == "" {
		return nil, providers.ErrNotFound
	}

	md, err := f.fetchMetadata(ctx, pmid)
	if err != nil {
		return nil, err
	}

	pmc, err := f.pmcID(ctx, pmid)
	if err != nil {
		log.Warn("PMCID lookup failed", zap.Error(err))
	}
	if pmc != "" {
		if md.PDFURL, err = f.oaLink(ctx, pmc); err != nil {
			log.Warn("PMC OA lookup failed", zap.Error(err))
		}
	}
	return md, nil
}

// eutils ruft einen E-Utilities-Endpunkt auf und hängt den API-Key an, falls gesetzt.
func (f *Fetcher) eutils(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	if f.APIKey != "" {
		params.Set("api_key", f.APIKey)
	}
	return f.get(ctx, f.BaseURL+"/"+endpoint+"?"+params.Encode())
}

func (f *Fetcher) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", req.URL.Path, resp.StatusCode)
	}
	return resp, nil
}

// searchPMID gibt die erste PMID zum Suchbegriff zurück, "" wenn es keinen Treffer gibt.
func (f *Fetcher) searchPMID(ctx context.Context, term string) (string, error) {
	f.Logger.Debug("ESearch", zap.String("term", term))
	resp, err := f.eutils(ctx, "esearch.fcgi", url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {"1"},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result ESearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode esearch: %w", err)
	}
	if ids := result.ESearchResult.IdList; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}

func (f *Fetcher) fetchMetadata(ctx context.Context, pmid string) (*providers.CitationMetadata, error) {
	resp, err := f.eutils(ctx, "efetch.fcgi", url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"retmode": {"xml"},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var set PubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode efetch: %w", err)
	}
	if len(set.Articles) == 0 {
		return nil, fmt.Errorf("efetch: PMID %s ohne PubmedArticle", pmid)
	}
	return mapArticle(&set.Articles[0]), nil
}

// pmcID übersetzt eine PMID über den ID Converter. Nicht jede PMID liegt in PMC.
func (f *Fetcher) pmcID(ctx context.Context, pmid string) (string, error) {
	resp, err := f.get(ctx, f.PMCUtilsURL+"/idconv/v1.0/?"+url.Values{"ids": {pmid}, "format": {"json"}}.Encode())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var conv IDConvResponse
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		return "", fmt.Errorf("decode idconv: %w", err)
	}
	for _, rec := range conv.Records {
		if rec.PMCID != "" {
			return rec.PMCID, nil
		}
	}
	return "", nil
}

// oaLink fragt den OA-Dienst nach einem Download für die PMCID.
func (f *Fetcher) oaLink(ctx context.Context, pmcID string) (string, error) {
	resp, err := f.get(ctx, f.PMCUtilsURL+"/oa/oa.fcgi?"+url.Values{"id": {pmcID}}.Encode())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var oa OAResponse
	if err := xml.Unmarshal(body, &oa); err != nil {
		f.Logger.Debug("OA-Antwort ist kein gültiges XML, nutze nur Regex", zap.Error(err))
	}
	if oa.Error != "" {
		return "", fmt.Errorf("oa: %s", oa.Error)
	}
	return normalizeURL(pickOALink(oa, body)), nil
}

// pickOALink bevorzugt ein PDF vor einem tar.gz-Paket. Die Regex greifen, wenn
// der Feed nicht sauber geparst werden konnte.
func pickOALink(oa OAResponse, raw []byte) string {
	var tgz string
	if len(oa.Records) > 0 {
		for _, l := range oa.Records[0].Links {
			switch {
			case l.Href == "":
			case strings.EqualFold(l.Format, "pdf"):
				return l.Href
			case strings.EqualFold(l.Format, "tgz") && tgz == "":
				tgz = l.Href
			}
		}
	}
	if m := pdfRegex.FindSubmatch(raw); m != nil {
		return string(m[1])
	}
	if tgz != "" {
		return tgz
	}
	if m := tarRegex.FindSubmatch(raw); m != nil {
		return string(m[1])
	}
	return ""
}

// normalizeURL stellt sicher, dass eine URL absolut und mit https ist.
func normalizeURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if strings.HasPrefix(rawURL, "ftp://") {
		return strings.Replace(rawURL, "ftp://", "https://", 1)
	}
	if strings.HasPrefix(rawURL, "//") {
		return "https:" + rawURL
	}
	if strings.HasPrefix(rawURL, "/") {
		return "https://www.ncbi.nlm.nih.gov" + rawURL
	}
	return rawURL
}

// mapArticle übernimmt Titel, Quelle, Autoren, DOI und Datum. Autoren ohne
// Vornamen erscheinen mit Initialen.
func mapArticle(pa *PubmedArticle) *providers.CitationMetadata {
	a := pa.Article
	md := &providers.CitationMetadata{
		URL:     "https://pubmed.ncbi.nlm.nih.gov/" + pa.PMID + "/",
		Title:   strings.TrimSuffix(strings.TrimSpace(a.Title), "."),
		Journal: a.Journal,
		Issue:   a.Issue.Issue,
		Pages:   a.Pages,
	}
	md.Volume, _ = strconv.Atoi(a.Issue.Volume)
	md.Year, _ = strconv.Atoi(a.Issue.Year)
	md.Month = parseMonth(a.Issue.Month)
	md.Day, _ = strconv.Atoi(a.Issue.Day)

	for _, au := range a.Authors {
		given := au.ForeName
		if given == "" {
			given = au.Initials
		}
		if name := strings.TrimSpace(given + " " + au.LastName); name != "" {
			md.Authors = append(md.Authors, name)
		}
	}
	for _, loc := range a.ELocations {
		if loc.Type == "doi" && loc.Valid == "Y" {
			md.DOI = strings.TrimSpace(loc.Value)
			break
		}
	}
	return md
}

func parseMonth(s string) int {
	if s == "" {
		return 0
	}
	if t, err := time.Parse("Jan", s); err == nil {
		return int(t.Month())
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return n
	}
	return 0
}
