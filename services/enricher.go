package services

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"chem-trans-api/entity"
	"chem-trans-api/models"
	"chem-trans-api/providers"
)

var (
	// ErrPDFTooLarge: die Datei überschreitet maxPDFSize und wird nicht gespeichert.
	ErrPDFTooLarge = errors.New("pdf exceeds size limit")
	// ErrMissingDOI: ohne DOI kann ein Zitat nicht angereichert werden.
	ErrMissingDOI = errors.New("citation has no DOI")
	// ErrUpstream: kein Provider hat geantwortet.
	ErrUpstream = errors.New("citation providers unavailable")
)

// maxPDFSize begrenzt die gespeicherte PDF, maxPackageSize den Download eines
// tar.gz-Pakets, das neben der PDF auch Abbildungen enthält.
var (
	maxPDFSize     int64 = 50 << 20
	maxPackageSize int64 = 200 << 20
)

// Enricher ergänzt leere bibliographische Felder eines Zitats und lädt fehlende PDFs nach.
type Enricher struct {
	Citations *entity.Gateway[models.Citation, *models.Citation]
	Providers []providers.MetadataProvider
	PDFs      providers.PDFLocator
	Logger    *zap.Logger

	client *http.Client
}

// NewEnricher erstellt den Enricher. Die Provider werden in Reihenfolge befragt.
func NewEnricher(citations *entity.Gateway[models.Citation, *models.Citation], metadata []providers.MetadataProvider, pdfs providers.PDFLocator, logger *zap.Logger) *Enricher {
	return &Enricher{
		Citations: citations,
		Providers: metadata,
		PDFs:      pdfs,
		Logger:    logger.With(zap.String("service", "enrich")),
		client:    providers.NewHTTPClient(60 * time.Second),
	}
}

// Enrich reichert das Zitat mit der ID an und speichert es über den Gateway,
// damit die Duplikatprüfung auch hier greift.
func (e *Enricher) Enrich(ctx context.Context, id uint) (*models.Citation, error) {
	cit, err := e.Citations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cit.DOI == nil || strings.TrimSpace(*cit.DOI) == "" {
		return nil, ErrMissingDOI
	}
	doi := strings.TrimSpace(*cit.DOI)
	log := e.Logger.With(zap.Uint("citation_id", id), zap.String("doi", doi))

	var (
		found   bool
		lastErr error
		pdfLink string
	)
	for _, p := range e.Providers {
		md, err := p.LookupDOI(ctx, doi)
		if errors.Is(err, providers.ErrNotFound) {
			log.Debug("Provider kennt die DOI nicht", zap.String("provider", p.Name()))
			continue
		}
		if err != nil {
			log.Warn("Provider-Abfrage fehlgeschlagen", zap.String("provider", p.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		found = true
		applyMetadata(cit, md)
		if pdfLink == "" {
			pdfLink = md.PDFURL
		}
	}
	if !found && lastErr != nil {
		enrichmentsCounter.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, lastErr)
	}

	if len(cit.PDF) == 0 {
		// Unpaywall-Fallback, falls kein Download-Link vom Provider kam
		if pdfLink == "" && e.PDFs != nil {
			link, err := e.PDFs.PDFLink(ctx, doi)
			if err != nil && !errors.Is(err, providers.ErrNotFound) {
				log.Warn("PDF-Suche fehlgeschlagen", zap.Error(err))
			}
			pdfLink = link
		}
		if pdfLink != "" {
			data, ok, err := e.downloadResource(ctx, pdfLink)
			switch {
			case err != nil:
				log.Warn("Download fehlgeschlagen", zap.Error(err), zap.String("url", pdfLink))
			case !ok:
				log.Warn("Ressource heruntergeladen, aber keine PDF-Datei darin gefunden.", zap.String("url", pdfLink))
			default:
				cit.PDF = data
			}
		}
	}

	out, _, err := e.Citations.Put(ctx, id, cit)
	if err != nil {
		enrichmentsCounter.WithLabelValues("failed").Inc()
		return nil, err
	}
	enrichmentsCounter.WithLabelValues("ok").Inc()
	log.Info("Zitat angereichert", zap.Bool("found_metadata", found), zap.Bool("has_pdf", len(out.PDF) > 0))
	return out, nil
}

// applyMetadata füllt nur Felder, die im Zitat noch leer sind.
func applyMetadata(c *models.Citation, md *providers.CitationMetadata) {
	fillString(&c.URL, md.URL)
	fillString(&c.Title, md.Title)
	fillString(&c.Journal, md.Journal)
	fillString(&c.Publisher, md.Publisher)
	fillString(&c.Issue, md.Issue)
	fillString(&c.Pages, md.Pages)
	fillInt(&c.Volume, md.Volume)
	fillInt(&c.Year, md.Year)
	fillInt(&c.Month, md.Month)
	fillInt(&c.Day, md.Day)
}

func fillString(dst **string, v string) {
	if v == "" || (*dst != nil && **dst != "") {
		return
	}
	*dst = &v
}

func fillInt(dst **int, v int) {
	if v == 0 || (*dst != nil && **dst != 0) {
		return
	}
	*dst = &v
}

// downloadResource lädt eine Ressource herunter. Erkannt werden direkte PDFs und
// PDFs in tar.gz-Archiven (PMC OA-Pakete).
func (e *Enricher) downloadResource(ctx context.Context, link string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("bad status: %s", resp.Status)
	}
	lower := strings.ToLower(link)

	// Direkte PDF
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(contentType), "pdf") || strings.HasSuffix(lower, ".pdf") {
		if resp.ContentLength > maxPDFSize {
			return nil, false, fmt.Errorf("%w: %d bytes", ErrPDFTooLarge, resp.ContentLength)
		}
		data, err := readPDF(resp.Body)
		return data, err == nil, err
	}

	// Tar.gz-Archiv
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		if resp.ContentLength > maxPackageSize {
			return nil, false, fmt.Errorf("package exceeds size limit: %d bytes", resp.ContentLength)
		}
		// Ein abgeschnittenes Paket endet in gzip/tar mit unexpected EOF.
		gz, err := gzip.NewReader(io.LimitReader(resp.Body, maxPackageSize))
		if err != nil {
			return nil, false, err
		}
		defer gz.Close()

		tr := tar.NewReader(gz)
		for {
			header, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, false, err
			}
			if header.Typeflag == tar.TypeReg && strings.HasSuffix(strings.ToLower(header.Name), ".pdf") {
				e.Logger.Debug("PDF in Tar.gz gefunden", zap.String("filename", header.Name))
				if header.Size > maxPDFSize {
					return nil, false, fmt.Errorf("%w: %s has %d bytes", ErrPDFTooLarge, header.Name, header.Size)
				}
				data, err := readPDF(tr)
				return data, err == nil, err
			}
		}
	}

	return nil, false, nil
}

// readPDF liest höchstens maxPDFSize Bytes. Längere Daten sind ein Fehler,
// abgeschnittene Dateien werden nie zurückgegeben.
func readPDF(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPDFSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxPDFSize {
		return nil, ErrPDFTooLarge
	}
	return data, nil
}
