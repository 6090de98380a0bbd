// Package providers bündelt die externen Dienste, mit denen Zitate angereichert und
// Strukturen aufgelöst werden.
package providers

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrNotFound meldet, dass der Dienst zu der Anfrage keinen Eintrag kennt.
var ErrNotFound = errors.New("no matching record at provider")

// CitationMetadata sind die bibliographischen Angaben, die ein Provider zu einer DOI liefert.
// Nullwerte bedeuten "unbekannt".
type CitationMetadata struct {
	DOI       string
	URL       string
	Title     string
	Journal   string
	Publisher string
	Issue     string
	Pages     string
	Volume    int
	Year      int
	Month     int
	Day       int
	Authors   []string
	PDFURL    string
}

// MetadataProvider ist das Interface, das jeder Metadaten-Provider (z.B. EuropePMC) implementieren muss.
type MetadataProvider interface {
	// LookupDOI sucht die Publikation zu einer DOI.
	LookupDOI(ctx context.Context, doi string) (*CitationMetadata, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "europepmc").
	Name() string
}

// PDFLocator findet einen frei zugänglichen PDF-Link zu einer DOI.
type PDFLocator interface {
	PDFLink(ctx context.Context, doi string) (string, error)
}

// userAgentTransport fügt jeder Anfrage einen User-Agent-Header hinzu.
type userAgentTransport struct {
	Transport http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "chem-trans-api/1.0 (+https://github.com/chem-trans-api)")
	return t.Transport.RoundTrip(req)
}

// NewHTTPClient erstellt den Client, den alle Provider für externe Anfragen verwenden.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{Transport: http.DefaultTransport},
	}
}
