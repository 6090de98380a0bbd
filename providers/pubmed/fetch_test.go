package pubmed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chem-trans-api/config"
	"chem-trans-api/providers"
)

const efetchResponse = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>31234567</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <Volume>53</Volume>
            <Issue>8</Issue>
            <PubDate><Year>2019</Year><Month>Apr</Month><Day>16</Day></PubDate>
          </JournalIssue>
          <Title>Environmental science &amp; technology</Title>
        </Journal>
        <ArticleTitle>Photolysis of atrazine.</ArticleTitle>
        <Pagination><MedlinePgn>4512-4520</MedlinePgn></Pagination>
        <ELocationID EIdType="doi" ValidYN="Y">10.1021/acs.est.9b00001</ELocationID>
        <AuthorList>
          <Author><LastName>Doe</LastName><ForeName>Jane</ForeName><Initials>J</Initials></Author>
          <Author><LastName>Roe</LastName><Initials>R</Initials></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

const oaResponse = `<OA><records><record id="PMC6500000">
  <link format="tgz" href="ftp://ftp.ncbi.nlm.nih.gov/pub/pmc/oa_package/PMC6500000.tar.gz"/>
  <link format="pdf" href="ftp://ftp.ncbi.nlm.nih.gov/pub/pmc/oa_pdf/PMC6500000.pdf"/>
</record></records></OA>`

func newTestFetcher(t *testing.T, mux *http.ServeMux) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewFetcher(&config.Config{PubMedBaseURL: srv.URL + "/eutils", PMCUtilsURL: srv.URL + "/pmc"}, zap.NewNop())
}

func TestLookupDOI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/eutils/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10.1021/acs.est.9b00001[doi]", r.URL.Query().Get("term"))
		_, _ = w.Write([]byte(`{"esearchresult":{"idlist":["31234567"]}}`))
	})
	mux.HandleFunc("/eutils/efetch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "31234567", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(efetchResponse))
	})
	mux.HandleFunc("/pmc/idconv/v1.0/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"records":[{"pmcid":"PMC6500000"}]}`))
	})
	mux.HandleFunc("/pmc/oa/oa.fcgi", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PMC6500000", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(oaResponse))
	})
	f := newTestFetcher(t, mux)

	md, err := f.LookupDOI(context.Background(), "10.1021/acs.est.9b00001")
	require.NoError(t, err)
	assert.Equal(t, "10.1021/acs.est.9b00001", md.DOI)
	assert.Equal(t, "Photolysis of atrazine", md.Title)
	assert.Equal(t, "Environmental science & technology", md.Journal)
	assert.Equal(t, 53, md.Volume)
	assert.Equal(t, "8", md.Issue)
	assert.Equal(t, "4512-4520", md.Pages)
	assert.Equal(t, 2019, md.Year)
	assert.Equal(t, 4, md.Month)
	assert.Equal(t, 16, md.Day)
	assert.Equal(t, []string{"Jane Doe", "R Roe"}, md.Authors)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/31234567/", md.URL)
	assert.Equal(t, "https://ftp.ncbi.nlm.nih.gov/pub/pmc/oa_pdf/PMC6500000.pdf", md.PDFURL)
}

func TestLookupDOIWithoutPMC(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/eutils/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"esearchresult":{"idlist":["31234567"]}}`))
	})
	mux.HandleFunc("/eutils/efetch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(efetchResponse))
	})
	mux.HandleFunc("/pmc/idconv/v1.0/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"records":[{"pmid":"31234567"}]}`))
	})
	f := newTestFetcher(t, mux)

	md, err := f.LookupDOI(context.Background(), "10.1021/acs.est.9b00001")
	require.NoError(t, err)
	assert.Empty(t, md.PDFURL)
}

func TestLookupDOINotIndexed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/eutils/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"esearchresult":{"idlist":[]}}`))
	})
	f := newTestFetcher(t, mux)

	_, err := f.LookupDOI(context.Background(), "10.1/none")
	assert.ErrorIs(t, err, providers.ErrNotFound)
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"":                          "",
		"ftp://host/a.pdf":          "https://host/a.pdf",
		"//host/a.pdf":              "https://host/a.pdf",
		"/pmc/articles/a.pdf":       "https://www.ncbi.nlm.nih.gov/pmc/articles/a.pdf",
		"https://example.org/a.pdf": "https://example.org/a.pdf",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeURL(in), in)
	}
}

func TestPickOALink(t *testing.T) {
	tgzOnly := OAResponse{Records: []OARecord{{Links: []OALink{{Format: "tgz", Href: "ftp://x/PMC1.tar.gz"}}}}}
	assert.Equal(t, "ftp://x/PMC1.tar.gz", pickOALink(tgzOnly, nil))

	both := OAResponse{Records: []OARecord{{Links: []OALink{
		{Format: "tgz", Href: "ftp://x/PMC1.tar.gz"},
		{Format: "pdf", Href: "ftp://x/PMC1.pdf"},
	}}}}
	assert.Equal(t, "ftp://x/PMC1.pdf", pickOALink(both, nil))

	raw := []byte(`<broken><link href="/pub/PMC2.pdf"></broken`)
	assert.Equal(t, "/pub/PMC2.pdf", pickOALink(OAResponse{}, raw))
	assert.Empty(t, pickOALink(OAResponse{}, []byte("<OA/>")))
}
