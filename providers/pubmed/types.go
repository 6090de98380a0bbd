// Package pubmed löst DOIs über die NCBI E-Utilities und den PMC OA-Dienst auf.
package pubmed

import (
	"encoding/xml"
)

// ESearchResponse ist die JSON-Antwort von esearch.fcgi.
type ESearchResponse struct {
	ESearchResult struct {
		IdList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// IDConvResponse ist die JSON-Antwort des PMC ID Converters.
type IDConvResponse struct {
	Records []struct {
		PMCID string `json:"pmcid"`
	} `json:"records"`
}

// OAResponse ist die XML-Antwort von oa.fcgi.
type OAResponse struct {
	XMLName xml.Name   `xml:"OA"`
	Error   string     `xml:"error"`
	Records []OARecord `xml:"records>record"`
}

type OARecord struct {
	Links []OALink `xml:"link"`
}

// OALink: Format ist "pdf" oder "tgz".
type OALink struct {
	Format string `xml:"format,attr"`
	Href   string `xml:"href,attr"`
}

// PubmedArticleSet ist das Wurzelelement von efetch.fcgi (retmode=xml).
type PubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []PubmedArticle `xml:"PubmedArticle"`
}

// PubmedArticle enthält nur die Felder, die ein Zitat braucht.
type PubmedArticle struct {
	PMID    string  `xml:"MedlineCitation>PMID"`
	Article Article `xml:"MedlineCitation>Article"`
}

type Article struct {
	Title      string          `xml:"ArticleTitle"`
	Authors    []ArticleAuthor `xml:"AuthorList>Author"`
	Journal    string          `xml:"Journal>Title"`
	Issue      JournalIssue    `xml:"Journal>JournalIssue"`
	Pages      string          `xml:"Pagination>MedlinePgn"`
	ELocations []ELocationID   `xml:"ELocationID"`
}

type ArticleAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
	Initials string `xml:"Initials"`
}

// JournalIssue: Month kommt als "Jan" oder als Zahl.
type JournalIssue struct {
	Volume string `xml:"Volume"`
	Issue  string `xml:"Issue"`
	Year   string `xml:"PubDate>Year"`
	Month  string `xml:"PubDate>Month"`
	Day    string `xml:"PubDate>Day"`
}

type ELocationID struct {
	Type  string `xml:"EIdType,attr"`
	Valid string `xml:"ValidYN,attr"`
	Value string `xml:",chardata"`
}
