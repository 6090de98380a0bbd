package europepmc

import (
	"strconv"
	"strings"
	"time"
)

// SearchResponse ist die Top-Level-Struktur der Europe PMC API-Antwort.
type SearchResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Result []Article `json:"result"`
	} `json:"resultList"`
}

// Article repräsentiert einen einzelnen Artikel in der API-Antwort (resultType=core).
type Article struct {
	ID                   string      `json:"id"`
	Source               string      `json:"source"`
	PMID                 string      `json:"pmid"`
	DOI                  string      `json:"doi"`
	Title                string      `json:"title"`
	AuthorString         string      `json:"authorString"`
	PubYear              string      `json:"pubYear"`
	PageInfo             string      `json:"pageInfo"`
	FirstPublicationDate string      `json:"firstPublicationDate"`
	JournalInfo          JournalInfo `json:"journalInfo"`
	AuthorList           struct {
		Author []Author `json:"author"`
	} `json:"authorList"`
	FullTextURLList struct {
		FullTextURL []FullTextURL `json:"fullTextUrl"`
	} `json:"fullTextUrlList"`
	IsOpenAccess string `json:"isOpenAccess"`
}

// JournalInfo enthält Band, Heft und Erscheinungsdatum.
type JournalInfo struct {
	Issue                string `json:"issue"`
	Volume               string `json:"volume"`
	YearOfPublication    int    `json:"yearOfPublication"`
	MonthOfPublication   int    `json:"monthOfPublication"`
	PrintPublicationDate string `json:"printPublicationDate"`
	Journal              struct {
		Title string `json:"title"`
	} `json:"journal"`
}

// Author ist ein Eintrag der authorList.
type Author struct {
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FullTextURL repräsentiert einen einzelnen Volltext-Link.
type FullTextURL struct {
	Availability     string `json:"availability"`
	AvailabilityCode string `json:"availabilityCode"`
	DocumentStyle    string `json:"documentStyle"`
	Site             string `json:"site"`
	URL              string `json:"url"`
}

// Hilfsfunktion zum sicheren Parsen von Daten.
func parseEuroDate(dateStr string) *time.Time {
	layouts := []string{"2006-01-02", "2006-01", "2006"}
	for _, layout := range layouts {
		t, err := time.Parse(layout, dateStr)
		if err == nil {
			return &t
		}
	}
	return nil
}

// atoi liefert 0 für nicht-numerische Angaben wie "12 Suppl".
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
