package services

import (
	"fmt"
	"strings"
)

// maxListedAuthors: ab hier wird mit "et al." abgekürzt.
const maxListedAuthors = 6

// Reference sind die Angaben, aus denen FormatReference eine Literaturangabe baut.
type Reference struct {
	Authors []string
	Year    int
	Title   string
	Journal string
	Volume  int
	Issue   string
	Pages   string
	DOI     string
}

// FormatReference renders a citation into a compact reference string.
func FormatReference(r Reference) string {
	authors := r.Authors
	etAl := false
	if len(authors) > maxListedAuthors {
		authors, etAl = authors[:maxListedAuthors], true
	}
	names := strings.Join(authors, ", ")
	if etAl {
		names += " et al."
	}
	if names == "" {
		names = "Unknown Authors"
	}
	year := "n.d."
	if r.Year > 0 {
		year = fmt.Sprintf("%d", r.Year)
	}
	title := strings.TrimSuffix(strings.TrimSpace(r.Title), ".")
	if title == "" {
		title = "Untitled"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s). %s.", names, year, title)
	if r.Journal != "" {
		b.WriteString(" " + r.Journal)
		if r.Volume > 0 {
			fmt.Fprintf(&b, " %d", r.Volume)
		}
		if r.Issue != "" {
			fmt.Fprintf(&b, "(%s)", r.Issue)
		}
		if r.Pages != "" {
			b.WriteString(", " + r.Pages)
		}
		b.WriteString(".")
	}
	if r.DOI != "" {
		b.WriteString(" doi:" + r.DOI)
	}
	return b.String()
}
