package services

import (
	"strings"

	"chem-trans-api/models"
)

// AuthorName ist ein geparster Autorenname. Nicht belegte Teile sind nil.
type AuthorName struct {
	First  *string
	Middle *string
	Last   *string
}

// Model wandelt den Namen in einen neuen Author-Datensatz um.
func (a AuthorName) Model() *models.Author {
	return &models.Author{FirstName: a.First, MiddleName: a.Middle, LastName: a.Last}
}

// ParseAuthors zerlegt eine kommaseparierte Autorenliste.
//
// Pro Eintrag entscheidet die Wortanzahl: zwei Wörter sind Vor- und Nachname, drei
// Wörter Vor-, Mittel- und Nachname. Ein einzelnes Wort und alles über drei Wörter
// landet unverändert im Nachnamen. Ein leerer Eintrag ergibt einen Autor ohne Namen.
// Ein komplett leerer String ergibt keine Autoren.
func ParseAuthors(authors string) []AuthorName {
	if strings.TrimSpace(authors) == "" {
		return nil
	}
	var out []AuthorName
	for _, entry := range strings.Split(authors, ",") {
		entry = strings.TrimSpace(entry)
		words := strings.Fields(entry)
		switch len(words) {
		case 0:
			out = append(out, AuthorName{})
		case 2:
			out = append(out, AuthorName{First: &words[0], Last: &words[1]})
		case 3:
			out = append(out, AuthorName{First: &words[0], Middle: &words[1], Last: &words[2]})
		default:
			last := entry
			out = append(out, AuthorName{Last: &last})
		}
	}
	return out
}

// FullName setzt "Vorname Mittelname Nachname" ohne leere Teile zusammen.
func (a AuthorName) FullName() string {
	var parts []string
	for _, p := range []*string{a.First, a.Middle, a.Last} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, " ")
}
