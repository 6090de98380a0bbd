package models

import "chem-trans-api/entity"

// Citation speichert die bibliographischen Daten einer Quelle inklusive PDF.
type Citation struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	DOI       *string `json:"doi" gorm:"column:doi;index"`
	URL       *string `json:"url" gorm:"column:url"`
	Year      *int    `json:"year" gorm:"column:year"`
	Month     *int    `json:"month" gorm:"column:month"`
	Day       *int    `json:"day" gorm:"column:day"`
	Publisher *string `json:"publisher" gorm:"column:publisher"`
	Volume    *int    `json:"volume" gorm:"column:volume"`
	Issue     *string `json:"issue" gorm:"column:issue"`
	Pages     *string `json:"pages" gorm:"column:pages"`
	Title     *string `json:"title" gorm:"column:title;type:text"`
	Journal   *string `json:"journal" gorm:"column:journal"`
	PDF       []byte  `json:"pdf" gorm:"column:pdf"`
}

func (Citation) TableName() string { return "citation" }

func (c *Citation) PrimaryKey() uint      { return c.ID }
func (c *Citation) SetPrimaryKey(id uint) { c.ID = id }

func (c *Citation) Fields() []entity.Field {
	return []entity.Field{
		{Column: "doi", Value: entity.Nullable(c.DOI)},
		{Column: "url", Value: entity.Nullable(c.URL)},
		{Column: "year", Value: entity.Nullable(c.Year)},
		{Column: "month", Value: entity.Nullable(c.Month)},
		{Column: "day", Value: entity.Nullable(c.Day)},
		{Column: "publisher", Value: entity.Nullable(c.Publisher)},
		{Column: "volume", Value: entity.Nullable(c.Volume)},
		{Column: "issue", Value: entity.Nullable(c.Issue)},
		{Column: "pages", Value: entity.Nullable(c.Pages)},
		{Column: "title", Value: entity.Nullable(c.Title)},
		{Column: "journal", Value: entity.Nullable(c.Journal)},
		{Column: "pdf", Value: entity.Blob(c.PDF)},
	}
}

// Author ist eine Person, eindeutig über (Vorname, Mittelname, Nachname).
type Author struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	FirstName  *string `json:"first_name" gorm:"column:first_name"`
	MiddleName *string `json:"middle_name" gorm:"column:middle_name"`
	LastName   *string `json:"last_name" gorm:"column:last_name;index"`
}

func (Author) TableName() string { return "author" }

func (a *Author) PrimaryKey() uint      { return a.ID }
func (a *Author) SetPrimaryKey(id uint) { a.ID = id }

func (a *Author) Fields() []entity.Field {
	return []entity.Field{
		{Column: "first_name", Value: entity.Nullable(a.FirstName)},
		{Column: "middle_name", Value: entity.Nullable(a.MiddleName)},
		{Column: "last_name", Value: entity.Nullable(a.LastName)},
	}
}

// AuthorCited verknüpft Autor und Zitat.
type AuthorCited struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	FKCitationID uint `json:"fk_citation_id" gorm:"column:fk_citation_id;not null;index"`
	FKAuthorID   uint `json:"fk_author_id" gorm:"column:fk_author_id;not null;index"`
}

func (AuthorCited) TableName() string { return "author_cited" }

func (a *AuthorCited) PrimaryKey() uint      { return a.ID }
func (a *AuthorCited) SetPrimaryKey(id uint) { a.ID = id }

func (a *AuthorCited) Fields() []entity.Field {
	return []entity.Field{
		{Column: "fk_citation_id", Value: a.FKCitationID},
		{Column: "fk_author_id", Value: a.FKAuthorID},
	}
}

// TransformationCited ist der einzige Beleg, dass eine Beziehung (plus optionaler
// Kinetik) durch ein Zitat gestützt wird. Das Tripel darf nur einmal vorkommen.
type TransformationCited struct {
	ID                        uint  `json:"id" gorm:"primaryKey"`
	FKSubstanceRelationshipID uint  `json:"fk_substance_relationship_id" gorm:"column:fk_substance_relationship_id;not null;index"`
	FKKineticsID              *uint `json:"fk_kinetics_id" gorm:"column:fk_kinetics_id"`
	FKCitationID              uint  `json:"fk_citation_id" gorm:"column:fk_citation_id;not null;index"`
}

func (TransformationCited) TableName() string { return "transformation_cited" }

func (t *TransformationCited) PrimaryKey() uint      { return t.ID }
func (t *TransformationCited) SetPrimaryKey(id uint) { t.ID = id }

func (t *TransformationCited) Fields() []entity.Field {
	return []entity.Field{
		{Column: "fk_substance_relationship_id", Value: t.FKSubstanceRelationshipID},
		{Column: "fk_kinetics_id", Value: entity.Nullable(t.FKKineticsID)},
		{Column: "fk_citation_id", Value: t.FKCitationID},
	}
}
