package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransformationSubmission protokolliert Einreichungen, die Datensätze angelegt haben.
type TransformationSubmission struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	RequestID string         `json:"request_id" gorm:"size:64;index"`
	Payload   datatypes.JSON `json:"payload"`
	Outcome   string         `json:"outcome" gorm:"size:32;index"`

	RelationshipID *uint `json:"relationship_id,omitempty"`
	CitationID     *uint `json:"citation_id,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (TransformationSubmission) TableName() string {
	return "transformation_submissions"
}

// All listet alle Tabellen für AutoMigrate.
func All() []any {
	return []any{
		&QCLevel{}, &GenericSubstance{}, &Compound{}, &GenericSubstanceCompound{},
		&SynonymMv{}, &SubstanceRelationshipType{}, &SubstanceRelationship{},
		&Kinetics{}, &Citation{}, &Author{}, &AuthorCited{}, &TransformationCited{},
		&TransformationSubmission{},
	}
}
