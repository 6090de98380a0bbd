package models

import "chem-trans-api/entity"

// GenericSubstance ist ein DSSTox-Substanzdatensatz (z.B. DTXSID7020182).
type GenericSubstance struct {
	ID                uint    `json:"id" gorm:"primaryKey"`
	FKQCLevelID       uint    `json:"fk_qc_level_id" gorm:"column:fk_qc_level_id;not null"`
	DSSToxSubstanceID *string `json:"dsstox_substance_id" gorm:"column:dsstox_substance_id;index"`
	CASRN             *string `json:"casrn" gorm:"column:casrn"`
	PreferredName     *string `json:"preferred_name" gorm:"column:preferred_name"`
	SubstanceType     *string `json:"substance_type" gorm:"column:substance_type"`
	QCNotes           *string `json:"qc_notes" gorm:"column:qc_notes"`
	QCNotesPrivate    *string `json:"qc_notes_private" gorm:"column:qc_notes_private"`
	Source            *string `json:"source" gorm:"column:source"`
	CreatedBy         *string `json:"created_by" gorm:"column:created_by"`
	UpdatedBy         *string `json:"updated_by" gorm:"column:updated_by"`
	CreatedAt         *string `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         *string `json:"updated_at" gorm:"column:updated_at"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (GenericSubstance) TableName() string {
	return "generic_substances"
}

func (s *GenericSubstance) PrimaryKey() uint      { return s.ID }
func (s *GenericSubstance) SetPrimaryKey(id uint) { s.ID = id }

func (s *GenericSubstance) Fields() []entity.Field {
	return []entity.Field{
		{Column: "fk_qc_level_id", Value: s.FKQCLevelID},
		{Column: "dsstox_substance_id", Value: entity.Nullable(s.DSSToxSubstanceID)},
		{Column: "casrn", Value: entity.Nullable(s.CASRN)},
		{Column: "preferred_name", Value: entity.Nullable(s.PreferredName)},
		{Column: "substance_type", Value: entity.Nullable(s.SubstanceType)},
		{Column: "qc_notes", Value: entity.Nullable(s.QCNotes)},
		{Column: "qc_notes_private", Value: entity.Nullable(s.QCNotesPrivate)},
		{Column: "source", Value: entity.Nullable(s.Source)},
		{Column: "created_by", Value: entity.Nullable(s.CreatedBy)},
		{Column: "updated_by", Value: entity.Nullable(s.UpdatedBy)},
		{Column: "created_at", Value: entity.Nullable(s.CreatedAt)},
		{Column: "updated_at", Value: entity.Nullable(s.UpdatedAt)},
	}
}

// QCLevel beschreibt die Qualitätsstufe der Kuratierung einer Substanz.
type QCLevel struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        *string `json:"name" gorm:"column:name"`
	Label       *string `json:"label" gorm:"column:label"`
	Description *string `json:"description" gorm:"column:description"`
	CreatedBy   *string `json:"created_by" gorm:"column:created_by"`
	UpdatedBy   *string `json:"updated_by" gorm:"column:updated_by"`
	CreatedAt   *string `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   *string `json:"updated_at" gorm:"column:updated_at"`
}

func (QCLevel) TableName() string { return "qc_levels" }

func (q *QCLevel) PrimaryKey() uint      { return q.ID }
func (q *QCLevel) SetPrimaryKey(id uint) { q.ID = id }

func (q *QCLevel) Fields() []entity.Field {
	return []entity.Field{
		{Column: "name", Value: entity.Nullable(q.Name)},
		{Column: "label", Value: entity.Nullable(q.Label)},
		{Column: "description", Value: entity.Nullable(q.Description)},
		{Column: "created_by", Value: entity.Nullable(q.CreatedBy)},
		{Column: "updated_by", Value: entity.Nullable(q.UpdatedBy)},
		{Column: "created_at", Value: entity.Nullable(q.CreatedAt)},
		{Column: "updated_at", Value: entity.Nullable(q.UpdatedAt)},
	}
}

// SynonymMv ordnet beliebige Bezeichner (Name, CASRN, InChIKey) einer Substanz zu.
// Kleinerer Rank = bevorzugter Treffer.
type SynonymMv struct {
	ID                   uint    `json:"id" gorm:"primaryKey"`
	FKGenericSubstanceID *uint   `json:"fk_generic_substance_id" gorm:"column:fk_generic_substance_id;index"`
	Identifier           *string `json:"identifier" gorm:"column:identifier;index"`
	SynonymType          *string `json:"synonym_type" gorm:"column:synonym_type"`
	Rank                 *int    `json:"rank" gorm:"column:rank"`
}

func (SynonymMv) TableName() string { return "synonym_mv" }

func (s *SynonymMv) PrimaryKey() uint      { return s.ID }
func (s *SynonymMv) SetPrimaryKey(id uint) { s.ID = id }

func (s *SynonymMv) Fields() []entity.Field {
	return []entity.Field{
		{Column: "fk_generic_substance_id", Value: entity.Nullable(s.FKGenericSubstanceID)},
		{Column: "identifier", Value: entity.Nullable(s.Identifier)},
		{Column: "synonym_type", Value: entity.Nullable(s.SynonymType)},
		{Column: "rank", Value: entity.Nullable(s.Rank)},
	}
}
