package models

import "chem-trans-api/entity"

// TransformationProduct ist der Name des Beziehungstyps, den der Transformations-Workflow verwendet.
const TransformationProduct = "transformation_product"

// SubstanceRelationship modelliert eine gerichtete Kante: Vorläufer -> Nachfolger.
// Ein fehlender Nachfolger (NULL) steht für eine reine Vorläufer-Beziehung.
type SubstanceRelationship struct {
	ID                              uint     `json:"id" gorm:"primaryKey"`
	FKGenericSubstanceIDPredecessor uint     `json:"fk_generic_substance_id_predecessor" gorm:"column:fk_generic_substance_id_predecessor;not null;index"`
	FKGenericSubstanceIDSuccessor   *uint    `json:"fk_generic_substance_id_successor" gorm:"column:fk_generic_substance_id_successor;index"`
	Relationship                    *string  `json:"relationship" gorm:"column:relationship"`
	FKSubstanceRelationshipTypeID   uint     `json:"fk_substance_relationship_type_id" gorm:"column:fk_substance_relationship_type_id;not null"`
	Source                          *string  `json:"source" gorm:"column:source"`
	QCNotes                         *string  `json:"qc_notes" gorm:"column:qc_notes"`
	MixturePercentage               *float64 `json:"mixture_percentage" gorm:"column:mixture_percentage"`
	PercentageType                  *string  `json:"percentage_type" gorm:"column:percentage_type"`
	IsNearestStructure              *int     `json:"is_nearest_structure" gorm:"column:is_nearest_structure"`
	IsNearestCASRN                  *int     `json:"is_nearest_casrn" gorm:"column:is_nearest_casrn"`
	CreatedBy                       *string  `json:"created_by" gorm:"column:created_by"`
	UpdatedBy                       *string  `json:"updated_by" gorm:"column:updated_by"`
}

func (SubstanceRelationship) TableName() string { return "substance_relationships" }

func (r *SubstanceRelationship) PrimaryKey() uint      { return r.ID }
func (r *SubstanceRelationship) SetPrimaryKey(id uint) { r.ID = id }

func (r *SubstanceRelationship) Fields() []entity.Field {
	return []entity.Field{
		{Column: "fk_generic_substance_id_predecessor", Value: r.FKGenericSubstanceIDPredecessor},
		{Column: "fk_generic_substance_id_successor", Value: entity.Nullable(r.FKGenericSubstanceIDSuccessor)},
		{Column: "relationship", Value: entity.Nullable(r.Relationship)},
		{Column: "fk_substance_relationship_type_id", Value: r.FKSubstanceRelationshipTypeID},
		{Column: "source", Value: entity.Nullable(r.Source)},
		{Column: "qc_notes", Value: entity.Nullable(r.QCNotes)},
		{Column: "mixture_percentage", Value: entity.Nullable(r.MixturePercentage)},
		{Column: "percentage_type", Value: entity.Nullable(r.PercentageType)},
		{Column: "is_nearest_structure", Value: entity.Nullable(r.IsNearestStructure)},
		{Column: "is_nearest_casrn", Value: entity.Nullable(r.IsNearestCASRN)},
		{Column: "created_by", Value: entity.Nullable(r.CreatedBy)},
		{Column: "updated_by", Value: entity.Nullable(r.UpdatedBy)},
	}
}

// SubstanceRelationshipType benennt die Art einer Beziehung in beide Richtungen.
type SubstanceRelationshipType struct {
	ID                       uint    `json:"id" gorm:"primaryKey"`
	Name                     *string `json:"name" gorm:"column:name;index"`
	LabelForward             *string `json:"label_forward" gorm:"column:label_forward"`
	ShortDescriptionForward  *string `json:"short_description_forward" gorm:"column:short_description_forward"`
	LongDescriptionForward   *string `json:"long_description_forward" gorm:"column:long_description_forward"`
	LabelBackward            *string `json:"label_backward" gorm:"column:label_backward"`
	ShortDescriptionBackward *string `json:"short_description_backward" gorm:"column:short_description_backward"`
	LongDescriptionBackward  *string `json:"long_description_backward" gorm:"column:long_description_backward"`
	CreatedBy                *string `json:"created_by" gorm:"column:created_by"`
	UpdatedBy                *string `json:"updated_by" gorm:"column:updated_by"`
	CreatedAt                *string `json:"created_at" gorm:"column:created_at"`
	UpdatedAt                *string `json:"updated_at" gorm:"column:updated_at"`
}

func (SubstanceRelationshipType) TableName() string { return "substance_relationship_types" }

func (t *SubstanceRelationshipType) PrimaryKey() uint      { return t.ID }
func (t *SubstanceRelationshipType) SetPrimaryKey(id uint) { t.ID = id }

func (t *SubstanceRelationshipType) Fields() []entity.Field {
	return []entity.Field{
		{Column: "name", Value: entity.Nullable(t.Name)},
		{Column: "label_forward", Value: entity.Nullable(t.LabelForward)},
		{Column: "short_description_forward", Value: entity.Nullable(t.ShortDescriptionForward)},
		{Column: "long_description_forward", Value: entity.Nullable(t.LongDescriptionForward)},
		{Column: "label_backward", Value: entity.Nullable(t.LabelBackward)},
		{Column: "short_description_backward", Value: entity.Nullable(t.ShortDescriptionBackward)},
		{Column: "long_description_backward", Value: entity.Nullable(t.LongDescriptionBackward)},
		{Column: "created_by", Value: entity.Nullable(t.CreatedBy)},
		{Column: "updated_by", Value: entity.Nullable(t.UpdatedBy)},
		{Column: "created_at", Value: entity.Nullable(t.CreatedAt)},
		{Column: "updated_at", Value: entity.Nullable(t.UpdatedAt)},
	}
}
