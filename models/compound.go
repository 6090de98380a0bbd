package models

import "chem-trans-api/entity"

// Compound ist eine Strukturdarstellung (SMILES, InChI, Molfile) einer oder mehrerer Substanzen.
type Compound struct {
	ID                uint     `json:"id" gorm:"primaryKey"`
	DSSToxCompoundID  *string  `json:"dsstox_compound_id" gorm:"column:dsstox_compound_id"`
	ChiralStereo      *string  `json:"chiral_stereo" gorm:"column:chiral_stereo"`
	ChemicalType      *string  `json:"chemical_type" gorm:"column:chemical_type"`
	OrganicForm       *string  `json:"organic_form" gorm:"column:organic_form"`
	MrvFile           *string  `json:"mrv_file" gorm:"column:mrv_file;type:text"`
	MolFile           *string  `json:"mol_file" gorm:"column:mol_file;type:text"`
	MolFile3D         *string  `json:"mol_file_3d" gorm:"column:mol_file_3d;type:text"`
	Smiles            *string  `json:"smiles" gorm:"column:smiles"`
	InChI             *string  `json:"inchi" gorm:"column:inchi"`
	JChemInChIKey     *string  `json:"jchem_inchi_key" gorm:"column:jchem_inchi_key"`
	IndigoInChIKey    *string  `json:"indigo_inchi_key" gorm:"column:indigo_inchi_key"`
	ACDIUPACName      *string  `json:"acd_iupac_name" gorm:"column:acd_iupac_name"`
	ACDIndexName      *string  `json:"acd_index_name" gorm:"column:acd_index_name"`
	MolFormula        *string  `json:"mol_formula" gorm:"column:mol_formula"`
	MolWeight         *float64 `json:"mol_weight" gorm:"column:mol_weight"`
	MonoisotopicMass  *float64 `json:"monoisotopic_mass" gorm:"column:monoisotopic_mass"`
	FragmentCount     *int     `json:"fragment_count" gorm:"column:fragment_count"`
	HasDefinedIsotope *int     `json:"has_defined_isotope" gorm:"column:has_defined_isotope"`
	RadicalCount      *int     `json:"radical_count" gorm:"column:radical_count"`
	PubchemCID        *int     `json:"pubchem_cid" gorm:"column:pubchem_cid"`
	ChemspiderID      *int     `json:"chemspider_id" gorm:"column:chemspider_id"`
	ChebiID           *int     `json:"chebi_id" gorm:"column:chebi_id"`
	CreatedBy         *string  `json:"created_by" gorm:"column:created_by"`
	UpdatedBy         *string  `json:"updated_by" gorm:"column:updated_by"`
	CreatedAt         *string  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         *string  `json:"updated_at" gorm:"column:updated_at"`
	MolImagePNG       []byte   `json:"mol_image_png" gorm:"column:mol_image_png"`
}

func (Compound) TableName() string { return "compounds" }

func (c *Compound) PrimaryKey() uint      { return c.ID }
func (c *Compound) SetPrimaryKey(id uint) { c.ID = id }

func (c *Compound) Fields() []entity.Field {
	return []entity.Field{
		{Column: "dsstox_compound_id", Value: entity.Nullable(c.DSSToxCompoundID)},
		{Column: "chiral_stereo", Value: entity.Nullable(c.ChiralStereo)},
		{Column: "chemical_type", Value: entity.Nullable(c.ChemicalType)},
		{Column: "organic_form", Value: entity.Nullable(c.OrganicForm)},
		{Column: "mrv_file", Value: entity.Nullable(c.MrvFile)},
		{Column: "mol_file", Value: entity.Nullable(c.MolFile)},
		{Column: "mol_file_3d", Value: entity.Nullable(c.MolFile3D)},
		{Column: "smiles", Value: entity.Nullable(c.Smiles)},
		{Column: "inchi", Value: entity.Nullable(c.InChI)},
		{Column: "jchem_inchi_key", Value: entity.Nullable(c.JChemInChIKey)},
		{Column: "indigo_inchi_key", Value: entity.Nullable(c.IndigoInChIKey)},
		{Column: "acd_iupac_name", Value: entity.Nullable(c.ACDIUPACName)},
		{Column: "acd_index_name", Value: entity.Nullable(c.ACDIndexName)},
		{Column: "mol_formula", Value: entity.Nullable(c.MolFormula)},
		{Column: "mol_weight", Value: entity.Nullable(c.MolWeight)},
		{Column: "monoisotopic_mass", Value: entity.Nullable(c.MonoisotopicMass)},
		{Column: "fragment_count", Value: entity.Nullable(c.FragmentCount)},
		{Column: "has_defined_isotope", Value: entity.Nullable(c.HasDefinedIsotope)},
		{Column: "radical_count", Value: entity.Nullable(c.RadicalCount)},
		{Column: "pubchem_cid", Value: entity.Nullable(c.PubchemCID)},
		{Column: "chemspider_id", Value: entity.Nullable(c.ChemspiderID)},
		{Column: "chebi_id", Value: entity.Nullable(c.ChebiID)},
		{Column: "created_by", Value: entity.Nullable(c.CreatedBy)},
		{Column: "updated_by", Value: entity.Nullable(c.UpdatedBy)},
		{Column: "created_at", Value: entity.Nullable(c.CreatedAt)},
		{Column: "updated_at", Value: entity.Nullable(c.UpdatedAt)},
		{Column: "mol_image_png", Value: entity.Blob(c.MolImagePNG)},
	}
}

// GenericSubstanceCompound verknüpft Substanz und Struktur (n:m) samt Herkunftsangaben.
type GenericSubstanceCompound struct {
	ID                   uint    `json:"id" gorm:"primaryKey"`
	FKGenericSubstanceID uint    `json:"fk_generic_substance_id" gorm:"column:fk_generic_substance_id;not null;index"`
	FKCompoundID         uint    `json:"fk_compound_id" gorm:"column:fk_compound_id;not null;index"`
	Relationship         *string `json:"relationship" gorm:"column:relationship"`
	Source               *string `json:"source" gorm:"column:source"`
	CreatedBy            *string `json:"created_by" gorm:"column:created_by"`
	UpdatedBy            *string `json:"updated_by" gorm:"column:updated_by"`
	CreatedAt            *string `json:"created_at" gorm:"column:created_at"`
	UpdatedAt            *string `json:"updated_at" gorm:"column:updated_at"`
}

func (GenericSubstanceCompound) TableName() string { return "generic_substance_compounds" }

func (g *GenericSubstanceCompound) PrimaryKey() uint      { return g.ID }
func (g *GenericSubstanceCompound) SetPrimaryKey(id uint) { g.ID = id }

func (g *GenericSubstanceCompound) Fields() []entity.Field {
	return []entity.Field{
		{Column: "fk_generic_substance_id", Value: g.FKGenericSubstanceID},
		{Column: "fk_compound_id", Value: g.FKCompoundID},
		{Column: "relationship", Value: entity.Nullable(g.Relationship)},
		{Column: "source", Value: entity.Nullable(g.Source)},
		{Column: "created_by", Value: entity.Nullable(g.CreatedBy)},
		{Column: "updated_by", Value: entity.Nullable(g.UpdatedBy)},
		{Column: "created_at", Value: entity.Nullable(g.CreatedAt)},
		{Column: "updated_at", Value: entity.Nullable(g.UpdatedAt)},
	}
}
