package testutil

import (
	"testing"

	"gorm.io/gorm"

	"chem-trans-api/models"
)

// Str gibt einen Pointer auf s zurück.
func Str(s string) *string { return &s }

// Int gibt einen Pointer auf i zurück.
func Int(i int) *int { return &i }

// Float gibt einen Pointer auf f zurück.
func Float(f float64) *float64 { return &f }

// Substance legt eine Substanz mit DSSTox-ID und bevorzugtem Namen an und
// trägt den Namen mit Rang 1 in den Synonym-Index ein.
func Substance(tb testing.TB, db *gorm.DB, dsstoxID, name string) *models.GenericSubstance {
	tb.Helper()
	gs := &models.GenericSubstance{
		FKQCLevelID:       1,
		DSSToxSubstanceID: Str(dsstoxID),
		PreferredName:     Str(name),
	}
	if err := db.Create(gs).Error; err != nil {
		tb.Fatalf("create substance: %v", err)
	}
	Synonym(tb, db, gs.ID, name, "preferred_name", 1)
	return gs
}

// Synonym trägt identifier für die Substanz in den Synonym-Index ein.
func Synonym(tb testing.TB, db *gorm.DB, substanceID uint, identifier, synonymType string, rank int) {
	tb.Helper()
	syn := &models.SynonymMv{
		FKGenericSubstanceID: &substanceID,
		Identifier:           Str(identifier),
		SynonymType:          Str(synonymType),
		Rank:                 Int(rank),
	}
	if err := db.Create(syn).Error; err != nil {
		tb.Fatalf("create synonym: %v", err)
	}
}

// Structure verknüpft die Substanz mit einer Struktur (SMILES).
func Structure(tb testing.TB, db *gorm.DB, substanceID uint, smiles string) *models.Compound {
	tb.Helper()
	c := &models.Compound{Smiles: Str(smiles)}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("create compound: %v", err)
	}
	link := &models.GenericSubstanceCompound{FKGenericSubstanceID: substanceID, FKCompoundID: c.ID}
	if err := db.Create(link).Error; err != nil {
		tb.Fatalf("create substance compound: %v", err)
	}
	return c
}
