package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"chem-trans-api/models"
)

func strPtr(s string) *string { return &s }

// Seed legt Standarddaten an, wenn die jeweiligen Tabellen leer sind.
func Seed(db *gorm.DB, logger *zap.Logger) {
	seedDefaultQCLevels(db, logger)
	seedDefaultRelationshipTypes(db, logger)
}

func seedDefaultQCLevels(db *gorm.DB, logger *zap.Logger) {
	var count int64
	db.Model(&models.QCLevel{}).Count(&count)
	if count > 0 {
		return
	}
	levels := []models.QCLevel{
		{Name: strPtr("level_1"), Label: strPtr("DSSTox_High"), Description: strPtr("Expert curated, highest confidence")},
		{Name: strPtr("level_2"), Label: strPtr("DSSTox_Medium"), Description: strPtr("Expert curated, medium confidence")},
		{Name: strPtr("level_3"), Label: strPtr("DSSTox_Low"), Description: strPtr("Public source, low confidence")},
		{Name: strPtr("level_4"), Label: strPtr("Public_Untrusted"), Description: strPtr("Public source, unverified")},
	}
	if err := db.Create(&levels).Error; err != nil {
		logger.Warn("Failed to seed default qc levels", zap.Error(err))
	} else {
		logger.Info("Default qc levels seeded.")
	}
}

func seedDefaultRelationshipTypes(db *gorm.DB, logger *zap.Logger) {
	var count int64
	db.Model(&models.SubstanceRelationshipType{}).Count(&count)
	if count > 0 {
		return
	}
	types := []models.SubstanceRelationshipType{
		{
			Name:                     strPtr(models.TransformationProduct),
			LabelForward:             strPtr("Transformation Product"),
			ShortDescriptionForward:  strPtr("has transformation product"),
			LongDescriptionForward:   strPtr("The predecessor substance transforms into the successor substance."),
			LabelBackward:            strPtr("Transformation Precursor"),
			ShortDescriptionBackward: strPtr("is transformation product of"),
			LongDescriptionBackward:  strPtr("The successor substance is formed from the predecessor substance."),
		},
	}
	if err := db.Create(&types).Error; err != nil {
		logger.Warn("Failed to seed default relationship types", zap.Error(err))
	} else {
		logger.Info("Default relationship types seeded.")
	}
}
