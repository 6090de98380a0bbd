package models

import "chem-trans-api/entity"

// Kinetics enthält Mess- und Randbedingungen einer Transformation. Jeder Datensatz
// gehört zu genau einer SubstanceRelationship.
type Kinetics struct {
	ID                        uint     `json:"id" gorm:"primaryKey"`
	FKSubstanceRelationshipID uint     `json:"fk_substance_relationship_id" gorm:"column:fk_substance_relationship_id;not null;index"`
	PH                        *float64 `json:"pH" gorm:"column:pH"`
	PHMin                     *float64 `json:"pH_min" gorm:"column:pH_min"`
	PHMax                     *float64 `json:"pH_max" gorm:"column:pH_max"`
	HalfLife                  *float64 `json:"half_life" gorm:"column:half_life"`
	HalfLifeMin               *float64 `json:"half_life_min" gorm:"column:half_life_min"`
	HalfLifeMax               *float64 `json:"half_life_max" gorm:"column:half_life_max"`
	HalfLifeUnits             *string  `json:"half_life_units" gorm:"column:half_life_units"`
	Rate                      *float64 `json:"rate" gorm:"column:rate"`
	RateMin                   *float64 `json:"rate_min" gorm:"column:rate_min"`
	RateMax                   *float64 `json:"rate_max" gorm:"column:rate_max"`
	RateUnits                 *string  `json:"rate_units" gorm:"column:rate_units"`
	Reaction                  *string  `json:"reaction" gorm:"column:reaction"`
	TempC                     *float64 `json:"temp_C" gorm:"column:temp_C"`
	ActivationKcalPerMol      *float64 `json:"activation_kcal_per_mol" gorm:"column:activation_kcal_per_mol"`
	Comments                  *string  `json:"comments" gorm:"column:comments;type:text"`
}

func (Kinetics) TableName() string { return "kinetics" }

func (k *Kinetics) PrimaryKey() uint      { return k.ID }
func (k *Kinetics) SetPrimaryKey(id uint) { k.ID = id }

func (k *Kinetics) Fields() []entity.Field {
	return []entity.Field{
		{Column: "fk_substance_relationship_id", Value: k.FKSubstanceRelationshipID},
		{Column: "pH", Value: entity.Nullable(k.PH)},
		{Column: "pH_min", Value: entity.Nullable(k.PHMin)},
		{Column: "pH_max", Value: entity.Nullable(k.PHMax)},
		{Column: "half_life", Value: entity.Nullable(k.HalfLife)},
		{Column: "half_life_min", Value: entity.Nullable(k.HalfLifeMin)},
		{Column: "half_life_max", Value: entity.Nullable(k.HalfLifeMax)},
		{Column: "half_life_units", Value: entity.Nullable(k.HalfLifeUnits)},
		{Column: "rate", Value: entity.Nullable(k.Rate)},
		{Column: "rate_min", Value: entity.Nullable(k.RateMin)},
		{Column: "rate_max", Value: entity.Nullable(k.RateMax)},
		{Column: "rate_units", Value: entity.Nullable(k.RateUnits)},
		{Column: "reaction", Value: entity.Nullable(k.Reaction)},
		{Column: "temp_C", Value: entity.Nullable(k.TempC)},
		{Column: "activation_kcal_per_mol", Value: entity.Nullable(k.ActivationKcalPerMol)},
		{Column: "comments", Value: entity.Nullable(k.Comments)},
	}
}

// HasMeasurement meldet, ob irgendein Messwert gesetzt ist. Kommentare allein zählen nicht.
func (k *Kinetics) HasMeasurement() bool {
	floats := []*float64{
		k.PH, k.PHMin, k.PHMax, k.HalfLife, k.HalfLifeMin, k.HalfLifeMax,
		k.Rate, k.RateMin, k.RateMax, k.TempC, k.ActivationKcalPerMol,
	}
	for _, f := range floats {
		if f != nil && *f != 0 {
			return true
		}
	}
	for _, s := range []*string{k.HalfLifeUnits, k.RateUnits, k.Reaction} {
		if s != nil && *s != "" {
			return true
		}
	}
	return false
}
