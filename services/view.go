package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chem-trans-api/entity"
	"chem-trans-api/models"
)

// TransformationViewName ist der Routen-Name der zusammengesetzten Sicht.
const TransformationViewName = "transformation_view"

// TransformationRow ist eine Zeile der transformation_view: eine belegte Transformation
// mit Vorläufer, Nachfolger, Kinetik, Zitat und Autoren.
type TransformationRow struct {
	SubstanceRelationshipID uint  `json:"substance_relationship_id"`
	KineticsID              *uint `json:"kinetics_id"`
	CitationID              uint  `json:"citation_id"`

	PredecessorDSSToxID      *string `json:"predecessor_dsstox_id"`
	PredecessorCASRN         *string `json:"predecessor_casrn"`
	PredecessorPreferredName *string `json:"predecessor_preferred_name"`
	PredecessorSMILES        *string `json:"predecessor_smiles"`
	PredecessorQCLevel       *string `json:"predecessor_qc_level"`
	PredecessorType          *string `json:"predecessor_type"`
	SuccessorDSSToxID        *string `json:"successor_dsstox_id"`
	SuccessorCASRN           *string `json:"successor_casrn"`
	SuccessorPreferredName   *string `json:"successor_preferred_name"`
	SuccessorSMILES          *string `json:"successor_smiles"`
	SuccessorQCLevel         *string `json:"successor_qc_level"`
	SuccessorType            *string `json:"successor_type"`

	Relationship       *string `json:"relationship"`
	RelationshipSource *string `json:"relationship_source"`

	PH                   *float64 `json:"pH"`
	PHMin                *float64 `json:"pH_min"`
	PHMax                *float64 `json:"pH_max"`
	HalfLife             *float64 `json:"half_life"`
	HalfLifeMin          *float64 `json:"half_life_min"`
	HalfLifeMax          *float64 `json:"half_life_max"`
	HalfLifeUnits        *string  `json:"half_life_units"`
	Rate                 *float64 `json:"rate"`
	RateMin              *float64 `json:"rate_min"`
	RateMax              *float64 `json:"rate_max"`
	RateUnits            *string  `json:"rate_units"`
	Reaction             *string  `json:"reaction"`
	TempC                *float64 `json:"temp_C"`
	ActivationKcalPerMol *float64 `json:"activation_kcal_per_mol"`
	Comments             *string  `json:"comments"`

	DOI       *string `json:"doi"`
	URL       *string `json:"url"`
	Year      *int    `json:"year"`
	Month     *int    `json:"month"`
	Day       *int    `json:"day"`
	Publisher *string `json:"publisher"`
	Volume    *int    `json:"volume"`
	Issue     *string `json:"issue"`
	Pages     *string `json:"pages"`
	Title     *string `json:"title"`
	Journal   *string `json:"journal"`
	Authors   string  `json:"authors"`
	Reference string  `json:"reference"`
}

var viewColumns = func() map[string]struct{} {
	cols := map[string]struct{}{}
	b, _ := json.Marshal(TransformationRow{})
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	for k := range m {
		cols[k] = struct{}{}
	}
	return cols
}()

// viewPageSize ist die Zahl der Zuordnungen, die pro Durchgang geladen werden.
var viewPageSize = 500

// inChunkSize begrenzt die Platzhalter pro IN-Liste (sqlite erlaubt 32766).
var inChunkSize = 500

// ListView gibt bis zu entity.MaxRows Zeilen der transformation_view zurück.
func (s *TransformationService) ListView(ctx context.Context) ([]TransformationRow, error) {
	out := make([]TransformationRow, 0)
	err := s.eachViewPage(ctx, func(rows []TransformationRow) bool {
		for _, row := range rows {
			out = append(out, row)
			if len(out) == entity.MaxRows {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SearchView filtert die transformation_view exakt auf die übergebenen Spalten.
// Es werden höchstens entity.MaxRows Treffer geliefert.
func (s *TransformationService) SearchView(ctx context.Context, filters map[string]string) ([]TransformationRow, error) {
	if len(filters) == 0 {
		return nil, entity.ErrMalformedQuery
	}
	for k := range filters {
		if _, ok := viewColumns[k]; !ok {
			return nil, fmt.Errorf("%w: unknown column %q", entity.ErrMalformedQuery, k)
		}
	}
	out := make([]TransformationRow, 0)
	err := s.eachViewPage(ctx, func(rows []TransformationRow) bool {
		for _, row := range rows {
			if !row.matches(filters) {
				continue
			}
			out = append(out, row)
			if len(out) == entity.MaxRows {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// eachViewPage durchläuft die transformation_view seitenweise in ID-Reihenfolge der
// Zuordnungen. fn gibt false zurück, um abzubrechen.
func (s *TransformationService) eachViewPage(ctx context.Context, fn func([]TransformationRow) bool) error {
	db := s.DB.WithContext(ctx)
	typeID, err := transformationTypeID(db)
	if err != nil {
		return err
	}
	var after uint
	for {
		rows, last, err := s.assemblePage(db, typeID, after, viewPageSize)
		if err != nil {
			return err
		}
		if last == 0 {
			return nil
		}
		if !fn(rows) {
			return nil
		}
		after = last
	}
}

func (r TransformationRow) matches(filters map[string]string) bool {
	b, err := json.Marshal(r)
	if err != nil {
		return false
	}
	var values map[string]any
	if err := json.Unmarshal(b, &values); err != nil {
		return false
	}
	for col, want := range filters {
		switch v := values[col].(type) {
		case string:
			if v != want {
				return false
			}
		case float64:
			f, err := strconv.ParseFloat(want, 64)
			if err != nil || f != v {
				return false
			}
		default:
			// NULL matcht keinen Filterwert
			return false
		}
	}
	return true
}

// assemblePage baut die Zeilen für bis zu limit Zuordnungen mit ID > after.
// last ist die höchste geladene Zuordnungs-ID, 0 wenn keine mehr folgt.
func (s *TransformationService) assemblePage(db *gorm.DB, typeID, after uint, limit int) (rows []TransformationRow, last uint, err error) {
	relIDs := db.Model(&models.SubstanceRelationship{}).Select("id").
		Where(clause.Eq{Column: clause.Column{Name: "fk_substance_relationship_type_id"}, Value: typeID})
	var mappings []models.TransformationCited
	err = db.Where("fk_substance_relationship_id IN (?)", relIDs).
		Where(clause.Gt{Column: clause.Column{Name: "id"}, Value: after}).
		Order("id").Limit(limit).Find(&mappings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("load transformation mappings: %w", err)
	}
	if len(mappings) == 0 {
		return []TransformationRow{}, 0, nil
	}
	last = mappings[len(mappings)-1].ID

	var relationshipIDs, kineticsIDs, citationIDs []uint
	for _, m := range mappings {
		relationshipIDs = append(relationshipIDs, m.FKSubstanceRelationshipID)
		citationIDs = append(citationIDs, m.FKCitationID)
		if m.FKKineticsID != nil {
			kineticsIDs = append(kineticsIDs, *m.FKKineticsID)
		}
	}

	rels := map[uint]models.SubstanceRelationship{}
	if err := loadByID(db, relationshipIDs, rels, func(r models.SubstanceRelationship) uint { return r.ID }); err != nil {
		return nil, 0, err
	}
	kinetics := map[uint]models.Kinetics{}
	if err := loadByID(db, kineticsIDs, kinetics, func(k models.Kinetics) uint { return k.ID }); err != nil {
		return nil, 0, err
	}
	citations := map[uint]models.Citation{}
	if err := loadByID(db.Omit("pdf"), citationIDs, citations, func(c models.Citation) uint { return c.ID }); err != nil {
		return nil, 0, err
	}

	var substanceIDs []uint
	for _, r := range rels {
		substanceIDs = append(substanceIDs, r.FKGenericSubstanceIDPredecessor)
		if r.FKGenericSubstanceIDSuccessor != nil {
			substanceIDs = append(substanceIDs, *r.FKGenericSubstanceIDSuccessor)
		}
	}
	substances, err := loadSubstanceSummaries(db, substanceIDs)
	if err != nil {
		return nil, 0, err
	}
	authors, err := loadCitationAuthors(db, citationIDs)
	if err != nil {
		return nil, 0, err
	}

	rows = make([]TransformationRow, 0, len(mappings))
	for _, m := range mappings {
		rel, ok := rels[m.FKSubstanceRelationshipID]
		if !ok {
			continue
		}
		row := TransformationRow{
			SubstanceRelationshipID: m.FKSubstanceRelationshipID,
			KineticsID:              m.FKKineticsID,
			CitationID:              m.FKCitationID,
			Relationship:            rel.Relationship,
			RelationshipSource:      rel.Source,
			Authors:                 strings.Join(authors[m.FKCitationID], ", "),
		}
		if pre, ok := substances[rel.FKGenericSubstanceIDPredecessor]; ok {
			row.PredecessorDSSToxID = pre.DSSToxID
			row.PredecessorCASRN = pre.CASRN
			row.PredecessorPreferredName = pre.PreferredName
			row.PredecessorSMILES = pre.SMILES
			row.PredecessorQCLevel = pre.QCLevel
			row.PredecessorType = pre.Type
		}
		if rel.FKGenericSubstanceIDSuccessor != nil {
			if suc, ok := substances[*rel.FKGenericSubstanceIDSuccessor]; ok {
				row.SuccessorDSSToxID = suc.DSSToxID
				row.SuccessorCASRN = suc.CASRN
				row.SuccessorPreferredName = suc.PreferredName
				row.SuccessorSMILES = suc.SMILES
				row.SuccessorQCLevel = suc.QCLevel
				row.SuccessorType = suc.Type
			}
		}
		if m.FKKineticsID != nil {
			if k, ok := kinetics[*m.FKKineticsID]; ok {
				row.PH, row.PHMin, row.PHMax = k.PH, k.PHMin, k.PHMax
				row.HalfLife, row.HalfLifeMin, row.HalfLifeMax, row.HalfLifeUnits = k.HalfLife, k.HalfLifeMin, k.HalfLifeMax, k.HalfLifeUnits
				row.Rate, row.RateMin, row.RateMax, row.RateUnits = k.Rate, k.RateMin, k.RateMax, k.RateUnits
				row.Reaction, row.TempC, row.ActivationKcalPerMol, row.Comments = k.Reaction, k.TempC, k.ActivationKcalPerMol, k.Comments
			}
		}
		if c, ok := citations[m.FKCitationID]; ok {
			row.DOI, row.URL = c.DOI, c.URL
			row.Year, row.Month, row.Day = c.Year, c.Month, c.Day
			row.Publisher, row.Volume, row.Issue, row.Pages = c.Publisher, c.Volume, c.Issue, c.Pages
			row.Title, row.Journal = c.Title, c.Journal
			row.Reference = FormatReference(Reference{
				Authors: authors[m.FKCitationID],
				Year:    derefInt(c.Year),
				Title:   deref(c.Title),
				Journal: deref(c.Journal),
				Volume:  derefInt(c.Volume),
				Issue:   deref(c.Issue),
				Pages:   deref(c.Pages),
				DOI:     deref(c.DOI),
			})
		}
		rows = append(rows, row)
	}
	return rows, last, nil
}

func loadByID[T any](db *gorm.DB, ids []uint, into map[uint]T, key func(T) uint) error {
	var recs []T
	if err := findIn(db, "id", ids, &recs); err != nil {
		return fmt.Errorf("load %T: %w", recs, err)
	}
	for _, r := range recs {
		into[key(r)] = r
	}
	return nil
}

// findIn lädt alle Zeilen, deren column in ids liegt, in Blöcken von inChunkSize.
func findIn[T any](db *gorm.DB, column string, ids []uint, out *[]T) error {
	ids = uniqueIDs(ids)
	base := db.Session(&gorm.Session{})
	for start := 0; start < len(ids); start += inChunkSize {
		end := min(start+inChunkSize, len(ids))
		var part []T
		if err := base.Where(column+" IN ?", ids[start:end]).Find(&part).Error; err != nil {
			return err
		}
		*out = append(*out, part...)
	}
	return nil
}

type substanceSummary struct {
	DSSToxID      *string
	CASRN         *string
	PreferredName *string
	SMILES        *string
	QCLevel       *string
	Type          *string
}

func loadSubstanceSummaries(db *gorm.DB, ids []uint) (map[uint]substanceSummary, error) {
	out := map[uint]substanceSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	var substances []models.GenericSubstance
	if err := findIn(db, "id", ids, &substances); err != nil {
		return nil, fmt.Errorf("load substances: %w", err)
	}

	var qcIDs []uint
	for _, gs := range substances {
		qcIDs = append(qcIDs, gs.FKQCLevelID)
	}
	levels := map[uint]models.QCLevel{}
	if err := loadByID(db, qcIDs, levels, func(l models.QCLevel) uint { return l.ID }); err != nil {
		return nil, err
	}

	// Erste Struktur pro Substanz (niedrigste Join-ID) liefert das SMILES.
	var links []models.GenericSubstanceCompound
	if err := findIn(db, "fk_generic_substance_id", ids, &links); err != nil {
		return nil, fmt.Errorf("load substance compounds: %w", err)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	var compoundIDs []uint
	for _, l := range links {
		compoundIDs = append(compoundIDs, l.FKCompoundID)
	}
	compounds := map[uint]models.Compound{}
	if err := loadByID(db.Select("id", "smiles"), compoundIDs, compounds, func(c models.Compound) uint { return c.ID }); err != nil {
		return nil, err
	}
	smiles := map[uint]*string{}
	for _, l := range links {
		if _, seen := smiles[l.FKGenericSubstanceID]; seen {
			continue
		}
		if c, ok := compounds[l.FKCompoundID]; ok {
			smiles[l.FKGenericSubstanceID] = c.Smiles
		}
	}

	for _, gs := range substances {
		sum := substanceSummary{
			DSSToxID:      gs.DSSToxSubstanceID,
			CASRN:         gs.CASRN,
			PreferredName: gs.PreferredName,
			SMILES:        smiles[gs.ID],
			Type:          gs.SubstanceType,
		}
		if l, ok := levels[gs.FKQCLevelID]; ok {
			sum.QCLevel = l.Label
		}
		out[gs.ID] = sum
	}
	return out, nil
}

// loadCitationAuthors liefert pro Zitat die Autoren als "Vorname Mittelname Nachname",
// nach Nachnamen sortiert.
func loadCitationAuthors(db *gorm.DB, citationIDs []uint) (map[uint][]string, error) {
	out := map[uint][]string{}
	var links []models.AuthorCited
	if err := findIn(db, "fk_citation_id", citationIDs, &links); err != nil {
		return nil, fmt.Errorf("load author links: %w", err)
	}
	var authorIDs []uint
	for _, l := range links {
		authorIDs = append(authorIDs, l.FKAuthorID)
	}
	authors := map[uint]models.Author{}
	if err := loadByID(db, authorIDs, authors, func(a models.Author) uint { return a.ID }); err != nil {
		return nil, err
	}

	byCitation := map[uint][]models.Author{}
	for _, l := range links {
		if a, ok := authors[l.FKAuthorID]; ok {
			byCitation[l.FKCitationID] = append(byCitation[l.FKCitationID], a)
		}
	}
	for id, list := range byCitation {
		sort.SliceStable(list, func(i, j int) bool {
			return deref(list[i].LastName) < deref(list[j].LastName)
		})
		names := make([]string, 0, len(list))
		for _, a := range list {
			if n := (AuthorName{First: a.FirstName, Middle: a.MiddleName, Last: a.LastName}).FullName(); n != "" {
				names = append(names, n)
			}
		}
		out[id] = names
	}
	return out, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
