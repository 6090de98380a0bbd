package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chem-trans-api/config"
	"chem-trans-api/entity"
	"chem-trans-api/models"
)

// ErrSubstanceNotFound meldet, dass Vorläufer oder Nachfolger nicht eindeutig aufgelöst werden konnten.
var ErrSubstanceNotFound = fmt.Errorf("DSSTox Substance ID(s) not found: %w", entity.ErrNotFound)

// Outcome ist das Gesamtergebnis einer Einreichung.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeExists  Outcome = "exists"
	// nur in Log und Metriken
	outcomeRejected Outcome = "rejected"
	outcomeFailed   Outcome = "failed"
)

const relationshipLabel = "Transformation Product"

// StructureResolver leitet aus einem SMILES-String einen InChIKey ab.
// Ein leerer Key ohne Fehler bedeutet: Struktur unbekannt.
type StructureResolver interface {
	InChIKey(ctx context.Context, smiles string) (string, error)
}

// SubstanceRef beschreibt eine Substanz im Payload, entweder über die DSSTox-ID
// oder über einen Namen mit optionaler Struktur zur Bestätigung.
type SubstanceRef struct {
	DSSToxID string
	Name     string
	SMILES   string
}

// Payload ist eine dekodierte Transformations-Einreichung.
type Payload struct {
	Predecessor SubstanceRef
	Successor   SubstanceRef
	Authors     string
	Kinetics    models.Kinetics
	Citation    models.Citation

	raw []byte
}

type payloadHeader struct {
	PredecessorDSSToxID string `json:"predecessor_dsstox_id"`
	PredecessorName     string `json:"predecessor_name"`
	PredecessorSMILES   string `json:"predecessor_smiles"`
	SuccessorDSSToxID   string `json:"successor_dsstox_id"`
	SuccessorName       string `json:"successor_name"`
	SuccessorSMILES     string `json:"successor_smiles"`
	Authors             string `json:"authors"`
}

// DecodePayload liest eine Einreichung. Kinetik- und Zitatfelder tragen dieselben
// Namen wie die Spalten; fehlende Felder bleiben NULL.
func DecodePayload(body []byte) (*Payload, error) {
	obj, err := entity.ObjectBody(body)
	if err != nil {
		return nil, err
	}
	var h payloadHeader
	if err := json.Unmarshal(obj, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}
	p := &Payload{
		Predecessor: SubstanceRef{DSSToxID: h.PredecessorDSSToxID, Name: h.PredecessorName, SMILES: h.PredecessorSMILES},
		Successor:   SubstanceRef{DSSToxID: h.SuccessorDSSToxID, Name: h.SuccessorName, SMILES: h.SuccessorSMILES},
		Authors:     h.Authors,
		raw:         obj,
	}
	if err := json.Unmarshal(obj, &p.Kinetics); err != nil {
		return nil, fmt.Errorf("%w: kinetics: %v", entity.ErrInvalidPayload, err)
	}
	if err := json.Unmarshal(obj, &p.Citation); err != nil {
		return nil, fmt.Errorf("%w: citation: %v", entity.ErrInvalidPayload, err)
	}
	// IDs vergibt ausschließlich der Workflow.
	p.Kinetics.ID = 0
	p.Kinetics.FKSubstanceRelationshipID = 0
	p.Citation.ID = 0
	return p, nil
}

// auditJSON ist der Payload ohne PDF-Blob für das Einreichungsprotokoll.
func (p *Payload) auditJSON() datatypes.JSON {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(p.raw, &m); err != nil {
		return datatypes.JSON("{}")
	}
	delete(m, "pdf")
	out, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(out)
}

// TransformationService legt eine Transformation samt Kinetik, Zitat und Autoren idempotent an.
type TransformationService struct {
	DB       *gorm.DB
	Resolver StructureResolver
	Logger   *zap.Logger

	source  string
	curator string
}

// NewTransformationService erstellt den Service. resolver darf nil sein, dann werden
// Einreichungen mit SMILES abgelehnt.
func NewTransformationService(cfg *config.Config, db *gorm.DB, resolver StructureResolver, logger *zap.Logger) *TransformationService {
	return &TransformationService{
		DB:       db,
		Resolver: resolver,
		Logger:   logger.With(zap.String("service", "transformation")),
		source:   cfg.RelationshipSource,
		curator:  cfg.RelationshipCurator,
	}
}

// submission sammelt, was eine Einreichung angelegt hat.
type submission struct {
	relationshipID *uint
	citationID     *uint
	created        []string
}

func (s *submission) record(table string, created bool) {
	if created {
		s.created = append(s.created, table)
	}
}

// Post verarbeitet eine Einreichung. OutcomeExists heißt, dass Beziehung, Kinetik,
// Zitat und Zuordnung bereits vorhanden waren. Alle Schreibzugriffe laufen in einer
// Transaktion; ein Fehler hinterlässt keine Teilgraphen.
func (s *TransformationService) Post(ctx context.Context, p *Payload) (Outcome, error) {
	log := s.Logger.With(zap.String("request_id", RequestID(ctx)))

	predecessorID, err := s.resolveSubstance(ctx, p.Predecessor, false)
	if err != nil {
		s.audit(ctx, p, outcomeForError(err), nil, err)
		return "", fmt.Errorf("predecessor: %w", err)
	}
	successorID, err := s.resolveSubstance(ctx, p.Successor, true)
	if err != nil {
		s.audit(ctx, p, outcomeForError(err), nil, err)
		return "", fmt.Errorf("successor: %w", err)
	}

	var sub submission
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.materialize(tx, p, *predecessorID, successorID, &sub)
	})
	if err != nil {
		log.Error("Transformation konnte nicht gespeichert werden", zap.Error(err))
		s.audit(ctx, p, outcomeFailed, &sub, err)
		return "", err
	}

	outcome := OutcomeExists
	if len(sub.created) > 0 {
		outcome = OutcomeCreated
	}
	for _, table := range sub.created {
		recordsCreatedCounter.WithLabelValues(table).Inc()
	}
	s.audit(ctx, p, outcome, &sub, nil)
	log.Info("Transformation verarbeitet",
		zap.String("outcome", string(outcome)),
		zap.Strings("created", sub.created),
		zap.Uintp("relationship_id", sub.relationshipID))
	return outcome, nil
}

func (s *TransformationService) materialize(tx *gorm.DB, p *Payload, predecessorID uint, successorID *uint, sub *submission) error {
	typeID, err := transformationTypeID(tx)
	if err != nil {
		return err
	}

	rel, created, err := s.findOrCreateRelationship(tx, predecessorID, successorID, typeID)
	if err != nil {
		return err
	}
	sub.relationshipID = &rel.ID
	sub.record(rel.TableName(), created)

	var kineticsID *uint
	if p.Kinetics.HasMeasurement() {
		k := p.Kinetics
		k.FKSubstanceRelationshipID = rel.ID
		rec, created, err := entity.FindOrCreate[models.Kinetics](tx, &k)
		if err != nil {
			return err
		}
		kineticsID = &rec.ID
		sub.record(rec.TableName(), created)
	}

	c := p.Citation
	citation, created, err := entity.FindOrCreate[models.Citation](tx, &c)
	if err != nil {
		return err
	}
	sub.citationID = &citation.ID
	sub.record(citation.TableName(), created)
	if created {
		if err := linkAuthors(tx, citation.ID, ParseAuthors(p.Authors)); err != nil {
			return err
		}
	}

	mapping, created, err := entity.FindOrCreate[models.TransformationCited](tx, &models.TransformationCited{
		FKSubstanceRelationshipID: rel.ID,
		FKKineticsID:              kineticsID,
		FKCitationID:              citation.ID,
	})
	if err != nil {
		return err
	}
	sub.record(mapping.TableName(), created)
	return nil
}

func (s *TransformationService) findOrCreateRelationship(tx *gorm.DB, predecessorID uint, successorID *uint, typeID uint) (*models.SubstanceRelationship, bool, error) {
	var rel models.SubstanceRelationship
	q := tx.Where(clause.Eq{Column: clause.Column{Name: "fk_generic_substance_id_predecessor"}, Value: predecessorID}).
		Where(clause.Eq{Column: clause.Column{Name: "fk_generic_substance_id_successor"}, Value: entity.Nullable(successorID)}).
		Where(clause.Eq{Column: clause.Column{Name: "fk_substance_relationship_type_id"}, Value: typeID})
	err := entity.ForUpdate(q).First(&rel).Error
	if err == nil {
		return &rel, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("relationship lookup: %w", err)
	}

	zero := 0
	label := relationshipLabel
	rel = models.SubstanceRelationship{
		FKGenericSubstanceIDPredecessor: predecessorID,
		FKGenericSubstanceIDSuccessor:   successorID,
		Relationship:                    &label,
		FKSubstanceRelationshipTypeID:   typeID,
		Source:                          strPtrOrNil(s.source),
		IsNearestStructure:              &zero,
		IsNearestCASRN:                  &zero,
		CreatedBy:                       strPtrOrNil(s.curator),
		UpdatedBy:                       strPtrOrNil(s.curator),
	}
	if err := tx.Create(&rel).Error; err != nil {
		return nil, false, fmt.Errorf("create relationship: %w", err)
	}
	return &rel, true, nil
}

// linkAuthors legt fehlende Autoren an und verknüpft sie mit dem Zitat.
// Bestehende Verknüpfungen werden übersprungen.
func linkAuthors(tx *gorm.DB, citationID uint, names []AuthorName) error {
	for _, name := range names {
		author, _, err := entity.FindOrCreate[models.Author](tx, name.Model())
		if err != nil {
			return err
		}
		if _, _, err := entity.FindOrCreate[models.AuthorCited](tx, &models.AuthorCited{
			FKCitationID: citationID,
			FKAuthorID:   author.ID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// resolveSubstance gibt die generic_substances-ID zurück. optional erlaubt einen
// Verweis ohne ID und Namen; das Ergebnis ist dann nil.
func (s *TransformationService) resolveSubstance(ctx context.Context, ref SubstanceRef, optional bool) (*uint, error) {
	db := s.DB.WithContext(ctx)

	if ref.DSSToxID != "" {
		var gs models.GenericSubstance
		err := db.Where(clause.Eq{Column: clause.Column{Name: "dsstox_substance_id"}, Value: ref.DSSToxID}).First(&gs).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubstanceNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("substance lookup: %w", err)
		}
		return &gs.ID, nil
	}

	if ref.Name == "" {
		if optional {
			return nil, nil
		}
		return nil, ErrSubstanceNotFound
	}

	byName, err := synonymSubstanceID(db, ref.Name)
	if err != nil {
		return nil, err
	}
	if byName == nil {
		return nil, ErrSubstanceNotFound
	}

	if ref.SMILES != "" {
		if s.Resolver == nil {
			return nil, errors.New("no structure resolver configured")
		}
		key, err := s.Resolver.InChIKey(ctx, ref.SMILES)
		if err != nil {
			return nil, fmt.Errorf("resolve structure: %w", err)
		}
		if key == "" {
			return nil, ErrSubstanceNotFound
		}
		byStructure, err := synonymSubstanceID(db, key)
		if err != nil {
			return nil, err
		}
		if byStructure == nil || *byStructure != *byName {
			return nil, ErrSubstanceNotFound
		}
	}

	var gs models.GenericSubstance
	err = db.First(&gs, *byName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubstanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("substance lookup: %w", err)
	}
	return &gs.ID, nil
}

// synonymSubstanceID sucht den Identifier im Synonym-Index; der niedrigste Rang gewinnt.
func synonymSubstanceID(db *gorm.DB, identifier string) (*uint, error) {
	var syn models.SynonymMv
	err := db.Where(clause.Eq{Column: clause.Column{Name: "identifier"}, Value: identifier}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "rank"}}).
		First(&syn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("synonym lookup: %w", err)
	}
	return syn.FKGenericSubstanceID, nil
}

func transformationTypeID(tx *gorm.DB) (uint, error) {
	var rt models.SubstanceRelationshipType
	err := tx.Where(clause.Eq{Column: clause.Column{Name: "name"}, Value: models.TransformationProduct}).First(&rt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("relationship type %q is not configured", models.TransformationProduct)
	}
	if err != nil {
		return 0, fmt.Errorf("relationship type lookup: %w", err)
	}
	return rt.ID, nil
}

// audit zählt jede Einreichung. Protokolliert wird nur, was Datensätze angelegt hat:
// abgelehnte, bereits vorhandene und fehlgeschlagene Einreichungen schreiben nichts
// und erscheinen nur im Log.
func (s *TransformationService) audit(ctx context.Context, p *Payload, outcome Outcome, sub *submission, cause error) {
	submissionsCounter.WithLabelValues(string(outcome)).Inc()
	if outcome != OutcomeCreated {
		fields := []zap.Field{
			zap.String("request_id", RequestID(ctx)),
			zap.String("outcome", string(outcome)),
			zap.ByteString("payload", p.auditJSON()),
		}
		if cause != nil {
			fields = append(fields, zap.Error(cause))
		}
		s.Logger.Info("Einreichung ohne neue Datensätze", fields...)
		return
	}
	rec := models.TransformationSubmission{
		RequestID:      RequestID(ctx),
		Payload:        p.auditJSON(),
		Outcome:        string(outcome),
		RelationshipID: sub.relationshipID,
		CitationID:     sub.citationID,
	}
	if err := s.DB.WithContext(context.WithoutCancel(ctx)).Create(&rec).Error; err != nil {
		s.Logger.Warn("Einreichung konnte nicht protokolliert werden", zap.Error(err))
	}
}

func outcomeForError(err error) Outcome {
	if errors.Is(err, ErrSubstanceNotFound) {
		return outcomeRejected
	}
	return outcomeFailed
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
