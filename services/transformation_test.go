package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"chem-trans-api/entity"
	"chem-trans-api/models"
	"chem-trans-api/testutil"
)

// staticResolver bildet SMILES fest auf InChIKeys ab; unbekannt ergibt "".
type staticResolver map[string]string

func (r staticResolver) InChIKey(_ context.Context, smiles string) (string, error) {
	return r[smiles], nil
}

func newService(t *testing.T, resolver StructureResolver) (*TransformationService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	return NewTransformationService(testutil.Config(), db, resolver, zap.NewNop()), db
}

func mustDecode(t *testing.T, v any) *Payload {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	p, err := DecodePayload(b)
	require.NoError(t, err)
	return p
}

type rowCounts struct {
	relationships, kinetics, citations, authors, authorLinks, mappings int64
}

func countRows(t *testing.T, db *gorm.DB) rowCounts {
	t.Helper()
	return rowCounts{
		relationships: testutil.Count(t, db, &models.SubstanceRelationship{}),
		kinetics:      testutil.Count(t, db, &models.Kinetics{}),
		citations:     testutil.Count(t, db, &models.Citation{}),
		authors:       testutil.Count(t, db, &models.Author{}),
		authorLinks:   testutil.Count(t, db, &models.AuthorCited{}),
		mappings:      testutil.Count(t, db, &models.TransformationCited{}),
	}
}

func TestPostCreatesGraphThenReportsExisting(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	atrazine := testutil.Substance(t, db, "DTXSID9020112", "Atrazine")

	payload := map[string]any{
		"predecessor_dsstox_id": "DTXSID9020112",
		"authors":               "Madonna",
		"doi":                   "10.1021/es000001",
		"title":                 "Degradation of atrazine in soil",
		"year":                  2001,
	}

	outcome, err := svc.Post(ctx, mustDecode(t, payload))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, rowCounts{relationships: 1, citations: 1, authors: 1, authorLinks: 1, mappings: 1}, countRows(t, db))

	var rel models.SubstanceRelationship
	require.NoError(t, db.First(&rel).Error)
	assert.Equal(t, atrazine.ID, rel.FKGenericSubstanceIDPredecessor)
	assert.Nil(t, rel.FKGenericSubstanceIDSuccessor)
	assert.Equal(t, "Transformation Product", *rel.Relationship)
	assert.Equal(t, "Caroline Stevens", *rel.Source)
	assert.Equal(t, "zchiodini", *rel.CreatedBy)
	assert.Equal(t, 0, *rel.IsNearestStructure)

	var author models.Author
	require.NoError(t, db.First(&author).Error)
	assert.Nil(t, author.FirstName)
	assert.Nil(t, author.MiddleName)
	assert.Equal(t, "Madonna", *author.LastName)

	var mapping models.TransformationCited
	require.NoError(t, db.First(&mapping).Error)
	assert.Nil(t, mapping.FKKineticsID)

	outcome, err = svc.Post(ctx, mustDecode(t, payload))
	require.NoError(t, err)
	assert.Equal(t, OutcomeExists, outcome)
	assert.Equal(t, rowCounts{relationships: 1, citations: 1, authors: 1, authorLinks: 1, mappings: 1}, countRows(t, db))

	// die Wiederholung schreibt auch kein Protokoll
	var log []models.TransformationSubmission
	require.NoError(t, db.Order("id").Find(&log).Error)
	require.Len(t, log, 1)
	assert.Equal(t, string(OutcomeCreated), log[0].Outcome)
	assert.Equal(t, rel.ID, *log[0].RelationshipID)
	assert.Equal(t, mapping.FKCitationID, *log[0].CitationID)
}

func TestPostWithKineticsAndSuccessor(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	testutil.Substance(t, db, "DTXSID9020112", "Atrazine")
	deethyl := testutil.Substance(t, db, "DTXSID5024052", "Deethylatrazine")

	base := map[string]any{
		"predecessor_dsstox_id": "DTXSID9020112",
		"successor_dsstox_id":   "DTXSID5024052",
		"authors":               "Jane Doe",
		"doi":                   "10.1021/es000002",
		"half_life":             35.5,
		"half_life_units":       "d",
	}
	outcome, err := svc.Post(ctx, mustDecode(t, base))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	// Andere Messung zum selben Zitat: neue Kinetik und Zuordnung, gleiche Beziehung.
	base["pH"] = 8.0
	outcome, err = svc.Post(ctx, mustDecode(t, base))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	assert.Equal(t, rowCounts{relationships: 1, kinetics: 2, citations: 1, authors: 1, authorLinks: 1, mappings: 2}, countRows(t, db))

	var rel models.SubstanceRelationship
	require.NoError(t, db.First(&rel).Error)
	require.NotNil(t, rel.FKGenericSubstanceIDSuccessor)
	assert.Equal(t, deethyl.ID, *rel.FKGenericSubstanceIDSuccessor)

	var kinetics []models.Kinetics
	require.NoError(t, db.Find(&kinetics).Error)
	for _, k := range kinetics {
		assert.Equal(t, rel.ID, k.FKSubstanceRelationshipID)
	}
}

func TestPostUnknownSubstanceWritesNothing(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	testutil.Substance(t, db, "DTXSID9020112", "Atrazine")

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{name: "unknown predecessor id", payload: map[string]any{"predecessor_dsstox_id": "DTXSID0000000", "doi": "x"}},
		{name: "unknown successor id", payload: map[string]any{"predecessor_dsstox_id": "DTXSID9020112", "successor_dsstox_id": "DTXSID0000000", "doi": "x"}},
		{name: "no predecessor at all", payload: map[string]any{"doi": "x"}},
		{name: "unknown predecessor name", payload: map[string]any{"predecessor_name": "Unobtainium", "doi": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Post(ctx, mustDecode(t, tt.payload))
			assert.ErrorIs(t, err, ErrSubstanceNotFound)
			assert.ErrorIs(t, err, entity.ErrNotFound)
		})
	}
	assert.Equal(t, rowCounts{}, countRows(t, db))
	assert.Zero(t, testutil.Count(t, db, &models.TransformationSubmission{}))
}

func TestPostResolvesByNameAndStructure(t *testing.T) {
	resolver := staticResolver{
		"CCNc1nc(Cl)nc(NC(C)C)n1": "MXWJVTOOROXGIU-UHFFFAOYSA-N",
		"CC(C)Nc1nc(N)nc(Cl)n1":   "DFWFIQKMSFGDCQ-UHFFFAOYSA-N",
	}
	svc, db := newService(t, resolver)
	ctx := context.Background()
	atrazine := testutil.Substance(t, db, "DTXSID9020112", "Atrazine")
	deethyl := testutil.Substance(t, db, "DTXSID5024052", "Deethylatrazine")
	testutil.Synonym(t, db, atrazine.ID, "MXWJVTOOROXGIU-UHFFFAOYSA-N", "inchikey", 2)
	testutil.Synonym(t, db, deethyl.ID, "DFWFIQKMSFGDCQ-UHFFFAOYSA-N", "inchikey", 2)

	t.Run("name and structure agree", func(t *testing.T) {
		outcome, err := svc.Post(ctx, mustDecode(t, map[string]any{
			"predecessor_name":   "Atrazine",
			"predecessor_smiles": "CCNc1nc(Cl)nc(NC(C)C)n1",
			"successor_name":     "Deethylatrazine",
			"doi":                "10.1/agree",
		}))
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, outcome)
	})

	t.Run("name and structure disagree", func(t *testing.T) {
		_, err := svc.Post(ctx, mustDecode(t, map[string]any{
			"predecessor_name":   "Atrazine",
			"predecessor_smiles": "CC(C)Nc1nc(N)nc(Cl)n1",
			"doi":                "10.1/disagree",
		}))
		assert.ErrorIs(t, err, ErrSubstanceNotFound)
	})

	t.Run("structure unknown to resolver", func(t *testing.T) {
		_, err := svc.Post(ctx, mustDecode(t, map[string]any{
			"predecessor_name":   "Atrazine",
			"predecessor_smiles": "C",
			"doi":                "10.1/unknown",
		}))
		assert.ErrorIs(t, err, ErrSubstanceNotFound)
	})

	assert.Equal(t, int64(1), testutil.Count(t, db, &models.SubstanceRelationship{}))
}

func TestSynonymLowestRankWins(t *testing.T) {
	db := testutil.DB(t)
	a := testutil.Substance(t, db, "DTXSID1", "Alpha")
	b := testutil.Substance(t, db, "DTXSID2", "Beta")
	testutil.Synonym(t, db, b.ID, "shared", "synonym", 5)
	testutil.Synonym(t, db, a.ID, "shared", "synonym", 3)

	id, err := synonymSubstanceID(db, "shared")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, a.ID, *id)

	id, err = synonymSubstanceID(db, "missing")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestPostRollsBackOnFailure(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	testutil.Substance(t, db, "DTXSID9020112", "Atrazine")
	require.NoError(t, db.Migrator().DropTable(&models.TransformationCited{}))

	_, err := svc.Post(ctx, mustDecode(t, map[string]any{
		"predecessor_dsstox_id": "DTXSID9020112",
		"authors":               "Madonna",
		"doi":                   "10.1/rollback",
	}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSubstanceNotFound)

	assert.Zero(t, testutil.Count(t, db, &models.SubstanceRelationship{}))
	assert.Zero(t, testutil.Count(t, db, &models.Citation{}))
	assert.Zero(t, testutil.Count(t, db, &models.Author{}))
	assert.Zero(t, testutil.Count(t, db, &models.AuthorCited{}))

	assert.Zero(t, testutil.Count(t, db, &models.TransformationSubmission{}))
}

func TestPostMissingRelationshipType(t *testing.T) {
	svc, db := newService(t, nil)
	testutil.Substance(t, db, "DTXSID9020112", "Atrazine")
	require.NoError(t, db.Where("1 = 1").Delete(&models.SubstanceRelationshipType{}).Error)

	_, err := svc.Post(context.Background(), mustDecode(t, map[string]any{"predecessor_dsstox_id": "DTXSID9020112"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.TransformationProduct)
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload([]byte(`"{\"predecessor_dsstox_id\":\"DTXSID1\",\"id\":5,\"fk_substance_relationship_id\":9,\"rate\":0.5,\"journal\":\"ES&T\",\"authors\":\"A B\"}"`))
	require.NoError(t, err)
	assert.Equal(t, "DTXSID1", p.Predecessor.DSSToxID)
	assert.Equal(t, "A B", p.Authors)
	assert.Zero(t, p.Kinetics.ID)
	assert.Zero(t, p.Kinetics.FKSubstanceRelationshipID)
	assert.Zero(t, p.Citation.ID)
	require.NotNil(t, p.Kinetics.Rate)
	assert.Equal(t, 0.5, *p.Kinetics.Rate)
	require.NotNil(t, p.Citation.Journal)
	assert.Equal(t, "ES&T", *p.Citation.Journal)

	_, err = DecodePayload([]byte(`[1]`))
	assert.ErrorIs(t, err, entity.ErrInvalidPayload)
	_, err = DecodePayload([]byte(`{"rate":"fast"}`))
	assert.ErrorIs(t, err, entity.ErrInvalidPayload)
}

func TestAuditJSONDropsPDF(t *testing.T) {
	p, err := DecodePayload([]byte(`{"doi":"10.1/x","pdf":"JVBERi0="}`))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-"), p.Citation.PDF)
	assert.JSONEq(t, `{"doi":"10.1/x"}`, string(p.auditJSON()))
}

func TestKineticsHasMeasurement(t *testing.T) {
	tests := []struct {
		name string
		k    models.Kinetics
		want bool
	}{
		{name: "empty", k: models.Kinetics{}, want: false},
		{name: "comments only", k: models.Kinetics{Comments: testutil.Str("n/a")}, want: false},
		{name: "zero pH", k: models.Kinetics{PH: testutil.Float(0)}, want: false},
		{name: "empty units", k: models.Kinetics{RateUnits: testutil.Str("")}, want: false},
		{name: "half life", k: models.Kinetics{HalfLife: testutil.Float(2)}, want: true},
		{name: "reaction", k: models.Kinetics{Reaction: testutil.Str("hydrolysis")}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.k.HasMeasurement())
		})
	}
}
