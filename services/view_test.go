package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chem-trans-api/entity"
	"chem-trans-api/models"
	"chem-trans-api/testutil"
)

func seedTransformation(t *testing.T, svc *TransformationService) {
	t.Helper()
	db := svc.DB
	atrazine := testutil.Substance(t, db, "DTXSID9020112", "Atrazine")
	testutil.Structure(t, db, atrazine.ID, "CCNc1nc(Cl)nc(NC(C)C)n1")
	testutil.Substance(t, db, "DTXSID5024052", "Deethylatrazine")

	_, err := svc.Post(context.Background(), mustDecode(t, map[string]any{
		"predecessor_dsstox_id": "DTXSID9020112",
		"successor_dsstox_id":   "DTXSID5024052",
		"authors":               "Carl Zeta, Anna Maria Alpha",
		"doi":                   "10.1021/es000003",
		"title":                 "Fate of triazines.",
		"journal":               "Environ. Sci. Technol.",
		"year":                  2020,
		"volume":                54,
		"pages":                 "1-10",
		"half_life":             12.0,
		"half_life_units":       "d",
	}))
	require.NoError(t, err)
}

func TestListView(t *testing.T) {
	svc, _ := newService(t, nil)
	seedTransformation(t, svc)

	rows, err := svc.ListView(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, "DTXSID9020112", *row.PredecessorDSSToxID)
	assert.Equal(t, "Atrazine", *row.PredecessorPreferredName)
	assert.Equal(t, "CCNc1nc(Cl)nc(NC(C)C)n1", *row.PredecessorSMILES)
	assert.Equal(t, "DSSTox_High", *row.PredecessorQCLevel)
	assert.Equal(t, "DTXSID5024052", *row.SuccessorDSSToxID)
	assert.Nil(t, row.SuccessorSMILES)
	assert.Equal(t, "Transformation Product", *row.Relationship)
	require.NotNil(t, row.KineticsID)
	assert.Equal(t, 12.0, *row.HalfLife)
	assert.Equal(t, "Anna Maria Alpha, Carl Zeta", row.Authors)
	assert.Equal(t,
		"Anna Maria Alpha, Carl Zeta (2020). Fate of triazines. Environ. Sci. Technol. 54, 1-10. doi:10.1021/es000003",
		row.Reference)
}

func TestListViewEmpty(t *testing.T) {
	svc, _ := newService(t, nil)
	rows, err := svc.ListView(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSearchView(t *testing.T) {
	svc, _ := newService(t, nil)
	seedTransformation(t, svc)
	ctx := context.Background()

	rows, err := svc.SearchView(ctx, map[string]string{"predecessor_dsstox_id": "DTXSID9020112"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = svc.SearchView(ctx, map[string]string{"year": "2020", "half_life_units": "d"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = svc.SearchView(ctx, map[string]string{"year": "2019"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	// NULL-Spalten matchen keinen Wert
	rows, err = svc.SearchView(ctx, map[string]string{"rate": "0"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = svc.SearchView(ctx, map[string]string{})
	assert.ErrorIs(t, err, entity.ErrMalformedQuery)
	_, err = svc.SearchView(ctx, map[string]string{"colour": "red"})
	assert.ErrorIs(t, err, entity.ErrMalformedQuery)
}

// addMappings legt n weitere Beziehungen an, die alle auf das vorhandene Zitat verweisen.
func addMappings(t *testing.T, svc *TransformationService, n int) {
	t.Helper()
	db := svc.DB
	typeID, err := transformationTypeID(db)
	require.NoError(t, err)
	var existing models.TransformationCited
	require.NoError(t, db.First(&existing).Error)
	var rel models.SubstanceRelationship
	require.NoError(t, db.First(&rel, existing.FKSubstanceRelationshipID).Error)

	rels := make([]models.SubstanceRelationship, n)
	for i := range rels {
		rels[i] = models.SubstanceRelationship{
			FKGenericSubstanceIDPredecessor: rel.FKGenericSubstanceIDPredecessor,
			FKGenericSubstanceIDSuccessor:   rel.FKGenericSubstanceIDSuccessor,
			Relationship:                    rel.Relationship,
			FKSubstanceRelationshipTypeID:   typeID,
		}
	}
	require.NoError(t, db.CreateInBatches(&rels, 500).Error)

	mappings := make([]models.TransformationCited, n)
	for i, r := range rels {
		mappings[i] = models.TransformationCited{FKSubstanceRelationshipID: r.ID, FKCitationID: existing.FKCitationID}
	}
	require.NoError(t, db.CreateInBatches(&mappings, 500).Error)
}

func TestViewPaging(t *testing.T) {
	svc, _ := newService(t, nil)
	seedTransformation(t, svc)
	addMappings(t, svc, 6)

	pageSize := viewPageSize
	viewPageSize = 2
	t.Cleanup(func() { viewPageSize = pageSize })

	rows, err := svc.ListView(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 7)
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1].SubstanceRelationshipID, rows[i].SubstanceRelationshipID)
	}

	rows, err = svc.SearchView(context.Background(), map[string]string{"doi": "10.1021/es000003"})
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

func TestViewManyMappings(t *testing.T) {
	if testing.Short() {
		t.Skip("bulk insert")
	}
	svc, _ := newService(t, nil)
	seedTransformation(t, svc)
	addMappings(t, svc, 33000)
	ctx := context.Background()

	rows, err := svc.SearchView(ctx, map[string]string{"doi": "10.1021/es000003"})
	require.NoError(t, err)
	assert.Len(t, rows, entity.MaxRows)

	rows, err = svc.ListView(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, entity.MaxRows)

	total := 0
	require.NoError(t, svc.eachViewPage(ctx, func(page []TransformationRow) bool {
		total += len(page)
		return true
	}))
	assert.Equal(t, 33001, total)
}

func TestViewSubstanceTypes(t *testing.T) {
	svc, db := newService(t, nil)
	seedTransformation(t, svc)
	require.NoError(t, db.Model(&models.GenericSubstance{}).
		Where("dsstox_substance_id = ?", "DTXSID9020112").
		Update("substance_type", "Single Compound").Error)

	rows, err := svc.ListView(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Single Compound", *rows[0].PredecessorType)
	assert.Nil(t, rows[0].SuccessorType)

	rows, err = svc.SearchView(context.Background(), map[string]string{"predecessor_type": "Single Compound"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
