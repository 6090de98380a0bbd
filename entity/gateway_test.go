package entity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chem-trans-api/entity"
	"chem-trans-api/models"
	"chem-trans-api/testutil"
)

func authors(t *testing.T) *entity.Gateway[models.Author, *models.Author] {
	t.Helper()
	return entity.NewGateway[models.Author](testutil.DB(t), zap.NewNop())
}

func TestGatewayCreateTwiceConflicts(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	first, err := gw.Create(ctx, &models.Author{FirstName: testutil.Str("Marie"), LastName: testutil.Str("Curie")})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, err = gw.Create(ctx, &models.Author{FirstName: testutil.Str("Marie"), LastName: testutil.Str("Curie")})
	assert.ErrorIs(t, err, entity.ErrConflict)

	all, err := gw.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGatewayCreateIgnoresClientID(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	rec, err := gw.Create(ctx, &models.Author{ID: 99, LastName: testutil.Str("Hahn")})
	require.NoError(t, err)
	assert.NotEqual(t, uint(99), rec.ID)
}

func TestGatewayNullIsPartOfNaturalKey(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	_, err := gw.Create(ctx, &models.Author{LastName: testutil.Str("Meitner")})
	require.NoError(t, err)

	// Ein zusätzlicher Vorname ist ein anderer natürlicher Schlüssel.
	_, err = gw.Create(ctx, &models.Author{FirstName: testutil.Str("Lise"), LastName: testutil.Str("Meitner")})
	require.NoError(t, err)

	_, err = gw.Create(ctx, &models.Author{LastName: testutil.Str("Meitner")})
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestGatewayGetReturnsInput(t *testing.T) {
	gw := entity.NewGateway[models.Kinetics](testutil.DB(t), zap.NewNop())
	ctx := context.Background()

	in := &models.Kinetics{
		FKSubstanceRelationshipID: 7,
		PH:                        testutil.Float(7.4),
		HalfLife:                  testutil.Float(12.5),
		HalfLifeUnits:             testutil.Str("d"),
		Comments:                  testutil.Str("aerobic soil"),
	}
	created, err := gw.Create(ctx, in)
	require.NoError(t, err)

	got, err := gw.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Fields(), got.Fields())
}

func TestGatewayGetMissing(t *testing.T) {
	_, err := authors(t).Get(context.Background(), 4711)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestGatewaySearch(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	_, err := gw.Create(ctx, &models.Author{FirstName: testutil.Str("Otto"), LastName: testutil.Str("Hahn")})
	require.NoError(t, err)
	_, err = gw.Create(ctx, &models.Author{FirstName: testutil.Str("Lise"), LastName: testutil.Str("Meitner")})
	require.NoError(t, err)

	found, err := gw.Search(ctx, map[string]string{"last_name": "Hahn"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Otto", *found[0].FirstName)

	found, err = gw.Search(ctx, map[string]string{"last_name": "Hahn", "first_name": "Lise"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGatewaySearchMalformed(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters map[string]string
	}{
		{name: "no filters", filters: map[string]string{}},
		{name: "unknown column", filters: map[string]string{"nickname": "x"}},
		{name: "id is not searchable", filters: map[string]string{"id": "1"}},
		{name: "one bad among good", filters: map[string]string{"last_name": "Hahn", "bogus": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gw.Search(ctx, tt.filters)
			assert.ErrorIs(t, err, entity.ErrMalformedQuery)
		})
	}
}

func TestGatewayPutCreatesWithGivenID(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	rec, created, err := gw.Put(ctx, 42, &models.Author{LastName: testutil.Str("Bohr")})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint(42), rec.ID)

	got, err := gw.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Bohr", *got.LastName)
}

func TestGatewayPutReplacesWholesale(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	rec, err := gw.Create(ctx, &models.Author{FirstName: testutil.Str("Niels"), LastName: testutil.Str("Bohr")})
	require.NoError(t, err)

	out, created, err := gw.Put(ctx, rec.ID, &models.Author{LastName: testutil.Str("Bohr")})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, out.ID)

	got, err := gw.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FirstName)
}

func TestGatewayPutConflictsWithOtherRecord(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	a, err := gw.Create(ctx, &models.Author{LastName: testutil.Str("Fermi")})
	require.NoError(t, err)
	b, err := gw.Create(ctx, &models.Author{LastName: testutil.Str("Dirac")})
	require.NoError(t, err)

	_, _, err = gw.Put(ctx, b.ID, &models.Author{LastName: testutil.Str("Fermi")})
	assert.ErrorIs(t, err, entity.ErrConflict)

	// gegen sich selbst ist das kein Konflikt
	_, _, err = gw.Put(ctx, a.ID, &models.Author{LastName: testutil.Str("Fermi")})
	assert.NoError(t, err)
}

func TestGatewayPatchEmptyLeavesRecordUnchanged(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	rec, err := gw.Create(ctx, &models.Author{FirstName: testutil.Str("Enrico"), LastName: testutil.Str("Fermi")})
	require.NoError(t, err)

	for _, body := range [][]byte{nil, []byte("  "), []byte("{}")} {
		out, err := gw.Patch(ctx, rec.ID, body)
		require.NoError(t, err)
		assert.Equal(t, rec.Fields(), out.Fields())
	}
}

func TestGatewayPatchMergesFields(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	rec, err := gw.Create(ctx, &models.Author{FirstName: testutil.Str("Enrico"), LastName: testutil.Str("Fermi")})
	require.NoError(t, err)
	other, err := gw.Create(ctx, &models.Author{FirstName: testutil.Str("Laura"), LastName: testutil.Str("Fermi")})
	require.NoError(t, err)

	out, err := gw.Patch(ctx, rec.ID, []byte(`{"middle_name":"X"}`))
	require.NoError(t, err)
	assert.Equal(t, "Enrico", *out.FirstName)
	assert.Equal(t, "X", *out.MiddleName)

	out, err = gw.Patch(ctx, rec.ID, []byte(`{"middle_name":null}`))
	require.NoError(t, err)
	assert.Nil(t, out.MiddleName)

	_, err = gw.Patch(ctx, other.ID, []byte(`{"first_name":"Enrico"}`))
	assert.ErrorIs(t, err, entity.ErrConflict)

	_, err = gw.Patch(ctx, 999, []byte(`{"first_name":"Enrico"}`))
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = gw.Patch(ctx, rec.ID, []byte(`{"first_name":1}`))
	assert.ErrorIs(t, err, entity.ErrInvalidPayload)

	_, err = gw.Patch(ctx, rec.ID, []byte(`{"nickname":"Enrico"}`))
	assert.ErrorIs(t, err, entity.ErrInvalidPayload)
	stored, err := gw.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Enrico", *stored.FirstName)
}

func TestGatewayDelete(t *testing.T) {
	gw := authors(t)
	ctx := context.Background()

	rec, err := gw.Create(ctx, &models.Author{LastName: testutil.Str("Pauli")})
	require.NoError(t, err)

	require.NoError(t, gw.Delete(ctx, rec.ID))
	_, err = gw.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.ErrorIs(t, gw.Delete(ctx, rec.ID), entity.ErrNotFound)
}

func TestFindOrCreateWithSkip(t *testing.T) {
	db := testutil.DB(t)

	k := &models.Kinetics{FKSubstanceRelationshipID: 1, PH: testutil.Float(7)}
	first, created, err := entity.FindOrCreate[models.Kinetics](db, k)
	require.NoError(t, err)
	assert.True(t, created)

	// Gleiche Messwerte an einer anderen Beziehung werden nur mit skip wiedergefunden.
	again, created, err := entity.FindOrCreate[models.Kinetics](db, &models.Kinetics{FKSubstanceRelationshipID: 2, PH: testutil.Float(7)}, "fk_substance_relationship_id")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	_, created, err = entity.FindOrCreate[models.Kinetics](db, &models.Kinetics{FKSubstanceRelationshipID: 2, PH: testutil.Float(7)})
	require.NoError(t, err)
	assert.True(t, created)
}
