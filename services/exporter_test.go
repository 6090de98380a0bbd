package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chem-trans-api/testutil"
)

type memoryUploader struct {
	key, contentType string
	data             []byte
	err              error
}

func (u *memoryUploader) Upload(_ context.Context, key, contentType string, data []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.key, u.contentType, u.data = key, contentType, data
	return "s3://bucket/" + key, nil
}

func TestExporterRun(t *testing.T) {
	svc, _ := newService(t, nil)
	seedTransformation(t, svc)

	up := &memoryUploader{}
	e := NewExporter(testutil.Config(), svc, up, zap.NewNop())
	e.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	link, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/exports/transformation_view-2024-01-02T03-04-05Z.json", link)
	assert.Equal(t, "application/json", up.contentType)

	var rows []TransformationRow
	require.NoError(t, json.Unmarshal(up.data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "DTXSID9020112", *rows[0].PredecessorDSSToxID)
}

func TestExporterUploadFailure(t *testing.T) {
	svc, _ := newService(t, nil)
	e := NewExporter(testutil.Config(), svc, &memoryUploader{err: errors.New("bucket gone")}, zap.NewNop())

	_, err := e.Run(context.Background())
	assert.ErrorContains(t, err, "bucket gone")
}

func TestExporterDisabled(t *testing.T) {
	svc, _ := newService(t, nil)
	e := NewExporter(testutil.Config(), svc, nil, zap.NewNop())

	assert.False(t, e.Enabled())
	_, err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrExportDisabled)
	assert.ErrorIs(t, e.Trigger(), ErrExportDisabled)

	c := cron.New()
	require.NoError(t, e.Schedule(c, "not a schedule"))
	assert.Empty(t, c.Entries())
}

func TestExporterSchedule(t *testing.T) {
	svc, _ := newService(t, nil)
	e := NewExporter(testutil.Config(), svc, &memoryUploader{}, zap.NewNop())

	c := cron.New()
	require.NoError(t, e.Schedule(c, "0 3 * * *"))
	assert.Len(t, c.Entries(), 1)
	assert.Error(t, e.Schedule(c, "not a schedule"))
}

func TestExporterRunAcrossPages(t *testing.T) {
	svc, _ := newService(t, nil)
	seedTransformation(t, svc)
	addMappings(t, svc, 4)

	pageSize := viewPageSize
	viewPageSize = 2
	t.Cleanup(func() { viewPageSize = pageSize })

	up := &memoryUploader{}
	_, err := NewExporter(testutil.Config(), svc, up, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	var rows []TransformationRow
	require.NoError(t, json.Unmarshal(up.data, &rows))
	assert.Len(t, rows, 5)
}

func TestExporterRunEmpty(t *testing.T) {
	svc, _ := newService(t, nil)
	up := &memoryUploader{}
	_, err := NewExporter(testutil.Config(), svc, up, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(up.data))
}
