package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"chem-trans-api/config"
)

// ErrExportDisabled wird zurückgegeben, wenn kein Bucket konfiguriert ist.
var ErrExportDisabled = errors.New("export is disabled: no S3 bucket configured")

// ObjectUploader ist der Teil des Objektspeichers, den der Export braucht.
type ObjectUploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Exporter schreibt die komplette transformation_view als JSON in den Objektspeicher.
type Exporter struct {
	Transformations *TransformationService
	Store           ObjectUploader
	Logger          *zap.Logger

	prefix string
	mu     sync.Mutex
	now    func() time.Time
}

// NewExporter erstellt den Exporter. store darf nil sein; Exporte sind dann deaktiviert.
func NewExporter(cfg *config.Config, transformations *TransformationService, store ObjectUploader, logger *zap.Logger) *Exporter {
	return &Exporter{
		Transformations: transformations,
		Store:           store,
		Logger:          logger.With(zap.String("service", "export")),
		prefix:          strings.Trim(cfg.ExportPrefix, "/"),
		now:             time.Now,
	}
}

// Enabled meldet, ob ein Objektspeicher angebunden ist.
func (e *Exporter) Enabled() bool { return e.Store != nil }

// Run exportiert synchron und gibt den Link auf die hochgeladene Datei zurück.
// Parallele Aufrufe warten aufeinander.
func (e *Exporter) Run(ctx context.Context) (string, error) {
	if !e.Enabled() {
		return "", ErrExportDisabled
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	data, n, err := e.encodeView(ctx)
	if err != nil {
		exportsCounter.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("assemble transformation view: %w", err)
	}

	key := fmt.Sprintf("%s/transformation_view-%s.json", e.prefix, e.now().UTC().Format("2006-01-02T15-04-05Z"))
	key = strings.TrimPrefix(key, "/")
	link, err := e.Store.Upload(ctx, key, "application/json", data)
	if err != nil {
		exportsCounter.WithLabelValues("failed").Inc()
		return "", err
	}
	exportsCounter.WithLabelValues("ok").Inc()
	e.Logger.Info("Export hochgeladen", zap.String("link", link), zap.Int("rows", n))
	return link, nil
}

// encodeView schreibt die komplette transformation_view seitenweise als JSON-Array.
func (e *Exporter) encodeView(ctx context.Context) ([]byte, int, error) {
	var (
		buf    bytes.Buffer
		n      int
		encErr error
	)
	buf.WriteByte('[')
	err := e.Transformations.eachViewPage(ctx, func(rows []TransformationRow) bool {
		for _, row := range rows {
			b, err := json.Marshal(row)
			if err != nil {
				encErr = err
				return false
			}
			if n > 0 {
				buf.WriteByte(',')
			}
			buf.Write(b)
			n++
		}
		return true
	})
	if err == nil {
		err = encErr
	}
	if err != nil {
		return nil, 0, err
	}
	buf.WriteByte(']')
	return buf.Bytes(), n, nil
}

// Trigger startet einen Export im Hintergrund.
func (e *Exporter) Trigger() error {
	if !e.Enabled() {
		return ErrExportDisabled
	}
	go func() {
		if _, err := e.Run(context.Background()); err != nil {
			e.Logger.Error("Export fehlgeschlagen", zap.Error(err))
		}
	}()
	return nil
}

// Schedule registriert den Export beim Cron-Scheduler.
func (e *Exporter) Schedule(c *cron.Cron, spec string) error {
	if !e.Enabled() {
		e.Logger.Info("Kein S3-Bucket konfiguriert, geplanter Export deaktiviert.")
		return nil
	}
	_, err := c.AddFunc(spec, func() {
		e.Logger.Info("Running scheduled export job...")
		if _, err := e.Run(context.Background()); err != nil {
			e.Logger.Error("Cron job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid EXPORT_SCHEDULE %q: %w", spec, err)
	}
	return nil
}
