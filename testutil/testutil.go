// Package testutil stellt In-Memory-Datenbanken und Fixtures für Tests bereit.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"chem-trans-api/config"
	"chem-trans-api/database"
)

var dbSeq atomic.Int64

// Config gibt eine Konfiguration für sqlite zurück, wie config.Load sie mit Defaults liefern würde.
func Config() *config.Config {
	return &config.Config{
		DBDriver:             "sqlite",
		DBPath:               ":memory:",
		HTTPPort:             "5000",
		RelationshipSource:   "Caroline Stevens",
		RelationshipCurator:  "zchiodini",
		StructureResolverURL: "http://127.0.0.1:0",
		EuropePMCBaseURL:     "http://127.0.0.1:0",
		PubMedBaseURL:        "http://127.0.0.1:0",
		PMCUtilsURL:          "http://127.0.0.1:0",
		UnpaywallBaseURL:     "http://127.0.0.1:0",
		ExportSchedule:       "0 3 * * *",
		ExportPrefix:         "exports",
		S3Region:             "us-east-1",
		KeepBackups:          4,
		BackupPrefix:         "backups",
	}
}

// DB öffnet eine eigene In-Memory-SQLite pro Test, migriert das Schema und legt
// die Standarddaten an. Eine einzige Verbindung, damit alle Zugriffe dieselbe
// Datenbank sehen.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	database.Seed(db, zap.NewNop())
	return db
}

// Count zählt die Zeilen einer Tabelle.
func Count(tb testing.TB, db *gorm.DB, model any) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		tb.Fatalf("count %T: %v", model, err)
	}
	return n
}
