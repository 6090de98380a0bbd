// Package database öffnet die gorm-Verbindung für den konfigurierten Treiber,
// optional durch einen SSH-Tunnel, und bereitet das Schema für lokale Umgebungen vor.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chem-trans-api/config"
	"chem-trans-api/models"
)

// Database bündelt die gorm-Verbindung mit einem eventuell geöffneten Tunnel.
type Database struct {
	DB     *gorm.DB
	Driver string

	tunnel *Tunnel
}

// Open verbindet sich mit der Datenbank und prüft die Verbindung mit einem Ping.
func Open(cfg *config.Config, log *zap.Logger) (*Database, error) {
	driver := strings.ToLower(cfg.DBDriver)
	d := &Database{Driver: driver}

	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		network := "tcp"
		if cfg.SSHHost != "" {
			t, err := OpenTunnel(cfg, log)
			if err != nil {
				return nil, err
			}
			d.tunnel = t
			network = t.Network()
		}
		dialector = gormmysql.Open(cfg.MySQLDSN(network))
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	logMode := logger.Silent
	if cfg.DBDebug {
		logMode = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		d.closeTunnel()
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	d.DB = db

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := d.Ping(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	log.Info("Successfully connected to database.", zap.String("driver", driver), zap.Bool("ssh_tunnel", d.tunnel != nil))
	return d, nil
}

// Ping prüft, ob die Datenbank erreichbar ist.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", d.Driver, err)
	}
	return nil
}

// Close schließt den Verbindungspool und danach den Tunnel.
func (d *Database) Close() error {
	var firstErr error
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			firstErr = sqlDB.Close()
		}
	}
	if err := d.closeTunnel(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (d *Database) closeTunnel() error {
	if d.tunnel == nil {
		return nil
	}
	err := d.tunnel.Close()
	d.tunnel = nil
	return err
}

// Migrate legt alle Tabellen an. Gedacht für sqlite und Entwicklungsdatenbanken;
// das produktive DSSTox-Schema wird extern gepflegt.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// MigrateOwned legt nur die Tabellen an, die ausschließlich diese Anwendung schreibt.
// Läuft bei jedem Start, auch gegen das extern gepflegte Schema.
func MigrateOwned(db *gorm.DB) error {
	return db.AutoMigrate(&models.TransformationSubmission{})
}
