package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"chem-trans-api/config"
	"chem-trans-api/storage"
)

func main() {
	log.Println("Starte Backup-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	if !cfg.S3Enabled() {
		log.Fatalf("S3_BUCKET ist nicht gesetzt, Backup nicht möglich")
	}
	ctx := context.Background()

	// 1. Datenbank-Dump erstellen
	dumpData, err := createDump(ctx, cfg)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des DB-Dumps: %v", err)
	}

	// 2. S3-Client erstellen
	store, err := storage.NewStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des S3-Clients: %v", err)
	}

	// 3. Backup nach S3 hochladen
	prefix := strings.Trim(cfg.BackupPrefix, "/") + "/"
	key := fmt.Sprintf("%sbackup-%s-%s.sql.gz", prefix, cfg.DBDriver, time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	link, err := store.Upload(ctx, key, "application/gzip", dumpData)
	if err != nil {
		log.Fatalf("Fehler beim Hochladen nach S3: %v", err)
	}
	log.Printf("Backup erfolgreich nach %s hochgeladen (Bucket %s)", link, store.Bucket())

	// 4. Alte Backups rotieren
	deleted, err := store.Rotate(ctx, prefix, cfg.KeepBackups)
	for _, k := range deleted {
		log.Printf("Altes Backup gelöscht: %s", k)
	}
	if err != nil {
		log.Fatalf("Fehler bei der Rotation alter Backups: %v", err)
	}

	log.Println("Backup-Prozess erfolgreich abgeschlossen.")
}

// dumpCommand baut den Dump-Befehl für den konfigurierten Treiber.
// Passwörter gehen über die Umgebung, nicht über die Kommandozeile.
func dumpCommand(ctx context.Context, cfg *config.Config) (*exec.Cmd, error) {
	switch strings.ToLower(cfg.DBDriver) {
	case "mysql":
		if cfg.SSHHost != "" {
			return nil, fmt.Errorf("backup über SSH-Tunnel wird nicht unterstützt, DB_HOST muss direkt erreichbar sein")
		}
		cmd := exec.CommandContext(ctx, "mysqldump",
			"-h", cfg.DBHost,
			"-P", strconv.Itoa(cfg.DBPort),
			"-u", cfg.DBUser,
			"--single-transaction",
			"--quick",
			cfg.DBName,
		)
		cmd.Env = append(os.Environ(), "MYSQL_PWD="+cfg.DBPassword)
		return cmd, nil
	case "postgres":
		cmd := exec.CommandContext(ctx, "pg_dump",
			"-h", cfg.DBHost,
			"-p", strconv.Itoa(cfg.DBPort),
			"-U", cfg.DBUser,
			"-d", cfg.DBName,
			"-w", // Passwort wird über PGPASSWORD bereitgestellt
		)
		cmd.Env = append(os.Environ(), "PGPASSWORD="+cfg.DBPassword)
		return cmd, nil
	case "sqlite":
		return exec.CommandContext(ctx, "sqlite3", cfg.DBPath, ".dump"), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func createDump(ctx context.Context, cfg *config.Config) ([]byte, error) {
	cmd, err := dumpCommand(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := io.Copy(gzipWriter, stdout); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", cmd.Path, err, strings.TrimSpace(stderr.String()))
	}

	return buf.Bytes(), nil
}
