package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// DBDriver wählt den gorm-Dialekt: mysql, postgres oder sqlite.
	DBDriver   string `envconfig:"DB_DRIVER" default:"mysql"`
	DBHost     string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort     int    `envconfig:"DB_PORT" default:"3306"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"dsstox"`
	// DBPath wird nur für sqlite genutzt (z.B. "file::memory:?cache=shared").
	DBPath        string `envconfig:"DB_PATH" default:"chem-trans.db"`
	DBAutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	DBDebug       bool   `envconfig:"DB_DEBUG" default:"false"`

	// SSH-Tunnel zur entfernten MySQL-Instanz, leer = direkte Verbindung
	SSHHost       string `envconfig:"SSH_HOST"`
	SSHPort       int    `envconfig:"SSH_PORT" default:"22"`
	SSHUser       string `envconfig:"SSH_USER"`
	SSHPassword   string `envconfig:"SSH_PASSWORD"`
	SSHKeyFile    string `envconfig:"SSH_KEY_FILE"`
	SSHKnownHosts string `envconfig:"SSH_KNOWN_HOSTS"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"5000"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	// Kommagetrennt, leer = kein CORS
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS"`

	// Feste Zuordnung neu angelegter Transformationsbeziehungen
	RelationshipSource  string `envconfig:"RELATIONSHIP_SOURCE" default:"Caroline Stevens"`
	RelationshipCurator string `envconfig:"RELATIONSHIP_CURATOR" default:"zchiodini"`

	// Struktur -> InChIKey Auflösung (PubChem PUG REST)
	StructureResolverURL string `envconfig:"STRUCTURE_RESOLVER_URL" default:"https://pubchem.ncbi.nlm.nih.gov/rest/pug"`

	PubMedBaseURL    string `envconfig:"PUBMED_BASE_URL" default:"https://eutils.ncbi.nlm.nih.gov/entrez/eutils"`
	PubMedAPIKey     string `envconfig:"PUBMED_API_KEY"`
	PMCUtilsURL      string `envconfig:"PMC_UTILS_URL" default:"https://www.ncbi.nlm.nih.gov/pmc/utils"`
	EuropePMCBaseURL string `envconfig:"EUROPEPMC_BASE_URL" default:"https://www.ebi.ac.uk/europepmc/webservices/rest"`
	UnpaywallBaseURL string `envconfig:"UNPAYWALL_BASE_URL" default:"https://api.unpaywall.org/v2"`
	UnpaywallEmail   string `envconfig:"UNPAYWALL_EMAIL"`

	// Export der Transformation-View nach S3
	ExportSchedule string `envconfig:"EXPORT_SCHEDULE" default:"0 3 * * *"`
	ExportPrefix   string `envconfig:"EXPORT_PREFIX" default:"exports"`

	S3Key       string `envconfig:"S3_KEY"`
	S3Secret    string `envconfig:"S3_SECRET"`
	S3URL       string `envconfig:"S3_URL"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3PathStyle bool   `envconfig:"S3_PATH_STYLE" default:"true"`

	// cmd/backup
	BackupPrefix string `envconfig:"BACKUP_PREFIX" default:"backups"`
	KeepBackups  int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

// MySQLDSN gibt den DSN für go-sql-driver/mysql zurück. network ist "tcp" oder
// der Name einer registrierten Dial-Funktion (SSH-Tunnel).
func (c *Config) MySQLDSN(network string) string {
	return fmt.Sprintf("%s:%s@%s(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.DBUser, c.DBPassword, network, c.DBHost, c.DBPort, c.DBName)
}

// PostgresDSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// S3Enabled meldet, ob ein Bucket für Exporte und Backups konfiguriert ist.
// Ohne S3_URL gilt der Standard-Endpunkt von AWS.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// Validate prüft Kombinationen, die envconfig allein nicht abbilden kann.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "mysql", "postgres":
		if c.DBUser == "" {
			return fmt.Errorf("DB_USER is required for driver %q", c.DBDriver)
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SSHHost != "" {
		if strings.ToLower(c.DBDriver) != "mysql" {
			return fmt.Errorf("SSH tunnel is only supported for mysql")
		}
		if c.SSHUser == "" {
			return fmt.Errorf("SSH_USER is required when SSH_HOST is set")
		}
		if c.SSHPassword == "" && c.SSHKeyFile == "" {
			return fmt.Errorf("SSH_PASSWORD or SSH_KEY_FILE is required when SSH_HOST is set")
		}
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return &c, err
	}
	return &c, c.Validate()
}
