// Package entity bildet beliebige Tabellen-Modelle auf einheitliche CRUD-Operationen ab.
//
// Die Datenbank kennt außer dem Primärschlüssel keine Unique-Constraints. Duplikate
// werden deshalb ausschließlich hier über den natürlichen Schlüssel erkannt: alle
// Spalten außer der ID, so wie sie ein Modell über Fields() deklariert.
package entity

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrConflict       = errors.New("record already exists")
	ErrMalformedQuery = errors.New("the URL parameter(s) are incorrect or not specified")
	ErrInvalidPayload = errors.New("invalid request body")
)

// Field ist eine Spalte des natürlichen Schlüssels mit ihrem aktuellen Wert.
// Value ist nil für NULL, niemals ein nil-Pointer.
type Field struct {
	Column string
	Value  any
}

// Model ist das, was ein gorm-Modell für den Gateway bereitstellen muss.
type Model interface {
	TableName() string
	PrimaryKey() uint
	SetPrimaryKey(id uint)
	// Fields liefert alle Spalten außer der ID in fester Reihenfolge.
	Fields() []Field
}

// ModelPtr bindet einen Modelltyp an seinen Pointer-Empfänger.
type ModelPtr[T any] interface {
	*T
	Model
}

// Nullable übersetzt einen optionalen Wert in einen Field-Wert.
func Nullable[V any](p *V) any {
	if p == nil {
		return nil
	}
	return *p
}

// Blob behandelt leere Binärdaten wie NULL.
func Blob(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

// Columns gibt die deklarierten Spaltennamen eines Modelltyps zurück.
func Columns[T any, P ModelPtr[T]]() []string {
	fields := P(new(T)).Fields()
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f.Column)
	}
	return cols
}

// FindByNaturalKey sucht einen Datensatz, dessen Spalten exakt den Werten von rec
// entsprechen (NULL matcht IS NULL). Spalten in skip werden nicht verglichen.
// Gibt (nil, nil) zurück, wenn nichts passt.
func FindByNaturalKey[T any, P ModelPtr[T]](tx *gorm.DB, rec P, skip ...string) (P, error) {
	q := tx.Model(new(T))
	for _, f := range rec.Fields() {
		if contains(skip, f.Column) {
			continue
		}
		q = q.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value})
	}
	found := P(new(T))
	err := ForUpdate(q).First(found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("natural key lookup on %s: %w", rec.TableName(), err)
	}
	return found, nil
}

// Insert legt rec an, sofern kein Datensatz mit gleichem natürlichen Schlüssel existiert.
func Insert[T any, P ModelPtr[T]](tx *gorm.DB, rec P, skip ...string) (P, error) {
	existing, err := FindByNaturalKey[T, P](tx, rec, skip...)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, ErrConflict
	}
	if err := tx.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("insert into %s: %w", rec.TableName(), err)
	}
	return rec, nil
}

// FindOrCreate liefert den passenden Datensatz oder legt rec neu an.
// created ist true, wenn ein neuer Datensatz geschrieben wurde.
func FindOrCreate[T any, P ModelPtr[T]](tx *gorm.DB, rec P, skip ...string) (P, bool, error) {
	out, err := Insert[T, P](tx, rec, skip...)
	if errors.Is(err, ErrConflict) {
		return out, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// ForUpdate sperrt gelesene Zeilen bis zum Ende der Transaktion, wo der Dialekt das kann.
// SQLite serialisiert Schreiber ohnehin und kennt kein FOR UPDATE.
func ForUpdate(q *gorm.DB) *gorm.DB {
	switch q.Dialector.Name() {
	case "mysql", "postgres":
		return q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	default:
		return q
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
