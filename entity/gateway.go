package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxRows begrenzt List und Search.
const MaxRows = 1000

// View bietet lesenden Zugriff (List, Search) auf eine Tabelle oder Datenbank-View.
type View[T any, P ModelPtr[T]] struct {
	DB     *gorm.DB
	Logger *zap.Logger
	cols   map[string]struct{}
}

// NewView erstellt eine neue View für den Modelltyp T.
func NewView[T any, P ModelPtr[T]](db *gorm.DB, logger *zap.Logger) *View[T, P] {
	cols := map[string]struct{}{}
	for _, c := range Columns[T, P]() {
		cols[c] = struct{}{}
	}
	return &View[T, P]{
		DB:     db,
		Logger: logger.With(zap.String("entity", P(new(T)).TableName())),
		cols:   cols,
	}
}

// Name ist der Tabellenname und gleichzeitig der Routen-Name.
func (v *View[T, P]) Name() string {
	return P(new(T)).TableName()
}

// List gibt bis zu MaxRows Datensätze in Speicherreihenfolge zurück.
func (v *View[T, P]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := v.DB.WithContext(ctx).Limit(MaxRows).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", v.Name(), err)
	}
	return out, nil
}

// Search filtert exakt auf die übergebenen Spalten. Mindestens ein Filter ist nötig,
// und jede Spalte muss deklariert sein (die ID gehört nicht dazu).
func (v *View[T, P]) Search(ctx context.Context, filters map[string]string) ([]T, error) {
	if len(filters) == 0 {
		return nil, ErrMalformedQuery
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		if _, ok := v.cols[k]; !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrMalformedQuery, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := v.DB.WithContext(ctx).Model(new(T))
	for _, k := range keys {
		q = q.Where(clause.Eq{Column: clause.Column{Name: k}, Value: filters[k]})
	}
	var out []T
	if err := q.Limit(MaxRows).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("search %s: %w", v.Name(), err)
	}
	return out, nil
}

// Gateway ergänzt View um die schreibenden Operationen. Jede Operation läuft in
// einer eigenen Transaktion, damit Prüfung und Schreiben zusammen gelten.
type Gateway[T any, P ModelPtr[T]] struct {
	*View[T, P]
}

// NewGateway erstellt einen Gateway für den Modelltyp T.
func NewGateway[T any, P ModelPtr[T]](db *gorm.DB, logger *zap.Logger) *Gateway[T, P] {
	return &Gateway[T, P]{View: NewView[T, P](db, logger)}
}

// Get lädt einen Datensatz über die ID.
func (g *Gateway[T, P]) Get(ctx context.Context, id uint) (P, error) {
	return g.load(g.DB.WithContext(ctx), id)
}

// Create legt einen neuen Datensatz an, außer der natürliche Schlüssel existiert bereits.
func (g *Gateway[T, P]) Create(ctx context.Context, rec P) (P, error) {
	rec.SetPrimaryKey(0)
	var out P
	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = Insert[T, P](tx, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	g.Logger.Debug("record created", zap.Uint("id", out.PrimaryKey()))
	return out, nil
}

// Put ersetzt den Datensatz mit der ID komplett. Existiert er nicht, wird er mit
// genau dieser ID angelegt; created meldet diesen Fall.
func (g *Gateway[T, P]) Put(ctx context.Context, id uint, rec P) (out P, created bool, err error) {
	err = g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := g.load(ForUpdate(tx), id); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			rec.SetPrimaryKey(id)
			out, err = Insert[T, P](tx, rec)
			created = err == nil
			return err
		}
		rec.SetPrimaryKey(id)
		if err := g.replace(tx, id, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// Patch überträgt nur die im JSON-Dokument enthaltenen Felder auf den gespeicherten
// Datensatz. Fehlende Felder behalten ihren Wert, explizites null leert das Feld,
// unbekannte Felder sind ErrInvalidPayload.
func (g *Gateway[T, P]) Patch(ctx context.Context, id uint, partial []byte) (P, error) {
	var out P
	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := g.load(ForUpdate(tx), id)
		if err != nil {
			return err
		}
		if body := bytes.TrimSpace(partial); len(body) > 0 {
			dec := json.NewDecoder(bytes.NewReader(body))
			dec.DisallowUnknownFields()
			if err := dec.Decode(rec); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
		}
		rec.SetPrimaryKey(id)
		if err := g.replace(tx, id, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete entfernt den Datensatz mit der ID.
func (g *Gateway[T, P]) Delete(ctx context.Context, id uint) error {
	res := g.DB.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return fmt.Errorf("delete from %s: %w", g.Name(), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// replace speichert rec unter id, sofern kein anderer Datensatz denselben
// natürlichen Schlüssel trägt.
func (g *Gateway[T, P]) replace(tx *gorm.DB, id uint, rec P) error {
	other, err := FindByNaturalKey[T, P](tx, rec)
	if err != nil {
		return err
	}
	if other != nil && other.PrimaryKey() != id {
		return ErrConflict
	}
	if err := tx.Save(rec).Error; err != nil {
		return fmt.Errorf("update %s: %w", g.Name(), err)
	}
	return nil
}

func (g *Gateway[T, P]) load(tx *gorm.DB, id uint) (P, error) {
	rec := P(new(T))
	if err := tx.First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load %s %d: %w", g.Name(), id, err)
	}
	return rec, nil
}
