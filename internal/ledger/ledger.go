// Package ledger persists customer meter readings.
//
// Records are exposed with a display id: a dense 1..N rank in ascending
// order of the stored row id. Stored ids are never rewritten, so a
// deletion shifts the display ids of the records after it while the
// rows themselves stay put.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/billing"
	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/models"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS readings (
	id INTEGER PRIMARY KEY,
	name TEXT,
	unit_price REAL,
	start_index REAL,
	end_index REAL,
	correction REAL
)`

type Outcome int

const (
	Inserted Outcome = iota + 1
	Updated
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Assignment maps a display id to the stored row it currently names.
type Assignment struct {
	ID  int
	Key int64
}

type Ledger struct {
	db  *gorm.DB
	log *logrus.Logger
}

func New(db *gorm.DB, log *logrus.Logger) *Ledger {
	return &Ledger{
		db:  db,
		log: log,
	}
}

func (l *Ledger) Logger() *logrus.Logger {
	return l.log
}

// EnsureSchema creates the readings table if it does not exist yet.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if err := l.db.WithContext(ctx).Exec(createTableSQL).Error; err != nil {
		return persistErr("ensure schema", err)
	}
	return nil
}

// Find returns the record stored under name, or nil when there is none.
func (l *Ledger) Find(ctx context.Context, name string) (*models.CustomerRecord, error) {
	db := l.db.WithContext(ctx)

	var row models.ReadingRow
	res := db.Where("name = ?", name).Order("id ASC").Limit(1).Find(&row)
	if res.Error != nil {
		return nil, persistErr("find", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var before int64
	if err := db.Model(&models.ReadingRow{}).Where("id < ?", row.ID).Count(&before).Error; err != nil {
		return nil, persistErr("find", err)
	}

	rec, err := toRecord(int(before)+1, row)
	if err != nil {
		return nil, persistErr("find", err)
	}
	return &rec, nil
}

// Upsert saves a reading keyed by customer name. When the name is
// already taken, confirm decides between overwriting and cancelling;
// the question is asked before any write transaction is opened.
func (l *Ledger) Upsert(ctx context.Context, r billing.Reading, confirm Confirmer) (Outcome, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if confirm == nil {
		confirm = NeverOverwrite
	}

	existing, err := l.Find(ctx, r.Name)
	if err != nil {
		return 0, err
	}

	overwrite := false
	if existing != nil {
		ok, err := confirm.ConfirmOverwrite(ctx, *existing)
		if err != nil {
			return 0, err
		}
		if !ok {
			l.log.WithField("name", r.Name).Info("overwrite declined")
			return Cancelled, nil
		}
		overwrite = true
	}

	var outcome Outcome
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		outcome, err = save(tx, r, overwrite)
		return err
	})
	if err != nil {
		return 0, persistErr("upsert", err)
	}

	l.log.WithFields(logrus.Fields{
		"name":    r.Name,
		"outcome": outcome.String(),
	}).Info("saved reading")

	if outcome == Cancelled {
		return outcome, nil
	}
	if _, err := l.Renumber(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// ListAll returns every record in ascending id order.
func (l *Ledger) ListAll(ctx context.Context) ([]models.CustomerRecord, error) {
	var rows []models.ReadingRow
	if err := l.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, persistErr("list", err)
	}

	records := make([]models.CustomerRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := toRecord(i+1, row)
		if err != nil {
			return nil, persistErr("list", fmt.Errorf("record %d: %w", i+1, err))
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes the records with the given display ids and returns how
// many were removed. Ids that name no record are ignored.
func (l *Ledger) Delete(ctx context.Context, ids []int) (int, error) {
	deleted := 0
	if len(ids) > 0 {
		err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			assignments, err := assign(tx)
			if err != nil {
				return err
			}

			var keys []int64
			seen := make(map[int]bool, len(ids))
			for _, id := range ids {
				if seen[id] || id < 1 || id > len(assignments) {
					continue
				}
				seen[id] = true
				keys = append(keys, assignments[id-1].Key)
			}
			if len(keys) == 0 {
				return nil
			}

			res := tx.Where("id IN ?", keys).Delete(&models.ReadingRow{})
			if res.Error != nil {
				return res.Error
			}
			deleted = int(res.RowsAffected)
			return nil
		})
		if err != nil {
			return 0, persistErr("delete", err)
		}
	}

	l.log.WithFields(logrus.Fields{
		"requested": len(ids),
		"deleted":   deleted,
	}).Info("deleted customers")

	if _, err := l.Renumber(ctx); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// Reset removes every record.
func (l *Ledger) Reset(ctx context.Context) (int, error) {
	res := l.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ReadingRow{})
	if res.Error != nil {
		return 0, persistErr("reset", res.Error)
	}
	return int(res.RowsAffected), nil
}

// Restore saves every reading in one transaction, overwriting customers
// with the same name. With replace set the table is emptied first. Any
// failure rolls the whole restore back.
func (l *Ledger) Restore(ctx context.Context, readings []billing.Reading, replace bool) (int, error) {
	for i, r := range readings {
		if err := r.Validate(); err != nil {
			return 0, fmt.Errorf("record %d (%s): %w", i+1, r.Name, err)
		}
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replace {
			res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ReadingRow{})
			if res.Error != nil {
				return res.Error
			}
			l.log.WithField("removed", res.RowsAffected).Warn("clearing ledger before restore")
		}
		for i, r := range readings {
			if _, err := save(tx, r, true); err != nil {
				return fmt.Errorf("record %d (%s): %w", i+1, r.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, persistErr("restore", err)
	}

	l.log.WithFields(logrus.Fields{
		"records": len(readings),
		"replace": replace,
	}).Info("restored customers")

	if _, err := l.Renumber(ctx); err != nil {
		return len(readings), err
	}
	return len(readings), nil
}

// Renumber recomputes the dense display ids 1..N over the surviving
// rows, ordered by their stored id. It reads inside one transaction so
// the assignment reflects a single consistent state.
func (l *Ledger) Renumber(ctx context.Context) ([]Assignment, error) {
	var assignments []Assignment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		assignments, err = assign(tx)
		return err
	})
	if err != nil {
		return nil, persistErr("renumber", err)
	}

	l.log.WithField("records", len(assignments)).Debug("renumbered customers")
	return assignments, nil
}

func assign(tx *gorm.DB) ([]Assignment, error) {
	var keys []int64
	if err := tx.Model(&models.ReadingRow{}).Order("id ASC").Pluck("id", &keys).Error; err != nil {
		return nil, err
	}

	assignments := make([]Assignment, len(keys))
	for i, key := range keys {
		assignments[i] = Assignment{ID: i + 1, Key: key}
	}
	return assignments, nil
}

// save inserts r, or overwrites every row with its name when overwrite
// is set. Without overwrite an existing name is left alone.
func save(tx *gorm.DB, r billing.Reading, overwrite bool) (Outcome, error) {
	var count int64
	if err := tx.Model(&models.ReadingRow{}).Where("name = ?", r.Name).Count(&count).Error; err != nil {
		return 0, err
	}

	if count == 0 {
		row := models.ReadingRow{
			Name:       r.Name,
			UnitPrice:  r.UnitPrice.InexactFloat64(),
			StartIndex: r.StartIndex.InexactFloat64(),
			EndIndex:   r.EndIndex.InexactFloat64(),
			Correction: r.Correction.InexactFloat64(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, err
		}
		return Inserted, nil
	}

	if !overwrite {
		return Cancelled, nil
	}

	err := tx.Model(&models.ReadingRow{}).
		Where("name = ?", r.Name).
		Updates(map[string]interface{}{
			"unit_price":  r.UnitPrice.InexactFloat64(),
			"start_index": r.StartIndex.InexactFloat64(),
			"end_index":   r.EndIndex.InexactFloat64(),
			"correction":  r.Correction.InexactFloat64(),
		}).Error
	if err != nil {
		return 0, err
	}
	return Updated, nil
}

func toRecord(rank int, row models.ReadingRow) (models.CustomerRecord, error) {
	r, err := billing.ReadingFromFloats(row.Name, row.UnitPrice, row.StartIndex, row.EndIndex, row.Correction)
	if err != nil {
		return models.CustomerRecord{}, err
	}
	return models.CustomerRecord{
		ID:         rank,
		Key:        row.ID,
		Name:       r.Name,
		UnitPrice:  r.UnitPrice,
		StartIndex: r.StartIndex,
		EndIndex:   r.EndIndex,
		Correction: r.Correction,
	}, nil
}

// Total is the billed amount for a stored record.
func Total(rec models.CustomerRecord) decimal.Decimal {
	return billing.ComputeTotal(rec.UnitPrice, rec.StartIndex, rec.EndIndex, rec.Correction)
}

// IsPersistence reports whether err came from the backing store.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
