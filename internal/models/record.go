package models

import "github.com/shopspring/decimal"

// ReadingRow is the persisted shape of a customer's meter reading.
// ID is the stored row identity and is never rewritten.
type ReadingRow struct {
	ID         int64   `gorm:"column:id;primaryKey" json:"id" bson:"id"`
	Name       string  `gorm:"column:name" json:"name" bson:"name"`
	UnitPrice  float64 `gorm:"column:unit_price" json:"unit_price" bson:"unit_price"`
	StartIndex float64 `gorm:"column:start_index" json:"start_index" bson:"start_index"`
	EndIndex   float64 `gorm:"column:end_index" json:"end_index" bson:"end_index"`
	Correction float64 `gorm:"column:correction" json:"correction" bson:"correction"`
}

func (ReadingRow) TableName() string {
	return "readings"
}

// CustomerRecord is a reading as seen by callers of the ledger.
// ID is the display rank (1..N), Key the stored identity behind it.
type CustomerRecord struct {
	ID         int
	Key        int64
	Name       string
	UnitPrice  decimal.Decimal
	StartIndex decimal.Decimal
	EndIndex   decimal.Decimal
	Correction decimal.Decimal
}

// IndexDelta is the consumption between the two readings.
func (r CustomerRecord) IndexDelta() decimal.Decimal {
	return r.EndIndex.Sub(r.StartIndex)
}

// ReadingCSV is one line of an import or export file.
type ReadingCSV struct {
	No          int    `csv:"no,omitempty"`
	Name        string `csv:"name"`
	UnitPrice   string `csv:"unit_price"`
	StartIndex  string `csv:"start_index"`
	EndIndex    string `csv:"end_index"`
	Correction  string `csv:"correction"`
	IndexDelta  string `csv:"index_delta,omitempty"`
	TotalAmount string `csv:"total_amount,omitempty"`
}
