package domain

import (
	"time"

	"github.com/google/uuid"
)

// FactRow is one immutable (product, marketplace, metric, month, value)
// observation in the fact store. Rows are only ever appended by importers
// and only ever read in aggregate.
type FactRow struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ProductID   uuid.UUID `gorm:"type:uuid;index:idx_fact_product_metric_month,priority:1"`
	Marketplace string    `gorm:"size:10;index"`
	Metric      string    `gorm:"size:100;index:idx_fact_product_metric_month,priority:2"`
	Month       time.Time `gorm:"type:date;index:idx_fact_product_metric_month,priority:3"`
	Value       float64   `gorm:"type:decimal(15,2)"`
	CreatedAt   time.Time
}

func (FactRow) TableName() string { return "financials" }

// ImportReject quarantines an input row the importer refused: unknown
// metric name, reserved marketplace code, unparseable value. Rejected rows
// never reach the fact store.
type ImportReject struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Source    string `gorm:"size:255"`
	Line      int
	Reason    string `gorm:"size:255"`
	Raw       string `gorm:"type:text"`
	CreatedAt time.Time
}
