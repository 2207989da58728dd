package domain

import (
	"time"

	"github.com/google/uuid"
)

type Location struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;uniqueIndex"`
	CreatedAt time.Time
}

// StockRow is a monthly inventory snapshot per product and location,
// independent of the fact store. One row per (product, location, month);
// re-imports for the same key overwrite.
type StockRow struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	ProductID  uuid.UUID `gorm:"type:uuid;index:idx_stock_key,unique,priority:1"`
	LocationID uuid.UUID `gorm:"type:uuid;index:idx_stock_key,unique,priority:2"`
	Month      time.Time `gorm:"type:date;index:idx_stock_key,unique,priority:3"`
	Quantity   float64   `gorm:"type:decimal(15,2);default:0"`
	COGS       float64   `gorm:"type:decimal(15,2);default:0"`
	Value      float64   `gorm:"type:decimal(15,2);default:0"`
	CreatedAt  time.Time
}

func (StockRow) TableName() string { return "stock" }
