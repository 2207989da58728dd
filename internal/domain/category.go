package domain

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;uniqueIndex"`
	Level1    string    `gorm:"size:255"`
	Level2    string    `gorm:"size:255"`
	CreatedAt time.Time
}
