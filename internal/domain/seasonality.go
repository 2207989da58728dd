package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// FactorSumTolerance bounds |Σ factors − 1| for a usable curve.
const FactorSumTolerance = 0.0001

// Seasonality is a named curve of twelve monthly proportions of annual unit
// volume. Factors are recomputed by the seasonality job from a full prior
// calendar year of product unit data; products reference curves by name.
type Seasonality struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"size:100;uniqueIndex"`

	Unit01 float64 `gorm:"column:unit_01;type:decimal(9,6);default:0"`
	Unit02 float64 `gorm:"column:unit_02;type:decimal(9,6);default:0"`
	Unit03 float64 `gorm:"column:unit_03;type:decimal(9,6);default:0"`
	Unit04 float64 `gorm:"column:unit_04;type:decimal(9,6);default:0"`
	Unit05 float64 `gorm:"column:unit_05;type:decimal(9,6);default:0"`
	Unit06 float64 `gorm:"column:unit_06;type:decimal(9,6);default:0"`
	Unit07 float64 `gorm:"column:unit_07;type:decimal(9,6);default:0"`
	Unit08 float64 `gorm:"column:unit_08;type:decimal(9,6);default:0"`
	Unit09 float64 `gorm:"column:unit_09;type:decimal(9,6);default:0"`
	Unit10 float64 `gorm:"column:unit_10;type:decimal(9,6);default:0"`
	Unit11 float64 `gorm:"column:unit_11;type:decimal(9,6);default:0"`
	Unit12 float64 `gorm:"column:unit_12;type:decimal(9,6);default:0"`

	Valid      bool `gorm:"default:false"`
	ComputedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s *Seasonality) Factors() [12]float64 {
	return [12]float64{
		s.Unit01, s.Unit02, s.Unit03, s.Unit04, s.Unit05, s.Unit06,
		s.Unit07, s.Unit08, s.Unit09, s.Unit10, s.Unit11, s.Unit12,
	}
}

func (s *Seasonality) SetFactors(f [12]float64) {
	s.Unit01, s.Unit02, s.Unit03, s.Unit04 = f[0], f[1], f[2], f[3]
	s.Unit05, s.Unit06, s.Unit07, s.Unit08 = f[4], f[5], f[6], f[7]
	s.Unit09, s.Unit10, s.Unit11, s.Unit12 = f[8], f[9], f[10], f[11]
}

// FactorFor returns the proportion for a calendar month.
func (s *Seasonality) FactorFor(m time.Month) float64 {
	return s.Factors()[int(m)-1]
}

// BaseSum sums the curve's factors over the calendar months of the given
// dates. Used to relate a 3-month actuals window to the annual curve.
func (s *Seasonality) BaseSum(months []time.Time) float64 {
	var sum float64
	for _, m := range months {
		sum += s.FactorFor(m.Month())
	}
	return sum
}

// ValidFactors reports whether the factors sum to 1 within tolerance.
func (s *Seasonality) ValidFactors() bool {
	var sum float64
	for _, f := range s.Factors() {
		sum += f
	}
	return math.Abs(sum-1.0) < FactorSumTolerance
}
