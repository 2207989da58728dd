package domain

import (
	"math"
	"testing"
)

func TestEBITDAPct(t *testing.T) {
	cases := []struct {
		name     string
		cm3, rev float64
		want     float64
	}{
		{"normal margin", 150, 600, 25},
		{"negative margin", -50, 200, -25},
		{"zero revenue", 100, 0, 0},
		{"negative revenue", 100, -10, 0},
		{"zero everything", 0, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := EBITDAPct(c.cm3, c.rev); math.Abs(got-c.want) > 1e-9 {
				t.Errorf("EBITDAPct(%v, %v) = %v, want %v", c.cm3, c.rev, got, c.want)
			}
		})
	}
}

func TestOverstock(t *testing.T) {
	cases := []struct {
		name      string
		stock     StockMetrics
		forecast  float64
		wantUnits float64
		wantValue float64
	}{
		{"surplus valued at average cost", StockMetrics{Units: 500, Value: 2500}, 120, 380, 1900},
		{"demand covers stock", StockMetrics{Units: 100, Value: 700}, 150, 0, 0},
		{"exact cover", StockMetrics{Units: 100, Value: 700}, 100, 0, 0},
		{"no stock value", StockMetrics{Units: 80, Value: 0}, 10, 70, 0},
		{"no stock at all", StockMetrics{}, 0, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Overstock(c.stock, c.forecast)
			if math.Abs(got.Units-c.wantUnits) > 1e-9 || math.Abs(got.Value-c.wantValue) > 1e-9 {
				t.Errorf("Overstock(%+v, %v) = %+v, want units %v value %v",
					c.stock, c.forecast, got, c.wantUnits, c.wantValue)
			}
		})
	}
}
