// internal/report/forecast.go
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/Ashtonex/nirvana/internal/store"
)

type ForecastPoint struct {
	Day   int
	Value float64
}

type Forecast struct {
	Trend           string  // "up", "down", "flat"
	Slope           float64 // daily revenue change
	ProjectedNext30 float64
	Confidence      float64 // R-squared, 0..1
	NextMonthPoints []ForecastPoint
}

// RevenueForecast fits a least-squares line through the last 30 days of daily
// revenue and projects the next 30. Confidence is the fit's R-squared.
func RevenueForecast(db *store.Database, now time.Time) Forecast {
	history := SalesHistory(db, now, 30)
	n := len(history)
	if n < 2 {
		return Forecast{Trend: "flat"}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, point := range history {
		x := float64(i)
		y := point.Revenue
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return Forecast{Trend: "flat"}
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	forecast := Forecast{
		Slope:           slope,
		NextMonthPoints: make([]ForecastPoint, 0, 30),
	}
	switch {
	case slope > 0:
		forecast.Trend = "up"
	case slope < 0:
		forecast.Trend = "down"
	default:
		forecast.Trend = "flat"
	}

	for i := 0; i < 30; i++ {
		x := fn + float64(i)
		// Revenue never projects below zero.
		value := math.Max(0, slope*x+intercept)
		forecast.ProjectedNext30 += value
		forecast.NextMonthPoints = append(forecast.NextMonthPoints, ForecastPoint{Day: i + 1, Value: value})
	}

	yMean := sumY / fn
	var ssTot, ssRes float64
	for i, point := range history {
		predicted := slope*float64(i) + intercept
		ssTot += math.Pow(point.Revenue-yMean, 2)
		ssRes += math.Pow(point.Revenue-predicted, 2)
	}
	if ssTot != 0 {
		forecast.Confidence = 1 - ssRes/ssTot
	}

	return forecast
}

// ItemInsights is the per-item health view: sell-through velocity, projected
// stockout, and the overhead the item bleeds while it sits.
type ItemInsights struct {
	DailyVelocity   float64
	DaysToZero      float64 // +Inf when nothing sells
	DaysInStock     int
	CumulativeBleed float64
	RealBreakEven   float64 // landed cost + absorbed overhead, tax inclusive
	TotalSold30d    int
	Status          string // "critical", "warning", "healthy"
}

// InventoryInsights computes ItemInsights for one item.
func InventoryInsights(db *store.Database, now time.Time, itemID string) (*ItemInsights, error) {
	item := itemByID(db, itemID)
	if item == nil {
		return nil, fmt.Errorf("item %s not in inventory", itemID)
	}

	velocity := dailyVelocity(db, itemID, now)

	daysToZero := math.Inf(1)
	if velocity > 0 {
		daysToZero = math.Floor(float64(item.Quantity) / velocity)
	}

	daysInStock := daysBetween(item.DateAdded, now)
	bleed := cumulativeBleed(db, daysInStock)

	insights := &ItemInsights{
		DailyVelocity:   velocity,
		DaysToZero:      daysToZero,
		DaysInStock:     daysInStock,
		CumulativeBleed: bleed,
		RealBreakEven:   (item.LandedCost + bleed) * 1.155,
		TotalSold30d:    int(velocity * velocityWindowDays),
		Status:          stockStatus(daysToZero),
	}
	return insights, nil
}

func stockStatus(daysToZero float64) string {
	switch {
	case daysToZero < 7:
		return "critical"
	case daysToZero < 14:
		return "warning"
	default:
		return "healthy"
	}
}
