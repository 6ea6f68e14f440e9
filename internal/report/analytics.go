// internal/report/analytics.go
//
// Read-side intelligence over the stored document: best sellers, trends,
// reorder and dead-stock reports, leaderboard, forecast. Everything here is a
// pure function of a Database snapshot and a reference time, so reports are
// deterministic and trivially testable.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/Ashtonex/nirvana/internal/store"
)

const (
	velocityWindowDays  = 30
	deadStockAgeDays    = 60
	reorderThresholdDay = 14
	reorderTargetDays   = 30
)

type SalesMetric struct {
	ItemID        string
	ItemName      string
	TotalQuantity int
	TotalRevenue  float64
	GrossMargin   float64
}

// BestSellers aggregates sales over the trailing window and returns the top
// ten items by revenue. Margin uses the item's current landed cost, a close
// approximation of cost at time of sale.
func BestSellers(db *store.Database, now time.Time, days int) []SalesMetric {
	cutoff := now.AddDate(0, 0, -days)
	metrics := make(map[string]*SalesMetric)

	for _, sale := range db.Sales {
		if sale.Date.Before(cutoff) {
			continue
		}
		m, ok := metrics[sale.ItemID]
		if !ok {
			m = &SalesMetric{ItemID: sale.ItemID, ItemName: sale.ItemName}
			metrics[sale.ItemID] = m
		}
		m.TotalQuantity += sale.Quantity
		m.TotalRevenue += sale.TotalWithTax

		if item := itemByID(db, sale.ItemID); item != nil {
			m.GrossMargin += sale.TotalBeforeTax - item.LandedCost*float64(sale.Quantity)
		}
	}

	result := make([]SalesMetric, 0, len(metrics))
	for _, m := range metrics {
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalRevenue > result[j].TotalRevenue
	})
	if len(result) > 10 {
		result = result[:10]
	}
	return result
}

type Trend struct {
	CurrentPeriodRevenue  float64
	PreviousPeriodRevenue float64
	Growth                float64 // percent
}

// PerformanceTrends compares the trailing 30 days of revenue against the 30
// days before that.
func PerformanceTrends(db *store.Database, now time.Time) Trend {
	thirtyAgo := now.AddDate(0, 0, -30)
	sixtyAgo := now.AddDate(0, 0, -60)

	var trend Trend
	for _, sale := range db.Sales {
		switch {
		case !sale.Date.Before(thirtyAgo):
			trend.CurrentPeriodRevenue += sale.TotalWithTax
		case !sale.Date.Before(sixtyAgo):
			trend.PreviousPeriodRevenue += sale.TotalWithTax
		}
	}

	if trend.PreviousPeriodRevenue > 0 {
		trend.Growth = (trend.CurrentPeriodRevenue - trend.PreviousPeriodRevenue) / trend.PreviousPeriodRevenue * 100
	} else {
		trend.Growth = 100
	}
	return trend
}

type ReorderSuggestion struct {
	ItemID           string
	ItemName         string
	CurrentStock     int
	DailyVelocity    float64
	DaysToZero       float64
	SuggestedReorder int // to reach 30 days of coverage
}

// ReorderSuggestions flags items projected to stock out within two weeks,
// most critical first.
func ReorderSuggestions(db *store.Database, now time.Time) []ReorderSuggestion {
	var suggestions []ReorderSuggestion

	for _, item := range db.Inventory {
		velocity := dailyVelocity(db, item.ID, now)
		if velocity <= 0 {
			continue
		}

		daysToZero := float64(item.Quantity) / velocity
		if daysToZero >= reorderThresholdDay {
			continue
		}

		needed := int(math.Ceil(velocity*reorderTargetDays - float64(item.Quantity)))
		if needed <= 0 {
			continue
		}

		suggestions = append(suggestions, ReorderSuggestion{
			ItemID:           item.ID,
			ItemName:         item.Name,
			CurrentStock:     item.Quantity,
			DailyVelocity:    velocity,
			DaysToZero:       daysToZero,
			SuggestedReorder: needed,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].DaysToZero < suggestions[j].DaysToZero
	})
	return suggestions
}

type ZombieStockItem struct {
	ItemID          string
	ItemName        string
	Quantity        int
	DaysInStock     int
	DeadCapital     float64 // landed cost tied up
	CumulativeBleed float64 // overhead absorbed per unit while sitting
	TotalBleed      float64
}

// ZombieStock reports inventory unsold for over 60 days, ranked by the total
// overhead it has bled, for liquidation decisions.
func ZombieStock(db *store.Database, now time.Time) []ZombieStockItem {
	var zombies []ZombieStockItem
	cutoff := now.AddDate(0, 0, -deadStockAgeDays)

	for _, item := range db.Inventory {
		days := daysBetween(item.DateAdded, now)
		if days <= deadStockAgeDays || soldSince(db, item.ID, cutoff) {
			continue
		}

		bleed := cumulativeBleed(db, days)
		zombies = append(zombies, ZombieStockItem{
			ItemID:          item.ID,
			ItemName:        item.Name,
			Quantity:        item.Quantity,
			DaysInStock:     days,
			DeadCapital:     item.LandedCost * float64(item.Quantity),
			CumulativeBleed: bleed,
			TotalBleed:      bleed * float64(item.Quantity),
		})
	}

	sort.Slice(zombies, func(i, j int) bool {
		return zombies[i].TotalBleed > zombies[j].TotalBleed
	})
	return zombies
}

type DailySales struct {
	Date    time.Time
	Revenue float64
	Profit  float64
}

// SalesHistory returns per-day revenue and approximate profit for the last
// `days` days, oldest first.
func SalesHistory(db *store.Database, now time.Time, days int) []DailySales {
	history := make([]DailySales, 0, days)

	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		y, m, d := day.Date()
		dayStart := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)

		point := DailySales{Date: dayStart}
		for _, sale := range db.Sales {
			if sale.Date.Before(dayStart) || !sale.Date.Before(dayEnd) {
				continue
			}
			point.Revenue += sale.TotalWithTax
			if item := itemByID(db, sale.ItemID); item != nil {
				point.Profit -= item.LandedCost * float64(sale.Quantity)
			}
		}
		point.Profit += point.Revenue

		history = append(history, point)
	}

	return history
}

type StaffMetric struct {
	ID             string
	Name           string
	Role           string
	ShopID         string
	Revenue        float64
	SalesCount     int
	QuoteCount     int
	ConversionRate float64 // percent of quotes converted
	Points         int
}

// StaffLeaderboard scores employees: 10 points per sale, 2 per quotation.
func StaffLeaderboard(db *store.Database) []StaffMetric {
	metrics := make([]StaffMetric, 0, len(db.Employees))

	for _, emp := range db.Employees {
		m := StaffMetric{ID: emp.ID, Name: emp.Name, Role: emp.Role, ShopID: emp.ShopID}

		for _, sale := range db.Sales {
			if sale.EmployeeID == emp.ID {
				m.SalesCount++
				m.Revenue += sale.TotalWithTax
			}
		}

		converted := 0
		for _, quote := range db.Quotations {
			if quote.EmployeeID != emp.ID {
				continue
			}
			m.QuoteCount++
			if quote.Status == store.QuoteStatusConverted {
				converted++
			}
		}
		if m.QuoteCount > 0 {
			m.ConversionRate = float64(converted) / float64(m.QuoteCount) * 100
		}

		m.Points = m.SalesCount*10 + m.QuoteCount*2
		metrics = append(metrics, m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].Points > metrics[j].Points
	})
	return metrics
}

// helpers

func itemByID(db *store.Database, itemID string) *store.InventoryItem {
	for i := range db.Inventory {
		if db.Inventory[i].ID == itemID {
			return &db.Inventory[i]
		}
	}
	return nil
}

func dailyVelocity(db *store.Database, itemID string, now time.Time) float64 {
	cutoff := now.AddDate(0, 0, -velocityWindowDays)
	sold := 0
	for _, sale := range db.Sales {
		if sale.ItemID == itemID && !sale.Date.Before(cutoff) {
			sold += sale.Quantity
		}
	}
	return float64(sold) / velocityWindowDays
}

func soldSince(db *store.Database, itemID string, cutoff time.Time) bool {
	for _, sale := range db.Sales {
		if sale.ItemID == itemID && !sale.Date.Before(cutoff) {
			return true
		}
	}
	return false
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// cumulativeBleed is the global overhead a single unit has absorbed while in
// stock: monthly overhead spread daily over the whole current inventory.
func cumulativeBleed(db *store.Database, daysInStock int) float64 {
	totalUnits := 0
	for _, item := range db.Inventory {
		totalUnits += item.Quantity
	}
	if totalUnits == 0 {
		return 0
	}
	dailyPerPiece := db.GlobalExpenses.Total() / 30 / float64(totalUnits)
	return dailyPerPiece * float64(daysInStock)
}
