package services

import (
	"fmt"
	"log"
	"time"

	"gondola-insights-api/pkg/models"
)

const dateLayout = "2006-01-02"

// Thresholds for the scanner rules.
const (
	lowStockThreshold    = 10  // units below which a snapshot flags rupture
	expiryHighDays       = 15  // validade: high up to this many days out
	expiryMediumDays     = 30  // validade: medium up to this many days out
	minSaleDatesForTrend = 4   // distinct sale dates required for prediction
	minStockObservations = 3   // distinct snapshot timestamps for slow movers
	slowMoverMinStock    = 5   // slow mover needs more than this in stock
	slowMoverSalesRatio  = 0.1 // sold/stock below this is a slow mover
)

// RiskService derives inventory risk records from a point-in-time
// snapshot of products, stock and sales. It holds no state; every
// scan is a pure function of its inputs plus the reference date.
type RiskService struct{}

// NewRiskService creates a new RiskService.
func NewRiskService() *RiskService {
	return &RiskService{}
}

// Scan runs the four detection passes in a fixed order: low stock,
// expiry, sell-out prediction, slow movers. Each pass walks its
// collection in input order, so the output order is stable for a
// given input. Malformed expiry dates never abort the scan; the
// affected rule is skipped for that product.
func (s *RiskService) Scan(products []models.Product, stock []models.StockSnapshot, sales []models.DailySale, today time.Time) []models.RiskRecord {
	risks := make([]models.RiskRecord, 0)

	// Current stock per product: the last snapshot in input order
	// wins, mirroring how the ERP exports are produced (newest file
	// last). Snapshots are deliberately not re-sorted by timestamp.
	stockMap := make(map[string]int)
	for _, snap := range stock {
		stockMap[snap.ProductID] = snap.Quantity
	}

	// Pass 1: low stock (ruptura). Every snapshot under the threshold
	// flags independently, including stale duplicates for the same
	// product. Deduplication is pending a product decision.
	for _, snap := range stock {
		if snap.Quantity < lowStockThreshold {
			risks = append(risks, models.RiskRecord{
				Type:      models.RiskTypeStockout,
				ProductID: snap.ProductID,
				Message:   fmt.Sprintf("Baixo estoque: %s (%d un.)", snap.ProductID, snap.Quantity),
				Severity:  models.SeverityHigh,
			})
		}
	}

	// Pass 2: expiry (validade). Only meaningful with stock on hand.
	for _, p := range products {
		if p.NextExpiryDate == "" {
			continue
		}
		expiry, err := time.Parse(dateLayout, p.NextExpiryDate)
		if err != nil {
			continue // lenient parsing, skip the rule for this product
		}
		daysUntil := daysBetween(today, expiry)
		stockQty := stockMap[p.ID]
		if stockQty <= 0 {
			continue
		}

		switch {
		case daysUntil <= 0:
			d := daysUntil
			risks = append(risks, models.RiskRecord{
				Type:      models.RiskTypeValidity,
				ProductID: p.ID,
				Message:   fmt.Sprintf("VENCIDO: %s (%d un.)", p.Name, stockQty),
				Severity:  models.SeverityCritical,
				Days:      &d,
			})
		case daysUntil <= expiryMediumDays:
			severity := models.SeverityMedium
			if daysUntil <= expiryHighDays {
				severity = models.SeverityHigh
			}
			d, cost, price := daysUntil, p.Cost, p.Price
			risks = append(risks, models.RiskRecord{
				Type:      models.RiskTypeValidity,
				ProductID: p.ID,
				Message:   fmt.Sprintf("Vence em %d dias: %s", daysUntil, p.Name),
				Severity:  severity,
				Days:      &d,
				Stock:     stockQty,
				Cost:      &cost,
				Price:     &price,
			})
		}
	}

	salesByProduct := make(map[string][]models.DailySale)
	for _, sale := range sales {
		salesByProduct[sale.ProductID] = append(salesByProduct[sale.ProductID], sale)
	}

	// Pass 3: sell-out prediction. Needs enough sale history and an
	// expiry date to compare against; without either the product is
	// skipped.
	for _, p := range products {
		productSales := salesByProduct[p.ID]
		uniqueDates := make(map[string]struct{})
		totalSold := 0
		for _, sale := range productSales {
			uniqueDates[sale.Date] = struct{}{}
			totalSold += sale.Quantity
		}
		if len(uniqueDates) < minSaleDatesForTrend {
			continue
		}

		avgDailySales := float64(totalSold) / float64(len(uniqueDates))
		stockQty := stockMap[p.ID]
		if avgDailySales <= 0 || stockQty <= 0 {
			continue
		}
		daysToSellOut := float64(stockQty) / avgDailySales

		if p.NextExpiryDate == "" {
			continue
		}
		expiry, err := time.Parse(dateLayout, p.NextExpiryDate)
		if err != nil {
			continue
		}
		daysUntilExpiry := daysBetween(today, expiry)

		if daysToSellOut > float64(daysUntilExpiry) {
			d, cost, price := daysUntilExpiry, p.Cost, p.Price
			risks = append(risks, models.RiskRecord{
				Type:            models.RiskTypePrediction,
				ProductID:       p.ID,
				Message:         fmt.Sprintf("Risco de Sobra: Venda estimada em %d dias, mas vence em %d dias.", int(daysToSellOut), daysUntilExpiry),
				Severity:        models.SeverityHigh,
				DaysToSellOut:   daysToSellOut,
				DaysUntilExpiry: &d,
				AvgDailySales:   avgDailySales,
				Stock:           stockQty,
				Cost:            &cost,
				Price:           &price,
			})
		}
	}

	// Pass 4: slow movers (baixo giro). Needs a minimum observation
	// history so a freshly listed product is not flagged.
	for _, p := range products {
		stockDates := make(map[string]struct{})
		for _, snap := range stock {
			if snap.ProductID == p.ID {
				stockDates[snap.Timestamp] = struct{}{}
			}
		}
		if len(stockDates) < minStockObservations {
			continue
		}

		currentStock := stockMap[p.ID]
		if currentStock <= slowMoverMinStock {
			continue
		}

		totalSold := 0
		for _, sale := range salesByProduct[p.ID] {
			totalSold += sale.Quantity
		}

		if totalSold == 0 || float64(totalSold)/float64(currentStock) < slowMoverSalesRatio {
			t, cost, price := totalSold, p.Cost, p.Price
			risks = append(risks, models.RiskRecord{
				Type:      models.RiskTypeSlowSales,
				ProductID: p.ID,
				Message:   fmt.Sprintf("Baixo Giro: %d vendas em %d períodos. Estoque: %d.", totalSold, len(stockDates), currentStock),
				Severity:  models.SeverityMedium,
				TotalSold: &t,
				Stock:     currentStock,
				Cost:      &cost,
				Price:     &price,
			})
		}
	}

	log.Printf("[análise] %d produtos, %d snapshots, %d vendas => %d riscos detectados", len(products), len(stock), len(sales), len(risks))

	return risks
}

// daysBetween returns the whole-day distance from the calendar date
// of `from` to the calendar date of `to`.
func daysBetween(from, to time.Time) int {
	fromDate := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDate := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDate.Sub(fromDate).Hours() / 24)
}
