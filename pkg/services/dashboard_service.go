package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gondola-insights-api/pkg/models"
)

// Alert windows and thresholds for the dashboard views.
const (
	ruptureWindowDays  = 7  // sales window for the daily average
	ruptureCoverDays   = 3  // alert when stock covers fewer days than this
	excessWindowDays   = 30 // sales window for the monthly volume
	excessCoverMonths  = 2  // alert when stock exceeds this many months of sales
	validityWindowDays = 30 // look-ahead for expiring batches
	defaultHistoryDays = 30
)

// DashboardService computes the store dashboard views over a
// submitted snapshot. Nothing is stored between calls; every method
// is a pure function of the payload plus the reference instant.
type DashboardService struct{}

// NewDashboardService creates a new DashboardService.
func NewDashboardService() *DashboardService {
	return &DashboardService{}
}

// GetDashboardMetrics returns the headline numbers for the dashboard:
// catalog and sales totals plus the open alert count per family.
func (s *DashboardService) GetDashboardMetrics(products []models.Product, stock []models.StockSnapshot, sales []models.DailySale, now time.Time) models.DashboardMetrics {
	totalRevenue := 0.0
	for _, sale := range sales {
		totalRevenue += sale.TotalAmount
	}

	return models.DashboardMetrics{
		TotalProducts:  len(products),
		TotalSales:     len(sales),
		TotalRevenue:   totalRevenue,
		RuptureAlerts:  len(s.GetRuptureAlerts(products, stock, sales, now)),
		ExcessAlerts:   len(s.GetExcessStockAlerts(products, stock, sales, now)),
		ValidityAlerts: len(s.GetValidityAlerts(products, stock, now)),
	}
}

// GetRuptureAlerts flags products whose stock covers fewer than three
// days of recent sales. Products without any snapshot are skipped;
// there is nothing to run out of that we know about.
func (s *DashboardService) GetRuptureAlerts(products []models.Product, stock []models.StockSnapshot, sales []models.DailySale, now time.Time) []models.StockAlert {
	stockMap := latestStockByProduct(stock)
	soldMap := soldByProductSince(sales, now.AddDate(0, 0, -ruptureWindowDays))

	alerts := make([]models.StockAlert, 0)
	for _, p := range products {
		quantity, ok := stockMap[p.ID]
		if !ok {
			continue
		}

		averageDailySales := float64(soldMap[p.ID]) / float64(ruptureWindowDays)
		if averageDailySales <= 0 || float64(quantity) >= averageDailySales*float64(ruptureCoverDays) {
			continue
		}

		daysOfStock := float64(quantity) / averageDailySales
		severity := models.SeverityLow
		if daysOfStock < 1 {
			severity = models.SeverityHigh
		} else if daysOfStock < 2 {
			severity = models.SeverityMedium
		}

		alerts = append(alerts, models.StockAlert{
			ProductID:         p.ID,
			ProductName:       p.Name,
			Category:          p.Category,
			CurrentStock:      quantity,
			AverageDailySales: averageDailySales,
			Reason:            fmt.Sprintf("Estoque para apenas %.1f dias", daysOfStock),
			Severity:          severity,
		})
	}

	sortAlertsBySeverity(alerts)
	return alerts
}

// GetExcessStockAlerts flags products holding more than two months of
// stock at the recent sales pace.
func (s *DashboardService) GetExcessStockAlerts(products []models.Product, stock []models.StockSnapshot, sales []models.DailySale, now time.Time) []models.StockAlert {
	stockMap := latestStockByProduct(stock)
	soldMap := soldByProductSince(sales, now.AddDate(0, 0, -excessWindowDays))

	alerts := make([]models.StockAlert, 0)
	for _, p := range products {
		quantity, ok := stockMap[p.ID]
		if !ok {
			continue
		}

		monthlySales := soldMap[p.ID]
		if monthlySales <= 0 || quantity <= monthlySales*excessCoverMonths {
			continue
		}

		monthsOfStock := float64(quantity) / float64(monthlySales)
		severity := models.SeverityLow
		if monthsOfStock > 6 {
			severity = models.SeverityHigh
		} else if monthsOfStock > 4 {
			severity = models.SeverityMedium
		}

		alerts = append(alerts, models.StockAlert{
			ProductID:         p.ID,
			ProductName:       p.Name,
			Category:          p.Category,
			CurrentStock:      quantity,
			AverageDailySales: float64(monthlySales) / float64(excessWindowDays),
			Reason:            fmt.Sprintf("Estoque para %.1f meses", monthsOfStock),
			Severity:          severity,
		})
	}

	sortAlertsBySeverity(alerts)
	return alerts
}

// GetValidityAlerts lists products whose next expiry falls within the
// look-ahead window, including batches already expired. Malformed
// dates are skipped, matching the scanner's lenient policy.
func (s *DashboardService) GetValidityAlerts(products []models.Product, stock []models.StockSnapshot, now time.Time) []models.StockAlert {
	stockMap := latestStockByProduct(stock)

	alerts := make([]models.StockAlert, 0)
	for _, p := range products {
		if p.NextExpiryDate == "" {
			continue
		}
		expiry, err := time.Parse(dateLayout, p.NextExpiryDate)
		if err != nil {
			continue
		}
		if expiry.After(now.AddDate(0, 0, validityWindowDays)) {
			continue
		}

		days := int(math.Floor(expiry.Sub(now).Hours() / 24))
		severity := models.SeverityLow
		if days < 7 {
			severity = models.SeverityHigh
		} else if days < 15 {
			severity = models.SeverityMedium
		}

		d := days
		alerts = append(alerts, models.StockAlert{
			ProductID:           p.ID,
			ProductName:         p.Name,
			Category:            p.Category,
			CurrentStock:        stockMap[p.ID],
			DaysUntilExpiration: &d,
			Reason:              fmt.Sprintf("Vence em %d dias", days),
			Severity:            severity,
		})
	}

	sortAlertsBySeverity(alerts)
	return alerts
}

// GetSalesHistory aggregates sales per date over the given window,
// oldest first. A non-positive window falls back to the default.
func (s *DashboardService) GetSalesHistory(sales []models.DailySale, days int, now time.Time) []models.SalesHistoryPoint {
	if days <= 0 {
		days = defaultHistoryDays
	}
	since := now.AddDate(0, 0, -days)

	totals := make(map[string]*models.SalesHistoryPoint)
	order := make([]string, 0)
	for _, sale := range sales {
		date, err := time.Parse(dateLayout, sale.Date)
		if err != nil || date.Before(since) {
			continue
		}
		point, exists := totals[sale.Date]
		if !exists {
			point = &models.SalesHistoryPoint{Date: sale.Date}
			totals[sale.Date] = point
			order = append(order, sale.Date)
		}
		point.Total += sale.TotalAmount
		point.Count++
	}

	sort.Strings(order)
	history := make([]models.SalesHistoryPoint, 0, len(order))
	for _, date := range order {
		history = append(history, *totals[date])
	}
	return history
}

// latestStockByProduct keeps the last snapshot per product in input
// order, the same convention the risk scanner uses.
func latestStockByProduct(stock []models.StockSnapshot) map[string]int {
	stockMap := make(map[string]int)
	for _, snap := range stock {
		stockMap[snap.ProductID] = snap.Quantity
	}
	return stockMap
}

// soldByProductSince sums sale quantities per product for sales dated
// on or after the cutoff. Malformed dates are skipped.
func soldByProductSince(sales []models.DailySale, since time.Time) map[string]int {
	sold := make(map[string]int)
	for _, sale := range sales {
		date, err := time.Parse(dateLayout, sale.Date)
		if err != nil || date.Before(since) {
			continue
		}
		sold[sale.ProductID] += sale.Quantity
	}
	return sold
}

var severityRank = map[string]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityMedium:   2,
	models.SeverityLow:      3,
}

func sortAlertsBySeverity(alerts []models.StockAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank[alerts[i].Severity] < severityRank[alerts[j].Severity]
	})
}
