package models

// DashboardMetrics summarizes the submitted snapshot for the lojista
// dashboard: catalog size, sales volume and how many alerts of each
// family are open right now.
type DashboardMetrics struct {
	TotalProducts  int     `json:"totalProducts"`
	TotalSales     int     `json:"totalSales"`
	TotalRevenue   float64 `json:"totalRevenue"`
	RuptureAlerts  int     `json:"ruptureAlerts"`
	ExcessAlerts   int     `json:"excessAlerts"`
	ValidityAlerts int     `json:"validityAlerts"`
}

// StockAlert is one dashboard alert (rupture, excess stock or
// validity). DaysUntilExpiration is only set for validity alerts;
// AverageDailySales only for the sales-rate based ones.
type StockAlert struct {
	ProductID           string  `json:"productId"`
	ProductName         string  `json:"productName"`
	Category            string  `json:"category,omitempty"`
	CurrentStock        int     `json:"currentStock"`
	AverageDailySales   float64 `json:"averageDailySales,omitempty"`
	DaysUntilExpiration *int    `json:"daysUntilExpiration,omitempty"`
	Reason              string  `json:"reason"`
	Severity            string  `json:"severity"`
}

// SalesHistoryPoint is one day of aggregated sales.
type SalesHistoryPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}
