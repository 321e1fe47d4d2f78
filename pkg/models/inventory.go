package models

// Product represents a catalog item as supplied by the ERP export.
// NextExpiryDate is a calendar date (YYYY-MM-DD) or empty when the
// item has no expiry tracking.
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Cost           float64 `json:"cost"`
	Category       string  `json:"category"`
	NextExpiryDate string  `json:"next_expiry_date,omitempty"`
}

// StockSnapshot is a point-in-time stock observation for a product.
// Multiple snapshots per product form an implicit series.
type StockSnapshot struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Timestamp string `json:"timestamp"`
}

// DailySale aggregates one product's sales for one date.
type DailySale struct {
	ProductID   string  `json:"productId"`
	Date        string  `json:"date"`
	Quantity    int     `json:"quantity"`
	TotalAmount float64 `json:"totalAmount"`
}

// AnalyzeRequest is the full snapshot submitted for analysis.
// Empty collections are valid input.
type AnalyzeRequest struct {
	Products []Product       `json:"products"`
	Stock    []StockSnapshot `json:"stock"`
	Sales    []DailySale     `json:"sales"`
}

// Risk kinds emitted by the scanner.
const (
	RiskTypeStockout   = "stockout"
	RiskTypeValidity   = "validade"
	RiskTypePrediction = "prediction_risk"
	RiskTypeSlowSales  = "slow_sales"
)

// Severity levels, in increasing order of urgency.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// RiskRecord is a detected inventory/sales condition, tagged by Type.
// Kind-specific fields are pointers because absence and zero are
// different things here: an expired item has days <= 0, a dead product
// has total_sold == 0 and a bonus item has cost 0, yet none of those
// fields exist on a stockout record.
type RiskRecord struct {
	Type            string   `json:"type"`
	ProductID       string   `json:"productId"`
	Message         string   `json:"message"`
	Severity        string   `json:"severity"`
	Days            *int     `json:"days,omitempty"`
	Stock           int      `json:"stock,omitempty"`
	Cost            *float64 `json:"cost,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	DaysToSellOut   float64  `json:"days_to_sell_out,omitempty"`
	DaysUntilExpiry *int     `json:"days_until_expiry,omitempty"`
	AvgDailySales   float64  `json:"avg_daily_sales,omitempty"`
	TotalSold       *int     `json:"total_sold,omitempty"`
}

// Recommendation is a priced, human-readable action for one risk.
// Discount is a fraction in [0,1]; Confidence is omitted for expiry
// promotions.
type Recommendation struct {
	ProductID  string  `json:"productId"`
	Suggestion string  `json:"suggestion"`
	Discount   float64 `json:"discount"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Insights bundles the overall summary with per-risk recommendations.
type Insights struct {
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// AnalyzeResponse is the combined output of one analysis call.
type AnalyzeResponse struct {
	Success  bool         `json:"success"`
	ReportID string       `json:"report_id"`
	Metrics  []RiskRecord `json:"metrics"`
	Insights Insights     `json:"insights"`
}
