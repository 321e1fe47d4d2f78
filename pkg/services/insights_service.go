package services

import (
	"fmt"
	"log"

	"gondola-insights-api/pkg/models"
)

// Fixed confidence scores for the rule-based suggestions. The text
// generator is a deterministic template engine today; these become
// model-driven once a real agent is plugged in.
const (
	predictionConfidence = 0.85
	slowSalesConfidence  = 0.90
)

// InsightsService turns risk records into priced recommendations and
// an overall summary. Stateless; recommendations are derived only
// from the risks passed in, never invented.
type InsightsService struct{}

// NewInsightsService creates a new InsightsService.
func NewInsightsService() *InsightsService {
	return &InsightsService{}
}

// Generate produces one recommendation per priceable risk, in the
// order the risks were received. Stockout risks get no
// recommendation: the right action there is restocking, not
// markdowns.
func (s *InsightsService) Generate(risks []models.RiskRecord) models.Insights {
	summary := fmt.Sprintf("Found %d risks. ", len(risks))
	if len(risks) > 0 {
		summary += "Main concern is low stock on some items."
	} else {
		summary += "Everything looks good."
	}

	recommendations := make([]models.Recommendation, 0)

	for _, risk := range risks {
		switch {
		case risk.Type == models.RiskTypeValidity && risk.Days != nil && *risk.Days > 0:
			// Markdown tier by days of shelf life remaining. Expired
			// (critical) records carry no pricing fields and are not
			// discounted.
			days := *risk.Days
			var discount float64
			switch {
			case days <= 7:
				discount = 0.50
			case days <= 15:
				discount = 0.30
			default:
				discount = 0.15
			}

			newPrice := floatVal(risk.Price) * (1 - discount)
			margin := newPrice - floatVal(risk.Cost)

			suggestion := fmt.Sprintf("Promoção Sugerida: %d%% OFF. Novo preço: R$ %.2f (Margem: R$ %.2f)", int(discount*100), newPrice, margin)
			if margin < 0 {
				suggestion += " [ATENÇÃO: Venda abaixo do custo para evitar perda total]"
			}

			recommendations = append(recommendations, models.Recommendation{
				ProductID:  risk.ProductID,
				Suggestion: suggestion,
				Discount:   discount,
			})

		case risk.Type == models.RiskTypePrediction:
			// Tier by how many days the stock outlives its shelf life.
			daysExcess := risk.DaysToSellOut
			if risk.DaysUntilExpiry != nil {
				daysExcess -= float64(*risk.DaysUntilExpiry)
			}

			var discount float64
			switch {
			case daysExcess <= 5:
				discount = 0.10
			case daysExcess <= 15:
				discount = 0.25
			default:
				discount = 0.40
			}

			newPrice := floatVal(risk.Price) * (1 - discount)

			recommendations = append(recommendations, models.Recommendation{
				ProductID:  risk.ProductID,
				Suggestion: fmt.Sprintf("Predição: Estoque não zerará antes da validade. Sugestão: Reduzir preço em %d%% para acelerar vendas. Novo preço: R$ %.2f", int(discount*100), newPrice),
				Discount:   discount,
				Confidence: predictionConfidence,
			})

		case risk.Type == models.RiskTypeSlowSales:
			totalSold := 0
			if risk.TotalSold != nil {
				totalSold = *risk.TotalSold
			}

			// No markdown here: slow movers call for merchandising,
			// not price cuts.
			recommendations = append(recommendations, models.Recommendation{
				ProductID:  risk.ProductID,
				Suggestion: fmt.Sprintf("Giro de Estoque: Produto parado (%d un. em estoque, %d vendas). Sugestão: Criar Bundle com produto de alta saída ou melhorar exposição na loja.", risk.Stock, totalSold),
				Discount:   0.0,
				Confidence: slowSalesConfidence,
			})
		}
	}

	log.Printf("[insights] %d riscos => %d recomendações", len(risks), len(recommendations))

	return models.Insights{
		Summary:         summary,
		Recommendations: recommendations,
	}
}

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
