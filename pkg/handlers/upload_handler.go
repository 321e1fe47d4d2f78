package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gondola-insights-api/pkg/models"
	"gondola-insights-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// UploadHandler ingests one or more ERP export files (CSV or XLSX),
// reconstructs the product/stock/sales collections and runs the same
// analysis pipeline as the JSON endpoint.
type UploadHandler struct {
	riskService     *services.RiskService
	insightsService *services.InsightsService
	maxUploadBytes  int64
}

// NewUploadHandler creates a new UploadHandler. maxUploadMB bounds the
// multipart form size.
func NewUploadHandler(riskService *services.RiskService, insightsService *services.InsightsService, maxUploadMB int64) *UploadHandler {
	return &UploadHandler{
		riskService:     riskService,
		insightsService: insightsService,
		maxUploadBytes:  maxUploadMB << 20,
	}
}

// AnalyzeUpload handles POST /api/v1/analyze/upload. Each file is one
// point-in-time export; the last file is "now" and earlier files are
// back-dated by one period (hour, day or month) per position, so a
// sequence of daily exports becomes the stock/sales history.
func (h *UploadHandler) AnalyzeUpload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Falha ao ler o formulário multipart: " + err.Error(),
		})
		return
	}

	period := c.PostForm("period")
	if period == "" {
		period = "day"
	}
	if period != "hour" && period != "day" && period != "month" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Período inválido: %s. Use 'hour', 'day' ou 'month'.", period),
		})
		return
	}

	files := c.Request.MultipartForm.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Nenhum arquivo enviado.",
		})
		return
	}

	now := time.Now()
	allProducts := make([]models.Product, 0)
	allStock := make([]models.StockSnapshot, 0)
	allSales := make([]models.DailySale, 0)
	processed := 0

	for i, fileHeader := range files {
		// The last file is today; earlier ones step back one period
		// per position.
		fileDate := backdate(now, period, len(files)-1-i)

		rows, err := readTabularFile(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   fmt.Sprintf("Falha ao processar %s: %v", fileHeader.Filename, err),
			})
			return
		}

		products, stock, sales, count := parseSnapshotRows(rows, fileDate)
		allProducts = append(allProducts, products...)
		allStock = append(allStock, stock...)
		allSales = append(allSales, sales...)
		processed += count

		log.Printf("[upload] %s => %d linhas (data atribuída: %s)", fileHeader.Filename, count, fileDate.Format(dateLayout))
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[upload] erro inesperado no pipeline: %v", r)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   fmt.Sprintf("%v", r),
			})
		}
	}()

	metrics := h.riskService.Scan(allProducts, allStock, allSales, now)
	insights := h.insightsService.Generate(metrics)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"report_id": uuid.NewString(),
		"processed": processed,
		"metrics":   metrics,
		"insights":  insights,
	})
}

const dateLayout = "2006-01-02"

// readTabularFile loads all rows from an uploaded CSV or XLSX file.
func readTabularFile(fileHeader *multipart.FileHeader) ([][]string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("não foi possível abrir o arquivo: %w", err)
	}
	defer file.Close()

	name := strings.ToLower(fileHeader.Filename)
	switch {
	case strings.HasSuffix(name, ".xlsx"):
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, fmt.Errorf("não foi possível ler a planilha: %w", err)
		}
		defer f.Close()
		return f.GetRows(f.GetSheetName(0))
	case strings.HasSuffix(name, ".csv"):
		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		return reader.ReadAll()
	default:
		return nil, fmt.Errorf("formato não suportado (use .csv ou .xlsx)")
	}
}

// parseSnapshotRows maps one export file onto the input collections.
// Column positions are detected by header name, accepting the English
// and Portuguese aliases seen in the field. Rows with malformed
// numbers contribute what they can and never abort the upload.
func parseSnapshotRows(rows [][]string, fileDate time.Time) ([]models.Product, []models.StockSnapshot, []models.DailySale, int) {
	products := make([]models.Product, 0)
	stock := make([]models.StockSnapshot, 0)
	sales := make([]models.DailySale, 0)

	if len(rows) < 2 {
		return products, stock, sales, 0
	}

	header := rows[0]
	idIdx := findIndex(header, "id", "product_id", "codigo", "código")
	nameIdx := findIndex(header, "name", "nome", "produto")
	priceIdx := findIndex(header, "price", "preco", "preço")
	costIdx := findIndex(header, "cost", "custo")
	categoryIdx := findIndex(header, "category", "categoria")
	stockIdx := findIndex(header, "stock_quantity", "estoque")
	salesQtyIdx := findIndex(header, "sales_quantity", "vendas")
	salesTotalIdx := findIndex(header, "sales_total", "total_vendas")
	expiryIdx := findIndex(header, "expiry_date", "validade", "next_expiry_date")

	if idIdx == -1 {
		log.Printf("[upload] coluna de id não encontrada no cabeçalho: %v", header)
		return products, stock, sales, 0
	}

	cell := func(row []string, idx int) string {
		if idx == -1 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	count := 0
	for _, row := range rows[1:] {
		id := cell(row, idIdx)
		if id == "" {
			continue
		}
		count++

		price, _ := strconv.ParseFloat(cell(row, priceIdx), 64)
		cost, _ := strconv.ParseFloat(cell(row, costIdx), 64)

		expiry := cell(row, expiryIdx)
		if expiry != "" {
			// Exports may pack several batch dates into one cell; the
			// first one is the next to expire.
			expiry = strings.TrimSpace(strings.Split(expiry, ";")[0])
		}

		products = append(products, models.Product{
			ID:             id,
			Name:           cell(row, nameIdx),
			Price:          price,
			Cost:           cost,
			Category:       cell(row, categoryIdx),
			NextExpiryDate: expiry,
		})

		if quantity, err := strconv.Atoi(cell(row, stockIdx)); err == nil {
			stock = append(stock, models.StockSnapshot{
				ProductID: id,
				Quantity:  quantity,
				Timestamp: fileDate.Format(time.RFC3339),
			})
		}

		salesQty := cell(row, salesQtyIdx)
		salesTotal := cell(row, salesTotalIdx)
		if salesQty != "" && salesTotal != "" {
			quantity, qtyErr := strconv.Atoi(salesQty)
			total, totalErr := strconv.ParseFloat(salesTotal, 64)
			if qtyErr == nil && totalErr == nil {
				sales = append(sales, models.DailySale{
					ProductID:   id,
					Date:        fileDate.Format(dateLayout),
					Quantity:    quantity,
					TotalAmount: total,
				})
			}
		}
	}

	return products, stock, sales, count
}
