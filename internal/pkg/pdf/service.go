// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/order"
)

// Service renders order invoices as PDF documents
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

type invoiceLine struct {
	Name     string
	Quantity int
	Unit     string
	Total    string
}

type invoiceData struct {
	StoreName   string
	OrderNumber string
	OrderDate   string
	Status      string
	Payment     string

	CustomerName string
	Address      string
	City         string
	Phone        string

	Lines    []invoiceLine
	Subtotal string
	Tax      string
	Total    string
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #222; margin: 40px; }
  h1 { font-size: 22px; margin-bottom: 0; }
  .muted { color: #777; font-size: 12px; }
  table { width: 100%; border-collapse: collapse; margin-top: 24px; }
  th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; font-size: 13px; }
  th { background: #f5f5f5; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 16px; float: right; width: 240px; }
  .totals div { display: flex; justify-content: space-between; padding: 4px 8px; font-size: 13px; }
  .totals .grand { font-weight: bold; border-top: 1px solid #222; }
</style>
</head>
<body>
  <h1>{{.StoreName}}</h1>
  <p class="muted">Invoice {{.OrderNumber}} &middot; {{.OrderDate}} &middot; {{.Status}} &middot; {{.Payment}}</p>

  <p>
    <strong>{{.CustomerName}}</strong><br>
    {{.Address}}<br>
    {{.City}}<br>
    {{.Phone}}
  </p>

  <table>
    <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Total</th></tr>
    {{range .Lines}}
    <tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.Unit}}</td><td class="num">{{.Total}}</td></tr>
    {{end}}
  </table>

  <div class="totals">
    <div><span>Subtotal</span><span>{{.Subtotal}}</span></div>
    <div><span>GST (18%)</span><span>{{.Tax}}</span></div>
    <div class="grand"><span>Total</span><span>{{.Total}}</span></div>
  </div>
</body>
</html>`))

// GenerateInvoice renders the invoice PDF for an order
func (s *Service) GenerateInvoice(o *order.Order) ([]byte, error) {
	html, err := s.renderHTML(o)
	if err != nil {
		return nil, err
	}

	generator, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	generator.Dpi.Set(300)
	generator.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	generator.AddPage(page)

	if err := generator.Create(); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return generator.Bytes(), nil
}

// Private helper methods

func (s *Service) renderHTML(o *order.Order) (string, error) {
	data := invoiceData{
		StoreName:    s.config.App.Name,
		OrderNumber:  o.OrderNumber,
		OrderDate:    o.CreatedAt.Format("02 Jan 2006"),
		Status:       strings.ToUpper(o.Status),
		Payment:      paymentLabel(o),
		CustomerName: o.ShippingName,
		Address:      o.ShippingAddress,
		City:         fmt.Sprintf("%s, %s %s", o.ShippingCity, o.ShippingState, o.ShippingPincode),
		Phone:        o.ShippingPhone,
		Subtotal:     formatPaise(o.Subtotal),
		Tax:          formatPaise(o.Tax),
		Total:        formatPaise(o.Total),
	}

	for _, item := range o.Items {
		data.Lines = append(data.Lines, invoiceLine{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Unit:     formatPaise(item.UnitPrice),
			Total:    formatPaise(item.Subtotal()),
		})
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}

func paymentLabel(o *order.Order) string {
	if o.PaymentMethod == order.PaymentMethodOnline {
		return fmt.Sprintf("Paid online (UTR %s)", o.UTRNumber)
	}
	return "Cash on delivery"
}

func formatPaise(paise int64) string {
	return fmt.Sprintf("Rs. %d.%02d", paise/100, paise%100)
}
