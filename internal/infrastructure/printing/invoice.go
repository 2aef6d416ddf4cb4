package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	apporder "github.com/shopfront/backend/internal/application/order"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const invoiceHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.Number}}</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; font-size: 12px; color: #222; }
h1 { font-size: 22px; margin: 0 0 4px; }
.meta td { padding: 2px 12px 2px 0; }
table.items { width: 100%; border-collapse: collapse; margin-top: 16px; }
table.items th, table.items td { border-bottom: 1px solid #ddd; padding: 6px; text-align: left; }
table.items td.num, table.items th.num { text-align: right; }
.total { text-align: right; font-size: 14px; font-weight: bold; margin-top: 12px; }
.status { display: inline-block; padding: 2px 8px; border: 1px solid #888; border-radius: 4px; }
</style>
</head>
<body>
<h1>{{.Shop}} invoice</h1>
<table class="meta">
<tr><td>Invoice</td><td>{{.Number}}</td></tr>
<tr><td>Date</td><td>{{date .Order.CreatedAt}}</td></tr>
<tr><td>Status</td><td><span class="status">{{title .Order.Status.String}}</span></td></tr>
<tr><td>Payment</td><td>{{payment .Order.PaymentMethod}}{{if .Order.IsPaid}} (paid {{date .Order.PaidAt}}){{end}}</td></tr>
</table>

<h3>Ship to</h3>
<div>{{.Order.ShippingAddress.Name}}</div>
<div>{{.Order.ShippingAddress.Address}}</div>
<div>{{.Order.ShippingAddress.Phone}}</div>
{{with .Order.ShippingAddress.Email}}<div>{{.}}</div>{{end}}
{{with .Order.ShippingAddress.Note}}<div><em>{{.}}</em></div>{{end}}
{{with .Customer}}<p>Customer: {{.Name}} &lt;{{.Email}}&gt;</p>{{end}}

<table class="items">
<thead><tr><th>#</th><th>Product</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Subtotal</th></tr></thead>
<tbody>
{{range $i, $item := .Order.Items}}<tr><td>{{inc $i}}</td><td>{{$item.Name}}</td><td class="num">{{qty $item.Quantity}}</td><td class="num">{{money $item.Price}}</td><td class="num">{{money $item.Subtotal}}</td></tr>
{{end}}</tbody>
</table>
<div class="total">Total: {{money .Order.TotalAmount}}</div>
</body>
</html>
`

// InvoiceData is the template input
type InvoiceData struct {
	Shop     string
	Number   string
	Order    *order.Order
	Customer *identity.User
}

// InvoiceGenerator fills the invoice template and prints it
type InvoiceGenerator struct {
	shop     string
	tmpl     *template.Template
	renderer PDFRenderer
}

var _ apporder.InvoiceRenderer = (*InvoiceGenerator)(nil)

// NewInvoiceGenerator creates a generator labelled with the shop name
func NewInvoiceGenerator(shop string, renderer PDFRenderer) *InvoiceGenerator {
	// Casers and printers carry state, so each call builds its own
	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return message.NewPrinter(language.English).Sprintf("$%.2f", d.Round(2).InexactFloat64())
		},
		"qty": func(n int) string {
			return message.NewPrinter(language.English).Sprintf("%d", n)
		},
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"date": func(t any) string {
			switch v := t.(type) {
			case time.Time:
				return v.Format("2006-01-02")
			case *time.Time:
				if v != nil {
					return v.Format("2006-01-02")
				}
			}
			return ""
		},
		"payment": func(m order.PaymentMethod) string {
			if m == order.PaymentMethodBanking {
				return "Bank transfer"
			}
			return "Cash on delivery"
		},
		"inc": func(i int) int { return i + 1 },
	}

	return &InvoiceGenerator{
		shop:     shop,
		tmpl:     template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTML)),
		renderer: renderer,
	}
}

// HTML renders the invoice document
func (g *InvoiceGenerator) HTML(o *order.Order, customer *identity.User) (string, error) {
	data := InvoiceData{
		Shop:     g.shop,
		Number:   InvoiceNumber(o),
		Order:    o,
		Customer: customer,
	}
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}

// RenderInvoice implements apporder.InvoiceRenderer
func (g *InvoiceGenerator) RenderInvoice(ctx context.Context, o *order.Order, customer *identity.User) ([]byte, error) {
	html, err := g.HTML(o, customer)
	if err != nil {
		return nil, err
	}
	return g.renderer.Render(ctx, html)
}

// InvoiceNumber derives a stable human-readable number from the order
func InvoiceNumber(o *order.Order) string {
	id := o.ID.String()
	return fmt.Sprintf("INV-%s-%s", o.CreatedAt.Format("20060102"), id[len(id)-8:])
}
