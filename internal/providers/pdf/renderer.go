package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/phpdave11/gofpdf"
	"github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/smallbiznis/storefront/internal/observability/logger"
	"github.com/smallbiznis/storefront/internal/observability/metrics"
	"github.com/smallbiznis/storefront/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DataURIPrefix starts every rendered document.
const DataURIPrefix = "data:application/pdf;base64,"

const dateLayout = "02 Jan 2006"

// WatermarkLabel is stamped on the background of every page.
const WatermarkLabel = "Delivered"

var watermarkImage = func() ([]byte, error) { return Watermark(WatermarkLabel) }

// fpdfDefaults guards the gofpdf package defaults, which maroto.New copies
// into each new document.
var fpdfDefaults sync.Mutex

type Params struct {
	fx.In

	Images  ImageLoader
	Log     *zap.Logger
	Metrics *metrics.InvoiceMetrics `optional:"true"`
}

// Renderer draws invoices with maroto.
type Renderer struct {
	images  ImageLoader
	log     *zap.Logger
	metrics *metrics.InvoiceMetrics
}

func NewRenderer(p Params) domain.Renderer {
	return New(p.Images, p.Log, p.Metrics)
}

func New(images ImageLoader, log *zap.Logger, m *metrics.InvoiceMetrics) *Renderer {
	if images == nil {
		images = NoImages{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{images: images, log: log.Named("invoice.pdf"), metrics: m}
}

// Render returns the invoice as a PDF data URI.
func (r *Renderer) Render(ctx context.Context, data domain.InvoiceData) (doc string, err error) {
	ctx, span := tracing.Start(ctx, "invoice.render",
		attribute.String("invoice.number", data.InvoiceNumber),
		attribute.Int("invoice.line_items", len(data.LineItems)),
	)
	defer func() { tracing.End(span, err) }()

	start := time.Now()
	defer func() { r.metrics.ObserveRender(time.Since(start)) }()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	header := r.loadImage(ctx, data.Company.HeaderImageURL)
	footer := r.loadImage(ctx, data.Company.FooterImageURL)

	mark, err := watermarkImage()
	if err != nil {
		return "", fmt.Errorf("%w: watermark: %w", domain.ErrRenderFailed, err)
	}

	stamp := documentTime(data)
	cfg := mconfig.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    8,
		}).
		WithTitle("Tax Invoice "+data.InvoiceNumber, true).
		WithAuthor(data.Company.StoreName, true).
		WithCreationDate(stamp).
		WithBackgroundImage(mark, extension.Png).
		Build()

	m := newDocument(cfg, stamp)
	addHeader(m, data, header)
	addMeta(m, data)
	addParties(m, data)
	addItems(m, data.LineItems)
	addTotals(m, data)
	addFooter(m, data, footer, data.TermsText)

	out, err := generate(ctx, m)
	if err != nil {
		return "", err
	}
	return DataURIPrefix + out.GetBase64(), nil
}

// newDocument pins the catalog order and modification date so the same
// data always renders to the same bytes.
func newDocument(cfg *entity.Config, stamp time.Time) core.Maroto {
	fpdfDefaults.Lock()
	defer fpdfDefaults.Unlock()

	gofpdf.SetDefaultCatalogSort(true)
	gofpdf.SetDefaultModificationDate(stamp)
	return maroto.New(cfg)
}

// documentTime is the date written into the PDF metadata.
func documentTime(data domain.InvoiceData) time.Time {
	if data.InvoiceDate.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return data.InvoiceDate.UTC()
}

// generate returns when the document is ready or ctx is done, whichever
// comes first. An abandoned generation finishes in the background.
func generate(ctx context.Context, m core.Maroto) (core.Document, error) {
	type result struct {
		doc core.Document
		err error
	}
	done := make(chan result, 1)
	go func() {
		doc, err := m.Generate()
		done <- result{doc: doc, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRenderFailed, res.err)
		}
		return res.doc, nil
	}
}

func (r *Renderer) loadImage(ctx context.Context, url string) *Image {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	img, err := r.images.Load(ctx, url)
	if err != nil {
		logger.WithContext(ctx, r.log).Warn("invoice image skipped", zap.String("url", url), zap.Error(err))
		return nil
	}
	return img
}

func addHeader(m core.Maroto, data domain.InvoiceData, header *Image) {
	if header != nil {
		m.AddRow(30, image.NewFromBytesCol(12, header.Bytes, header.Ext, props.Rect{Center: true, Percent: 100}))
	} else {
		company := col.New(12).Add(text.New(data.Company.StoreName, props.Text{Size: 14, Style: fontstyle.Bold}))
		top := 7.0
		for _, l := range nonEmptyLines(data.Company.StoreAddress) {
			company.Add(text.New(l, props.Text{Top: top, Size: 9}))
			top += 4
		}
		for _, l := range companyContacts(data) {
			company.Add(text.New(l, props.Text{Top: top, Size: 9}))
			top += 4
		}
		m.AddRow(top+2, company)
	}

	m.AddRow(14,
		text.NewCol(12, "TAX INVOICE", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
			Top:   4,
		}),
	)
}

func addMeta(m core.Maroto, data domain.InvoiceData) {
	m.AddRow(14,
		col.New(6).Add(
			text.New("Invoice No: "+data.InvoiceNumber, props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New("Invoice Date: "+data.InvoiceDate.UTC().Format(dateLayout), props.Text{Top: 5, Size: 9}),
		),
		col.New(6).Add(
			text.New("Order No: "+data.OrderNumber, props.Text{Size: 9, Align: align.Right}),
			text.New("Order Date: "+data.OrderDate.UTC().Format(dateLayout), props.Text{Top: 5, Size: 9, Align: align.Right}),
		),
	)
}

func addParties(m core.Maroto, data domain.InvoiceData) {
	billTo := append([]string{data.CustomerName}, nonEmptyLines(data.BillingAddress)...)
	billTo = append(billTo, nonEmptyLines(data.CustomerEmail, data.CustomerPhone)...)
	shipTo := append([]string{data.ShippingName}, nonEmptyLines(data.ShippingAddress)...)
	shipTo = append(shipTo, nonEmptyLines(data.ShippingPhone)...)

	rows := max(len(billTo), len(shipTo))
	m.AddRow(float64(rows)*4+8,
		partyCol("Bill To", billTo),
		partyCol("Ship To", shipTo),
	)
}

func partyCol(title string, lines []string) core.Col {
	c := col.New(6).Add(text.New(title, props.Text{Size: 10, Style: fontstyle.Bold}))
	top := 5.0
	for _, l := range lines {
		c.Add(text.New(l, props.Text{Top: top, Size: 9}))
		top += 4
	}
	return c
}

func addItems(m core.Maroto, items []domain.LineItem) {
	head := props.Text{Style: fontstyle.Bold, Size: 9}
	headRight := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	m.AddRow(8,
		text.NewCol(6, "Description", head),
		text.NewCol(2, "Qty", headRight),
		text.NewCol(2, "Unit Price", headRight),
		text.NewCol(2, "Amount", headRight),
	)
	m.AddRow(2, line.NewCol(12, props.Line{Thickness: 0.3}))

	cell := props.Text{Size: 9}
	cellRight := props.Text{Size: 9, Align: align.Right}
	for _, item := range items {
		desc := item.Description
		if item.SKU != "" {
			desc += " [" + item.SKU + "]"
		}
		m.AddRow(7,
			text.NewCol(6, desc, cell),
			text.NewCol(2, strconv.FormatInt(item.Quantity, 10), cellRight),
			text.NewCol(2, FormatMoney(item.UnitPrice), cellRight),
			text.NewCol(2, FormatMoney(item.Amount), cellRight),
		)
	}
	m.AddRow(2, line.NewCol(12, props.Line{Thickness: 0.3}))
}

func addTotals(m core.Maroto, data domain.InvoiceData) {
	totalRow(m, "Subtotal", FormatMoney(data.SubtotalBeforeTax), false)
	totalRow(m, "GST ("+FormatRate(data.TaxRate)+"%)", FormatMoney(data.TaxAmount), false)
	if data.ShippingAmount != 0 {
		totalRow(m, "Shipping", FormatMoney(data.ShippingAmount), false)
	}
	if data.DiscountAmount != 0 {
		totalRow(m, "Discount", FormatMoney(-data.DiscountAmount), false)
	}
	m.AddRow(2, col.New(7), line.NewCol(5, props.Line{Thickness: 0.3}))
	totalRow(m, "Grand Total", FormatMoney(data.GrandTotal), true)
}

func totalRow(m core.Maroto, label, value string, bold bool) {
	p := props.Text{Size: 9}
	if bold {
		p = props.Text{Size: 10, Style: fontstyle.Bold}
	}
	right := p
	right.Align = align.Right
	m.AddRow(6,
		col.New(7),
		text.NewCol(3, label, p),
		text.NewCol(2, value, right),
	)
}

func addFooter(m core.Maroto, data domain.InvoiceData, footer *Image, terms string) {
	if footer != nil {
		m.AddRow(30, image.NewFromBytesCol(12, footer.Bytes, footer.Ext, props.Rect{Center: true, Percent: 100}))
		return
	}
	if terms = Terms(terms, data.Company.StoreEmail); terms == "" {
		return
	}
	m.AddRow(6, col.New(12))
	m.AddRow(8, text.NewCol(12, "Terms & Conditions", props.Text{Size: 9, Style: fontstyle.Bold}))
	m.AddRow(14, text.NewCol(12, terms, props.Text{Size: 8}))
}

// Terms fills the support email into the configured terms paragraph.
func Terms(tmpl, email string) string {
	tmpl = strings.TrimSpace(tmpl)
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	if email = strings.TrimSpace(email); email == "" {
		email = "the store"
	}
	return strings.Replace(tmpl, "%s", email, 1)
}

func companyContacts(data domain.InvoiceData) []string {
	var out []string
	if v := strings.TrimSpace(data.Company.StorePhone); v != "" {
		out = append(out, "Phone: "+v)
	}
	if v := strings.TrimSpace(data.Company.StoreEmail); v != "" {
		out = append(out, "Email: "+v)
	}
	if v := strings.TrimSpace(data.Company.GSTNumber); v != "" {
		out = append(out, "GSTIN: "+v)
	}
	if v := strings.TrimSpace(data.Company.PANNumber); v != "" {
		out = append(out, "PAN: "+v)
	}
	return out
}

func nonEmptyLines(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, l := range strings.Split(v, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}
