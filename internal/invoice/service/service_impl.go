package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/storefront/internal/audit/domain"
	"github.com/smallbiznis/storefront/internal/clock"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/invoice/builder"
	"github.com/smallbiznis/storefront/internal/invoice/domain"
	"github.com/smallbiznis/storefront/internal/observability/logger"
	"github.com/smallbiznis/storefront/internal/observability/metrics"
	"github.com/smallbiznis/storefront/internal/observability/tracing"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	settingsdomain "github.com/smallbiznis/storefront/internal/settings/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lockKeyGenerate = "invoice:generate:%s"

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Config        config.Config
	InvoiceConfig *config.InvoiceConfigHolder
	Repo          domain.Repository
	Orders        orderdomain.Reader
	Settings      settingsdomain.Resolver
	Numbers       domain.NumberIssuer
	Renderer      domain.Renderer
	Notifier      domain.Notifier         `optional:"true"`
	Locker        domain.Locker           `optional:"true"`
	AuditSvc      auditdomain.Service     `optional:"true"`
	Metrics       *metrics.Metrics        `optional:"true"`
	Prom          *metrics.InvoiceMetrics `optional:"true"`
}

// Service runs the invoice lifecycle. Every state change is a conditional
// statement on the prior status; the unique order_id index is the final
// guard against duplicate generation.
type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cfg      config.InvoiceConfig
	docCfg   *config.InvoiceConfigHolder
	repo     domain.Repository
	orders   orderdomain.Reader
	settings settingsdomain.Resolver
	numbers  domain.NumberIssuer
	renderer domain.Renderer
	notifier domain.Notifier
	locker   domain.Locker
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
	prom     *metrics.InvoiceMetrics

	notifications sync.WaitGroup
}

func NewService(p Params) *Service {
	docCfg := p.InvoiceConfig
	if docCfg == nil {
		docCfg = config.NewStaticInvoiceConfigHolder(config.DefaultInvoiceDocumentConfig())
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		cfg:      p.Config.Invoice,
		docCfg:   docCfg,
		repo:     p.Repo,
		orders:   p.Orders,
		settings: p.Settings,
		numbers:  p.Numbers,
		renderer: p.Renderer,
		notifier: p.Notifier,
		locker:   p.Locker,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
		prom:     p.Prom,
	}
}

// Wait blocks until in-flight raise notifications have finished.
func (s *Service) Wait() {
	s.notifications.Wait()
}

func (s *Service) GenerateInvoice(ctx context.Context, orderID string) domain.GenerateResult {
	ctx, span := tracing.Start(ctx, "invoice.generate", attribute.String("order.id", orderID))
	ctx, cancel := withTimeout(ctx, s.cfg.ItemTimeout)
	defer cancel()

	res, err := s.generate(ctx, orderID)
	tracing.End(span, err)
	s.metrics.RecordOperation(ctx, "generate", string(domain.KindOf(err)))

	if err != nil {
		s.prom.RecordGenerate(metrics.GenerateOutcomeFailed)
		s.logFailure(ctx, "generate invoice failed", err, zap.String("order_id", orderID))
		return domain.GenerateResult{Result: failure(err)}
	}
	if res.Existing {
		s.prom.RecordGenerate(metrics.GenerateOutcomeExisting)
	} else {
		s.prom.RecordGenerate(metrics.GenerateOutcomeCreated)
		s.prom.RecordTransition(metrics.InvoiceStatusNone, metrics.InvoiceStatusGenerated, 1)
	}
	return res
}

func (s *Service) generate(ctx context.Context, rawOrderID string) (domain.GenerateResult, error) {
	orderID, err := parseID(rawOrderID, domain.ErrInvalidOrderID)
	if err != nil {
		return domain.GenerateResult{}, err
	}

	if existing, err := s.repo.FindByOrderID(ctx, s.db, orderID); err != nil {
		return domain.GenerateResult{}, err
	} else if existing != nil {
		return existingResult(existing), nil
	}

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, fmt.Sprintf(lockKeyGenerate, orderID), s.cfg.LockTTL)
		switch {
		case err != nil:
			logger.WithContext(ctx, s.log).Warn("generate lock unavailable, relying on unique index",
				zap.String("order_id", orderID.String()), zap.Error(err))
		case !ok:
			s.prom.RecordLockContended()
			existing, err := s.repo.FindByOrderID(ctx, s.db, orderID)
			if err != nil {
				return domain.GenerateResult{}, err
			}
			if existing != nil {
				return existingResult(existing), nil
			}
			return domain.GenerateResult{}, domain.ErrGenerationInFlight
		default:
			defer release()
		}
	}

	snap, err := s.orders.Load(ctx, s.db, orderID)
	if err != nil {
		return domain.GenerateResult{}, err
	}
	if !snap.PaymentStatus.Invoiceable() {
		return domain.GenerateResult{}, domain.ErrPaymentIncomplete
	}

	var warnings []string
	resolved := s.settings.Resolve(ctx)
	if resolved.Degraded {
		warnings = append(warnings, "Store settings were unavailable; default company details and tax were used")
	}

	docCfg := s.docCfg.Get()
	now := s.clock.Now().UTC()
	data, check := builder.Build(*snap, resolved.Company, resolved.Tax, "", now)
	data.TermsText = docCfg.TermsText
	if check.Mismatch {
		s.prom.RecordIntegrityMismatch()
		logger.WithContext(ctx, s.log).Warn("invoice total differs from order total",
			zap.String("order_id", orderID.String()),
			zap.Int64("order_total", check.OrderTotal),
			zap.Int64("grand_total", check.GrandTotal),
		)
		if docCfg.StrictTotals {
			return domain.GenerateResult{}, domain.ErrIntegrityMismatch
		}
		warnings = append(warnings, fmt.Sprintf("Invoice total %d differs from order total %d", check.GrandTotal, check.OrderTotal))
	}

	number, err := s.numbers.Issue(ctx, now)
	if err != nil {
		return domain.GenerateResult{}, err
	}
	data.InvoiceNumber = number

	document, err := s.renderer.Render(ctx, data)
	if err != nil {
		if !errors.Is(err, domain.ErrRenderFailed) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", domain.ErrRenderFailed, err)
		}
		return domain.GenerateResult{}, err
	}

	invoice := domain.NewInvoice(s.genID.Generate(), orderID, data, document, now)
	inserted, err := s.repo.Insert(ctx, s.db, &invoice)
	if err != nil {
		return domain.GenerateResult{}, err
	}
	if !inserted {
		existing, err := s.repo.FindByOrderID(ctx, s.db, orderID)
		if err != nil {
			return domain.GenerateResult{}, err
		}
		if existing == nil {
			return domain.GenerateResult{}, errors.New("invoice insert conflicted but no row found")
		}
		res := existingResult(existing)
		res.Warnings = warnings
		return res, nil
	}

	s.audit(ctx, auditdomain.ActionInvoiceGenerated, invoice.ID, map[string]any{
		"order_id":       orderID.String(),
		"invoice_number": invoice.InvoiceNumber,
		"grand_total":    invoice.GrandTotal,
		"tax_amount":     invoice.TaxAmount,
	})
	logger.WithInvoice(logger.WithContext(ctx, s.log), invoice.ID.String(), orderID.String()).
		Info("invoice generated", zap.String("invoice_number", invoice.InvoiceNumber))

	return domain.GenerateResult{
		Result: domain.Result{
			Success:  true,
			Message:  "Invoice " + invoice.InvoiceNumber + " generated",
			Warnings: warnings,
		},
		InvoiceID:     invoice.ID.String(),
		InvoiceNumber: invoice.InvoiceNumber,
	}, nil
}

func existingResult(inv *domain.Invoice) domain.GenerateResult {
	return domain.GenerateResult{
		Result: domain.Result{
			Success: true,
			Message: "Invoice " + inv.InvoiceNumber + " already exists for this order",
		},
		InvoiceID:     inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Existing:      true,
	}
}

// BulkGenerateInvoices generates one order at a time. A failed order never
// stops the rest; the batch succeeds when any order succeeded.
func (s *Service) BulkGenerateInvoices(ctx context.Context, orderIDs []string) domain.BulkGenerateResult {
	if len(orderIDs) == 0 {
		return domain.BulkGenerateResult{Result: failure(domain.ErrEmptyBatch), Items: []domain.BulkGenerateItem{}}
	}
	if s.cfg.BulkMaxItems > 0 && len(orderIDs) > s.cfg.BulkMaxItems {
		return domain.BulkGenerateResult{Result: failure(domain.ErrBatchTooLarge), Items: []domain.BulkGenerateItem{}}
	}

	ctx, span := tracing.Start(ctx, "invoice.bulk_generate", attribute.Int("batch.size", len(orderIDs)))
	defer span.End()

	out := domain.BulkGenerateResult{Items: make([]domain.BulkGenerateItem, 0, len(orderIDs))}
	for _, orderID := range orderIDs {
		res := s.GenerateInvoice(ctx, orderID)
		out.Items = append(out.Items, domain.BulkGenerateItem{
			OrderID:       orderID,
			Success:       res.Success,
			Message:       res.Message,
			Code:          res.Code,
			InvoiceID:     res.InvoiceID,
			InvoiceNumber: res.InvoiceNumber,
			Existing:      res.Existing,
		})
		if res.Success {
			out.SuccessCount++
		} else {
			out.FailureCount++
		}
		out.Warnings = append(out.Warnings, res.Warnings...)
	}

	s.metrics.RecordBulkItems(ctx, "bulk_generate", out.SuccessCount, out.FailureCount)
	out.Success = out.SuccessCount > 0
	out.Message = fmt.Sprintf("Generated %d of %d invoices", out.SuccessCount, len(orderIDs))
	if !out.Success {
		out.Code = domain.KindPreconditionFailed
	}
	return out
}

func (s *Service) RaiseInvoice(ctx context.Context, invoiceID string) domain.RaiseResult {
	ctx, span := tracing.Start(ctx, "invoice.raise", attribute.String("invoice.id", invoiceID))
	res, err := s.raise(ctx, invoiceID)
	tracing.End(span, err)
	s.metrics.RecordOperation(ctx, "raise", string(domain.KindOf(err)))
	if err != nil {
		s.logFailure(ctx, "raise invoice failed", err, zap.String("invoice_id", invoiceID))
		return domain.RaiseResult{Result: failure(err), InvoiceID: invoiceID}
	}
	return res
}

func (s *Service) raise(ctx context.Context, rawID string) (domain.RaiseResult, error) {
	id, err := parseID(rawID, domain.ErrInvalidInvoiceID)
	if err != nil {
		return domain.RaiseResult{}, err
	}

	n, err := s.repo.MarkRaised(ctx, s.db, id, s.clock.Now().UTC())
	if err != nil {
		return domain.RaiseResult{}, err
	}
	if n == 0 {
		current, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return domain.RaiseResult{}, err
		}
		if current == nil {
			return domain.RaiseResult{}, domain.ErrInvoiceNotFound
		}
		return domain.RaiseResult{}, domain.ErrInvoiceNotRaisable
	}

	s.prom.RecordTransition(metrics.InvoiceStatusGenerated, metrics.InvoiceStatusRaised, 1)
	s.afterRaise(ctx, []snowflake.ID{id})

	return domain.RaiseResult{
		Result:    domain.Result{Success: true, Message: "Invoice raised"},
		InvoiceID: id.String(),
		Raised:    true,
	}, nil
}

// BulkRaiseInvoices raises every listed invoice that is still generated.
// Unknown ids and invoices in other states are skipped, not failed.
func (s *Service) BulkRaiseInvoices(ctx context.Context, invoiceIDs []string) domain.BulkRaiseResult {
	if len(invoiceIDs) == 0 {
		return domain.BulkRaiseResult{Result: failure(domain.ErrEmptyBatch), Raised: []string{}}
	}
	if s.cfg.BulkMaxItems > 0 && len(invoiceIDs) > s.cfg.BulkMaxItems {
		return domain.BulkRaiseResult{Result: failure(domain.ErrBatchTooLarge), Raised: []string{}}
	}

	ctx, span := tracing.Start(ctx, "invoice.bulk_raise", attribute.Int("batch.size", len(invoiceIDs)))

	ids := make([]snowflake.ID, 0, len(invoiceIDs))
	seen := make(map[snowflake.ID]struct{}, len(invoiceIDs))
	for _, raw := range invoiceIDs {
		id, err := parseID(raw, domain.ErrInvalidInvoiceID)
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var raised []snowflake.ID
	var err error
	if len(ids) > 0 {
		raised, err = s.repo.MarkRaisedMany(ctx, s.db, ids, s.clock.Now().UTC())
	}
	tracing.End(span, err)
	s.metrics.RecordOperation(ctx, "bulk_raise", string(domain.KindOf(err)))
	if err != nil {
		s.logFailure(ctx, "bulk raise failed", err, zap.Int("requested", len(invoiceIDs)))
		return domain.BulkRaiseResult{Result: failure(err), Requested: len(invoiceIDs), Raised: []string{}}
	}

	s.metrics.RecordBulkItems(ctx, "bulk_raise", len(raised), len(invoiceIDs)-len(raised))
	s.prom.RecordTransition(metrics.InvoiceStatusGenerated, metrics.InvoiceStatusRaised, len(raised))
	s.afterRaise(ctx, raised)

	out := domain.BulkRaiseResult{
		Result: domain.Result{
			Success: true,
			Message: fmt.Sprintf("Raised %d of %d invoices", len(raised), len(invoiceIDs)),
		},
		Requested: len(invoiceIDs),
		Count:     len(raised),
		Raised:    make([]string, 0, len(raised)),
	}
	for _, id := range raised {
		out.Raised = append(out.Raised, id.String())
	}
	return out
}

// afterRaise records audit entries and hands raised invoices to the
// notifier without waiting for delivery.
func (s *Service) afterRaise(ctx context.Context, ids []snowflake.ID) {
	if len(ids) == 0 {
		return
	}
	invoices, err := s.repo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("reload raised invoices failed", zap.Error(err))
		return
	}
	for _, inv := range invoices {
		s.audit(ctx, auditdomain.ActionInvoiceRaised, inv.ID, map[string]any{
			"invoice_number": inv.InvoiceNumber,
			"order_id":       inv.OrderID.String(),
		})
		s.notify(ctx, *inv)
	}
}

func (s *Service) notify(ctx context.Context, inv domain.Invoice) {
	if s.notifier == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		nctx, cancel := withTimeout(base, s.cfg.NotifyTimeout)
		defer cancel()

		if err := s.notifier.InvoiceRaised(nctx, inv); err != nil {
			logger.WithInvoice(logger.WithContext(nctx, s.log), inv.ID.String(), inv.OrderID.String()).
				Warn("invoice raised notification failed", zap.Error(err))
			s.audit(nctx, auditdomain.ActionInvoiceNotifyFailed, inv.ID, map[string]any{
				"invoice_number": inv.InvoiceNumber,
			})
		}
	}()
}

// DownloadInvoice returns the stored document of an issued invoice. The
// first download moves raised to downloaded; later ones change nothing.
func (s *Service) DownloadInvoice(ctx context.Context, invoiceID string, orderID *string) domain.DocumentResult {
	ctx, span := tracing.Start(ctx, "invoice.download", attribute.String("invoice.id", invoiceID))
	res, err := s.download(ctx, invoiceID, orderID)
	tracing.End(span, err)
	s.metrics.RecordOperation(ctx, "download", string(domain.KindOf(err)))
	if err != nil {
		s.logFailure(ctx, "download invoice failed", err, zap.String("invoice_id", invoiceID))
		return domain.DocumentResult{Result: failure(err), InvoiceID: invoiceID}
	}
	return res
}

func (s *Service) download(ctx context.Context, rawID string, rawOrderID *string) (domain.DocumentResult, error) {
	id, err := parseID(rawID, domain.ErrInvalidInvoiceID)
	if err != nil {
		return domain.DocumentResult{}, err
	}

	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.DocumentResult{}, err
	}
	if inv == nil {
		return domain.DocumentResult{}, domain.ErrInvoiceNotFound
	}
	if rawOrderID != nil {
		orderID, err := parseID(*rawOrderID, domain.ErrInvalidOrderID)
		if err != nil {
			return domain.DocumentResult{}, err
		}
		if orderID != inv.OrderID {
			return domain.DocumentResult{}, domain.ErrInvoiceNotFound
		}
	}
	if !inv.Status.Issued() {
		return domain.DocumentResult{}, domain.ErrInvoiceNotIssued
	}

	if inv.Status == domain.InvoiceStatusRaised {
		n, err := s.repo.MarkDownloaded(ctx, s.db, inv.ID, s.clock.Now().UTC())
		if err != nil {
			return domain.DocumentResult{}, err
		}
		if n == 1 {
			s.prom.RecordTransition(metrics.InvoiceStatusRaised, metrics.InvoiceStatusDownloaded, 1)
			s.audit(ctx, auditdomain.ActionInvoiceDownloaded, inv.ID, map[string]any{
				"invoice_number": inv.InvoiceNumber,
			})
		}
	}

	document := inv.Document
	if document == "" {
		document, err = s.render(ctx, inv)
		if err != nil {
			return domain.DocumentResult{}, err
		}
	}

	return domain.DocumentResult{
		Result:        domain.Result{Success: true, Message: "Invoice ready for download"},
		InvoiceID:     inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Document:      document,
		FileName:      FileName(inv.InvoiceNumber),
	}, nil
}

// PreviewInvoice re-renders from the stored invoice data. It never touches
// status or timestamps and never reads live settings.
func (s *Service) PreviewInvoice(ctx context.Context, invoiceID string) domain.DocumentResult {
	ctx, span := tracing.Start(ctx, "invoice.preview", attribute.String("invoice.id", invoiceID))
	res, err := s.preview(ctx, invoiceID)
	tracing.End(span, err)
	s.metrics.RecordOperation(ctx, "preview", string(domain.KindOf(err)))
	if err != nil {
		s.logFailure(ctx, "preview invoice failed", err, zap.String("invoice_id", invoiceID))
		return domain.DocumentResult{Result: failure(err), InvoiceID: invoiceID}
	}
	return res
}

func (s *Service) preview(ctx context.Context, rawID string) (domain.DocumentResult, error) {
	id, err := parseID(rawID, domain.ErrInvalidInvoiceID)
	if err != nil {
		return domain.DocumentResult{}, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.DocumentResult{}, err
	}
	if inv == nil {
		return domain.DocumentResult{}, domain.ErrInvoiceNotFound
	}

	document, err := s.render(ctx, inv)
	if err != nil {
		return domain.DocumentResult{}, err
	}
	return domain.DocumentResult{
		Result:        domain.Result{Success: true, Message: "Invoice preview ready"},
		InvoiceID:     inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Document:      document,
		FileName:      FileName(inv.InvoiceNumber),
	}, nil
}

func (s *Service) render(ctx context.Context, inv *domain.Invoice) (string, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.ItemTimeout)
	defer cancel()

	document, err := s.renderer.Render(ctx, inv.Data())
	if err != nil {
		if !errors.Is(err, domain.ErrRenderFailed) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", domain.ErrRenderFailed, err)
		}
		return "", err
	}
	return document, nil
}

// GetInvoiceByOrderID finds the customer-visible invoice of an order.
// Invoices that are only generated are reported as not found.
func (s *Service) GetInvoiceByOrderID(ctx context.Context, orderID string) domain.LookupResult {
	id, err := parseID(orderID, domain.ErrInvalidOrderID)
	var inv *domain.Invoice
	if err == nil {
		inv, err = s.repo.FindByOrderIDWithStatus(ctx, s.db, id, domain.IssuedStatuses)
	}
	if err == nil && inv == nil {
		err = domain.ErrInvoiceNotFound
	}
	s.metrics.RecordOperation(ctx, "get_by_order", string(domain.KindOf(err)))
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			s.logFailure(ctx, "lookup invoice failed", err, zap.String("order_id", orderID))
		}
		return domain.LookupResult{Result: failure(err)}
	}

	view := ToView(inv)
	return domain.LookupResult{
		Result:  domain.Result{Success: true, Message: "Invoice found"},
		Invoice: &view,
	}
}

// DeleteInvoice removes an invoice that has not been raised. Raised and
// downloaded invoices are kept permanently.
func (s *Service) DeleteInvoice(ctx context.Context, invoiceID string) domain.DeleteResult {
	ctx, span := tracing.Start(ctx, "invoice.delete", attribute.String("invoice.id", invoiceID))
	err := s.delete(ctx, invoiceID)
	tracing.End(span, err)
	s.metrics.RecordOperation(ctx, "delete", string(domain.KindOf(err)))
	if err != nil {
		s.logFailure(ctx, "delete invoice failed", err, zap.String("invoice_id", invoiceID))
		return domain.DeleteResult{Result: failure(err), InvoiceID: invoiceID}
	}
	return domain.DeleteResult{
		Result:    domain.Result{Success: true, Message: "Invoice deleted"},
		InvoiceID: invoiceID,
	}
}

func (s *Service) delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, domain.ErrInvalidInvoiceID)
	if err != nil {
		return err
	}

	before, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if before == nil {
		return domain.ErrInvoiceNotFound
	}

	n, err := s.repo.DeleteGenerated(ctx, s.db, id)
	if err != nil {
		return err
	}
	if n == 0 {
		current, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrInvoiceNotFound
		}
		return domain.ErrInvoiceNotDeletable
	}

	s.prom.RecordTransition(metrics.InvoiceStatusGenerated, metrics.InvoiceStatusDeleted, 1)
	s.audit(ctx, auditdomain.ActionInvoiceDeleted, id, map[string]any{
		"invoice_number": before.InvoiceNumber,
		"order_id":       before.OrderID.String(),
	})
	return nil
}

func (s *Service) audit(ctx context.Context, action string, invoiceID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	target := invoiceID.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, auditdomain.TargetInvoice, &target, metadata)
}

func (s *Service) logFailure(ctx context.Context, msg string, err error, fields ...zap.Field) {
	log := logger.WithContext(ctx, s.log)
	fields = append(fields, zap.String("code", string(domain.KindOf(err))), zap.Error(err))
	if domain.KindOf(err) == domain.KindInternal {
		log.Error(msg, fields...)
		return
	}
	log.Info(msg, fields...)
}
