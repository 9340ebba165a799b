package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/dongyar/internal/calculator"
	"github.com/mmynk/dongyar/internal/format"
	"github.com/mmynk/dongyar/internal/metrics"
	"github.com/mmynk/dongyar/internal/middleware"
	"github.com/mmynk/dongyar/internal/models"
	"github.com/mmynk/dongyar/internal/storage"
)

// Ensure SettlementService implements SettlementServiceHandler
var _ SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService
type SettlementService struct {
	store   storage.Store
	metrics *metrics.Metrics

	locale   string
	currency string

	// requireIdentity makes saving and fetching settlements require an
	// authenticated subject in the request context.
	requireIdentity bool
}

// Option configures a SettlementService.
type Option func(*SettlementService)

// WithMetrics records settlement outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SettlementService) { s.metrics = m }
}

// WithPresentation sets the default locale and currency unit for rendered text.
func WithPresentation(locale, currency string) Option {
	return func(s *SettlementService) {
		s.locale = locale
		s.currency = currency
	}
}

// WithRequiredIdentity requires an authenticated caller to save or fetch settlements.
func WithRequiredIdentity() Option {
	return func(s *SettlementService) { s.requireIdentity = true }
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store, opts ...Option) *SettlementService {
	s := &SettlementService{
		store:    store,
		locale:   "en",
		currency: format.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settle computes who pays whom and optionally saves the result.
func (s *SettlementService) Settle(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error) {
	entries := make([]calculator.Entry, len(req.Msg.Participants))
	for i, p := range req.Msg.Participants {
		entries[i] = calculator.Entry{Name: p.Name, RawAmount: p.Amount}
	}

	result, err := calculator.Settle(entries)
	if err != nil {
		if errors.Is(err, calculator.ErrInternalInconsistency) {
			s.metrics.RecordSettlement(metrics.OutcomeInternal, len(entries), 0)
			slog.Error("Settle failed", "participants", len(entries), "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		s.metrics.RecordSettlement(metrics.OutcomeInvalid, len(entries), 0)
		slog.Warn("Settle validation failed", "participants", len(entries), "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	s.metrics.RecordSettlement(metrics.OutcomeSettled, len(result.Names), len(result.Transactions))

	locale := s.pickLocale(req.Msg.Locale, "")
	currency := req.Msg.Currency
	if currency == "" {
		currency = s.currency
	}
	view := renderView(format.NewPrinter(locale, currency), result.Names, result.Amounts, result.Transactions, result.EqualShare)

	slog.Debug("Settlement computed",
		"participants", len(result.Names),
		"transfers", len(result.Transactions),
		"total", result.Total,
		"equal_share", result.EqualShare.String(),
	)

	if req.Msg.Save {
		subject := middleware.GetSubject(ctx)
		if s.requireIdentity && subject == "" {
			return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required to save a settlement"))
		}

		settlement := toModel(result, req.Msg.Title, locale, currency, subject)
		if err := s.store.CreateSettlement(ctx, settlement); err != nil {
			slog.Error("CreateSettlement failed", "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		s.metrics.RecordSaved()
		slog.Info("Settlement saved", "settlement_id", settlement.ID, "transfers", len(settlement.Transfers))

		view.SettlementID = settlement.ID
		view.Title = settlement.Title
		view.CreatedAt = settlement.CreatedAt
	}

	return connect.NewResponse(&SettleResponse{Settlement: view}), nil
}

// GetSettlement retrieves a saved settlement by ID.
func (s *SettlementService) GetSettlement(ctx context.Context, req *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error) {
	if s.requireIdentity && middleware.GetSubject(ctx) == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	if req.Msg.SettlementID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("settlement_id is required"))
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, storeError("GetSettlement", req.Msg.SettlementID, err)
	}

	equalShare, err := decimal.NewFromString(settlement.EqualShare)
	if err != nil {
		slog.Error("Stored equal share is malformed", "settlement_id", settlement.ID, "value", settlement.EqualShare)
		return nil, connect.NewError(connect.CodeDataLoss, fmt.Errorf("malformed equal share: %w", err))
	}

	transactions := make([]calculator.Transaction, len(settlement.Transfers))
	for i, t := range settlement.Transfers {
		transactions[i] = calculator.Transaction{From: t.From, To: t.To, Amount: t.Amount}
	}

	locale := s.pickLocale(req.Msg.Locale, settlement.Locale)
	currency := settlement.Currency
	if currency == "" {
		currency = s.currency
	}

	view := renderView(format.NewPrinter(locale, currency), settlement.Names(), settlement.Amounts(), transactions, equalShare)
	view.SettlementID = settlement.ID
	view.Title = settlement.Title
	view.CreatedAt = settlement.CreatedAt

	return connect.NewResponse(&GetSettlementResponse{Settlement: view}), nil
}

// DeleteSettlement removes a saved settlement. When identity is required,
// only the subject that saved it may delete it.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error) {
	subject := middleware.GetSubject(ctx)
	if s.requireIdentity && subject == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	if req.Msg.SettlementID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("settlement_id is required"))
	}

	if s.requireIdentity {
		settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
		if err != nil {
			return nil, storeError("GetSettlement", req.Msg.SettlementID, err)
		}
		if settlement.CreatedBy != "" && settlement.CreatedBy != subject {
			return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("settlement belongs to another user"))
		}
	}

	if err := s.store.DeleteSettlement(ctx, req.Msg.SettlementID); err != nil {
		return nil, storeError("DeleteSettlement", req.Msg.SettlementID, err)
	}
	slog.Info("Settlement deleted", "settlement_id", req.Msg.SettlementID, "subject", subject)

	return connect.NewResponse(&DeleteSettlementResponse{}), nil
}

// storeError maps a storage error to a Connect error.
func storeError(op, settlementID string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	slog.Error(op+" failed", "settlement_id", settlementID, "error", err)
	return connect.NewError(connect.CodeInternal, err)
}

// pickLocale prefers the request's locale, then the stored one, then the default.
func (s *SettlementService) pickLocale(requested, stored string) string {
	switch {
	case requested != "":
		return requested
	case stored != "":
		return stored
	default:
		return s.locale
	}
}

func renderView(p *format.Printer, names []string, amounts []int64, txs []calculator.Transaction, equalShare decimal.Decimal) SettlementView {
	view := SettlementView{
		Transfers:  make([]Transfer, len(txs)),
		Names:      names,
		Amounts:    amounts,
		EqualShare: equalShare.String(),
		Locale:     p.Locale(),
		Currency:   p.Currency(),
	}

	for i, t := range txs {
		view.Transfers[i] = Transfer{From: t.From, To: t.To, Amount: t.Amount, Text: p.Transfer(t)}
	}
	if len(txs) == 0 {
		view.Message = p.NothingToSettle()
	}

	shares := calculator.Shares(names, amounts)
	view.Shares = make([]Share, len(shares))
	for i, sh := range shares {
		view.Shares[i] = Share{Name: sh.Name, Amount: sh.Amount, Percent: sh.Percent.StringFixed(calculator.SharePrecision)}
		view.Total += sh.Amount
	}

	return view
}

func toModel(result *calculator.Result, title, locale, currency, createdBy string) *models.Settlement {
	settlement := &models.Settlement{
		Title:         title,
		Contributions: make([]models.Contribution, len(result.Names)),
		Transfers:     make([]models.Transfer, len(result.Transactions)),
		Total:         result.Total,
		EqualShare:    result.EqualShare.String(),
		Locale:        locale,
		Currency:      currency,
		CreatedBy:     createdBy,
	}
	for i := range result.Names {
		settlement.Contributions[i] = models.Contribution{Name: result.Names[i], Amount: result.Amounts[i]}
	}
	for i, t := range result.Transactions {
		settlement.Transfers[i] = models.Transfer{From: t.From, To: t.To, Amount: t.Amount}
	}
	return settlement
}
