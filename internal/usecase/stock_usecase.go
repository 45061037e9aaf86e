package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/infrastructure/metrics"
	"github.com/iho/cashstock/internal/selector"
)

// StockUseCase covers the read side of the ledger plus the administrative
// mutations that bypass the selector: deposits and explicit withdrawals.
type StockUseCase struct {
	txManager    TransactionManager
	kioskRepo    KioskRepository
	stockRepo    StockRepository
	movementRepo MovementRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	cache        Cache
	metrics      *metrics.Metrics
}

// NewStockUseCase creates a new StockUseCase.
func NewStockUseCase(
	txManager TransactionManager,
	kioskRepo KioskRepository,
	stockRepo StockRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *StockUseCase {
	return &StockUseCase{
		txManager:    txManager,
		kioskRepo:    kioskRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		cache:        cache,
		metrics:      metrics,
	}
}

// StockStatus is the read-side view of one kiosk/currency pair.
type StockStatus struct {
	KioskID    string
	Currency   string
	Levels     []*domain.StockLevel
	TotalValue int64
	FreeValue  int64
	AsOf       time.Time
}

// Status returns per-denomination counts and aggregate values. Served from a
// short-TTL cache when one is configured; the cache is advisory only and is
// dropped on administrative mutations.
func (uc *StockUseCase) Status(ctx context.Context, kioskID, currency string) (*StockStatus, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	if _, err := uc.kioskRepo.GetByID(ctx, kioskID); err != nil {
		return nil, err
	}

	cacheKey := stockStatusCacheKey(kioskID, currency)
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			var status StockStatus
			if err := json.Unmarshal(cached, &status); err == nil {
				return &status, nil
			}
		}
	}

	levels, err := uc.stockRepo.List(ctx, kioskID, currency)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, domain.ErrStockNotFound
	}

	status := &StockStatus{
		KioskID:  kioskID,
		Currency: currency,
		Levels:   levels,
		AsOf:     time.Now().UTC(),
	}
	for _, level := range levels {
		status.TotalValue += level.Value()
		status.FreeValue += level.FreeValue()
	}

	if uc.metrics != nil {
		uc.metrics.StockFreeValue.WithLabelValues(kioskID, currency).Set(float64(status.FreeValue))
	}

	if uc.cache != nil {
		if encoded, err := json.Marshal(status); err == nil {
			_ = uc.cache.Set(ctx, cacheKey, encoded, StockStatusCacheTTL)
		}
	}

	return status, nil
}

// Composable reports whether any exact combination exists for the amount
// given current free stock. Advisory, same staleness contract as Quote.
func (uc *StockUseCase) Composable(ctx context.Context, kioskID, currency string, amount int64) (bool, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if amount < 0 {
		return false, domain.ErrInvalidAmount
	}
	if amount > domain.MaxReserveAmount {
		return false, domain.ErrAmountTooLarge
	}
	if err := domain.ValidateCurrency(currency); err != nil {
		return false, err
	}
	if _, err := uc.kioskRepo.GetByID(ctx, kioskID); err != nil {
		return false, err
	}

	levels, err := uc.stockRepo.List(ctx, kioskID, currency)
	if err != nil {
		return false, err
	}
	if len(levels) == 0 {
		return false, domain.ErrStockNotFound
	}

	snapshot := make(map[int64]int64, len(levels))
	for _, level := range levels {
		snapshot[level.Denomination] = level.Free()
	}

	if _, err := selector.Select(snapshot, amount); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// DepositInput represents input for loading cash into a kiosk.
type DepositInput struct {
	KioskID  string
	Currency string
	Lines    []domain.MovementLine
	Reason   string
}

// Deposit records an inbound movement and settles it immediately: total rises
// by the line quantities. Missing stock rows are created, so deposit doubles
// as denomination provisioning.
func (uc *StockUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Movement, error) {
	movement, err := uc.adjust(ctx, input.KioskID, input.Currency, input.Lines, input.Reason, domain.DirectionInbound)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.DepositsCreated.Inc()
		uc.metrics.StockOperations.WithLabelValues("deposit").Inc()
	}

	return movement, nil
}

// WithdrawInput represents input for removing cash from a kiosk.
type WithdrawInput struct {
	KioskID  string
	Currency string
	Lines    []domain.MovementLine
	Reason   string
}

// Withdraw records an explicit-denomination outbound movement for ops
// tooling, settled immediately. All-or-nothing: one short denomination fails
// the whole call.
func (uc *StockUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Movement, error) {
	movement, err := uc.adjust(ctx, input.KioskID, input.Currency, input.Lines, input.Reason, domain.DirectionOutbound)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.WithdrawalsCreated.Inc()
		uc.metrics.StockOperations.WithLabelValues("withdraw").Inc()
	}

	return movement, nil
}

func (uc *StockUseCase) adjust(
	ctx context.Context,
	kioskID, currencyCode string,
	lines []domain.MovementLine,
	reason string,
	direction domain.MovementDirection,
) (*domain.Movement, error) {
	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))

	if err := domain.ValidateCurrency(currencyCode); err != nil {
		return nil, err
	}
	if err := domain.ValidateLines(lines); err != nil {
		return nil, err
	}

	currency, err := domain.CurrencyByCode(currencyCode)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := domain.ValidateDenomination(currency, line.Denomination); err != nil {
			return nil, err
		}
	}

	kiosk, err := uc.kioskRepo.GetByID(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	if !kiosk.Active {
		return nil, domain.ErrKioskInactive
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	levels, err := uc.stockRepo.ListForUpdate(txCtx, tx, kioskID, currencyCode)
	if err != nil {
		return nil, err
	}

	byDenomination := make(map[int64]*domain.StockLevel, len(levels))
	for _, level := range levels {
		byDenomination[level.Denomination] = level
	}

	now := time.Now().UTC()

	movement := &domain.Movement{
		ID:          uc.idGen.Generate(),
		KioskID:     kioskID,
		Currency:    currencyCode,
		Direction:   direction,
		Status:      domain.MovementStatusConfirmed,
		Reason:      reason,
		CreatedAt:   now,
		ProcessedAt: &now,
	}

	for _, line := range lines {
		level, ok := byDenomination[line.Denomination]

		switch direction {
		case domain.DirectionInbound:
			if !ok {
				level = &domain.StockLevel{
					ID:           uc.idGen.Generate(),
					KioskID:      kioskID,
					Currency:     currencyCode,
					Denomination: line.Denomination,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := level.Deposit(line.Quantity); err != nil {
					return nil, err
				}
				if err := uc.stockRepo.CreateTx(txCtx, tx, level); err != nil {
					return nil, err
				}
			} else {
				if err := level.Deposit(line.Quantity); err != nil {
					return nil, err
				}
				if err := uc.stockRepo.UpdateCounts(txCtx, tx, level.ID, level.Total, level.Reserved, now); err != nil {
					return nil, err
				}
			}
		case domain.DirectionOutbound:
			if !ok {
				return nil, fmt.Errorf("%w: denomination %d not stocked", domain.ErrInsufficientStock, line.Denomination)
			}
			if err := level.Withdraw(line.Quantity); err != nil {
				return nil, err
			}
			if err := uc.stockRepo.UpdateCounts(txCtx, tx, level.ID, level.Total, level.Reserved, now); err != nil {
				return nil, err
			}
		}

		movement.Lines = append(movement.Lines, domain.MovementLine{
			ID:           uc.idGen.Generate(),
			MovementID:   movement.ID,
			Denomination: line.Denomination,
			Quantity:     line.Quantity,
		})
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	if err := uc.movementRepo.Create(txCtx, tx, movement); err != nil {
		return nil, err
	}

	eventType := domain.EventTypeStockDeposited
	if direction == domain.DirectionOutbound {
		eventType = domain.EventTypeStockWithdrawn
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   movement.ID,
		AggregateType: domain.AggregateTypeStock,
		EventType:     eventType,
		Payload: map[string]any{
			"movement_id": movement.ID,
			"kiosk_id":    kioskID,
			"currency":    currencyCode,
			"amount":      currency.FromMinorUnits(movement.Amount()).String(),
			"pieces":      movement.Combination().Pieces(),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, stockStatusCacheKey(kioskID, currencyCode))
	}

	return movement, nil
}

// GetMovement retrieves a movement with its lines.
func (uc *StockUseCase) GetMovement(ctx context.Context, id string) (*domain.Movement, error) {
	return uc.movementRepo.GetByID(ctx, id)
}

// ListMovementsInput represents input for listing movements.
type ListMovementsInput struct {
	KioskID  string
	Currency string
	Status   string
	Limit    int
	Offset   int
}

// ListMovements returns movement history, newest first.
func (uc *StockUseCase) ListMovements(ctx context.Context, input ListMovementsInput) ([]*domain.Movement, error) {
	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	filter := domain.MovementFilter{
		KioskID: input.KioskID,
		Limit:   limit,
		Offset:  offset,
	}

	if input.Currency != "" {
		currency := strings.ToUpper(strings.TrimSpace(input.Currency))
		if err := domain.ValidateCurrency(currency); err != nil {
			return nil, err
		}
		filter.Currency = currency
	}

	if input.Status != "" {
		status := domain.MovementStatus(input.Status)
		switch status {
		case domain.MovementStatusPending, domain.MovementStatusConfirmed, domain.MovementStatusCancelled:
			filter.Status = status
		default:
			return nil, domain.ErrInvalidStatus
		}
	}

	return uc.movementRepo.List(ctx, filter)
}

func stockStatusCacheKey(kioskID, currency string) string {
	return fmt.Sprintf("stock_status:%s:%s", kioskID, currency)
}
