package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/infrastructure/metrics"
	"github.com/iho/cashstock/internal/selector"
)

// ReservationUseCase drives the reserve → confirm/cancel lifecycle over the
// stock ledger and the movement log.
type ReservationUseCase struct {
	txManager    TransactionManager
	kioskRepo    KioskRepository
	stockRepo    StockRepository
	movementRepo MovementRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      *metrics.Metrics
}

// NewReservationUseCase creates a new ReservationUseCase.
func NewReservationUseCase(
	txManager TransactionManager,
	kioskRepo KioskRepository,
	stockRepo StockRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *ReservationUseCase {
	return &ReservationUseCase{
		txManager:    txManager,
		kioskRepo:    kioskRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		metrics:      metrics,
	}
}

// WithRetrier makes the lifecycle operations retry their transaction on
// transient database failures. Safe because each attempt re-reads state under
// fresh row locks.
func (uc *ReservationUseCase) WithRetrier(retrier Retrier) *ReservationUseCase {
	uc.retrier = retrier
	return uc
}

// Quote computes an advisory combination against current free stock without
// reserving anything. The result may be stale by the time the caller reserves;
// Reserve re-validates under the pair's row locks.
func (uc *ReservationUseCase) Quote(ctx context.Context, kioskID, currency string, amount int64) (domain.Combination, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if amount < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if amount > domain.MaxReserveAmount {
		return nil, domain.ErrAmountTooLarge
	}
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	if _, err := uc.kioskRepo.GetByID(ctx, kioskID); err != nil {
		return nil, err
	}

	levels, err := uc.stockRepo.List(ctx, kioskID, currency)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, domain.ErrStockNotFound
	}

	return uc.selectFromLevels(levels, amount)
}

// ReserveInput represents input for creating a reservation.
type ReserveInput struct {
	TransactionRef string
	KioskID        string
	Currency       string
	Amount         int64
	Mode           domain.ReserveMode
}

// Reserve picks an exact combination for the amount and commits it to a
// movement, all inside one transaction holding the pair's stock row locks.
// Deferred reservations stay pending until a payment signal arrives; immediate
// ones settle on the spot.
func (uc *ReservationUseCase) Reserve(ctx context.Context, input ReserveInput) (*domain.Movement, error) {
	if uc.retrier == nil {
		return uc.reserve(ctx, input)
	}

	var movement *domain.Movement
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		movement, err = uc.reserve(ctx, input)
		return err
	})
	return movement, err
}

func (uc *ReservationUseCase) reserve(ctx context.Context, input ReserveInput) (*domain.Movement, error) {
	start := time.Now()

	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))

	if err := domain.ValidateMode(input.Mode); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		uc.countReservationError(err)
		return nil, err
	}
	// A deferred movement is resolved later by reference; it must carry one.
	if input.Mode == domain.ReserveModeDeferred || input.TransactionRef != "" {
		if err := domain.ValidateTransactionRef(input.TransactionRef); err != nil {
			return nil, err
		}
	}

	currency, err := domain.CurrencyByCode(input.Currency)
	if err != nil {
		return nil, err
	}

	kiosk, err := uc.kioskRepo.GetByID(ctx, input.KioskID)
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

	// Lock the pair's stock rows. snapshot → select → reserve is atomic with
	// respect to any other reservation on the same (kiosk, currency).
	levels, err := uc.stockRepo.ListForUpdate(txCtx, tx, input.KioskID, input.Currency)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, domain.ErrStockNotFound
	}

	combination, err := uc.selectFromLevels(levels, input.Amount)
	if err != nil {
		uc.countReservationError(err)
		return nil, err
	}

	byDenomination := make(map[int64]*domain.StockLevel, len(levels))
	for _, level := range levels {
		byDenomination[level.Denomination] = level
	}

	now := time.Now().UTC()

	status := domain.MovementStatusPending
	var processedAt *time.Time
	if input.Mode == domain.ReserveModeImmediate {
		status = domain.MovementStatusConfirmed
		processedAt = &now
	}

	movement := &domain.Movement{
		ID:             uc.idGen.Generate(),
		KioskID:        input.KioskID,
		Currency:       input.Currency,
		Direction:      domain.DirectionOutbound,
		Status:         status,
		TransactionRef: input.TransactionRef,
		CreatedAt:      now,
		ProcessedAt:    processedAt,
	}

	for _, denomination := range combination.Denominations() {
		quantity := combination[denomination]

		level, ok := byDenomination[denomination]
		if !ok {
			return nil, domain.ErrInconsistentState
		}

		if err := level.Reserve(quantity); err != nil {
			uc.countReservationError(err)
			return nil, err
		}
		if input.Mode == domain.ReserveModeImmediate {
			if err := level.Settle(quantity); err != nil {
				return nil, err
			}
		}

		if err := uc.stockRepo.UpdateCounts(txCtx, tx, level.ID, level.Total, level.Reserved, now); err != nil {
			return nil, err
		}

		movement.Lines = append(movement.Lines, domain.MovementLine{
			ID:           uc.idGen.Generate(),
			MovementID:   movement.ID,
			Denomination: denomination,
			Quantity:     quantity,
		})
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	if err := uc.movementRepo.Create(txCtx, tx, movement); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   movement.ID,
		AggregateType: domain.AggregateTypeMovement,
		EventType:     domain.EventTypeMovementReserved,
		Payload: map[string]any{
			"movement_id":     movement.ID,
			"kiosk_id":        movement.KioskID,
			"currency":        movement.Currency,
			"amount":          currency.FromMinorUnits(input.Amount).String(),
			"pieces":          combination.Pieces(),
			"mode":            string(input.Mode),
			"transaction_ref": input.TransactionRef,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if input.Mode == domain.ReserveModeImmediate {
		confirmed := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   movement.ID,
			AggregateType: domain.AggregateTypeMovement,
			EventType:     domain.EventTypeMovementConfirmed,
			Payload: map[string]any{
				"movement_id": movement.ID,
				"kiosk_id":    movement.KioskID,
				"currency":    movement.Currency,
				"amount":      currency.FromMinorUnits(input.Amount).String(),
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, confirmed); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReservationsCreated.Inc()
		uc.metrics.ReservationAmount.Observe(float64(input.Amount))
		uc.metrics.SelectorPieces.Observe(float64(combination.Pieces()))
		uc.metrics.ReservationDuration.Observe(time.Since(start).Seconds())
		if input.Mode == domain.ReserveModeImmediate {
			uc.metrics.MovementsConfirmed.Inc()
		}
	}

	return movement, nil
}

// Confirm settles a pending movement: total and reserved both drop by the
// line quantities. Free stock is unaffected, it was already adjusted at
// reservation time.
func (uc *ReservationUseCase) Confirm(ctx context.Context, movementID string) (*domain.Movement, error) {
	if uc.retrier == nil {
		return uc.confirm(ctx, movementID)
	}

	var movement *domain.Movement
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		movement, err = uc.confirm(ctx, movementID)
		return err
	})
	return movement, err
}

func (uc *ReservationUseCase) confirm(ctx context.Context, movementID string) (*domain.Movement, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Lock the movement row first. Only one caller may move it out of pending.
	movement, err := uc.movementRepo.GetByIDForUpdate(txCtx, tx, movementID)
	if err != nil {
		return nil, err
	}

	if !movement.IsPending() {
		return nil, domain.ErrInvalidStateTransition
	}

	levels, err := uc.stockRepo.ListForUpdate(txCtx, tx, movement.KioskID, movement.Currency)
	if err != nil {
		return nil, err
	}

	byDenomination := make(map[int64]*domain.StockLevel, len(levels))
	for _, level := range levels {
		byDenomination[level.Denomination] = level
	}

	now := time.Now().UTC()

	for _, line := range movement.Lines {
		level, ok := byDenomination[line.Denomination]
		if !ok {
			return nil, domain.ErrInconsistentState
		}
		if err := level.Settle(line.Quantity); err != nil {
			return nil, err
		}
		if err := uc.stockRepo.UpdateCounts(txCtx, tx, level.ID, level.Total, level.Reserved, now); err != nil {
			return nil, err
		}
	}

	if err := uc.movementRepo.UpdateStatus(txCtx, tx, movement.ID, domain.MovementStatusConfirmed, "", now); err != nil {
		return nil, err
	}

	movement.Status = domain.MovementStatusConfirmed
	movement.ProcessedAt = &now

	currency, err := domain.CurrencyByCode(movement.Currency)
	if err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   movement.ID,
		AggregateType: domain.AggregateTypeMovement,
		EventType:     domain.EventTypeMovementConfirmed,
		Payload: map[string]any{
			"movement_id": movement.ID,
			"kiosk_id":    movement.KioskID,
			"currency":    movement.Currency,
			"amount":      currency.FromMinorUnits(movement.Amount()).String(),
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

	if uc.metrics != nil {
		uc.metrics.MovementsConfirmed.Inc()
	}

	return movement, nil
}

// Cancel releases a pending movement's reserved stock back to free.
// Cancelling an already-cancelled movement is a success no-op; cancelling a
// confirmed one is rejected.
func (uc *ReservationUseCase) Cancel(ctx context.Context, movementID, reason string) (*domain.Movement, error) {
	if uc.retrier == nil {
		return uc.cancel(ctx, movementID, reason)
	}

	var movement *domain.Movement
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		movement, err = uc.cancel(ctx, movementID, reason)
		return err
	})
	return movement, err
}

func (uc *ReservationUseCase) cancel(ctx context.Context, movementID, reason string) (*domain.Movement, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	movement, err := uc.movementRepo.GetByIDForUpdate(txCtx, tx, movementID)
	if err != nil {
		return nil, err
	}

	if movement.Status == domain.MovementStatusCancelled {
		return movement, nil
	}
	if !movement.IsPending() {
		return nil, domain.ErrInvalidStateTransition
	}

	levels, err := uc.stockRepo.ListForUpdate(txCtx, tx, movement.KioskID, movement.Currency)
	if err != nil {
		return nil, err
	}

	byDenomination := make(map[int64]*domain.StockLevel, len(levels))
	for _, level := range levels {
		byDenomination[level.Denomination] = level
	}

	now := time.Now().UTC()

	for _, line := range movement.Lines {
		level, ok := byDenomination[line.Denomination]
		if !ok {
			return nil, domain.ErrInconsistentState
		}
		if err := level.Release(line.Quantity); err != nil {
			return nil, err
		}
		if err := uc.stockRepo.UpdateCounts(txCtx, tx, level.ID, level.Total, level.Reserved, now); err != nil {
			return nil, err
		}
	}

	if err := uc.movementRepo.UpdateStatus(txCtx, tx, movement.ID, domain.MovementStatusCancelled, reason, now); err != nil {
		return nil, err
	}

	movement.Status = domain.MovementStatusCancelled
	movement.Reason = reason
	movement.ProcessedAt = &now

	currency, err := domain.CurrencyByCode(movement.Currency)
	if err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   movement.ID,
		AggregateType: domain.AggregateTypeMovement,
		EventType:     domain.EventTypeMovementCancelled,
		Payload: map[string]any{
			"movement_id": movement.ID,
			"kiosk_id":    movement.KioskID,
			"currency":    movement.Currency,
			"amount":      currency.FromMinorUnits(movement.Amount()).String(),
			"reason":      reason,
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

	if uc.metrics != nil {
		uc.metrics.MovementsCancelled.Inc()
	}

	return movement, nil
}

// ResolvePayment consumes the payment collaborator's outcome signal and drives
// the pending movement for the reference to its terminal state.
func (uc *ReservationUseCase) ResolvePayment(ctx context.Context, transactionRef string, outcome domain.PaymentOutcome) (*domain.Movement, error) {
	if err := domain.ValidateTransactionRef(transactionRef); err != nil {
		return nil, err
	}
	if err := domain.ValidateOutcome(outcome); err != nil {
		return nil, err
	}

	movement, err := uc.movementRepo.GetPendingByTransactionRef(ctx, transactionRef)
	if err != nil {
		return nil, err
	}

	if outcome == domain.PaymentSucceeded {
		return uc.Confirm(ctx, movement.ID)
	}

	return uc.Cancel(ctx, movement.ID, "payment failed")
}

func (uc *ReservationUseCase) selectFromLevels(levels []*domain.StockLevel, amount int64) (domain.Combination, error) {
	snapshot := make(map[int64]int64, len(levels))
	for _, level := range levels {
		snapshot[level.Denomination] = level.Free()
	}

	start := time.Now()
	combination, err := selector.Select(snapshot, amount)

	if uc.metrics != nil {
		uc.metrics.SelectorDuration.Observe(time.Since(start).Seconds())
		result := "found"
		if err != nil {
			result = "not_found"
		}
		uc.metrics.SelectorRuns.WithLabelValues(result).Inc()
	}

	if err != nil {
		return nil, err
	}

	return combination, nil
}

func (uc *ReservationUseCase) countReservationError(err error) {
	if uc.metrics == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		uc.metrics.ReservationErrors.WithLabelValues("insufficient_stock").Inc()
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrAmountTooLarge):
		uc.metrics.ReservationErrors.WithLabelValues("invalid_amount").Inc()
	default:
		uc.metrics.ReservationErrors.WithLabelValues("internal").Inc()
	}
}
