package usecase_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
	"github.com/iho/cashstock/internal/usecase/mocks"
)

const (
	testKioskID  = "kiosk-1"
	testCurrency = "USD"
)

type reservationFixture struct {
	kioskRepo    *mocks.MockKioskRepository
	stockRepo    *mocks.MockStockRepository
	movementRepo *mocks.MockMovementRepository
	outboxRepo   *mocks.MockOutboxRepository
	uc           *usecase.ReservationUseCase
}

// newReservationFixture wires a usecase against in-memory mocks with the
// given free counts at kiosk-1/USD. Level ids follow "lvl-<denomination>".
func newReservationFixture(counts map[int64]int64) *reservationFixture {
	kioskRepo := mocks.NewMockKioskRepository()
	stockRepo := mocks.NewMockStockRepository()
	movementRepo := mocks.NewMockMovementRepository()
	outboxRepo := mocks.NewMockOutboxRepository()

	now := time.Now().UTC()
	_ = kioskRepo.Create(context.Background(), &domain.Kiosk{
		ID:        testKioskID,
		Name:      "Airport Terminal B",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})

	for denomination, total := range counts {
		stockRepo.Seed(&domain.StockLevel{
			ID:           levelID(denomination),
			KioskID:      testKioskID,
			Currency:     testCurrency,
			Denomination: denomination,
			Total:        total,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	uc := usecase.NewReservationUseCase(
		mocks.NewMockTransactionManager(),
		kioskRepo,
		stockRepo,
		movementRepo,
		outboxRepo,
		mocks.NewMockIDGenerator(),
		nil,
	)

	return &reservationFixture{
		kioskRepo:    kioskRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		uc:           uc,
	}
}

func levelID(denomination int64) string {
	return "lvl-" + strconv.FormatInt(denomination, 10)
}

func TestReservationUseCase_Quote(t *testing.T) {
	tests := []struct {
		name        string
		counts      map[int64]int64
		kioskID     string
		currency    string
		amount      int64
		want        domain.Combination
		expectError bool
		errorType   error
	}{
		{
			name:     "exact combination within caps",
			counts:   map[int64]int64{10000: 5, 5000: 3, 2000: 10},
			kioskID:  testKioskID,
			currency: "USD",
			amount:   37000,
			want:     domain.Combination{10000: 3, 5000: 1, 2000: 1},
		},
		{
			name:     "zero amount yields empty combination",
			counts:   map[int64]int64{10000: 5},
			kioskID:  testKioskID,
			currency: "USD",
			amount:   0,
			want:     domain.Combination{},
		},
		{
			name:        "negative amount rejected",
			counts:      map[int64]int64{10000: 5},
			kioskID:     testKioskID,
			currency:    "USD",
			amount:      -1,
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name:        "no exact partition",
			counts:      map[int64]int64{10000: 1, 5000: 1},
			kioskID:     testKioskID,
			currency:    "USD",
			amount:      12000,
			expectError: true,
			errorType:   domain.ErrInsufficientStock,
		},
		{
			name:        "unknown kiosk",
			counts:      map[int64]int64{10000: 5},
			kioskID:     "kiosk-ghost",
			currency:    "USD",
			amount:      10000,
			expectError: true,
			errorType:   domain.ErrKioskNotFound,
		},
		{
			name:        "unknown currency",
			counts:      map[int64]int64{10000: 5},
			kioskID:     testKioskID,
			currency:    "XXX",
			amount:      10000,
			expectError: true,
			errorType:   domain.ErrCurrencyNotFound,
		},
		{
			name:        "currency not stocked at kiosk",
			counts:      map[int64]int64{10000: 5},
			kioskID:     testKioskID,
			currency:    "EUR",
			amount:      10000,
			expectError: true,
			errorType:   domain.ErrStockNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReservationFixture(tt.counts)

			combination, err := f.uc.Quote(context.Background(), tt.kioskID, tt.currency, tt.amount)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(combination) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, combination)
			}
			for denomination, quantity := range tt.want {
				if combination[denomination] != quantity {
					t.Fatalf("expected %v, got %v", tt.want, combination)
				}
			}
		})
	}
}

func TestReservationUseCase_QuoteDoesNotReserve(t *testing.T) {
	f := newReservationFixture(map[int64]int64{10000: 5})

	if _, err := f.uc.Quote(context.Background(), testKioskID, "USD", 30000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	level := f.stockRepo.Level(levelID(10000))
	if level.Reserved != 0 || level.Total != 5 {
		t.Fatalf("quote touched counters: total=%d reserved=%d", level.Total, level.Reserved)
	}
	if events := f.outboxRepo.Events(); len(events) != 0 {
		t.Fatalf("quote emitted %d events", len(events))
	}
}

func TestReservationUseCase_Reserve(t *testing.T) {
	tests := []struct {
		name        string
		counts      map[int64]int64
		input       usecase.ReserveInput
		expectError bool
		errorType   error
	}{
		{
			name:   "deferred reservation",
			counts: map[int64]int64{10000: 5, 5000: 3, 2000: 10},
			input: usecase.ReserveInput{
				TransactionRef: "pay-1",
				KioskID:        testKioskID,
				Currency:       "USD",
				Amount:         37000,
				Mode:           domain.ReserveModeDeferred,
			},
		},
		{
			name:   "lowercase currency accepted",
			counts: map[int64]int64{10000: 5},
			input: usecase.ReserveInput{
				TransactionRef: "pay-2",
				KioskID:        testKioskID,
				Currency:       "usd",
				Amount:         10000,
				Mode:           domain.ReserveModeDeferred,
			},
		},
		{
			name:   "insufficient stock creates nothing",
			counts: map[int64]int64{10000: 1, 5000: 1},
			input: usecase.ReserveInput{
				TransactionRef: "pay-3",
				KioskID:        testKioskID,
				Currency:       "USD",
				Amount:         20000,
				Mode:           domain.ReserveModeDeferred,
			},
			expectError: true,
			errorType:   domain.ErrInsufficientStock,
		},
		{
			name:   "zero amount rejected",
			counts: map[int64]int64{10000: 5},
			input: usecase.ReserveInput{
				TransactionRef: "pay-4",
				KioskID:        testKioskID,
				Currency:       "USD",
				Amount:         0,
				Mode:           domain.ReserveModeDeferred,
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name:   "unknown mode rejected",
			counts: map[int64]int64{10000: 5},
			input: usecase.ReserveInput{
				TransactionRef: "pay-5",
				KioskID:        testKioskID,
				Currency:       "USD",
				Amount:         10000,
				Mode:           domain.ReserveMode("eventual"),
			},
			expectError: true,
			errorType:   domain.ErrInvalidMode,
		},
		{
			name:   "deferred without reference rejected",
			counts: map[int64]int64{10000: 5},
			input: usecase.ReserveInput{
				KioskID:  testKioskID,
				Currency: "USD",
				Amount:   10000,
				Mode:     domain.ReserveModeDeferred,
			},
			expectError: true,
			errorType:   domain.ErrMissingTransactionRef,
		},
		{
			name:   "unknown kiosk rejected",
			counts: map[int64]int64{10000: 5},
			input: usecase.ReserveInput{
				TransactionRef: "pay-6",
				KioskID:        "kiosk-ghost",
				Currency:       "USD",
				Amount:         10000,
				Mode:           domain.ReserveModeDeferred,
			},
			expectError: true,
			errorType:   domain.ErrKioskNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReservationFixture(tt.counts)

			movement, err := f.uc.Reserve(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Fatalf("expected error %v, got %v", tt.errorType, err)
				}
				if movements, _ := f.movementRepo.List(context.Background(), domain.MovementFilter{}); len(movements) != 0 {
					t.Fatalf("failed reserve recorded %d movements", len(movements))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if movement == nil {
				t.Fatal("expected movement, got nil")
			}
			if movement.Amount() != tt.input.Amount {
				t.Fatalf("movement amount %d, want %d", movement.Amount(), tt.input.Amount)
			}
			if movement.Status != domain.MovementStatusPending {
				t.Fatalf("expected pending movement, got %s", movement.Status)
			}
			if movement.Direction != domain.DirectionOutbound {
				t.Fatalf("expected outbound movement, got %s", movement.Direction)
			}
		})
	}
}

func TestReservationUseCase_ReserveDeferredAdjustsCounters(t *testing.T) {
	f := newReservationFixture(map[int64]int64{10000: 5, 5000: 3, 2000: 10})

	movement, err := f.uc.Reserve(context.Background(), usecase.ReserveInput{
		TransactionRef: "pay-42",
		KioskID:        testKioskID,
		Currency:       "USD",
		Amount:         37000,
		Mode:           domain.ReserveModeDeferred,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantTotals := map[int64]int64{10000: 5, 5000: 3, 2000: 10}
	wantReserved := map[int64]int64{10000: 3, 5000: 1, 2000: 1}
	for denomination, want := range wantReserved {
		level := f.stockRepo.Level(levelID(denomination))
		if level.Reserved != want {
			t.Errorf("denomination %d: reserved=%d, want %d", denomination, level.Reserved, want)
		}
		if level.Total != wantTotals[denomination] {
			t.Errorf("denomination %d: total changed to %d", denomination, level.Total)
		}
	}

	if got := movement.Combination(); got.Pieces() != 5 {
		t.Errorf("expected 5 pieces, got %d", got.Pieces())
	}
	if movement.ProcessedAt != nil {
		t.Error("pending movement must not carry processedAt")
	}

	events := f.outboxRepo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(events))
	}
	if events[0].EventType != domain.EventTypeMovementReserved {
		t.Errorf("expected %s, got %s", domain.EventTypeMovementReserved, events[0].EventType)
	}
	if events[0].Payload["amount"] != "370" {
		t.Errorf("expected amount payload 370, got %v", events[0].Payload["amount"])
	}
}

func TestReservationUseCase_ReserveImmediateSettles(t *testing.T) {
	f := newReservationFixture(map[int64]int64{10000: 5})

	movement, err := f.uc.Reserve(context.Background(), usecase.ReserveInput{
		KioskID:  testKioskID,
		Currency: "USD",
		Amount:   30000,
		Mode:     domain.ReserveModeImmediate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if movement.Status != domain.MovementStatusConfirmed {
		t.Fatalf("expected confirmed movement, got %s", movement.Status)
	}
	if movement.ProcessedAt == nil {
		t.Fatal("immediate movement must carry processedAt")
	}

	level := f.stockRepo.Level(levelID(10000))
	if level.Total != 2 || level.Reserved != 0 {
		t.Fatalf("expected total=2 reserved=0, got total=%d reserved=%d", level.Total, level.Reserved)
	}

	events := f.outboxRepo.Events()
	if len(events) != 2 {
		t.Fatalf("expected reserved+confirmed events, got %d", len(events))
	}
	if events[1].EventType != domain.EventTypeMovementConfirmed {
		t.Errorf("expected %s, got %s", domain.EventTypeMovementConfirmed, events[1].EventType)
	}
}

func TestReservationUseCase_ReserveRevalidatesFreeStock(t *testing.T) {
	// A prior pending reservation holds 2 of 3 notes; only one is free even
	// though total value looks sufficient.
	f := newReservationFixture(nil)
	f.stockRepo.Seed(&domain.StockLevel{
		ID:           levelID(10000),
		KioskID:      testKioskID,
		Currency:     testCurrency,
		Denomination: 10000,
		Total:        3,
		Reserved:     2,
	})

	_, err := f.uc.Reserve(context.Background(), usecase.ReserveInput{
		TransactionRef: "pay-racer",
		KioskID:        testKioskID,
		Currency:       "USD",
		Amount:         20000,
		Mode:           domain.ReserveModeDeferred,
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	level := f.stockRepo.Level(levelID(10000))
	if level.Total != 3 || level.Reserved != 2 {
		t.Fatalf("failed reserve mutated counters: total=%d reserved=%d", level.Total, level.Reserved)
	}
}

func TestReservationUseCase_ReserveInactiveKiosk(t *testing.T) {
	f := newReservationFixture(map[int64]int64{10000: 5})
	_ = f.kioskRepo.SetActive(context.Background(), testKioskID, false, time.Now().UTC())

	_, err := f.uc.Reserve(context.Background(), usecase.ReserveInput{
		TransactionRef: "pay-7",
		KioskID:        testKioskID,
		Currency:       "USD",
		Amount:         10000,
		Mode:           domain.ReserveModeDeferred,
	})
	if !errors.Is(err, domain.ErrKioskInactive) {
		t.Fatalf("expected ErrKioskInactive, got %v", err)
	}
}

func TestReservationUseCase_ConfirmLifecycle(t *testing.T) {
	f := newReservationFixture(map[int64]int64{10000: 5})

	movement, err := f.uc.Reserve(context.Background(), usecase.ReserveInput{
		TransactionRef: "pay-8",
		KioskID:        testKioskID,
		Currency:       "USD",
		Amount:         20000,
		Mode:           domain.ReserveModeDeferred,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	level := f.stockRepo.Level(levelID(10000))
	freeBeforeConfirm := level.Free()

	confirmed, err := f.uc.Confirm(context.Background(), movement.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != domain.MovementStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}
	if confirmed.ProcessedAt == nil {
		t.Fatal("confirmed movement must carry processedAt")
	}

	if level.Total != 3 || level.Reserved != 0 {
		t.Fatalf("expected total=3 reserved=0, got total=%d reserved=%d", level.Total, level.Reserved)
	}
	if level.Free() != freeBeforeConfirm {
		t.Fatalf("confirm changed free stock: %d != %d", level.Free(), freeBeforeConfirm)
	}

	// Second confirm must observe the terminal state.
	if _, err := f.uc.Confirm(context.Background(), movement.ID); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestReservationUseCase_CancelLifecycle(t *testing.T) {
	f := newReservationFixture(map[int64]int64{10000: 5})

	movement, err := f.uc.Reserve(context.Background(), usecase.ReserveInput{
		TransactionRef: "pay-9",
		KioskID:        testKioskID,
		Currency:       "USD",
		Amount:         20000,
		Mode:           domain.ReserveModeDeferred,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled, err := f.uc.Cancel(context.Background(), movement.ID, "customer walked away")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != domain.MovementStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.Reason != "customer walked away" {
		t.Fatalf("expected reason to be recorded, got %q", cancelled.Reason)
	}

	level := f.stockRepo.Level(levelID(10000))
	if level.Total != 5 || level.Reserved != 0 {
		t.Fatalf("cancel must restore free stock: total=%d reserved=%d", level.Total, level.Reserved)
	}

	// Cancelling again is a no-op success.
	again, err := f.uc.Cancel(context.Background(), movement.ID, "retry")
	if err != nil {
		t.Fatalf("second cancel must succeed, got %v", err)
	}
	if again.Status != domain.MovementStatusCancelled {
		t.Fatalf("expected cancelled, got %s", again.Status)
	}
	if level.Reserved != 0 {
		t.Fatalf("second cancel released stock again: reserved=%d", level.Reserved)
	}

	// A cancelled movement cannot be confirmed.
	if _, err := f.uc.Confirm(context.Background(), movement.ID); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestReservationUseCase_CancelConfirmedRejected(t *testing.T) {
	f := newReservationFixture(map[int64]int64{10000: 5})

	movement, err := f.uc.Reserve(context.Background(), usecase.ReserveInput{
		KioskID:  testKioskID,
		Currency: "USD",
		Amount:   10000,
		Mode:     domain.ReserveModeImmediate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.uc.Cancel(context.Background(), movement.ID, "too late"); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}

	level := f.stockRepo.Level(levelID(10000))
	if level.Total != 4 || level.Reserved != 0 {
		t.Fatalf("rejected cancel mutated counters: total=%d reserved=%d", level.Total, level.Reserved)
	}
}

func TestReservationUseCase_ConcurrentReserves(t *testing.T) {
	// Five identical notes, twenty racing customers. The serializing
	// transaction manager stands in for the row locks the database adapter
	// takes; exactly five reservations can win.
	f := newReservationFixture(map[int64]int64{10000: 5})

	var txMu sync.Mutex
	txManager := mocks.NewMockTransactionManager()
	txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		txMu.Lock()
		var once sync.Once
		release := func() { once.Do(txMu.Unlock) }
		return &mocks.MockTransaction{
			CommitFunc:   func(ctx context.Context) error { release(); return nil },
			RollbackFunc: func(ctx context.Context) error { release(); return nil },
		}, nil
	}

	uc := usecase.NewReservationUseCase(
		txManager,
		f.kioskRepo,
		f.stockRepo,
		f.movementRepo,
		f.outboxRepo,
		mocks.NewMockIDGenerator(),
		nil,
	)

	const workers = 20
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := uc.Reserve(context.Background(), usecase.ReserveInput{
				TransactionRef: "pay-race-" + strconv.Itoa(n),
				KioskID:        testKioskID,
				Currency:       "USD",
				Amount:         10000,
				Mode:           domain.ReserveModeDeferred,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrInsufficientStock):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if won != 5 || lost != workers-5 {
		t.Fatalf("expected 5 winners and %d losers, got %d/%d", workers-5, won, lost)
	}

	level := f.stockRepo.Level(levelID(10000))
	if level.Total != 5 || level.Reserved != 5 {
		t.Fatalf("expected total=5 reserved=5, got total=%d reserved=%d", level.Total, level.Reserved)
	}

	movements, err := f.movementRepo.List(context.Background(), domain.MovementFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movements) != 5 {
		t.Fatalf("expected 5 movements, got %d", len(movements))
	}
}

func TestReservationUseCase_ResolvePayment(t *testing.T) {
	tests := []struct {
		name       string
		outcome    domain.PaymentOutcome
		wantStatus domain.MovementStatus
	}{
		{
			name:       "payment succeeded confirms",
			outcome:    domain.PaymentSucceeded,
			wantStatus: domain.MovementStatusConfirmed,
		},
		{
			name:       "payment failed cancels",
			outcome:    domain.PaymentFailed,
			wantStatus: domain.MovementStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReservationFixture(map[int64]int64{10000: 5})

			if _, err := f.uc.Reserve(context.Background(), usecase.ReserveInput{
				TransactionRef: "pay-77",
				KioskID:        testKioskID,
				Currency:       "USD",
				Amount:         20000,
				Mode:           domain.ReserveModeDeferred,
			}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			movement, err := f.uc.ResolvePayment(context.Background(), "pay-77", tt.outcome)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if movement.Status != tt.wantStatus {
				t.Fatalf("expected %s, got %s", tt.wantStatus, movement.Status)
			}
		})
	}

	t.Run("unknown reference", func(t *testing.T) {
		f := newReservationFixture(map[int64]int64{10000: 5})

		_, err := f.uc.ResolvePayment(context.Background(), "pay-ghost", domain.PaymentSucceeded)
		if !errors.Is(err, domain.ErrNoPendingMovement) {
			t.Fatalf("expected ErrNoPendingMovement, got %v", err)
		}
	})

	t.Run("unknown outcome", func(t *testing.T) {
		f := newReservationFixture(map[int64]int64{10000: 5})

		_, err := f.uc.ResolvePayment(context.Background(), "pay-77", domain.PaymentOutcome("maybe"))
		if !errors.Is(err, domain.ErrInvalidOutcome) {
			t.Fatalf("expected ErrInvalidOutcome, got %v", err)
		}
	})
}
