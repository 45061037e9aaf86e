package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/iho/cashstock/internal/adapter/repository/postgres"
	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
	"github.com/iho/cashstock/tests/testutil"
)

func TestConcurrentReservations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	pool := testDB.Pool
	kioskRepo := postgres.NewKioskRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()

	outboxRepo := postgres.NewNullOutboxRepository()
	reservationUC := usecase.NewReservationUseCase(txManager, kioskRepo, stockRepo, movementRepo, outboxRepo, idGen, nil).WithRetrier(retrier)
	stockUC := usecase.NewStockUseCase(txManager, kioskRepo, stockRepo, movementRepo, outboxRepo, idGen, nil, nil)

	t.Run("concurrent reserves drain free stock exactly", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		// 100 notes, 100 reservations of one note each
		kiosk := testDB.CreateTestKiosk(ctx, "drain-kiosk", true)
		testDB.SeedStock(ctx, kiosk.ID, "USD", map[int64]int64{10000: 100})

		numReserves := 100

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			errorCount   atomic.Int32
		)

		wg.Add(numReserves)

		for i := range numReserves {
			go func() {
				defer wg.Done()

				_, err := reservationUC.Reserve(ctx, usecase.ReserveInput{
					TransactionRef: fmt.Sprintf("tx-drain-%d", i),
					KioskID:        kiosk.ID,
					Currency:       "USD",
					Amount:         10000,
					Mode:           domain.ReserveModeDeferred,
				})
				if err != nil {
					errorCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != int32(numReserves) {
			t.Errorf("expected %d successful reserves, got %d (errors: %d)", numReserves, successCount.Load(), errorCount.Load())
		}

		levels, err := stockRepo.List(ctx, kiosk.ID, "USD")
		if err != nil {
			t.Fatalf("failed to list stock: %v", err)
		}

		level := levelFor(t, levels, 10000)
		if level.Reserved != 100 {
			t.Errorf("expected 100 reserved, got %d", level.Reserved)
		}
		if level.Free() != 0 {
			t.Errorf("expected 0 free, got %d", level.Free())
		}
	})

	t.Run("overbooked reserves never go negative", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		// 19 notes, 20 competing reservations: exactly one loses
		kiosk := testDB.CreateTestKiosk(ctx, "overbook-kiosk", true)
		testDB.SeedStock(ctx, kiosk.ID, "USD", map[int64]int64{10000: 19})

		numReserves := 20

		var (
			wg                sync.WaitGroup
			successCount      atomic.Int32
			insufficientCount atomic.Int32
		)

		wg.Add(numReserves)

		for i := range numReserves {
			go func() {
				defer wg.Done()

				_, err := reservationUC.Reserve(ctx, usecase.ReserveInput{
					TransactionRef: fmt.Sprintf("tx-overbook-%d", i),
					KioskID:        kiosk.ID,
					Currency:       "USD",
					Amount:         10000,
					Mode:           domain.ReserveModeDeferred,
				})
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, domain.ErrInsufficientStock):
					insufficientCount.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != 19 {
			t.Errorf("expected 19 successful reserves, got %d", successCount.Load())
		}
		if insufficientCount.Load() != 1 {
			t.Errorf("expected 1 insufficient-stock rejection, got %d", insufficientCount.Load())
		}

		levels, err := stockRepo.List(ctx, kiosk.ID, "USD")
		if err != nil {
			t.Fatalf("failed to list stock: %v", err)
		}

		level := levelFor(t, levels, 10000)
		if level.Reserved != 19 {
			t.Errorf("expected 19 reserved, got %d", level.Reserved)
		}
		if level.Reserved > level.Total {
			t.Errorf("reserved %d exceeds total %d", level.Reserved, level.Total)
		}
	})

	t.Run("confirm and cancel race settles exactly once", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		kiosk := testDB.CreateTestKiosk(ctx, "race-kiosk", true)
		testDB.SeedStock(ctx, kiosk.ID, "USD", map[int64]int64{10000: 2})

		movement, err := reservationUC.Reserve(ctx, usecase.ReserveInput{
			TransactionRef: "tx-race-1",
			KioskID:        kiosk.ID,
			Currency:       "USD",
			Amount:         10000,
			Mode:           domain.ReserveModeDeferred,
		})
		if err != nil {
			t.Fatalf("failed to reserve: %v", err)
		}

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
		)

		wg.Add(2)

		go func() {
			defer wg.Done()
			if _, err := reservationUC.Confirm(ctx, movement.ID); err == nil {
				successCount.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := reservationUC.Cancel(ctx, movement.ID, "race"); err == nil {
				successCount.Add(1)
			}
		}()

		wg.Wait()

		if successCount.Load() != 1 {
			t.Errorf("expected exactly 1 winner, got %d", successCount.Load())
		}

		stored, err := movementRepo.GetByID(ctx, movement.ID)
		if err != nil {
			t.Fatalf("failed to load movement: %v", err)
		}

		levels, err := stockRepo.List(ctx, kiosk.ID, "USD")
		if err != nil {
			t.Fatalf("failed to list stock: %v", err)
		}

		level := levelFor(t, levels, 10000)
		if level.Reserved != 0 {
			t.Errorf("expected 0 reserved after settlement, got %d", level.Reserved)
		}

		switch stored.Status {
		case domain.MovementStatusConfirmed:
			if level.Total != 1 {
				t.Errorf("confirm won, expected total 1, got %d", level.Total)
			}
		case domain.MovementStatusCancelled:
			if level.Total != 2 {
				t.Errorf("cancel won, expected total 2, got %d", level.Total)
			}
		default:
			t.Errorf("movement left in non-terminal status %s", stored.Status)
		}
	})

	t.Run("deposits and reserves on one pair do not deadlock", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		kiosk := testDB.CreateTestKiosk(ctx, "mixed-kiosk", true)
		testDB.SeedStock(ctx, kiosk.ID, "USD", map[int64]int64{10000: 50})

		numEach := 50

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
		)

		wg.Add(numEach * 2)

		for i := range numEach {
			go func() {
				defer wg.Done()

				_, err := stockUC.Deposit(ctx, usecase.DepositInput{
					KioskID:  kiosk.ID,
					Currency: "USD",
					Lines:    []domain.MovementLine{{Denomination: 10000, Quantity: 1}},
				})
				if err == nil {
					successCount.Add(1)
				}
			}()
			go func() {
				defer wg.Done()

				_, err := reservationUC.Reserve(ctx, usecase.ReserveInput{
					TransactionRef: fmt.Sprintf("tx-mixed-%d", i),
					KioskID:        kiosk.ID,
					Currency:       "USD",
					Amount:         10000,
					Mode:           domain.ReserveModeDeferred,
				})
				if err == nil {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != int32(numEach*2) {
			t.Errorf("expected %d successful operations, got %d", numEach*2, successCount.Load())
		}

		levels, err := stockRepo.List(ctx, kiosk.ID, "USD")
		if err != nil {
			t.Fatalf("failed to list stock: %v", err)
		}

		level := levelFor(t, levels, 10000)
		if level.Total != 100 {
			t.Errorf("expected total 100 after 50 deposits, got %d", level.Total)
		}
		if level.Reserved != 50 {
			t.Errorf("expected 50 reserved, got %d", level.Reserved)
		}
	})
}
