package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/infrastructure/metrics"
)

// ReconciliationUseCase verifies stored stock counters against the movement
// log. It never corrects anything; divergence is reported and surfaced.
type ReconciliationUseCase struct {
	txManager    TransactionManager
	kioskRepo    KioskRepository
	stockRepo    StockRepository
	movementRepo MovementRepository
	metrics      *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case.
func NewReconciliationUseCase(
	txManager TransactionManager,
	kioskRepo KioskRepository,
	stockRepo StockRepository,
	movementRepo MovementRepository,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:    txManager,
		kioskRepo:    kioskRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		metrics:      metrics,
	}
}

// StockDiscrepancy describes one denomination whose counters disagree with
// the movement log.
type StockDiscrepancy struct {
	Denomination     int64
	Total            int64
	Reserved         int64
	ExpectedReserved int64
	Detail           string
}

// StockConsistencyReport is the result of one consistency check.
type StockConsistencyReport struct {
	KioskID       string
	Currency      string
	Consistent    bool
	Discrepancies []StockDiscrepancy
	CheckedAt     time.Time
}

// CheckStock recomputes the expected reserved count per denomination from
// pending movements and compares it with the stored counters. Runs with the
// pair's rows locked so in-flight reservations cannot produce false alarms.
// Divergence returns the report together with ErrInconsistentState.
func (uc *ReconciliationUseCase) CheckStock(ctx context.Context, kioskID, currency string) (*StockConsistencyReport, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	if _, err := uc.kioskRepo.GetByID(ctx, kioskID); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	levels, err := uc.stockRepo.ListForUpdate(txCtx, tx, kioskID, currency)
	if err != nil {
		return nil, err
	}

	pending, err := uc.movementRepo.SumPendingByDenomination(txCtx, tx, kioskID, currency)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	report := &StockConsistencyReport{
		KioskID:    kioskID,
		Currency:   currency,
		Consistent: true,
		CheckedAt:  time.Now().UTC(),
	}

	seen := make(map[int64]bool, len(levels))
	for _, level := range levels {
		seen[level.Denomination] = true

		expected := pending[level.Denomination]

		if err := level.Validate(); err != nil {
			report.Discrepancies = append(report.Discrepancies, StockDiscrepancy{
				Denomination:     level.Denomination,
				Total:            level.Total,
				Reserved:         level.Reserved,
				ExpectedReserved: expected,
				Detail:           err.Error(),
			})
			continue
		}

		if level.Reserved != expected {
			report.Discrepancies = append(report.Discrepancies, StockDiscrepancy{
				Denomination:     level.Denomination,
				Total:            level.Total,
				Reserved:         level.Reserved,
				ExpectedReserved: expected,
				Detail:           "reserved count diverges from pending movement lines",
			})
		}
	}

	// Pending lines against a denomination with no stock row at all.
	orphans := make([]int64, 0)
	for denomination, expected := range pending {
		if !seen[denomination] && expected > 0 {
			orphans = append(orphans, denomination)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i] > orphans[j] })
	for _, denomination := range orphans {
		report.Discrepancies = append(report.Discrepancies, StockDiscrepancy{
			Denomination:     denomination,
			ExpectedReserved: pending[denomination],
			Detail:           "pending movement lines reference a missing stock row",
		})
	}

	report.Consistent = len(report.Discrepancies) == 0

	if uc.metrics != nil {
		result := "consistent"
		if !report.Consistent {
			result = "divergent"
		}
		uc.metrics.ConsistencyChecks.WithLabelValues(result).Inc()
	}

	if !report.Consistent {
		return report, fmt.Errorf("%w: %d denomination(s) diverged at kiosk %s (%s)",
			domain.ErrInconsistentState, len(report.Discrepancies), kioskID, currency)
	}

	return report, nil
}
