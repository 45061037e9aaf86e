// Package selector picks exact denomination combinations out of finite
// kiosk stock, minimizing the number of physical pieces dispensed.
package selector

import (
	"math"
	"sort"

	"github.com/iho/cashstock/internal/domain"
)

// maxTableCells bounds the DP table allocation. Amounts large enough to
// exceed it cannot be dispensed by a physical kiosk.
const maxTableCells = 8 << 20

// Select computes a combination of denominations whose weighted sum equals
// amount exactly, using at most the free count of each denomination in
// snapshot. Among all exact combinations it returns one with the minimum
// piece count, preferring larger denominations when counts tie.
//
// Plain greedy is not enough here: taking the largest denomination first can
// strand an amount that smaller notes would have served (snapshot {50:1, 20:3},
// amount 60: greedy takes the 50 and dies on the remainder; the answer is
// three 20s). The bounded coin-change DP below handles that.
//
// Select never mutates snapshot. amount 0 yields the empty combination.
func Select(snapshot map[int64]int64, amount int64) (domain.Combination, error) {
	if amount < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if amount == 0 {
		return domain.Combination{}, nil
	}

	denominations := make([]int64, 0, len(snapshot))
	var freeValue int64
	for denomination, free := range snapshot {
		if denomination <= 0 {
			return nil, domain.ErrInvalidDenomination
		}
		if free <= 0 {
			continue
		}
		denominations = append(denominations, denomination)
		freeValue += denomination * free
	}
	if freeValue < amount {
		return nil, domain.ErrInsufficientStock
	}
	sort.Slice(denominations, func(i, j int) bool {
		return denominations[i] > denominations[j]
	})

	// Scale everything down by the common divisor of the denominations so
	// the table is indexed in note-sized steps, not minor units. An amount
	// outside the lattice can never be composed exactly.
	scale := denominations[0]
	for _, denomination := range denominations[1:] {
		scale = gcd(scale, denomination)
	}
	if amount%scale != 0 {
		return nil, domain.ErrInsufficientStock
	}
	target := amount / scale

	if (int64(len(denominations))+1)*(target+1) > maxTableCells {
		return nil, domain.ErrAmountTooLarge
	}

	const unreachable = math.MaxInt32

	// pieces[i][a] is the minimum piece count composing a (scaled) using
	// only denominations[i:]. Row len(denominations) is the empty suffix.
	pieces := make([][]int32, len(denominations)+1)
	base := make([]int32, target+1)
	for a := range base {
		base[a] = unreachable
	}
	base[0] = 0
	pieces[len(denominations)] = base

	for i := len(denominations) - 1; i >= 0; i-- {
		step := denominations[i] / scale
		supply := snapshot[denominations[i]]
		next := pieces[i+1]
		row := make([]int32, target+1)
		for a := int64(0); a <= target; a++ {
			best := next[a]
			maxUse := a / step
			if supply < maxUse {
				maxUse = supply
			}
			for k := int64(1); k <= maxUse; k++ {
				if prev := next[a-k*step]; prev != unreachable && prev+int32(k) < best {
					best = prev + int32(k)
				}
			}
			row[a] = best
		}
		pieces[i] = row
	}

	budget := pieces[0][target]
	if budget == unreachable {
		return nil, domain.ErrInsufficientStock
	}

	// Walk denominations largest first, taking as many pieces of each as
	// still lets the remainder finish within the optimal count.
	combination := make(domain.Combination, len(denominations))
	remaining := target
	for i, denomination := range denominations {
		step := denomination / scale
		supply := snapshot[denomination]
		maxUse := remaining / step
		if supply < maxUse {
			maxUse = supply
		}
		next := pieces[i+1]
		for k := maxUse; k >= 0; k-- {
			rest := next[remaining-k*step]
			if rest != unreachable && rest+int32(k) == budget {
				if k > 0 {
					combination[denomination] = k
				}
				remaining -= k * step
				budget -= int32(k)
				break
			}
		}
	}
	if remaining != 0 || budget != 0 {
		return nil, domain.ErrInconsistentState
	}

	return combination, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
