package domain

import "sort"

// Combination maps a denomination value (minor units) to a piece count.
// The zero-length combination is valid and represents a zero amount.
type Combination map[int64]int64

// Amount returns the weighted sum of the combination.
func (c Combination) Amount() int64 {
	var sum int64
	for denomination, quantity := range c {
		sum += denomination * quantity
	}
	return sum
}

// Pieces returns the total number of physical pieces.
func (c Combination) Pieces() int64 {
	var count int64
	for _, quantity := range c {
		count += quantity
	}
	return count
}

// Denominations returns the combination's denominations in descending order.
func (c Combination) Denominations() []int64 {
	out := make([]int64, 0, len(c))
	for denomination := range c {
		out = append(out, denomination)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// Validate checks denominations and quantities are positive.
func (c Combination) Validate() error {
	for denomination, quantity := range c {
		if denomination <= 0 {
			return ErrInvalidDenomination
		}
		if quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// Lines converts the combination to movement lines in descending
// denomination order.
func (c Combination) Lines() []MovementLine {
	lines := make([]MovementLine, 0, len(c))
	for _, denomination := range c.Denominations() {
		lines = append(lines, MovementLine{
			Denomination: denomination,
			Quantity:     c[denomination],
		})
	}
	return lines
}

// CombinationFromLines rebuilds a combination from movement lines.
func CombinationFromLines(lines []MovementLine) Combination {
	c := make(Combination, len(lines))
	for _, line := range lines {
		c[line.Denomination] += line.Quantity
	}
	return c
}
