package batch

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// CostSource prices one gram of a named material. ok is false when no
// usable cost is on record.
type CostSource interface {
	CostPerGram(ctx context.Context, name string) (cost decimal.Decimal, ok bool, err error)
}

// Cost prices every line and returns the priced copy with the batch total.
// A line whose material has no positive cost keeps a null Cost, and any such
// line makes the total null: a partial sum is never reported.
func Cost(ctx context.Context, src CostSource, lines []Line) ([]Line, decimal.NullDecimal, error) {
	priced := make([]Line, len(lines))
	total := decimal.Zero
	complete := true

	for i, line := range lines {
		line.Cost = decimal.NullDecimal{}
		perGram, ok, err := src.CostPerGram(ctx, line.Name)
		if err != nil {
			return nil, decimal.NullDecimal{}, fmt.Errorf("price %q: %w", line.Name, err)
		}
		if ok && perGram.IsPositive() {
			cost := decimal.NewFromFloat(line.Grams).Mul(perGram)
			line.Cost = decimal.NewNullDecimal(cost)
			total = total.Add(cost)
		} else {
			complete = false
		}
		priced[i] = line
	}

	if !complete {
		return priced, decimal.NullDecimal{}, nil
	}
	return priced, decimal.NewNullDecimal(total), nil
}
