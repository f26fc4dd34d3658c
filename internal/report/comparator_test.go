package report

import (
	"context"
	"testing"

	"cooperativa-reports/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestPercentChange(t *testing.T) {
	assert.Equal(t, -25.0, PercentChange(150, 200))
	assert.Equal(t, 50.0, PercentChange(300, 200))
	assert.Equal(t, 0.0, PercentChange(0, 0))

	// zero baseline means 0% change, never NaN or infinity
	assert.Equal(t, 0.0, PercentChange(100, 0))

	// rounded to one decimal
	assert.Equal(t, -66.7, PercentChange(1, 3))
	assert.Equal(t, 33.3, PercentChange(4, 3))
}

func TestCompare(t *testing.T) {
	p, err := ResolvePeriod("2024-03-01", "2024-03-31", date(2024, 3, 15))
	assert.NoError(t, err)

	metric := func(ctx context.Context, w Window, f store.Filters) float64 {
		if w.Start.Equal(p.Current.Start) {
			return 150
		}
		return 200
	}

	cmp := Compare(context.Background(), p, store.Filters{}, metric)
	assert.Equal(t, 150.0, cmp.Current)
	assert.Equal(t, 200.0, cmp.Previous)
	assert.Equal(t, -25.0, cmp.PercentChange)
}
