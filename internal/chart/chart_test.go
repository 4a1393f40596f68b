package chart

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svacron-metals/internal/models"
)

func points(n int) []models.ChartDataPoint {
	out := make([]models.ChartDataPoint, n)
	for i := range out {
		out[i] = models.ChartDataPoint{
			Date:  fmt.Sprintf("M%02d", i),
			Price: decimal.NewFromInt(int64(6000 + 25*i)),
		}
	}
	return out
}

func TestRenderPriceChart(t *testing.T) {
	png, err := RenderPriceChart(points(12), Options{Title: "Gold 1Y", Color: "#FFD700"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "output is a PNG image")
}

func TestRenderPriceChart_TooFewPoints(t *testing.T) {
	_, err := RenderPriceChart(points(1), Options{})
	assert.Error(t, err)

	_, err = RenderPriceChart(nil, Options{})
	assert.Error(t, err)
}

func TestLabelTicks(t *testing.T) {
	ticks := labelTicks(points(5))
	require.Len(t, ticks, 5)
	assert.Equal(t, "M00", ticks[0].Label)

	ticks = labelTicks(points(120))
	assert.LessOrEqual(t, len(ticks), maxTicks+1)
	assert.Equal(t, "M119", ticks[len(ticks)-1].Label)
}
