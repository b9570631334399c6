package estimator

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantRates(v float64) Rates {
	var r Rates
	for d := range r {
		for h := range r[d] {
			r[d][h] = v
		}
	}
	return r
}

func at(h, m int) time.Time {
	return time.Date(2024, 3, 4, h, m, 0, 0, time.UTC)
}

func TestExpectedConstantRate(t *testing.T) {
	table := New(constantRates(6), rand.NewSource(1))

	assert.InDelta(t, 12, table.Expected(time.Monday, at(9, 30), 2*time.Hour), 1e-9)
	assert.InDelta(t, 0.5, table.Expected(time.Monday, at(9, 0), 5*time.Minute), 1e-9)
	assert.InDelta(t, 6*24, table.Expected(time.Friday, at(22, 0), 24*time.Hour), 1e-9)
	assert.Zero(t, table.Expected(time.Monday, at(9, 0), 0))
	assert.Zero(t, table.Expected(time.Monday, at(9, 0), -time.Minute))
}

func TestExpectedPartialHours(t *testing.T) {
	var rates Rates
	for h := 0; h < 24; h++ {
		rates[time.Monday][h] = float64(h)
	}
	table := New(rates, rand.NewSource(1))

	assert.InDelta(t, 9*0.5, table.Expected(time.Monday, at(9, 30), 30*time.Minute), 1e-9)
	assert.InDelta(t, 9.0, table.Expected(time.Monday, at(9, 0), time.Hour), 1e-9)
	assert.InDelta(t, 9.0+10.0, table.Expected(time.Monday, at(9, 0), 2*time.Hour), 1e-9)
	// 09:30-10:30 takes half of each hour.
	assert.InDelta(t, 4.5+5, table.Expected(time.Monday, at(9, 30), time.Hour), 1e-9)
}

func TestExpectedIsAdditiveOverTicks(t *testing.T) {
	var rates Rates
	rates[time.Monday][10] = 0
	rates[time.Monday][11] = 12
	rates[time.Monday][12] = 3
	table := New(rates, rand.NewSource(1))

	for _, startHour := range []int{10, 11, 12} {
		whole := table.Expected(time.Monday, at(startHour, 0), time.Hour)
		sum := 0.0
		for i := 0; i < 12; i++ {
			sum += table.Expected(time.Monday, at(startHour, 5*i), 5*time.Minute)
		}
		assert.InDelta(t, whole, sum, 1e-9, "hour %d", startHour)
		assert.InDelta(t, rates[time.Monday][startHour], sum, 1e-9, "hour %d", startHour)
	}
}

func TestExpectedWrapsIntoNextDay(t *testing.T) {
	var rates Rates
	rates[time.Sunday][23] = 2
	rates[time.Monday][0] = 10
	rates[time.Monday][1] = 10
	table := New(rates, rand.NewSource(1))

	assert.InDelta(t, 2, table.Expected(time.Sunday, at(23, 0), time.Hour), 1e-9)
	// Half of Sunday 23:00 plus half of Monday 00:00.
	assert.InDelta(t, 1+5, table.Expected(time.Sunday, at(23, 30), time.Hour), 1e-9)
	assert.InDelta(t, 2+20, table.Expected(time.Sunday, at(0, 0), 26*time.Hour), 1e-9)
}

func TestEstimate(t *testing.T) {
	table := New(constantRates(4), rand.NewSource(7))

	assert.InDelta(t, 4, table.Estimate(time.Tuesday, at(10, 0), time.Hour, false), 1e-9)

	n := table.Estimate(time.Tuesday, at(10, 0), time.Hour, true)
	assert.Equal(t, float64(int(n)), n, "monte carlo counts are whole")
	assert.GreaterOrEqual(t, n, 0.0)
}

func TestPoissonMean(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, mean := range []float64{0.3, 4, 50} {
		const draws = 20000
		sum := 0
		for i := 0; i < draws; i++ {
			n := Poisson(rng, mean)
			require.GreaterOrEqual(t, n, 0)
			sum += n
		}
		assert.InDelta(t, mean, float64(sum)/draws, mean*0.05+0.02, "mean %v", mean)
	}
	assert.Zero(t, Poisson(rng, 0))
	assert.Zero(t, Poisson(rng, -1))
}

const rateCSV = `Hr,Monday,Tuesday,Wednesday,Thursday,Friday,Saturday,Sunday
0,1,2,3,4,5,6,7
1,1.5,2,3,4,5,6,7
24,99,99,99,99,99,99,99
`

func TestParseRates(t *testing.T) {
	rates, err := ParseRates(strings.NewReader(rateCSV))
	require.NoError(t, err)
	assert.Equal(t, 1.0, rates[time.Monday][0])
	assert.Equal(t, 1.5, rates[time.Monday][1])
	assert.Equal(t, 7.0, rates[time.Sunday][1])
	assert.Zero(t, rates[time.Monday][2], "unlisted hours have no incidents")

	_, err = ParseRates(strings.NewReader("Hr,Monday,Funday\n0,1,2\n"))
	assert.ErrorContains(t, err, "Funday")

	_, err = ParseRates(strings.NewReader("Hr,Monday,Tuesday,Wednesday,Thursday,Friday,Saturday,Sunday\n"))
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = ParseRates(strings.NewReader("Hr,Monday,Tuesday,Wednesday,Thursday,Friday,Saturday,Sunday\n25,1,1,1,1,1,1,1\n"))
	assert.ErrorContains(t, err, "out of range")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.csv")
	require.NoError(t, os.WriteFile(path, []byte(rateCSV), 0o600))

	table, err := Load(path, rand.NewSource(1))
	require.NoError(t, err)
	assert.Equal(t, 6.0, table.Rate(time.Saturday, 1))

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), rand.NewSource(1))
	assert.Error(t, err)
}

func TestShippedRates(t *testing.T) {
	table, err := Load(filepath.Join("..", "..", "data", "incident_rates.csv"), rand.NewSource(1))
	require.NoError(t, err)
	assert.InDelta(t, 1.20, table.Rate(time.Monday, 0), 1e-9)
	assert.Greater(t, table.Rate(time.Saturday, 23), table.Rate(time.Tuesday, 23))
}
