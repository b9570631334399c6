// Package estimator turns an hourly weekday incident-rate table into expected
// or sampled incident counts for arbitrary time windows.
package estimator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyTable is returned when the rate file has no hourly rows.
var ErrEmptyTable = errors.New("estimator: rate table has no hourly rows")

var dayColumns = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
	"Sunday":    time.Sunday,
}

// Rates holds expected incidents per hour, indexed by weekday and hour.
type Rates [7][24]float64

// Table estimates incident counts from a rate table. Monte Carlo draws use
// the table's own source; a Table must not be shared between goroutines.
type Table struct {
	rates Rates
	rng   *rand.Rand
}

// New wraps rates with a random source for Monte Carlo draws.
func New(rates Rates, src rand.Source) *Table {
	return &Table{rates: rates, rng: rand.New(src)}
}

// Load reads the rate table CSV at path.
func Load(path string, src rand.Source) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rate table: %w", err)
	}
	defer f.Close()

	rates, err := ParseRates(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(rates, src), nil
}

// ParseRates reads a CSV with the header Hr,Monday,...,Sunday. Rows for hour
// 24 (daily totals) are skipped; hours not listed have a zero rate.
func ParseRates(r io.Reader) (Rates, error) {
	var rates Rates

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return rates, fmt.Errorf("read header: %w", err)
	}

	hourCol := -1
	days := make(map[int]time.Weekday, 7)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "Hr" {
			hourCol = i
			continue
		}
		day, ok := dayColumns[h]
		if !ok {
			return rates, fmt.Errorf("unknown column %q", h)
		}
		days[i] = day
	}
	if hourCol < 0 {
		return rates, errors.New(`missing column "Hr"`)
	}
	if len(days) != 7 {
		return rates, fmt.Errorf("expected 7 weekday columns, got %d", len(days))
	}

	rows := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rates, fmt.Errorf("line %d: %w", line, err)
		}
		hour, err := strconv.Atoi(strings.TrimSpace(rec[hourCol]))
		if err != nil {
			return rates, fmt.Errorf("line %d: Hr: %w", line, err)
		}
		if hour == 24 {
			continue
		}
		if hour < 0 || hour > 23 {
			return rates, fmt.Errorf("line %d: hour %d out of range", line, hour)
		}
		for col, day := range days {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
			if err != nil {
				return rates, fmt.Errorf("line %d: %s: %w", line, header[col], err)
			}
			rates[day][hour] = v
		}
		rows++
	}
	if rows == 0 {
		return rates, ErrEmptyTable
	}
	return rates, nil
}

// Rate returns the expected incidents for a whole hour.
func (t *Table) Rate(day time.Weekday, hour int) float64 {
	return t.rates[day][hour]
}

// Expected integrates the hourly rates over [start, start+d). The clock of
// start is read in its own location; day names the weekday the window opens
// on. Each row is a constant rate over its hour, so a partial hour
// contributes its rate scaled by the fraction covered and the integral is
// additive: splitting a window never changes the total. Windows cross
// midnight into the following weekday.
func (t *Table) Expected(day time.Weekday, start time.Time, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	minutes := d.Minutes()
	pos := float64(start.Hour())*60 + float64(start.Minute()) + float64(start.Second())/60

	total := 0.0
	for minutes > 0 {
		hour := int(pos / 60)
		into := pos - float64(hour)*60
		span := math.Min(60-into, minutes)
		total += t.rates[day][hour] * span / 60
		minutes -= span
		pos += span
		if pos >= 24*60 {
			pos -= 24 * 60
			day = (day + 1) % 7
		}
	}
	return total
}

// Estimate returns the expected count, or a Poisson draw around it when
// monteCarlo is set.
func (t *Table) Estimate(day time.Weekday, start time.Time, d time.Duration, monteCarlo bool) float64 {
	mean := t.Expected(day, start, d)
	if !monteCarlo {
		return mean
	}
	return float64(Poisson(t.rng, mean))
}

// Poisson draws from a Poisson distribution. Knuth's method is used for
// small means and a rounded normal approximation above 30.
func Poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	if mean > 30 {
		n := math.Round(mean + math.Sqrt(mean)*rng.NormFloat64())
		if n < 0 {
			return 0
		}
		return int(n)
	}
	limit := math.Exp(-mean)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
