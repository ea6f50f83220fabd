package inventory

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
)

// DemandStatistics aggregates a trailing window of daily sales into a forecast
type DemandStatistics struct {
	params Parameters
}

// NewDemandStatistics creates a demand aggregator with the given parameters
func NewDemandStatistics(params Parameters) *DemandStatistics {
	return &DemandStatistics{params: params.withDefaults()}
}

// WindowStart returns the start of the trailing window ending at now
func (ds *DemandStatistics) WindowStart(now time.Time) time.Time {
	y, m, d := now.AddDate(0, 0, -ds.params.DemandWindowDays).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Compute returns mean, population std dev, coverage and the smoothed forecast
// for the points dated on or after windowStart. It never fails.
func (ds *DemandStatistics) Compute(articleID int64, windowStart time.Time, points []domain.DailyDemandPoint, currentStock int) domain.DemandForecast {
	forecast := domain.DemandForecast{
		ArticleID:    articleID,
		WindowStart:  windowStart,
		HorizonDays:  ds.params.ForecastHorizonDays,
		CoverageDays: domain.UnboundedCoverage(),
	}

	series := inWindow(points, windowStart)
	if len(series) == 0 {
		return forecast
	}

	n := float64(len(series))
	var sum float64
	for _, p := range series {
		sum += float64(p.Quantity)
	}
	mean := sum / n

	var sq float64
	for _, p := range series {
		d := float64(p.Quantity) - mean
		sq += d * d
	}

	forecast.DailyMean = mean
	forecast.StdDev = math.Sqrt(sq / n)
	forecast.SampleDays = len(series)

	if mean > 0 {
		forecast.CoverageDays = domain.BoundedCoverage(int(math.Floor(float64(currentStock) / mean)))
	}

	alpha := ds.params.SmoothingAlpha
	smoothed := mean
	for _, p := range series {
		smoothed = alpha*float64(p.Quantity) + (1-alpha)*smoothed
	}

	forecast.SmoothedDaily = smoothed
	forecast.Forecast = smoothed * float64(ds.params.ForecastHorizonDays)

	return forecast
}

// inWindow drops points dated before the calendar day of start and orders the rest by date.
// Days are compared as calendar dates: a DATE column read back as UTC midnight still
// belongs to the window that starts at local midnight of the same day.
func inWindow(points []domain.DailyDemandPoint, start time.Time) []domain.DailyDemandPoint {
	first := calendarDay(start)
	series := make([]domain.DailyDemandPoint, 0, len(points))
	for _, p := range points {
		if !start.IsZero() && calendarDay(p.Date).Before(first) {
			continue
		}
		series = append(series, p)
	}
	sort.SliceStable(series, func(i, j int) bool {
		return calendarDay(series[i].Date).Before(calendarDay(series[j].Date))
	})
	return series
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
