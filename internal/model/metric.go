package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WeeklyMetrics is one persisted weekly fitness-summary observation.
// Variance fields are derived by the store from the chronologically
// preceding record and are never taken from extraction output.
type WeeklyMetrics struct {
	ID        int64  `json:"id"`
	DateRange string `json:"date_range"`
	DateStart string `json:"date_start"` // ISO yyyy-mm-dd
	DateEnd   string `json:"date_end"`

	StepTargetDaysMet      int     `json:"step_target_days_met"`
	BestDaySteps           int     `json:"best_day_steps"`
	TotalSteps             int     `json:"total_steps"`
	AvgStepsPerDay         float64 `json:"avg_steps_per_day"`
	TotalMiles             float64 `json:"total_miles"`
	AvgDailyCalorieBurn    float64 `json:"avg_daily_calorie_burn"`
	TotalActiveZoneMinutes int     `json:"total_active_zone_minutes"`
	AvgRestfulSleep        string  `json:"avg_restful_sleep"`
	RestfulSleepMinutes    int     `json:"restful_sleep_minutes"`
	AvgHoursWith250Steps   float64 `json:"avg_hours_with_250_steps"`
	AvgRestingHeartRate    int     `json:"avg_resting_heart_rate"`

	StepsVariance             float64 `json:"steps_variance"`
	MilesVariance             float64 `json:"miles_variance"`
	CalorieBurnVariance       float64 `json:"calorie_burn_variance"`
	ActiveZoneMinutesVariance int     `json:"active_zone_minutes_variance"`
	RestfulSleepVariance      int     `json:"restful_sleep_variance"`
	HoursWith250StepsVariance float64 `json:"hours_with_250_steps_variance"`
	RestingHeartRateVariance  float64 `json:"resting_heart_rate_variance"`

	CreatedAt time.Time `json:"created_at"`
}

// ComputeVariance fills the variance fields from the chronologically
// preceding record. A nil predecessor zeroes every variance field.
func (m *WeeklyMetrics) ComputeVariance(prev *WeeklyMetrics) {
	if prev == nil {
		m.StepsVariance = 0
		m.MilesVariance = 0
		m.CalorieBurnVariance = 0
		m.ActiveZoneMinutesVariance = 0
		m.RestfulSleepVariance = 0
		m.HoursWith250StepsVariance = 0
		m.RestingHeartRateVariance = 0
		return
	}
	m.StepsVariance = float64(m.TotalSteps - prev.TotalSteps)
	m.MilesVariance = m.TotalMiles - prev.TotalMiles
	m.CalorieBurnVariance = m.AvgDailyCalorieBurn - prev.AvgDailyCalorieBurn
	m.ActiveZoneMinutesVariance = m.TotalActiveZoneMinutes - prev.TotalActiveZoneMinutes
	m.RestfulSleepVariance = m.RestfulSleepMinutes - prev.RestfulSleepMinutes
	m.HoursWith250StepsVariance = m.AvgHoursWith250Steps - prev.AvgHoursWith250Steps
	m.RestingHeartRateVariance = float64(m.AvgRestingHeartRate - prev.AvgRestingHeartRate)
}

// FromExtraction converts a loosely-typed extraction result (the parsed LLM
// JSON) into a WeeklyMetrics. Numeric fields tolerate string values with
// commas or unit suffixes; unknown or null values become zero. The year is
// needed because report date ranges carry no year ("Mar. 3 - Mar. 9").
func FromExtraction(raw map[string]any, year int) WeeklyMetrics {
	m := WeeklyMetrics{
		DateRange:       coerceString(raw["date_range"]),
		AvgRestfulSleep: coerceString(raw["avg_restful_sleep"]),
	}
	m.DateStart, m.DateEnd = ParseDateRange(m.DateRange, year)

	m.StepTargetDaysMet = coerceInt(raw["step_target_days_met"])
	m.BestDaySteps = coerceInt(raw["best_day_steps"])
	m.TotalSteps = coerceInt(raw["total_steps"])
	m.AvgStepsPerDay = coerceFloat(raw["avg_steps_per_day"])
	m.TotalMiles = coerceFloat(raw["total_miles"])
	m.AvgDailyCalorieBurn = coerceFloat(raw["avg_daily_calorie_burn"])
	m.TotalActiveZoneMinutes = coerceInt(raw["total_active_zone_minutes"])
	m.AvgHoursWith250Steps = coerceFloat(raw["avg_hours_with_250_steps"])
	m.AvgRestingHeartRate = coerceInt(raw["avg_resting_heart_rate"])
	m.RestfulSleepMinutes = ParseSleepDuration(m.AvgRestfulSleep)

	return m
}

var dateRangeRe = regexp.MustCompile(`([A-Za-z]+)\.?\s+(\d+)\s*-\s*([A-Za-z]+)\.?\s+(\d+)`)

// ParseDateRange parses a report date-range label like "Mar. 3 - Mar. 9"
// into ISO start and end dates in the given year. Returns empty strings
// when the label does not match.
func ParseDateRange(label string, year int) (start, end string) {
	m := dateRangeRe.FindStringSubmatch(label)
	if m == nil {
		return "", ""
	}

	startT, err := time.Parse("Jan 2 2006", m[1]+" "+m[2]+" "+strconv.Itoa(year))
	if err != nil {
		return "", ""
	}
	endT, err := time.Parse("Jan 2 2006", m[3]+" "+m[4]+" "+strconv.Itoa(year))
	if err != nil {
		return "", ""
	}

	// Ranges that cross a year boundary ("Dec. 30 - Jan. 5") end in the
	// following year.
	if endT.Before(startT) {
		endT = endT.AddDate(1, 0, 0)
	}

	return startT.Format("2006-01-02"), endT.Format("2006-01-02")
}

var (
	hoursRe   = regexp.MustCompile(`(\d+)\s*hrs?`)
	minutesRe = regexp.MustCompile(`(\d+)\s*min`)
)

// ParseSleepDuration converts a sleep label like "7 hrs 52 min" to total
// minutes. Returns 0 when nothing parses.
func ParseSleepDuration(label string) int {
	total := 0
	if m := hoursRe.FindStringSubmatch(label); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m := minutesRe.FindStringSubmatch(label); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins
	}
	return total
}

var nonNumericRe = regexp.MustCompile(`[^\d.-]`)

func coerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		cleaned := nonNumericRe.ReplaceAllString(n, "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceInt(v any) int {
	return int(coerceFloat(v))
}
