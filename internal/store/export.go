package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fitpull/fitpull/internal/model"
)

// WriteCSV writes all records as CSV with a header row.
func WriteCSV(w io.Writer, metrics []model.WeeklyMetrics) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(metricColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, m := range metrics {
		if err := cw.Write(metricRow(m)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteJSON writes all records as an indented JSON array.
func WriteJSON(w io.Writer, metrics []model.WeeklyMetrics) error {
	if metrics == nil {
		metrics = []model.WeeklyMetrics{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(metrics), "export: write json")
}

// WriteXLSX writes all records as a single-sheet workbook.
func WriteXLSX(w io.Writer, metrics []model.WeeklyMetrics) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Weekly Metrics")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range metricColumns {
		header.AddCell().Value = col
	}
	for _, m := range metrics {
		row := sheet.AddRow()
		for _, v := range metricRow(m) {
			row.AddCell().Value = v
		}
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func metricRow(m model.WeeklyMetrics) []string {
	return []string{
		strconv.FormatInt(m.ID, 10),
		m.DateRange,
		m.DateStart,
		m.DateEnd,
		strconv.Itoa(m.StepTargetDaysMet),
		strconv.Itoa(m.BestDaySteps),
		strconv.Itoa(m.TotalSteps),
		formatFloat(m.AvgStepsPerDay),
		formatFloat(m.StepsVariance),
		formatFloat(m.TotalMiles),
		formatFloat(m.MilesVariance),
		formatFloat(m.AvgDailyCalorieBurn),
		formatFloat(m.CalorieBurnVariance),
		strconv.Itoa(m.TotalActiveZoneMinutes),
		strconv.Itoa(m.ActiveZoneMinutesVariance),
		m.AvgRestfulSleep,
		strconv.Itoa(m.RestfulSleepMinutes),
		strconv.Itoa(m.RestfulSleepVariance),
		formatFloat(m.AvgHoursWith250Steps),
		formatFloat(m.HoursWith250StepsVariance),
		strconv.Itoa(m.AvgRestingHeartRate),
		formatFloat(m.RestingHeartRateVariance),
		m.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
