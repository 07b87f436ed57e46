package fetcher

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"botinvest/internal/model"
	"botinvest/internal/provider"
)

// LoadSample reads the bundled sample dataset (Date,Open,High,Low,Close,
// Volume CSV) and tags it with the local-sample provenance so consumers can
// render it as demo data, not live quotes.
func LoadSample(path string) (model.BarSeries, error) {
	fh, err := os.Open(path)
	if err != nil {
		return model.BarSeries{}, err
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return model.BarSeries{}, fmt.Errorf("parse sample csv: %w", err)
	}
	if len(records) < 2 {
		return model.BarSeries{}, provider.ErrNoData
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	bars := make([]model.Bar, 0, len(records)-1)
	for _, row := range records[1:] {
		ts, err := parseSampleDate(row[col["date"]])
		if err != nil {
			continue
		}
		bars = append(bars, model.Bar{
			Time:   ts,
			Open:   sampleField(row, col, "open"),
			High:   sampleField(row, col, "high"),
			Low:    sampleField(row, col, "low"),
			Close:  sampleField(row, col, "close"),
			Volume: sampleField(row, col, "volume"),
		})
	}
	if len(bars) == 0 {
		return model.BarSeries{}, provider.ErrNoData
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return model.BarSeries{Bars: bars, Source: model.SourceLocalSample}, nil
}

func parseSampleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

func sampleField(row []string, col map[string]int, name string) float64 {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return 0
	}
	v, _ := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	return v
}
