package analytics

import (
	"testing"
	"time"
)

func TestBucketDailyZeroFills(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	series := BucketDaily(nil, now)

	if len(series) != 7 {
		t.Fatalf("expected 7 days, got %d", len(series))
	}
	if series[0].Date != "2024-05-04" || series[6].Date != "2024-05-10" {
		t.Errorf("unexpected range: %s .. %s", series[0].Date, series[6].Date)
	}
	for _, point := range series {
		if point.Count != 0 {
			t.Errorf("expected zero count for %s, got %d", point.Date, point.Count)
		}
	}
}

func TestBucketDailyCounts(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	timestamps := []time.Time{
		time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 8, 9, 30, 0, 0, time.UTC),
		// Outside the window, ignored.
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	series := BucketDaily(timestamps, now)
	byDate := make(map[string]int, len(series))
	for _, point := range series {
		byDate[point.Date] = point.Count
	}

	if byDate["2024-05-10"] != 2 {
		t.Errorf("expected 2 on 2024-05-10, got %d", byDate["2024-05-10"])
	}
	if byDate["2024-05-08"] != 1 {
		t.Errorf("expected 1 on 2024-05-08, got %d", byDate["2024-05-08"])
	}
	if byDate["2024-05-09"] != 0 {
		t.Errorf("expected 0 on 2024-05-09, got %d", byDate["2024-05-09"])
	}
}

func TestBucketDailyAscendingOrder(t *testing.T) {
	series := BucketDaily(nil, time.Now().UTC())
	for i := 1; i < len(series); i++ {
		if series[i-1].Date >= series[i].Date {
			t.Fatalf("series not ascending at %d: %s >= %s", i, series[i-1].Date, series[i].Date)
		}
	}
}
