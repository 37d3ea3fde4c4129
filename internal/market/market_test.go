package market

import (
	"strings"
	"testing"
	"time"
)

func TestParseTimeSeries(t *testing.T) {
	// Out of order and with one duplicated bar, as the API sometimes
	// returns during session rollover.
	body := []byte(`{
		"meta": {"symbol": "EUR/USD", "interval": "5min"},
		"values": [
			{"datetime": "2024-03-01 10:10:00", "open": "1.0803", "high": "1.0807", "low": "1.0801", "close": "1.0805"},
			{"datetime": "2024-03-01 10:00:00", "open": "1.0800", "high": "1.0804", "low": "1.0798", "close": "1.0802"},
			{"datetime": "2024-03-01 10:05:00", "open": "1.0802", "high": "1.0806", "low": "1.0800", "close": "1.0803"},
			{"datetime": "2024-03-01 10:05:00", "open": "1.0802", "high": "1.0806", "low": "1.0800", "close": "1.0803"}
		],
		"status": "ok"
	}`)

	candles, err := parseTimeSeries(body)
	if err != nil {
		t.Fatalf("parseTimeSeries() error = %v", err)
	}

	if len(candles) != 3 {
		t.Fatalf("len(candles) = %d, want 3 after dedupe", len(candles))
	}
	for i := 1; i < len(candles); i++ {
		if candles[i].Timestamp <= candles[i-1].Timestamp {
			t.Errorf("timestamps not strictly ascending at %d: %d then %d",
				i, candles[i-1].Timestamp, candles[i].Timestamp)
		}
	}
	if candles[0].Close != 1.0802 {
		t.Errorf("oldest close = %v, want 1.0802", candles[0].Close)
	}
	if candles[2].High != 1.0807 {
		t.Errorf("newest high = %v, want 1.0807", candles[2].High)
	}
}

func TestParseTimeSeriesAPIError(t *testing.T) {
	body := []byte(`{"status":"error","code":429,"message":"You have run out of API credits"}`)

	if _, err := parseTimeSeries(body); err == nil {
		t.Fatal("parseTimeSeries() error = nil, want API error")
	} else if !strings.Contains(err.Error(), "API error") {
		t.Errorf("error = %v, want API error mention", err)
	}
}

func TestParseTimeSeriesEmpty(t *testing.T) {
	body := []byte(`{"values": [], "status": "ok"}`)

	if _, err := parseTimeSeries(body); err == nil {
		t.Fatal("parseTimeSeries() error = nil, want empty-data error")
	}
}

func TestParseDatetime(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{"intraday", "2024-03-01 10:00:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Unix(), false},
		{"daily", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix(), false},
		{"garbage", "yesterday", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDatetime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDatetime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseDatetime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
