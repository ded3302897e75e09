package main

import (
	"errors"
	"flag"
	"io"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 1, 8, 0, 0, 0, time.FixedZone("PHT", 8*3600))
}

func TestParseFlags_Defaults(t *testing.T) {
	r, err := parseFlags(nil, io.Discard, fixedNow)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if r.StationID != "station-1" || *r.PH != 6.5 || *r.SoilMoisture != 50 || *r.Temperature != 25 {
		t.Errorf("reading = %+v", r)
	}
	if r.TopN != nil || r.Sequence != nil {
		t.Errorf("optional fields set: top_n=%v seq=%v", r.TopN, r.Sequence)
	}
	if r.Timestamp.Location() != time.UTC || !r.Timestamp.Equal(fixedNow()) {
		t.Errorf("Timestamp = %v", r.Timestamp)
	}
}

func TestParseFlags_Values(t *testing.T) {
	args := []string{"-station", "plot-7", "-ph", "5.2", "-moisture", "33", "-temp", "19.5", "-location", "Ridge", "-top-n", "5", "-seq", "12"}
	r, err := parseFlags(args, io.Discard, fixedNow)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if r.StationID != "plot-7" || *r.PH != 5.2 || *r.SoilMoisture != 33 || *r.Temperature != 19.5 || r.Location != "Ridge" {
		t.Errorf("reading = %+v", r)
	}
	if r.TopN == nil || *r.TopN != 5 || r.Sequence == nil || *r.Sequence != 12 {
		t.Errorf("top_n=%v seq=%v", r.TopN, r.Sequence)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "ph out of range", args: []string{"-ph", "15"}, want: "ph must be <= 14"},
		{name: "moisture negative", args: []string{"-moisture", "-1"}, want: "soil_moisture_pct must be >= 0"},
		{name: "empty station", args: []string{"-station", ""}, want: "station_id is required"},
		{name: "top n too large", args: []string{"-top-n", "60"}, want: "top_n must be <= 50"},
		{name: "unknown flag", args: []string{"-humidity", "3"}, want: "flag provided but not defined"},
		{name: "extra args", args: []string{"now"}, want: "unexpected arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, io.Discard, fixedNow)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v; want containing %q", err, tt.want)
			}
		})
	}
}

func TestParseFlags_Help(t *testing.T) {
	_, err := parseFlags([]string{"-h"}, io.Discard, fixedNow)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("err = %v; want flag.ErrHelp", err)
	}
}
