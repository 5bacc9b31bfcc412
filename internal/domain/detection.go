package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Confidence is the categorical detection confidence reported by FIRMS.
type Confidence string

const (
	ConfidenceLow     Confidence = "l"
	ConfidenceNominal Confidence = "n"
	ConfidenceHigh    Confidence = "h"
)

// DefaultProducts are the near-real-time VIIRS products fetched when a run
// does not name its own set.
var DefaultProducts = []string{"VIIRS_SNPP_NRT", "VIIRS_NOAA20_NRT", "VIIRS_NOAA21_NRT"}

// Detection is a single sensor-reported thermal anomaly.
type Detection struct {
	Lon        float64    `json:"lon"`
	Lat        float64    `json:"lat"`
	Confidence Confidence `json:"confidence"`
	AcquiredAt time.Time  `json:"acquired_at"`
	Product    string     `json:"product"`
}

// ParseAcquiredAt combines a FIRMS acq_date ("2006-01-02") with an acq_time
// HHMM string into a UTC timestamp. Time strings shorter than four digits are
// zero-left-padded, so "932" parses as 09:32.
func ParseAcquiredAt(acqDate, acqTime string) (time.Time, error) {
	acqDate = strings.TrimSpace(acqDate)
	acqTime = strings.TrimSpace(acqTime)

	date, err := time.Parse("2006-01-02", acqDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse acq_date %q: %w", acqDate, err)
	}

	if len(acqTime) == 0 || len(acqTime) > 4 {
		return time.Time{}, fmt.Errorf("parse acq_time %q: want 1-4 digits", acqTime)
	}
	for len(acqTime) < 4 {
		acqTime = "0" + acqTime
	}

	hour, errH := strconv.Atoi(acqTime[:2])
	mins, errM := strconv.Atoi(acqTime[2:])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || mins < 0 || mins > 59 {
		return time.Time{}, fmt.Errorf("parse acq_time %q: not a valid HHMM", acqTime)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		hour, mins, 0, 0, time.UTC,
	), nil
}

// ParseConfidence maps a raw FIRMS confidence value to a Confidence level.
// Unknown values are an error rather than a silent downgrade, since
// corroboration counts depend on confidence being trustworthy.
func ParseConfidence(raw string) (Confidence, error) {
	switch Confidence(strings.ToLower(strings.TrimSpace(raw))) {
	case ConfidenceLow:
		return ConfidenceLow, nil
	case ConfidenceNominal:
		return ConfidenceNominal, nil
	case ConfidenceHigh:
		return ConfidenceHigh, nil
	default:
		return "", fmt.Errorf("unknown confidence value %q", raw)
	}
}

// BoundingBox is a FIRMS area query region: either the whole world or an
// explicit WGS-84 degree rectangle.
type BoundingBox struct {
	World  bool
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// ParseBoundingBox accepts "world" or "minLon,minLat,maxLon,maxLat".
func ParseBoundingBox(s string) (BoundingBox, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "world") {
		return BoundingBox{World: true}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box %q: want \"world\" or 4 comma-separated values", s)
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bounding box %q: value %d: %w", s, i+1, err)
		}
		vals[i] = v
	}

	b := BoundingBox{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}
	if b.MinLon < -180 || b.MaxLon > 180 || b.MinLat < -90 || b.MaxLat > 90 {
		return BoundingBox{}, fmt.Errorf("bounding box %q: coordinates out of range", s)
	}
	if b.MinLon >= b.MaxLon || b.MinLat >= b.MaxLat {
		return BoundingBox{}, fmt.Errorf("bounding box %q: min must be strictly less than max", s)
	}
	return b, nil
}

// Query renders the box in the form the FIRMS area API expects.
func (b BoundingBox) Query() string {
	if b.World {
		return "world"
	}
	return fmt.Sprintf("%s,%s,%s,%s",
		formatCoord(b.MinLon), formatCoord(b.MinLat),
		formatCoord(b.MaxLon), formatCoord(b.MaxLat))
}

func (b BoundingBox) String() string { return b.Query() }

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
