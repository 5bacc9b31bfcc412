package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwatch/hotspot-etl-service/internal/config"
	"github.com/emberwatch/hotspot-etl-service/internal/domain"
)

func discardTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func samplePolygon() domain.FirePolygon {
	return domain.FirePolygon{
		ID:                 "fire-a1b2c3d4e5f60708",
		RepresentativeTime: time.Date(2026, 8, 29, 5, 12, 0, 0, time.UTC),
		BoundaryWKT:        "POLYGON ((-120.46 40.12, -120.45 40.12, -120.45 40.13, -120.46 40.12))",
		BoundaryGeoJSON:    json.RawMessage(`{"type":"Polygon","coordinates":[[[-120.46,40.12],[-120.45,40.12],[-120.45,40.13],[-120.46,40.12]]]}`),
		MemberCount:        27,
		Products:           []string{"VIIRS_NOAA20_NRT", "VIIRS_SNPP_NRT"},
		IngestedAt:         time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	p := samplePolygon()

	msg, err := serializeToMessage(p)
	require.NoError(t, err)

	assert.Equal(t, []byte(p.ID), msg.Key)

	var decoded domain.FirePolygon
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, p.ID, decoded.ID)
	assert.Equal(t, p.RepresentativeTime, decoded.RepresentativeTime)
	assert.Equal(t, p.BoundaryWKT, decoded.BoundaryWKT)
	assert.Equal(t, p.MemberCount, decoded.MemberCount)
	assert.Equal(t, p.Products, decoded.Products)
}

func TestSerializeToMessage_Headers(t *testing.T) {
	msg, err := serializeToMessage(samplePolygon())
	require.NoError(t, err)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "VIIRS_NOAA20_NRT,VIIRS_SNPP_NRT", headers["products"])
	assert.Equal(t, "2026-08-29T06:00:00Z", headers["ingested_at"])
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:   []string{"broker-1:9092", "broker-2:9092"},
		KafkaSinkTopic: "validated-fire-polygons",
	}
	w := NewWriter(cfg, discardTestLogger())
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "validated-fire-polygons", w.writer.Topic)
	assert.Equal(t, "broker-1:9092,broker-2:9092", w.writer.Addr.String())
}
