package geocode

import (
	"context"
	"fmt"
	"time"

	"rental-portal/internal/models"

	"go.uber.org/zap"
)

// Geocoder is the lookup the backfill needs
type Geocoder interface {
	Lookup(ctx context.Context, address string) (Coordinates, bool)
}

// PropertyStore is the persistence the backfill needs
type PropertyStore interface {
	PropertiesMissingCoordinates(ctx context.Context) ([]models.Property, error)
	SetCoordinates(ctx context.Context, id uint, latitude, longitude string) error
}

// BackfillResult summarises one backfill run
type BackfillResult struct {
	Total      int   `json:"total"`
	Updated    int   `json:"updated"`
	Failed     int   `json:"failed"`
	DurationMs int64 `json:"durationMs"`
}

// Backfiller fills in coordinates for properties that have none
type Backfiller struct {
	geocoder Geocoder
	store    PropertyStore
	log      *zap.Logger
}

// NewBackfiller creates a backfiller
func NewBackfiller(geocoder Geocoder, store PropertyStore, log *zap.Logger) *Backfiller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backfiller{geocoder: geocoder, store: store, log: log}
}

// Backfill geocodes every property missing coordinates. Lookup failures are
// counted, not returned; only listing or context errors abort the run
func (b *Backfiller) Backfill(ctx context.Context) (*BackfillResult, error) {
	start := time.Now()
	properties, err := b.store.PropertiesMissingCoordinates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties missing coordinates: %w", err)
	}

	result := &BackfillResult{Total: len(properties)}
	for i := range properties {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		p := &properties[i]
		coords, ok := b.geocoder.Lookup(ctx, p.FullAddress())
		if !ok {
			result.Failed++
			b.log.Info("No coordinates found", zap.Uint("property_id", p.ID), zap.String("address", p.FullAddress()))
			continue
		}
		if err := b.store.SetCoordinates(ctx, p.ID, coords.Latitude, coords.Longitude); err != nil {
			result.Failed++
			b.log.Error("Failed to store coordinates", zap.Uint("property_id", p.ID), zap.Error(err))
			continue
		}
		result.Updated++
	}

	result.DurationMs = time.Since(start).Milliseconds()
	b.log.Info("Geocode backfill finished",
		zap.Int("total", result.Total),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
		zap.Int64("duration_ms", result.DurationMs))
	return result, nil
}
