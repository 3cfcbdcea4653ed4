package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rental-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogle(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{
		APIKey:           "test-key",
		BaseURL:          srv.URL,
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	}, nil)
	require.NoError(t, err)
	return c, &calls
}

func TestFormatCoordinate(t *testing.T) {
	assert.Equal(t, "40.71278", FormatCoordinate(40.712776))
	assert.Equal(t, "-74.00597", FormatCoordinate(-74.005974))
	assert.Equal(t, "0.00000", FormatCoordinate(0))
}

func TestLookupSuccessIsCached(t *testing.T) {
	c, calls := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "123 Main St, Springfield", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":39.7817213,"lng":-89.6501481}}}]}`)
	})

	coords, ok := c.Lookup(context.Background(), "123 Main St, Springfield")
	require.True(t, ok)
	assert.Equal(t, Coordinates{Latitude: "39.78172", Longitude: "-89.65015"}, coords)

	coords, ok = c.Lookup(context.Background(), "  123 main st,   SPRINGFIELD ")
	require.True(t, ok)
	assert.Equal(t, "39.78172", coords.Latitude)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestLookupNoMatch(t *testing.T) {
	c, _ := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})
	_, ok := c.Lookup(context.Background(), "nowhere")
	assert.False(t, ok)
}

func TestLookupWithoutKey(t *testing.T) {
	c, err := NewClient(Options{}, nil)
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	_, ok := c.Lookup(context.Background(), "123 Main St")
	assert.False(t, ok)
}

func TestLookupOpensBreakerAfterFailures(t *testing.T) {
	c, calls := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 4; i++ {
		_, ok := c.Lookup(context.Background(), fmt.Sprintf("address %d", i))
		assert.False(t, ok)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))

	open, failures, _ := c.breaker.GetStatus()
	assert.True(t, open)
	assert.Equal(t, 2, failures)
}

func TestCircuitBreakerResets(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	cb.RecordFailure(500)
	assert.False(t, cb.CanProceed())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.CanProceed())
	cb.RecordSuccess()
	open, _, total := cb.GetStatus()
	assert.False(t, open)
	assert.Equal(t, 2, total)
}

type fakeGeocoder map[string]Coordinates

func (f fakeGeocoder) Lookup(_ context.Context, address string) (Coordinates, bool) {
	c, ok := f[address]
	return c, ok
}

type fakeStore struct {
	properties []models.Property
	set        map[uint]Coordinates
}

func (f *fakeStore) PropertiesMissingCoordinates(context.Context) ([]models.Property, error) {
	return f.properties, nil
}

func (f *fakeStore) SetCoordinates(_ context.Context, id uint, lat, lng string) error {
	f.set[id] = Coordinates{Latitude: lat, Longitude: lng}
	return nil
}

func TestBackfill(t *testing.T) {
	found := models.Property{ID: 1, Address: "1 A St", City: "Springfield", State: "IL", ZipCode: "62701"}
	missing := models.Property{ID: 2, Address: "2 B St", City: "Nowhere", State: "XX", ZipCode: "00000"}
	store := &fakeStore{properties: []models.Property{found, missing}, set: map[uint]Coordinates{}}
	geo := fakeGeocoder{found.FullAddress(): {Latitude: "39.78172", Longitude: "-89.65015"}}

	result, err := NewBackfiller(geo, store, nil).Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "39.78172", store.set[1].Latitude)
	_, ok := store.set[2]
	assert.False(t, ok)
}
