package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lckrugel/payment-gateway/internal/dtos"
)

func TestProbeUpdatesPacingSignal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/service-health", r.URL.Path)
		json.NewEncoder(w).Encode(dtos.HealthCheckResponse{Failing: false, MinResponseTime: 75})
	}))
	defer srv.Close()

	signal := NewPacingSignal()
	hc := NewHealthCheckWorker(signal, srv.URL, time.Second)

	require.NoError(t, hc.Probe(context.Background()))
	assert.Equal(t, int64(75), signal.DelayMs())
}

func TestProbeIgnoresNonPositiveResponseTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dtos.HealthCheckResponse{Failing: false, MinResponseTime: 0})
	}))
	defer srv.Close()

	signal := NewPacingSignal()
	signal.SetDelayMs(40)
	hc := NewHealthCheckWorker(signal, srv.URL, time.Second)

	require.NoError(t, hc.Probe(context.Background()))
	assert.Equal(t, int64(40), signal.DelayMs())
}

func TestProbeRecordsDegradedProcessor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dtos.HealthCheckResponse{Failing: true, MinResponseTime: 120})
	}))
	defer srv.Close()

	signal := NewPacingSignal()
	hc := NewHealthCheckWorker(signal, srv.URL, time.Second)

	require.NoError(t, hc.Probe(context.Background()))

	// Degradação não zera o compasso nem pausa o despacho.
	assert.Equal(t, int64(120), signal.DelayMs())
	assert.False(t, signal.LastFailure().IsZero())
}

func TestProbeReturnsErrorOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	signal := NewPacingSignal()
	hc := NewHealthCheckWorker(signal, srv.URL, time.Second)

	assert.Error(t, hc.Probe(context.Background()))
	assert.Zero(t, signal.DelayMs())
}

func TestStartStopsOnContextCancel(t *testing.T) {
	signal := NewPacingSignal()
	hc := NewHealthCheckWorker(signal, "http://localhost:0", time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hc.Start(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor de saúde não parou após o cancelamento")
	}
}
