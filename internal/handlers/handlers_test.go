package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lckrugel/payment-gateway/internal/dtos"
	"github.com/lckrugel/payment-gateway/internal/queue"
)

type stubStore struct {
	mu       sync.Mutex
	summary  dtos.SummaryResponse
	from, to time.Time
	purged   bool
}

func (s *stubStore) Record(context.Context, dtos.ProcessedPayment) bool { return true }

func (s *stubStore) QueryRange(_ context.Context, from, to time.Time) dtos.SummaryResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.from, s.to = from, to
	return s.summary
}

func (s *stubStore) Purge(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purged = true
	return nil
}

func setupRouter(q *queue.PaymentQueue, store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewPaymentHandlers(q, store)
	r.POST("payments", h.HandlePayment)
	r.GET("payments-summary", h.HandlePaymentSummary)
	r.POST("payments-purge", h.PurgePayments)

	return r
}

func TestHandlePaymentQueuesAndReturns201(t *testing.T) {
	q := queue.NewPaymentQueue(10, 10*time.Millisecond)
	r := setupRouter(q, &stubStore{})

	body := `{"correlationId":"4a7901b8-7d0d-4e1e-ae1b-4a481f72cc1a","amount":"19.90"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Body.String())
	require.Equal(t, 1, q.Len())

	queued := q.DequeueBatch(context.Background(), 1)
	require.Len(t, queued, 1)
	assert.Equal(t, "4a7901b8-7d0d-4e1e-ae1b-4a481f72cc1a", queued[0].CorrelationId)
	assert.True(t, queued[0].Amount.Equal(decimal.NewFromFloat(19.90)))
}

func TestHandlePaymentRejectsMalformedBody(t *testing.T) {
	q := queue.NewPaymentQueue(10, 10*time.Millisecond)
	r := setupRouter(q, &stubStore{})

	tests := []struct {
		name string
		body string
	}{
		{name: "json inválido", body: `{"correlationId":`},
		{name: "correlationId fora do formato uuid", body: `{"correlationId":"abc","amount":"10.00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(tt.body))
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestHandlePaymentReturns201OnDroppedPush(t *testing.T) {
	q := queue.NewPaymentQueue(1, 10*time.Millisecond)
	r := setupRouter(q, &stubStore{})

	for range 3 {
		body := `{"correlationId":"4a7901b8-7d0d-4e1e-ae1b-4a481f72cc1a","amount":"19.90"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	assert.Equal(t, 1, q.Len())
	assert.Equal(t, int64(2), q.DroppedCount())
}

func TestHandlePaymentSummaryReturnsStoreAggregate(t *testing.T) {
	store := &stubStore{
		summary: dtos.SummaryResponse{
			Default:  dtos.APISummary{TotalRequests: 43236, TotalAmount: decimal.NewFromFloat(415542345.98)},
			Fallback: dtos.APISummary{TotalRequests: 423545, TotalAmount: decimal.NewFromFloat(329347.34)},
		},
	}
	r := setupRouter(queue.NewPaymentQueue(10, 10*time.Millisecond), store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/payments-summary?from=2024-01-01T00:00:00Z&to=2024-01-02T00:00:00Z", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"default": {"totalRequests": 43236, "totalAmount": "415542345.98"},
		"fallback": {"totalRequests": 423545, "totalAmount": "329347.34"}
	}`, w.Body.String())

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), store.from.UTC())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), store.to.UTC())
}

func TestHandlePaymentSummaryRejectsBadRangeParams(t *testing.T) {
	r := setupRouter(queue.NewPaymentQueue(10, 10*time.Millisecond), &stubStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments-summary?from=ontem", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurgePaymentsDelegatesToStore(t *testing.T) {
	store := &stubStore{}
	r := setupRouter(queue.NewPaymentQueue(10, 10*time.Millisecond), store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments-purge", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.purged)
}
