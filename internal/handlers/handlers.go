package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lckrugel/payment-gateway/internal/clients"
	"github.com/lckrugel/payment-gateway/internal/dtos"
	"github.com/lckrugel/payment-gateway/internal/queue"
)

type PaymentHandlers struct {
	queue *queue.PaymentQueue
	store clients.Store
}

func NewPaymentHandlers(q *queue.PaymentQueue, store clients.Store) *PaymentHandlers {
	return &PaymentHandlers{
		queue: q,
		store: store,
	}
}

// HandlePayment admite o pagamento na fila e responde imediatamente: a
// admissão é desacoplada do processamento. Um descarte por fila cheia vira
// contador, não código de erro.
func (h *PaymentHandlers) HandlePayment(c *gin.Context) {
	var paymentData dtos.PaymentRequest
	if err := c.ShouldBindJSON(&paymentData); err != nil {
		slog.Error("Erro ao vincular dados de pagamento", "err", err)
		c.Status(http.StatusBadRequest)
		return
	}

	if _, err := uuid.Parse(paymentData.CorrelationId); err != nil {
		slog.Error("correlationId inválido", "correlationId", paymentData.CorrelationId)
		c.Status(http.StatusBadRequest)
		return
	}

	if !h.queue.Push(paymentData) {
		slog.Debug("Pagamento descartado por fila cheia", "correlationId", paymentData.CorrelationId)
	}

	c.Status(http.StatusCreated)
}

// HandlePaymentSummary delega o intervalo ao store. O corpo é sempre bem
// formado, mesmo com o backend indisponível.
func (h *PaymentHandlers) HandlePaymentSummary(c *gin.Context) {
	fromQS := c.Query("from")
	toQS := c.Query("to")

	var from time.Time
	if fromQS != "" {
		var err error
		from, err = time.Parse(time.RFC3339, fromQS)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Formato inválido para o parâmetro 'from'",
				"error":   err.Error(),
			})
			return
		}
	}

	to := time.Now()
	if toQS != "" {
		var err error
		to, err = time.Parse(time.RFC3339, toQS)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Formato inválido para o parâmetro 'to'",
				"error":   err.Error(),
			})
			return
		}
	}

	summary := h.store.QueryRange(c.Request.Context(), from, to)

	slog.Debug("Summary", "from", from, "to", to, "summary", summary)

	c.JSON(http.StatusOK, summary)
}

// PurgePayments limpa o store. Best-effort: falhas são logadas e a resposta
// segue 200 para não travar rotinas administrativas.
func (h *PaymentHandlers) PurgePayments(c *gin.Context) {
	if err := h.store.Purge(c.Request.Context()); err != nil {
		slog.Error("Erro ao limpar pagamentos", "err", err)
	}
	c.Status(http.StatusOK)
}
