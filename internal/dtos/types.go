package dtos

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest é o corpo recebido no intake. Imutável após admitido na fila.
type PaymentRequest struct {
	CorrelationId string          `json:"correlationId"`
	Amount        decimal.Decimal `json:"amount"`
}

// EnrichedPayment é o PaymentRequest carimbado com o timestamp do lote.
// Todos os pagamentos de um mesmo lote compartilham o mesmo timestamp.
type EnrichedPayment struct {
	CorrelationId   string          `json:"correlationId"`
	Amount          decimal.Decimal `json:"amount"`
	RequestedAt     string          `json:"requestedAt"`
	RequestedAtUnix int64           `json:"requestedAtUnix"`
}

// ProcessedPayment é o registro gravado no store, no máximo uma vez por pagamento.
type ProcessedPayment struct {
	CorrelationId   string          `json:"correlationId"`
	Amount          decimal.Decimal `json:"amount"`
	RequestedAt     string          `json:"requestedAt"`
	RequestedAtUnix int64           `json:"requestedAtUnix"`
	Processed       bool            `json:"processed"`
	UsedFallback    bool            `json:"usedFallback"`
}

// SubmitResult é o resultado de uma submissão com fallback.
type SubmitResult struct {
	Success      bool
	UsedFallback bool
}

type SummaryResponse struct {
	Default  APISummary `json:"default"`
	Fallback APISummary `json:"fallback"`
}

type APISummary struct {
	TotalRequests int             `json:"totalRequests"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

type HealthCheckResponse struct {
	Failing         bool `json:"failing"`
	MinResponseTime int  `json:"minResponseTime"`
}

type PaymentAPI uint8

const (
	DEFAULT_API PaymentAPI = iota
	FALLBACK_API
)

// Enrich carimba o pagamento com o timestamp compartilhado do lote.
func (p PaymentRequest) Enrich(now time.Time) EnrichedPayment {
	return EnrichedPayment{
		CorrelationId:   p.CorrelationId,
		Amount:          p.Amount,
		RequestedAt:     now.UTC().Format("2006-01-02T15:04:05.000Z"),
		RequestedAtUnix: now.UnixMilli(),
	}
}

// ProcessedRecord promove o pagamento enriquecido a registro processado.
func (p EnrichedPayment) ProcessedRecord(usedFallback bool) ProcessedPayment {
	return ProcessedPayment{
		CorrelationId:   p.CorrelationId,
		Amount:          p.Amount,
		RequestedAt:     p.RequestedAt,
		RequestedAtUnix: p.RequestedAtUnix,
		Processed:       true,
		UsedFallback:    usedFallback,
	}
}

// ZeroSummary é a resposta bem formada usada quando o store está indisponível.
func ZeroSummary() SummaryResponse {
	return SummaryResponse{
		Default:  APISummary{TotalAmount: decimal.Zero},
		Fallback: APISummary{TotalAmount: decimal.Zero},
	}
}
