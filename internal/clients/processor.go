package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lckrugel/payment-gateway/internal/dtos"
)

const retryBackoff = 1 * time.Millisecond

// ProcessorClient submete pagamentos ao processador default com fallback
// para o secundário.
type ProcessorClient struct {
	httpClient  *http.Client
	defaultURL  string
	fallbackURL string
}

func NewProcessorClient(defaultURL, fallbackURL string) *ProcessorClient {
	return &ProcessorClient{
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		defaultURL:  defaultURL,
		fallbackURL: fallbackURL,
	}
}

// SubmitWithFallback tenta o processador default e, se recusado, o fallback.
// Falhando ambos, espera um backoff curto e recomeça: o laço não tem limite
// de tentativas nem caminho de descarte. Um pagamento admitido só deixa de
// ser submetido se o contexto for cancelado no desligamento do processo.
func (c *ProcessorClient) SubmitWithFallback(ctx context.Context, payment dtos.EnrichedPayment) dtos.SubmitResult {
	for attempt := 1; ; attempt++ {
		err := c.submit(ctx, c.defaultURL, payment)
		if err == nil {
			return dtos.SubmitResult{Success: true, UsedFallback: false}
		}

		fallbackErr := c.submit(ctx, c.fallbackURL, payment)
		if fallbackErr == nil {
			return dtos.SubmitResult{Success: true, UsedFallback: true}
		}

		slog.Debug("Ciclo de submissão falhou",
			"tentativa", attempt,
			"correlationId", payment.CorrelationId,
			"errDefault", err,
			"errFallback", fallbackErr,
		)

		select {
		case <-ctx.Done():
			return dtos.SubmitResult{Success: false}
		case <-time.After(retryBackoff):
		}
	}
}

func (c *ProcessorClient) submit(ctx context.Context, baseURL string, payment dtos.EnrichedPayment) error {
	payload, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("erro ao serializar pagamento: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/payments", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("erro ao criar requisição HTTP: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao enviar requisição HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	return nil
}

type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %s", e.Status)
}
