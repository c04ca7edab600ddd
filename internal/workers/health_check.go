package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lckrugel/payment-gateway/internal/dtos"
)

// HealthCheckWorker sonda periodicamente a saúde do processador default e
// atualiza o sinal de compasso. Uma sonda degradada nunca pausa o despacho:
// o caminho de fallback é o disjuntor de verdade.
type HealthCheckWorker struct {
	signal     *PacingSignal
	httpClient *http.Client
	defaultURL string
	interval   time.Duration
}

func NewHealthCheckWorker(signal *PacingSignal, defaultURL string, interval time.Duration) *HealthCheckWorker {
	return &HealthCheckWorker{
		signal:     signal,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		defaultURL: defaultURL,
		interval:   interval,
	}
}

func (hc *HealthCheckWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(hc.interval):
			if err := hc.Probe(ctx); err != nil {
				hc.signal.RecordFailure(time.Now())
				slog.Error("Erro na checagem de saúde", "err", err)
			}
		}
	}
}

// Probe executa uma checagem e atualiza o sinal de compasso quando o
// processador reporta um tempo mínimo de resposta positivo.
func (hc *HealthCheckWorker) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.defaultURL+"/payments/service-health", nil)
	if err != nil {
		return fmt.Errorf("erro ao criar requisição de health: %w", err)
	}

	resp, err := hc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao enviar requisição de health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("checagem de saúde recusada: status %d", resp.StatusCode)
	}

	var health dtos.HealthCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("erro ao decodificar resposta de health: %w", err)
	}

	if health.MinResponseTime > 0 {
		hc.signal.SetDelayMs(int64(health.MinResponseTime))
		slog.Debug("Compasso atualizado pela checagem de saúde", "delayMs", health.MinResponseTime)
	}

	if health.Failing {
		hc.signal.RecordFailure(time.Now())
		slog.Warn("Processador default reportando degradação")
	}

	return nil
}
