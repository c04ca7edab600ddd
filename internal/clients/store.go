package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/lckrugel/payment-gateway/internal/dtos"
)

// Store é o contrato do armazenamento de pagamentos processados. A escrita é
// best-effort; a consulta sempre produz um corpo bem formado, zerado quando o
// backend está indisponível.
type Store interface {
	Record(ctx context.Context, payment dtos.ProcessedPayment) bool
	QueryRange(ctx context.Context, from, to time.Time) dtos.SummaryResponse
	Purge(ctx context.Context) error
}

// MemoryStoreClient fala com o processo de store por um unix socket local,
// com corpos JSON.
type MemoryStoreClient struct {
	httpClient *http.Client
}

func NewMemoryStoreClient(socketPath string) *MemoryStoreClient {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}

	return &MemoryStoreClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   3 * time.Second,
		},
	}
}

type storeRequest struct {
	Payment dtos.ProcessedPayment `json:"payment"`
}

type storeResponse struct {
	Success bool `json:"success"`
}

// Record grava o registro processado. Falhas são logadas e descartadas: não
// há nova tentativa e o chamador não é bloqueado pelo store.
func (c *MemoryStoreClient) Record(ctx context.Context, payment dtos.ProcessedPayment) bool {
	body, err := json.Marshal(storeRequest{Payment: payment})
	if err != nil {
		slog.Error("Erro ao serializar registro para o store", "err", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://localhost/store", bytes.NewBuffer(body))
	if err != nil {
		slog.Error("Erro ao criar requisição para o store", "err", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Erro ao gravar pagamento no store", "err", err, "correlationId", payment.CorrelationId)
		return false
	}
	defer resp.Body.Close()

	var result storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Error("Erro ao decodificar resposta do store", "err", err)
		return false
	}

	return result.Success
}

// QueryRange delega o intervalo ao store. Qualquer falha vira um agregado
// zerado em vez de erro, pois o endpoint de resumo sempre responde um corpo
// válido.
func (c *MemoryStoreClient) QueryRange(ctx context.Context, from, to time.Time) dtos.SummaryResponse {
	params := url.Values{}
	params.Set("from", from.UTC().Format(time.RFC3339))
	params.Set("to", to.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://localhost/getByRange?"+params.Encode(), nil)
	if err != nil {
		slog.Error("Erro ao criar consulta ao store", "err", err)
		return dtos.ZeroSummary()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Erro ao consultar o store", "err", err)
		return dtos.ZeroSummary()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Consulta ao store recusada", "status", resp.Status)
		return dtos.ZeroSummary()
	}

	var summary dtos.SummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		slog.Error("Erro ao decodificar resumo do store", "err", err)
		return dtos.ZeroSummary()
	}

	return summary
}

// Purge limpa o store. Best-effort, usado apenas pelo endpoint administrativo.
func (c *MemoryStoreClient) Purge(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://localhost/purge", nil)
	if err != nil {
		return fmt.Errorf("erro ao criar requisição de purge: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("erro ao limpar o store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return nil
}
