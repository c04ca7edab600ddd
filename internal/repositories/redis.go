// Package repositories contém o backend Redis do store de pagamentos,
// usado em implantações sem o processo de store ao lado.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/lckrugel/payment-gateway/internal/dtos"
)

const (
	defaultSetKey  = "payments:processed:default"
	fallbackSetKey = "payments:processed:fallback"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		PoolSize:     8,
		MinIdleConns: 1,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &RedisStore{client: rdb}
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Record grava o registro em um sorted set por rota, com o timestamp do lote
// como score para consultas por intervalo. Best-effort como o store remoto:
// falhas são logadas e descartadas.
func (r *RedisStore) Record(ctx context.Context, payment dtos.ProcessedPayment) bool {
	data, err := json.Marshal(payment)
	if err != nil {
		slog.Error("Erro ao serializar pagamento processado", "err", err)
		return false
	}

	key := defaultSetKey
	if payment.UsedFallback {
		key = fallbackSetKey
	}

	err = r.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(payment.RequestedAtUnix),
		Member: data,
	}).Err()
	if err != nil {
		slog.Error("Erro ao armazenar pagamento processado", "err", err, "correlationId", payment.CorrelationId)
		return false
	}

	return true
}

// QueryRange agrega os registros das duas rotas dentro do intervalo. Falhas
// viram um resumo zerado, nunca erro.
func (r *RedisStore) QueryRange(ctx context.Context, from, to time.Time) dtos.SummaryResponse {
	defaultSummary, err := r.summarize(ctx, defaultSetKey, from, to)
	if err != nil {
		slog.Error("Erro ao buscar resumo da rota default", "err", err)
		return dtos.ZeroSummary()
	}

	fallbackSummary, err := r.summarize(ctx, fallbackSetKey, from, to)
	if err != nil {
		slog.Error("Erro ao buscar resumo da rota fallback", "err", err)
		return dtos.ZeroSummary()
	}

	return dtos.SummaryResponse{
		Default:  defaultSummary,
		Fallback: fallbackSummary,
	}
}

func (r *RedisStore) summarize(ctx context.Context, key string, from, to time.Time) (dtos.APISummary, error) {
	results, err := r.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: strconv.FormatInt(to.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return dtos.APISummary{}, fmt.Errorf("erro ao buscar pagamentos por data: %w", err)
	}

	totalAmount := decimal.Zero
	totalRequests := 0

	for _, result := range results {
		var payment dtos.ProcessedPayment
		if err := json.Unmarshal([]byte(result), &payment); err != nil {
			continue // Ignora entradas inválidas
		}
		totalRequests++
		totalAmount = totalAmount.Add(payment.Amount)
	}

	return dtos.APISummary{
		TotalRequests: totalRequests,
		TotalAmount:   totalAmount,
	}, nil
}

// Purge limpa todos os registros processados.
func (r *RedisStore) Purge(ctx context.Context) error {
	err := r.client.Del(ctx, defaultSetKey, fallbackSetKey).Err()
	if err != nil {
		return fmt.Errorf("erro ao limpar pagamentos processados: %w", err)
	}
	return nil
}
