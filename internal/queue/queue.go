// Package queue implementa a fila limitada de pagamentos pendentes.
// Admissão é rejeitada (não bloqueada) quando a fila está cheia; a leitura
// em lote bloqueia até a chegada de um item ou o estouro da espera máxima.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/lckrugel/payment-gateway/internal/dtos"
)

type waiter struct {
	ch           chan struct{}
	registeredAt time.Time
}

type PaymentQueue struct {
	mu       sync.Mutex
	items    []dtos.PaymentRequest
	waiters  []waiter
	capacity int
	maxWait  time.Duration

	droppedCount   int64
	processedCount int64
}

func NewPaymentQueue(capacity int, maxWait time.Duration) *PaymentQueue {
	return &PaymentQueue{
		items:    make([]dtos.PaymentRequest, 0, capacity),
		capacity: capacity,
		maxWait:  maxWait,
	}
}

// Push adiciona o pagamento se houver espaço. Na fila cheia incrementa o
// contador de descartados e retorna false sem bloquear. Quando há um
// consumidor esperando, exatamente um é acordado.
func (q *PaymentQueue) Push(payment dtos.PaymentRequest) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		q.droppedCount++
		return false
	}

	q.items = append(q.items, payment)

	if len(q.waiters) > 0 {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		close(w.ch)
	}

	return true
}

// DequeueBatch remove e retorna até maxSize itens em ordem FIFO. Com a fila
// vazia, espera a chegada de um item até maxWait e então reavalia uma única
// vez; o retorno pode ser vazio. Esperas registradas há mais de 10x maxWait
// são descartadas antes de registrar uma nova.
func (q *PaymentQueue) DequeueBatch(ctx context.Context, maxSize int) []dtos.PaymentRequest {
	q.mu.Lock()

	if len(q.items) == 0 {
		q.pruneStaleWaiters()

		w := waiter{ch: make(chan struct{}), registeredAt: time.Now()}
		q.waiters = append(q.waiters, w)
		q.mu.Unlock()

		timer := time.NewTimer(q.maxWait)
		select {
		case <-w.ch:
			timer.Stop()
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}

		q.mu.Lock()
		q.removeWaiter(w)
	}

	n := min(maxSize, len(q.items))
	batch := make([]dtos.PaymentRequest, n)
	copy(batch, q.items[:n])
	q.items = q.items[n:]
	q.processedCount += int64(n)

	q.mu.Unlock()
	return batch
}

func (q *PaymentQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *PaymentQueue) DroppedCount() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.droppedCount
}

func (q *PaymentQueue) ProcessedCount() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processedCount
}

// pruneStaleWaiters é chamado com q.mu travado.
func (q *PaymentQueue) pruneStaleWaiters() {
	cutoff := time.Now().Add(-10 * q.maxWait)
	kept := q.waiters[:0]
	for _, w := range q.waiters {
		if w.registeredAt.After(cutoff) {
			kept = append(kept, w)
		}
	}
	q.waiters = kept
}

// removeWaiter é chamado com q.mu travado. Remove a espera caso um Push
// ainda não a tenha consumido, evitando que um wakeup futuro se perca em um
// canal que ninguém mais escuta.
func (q *PaymentQueue) removeWaiter(target waiter) {
	for i, w := range q.waiters {
		if w.ch == target.ch {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return
		}
	}
}
