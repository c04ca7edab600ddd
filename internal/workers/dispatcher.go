package workers

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lckrugel/payment-gateway/internal/clients"
	"github.com/lckrugel/payment-gateway/internal/dtos"
	"github.com/lckrugel/payment-gateway/internal/queue"
)

// Lotes vazios consecutivos acima deste limiar indicam ociosidade sustentada.
const sustainedIdleStreak = 5

// Submitter é o contrato do cliente de processadores usado pelo despachante.
type Submitter interface {
	SubmitWithFallback(ctx context.Context, payment dtos.EnrichedPayment) dtos.SubmitResult
}

// DispatcherConfig são os parâmetros de despacho e compasso.
type DispatcherConfig struct {
	BatchSize           int
	ConcurrentRequests  int
	MinWait             time.Duration
	MaxWait             time.Duration
	QueueDrainThreshold int
}

// Dispatcher é o laço central de despacho: retira lotes da fila, submete em
// chunks com concorrência limitada, encaminha sucessos ao store e adapta o
// compasso ao tamanho da fila e à saúde do processador.
type Dispatcher struct {
	queue     *queue.PaymentQueue
	submitter Submitter
	store     clients.Store
	signal    *PacingSignal
	cfg       DispatcherConfig

	emptyStreak int
}

func NewDispatcher(q *queue.PaymentQueue, submitter Submitter, store clients.Store, signal *PacingSignal, cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		queue:     q,
		submitter: submitter,
		store:     store,
		signal:    signal,
		cfg:       cfg,
	}
}

// Start roda o laço até o cancelamento do contexto. Chunks em voo terminam
// antes do retorno; nenhum erro transiente derruba o laço.
func (d *Dispatcher) Start(ctx context.Context) {
	slog.Info("Despachante de pagamentos iniciado",
		"batchSize", d.cfg.BatchSize,
		"concurrentRequests", d.cfg.ConcurrentRequests,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Despachante recebeu sinal de parada")
			return
		default:
		}

		delay := d.runIteration(ctx)

		if delay > 0 {
			select {
			case <-ctx.Done():
				slog.Info("Despachante recebeu sinal de parada")
				return
			case <-time.After(delay):
			}
		}
	}
}

// runIteration processa um lote e devolve o delay até a próxima iteração.
// Um pânico na iteração é contido aqui e pausa o laço por MaxWait.
func (d *Dispatcher) runIteration(ctx context.Context) (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Pânico no laço de despacho", "panic", r)
			delay = d.cfg.MaxWait
		}
	}()

	batch := d.queue.DequeueBatch(ctx, d.cfg.BatchSize)
	if len(batch) == 0 {
		d.emptyStreak++
	} else {
		d.emptyStreak = 0
		d.processBatch(ctx, batch)
	}

	return d.nextDelay()
}

// processBatch submete o lote em chunks sequenciais de até
// ConcurrentRequests itens; dentro de um chunk os itens correm em paralelo e
// todos assentam antes do próximo chunk começar. Todos os itens recebem o
// mesmo timestamp, lido uma única vez no início do lote.
func (d *Dispatcher) processBatch(ctx context.Context, batch []dtos.PaymentRequest) {
	now := time.Now()

	for chunk := range slices.Chunk(batch, d.cfg.ConcurrentRequests) {
		g := new(errgroup.Group)
		for _, payment := range chunk {
			g.Go(func() error {
				d.dispatch(ctx, payment.Enrich(now))
				return nil
			})
		}
		g.Wait()
	}
}

// dispatch leva um pagamento até o processador e, aceito, encaminha o
// registro ao store. A escrita no store não é retentada.
func (d *Dispatcher) dispatch(ctx context.Context, payment dtos.EnrichedPayment) {
	result := d.submitter.SubmitWithFallback(ctx, payment)
	if !result.Success {
		// Só acontece no desligamento, com o contexto cancelado.
		slog.Warn("Submissão abandonada", "correlationId", payment.CorrelationId)
		return
	}

	if ok := d.store.Record(ctx, payment.ProcessedRecord(result.UsedFallback)); !ok {
		slog.Warn("Registro não gravado no store", "correlationId", payment.CorrelationId)
	}
}

// nextDelay calcula o compasso da próxima iteração a partir da profundidade
// da fila, da sequência de lotes vazios e do sinal do monitor de saúde.
func (d *Dispatcher) nextDelay() time.Duration {
	depth := d.queue.Len()

	switch {
	case depth == 0 && d.emptyStreak > sustainedIdleStreak:
		return d.cfg.MaxWait
	case depth == 0:
		return 2 * d.cfg.MinWait
	case depth > d.cfg.QueueDrainThreshold:
		return 0
	default:
		if ms := d.signal.DelayMs(); ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
		return d.cfg.MinWait
	}
}
