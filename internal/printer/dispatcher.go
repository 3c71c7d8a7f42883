package printer

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher накапливает чеки завершённых заказов и отправляет их на печать
// в фоне. Неотправленные чеки остаются в очереди до следующей попытки.
type Dispatcher struct {
	client *Client
	logger *zap.Logger

	mu    sync.Mutex
	queue []Receipt
}

// NewDispatcher создаёт диспетчер печати. Клиент может быть nil — тогда
// Enqueue ничего не делает, а Run сразу возвращается.
func NewDispatcher(client *Client, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger,
	}
}

// Enqueue ставит чек в очередь на печать.
func (d *Dispatcher) Enqueue(receipt Receipt) {
	if d.client == nil {
		return
	}

	d.mu.Lock()
	d.queue = append(d.queue, receipt)
	d.mu.Unlock()
}

// Run запускает цикл отправки чеков и блокируется до отмены контекста.
func (d *Dispatcher) Run(ctx context.Context) {
	if d.client == nil {
		return
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.flush(ctx)
		}
	}
}

func (d *Dispatcher) flush(ctx context.Context) {
	d.mu.Lock()
	pending := d.queue
	d.queue = nil
	d.mu.Unlock()

	for i, receipt := range pending {
		code, retryAfter, err := d.client.PrintReceipt(ctx, receipt)
		if err != nil {
			d.logger.Warn("receipt print failed, will retry",
				zap.String("orderID", receipt.OrderID), zap.Error(err))
			d.requeue(pending[i:])
			return
		}

		if code == http.StatusTooManyRequests {
			d.requeue(pending[i:])
			if retryAfter > 0 {
				timer := time.NewTimer(retryAfter)
				select {
				case <-ctx.Done():
					timer.Stop()
				case <-timer.C:
				}
			}
			return
		}
	}
}

func (d *Dispatcher) requeue(receipts []Receipt) {
	d.mu.Lock()
	d.queue = append(append([]Receipt{}, receipts...), d.queue...)
	d.mu.Unlock()
}
