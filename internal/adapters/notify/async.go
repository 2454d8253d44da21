package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/marina/internal/domain"
)

// Async manda el aviso en una goroutine propia con timeout.
// Los errores se loguean y, si hay canal, se publican sin bloquear.
type Async struct {
	next     domain.OrderNotifier
	timeout  time.Duration
	outcomes chan<- error
}

func NewAsync(next domain.OrderNotifier, timeout time.Duration, outcomes chan<- error) *Async {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Async{next: next, timeout: timeout, outcomes: outcomes}
}

func (a *Async) Dispatch(o *domain.Order) {
	if a == nil || a.next == nil || o == nil {
		return
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	go a.run(&cp)
}

func (a *Async) run(o *domain.Order) {
	var err error
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic notificando: %v", rec)
		}
		if err != nil {
			log.Warn().Err(err).Str("order", o.Number).Msg("notificación de pedido falló")
		} else {
			log.Info().Str("order", o.Number).Msg("pedido notificado")
		}
		if a.outcomes != nil {
			select {
			case a.outcomes <- err:
			default:
			}
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	err = a.next.NotifyOrder(ctx, o)
}

// Noop se usa cuando no hay ningún canal configurado.
type Noop struct{}

func (Noop) NotifyOrder(context.Context, *domain.Order) error { return nil }
