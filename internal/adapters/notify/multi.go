package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/phenrril/marina/internal/domain"
)

// Multi reparte el aviso a todos los canales configurados.
type Multi []domain.OrderNotifier

func (m Multi) NotifyOrder(ctx context.Context, o *domain.Order) error {
	if len(m) == 0 {
		return nil
	}
	var errs []error
	for _, n := range m {
		if err := n.NotifyOrder(ctx, o); err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", n, err))
		}
	}
	return errors.Join(errs...)
}
