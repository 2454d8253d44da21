package notify_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/marina/internal/adapters/notify"
	"github.com/phenrril/marina/internal/domain"
)

func order() *domain.Order {
	return &domain.Order{
		Number:      "BK000001",
		Status:      domain.OrderStatusPending,
		Customer:    domain.Customer{Name: "Ana", Email: "ana@mail.com", Phone: "2215550000", Address: "Calle 1", City: "La Plata", Province: "Buenos Aires"},
		Items:       []domain.OrderItem{{ProductName: "Trikini Negro", Size: "S", Quantity: 1, Price: decimal.NewFromInt(18000)}},
		TotalAmount: decimal.NewFromInt(18000),
	}
}

func TestTelegramNotifyOrder(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var chats []string
	var text string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			http.NotFound(w, r)
			return
		}
		_ = r.ParseForm()
		mu.Lock()
		chats = append(chats, r.PostForm.Get("chat_id"))
		text = r.PostForm.Get("text")
		mu.Unlock()
		if r.PostForm.Get("chat_id") == "999" {
			http.Error(w, "chat not found", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	tg := notify.NewTelegram("TOKEN", []string{"111", "222"}).WithAPIBase(srv.URL)
	require.NoError(t, tg.NotifyOrder(context.Background(), order()))
	assert.Equal(t, []string{"111", "222"}, chats)
	assert.Contains(t, text, "Pedido BK000001")
	assert.Contains(t, text, "Trikini Negro x1")
	assert.Contains(t, text, "Total: $18000.00")

	bad := notify.NewTelegram("TOKEN", []string{"999"}).WithAPIBase(srv.URL)
	assert.ErrorContains(t, bad.NotifyOrder(context.Background(), order()), "telegram status 400")

	assert.Error(t, notify.NewTelegram("", nil).NotifyOrder(context.Background(), order()))
}

type stubNotifier struct {
	err   error
	calls int
	mu    sync.Mutex
}

func TestTelegramErrorHidesToken(t *testing.T) {
	t.Parallel()

	const token = "123456:SECRETO-DEL-BOT"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	err := notify.NewTelegram(token, []string{"111"}).WithAPIBase(base).NotifyOrder(context.Background(), order())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), token)
	assert.Contains(t, err.Error(), "telegram post")

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(slow.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = notify.NewTelegram(token, []string{"111"}).WithAPIBase(slow.URL).NotifyOrder(ctx, order())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), token)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func (s *stubNotifier) NotifyOrder(context.Context, *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func TestMultiJoinsErrors(t *testing.T) {
	t.Parallel()

	ok := &stubNotifier{}
	boom := errors.New("boom")
	m := notify.Multi{&stubNotifier{err: boom}, ok}
	err := m.NotifyOrder(context.Background(), order())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.calls)

	assert.NoError(t, notify.Multi{}.NotifyOrder(context.Background(), order()))
}

type panicNotifier struct{}

func (panicNotifier) NotifyOrder(context.Context, *domain.Order) error { panic("se rompió") }

type slowNotifier struct{}

func (slowNotifier) NotifyOrder(ctx context.Context, _ *domain.Order) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestAsyncDispatch(t *testing.T) {
	t.Parallel()

	wait := func(t *testing.T, ch <-chan error) error {
		t.Helper()
		select {
		case err := <-ch:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("sin resultado")
			return nil
		}
	}

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		ch := make(chan error, 1)
		notify.NewAsync(&stubNotifier{}, time.Second, ch).Dispatch(order())
		assert.NoError(t, wait(t, ch))
	})

	t.Run("falla", func(t *testing.T) {
		t.Parallel()
		ch := make(chan error, 1)
		notify.NewAsync(&stubNotifier{err: errors.New("smtp caído")}, time.Second, ch).Dispatch(order())
		assert.EqualError(t, wait(t, ch), "smtp caído")
	})

	t.Run("panic", func(t *testing.T) {
		t.Parallel()
		ch := make(chan error, 1)
		notify.NewAsync(panicNotifier{}, time.Second, ch).Dispatch(order())
		assert.ErrorContains(t, wait(t, ch), "se rompió")
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		ch := make(chan error, 1)
		notify.NewAsync(slowNotifier{}, 20*time.Millisecond, ch).Dispatch(order())
		assert.ErrorIs(t, wait(t, ch), context.DeadlineExceeded)
	})

	t.Run("nil seguro", func(t *testing.T) {
		t.Parallel()
		var a *notify.Async
		a.Dispatch(order())
		notify.NewAsync(nil, 0, nil).Dispatch(order())
	})
}
