package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"passtrack/internal/metrics"
	"passtrack/internal/midpass"
	"passtrack/internal/models"
	"passtrack/internal/telegram"
)

// ErrRunInProgress - прогон уже идёт, новый триггер пропущен.
var ErrRunInProgress = errors.New("autoupdate run already in progress")

// RunCounter - счётчики одного прогона автообновления. Живёт от старта до
// итогового лога и нигде не сохраняется.
type RunCounter struct {
	OrdersAll           int
	OrdersChecked       int
	OrdersUpdated       int
	OrdersError         int
	OrdersErrorNotFound int
	UsersChecked        int
	Routes              map[string]int
	Duration            time.Duration

	users        map[int64]struct{}
	blockedUsers map[int64]struct{}
}

func newRunCounter() *RunCounter {
	return &RunCounter{
		Routes:       make(map[string]int),
		users:        make(map[int64]struct{}),
		blockedUsers: make(map[int64]struct{}),
	}
}

// AutoupdateService - планировщик пакетного обновления статусов. Заказы
// обходятся строго последовательно с паузой между ними: это ограничивает
// исходящую нагрузку на midpass и держит ротацию эндпоинтов свободной от гонок.
type AutoupdateService struct {
	orders   OrderEngine
	users    UserFinder
	notifier telegram.Notifier

	schedules []string
	location  *time.Location
	pacing    time.Duration

	cron    *cron.Cron
	running atomic.Bool
	log     *zap.Logger
}

// NewAutoupdateService создаёт планировщик автообновления.
func NewAutoupdateService(
	orders OrderEngine,
	users UserFinder,
	notifier telegram.Notifier,
	schedules []string,
	location *time.Location,
	pacing time.Duration,
	log *zap.Logger,
) *AutoupdateService {
	if location == nil {
		location = time.UTC
	}
	if pacing <= 0 {
		pacing = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoupdateService{
		orders:    orders,
		users:     users,
		notifier:  notifier,
		schedules: schedules,
		location:  location,
		pacing:    pacing,
		log:       log,
	}
}

// Start регистрирует cron-расписания и запускает их.
func (s *AutoupdateService) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithLocation(s.location))

	for _, spec := range s.schedules {
		spec := spec
		if _, err := s.cron.AddFunc(spec, func() {
			if err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
				s.log.Error("autoupdate run failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		s.log.Info("autoupdate schedule registered", zap.String("spec", spec))
	}

	s.cron.Start()
	return nil
}

// Stop останавливает расписания и дожидается завершения активного прогона.
func (s *AutoupdateService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunOnce выполняет один прогон. Перекрывающиеся триггеры отбрасываются:
// одновременно допустим максимум один активный прогон.
func (s *AutoupdateService) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("autoupdate trigger skipped, run already in progress")
		return ErrRunInProgress
	}
	defer s.running.Store(false)

	s.run(ctx)
	return nil
}

// run выполняет прогон и возвращает его счётчики.
func (s *AutoupdateService) run(ctx context.Context) *RunCounter {
	start := time.Now()
	counter := newRunCounter()

	s.log.Info("autoupdate run started", zap.Time("start", start))
	metrics.AutoupdateRunsTotal.Inc()

	// Итоговая сводка уходит в лог при любом исходе: нормальном завершении,
	// обрыве по таймауту или панике внутри цикла.
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("autoupdate run panicked", zap.Any("panic", r))
		}

		counter.UsersChecked = len(counter.users)
		counter.Duration = time.Since(start)
		metrics.AutoupdateDurationSeconds.Set(counter.Duration.Seconds())

		s.log.Info("autoupdate run finished",
			zap.Int("orders_all", counter.OrdersAll),
			zap.Int("orders_checked", counter.OrdersChecked),
			zap.Int("orders_updated", counter.OrdersUpdated),
			zap.Int("orders_error", counter.OrdersError),
			zap.Int("orders_error_not_found", counter.OrdersErrorNotFound),
			zap.Int("users_checked", counter.UsersChecked),
			zap.Any("routes", counter.Routes),
			zap.Duration("duration", counter.Duration),
		)
	}()

	orders, err := s.orders.Active(ctx)
	if err != nil {
		s.log.Error("autoupdate failed to fetch active orders", zap.Error(err))
		return counter
	}
	counter.OrdersAll = len(orders)

	for i, order := range orders {
		if err := s.processOrder(ctx, order, counter); err != nil {
			if errors.Is(err, midpass.ErrTimeout) {
				// Таймаут - признак недоступности всего апстрима; добивать
				// его позаказно бессмысленно, прогон обрывается целиком.
				metrics.AutoupdateRunsAborted.Inc()
				s.log.Error("midpass timeout, aborting autoupdate run",
					zap.String("order", order.ShortUID),
				)
				return counter
			}
		}

		if ctx.Err() != nil {
			s.log.Warn("autoupdate run cancelled", zap.Error(ctx.Err()))
			return counter
		}

		if i < len(orders)-1 {
			s.pause(ctx)
		}
	}

	return counter
}

// processOrder обрабатывает один заказ. Возвращает ошибку только для
// таймаута апстрима; остальные сбои изолируются и учитываются в счётчиках.
func (s *AutoupdateService) processOrder(ctx context.Context, order *models.Order, counter *RunCounter) error {
	if IsCompleteOrder(order) {
		return nil
	}

	old := order.Snapshot()
	result := s.orders.Refresh(ctx, order, order.UserID)
	if result.Endpoint != "" {
		counter.Routes[result.Endpoint]++
	}

	// Оборванная по таймауту проверка выполненной не считается.
	if errors.Is(result.Err, midpass.ErrTimeout) {
		counter.OrdersError++
		metrics.MidpassRequestsTotal.WithLabelValues(result.Endpoint, "error").Inc()
		metrics.OrdersErrorsTotal.WithLabelValues("timeout").Inc()
		return result.Err
	}

	counter.OrdersChecked++
	counter.users[order.UserID] = struct{}{}
	metrics.OrdersCheckedTotal.Inc()

	if result.Err != nil {
		counter.OrdersError++
		metrics.MidpassRequestsTotal.WithLabelValues(result.Endpoint, "error").Inc()

		switch {
		case errors.Is(result.Err, midpass.ErrNotFound):
			counter.OrdersErrorNotFound++
			metrics.OrdersErrorsTotal.WithLabelValues("not_found").Inc()
		default:
			metrics.OrdersErrorsTotal.WithLabelValues("request_failed").Inc()
		}

		s.log.Error("autoupdate order error",
			zap.String("order", order.ShortUID),
			zap.String("endpoint", result.Endpoint),
			zap.Error(result.Err),
		)
		return nil
	}

	metrics.MidpassRequestsTotal.WithLabelValues(result.Endpoint, "ok").Inc()

	if !HasChangesWith(old, result.Order) {
		s.log.Info("autoupdate order without changes", zap.String("order", order.ShortUID))
		return nil
	}

	counter.OrdersUpdated++
	metrics.OrdersUpdatedTotal.Inc()
	s.log.Info("autoupdate order changed",
		zap.String("order", order.ShortUID),
		zap.Int("percent", result.Order.StatusPercent),
	)

	s.notify(ctx, result.Order, counter)
	return nil
}

// notify доставляет уведомление владельцу изменившегося заказа.
// Сбой доставки не считается ошибкой обработки заказа.
func (s *AutoupdateService) notify(ctx context.Context, order *models.Order, counter *RunCounter) {
	if _, blocked := counter.blockedUsers[order.UserID]; blocked {
		s.log.Info("notification suppressed, user blocked the bot earlier in this run",
			zap.Int64("user_id", order.UserID),
		)
		return
	}

	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		s.log.Error("autoupdate failed to find order owner",
			zap.Int64("user_id", order.UserID),
			zap.Error(err),
		)
		return
	}

	err = s.notifier.SendStatus(ctx, user, order, telegram.VariantChanged)
	switch {
	case err == nil:
		metrics.NotificationsTotal.WithLabelValues("delivered").Inc()
	case errors.Is(err, telegram.ErrBlockedByUser):
		metrics.NotificationsTotal.WithLabelValues("blocked").Inc()
		counter.blockedUsers[order.UserID] = struct{}{}
		s.handleBlockedUser(ctx, user)
	default:
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		s.log.Error("autoupdate failed to notify user",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}
}

// handleBlockedUser снимает все заказы заблокировавшего пользователя с
// отслеживания, чтобы не опрашивать их и не пытаться писать ему дальше.
func (s *AutoupdateService) handleBlockedUser(ctx context.Context, user *models.User) {
	s.log.Warn("user blocked the bot, unsubscribing all orders", zap.Int64("user_id", user.ID))

	if err := s.users.SetBlocked(ctx, user.ID, true); err != nil {
		s.log.Error("failed to mark user blocked", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	if _, err := s.orders.UnsubscribeAll(ctx, user.ID); err != nil {
		s.log.Error("failed to unsubscribe blocked user orders",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}
}

// pause выдерживает межзаказную паузу с учётом отмены контекста.
func (s *AutoupdateService) pause(ctx context.Context) {
	timer := time.NewTimer(s.pacing)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
