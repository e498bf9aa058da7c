package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"passtrack/internal/models"
)

// ErrBlockedByUser - пользователь заблокировал бота. Для вызывающего это не
// ошибка обработки: его заказы снимаются с отслеживания, прогон продолжается.
var ErrBlockedByUser = errors.New("bot blocked by user")

// Variant определяет текст статусного сообщения.
type Variant string

const (
	// VariantChanged - статус изменился в автообновлении, с призывом поддержать бота.
	VariantChanged Variant = "changed"
	// VariantSubscribed - подтверждение новой подписки.
	VariantSubscribed Variant = "subscribed"
	// VariantSubscribedAlready - заявление уже отслеживается.
	VariantSubscribedAlready Variant = "subscribed_already"
	// VariantCurrent - ручной запрос текущего статуса.
	VariantCurrent Variant = "current"
)

// Notifier доставляет статусные сообщения пользователям.
type Notifier interface {
	SendStatus(ctx context.Context, user *models.User, order *models.Order, variant Variant) error
}

// botAPI - минимальная поверхность tgbotapi, нужная нотификатору.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ImageFunc возвращает путь к картинке статуса заказа.
type ImageFunc func(order *models.Order) (string, error)

// BotNotifier шлёт фото статуса с HTML-подписью через Telegram Bot API.
type BotNotifier struct {
	api         botAPI
	statusImage ImageFunc
	log         *zap.Logger
}

// NewBotNotifier создаёт нотификатор поверх подключённого бота.
func NewBotNotifier(api *tgbotapi.BotAPI, statusImage ImageFunc, log *zap.Logger) *BotNotifier {
	return newBotNotifier(api, statusImage, log)
}

func newBotNotifier(api botAPI, statusImage ImageFunc, log *zap.Logger) *BotNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &BotNotifier{
		api:         api,
		statusImage: statusImage,
		log:         log,
	}
}

// SendStatus отправляет пользователю фото и статус заказа.
func (n *BotNotifier) SendStatus(ctx context.Context, user *models.User, order *models.Order, variant Variant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	image, err := n.statusImage(order)
	if err != nil {
		return fmt.Errorf("resolve status image: %w", err)
	}

	photo := tgbotapi.NewPhoto(user.ID, tgbotapi.FilePath(image))
	photo.ParseMode = tgbotapi.ModeHTML
	photo.Caption = RenderStatus(order, variant)

	if _, err := n.api.Send(photo); err != nil {
		if isBlockedByUser(err) {
			return ErrBlockedByUser
		}
		return fmt.Errorf("send status message: %w", err)
	}

	n.log.Info("status message sent",
		zap.Int64("user_id", user.ID),
		zap.String("order", order.ShortUID),
		zap.String("variant", string(variant)),
	)
	return nil
}

// isBlockedByUser распознаёт ответ Telegram "bot was blocked by the user".
func isBlockedByUser(err error) bool {
	var tgErr *tgbotapi.Error
	return errors.As(err, &tgErr) && tgErr.Code == 403
}

// NopNotifier пишет уведомления только в лог. Используется, когда токен бота
// не сконфигурирован, чтобы автообновление оставалось работоспособным.
type NopNotifier struct {
	log *zap.Logger
}

func NewNopNotifier(log *zap.Logger) *NopNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &NopNotifier{log: log}
}

func (n *NopNotifier) SendStatus(_ context.Context, user *models.User, order *models.Order, variant Variant) error {
	n.log.Info("notification skipped: telegram token is not configured",
		zap.Int64("user_id", user.ID),
		zap.String("order", order.ShortUID),
		zap.String("variant", string(variant)),
	)
	return nil
}
