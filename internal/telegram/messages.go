package telegram

import (
	"fmt"
	"strings"
	"time"

	"passtrack/internal/models"
	"passtrack/internal/uid"
)

const (
	headerChanged           = "Статус вашего заявления изменился!"
	headerSubscribed        = "Вы подписались на обновления заявления."
	headerSubscribedAlready = "Это заявление уже отслеживается."
	headerCurrent           = "Текущий статус заявления."

	donatePrompt = "\n\nБот живёт на пожертвования - поддержите его, если он вам помогает."
)

// Времена в сообщениях показываются по Москве, как и расписание прогонов.
var moscow = mustLocation("Europe/Moscow")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RenderStatus собирает HTML-подпись статусного сообщения.
func RenderStatus(order *models.Order, variant Variant) string {
	var b strings.Builder

	switch variant {
	case VariantChanged:
		b.WriteString(headerChanged)
	case VariantSubscribed:
		b.WriteString(headerSubscribed)
	case VariantSubscribedAlready:
		b.WriteString(headerSubscribedAlready)
	default:
		b.WriteString(headerCurrent)
	}

	b.WriteString("\n\n")
	fmt.Fprintf(&b, "<b>Заявление %s</b>\n", order.ShortUID)
	fmt.Fprintf(&b, "Подано: %s (дней прошло: %s)\n", orDash(order.ReceptionDate), DaysPassed(order))
	fmt.Fprintf(&b, "Статус: %s\n", orDash(order.StatusName))
	fmt.Fprintf(&b, "Внутренний статус: %s\n", orDash(order.StatusInternalName))
	fmt.Fprintf(&b, "Готовность: %d%%\n", order.StatusPercent)
	fmt.Fprintf(&b, "Обновлено: %s", order.UpdatedAt.In(moscow).Format("02.01.2006 15:04:05"))

	if variant == VariantChanged {
		b.WriteString(donatePrompt)
	}

	return b.String()
}

// DaysPassed считает дни с даты подачи заявления; "-" если дата неизвестна.
func DaysPassed(order *models.Order) string {
	date, err := time.Parse("2006-01-02", order.ReceptionDate)
	if err != nil {
		return uid.DateUnknown
	}
	days := int(time.Since(date).Hours() / 24)
	if days < 0 {
		return uid.DateUnknown
	}
	return fmt.Sprintf("%d", days)
}

func orDash(value string) string {
	if value == "" {
		return uid.DateUnknown
	}
	return value
}
