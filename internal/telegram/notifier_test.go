package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"passtrack/internal/models"
)

// mockBotAPI перехватывает отправляемые сообщения.
type mockBotAPI struct {
	SendFunc func(c tgbotapi.Chattable) (tgbotapi.Message, error)
	sent     []tgbotapi.Chattable
}

func (m *mockBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	if m.SendFunc != nil {
		return m.SendFunc(c)
	}
	return tgbotapi.Message{}, nil
}

func testOrder() *models.Order {
	return &models.Order{
		UID:                "2000381012026010100007421",
		ShortUID:           "*007421",
		UserID:             7,
		ReceptionDate:      "2026-01-01",
		StatusName:         "Оформление",
		StatusInternalName: "Печать",
		StatusPercent:      75,
		UpdatedAt:          time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func staticImage(path string) ImageFunc {
	return func(order *models.Order) (string, error) {
		return path, nil
	}
}

func TestSendStatus_SendsPhotoWithCaption(t *testing.T) {
	api := &mockBotAPI{}
	n := newBotNotifier(api, staticImage("images/75.png"), nil)

	user := &models.User{ID: 7, FirstName: "Иван"}
	if err := n.SendStatus(context.Background(), user, testOrder(), VariantChanged); err != nil {
		t.Fatalf("SendStatus: %v", err)
	}

	if len(api.sent) != 1 {
		t.Fatalf("отправлено %d сообщений, ожидалось 1", len(api.sent))
	}
	photo, ok := api.sent[0].(tgbotapi.PhotoConfig)
	if !ok {
		t.Fatalf("отправлен %T, ожидался PhotoConfig", api.sent[0])
	}
	if photo.ChatID != 7 {
		t.Errorf("ChatID = %d, ожидался 7", photo.ChatID)
	}
	if photo.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("ParseMode = %q, ожидался HTML", photo.ParseMode)
	}
	if !strings.Contains(photo.Caption, "*007421") {
		t.Errorf("в подписи нет короткого номера: %q", photo.Caption)
	}
}

func TestSendStatus_BlockedByUser(t *testing.T) {
	api := &mockBotAPI{
		SendFunc: func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
			return tgbotapi.Message{}, &tgbotapi.Error{
				Code:    403,
				Message: "Forbidden: bot was blocked by the user",
			}
		},
	}
	n := newBotNotifier(api, staticImage("images/75.png"), nil)

	err := n.SendStatus(context.Background(), &models.User{ID: 7}, testOrder(), VariantChanged)
	if !errors.Is(err, ErrBlockedByUser) {
		t.Errorf("err = %v, ожидался ErrBlockedByUser", err)
	}
}

func TestSendStatus_OtherSendErrorWrapped(t *testing.T) {
	sendErr := &tgbotapi.Error{Code: 429, Message: "Too Many Requests"}
	api := &mockBotAPI{
		SendFunc: func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
			return tgbotapi.Message{}, sendErr
		},
	}
	n := newBotNotifier(api, staticImage("images/75.png"), nil)

	err := n.SendStatus(context.Background(), &models.User{ID: 7}, testOrder(), VariantChanged)
	if errors.Is(err, ErrBlockedByUser) {
		t.Error("429 не должен трактоваться как блокировка")
	}
	if err == nil {
		t.Error("ожидалась ошибка отправки")
	}
}

func TestSendStatus_ImageErrorStopsSend(t *testing.T) {
	api := &mockBotAPI{}
	n := newBotNotifier(api, func(order *models.Order) (string, error) {
		return "", fmt.Errorf("images dir missing")
	}, nil)

	if err := n.SendStatus(context.Background(), &models.User{ID: 7}, testOrder(), VariantChanged); err == nil {
		t.Error("ожидалась ошибка подбора картинки")
	}
	if len(api.sent) != 0 {
		t.Error("без картинки сообщение отправляться не должно")
	}
}

func TestSendStatus_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := &mockBotAPI{}
	n := newBotNotifier(api, staticImage("images/75.png"), nil)
	if err := n.SendStatus(ctx, &models.User{ID: 7}, testOrder(), VariantChanged); err == nil {
		t.Error("отменённый контекст должен возвращать ошибку")
	}
	if len(api.sent) != 0 {
		t.Error("после отмены контекста отправки быть не должно")
	}
}

func TestIsBlockedByUser(t *testing.T) {
	if !isBlockedByUser(&tgbotapi.Error{Code: 403}) {
		t.Error("403 должен распознаваться как блокировка")
	}
	if isBlockedByUser(&tgbotapi.Error{Code: 400}) {
		t.Error("400 не является блокировкой")
	}
	if isBlockedByUser(errors.New("network error")) {
		t.Error("обычная ошибка не является блокировкой")
	}
	wrapped := fmt.Errorf("send: %w", &tgbotapi.Error{Code: 403})
	if !isBlockedByUser(wrapped) {
		t.Error("обёрнутый 403 должен распознаваться")
	}
}

func TestNopNotifier(t *testing.T) {
	n := NewNopNotifier(nil)
	if err := n.SendStatus(context.Background(), &models.User{ID: 7}, testOrder(), VariantChanged); err != nil {
		t.Errorf("NopNotifier: %v", err)
	}
}
