package telegram

import (
	"strings"
	"testing"
	"time"

	"passtrack/internal/models"
)

func TestRenderStatus_Variants(t *testing.T) {
	order := testOrder()

	tests := []struct {
		variant    Variant
		header     string
		wantDonate bool
	}{
		{VariantChanged, headerChanged, true},
		{VariantSubscribed, headerSubscribed, false},
		{VariantSubscribedAlready, headerSubscribedAlready, false},
		{VariantCurrent, headerCurrent, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			text := RenderStatus(order, tt.variant)

			if !strings.HasPrefix(text, tt.header) {
				t.Errorf("сообщение не начинается с заголовка %q:\n%s", tt.header, text)
			}
			if gotDonate := strings.Contains(text, donatePrompt); gotDonate != tt.wantDonate {
				t.Errorf("призыв к поддержке: %v, ожидалось %v", gotDonate, tt.wantDonate)
			}
			if !strings.Contains(text, "<b>Заявление *007421</b>") {
				t.Errorf("нет жирного заголовка с номером:\n%s", text)
			}
			if !strings.Contains(text, "Готовность: 75%") {
				t.Errorf("нет процента готовности:\n%s", text)
			}
		})
	}
}

func TestRenderStatus_EmptyFieldsShownAsDash(t *testing.T) {
	order := &models.Order{ShortUID: "*007421", ReceptionDate: "-"}
	text := RenderStatus(order, VariantCurrent)

	if !strings.Contains(text, "Подано: - (дней прошло: -)") {
		t.Errorf("неизвестная дата подачи должна показываться прочерком:\n%s", text)
	}
	if !strings.Contains(text, "Статус: -") {
		t.Errorf("пустой статус должен показываться прочерком:\n%s", text)
	}
}

func TestDaysPassed(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -10).Format("2006-01-02")
	if got := DaysPassed(&models.Order{ReceptionDate: yesterday}); got != "10" {
		t.Errorf("DaysPassed = %q, ожидалось 10", got)
	}

	if got := DaysPassed(&models.Order{ReceptionDate: "-"}); got != "-" {
		t.Errorf("DaysPassed(-) = %q, ожидался прочерк", got)
	}
	if got := DaysPassed(&models.Order{ReceptionDate: ""}); got != "-" {
		t.Errorf("DaysPassed(пусто) = %q, ожидался прочерк", got)
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	if got := DaysPassed(&models.Order{ReceptionDate: tomorrow}); got != "-" {
		t.Errorf("DaysPassed(будущее) = %q, ожидался прочерк", got)
	}
}
