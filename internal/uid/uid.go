package uid

import (
	"fmt"
	"regexp"
	"time"
)

const (
	// Length - полная длина номера заявления.
	Length = 25
	// ShortLength - длина короткого суффикса для отображения.
	ShortLength = 6

	prefix = "2000"
	marker = "*"

	// DateUnknown - сентинел для нераспознанной даты подачи.
	DateUnknown = "-"
)

// Дата подачи зашита в номер с 10-го символа как YYYYMMDD.
var receptionDateRe = regexp.MustCompile(`^\d{9}(\d{4})(\d{2})(\d{2})`)

// IsValid проверяет номер заявления: длина, префикс и распознаваемая дата подачи.
func IsValid(uid string) bool {
	return len(uid) == Length &&
		uid[:len(prefix)] == prefix &&
		ParseReceptionDate(uid) != DateUnknown
}

// IsValidShort проверяет короткий номер вида "*123456".
func IsValidShort(shortUID string) bool {
	return len(shortUID) == ShortLength+1
}

// Short возвращает отображаемый суффикс номера с маркером.
func Short(uid string) string {
	if len(uid) < ShortLength {
		return marker + uid
	}
	return marker + uid[len(uid)-ShortLength:]
}

// ParseReceptionDate извлекает дату подачи из номера в формате YYYY-MM-DD.
// Любой сбой разбора или неправдоподобная дата дают DateUnknown, не ошибку:
// вызывающие обязаны трактовать сентинел как "дата неизвестна".
func ParseReceptionDate(uid string) string {
	m := receptionDateRe.FindStringSubmatch(uid)
	if m == nil {
		return DateUnknown
	}

	result := fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
	if !isPlausibleDate(result) {
		return DateUnknown
	}
	return result
}

// isPlausibleDate отсеивает номера-заглушки: дата должна существовать в
// календаре и отстоять от текущего момента не более чем на пять лет.
func isPlausibleDate(value string) bool {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return false
	}

	now := time.Now()
	if date.Before(now.AddDate(-5, 0, 0)) || date.After(now.AddDate(5, 0, 0)) {
		return false
	}
	return true
}
