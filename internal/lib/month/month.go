// Package month считает даты продления подписки.
package month

import (
	"time"
)

// AddMonths прибавляет n месяцев к t. Если в целевом месяце нет такого дня,
// берётся последний день месяца: 31 января плюс месяц даёт 28 или 29 февраля.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// Renewal возвращает дату следующего списания для периода оплаты плана.
// Неизвестный период считается месячным.
func Renewal(start time.Time, interval string) time.Time {
	if interval == "year" {
		return AddMonths(start, 12)
	}
	return AddMonths(start, 1)
}

// RenewalDate Renewal в формате YYYY-MM-DD по UTC.
func RenewalDate(start time.Time, interval string) string {
	return Renewal(start.UTC(), interval).Format(time.DateOnly)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
