package schedule

import "fmt"

// Шаг сетки по умолчанию, если правило его не задаёт.
const DefaultIntervalMinutes = 30

// Rule — недельное окно доступности в пределах одного дня.
type Rule struct {
	Start           string // HH:MM
	End             string // HH:MM
	IntervalMinutes int
}

// Exception — исключение на конкретную дату. Available=false — выходной.
// Особые часы (Start/End != nil) заменяют недельное окно только на эту дату;
// Available=true без особых часов оставляет недельное правило как есть.
type Exception struct {
	Available bool
	Start     *string
	End       *string
}

// GenerateSlots строит упорядоченный список свободных стартов "HH:MM".
//
// Сетка шагается с интервалом правила, а не с длительностью услуги:
// 30-минутная сетка может предлагать старты и для 90-минутной услуги,
// отбрасывая хвост, не влезающий до закрытия. Из сетки вычитаются только
// точные старты уже занятых слотов, без учёта их длительности.
//
// Функция чистая: не ходит в хранилище и безопасна для конкурентных вызовов.
func GenerateSlots(rule *Rule, exc *Exception, durationMinutes int, booked []string) ([]string, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("service duration must be positive, got %d", durationMinutes)
	}

	// 1. Выходной — терминально, дальше не считаем.
	if exc != nil && !exc.Available {
		return []string{}, nil
	}

	// 2. Эффективное окно: особые часы исключения либо недельное правило.
	var startStr, endStr string
	interval := DefaultIntervalMinutes

	switch {
	case exc != nil && exc.Start != nil && exc.End != nil:
		startStr, endStr = *exc.Start, *exc.End
		if rule != nil && rule.IntervalMinutes > 0 {
			interval = rule.IntervalMinutes
		}
	case rule != nil:
		startStr, endStr = rule.Start, rule.End
		if rule.IntervalMinutes > 0 {
			interval = rule.IntervalMinutes
		}
	default:
		// Нет ни правила, ни особых часов — предлагать нечего.
		return []string{}, nil
	}

	start, err := ParseClock(startStr)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(endStr)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, ErrBadWindow
	}

	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	// 3-5. Сетка от start с шагом interval; старт годится, пока
	// t + duration <= end (граница включительно). Занятые старты вычитаем.
	var slots []string
	for t := start; t+durationMinutes <= end; t += interval {
		s := FormatClock(t)
		if _, ok := taken[s]; ok {
			continue
		}
		slots = append(slots, s)
	}

	if slots == nil {
		slots = []string{}
	}
	return slots, nil
}
