package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeString строковое представление времени в формате HH:MM
// Используется для хранения времени начала слота без привязки к дате
type TimeString string

// NewTimeString создает TimeString из time.Time (отбрасывая секунды)
func NewTimeString(t time.Time) TimeString {
	return TimeString(fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()))
}

// NewTimeStringFromString создает TimeString из строки с валидацией формата
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// IsZero проверяет, что значение не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет формат HH:MM
func (t TimeString) Validate() error {
	_, _, err := t.parts()
	return err
}

// Hour возвращает часы (0-23); для невалидного значения возвращает 0
func (t TimeString) Hour() int {
	h, _, _ := t.parts()
	return h
}

// Minute возвращает минуты (0-59); для невалидного значения возвращает 0
func (t TimeString) Minute() int {
	_, m, _ := t.parts()
	return m
}

// AddMinutes возвращает новый TimeString со сдвигом на minutes минут вперед
// Выход за пределы суток считается ошибкой: слоты не пересекают полночь
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	h, m, err := t.parts()
	if err != nil {
		return "", err
	}

	total := h*60 + m + minutes
	if total < 0 || total > 24*60 {
		return "", fmt.Errorf("time %s shifted by %d minutes is out of day range", t, minutes)
	}

	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// IsBefore проверяет, что время строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.totalMinutes() < other.totalMinutes()
}

// IsAfter проверяет, что время строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.totalMinutes() > other.totalMinutes()
}

// Value реализует driver.Valuer для записи в БД
func (t TimeString) Value() (driver.Value, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}

// Scan реализует sql.Scanner для чтения из БД
// Поддерживает string, []byte и time.Time (колонки типа TIME)
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		if len(v) > 5 {
			v = v[:5]
		}
		*t = TimeString(v)
	case []byte:
		s := string(v)
		if len(s) > 5 {
			s = s[:5]
		}
		*t = TimeString(s)
	case time.Time:
		*t = NewTimeString(v)
	case nil:
		*t = ""
	default:
		return fmt.Errorf("cannot scan %T into TimeString", src)
	}
	return nil
}

func (t TimeString) parts() (hour, minute int, err error) {
	var h, m int
	if _, err := fmt.Sscanf(string(t), "%02d:%02d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("invalid time string format: %q, expected HH:MM", string(t))
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid time value: %q", string(t))
	}
	return h, m, nil
}

func (t TimeString) totalMinutes() int {
	h, m, _ := t.parts()
	return h*60 + m
}
