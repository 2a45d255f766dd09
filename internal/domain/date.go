package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// CalendarDate календарная дата без компонента времени
// Сравнение лексикографическое по (год, месяц, день)
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCalendarDate парсит дату в формате YYYY-MM-DD
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid calendar date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf извлекает календарную дату из момента времени
// Используется зона самого t: вызывающий отвечает за проекцию в нужный offset
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// String возвращает дату в формате YYYY-MM-DD
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero проверяет, что дата не задана
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time возвращает полночь этой даты в указанной зоне
func (d CalendarDate) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Equal проверяет равенство дат
func (d CalendarDate) Equal(other CalendarDate) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// Before проверяет, что дата строго раньше other
func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After проверяет, что дата строго позже other
func (d CalendarDate) After(other CalendarDate) bool {
	return other.Before(d)
}

// AddDays возвращает дату со сдвигом на days дней (может быть отрицательным)
func (d CalendarDate) AddDays(days int) CalendarDate {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, days))
}

// DatesBetween возвращает все даты диапазона [start, end] по возрастанию
// Для start > end возвращает пустой слайс
func DatesBetween(start, end CalendarDate) []CalendarDate {
	dates := make([]CalendarDate, 0)
	for d := start; !d.After(end); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// Value реализует driver.Valuer для записи в БД (колонка DATE)
func (d CalendarDate) Value() (driver.Value, error) {
	return d.Time(time.UTC), nil
}

// Scan реализует sql.Scanner для чтения из БД
func (d *CalendarDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
	case string:
		parsed, err := ParseCalendarDate(v)
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		parsed, err := ParseCalendarDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
	case nil:
		*d = CalendarDate{}
	default:
		return fmt.Errorf("cannot scan %T into CalendarDate", src)
	}
	return nil
}
