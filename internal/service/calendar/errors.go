package calendar

import "errors"

var (
	// ErrDateNotSelectable возвращается при попытке выбрать день,
	// которого нет среди доступных в текущем состоянии
	ErrDateNotSelectable = errors.New("calendar: date is not selectable")

	// ErrRefreshSuperseded возвращается, когда результат обновления
	// устарел: его уже вытеснило более позднее обновление
	ErrRefreshSuperseded = errors.New("calendar: refresh superseded by a newer one")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("calendar: internal error")
)
