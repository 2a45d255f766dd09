package submit_booking

import (
	"time"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

// Request модель запроса на создание бронирования
//
// RequesterToken - идемпотентный ключ клиента: повторная отправка той же
// четверки (token, service, slot, date) возвращает уже созданное
// бронирование, а не дубликат
type Request struct {
	RequesterToken string
	Service        string
	Slot           domain.SlotWindow
	Date           domain.CalendarDate
	Requester      domain.Requester
}

// Response модель ответа с подтвержденным бронированием
type Response struct {
	MeetingReference string
	Service          string
	Slot             domain.SlotWindow
	Date             domain.CalendarDate
	FullName         string
	Email            string
	Replayed         bool // true, если это повтор уже созданного бронирования
	CreatedAt        time.Time
}
