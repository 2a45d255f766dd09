package schedbackend

// DayUsage сырые данные занятости одного дня от calendar-backend
type DayUsage struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Used      int    `json:"used"`
	Free      int    `json:"free"`
	Available bool   `json:"available"`
}

// calendarRangeResponse ответ бэкенда на запрос диапазона
// Отсутствующее или нетипизированное поле days - ошибка протокола,
// а не "ноль дней" (см. Client.CalendarRange)
type calendarRangeResponse struct {
	Days []DayUsage `json:"days"`
}

// ReserveRequest запрос на бронирование к calendar-backend
type ReserveRequest struct {
	RequesterToken   string           `json:"requesterToken"`
	Service          string           `json:"service"`
	Slot             string           `json:"slot"` // "HH:MM - HH:MM"
	Date             string           `json:"date"` // YYYY-MM-DD
	RequesterDetails RequesterDetails `json:"requesterDetails"`
}

// RequesterDetails данные заявителя
type RequesterDetails struct {
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	City     string `json:"city"`
}

// ReserveResponse успешный ответ на бронирование
type ReserveResponse struct {
	MeetingReference string `json:"meetingReference"`
}

// rejectionResponse структурированный отказ бэкенда
type rejectionResponse struct {
	Reason string `json:"reason"` // SlotUnavailable | Full | InvalidInput
}
