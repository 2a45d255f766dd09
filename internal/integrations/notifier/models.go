package notifier

// Notification данные письма-подтверждения с ссылкой на встречу
type Notification struct {
	Email            string `json:"email"`
	FullName         string `json:"fullName"`
	Service          string `json:"service"`
	Slot             string `json:"slot"` // "HH:MM - HH:MM"
	Date             string `json:"date"` // YYYY-MM-DD
	MeetingReference string `json:"meetingReference"`
}
