package domain

// Default configuration values
const (
	DefaultCapacity       = 3  // Мест на (услуга, слот, дата), если нет override в БД
	DefaultLookaheadDays  = 14 // Скользящее окно календаря: [сегодня, сегодня+13]
	DefaultUTCOffsetHours = -5 // Лима (UTC-5, без перехода на летнее время)
)

// Business validation constants
const (
	MinCapacity       = 1
	MaxCapacity       = 100
	MinRequesterAge   = 1
	MaxRequesterAge   = 120
	MaxFullNameLength = 200
	MaxCityLength     = 100
	MaxTokenLength    = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Services предлагаемые услуги (id -> название)
// Идентификаторы стабильные строки, правила вместимости задаются per-услуга
var Services = map[string]string{
	"1": "Matemáticas y Todo Números",
	"2": "Lenguaje y Todo Letras",
	"3": "Historia, Geografía y Sociales",
	"4": "Practiquemos Alemán",
	"5": "Practiquemos Inglés",
	"6": "Practiquemos Quechua",
	"7": "Hablemos de Business",
}

// IsKnownService проверяет, что услуга есть в каталоге
func IsKnownService(id string) bool {
	_, ok := Services[id]
	return ok
}
