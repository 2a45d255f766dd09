package reservation

import (
	"github.com/NiloFidel/Reservas-BookingService/pkg/dbmetrics"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
