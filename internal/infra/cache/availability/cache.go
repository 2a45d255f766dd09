package availability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

// Cache кеш подневных счетчиков бронирований в Redis
//
// Ключ: used:{service}:{slot_start}:{date}, значение - количество занятых
// мест. TTL короткий: кеш снимает нагрузку с БД при частых обновлениях
// календаря, но никогда не является источником истины - проверка
// вместимости при бронировании всегда идет в хранилище
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New создает кеш поверх Redis
func New(addr, password string, db int, ttl time.Duration) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{client: rdb, ttl: ttl}
}

// Ping проверяет соединение с Redis
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close закрывает соединение
func (c *Cache) Close() error {
	return c.client.Close()
}

// GetCounts возвращает закешированные счетчики для дат из dates
// Вторым значением возвращает даты, которых нет в кеше
func (c *Cache) GetCounts(
	ctx context.Context,
	service string,
	slot domain.SlotWindow,
	dates []domain.CalendarDate,
) (map[domain.CalendarDate]int, []domain.CalendarDate, error) {
	if len(dates) == 0 {
		return map[domain.CalendarDate]int{}, nil, nil
	}

	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = c.key(service, slot, d)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("availability cache: mget: %w", err)
	}

	counts := make(map[domain.CalendarDate]int, len(dates))
	missing := make([]domain.CalendarDate, 0)

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, dates[i])
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			// Испорченное значение трактуем как промах
			missing = append(missing, dates[i])
			continue
		}
		counts[dates[i]] = n
	}

	return counts, missing, nil
}

// SetCounts кеширует счетчики для всех дат из dates
// Даты без записи в counts кешируются как ноль
func (c *Cache) SetCounts(
	ctx context.Context,
	service string,
	slot domain.SlotWindow,
	dates []domain.CalendarDate,
	counts map[domain.CalendarDate]int,
) error {
	pipe := c.client.Pipeline()
	for _, d := range dates {
		pipe.Set(ctx, c.key(service, slot, d), strconv.Itoa(counts[d]), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("availability cache: pipeline set: %w", err)
	}
	return nil
}

// Invalidate сбрасывает счетчик одной даты (после успешного бронирования)
func (c *Cache) Invalidate(ctx context.Context, service string, slot domain.SlotWindow, date domain.CalendarDate) error {
	if err := c.client.Del(ctx, c.key(service, slot, date)).Err(); err != nil {
		return fmt.Errorf("availability cache: del: %w", err)
	}
	return nil
}

func (c *Cache) key(service string, slot domain.SlotWindow, date domain.CalendarDate) string {
	return fmt.Sprintf("used:%s:%s:%s", service, slot.Start, date)
}
