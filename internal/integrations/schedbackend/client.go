package schedbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент удаленного calendar-backend
//
// Используется в прокси-режиме, когда сервис не владеет хранилищем сам,
// а перенаправляет запросы внешнему бэкенду. Оба пути fail-closed:
// чтение при любой ошибке возвращает ErrBackendUnavailable (не пустой
// результат), запись никогда не синтезирует подтверждение
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента calendar-backend
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CalendarRange запрашивает занятость по дням для (услуга, слот)
// в диапазоне [start, end]
func (c *Client) CalendarRange(
	ctx context.Context,
	service string,
	slot domain.SlotWindow,
	start, end domain.CalendarDate,
) ([]DayUsage, error) {
	params := url.Values{}
	params.Set("servicio", service)
	params.Set("horario", slot.String())
	params.Set("start", start.String())
	params.Set("end", end.String())

	reqURL := fmt.Sprintf("%s/calendar-range?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("CalendarRange: request failed for service=%s slot=%s: %v", service, slot, err)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("CalendarRange: unexpected status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrBackendUnavailable, resp.StatusCode)
	}

	var parsed calendarRangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Error("CalendarRange: failed to decode response: %v", err)
		return nil, fmt.Errorf("%w: malformed response: %v", ErrBackendUnavailable, err)
	}

	// Отсутствующее поле days - ошибка протокола, не пустой календарь
	if parsed.Days == nil {
		c.log.Error("CalendarRange: response has no days field")
		return nil, fmt.Errorf("%w: response missing days", ErrBackendUnavailable)
	}

	return parsed.Days, nil
}

// Reserve отправляет бронирование на calendar-backend
// Таймаут и транспортные ошибки всегда ErrBackendUnavailable:
// запись могла как пройти, так и нет - подтверждение не выдумываем
func (c *Client) Reserve(ctx context.Context, reserveReq *ReserveRequest) (*ReserveResponse, error) {
	payload, err := json.Marshal(reserveReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reserve", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Reserve: request failed for token=%s: %v", reserveReq.RequesterToken, err)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var result ReserveResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("%w: malformed response: %v", ErrBackendUnavailable, err)
		}
		if result.MeetingReference == "" {
			return nil, fmt.Errorf("%w: response missing meetingReference", ErrBackendUnavailable)
		}
		return &result, nil

	case http.StatusBadRequest:
		return nil, ErrInvalidInput

	case http.StatusConflict:
		var rejection rejectionResponse
		if err := json.NewDecoder(resp.Body).Decode(&rejection); err == nil && rejection.Reason == "Full" {
			return nil, ErrSlotFull
		}
		return nil, ErrSlotUnavailable

	default:
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("Reserve: unexpected status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrBackendUnavailable, resp.StatusCode)
	}
}
