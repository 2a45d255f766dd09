package submit_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	"github.com/NiloFidel/Reservas-BookingService/internal/integrations/schedbackend"
)

// BackendGateway интерфейс удаленного calendar-backend для прокси-режима
type BackendGateway interface {
	Reserve(ctx context.Context, req *schedbackend.ReserveRequest) (*schedbackend.ReserveResponse, error)
}

// RemoteUseCase прокси-вариант создания бронирования
//
// Валидация и проверка горизонта выполняются локально, решение о местах
// и идемпотентности принимает удаленный бэкенд. Таймаут и транспортные
// ошибки не превращаются в подтверждение
type RemoteUseCase struct {
	gateway       BackendGateway
	clock         Clock
	lookaheadDays int
	logger        Logger
}

// NewRemoteUseCase создает прокси-вариант use case
func NewRemoteUseCase(gateway BackendGateway, clock Clock, lookaheadDays int, logger Logger) *RemoteUseCase {
	return &RemoteUseCase{
		gateway:       gateway,
		clock:         clock,
		lookaheadDays: lookaheadDays,
		logger:        logger,
	}
}

// Execute валидирует запрос и перенаправляет его на calendar-backend
func (uc *RemoteUseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SubmitBooking(proxy): token=%s, service=%s, slot=%s, date=%s",
		req.RequesterToken, req.Service, req.Slot, req.Date)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("SubmitBooking(proxy): validation failed: %v", err)
		return nil, err
	}

	now := uc.clock.Now()
	today := domain.DateOf(now)

	if err := validateDate(req.Date, today, uc.lookaheadDays); err != nil {
		uc.logger.Warn("SubmitBooking(proxy): date validation failed: %v", err)
		return nil, err
	}

	if req.Date.Equal(today) && domain.HasElapsed(req.Slot.Start, now) {
		uc.logger.Warn("SubmitBooking(proxy): slot %s already started", req.Slot)
		return nil, ErrSlotUnavailable
	}

	resp, err := uc.gateway.Reserve(ctx, &schedbackend.ReserveRequest{
		RequesterToken: req.RequesterToken,
		Service:        req.Service,
		Slot:           req.Slot.String(),
		Date:           req.Date.String(),
		RequesterDetails: schedbackend.RequesterDetails{
			FullName: req.Requester.FullName,
			Age:      req.Requester.Age,
			Email:    req.Requester.Email,
			City:     req.Requester.City,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, schedbackend.ErrInvalidInput):
			return nil, fmt.Errorf("%w: rejected by backend", ErrInvalidInput)
		case errors.Is(err, schedbackend.ErrSlotFull):
			return nil, ErrSlotFull
		case errors.Is(err, schedbackend.ErrSlotUnavailable):
			return nil, ErrSlotUnavailable
		default:
			uc.logger.Error("SubmitBooking(proxy): backend call failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}

	uc.logger.Info("SubmitBooking(proxy): confirmed meeting=%s", resp.MeetingReference)

	return &Response{
		MeetingReference: resp.MeetingReference,
		Service:          req.Service,
		Slot:             req.Slot,
		Date:             req.Date,
		FullName:         req.Requester.FullName,
		Email:            req.Requester.Email,
	}, nil
}
