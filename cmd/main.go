package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	createReservationHandler "github.com/NiloFidel/Reservas-BookingService/internal/api/handlers/create_reservation"
	getCalendarHandler "github.com/NiloFidel/Reservas-BookingService/internal/api/handlers/get_calendar"
	getCalendarRangeHandler "github.com/NiloFidel/Reservas-BookingService/internal/api/handlers/get_calendar_range"
	"github.com/NiloFidel/Reservas-BookingService/internal/api/middleware"
	"github.com/NiloFidel/Reservas-BookingService/internal/config"
	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
	availabilityCache "github.com/NiloFidel/Reservas-BookingService/internal/infra/cache/availability"
	capacityRepo "github.com/NiloFidel/Reservas-BookingService/internal/infra/storage/capacity"
	reservationRepo "github.com/NiloFidel/Reservas-BookingService/internal/infra/storage/reservation"
	notifierClient "github.com/NiloFidel/Reservas-BookingService/internal/integrations/notifier"
	schedClient "github.com/NiloFidel/Reservas-BookingService/internal/integrations/schedbackend"
	calendarService "github.com/NiloFidel/Reservas-BookingService/internal/service/calendar"
	getAvailabilityUC "github.com/NiloFidel/Reservas-BookingService/internal/usecase/get_availability"
	submitBookingUC "github.com/NiloFidel/Reservas-BookingService/internal/usecase/submit_booking"
	"github.com/NiloFidel/Reservas-BookingService/pkg/dbmetrics"
	"github.com/NiloFidel/Reservas-BookingService/pkg/logger"
	"github.com/NiloFidel/Reservas-BookingService/pkg/metrics"
	"github.com/NiloFidel/Reservas-BookingService/pkg/simpletxmanager"
	"github.com/NiloFidel/Reservas-BookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting Reservas-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Часы сервиса: фиксированный оффсет, без DST
	clock := domain.NewFixedOffsetClock(cfg.Booking.UTCOffsetHours)
	log.Info("Service clock initialized (utc_offset_hours=%d)", cfg.Booking.UTCOffsetHours)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Опциональный кеш подневных счетчиков
	var (
		countsCache      getAvailabilityUC.CountsCache
		cacheInvalidator submitBookingUC.CacheInvalidator
	)
	if cfg.Redis.Enabled {
		cache := availabilityCache.New(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second,
		)
		defer cache.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(pingCtx); err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}
		cancelPing()

		countsCache = cache
		cacheInvalidator = cache
		log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTLSeconds)
	}

	// Опциональный клиент отправки подтверждений
	var notifier submitBookingUC.NotifierClient
	if cfg.Notifier.Enabled {
		notifier = notifierClient.NewClient(
			cfg.Notifier.URL,
			time.Duration(cfg.Notifier.Timeout)*time.Second,
			log,
		)
		log.Info("Notifier client initialized (url=%s, timeout=%ds)", cfg.Notifier.URL, cfg.Notifier.Timeout)
	}

	// Источник данных календаря и операция бронирования зависят от режима:
	// прокси-режим перенаправляет запросы удаленному calendar-backend,
	// иначе сервис владеет хранилищем сам (PostgreSQL)
	var (
		getAvailability *getAvailabilityUC.UseCase
		submitBooking   createReservationHandler.SubmitBookingUseCase
	)

	if cfg.Backend.Enabled {
		backend := schedClient.NewClient(
			cfg.Backend.URL,
			time.Duration(cfg.Backend.Timeout)*time.Second,
			log,
		)
		log.Info("Proxy mode: calendar-backend at %s (timeout=%ds)", cfg.Backend.URL, cfg.Backend.Timeout)

		getAvailability = getAvailabilityUC.NewUseCase(
			backend,
			getAvailabilityUC.FixedCapacity(cfg.Booking.DefaultCapacity),
			countsCache,
			clock,
			cfg.Booking.LookaheadDays,
			cfg.Booking.DefaultCapacity,
			log,
		)
		submitBooking = submitBookingUC.NewRemoteUseCase(backend, clock, cfg.Booking.LookaheadDays, log)
	} else {
		// Подключаемся к базе данных
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		// Проверяем соединение
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		// Репозитории и transaction manager (с метриками или без)
		var (
			reservations *reservationRepo.Repository
			capacities   *capacityRepo.Repository
			txMgr        submitBookingUC.TransactionManager
		)
		if cfg.Metrics.Enabled {
			wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
			log.Info("Database metrics collection started")

			reservations = reservationRepo.NewRepository(wrappedDB)
			capacities = capacityRepo.NewRepository(wrappedDB)
			txMgr = txmanager.NewTransactionManager(wrappedDB)
		} else {
			reservations = reservationRepo.NewRepository(db)
			capacities = capacityRepo.NewRepository(db)
			txMgr = simpletxmanager.NewTransactionManager(db)
		}

		getAvailability = getAvailabilityUC.NewUseCase(
			reservations,
			capacities,
			countsCache,
			clock,
			cfg.Booking.LookaheadDays,
			cfg.Booking.DefaultCapacity,
			log,
		)
		submitBooking = submitBookingUC.NewUseCase(
			reservations,
			capacities,
			txMgr,
			notifier,
			cacheInvalidator,
			clock,
			cfg.Booking.LookaheadDays,
			cfg.Booking.DefaultCapacity,
			log,
		)
	}

	// Реконсилятор календаря: стартует с первой услуги и первого слота,
	// цель переключается параметрами запроса
	calendar := calendarService.NewService(getAvailability, "1", domain.SlotCatalog[0], log)

	// Инициализируем handlers
	getCalendarRange := getCalendarRangeHandler.NewHandler(getAvailability, log)
	getCalendar := getCalendarHandler.NewHandler(calendar, log)
	createReservation := createReservationHandler.NewHandler(submitBooking, calendar, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Занятость по дням для пары (услуга, слот)
	api.HandleFunc("/calendar-range", getCalendarRange.Handle).Methods(http.MethodGet)

	// Состояние календаря с выбранным днем
	api.HandleFunc("/calendar", getCalendar.Handle).Methods(http.MethodGet)

	// Создание бронирования
	api.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
