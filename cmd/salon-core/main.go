package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/salonbot/booking-core/internal/config"
	"github.com/salonbot/booking-core/internal/db"
	"github.com/salonbot/booking-core/internal/logger"
	"github.com/salonbot/booking-core/internal/model"
	"github.com/salonbot/booking-core/internal/notify"
	"github.com/salonbot/booking-core/internal/repository"
	"github.com/salonbot/booking-core/internal/server"
	"github.com/salonbot/booking-core/internal/service"
)

func main() {
	// .env подхватываем, если лежит рядом; в проде конфиг приходит из env.
	_ = godotenv.Load()

	// 1. Конфиг из env.
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "error", err)
	}

	log := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "salon-core",
	})

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		log.Fatal("init db", "error", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatal("auto migrate", "error", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("sql DB", "error", err)
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	masterRepo := repository.NewGormMasterRepository(gormDB)
	serviceRepo := repository.NewGormServiceRepository(gormDB)
	clientRepo := repository.NewGormClientRepository(gormDB)
	scheduleRepo := repository.NewGormScheduleRepository(gormDB)
	bookingRepo := repository.NewGormBookingRepository(gormDB)

	// 5. Публикация событий: Kafka либо заглушка без брокера.
	var publisher notify.Publisher = notify.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := notify.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
		log.Info("kafka publisher enabled", "topic", cfg.Kafka.Topic)
	}

	// 6. Сервисы ядра.
	bookingSvc := service.NewBookingService(gormDB, bookingRepo, publisher, log)
	scheduleSvc := service.NewScheduleService(scheduleRepo, bookingRepo, masterRepo, cfg.Schedule.DefaultIntervalMin, log)
	catalogSvc := service.NewCatalogService(masterRepo, serviceRepo, log)
	identitySvc := service.NewIdentityService(clientRepo, log)

	// 7. HTTP-сервер.
	srv := server.New(&cfg.Server, bookingSvc, scheduleSvc, catalogSvc, identitySvc, log)
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("booking core listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http serve", "error", err)
		}
	}()

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error("shutdown", "error", err)
	}
}
