package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/cache"
	"github.com/iliyamo/meeting-room-reservation/internal/config"
	"github.com/iliyamo/meeting-room-reservation/internal/database"
	"github.com/iliyamo/meeting-room-reservation/internal/handler"
	"github.com/iliyamo/meeting-room-reservation/internal/mail"
	"github.com/iliyamo/meeting-room-reservation/internal/queue"
	"github.com/iliyamo/meeting-room-reservation/internal/repository"
	"github.com/iliyamo/meeting-room-reservation/internal/router"
	queue_publisher "github.com/iliyamo/meeting-room-reservation/internal/service"
)

func main() {
	// Local development reads .env; in production the variables come
	// from the deployment environment and the file is simply absent.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis is required (rate limit, captcha, urge throttle)")
	}
	store := cache.NewRedisStore(rdb)

	users := repository.NewUserRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)

	// Outbound mail goes through RabbitMQ; the in-process consumer
	// drains the queue and hands messages to SMTP. Without SMTP
	// settings deliveries are logged instead.
	mailer := queue_publisher.NewPublisher()
	var delivery mail.Mailer = mail.LogMailer{}
	if cfg.SMTPHost != "" {
		delivery = mail.NewSMTPMailer(mail.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
	}
	go queue.StartMailConsumer(delivery)

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, store, mailer),
		User:      handler.NewUserHandler(users),
		Room:      handler.NewRoomHandler(rooms),
		Booking:   handler.NewBookingHandler(bookings, users, store, mailer),
		Statistic: handler.NewStatisticHandler(bookings),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
