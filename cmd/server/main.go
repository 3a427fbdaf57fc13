package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/config"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/database"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/handler"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/middleware"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/queue"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/repository"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/router"
	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db, database.DialectMySQL)
		cancel()
		if err != nil {
			log.Fatalf("database: %v", err)
		}
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	courses := repository.NewCourseRepo(db)
	students := &service.StudentService{Users: users, Students: repository.NewStudentRepo(db), Courses: courses}
	schedules := &service.ScheduleService{
		Courses:     courses,
		Attributes:  repository.NewCourseAttributeRepo(db),
		Sections:    repository.NewSectionRepo(db),
		Degrees:     repository.NewDegreeRepo(db),
		Instructors: repository.NewInstructorRepo(db),
		Ratings:     repository.NewRatingRepo(db),
		Events:      queue.NewPublisher(),
		Settings: service.ScheduleSettings{
			Campus:          cfg.Schedule.Campus,
			DefaultSemester: cfg.Schedule.DefaultSemester,
			Equivalencies:   cfg.Schedule.Equivalencies,
			MaxSections:     cfg.Schedule.MaxSections,
		},
	}

	go func() {
		if err := queue.StartScheduleConsumer(); err != nil {
			log.Printf("schedule-consumer: stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)), cfg.JWTSecret)
	router.RegisterCatalog(e, &handler.CatalogHandler{Schedule: schedules, Degrees: repository.NewDegreeRepo(db), Students: students},
		cfg.JWTSecret, limit, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterStudent(e, &handler.StudentHandler{
		Students: students,
		Schedule: schedules,
		Ratings:  repository.NewRatingRepo(db),
	}, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
