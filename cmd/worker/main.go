package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"workstudy/internal/cache"
	"workstudy/internal/config"
	"workstudy/internal/engine"
	"workstudy/internal/queue"
	"workstudy/internal/roster"
	"workstudy/internal/store"
)

// Worker runs the daily auto-clock-out job and rebuilds report caches
// after clock-event mutations.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "workstudy:recompute")
	}

	cal := engine.NewCalendar(cfg.ReferenceTZ)
	reports := cache.New(redisClient.Client, cfg.ReportCacheTTL)
	repo := roster.NewRepository(db.Client)
	svc := roster.NewService(repo, reports, cal, nil)

	cutoff, err := parseCutoff(cfg.AutoClockOutAt)
	if err != nil {
		log.Fatalf("invalid AUTO_CLOCKOUT_AT %q: %v", cfg.AutoClockOutAt, err)
	}

	go runAutoClockOut(ctx, svc, redisClient, cal, cutoff)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		studentID, termID, ok := queue.RecomputeTarget(msg)
		if !ok {
			continue
		}
		if err := svc.Warm(ctx, studentID, termID); err != nil {
			log.Printf("warm reports for %s/%s failed: %v", studentID, termID, err)
			continue
		}
		log.Printf("reports rebuilt for %s/%s", studentID, termID)
	}

	log.Println("worker stopped")
}

// runAutoClockOut wakes every minute and, once per reference-zone
// weekday at the cutoff, closes any clock-ins still open. The redis
// latch keeps the job at-most-once across worker replicas; hitting the
// cutoff minute late (restarts, clock skew) still fires because the
// check is "past cutoff and latch free", not an exact minute match.
func runAutoClockOut(ctx context.Context, svc *roster.Service, redisClient *store.Redis, cal *engine.Calendar, cutoff int) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			weekday := cal.Weekday(now)
			if weekday == time.Saturday || weekday == time.Sunday {
				continue
			}
			if cal.MinuteOfDay(now) < cutoff {
				continue
			}
			acquired, err := redisClient.AcquireDailyLatch(ctx, "auto-clockout", cal.DayKey(now), 24*time.Hour)
			if err != nil {
				log.Printf("auto-clockout latch error: %v", err)
				continue
			}
			if !acquired {
				continue
			}
			closed, err := svc.CloseOpenShifts(ctx, now)
			if err != nil {
				log.Printf("auto-clockout failed: %v", err)
				continue
			}
			log.Printf("auto-clockout closed %d open shift(s) for %s", closed, cal.DayKey(now))
		}
	}
}

// parseCutoff reads "HH:MM" into a minute of day.
func parseCutoff(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	min := 0
	if len(parts) == 2 {
		if min, err = strconv.Atoi(parts[1]); err != nil {
			return 0, err
		}
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, strconv.ErrRange
	}
	return hour*60 + min, nil
}
