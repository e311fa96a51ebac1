package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"academix/config"
	"academix/services/payout"
	"academix/services/tasks"
	"academix/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitPayoutWorker runs the async payout worker in background.
func InitPayoutWorker(payoutSvc payout.PayoutService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: config.AppConfig.PayoutWorkerConcurrency,
			Queues: map[string]int{
				tasks.QueuePayouts: 1,
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(1<<uint(n)) * time.Second
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePayoutCreate, handlePayoutCreationTask(payoutSvc))
	mux.HandleFunc(tasks.TypePayoutTransfer, handlePayoutTransferTask(payoutSvc))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[PayoutWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PayoutWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PayoutWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handlePayoutCreationTask(payoutSvc payout.PayoutService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.PayoutCreationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[PayoutHandler] 🔴 Invalid payload: %v", err)
			return asynq.SkipRetry
		}

		result, err := payoutSvc.CreatePayout(ctx, p)
		if err != nil {
			log.Printf("[PayoutHandler] ❌ Payout creation failed for booking %s: %v", p.BookingID, err)
			return skipIfTerminal(err)
		}

		log.Printf("[PayoutHandler] 💸 Payout %s for booking %s", result, p.BookingID)
		return nil
	}
}

func handlePayoutTransferTask(payoutSvc payout.PayoutService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.PayoutTransferPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[TransferHandler] 🔴 Invalid payload: %v", err)
			return asynq.SkipRetry
		}

		result, err := payoutSvc.ExecuteTransfer(ctx, p)
		if err != nil {
			log.Printf("[TransferHandler] ❌ Transfer failed for payout %s: %v", p.PayoutID, err)
			return skipIfTerminal(err)
		}

		log.Printf("[TransferHandler] 🏦 Transfer %s for payout %s", result, p.PayoutID)
		return nil
	}
}

// skipIfTerminal stops retrying on errors that a redelivery cannot fix.
// Conflicts and missing records are permanent; gateway and database errors
// get the normal retry schedule.
func skipIfTerminal(err error) error {
	if utils.IsKind(err, utils.KindConflict) || utils.IsKind(err, utils.KindNotFound) || utils.IsKind(err, utils.KindValidation) {
		return errors.Join(err, asynq.SkipRetry)
	}
	return err
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[PayoutWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
