package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"attendtrack/internal/attendance"
	"attendtrack/internal/config"
	"attendtrack/internal/queue"
	"attendtrack/internal/store"
)

// Worker consumes device check-in submissions from the queue and records
// attendance through the service. Camera gateways publish already-validated
// submissions; anything that still fails validation is logged and dropped.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	mongo, err := store.NewMongo(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo connect failed: %v", err)
	}
	defer func() {
		_ = mongo.Close(context.Background())
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, cfg.CheckinQueueKey)
	}

	att := attendance.NewService(attendance.NewRepo(mongo))

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for check-ins...")
	for msg := range messages {
		if msg.Type != queue.CheckinType {
			continue
		}

		var checkin queue.Checkin
		if err := json.Unmarshal(msg.Body, &checkin); err != nil {
			log.Printf("malformed check-in payload: %v", err)
			continue
		}

		rec, err := att.Record(ctx, attendance.RecordRequest{
			StudentID:   checkin.StudentID,
			Date:        checkin.Date,
			Status:      checkin.Status,
			ArrivalTime: checkin.ArrivalTime,
			CourseID:    checkin.CourseID,
			ScheduleID:  checkin.ScheduleID,
			Department:  checkin.Department,
			Method:      "device:" + checkin.DeviceID,
		}, checkin.DeviceID)
		if err != nil {
			log.Printf("check-in from device %s rejected: %v", checkin.DeviceID, err)
			continue
		}
		log.Printf("recorded %s for student %s on %s (device %s)", rec.Status, rec.StudentID, rec.Date, checkin.DeviceID)
	}

	log.Println("worker stopped")
}
