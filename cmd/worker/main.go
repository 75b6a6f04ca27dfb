package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/NutMontree/kiosk/internal/config"
	"github.com/NutMontree/kiosk/internal/lockrelay"
	"github.com/NutMontree/kiosk/internal/queue"
	"github.com/NutMontree/kiosk/internal/store"
)

// Worker drains lock commands from redis and forwards them over MQTT.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
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

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		log.Printf("WARNING: redis not reachable at %s: %v", cfg.RedisAddr, err)
	}
	q := queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)

	var sink lockrelay.Sink = lockrelay.LogSink{}
	if cfg.MQTTBrokerURL != "" {
		broker, err := lockrelay.NewMQTT(ctx, lockrelay.MQTTOptions{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			TopicPrefix: cfg.MQTTTopicPrefix,
			SigningKey:  cfg.SecretKey,
		})
		if err != nil {
			log.Fatalf("mqtt connect failed: %v", err)
		}
		defer broker.Close()
		sink = broker
	} else {
		log.Println("MQTT_BROKER_URL not set, lock commands will only be logged")
	}

	log.Printf("worker started, waiting for lock commands on %s...", cfg.QueueKey)
	if err := lockrelay.New(q, sink).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("relay stopped: %v", err)
	}
	log.Println("worker stopped")
}
