package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/chroniclehq/feedgen/internal/config"
	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/queue"
)

const probeTimeout = 10 * time.Second

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test connectivity to backing services",
		Long:  "Probe the database, Redis, and RabbitMQ connections the server and worker depend on",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
			defer cancel()

			// Database
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer closeDatabase(db)
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("database ping failed: %w", err)
			}
			fmt.Println("✓ Database is reachable")

			// Redis
			redisOpts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("invalid REDIS_URL: %w", err)
			}
			redisClient := redis.NewClient(redisOpts)
			defer func() {
				if err := redisClient.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close Redis connection: %v\n", err)
				}
			}()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping failed: %w", err)
			}
			fmt.Println("✓ Redis is reachable")

			// RabbitMQ
			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("rabbitmq connection failed: %w", err)
			}
			defer func() {
				if err := jobQueue.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close RabbitMQ connection: %v\n", err)
				}
			}()
			if err := jobQueue.HealthCheck(ctx); err != nil {
				return fmt.Errorf("rabbitmq health check failed: %w", err)
			}
			fmt.Println("✓ RabbitMQ is reachable")

			if cfg.DetectorBaseURL == "" {
				fmt.Println("- Detector service not configured (findings disabled)")
			} else {
				fmt.Printf("- Detector service configured at %s (not probed)\n", cfg.DetectorBaseURL)
			}

			fmt.Println("\n✓ All required services are reachable")
			return nil
		},
	}
}
