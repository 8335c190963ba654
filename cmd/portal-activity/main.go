package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expo-portal/internal/config"
	"expo-portal/internal/kafka"
	"expo-portal/internal/logger"
	"expo-portal/internal/models"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	group := flag.String("group", "expo-portal-activity", "consumer group id")
	list := flag.Bool("list", false, "list topics and exit")
	flag.Parse()

	log := logger.NewLogger()
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *list {
		topics, err := kafka.ListTopics(ctx, cfg.Kafka.Brokers)
		if err != nil {
			log.Fatal("KAFKA", fmt.Sprintf("failed to list topics: %v", err))
		}
		for _, t := range topics {
			fmt.Fprintln(os.Stdout, t)
		}
		return
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, kafka.Topics(cfg.Kafka.TopicPrefix), *group, log)
	defer consumer.Close()

	if err := consumer.Start(ctx, printEvent); err != nil {
		log.Fatal("KAFKA", fmt.Sprintf("consumer stopped: %v", err))
	}
}

func printEvent(e models.PortalEvent) {
	kind := color.New(color.FgCyan, color.Bold).Sprint(e.Type)
	line := fmt.Sprintf("%s %s", e.Timestamp.Format("15:04:05"), kind)
	if e.CompanyID != "" {
		line += " company=" + e.CompanyID
	}
	if e.StallNumber != "" {
		line += " stall=" + e.StallNumber
		if e.HallNumber != "" {
			line += " (" + e.HallNumber + ")"
		}
	}
	if e.VisitorID != "" {
		line += " visitor=" + e.VisitorID
	}
	if e.Amount > 0 {
		line += fmt.Sprintf(" amount=%.2f", e.Amount)
	}
	fmt.Fprintln(os.Stdout, line)
}
