package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Scan struct {
	OrderID   string `json:"order_id"`
	SessionID string `json:"session_id"`
	Status    int    `json:"status"`
	ScannedAt int64  `json:"scanned_at"`
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "kafka brokers, comma separated")
	topic := flag.String("topic", "scans", "scan topic")
	orders := flag.String("orders", "", "order ids to scan, comma separated")
	interval := flag.Duration("interval", 2*time.Second, "publish interval")
	flag.Parse()

	ids := strings.Split(*orders, ",")
	if *orders == "" {
		log.Fatal("pass at least one order id via -orders")
	}

	writer := &kafka.Writer{
		Addr:  kafka.TCP(strings.Split(*brokers, ",")...),
		Topic: *topic,
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(*interval)
	for {
		select {
		case <-ticker.C:
			scan := Scan{
				OrderID:   ids[rand.Intn(len(ids))],
				SessionID: uuid.NewString(),
				Status:    rand.Intn(3),
				ScannedAt: time.Now().Unix(),
			}
			data, _ := json.Marshal(scan)
			if err := writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
				log.Println("failed to publish scan:", err)
				continue
			}
			log.Println("scan published", scan.OrderID, "status", scan.Status)
		case <-ctx.Done():
			return
		}
	}
}
