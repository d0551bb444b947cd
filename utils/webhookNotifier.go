package utils

import (
	"encoding/json"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"classroom/models"
)

const (
	webhookBatchSize   = 20
	webhookMaxAttempts = 5
)

// StartWebhookNotifier sets up the outbox delivery sweep. Events recorded by
// request handlers are POSTed to the configured URL once a minute.
func StartWebhookNotifier(db *gorm.DB, url string) {
	if url == "" {
		log.Println("[WEBHOOK] WEBHOOK_URL not set, outbox delivery disabled")
		return
	}

	log.Println("[WEBHOOK] Initializing outbox notifier...")

	client := resty.New().SetTimeout(10 * time.Second)

	c := cron.New()
	c.AddFunc("* * * * *", func() {
		DeliverPendingEvents(db, client, url)
	})

	c.Start()
	log.Println("[WEBHOOK] Outbox notifier started - runs every minute")
}

// DeliverPendingEvents posts a batch of undelivered outbox events to url.
// Events are retried on later sweeps until they exceed the attempt cap.
func DeliverPendingEvents(db *gorm.DB, client *resty.Client, url string) {
	var events []models.OutboxEvent
	if err := db.
		Where("delivered = false AND attempts < ?", webhookMaxAttempts).
		Order("id asc").
		Limit(webhookBatchSize).
		Find(&events).Error; err != nil {
		log.Printf("[WEBHOOK] Error fetching pending events: %v", err)
		return
	}

	for _, event := range events {
		resp, err := client.R().
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]interface{}{
				"id":         event.ID,
				"event_type": event.EventType,
				"payload":    json.RawMessage(event.Payload),
			}).
			Post(url)

		if err == nil && resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
			deliveredAt := time.Now()
			db.Model(&event).Updates(map[string]interface{}{
				"delivered":    true,
				"delivered_at": &deliveredAt,
			})
			continue
		}

		attempts := event.Attempts + 1
		db.Model(&event).Update("attempts", attempts)

		if err != nil {
			log.Printf("[WEBHOOK] Event %d (%s) attempt %d failed: %v", event.ID, event.EventType, attempts, err)
		} else {
			log.Printf("[WEBHOOK] Event %d (%s) attempt %d failed: status %d", event.ID, event.EventType, attempts, resp.StatusCode())
		}
		if attempts >= webhookMaxAttempts {
			log.Printf("[WEBHOOK] Giving up on event %d after %d attempts", event.ID, attempts)
		}
	}
}
