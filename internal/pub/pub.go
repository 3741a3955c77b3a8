package pub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
)

const (
	EventDonationCompleted = "donation.completed"
	EventDonationMatched   = "donation.matched"
	EventReceiptIssued     = "receipt.issued"
)

// DonationEvent is the wire format published to the donations topic.
// Consumers include the email/receipt pipeline and reporting.
type DonationEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	DonationID     string    `json:"donation_id"`
	CampaignID     string    `json:"campaign_id,omitempty"`
	OrganizationID string    `json:"organization_id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	Amount         string    `json:"amount,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	ReceiptNumber  string    `json:"receipt_number,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher writes donation lifecycle events to kafka. Publishing is
// best-effort after commit: a failed publish is logged, never rolled
// into the settlement result.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger,
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *Publisher) publish(ctx context.Context, key string, event *DonationEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}

	event.EventID = uuid.NewString()
	event.Timestamp = time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("event_type", event.EventType),
		zap.String("donation_id", event.DonationID),
	)
	return nil
}

func donationEvent(eventType string, d *domain.Donation) *DonationEvent {
	e := &DonationEvent{
		EventType:      eventType,
		DonationID:     d.ID,
		OrganizationID: d.OrganizationID,
		Amount:         d.Amount.String(),
		Currency:       d.Currency,
	}
	if d.CampaignID != nil {
		e.CampaignID = *d.CampaignID
	}
	if d.UserID != nil {
		e.UserID = *d.UserID
	}
	return e
}

func (p *Publisher) PublishDonationCompleted(ctx context.Context, d *domain.Donation) error {
	return p.publish(ctx, d.ID, donationEvent(EventDonationCompleted, d))
}

// PublishDonationMatched announces the synthetic matching donation
// minted from a campaign's pool.
func (p *Publisher) PublishDonationMatched(ctx context.Context, d *domain.Donation) error {
	return p.publish(ctx, d.ID, donationEvent(EventDonationMatched, d))
}

func (p *Publisher) PublishReceiptIssued(ctx context.Context, d *domain.Donation, receiptNumber string) error {
	e := donationEvent(EventReceiptIssued, d)
	e.ReceiptNumber = receiptNumber
	return p.publish(ctx, d.ID, e)
}
