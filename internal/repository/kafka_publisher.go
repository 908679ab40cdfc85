package repository

import (
	"context"
	"time"

	"EdgeRunner/internal/domain/models"
	domrepo "EdgeRunner/internal/domain/repository"
	pkgkafka "EdgeRunner/pkg/kafka"
)

// decisionEvent is the wire shape of one published decision. The full
// checklist rides along so downstream consumers can audit the score.
type decisionEvent struct {
	Symbol      string                 `json:"symbol"`
	Timestamp   time.Time              `json:"timestamp"`
	Confidence  int                    `json:"confidence"`
	Bias        models.TradeBias       `json:"bias"`
	ShouldTrade bool                   `json:"shouldTrade"`
	Items       []models.ChecklistItem `json:"items"`
	Approved    bool                   `json:"approved"`
	Reason      string                 `json:"reason,omitempty"`
	Order       *models.OrderRequest   `json:"order,omitempty"`
}

// KafkaDecisionPublisher emits decisions to a Kafka topic, keyed by
// symbol so per-symbol ordering holds under a hash balancer.
type KafkaDecisionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.DecisionPublisher = (*KafkaDecisionPublisher)(nil)

// NewKafkaDecisionPublisher creates a Kafka-backed decision publisher.
func NewKafkaDecisionPublisher(producer *pkgkafka.Producer, topic string) *KafkaDecisionPublisher {
	return &KafkaDecisionPublisher{producer: producer, topic: topic}
}

func (p *KafkaDecisionPublisher) PublishDecision(ctx context.Context, score *models.ScoreResult, risk *models.RiskDecision) error {
	ev := decisionEvent{
		Symbol:      score.Symbol,
		Timestamp:   score.Timestamp,
		Confidence:  score.Confidence,
		Bias:        score.Bias,
		ShouldTrade: score.ShouldTrade,
		Items:       score.Items,
	}
	if risk != nil {
		ev.Approved = risk.Approved
		ev.Reason = risk.Reason
		ev.Order = risk.Order
	}
	return p.producer.Publish(ctx, p.topic, []byte(score.Symbol), ev)
}

func (p *KafkaDecisionPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
