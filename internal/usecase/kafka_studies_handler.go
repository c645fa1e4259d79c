package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"
	"FinStudies/internal/studies"
	pkgkafka "FinStudies/pkg/kafka"
	applogger "FinStudies/pkg/logger"

	"github.com/google/uuid"
)

// newID assigns ids to requests that arrive without one.
var newID = uuid.NewString

// KafkaStudiesHandler consumes study requests and publishes one result per request.
// Study failures become error results; only publish failures are returned, so
// the consumer retries and dead-letters them.
type KafkaStudiesHandler struct {
	topic   string
	uc      *StudiesUseCase
	pub     domrepo.Publisher
	metrics domrepo.Metrics
	log     *applogger.Logger
}

func NewKafkaStudiesHandler(topic string, uc *StudiesUseCase, pub domrepo.Publisher, metrics domrepo.Metrics, log *applogger.Logger) *KafkaStudiesHandler {
	return &KafkaStudiesHandler{topic: topic, uc: uc, pub: pub, metrics: metrics, log: log}
}

func (h *KafkaStudiesHandler) Topic() string { return h.topic }

// incoming message schema: models.StudyMessage
func (h *KafkaStudiesHandler) Handle(ctx context.Context, b []byte) error {
	var m models.StudyMessage
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		h.log.Warn("study message rejected", applogger.Error(err))
		id := newID()
		return h.publish(ctx, id, &models.StudyResultMessage{
			ID:    id,
			Error: fmt.Sprintf("decode message: %v", err),
			Kind:  "bad_request",
		})
	}

	if m.ID == "" {
		m.ID = newID()
	}
	res := &models.StudyResultMessage{ID: m.ID, Study: m.Study, Symbol: m.Symbol}

	req, err := requestFromMessage(&m)
	if err != nil {
		res.Error, res.Kind = err.Error(), "bad_request"
		return h.publish(ctx, m.ID, res)
	}

	table, err := h.uc.Run(ctx, m.Study, req)
	if err != nil {
		res.Error, res.Kind = err.Error(), studies.Kind(err)
		return h.publish(ctx, m.ID, res)
	}

	split := table.Split()
	res.Table = &split
	return h.publish(ctx, m.ID, res)
}

func (h *KafkaStudiesHandler) publish(ctx context.Context, key string, res *models.StudyResultMessage) error {
	if err := h.pub.Publish(ctx, key, res); err != nil {
		h.metrics.RecordError("publish_result")
		h.log.Error("publish study result",
			applogger.String("id", res.ID),
			applogger.String("trace_id", pkgkafka.TraceID(ctx)),
			applogger.Error(err),
		)
		return fmt.Errorf("publish result %s: %w", res.ID, err)
	}
	return nil
}

func requestFromMessage(m *models.StudyMessage) (studies.Request, error) {
	req := studies.Request{
		Symbol:  m.Symbol,
		Range:   m.Range,
		Col:     m.Col,
		HighCol: m.HighCol,
		LowCol:  m.LowCol,
		Params:  studies.Params(m.Params),
	}
	if m.Symbol == "" {
		return req, fmt.Errorf("symbol is required")
	}
	if len(m.Periods) > 0 {
		if err := json.Unmarshal(m.Periods, &req.Periods); err != nil {
			return req, err
		}
	}
	return req, nil
}

var _ pkgkafka.MessageHandler = (*KafkaStudiesHandler)(nil)
