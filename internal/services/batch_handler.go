package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"triage/internal/metrics"
	"triage/internal/models"
	"triage/pkg/categorizer"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

type batchIDKey struct{}

// WithBatchID attaches a batch id used in log entries for the batch.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey{}, id)
}

// BatchIDFromContext returns the batch id set by WithBatchID, or a fresh one.
func BatchIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(batchIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// BatchHandler classifies every record of a skill request with one categorizer.
type BatchHandler struct {
	categorizer categorizer.ContentCategorizer
	concurrency int
	logger      log.FieldLogger
	metrics     *metrics.Metrics
}

type BatchOption func(*BatchHandler)

// WithConcurrency bounds how many records are classified at once. n <= 1 is sequential.
func WithConcurrency(n int) BatchOption {
	return func(h *BatchHandler) { h.concurrency = n }
}

func WithLogger(l log.FieldLogger) BatchOption {
	return func(h *BatchHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) BatchOption {
	return func(h *BatchHandler) { h.metrics = m }
}

func NewBatchHandler(cat categorizer.ContentCategorizer, opts ...BatchOption) *BatchHandler {
	h := &BatchHandler{
		categorizer: cat,
		concurrency: 1,
		logger:      log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs a raw request body through the batch and returns the response
// body and HTTP status. A malformed body yields 400 and the classifier is not called.
func (h *BatchHandler) Handle(ctx context.Context, raw []byte) ([]byte, int) {
	batchID := BatchIDFromContext(ctx)
	ctx = WithBatchID(ctx, batchID)
	logger := h.logger.WithField("batch_id", batchID)

	logger.WithField("bytes", len(raw)).Info("Batch classification triggered")

	req, err := models.ParseRequest(raw)
	if err != nil {
		logger.WithError(err).Warn("Rejecting malformed classification request")
		h.metrics.BatchRejected()
		return []byte(models.InvalidBodyMessage), http.StatusBadRequest
	}

	resp := h.Process(ctx, req)

	body, err := json.Marshal(resp)
	if err != nil {
		// Every field is a string or raw JSON already validated by the decoder.
		logger.WithError(err).Error("Failed to encode classification response")
		return []byte(`{"values":[]}`), http.StatusOK
	}
	return body, http.StatusOK
}

// Process classifies every record of req and returns one output per record, in order.
// It never fails as a whole; per-record problems become failure outputs.
func (h *BatchHandler) Process(ctx context.Context, req *models.Request) *models.Response {
	batchID := BatchIDFromContext(ctx)
	logger := h.logger.WithFields(log.Fields{"batch_id": batchID, "records": len(req.Values)})
	start := time.Now()

	logger.Debug("Processing classification batch")

	out := make([]models.RecordOutput, len(req.Values))
	if h.concurrency <= 1 || len(req.Values) < 2 {
		for i, raw := range req.Values {
			out[i] = h.processRecord(ctx, logger, raw)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(h.concurrency)
		for i, raw := range req.Values {
			g.Go(func() error {
				out[i] = h.processRecord(ctx, logger, raw)
				return nil
			})
		}
		_ = g.Wait()
	}

	failed := 0
	for _, o := range out {
		if o.Failed() {
			failed++
		}
	}
	elapsed := time.Since(start)
	h.metrics.BatchProcessed(len(out)-failed, failed, elapsed)

	logger.WithFields(log.Fields{
		"succeeded":   len(out) - failed,
		"failed":      failed,
		"duration_ms": elapsed.Milliseconds(),
	}).Info("Classification batch complete")

	return &models.Response{Values: out}
}

func (h *BatchHandler) processRecord(ctx context.Context, logger log.FieldLogger, raw json.RawMessage) models.RecordOutput {
	var id models.RecordID

	rec, err := models.DecodeRecord(raw)
	if err != nil {
		return h.fail(logger, &models.RecordError{RecordID: id, Stage: models.StageDecode, Err: err})
	}
	id = rec.RecordID

	text, err := rec.Text()
	if err != nil {
		return h.fail(logger, &models.RecordError{RecordID: id, Stage: models.StageData, Err: err})
	}

	category, err := h.classify(ctx, text)
	if err != nil {
		stage := models.StageClassify
		if errors.Is(err, models.ErrClassifierPanic) {
			stage = models.StagePanic
		}
		return h.fail(logger, &models.RecordError{RecordID: id, Stage: stage, Err: err})
	}
	return models.Success(id, category)
}

// classify calls the categorizer, turning a panic into an error.
func (h *BatchHandler) classify(ctx context.Context, text string) (category string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", models.ErrClassifierPanic, r)
		}
	}()

	if h.categorizer == nil {
		return "", errors.New("no classifier configured")
	}
	res, err := h.categorizer.Categorize(ctx, categorizer.CategorizationRequest{Text: text})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(res.Category) == "" {
		return "", models.ErrEmptyCategory
	}
	return res.Category, nil
}

func (h *BatchHandler) fail(logger log.FieldLogger, rerr *models.RecordError) models.RecordOutput {
	logger.WithFields(log.Fields{
		"record_id": rerr.RecordID.String(),
		"stage":     rerr.Stage,
	}).WithError(rerr.Err).Error("Record classification failed")
	h.metrics.RecordFailed(string(rerr.Stage))
	return models.Failure(rerr.RecordID, rerr)
}
