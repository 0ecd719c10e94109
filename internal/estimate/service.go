package estimate

import (
	"context"
	"strings"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
	"github.com/yungbote/shipping-estimator/internal/platform/ctxutil"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
	"github.com/yungbote/shipping-estimator/internal/ratetable"
)

type Request struct {
	Question string       `json:"question"`
	Key      shipping.Key `json:"selection"`
}

// Answer is the result of one interaction. Found=false with no estimate is a
// normal outcome.
type Answer struct {
	Key           shipping.Key        `json:"selection"`
	Found         bool                `json:"found"`
	Rate          *shipping.RateRange `json:"rate,omitempty"`
	Estimate      string              `json:"estimate,omitempty"`
	EstimateError string              `json:"estimate_error,omitempty"`
}

type Service struct {
	table *ratetable.Table
	est   Estimator
	log   *logger.Logger
}

// NewService wires the rate table to an optional estimator. A nil estimator
// disables free-text estimates.
func NewService(table *ratetable.Table, est Estimator, baseLog *logger.Logger) *Service {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &Service{table: table, est: est, log: baseLog.With("service", "EstimateService")}
}

func (s *Service) Enabled() bool { return s != nil && s.est != nil }

func (s *Service) Lookup(key shipping.Key) (shipping.RateEntry, bool) {
	return s.table.Lookup(key)
}

// Ask looks up the rate and, when an estimator is configured and a question
// was asked, makes one completion call. A completion failure is reported in
// EstimateError; the lookup result is always returned.
func (s *Service) Ask(ctx context.Context, req Request) Answer {
	ans := Answer{Key: req.Key}
	if entry, ok := s.table.Lookup(req.Key); ok {
		r := entry.Range()
		ans.Found = true
		ans.Rate = &r
	}

	if !s.Enabled() || strings.TrimSpace(req.Question) == "" {
		return ans
	}

	prompt := BuildPrompt(req, ans.Rate)
	text, err := s.est.Estimate(ctx, prompt)
	if err != nil {
		s.log.Warn("Estimate failed",
			"request_id", ctxutil.RequestID(ctx),
			"key", req.Key.String(),
			"found", ans.Found,
			"error", err,
		)
		ans.EstimateError = err.Error()
		return ans
	}
	ans.Estimate = text
	return ans
}
