package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shipping-estimator/internal/estimate"
	"github.com/yungbote/shipping-estimator/internal/http/response"
	"github.com/yungbote/shipping-estimator/internal/observability"
	"github.com/yungbote/shipping-estimator/internal/platform/apierr"
)

var (
	errQuestionRequired     = errors.New("question is required")
	errEstimatorUnavailable = errors.New("no estimator is configured")
)

type EstimateHandler struct {
	service *estimate.Service
	metrics *observability.Metrics
}

func NewEstimateHandler(service *estimate.Service, metrics *observability.Metrics) *EstimateHandler {
	return &EstimateHandler{service: service, metrics: metrics}
}

// POST /api/estimate
// body: { "question": "...", "selection": { "size_tier": "...", "weight_class": "...", "service_tier": "...", "to_country": "..." } }
// A completion failure is reported in estimate_error with status 200.
func (h *EstimateHandler) Estimate(c *gin.Context) {
	var req estimate.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondErr(c, apierr.New(http.StatusRequestEntityTooLarge, apierr.CodeInvalidRequest, err))
			return
		}
		response.RespondErr(c, apierr.BadRequest(err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		response.RespondErr(c, apierr.BadRequest(errQuestionRequired))
		return
	}
	if !h.service.Enabled() {
		response.RespondErr(c, apierr.New(http.StatusServiceUnavailable, apierr.CodeEstimatorUnavailable, errEstimatorUnavailable))
		return
	}

	ans := h.service.Ask(c.Request.Context(), req)
	h.metrics.ObserveLookup(ans.Found)
	response.RespondOK(c, ans)
}
