package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shipping-estimator/internal/domain/shipping"
	"github.com/yungbote/shipping-estimator/internal/http/response"
	"github.com/yungbote/shipping-estimator/internal/observability"
	"github.com/yungbote/shipping-estimator/internal/platform/apierr"
	"github.com/yungbote/shipping-estimator/internal/ratetable"
	"github.com/yungbote/shipping-estimator/internal/reference"
)

type RateHandler struct {
	table    *ratetable.Table
	glossary *reference.Glossary
	metrics  *observability.Metrics
}

func NewRateHandler(table *ratetable.Table, glossary *reference.Glossary, metrics *observability.Metrics) *RateHandler {
	return &RateHandler{table: table, glossary: glossary, metrics: metrics}
}

// GET /api/options
func (h *RateHandler) Options(c *gin.Context) {
	response.RespondOK(c, h.table.Options())
}

// GET /api/definitions
func (h *RateHandler) Definitions(c *gin.Context) {
	sections := h.glossary.Categories()
	if sections == nil {
		sections = []reference.Section{}
	}
	response.RespondOK(c, gin.H{"categories": sections})
}

// GET /api/rates?size_tier=&weight_class=&service_tier=&to_country=
// Values are matched exactly; nothing is trimmed or case-folded. An absent
// parameter is a 400. A present but blank value never matches, like a blank
// cell in the source table, and answers 404 no_match.
func (h *RateHandler) Lookup(c *gin.Context) {
	var absent []string
	param := func(name string) string {
		v, ok := c.GetQuery(name)
		if !ok {
			absent = append(absent, name)
		}
		return v
	}
	key := shipping.Key{
		SizeTier:    param("size_tier"),
		WeightClass: param("weight_class"),
		ServiceTier: param("service_tier"),
		ToCountry:   param("to_country"),
	}
	if len(absent) > 0 {
		response.RespondErr(c, apierr.BadRequest(fmt.Errorf("missing query parameters: %s", strings.Join(absent, ", "))))
		return
	}
	if len(key.Missing()) > 0 {
		h.metrics.ObserveLookup(false)
		response.RespondErr(c, errNoMatch())
		return
	}

	entry, ok := h.table.Lookup(key)
	h.metrics.ObserveLookup(ok)
	if !ok {
		response.RespondErr(c, errNoMatch())
		return
	}

	rate := entry.Range()
	response.RespondOK(c, gin.H{
		"selection": key,
		"found":     true,
		"rate":      rate,
	})
}

func errNoMatch() *apierr.Error {
	return apierr.New(http.StatusNotFound, apierr.CodeNoMatch, fmt.Errorf("no matching rate found for this combination"))
}
