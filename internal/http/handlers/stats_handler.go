// Statistics HTTP handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/applicationtrack/applicationtrack-backend/internal/services"
	"github.com/applicationtrack/applicationtrack-backend/internal/stats"
)

// GetStats godoc
// @ID          getStats
// @Summary     Aggregate application statistics
// @Description Computes counts, rates, and time buckets over the user's applications. Accepts the same filters as the list endpoint; the statistics then describe the filtered view.
// @Tags        Statistics
// @Produce     json
// @Security    BearerAuth
//
// @Param       q              query  string  false "Search in company and description"
// @Param       company        query  string  false "Company name filter"
// @Param       status         query  string  false "Status filter"
// @Param       contract_type  query  string  false "Contract tag filter"
// @Param       date_from      query  string  false "Inclusive lower bound on applied_at (YYYY-MM-DD)"
// @Param       date_to        query  string  false "Inclusive upper bound on applied_at (YYYY-MM-DD)"
//
// @Success     200  {object} stats.Summary
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	f, _, okQ := listQuery(c)
	if !okQ {
		return
	}

	apps, err := h.appSvc.List(c.Request.Context(), userID(c), f, services.Sort{})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats.Compute(apps))
}
