package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finreport/models"
	"finreport/reports"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
)

func (api *API) GetOperationsReport(c *gin.Context) {
	started := time.Now()
	u := ParsePayload(c)

	if _, err := uuid.FromString(u.Id); err != nil {
		sendError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	// admins may report on another user
	userId := u.Id
	if u.Role == string(models.Admin) && c.Query("user_id") != "" {
		userId = c.Query("user_id")
		if _, err := uuid.FromString(userId); err != nil {
			sendError(c, http.StatusBadRequest, "invalid-user-id")
			return
		}
	}

	req, err := api.parseReportRequest(c)
	if err != nil {
		api.observeError("request", started)
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	asExcel, _ := strconv.ParseBool(c.Query("export_as_excel"))
	asCSV, _ := strconv.ParseBool(c.Query("export_as_csv"))

	ctx := c.Request.Context()
	if api.ReportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, api.ReportTimeout)
		defer cancel()
	}

	report, err := api.Reports.GetReport(ctx, userId, req)
	if err != nil {
		api.handleReportError(c, userId, err, started)
		return
	}

	if api.Metrics != nil {
		api.Metrics.ObserveReport("ok", time.Since(started), len(report.Operations))
	}

	if asExcel {
		handleExcelReport(c, report)
		return
	}

	if asCSV {
		handleCSVReport(c, report)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (api *API) parseReportRequest(c *gin.Context) (models.ReportRequest, error) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", c.Query("limit")))

	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = api.DefaultPageSize
	}

	if api.MaxPageSize > 0 && pageSize > api.MaxPageSize {
		pageSize = api.MaxPageSize
	}

	req := models.ReportRequest{
		Page:         page,
		PageSize:     pageSize,
		CategoryName: strings.TrimSpace(c.Query("category")),
		Period:       strings.TrimSpace(c.Query("period")),
	}

	start := c.Query("start_date")
	finish := c.Query("finish_date")

	if start == "" && finish == "" {
		return req, nil
	}

	if req.Period != "" {
		return req, errors.New("period-and-date-range-are-exclusive")
	}

	if start == "" || finish == "" {
		return req, errors.New("missing-start-or-finish-date")
	}

	var err error
	if req.StartDate, err = parseReportDate(start, false); err != nil {
		return req, errors.New("invalid-start-date")
	}

	if req.FinishDate, err = parseReportDate(finish, true); err != nil {
		return req, errors.New("invalid-finish-date")
	}

	if req.FinishDate.Before(req.StartDate) {
		return req, errors.New("finish-date-before-start-date")
	}

	return req, nil
}

// parseReportDate accepts RFC3339 or yyyy-mm-dd. A bare date is read in the
// server's zone, like period keywords, and a bare finish date covers its
// whole day.
func parseReportDate(value string, finish bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(dateFormat, value, time.Local)
	if err != nil {
		return time.Time{}, err
	}

	if finish {
		return reports.EndOf(t.AddDate(0, 0, 1)), nil
	}

	return t, nil
}

func (api *API) handleReportError(c *gin.Context, userId string, err error, started time.Time) {
	var categoryErr *reports.CategoryError

	switch {
	case errors.As(err, &categoryErr):
		api.observeError("category", started)
		sendError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, reports.ErrInvalidReport), errors.Is(err, reports.ErrUnknownPeriod):
		api.observeError("request", started)
		sendError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		api.observeError("timeout", started)
		log.WithFields(log.Fields{"user_id": userId, "elapsed": time.Since(started)}).Warn("report timed out")
		sendError(c, http.StatusGatewayTimeout, "report-timeout")
	case errors.Is(err, reports.ErrMalformedCategoryGraph):
		api.observeError("graph", started)
		log.WithError(err).WithField("user_id", userId).Error("malformed category graph")
		sendError(c, http.StatusInternalServerError, err.Error())
	default:
		api.observeError("storage", started)
		log.WithError(err).WithField("user_id", userId).Error("report failed")
		sendError(c, http.StatusInternalServerError, err.Error())
	}
}

func (api *API) observeError(kind string, started time.Time) {
	if api.Metrics == nil {
		return
	}
	api.Metrics.IncrReportError(kind)
	api.Metrics.ObserveReport("error", time.Since(started), 0)
}
