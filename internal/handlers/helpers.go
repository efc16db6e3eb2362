// Package handlers exposes the portfolio and metrics facades as a read-only
// JSON API, plus the pipeline endpoints used by schedulers.
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
	"github.com/AlexyDarius/finarius/internal/middleware"
	"github.com/AlexyDarius/finarius/internal/portfolio"
)

// ErrorResponse is the envelope for every error body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the stable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DateQuery selects a single as-of date. An empty date means today.
type DateQuery struct {
	Date    string `form:"date"`
	NoCache bool   `form:"no_cache"`
}

// RangeQuery selects an inclusive date range.
type RangeQuery struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
	NoCache   bool   `form:"no_cache"`
}

// parsePathID parses a uint path parameter.
// Returns ErrInvalidInput if the parameter is not a valid positive integer.
func parsePathID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return uint(id), nil
}

// parseDate accepts YYYY-MM-DD or RFC3339 and returns the UTC calendar day.
func parseDate(field, raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+field+" format, expected YYYY-MM-DD or RFC3339")
	}
	return portfolio.Day(t), nil
}

// bindDate binds a DateQuery and resolves its date, defaulting to today.
func bindDate(c *gin.Context) (time.Time, bool, error) {
	var q DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return time.Time{}, false, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if q.Date == "" {
		return portfolio.Day(time.Now()), !q.NoCache, nil
	}
	date, err := parseDate("date", q.Date)
	return date, !q.NoCache, err
}

// bindRange binds a RangeQuery and rejects ranges whose start is after the end.
func bindRange(c *gin.Context) (start, end time.Time, useCache bool, err error) {
	var q RangeQuery
	if err = c.ShouldBindQuery(&q); err != nil {
		return start, end, false, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if start, err = parseDate("start_date", q.StartDate); err != nil {
		return start, end, false, err
	}
	if end, err = parseDate("end_date", q.EndDate); err != nil {
		return start, end, false, err
	}
	if err = portfolio.ValidateRange(start, end); err != nil {
		return start, end, false, err
	}
	return start, end, !q.NoCache, nil
}

// accountAndDate resolves the :id path parameter and a DateQuery, writing the
// error response itself when either is invalid.
func accountAndDate(c *gin.Context) (accountID uint, date time.Time, useCache, ok bool) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return 0, date, false, false
	}
	if date, useCache, err = bindDate(c); err != nil {
		respondWithError(c, err)
		return 0, date, false, false
	}
	return accountID, date, useCache, true
}

// accountAndRange resolves the :id path parameter and a RangeQuery, writing
// the error response itself when either is invalid.
func accountAndRange(c *gin.Context) (accountID uint, start, end time.Time, useCache, ok bool) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return 0, start, end, false, false
	}
	if start, end, useCache, err = bindRange(c); err != nil {
		respondWithError(c, err)
		return 0, start, end, false, false
	}
	return accountID, start, end, useCache, true
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}
