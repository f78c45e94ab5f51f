package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/labstack/echo/v4"

	"StorkPull/internal/domain/models"
	applogger "StorkPull/pkg/logger"
)

type staticSource []models.AccountStatus

func (s staticSource) Statuses() []models.AccountStatus { return s }

func newTestEcho() *echo.Echo {
	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := staticSource{
		{Username: "alice", State: "valid", Running: true, SessionExpiresAt: &exp, Proxies: 2},
		{Username: "bob", State: "auth_failed", Running: true},
	}
	e := echo.New()
	NewStatusHandler(src, applogger.Nop()).RegisterRoutes(e)
	return e
}

func TestListAccounts(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts", nil))

	assert.Equal(t, rec.Code, http.StatusOK)

	var body struct {
		Status int `json:"status"`
		Data   struct {
			Rows  []models.AccountStatus `json:"rows"`
			Total int64                  `json:"total"`
		} `json:"data"`
	}
	assert.Equal(t, json.Unmarshal(rec.Body.Bytes(), &body), nil)
	assert.Equal(t, body.Data.Total, int64(2))
	assert.Equal(t, body.Data.Rows[0].Username, "alice")
	assert.Equal(t, body.Data.Rows[0].Proxies, 2)
	assert.Equal(t, body.Data.Rows[1].SessionExpiresAt == nil, true)
}

func TestGetAccount(t *testing.T) {
	e := newTestEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts/bob", nil))
	assert.Equal(t, rec.Code, http.StatusOK)

	var body struct {
		Data models.AccountStatus `json:"data"`
	}
	assert.Equal(t, json.Unmarshal(rec.Body.Bytes(), &body), nil)
	assert.Equal(t, body.Data.State, "auth_failed")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/accounts/carol", nil))
	assert.Equal(t, rec.Code, http.StatusNotFound)
}
