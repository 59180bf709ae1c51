package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
)

type HealthHandlerSuite struct {
	suite.Suite
	handler *Handler
	router  chi.Router
	now     time.Time
}

func TestHealthHandlerSuite(t *testing.T) {
	suite.Run(t, new(HealthHandlerSuite))
}

func (s *HealthHandlerSuite) SetupTest() {
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	clock := s.now
	s.handler = New("test",
		WithStorage("sqlite"),
		WithCheckTimeout(50*time.Millisecond),
		WithClock(func() time.Time { return clock }),
	)
	s.router = chi.NewRouter()
	s.handler.Register(s.router)
}

func (s *HealthHandlerSuite) get(path string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func (s *HealthHandlerSuite) TestStatus() {
	rec, body := s.get("/health")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("healthy", body["status"])
	s.Equal("bloodbank", body["service"])
	s.Equal("sqlite", body["storage"])
	s.Equal("test", body["environment"])
	s.Equal("2025-06-15T12:00:00Z", body["timestamp"])
}

func (s *HealthHandlerSuite) TestLiveness() {
	rec, body := s.get("/health/live")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("alive", body["status"])
}

func (s *HealthHandlerSuite) TestReadiness() {
	s.Run("ready when every check passes", func() {
		s.handler.RegisterCheck("database", func(context.Context) error { return nil })

		rec, body := s.get("/health/ready")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("ready", body["status"])
		s.Equal("up", body["checks"].(map[string]any)["database"])
	})

	s.Run("not ready when a check fails", func() {
		s.handler.RegisterCheck("redis", func(context.Context) error { return errors.New("connection refused") })

		rec, body := s.get("/health/ready")
		s.Equal(http.StatusServiceUnavailable, rec.Code)
		s.Equal("not_ready", body["status"])
		checks := body["checks"].(map[string]any)
		s.Equal("up", checks["database"])
		s.Equal("down: connection refused", checks["redis"])
	})

	s.Run("slow checks time out", func() {
		s.handler.RegisterCheck("redis", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})

		rec, body := s.get("/health/ready")
		s.Equal(http.StatusServiceUnavailable, rec.Code)
		s.Equal("down: context deadline exceeded", body["checks"].(map[string]any)["redis"])
	})
}
