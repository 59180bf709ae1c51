package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	authhandler "bloodbank/internal/auth/handler"
	authmetrics "bloodbank/internal/auth/metrics"
	authservice "bloodbank/internal/auth/service"
	"bloodbank/internal/auth/store/revocation"
	userstore "bloodbank/internal/auth/store/user"
	donorhandler "bloodbank/internal/donor/handler"
	donormetrics "bloodbank/internal/donor/metrics"
	donorservice "bloodbank/internal/donor/service"
	donorstore "bloodbank/internal/donor/store"
	jwttoken "bloodbank/internal/jwt_token"
	"bloodbank/internal/platform/health"
	"bloodbank/internal/seeder"
	httptransport "bloodbank/internal/transport/http"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/audit/publisher"
	auditmemory "bloodbank/pkg/platform/audit/store/memory"
)

const (
	adminEmail    = "admin@bloodbank.test"
	adminPassword = "Admin123!"
	userPassword  = "Passw0rd!"
)

// FlowSuite drives the full router with in-memory stores, the way the
// server wires it when no DATABASE_URL or REDIS_URL is set.
type FlowSuite struct {
	suite.Suite
	server *httptest.Server
	audit  *auditmemory.InMemoryStore
	now    time.Time
}

func TestFlowSuite(t *testing.T) {
	suite.Run(t, new(FlowSuite))
}

func (s *FlowSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	s.now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	users := userstore.New()
	donors := donorstore.NewInMemory()
	trl := revocation.NewInMemoryTRL()
	s.audit = auditmemory.NewInMemoryStore()
	auditLogger := audit.NewLogger(logger, publisher.NewPublisher(s.audit))

	jwtService := jwttoken.NewJWTService("flow-test-key", "bloodbank", "bloodbank-api", time.Hour,
		jwttoken.WithClock(func() time.Time { return s.now }))
	donorSvc := donorservice.New(donors,
		donorservice.WithLogger(logger),
		donorservice.WithAuditLogger(auditLogger),
		donorservice.WithMetrics(donormetrics.New(reg)),
	)
	authSvc := authservice.New(users, trl, jwtService,
		authservice.WithLogger(logger),
		authservice.WithAuditLogger(auditLogger),
		authservice.WithMetrics(authmetrics.New(reg)),
		authservice.WithDonorCounter(donorSvc),
	)

	_, err := seeder.New(users, donors, logger).EnsureAdmin(context.Background(), adminEmail, adminPassword)
	s.Require().NoError(err)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:      logger,
		Version:     "test",
		Clock:       func() time.Time { return s.now },
		Auth:        authhandler.New(authSvc, logger),
		Donors:      donorhandler.New(donorSvc, logger),
		Health:      health.New("test"),
		Tokens:      jwttoken.NewJWTServiceAdapter(jwtService),
		Revocations: authSvc,
		Accounts:    authSvc,
	})
	s.server = httptest.NewServer(router)
}

func (s *FlowSuite) TearDownTest() {
	s.server.Close()
}

type response struct {
	status int
	body   map[string]any
}

func (s *FlowSuite) call(method, path, token string, body any) response {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer res.Body.Close()

	out := response{status: res.StatusCode}
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&out.body))
	return out
}

func (s *FlowSuite) registerAndLogin(email string) (token, userID string) {
	res := s.call(http.MethodPost, "/auth/register", "", map[string]string{"email": email, "password": userPassword})
	s.Require().Equal(http.StatusCreated, res.status, res.body)
	return s.login(email, userPassword)
}

func (s *FlowSuite) login(email, password string) (token, userID string) {
	res := s.call(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	s.Require().Equal(http.StatusOK, res.status, res.body)
	user := res.body["user"].(map[string]any)
	return res.body["access_token"].(string), user["id"].(string)
}

func (s *FlowSuite) createDonor(token, email, birthDate string, weight float64) string {
	res := s.call(http.MethodPost, "/api/donors", token, map[string]any{
		"first_name": "Ana",
		"last_name":  "Lopez",
		"email":      email,
		"birth_date": birthDate,
		"blood_type": "O-",
		"weight":     weight,
	})
	s.Require().Equal(http.StatusCreated, res.status, res.body)
	return res.body["donor"].(map[string]any)["id"].(string)
}

func (s *FlowSuite) TestDonorLifecycle() {
	token, _ := s.registerAndLogin("owner@example.com")

	donorID := s.createDonor(token, "ana@example.com", "1990-01-01", 48)

	res := s.call(http.MethodGet, "/api/donors/eligibility-check/"+donorID, token, nil)
	s.Equal(http.StatusOK, res.status)
	s.Equal(false, res.body["eligible"])
	s.Equal("insufficient weight (minimum 50kg).", res.body["reason"])

	res = s.call(http.MethodPut, "/api/donors/"+donorID, token, map[string]any{"weight": 62})
	s.Equal(http.StatusOK, res.status, res.body)

	res = s.call(http.MethodGet, "/api/donors/eligibility-check/"+donorID, token, nil)
	s.Equal(true, res.body["eligible"])
	details := res.body["details"].(map[string]any)
	s.EqualValues(35, details["age"])

	res = s.call(http.MethodGet, "/api/donors?blood_type=O-", token, nil)
	s.Equal(http.StatusOK, res.status)
	pagination := res.body["pagination"].(map[string]any)
	s.EqualValues(1, pagination["total"])

	res = s.call(http.MethodDelete, "/api/donors/"+donorID, token, nil)
	s.Equal(http.StatusOK, res.status)

	res = s.call(http.MethodGet, "/api/donors/"+donorID, token, nil)
	s.Equal(http.StatusNotFound, res.status)
}

func (s *FlowSuite) TestOwnershipIsEnforced() {
	ownerToken, _ := s.registerAndLogin("owner@example.com")
	otherToken, _ := s.registerAndLogin("other@example.com")
	adminToken, _ := s.login(adminEmail, adminPassword)

	donorID := s.createDonor(ownerToken, "ana@example.com", "1990-01-01", 70)

	s.Equal(http.StatusForbidden, s.call(http.MethodGet, "/api/donors/"+donorID, otherToken, nil).status)
	s.Equal(http.StatusForbidden, s.call(http.MethodDelete, "/api/donors/"+donorID, otherToken, nil).status)
	s.Equal(http.StatusOK, s.call(http.MethodGet, "/api/donors/"+donorID, adminToken, nil).status)

	res := s.call(http.MethodGet, "/api/donors", otherToken, nil)
	s.Equal(http.StatusOK, res.status)
	s.Empty(res.body["donors"])

	res = s.call(http.MethodGet, "/api/donors", adminToken, nil)
	s.Len(res.body["donors"], 1)
}

func (s *FlowSuite) TestLogoutRevokesToken() {
	token, _ := s.registerAndLogin("jane@example.com")

	s.Equal(http.StatusOK, s.call(http.MethodGet, "/auth/profile", token, nil).status)
	s.Equal(http.StatusOK, s.call(http.MethodPost, "/auth/logout", token, nil).status)
	s.Equal(http.StatusUnauthorized, s.call(http.MethodGet, "/auth/profile", token, nil).status)

	fresh, _ := s.login("jane@example.com", userPassword)
	s.Equal(http.StatusOK, s.call(http.MethodGet, "/auth/profile", fresh, nil).status)
}

func (s *FlowSuite) TestAdminUserManagement() {
	ownerToken, ownerID := s.registerAndLogin("owner@example.com")
	adminToken, adminID := s.login(adminEmail, adminPassword)

	s.createDonor(ownerToken, "ana@example.com", "1990-01-01", 70)

	s.Run("non admins are forbidden", func() {
		s.Equal(http.StatusForbidden, s.call(http.MethodGet, "/auth/users", ownerToken, nil).status)
		s.Equal(http.StatusForbidden, s.call(http.MethodGet, "/api/donors/statistics", ownerToken, nil).status)
	})

	s.Run("admin cannot delete themselves", func() {
		res := s.call(http.MethodDelete, "/auth/users/"+adminID, adminToken, nil)
		s.Equal(http.StatusBadRequest, res.status)
	})

	s.Run("owner of donors cannot be deleted", func() {
		res := s.call(http.MethodDelete, "/auth/users/"+ownerID, adminToken, nil)
		s.Equal(http.StatusBadRequest, res.status)
		s.EqualValues(1, res.body["donors_count"])
	})

	s.Run("statistics cover every donor", func() {
		res := s.call(http.MethodGet, "/api/donors/statistics", adminToken, nil)
		s.Require().Equal(http.StatusOK, res.status)
		stats := res.body["statistics"].(map[string]any)
		s.EqualValues(1, stats["total_donors"])
		s.EqualValues(1, stats["blood_type_distribution"].(map[string]any)["O-"])
	})

	s.Run("deactivated user cannot log in", func() {
		res := s.call(http.MethodPut, "/auth/users/"+ownerID, adminToken, map[string]any{"is_active": false})
		s.Require().Equal(http.StatusOK, res.status, res.body)

		res = s.call(http.MethodPost, "/auth/login", "", map[string]string{"email": "owner@example.com", "password": userPassword})
		s.Equal(http.StatusUnauthorized, res.status)
	})
}

func (s *FlowSuite) TestAuditTrail() {
	token, _ := s.registerAndLogin("jane@example.com")
	s.createDonor(token, "ana@example.com", "1990-01-01", 70)

	s.Eventually(func() bool {
		events, err := s.audit.ListAll(context.Background())
		if err != nil {
			return false
		}
		actions := make(map[audit.Action]bool, len(events))
		for _, e := range events {
			actions[e.Action] = true
		}
		return actions[audit.ActionUserRegistered] &&
			actions[audit.ActionLoginSucceeded] &&
			actions[audit.ActionDonorCreated]
	}, time.Second, 10*time.Millisecond)
}

func (s *FlowSuite) TestDeletedUserTokenIsRejected() {
	token, userID := s.registerAndLogin("leaver@example.com")
	adminToken, _ := s.login(adminEmail, adminPassword)

	res := s.call(http.MethodDelete, "/auth/users/"+userID, adminToken, nil)
	s.Require().Equal(http.StatusOK, res.status, res.body)

	res = s.call(http.MethodPost, "/api/donors", token, map[string]any{
		"first_name": "Ana",
		"last_name":  "Lopez",
		"email":      "ana@example.com",
		"birth_date": "1990-01-01",
		"blood_type": "O-",
		"weight":     70,
	})
	s.Equal(http.StatusUnauthorized, res.status)
	s.Equal(http.StatusUnauthorized, s.call(http.MethodGet, "/auth/profile", token, nil).status)

	res = s.call(http.MethodGet, "/api/donors", adminToken, nil)
	s.Empty(res.body["donors"])
}
