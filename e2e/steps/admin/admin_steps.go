package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body any, authenticated bool) error
	GetUserID() string
}

// RegisterSteps registers admin-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^I list all users$`, steps.listUsers)
	ctx.Step(`^I set the remembered user's role to "([^"]*)"$`, steps.setRole)
	ctx.Step(`^I deactivate the remembered user$`, steps.deactivate)
	ctx.Step(`^I delete the remembered user$`, steps.deleteUser)
	ctx.Step(`^I request donor statistics$`, steps.statistics)
}

type adminSteps struct {
	tc TestContext
}

func (s *adminSteps) userPath() (string, error) {
	if s.tc.GetUserID() == "" {
		return "", fmt.Errorf("no user remembered in this scenario")
	}
	return "/auth/users/" + s.tc.GetUserID(), nil
}

func (s *adminSteps) listUsers(ctx context.Context) error {
	return s.tc.Do(http.MethodGet, "/auth/users", nil, true)
}

func (s *adminSteps) setRole(ctx context.Context, role string) error {
	path, err := s.userPath()
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodPut, path, map[string]any{"role": role}, true)
}

func (s *adminSteps) deactivate(ctx context.Context) error {
	path, err := s.userPath()
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodPut, path, map[string]any{"is_active": false}, true)
}

func (s *adminSteps) deleteUser(ctx context.Context) error {
	path, err := s.userPath()
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodDelete, path, nil, true)
}

func (s *adminSteps) statistics(ctx context.Context) error {
	return s.tc.Do(http.MethodGet, "/api/donors/statistics", nil, true)
}
