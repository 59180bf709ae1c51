package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body any, authenticated bool) error
	Expand(s string) string
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	SetAccessToken(token string)
	GetUserID() string
	SetUserID(userID string)
	GetAdminCredentials() (string, string)
}

// RegisterSteps registers authentication step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I register with email "([^"]*)" and password "([^"]*)"$`, steps.register)
	ctx.Step(`^I log in with email "([^"]*)" and password "([^"]*)"$`, steps.login)
	ctx.Step(`^I am logged in as a new user "([^"]*)"$`, steps.loggedInAsNewUser)
	ctx.Step(`^I am logged in as the admin$`, steps.loggedInAsAdmin)
	ctx.Step(`^I log out$`, steps.logout)
	ctx.Step(`^I request my profile$`, steps.profile)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) register(ctx context.Context, email, password string) error {
	return s.tc.Do(http.MethodPost, "/auth/register", map[string]any{
		"email":    s.tc.Expand(email),
		"password": password,
	}, false)
}

func (s *authSteps) login(ctx context.Context, email, password string) error {
	if err := s.tc.Do(http.MethodPost, "/auth/login", map[string]any{
		"email":    s.tc.Expand(email),
		"password": password,
	}, false); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return nil
	}

	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(fmt.Sprint(token))
	if userID, err := s.tc.GetResponseField("user.id"); err == nil {
		s.tc.SetUserID(fmt.Sprint(userID))
	}
	return nil
}

func (s *authSteps) loggedInAsNewUser(ctx context.Context, email string) error {
	const password = "Passw0rd!"
	if err := s.register(ctx, email, password); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusCreated {
		return fmt.Errorf("registration failed with status %d", s.tc.GetLastResponseStatus())
	}
	if err := s.login(ctx, email, password); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return fmt.Errorf("login failed with status %d", s.tc.GetLastResponseStatus())
	}
	return nil
}

// loggedInAsAdmin switches the bearer token to the admin account but keeps
// the previously remembered user ID so admin steps can target it.
func (s *authSteps) loggedInAsAdmin(ctx context.Context) error {
	remembered := s.tc.GetUserID()
	email, password := s.tc.GetAdminCredentials()
	if err := s.login(ctx, email, password); err != nil {
		return err
	}
	s.tc.SetUserID(remembered)
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return fmt.Errorf("admin login failed with status %d", s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *authSteps) logout(ctx context.Context) error {
	return s.tc.Do(http.MethodPost, "/auth/logout", nil, true)
}

func (s *authSteps) profile(ctx context.Context) error {
	return s.tc.Do(http.MethodGet, "/auth/profile", nil, true)
}
