package donors

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body any, authenticated bool) error
	Expand(s string) string
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetDonorID() string
	SetDonorID(donorID string)
}

// RegisterSteps registers donor step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &donorSteps{tc: tc}

	ctx.Step(`^I create a donor with:$`, steps.createDonor)
	ctx.Step(`^I fetch the saved donor$`, steps.fetchDonor)
	ctx.Step(`^I update the saved donor with:$`, steps.updateDonor)
	ctx.Step(`^I delete the saved donor$`, steps.deleteDonor)
	ctx.Step(`^I check eligibility of the saved donor$`, steps.checkEligibility)
	ctx.Step(`^I list donors with query "([^"]*)"$`, steps.listDonors)
}

type donorSteps struct {
	tc TestContext
}

// tableToFields converts a two-column field/value table into a JSON object.
// Values "true" and "false" become booleans and "weight" becomes a number.
func (s *donorSteps) tableToFields(table *godog.Table) (map[string]any, error) {
	fields := make(map[string]any, len(table.Rows))
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return nil, fmt.Errorf("expected two columns, got %d", len(row.Cells))
		}
		key, raw := row.Cells[0].Value, s.tc.Expand(row.Cells[1].Value)
		switch {
		case raw == "true" || raw == "false":
			fields[key] = raw == "true"
		case key == "weight":
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				fields[key] = n
				continue
			}
			fields[key] = raw
		default:
			fields[key] = raw
		}
	}
	return fields, nil
}

func (s *donorSteps) createDonor(ctx context.Context, table *godog.Table) error {
	fields, err := s.tableToFields(table)
	if err != nil {
		return err
	}
	if err := s.tc.Do(http.MethodPost, "/api/donors", fields, true); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == http.StatusCreated {
		donorID, err := s.tc.GetResponseField("donor.id")
		if err != nil {
			return err
		}
		s.tc.SetDonorID(fmt.Sprint(donorID))
	}
	return nil
}

func (s *donorSteps) savedDonorPath() (string, error) {
	if s.tc.GetDonorID() == "" {
		return "", fmt.Errorf("no donor saved in this scenario")
	}
	return "/api/donors/" + s.tc.GetDonorID(), nil
}

func (s *donorSteps) fetchDonor(ctx context.Context) error {
	path, err := s.savedDonorPath()
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodGet, path, nil, true)
}

func (s *donorSteps) updateDonor(ctx context.Context, table *godog.Table) error {
	path, err := s.savedDonorPath()
	if err != nil {
		return err
	}
	fields, err := s.tableToFields(table)
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodPut, path, fields, true)
}

func (s *donorSteps) deleteDonor(ctx context.Context) error {
	path, err := s.savedDonorPath()
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodDelete, path, nil, true)
}

func (s *donorSteps) checkEligibility(ctx context.Context) error {
	if s.tc.GetDonorID() == "" {
		return fmt.Errorf("no donor saved in this scenario")
	}
	return s.tc.Do(http.MethodGet, "/api/donors/eligibility-check/"+s.tc.GetDonorID(), nil, true)
}

func (s *donorSteps) listDonors(ctx context.Context, query string) error {
	path := "/api/donors"
	if query != "" {
		path += "?" + query
	}
	return s.tc.Do(http.MethodGet, path, nil, true)
}
