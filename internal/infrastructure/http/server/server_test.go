package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/greenbite/engine/internal/application/planner"
	"github.com/greenbite/engine/internal/domain/inventory"
	"github.com/greenbite/engine/internal/domain/planning"
	"github.com/greenbite/engine/internal/infrastructure/config"
	"github.com/greenbite/engine/internal/infrastructure/persistence/memory"
	"github.com/greenbite/engine/internal/ports/outbound"
)

type noopGenerator struct{}

func (noopGenerator) GenerateRecipes(ctx context.Context, ingredients []string, count int) ([]outbound.GeneratedRecipe, error) {
	return nil, nil
}

type ServerSuite struct {
	suite.Suite

	store  *memory.Store
	ts     *httptest.Server
	userID uuid.UUID
}

func (s *ServerSuite) SetupTest() {
	s.store = memory.NewStore()
	s.userID = uuid.New()

	svc := planner.NewService(
		s.store, s.store, s.store, s.store,
		noopGenerator{}, memory.NewCache(),
		planning.ScoreWeights{}, zap.NewNop(),
	)

	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, svc, zap.NewNop())
	s.ts = httptest.NewServer(srv.Handler())
	s.T().Cleanup(s.ts.Close)
}

func (s *ServerSuite) seed() {
	expiry := time.Now().AddDate(0, 0, 7)
	for _, name := range []string{"chicken breast", "rice", "broccoli"} {
		s.store.AddLot(inventory.NewLot(s.userID, name, 500, "g", expiry))
	}
	s.store.SeedCatalog([]outbound.CatalogRecipe{
		{Title: "Chicken Rice Bowl", Ingredients: []string{"chicken breast", "rice"}, Instructions: "Cook."},
		{Title: "Broccoli Stir Fry", Ingredients: []string{"broccoli", "rice"}, Instructions: "Fry."},
	})
}

func (s *ServerSuite) request(method, path string, body interface{}, out interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.ts.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set(userIDHeader, s.userID.String())

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *ServerSuite) generatePlan() planDTO {
	var plan planDTO
	resp := s.request(http.MethodPost, "/api/v1/plans", generatePlanRequest{
		StartDate:   "2025-06-02",
		Days:        2,
		MealsPerDay: 2,
	}, &plan)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return plan
}

func (s *ServerSuite) TestHealth() {
	resp, err := http.Get(s.ts.URL + "/health")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *ServerSuite) TestGeneratePlan() {
	s.seed()

	plan := s.generatePlan()
	s.Equal(s.userID, plan.UserID)
	s.Equal("2025-06-02", plan.StartDate)
	s.Len(plan.PlanDays, 2)
	for _, day := range plan.PlanDays {
		s.Len(day.Slots, 2)
	}
}

func (s *ServerSuite) TestGeneratePlanRequiresUserHeader() {
	s.seed()

	body, _ := json.Marshal(generatePlanRequest{StartDate: "2025-06-02", Days: 1, MealsPerDay: 1})
	resp, err := http.Post(s.ts.URL+"/api/v1/plans", "application/json", bytes.NewReader(body))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestGeneratePlanEmptyInventory() {
	resp := s.request(http.MethodPost, "/api/v1/plans", generatePlanRequest{
		StartDate: "2025-06-02", Days: 1, MealsPerDay: 1,
	}, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestGeneratePlanBadDate() {
	resp := s.request(http.MethodPost, "/api/v1/plans", generatePlanRequest{
		StartDate: "tomorrow", Days: 1, MealsPerDay: 1,
	}, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestGetPlan() {
	s.seed()
	created := s.generatePlan()

	var fetched planDTO
	resp := s.request(http.MethodGet, "/api/v1/plans/"+created.ID.String(), nil, &fetched)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(created.ID, fetched.ID)
}

func (s *ServerSuite) TestGetPlanNotFound() {
	resp := s.request(http.MethodGet, "/api/v1/plans/"+uuid.NewString(), nil, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *ServerSuite) TestGetPlanBadID() {
	resp := s.request(http.MethodGet, "/api/v1/plans/not-a-uuid", nil, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerSuite) TestConfirmDay() {
	s.seed()
	plan := s.generatePlan()
	day := plan.PlanDays[0]

	var result map[string]interface{}
	resp := s.request(http.MethodPost, fmt.Sprintf("/api/v1/days/%s/confirm", day.ID), nil, &result)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(day.ID.String(), result["day_id"])
	s.NotEmpty(result["deductions"])

	// second confirmation of the same day is rejected
	resp = s.request(http.MethodPost, fmt.Sprintf("/api/v1/days/%s/confirm", day.ID), nil, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *ServerSuite) TestPreviewDayDoesNotMutate() {
	s.seed()
	plan := s.generatePlan()
	day := plan.PlanDays[0]

	var preview map[string]interface{}
	resp := s.request(http.MethodGet, fmt.Sprintf("/api/v1/days/%s/preview", day.ID), nil, &preview)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(preview["deductions"])
	s.Empty(s.store.Meals())
}

func (s *ServerSuite) TestSkipSlot() {
	s.seed()
	plan := s.generatePlan()
	slot := plan.PlanDays[0].Slots[0]

	resp := s.request(http.MethodPost, fmt.Sprintf("/api/v1/slots/%s/skip", slot.ID), nil, nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)

	var fetched planDTO
	s.request(http.MethodGet, "/api/v1/plans/"+plan.ID.String(), nil, &fetched)
	s.True(fetched.PlanDays[0].Slots[0].Skipped)
}

func (s *ServerSuite) TestReplaceSlot() {
	s.seed()
	plan := s.generatePlan()
	slot := plan.PlanDays[0].Slots[0]

	var replaced slotDTO
	resp := s.request(http.MethodPost, fmt.Sprintf("/api/v1/slots/%s/replace", slot.ID), nil, &replaced)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotEqual(slot.Title, replaced.Title)
	s.True(replaced.Replaced)
	s.Require().NotNil(replaced.OriginalRecipe)
	s.Equal(slot.Title, replaced.OriginalRecipe.Title)
}

func (s *ServerSuite) TestReplaceSlotAcceptsGeneratedOptIn() {
	s.seed()
	plan := s.generatePlan()
	slot := plan.PlanDays[0].Slots[0]

	var replaced slotDTO
	resp := s.request(http.MethodPost, fmt.Sprintf("/api/v1/slots/%s/replace", slot.ID),
		replaceSlotRequest{AllowGenerated: true}, &replaced)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotEqual(slot.Title, replaced.Title)
}

func (s *ServerSuite) TestAsyncJobLifecycle() {
	s.seed()

	var job map[string]interface{}
	resp := s.request(http.MethodPost, "/api/v1/plans/async", generatePlanRequest{
		StartDate: "2025-06-02", Days: 1, MealsPerDay: 1,
	}, &job)
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)
	jobID := job["id"].(string)

	var status map[string]interface{}
	s.Require().Eventually(func() bool {
		s.request(http.MethodGet, "/api/v1/jobs/"+jobID, nil, &status)
		return status["state"] == "done"
	}, 2*time.Second, 20*time.Millisecond)
	s.NotEmpty(status["plan_id"])
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}
