//go:build all_tests

package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yaseenp24/workout-buddy/internal/catalog"
	"github.com/yaseenp24/workout-buddy/internal/tips"
	"github.com/yaseenp24/workout-buddy/internal/users"
	"github.com/yaseenp24/workout-buddy/internal/workouts"

	"github.com/stretchr/testify/require"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func (s *IntegrationTestSuite) doRequest(
	method, path, token string,
	reqBody any,
) (int, []byte) {
	var bodyReader io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		require.NoError(s.T(), err)
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, serverEndpoint+path, bodyReader)
	require.NoError(s.T(), err)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	return resp.StatusCode, respBody
}

func (s *IntegrationTestSuite) registerUser(email string) users.AuthResponse {
	status, respBody := s.doRequest(http.MethodPost, "/register", "", users.RegisterRequest{
		Email:    email,
		Password: "str0ng-enough",
		Name:     "Flow Tester",
	})
	require.Equal(s.T(), http.StatusCreated, status, string(respBody))

	var authResp users.AuthResponse
	require.NoError(s.T(), json.Unmarshal(respBody, &authResp))
	require.NotEmpty(s.T(), authResp.Token)
	return authResp
}

func (s *IntegrationTestSuite) TestRoot() {
	status, respBody := s.doRequest(http.MethodGet, "/", "", nil)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Contains(string(respBody), "test-version-info")
}

func (s *IntegrationTestSuite) TestRegisterAndLogin() {
	authResp := s.registerUser("login-flow@test.com")
	s.Require().Equal("login-flow@test.com", authResp.User.Email)
	s.Require().False(authResp.User.OnboardingCompleted)

	// duplicate email is rejected
	status, respBody := s.doRequest(http.MethodPost, "/register", "", users.RegisterRequest{
		Email:    "login-flow@test.com",
		Password: "str0ng-enough",
		Name:     "Other",
	})
	s.Require().Equal(http.StatusBadRequest, status, string(respBody))

	status, respBody = s.doRequest(http.MethodPost, "/login", "", users.LoginRequest{
		Email:    "login-flow@test.com",
		Password: "str0ng-enough",
	})
	s.Require().Equal(http.StatusOK, status, string(respBody))
	var loginResp users.AuthResponse
	s.Require().NoError(json.Unmarshal(respBody, &loginResp))
	s.Require().NotEmpty(loginResp.Token)

	status, _ = s.doRequest(http.MethodPost, "/login", "", users.LoginRequest{
		Email:    "login-flow@test.com",
		Password: "wrong-password",
	})
	s.Require().Equal(http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestOnboarding() {
	authResp := s.registerUser("onboarding-flow@test.com")

	status, respBody := s.doRequest(http.MethodPut, "/user/onboarding", authResp.Token, users.OnboardingRequest{
		Goals:           []string{"muscle_gain"},
		Schedule:        "3-4 days per week",
		Equipment:       []string{"barbell", "dumbbells"},
		ExperienceLevel: "beginner",
	})
	s.Require().Equal(http.StatusOK, status, string(respBody))

	status, respBody = s.doRequest(http.MethodGet, "/user/profile", authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status, string(respBody))
	var profileResp users.ProfileResponse
	s.Require().NoError(json.Unmarshal(respBody, &profileResp))
	s.Require().True(profileResp.User.OnboardingCompleted)
	s.Require().Equal([]string{"muscle_gain"}, profileResp.User.Goals)

	// no token, no profile
	status, _ = s.doRequest(http.MethodGet, "/user/profile", "", nil)
	s.Require().Equal(http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestCatalog() {
	authResp := s.registerUser("catalog-flow@test.com")

	status, respBody := s.doRequest(http.MethodGet, "/exercises", authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status, string(respBody))
	var exercisesResp catalog.ExercisesResponse
	s.Require().NoError(json.Unmarshal(respBody, &exercisesResp))
	s.Require().Len(exercisesResp.Exercises, 16)

	status, respBody = s.doRequest(http.MethodGet, "/exercises?category=push", authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status, string(respBody))
	var pushResp catalog.ExercisesResponse
	s.Require().NoError(json.Unmarshal(respBody, &pushResp))
	s.Require().NotEmpty(pushResp.Exercises)
	for _, ex := range pushResp.Exercises {
		s.Require().Equal("push", ex.Category)
	}

	status, respBody = s.doRequest(http.MethodGet, "/workouts/templates", authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status, string(respBody))
	var templatesResp catalog.TemplatesResponse
	s.Require().NoError(json.Unmarshal(respBody, &templatesResp))
	s.Require().Len(templatesResp.Templates, 2)
	for _, tmpl := range templatesResp.Templates {
		s.Require().NotEmpty(tmpl.Exercises)
		s.Require().NotEmpty(tmpl.Exercises[0].Exercise.Name)
	}
}

func (s *IntegrationTestSuite) TestWorkoutLogging() {
	authResp := s.registerUser("workouts-flow@test.com")

	status, respBody := s.doRequest(http.MethodGet, "/exercises", authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status)
	var exercisesResp catalog.ExercisesResponse
	s.Require().NoError(json.Unmarshal(respBody, &exercisesResp))
	s.Require().NotEmpty(exercisesResp.Exercises)

	status, respBody = s.doRequest(http.MethodGet, "/workouts/templates", authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status)
	var templatesResp catalog.TemplatesResponse
	s.Require().NoError(json.Unmarshal(respBody, &templatesResp))
	s.Require().NotEmpty(templatesResp.Templates)

	exerciseID := exercisesResp.Exercises[0].ID
	templateID := templatesResp.Templates[0].ID
	duration := 55
	weight := 80.5
	rpe := 8

	status, respBody = s.doRequest(http.MethodPost, "/workouts/log", authResp.Token, workouts.LogWorkoutRequest{
		TemplateID:      &templateID,
		DurationMinutes: &duration,
		Notes:           "solid session",
		Sets: []workouts.SetInput{
			{ExerciseID: exerciseID, SetNumber: 1, Weight: &weight, Reps: 8, RPE: &rpe},
			{ExerciseID: exerciseID, SetNumber: 2, Weight: &weight, Reps: 6},
		},
	})
	s.Require().Equal(http.StatusCreated, status, string(respBody))
	var logResp workouts.LogWorkoutResponse
	s.Require().NoError(json.Unmarshal(respBody, &logResp))
	s.Require().Equal("Workout logged successfully", logResp.Message)
	s.Require().NotNil(logResp.Workout)
	s.Require().NotNil(logResp.Workout.Template)
	s.Require().Equal(templateID, logResp.Workout.Template.ID)
	s.Require().Len(logResp.Workout.Sets, 2)
	s.Require().Equal(exercisesResp.Exercises[0].Name, logResp.Workout.Sets[0].Exercise.Name)

	// invalid set data is rejected before touching the db
	status, respBody = s.doRequest(http.MethodPost, "/workouts/log", authResp.Token, workouts.LogWorkoutRequest{
		Sets: []workouts.SetInput{
			{ExerciseID: exerciseID, SetNumber: 1, Reps: 0},
		},
	})
	s.Require().Equal(http.StatusBadRequest, status, string(respBody))

	status, respBody = s.doRequest(http.MethodGet, "/workouts/history", authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status, string(respBody))
	var historyResp workouts.HistoryResponse
	s.Require().NoError(json.Unmarshal(respBody, &historyResp))
	s.Require().Equal(1, historyResp.Total)
	s.Require().Equal(1, historyResp.Pages)
	s.Require().Equal(1, historyResp.CurrentPage)
	s.Require().Len(historyResp.Workouts, 1)

	workoutID := historyResp.Workouts[0].ID
	status, respBody = s.doRequest(http.MethodGet, fmt.Sprintf("/workouts/%d", workoutID), authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status, string(respBody))
	var detailsResp workouts.WorkoutDetailsResponse
	s.Require().NoError(json.Unmarshal(respBody, &detailsResp))
	s.Require().Equal(workoutID, detailsResp.Workout.ID)

	// another user cannot see it
	otherAuth := s.registerUser("workouts-other@test.com")
	status, _ = s.doRequest(http.MethodGet, fmt.Sprintf("/workouts/%d", workoutID), otherAuth.Token, nil)
	s.Require().Equal(http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestProfileTips() {
	// anonymous callers get the rule table defaults
	status, respBody := s.doRequest(http.MethodPost, "/ai/profile-tips", "", tips.TipsRequest{})
	s.Require().Equal(http.StatusOK, status, string(respBody))
	var tipsResp tips.TipsResponse
	s.Require().NoError(json.Unmarshal(respBody, &tipsResp))
	s.Require().Len(tipsResp.Tips, 5)

	// a stored onboarding profile changes the tips
	authResp := s.registerUser("tips-flow@test.com")
	status, _ = s.doRequest(http.MethodPut, "/user/onboarding", authResp.Token, users.OnboardingRequest{
		Goals:           []string{"muscle_gain"},
		Schedule:        "3-4 days per week",
		Equipment:       []string{"barbell"},
		ExperienceLevel: "beginner",
	})
	s.Require().Equal(http.StatusOK, status)

	status, respBody = s.doRequest(http.MethodPost, "/ai/profile-tips", authResp.Token, tips.TipsRequest{})
	s.Require().Equal(http.StatusOK, status, string(respBody))
	var profiledResp tips.TipsResponse
	s.Require().NoError(json.Unmarshal(respBody, &profiledResp))
	s.Require().Len(profiledResp.Tips, 5)
	s.Require().NotEqual(tipsResp.Tips, profiledResp.Tips)
}

func (s *IntegrationTestSuite) TestLogout() {
	authResp := s.registerUser("logout-flow@test.com")

	status, _ := s.doRequest(http.MethodGet, "/user/profile", authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status)

	status, respBody := s.doRequest(http.MethodPost, "/logout", authResp.Token, nil)
	s.Require().Equal(http.StatusOK, status, string(respBody))
	s.Require().JSONEq(`{"message":"logged out"}`, string(respBody))

	// denied token no longer works
	status, _ = s.doRequest(http.MethodGet, "/user/profile", authResp.Token, nil)
	s.Require().Equal(http.StatusUnauthorized, status)
}
