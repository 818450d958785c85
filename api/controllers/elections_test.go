package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	testutils "github.com/mr-atuzie/angt-votify-BE/api/controllers/testing"
	"github.com/mr-atuzie/angt-votify-BE/api/models"
	"github.com/mr-atuzie/angt-votify-BE/api/transport"
	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/mr-atuzie/angt-votify-BE/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type electionTestEnv struct {
	elections *storage.MemoryElectionStorage
	ballots   *storage.MemoryBallotStorage
	options   *storage.MemoryVotingOptionStorage
	router    *gin.Engine
}

func setupElectionTestEnv(t *testing.T, electionsAllowed int) *electionTestEnv {
	t.Helper()
	logging.Log = logrus.New()
	gin.SetMode(gin.TestMode)

	env := &electionTestEnv{
		elections: storage.NewMemoryElectionStorage(),
		ballots:   storage.NewMemoryBallotStorage(),
		options:   storage.NewMemoryVotingOptionStorage(),
	}

	auth := func(g *gin.Context) {
		transport.SetPrincipal(g, &transport.Principal{
			UserID: "user-1",
			Role:   "organizer",
			Subscription: storage.Subscription{
				Plan:             "free",
				VoterLimit:       10,
				ElectionsAllowed: electionsAllowed,
			},
		})
		g.Next()
	}

	r := gin.New()
	controller := NewElectionController(env.elections, env.ballots, env.options)
	controller.RegisterRoutes(r, auth)
	env.router = r

	return env
}

func electionPayload(title string) models.CreateElectionRequest {
	return models.CreateElectionRequest{
		Title:        title,
		Description:  "Annual board election",
		StartDate:    time.Now().Add(24 * time.Hour),
		EndDate:      time.Now().Add(48 * time.Hour),
		ElectionType: "single-choice",
		VotingFormat: "private",
	}
}

func TestCreateElection(t *testing.T) {
	t.Run("Happy path - create election", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election", electionPayload("Board 2026"), nil)
		require.Equal(t, http.StatusCreated, res.Code, "Expected 201 from create")

		var created models.ElectionDetailResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created), "Should unmarshal create response")
		assert.Equal(t, "Board 2026", created.Election.Title)
		assert.Equal(t, models.ElectionStatusUpcoming, created.Election.Status, "New elections start Upcoming")
		assert.Equal(t, "user-1", created.Election.UserID, "Owner comes from the authenticated principal")
	})

	t.Run("Unhappy path - duplicate title", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)

		require.Equal(t, http.StatusCreated,
			testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election", electionPayload("Board 2026"), nil).Code)

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election", electionPayload("Board 2026"), nil)
		assert.Equal(t, http.StatusConflict, res.Code, "Expected 409 for a reused title")
	})

	t.Run("Unhappy path - subscription election limit", func(t *testing.T) {
		env := setupElectionTestEnv(t, 1)

		require.Equal(t, http.StatusCreated,
			testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election", electionPayload("Board 2026"), nil).Code)

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election", electionPayload("Board 2027"), nil)
		assert.Equal(t, http.StatusForbidden, res.Code, "Expected 403 over the election limit")
	})

	t.Run("Unhappy path - missing fields", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)

		payload := electionPayload("Board 2026")
		payload.Description = ""
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election", payload, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for missing description")
	})

	t.Run("Unhappy path - invalid election type", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)

		payload := electionPayload("Board 2026")
		payload.ElectionType = "approval"
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election", payload, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for unknown type")
	})
}

func TestElectionStatusDerivation(t *testing.T) {
	seed := func(t *testing.T, env *electionTestEnv, id string, end time.Time, status models.ElectionStatus) {
		t.Helper()
		require.NoError(t, env.elections.Create(context.Background(), &storage.Election{
			ID:           id,
			Title:        "Election " + id,
			Description:  "Status fixture",
			StartDate:    end.Add(-24 * time.Hour),
			EndDate:      end,
			Status:       string(status),
			ElectionType: "single-choice",
			UserID:       "user-1",
		}))
	}

	getStatus := func(t *testing.T, env *electionTestEnv, id string) models.ElectionStatus {
		t.Helper()
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/v1/election/"+id, nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		var election models.ElectionResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &election))
		return election.Status
	}

	t.Run("Past end date reads as Ended", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)
		seed(t, env, "past", time.Now().Add(-time.Hour), models.ElectionStatusUpcoming)
		assert.Equal(t, models.ElectionStatusEnded, getStatus(t, env, "past"))
	})

	t.Run("Future end date reads as Upcoming", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)
		seed(t, env, "future", time.Now().Add(time.Hour), models.ElectionStatusUpcoming)
		assert.Equal(t, models.ElectionStatusUpcoming, getStatus(t, env, "future"))
	})

	t.Run("Manual close sticks before the end date", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)
		seed(t, env, "closed", time.Now().Add(time.Hour), models.ElectionStatusEnded)
		assert.Equal(t, models.ElectionStatusEnded, getStatus(t, env, "closed"))
	})

	t.Run("Close endpoint ends an election early", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)
		seed(t, env, "running", time.Now().Add(time.Hour), models.ElectionStatusUpcoming)

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election/running/close", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, models.ElectionStatusEnded, getStatus(t, env, "running"))
	})
}

func TestElectionCrud(t *testing.T) {
	t.Run("Happy path - update fields", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)
		require.Equal(t, http.StatusCreated,
			testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election", electionPayload("Board 2026"), nil).Code)

		listed := testutils.PerformRequest(env.router, http.MethodGet, "/api/v1/election", nil, nil)
		require.Equal(t, http.StatusOK, listed.Code)
		var elections []models.ElectionResponse
		require.NoError(t, json.Unmarshal(listed.Body.Bytes(), &elections))
		require.Len(t, elections, 1)
		id := elections[0].ID

		update := models.UpdateElectionRequest{Title: "Board 2026 (rescheduled)"}
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/v1/election/"+id, update, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var updated models.ElectionDetailResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &updated))
		assert.Equal(t, "Board 2026 (rescheduled)", updated.Election.Title)
	})

	t.Run("Happy path - delete election", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)
		require.NoError(t, env.elections.Create(context.Background(), &storage.Election{
			ID: "e1", Title: "Board", Description: "d", ElectionType: "single-choice", UserID: "user-1",
		}))

		res := testutils.PerformRequest(env.router, http.MethodDelete, "/api/v1/election/e1", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		_, err := env.elections.Get(context.Background(), "e1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Unhappy path - unknown election", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)

		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/v1/election/missing", nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestCreateBallotUnderElection(t *testing.T) {
	seedParent := func(t *testing.T, env *electionTestEnv) {
		t.Helper()
		require.NoError(t, env.elections.Create(context.Background(), &storage.Election{
			ID: "e1", Title: "Board", Description: "d", ElectionType: "single-choice", UserID: "user-1",
		}))
	}

	t.Run("Happy path - ballot attaches to the election", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)
		seedParent(t, env)

		payload := models.CreateBallotRequest{Title: "President", Description: "Pick one"}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election/e1/ballot", payload, nil)
		require.Equal(t, http.StatusCreated, res.Code)

		var created models.BallotDetailResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
		assert.Equal(t, "e1", created.Ballot.ElectionID)

		election, err := env.elections.Get(context.Background(), "e1")
		require.NoError(t, err)
		assert.Contains(t, election.Ballots, created.Ballot.ID, "Ballot should join the election's set")
	})

	t.Run("Unhappy path - duplicate ballot title in one election", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)
		seedParent(t, env)

		payload := models.CreateBallotRequest{Title: "President"}
		require.Equal(t, http.StatusCreated,
			testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election/e1/ballot", payload, nil).Code)

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election/e1/ballot", payload, nil)
		assert.Equal(t, http.StatusConflict, res.Code, "Expected 409 for a reused ballot title")
	})

	t.Run("Unhappy path - unknown election", func(t *testing.T) {
		env := setupElectionTestEnv(t, 3)

		payload := models.CreateBallotRequest{Title: "President"}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/election/missing/ballot", payload, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}
