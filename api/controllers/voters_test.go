package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	testutils "github.com/mr-atuzie/angt-votify-BE/api/controllers/testing"
	"github.com/mr-atuzie/angt-votify-BE/api/models"
	"github.com/mr-atuzie/angt-votify-BE/api/transport"
	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/mr-atuzie/angt-votify-BE/spreadsheet"
	"github.com/mr-atuzie/angt-votify-BE/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*storage.Voter
	err  error
}

func (f *fakeNotifier) SendVoterCredentials(_ context.Context, voter *storage.Voter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, voter)
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type voterTestEnv struct {
	voters    *storage.MemoryVoterStorage
	votes     *storage.MemoryVoteStorage
	elections *storage.MemoryElectionStorage
	ballots   *storage.MemoryBallotStorage
	options   *storage.MemoryVotingOptionStorage
	notifier  *fakeNotifier
	router    *gin.Engine
}

func setupVoterTestEnv(t *testing.T, voterLimit int) *voterTestEnv {
	t.Helper()
	logging.Log = logrus.New()
	gin.SetMode(gin.TestMode)

	env := &voterTestEnv{
		voters:    storage.NewMemoryVoterStorage(),
		votes:     storage.NewMemoryVoteStorage(),
		elections: storage.NewMemoryElectionStorage(),
		ballots:   storage.NewMemoryBallotStorage(),
		options:   storage.NewMemoryVotingOptionStorage(),
		notifier:  &fakeNotifier{},
	}

	auth := func(g *gin.Context) {
		transport.SetPrincipal(g, &transport.Principal{
			UserID: "user-1",
			Role:   "organizer",
			Subscription: storage.Subscription{
				Plan:             "free",
				VoterLimit:       voterLimit,
				ElectionsAllowed: 1,
			},
		})
		g.Next()
	}

	r := gin.New()
	controller := NewVoterController(env.voters, env.votes, env.elections, env.ballots, env.options, env.notifier)
	controller.RegisterRoutes(r, auth)
	env.router = r

	return env
}

func seedElection(t *testing.T, env *voterTestEnv, id string) {
	t.Helper()
	err := env.elections.Create(context.Background(), &storage.Election{
		ID:           id,
		Title:        "Board election " + id,
		Description:  "Annual board election",
		Status:       string(models.ElectionStatusUpcoming),
		ElectionType: "single-choice",
		UserID:       "user-1",
	})
	require.NoError(t, err, "Should seed election")
}

func seedVoter(t *testing.T, env *voterTestEnv, id, electionID, voterID, code, email string) {
	t.Helper()
	err := env.voters.Register(context.Background(), &storage.Voter{
		ID:               id,
		FullName:         "Voter " + id,
		Email:            email,
		VoterID:          voterID,
		VerificationCode: code,
		ElectionID:       electionID,
	})
	require.NoError(t, err, "Should seed voter")
}

func TestCreateVoter(t *testing.T) {
	t.Run("Happy path - create voter and deliver credentials", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		payload := models.CreateVoterRequest{
			FullName:   "Ada Lovelace",
			Email:      "Ada@Example.com",
			ElectionID: "e1",
		}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter", payload, nil)
		require.Equal(t, http.StatusCreated, res.Code, "Expected 201 from create")

		var created models.CreateVoterResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created), "Should unmarshal create response")
		assert.True(t, strings.HasPrefix(created.Voter.VoterID, models.VoterIDPrefix), "Voter ID should carry the prefix")
		assert.Len(t, created.Voter.VoterID, len(models.VoterIDPrefix)+models.VoterIDLength, "Voter ID should have a fixed length")
		assert.Equal(t, "ada@example.com", created.Voter.Email, "Email should be lowercased")
		assert.False(t, created.Voter.IsVerified, "New voter should not be verified")

		assert.Equal(t, 1, env.notifier.sentCount(), "Credentials should be delivered once")

		stored, err := env.voters.Get(context.Background(), created.Voter.ID)
		require.NoError(t, err, "Voter should be persisted")
		assert.Len(t, stored.VerificationCode, models.VerificationCodeLength, "Verification code should have a fixed length")
		for _, r := range stored.VerificationCode {
			assert.Contains(t, models.Digits, string(r), "Verification code should be digits only")
		}

		election, err := env.elections.Get(context.Background(), "e1")
		require.NoError(t, err)
		assert.Contains(t, election.Voters, created.Voter.ID, "Voter should be attached to the election")
	})

	t.Run("Unhappy path - missing required fields", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter",
			models.CreateVoterRequest{Email: "ada@example.com", ElectionID: "e1"}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for missing fullName")
	})

	t.Run("Unhappy path - invalid email", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter",
			models.CreateVoterRequest{FullName: "Ada", Email: "not-an-email", ElectionID: "e1"}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for a malformed email")
	})

	t.Run("Unhappy path - election does not exist", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter",
			models.CreateVoterRequest{FullName: "Ada", ElectionID: "missing"}, nil)
		assert.Equal(t, http.StatusNotFound, res.Code, "Expected 404 for unknown election")
	})

	t.Run("Unhappy path - duplicate email for the same election", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		payload := models.CreateVoterRequest{FullName: "Ada", Email: "ada@example.com", ElectionID: "e1"}
		first := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter", payload, nil)
		require.Equal(t, http.StatusCreated, first.Code)

		payload.FullName = "Another Ada"
		second := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter", payload, nil)
		assert.Equal(t, http.StatusConflict, second.Code, "Expected 409 for reused email")
	})

	t.Run("Happy path - same email across different elections", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedElection(t, env, "e2")

		first := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter",
			models.CreateVoterRequest{FullName: "Ada", Email: "ada@example.com", ElectionID: "e1"}, nil)
		require.Equal(t, http.StatusCreated, first.Code)

		second := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter",
			models.CreateVoterRequest{FullName: "Ada", Email: "ada@example.com", ElectionID: "e2"}, nil)
		assert.Equal(t, http.StatusCreated, second.Code, "Contacts are scoped per election")
	})

	t.Run("Unhappy path - voter limit exhausted", func(t *testing.T) {
		env := setupVoterTestEnv(t, 1)
		seedElection(t, env, "e1")

		first := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter",
			models.CreateVoterRequest{FullName: "Ada", Email: "ada@example.com", ElectionID: "e1"}, nil)
		require.Equal(t, http.StatusCreated, first.Code)

		second := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter",
			models.CreateVoterRequest{FullName: "Grace", Email: "grace@example.com", ElectionID: "e1"}, nil)
		assert.Equal(t, http.StatusForbidden, second.Code, "Expected 403 over the voter limit")

		var errRes models.ErrorResponse
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &errRes))
		assert.Equal(t, "voter limit exceeded, 0 slot(s) remaining", errRes.Error)
	})

	t.Run("Unhappy path - delivery failure keeps the voter", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		env.notifier.err = errors.New("ses unavailable")

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter",
			models.CreateVoterRequest{FullName: "Ada", Email: "ada@example.com", ElectionID: "e1"}, nil)
		assert.Equal(t, http.StatusBadGateway, res.Code, "Expected 502 when delivery fails")

		voters, err := env.voters.GetByElection(context.Background(), "e1")
		require.NoError(t, err)
		assert.Len(t, voters, 1, "Voter should survive a failed delivery")
	})
}

func TestLoginVoter(t *testing.T) {
	t.Run("Happy path - unprefixed lowercase fragment logs in", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedVoter(t, env, "pk-1", "e1", "VOTER-ABCD1234", "123456", "ada@example.com")

		payload := models.LoginVoterRequest{
			VoterID:          "pk-1",
			VoterLoginID:     "abcd1234",
			VerificationCode: "123456",
			ElectionID:       "e1",
		}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/login", payload, nil)
		require.Equal(t, http.StatusOK, res.Code, "Expected 200 from login")

		var login models.LoginVoterResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &login), "Should unmarshal login response")
		assert.Equal(t, "VOTER-ABCD1234", login.Voter.VoterID)
		assert.Equal(t, "pk-1", login.Voter.ID)
	})

	t.Run("Happy path - already prefixed identifier logs in", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedVoter(t, env, "pk-1", "e1", "VOTER-ABCD1234", "123456", "ada@example.com")

		payload := models.LoginVoterRequest{
			VoterID:          "pk-1",
			VoterLoginID:     "voter-abcd1234",
			VerificationCode: "123456",
			ElectionID:       "e1",
		}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/login", payload, nil)
		assert.Equal(t, http.StatusOK, res.Code, "Prefix should not be doubled")
	})

	t.Run("Unhappy path - wrong verification code", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedVoter(t, env, "pk-1", "e1", "VOTER-ABCD1234", "123456", "ada@example.com")

		payload := models.LoginVoterRequest{
			VoterID:          "pk-1",
			VoterLoginID:     "ABCD1234",
			VerificationCode: "654321",
			ElectionID:       "e1",
		}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/login", payload, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code, "Expected 401 for wrong code")

		var errRes models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &errRes))
		assert.Equal(t, "invalid verification code", errRes.Error)
	})

	t.Run("Unhappy path - registered for a different election", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedElection(t, env, "e2")
		seedVoter(t, env, "pk-1", "e1", "VOTER-ABCD1234", "123456", "ada@example.com")

		payload := models.LoginVoterRequest{
			VoterID:          "pk-1",
			VoterLoginID:     "ABCD1234",
			VerificationCode: "123456",
			ElectionID:       "e2",
		}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/login", payload, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code, "Expected 401 for a foreign election")

		var errRes models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &errRes))
		assert.Equal(t, "you are not registered for this election", errRes.Error)
	})

	t.Run("Unhappy path - mismatched voter record id", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedVoter(t, env, "pk-1", "e1", "VOTER-ABCD1234", "123456", "ada@example.com")

		payload := models.LoginVoterRequest{
			VoterID:          "pk-2",
			VoterLoginID:     "ABCD1234",
			VerificationCode: "123456",
			ElectionID:       "e1",
		}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/login", payload, nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code, "Expected 401 for a mismatched record id")
	})

	t.Run("Unhappy path - missing fields", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/login",
			models.LoginVoterRequest{VoterLoginID: "ABCD1234"}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for missing fields")
	})
}

func seedBallotWithOptions(t *testing.T, env *voterTestEnv, ballotID, electionID string, optionIDs ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, env.ballots.Create(ctx, &storage.Ballot{
		ID:            ballotID,
		Title:         "Ballot " + ballotID,
		ElectionID:    electionID,
		VotingOptions: optionIDs,
	}))
	for _, optionID := range optionIDs {
		require.NoError(t, env.options.Create(ctx, &storage.VotingOption{
			ID:       optionID,
			Name:     "Option " + optionID,
			BallotID: ballotID,
		}))
	}
}

func TestCastVote(t *testing.T) {
	setup := func(t *testing.T) *voterTestEnv {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedBallotWithOptions(t, env, "b1", "e1", "o1", "o2")
		seedBallotWithOptions(t, env, "b2", "e1", "o3")
		seedVoter(t, env, "v1", "e1", "VOTER-AAAA1111", "111111", "ada@example.com")
		return env
	}

	t.Run("Happy path - vote registered and tally updated", func(t *testing.T) {
		env := setup(t)

		payload := models.CastVoteRequest{VotingOptionID: "o1", VoterID: "v1", BallotID: "b1"}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", payload, nil)
		require.Equal(t, http.StatusOK, res.Code, "Expected 200 from cast-vote")

		var cast models.CastVoteResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &cast), "Should unmarshal cast response")
		assert.Equal(t, 1, cast.VotingOption.Votes, "Tally should count the new vote")
		assert.Contains(t, cast.VotingOption.Voters, "v1", "Voter should appear in the tally")

		ballot, err := env.ballots.Get(context.Background(), "b1")
		require.NoError(t, err)
		assert.Contains(t, ballot.Voters, "v1", "Ballot should record the voter")

		voter, err := env.voters.Get(context.Background(), "v1")
		require.NoError(t, err)
		assert.True(t, voter.IsVerified, "Voter should be marked as having voted")
	})

	t.Run("Unhappy path - second vote for the same option", func(t *testing.T) {
		env := setup(t)

		payload := models.CastVoteRequest{VotingOptionID: "o1", VoterID: "v1", BallotID: "b1"}
		require.Equal(t, http.StatusOK,
			testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", payload, nil).Code)

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", payload, nil)
		assert.Equal(t, http.StatusConflict, res.Code, "Expected 409 for a repeated vote")
	})

	t.Run("Unhappy path - second vote for another option in the same ballot", func(t *testing.T) {
		env := setup(t)

		first := models.CastVoteRequest{VotingOptionID: "o1", VoterID: "v1", BallotID: "b1"}
		require.Equal(t, http.StatusOK,
			testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", first, nil).Code)

		second := models.CastVoteRequest{VotingOptionID: "o2", VoterID: "v1", BallotID: "b1"}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", second, nil)
		assert.Equal(t, http.StatusConflict, res.Code, "One vote per ballot, not per option")

		option, err := env.options.Get(context.Background(), "o2")
		require.NoError(t, err)
		assert.Empty(t, option.Voters, "Rejected vote must not reach the tally")
	})

	t.Run("Happy path - voting in a second ballot is independent", func(t *testing.T) {
		env := setup(t)

		first := models.CastVoteRequest{VotingOptionID: "o1", VoterID: "v1", BallotID: "b1"}
		require.Equal(t, http.StatusOK,
			testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", first, nil).Code)

		second := models.CastVoteRequest{VotingOptionID: "o3", VoterID: "v1", BallotID: "b2"}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", second, nil)
		assert.Equal(t, http.StatusOK, res.Code, "A vote in one ballot must not block another ballot")
	})

	t.Run("Unhappy path - option does not belong to the ballot", func(t *testing.T) {
		env := setup(t)

		payload := models.CastVoteRequest{VotingOptionID: "o3", VoterID: "v1", BallotID: "b1"}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", payload, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for a cross-ballot option")
	})

	t.Run("Unhappy path - unknown ballot", func(t *testing.T) {
		env := setup(t)

		payload := models.CastVoteRequest{VotingOptionID: "o1", VoterID: "v1", BallotID: "missing"}
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", payload, nil)
		assert.Equal(t, http.StatusNotFound, res.Code, "Expected 404 for unknown ballot")
	})

	t.Run("Unhappy path - missing fields", func(t *testing.T) {
		env := setup(t)

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote",
			models.CastVoteRequest{VoterID: "v1"}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for missing fields")
	})

	t.Run("Unhappy path - tally failure releases the vote for a retry", func(t *testing.T) {
		env := setup(t)

		flaky := &flakyOptionStorage{VotingOptionStorage: env.options, failures: 1}
		r := gin.New()
		controller := NewVoterController(env.voters, env.votes, env.elections, env.ballots, flaky, env.notifier)
		controller.RegisterRoutes(r, func(g *gin.Context) { g.Next() })

		payload := models.CastVoteRequest{VotingOptionID: "o1", VoterID: "v1", BallotID: "b1"}
		res := testutils.PerformRequest(r, http.MethodPost, "/api/v1/voter/cast-vote", payload, nil)
		require.Equal(t, http.StatusInternalServerError, res.Code, "Expected 500 when the tally write fails")

		votes, err := env.votes.GetByBallot(context.Background(), "b1")
		require.NoError(t, err)
		assert.Empty(t, votes, "The failed cast must not leave a ledger record behind")

		res = testutils.PerformRequest(r, http.MethodPost, "/api/v1/voter/cast-vote", payload, nil)
		require.Equal(t, http.StatusOK, res.Code, "A retry after the failure should succeed")

		option, err := env.options.Get(context.Background(), "o1")
		require.NoError(t, err)
		assert.Equal(t, []string{"v1"}, option.Voters, "Retry lands exactly one tally entry")
	})
}

// flakyOptionStorage fails the first N AddVoter calls, then behaves normally.
type flakyOptionStorage struct {
	storage.VotingOptionStorage
	failures int
}

func (f *flakyOptionStorage) AddVoter(ctx context.Context, optionID, voterID string) (*storage.VotingOption, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("dynamo unavailable")
	}
	return f.VotingOptionStorage.AddVoter(ctx, optionID, voterID)
}

func TestCastVoteConcurrent(t *testing.T) {
	env := setupVoterTestEnv(t, 10)
	seedElection(t, env, "e1")
	seedBallotWithOptions(t, env, "b1", "e1", "o1", "o2")
	seedVoter(t, env, "v1", "e1", "VOTER-AAAA1111", "111111", "ada@example.com")

	const attempts = 16
	codes := make([]int, attempts)

	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			// Alternate options so the race also covers two different
			// options inside the same ballot.
			optionID := "o1"
			if i%2 == 1 {
				optionID = "o2"
			}
			payload := models.CastVoteRequest{VotingOptionID: optionID, VoterID: "v1", BallotID: "b1"}
			res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/cast-vote", payload, nil)
			codes[i] = res.Code
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			accepted++
		case http.StatusConflict:
		default:
			t.Fatalf("unexpected status %d from concurrent cast-vote", code)
		}
	}
	assert.Equal(t, 1, accepted, "Exactly one concurrent vote must win")

	votes, err := env.votes.GetByBallot(context.Background(), "b1")
	require.NoError(t, err)
	assert.Len(t, votes, 1, "Ledger should hold a single vote")

	o1, err := env.options.Get(context.Background(), "o1")
	require.NoError(t, err)
	o2, err := env.options.Get(context.Background(), "o2")
	require.NoError(t, err)
	assert.Equal(t, 1, len(o1.Voters)+len(o2.Voters), "Combined tally should move by exactly one")
}

func TestUploadVoters(t *testing.T) {
	csvContent := func(rows ...string) []byte {
		return []byte("Full Name,Email,Phone\n" + strings.Join(rows, "\n") + "\n")
	}

	t.Run("Happy path - import csv and deliver credentials", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		content := csvContent(
			"Ada Lovelace,ada@example.com,+15550001",
			"Grace Hopper,grace@example.com,+15550002",
			"Alan Turing,,+15550003",
		)
		res := testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.csv", content)
		require.Equal(t, http.StatusCreated, res.Code, "Expected 201 from upload")

		var uploaded models.UploadVotersResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &uploaded), "Should unmarshal upload response")
		assert.Equal(t, 3, uploaded.Count, "All three rows should import")
		assert.Len(t, uploaded.Voters, 3)
		for _, voter := range uploaded.Voters {
			assert.True(t, strings.HasPrefix(voter.VoterID, models.VoterIDPrefix), "Imported voters get generated credentials")
		}
		assert.Equal(t, 3, env.notifier.sentCount(), "Each imported voter gets a delivery attempt")

		election, err := env.elections.Get(context.Background(), "e1")
		require.NoError(t, err)
		assert.Len(t, election.Voters, 3, "Imported voters should attach to the election")
	})

	t.Run("Happy path - re-import only adds the unseen rows", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		first := csvContent("Ada Lovelace,ada@example.com,+15550001")
		require.Equal(t, http.StatusCreated,
			testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.csv", first).Code)

		second := csvContent(
			"Ada Lovelace,ada@example.com,+15550001",
			"Grace Hopper,grace@example.com,+15550002",
		)
		res := testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.csv", second)
		require.Equal(t, http.StatusCreated, res.Code)

		var uploaded models.UploadVotersResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &uploaded))
		assert.Equal(t, 1, uploaded.Count, "Only the unseen row should import")
		assert.Equal(t, "Grace Hopper", uploaded.Voters[0].FullName)
	})

	t.Run("Unhappy path - nothing new to import", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		content := csvContent("Ada Lovelace,ada@example.com,+15550001")
		require.Equal(t, http.StatusCreated,
			testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.csv", content).Code)

		res := testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.csv", content)
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for a full re-import")

		var errRes models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &errRes))
		assert.Equal(t, "no new voters to add", errRes.Error)
	})

	t.Run("Happy path - duplicate rows inside one file collapse", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		content := csvContent(
			"Ada Lovelace,ada@example.com,+15550001",
			"A. Lovelace,ADA@example.com,+15559999",
		)
		res := testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.csv", content)
		require.Equal(t, http.StatusCreated, res.Code)

		var uploaded models.UploadVotersResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &uploaded))
		assert.Equal(t, 1, uploaded.Count, "Email comparison is case-insensitive")
	})

	t.Run("Unhappy path - batch would exceed the voter limit", func(t *testing.T) {
		env := setupVoterTestEnv(t, 5)
		seedElection(t, env, "e1")
		seedVoter(t, env, "v1", "e1", "VOTER-AAAA0001", "111111", "one@example.com")
		seedVoter(t, env, "v2", "e1", "VOTER-AAAA0002", "222222", "two@example.com")
		seedVoter(t, env, "v3", "e1", "VOTER-AAAA0003", "333333", "three@example.com")

		tooMany := csvContent(
			"Ada Lovelace,ada@example.com,",
			"Grace Hopper,grace@example.com,",
			"Alan Turing,alan@example.com,",
		)
		res := testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.csv", tooMany)
		assert.Equal(t, http.StatusForbidden, res.Code, "Expected 403 over the limit")

		var errRes models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &errRes))
		assert.Equal(t, "voter limit exceeded, 2 slot(s) remaining", errRes.Error)

		fits := csvContent(
			"Ada Lovelace,ada@example.com,",
			"Grace Hopper,grace@example.com,",
		)
		ok := testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.csv", fits)
		assert.Equal(t, http.StatusCreated, ok.Code, "A batch that fits the remaining slots imports")
	})

	t.Run("Unhappy path - unsupported file format", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		res := testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.pdf", []byte("%PDF-1.4"))
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for unsupported format")

		var errRes models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &errRes))
		assert.Equal(t, "unsupported file format, upload a csv or xlsx file", errRes.Error)
	})

	t.Run("Unhappy path - header-only file", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		res := testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/e1", "file", "voters.csv",
			[]byte("Full Name,Email,Phone\n"))
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 for a file without rows")

		var errRes models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &errRes))
		assert.Equal(t, "uploaded file contains no voter rows", errRes.Error)
	})

	t.Run("Unhappy path - election does not exist", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)

		content := csvContent("Ada Lovelace,ada@example.com,+15550001")
		res := testutils.PerformFileUpload(env.router, "/api/v1/voter/upload-voters/missing", "file", "voters.csv", content)
		assert.Equal(t, http.StatusNotFound, res.Code, "Expected 404 for unknown election")
	})

	t.Run("Unhappy path - no file attached", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")

		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter/upload-voters/e1", nil, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, "Expected 400 without a file")
	})
}

func TestVoterCrud(t *testing.T) {
	t.Run("Happy path - get, update and delete a voter", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedVoter(t, env, "v1", "e1", "VOTER-AAAA1111", "111111", "ada@example.com")
		require.NoError(t, env.elections.AddVoters(context.Background(), "e1", []string{"v1"}))

		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/v1/voter/v1", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var voter models.VoterResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &voter))
		assert.Equal(t, "VOTER-AAAA1111", voter.VoterID)

		update := models.UpdateVoterRequest{FullName: "Ada King"}
		res = testutils.PerformRequest(env.router, http.MethodPut, "/api/v1/voter/v1", update, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var updated models.CreateVoterResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &updated))
		assert.Equal(t, "Ada King", updated.Voter.FullName)

		res = testutils.PerformRequest(env.router, http.MethodDelete, "/api/v1/voter/v1", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		_, err := env.voters.Get(context.Background(), "v1")
		assert.ErrorIs(t, err, storage.ErrNotFound, "Deleted voter should be gone")

		election, err := env.elections.Get(context.Background(), "e1")
		require.NoError(t, err)
		assert.NotContains(t, election.Voters, "v1", "Deleted voter should detach from the election")
	})

	t.Run("Happy path - deleting a voter frees their contact details", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedVoter(t, env, "v1", "e1", "VOTER-AAAA1111", "111111", "ada@example.com")

		res := testutils.PerformRequest(env.router, http.MethodDelete, "/api/v1/voter/v1", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		recreate := testutils.PerformRequest(env.router, http.MethodPost, "/api/v1/voter",
			models.CreateVoterRequest{FullName: "Ada", Email: "ada@example.com", ElectionID: "e1"}, nil)
		assert.Equal(t, http.StatusCreated, recreate.Code, "Freed email should be reusable")
	})

	t.Run("Happy path - list voters by election", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)
		seedElection(t, env, "e1")
		seedElection(t, env, "e2")
		seedVoter(t, env, "v1", "e1", "VOTER-AAAA1111", "111111", "one@example.com")
		seedVoter(t, env, "v2", "e1", "VOTER-AAAA2222", "222222", "two@example.com")
		seedVoter(t, env, "v3", "e2", "VOTER-AAAA3333", "333333", "three@example.com")

		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/v1/voter/election/e1", nil, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var listed models.VotersResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &listed))
		assert.Len(t, listed.Voters, 2, "Only voters of the requested election")
	})

	t.Run("Unhappy path - unknown voter", func(t *testing.T) {
		env := setupVoterTestEnv(t, 10)

		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/v1/voter/missing", nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestReconcileRows(t *testing.T) {
	existing := []*storage.Voter{
		{ID: "v1", Email: "ada@example.com", Phone: "+15550001"},
	}

	rows := reconcileRows([]spreadsheet.Row{
		{FullName: "Ada Lovelace", Email: "ADA@example.com"},
		{FullName: "Grace Hopper", Phone: "+15550001"},
		{FullName: "Alan Turing", Email: "alan@example.com"},
		{FullName: "", Email: "nameless@example.com"},
		{FullName: "Alan Again", Email: "alan@example.com"},
	}, existing)

	require.Len(t, rows, 1)
	assert.Equal(t, "Alan Turing", rows[0].FullName)
}
