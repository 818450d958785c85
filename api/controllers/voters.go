package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mr-atuzie/angt-votify-BE/api/models"
	"github.com/mr-atuzie/angt-votify-BE/api/transport"
	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/mr-atuzie/angt-votify-BE/notify"
	"github.com/mr-atuzie/angt-votify-BE/spreadsheet"
	"github.com/mr-atuzie/angt-votify-BE/storage"
)

type VoterController struct {
	voters    storage.VoterStorage
	votes     storage.VoteStorage
	elections storage.ElectionStorage
	ballots   storage.BallotStorage
	options   storage.VotingOptionStorage
	notifier  notify.Notifier
}

func NewVoterController(
	voters storage.VoterStorage,
	votes storage.VoteStorage,
	elections storage.ElectionStorage,
	ballots storage.BallotStorage,
	options storage.VotingOptionStorage,
	notifier notify.Notifier,
) *VoterController {
	return &VoterController{
		voters:    voters,
		votes:     votes,
		elections: elections,
		ballots:   ballots,
		options:   options,
		notifier:  notifier,
	}
}

func (c *VoterController) RegisterRoutes(engine *gin.Engine, auth gin.HandlerFunc) {
	group := engine.Group("/api/v1/voter")

	group.POST("", auth, c.create)
	group.POST("/upload-voters/:electionId", auth, c.uploadVoters)
	group.POST("/login", c.login)
	group.POST("/cast-vote", c.castVote)
	group.GET("", auth, c.getAll)
	group.GET("/election/:electionId", auth, c.getByElection)
	group.GET("/:id", c.get)
	group.PUT("/:id", c.update)
	group.DELETE("/:id", c.delete)
}

// create godoc
// @Summary Register a single voter
// @Description Creates a voter for an election and sends their credentials
// @Tags voter
// @Accept json
// @Produce json
// @Param voter body models.CreateVoterRequest true "Voter details"
// @Success 201 {object} models.CreateVoterResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Email or phone already registered for this election"
// @Failure 502 {object} models.ErrorResponse "Voter created but credential delivery failed"
// @Router /api/v1/voter [post]
func (c *VoterController) create(g *gin.Context) {
	var req models.CreateVoterRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if strings.TrimSpace(req.FullName) == "" || req.ElectionID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "fullName and electionId are required"})
		return
	}
	if req.Email != "" && !models.ValidEmail(req.Email) {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "please use a valid email address"})
		return
	}

	ctx := g.Request.Context()
	if _, err := c.elections.Get(ctx, req.ElectionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "election not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load election"})
		return
	}

	if principal, ok := transport.PrincipalFrom(g); ok {
		existing, err := c.voters.GetByElection(ctx, req.ElectionID)
		if err != nil {
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voters"})
			return
		}
		if remaining := voterSlotsRemaining(principal, len(existing)); remaining < 1 {
			g.JSON(http.StatusForbidden, &models.ErrorResponse{
				Error: fmt.Sprintf("voter limit exceeded, %d slot(s) remaining", remaining),
			})
			return
		}
	}

	voter, err := c.newVoter(req.FullName, req.Email, req.Phone, req.ElectionID)
	if err != nil {
		logging.Log.Errorf("VOTER: failed to generate credentials: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not generate voter credentials"})
		return
	}

	if err := c.voters.Register(ctx, voter); err != nil {
		if errors.Is(err, storage.ErrVoterAlreadyRegistered) {
			g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "a voter with this email or phone already exists for this election"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create voter"})
		return
	}

	if err := c.elections.AddVoters(ctx, req.ElectionID, []string{voter.ID}); err != nil {
		logging.Log.Errorf("VOTER: failed to attach voter %s to election %s: %v", voter.ID, req.ElectionID, err)
	}

	// The voter record stays even when delivery fails; the caller can re-send
	// credentials through an update instead of re-registering.
	if err := c.notifier.SendVoterCredentials(ctx, voter); err != nil {
		g.JSON(http.StatusBadGateway, &models.ErrorResponse{Error: "voter created but credential delivery failed"})
		return
	}

	logging.Log.Infof("VOTER: created voter %s for election %s", voter.VoterID, req.ElectionID)
	g.JSON(http.StatusCreated, &models.CreateVoterResponse{
		Message: "Voter created successfully",
		Voter:   models.TransformVoterFromStorage(voter),
	})
}

// uploadVoters godoc
// @Summary Bulk-import voters from a spreadsheet
// @Description Parses an uploaded csv/xlsx file, drops rows already registered for the election and creates the rest
// @Tags voter
// @Accept multipart/form-data
// @Produce json
// @Param electionId path string true "Election ID"
// @Param file formData file true "Voter spreadsheet"
// @Success 201 {object} models.UploadVotersResponse
// @Failure 400 {object} models.ErrorResponse "No file, unsupported format, empty file or no new voters"
// @Failure 403 {object} models.ErrorResponse "Voter limit exceeded"
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/voter/upload-voters/{electionId} [post]
func (c *VoterController) uploadVoters(g *gin.Context) {
	electionID := g.Param("electionId")

	fileHeader, err := g.FormFile("file")
	if err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "no file uploaded"})
		return
	}

	path := filepath.Join(os.TempDir(), uuid.NewString()+strings.ToLower(filepath.Ext(fileHeader.Filename)))
	if err := g.SaveUploadedFile(fileHeader, path); err != nil {
		logging.Log.Errorf("VOTER: failed to save upload: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not store uploaded file"})
		return
	}
	// The temp file goes away on every exit path.
	defer func() {
		if err := os.Remove(path); err != nil {
			logging.Log.Warnf("VOTER: failed to remove upload %s: %v", path, err)
		}
	}()

	rows, err := spreadsheet.Parse(path)
	if err != nil {
		switch {
		case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "unsupported file format, upload a csv or xlsx file"})
		case errors.Is(err, spreadsheet.ErrEmptyFile):
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "uploaded file contains no voter rows"})
		default:
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "could not parse uploaded file"})
		}
		return
	}

	ctx := g.Request.Context()
	if _, err := c.elections.Get(ctx, electionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "election not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load election"})
		return
	}

	existing, err := c.voters.GetByElection(ctx, electionID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voters"})
		return
	}

	if principal, ok := transport.PrincipalFrom(g); ok {
		if len(existing)+len(rows) > principal.Subscription.VoterLimit {
			remaining := voterSlotsRemaining(principal, len(existing))
			g.JSON(http.StatusForbidden, &models.ErrorResponse{
				Error: fmt.Sprintf("voter limit exceeded, %d slot(s) remaining", remaining),
			})
			return
		}
	}

	newRows := reconcileRows(rows, existing)
	if len(newRows) == 0 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "no new voters to add"})
		return
	}

	created := make([]*storage.Voter, 0, len(newRows))
	ids := make([]string, 0, len(newRows))
	for _, row := range newRows {
		voter, err := c.newVoter(row.FullName, row.Email, row.Phone, electionID)
		if err != nil {
			logging.Log.Errorf("VOTER: failed to generate credentials for %s: %v", row.FullName, err)
			continue
		}
		if err := c.voters.Register(ctx, voter); err != nil {
			// A concurrent import won the guard for this contact; the row is
			// already registered, not an error.
			if errors.Is(err, storage.ErrVoterAlreadyRegistered) {
				logging.Log.Warnf("VOTER: skipped already registered row %s", row.FullName)
				continue
			}
			logging.Log.Errorf("VOTER: failed to register %s: %v", row.FullName, err)
			continue
		}
		created = append(created, voter)
		ids = append(ids, voter.ID)
	}
	if len(created) == 0 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "no new voters to add"})
		return
	}

	if err := c.elections.AddVoters(ctx, electionID, ids); err != nil {
		logging.Log.Errorf("VOTER: failed to attach imported voters to election %s: %v", electionID, err)
	}

	responses := make([]models.VoterResponse, 0, len(created))
	for _, voter := range created {
		if err := c.notifier.SendVoterCredentials(ctx, voter); err != nil {
			logging.Log.Errorf("VOTER: credential delivery failed for %s: %v", voter.VoterID, err)
		}
		responses = append(responses, models.TransformVoterFromStorage(voter))
	}

	logging.Log.Infof("VOTER: imported %d voters into election %s", len(created), electionID)
	g.JSON(http.StatusCreated, &models.UploadVotersResponse{
		Message: "Voters uploaded successfully",
		Count:   len(created),
		Voters:  responses,
	})
}

// login godoc
// @Summary Authenticate a voter for one election
// @Description Validates the voter identifier and one-time code, scoped to a single election
// @Tags voter
// @Accept json
// @Produce json
// @Param credentials body models.LoginVoterRequest true "Voter credentials"
// @Success 200 {object} models.LoginVoterResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/v1/voter/login [post]
func (c *VoterController) login(g *gin.Context) {
	var req models.LoginVoterRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if req.ElectionID == "" || req.VerificationCode == "" || req.VoterLoginID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "voterLoginId, verificationCode and electionId are required"})
		return
	}

	loginID := models.NormalizeVoterLoginID(req.VoterLoginID)

	voter, err := c.voters.FindForLogin(g.Request.Context(), req.ElectionID, loginID)
	if err != nil || voter.ID != req.VoterID {
		logging.Log.Warnf("VOTER: login rejected for %s in election %s", loginID, req.ElectionID)
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "you are not registered for this election"})
		return
	}

	if voter.VerificationCode != req.VerificationCode {
		logging.Log.Warnf("VOTER: invalid verification code for %s", loginID)
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid verification code"})
		return
	}

	g.JSON(http.StatusOK, &models.LoginVoterResponse{
		Message: "Login successful",
		Voter:   models.TransformVoterToSession(voter),
	})
}

// castVote godoc
// @Summary Cast a vote
// @Description Records exactly one vote per voter per ballot
// @Tags voter
// @Accept json
// @Produce json
// @Param vote body models.CastVoteRequest true "Vote"
// @Success 200 {object} models.CastVoteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Ballot, voting option or voter not found"
// @Failure 409 {object} models.ErrorResponse "Voter has already voted in this ballot"
// @Router /api/v1/voter/cast-vote [post]
func (c *VoterController) castVote(g *gin.Context) {
	var req models.CastVoteRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if req.VotingOptionID == "" || req.VoterID == "" || req.BallotID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "votingOptionId, voterId and ballotId are required"})
		return
	}

	ctx := g.Request.Context()

	var (
		ballot    *storage.Ballot
		option    *storage.VotingOption
		voter     *storage.Voter
		ballotErr error
		optionErr error
		voterErr  error
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); ballot, ballotErr = c.ballots.Get(ctx, req.BallotID) }()
	go func() { defer wg.Done(); option, optionErr = c.options.Get(ctx, req.VotingOptionID) }()
	go func() { defer wg.Done(); voter, voterErr = c.voters.Get(ctx, req.VoterID) }()
	wg.Wait()

	for _, missing := range []struct {
		err  error
		name string
	}{
		{ballotErr, "ballot"},
		{optionErr, "voting option"},
		{voterErr, "voter"},
	} {
		if missing.err != nil {
			if errors.Is(missing.err, storage.ErrNotFound) {
				g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: missing.name + " not found"})
			} else {
				g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load " + missing.name})
			}
			return
		}
	}

	if option.BallotID != ballot.ID {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "voting option does not belong to this ballot"})
		return
	}

	if contains(option.Voters, voter.ID) {
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "voter has already voted for this option"})
		return
	}
	if contains(ballot.Voters, voter.ID) {
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "voter has already voted in this ballot"})
		return
	}

	// The conditional ledger insert is the arbiter: two racing casts can both
	// pass the scans above, only one of them gets past this write.
	if err := c.votes.Create(ctx, &storage.Vote{
		BallotID:       ballot.ID,
		VoterID:        voter.ID,
		VotingOptionID: option.ID,
	}); err != nil {
		if errors.Is(err, storage.ErrVoteAlreadyCast) {
			g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "voter has already voted in this ballot"})
			return
		}
		logging.Log.Errorf("VOTER: failed to record vote: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not save vote"})
		return
	}

	updated, err := c.options.AddVoter(ctx, option.ID, voter.ID)
	if err != nil {
		logging.Log.Errorf("VOTER: failed to update tally for option %s: %v", option.ID, err)
		// Release the ledger record so a retry is not stuck behind a vote
		// that never reached the tally.
		if delErr := c.votes.Delete(ctx, ballot.ID, voter.ID); delErr != nil {
			logging.Log.Errorf("VOTER: failed to release vote for ballot %s voter %s: %v", ballot.ID, voter.ID, delErr)
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update vote tally"})
		return
	}
	if err := c.ballots.AddVoter(ctx, ballot.ID, voter.ID); err != nil {
		logging.Log.Errorf("VOTER: failed to mark ballot %s voted for %s: %v", ballot.ID, voter.ID, err)
	}
	if err := c.voters.MarkVerified(ctx, voter.ID); err != nil {
		logging.Log.Errorf("VOTER: failed to mark voter %s verified: %v", voter.ID, err)
	}

	logging.Log.Infof("VOTER: voter %s voted in ballot %s", voter.ID, ballot.ID)
	g.JSON(http.StatusOK, &models.CastVoteResponse{
		Message:      "Vote registered successfully",
		VotingOption: models.TransformVotingOptionFromStorage(updated),
	})
}

// getAll godoc
// @Summary List all voters
// @Tags voter
// @Produce json
// @Success 200 {object} models.VotersResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/voter [get]
func (c *VoterController) getAll(g *gin.Context) {
	voters, err := c.voters.GetAll(g.Request.Context())
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voters"})
		return
	}
	g.JSON(http.StatusOK, transformVoterList(voters))
}

// getByElection godoc
// @Summary List voters registered for an election
// @Tags voter
// @Produce json
// @Param electionId path string true "Election ID"
// @Success 200 {object} models.VotersResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/voter/election/{electionId} [get]
func (c *VoterController) getByElection(g *gin.Context) {
	voters, err := c.voters.GetByElection(g.Request.Context(), g.Param("electionId"))
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voters"})
		return
	}
	g.JSON(http.StatusOK, transformVoterList(voters))
}

// get godoc
// @Summary Get a voter by id
// @Tags voter
// @Produce json
// @Param id path string true "Voter ID"
// @Success 200 {object} models.VoterResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/voter/{id} [get]
func (c *VoterController) get(g *gin.Context) {
	voter, err := c.voters.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "voter not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voter"})
		return
	}
	g.JSON(http.StatusOK, models.TransformVoterFromStorage(voter))
}

// update godoc
// @Summary Update a voter
// @Tags voter
// @Accept json
// @Produce json
// @Param id path string true "Voter ID"
// @Param voter body models.UpdateVoterRequest true "Fields to update"
// @Success 200 {object} models.CreateVoterResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/voter/{id} [put]
func (c *VoterController) update(g *gin.Context) {
	var req models.UpdateVoterRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	ctx := g.Request.Context()
	voter, err := c.voters.Get(ctx, g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "voter not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voter"})
		return
	}

	if req.FullName != "" {
		voter.FullName = req.FullName
	}
	if req.Phone != "" {
		voter.Phone = req.Phone
	}
	if req.IsVerified != nil {
		voter.IsVerified = *req.IsVerified
	}

	if err := c.voters.Update(ctx, voter); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update voter"})
		return
	}
	g.JSON(http.StatusOK, &models.CreateVoterResponse{
		Message: "Voter updated successfully",
		Voter:   models.TransformVoterFromStorage(voter),
	})
}

// delete godoc
// @Summary Delete a voter
// @Tags voter
// @Produce json
// @Param id path string true "Voter ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/voter/{id} [delete]
func (c *VoterController) delete(g *gin.Context) {
	ctx := g.Request.Context()
	voter, err := c.voters.Get(ctx, g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "voter not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voter"})
		return
	}

	if err := c.voters.Delete(ctx, voter); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete voter"})
		return
	}
	if err := c.elections.RemoveVoter(ctx, voter.ElectionID, voter.ID); err != nil {
		logging.Log.Errorf("VOTER: failed to detach voter %s from election %s: %v", voter.ID, voter.ElectionID, err)
	}

	logging.Log.Infof("VOTER: deleted voter %s", voter.ID)
	g.JSON(http.StatusOK, gin.H{"message": "Voter deleted successfully"})
}

func (c *VoterController) newVoter(fullName, email, phone, electionID string) (*storage.Voter, error) {
	shortID, err := gonanoid.Generate(models.Alphabet, models.VoterIDLength)
	if err != nil {
		return nil, err
	}
	code, err := gonanoid.Generate(models.Digits, models.VerificationCodeLength)
	if err != nil {
		return nil, err
	}
	return &storage.Voter{
		ID:               uuid.NewString(),
		FullName:         strings.TrimSpace(fullName),
		Email:            strings.ToLower(strings.TrimSpace(email)),
		Phone:            strings.TrimSpace(phone),
		VoterID:          models.VoterIDPrefix + shortID,
		VerificationCode: code,
		ElectionID:       electionID,
	}, nil
}

// reconcileRows filters the incoming batch down to rows not already known for
// the election. Phone and email de-dupe independently; a row with neither
// contact field only needs a name to pass.
func reconcileRows(rows []spreadsheet.Row, existing []*storage.Voter) []spreadsheet.Row {
	emails := make(map[string]struct{}, len(existing))
	phones := make(map[string]struct{}, len(existing))
	for _, voter := range existing {
		if voter.Email != "" {
			emails[strings.ToLower(voter.Email)] = struct{}{}
		}
		if voter.Phone != "" {
			phones[voter.Phone] = struct{}{}
		}
	}

	var out []spreadsheet.Row
	for _, row := range rows {
		if strings.TrimSpace(row.FullName) == "" {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(row.Email))
		phone := strings.TrimSpace(row.Phone)
		if email != "" {
			if _, dup := emails[email]; dup {
				continue
			}
		}
		if phone != "" {
			if _, dup := phones[phone]; dup {
				continue
			}
		}
		if email != "" {
			emails[email] = struct{}{}
		}
		if phone != "" {
			phones[phone] = struct{}{}
		}
		out = append(out, row)
	}
	return out
}

func voterSlotsRemaining(p *transport.Principal, existing int) int {
	remaining := p.Subscription.VoterLimit - existing
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func transformVoterList(voters []*storage.Voter) models.VotersResponse {
	out := models.VotersResponse{Voters: make([]models.VoterResponse, 0, len(voters))}
	for _, voter := range voters {
		out.Voters = append(out.Voters, models.TransformVoterFromStorage(voter))
	}
	return out
}

func contains(set []string, id string) bool {
	for _, existing := range set {
		if existing == id {
			return true
		}
	}
	return false
}
