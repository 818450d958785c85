package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mr-atuzie/angt-votify-BE/api/models"
	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/mr-atuzie/angt-votify-BE/storage"
)

type BallotController struct {
	ballots   storage.BallotStorage
	options   storage.VotingOptionStorage
	elections storage.ElectionStorage
}

func NewBallotController(ballots storage.BallotStorage, options storage.VotingOptionStorage, elections storage.ElectionStorage) *BallotController {
	return &BallotController{
		ballots:   ballots,
		options:   options,
		elections: elections,
	}
}

func (c *BallotController) RegisterRoutes(engine *gin.Engine, auth gin.HandlerFunc) {
	group := engine.Group("/api/v1/ballot")

	group.POST("", auth, c.create)
	group.GET("/:id", c.get)
	group.GET("/election/:electionId", c.getByElection)
	group.DELETE("/:id", auth, c.delete)
}

// create godoc
// @Summary Create a ballot
// @Tags ballot
// @Accept json
// @Produce json
// @Param ballot body models.CreateBallotRequest true "Ballot details"
// @Success 201 {object} models.BallotDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Title already taken for this election"
// @Router /api/v1/ballot [post]
func (c *BallotController) create(g *gin.Context) {
	var req models.CreateBallotRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if req.Title == "" || req.ElectionID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "please enter all required fields"})
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

	siblings, err := c.ballots.GetByElection(ctx, req.ElectionID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballots"})
		return
	}
	for _, sibling := range siblings {
		if sibling.Title == req.Title {
			g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "ballot title has already been taken for this election"})
			return
		}
	}

	ballot := &storage.Ballot{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		ElectionID:  req.ElectionID,
	}
	if err := c.ballots.Create(ctx, ballot); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create ballot"})
		return
	}
	if err := c.elections.AddBallot(ctx, req.ElectionID, ballot.ID); err != nil {
		logging.Log.Errorf("BALLOT: failed to attach ballot %s to election %s: %v", ballot.ID, req.ElectionID, err)
	}

	logging.Log.Infof("BALLOT: created ballot %s in election %s", ballot.ID, req.ElectionID)
	g.JSON(http.StatusCreated, &models.BallotDetailResponse{
		Message: "Ballot created successfully",
		Ballot:  models.TransformBallotFromStorage(ballot),
	})
}

// get godoc
// @Summary Get a ballot with its voting options
// @Tags ballot
// @Produce json
// @Param id path string true "Ballot ID"
// @Success 200 {object} models.BallotDetailResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/ballot/{id} [get]
func (c *BallotController) get(g *gin.Context) {
	ctx := g.Request.Context()
	ballot, err := c.ballots.Get(ctx, g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "ballot not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballot"})
		return
	}

	options, err := c.options.GetByBallot(ctx, ballot.ID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting options"})
		return
	}

	optionResponses := make([]models.VotingOptionResponse, 0, len(options))
	for _, option := range options {
		optionResponses = append(optionResponses, models.TransformVotingOptionFromStorage(option))
	}
	g.JSON(http.StatusOK, &models.BallotDetailResponse{
		Message: "Ballot retrieved successfully",
		Ballot:  models.TransformBallotFromStorage(ballot),
		Options: optionResponses,
	})
}

// getByElection godoc
// @Summary List ballots of an election
// @Tags ballot
// @Produce json
// @Param electionId path string true "Election ID"
// @Success 200 {array} models.BallotResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/ballot/election/{electionId} [get]
func (c *BallotController) getByElection(g *gin.Context) {
	ballots, err := c.ballots.GetByElection(g.Request.Context(), g.Param("electionId"))
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballots"})
		return
	}

	responses := make([]models.BallotResponse, 0, len(ballots))
	for _, ballot := range ballots {
		responses = append(responses, models.TransformBallotFromStorage(ballot))
	}
	g.JSON(http.StatusOK, responses)
}

// delete godoc
// @Summary Delete a ballot
// @Description Deletes the ballot, its voting options and detaches it from its election
// @Tags ballot
// @Produce json
// @Param id path string true "Ballot ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/ballot/{id} [delete]
func (c *BallotController) delete(g *gin.Context) {
	ctx := g.Request.Context()
	ballot, err := c.ballots.Get(ctx, g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "ballot not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballot"})
		return
	}

	options, err := c.options.GetByBallot(ctx, ballot.ID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting options"})
		return
	}
	for _, option := range options {
		if err := c.options.Delete(ctx, option.ID); err != nil {
			logging.Log.Errorf("BALLOT: failed to delete option %s: %v", option.ID, err)
		}
	}

	if err := c.ballots.Delete(ctx, ballot.ID); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete ballot"})
		return
	}
	if err := c.elections.RemoveBallot(ctx, ballot.ElectionID, ballot.ID); err != nil {
		logging.Log.Errorf("BALLOT: failed to detach ballot %s from election %s: %v", ballot.ID, ballot.ElectionID, err)
	}

	logging.Log.Infof("BALLOT: deleted ballot %s with %d options", ballot.ID, len(options))
	g.JSON(http.StatusOK, gin.H{"message": "Ballot deleted successfully"})
}
