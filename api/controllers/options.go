package controllers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mr-atuzie/angt-votify-BE/api/models"
	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/mr-atuzie/angt-votify-BE/storage"
)

type VotingOptionController struct {
	options storage.VotingOptionStorage
	ballots storage.BallotStorage
}

func NewVotingOptionController(options storage.VotingOptionStorage, ballots storage.BallotStorage) *VotingOptionController {
	return &VotingOptionController{
		options: options,
		ballots: ballots,
	}
}

func (c *VotingOptionController) RegisterRoutes(engine *gin.Engine, auth gin.HandlerFunc) {
	group := engine.Group("/api/v1/voting-option")

	group.POST("", auth, c.create)
	group.GET("/:id", c.get)
	group.GET("/ballot/:ballotId", c.getByBallot)
	group.GET("/ballot/:ballotId/results", c.results)
	group.PUT("/:id", auth, c.update)
	group.DELETE("/:id", auth, c.delete)
}

// create godoc
// @Summary Create a voting option under a ballot
// @Tags voting-option
// @Accept json
// @Produce json
// @Param option body models.CreateVotingOptionRequest true "Voting option details"
// @Success 201 {object} models.VotingOptionDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/voting-option [post]
func (c *VotingOptionController) create(g *gin.Context) {
	var req models.CreateVotingOptionRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if req.Name == "" || req.BallotID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "name and ballotId are required"})
		return
	}

	ctx := g.Request.Context()
	if _, err := c.ballots.Get(ctx, req.BallotID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "ballot not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load ballot"})
		return
	}

	option := &storage.VotingOption{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		BallotID:    req.BallotID,
	}
	if err := c.options.Create(ctx, option); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create voting option"})
		return
	}
	if err := c.ballots.AddOption(ctx, req.BallotID, option.ID); err != nil {
		logging.Log.Errorf("OPTION: failed to attach option %s to ballot %s: %v", option.ID, req.BallotID, err)
	}

	g.JSON(http.StatusCreated, &models.VotingOptionDetailResponse{
		Message:      "Voting option created successfully",
		VotingOption: models.TransformVotingOptionFromStorage(option),
	})
}

// get godoc
// @Summary Get a voting option by id
// @Tags voting-option
// @Produce json
// @Param id path string true "Voting option ID"
// @Success 200 {object} models.VotingOptionResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/voting-option/{id} [get]
func (c *VotingOptionController) get(g *gin.Context) {
	option, err := c.options.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "voting option not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting option"})
		return
	}
	g.JSON(http.StatusOK, models.TransformVotingOptionFromStorage(option))
}

// getByBallot godoc
// @Summary List voting options of a ballot
// @Tags voting-option
// @Produce json
// @Param ballotId path string true "Ballot ID"
// @Success 200 {array} models.VotingOptionResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/voting-option/ballot/{ballotId} [get]
func (c *VotingOptionController) getByBallot(g *gin.Context) {
	options, err := c.options.GetByBallot(g.Request.Context(), g.Param("ballotId"))
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting options"})
		return
	}

	responses := make([]models.VotingOptionResponse, 0, len(options))
	for _, option := range options {
		responses = append(responses, models.TransformVotingOptionFromStorage(option))
	}
	g.JSON(http.StatusOK, responses)
}

// results godoc
// @Summary Ballot results derived from option tallies
// @Tags voting-option
// @Produce json
// @Param ballotId path string true "Ballot ID"
// @Success 200 {object} models.BallotResultsResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/voting-option/ballot/{ballotId}/results [get]
func (c *VotingOptionController) results(g *gin.Context) {
	ballotID := g.Param("ballotId")
	options, err := c.options.GetByBallot(g.Request.Context(), ballotID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting options"})
		return
	}

	response := models.BallotResultsResponse{
		BallotID: ballotID,
		Results:  make([]models.BallotResultEntry, 0, len(options)),
	}
	for _, option := range options {
		response.Results = append(response.Results, models.BallotResultEntry{
			OptionID: option.ID,
			Name:     option.Name,
			Votes:    len(option.Voters),
		})
		response.TotalVotes += len(option.Voters)
	}
	sort.Slice(response.Results, func(i, j int) bool {
		return response.Results[i].Votes > response.Results[j].Votes
	})

	g.JSON(http.StatusOK, response)
}

// update godoc
// @Summary Update a voting option
// @Tags voting-option
// @Accept json
// @Produce json
// @Param id path string true "Voting option ID"
// @Param option body models.UpdateVotingOptionRequest true "Fields to update"
// @Success 200 {object} models.VotingOptionDetailResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/voting-option/{id} [put]
func (c *VotingOptionController) update(g *gin.Context) {
	var req models.UpdateVotingOptionRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	ctx := g.Request.Context()
	option, err := c.options.Get(ctx, g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "voting option not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting option"})
		return
	}

	if req.Name != "" {
		option.Name = req.Name
	}
	if req.Description != "" {
		option.Description = req.Description
	}
	if req.Image != "" {
		option.Image = req.Image
	}

	if err := c.options.Update(ctx, option); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update voting option"})
		return
	}
	g.JSON(http.StatusOK, &models.VotingOptionDetailResponse{
		Message:      "Voting option updated successfully",
		VotingOption: models.TransformVotingOptionFromStorage(option),
	})
}

// delete godoc
// @Summary Delete a voting option
// @Tags voting-option
// @Produce json
// @Param id path string true "Voting option ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/voting-option/{id} [delete]
func (c *VotingOptionController) delete(g *gin.Context) {
	ctx := g.Request.Context()
	option, err := c.options.Get(ctx, g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "voting option not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load voting option"})
		return
	}

	if err := c.options.Delete(ctx, option.ID); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete voting option"})
		return
	}
	if err := c.ballots.RemoveOption(ctx, option.BallotID, option.ID); err != nil {
		logging.Log.Errorf("OPTION: failed to detach option %s from ballot %s: %v", option.ID, option.BallotID, err)
	}

	logging.Log.Infof("OPTION: deleted voting option %s", option.ID)
	g.JSON(http.StatusOK, gin.H{"message": "Voting option deleted successfully"})
}
