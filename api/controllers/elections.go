package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mr-atuzie/angt-votify-BE/api/models"
	"github.com/mr-atuzie/angt-votify-BE/api/transport"
	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/mr-atuzie/angt-votify-BE/storage"
)

type ElectionController struct {
	elections storage.ElectionStorage
	ballots   storage.BallotStorage
	options   storage.VotingOptionStorage
}

func NewElectionController(elections storage.ElectionStorage, ballots storage.BallotStorage, options storage.VotingOptionStorage) *ElectionController {
	return &ElectionController{
		elections: elections,
		ballots:   ballots,
		options:   options,
	}
}

func (c *ElectionController) RegisterRoutes(engine *gin.Engine, auth gin.HandlerFunc) {
	group := engine.Group("/api/v1/election")

	group.POST("", auth, c.create)
	group.GET("", c.getAll)
	group.GET("/:id", c.get)
	group.PUT("/:id", auth, c.update)
	group.POST("/:id/close", auth, c.close)
	group.DELETE("/:id", auth, c.delete)
	group.POST("/:id/ballot", auth, c.createBallot)
}

// create godoc
// @Summary Create an election
// @Tags election
// @Accept json
// @Produce json
// @Param election body models.CreateElectionRequest true "Election details"
// @Success 201 {object} models.ElectionDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse "Election limit reached"
// @Failure 409 {object} models.ErrorResponse "Title already taken"
// @Router /api/v1/election [post]
func (c *ElectionController) create(g *gin.Context) {
	principal, ok := transport.PrincipalFrom(g)
	if !ok {
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "not authorized, please login"})
		return
	}

	var req models.CreateElectionRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if req.Title == "" || req.Description == "" || req.StartDate.IsZero() || req.EndDate.IsZero() || req.ElectionType == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "please enter all required fields"})
		return
	}
	if _, ok := models.ValidElectionTypes[req.ElectionType]; !ok {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid election type"})
		return
	}
	if req.VotingFormat != "" {
		if _, ok := models.ValidVotingFormats[req.VotingFormat]; !ok {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid voting format"})
			return
		}
	}

	ctx := g.Request.Context()

	owned, err := c.elections.GetByUser(ctx, principal.UserID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load elections"})
		return
	}
	if len(owned) >= principal.Subscription.ElectionsAllowed {
		g.JSON(http.StatusForbidden, &models.ErrorResponse{Error: "election limit reached"})
		return
	}

	if _, err := c.elections.GetByTitle(ctx, req.Title); err == nil {
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "election name has already been taken"})
		return
	}

	election := &storage.Election{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       string(models.ElectionStatusUpcoming),
		ElectionType: req.ElectionType,
		VotingFormat: req.VotingFormat,
		UserID:       principal.UserID,
	}
	if err := c.elections.Create(ctx, election); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create election"})
		return
	}

	logging.Log.Infof("ELECTION: created election %s for user %s", election.ID, principal.UserID)
	g.JSON(http.StatusCreated, &models.ElectionDetailResponse{
		Message:  "Election created successfully",
		Election: models.TransformElectionFromStorage(election, time.Now()),
	})
}

// getAll godoc
// @Summary List all elections
// @Tags election
// @Produce json
// @Success 200 {array} models.ElectionResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/election [get]
func (c *ElectionController) getAll(g *gin.Context) {
	elections, err := c.elections.GetAll(g.Request.Context())
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load elections"})
		return
	}

	now := time.Now()
	responses := make([]models.ElectionResponse, 0, len(elections))
	for _, election := range elections {
		responses = append(responses, models.TransformElectionFromStorage(election, now))
	}
	g.JSON(http.StatusOK, responses)
}

// get godoc
// @Summary Get an election by id
// @Description Status is recomputed from the current time on every read
// @Tags election
// @Produce json
// @Param id path string true "Election ID"
// @Success 200 {object} models.ElectionResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/election/{id} [get]
func (c *ElectionController) get(g *gin.Context) {
	election, err := c.elections.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "election not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load election"})
		return
	}
	g.JSON(http.StatusOK, models.TransformElectionFromStorage(election, time.Now()))
}

// update godoc
// @Summary Update an election
// @Tags election
// @Accept json
// @Produce json
// @Param id path string true "Election ID"
// @Param election body models.UpdateElectionRequest true "Fields to update"
// @Success 200 {object} models.ElectionDetailResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/election/{id} [put]
func (c *ElectionController) update(g *gin.Context) {
	var req models.UpdateElectionRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	ctx := g.Request.Context()
	election, err := c.elections.Get(ctx, g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "election not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load election"})
		return
	}

	if req.Title != "" {
		election.Title = req.Title
	}
	if req.Description != "" {
		election.Description = req.Description
	}
	if req.StartDate != nil {
		election.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		election.EndDate = *req.EndDate
	}
	if req.ElectionType != "" {
		election.ElectionType = req.ElectionType
	}
	if req.VotingFormat != "" {
		election.VotingFormat = req.VotingFormat
	}

	if err := c.elections.Update(ctx, election); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update election"})
		return
	}
	g.JSON(http.StatusOK, &models.ElectionDetailResponse{
		Message:  "Election updated successfully",
		Election: models.TransformElectionFromStorage(election, time.Now()),
	})
}

// close godoc
// @Summary Close an election
// @Tags election
// @Produce json
// @Param id path string true "Election ID"
// @Success 200 {object} models.ElectionDetailResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/election/{id}/close [post]
func (c *ElectionController) close(g *gin.Context) {
	ctx := g.Request.Context()
	election, err := c.elections.Get(ctx, g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "election not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load election"})
		return
	}

	election.Status = string(models.ElectionStatusEnded)
	if err := c.elections.Update(ctx, election); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not close election"})
		return
	}

	logging.Log.Infof("ELECTION: closed election %s", election.ID)
	g.JSON(http.StatusOK, &models.ElectionDetailResponse{
		Message:  "Election closed successfully",
		Election: models.TransformElectionFromStorage(election, time.Now()),
	})
}

// delete godoc
// @Summary Delete an election
// @Tags election
// @Produce json
// @Param id path string true "Election ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/election/{id} [delete]
func (c *ElectionController) delete(g *gin.Context) {
	ctx := g.Request.Context()
	id := g.Param("id")

	if _, err := c.elections.Get(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "election not found"})
			return
		}
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load election"})
		return
	}

	if err := c.elections.Delete(ctx, id); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete election"})
		return
	}
	logging.Log.Infof("ELECTION: deleted election %s", id)
	g.JSON(http.StatusOK, gin.H{"message": "Election deleted successfully"})
}

// createBallot godoc
// @Summary Create a ballot under an election
// @Tags election
// @Accept json
// @Produce json
// @Param id path string true "Election ID"
// @Param ballot body models.CreateBallotRequest true "Ballot details"
// @Success 201 {object} models.BallotDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Ballot title already taken for this election"
// @Router /api/v1/election/{id}/ballot [post]
func (c *ElectionController) createBallot(g *gin.Context) {
	electionID := g.Param("id")

	var req models.CreateBallotRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if req.Title == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "please enter all required fields"})
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

	siblings, err := c.ballots.GetByElection(ctx, electionID)
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
		ElectionID:  electionID,
	}
	if err := c.ballots.Create(ctx, ballot); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create ballot"})
		return
	}
	if err := c.elections.AddBallot(ctx, electionID, ballot.ID); err != nil {
		logging.Log.Errorf("ELECTION: failed to attach ballot %s to election %s: %v", ballot.ID, electionID, err)
	}

	g.JSON(http.StatusCreated, &models.BallotDetailResponse{
		Message: "Ballot created successfully",
		Ballot:  models.TransformBallotFromStorage(ballot),
	})
}
