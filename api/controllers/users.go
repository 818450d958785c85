package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mr-atuzie/angt-votify-BE/api/models"
	"github.com/mr-atuzie/angt-votify-BE/api/transport"
	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/mr-atuzie/angt-votify-BE/storage"
	"golang.org/x/crypto/bcrypt"
)

type UserController struct {
	users     storage.UserStorage
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserController(users storage.UserStorage, jwtSecret string, tokenTTL time.Duration) *UserController {
	return &UserController{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (c *UserController) RegisterRoutes(engine *gin.Engine, auth gin.HandlerFunc) {
	group := engine.Group("/api/v1/user")

	group.POST("/register", c.register)
	group.POST("/login", c.login)
	group.GET("/me", auth, c.me)
	group.PUT("/me", auth, c.update)
	group.DELETE("/me", auth, c.delete)
}

// register godoc
// @Summary Register an election-manager account
// @Tags user
// @Accept json
// @Produce json
// @Param user body models.RegisterUserRequest true "Account details"
// @Success 201 {object} models.AuthUserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Email already registered"
// @Router /api/v1/user/register [post]
func (c *UserController) register(g *gin.Context) {
	var req models.RegisterUserRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "fullName, email and password are required"})
		return
	}
	if !models.ValidEmail(req.Email) {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "please use a valid email address"})
		return
	}

	ctx := g.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := c.users.GetByEmail(ctx, email); err == nil {
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logging.Log.Errorf("USER: failed to hash password: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not register user"})
		return
	}

	role := req.Role
	if role == "" {
		role = "organizer"
	}
	user := &storage.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Subscription: storage.Subscription{
			Plan:             "free",
			VoterLimit:       10,
			ElectionsAllowed: 1,
			StartDate:        time.Now().UTC(),
			EndDate:          time.Now().UTC().AddDate(0, 1, 0),
		},
	}

	if err := c.users.Create(ctx, user); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not register user"})
		return
	}

	c.respondWithToken(g, http.StatusCreated, "User registered successfully", user)
}

// login godoc
// @Summary Login with email and password
// @Tags user
// @Accept json
// @Produce json
// @Param credentials body models.LoginUserRequest true "Credentials"
// @Success 200 {object} models.AuthUserResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/v1/user/login [post]
func (c *UserController) login(g *gin.Context) {
	var req models.LoginUserRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	user, err := c.users.GetByEmail(g.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid credentials"})
		return
	}

	c.respondWithToken(g, http.StatusOK, "Login successful", user)
}

// me godoc
// @Summary Get the authenticated account
// @Tags user
// @Produce json
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/user/me [get]
func (c *UserController) me(g *gin.Context) {
	principal, ok := transport.PrincipalFrom(g)
	if !ok {
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "not authorized, please login"})
		return
	}

	user, err := c.users.Get(g.Request.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found"})
			return
		}
		logging.Log.Errorf("USER: failed to load account %s: %v", principal.UserID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load user"})
		return
	}
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}

// update godoc
// @Summary Update the authenticated account
// @Tags user
// @Accept json
// @Produce json
// @Param user body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/user/me [put]
func (c *UserController) update(g *gin.Context) {
	principal, ok := transport.PrincipalFrom(g)
	if !ok {
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "not authorized, please login"})
		return
	}

	var req models.UpdateUserRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	ctx := g.Request.Context()
	user, err := c.users.Get(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "user not found"})
			return
		}
		logging.Log.Errorf("USER: failed to load account %s: %v", principal.UserID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update user"})
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		if !models.ValidEmail(req.Email) {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "please use a valid email address"})
			return
		}
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update user"})
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := c.users.Update(ctx, user); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update user"})
		return
	}
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}

// delete godoc
// @Summary Delete the authenticated account
// @Tags user
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/user/me [delete]
func (c *UserController) delete(g *gin.Context) {
	principal, ok := transport.PrincipalFrom(g)
	if !ok {
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "not authorized, please login"})
		return
	}

	if err := c.users.Delete(g.Request.Context(), principal.UserID); err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete user"})
		return
	}
	logging.Log.Infof("USER: deleted account %s", principal.UserID)
	g.JSON(http.StatusOK, gin.H{"message": "User account deleted successfully"})
}

func (c *UserController) respondWithToken(g *gin.Context, status int, message string, user *storage.User) {
	token, err := transport.IssueToken(c.jwtSecret, c.tokenTTL, user)
	if err != nil {
		logging.Log.Errorf("USER: failed to issue token: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not issue token"})
		return
	}

	g.SetSameSite(http.SameSiteNoneMode)
	g.SetCookie("token", token, int(c.tokenTTL.Seconds()), "/", "", true, true)
	g.JSON(status, &models.AuthUserResponse{
		Message: message,
		User:    models.TransformUserFromStorage(user),
		Token:   token,
	})
}
