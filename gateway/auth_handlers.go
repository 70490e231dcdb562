package gateway

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/localhands/pkg/auth"
	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (g *Gateway) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	session, err := g.auth.Register(c.Request.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// tokenRequest accepts both the OAuth2 password-grant form encoding and JSON.
type tokenRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (g *Gateway) passwordLogin(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	session, err := g.auth.PasswordLogin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type googleAuthRequest struct {
	Token string `json:"token" binding:"required"`
}

func (g *Gateway) googleLogin(c *gin.Context) {
	var req googleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	session, err := g.auth.GoogleLogin(c.Request.Context(), req.Token)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (g *Gateway) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (g *Gateway) updateUserRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	user, err := g.auth.SetRole(c.Request.Context(), currentUser(c), c.Param("id"), models.Role(req.Role))
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
