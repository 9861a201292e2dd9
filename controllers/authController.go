package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"safii-be/middlewares"
	"safii-be/models"
	"safii-be/services"
)

// AuthService is implemented by services.AuthService.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	AdminLogin(ctx context.Context, email, password string) (*models.User, string, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
}

// CookieSettings controls the auth cookie.
type CookieSettings struct {
	Domain     string
	Production bool
	MaxAge     int
}

type AuthController struct {
	auth   AuthService
	cookie CookieSettings
}

func NewAuthController(auth AuthService, cookie CookieSettings) *AuthController {
	return &AuthController{auth: auth, cookie: cookie}
}

type credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterUser handles user registration
func (ac *AuthController) RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		validationFailed(c, bindingDetails(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.auth.Register(ctx, services.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respondError(c, "registering", err)
		return
	}

	c.JSON(http.StatusCreated, userResponse(user))
}

// LoginUser handles user login
func (ac *AuthController) LoginUser(c *gin.Context) {
	ac.login(c, false)
}

// AdminLogin is the admin console login. A citizen account is refused and
// any existing session cookie is cleared.
func (ac *AuthController) AdminLogin(c *gin.Context) {
	ac.login(c, true)
}

func (ac *AuthController) login(c *gin.Context, admin bool) {
	var input credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		validationFailed(c, bindingDetails(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	login := ac.auth.Login
	if admin {
		login = ac.auth.AdminLogin
	}
	user, token, err := login(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotAdmin) {
			ac.clearCookie(c)
		}
		respondError(c, "logging in", err)
		return
	}

	ac.setCookie(c, token)
	resp := userResponse(user)
	resp["token"] = token
	c.JSON(http.StatusOK, resp)
}

// GetMe retrieves the authenticated user's information
func (ac *AuthController) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.auth.Me(ctx, userID)
	if err != nil {
		respondError(c, "loading your profile", err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

// LogoutUser handles user logout by clearing the auth_token cookie
func (ac *AuthController) LogoutUser(c *gin.Context) {
	ac.clearCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

func (ac *AuthController) setCookie(c *gin.Context, token string) {
	// Cross-origin cookies in production must not pin a domain
	domain := ac.cookie.Domain
	if ac.cookie.Production {
		domain = ""
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.AuthCookieName,
		Value:    token,
		MaxAge:   ac.cookie.MaxAge,
		Path:     "/",
		Domain:   domain,
		Secure:   ac.cookie.Production,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (ac *AuthController) clearCookie(c *gin.Context) {
	c.SetCookie(middlewares.AuthCookieName, "", -1, "/", ac.cookie.Domain, ac.cookie.Production, true)
}

func userResponse(user *models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"isAdmin":   user.IsAdmin,
		"createdAt": user.CreatedAt,
	}
}
