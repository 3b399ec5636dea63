package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tradesync/internal/application"
	"github.com/oksasatya/tradesync/internal/domain/entity"
	"github.com/oksasatya/tradesync/pkg/response"
	"github.com/oksasatya/tradesync/pkg/validation"
)

const (
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid Credentials"
	MsgUserNotFound       = "User not found"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authUser struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  authUser `json:"user"`
}

type userResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAuthResponse(res *application.AuthResult) authResponse {
	return authResponse{
		Token: res.Token,
		User:  authUser{ID: res.User.ID, FullName: res.User.FullName, Email: res.User.Email},
	}
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, FullName: u.FullName, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.MsgInvalidPayload, validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrUserExists) {
			response.Error(c, http.StatusBadRequest, MsgUserExists, nil)
			return
		}
		response.ServerError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, toAuthResponse(res))
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.MsgInvalidPayload, validation.ToDetails(err))
		return
	}
	meta := application.RequestMeta{IP: clientIP(c), UserAgent: c.GetHeader("User-Agent")}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, meta)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error(c, http.StatusBadRequest, MsgInvalidCredentials, nil)
			return
		}
		response.ServerError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, toAuthResponse(res))
}

// User GET /api/auth/user
func (h *AuthHandler) User(c *gin.Context) {
	u, err := h.Svc.Me(c.Request.Context(), callerID(c))
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, MsgUserNotFound, nil)
			return
		}
		response.ServerError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, toUserResponse(u))
}

func callerID(c *gin.Context) string {
	return c.GetString("userID")
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
