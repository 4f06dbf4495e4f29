package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/withgossing/bank-app/internal/common"
	"github.com/withgossing/bank-app/internal/server/auth"
	"github.com/withgossing/bank-app/internal/server/models"
	"github.com/withgossing/bank-app/internal/server/services"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	FullName    string `json:"fullName" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type updateRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
}

// userResponse is the sanitized account view. The password hash never
// appears here.
type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type loginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         userResponse `json:"user"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.ErrorValidation)
		return
	}

	user, err := s.users.Register(c.Request.Context(), services.RegisterRequest{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.ErrorValidation)
		return
	}

	pair, user, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.users.TokenValidity(auth.TokenKindAccess).Seconds()),
		User:         toUserResponse(user),
	})
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.ErrorValidation)
		return
	}

	pair, err := s.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    int64(s.users.TokenValidity(auth.TokenKindAccess).Seconds()),
	})
}

func (s *Server) currentUser(c *gin.Context) {
	caller := callerFromContext(c)
	if caller == nil {
		s.writeError(c, common.ErrorInvalidToken)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(caller))
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.ErrorValidation)
		return
	}

	user, err := s.users.Update(c.Request.Context(), callerFromContext(c), c.Param("id"), services.UpdateRequest{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.users.Deactivate(c.Request.Context(), callerFromContext(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps the service error taxonomy to stable statuses and
// machine-checkable codes. Token errors collapse to one generic body.
func (s *Server) writeError(c *gin.Context, err error) {
	if field, ok := common.IsDuplicate(err); ok {
		body := gin.H{"code": "DUPLICATE_IDENTIFIER", "message": "identifier already in use"}
		if field != "" {
			body["field"] = field
		}
		c.AbortWithStatusJSON(http.StatusConflict, body)
		return
	}

	switch {
	case common.IsInvalidToken(err):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "message": "invalid token"})
	default:
		status, code, message := errorStatus(err)
		c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
	}
}

func errorStatus(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusOK, "OK", ""
	case errors.Is(err, common.ErrorBadCredentials):
		return http.StatusUnauthorized, "BAD_CREDENTIALS", "bad credentials"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "NOT_FOUND", "user not found"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "FORBIDDEN", "operation not allowed"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "VALIDATION", "invalid request"
	case errors.Is(err, common.ErrorStorageUnavailable):
		return http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "storage unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}
