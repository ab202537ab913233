package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/codejourney/internal/application/usecase/profile"
	"github.com/khoahotran/codejourney/pkg/apperror"
	"github.com/khoahotran/codejourney/pkg/auth"
	"github.com/khoahotran/codejourney/pkg/logger"
)

type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
	jwtSvc         *auth.JWTService
	logger         logger.Logger
	location       *time.Location
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, jwtSvc *auth.JWTService, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: uc,
		jwtSvc:         jwtSvc,
		logger:         log,
		location:       time.Local,
	}
}

func (h *ProfileHandler) CreateSession(c *gin.Context) {
	view, err := h.profileUseCase.ExecuteCreateSession(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	token, err := h.jwtSvc.GenerateToken(view.SessionID)
	if err != nil {
		c.Error(apperror.NewInternal("failed to issue session token", err))
		return
	}

	c.JSON(http.StatusCreated, CreateSessionResponse{
		Token:   token,
		Session: ToSessionDTO(view, h.location),
	})
}

func (h *ProfileHandler) GetSession(c *gin.Context) {
	sessionID, ok := GetSessionIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("sessionID not found in context", nil))
		return
	}

	view, err := h.profileUseCase.ExecuteGetView(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSessionDTO(view, h.location))
}

func (h *ProfileHandler) SetHandle(c *gin.Context) {
	sessionID, ok := GetSessionIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("sessionID not found in context", nil))
		return
	}

	var req SetHandleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for handle update", err))
		return
	}

	view, err := h.profileUseCase.ExecuteSetHandle(c.Request.Context(), sessionID, *req.Handle)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSessionDTO(view, h.location))
}

func (h *ProfileHandler) ToggleTheme(c *gin.Context) {
	sessionID, ok := GetSessionIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("sessionID not found in context", nil))
		return
	}

	view, err := h.profileUseCase.ExecuteToggleTheme(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSessionDTO(view, h.location))
}

// Fetch answers once the platform has resolved. Not-found and upstream failures are part of
// the returned session state, not HTTP errors.
func (h *ProfileHandler) Fetch(c *gin.Context) {
	sessionID, ok := GetSessionIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("sessionID not found in context", nil))
		return
	}

	p, err := h.profileUseCase.Catalog().Parse(c.Param("platform"))
	if err != nil {
		c.Error(apperror.NewNotFound("platform", c.Param("platform")))
		return
	}

	view, err := h.profileUseCase.ExecuteFetch(c.Request.Context(), sessionID, p.ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSessionDTO(view, h.location))
}

func (h *ProfileHandler) FetchAll(c *gin.Context) {
	sessionID, ok := GetSessionIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("sessionID not found in context", nil))
		return
	}

	view, err := h.profileUseCase.ExecuteFetchAll(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSessionDTO(view, h.location))
}

func (h *ProfileHandler) ListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": ToPlatformDTOs(h.profileUseCase.Catalog())})
}
