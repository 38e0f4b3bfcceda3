package handler

import (
	"log/slog"
	"net/http"

	"devconnect/internal/delivery/api/response"
	deliverycontext "devconnect/internal/delivery/context"
	"devconnect/internal/domain/entity"
	domainerrors "devconnect/internal/domain/errors"
	"devconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ProfileHandlerParams holds dependencies for ProfileHandler, injected by Fx.
type ProfileHandlerParams struct {
	fx.In

	ProfileUC usecase.ProfileUsecase
	Logger    *slog.Logger
}

// ProfileHandler serves profile edits and share codes.
type ProfileHandler struct {
	profileUC usecase.ProfileUsecase
	logger    *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler.
func NewProfileHandler(params ProfileHandlerParams) *ProfileHandler {
	return &ProfileHandler{
		profileUC: params.ProfileUC,
		logger:    params.Logger,
	}
}

// UpdateProfileRequest is the allow-list of editable fields. Anything else in
// the body, such as email or userType, is ignored.
type UpdateProfileRequest struct {
	Name      *string   `json:"name" validate:"omitempty,max=50"`
	Bio       *string   `json:"bio" validate:"omitempty,max=500"`
	Location  *string   `json:"location" validate:"omitempty,max=100"`
	Company   *string   `json:"company" validate:"omitempty,max=100"`
	Position  *string   `json:"position" validate:"omitempty,max=100"`
	Education *string   `json:"education" validate:"omitempty,max=200"`
	Skills    *[]string `json:"skills" validate:"omitempty,max=30,dive,max=50"`
	Avatar    *string   `json:"avatar" validate:"omitempty,max=1024"`
}

func (r UpdateProfileRequest) toUpdate() entity.ProfileUpdate {
	return entity.ProfileUpdate{
		Name:      r.Name,
		Bio:       r.Bio,
		Location:  r.Location,
		Company:   r.Company,
		Position:  r.Position,
		Education: r.Education,
		Skills:    r.Skills,
		Avatar:    r.Avatar,
	}
}

// UpdateProfile handles PUT /profile/:id. Only the owner may edit a profile.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	claims := deliverycontext.GetClaims(c)
	if claims == nil {
		return response.Unauthorized(c, domainerrors.ErrNoToken.ErrorCode(), domainerrors.ErrNoToken.Message())
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
	}
	if targetID != claims.SubjectID {
		return response.HandleAppError(c, domainerrors.ErrForbidden)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	identity, err := h.profileUC.UpdateProfile(c.Request().Context(), usecase.UpdateProfileInput{
		ActorID:  claims.SubjectID,
		TargetID: targetID,
		Update:   req.toUpdate(),
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.User(c, http.StatusOK, "Profile updated successfully", identity.Public())
}

// ProfileQRCode handles GET /profile/:id/qr and writes a PNG.
func (h *ProfileHandler) ProfileQRCode(c echo.Context) error {
	identityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
	}

	png, err := h.profileUC.ProfileQRCode(c.Request().Context(), identityID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")

	return c.Blob(http.StatusOK, "image/png", png)
}
