package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"devconnect/internal/delivery/api/response"
	deliverycontext "devconnect/internal/delivery/context"
	"devconnect/internal/domain/entity"
	domainerrors "devconnect/internal/domain/errors"
	"devconnect/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// DashboardHandlerParams holds dependencies for DashboardHandler, injected by Fx.
type DashboardHandlerParams struct {
	fx.In

	ProfileUC usecase.ProfileUsecase
	Logger    *slog.Logger
}

// DashboardHandler serves the signed-in landing data and the talent listing.
type DashboardHandler struct {
	profileUC usecase.ProfileUsecase
	logger    *slog.Logger
}

// NewDashboardHandler is the constructor for DashboardHandler.
func NewDashboardHandler(params DashboardHandlerParams) *DashboardHandler {
	return &DashboardHandler{
		profileUC: params.ProfileUC,
		logger:    params.Logger,
	}
}

// TalentResponse lists students visible to hirers.
type TalentResponse struct {
	Users []*entity.PublicIdentity `json:"users"`
	Count int                      `json:"count"`
}

// Dashboard handles GET /dashboard.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	claims := deliverycontext.GetClaims(c)
	if claims == nil {
		return response.Unauthorized(c, domainerrors.ErrNoToken.ErrorCode(), domainerrors.ErrNoToken.Message())
	}

	identity, err := h.profileUC.GetProfile(c.Request().Context(), claims.SubjectID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.User(c, http.StatusOK, "", identity.Public())
}

// Talent handles GET /dashboard/talent?skill=&q=&limit=.
func (h *DashboardHandler) Talent(c echo.Context) error {
	input := usecase.ListTalentInput{
		Skill: strings.TrimSpace(c.QueryParam("skill")),
		Query: strings.TrimSpace(c.QueryParam("q")),
	}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return response.Error(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
		}
		input.Limit = limit
	}

	identities, err := h.profileUC.ListTalent(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	users := make([]*entity.PublicIdentity, 0, len(identities))
	for _, identity := range identities {
		users = append(users, identity.Public())
	}

	return c.JSON(http.StatusOK, TalentResponse{
		Users: users,
		Count: len(users),
	})
}
