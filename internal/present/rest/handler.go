package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/roamplan/roamplan/internal/domain"
	"github.com/roamplan/roamplan/internal/present/rest/middleware"
	"github.com/roamplan/roamplan/internal/present/rest/presenter"
	"github.com/roamplan/roamplan/internal/service"
	"github.com/roamplan/roamplan/internal/usecase"
)

type Handler struct {
	auth      *service.AuthService
	signal    *service.SignalService
	trip      *usecase.TripUsecase
	itinerary *usecase.ItineraryUsecase
	activity  *usecase.ActivityUsecase
	deletion  *usecase.DeletionUsecase
	restore   *usecase.RestoreUsecase
}

func NewHandler(
	auth *service.AuthService,
	signal *service.SignalService,
	trip *usecase.TripUsecase,
	itinerary *usecase.ItineraryUsecase,
	activity *usecase.ActivityUsecase,
	deletion *usecase.DeletionUsecase,
	restore *usecase.RestoreUsecase,
) *Handler {
	return &Handler{
		auth:      auth,
		signal:    signal,
		trip:      trip,
		itinerary: itinerary,
		activity:  activity,
		deletion:  deletion,
		restore:   restore,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	e.Use(authMiddleware.IdentifyIdentity)

	e.POST("/api/v1/auth/signup", h.handleSignup)
	e.POST("/api/v1/auth/login", h.handleLogin)

	api := e.Group("/api/v1", authMiddleware.RequireAuth)
	api.GET("/auth/me", h.handleMe)
	api.GET("/trips", h.handleListTrips)
	api.POST("/trips", h.handleCreateTrip)
	api.GET("/trips/:tripId", h.handleGetTrip)
	api.PUT("/trips/:tripId", h.handleUpdateTrip)
	api.DELETE("/trips/:tripId", h.handleDeleteTrip)
	api.GET("/trips/:tripId/days", h.handleListDays)
	api.POST("/trips/:tripId/days", h.handleCreateDay)
	api.GET("/trips/:tripId/days/:dayId", h.handleGetDay)
	api.PUT("/trips/:tripId/days/:dayId", h.handleUpdateDay)
	api.DELETE("/trips/:tripId/days/:dayId", h.handleDeleteDay)
	api.POST("/trips/:tripId/days/:dayId/activities", h.handleCreateActivity)
	api.PUT("/trips/:tripId/days/:dayId/activities/reorder", h.handleReorderActivities)
	api.PUT("/trips/:tripId/days/:dayId/activities/:activityId", h.handleUpdateActivity)
	api.DELETE("/trips/:tripId/days/:dayId/activities/:activityId", h.handleDeleteActivity)
	api.POST("/undo", h.handleUndo)

	e.GET("/realtime", h.handleRealtime, authMiddleware.RequireAuth)
}

func requesterID(c echo.Context) string {
	id, _ := c.Get(domain.RequesterIDCtxKey).(string)
	return id
}

func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return presenter.Forbidden(c, "Unauthorized access")
	case errors.Is(err, domain.ErrExpired):
		return presenter.Gone(c, "Undo window has expired")
	default:
		return presenter.InternalError(c, err)
	}
}

// --- auth ---

type signupRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

func (h *Handler) handleSignup(c echo.Context) error {
	ctx := c.Request().Context()

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return presenter.BadRequestMessage(c, "email and password are required")
	}

	result, err := h.auth.Signup(ctx, req.Email, req.DisplayName, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.Created(c, echo.Map{
		"success": true,
		"message": "Account created successfully",
		"user":    result.User,
		"token":   result.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return presenter.Unauthorized(c, "Invalid email or password")
		}
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success": true,
		"message": "Logged in successfully",
		"user":    result.User,
		"token":   result.Token,
	})
}

func (h *Handler) handleMe(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.auth.GetUser(ctx, requesterID(c))
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success": true,
		"user":    user,
	})
}

// --- trips ---

func (h *Handler) handleListTrips(c echo.Context) error {
	ctx := c.Request().Context()

	trips, err := h.trip.List(ctx, requesterID(c))
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success": true,
		"message": "Trips fetched successfully",
		"trips":   trips,
	})
}

func (h *Handler) handleCreateTrip(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateTripInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}
	if input.Name == "" {
		return presenter.BadRequestMessage(c, "tripName is required")
	}

	trip, err := h.trip.Create(ctx, requesterID(c), input)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.Created(c, echo.Map{
		"success": true,
		"message": "Trip created successfully",
		"trip":    trip,
	})
}

func (h *Handler) handleGetTrip(c echo.Context) error {
	ctx := c.Request().Context()

	trip, err := h.trip.Get(ctx, c.Param("tripId"), requesterID(c))
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success": true,
		"message": "Trip fetched successfully",
		"trip":    trip,
	})
}

func (h *Handler) handleUpdateTrip(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateTripInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	trip, err := h.trip.Update(ctx, c.Param("tripId"), requesterID(c), input)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success": true,
		"message": "Trip updated successfully",
		"trip":    trip,
	})
}

func (h *Handler) handleDeleteTrip(c echo.Context) error {
	return h.handleDelete(c, domain.KindTrip, c.Param("tripId"), "Trip deleted successfully")
}

// --- itinerary days ---

func (h *Handler) handleListDays(c echo.Context) error {
	ctx := c.Request().Context()

	days, err := h.itinerary.List(ctx, requesterID(c), c.Param("tripId"))
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success":       true,
		"message":       "Itinerary days fetched successfully",
		"itineraryDays": days,
	})
}

func (h *Handler) handleCreateDay(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateDayInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	day, err := h.itinerary.Create(ctx, requesterID(c), c.Param("tripId"), input)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.Created(c, echo.Map{
		"success":      true,
		"message":      "Itinerary day created successfully",
		"itineraryDay": day,
	})
}

func (h *Handler) handleGetDay(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.itinerary.Get(ctx, requesterID(c), c.Param("tripId"), c.Param("dayId"))
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success":      true,
		"message":      "Itinerary day fetched successfully",
		"itineraryDay": result.Day,
		"activities":   result.Activities,
	})
}

func (h *Handler) handleUpdateDay(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateDayInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	day, err := h.itinerary.Update(ctx, requesterID(c), c.Param("tripId"), c.Param("dayId"), input)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success":      true,
		"message":      "Itinerary day updated successfully",
		"itineraryDay": day,
	})
}

func (h *Handler) handleDeleteDay(c echo.Context) error {
	return h.handleDelete(c, domain.KindItineraryDay, c.Param("dayId"), "Itinerary day deleted successfully")
}

// --- activities ---

func (h *Handler) handleCreateActivity(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateActivityInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}
	if input.Title == "" {
		return presenter.BadRequestMessage(c, "title is required")
	}

	activity, err := h.activity.Create(ctx, requesterID(c), c.Param("tripId"), c.Param("dayId"), input)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.Created(c, echo.Map{
		"success":  true,
		"message":  "Activity created successfully",
		"activity": activity,
	})
}

func (h *Handler) handleUpdateActivity(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateActivityInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	activity, err := h.activity.Update(ctx, requesterID(c), c.Param("tripId"), c.Param("dayId"), c.Param("activityId"), input)
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success":  true,
		"message":  "Activity updated successfully",
		"activity": activity,
	})
}

type reorderRequest struct {
	ActivityIDs []string `json:"activitiesId"`
}

func (h *Handler) handleReorderActivities(c echo.Context) error {
	ctx := c.Request().Context()

	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	err := h.activity.Reorder(ctx, requesterID(c), c.Param("tripId"), c.Param("dayId"), req.ActivityIDs)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
			return respondError(c, err)
		}
		return presenter.BadRequest(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success": true,
		"message": "Activities reordered successfully",
	})
}

func (h *Handler) handleDeleteActivity(c echo.Context) error {
	return h.handleDelete(c, domain.KindActivity, c.Param("activityId"), "Activity deleted successfully")
}

// --- deletion / undo ---

func (h *Handler) handleDelete(c echo.Context, kind domain.EntityKind, entityID, message string) error {
	ctx := c.Request().Context()

	result, err := h.deletion.Delete(ctx, kind, entityID, requesterID(c))
	if err != nil {
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success":           true,
		"message":           message,
		"deletionLogId":     result.DeletionLogID,
		"undoWindowSeconds": result.UndoWindowSeconds,
	})
}

type undoRequest struct {
	DeletionLogID string `json:"deletionLogId"`
}

func (h *Handler) handleUndo(c echo.Context) error {
	ctx := c.Request().Context()

	var req undoRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.DeletionLogID == "" {
		return presenter.BadRequestMessage(c, "Deletion log ID is required")
	}

	err := h.restore.Undo(ctx, req.DeletionLogID, requesterID(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "Deletion record not found or already restored")
		}
		return respondError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"success": true,
		"message": "Item restored successfully",
	})
}

// --- realtime ---

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	userID := requesterID(c)

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	events := make(chan domain.UndoEvent)

	go func() {
		defer close(events)
		if err := h.signal.Subscribe(ctx, userID, events); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(ctx, "undo event subscription ended",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
		}
	}()

	// Drain the client side so we notice the connection closing.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for event := range events {
		if err := ws.WriteJSON(event); err != nil {
			slog.DebugContext(ctx, "WebSocket write failed",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
			return nil
		}
	}

	return nil
}
