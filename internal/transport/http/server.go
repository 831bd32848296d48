package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"presto/internal/domain/models"
	"presto/internal/lib/logger/sl"
	userservice "presto/internal/services/user_service"
	"presto/internal/transport/http/dto"
	"presto/internal/transport/http/dto/request"
	"presto/internal/transport/http/dto/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	RegisterNewUser(ctx context.Context, input dto.UserRegisterInput) (uuid.UUID, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

type TokenService interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

type StoreService interface {
	GetStore(ctx context.Context, userID uuid.UUID) (models.Store, error)
	ReplaceStore(ctx context.Context, userID uuid.UUID, store models.Store) error
}

type Routers struct {
	log          *slog.Logger
	UserService  UserService
	TokenService TokenService
	StoreService StoreService
}

func NewRouter(log *slog.Logger, userService UserService, tokenService TokenService, storeService StoreService) *Routers {
	return &Routers{
		log:          log,
		UserService:  userService,
		TokenService: tokenService,
		StoreService: storeService,
	}
}

var ErrInvalidCredentials = errors.New("invalid credentials")

// Register godoc
// @Summary Register a new account
// @Description Creates an account and returns the new user id.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.UserRegisterInput true "Registration data"
// @Success 201 {object} response.Response{data=object{user_id=string}}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/v1/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.UserRegisterInput

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRegisterRequest)
	}

	if err := c.Validate(req); err != nil {
		resp := response.ErrInvalidRegisterRequest
		resp.Details = err.Error()
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, resp)
	}

	userID, err := r.UserService.RegisterNewUser(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, userservice.ErrUserExist) {
			log.Warn("user already exists", slog.String("email", req.Email))
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}

		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status:  "error",
			Error:   "internal_error",
			Details: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, response.Response{
		Status: "success",
		Data: map[string]uuid.UUID{
			"user_id": userID,
		},
	})
}

// Login godoc
// @Summary Log in
// @Description Authenticates by email and password, returns a token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		resp := response.ErrInvalidRequestFormat
		resp.Details = err.Error()
		log.Warn("invalid format request", slog.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, resp)
	}

	pair, err := r.UserService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Refresh godoc
// @Summary Rotate a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RefreshRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	pair, err := r.TokenService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Warn("failed to refresh tokens", sl.Err(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Logout godoc
// @Summary Log out
// @Description Revokes every refresh token the user holds.
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(
		slog.String("op", op),
	)

	userID, err := userIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if err := r.UserService.Logout(c.Request().Context(), userID); err != nil {
		log.Error("logout failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

// GetStore godoc
// @Summary Fetch the caller's whole store
// @Tags store
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.StoreResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /store [get]
func (r *Routers) GetStore(c echo.Context) error {
	const op = "http.routers.GetStore"

	log := r.log.With(
		slog.String("op", op),
	)

	userID, err := userIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	store, err := r.StoreService.GetStore(c.Request().Context(), userID)
	if err != nil {
		log.Error("failed to get store", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, dto.StoreResponse{Store: store})
}

// ReplaceStore godoc
// @Summary Replace the caller's whole store
// @Description Overwrites the persisted store wholesale; no patch form exists.
// @Tags store
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ReplaceStoreRequest true "Complete new store"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /store [put]
func (r *Routers) ReplaceStore(c echo.Context) error {
	const op = "http.routers.ReplaceStore"

	log := r.log.With(
		slog.String("op", op),
	)

	userID, err := userIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	var req dto.ReplaceStoreRequest

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind store", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := validateStore(c, req.Store); err != nil {
		resp := response.ErrInvalidStore
		resp.Details = err.Error()
		log.Warn("store validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, resp)
	}

	if err := r.StoreService.ReplaceStore(c.Request().Context(), userID, req.Store); err != nil {
		log.Error("failed to replace store", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status: "error",
			Error:  "internal_error",
		})
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

// validateStore runs the element-level geometry constraints. The store layer
// on the client side trusts pre-validated values, so this boundary is where
// out-of-range geometry is rejected.
func validateStore(c echo.Context, store models.Store) error {
	for _, p := range store {
		for _, slide := range p.Slides {
			for _, el := range slide.Elements {
				if err := c.Validate(el); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func userIDFromToken(c echo.Context) (uuid.UUID, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidCredentials
	}

	return uuid.Parse(uid)
}
