// Package router defines the HTTP surface of the user directory:
// route registration, JSON request decoding, error to status mapping,
// and the cross-origin policy for /api.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/patric-chuzhbe/userdir/internal/logger"
	"github.com/patric-chuzhbe/userdir/internal/models"
	"github.com/patric-chuzhbe/userdir/internal/service"
)

const (
	HelloMessage = "Hello from Go Backend!"

	validationErrorMessage = "Missing username or phone number"
	notFoundErrorMessage   = "User not found"
	internalErrorMessage   = "internal server error"
)

type usersService interface {
	ListUsers(ctx context.Context) (models.Users, error)
	CreateUser(ctx context.Context, request *models.CreateUserRequest) (models.User, error)
	UpdateUser(ctx context.Context, userID string, request *models.UpdateUserRequest) (models.User, error)
	DeleteUser(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

// Router holds the dependencies of the HTTP handlers.
type Router struct {
	service        usersService
	allowedOrigins []string
}

// New builds the chi router with all routes and middlewares attached.
func New(theService usersService, allowedOrigins []string) *chi.Mux {
	myRouter := Router{
		service:        theService,
		allowedOrigins: allowedOrigins,
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		logger.WithLoggingHTTPMiddleware,
		middleware.Recoverer,
		middleware.Compress(5, "application/json"),
	)

	router.Get(`/ping`, myRouter.GetPing)

	router.Route(`/api`, func(r chi.Router) {
		r.Use(myRouter.corsHandler())

		r.Get(`/hello`, myRouter.GetApihello)
		r.Get(`/users`, myRouter.GetApiusers)
		r.Post(`/users`, myRouter.PostApiusers)
		r.Put(`/users/{id}`, myRouter.PutApiusersID)
		r.Delete(`/users/{id}`, myRouter.DeleteApiusersID)
	})

	return router
}

// corsHandler answers preflight requests and adds the CORS headers
// for origins on the allow-list only.
func (router *Router) corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: router.allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}

func writeJSON(res http.ResponseWriter, statusCode int, body interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	if err := json.NewEncoder(res).Encode(body); err != nil {
		logger.Log.Errorln("error while encoding the response body:", err)
	}
}

// decodeBody unmarshals the whole request body into target.
// Trailing data after the first JSON value is an error.
func decodeBody(req *http.Request, target interface{}) error {
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("in internal/router/router.go/decodeBody(): error while `io.ReadAll()` calling: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("in internal/router/router.go/decodeBody(): error while `json.Unmarshal()` calling: %w", err)
	}

	return nil
}

func (router *Router) handleError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeJSON(res, http.StatusBadRequest, models.ErrorResponse{Error: validationErrorMessage})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(res, http.StatusNotFound, models.ErrorResponse{Error: notFoundErrorMessage})
	default:
		logger.Log.Errorw("request failed", "error", err)
		writeJSON(res, http.StatusInternalServerError, models.ErrorResponse{Error: internalErrorMessage})
	}
}

// GetPing reports whether the storage is reachable.
func (router *Router) GetPing(res http.ResponseWriter, req *http.Request) {
	if err := router.service.Ping(req.Context()); err != nil {
		logger.Log.Errorw("storage ping failed", "error", err)
		res.WriteHeader(http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusOK)
}

// GetApihello is the health check of the API.
func (router *Router) GetApihello(res http.ResponseWriter, req *http.Request) {
	writeJSON(res, http.StatusOK, models.HelloResponse{Message: HelloMessage})
}

// GetApiusers lists all users in insertion order.
func (router *Router) GetApiusers(res http.ResponseWriter, req *http.Request) {
	users, err := router.service.ListUsers(req.Context())
	if err != nil {
		router.handleError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, users)
}

// PostApiusers creates a user from a {"username","phone"} body.
func (router *Router) PostApiusers(res http.ResponseWriter, req *http.Request) {
	var request models.CreateUserRequest
	if err := decodeBody(req, &request); err != nil {
		logger.Log.Debugln("rejecting create body:", err)
		router.handleError(res, service.ErrValidation)
		return
	}

	usr, err := router.service.CreateUser(req.Context(), &request)
	if err != nil {
		router.handleError(res, err)
		return
	}

	writeJSON(res, http.StatusCreated, usr)
}

// PutApiusersID merges the body into the user with the path ID.
// An absent or malformed body updates nothing.
func (router *Router) PutApiusersID(res http.ResponseWriter, req *http.Request) {
	userID := chi.URLParam(req, "id")

	var request *models.UpdateUserRequest
	var decoded models.UpdateUserRequest
	if err := decodeBody(req, &decoded); err == nil {
		request = &decoded
	}

	usr, err := router.service.UpdateUser(req.Context(), userID, request)
	if err != nil {
		router.handleError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, usr)
}

// DeleteApiusersID removes the user with the path ID and answers 204 with no body.
func (router *Router) DeleteApiusersID(res http.ResponseWriter, req *http.Request) {
	userID := chi.URLParam(req, "id")

	if err := router.service.DeleteUser(req.Context(), userID); err != nil {
		router.handleError(res, err)
		return
	}

	res.WriteHeader(http.StatusNoContent)
}
