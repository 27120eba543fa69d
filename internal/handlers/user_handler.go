package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/database"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/middleware"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/observability"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/services"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/pkg/lambda"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain"

	noMethodMessage = "No method passed"
)

// UserHandler serves the /users endpoint. Every invocation opens its own
// database session and closes it before returning.
type UserHandler struct {
	connector database.Connector
	services  services.Factory
	metrics   *observability.Metrics
	logger    *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(connector database.Connector, factory services.Factory, metrics *observability.Metrics, logger *logrus.Logger) *UserHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &UserHandler{
		connector: connector,
		services:  factory,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle processes one invocation
func (h *UserHandler) Handle(ctx context.Context, req *lambda.Request) *lambda.Response {
	entry := h.logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"method":     req.Method,
		"path":       req.Path,
	})
	entry.Info("Users function processed a request")

	resp := h.handle(ctx, req, entry)
	h.metrics.ObserveInvocation(req.Method, resp.StatusCode)
	return resp
}

func (h *UserHandler) handle(ctx context.Context, req *lambda.Request, entry *logrus.Entry) *lambda.Response {
	if req.Method == "" {
		return h.errorResponse(entry, &InvocationError{Kind: KindConfiguration, Err: errNoMethod})
	}

	entry.Debug("Attempting DB connection")
	session, err := h.connector.Open(ctx)
	if err != nil {
		return h.errorResponse(entry, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			entry.WithError(err).Warn("Failed to close DB connection")
		}
	}()
	entry.Debug("Connection to DB successful")

	userService := h.services(session).UserService

	switch req.Method {
	case http.MethodGet:
		return h.listUsers(ctx, userService, entry)
	case http.MethodPost:
		return h.createUser(ctx, userService, req.Body, entry)
	default:
		entry.Warn("Unsupported HTTP method")
		return &lambda.Response{StatusCode: http.StatusMethodNotAllowed, Headers: map[string]string{}}
	}
}

// @Summary List users
// @Description Returns every row of the users table. Keys are the table's column names.
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {string} string "Error: <message>"
// @Router /users [get]
func (h *UserHandler) listUsers(ctx context.Context, svc services.UserService, entry *logrus.Entry) *lambda.Response {
	entry.Debug("Executing list users query")
	users, err := svc.ListUsers(ctx)
	if err != nil {
		return h.errorResponse(entry, err)
	}
	entry.WithField("count", len(users)).Debug("List users query finished")

	body, err := json.Marshal(users)
	if err != nil {
		return h.errorResponse(entry, err)
	}

	return jsonResponse(http.StatusOK, body)
}

// @Summary Create a user
// @Description Inserts a user and returns the generated identifier
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.User true "firstName, lastName and email are required"
// @Success 200 {object} models.CreatedUser
// @Failure 400 {string} string "New user request body did not contain field: '<field>'"
// @Failure 500 {string} string "Error: <message>"
// @Router /users [post]
func (h *UserHandler) createUser(ctx context.Context, svc services.UserService, body []byte, entry *logrus.Entry) *lambda.Response {
	entry.Debug("Executing create user query")
	created, err := svc.CreateUser(ctx, body)
	if err != nil {
		return h.errorResponse(entry, err)
	}
	entry.WithField("user_id", created.UserID).Debug("Create user query finished")

	payload, err := json.Marshal(created)
	if err != nil {
		return h.errorResponse(entry, err)
	}

	return jsonResponse(http.StatusOK, payload)
}

// errorResponse logs err according to its kind and builds the matching response
func (h *UserHandler) errorResponse(entry *logrus.Entry, err error) *lambda.Response {
	invErr := classify(err)
	entry = entry.WithField("error_kind", invErr.Kind.String())

	switch invErr.Kind {
	case KindConfiguration:
		observability.Critical(entry, noMethodMessage)
		return textResponse(http.StatusBadRequest, noMethodMessage)

	case KindConnection:
		observability.Critical(entry.WithError(invErr.Err), "Unable to connect to DB")
		return &lambda.Response{StatusCode: http.StatusInternalServerError, Headers: map[string]string{}}

	case KindValidation:
		entry.WithError(invErr.Err).Warn("Invalid new user request")
		return textResponse(http.StatusBadRequest, invErr.Err.Error())

	default:
		entry.WithError(invErr.Err).Error("Request failed")
		return textResponse(http.StatusInternalServerError, "Error: "+invErr.Err.Error())
	}
}

func jsonResponse(status int, body []byte) *lambda.Response {
	return &lambda.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": contentTypeJSON},
		Body:       body,
	}
}

func textResponse(status int, message string) *lambda.Response {
	return &lambda.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": contentTypeText},
		Body:       []byte(message),
	}
}

// ServeGin adapts Handle to a gin route
func (h *UserHandler) ServeGin(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			c.Data(http.StatusInternalServerError, contentTypeText, []byte("Error: "+err.Error()))
			return
		}
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[k] = c.Request.Header.Get(k)
	}

	query := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	resp := h.Handle(c.Request.Context(), &lambda.Request{
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		Headers:     headers,
		QueryParams: query,
		Body:        body,
		RequestID:   c.GetString(middleware.RequestIDKey),
	})

	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	if len(resp.Body) == 0 {
		c.Status(resp.StatusCode)
		return
	}
	c.Data(resp.StatusCode, resp.Headers["Content-Type"], resp.Body)
}
