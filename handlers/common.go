package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cafe-directory/models"

	"github.com/gorilla/mux"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userKey      contextKey = "user"
)

// logRequest logs with the route, method, path and request id of r.
// All handlers share it so every line carries the same request details.
func logRequest(r *http.Request, level string, message string, fields ...zap.Field) {
	routeName := "unmatched"
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		routeName = route.GetName()
	}
	requestID, _ := r.Context().Value(requestIDKey).(string)

	// timestamp - route - method - path [- user] - message
	logMsg := time.Now().Format("2006-01-02 15:04:05") + " - " + routeName + " - " + r.Method + " - " + r.URL.Path
	if user := currentUser(r); user != nil {
		logMsg += " - user:" + strconv.Itoa(user.ID)
	}
	if message != "" {
		logMsg += " - " + message
	}

	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID),
	}, fields...)

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}

// currentUser returns the logged-in user, or nil for anonymous visitors.
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
