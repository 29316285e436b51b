package handlers

import (
	"errors"
	"net/http"

	"gram-vidya/internal/middleware"
	"gram-vidya/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func success(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError maps service errors onto HTTP statuses. Anything unclassified is
// logged and reported as a generic server error.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": verr.Message,
			"errors":  verr.Fields,
		})
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		glog.V(1).Infof("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		fail(c, http.StatusForbidden, "Not authorized")
	default:
		glog.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		fail(c, http.StatusInternalServerError, "Server error")
	}
}

// paramID parses an ObjectID route parameter, writing a 400 when it is malformed.
func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// actor builds the caller identity from the verified token claims.
func actor(c *gin.Context) (service.Actor, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		fail(c, http.StatusUnauthorized, "Not authorized to access this route")
		return service.Actor{}, false
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Not authorized to access this route")
		return service.Actor{}, false
	}
	return service.Actor{ID: id, Name: claims.Name, Role: claims.Role}, true
}
