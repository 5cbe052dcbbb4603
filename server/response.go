package server

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/webhost/errors"
	"github.com/kbukum/webhost/logger"
	"github.com/kbukum/webhost/serializer"
	"github.com/kbukum/webhost/server/middleware"
	"github.com/kbukum/webhost/validation"
)

// ErrNoScope is returned when a request carries no request scope.
var ErrNoScope = stderrors.New("server: request has no scope")

// DataResponse is the standard success envelope. Field names follow the
// serializer's naming mode.
type DataResponse struct {
	Data any
	Meta *Meta `json:",omitempty"`
}

// Meta carries pagination or other response metadata.
type Meta struct {
	Page       int `json:",omitempty"`
	PageSize   int `json:",omitempty"`
	Total      int `json:",omitempty"`
	TotalPages int `json:",omitempty"`
}

// SerializerFor returns the serializer registered in the request scope.
func SerializerFor(c *gin.Context) (serializer.Serializer, error) {
	scope, ok := middleware.Scope(c)
	if !ok {
		return nil, ErrNoScope
	}
	return serializer.Resolve(scope)
}

// Render writes body with the application serializer so field names follow
// the configured naming mode. A request without a resolvable serializer is
// answered with a configuration error.
func Render(c *gin.Context, status int, body any) {
	s, err := SerializerFor(c)
	if err != nil {
		abortUnconfigured(c, err)
		return
	}
	data, err := s.Marshal(body)
	if err != nil {
		appErr := apperrors.Internal(err)
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.Data(status, s.ContentType(), data)
}

// Bind decodes the request body into dst with the application serializer
// and validates it. On failure it writes the error response and returns the
// error; the handler should just return.
func Bind(c *gin.Context, dst any) error {
	err := decodeBody(c, dst)
	if err == nil {
		err = validation.Validate(dst)
	}
	if err != nil {
		RespondWithError(c, err)
		c.Abort()
	}
	return err
}

func decodeBody(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return apperrors.MissingField("body")
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return apperrors.PayloadTooLarge(tooLarge.Limit)
		}
		return apperrors.InvalidInput("body", err.Error())
	}
	if len(data) == 0 {
		return apperrors.MissingField("body")
	}

	s, err := SerializerFor(c)
	if err != nil {
		return apperrors.Configuration("serializer", err)
	}
	if err := s.Unmarshal(data, dst); err != nil {
		return apperrors.InvalidInput("body", "malformed JSON")
	}
	return nil
}

// abortUnconfigured answers 500 when no serializer can be resolved. The
// envelope goes through Gin's encoder since the application one is missing.
func abortUnconfigured(c *gin.Context, err error) {
	appErr := apperrors.Configuration("serializer", err)
	logger.GetGlobalLogger().WithContext(c.Request.Context()).Error("Response not rendered", logger.ErrorFields("render", err))
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondWithError inspects err: if it is an *apperrors.AppError the status and
// structured body are derived automatically; otherwise a generic 500 is sent.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	if appErr == nil {
		appErr = apperrors.Internal(nil)
	}
	Render(c, appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	Render(c, http.StatusOK, DataResponse{Data: data})
}

// RespondOKWithMeta sends a 200 response with data and metadata.
func RespondOKWithMeta(c *gin.Context, data any, meta *Meta) {
	Render(c, http.StatusOK, DataResponse{Data: data, Meta: meta})
}

// RespondCreated sends a 201 response wrapping data.
func RespondCreated(c *gin.Context, data any) {
	Render(c, http.StatusCreated, DataResponse{Data: data})
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondAccepted sends a 202 response wrapping data.
func RespondAccepted(c *gin.Context, data any) {
	Render(c, http.StatusAccepted, DataResponse{Data: data})
}
