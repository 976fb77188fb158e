package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/metrics"
	"github.com/allisson/keyvault/internal/operation"
)

// maxRequestBytes bounds an operation request body.
const maxRequestBytes = 1 << 20

// operationHandler runs the operation named in the path with the JSON body as
// parameters and always answers with an envelope.
//
// Operation results, including failures, are 200. An unknown operation is 404
// and a body that is not JSON is 400. A client that goes away does not stop the
// operation; Shutdown waits for it.
func (s *Server) operationHandler(c *gin.Context) {
	name := c.Param(metrics.OperationParam)
	if !s.dispatcher.Has(name) {
		writeEnvelope(c, http.StatusNotFound,
			operation.Fail(fmt.Errorf("%w: %q", operation.ErrUnknownOperation, name)).Envelope())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes))
	if err != nil {
		writeEnvelope(c, http.StatusBadRequest,
			operation.Fail(apperrors.Wrap(operation.ErrMalformedParams, err.Error())).Envelope())
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeEnvelope(c, http.StatusBadRequest,
			operation.Fail(fmt.Errorf("%w: request body is not valid JSON", operation.ErrMalformedParams)).Envelope())
		return
	}

	ctx := c.Request.Context()
	select {
	case result := <-s.dispatcher.Submit(ctx, name, body):
		writeEnvelope(c, http.StatusOK, result.Envelope())
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "client went away before operation completed",
			slog.String("operation", name),
			slog.String("request_id", requestid.Get(c)),
		)
		c.Abort()
	}
}

func (s *Server) listOperationsHandler(c *gin.Context) {
	writeEnvelope(c, http.StatusOK, operation.Ok(operation.Payload{
		"operations": s.dispatcher.Operations(),
	}).Envelope())
}

func writeEnvelope(c *gin.Context, status int, env operation.Envelope) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, env)
}
