package server

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// createLoggingMiddleware creates middleware that logs all MCP method calls
func createLoggingMiddleware(logger logrus.FieldLogger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(
			ctx context.Context,
			method string,
			req mcp.Request,
		) (mcp.Result, error) {
			start := time.Now()
			log := logger.WithField("method", method)
			if s := req.GetSession(); s != nil && s.ID() != "" {
				log = log.WithField("session", s.ID())
			}
			if call, ok := req.(*mcp.CallToolRequest); ok && call.Params != nil {
				log = log.WithField("tool", call.Params.Name)
			}

			log.Debug("Request")

			result, err := next(ctx, method, req)

			log = log.WithField("duration", time.Since(start))
			switch {
			case err != nil:
				log.WithError(err).Warn("Request failed")
			case isToolError(result):
				log.Info("Tool returned an error")
			default:
				log.Debug("Request completed")
			}

			return result, err
		}
	}
}

func isToolError(result mcp.Result) bool {
	res, ok := result.(*mcp.CallToolResult)
	return ok && res != nil && res.IsError
}
