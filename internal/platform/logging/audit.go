package logging

import (
	"context"

	"go.uber.org/zap"
)

// LogAuditEvent logs a structured audit event for an access decision.
//
// Args:
//   - action: The action attempted (e.g., "invoke")
//   - resourceType: The type of resource (e.g., "function")
//   - resourceID: The resource name (e.g., "Function1")
//   - result: "success" or "failure"
//   - details: Optional additional details
func LogAuditEvent(
	ctx context.Context,
	action, resourceType, resourceID, result string,
	details map[string]any,
) {
	logger := LoggerFromContext(ctx)

	logger.Info("Audit event",
		zap.String("audit.action", action),
		zap.String("audit.resource_type", resourceType),
		zap.String("audit.resource_id", resourceID),
		zap.String("audit.result", result),
		zap.Any("audit.details", details),
	)
}
