// internal/app/features/joinrequests/handler.go
package joinrequests

import (
	joinsvc "github.com/dalemusser/voyager/internal/app/services/joinrequests"
	"github.com/dalemusser/voyager/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves the join-request endpoints under /trips/{tripID}/join-requests.
type Handler struct {
	Workflow *joinsvc.Workflow
	Limiter  *ratelimit.Limiter
	Log      *zap.Logger
}

// NewHandler constructs a join-request Handler. limiter may be nil.
func NewHandler(wf *joinsvc.Workflow, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{
		Workflow: wf,
		Limiter:  limiter,
		Log:      logger,
	}
}
