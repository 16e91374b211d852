// Package http provides http transport for ops
package http

import (
	stdhttp "net/http"

	"stride/internal/modkit/httpkit"
	"stride/internal/modkit/scope"
	perr "stride/internal/platform/errors"
	opsdom "stride/internal/services/api/ops/domain"
	dispatch "stride/internal/services/dispatch/domain"
)

// Deps are the handler collaborators
type Deps struct {
	Checkins opsdom.CheckinActions
	Reviews  opsdom.ReviewActions
	Jobs     opsdom.JobLister
}

// Register mounts the ops routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}
	httpkit.PostJSON[opsdom.ActionInput](r, "/actions", h.action)
	httpkit.Get(r, "/jobs", h.jobs)
	httpkit.Post(r, "/sync", h.sync)
}

type handlers struct{ deps Deps }

// swagger:route POST /ops/actions Ops opsAction
// @Summary Relay an inline button press to its owning service
// @Tags Ops
// @Accept json
// @Produce json
// @Param payload body domain.ActionInput true "Action"
// @Success 200 {object} domain.ActionOutput "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /ops/actions [post]
func (h *handlers) action(r *stdhttp.Request, in opsdom.ActionInput) (any, error) {
	tok := dispatch.Token(in.Token)
	ns, _, err := dispatch.ParseToken(tok)
	if err != nil {
		return nil, err
	}

	// downstream dispatches log the acting user
	ctx := scope.With(r.Context(), map[string]string{"actor": in.UserID})

	var ack string
	switch ns {
	case dispatch.NSCheckinDone, dispatch.NSCheckinSkip, dispatch.NSTrackDone, dispatch.NSTrackSkip:
		if h.deps.Checkins == nil {
			return nil, perr.Unavailablef("check-in actions not wired")
		}
		ack, err = h.deps.Checkins.HandleAction(ctx, in.UserID, tok)
	default:
		if h.deps.Reviews == nil {
			return nil, perr.Unavailablef("review actions not wired")
		}
		ack, err = h.deps.Reviews.HandleAction(ctx, in.UserID, in.ChatID, tok)
	}
	if err != nil {
		return nil, err
	}
	return opsdom.ActionOutput{Ack: ack}, nil
}

// swagger:route GET /ops/jobs Ops opsJobs
// @Summary Snapshot of installed schedules
// @Tags Ops
// @Produce json
// @Success 200 {object} domain.JobsOutput "ok"
// @Router /ops/jobs [get]
func (h *handlers) jobs(_ *stdhttp.Request) (any, error) {
	out := opsdom.JobsOutput{Jobs: []opsdom.JobRow{}}
	if h.deps.Jobs == nil {
		return out, nil
	}
	for _, j := range h.deps.Jobs.Snapshot() {
		out.Jobs = append(out.Jobs, opsdom.JobRow{
			Name:    j.Name,
			Kind:    j.Kind,
			Enabled: j.Enabled,
			Data:    j.Data,
		})
	}
	return out, nil
}

// swagger:route POST /ops/sync Ops opsSync
// @Summary Run a vault sync pass now
// @Tags Ops
// @Produce json
// @Success 200 {object} domain.SyncOutput "ok"
// @Router /ops/sync [post]
func (h *handlers) sync(r *stdhttp.Request) (any, error) {
	if h.deps.Reviews == nil {
		return nil, perr.Unavailablef("review actions not wired")
	}
	n, err := h.deps.Reviews.SyncVault(r.Context())
	if err != nil {
		return nil, err
	}
	return opsdom.SyncOutput{Cards: n}, nil
}
