package backends

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/shared/id"
	"github.com/runanywhere/commons/internal/types"
)

// Handle carries the identity and lifetime of a created service. Backend
// services embed it and call Check before touching their model.
type Handle struct {
	info   types.ServiceInfo
	closed atomic.Bool
	model  io.Closer
}

// NewHandle creates a handle for a service built by provider from req.
// model is closed exactly once when the handle is closed; it may be nil.
func NewHandle(provider string, req types.ServiceRequest, model io.Closer) *Handle {
	return &Handle{
		info: types.ServiceInfo{
			ID:         id.NewInstanceID().String(),
			Provider:   provider,
			Capability: req.Capability,
			ModelPath:  req.Path(),
		},
		model: model,
	}
}

// Info implements features.Service.
func (h *Handle) Info() types.ServiceInfo {
	return h.info
}

// Check fails with InvalidHandle once the handle is closed.
func (h *Handle) Check() error {
	if h.closed.Load() {
		return errcode.New(errcode.InvalidHandle, "service %s is closed", h.info.ID)
	}
	return nil
}

// Begin is called at the start of every operation. It fails when the handle
// is closed or ctx is already done.
func (h *Handle) Begin(ctx context.Context) error {
	if err := h.Check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errcode.Wrap(errcode.Cancelled, err, "service %s", h.info.ID)
	}
	return nil
}

// Close releases the model. Closing twice is a no-op.
func (h *Handle) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	if h.model == nil {
		return nil
	}
	return h.model.Close()
}
