package dispatch

import (
	"errors"
	"net/http"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/handle"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/internal/ctxlog"
)

// Member describes an action or event in REST responses.
type Member struct {
	Node     string `json:"node"`
	Name     string `json:"name"`
	Reduced  string `json:"reduced"`
	Kind     string `json:"kind"`
	Endpoint string `json:"endpoint"`
	binding.Binding
	Snapshot *handle.Snapshot `json:"snapshot,omitempty"`
}

func describe(h handle.Handle, withSnapshot bool) Member {
	ret := Member{
		Node:     h.Node(),
		Name:     h.Name().Original,
		Reduced:  h.Name().Reduced,
		Kind:     h.Kind().String(),
		Endpoint: h.Endpoint().String(),
		Binding:  h.Binding(),
	}
	if withSnapshot {
		snapshot := h.Snapshot()
		ret.Snapshot = &snapshot
	}
	return ret
}

func (h *Handler) node(r *http.Request) (string, error) {
	segment := r.PathValue("node")
	node, ok := h.resolve(segment)
	if !ok {
		return "", registry.NewNotFoundError(segment)
	}
	return node, nil
}

func (h *Handler) listNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Nodes())
}

func (h *Handler) listActions(w http.ResponseWriter, r *http.Request) {
	node, err := h.node(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ret := []Member{}
	for _, action := range h.registry.Actions(node) {
		ret = append(ret, describe(action, false))
	}
	writeJSON(w, http.StatusOK, ret)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	node, err := h.node(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ret := []Member{}
	for _, event := range h.registry.Events(node) {
		ret = append(ret, describe(event, true))
	}
	writeJSON(w, http.StatusOK, ret)
}

func (h *Handler) action(r *http.Request) (*handle.Action, error) {
	node, err := h.node(r)
	if err != nil {
		return nil, err
	}
	segment := r.PathValue("action")
	action, err := h.registry.LookupAction(node, segment)
	return action, requested(err, segment)
}

func (h *Handler) event(r *http.Request) (*handle.Event, error) {
	node, err := h.node(r)
	if err != nil {
		return nil, err
	}
	segment := r.PathValue("event")
	event, err := h.registry.LookupEvent(node, segment)
	return event, requested(err, segment)
}

// requested reports a member miss under the path segment the caller sent.
func requested(err error, segment string) error {
	var notFound *registry.NotFoundError
	if errors.As(err, &notFound) {
		return &registry.NotFoundError{Endpoint: segment, Key: notFound.Key}
	}
	return err
}

func (h *Handler) describeAction(w http.ResponseWriter, r *http.Request) {
	action, err := h.action(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(action, true))
}

func (h *Handler) actionSchema(w http.ResponseWriter, r *http.Request) {
	action, err := h.action(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, action.Binding().FullSchema())
}

func (h *Handler) callAction(w http.ResponseWriter, r *http.Request) {
	action, err := h.action(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	arg, err := readArg(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := action.Call(r.Context(), arg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctxlog.FromContext(r.Context()).Info("action called", "endpoint", action.Endpoint().String())
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) describeEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.event(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(event, true))
}

func (h *Handler) eventSchema(w http.ResponseWriter, r *http.Request) {
	event, err := h.event(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event.Binding().FullSchema())
}

func (h *Handler) emitEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.event(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	arg, err := readArg(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := event.Emit(r.Context(), arg); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event.Snapshot())
}
