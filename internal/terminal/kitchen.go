package terminal

import (
	"errors"
	"net/http"

	"github.com/appetiteclub/pos/internal/kitchen"
	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
	"github.com/appetiteclub/pos/pkg/enums/station"
	"github.com/aquamarinepk/aqm"
)

type queueView struct {
	kitchen.Snapshot
	Elapsed map[string]int64 `json:"elapsed_seconds"`
}

func (h *Handler) viewQueue(r *http.Request) queueView {
	snap := h.deps.Kitchen.Snapshot()
	if name := r.URL.Query().Get("station"); name != "" {
		snap = h.deps.Kitchen.StationSnapshot(station.Of(name))
	}
	view := queueView{Snapshot: snap, Elapsed: make(map[string]int64)}
	if view.Selected == nil {
		view.Selected = []string{}
	}
	for _, g := range snap.Groups {
		for _, item := range g.Items {
			view.Elapsed[item.ID] = int64(h.deps.Kitchen.Elapsed(item).Seconds())
		}
	}
	return view
}

func respondKitchenError(w http.ResponseWriter, log aqm.Logger, err error, action string) {
	switch {
	case errors.Is(err, kitchen.ErrUnknownItem), errors.Is(err, kitchen.ErrUnknownGroup):
		aqm.RespondError(w, http.StatusNotFound, "Not on the kitchen queue")
	case errors.Is(err, kitchen.ErrNothingSelected):
		aqm.RespondError(w, http.StatusBadRequest, "No items selected")
	default:
		respondBackendError(w, log, err, action)
	}
}

// KitchenQueue answers with the last fetched queue. ?refresh=true refetches
// first and ?station= narrows it to one production station.
func (h *Handler) KitchenQueue(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.KitchenQueue")
	defer finish()
	log := h.log(r)

	if h.deps.Kitchen == nil {
		unavailable(w, "Kitchen")
		return
	}

	if r.URL.Query().Get("refresh") == "true" {
		if err := h.deps.Kitchen.Refresh(r.Context()); err != nil {
			respondKitchenError(w, log, err, "refresh kitchen queue")
			return
		}
	}
	aqm.Respond(w, http.StatusOK, h.viewQueue(r), nil)
}

func (h *Handler) KitchenSelection(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.KitchenSelection")
	defer finish()
	log := h.log(r)

	if h.deps.Kitchen == nil {
		unavailable(w, "Kitchen")
		return
	}

	var payload struct {
		ItemID string `json:"item_id"`
		Group  string `json:"group"`
		Clear  bool   `json:"clear"`
	}
	if !decode(w, r, &payload) {
		return
	}

	var err error
	switch {
	case payload.Clear:
		err = h.deps.Kitchen.ClearSelection()
	case payload.ItemID != "":
		_, err = h.deps.Kitchen.Toggle(payload.ItemID)
	case payload.Group != "":
		_, err = h.deps.Kitchen.SelectGroup(payload.Group)
	default:
		aqm.RespondError(w, http.StatusBadRequest, "Nothing to select")
		return
	}
	if err != nil {
		respondKitchenError(w, log, err, "update kitchen selection")
		return
	}
	aqm.Respond(w, http.StatusOK, h.viewQueue(r), nil)
}

func (h *Handler) KitchenTransition(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.KitchenTransition")
	defer finish()
	log := h.log(r)

	if h.deps.Kitchen == nil {
		unavailable(w, "Kitchen")
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &payload) {
		return
	}
	status := kitchenstatus.ByName(payload.Status)
	if status == nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid kitchen status")
		return
	}

	if err := h.deps.Kitchen.Transition(r.Context(), *status); err != nil {
		respondKitchenError(w, log, err, "move kitchen items")
		return
	}
	aqm.Respond(w, http.StatusOK, h.viewQueue(r), nil)
}

func (h *Handler) GetKitchenSettings(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetKitchenSettings")
	defer finish()
	log := h.log(r)

	if h.deps.Kitchen == nil {
		unavailable(w, "Kitchen")
		return
	}

	settings, err := h.deps.Kitchen.LoadCompileSettings(r.Context())
	if err != nil {
		respondBackendError(w, log, err, "load compile settings")
		return
	}
	aqm.Respond(w, http.StatusOK, settings, nil)
}

func (h *Handler) SaveKitchenSettings(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SaveKitchenSettings")
	defer finish()
	log := h.log(r)

	if h.deps.Kitchen == nil {
		unavailable(w, "Kitchen")
		return
	}

	var settings kitchen.CompileSettings
	if !decode(w, r, &settings) {
		return
	}

	saved, err := h.deps.Kitchen.SaveCompileSettings(r.Context(), settings)
	if err != nil {
		respondBackendError(w, log, err, "save compile settings")
		return
	}
	aqm.Respond(w, http.StatusOK, saved, nil)
}
