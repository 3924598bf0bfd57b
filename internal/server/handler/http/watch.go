package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wishkeep/wishkeep/internal/models"
	"github.com/wishkeep/wishkeep/internal/watch"
)

// ChangeFeed is the subscription side of the watch hub.
type ChangeFeed interface {
	Subscribe() (<-chan string, func())
}

// WatchHandler streams collection snapshots over server-sent events. Each
// event carries the full current collection that changed; subscribers never
// receive diffs.
type WatchHandler struct {
	Feed  ChangeFeed
	Users UserService
	Items ItemService
	Event EventService
}

// Watch handles GET /api/watch. The initial snapshot of all three
// collections is sent immediately; afterwards every mutation re-delivers
// the collection it touched.
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := h.Feed.Subscribe()
	defer cancel()

	send := func(collection string) {
		payload, err := h.snapshot(r, collection)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", collection, payload)
		flusher.Flush()
	}

	for _, collection := range []string{watch.CollectionUsers, watch.CollectionItems, watch.CollectionEvent} {
		send(collection)
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case collection, ok := <-events:
			if !ok {
				return
			}
			send(collection)
		}
	}
}

// snapshot fetches and encodes the full current state of one collection.
func (h *WatchHandler) snapshot(r *http.Request, collection string) ([]byte, error) {
	ctx := r.Context()
	switch collection {
	case watch.CollectionUsers:
		users, err := h.Users.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]UserResponse, 0, len(users))
		for _, u := range users {
			out = append(out, UserResponse{Username: u.Username, Role: u.Role, Coming: u.Coming})
		}
		return json.Marshal(out)
	case watch.CollectionItems:
		items, err := h.Items.List(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.Item{}
		}
		return json.Marshal(items)
	case watch.CollectionEvent:
		details, err := h.Event.Details(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(EventResponse{Details: details})
	}
	return nil, fmt.Errorf("unknown collection %q", collection)
}
