package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/relvacode/iso8601"
	"github.com/wkalt/msgdef/catalog"
	"github.com/wkalt/msgdef/defstore"
	"github.com/wkalt/msgdef/registry"
	"github.com/wkalt/msgdef/util"
	"github.com/wkalt/msgdef/util/httputil"
	"github.com/wkalt/msgdef/util/log"
	"github.com/wkalt/msgdef/util/ros1msg"
)

// PutDefinitionRequest is the body of a definition submission.
type PutDefinitionRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func (req PutDefinitionRequest) validate() error {
	if req.Name == "" {
		return errors.New("missing name")
	}
	if req.Text == "" {
		return errors.New("missing text")
	}
	return nil
}

// PutDefinitionResponse is the body of a definition submission response.
// Created is true if the definition had not been seen for the type before.
type PutDefinitionResponse struct {
	defstore.Envelope
	Created bool `json:"created"`
}

// TypeChanges lists the new definitions of a single type.
type TypeChanges struct {
	Name        string          `json:"name"`
	Definitions []catalog.Entry `json:"definitions"`
}

func newPutDefinitionHandler(
	reg *registry.Registry,
	defs *defstore.Store,
	cat catalog.Catalog,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req := PutDefinitionRequest{}
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(ctx, w, "failed to decode request: %s", err)
			return
		}
		if err := req.validate(); err != nil {
			httputil.BadRequest(ctx, w, "invalid request: %s", err)
			return
		}
		envelope, err := defs.Put(ctx, req.Name, req.Text)
		if err != nil {
			writeDefinitionError(w, r, "failed to store definition", err)
			return
		}
		created, err := cat.Record(ctx, envelope.Name, envelope.Fingerprint, envelope.MD5Sum, time.Now())
		if err != nil {
			httputil.InternalServerError(ctx, w, "failed to record definition: %s", err)
			return
		}
		seq, err := ros1msg.Decode(envelope.Data)
		if err != nil {
			httputil.InternalServerError(ctx, w, "failed to decode stored definition: %s", err)
			return
		}
		if err := reg.Import(envelope.Name, seq); err != nil {
			httputil.InternalServerError(ctx, w, "failed to import definition: %s", err)
			return
		}
		log.Infow(ctx, "definition submitted",
			"type", envelope.Name, "fingerprint", envelope.Fingerprint, "created", created)
		code := util.When(created, http.StatusCreated, http.StatusOK)
		httputil.WriteJSON(ctx, w, code, PutDefinitionResponse{Envelope: *envelope, Created: created})
	}
}

func newGetDefinitionHandler(defs *defstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		fingerprint := mux.Vars(r)["fingerprint"]
		envelope, err := defs.Get(ctx, fingerprint)
		if err != nil {
			if errors.Is(err, defstore.ErrDefinitionNotFound) {
				httputil.NotFound(ctx, w, "definition %s not found", fingerprint)
				return
			}
			httputil.InternalServerError(ctx, w, "failed to get definition: %s", err)
			return
		}
		httputil.WriteJSON(ctx, w, http.StatusOK, envelope)
	}
}

func newChangesHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		param := r.URL.Query().Get("since")
		if param == "" {
			httputil.BadRequest(ctx, w, "missing since parameter")
			return
		}
		since, err := iso8601.ParseString(param)
		if err != nil {
			httputil.BadRequest(ctx, w, "invalid since parameter: %s", err)
			return
		}
		changes, err := cat.ChangedSince(ctx, since)
		if err != nil {
			httputil.InternalServerError(ctx, w, "failed to get changes: %s", err)
			return
		}
		response := make([]TypeChanges, 0, len(changes))
		for _, name := range util.Okeys(changes) {
			response = append(response, TypeChanges{Name: name, Definitions: changes[name]})
		}
		httputil.WriteJSON(ctx, w, http.StatusOK, response)
	}
}
