package routes

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wkalt/msgdef/catalog"
	"github.com/wkalt/msgdef/registry"
	"github.com/wkalt/msgdef/util/httputil"
	"github.com/wkalt/msgdef/util/log"
	"github.com/wkalt/msgdef/util/ros1msg"
	"github.com/wkalt/msgdef/util/schema"
)

// RegisterTypeRequest is the body of a type registration request.
type RegisterTypeRequest struct {
	Definitions []ros1msg.FieldDefinition `json:"definitions"`
}

// SchemaResponse is the resolved field tree of a type.
type SchemaResponse struct {
	Name   string        `json:"name"`
	Fields []SchemaField `json:"fields"`
}

// SchemaField is a field of a resolved type. Fields is populated for records
// and arrays of records.
type SchemaField struct {
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Fields []SchemaField `json:"fields,omitempty"`
}

func schemaFields(fields []schema.Field) []SchemaField {
	result := make([]SchemaField, 0, len(fields))
	for _, f := range fields {
		field := SchemaField{Name: f.Name, Type: f.Type.String()}
		t := f.Type
		for t.Array {
			t = *t.Items
		}
		if t.Record {
			field.Fields = schemaFields(t.Fields)
		}
		result = append(result, field)
	}
	return result
}

func newTypesHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(r.Context(), w, http.StatusOK, reg.Names())
	}
}

// requireType responds 404 and returns false if name is not registered.
func requireType(w http.ResponseWriter, r *http.Request, reg *registry.Registry, name string) bool {
	if _, _, err := reg.Resolve(r.Context(), name); err != nil {
		if errors.Is(err, registry.ErrTypeNotFound) {
			httputil.NotFound(r.Context(), w, "type %s not found", name)
			return false
		}
		httputil.InternalServerError(r.Context(), w, "failed to resolve type: %s", err)
		return false
	}
	return true
}

func newTypeDefinitionHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := mux.Vars(r)["name"]
		if !requireType(w, r, reg, name) {
			return
		}
		def, err := reg.Definition(ctx, name)
		if err != nil {
			writeDefinitionError(w, r, "failed to build definition", err)
			return
		}
		httputil.WriteJSON(ctx, w, http.StatusOK, def)
	}
}

func newTypeSchemaHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := mux.Vars(r)["name"]
		if !requireType(w, r, reg, name) {
			return
		}
		seq, err := reg.Flatten(ctx, name)
		if err != nil {
			writeDefinitionError(w, r, "failed to flatten type", err)
			return
		}
		s, err := ros1msg.ToSchema(name, seq)
		if err != nil {
			writeDefinitionError(w, r, "failed to resolve schema", err)
			return
		}
		httputil.WriteJSON(ctx, w, http.StatusOK, SchemaResponse{Name: s.Name, Fields: schemaFields(s.Fields)})
	}
}

func newRegisterTypeHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := mux.Vars(r)["name"]
		req := RegisterTypeRequest{}
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.BadRequest(ctx, w, "failed to decode request: %s", err)
			return
		}
		if err := reg.Register(name, req.Definitions); err != nil {
			writeDefinitionError(w, r, "failed to register type", err)
			return
		}
		log.Infow(ctx, "registered type", "type", name, "fields", len(req.Definitions))
		w.WriteHeader(http.StatusNoContent)
	}
}

func newTypeHistoryHandler(cat catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		name := mux.Vars(r)["name"]
		history, err := cat.History(ctx, name)
		if err != nil {
			if errors.Is(err, catalog.TypeNotFoundError{}) {
				httputil.NotFound(ctx, w, "no definitions of %s recorded", name)
				return
			}
			httputil.InternalServerError(ctx, w, "failed to get history: %s", err)
			return
		}
		httputil.WriteJSON(ctx, w, http.StatusOK, history)
	}
}
