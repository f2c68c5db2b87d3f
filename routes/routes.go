package routes

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wkalt/msgdef/catalog"
	"github.com/wkalt/msgdef/defstore"
	"github.com/wkalt/msgdef/registry"
	"github.com/wkalt/msgdef/util/httputil"
	"github.com/wkalt/msgdef/util/mw"
	"github.com/wkalt/msgdef/util/ros1msg"
)

/*
routes exposes the definition codec and the type registry over HTTP. All
request and response bodies are JSON.
*/

////////////////////////////////////////////////////////////////////////////////

// MakeRoutes builds the router for the msgdef service. Request metrics are
// registered with, and served from, metricsRegistry.
func MakeRoutes(
	reg *registry.Registry,
	defs *defstore.Store,
	cat catalog.Catalog,
	metricsRegistry *prometheus.Registry,
	allowedOrigins []string,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(
		mw.WithRequestID,
		mw.WithCORSAllowedOrigins(allowedOrigins),
		mw.WithMetrics(mw.NewMetrics(metricsRegistry)),
	)
	r.HandleFunc("/encode", newEncodeHandler()).Methods("POST", "OPTIONS")
	r.HandleFunc("/decode", newDecodeHandler()).Methods("POST", "OPTIONS")
	r.HandleFunc("/md5sum", newMD5SumHandler()).Methods("POST", "OPTIONS")

	r.HandleFunc("/types", newTypesHandler(reg)).Methods("GET")
	r.HandleFunc("/types/{name:.+}/definition", newTypeDefinitionHandler(reg)).Methods("GET")
	r.HandleFunc("/types/{name:.+}/schema", newTypeSchemaHandler(reg)).Methods("GET")
	r.HandleFunc("/types/{name:.+}/history", newTypeHistoryHandler(cat)).Methods("GET")
	r.HandleFunc("/types/{name:.+}", newRegisterTypeHandler(reg)).Methods("PUT", "OPTIONS")

	r.HandleFunc("/definitions", newPutDefinitionHandler(reg, defs, cat)).Methods("POST", "OPTIONS")
	r.HandleFunc("/definitions/{fingerprint}", newGetDefinitionHandler(defs)).Methods("GET")
	r.HandleFunc("/changes", newChangesHandler(cat)).Methods("GET")

	r.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

// writeDefinitionError maps errors from the codec, the registry and the
// definition store onto responses. Syntactic problems with the request are
// 400s; definitions that are well formed but cannot be resolved are 422s.
func writeDefinitionError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, ros1msg.ParseError{}),
		errors.Is(err, ros1msg.MalformedDefinitionError{}):
		httputil.BadRequest(ctx, w, "%s: %w", msg, err)
	case errors.Is(err, ros1msg.ErrUnknownType),
		errors.Is(err, ros1msg.CyclicDependencyError{}),
		errors.Is(err, defstore.InteropError{}):
		httputil.UnprocessableEntity(ctx, w, "%s: %w", msg, err)
	default:
		httputil.InternalServerError(ctx, w, "%s: %s", msg, err)
	}
}
