package routes

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/catalog"
	"github.com/wkalt/msgdef/defstore"
	"github.com/wkalt/msgdef/registry"
	"github.com/wkalt/msgdef/storage"
	"github.com/wkalt/msgdef/util/testutils"
)

// MakeTestRoutes serves the routes over a registry loaded with the common
// message types, an in-memory definition store and a sqlite catalog. It
// returns the server URL and a function to stop it.
func MakeTestRoutes(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	root := t.TempDir()
	testutils.WriteFiles(t, root, testutils.CommonMessages())
	reg := registry.New()
	_, err := reg.LoadDirectory(ctx, root)
	require.NoError(t, err)

	defs, err := defstore.NewStore(storage.NewMemStore(), "definitions", 100)
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	cat, err := catalog.NewSQLCatalog(db)
	require.NoError(t, err)

	handler := MakeRoutes(reg, defs, cat, prometheus.NewRegistry(), []string{"*"})
	srv := httptest.NewServer(handler)
	return srv.URL, func() {
		srv.Close()
		db.Close()
	}
}
