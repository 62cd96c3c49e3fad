package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/ValentinKolb/flatmsg/lib/marshal"
	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/ValentinKolb/flatmsg/rpc/serializer"
	"github.com/ValentinKolb/flatmsg/rpc/server"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree(t *testing.T) {
	t.Run("Scalar", func(t *testing.T) {
		msg := urlmsg.New()
		msg.Set(urlmsg.RootKey, "42")
		assert.Equal(t, "42", Tree(msg))
	})

	t.Run("Nested", func(t *testing.T) {
		msg, err := urlmsg.Parse("name=desk&tags[0]=oak&tags[1]=natural&stock[new+york]=3&dimensions.unit=cm", 0)
		require.NoError(t, err)

		assert.Equal(t, map[string]any{
			"name":       "desk",
			"tags":       []any{"oak", "natural"},
			"stock":      map[string]any{"new york": "3"},
			"dimensions": map[string]any{"unit": "cm"},
		}, Tree(msg))
	})

	t.Run("SparseIndices", func(t *testing.T) {
		msg, err := urlmsg.Parse("[0]=a&[2]=c", 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"0": "a", "2": "c"}, Tree(msg))
	})

	t.Run("RootArray", func(t *testing.T) {
		msg, err := urlmsg.Parse("[0]=a&[1]=b", 0)
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b"}, Tree(msg))
	})

	t.Run("TypeName", func(t *testing.T) {
		msg := urlmsg.New()
		msg.Set("shape$T$", "circle")
		msg.Set("shape.radius", "2")
		assert.Equal(t, map[string]any{
			"shape": map[string]any{typeField: "circle", "radius": "2"},
		}, Tree(msg))
	})
}

// --------------------------------------------------------------------------
// Bridge
// --------------------------------------------------------------------------

func newRouter(t *testing.T, config common.ServerConfig) *gin.Engine {
	t.Helper()
	e := marshal.New(marshal.Options{})
	adapter, err := server.NewCatalogServerAdapter(e, catalog.NewMemoryStore(e))
	require.NoError(t, err)

	s := serializer.NewBinarySerializer()
	tr := NewRESTServerTransport(s).(*restServerTransport)
	srv := server.NewRPCServer(config, tr, s, adapter)

	tr.config = config
	tr.RegisterHandler(srv.Handle)
	return tr.Router()
}

func do(t *testing.T, router http.Handler, req *http.Request) (int, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestBridgeCatalog(t *testing.T) {
	router := newRouter(t, common.ServerConfig{})
	id := uuid.New()

	form := "id=" + id.String() + "&name=lamp&price=9.5&status=active&tags[0]=a"
	req := httptest.NewRequest(http.MethodPost, "/call/catalog.put", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	code, resp := do(t, router, req)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, common.CmdResult, resp.Command)

	code, resp = do(t, router, httptest.NewRequest(http.MethodGet, "/call/catalog.get?id="+id.String(), nil))
	require.Equal(t, http.StatusOK, code, resp.Error)

	value, ok := resp.Value.(map[string]any)
	require.True(t, ok, "%T", resp.Value)
	assert.Equal(t, "true", value["found"])
	item := value["item"].(map[string]any)
	assert.Equal(t, "lamp", item["name"])
	assert.Equal(t, "9.5", item["price"])
	assert.Equal(t, []any{"a"}, item["tags"])
	assert.NotEmpty(t, resp.Pairs)
}

func TestBridgeErrors(t *testing.T) {
	router := newRouter(t, common.ServerConfig{})

	t.Run("MissingMethod", func(t *testing.T) {
		code, resp := do(t, router, httptest.NewRequest(http.MethodGet, "/call/catalog.rename", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, common.CmdError, resp.Command)
		assert.Contains(t, resp.Error, "missing method")
	})

	t.Run("ErrorCode", func(t *testing.T) {
		code, resp := do(t, router, httptest.NewRequest(http.MethodPost, "/call/catalog.put?name=nameless", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, resp.Pairs, Pair{Key: common.CodeKey, Value: "2"})
	})

	t.Run("DuplicateKey", func(t *testing.T) {
		code, resp := do(t, router, httptest.NewRequest(http.MethodGet, "/call/catalog.get?id=1&id=2", nil))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestBridgeRateLimit(t *testing.T) {
	router := newRouter(t, common.ServerConfig{RateLimit: 0.001, RateBurst: 1})

	code, _ := do(t, router, httptest.NewRequest(http.MethodGet, "/call/catalog.list", nil))
	assert.Equal(t, http.StatusOK, code)

	code, resp := do(t, router, httptest.NewRequest(http.MethodGet, "/call/catalog.list", nil))
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate limit exceeded", resp.Error)
}

func TestBridgeMetrics(t *testing.T) {
	router := newRouter(t, common.ServerConfig{})
	do(t, router, httptest.NewRequest(http.MethodGet, "/call/catalog.list", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flatmsg_rest_requests_total")
}
