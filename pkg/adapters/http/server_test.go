package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/toyrobot"
	httpadapter "github.com/aretw0/toyrobot/pkg/adapters/http"
	"github.com/aretw0/toyrobot/pkg/adapters/memory"
	"github.com/aretw0/toyrobot/pkg/observability"
	"github.com/aretw0/toyrobot/pkg/persistence/middleware"
	"github.com/aretw0/toyrobot/pkg/ports"
	"github.com/aretw0/toyrobot/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	Message string `json:"message"`
	State   struct {
		Location struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"location"`
		Direction string `json:"direction"`
	} `json:"state"`
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newClient(t *testing.T, opts ...httpadapter.Option) *client {
	t.Helper()
	eng, err := toyrobot.New()
	require.NoError(t, err)
	mgr := session.NewManager(memory.NewStore())
	return &client{t: t, handler: httpadapter.NewHandler(eng, mgr, opts...)}
}

func (c *client) do(method, target string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == httpadapter.DefaultCookie {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}
	return rec
}

func (c *client) outcome(method, target string) outcome {
	c.t.Helper()
	rec := c.do(method, target)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	var out outcome
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestPlace(t *testing.T) {
	c := newClient(t)

	out := c.outcome("POST", "/place?x=1&y=2&direction=north")
	assert.Equal(t, "Success", out.Message)
	assert.Equal(t, 1, out.State.Location.X)
	assert.Equal(t, 2, out.State.Location.Y)
	assert.Equal(t, "NORTH", out.State.Direction)
	require.NotNil(t, c.cookie, "place must start a session")
	assert.True(t, c.cookie.HttpOnly)

	// Placing again keeps the session.
	first := c.cookie.Value
	out = c.outcome("POST", "/place?x=3&y=3")
	assert.Equal(t, "EAST", out.State.Direction, "direction defaults to EAST")
	assert.Equal(t, first, c.cookie.Value)
}

func TestPlace_Invalid(t *testing.T) {
	tests := []struct {
		target string
		msg    string
	}{
		{"/place?y=1&direction=NORTH", "Location Parameters invalid"},
		{"/place?x=1&direction=NORTH", "Location Parameters invalid"},
		{"/place?x=one&y=1", "Location Parameters invalid"},
		{"/place?x=1&y=1&direction=UP", "Direction parameter invalid"},
		{"/place?x=5&y=0&direction=NORTH", "Bad Request"},
		{"/place?x=-1&y=0&direction=NORTH", "Bad Request"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			c := newClient(t)
			rec := c.do("POST", tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.msg, message(t, rec))
			assert.Nil(t, c.cookie, "failed place must not start a session")
		})
	}
}

func TestCommands_WithoutSession(t *testing.T) {
	c := newClient(t)
	for _, target := range []string{"/move", "/left", "/right"} {
		rec := c.do("POST", target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "Bad Request", message(t, rec), target)
	}
	rec := c.do("GET", "/report")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommands_Flow(t *testing.T) {
	c := newClient(t)
	c.outcome("POST", "/place?x=0&y=0&direction=NORTH")

	out := c.outcome("POST", "/move")
	assert.Equal(t, "Moved", out.Message)
	assert.Equal(t, 1, out.State.Location.Y)

	c.outcome("POST", "/place?x=0&y=4&direction=NORTH")
	out = c.outcome("POST", "/move")
	assert.Equal(t, "Ignored", out.Message)
	assert.Equal(t, 4, out.State.Location.Y)

	out = c.outcome("POST", "/left")
	assert.Equal(t, "Success", out.Message)
	assert.Equal(t, "WEST", out.State.Direction)

	out = c.outcome("POST", "/right")
	assert.Equal(t, "NORTH", out.State.Direction)

	rec := c.do("GET", "/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"location":[0,4],"direction":"NORTH","state":{"location":{"x":0,"y":4},"direction":"NORTH"}}`,
		rec.Body.String())
}

func TestCommands_StateFallback(t *testing.T) {
	c := newClient(t)

	out := c.outcome("POST", "/move?state=12NORTH")
	assert.Equal(t, "Moved", out.Message)
	assert.Equal(t, 1, out.State.Location.X)
	assert.Equal(t, 3, out.State.Location.Y)
	require.NotNil(t, c.cookie, "fallback state starts a session")

	// The session now wins over the parameter.
	out = c.outcome("POST", "/right?state=00SOUTH")
	assert.Equal(t, "EAST", out.State.Direction)
	assert.Equal(t, 3, out.State.Location.Y)

	rec := newClient(t).do("GET", "/report?state=2,3,west")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"location":[2,3]`)

	for _, bad := range []string{"99NORTH", "1,2,UP", "x"} {
		rec := newClient(t).do("POST", "/move?state="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestSessionCookie_OnlyIssuedIDs(t *testing.T) {
	eng, err := toyrobot.New()
	require.NoError(t, err)
	store := memory.NewStore()
	c := &client{t: t, handler: httpadapter.NewHandler(eng, session.NewManager(store))}

	for _, forged := range []string{"index", "lock:victim", "../escape"} {
		c.cookie = &http.Cookie{Name: httpadapter.DefaultCookie, Value: forged}
		out := c.outcome("POST", "/move?state=12NORTH")
		assert.Equal(t, "Moved", out.Message, forged)
		require.NotNil(t, c.cookie, forged)
		assert.True(t, session.ValidID(c.cookie.Value), "a fresh session replaces %q", forged)

		c.cookie = &http.Cookie{Name: httpadapter.DefaultCookie, Value: forged}
		c.outcome("POST", "/place?x=0&y=0&direction=NORTH")
		assert.True(t, session.ValidID(c.cookie.Value), forged)

		c.cookie = &http.Cookie{Name: httpadapter.DefaultCookie, Value: forged}
		assert.Equal(t, http.StatusBadRequest, c.do("POST", "/move").Code, forged)
	}

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 6)
	for _, id := range ids {
		assert.True(t, session.ValidID(id), id)
	}
}

func TestSessionCookie_SealedWithRetiredKey(t *testing.T) {
	eng, err := toyrobot.New()
	require.NoError(t, err)
	underlying := memory.NewStore()
	handler := func(secret string) http.Handler {
		mw, err := middleware.NewEncryptionMiddleware(middleware.ConfigFromSecrets(secret))
		require.NoError(t, err)
		var store ports.StateStore = middleware.Chain(underlying, mw)
		return httpadapter.NewHandler(eng, session.NewManager(store))
	}

	c := &client{t: t, handler: handler("old")}
	c.outcome("POST", "/place?x=2&y=2&direction=EAST")
	cookie := c.cookie

	// SECRET_KEY rotated without keeping the old one.
	c.handler = handler("new")
	for _, path := range []string{"/move", "/left", "/right"} {
		rec := c.do("POST", path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "Bad Request", message(t, rec), path)
	}
	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/report").Code)

	out := c.outcome("POST", "/place?x=0&y=0&direction=NORTH")
	assert.Equal(t, "Success", out.Message)
	assert.Equal(t, cookie.Value, c.cookie.Value, "the session is reused with a new state")

	out = c.outcome("POST", "/move")
	assert.Equal(t, "Moved", out.Message)
	assert.Equal(t, 1, out.State.Location.Y)
}

func TestDeleteSession(t *testing.T) {
	c := newClient(t)
	c.outcome("POST", "/place?x=0&y=0&direction=NORTH")
	stale := c.cookie

	rec := c.do("DELETE", "/session")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, c.cookie)

	c.cookie = stale
	assert.Equal(t, http.StatusBadRequest, c.do("POST", "/move").Code)
}

func TestMetadataEndpoints(t *testing.T) {
	c := newClient(t)

	rec := c.do("GET", "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello from toyrobot", message(t, rec))

	rec = c.do("GET", "/health")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = c.do("GET", "/info")
	var info map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "toyrobot-http", info["app"])
	assert.Equal(t, strings.TrimSpace(toyrobot.Version), info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	rec = c.do("GET", "/openapi.yaml")
	assert.Equal(t, "text/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	rec = c.do("OPTIONS", "/place")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusNotFound, c.do("GET", "/metrics").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := observability.NewMetrics(nil)
	eng, err := toyrobot.New(toyrobot.WithLifecycleHooks(m.Hooks(nil)))
	require.NoError(t, err)
	c := &client{t: t, handler: httpadapter.NewHandler(eng, session.NewManager(memory.NewStore()),
		httpadapter.WithMetrics(m.Handler()))}

	c.outcome("POST", "/place?x=0&y=0&direction=NORTH")
	rec := c.do("GET", "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `toyrobot_commands_total{command="PLACE",outcome="success"} 1`)
}

func TestOpenAPI_DocumentsEveryRoute(t *testing.T) {
	spec, err := httpadapter.GetSwagger()
	require.NoError(t, err)

	var documented []string
	for path, item := range spec.Paths.Map() {
		for method := range item.Operations() {
			documented = append(documented, method+" "+path)
		}
	}

	eng, err := toyrobot.New()
	require.NoError(t, err)
	router := httpadapter.NewServer(eng, session.NewManager(memory.NewStore())).Routes()

	var routed []string
	require.NoError(t, chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route != "/openapi.yaml" {
			routed = append(routed, method+" "+route)
		}
		return nil
	}))

	sort.Strings(documented)
	sort.Strings(routed)
	assert.Equal(t, documented, routed)
}

func TestSubscribeEvents(t *testing.T) {
	eng, err := toyrobot.New()
	require.NoError(t, err)
	srv := httptest.NewServer(httpadapter.NewHandler(eng, session.NewManager(memory.NewStore())))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := session.NewID()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?session_id="+id+"&watch=location", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if l := lines.Text(); strings.HasPrefix(l, "data: ") {
				return strings.TrimPrefix(l, "data: ")
			}
		}
		return ""
	}
	require.Equal(t, "connected", next())

	send := func(method, path string) {
		r, err := http.NewRequest(method, srv.URL+path, nil)
		require.NoError(t, err)
		r.AddCookie(&http.Cookie{Name: httpadapter.DefaultCookie, Value: id})
		res, err := srv.Client().Do(r)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
	}

	send("POST", "/place?x=1&y=1&direction=NORTH")
	assert.JSONEq(t, `{"session_id":"`+id+`","location":{"x":1,"y":1},"direction":"NORTH"}`, next())

	// Rotations are filtered out by watch=location.
	send("POST", "/left")
	send("POST", "/move")
	assert.JSONEq(t, `{"session_id":"`+id+`","location":{"x":0,"y":1}}`, next())
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	rec := newClient(t).do("GET", "/events")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = newClient(t).do("GET", "/events?session_id=index")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
