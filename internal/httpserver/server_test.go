package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
	"github.com/OriginOfChaos/Bearathon5/internal/session"
	"github.com/OriginOfChaos/Bearathon5/internal/store"
)

type testServer struct {
	srv  *Server
	sess *session.Session
	auth *Launcher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	labels := make([]string, 30)
	for i := range labels {
		labels[i] = fmt.Sprintf("objective %02d", i)
	}
	sess, err := session.Create(context.Background(), store.NewMemoryStore(),
		bingo.Config{Size: 5, Featured: true}, labels, []string{"Mew", "Eevee", "Pikachu"}, bingo.WithRand(bingo.NewRand(4)))
	require.NoError(t, err)
	auth, err := NewLauncher("test-secret")
	require.NoError(t, err)
	return &testServer{srv: New(sess, auth), sess: sess, auth: auth}
}

// do sends an authorized request and returns the recorder.
func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer "+ts.auth.Token())
	rec := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) bingo.View {
	t.Helper()
	var v bingo.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func errorName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)
	other, err := NewLauncher("another-secret")
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ts.srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/board", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("foreign token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
		req.Header.Set("Authorization", "Bearer "+other.Token())
		rec := httptest.NewRecorder()
		ts.srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "bingo",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		})
		ss, err := tok.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		require.Error(t, ts.auth.Verify(ss))
	})

	t.Run("query token sets cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ts.srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token="+ts.auth.Token(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "<title>Bingo</title>")

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, cookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)

		req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
		req.AddCookie(cookies[0])
		rec = httptest.NewRecorder()
		ts.srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad query token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ts.srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token=nope", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLauncherURL(t *testing.T) {
	l, err := NewLauncher("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(l.URL("127.0.0.1:5175"), "http://127.0.0.1:5175/?token="))
	require.NoError(t, l.Verify(l.Token()))
}

func TestBoard(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	v := decodeView(t, rec)
	assert.Equal(t, 5, v.Size)
	assert.Len(t, v.Cells, 5)
	assert.Equal(t, ts.sess.View().ID, v.ID)
}

func TestToggle(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/api/cells/1/3/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res toggleRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, bingo.StatusComplete, res.Status)
	assert.True(t, res.Board.Cells[1][3].Done())
	assert.Equal(t, 1, res.Board.Completed)
}

func TestReplace(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/cells/0/0/replace", `{"label":"custom goal"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "custom goal", decodeView(t, rec).Cells[0][0].Content)

	before := ts.sess.View().Cells[0][0].Content
	rec = ts.do(http.MethodPost, "/api/cells/0/0/replace", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, before, decodeView(t, rec).Cells[0][0].Content)

	rec = ts.do(http.MethodPost, "/api/cells/0/0/replace", `{"random":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFeatured(t *testing.T) {
	ts := newTestServer(t)
	prev := ts.sess.View().CurrentFeatured

	rec := ts.do(http.MethodPost, "/api/featured", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, prev, decodeView(t, rec).CurrentFeatured)

	rec = ts.do(http.MethodPost, "/api/featured", `{"label":"Pikachu"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pikachu", decodeView(t, rec).CurrentFeatured)

	rec = ts.do(http.MethodGet, "/api/featured", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"featured":["Mew","Eevee","Pikachu"]}`, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name, method, path, body string
		code                     int
		errName                  string
	}{
		{"out of range", http.MethodPost, "/api/cells/5/0/toggle", "", http.StatusBadRequest, "index_out_of_range"},
		{"not a number", http.MethodPost, "/api/cells/a/0/toggle", "", http.StatusBadRequest, "bad_index"},
		{"unknown featured", http.MethodPost, "/api/featured", `{"label":"Missingno"}`, http.StatusBadRequest, "unknown_featured"},
		{"bad json", http.MethodPost, "/api/objectives", `{`, http.StatusBadRequest, "bad_json"},
		{"blank objective", http.MethodPost, "/api/objectives", `{"label":" "}`, http.StatusBadRequest, "invalid_label"},
		{"nothing to undo", http.MethodPost, "/api/undo", "", http.StatusConflict, "nothing_to_undo"},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.errName, errorName(t, rec))
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: x", bingo.ErrConfiguration), http.StatusBadRequest},
		{fmt.Errorf("%w: x", bingo.ErrDuplicateLabel), http.StatusBadRequest},
		{fmt.Errorf("%w: x", bingo.ErrEmptyCatalog), http.StatusConflict},
		{fmt.Errorf("%w: x", bingo.ErrInsufficientObjectives), http.StatusConflict},
		{fmt.Errorf("%w: x", bingo.ErrObjectiveInUse), http.StatusConflict},
		{session.ErrNothingToUndo, http.StatusConflict},
		{bingo.ErrDeserialization, http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		code, _ := errorCode(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

func TestUndoAndBoardOps(t *testing.T) {
	ts := newTestServer(t)
	before := ts.sess.View()

	for _, op := range []string{"shuffle", "wipe", "reset"} {
		rec := ts.do(http.MethodPost, "/api/"+op, "")
		require.Equal(t, http.StatusOK, rec.Code, op)
	}
	require.NotEqual(t, before.Cells, ts.sess.View().Cells)

	rec := ts.do(http.MethodPost, "/api/undo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ts.sess.CanUndo())
}

func TestObjectives(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/objectives", `{"label":"find a shiny"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res objectiveRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Changed)
	assert.Len(t, res.Objectives, 31)

	onBoard := ts.sess.View().Cells[0][0].Content
	rec = ts.do(http.MethodPost, "/api/objectives/remove", fmt.Sprintf(`{"label":%q}`, onBoard))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "objective_in_use", errorName(t, rec))

	rec = ts.do(http.MethodPost, "/api/objectives/remove", `{"label":"find a shiny"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Changed)

	rec = ts.do(http.MethodGet, "/api/objectives", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Objectives, 30)

	rec = ts.do(http.MethodGet, "/api/objectives/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	lines := strings.Split(rec.Body.String(), "\n")
	assert.Len(t, lines, 30)
	assert.Equal(t, "objective 00", lines[0])
}
