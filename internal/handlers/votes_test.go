package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripwisego/feature-board/backend/internal/handlers"
	"github.com/tripwisego/feature-board/backend/internal/models"
	"github.com/tripwisego/feature-board/backend/internal/server"
	"github.com/tripwisego/feature-board/backend/internal/store/memory"
	"github.com/tripwisego/feature-board/backend/internal/voting"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	engine := voting.NewEngine(store)
	handler := handlers.NewHandler(nil, engine)

	return server.New(nil, handler).RegisterRoutes(), store
}

func seedActiveFeature(store *memory.Store, id string) {
	store.PutFeature(&models.Feature{
		ID:          id,
		Title:       "Offline maps",
		Description: "Download maps for offline navigation",
		Status:      models.StatusActive,
	})
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestVoteEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	seedActiveFeature(store, "feature-1")

	w := doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"feature-1","voteType":"up","userId":"alice"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "feature-1", data["featureId"])
	assert.Equal(t, "up", data["voteType"])
	assert.Equal(t, "alice", data["userId"])

	assert.Equal(t, 1, store.Feature("feature-1").Votes)
}

func TestVoteEndpointMissingFields(t *testing.T) {
	router, store := newTestRouter(t)
	seedActiveFeature(store, "feature-1")

	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing user", `{"featureId":"feature-1","voteType":"up"}`},
		{"missing vote type", `{"featureId":"feature-1","userId":"alice"}`},
		{"missing feature", `{"voteType":"up","userId":"alice"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/vote", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, decodeBody(t, w)["success"])
		})
	}
}

func TestVoteEndpointInvalidVoteType(t *testing.T) {
	router, store := newTestRouter(t)
	seedActiveFeature(store, "feature-1")

	w := doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"feature-1","voteType":"sideways","userId":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "voteType")
}

func TestVoteEndpointUnknownFeature(t *testing.T) {
	router, _ := newTestRouter(t)

	// Deliberately 400, not 404: feature lookup failures are reported as
	// generic vote failures.
	w := doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"ghost","voteType":"up","userId":"alice"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestVoteEndpointDuplicate(t *testing.T) {
	router, store := newTestRouter(t)
	seedActiveFeature(store, "feature-1")

	body := `{"featureId":"feature-1","voteType":"up","userId":"alice"}`

	first := doJSON(router, http.MethodPost, "/api/vote", body)
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(router, http.MethodPost, "/api/vote", body)
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, false, decodeBody(t, second)["success"])

	assert.Equal(t, 1, store.Feature("feature-1").Votes)
}

func TestVoteEndpointVoteChange(t *testing.T) {
	router, store := newTestRouter(t)
	seedActiveFeature(store, "feature-1")

	up := doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"feature-1","voteType":"up","userId":"alice"}`)
	require.Equal(t, http.StatusOK, up.Code)
	require.Equal(t, 1, store.Feature("feature-1").Votes)

	down := doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"feature-1","voteType":"down","userId":"alice"}`)
	require.Equal(t, http.StatusOK, down.Code)
	assert.Equal(t, 0, store.Feature("feature-1").Votes)
}

func TestRetractVoteEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	seedActiveFeature(store, "feature-1")

	vote := doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"feature-1","voteType":"up","userId":"alice"}`)
	require.Equal(t, http.StatusOK, vote.Code)

	retract := doJSON(router, http.MethodDelete, "/api/vote",
		`{"featureId":"feature-1","userId":"alice"}`)
	require.Equal(t, http.StatusOK, retract.Code)
	assert.Equal(t, 0, store.Feature("feature-1").Votes)

	again := doJSON(router, http.MethodDelete, "/api/vote",
		`{"featureId":"feature-1","userId":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, again.Code)
}

func TestGetUserVotesEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	seedActiveFeature(store, "feature-1")
	seedActiveFeature(store, "feature-2")

	require.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"feature-1","voteType":"up","userId":"alice"}`).Code)
	require.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"feature-2","voteType":"down","userId":"alice"}`).Code)

	w := doJSON(router, http.MethodGet, "/api/users/alice/votes", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	votes := body["data"].([]any)
	require.Len(t, votes, 2)

	entry := votes[0].(map[string]any)
	assert.Contains(t, entry, "featureId")
	assert.Contains(t, entry, "voteType")
	assert.Contains(t, entry, "timestamp")
}

func TestStatisticsEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	seedActiveFeature(store, "feature-1")

	require.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"feature-1","voteType":"up","userId":"alice"}`).Code)
	require.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/api/vote",
		`{"featureId":"feature-1","voteType":"down","userId":"bob"}`).Code)

	w := doJSON(router, http.MethodGet, "/api/statistics", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	votingStats := data["voting"].(map[string]any)
	assert.EqualValues(t, 2, votingStats["totalVotes"])
	assert.EqualValues(t, 1, votingStats["upVotes"])
	assert.EqualValues(t, 1, votingStats["downVotes"])
	assert.Contains(t, data, "timestamp")
}

func TestPreflightAllowsCrossOrigin(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/vote", nil)
	req.Header.Set("Origin", "https://board.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
