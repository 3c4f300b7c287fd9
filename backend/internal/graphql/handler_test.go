package graphql

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, maxBody int64) (*gin.Engine, *socialGraphFixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := newSocialGraph(t)
	h, err := NewHandler(s.executor, maxBody)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/graphql", h.ServeGraphQL)
	return r, s
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerRejectsMalformedBodies(t *testing.T) {
	r, _ := newTestRouter(t, 0)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"array", `[]`},
		{"neither key", `{"variables": {}}`},
		{"both keys", `{"query": "{ users { id } }", "mutation": "mutation { x }"}`},
		{"extra key", `{"query": "{ users { id } }", "extra": true}`},
		{"query not a string", `{"query": 5}`},
		{"variables not an object", `{"query": "{ users { id } }", "variables": [1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandlerRejectsOversizedBody(t *testing.T) {
	r, _ := newTestRouter(t, 16)
	w := post(r, `{"query": "{ users { id firstName } }"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerExecutesQueryAndMutation(t *testing.T) {
	r, s := newTestRouter(t, 0)
	a := s.user(t, "a")
	b := s.user(t, "b")

	body, _ := json.Marshal(map[string]interface{}{
		"mutation":  `mutation($id: ID!, $userId: ID!) { subscribedToUser(id: $id, userId: $userId) { ... on User { subscribedToUserIds } } }`,
		"variables": map[string]interface{}{"id": a.ID, "userId": b.ID},
	})
	w := post(r, string(body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			SubscribedToUser struct {
				SubscribedToUserIds []string `json:"subscribedToUserIds"`
			} `json:"subscribedToUser"`
		} `json:"data"`
		Errors []Error `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Errors)
	assert.Equal(t, []string{b.ID}, resp.Data.SubscribedToUser.SubscribedToUserIds)

	w = post(r, `{"query": "{ memberTypes { id monthPostsLimit } }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"memberTypes":[{"id":"basic","monthPostsLimit":20},{"id":"business","monthPostsLimit":100}]}}`, w.Body.String())
}

func TestHandlerReportsGraphQLErrorsInBody(t *testing.T) {
	r, _ := newTestRouter(t, 0)
	w := post(r, `{"query": "{ unknownField }"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Errors)
	assert.Nil(t, resp.Data)
}
