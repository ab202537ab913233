package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/codejourney/adapters/persistence"
	"github.com/khoahotran/codejourney/internal/application/service"
	lookupUC "github.com/khoahotran/codejourney/internal/application/usecase/lookup"
	profileUC "github.com/khoahotran/codejourney/internal/application/usecase/profile"
	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/pkg/apperror"
	"github.com/khoahotran/codejourney/pkg/auth"
	"github.com/khoahotran/codejourney/pkg/logger"
)

type stubFetcher struct{}

func (stubFetcher) FetchStats(_ context.Context, p platform.Platform, handle string) (json.RawMessage, error) {
	if handle == "nobody" {
		return nil, apperror.NewNotFound(p.Name+" user", handle)
	}
	return json.RawMessage(`{"name":"Gennady","currentRating":3500,"countryFlag":"https://flags/by.svg"}`), nil
}

type staticLookups struct {
	lookups []*lookup.Lookup
}

func (r *staticLookups) Save(context.Context, *lookup.Lookup) error { return nil }

func (r *staticLookups) SetSnapshotURL(context.Context, uuid.UUID, string) error { return nil }

func (r *staticLookups) List(context.Context, lookup.Filter) ([]*lookup.Lookup, error) {
	return r.lookups, nil
}

type apiFixture struct {
	router *gin.Engine
	uc     *profileUC.ProfileUseCase
	hub    *SessionHub
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	catalog := platform.DefaultCatalog()
	hub := NewSessionHub(log)
	uc := profileUC.NewProfileUseCase(
		persistence.NewMemorySessionRepo(),
		catalog,
		stubFetcher{},
		service.NopPublisher{},
		hub,
		service.NewManualScheduler(),
		log,
		profileUC.Options{},
	)
	t.Cleanup(func() {
		hub.Close()
		uc.Close()
	})

	imageURL := "https://leetcard.jacoblin.cool/tourist?theme=dark&font=Ubuntu&cache=14400&ext=contest"
	history := &staticLookups{lookups: []*lookup.Lookup{{
		ID: uuid.New(), Platform: platform.LeetCode, Kind: platform.KindImage, Handle: "tourist",
		ImageURL: &imageURL, FetchedAt: time.Now(),
	}}}

	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	router := gin.New()
	RegisterRoutes(router, Handlers{
		Profile: NewProfileHandler(uc, jwtSvc, log),
		History: NewHistoryHandler(
			lookupUC.NewListLookupsUseCase(history, catalog, log),
			lookupUC.NewRSSUseCase(history, catalog, "http://localhost:8080", log),
			catalog, log,
		),
		Hub: hub,
	}, uc, jwtSvc, log)

	return &apiFixture{router: router, uc: uc, hub: hub}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *apiFixture) createSession(t *testing.T) string {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/api/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp CreateSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, platform.ThemeDark, resp.Session.Theme)
	return resp.Token
}

func decodeSession(t *testing.T, rr *httptest.ResponseRecorder) SessionDTO {
	t.Helper()
	var dto SessionDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	return dto
}

func TestAPI_SessionFlow(t *testing.T) {
	f := newAPIFixture(t)
	token := f.createSession(t)

	rr := f.do(t, http.MethodPost, "/api/session/platforms/leetcode/fetch", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Please enter a LeetCode username", decodeSession(t, rr).Error)

	rr = f.do(t, http.MethodPut, "/api/session/handle", token, gin.H{"handle": "tourist"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "tourist", decodeSession(t, rr).Handle)

	rr = f.do(t, http.MethodPost, "/api/session/platforms/leetcode/fetch", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dto := decodeSession(t, rr)
	assert.Empty(t, dto.Error)
	assert.NotEmpty(t, dto.LastUpdated)
	assert.True(t, dto.Loading[platform.LeetCode])
	require.Len(t, dto.Cards, 1)
	assert.Equal(t, "https://leetcard.jacoblin.cool/tourist?theme=dark&font=Ubuntu&cache=14400&ext=contest", dto.Cards[0].ImageURL)

	rr = f.do(t, http.MethodPost, "/api/session/theme/toggle", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dto = decodeSession(t, rr)
	assert.Equal(t, platform.ThemeLight, dto.Theme)
	assert.Contains(t, dto.Cards[0].ImageURL, "theme=light")

	rr = f.do(t, http.MethodPost, "/api/session/platforms/codechef/fetch", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dto = decodeSession(t, rr)
	require.Len(t, dto.Cards, 2)
	assert.Equal(t, platform.CodeChef, dto.Cards[1].Platform)
	assert.Equal(t, "https://flags/by.svg", dto.Cards[1].FlagURL)

	rr = f.do(t, http.MethodGet, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeSession(t, rr).Cards, 2)
}

func TestAPI_NotFoundIsSessionState(t *testing.T) {
	f := newAPIFixture(t)
	token := f.createSession(t)

	f.do(t, http.MethodPut, "/api/session/handle", token, gin.H{"handle": "nobody"})
	rr := f.do(t, http.MethodPost, "/api/session/platforms/gfg/fetch", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dto := decodeSession(t, rr)
	assert.Equal(t, "GeeksForGeeks username not found.", dto.Error)
	assert.Empty(t, dto.Cards)
	assert.Empty(t, dto.LastUpdated)
}

func TestAPI_FetchAll(t *testing.T) {
	f := newAPIFixture(t)
	token := f.createSession(t)

	f.do(t, http.MethodPut, "/api/session/handle", token, gin.H{"handle": "tourist"})
	rr := f.do(t, http.MethodPost, "/api/session/fetch-all", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeSession(t, rr).Cards, 6)
}

func TestAPI_Errors(t *testing.T) {
	f := newAPIFixture(t)
	token := f.createSession(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/session", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/session", "garbage", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/session?token="+token, "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/session/fetch-all?token="+token, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/session/platforms/topcoder/fetch", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/api/session/handle", token, gin.H{}).Code)

	orphan, err := auth.NewJWTService("test-secret", time.Hour).GenerateToken(uuid.New())
	require.NoError(t, err)
	rr := f.do(t, http.MethodGet, "/api/session", orphan, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "not found")
}

func TestAPI_PlatformsAndHistory(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, http.MethodGet, "/api/platforms", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var platforms struct {
		Platforms []PlatformDTO `json:"platforms"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &platforms))
	require.Len(t, platforms.Platforms, 6)
	assert.Equal(t, platform.LeetCode, platforms.Platforms[0].ID)

	rr = f.do(t, http.MethodGet, "/api/history?handle=tourist", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"profile_url":"https://leetcode.com/tourist"`)

	rr = f.do(t, http.MethodGet, "/api/history?platform=hackerrank", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/history/rss?handle=tourist", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, rr.Body.String(), "<title>tourist on LeetCode</title>")
}

func TestAPI_SessionStream(t *testing.T) {
	f := newAPIFixture(t)
	token := f.createSession(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/session/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first SessionDTO
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Empty(t, first.Handle)

	require.Eventually(t, func() bool {
		claims, err := auth.NewJWTService("test-secret", time.Hour).ValidateToken(token)
		return err == nil && f.hub.Subscribers(claims.SessionID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	f.do(t, http.MethodPut, "/api/session/handle", token, gin.H{"handle": "tourist"})

	var next SessionDTO
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, "tourist", next.Handle)
}
