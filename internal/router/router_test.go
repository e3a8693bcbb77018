package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/odinbook/backend/internal/blobstore/blobtest"
	"github.com/anonto42/odinbook/backend/internal/handlers"
	"github.com/anonto42/odinbook/backend/internal/repositories/repotest"
	"github.com/anonto42/odinbook/backend/internal/session"
	"github.com/anonto42/odinbook/backend/internal/tokens"
	"github.com/anonto42/odinbook/backend/pkg/config"
	"github.com/anonto42/odinbook/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newServer(t *testing.T, autoAccept bool) *echo.Echo {
	t.Helper()
	return newServerWith(t, func(cfg *config.Config) { cfg.FollowAutoAccept = autoAccept })
}

func newServerWith(t *testing.T, configure func(*config.Config)) *echo.Echo {
	t.Helper()

	cfg := &config.Config{
		Env:              "test",
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
		CookieSameSite:   "lax",
		ClientOrigin:     "http://client.test",
		FollowAutoAccept: true,
		FeedCursorSecret: "cursor-secret",
		AuthRateLimit:    1000,
		AuthRateBurst:    1000,
	}
	configure(cfg)
	codec, err := tokens.NewCodec(tokens.Config{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshTTL:    cfg.JWTRefreshTTL,
	})
	require.NoError(t, err)

	logger := zap.NewNop()
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(logger)
	SetupMiddleware(e, cfg, logger)
	require.NoError(t, SetupRoutes(e, Dependencies{
		Config: cfg,
		DB:     repotest.NewDB(t),
		Tokens: codec,
		Blobs:  blobtest.New("http://localhost:8080/media"),
		Logger: logger,
	}))
	return e
}

// client keeps the cookies a browser would.
type client struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, e *echo.Echo) *client {
	return &client{t: t, e: e, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return c.send(req)
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return errObj["code"].(string)
}

func (c *client) signup(handle string) float64 {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": handle + "@example.com", "handle": handle, "password": "password123",
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(c.t, rec)["user"].(map[string]interface{})["id"].(float64)

	rec = c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": handle + "@example.com", "password": "password123",
	})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	return id
}

func TestAuthFlow(t *testing.T) {
	e := newServer(t, true)
	c := newClient(t, e)

	rec := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "ada@example.com", "handle": "ada", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "ada", user["handle"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "PasswordHash")

	rec = c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "other@example.com", "handle": "ada", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorCode(t, rec))

	rec = c.do(http.MethodPost, "/api/auth/register", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", errorCode(t, rec))

	rec = c.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))

	rec = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	access := c.cookies[session.AccessCookieName]
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	require.NotNil(t, c.cookies[session.RefreshCookieName])

	rec = c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada@example.com", decode(t, rec)["user"].(map[string]interface{})["email"])

	// refresh with only the refresh cookie
	delete(c.cookies, session.AccessCookieName)
	rec = c.do(http.MethodPost, "/api/auth/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c.cookies[session.AccessCookieName])

	rec = c.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// logout clears both cookies and is idempotent
	for i := 0; i < 2; i++ {
		rec = c.do(http.MethodPost, "/api/auth/logout", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, c.cookies)

	rec = c.do(http.MethodPost, "/api/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSameSiteNoneCookiesAreSecure(t *testing.T) {
	e := newServerWith(t, func(cfg *config.Config) { cfg.CookieSameSite = "none" })
	c := newClient(t, e)
	c.signup("ada")

	for _, name := range []string{session.AccessCookieName, session.RefreshCookieName} {
		ck := c.cookies[name]
		require.NotNil(t, ck, name)
		assert.Equal(t, http.SameSiteNoneMode, ck.SameSite, name)
		assert.True(t, ck.Secure, name)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	e := newServer(t, true)
	c := newClient(t, e)
	c.signup("ada")

	// present the access token where the refresh token belongs
	c.cookies[session.RefreshCookieName] = &http.Cookie{Name: session.RefreshCookieName, Value: c.cookies[session.AccessCookieName].Value}
	rec := c.do(http.MethodPost, "/api/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", errorCode(t, rec))
}

func TestRefreshRejectsExpiredCookie(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a refresh token to expire")
	}
	e := newServerWith(t, func(cfg *config.Config) { cfg.JWTRefreshTTL = time.Second })
	c := newClient(t, e)
	c.signup("ada")
	require.NotNil(t, c.cookies[session.RefreshCookieName])

	time.Sleep(2100 * time.Millisecond)

	rec := c.do(http.MethodPost, "/api/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", errorCode(t, rec))
}

func TestFeedFlow(t *testing.T) {
	e := newServer(t, true)
	u1, u2 := newClient(t, e), newClient(t, e)
	u1.signup("user1")
	u2ID := u2.signup("user2")

	rec := u1.do(http.MethodPost, fmt.Sprintf("/api/follows/%d", int(u2ID)), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ACCEPTED", decode(t, rec)["follow"].(map[string]interface{})["status"])

	rec = u1.do(http.MethodPost, fmt.Sprintf("/api/follows/%d", int(u2ID)), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = u2.do(http.MethodPost, "/api/posts", map[string]string{"body": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	helloID := decode(t, rec)["post"].(map[string]interface{})["id"].(float64)

	rec = u1.do(http.MethodPost, "/api/posts", map[string]string{"body": "world"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = u1.do(http.MethodPost, fmt.Sprintf("/api/likes/%d/toggle", int(helloID)), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"liked": true, "likeCount": float64(1)}, decode(t, rec))

	rec = u1.do(http.MethodGet, "/api/feed?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	posts := page["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "world", posts[0].(map[string]interface{})["body"])
	cursor, ok := page["nextCursor"].(string)
	require.True(t, ok)

	rec = u1.do(http.MethodGet, "/api/feed?limit=1&cursor="+cursor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode(t, rec)
	posts = page["posts"].([]interface{})
	require.Len(t, posts, 1)
	hello := posts[0].(map[string]interface{})
	assert.Equal(t, "hello", hello["body"])
	assert.Equal(t, true, hello["likedByMe"])
	assert.Equal(t, float64(1), hello["likesCount"])
	assert.Nil(t, page["nextCursor"])
	assert.Contains(t, page, "nextCursor")

	rec = u1.do(http.MethodGet, "/api/feed?cursor=garbage", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// anonymous public listing carries no likedByMe
	anon := newClient(t, e)
	rec = anon.do(http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, p := range decode(t, rec)["posts"].([]interface{}) {
		assert.NotContains(t, p.(map[string]interface{}), "likedByMe")
	}

	rec = anon.do(http.MethodGet, "/api/feed", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// only the author may delete
	rec = u1.do(http.MethodDelete, fmt.Sprintf("/api/posts/%d", int(helloID)), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = u2.do(http.MethodDelete, fmt.Sprintf("/api/posts/%d", int(helloID)), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = anon.do(http.MethodGet, fmt.Sprintf("/api/posts/%d", int(helloID)), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowRequests(t *testing.T) {
	e := newServer(t, false)
	a, b := newClient(t, e), newClient(t, e)
	aID := a.signup("alpha")
	bID := b.signup("bravo")

	rec := a.do(http.MethodPost, fmt.Sprintf("/api/follows/%d", int(aID)), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_target", errorCode(t, rec))

	rec = a.do(http.MethodPost, fmt.Sprintf("/api/follows/%d", int(bID)), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "PENDING", decode(t, rec)["follow"].(map[string]interface{})["status"])

	rec = b.do(http.MethodGet, "/api/follows/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	requests := decode(t, rec)["requests"].([]interface{})
	require.Len(t, requests, 1)

	rec = a.do(http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode(t, rec)["users"].([]interface{})
	require.Len(t, users, 1)
	assert.Equal(t, "PENDING", users[0].(map[string]interface{})["followStatus"])

	rec = b.do(http.MethodPost, fmt.Sprintf("/api/follows/%d/accept", int(aID)), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = b.do(http.MethodPost, fmt.Sprintf("/api/follows/%d/accept", int(aID)), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_accepted", errorCode(t, rec))

	rec = b.do(http.MethodGet, fmt.Sprintf("/api/users/%d/followers", int(bID)), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["users"].([]interface{}), 1)

	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/follows/%d", int(bID)), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/follows/%d", int(bID)), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommentsAndAvatar(t *testing.T) {
	e := newServer(t, true)
	c := newClient(t, e)
	c.signup("ada")

	rec := c.do(http.MethodPost, "/api/posts", map[string]string{"body": "discuss"})
	require.Equal(t, http.StatusCreated, rec.Code)
	postID := int(decode(t, rec)["post"].(map[string]interface{})["id"].(float64))

	rec = c.do(http.MethodPost, "/api/comments", map[string]interface{}{"postId": postID, "body": "first"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	commentID := int(decode(t, rec)["comment"].(map[string]interface{})["id"].(float64))

	rec = c.do(http.MethodGet, fmt.Sprintf("/api/comments?postId=%d", postID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["comments"].([]interface{}), 1)

	rec = c.do(http.MethodDelete, fmt.Sprintf("/api/comments/%d", commentID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodPost, "/api/users/avatar", map[string]string{"avatarUrl": "https://example.com/a.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/a.png", decode(t, rec)["user"].(map[string]interface{})["avatarUrl"])

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/avatar/upload", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec = c.send(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	avatarURL := decode(t, rec)["user"].(map[string]interface{})["avatarUrl"].(string)
	assert.Regexp(t, `^http://localhost:8080/media/avatars/\d+/[0-9a-f-]+\.png$`, avatarURL)

	mediaPath := avatarURL[len("http://localhost:8080"):]
	rec = c.do(http.MethodGet, mediaPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	rec = c.do(http.MethodGet, "/media/avatars/none.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	e := newServer(t, true)
	rec := newClient(t, e).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
