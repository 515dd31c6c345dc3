package app

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"lens-backend/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		Port:          "0",
		DBDriver:      "sqlite",
		DatabaseURL:   ":memory:",
		JWTSecret:     "test-secret",
		UploadDir:     t.TempDir(),
		MaxImageWidth: 1920,
		JPEGQuality:   85,
	}
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func do(t *testing.T, a *App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := a.HTTP.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.NoError(t, json.Unmarshal(body, v), "body: %s", body)
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// registerUser creates an account through the login form and returns the
// session cookie plus the new user's id.
func registerUser(t *testing.T, a *App, name, email string) (*http.Cookie, string) {
	t.Helper()
	resp := do(t, a, formRequest("/login", url.Values{
		"action":    {"register"},
		"full_name": {name},
		"email":     {email},
		"password":  {"secret123"},
	}))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))

	var session *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "session" {
			session = ck
		}
	}
	require.NotNil(t, session, "registration must set the session cookie")

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.AddCookie(session)
	resp = do(t, a, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &user)
	require.NotEmpty(t, user.ID)
	return session, user.ID
}

func jpegBody(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{B: uint8(x % 256), A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// uploadPhoto posts a multipart upload and returns the new photo's id,
// found via the explore page.
func uploadPhoto(t *testing.T, a *App, session *http.Cookie, title string) string {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", "upload.jpg")
	require.NoError(t, err)
	_, err = part.Write(jpegBody(t, 100, 50))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("title", title))
	require.NoError(t, w.WriteField("category", "Street"))
	require.NoError(t, w.WriteField("tags", "test"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(session)
	resp := do(t, a, req)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = do(t, a, httptest.NewRequest(http.MethodGet, "/explore", nil))
	var page struct {
		Photos []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"photos"`
	}
	decodeJSON(t, resp, &page)
	for _, p := range page.Photos {
		if p.Title == title {
			return p.ID
		}
	}
	t.Fatalf("uploaded photo %q not found on explore page", title)
	return ""
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	resp := do(t, a, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	a := newTestApp(t)
	resp := do(t, a, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Error)
}

func TestDashboardRequiresAuth(t *testing.T) {
	a := newTestApp(t)
	resp := do(t, a, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerTokenAlsoAuthenticates(t *testing.T) {
	a := newTestApp(t)
	session, _ := registerUser(t, a, "Ann", "ann@x.com")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+session.Value)
	resp := do(t, a, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a := newTestApp(t)
	registerUser(t, a, "Ann", "ann@x.com")

	resp := do(t, a, formRequest("/login", url.Values{
		"action":    {"register"},
		"full_name": {"Another Ann"},
		"email":     {"ann@x.com"},
		"password":  {"different1"},
	}))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, "Email address already exists", body.Error)
}

func TestLoginFailures(t *testing.T) {
	a := newTestApp(t)
	registerUser(t, a, "Ann", "ann@x.com")

	for _, form := range []url.Values{
		{"action": {"login"}, "email": {"ann@x.com"}, "password": {"wrong"}},
		{"action": {"login"}, "email": {"nobody@x.com"}, "password": {"secret123"}},
	} {
		resp := do(t, a, formRequest("/login", form))
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body struct {
			Error string `json:"error"`
		}
		decodeJSON(t, resp, &body)
		require.Equal(t, "Invalid email or password", body.Error)
	}
}

func TestLoginWithoutActionIsRejected(t *testing.T) {
	a := newTestApp(t)
	resp := do(t, a, formRequest("/login", url.Values{"email": {"a@x.com"}}))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginPageRedirectsSignedInUsers(t *testing.T) {
	a := newTestApp(t)
	session, _ := registerUser(t, a, "Ann", "ann@x.com")

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(session)
	resp := do(t, a, req)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	a := newTestApp(t)
	session, _ := registerUser(t, a, "Ann", "ann@x.com")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", "malware.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(session)
	resp := do(t, a, req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &errBody)
	require.Equal(t, "Allowed file types are png, jpg, jpeg, gif, webp", errBody.Error)
}

func TestConnectAndFeedFlow(t *testing.T) {
	a := newTestApp(t)
	annSession, _ := registerUser(t, a, "Ann", "ann@x.com")
	bobSession, bobID := registerUser(t, a, "Bob", "bob@x.com")

	photoID := uploadPhoto(t, a, bobSession, "Bob's Street Shot")

	// Before following, Bob's photo stays out of Ann's feed.
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.AddCookie(annSession)
	resp := do(t, a, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed struct {
		Photos []struct {
			ID string `json:"id"`
		} `json:"photos"`
	}
	decodeJSON(t, resp, &feed)
	require.Empty(t, feed.Photos)

	req = httptest.NewRequest(http.MethodGet, "/connect/"+bobID, nil)
	req.AddCookie(annSession)
	resp = do(t, a, req)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/portfolio/"+bobID, resp.Header.Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.AddCookie(annSession)
	resp = do(t, a, req)
	decodeJSON(t, resp, &feed)
	require.Len(t, feed.Photos, 1)
	require.Equal(t, photoID, feed.Photos[0].ID)

	// Portfolio reflects the connection.
	req = httptest.NewRequest(http.MethodGet, "/portfolio/"+bobID, nil)
	req.AddCookie(annSession)
	resp = do(t, a, req)
	var portfolio struct {
		IsConnected bool `json:"is_connected"`
	}
	decodeJSON(t, resp, &portfolio)
	require.True(t, portfolio.IsConnected)
}

func TestLikeAndCommentFlow(t *testing.T) {
	a := newTestApp(t)
	session, _ := registerUser(t, a, "Ann", "ann@x.com")
	photoID := uploadPhoto(t, a, session, "Pic")

	req := httptest.NewRequest(http.MethodPost, "/like/"+photoID, nil)
	req.AddCookie(session)
	resp := do(t, a, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var likeBody struct {
		Status   string `json:"status"`
		NewLikes int64  `json:"new_likes"`
	}
	decodeJSON(t, resp, &likeBody)
	require.Equal(t, "success", likeBody.Status)
	require.EqualValues(t, 1, likeBody.NewLikes)

	req = formRequest("/comment/"+photoID, url.Values{"content": {"   "}})
	req.AddCookie(session)
	resp = do(t, a, req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = formRequest("/comment/"+photoID, url.Values{"content": {"great tones"}})
	req.AddCookie(session)
	resp = do(t, a, req)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/photo/"+photoID, resp.Header.Get("Location"))

	resp = do(t, a, httptest.NewRequest(http.MethodGet, "/photo/"+photoID, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Comments []struct {
			Content    string `json:"content"`
			AuthorName string `json:"author_name"`
		} `json:"comments"`
	}
	decodeJSON(t, resp, &page)
	require.Len(t, page.Comments, 1)
	require.Equal(t, "great tones", page.Comments[0].Content)
	require.Equal(t, "Ann", page.Comments[0].AuthorName)
}

func TestDeletePhotoOwnership(t *testing.T) {
	a := newTestApp(t)
	ownerSession, _ := registerUser(t, a, "Owner", "owner@x.com")
	intruderSession, _ := registerUser(t, a, "Intruder", "intruder@x.com")

	photoID := uploadPhoto(t, a, ownerSession, "Mine")

	req := httptest.NewRequest(http.MethodPost, "/delete_photo/"+photoID, nil)
	req.AddCookie(intruderSession)
	resp := do(t, a, req)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/delete_photo/"+photoID, nil)
	req.AddCookie(ownerSession)
	resp = do(t, a, req)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = do(t, a, httptest.NewRequest(http.MethodGet, "/photo/"+photoID, nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMessagingFlow(t *testing.T) {
	a := newTestApp(t)
	annSession, annID := registerUser(t, a, "Ann", "ann@x.com")
	bobSession, bobID := registerUser(t, a, "Bob", "bob@x.com")

	// Messaging yourself is refused.
	req := formRequest("/messages/"+annID, url.Values{"content": {"hi me"}})
	req.AddCookie(annSession)
	resp := do(t, a, req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = formRequest("/messages/"+bobID, url.Values{"content": {"hello bob"}})
	req.AddCookie(annSession)
	resp = do(t, a, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sendBody struct {
		Status  string `json:"status"`
		Message struct {
			Content  string `json:"content"`
			SenderID string `json:"sender_id"`
		} `json:"message"`
	}
	decodeJSON(t, resp, &sendBody)
	require.Equal(t, "success", sendBody.Status)
	require.Equal(t, "hello bob", sendBody.Message.Content)
	require.Equal(t, annID, sendBody.Message.SenderID)

	// Bob's inbox shows the unread conversation.
	req = httptest.NewRequest(http.MethodGet, "/messages", nil)
	req.AddCookie(bobSession)
	resp = do(t, a, req)
	var inbox struct {
		Conversations []struct {
			UnreadCount int `json:"unread_count"`
		} `json:"conversations"`
		UnreadMessagesCount int `json:"unread_messages_count"`
	}
	decodeJSON(t, resp, &inbox)
	require.Len(t, inbox.Conversations, 1)
	require.Equal(t, 1, inbox.UnreadMessagesCount)

	// Polling from zero returns the message and clears the badge.
	req = httptest.NewRequest(http.MethodGet, "/api/messages/"+annID+"/recent?since=0", nil)
	req.AddCookie(bobSession)
	resp = do(t, a, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var poll struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	decodeJSON(t, resp, &poll)
	require.Len(t, poll.Messages, 1)
	require.Equal(t, "hello bob", poll.Messages[0].Content)

	req = httptest.NewRequest(http.MethodGet, "/messages", nil)
	req.AddCookie(bobSession)
	resp = do(t, a, req)
	decodeJSON(t, resp, &inbox)
	require.Zero(t, inbox.UnreadMessagesCount)
}

func TestRecentMessagesRejectsBadTimestamp(t *testing.T) {
	a := newTestApp(t)
	annSession, _ := registerUser(t, a, "Ann", "ann@x.com")
	_, bobID := registerUser(t, a, "Bob", "bob@x.com")

	req := httptest.NewRequest(http.MethodGet, "/api/messages/"+bobID+"/recent?since=notatime", nil)
	req.AddCookie(annSession)
	resp := do(t, a, req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, "Invalid timestamp", body.Error)
}

func TestChatWithUnknownUserIs404(t *testing.T) {
	a := newTestApp(t)
	session, _ := registerUser(t, a, "Ann", "ann@x.com")

	req := httptest.NewRequest(http.MethodGet, "/messages/nobody", nil)
	req.AddCookie(session)
	resp := do(t, a, req)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchEndpoint(t *testing.T) {
	a := newTestApp(t)
	session, _ := registerUser(t, a, "Ann", "ann@x.com")
	registerUser(t, a, "Bob Marley", "bob@x.com")

	req := httptest.NewRequest(http.MethodGet, "/search?q=marley", nil)
	req.AddCookie(session)
	resp := do(t, a, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Query string `json:"query"`
		Users []struct {
			FullName string `json:"full_name"`
		} `json:"users"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, "marley", body.Query)
	require.Len(t, body.Users, 1)
	require.Equal(t, "Bob Marley", body.Users[0].FullName)
}

func TestSettingsUpdate(t *testing.T) {
	a := newTestApp(t)
	session, _ := registerUser(t, a, "Ann", "ann@x.com")

	req := formRequest("/settings", url.Values{
		"full_name": {"Ann Adams"},
		"bio":       {"street photography"},
	})
	req.AddCookie(session)
	resp := do(t, a, req)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/settings", resp.Header.Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.AddCookie(session)
	resp = do(t, a, req)
	var user struct {
		FullName string `json:"full_name"`
		Bio      string `json:"bio"`
	}
	decodeJSON(t, resp, &user)
	require.Equal(t, "Ann Adams", user.FullName)
	require.Equal(t, "street photography", user.Bio)
}

func TestLogoutClearsSession(t *testing.T) {
	a := newTestApp(t)
	session, _ := registerUser(t, a, "Ann", "ann@x.com")

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(session)
	resp := do(t, a, req)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}
