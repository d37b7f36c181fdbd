package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/obutuz/Miley/internal/domain"
	"github.com/obutuz/Miley/internal/testutil"
	"github.com/obutuz/Miley/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Signup
// =============================================================================

func TestSignupCreatesUserAndProfile(t *testing.T) {
	app := newTestApp(t)
	cl := app.client()

	w := cl.postForm("/account/signup/", url.Values{
		"username":     {"alice"},
		"email":        {"alice@example.com"},
		"password":     {"password123"},
		"profile_type": {"seller"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testLoginURL, w.Header().Get("Location"))

	var user domain.User
	require.NoError(t, app.db.Preload("Profile").Where("username = ?", "alice").First(&user).Error)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.True(t, user.CheckPassword("password123"))
	assert.Equal(t, domain.ProfileSeller, user.Profile.ProfileType)
}

func TestSignupInvalidatesUserListCache(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, utils.SetCache(ctx, app.rdb, UserListCacheKey, []UserSummary{}, time.Minute))
	require.NoError(t, utils.SetCache(ctx, app.rdb, adminUsersCachePrefix+"page=1:size=20", 1, time.Minute))

	w := app.client().postForm("/account/signup/", url.Values{
		"username":     {"alice"},
		"email":        {"alice@example.com"},
		"password":     {"password123"},
		"profile_type": {"buyer"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.False(t, app.mr.Exists(UserListCacheKey))
	assert.False(t, app.mr.Exists(adminUsersCachePrefix+"page=1:size=20"))
}

func TestSignupInvalidForm(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{name: "missing username", form: url.Values{"email": {"a@example.com"}, "password": {"password123"}, "profile_type": {"buyer"}}},
		{name: "bad email", form: url.Values{"username": {"a"}, "email": {"nope"}, "password": {"password123"}, "profile_type": {"buyer"}}},
		{name: "short password", form: url.Values{"username": {"a"}, "email": {"a@example.com"}, "password": {"short"}, "profile_type": {"buyer"}}},
		{name: "unknown profile type", form: url.Values{"username": {"a"}, "email": {"a@example.com"}, "password": {"password123"}, "profile_type": {"admin"}}},
		{name: "bad username characters", form: url.Values{"username": {"a b!"}, "email": {"a@example.com"}, "password": {"password123"}, "profile_type": {"buyer"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			w := app.client().postForm("/account/signup/", tt.form)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "<h1>Sign up</h1>")

			var count int64
			require.NoError(t, app.db.Model(&domain.User{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)

	w := app.client().postForm("/account/signup/", url.Values{
		"username":     {"alice"},
		"email":        {"other@example.com"},
		"password":     {"password123"},
		"profile_type": {"buyer"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Error signing up", w.Body.String())

	var profiles int64
	require.NoError(t, app.db.Model(&domain.Profile{}).Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles)
}

func TestSignupFormRenders(t *testing.T) {
	w := newTestApp(t).client().get("/account/signup/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="profile_type"`)
}

// =============================================================================
// Login / Logout
// =============================================================================

func TestLoginResponses(t *testing.T) {
	app := newTestApp(t)
	testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	disabled := testutil.CreateUser(t, app.db, "bob", "password123", domain.ProfileBuyer)
	require.NoError(t, app.db.Model(disabled).Update("is_active", false).Error)

	tests := []struct {
		name       string
		username   string
		password   string
		wantStatus int
		wantBody   string
	}{
		{name: "success", username: "alice", password: "password123", wantStatus: http.StatusOK, wantBody: "Authenticated successfully"},
		{name: "wrong password", username: "alice", password: "nope", wantStatus: http.StatusUnauthorized, wantBody: "Invalid login"},
		{name: "unknown user", username: "carol", password: "password123", wantStatus: http.StatusUnauthorized, wantBody: "Invalid login"},
		{name: "disabled account", username: "bob", password: "password123", wantStatus: http.StatusForbidden, wantBody: "Disabled account"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.client().postForm("/account/login/", url.Values{"username": {tt.username}, "password": {tt.password}})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestLoginInvalidForm(t *testing.T) {
	w := newTestApp(t).client().postForm("/account/login/", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Log in</h1>")
}

func TestLoginUpdatesLastLoginAndSession(t *testing.T) {
	app := newTestApp(t)
	user := testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	cl := app.client()

	cl.login("alice", "password123")

	var reloaded domain.User
	require.NoError(t, app.db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.LastLogin)
	assert.WithinDuration(t, time.Now(), *reloaded.LastLogin, time.Minute)

	w := cl.get("/account/settings/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	cl := app.client()
	cl.login("alice", "password123")

	w := cl.get("/account/logout/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testLoginURL+"?next=/account/logout/", w.Header().Get("Location"))

	w = cl.get("/account/")
	assert.Equal(t, http.StatusFound, w.Code)
}

// =============================================================================
// Dashboard and user pages
// =============================================================================

func TestLoginRequiredPages(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/account/", "/account/settings/", "/users/", "/users/alice/"} {
		w := app.client().get(path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, testLoginURL+"?next="+url.QueryEscape(path), w.Header().Get("Location"), path)
	}
}

func TestHomeFeedActivities(t *testing.T) {
	app := newTestApp(t)
	alice := testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	bob := testutil.CreateUser(t, app.db, "bob", "password123", domain.ProfileBuyer)
	carol := testutil.CreateUser(t, app.db, "carol", "password123", domain.ProfileBuyer)
	ctx := context.Background()

	_, err := createActivity(ctx, app.db, bob.ID, "is following", domain.TargetUser, &carol.ID)
	require.NoError(t, err)
	_, err = createActivity(ctx, app.db, carol.ID, "is following", domain.TargetUser, &bob.ID)
	require.NoError(t, err)
	require.NoError(t, app.db.Create(&domain.Video{UserID: bob.ID, Title: "Go talk", URL: "https://example.com/v"}).Error)

	cl := app.client()
	cl.login("alice", "password123")

	// No contacts yet: everyone else's activity shows up
	body := cl.get("/account/").Body.String()
	assert.Contains(t, body, "bob is following carol")
	assert.Contains(t, body, "carol is following bob")
	assert.Contains(t, body, "Go talk")

	// Following bob narrows the feed to bob
	require.NoError(t, app.db.Create(&domain.Contact{UserFromID: alice.ID, UserToID: bob.ID}).Error)
	body = cl.get("/account/").Body.String()
	assert.Contains(t, body, "bob is following carol")
	assert.NotContains(t, body, "carol is following bob")
}

func TestUserListExcludesViewerAndInactive(t *testing.T) {
	app := newTestApp(t)
	testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	testutil.CreateUser(t, app.db, "bob", "password123", domain.ProfileBuyer)
	gone := testutil.CreateUser(t, app.db, "zed", "password123", domain.ProfileBuyer)
	require.NoError(t, app.db.Model(gone).Update("is_active", false).Error)

	cl := app.client()
	cl.login("alice", "password123")
	body := cl.get("/users/").Body.String()
	assert.Contains(t, body, "/users/bob/")
	assert.NotContains(t, body, "/users/alice/")
	assert.NotContains(t, body, "/users/zed/")
}

func TestUserDetail(t *testing.T) {
	app := newTestApp(t)
	testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	bob := testutil.CreateUser(t, app.db, "bob", "password123", domain.ProfileSeller)
	category := domain.Category{Name: "Books"}
	require.NoError(t, app.db.Create(&category).Error)
	require.NoError(t, app.db.Create(&domain.Product{CategoryID: category.ID, UserID: &bob.ID, Name: "Bob's Book", Price: 9, Available: true}).Error)

	cl := app.client()
	cl.login("alice", "password123")

	w := cl.get("/users/bob/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bob&#39;s Book")
	assert.Contains(t, w.Body.String(), `<span id="followers">0</span> followers`)

	assert.Equal(t, http.StatusNotFound, cl.get("/users/nobody/").Code)
}

func TestUserListJSON(t *testing.T) {
	app := newTestApp(t)
	alice := testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileSeller)
	birth := time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC)
	require.NoError(t, app.db.Model(&alice.Profile).Updates(map[string]any{"picture": "users/a.png", "birth_date": birth}).Error)

	w := app.client().get("/users/json/")
	require.Equal(t, http.StatusOK, w.Code)
	users := decodeJSON(t, w)["users"].([]any)
	require.Len(t, users, 1)
	u := users[0].(map[string]any)
	assert.Equal(t, "alice", u["username"])
	assert.Equal(t, "alice@example.com", u["email"])
	assert.Equal(t, "seller", u["type"])
	assert.Equal(t, "/media/users/a.png", u["picture"])
	assert.Equal(t, "1990-05-17", u["birth"])
	assert.Equal(t, true, u["is_active"])
	for _, key := range []string{"id", "first_name", "last_name", "last_login", "is_superuser", "date_joined"} {
		assert.Contains(t, u, key)
	}

	// Served from cache until a signup invalidates it
	assert.True(t, app.mr.Exists(UserListCacheKey))
	testutil.CreateUser(t, app.db, "bob", "password123", domain.ProfileBuyer)
	users = decodeJSON(t, app.client().get("/users/json/"))["users"].([]any)
	assert.Len(t, users, 1)
}

// =============================================================================
// Follow
// =============================================================================

func TestFollowIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	alice := testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	bob := testutil.CreateUser(t, app.db, "bob", "password123", domain.ProfileBuyer)
	cl := app.client()
	cl.login("alice", "password123")

	for i := 0; i < 2; i++ {
		w := cl.postJSON("/users/follow/", FollowRequest{ID: bob.ID, Action: "follow"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, FollowOK, decodeJSON(t, w)["status"])
	}

	var contacts int64
	require.NoError(t, app.db.Model(&domain.Contact{}).Where("user_from_id = ? AND user_to_id = ?", alice.ID, bob.ID).Count(&contacts).Error)
	assert.Equal(t, int64(1), contacts)

	// The repeated follow inside a minute logs a single activity
	var activities int64
	require.NoError(t, app.db.Model(&domain.Activity{}).Where("user_id = ?", alice.ID).Count(&activities).Error)
	assert.Equal(t, int64(1), activities)
}

func TestUnfollow(t *testing.T) {
	app := newTestApp(t)
	alice := testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	bob := testutil.CreateUser(t, app.db, "bob", "password123", domain.ProfileBuyer)
	cl := app.client()
	cl.login("alice", "password123")

	// Unfollowing someone not followed is a no-op
	w := cl.postJSON("/users/follow/", FollowRequest{ID: bob.ID, Action: "unfollow"})
	assert.Equal(t, FollowOK, decodeJSON(t, w)["status"])

	require.NoError(t, app.db.Create(&domain.Contact{UserFromID: alice.ID, UserToID: bob.ID}).Error)
	w = cl.postJSON("/users/follow/", FollowRequest{ID: bob.ID, Action: "unfollow"})
	assert.Equal(t, FollowOK, decodeJSON(t, w)["status"])

	var contacts int64
	require.NoError(t, app.db.Model(&domain.Contact{}).Count(&contacts).Error)
	assert.Zero(t, contacts)
}

func TestFollowErrors(t *testing.T) {
	app := newTestApp(t)
	alice := testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	cl := app.client()
	cl.login("alice", "password123")

	tests := []struct {
		name       string
		body       any
		wantStatus string
	}{
		{name: "unknown user", body: FollowRequest{ID: 999, Action: "follow"}, wantStatus: FollowNotFound},
		{name: "missing action", body: FollowRequest{ID: 999}, wantStatus: FollowError},
		{name: "missing id", body: FollowRequest{Action: "follow"}, wantStatus: FollowError},
		{name: "malformed body", body: "{not json", wantStatus: FollowError},
		{name: "self follow", body: FollowRequest{ID: alice.ID, Action: "follow"}, wantStatus: FollowError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := cl.postJSON("/users/follow/", tt.body)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantStatus, decodeJSON(t, w)["status"])
		})
	}
}

func TestFollowRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	w := app.client().postJSON("/users/follow/", FollowRequest{ID: 1, Action: "follow"})
	assert.Equal(t, http.StatusFound, w.Code)
}

// =============================================================================
// Activities
// =============================================================================

func TestCreateActivityDeduplicates(t *testing.T) {
	app := newTestApp(t)
	alice := testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	bob := testutil.CreateUser(t, app.db, "bob", "password123", domain.ProfileBuyer)
	carol := testutil.CreateUser(t, app.db, "carol", "password123", domain.ProfileBuyer)
	ctx := context.Background()

	created, err := createActivity(ctx, app.db, alice.ID, "is following", domain.TargetUser, &bob.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = createActivity(ctx, app.db, alice.ID, "is following", domain.TargetUser, &bob.ID)
	require.NoError(t, err)
	assert.False(t, created)

	// Another target is a different action
	created, err = createActivity(ctx, app.db, alice.ID, "is following", domain.TargetUser, &carol.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// Older than the window no longer counts as a duplicate
	require.NoError(t, app.db.Model(&domain.Activity{}).Where("1 = 1").Update("created", time.Now().Add(-2*activityWindow)).Error)
	created, err = createActivity(ctx, app.db, alice.ID, "is following", domain.TargetUser, &bob.ID)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestResolveTargets(t *testing.T) {
	app := newTestApp(t)
	alice := testutil.CreateUser(t, app.db, "alice", "password123", domain.ProfileBuyer)
	bob := testutil.CreateUser(t, app.db, "bob", "password123", domain.ProfileBuyer)

	activities := []domain.Activity{
		{UserID: alice.ID, Verb: "is following", TargetType: domain.TargetUser, TargetID: &bob.ID},
		{UserID: alice.ID, Verb: "likes"},
	}
	require.NoError(t, resolveTargets(context.Background(), app.db, activities))
	assert.Equal(t, "bob", activities[0].Target)
	assert.Empty(t, activities[1].Target)
}
