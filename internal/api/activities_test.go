package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/skillmap/internal/skill"
	"github.com/kalambet/skillmap/internal/storage"
)

func TestCreateActivity(t *testing.T) {
	h, deps := setupAppHandler(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)

	body := `{"title":"Park temizliği","description":"bugün ekip ile çalıştım","type":"Çevre","date":"2026-06-01","duration":90}`
	rr := serve(h, authReq(http.MethodPost, "/api/users/u1/activities", body, token))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := decodeInto[CreateActivityResponse](t, rr)
	assert.NotEmpty(t, resp.Activity.ID)
	assert.Equal(t, "çevre", resp.Activity.Type)
	assert.Equal(t, 90, resp.Activity.Duration)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), resp.Activity.Date)
	assert.Equal(t, []skill.Category{skill.Teamwork, skill.ProblemSolving, skill.Responsibility}, resp.Activity.Categories)
	assert.Equal(t, []string{"Takım Çalışması", "Problem Çözme", "Sorumluluk"}, resp.Skills)

	stored, err := deps.Store.ListActivitiesByUser("u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, resp.Activity.Categories, stored[0].Categories)
}

func TestCreateActivity_EmptyDescriptionUsesTypeSkills(t *testing.T) {
	h, deps := setupAppHandler(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)

	rr := serve(h, authReq(http.MethodPost, "/api/users/u1/activities",
		`{"title":"Okuma saati","type":"eğitim","duration":30}`, token))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := decodeInto[CreateActivityResponse](t, rr)
	assert.Equal(t, []skill.Category{skill.Communication, skill.Responsibility}, resp.Activity.Categories)
	assert.True(t, testNow.Equal(resp.Activity.Date), "empty date defaults to now")
}

func TestCreateActivity_TypeWithoutSkillsFallsBack(t *testing.T) {
	h, deps := setupAppHandler(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)

	rr := serve(h, authReq(http.MethodPost, "/api/users/u1/activities",
		`{"title":"Toplantı","description":"hiçbir anahtar yok","type":"diğer","duration":15}`, token))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, []skill.Category{skill.Responsibility}, decodeInto[CreateActivityResponse](t, rr).Activity.Categories)
}

func TestCreateActivity_Validation(t *testing.T) {
	h, deps := setupAppHandler(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)

	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"type":"spor","duration":10}`},
		{"blank title", `{"title":"   ","type":"spor","duration":10}`},
		{"zero duration", `{"title":"Koşu","type":"spor","duration":0}`},
		{"negative duration", `{"title":"Koşu","type":"spor","duration":-5}`},
		{"unknown type", `{"title":"Koşu","type":"uzay","duration":10}`},
		{"bad date", `{"title":"Koşu","type":"spor","duration":10,"date":"01/06/2026"}`},
		{"malformed body", `{"title":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(h, authReq(http.MethodPost, "/api/users/u1/activities", tc.body, token))
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Equal(t, errInvalidRequest, errorType(t, rr))
		})
	}

	acts, err := deps.Store.ListActivitiesByUser("u1")
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestCreateActivity_UnknownTypeListsAllowed(t *testing.T) {
	h, deps := setupAppHandler(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)

	rr := serve(h, authReq(http.MethodPost, "/api/users/u1/activities", `{"title":"X","type":"uzay","duration":10}`, token))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	for _, name := range deps.Catalog.TypeNames() {
		assert.Contains(t, rr.Body.String(), name)
	}
}

func TestCreateActivity_DeletedUser(t *testing.T) {
	h, deps := setupAppHandler(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)
	require.NoError(t, deps.Store.DeleteUser("u1"))

	// The token outlives the account.
	rr := serve(h, authReq(http.MethodPost, "/api/users/u1/activities", `{"title":"X","type":"spor","duration":10}`, token))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateActivity_InvalidatesDashboard(t *testing.T) {
	h, deps := setupAppHandler(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)

	before, err := deps.Dashboard.Get()
	require.NoError(t, err)
	require.Zero(t, before.Activities.Total)

	rr := serve(h, authReq(http.MethodPost, "/api/users/u1/activities", `{"title":"Maç","type":"spor","duration":60}`, token))
	require.Equal(t, http.StatusCreated, rr.Code)

	after, err := deps.Dashboard.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, after.Activities.Total)
}

func TestListActivities_NewestFirst(t *testing.T) {
	h, deps := setupAppHandler(t)
	token := seedUser(t, deps, "u1", "u1@example.com", storage.RoleUser)

	rr := serve(h, authReq(http.MethodGet, "/api/users/u1/activities", "", token))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	for i, date := range []string{"2026-03-01", "2026-05-01", "2026-04-01"} {
		body := fmt.Sprintf(`{"title":"Etkinlik %d","type":"sosyal","duration":30,"date":%q}`, i, date)
		require.Equal(t, http.StatusCreated, serve(h, authReq(http.MethodPost, "/api/users/u1/activities", body, token)).Code)
	}

	rr = serve(h, authReq(http.MethodGet, "/api/users/u1/activities", "", token))
	require.Equal(t, http.StatusOK, rr.Code)
	acts := decodeInto[[]storage.Activity](t, rr)
	require.Len(t, acts, 3)
	assert.Equal(t, "Etkinlik 1", acts[0].Title)
	assert.Equal(t, "Etkinlik 2", acts[1].Title)
	assert.Equal(t, "Etkinlik 0", acts[2].Title)
}

func TestParseActivityDate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := parseActivityDate("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = parseActivityDate("2026-02-03T10:00:00+03:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 7, 0, 0, 0, time.UTC), got)

	got, err = parseActivityDate(" 2026-02-03 ", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), got)

	_, err = parseActivityDate("yesterday", now)
	assert.Error(t, err)
}
