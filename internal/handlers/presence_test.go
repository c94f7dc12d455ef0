package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"hangout-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLocationSuccess(t *testing.T) {
	app := newTestApp(&models.Profile{ID: aliceID, UserName: "alice_w", IsPublic: true})

	rec := doJSON(t, app, aliceID, http.MethodPatch, "/api/v1/users/me/location",
		`{"latitude":28.6139,"longitude":77.2090,"is_available":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	stored, err := app.profiles.GetProfile(context.Background(), aliceID)
	require.NoError(t, err)
	require.NotNil(t, stored.Latitude)
	assert.InDelta(t, 28.6139, *stored.Latitude, 1e-9)
	assert.True(t, stored.IsAvailable)
	assert.NotNil(t, stored.LastSeenAt)
}

func TestUpdateLocationKeepsAvailabilityWhenOmitted(t *testing.T) {
	app := delhiApp()

	rec := doJSON(t, app, aliceID, http.MethodPatch, "/api/v1/users/me/location",
		`{"latitude":28.7,"longitude":77.1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := app.profiles.GetProfile(context.Background(), aliceID)
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable)
}

func TestUpdateLocationValidation(t *testing.T) {
	app := delhiApp()

	tests := []struct {
		name string
		body string
	}{
		{"missing coordinates", `{}`},
		{"missing longitude", `{"latitude":28.6}`},
		{"latitude out of range", `{"latitude":90.5,"longitude":77.2}`},
		{"longitude out of range", `{"latitude":28.6,"longitude":-180.5}`},
		{"malformed json", `{"latitude":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, app, aliceID, http.MethodPatch, "/api/v1/users/me/location", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetMe(t *testing.T) {
	app := delhiApp()

	rec := doJSON(t, app, aliceID, http.MethodGet, "/api/v1/users/me", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, aliceID, profile.ID)
	assert.Equal(t, "alice_w", profile.UserName)
}

func TestGetMeUnknownProfile(t *testing.T) {
	app := newTestApp()

	rec := doJSON(t, app, aliceID, http.MethodGet, "/api/v1/users/me", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
