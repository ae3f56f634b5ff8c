package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskguardian/internal/models"
	"taskguardian/internal/policy"
)

func TestUpdateRoleRequiresAdmin(t *testing.T) {
	app := newTestApp()
	_, targetID, _ := signupUser(t, app, "REGULAR")

	for _, role := range []string{"MANAGER", "REGULAR"} {
		token, _, _ := signupUser(t, app, role)
		status, body := request(t, app, "PUT", "/api/user/update", token, map[string]interface{}{
			"id": targetID, "role": "MANAGER",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		var result map[string]string
		require.NoError(t, json.Unmarshal(body, &result))
		assert.Equal(t, "Unauthorized", result["message"])
	}
}

func TestUpdateRoleValidation(t *testing.T) {
	app := newTestApp()
	admin, _, _ := signupUser(t, app, "ADMIN")
	_, targetID, _ := signupUser(t, app, "REGULAR")

	// missing fields
	status, _ := request(t, app, "PUT", "/api/user/update", admin, map[string]interface{}{"id": targetID})
	assert.Equal(t, http.StatusBadRequest, status)

	// role outside the enum
	status, body := request(t, app, "PUT", "/api/user/update", admin, map[string]interface{}{
		"id": targetID, "role": "USER",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	var result map[string]string
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "Invalid Role", result["message"])
}

func TestUpdateRoleUnknownUser(t *testing.T) {
	app := newTestApp()
	admin, _, _ := signupUser(t, app, "ADMIN")

	status, body := request(t, app, "PUT", "/api/user/update", admin, map[string]interface{}{
		"id": 999999, "role": "MANAGER",
	})
	assert.Equal(t, http.StatusNotFound, status)
	var result map[string]string
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "User not found", result["message"])
}

func TestUpdateRoleSuccess(t *testing.T) {
	app := newTestApp()
	admin, _, _ := signupUser(t, app, "ADMIN")
	_, targetID, username := signupUser(t, app, "REGULAR")

	status, body := request(t, app, "PUT", "/api/user/update", admin, map[string]interface{}{
		"id": targetID, "role": "MANAGER",
	})
	require.Equal(t, http.StatusOK, status, "role update failed: %s", body)

	var result struct {
		State string      `json:"state"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "success", result.State)
	assert.Equal(t, targetID, result.User.ID)
	assert.Equal(t, "MANAGER", result.User.Role)

	// the new role shows up in freshly issued sessions
	status, body = request(t, app, "POST", "/api/auth/login", "", map[string]string{
		"name": username, "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	var login struct {
		Session string `json:"session"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	session, err := testTokens.Parse(login.Session)
	require.NoError(t, err)
	assert.Equal(t, policy.RoleManager, session.Role)
}
