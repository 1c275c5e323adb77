package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EveryDayApps/LinkLock-sub001/internal/api/handlers"
	"github.com/EveryDayApps/LinkLock-sub001/internal/config"
	"github.com/EveryDayApps/LinkLock-sub001/internal/models"
	"github.com/EveryDayApps/LinkLock-sub001/internal/services"
)

func setupRuleTest(t *testing.T) (*gin.Engine, *services.App) {
	t.Helper()
	db := handlers.OpenTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.StoredRecord{}, &models.SecurityConfig{}, &models.Notification{}))

	app := services.NewApp(db, config.Config{MasterPassword: "master99"})
	require.NoError(t, app.Initialize())

	handler := handlers.NewRuleHandler(app.Rules, app.Profiles)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	rules := r.Group("/api/v1/rules")
	rules.GET("", handler.List)
	rules.POST("", handler.Create)
	rules.PUT("/:id", handler.Update)
	rules.POST("/:id/toggle", handler.Toggle)
	rules.DELETE("/:id", handler.Delete)
	rules.POST("/copy", handler.Copy)

	return r, app
}

type ruleEnvelope struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Rule    models.Rule `json:"rule"`
}

func TestRuleHandler_CRUD(t *testing.T) {
	r, app := setupRuleTest(t)

	// 1. Create in the active profile by default.
	w := postJSON(t, r, "/api/v1/rules", gin.H{
		"url_pattern":  "*.example.com",
		"action":       "lock",
		"lock_options": gin.H{"unlock_duration": 30},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var created ruleEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.Rule.ID)
	assert.Equal(t, app.Profiles.Active().ID, created.Rule.ProfileID)
	assert.True(t, created.Rule.Enabled)

	// 2. List
	req, _ := http.NewRequest("GET", "/api/v1/rules", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Rules []models.Rule `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Rules, 1)

	// 3. Update
	body, _ := json.Marshal(gin.H{"url_pattern": "other.com"})
	req, _ = http.NewRequest("PUT", "/api/v1/rules/"+created.Rule.ID, bytes.NewBuffer(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var updated ruleEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "other.com", updated.Rule.URLPattern)

	// 4. Toggle
	w = postJSON(t, r, "/api/v1/rules/"+created.Rule.ID+"/toggle", gin.H{})
	assert.Equal(t, http.StatusOK, w.Code)
	var toggled ruleEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggled))
	assert.False(t, toggled.Rule.Enabled)

	// 5. Delete
	req, _ = http.NewRequest("DELETE", "/api/v1/rules/"+created.Rule.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, app.Rules.List())

	req, _ = http.NewRequest("DELETE", "/api/v1/rules/"+created.Rule.ID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRuleHandler_CreateValidation(t *testing.T) {
	r, _ := setupRuleTest(t)

	w := postJSON(t, r, "/api/v1/rules", gin.H{"action": "lock"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "url_pattern is required")

	w = postJSON(t, r, "/api/v1/rules", gin.H{"url_pattern": "example.com", "action": "lock"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "lock rules need options")

	w = postJSON(t, r, "/api/v1/rules", gin.H{
		"url_pattern": "example.com",
		"action":      "block",
		"profile_id":  "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown profile is rejected")
}

func TestRuleHandler_DuplicateConflict(t *testing.T) {
	r, _ := setupRuleTest(t)

	payload := gin.H{"url_pattern": "example.com", "action": "block"}
	w := postJSON(t, r, "/api/v1/rules", payload)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, "/api/v1/rules", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRuleHandler_Copy(t *testing.T) {
	r, app := setupRuleTest(t)
	active := app.Profiles.Active()
	other, err := app.Profiles.Create("Kids")
	require.NoError(t, err)

	w := postJSON(t, r, "/api/v1/rules", gin.H{"url_pattern": "example.com", "action": "block"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, "/api/v1/rules/copy", gin.H{
		"source_profile_id": active.ID,
		"target_profile_id": other.ID,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var copied struct {
		Copied int `json:"copied"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &copied))
	assert.Equal(t, 1, copied.Copied)
	assert.Len(t, app.Rules.ListByProfile(other.ID), 1)

	w = postJSON(t, r, "/api/v1/rules/copy", gin.H{
		"source_profile_id": active.ID,
		"target_profile_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
