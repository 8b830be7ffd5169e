package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ai-blog-writer/internal/api"
	"github.com/ai-blog-writer/internal/config"
	"github.com/ai-blog-writer/internal/mocks"
	"github.com/ai-blog-writer/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type testEnv struct {
	router *gin.Engine
	store  *mocks.Store
	gen    *mocks.MockGenerator
}

func setupTestRouter(keys map[string]string) *testEnv {
	gin.SetMode(gin.TestMode)

	store, repos := mocks.NewRepositories()
	gen := mocks.NewMockGenerator("# 라이브 제목\n\n라이브 본문")

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Providers: config.ProvidersConfig{
			MaxTokens:   1000,
			Temperature: 0.7,
			Claude:      config.ProviderConfig{APIKey: keys["claude"]},
			Gemini:      config.ProviderConfig{APIKey: keys["gemini"]},
			OpenAI:      config.ProviderConfig{APIKey: keys["openai"]},
		},
	}

	log := zerolog.Nop()
	services := service.NewServices(repos, gen, cfg, log)
	return &testEnv{router: api.NewRouter(services, cfg, log), store: store, gen: gen}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := setupTestRouter(nil)

	for _, path := range []string{"/health", "/api/health"} {
		w := env.do(t, http.MethodGet, path, nil)
		expectStatus(t, w, http.StatusOK)

		response := decode(t, w)
		if response["status"] != "healthy" {
			t.Errorf("%s: expected status 'healthy', got %v", path, response["status"])
		}
		if response["service"] != "ai-blog-writer" {
			t.Errorf("%s: expected service name, got %v", path, response["service"])
		}
	}
}

func TestCheckKeys(t *testing.T) {
	env := setupTestRouter(nil)

	w := env.do(t, http.MethodGet, "/api/check-keys", nil)
	expectStatus(t, w, http.StatusOK)
	response := decode(t, w)
	if response["demoMode"] != true {
		t.Errorf("Expected demoMode true without keys, got %v", response["demoMode"])
	}

	env = setupTestRouter(map[string]string{"openai": "sk"})
	response = decode(t, env.do(t, http.MethodGet, "/api/check-keys", nil))
	keys := response["keys"].(map[string]interface{})
	if keys["openai"] != true || keys["claude"] != false {
		t.Errorf("unexpected keys %v", keys)
	}
	if response["demoMode"] != false {
		t.Errorf("Expected demoMode false, got %v", response["demoMode"])
	}
}

func TestGenerateArticle_DemoWithoutKey(t *testing.T) {
	env := setupTestRouter(nil)

	w := env.do(t, http.MethodPost, "/api/generate-article", map[string]string{
		"topic":    "coffee",
		"audience": "일반인",
		"tone":     "친근한",
		"aiModel":  "claude",
	})
	expectStatus(t, w, http.StatusOK)

	response := decode(t, w)
	if response["isDemo"] != true {
		t.Errorf("Expected isDemo true, got %v", response["isDemo"])
	}
	if content, _ := response["content"].(string); strings.TrimSpace(content) == "" {
		t.Error("Expected non-empty content")
	}
	if response["model"] == "" || response["model"] == nil {
		t.Error("Expected a model name")
	}
	if env.gen.CallCount() != 0 {
		t.Errorf("Expected no provider calls, got %d", env.gen.CallCount())
	}
}

func TestGenerateArticle_Live(t *testing.T) {
	env := setupTestRouter(map[string]string{"claude": "key"})

	w := env.do(t, http.MethodPost, "/api/generate-article", map[string]interface{}{
		"topic": "coffee",
		"save":  true,
	})
	expectStatus(t, w, http.StatusOK)

	response := decode(t, w)
	if response["isDemo"] != false {
		t.Errorf("Expected isDemo false, got %v", response["isDemo"])
	}
	if response["title"] != "라이브 제목" {
		t.Errorf("Expected extracted title, got %v", response["title"])
	}
	id, _ := response["articleId"].(string)
	if env.store.Articles[id] == nil {
		t.Errorf("Expected saved article %q", id)
	}
}

func TestGenerateArticle_Validation(t *testing.T) {
	env := setupTestRouter(nil)

	tests := []struct {
		name  string
		body  interface{}
		field string
	}{
		{"missing topic", map[string]string{"tone": "친근한"}, "topic"},
		{"unknown model", map[string]string{"topic": "coffee", "aiModel": "llama"}, "aiModel"},
		{"bad length", map[string]string{"topic": "coffee", "length": "epic"}, "length"},
		{"malformed json", `{"topic":`, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/generate-article", tt.body)
			expectStatus(t, w, http.StatusBadRequest)
			details, _ := decode(t, w)["details"].(map[string]interface{})
			if _, ok := details[tt.field]; !ok {
				t.Errorf("Expected error for field %q, got %v", tt.field, details)
			}
		})
	}
}

func TestGenerateSubKeywords(t *testing.T) {
	env := setupTestRouter(map[string]string{"gemini": "key"})
	env.gen.Text = "1. 원두\n2. 드립\n3. 라떼"

	w := env.do(t, http.MethodPost, "/api/generate-subkeywords", map[string]string{"topic": "coffee", "aiModel": "gemini"})
	expectStatus(t, w, http.StatusOK)

	response := decode(t, w)
	keywords := response["subKeywords"].([]interface{})
	if len(keywords) != 3 || keywords[0] != "원두" {
		t.Errorf("unexpected sub-keywords %v", keywords)
	}
	if response["provider"] != "gemini" || response["isDemo"] != false {
		t.Errorf("unexpected response %v", response)
	}
}

func TestArticleCRUD(t *testing.T) {
	env := setupTestRouter(nil)

	w := env.do(t, http.MethodPost, "/v1/articles", map[string]interface{}{
		"title":    "Beans",
		"content":  "good beans",
		"keywords": []string{"coffee"},
	})
	expectStatus(t, w, http.StatusCreated)
	id := decode(t, w)["id"].(string)

	w = env.do(t, http.MethodGet, "/v1/articles/"+id, nil)
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["status"] != "draft" {
		t.Error("Expected new article to be a draft")
	}

	w = env.do(t, http.MethodPut, "/v1/articles/"+id, map[string]string{"title": "Better beans", "status": "published"})
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["published_at"] == nil {
		t.Error("Expected published_at after publishing")
	}

	w = env.do(t, http.MethodGet, "/v1/articles?q=better", nil)
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["count"].(float64) != 1 {
		t.Error("Expected search to find the article")
	}

	expectStatus(t, env.do(t, http.MethodGet, "/v1/articles?status=lost", nil), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/articles", map[string]string{"content": "no title"}), http.StatusBadRequest)

	expectStatus(t, env.do(t, http.MethodDelete, "/v1/articles/"+id, nil), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/articles/"+id, nil), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodDelete, "/v1/articles/"+id, nil), http.StatusNotFound)
}

func TestArticleTags(t *testing.T) {
	env := setupTestRouter(nil)
	id := decode(t, env.do(t, http.MethodPost, "/v1/articles", map[string]string{"title": "Beans"}))["id"].(string)

	w := env.do(t, http.MethodPost, "/v1/articles/"+id+"/tags", map[string]interface{}{
		"tags": []map[string]interface{}{{"name": "커피", "relevance": 0.9}},
	})
	expectStatus(t, w, http.StatusOK)
	tags := decode(t, w)["tags"].([]interface{})
	if len(tags) != 1 {
		t.Fatalf("Expected 1 tag, got %d", len(tags))
	}
	tag := tags[0].(map[string]interface{})
	if tag["usage_count"].(float64) != 1 || tag["slug"] != "커피" {
		t.Errorf("unexpected tag %v", tag)
	}

	tagID := tag["id"].(string)
	expectStatus(t, env.do(t, http.MethodDelete, "/v1/articles/"+id+"/tags/"+tagID, nil), http.StatusNoContent)

	w = env.do(t, http.MethodGet, "/v1/tags/"+tagID, nil)
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["usage_count"].(float64) != 0 {
		t.Error("Expected usage_count 0 after detach")
	}

	expectStatus(t, env.do(t, http.MethodPost, "/v1/articles/"+id+"/tags", map[string]interface{}{"tags": []interface{}{}}), http.StatusBadRequest)
}

func TestScheduleLifecycle(t *testing.T) {
	env := setupTestRouter(nil)
	articleID := decode(t, env.do(t, http.MethodPost, "/v1/articles", map[string]string{"title": "Beans"}))["id"].(string)

	w := env.do(t, http.MethodPost, "/v1/schedules", map[string]interface{}{
		"article_id":      articleID,
		"scheduled_at":    "2024-05-01T09:00:00+09:00",
		"recurrence_type": "daily",
		"platforms":       []string{"naver"},
	})
	expectStatus(t, w, http.StatusCreated)
	scheduleID := decode(t, w)["id"].(string)

	w = env.do(t, http.MethodPatch, "/v1/schedules/"+scheduleID+"/status", map[string]string{"status": "published"})
	expectStatus(t, w, http.StatusOK)
	result := decode(t, w)
	if result["changed"] != true {
		t.Error("Expected changed true")
	}
	next, _ := result["next"].(map[string]interface{})
	if next["scheduled_at"] != "2024-05-02T00:00:00Z" {
		t.Errorf("Expected next occurrence one day later, got %v", next["scheduled_at"])
	}

	expectStatus(t, env.do(t, http.MethodPatch, "/v1/schedules/"+scheduleID+"/status", map[string]string{"status": "failed"}), http.StatusConflict)
	expectStatus(t, env.do(t, http.MethodPatch, "/v1/schedules/"+scheduleID+"/status", map[string]string{"status": "done"}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/schedules/"+scheduleID+"/reschedule", map[string]string{"scheduled_at": "2024-06-01T00:00:00Z"}), http.StatusConflict)

	w = env.do(t, http.MethodGet, "/v1/schedules/"+scheduleID+"/logs", nil)
	expectStatus(t, w, http.StatusOK)
	if logs := decode(t, w)["logs"].([]interface{}); len(logs) != 1 {
		t.Errorf("Expected 1 status log, got %d", len(logs))
	}

	w = env.do(t, http.MethodGet, "/v1/schedules?status=scheduled", nil)
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["count"].(float64) != 1 {
		t.Error("Expected the planned next occurrence to be listed")
	}

	expectStatus(t, env.do(t, http.MethodGet, "/v1/schedules?due_before=tomorrow", nil), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/schedules/missing", nil), http.StatusNotFound)
}

func TestScheduleExport(t *testing.T) {
	env := setupTestRouter(nil)
	articleID := decode(t, env.do(t, http.MethodPost, "/v1/articles", map[string]string{"title": "Beans"}))["id"].(string)
	env.do(t, http.MethodPost, "/v1/schedules", map[string]string{"article_id": articleID, "scheduled_at": "2024-05-01T00:00:00Z"})

	w := env.do(t, http.MethodGet, "/v1/schedules/export?format=csv", nil)
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Expected CSV content type, got %q", ct)
	}
	if lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n"); len(lines) != 2 {
		t.Errorf("Expected header and one row, got %d lines", len(lines))
	}

	expectStatus(t, env.do(t, http.MethodGet, "/v1/schedules/export?format=xml", nil), http.StatusBadRequest)

	// a failed query before the first row still gets a proper error response
	env.store.Err = errors.New("connection refused")
	w = env.do(t, http.MethodGet, "/v1/schedules/export?format=json", nil)
	expectStatus(t, w, http.StatusInternalServerError)
	if cd := w.Header().Get("Content-Disposition"); cd != "" {
		t.Errorf("Expected no attachment header on failure, got %q", cd)
	}
}

func TestMalformedIDs(t *testing.T) {
	env := setupTestRouter(nil)
	articleID := decode(t, env.do(t, http.MethodPost, "/v1/articles", map[string]string{"title": "Beans"}))["id"].(string)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/v1/articles/abc", http.StatusNotFound},
		{http.MethodDelete, "/v1/articles/abc", http.StatusNotFound},
		{http.MethodDelete, "/v1/articles/" + articleID + "/tags/abc", http.StatusNotFound},
		{http.MethodGet, "/v1/series/1", http.StatusNotFound},
		{http.MethodGet, "/v1/tags/coffee", http.StatusNotFound},
		{http.MethodPost, "/v1/ideas/abc/promote", http.StatusNotFound},
		{http.MethodGet, "/v1/schedules/abc/logs", http.StatusNotFound},
		{http.MethodGet, "/v1/schedules?article_id=abc", http.StatusBadRequest},
		{http.MethodGet, "/v1/articles?series_id=abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			expectStatus(t, env.do(t, tt.method, tt.path, nil), tt.want)
		})
	}
}

func TestTagSlugCollision(t *testing.T) {
	env := setupTestRouter(nil)

	expectStatus(t, env.do(t, http.MethodPost, "/v1/tags", map[string]string{"name": "Go"}), http.StatusCreated)
	w := env.do(t, http.MethodPost, "/v1/tags", map[string]string{"name": "go"})
	expectStatus(t, w, http.StatusBadRequest)
	if !strings.Contains(w.Body.String(), "slug") {
		t.Errorf("Expected slug detail, got %s", w.Body.String())
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := setupTestRouter(nil)
	articleID := decode(t, env.do(t, http.MethodPost, "/v1/articles", map[string]string{"title": "Beans"}))["id"].(string)
	path := "/v1/articles/" + articleID + "/analytics"

	expectStatus(t, env.do(t, http.MethodPost, path, map[string]interface{}{"day": "2024-05-01", "views": 10}), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodPost, path, map[string]interface{}{"day": "2024-05-02", "views": 4}), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodPost, path, map[string]interface{}{"day": "May 1", "views": 4}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, path, map[string]interface{}{"day": "2024-05-01", "views": -1}), http.StatusBadRequest)

	w := env.do(t, http.MethodGet, path+"?from=2024-05-02", nil)
	expectStatus(t, w, http.StatusOK)
	summary := decode(t, w)["summary"].(map[string]interface{})
	if summary["views"].(float64) != 4 || summary["days"].(float64) != 1 {
		t.Errorf("unexpected summary %v", summary)
	}

	expectStatus(t, env.do(t, http.MethodGet, path+"?from=yesterday", nil), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/articles/missing/analytics", nil), http.StatusNotFound)
}

func TestSeriesEndpoints(t *testing.T) {
	env := setupTestRouter(nil)

	w := env.do(t, http.MethodPost, "/v1/series", map[string]interface{}{"title": "Coffee 101", "planned_articles": 5})
	expectStatus(t, w, http.StatusCreated)
	seriesID := decode(t, w)["id"].(string)

	expectStatus(t, env.do(t, http.MethodPost, "/v1/articles", map[string]string{"title": "Part 1", "series_id": seriesID}), http.StatusCreated)

	w = env.do(t, http.MethodGet, "/v1/series/"+seriesID, nil)
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["current_articles"].(float64) != 1 {
		t.Error("Expected current_articles 1")
	}

	w = env.do(t, http.MethodGet, "/v1/series/"+seriesID+"/articles", nil)
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["count"].(float64) != 1 {
		t.Error("Expected one article in the series")
	}

	expectStatus(t, env.do(t, http.MethodPut, "/v1/series/"+seriesID, map[string]string{"title": "Coffee 101", "status": "finished"}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodDelete, "/v1/series/"+seriesID, nil), http.StatusNoContent)
}

func TestIdeaPromote(t *testing.T) {
	env := setupTestRouter(nil)

	w := env.do(t, http.MethodPost, "/v1/ideas", map[string]interface{}{"title": "Cold brew at home", "priority": "high"})
	expectStatus(t, w, http.StatusCreated)
	ideaID := decode(t, w)["id"].(string)

	w = env.do(t, http.MethodPost, "/v1/ideas/"+ideaID+"/promote", nil)
	expectStatus(t, w, http.StatusCreated)
	response := decode(t, w)
	idea := response["idea"].(map[string]interface{})
	article := response["article"].(map[string]interface{})
	if idea["status"] != "converted" || idea["article_id"] != article["id"] {
		t.Errorf("unexpected promotion result %v", response)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/v1/ideas/"+ideaID+"/promote", nil), http.StatusConflict)
}

func TestStatsAndMetrics(t *testing.T) {
	env := setupTestRouter(nil)
	env.do(t, http.MethodPost, "/v1/articles", map[string]string{"title": "Beans"})

	w := env.do(t, http.MethodGet, "/v1/stats", nil)
	expectStatus(t, w, http.StatusOK)
	db := decode(t, w)["database"].(map[string]interface{})
	if db["articles"].(float64) != 1 {
		t.Errorf("Expected 1 article, got %v", db["articles"])
	}

	w = env.do(t, http.MethodGet, "/metrics", nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "blogwriter_http_requests_total") {
		t.Error("Expected HTTP request counter in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(nil)

	w := env.do(t, http.MethodOptions, "/api/generate-article", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}
}
