package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupSuggestTest creates a Gin engine with a mock OpenAI server and returns
// the router and a function to set the mock response. No DB needed.
func setupSuggestTest() (*gin.Engine, *httptest.Server, func(int, interface{})) {
	var mockStatus int
	var mockBody interface{}

	mockOpenAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(mockStatus)
		json.NewEncoder(w).Encode(mockBody)
	}))

	gin.SetMode(gin.TestMode)
	h := Handler{chat: chatClient{baseURL: mockOpenAI.URL, apiKey: "test-key"}}
	router := gin.New()
	// Skip auth middleware for tests — set a dummy user_id
	router.POST("/api/foods/suggest", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, h.suggestFood)

	setMock := func(status int, body interface{}) {
		mockStatus = status
		mockBody = body
	}

	return router, mockOpenAI, setMock
}

// doSuggestRequest sends a POST to the suggest endpoint with the given body.
func doSuggestRequest(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/foods/suggest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// openAIChatResponse wraps a content string in the OpenAI chat completions
// response shape (choices[0].message.content).
func openAIChatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"content": content,
				},
			},
		},
	}
}

func TestSuggest_FoodSuccess(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	suggestion := `{"item_name":"Scrambled Eggs","quantity":2,"unit":"each","calories":180,"protein_g":14,"carbs_g":2,"fat_g":12,"sugar_g":1,"fiber_g":0,"confidence":4}`
	setMock(http.StatusOK, openAIChatResponse(suggestion))

	w := doSuggestRequest(router, `{"description":"2 eggs scrambled"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp suggestionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.ItemName != "Scrambled Eggs" {
		t.Errorf("expected item_name 'Scrambled Eggs', got '%s'", resp.ItemName)
	}
	if resp.Calories != 180 {
		t.Errorf("expected calories 180, got %v", resp.Calories)
	}
	if resp.Quantity != 2 || resp.Unit != "each" || resp.SugarG != 1 {
		t.Errorf("unexpected serving fields: %+v", resp)
	}
}

// TestSuggest_DefaultsServing verifies a missing quantity or unit is filled
// in so the suggestion can be saved as a catalogue food directly.
func TestSuggest_DefaultsServing(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	suggestion := `{"item_name":"Banana","calories":105,"protein_g":1.3,"carbs_g":27,"fat_g":0.4,"sugar_g":14,"fiber_g":3.1,"confidence":5}`
	setMock(http.StatusOK, openAIChatResponse(suggestion))

	w := doSuggestRequest(router, `{"description":"a banana"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp suggestionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Quantity != 1 || resp.Unit != "each" {
		t.Errorf("expected 1 each, got %v %q", resp.Quantity, resp.Unit)
	}
	if resp.FiberG != 3.1 {
		t.Errorf("expected fiber_g 3.1, got %v", resp.FiberG)
	}
}

// TestSuggest_ZeroCaloriesUnrecognized verifies a suggestion without calories
// is reported as unrecognized rather than returned.
func TestSuggest_ZeroCaloriesUnrecognized(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusOK, openAIChatResponse(`{"item_name":"Water","quantity":250,"unit":"ml","calories":0}`))

	w := doSuggestRequest(router, `{"description":"glass of water"}`)

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp["error"] != "unrecognized" {
		t.Errorf("expected 200 unrecognized, got %d %s", w.Code, w.Body.String())
	}
}

func TestSuggest_Unrecognized(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusOK, openAIChatResponse(`{"error":"unrecognized"}`))

	w := doSuggestRequest(router, `{"description":"asdfghjkl"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "unrecognized" {
		t.Errorf("expected error 'unrecognized', got '%s'", resp["error"])
	}
}

func TestSuggest_OpenAIError500(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusInternalServerError, map[string]string{"error": "server error"})

	w := doSuggestRequest(router, `{"description":"banana"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "openai request failed" {
		t.Errorf("expected error 'openai request failed', got '%s'", resp["error"])
	}
}

func TestSuggest_EmptyDescription(t *testing.T) {
	router, mockServer, _ := setupSuggestTest()
	defer mockServer.Close()

	w := doSuggestRequest(router, `{"description":""}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSuggest_MalformedJSON(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	// OpenAI returns something that isn't valid JSON
	setMock(http.StatusOK, openAIChatResponse(`not valid json at all`))

	w := doSuggestRequest(router, `{"description":"banana"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

// TestSuggest_MissingAPIKey verifies no request leaves the server without a key.
func TestSuggest_MissingAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	gin.SetMode(gin.TestMode)
	h := Handler{chat: chatClient{baseURL: srv.URL}}
	router := gin.New()
	router.POST("/api/foods/suggest", h.suggestFood)

	w := doSuggestRequest(router, `{"description":"banana"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if called {
		t.Error("OpenAI should not be called without an API key")
	}
}

// TestChatClient_Request verifies the model, auth header and JSON response
// format sent to OpenAI.
func TestChatClient_Request(t *testing.T) {
	var gotAuth string
	var gotBody openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(openAIChatResponse(`{"ok":true}`))
	}))
	defer srv.Close()

	cc := chatClient{baseURL: srv.URL, apiKey: "k", model: "gpt-test"}
	content, err := cc.complete(context.Background(), []openAIMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if content != `{"ok":true}` {
		t.Errorf("content = %q", content)
	}
	if gotAuth != "Bearer k" || gotBody.Model != "gpt-test" || gotBody.ResponseFormat["type"] != "json_object" {
		t.Errorf("auth=%q body=%+v", gotAuth, gotBody)
	}

	cc.model = ""
	if _, err := cc.complete(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if gotBody.Model != defaultChatModel {
		t.Errorf("default model = %q", gotBody.Model)
	}
}
