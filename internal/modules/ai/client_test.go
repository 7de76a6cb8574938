package ai

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	appcfg "github.com/seoforge/core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compatProvider(endpoint string) *appcfg.AIProvider {
	return &appcfg.AIProvider{
		ID:           "test",
		Type:         "OpenAI-Compatible",
		APIKey:       "sk-test",
		Endpoint:     endpoint,
		DefaultModel: "test-model",
		Enabled:      true,
	}
}

func TestCallOpenAICompatibleChatCompletions(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hello from AI"}}]}`))
	}))
	defer srv.Close()

	out, err := callOpenAICompatibleChatCompletions(compatProvider(srv.URL), "sys", "user prompt", 256)
	require.NoError(t, err)
	assert.Equal(t, "hello from AI", out)

	assert.Equal(t, "test-model", gotBody["model"])
	assert.EqualValues(t, 256, gotBody["max_tokens"])
	messages := gotBody["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
}

func TestCallOpenAICompatibleErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer srv.Close()

	_, err := callOpenAICompatibleChatCompletions(compatProvider(srv.URL), "", "p", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestCallOpenAICompatibleMissingAPIKey(t *testing.T) {
	provider := compatProvider("http://localhost:1")
	provider.APIKey = "  "
	_, err := callOpenAICompatibleChatCompletions(provider, "", "p", 100)
	assert.ErrorIs(t, err, errMissingAPIKey)
}

func TestCallOpenAICompatibleForcedTool(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"","tool_calls":[{"function":{"name":"analyze","arguments":"{\"score\":88}"}}]}}]}`))
	}))
	defer srv.Close()

	params := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"score": map[string]interface{}{"type": "number"}},
	}
	args, err := callOpenAICompatibleForcedTool(compatProvider(srv.URL), "sys", "p", "analyze", params, 512)
	require.NoError(t, err)

	var out struct {
		Score float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(args, &out))
	assert.Equal(t, 88.0, out.Score)

	choice := gotBody["tool_choice"].(map[string]interface{})
	assert.Equal(t, "function", choice["type"])
	assert.Equal(t, "analyze", choice["function"].(map[string]interface{})["name"])
}

func TestCallOpenAICompatibleForcedToolNoToolCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"plain text instead"}}]}`))
	}))
	defer srv.Close()

	_, err := callOpenAICompatibleForcedTool(compatProvider(srv.URL), "", "p", "analyze", map[string]interface{}{}, 512)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tool call")
}

func TestUnmarshalAIJSON(t *testing.T) {
	var out struct {
		Title string `json:"title"`
	}

	assert.NoError(t, unmarshalAIJSON(`{"title":"plain"}`, &out))
	assert.Equal(t, "plain", out.Title)

	assert.NoError(t, unmarshalAIJSON("```json\n{\"title\":\"fenced\"}\n```", &out))
	assert.Equal(t, "fenced", out.Title)

	assert.NoError(t, unmarshalAIJSON(`Sure, here it is: {"title":"embedded"} hope that helps`, &out))
	assert.Equal(t, "embedded", out.Title)

	var list []string
	assert.NoError(t, unmarshalAIJSON("```\n[\"a\",\"b\"]\n```", &list))
	assert.Equal(t, []string{"a", "b"}, list)

	assert.Error(t, unmarshalAIJSON("not json at all", &out))
}

func TestNormalizeOpenAICompatibleEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.openai.com", normalizeOpenAICompatibleEndpoint(""))
	assert.Equal(t, "https://gw.example.com", normalizeOpenAICompatibleEndpoint("https://gw.example.com/v1"))
	assert.Equal(t, "https://gw.example.com", normalizeOpenAICompatibleEndpoint("https://gw.example.com/"))
	assert.Equal(t, "https://gw.example.com/proxy", normalizeOpenAICompatibleEndpoint("https://gw.example.com/proxy/v1/"))
}

func TestNormalizeOpenAIBaseURL(t *testing.T) {
	assert.Equal(t, "", normalizeOpenAIBaseURL(""))
	assert.Equal(t, "https://gw.example.com/v1", normalizeOpenAIBaseURL("https://gw.example.com"))
	assert.Equal(t, "https://gw.example.com/v1", normalizeOpenAIBaseURL("https://gw.example.com/v1/"))
}

func TestSelectAIProvider(t *testing.T) {
	cfg := appcfg.AIConfig{
		Providers: []appcfg.AIProvider{
			{ID: "disabled", Enabled: false},
			{ID: "first", Enabled: true, DefaultModel: "model-a"},
			{ID: "second", Enabled: true, DefaultModel: "model-b"},
		},
	}

	picked := selectAIProvider(cfg, nil)
	require.NotNil(t, picked)
	assert.Equal(t, "first", picked.ID)

	picked = selectAIProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "second"})
	require.NotNil(t, picked)
	assert.Equal(t, "second", picked.ID)

	picked = selectAIProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "second", Model: "override"})
	require.NotNil(t, picked)
	assert.Equal(t, "override", picked.DefaultModel)

	picked = selectAIProvider(cfg, &appcfg.AIModelAssignment{ProviderID: "disabled"})
	require.NotNil(t, picked)
	assert.Equal(t, "first", picked.ID)

	assert.Nil(t, selectAIProvider(appcfg.AIConfig{}, nil))
}

func TestProviderTypeNormalization(t *testing.T) {
	assert.True(t, isOpenAICompatibleProviderType("OpenAI-Compatible"))
	assert.True(t, isOpenAICompatibleProviderType("openai_compatible"))
	assert.False(t, isOpenAICompatibleProviderType("openai"))
	assert.True(t, isOpenAIProviderType(" OpenAI "))
	assert.True(t, isAnthropicProviderType("Anthropic"))
	assert.True(t, isOpenRouterProviderType("OpenRouter"))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "abc...", truncateText("abcdef", 3))
}
