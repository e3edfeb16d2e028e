package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezyday/breezyday/internal/assistant"
	"github.com/breezyday/breezyday/internal/assistant/gemini"
)

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "k-123", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		assert.Equal(t, "hello", body.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Wear a mask."},{"text":""},{"text":"Carry tissues.\n"}]}},{"content":{"parts":[{"text":"ignored"}]}}]}`))
	}))
	defer server.Close()

	client := gemini.NewClient(gemini.ClientConfig{BaseURL: server.URL, HTTPClient: http.DefaultClient})

	text, err := client.Generate(context.Background(), "k-123", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Wear a mask.\nCarry tissues.", text)
}

func TestClient_Generate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := gemini.NewClient(gemini.ClientConfig{BaseURL: server.URL, HTTPClient: http.DefaultClient})

	text, err := client.Generate(context.Background(), "k", "hello")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestClient_Generate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer server.Close()

	client := gemini.NewClient(gemini.ClientConfig{BaseURL: server.URL, HTTPClient: http.DefaultClient})

	_, err := client.Generate(context.Background(), "secret-key", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, gemini.ErrUpstream)
	assert.Contains(t, err.Error(), "403")
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestClient_Generate_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := gemini.NewClient(gemini.ClientConfig{BaseURL: server.URL, HTTPClient: http.DefaultClient})

	_, err := client.Generate(context.Background(), "k", "hello")
	assert.ErrorIs(t, err, gemini.ErrDecode)
}

func TestClient_Generate_MissingKey(t *testing.T) {
	client := gemini.NewClient(gemini.ClientConfig{BaseURL: "http://127.0.0.1:1", HTTPClient: http.DefaultClient})

	_, err := client.Generate(context.Background(), "", "hello")
	assert.ErrorIs(t, err, assistant.ErrMissingAPIKey)
}

func TestClient_CustomModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-pro:generateContent", r.URL.Path)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	client := gemini.NewClient(gemini.ClientConfig{BaseURL: server.URL + "/", Model: "gemini-1.5-pro", HTTPClient: http.DefaultClient})

	text, err := client.Generate(context.Background(), "k", "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}
