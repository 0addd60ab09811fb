package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFunctionServer(t *testing.T, status int, body string) (*httptest.Server, *FunctionRequest) {
	t.Helper()
	got := &FunctionRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestFunctionGenerate(t *testing.T) {
	srv, got := newFunctionServer(t, http.StatusOK, `{"generatedText":"hi there"}`)
	f, err := NewFunction(Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	text, err := f.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
	assert.Equal(t, "hello", got.Prompt)
}

func TestFunctionGenerateErrorPayload(t *testing.T) {
	srv, _ := newFunctionServer(t, http.StatusInternalServerError, `{"error":"quota exceeded"}`)
	f, err := NewFunction(Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	_, err = f.Generate(context.Background(), "hello")
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, FailedText, FailureText(err))
}

func TestFunctionGenerateEmpty(t *testing.T) {
	srv, _ := newFunctionServer(t, http.StatusOK, `{}`)
	f, err := NewFunction(Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	_, err = f.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
