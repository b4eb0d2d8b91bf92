package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_CreateLesson(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"42"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token-abc", discardLogger())
	id, err := c.CreateLesson(context.Background(), &LessonPayload{
		Titulo: "Saludos",
		Nivel:  "A1",
		Idioma: "es",
		Estado: "borrador",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	assert.Equal(t, "/lecciones/crear", gotPath)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "Saludos", gotBody["titulo"])
	assert.Equal(t, "borrador", gotBody["estado"])
}

func TestClient_UpdateLesson(t *testing.T) {
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"42"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", discardLogger())
	err := c.UpdateLesson(context.Background(), "42", &LessonPayload{Titulo: "Saludos"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/lecciones/42", gotPath)
}

func TestClient_ServerErrorBecomesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"error":"titulo ya existe"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", discardLogger())
	_, err := c.CreateLesson(context.Background(), &LessonPayload{})

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "create lesson", terr.Op)
	assert.Contains(t, terr.Error(), "titulo ya existe")
}

func TestClient_UnreachableServer(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", discardLogger())

	err := c.UpdateLesson(context.Background(), "1", &LessonPayload{})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "update lesson", terr.Op)
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", discardLogger())
	_, err := c.CreateLesson(context.Background(), &LessonPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "", discardLogger())
	_, err := c.CreateLesson(ctx, &LessonPayload{})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.True(t, errors.Is(err, context.Canceled))
}
