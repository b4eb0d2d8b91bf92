package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/speaklexi/lesson-service/internal/adapter"
	"github.com/speaklexi/lesson-service/internal/models"
)

// LessonPayload is the wire shape the lesson API accepts for create and update.
type LessonPayload struct {
	Titulo             string                      `json:"titulo"`
	Descripcion        string                      `json:"descripcion"`
	Contenido          string                      `json:"contenido"`
	Nivel              string                      `json:"nivel"`
	Idioma             string                      `json:"idioma"`
	DuracionMinutos    int                         `json:"duracion_minutos"`
	Orden              int                         `json:"orden"`
	Estado             string                      `json:"estado"`
	Actividades        []adapter.CanonicalActivity `json:"actividades"`
	ArchivosMultimedia []models.MediaRef           `json:"archivos_multimedia,omitempty"`
}

// TransportError wraps a failed call to the lesson API. Callers surface it to
// the user instead of retrying automatically.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("lesson gateway: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type apiResponse struct {
	Success bool `json:"success"`
	Data    struct {
		ID string `json:"id"`
	} `json:"data"`
	Error string `json:"error"`
}

// Client talks to the SpeakLexi lesson API over HTTP with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// CreateLesson creates a new lesson and returns its server-assigned ID.
func (c *Client) CreateLesson(ctx context.Context, payload *LessonPayload) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/lecciones/crear", payload)
	if err != nil {
		return "", &TransportError{Op: "create lesson", Err: err}
	}
	return resp.Data.ID, nil
}

// UpdateLesson replaces the lesson identified by id with the given payload.
func (c *Client) UpdateLesson(ctx context.Context, id string, payload *LessonPayload) error {
	if _, err := c.do(ctx, http.MethodPut, "/lecciones/"+id, payload); err != nil {
		return &TransportError{Op: "update lesson", Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if res.StatusCode >= 400 {
			return nil, fmt.Errorf("status %d", res.StatusCode)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if res.StatusCode >= 400 || !parsed.Success {
		msg := parsed.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", res.StatusCode)
		}
		c.logger.Warn("lesson API request failed",
			"method", method,
			"path", path,
			"status", res.StatusCode,
			"error", msg)
		return nil, fmt.Errorf("%s", msg)
	}

	return &parsed, nil
}
