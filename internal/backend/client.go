// Package backend reads student records from the upstream results API.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vytor/enemresultados/internal/ingest"
	"github.com/vytor/enemresultados/internal/logger"
	"github.com/vytor/enemresultados/internal/models"
)

const maxBodyBytes = 8 << 20

var ErrNoBaseURL = errors.New("backend: no base URL configured")

// StatusError is a non-2xx answer from the upstream API.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.URL, e.Status, e.Body)
}

type Client struct {
	httpClient *http.Client
	baseURLs   []string
	token      string
	loc        *time.Location
	log        *logger.Logger
}

// New builds a client that tries baseURLs in order, moving to the next one
// when a request fails or answers with a non-2xx status.
func New(baseURLs []string, token string, loc *time.Location) *Client {
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURLs:   baseURLs,
		token:      token,
		loc:        loc,
		log:        logger.Default().WithPrefix("backend"),
	}
}

func (c *Client) Performance(ctx context.Context, studentID int64, periodDays int) ([]models.PerformanceRecord, error) {
	body, err := c.get(ctx, studentID, fmt.Sprintf("/api/resultados/desempenho/%d", studentID), periodDays)
	if err != nil {
		return nil, err
	}
	return ingest.Performance(body, c.loc)
}

func (c *Client) Activity(ctx context.Context, studentID int64, periodDays int) ([]models.ActivityRecord, error) {
	body, err := c.get(ctx, studentID, fmt.Sprintf("/api/resultados/atividade/%d", studentID), periodDays)
	if err != nil {
		return nil, err
	}
	return ingest.Activity(body, c.loc)
}

func (c *Client) Simulados(ctx context.Context, studentID int64, periodDays int) ([]models.SimuladoRecord, error) {
	body, err := c.get(ctx, studentID, fmt.Sprintf("/api/resultados/historico/%d", studentID), periodDays)
	if err != nil {
		return nil, err
	}
	return ingest.Simulados(body, c.loc)
}

func (c *Client) Essays(ctx context.Context, studentID int64) ([]models.EssayRecord, error) {
	body, err := c.get(ctx, studentID, fmt.Sprintf("/api/redacoes/usuario/%d", studentID), 0)
	if err != nil {
		return nil, err
	}
	return ingest.Essays(body, c.loc)
}

func (c *Client) get(ctx context.Context, studentID int64, path string, periodDays int) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("backend").WithField("student_id", studentID)
	if len(c.baseURLs) == 0 {
		return nil, ErrNoBaseURL
	}

	var lastErr error
	for i, base := range c.baseURLs {
		u := base + path
		if periodDays > 0 {
			u += "?" + url.Values{"periodo": {strconv.Itoa(periodDays)}}.Encode()
		}

		body, err := c.fetch(ctx, log, studentID, u)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if i < len(c.baseURLs)-1 {
			log.Warn("request to %s failed, trying next host: %v", base, err)
		}
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, log *logger.Logger, studentID int64, u string) ([]byte, error) {
	log.Debug("fetching %s", u)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-User-ID", strconv.FormatInt(studentID, 10))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{URL: u, Status: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read response body: %v", err)
		return nil, err
	}
	return body, nil
}
