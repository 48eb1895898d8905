package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caio-ishikawa/bountyboard/shared/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error is returned for any non-2xx response from the API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error %v: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) Client {
	return Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c Client) BaseURL() string {
	return c.baseURL
}

func (c Client) Health(ctx context.Context) (models.StatusResponse, error) {
	var ret models.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, &ret); err != nil {
		return models.StatusResponse{}, fmt.Errorf("Could not reach API: %w", err)
	}

	return ret, nil
}

func (c Client) GetStats(ctx context.Context) (models.Stats, error) {
	var ret models.Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &ret); err != nil {
		return models.Stats{}, fmt.Errorf("Could not get stats: %w", err)
	}

	return ret, nil
}

func (c Client) ListPrograms(ctx context.Context) ([]models.Program, error) {
	ret := make([]models.Program, 0)
	if err := c.do(ctx, http.MethodGet, "/api/programs", nil, &ret); err != nil {
		return nil, fmt.Errorf("Could not get programs: %w", err)
	}

	return ret, nil
}

func (c Client) CreateProgram(ctx context.Context, program models.ProgramCreate) (models.Program, error) {
	var ret models.Program
	if err := c.do(ctx, http.MethodPost, "/api/programs", program, &ret); err != nil {
		return models.Program{}, fmt.Errorf("Could not create program: %w", err)
	}

	return ret, nil
}

func (c Client) DeleteProgram(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/programs/%v", id), nil, nil); err != nil {
		return fmt.Errorf("Could not delete program %v: %w", id, err)
	}

	return nil
}

// ListTargets returns every target, or only those of programID when it is not nil.
func (c Client) ListTargets(ctx context.Context, programID *int64) ([]models.Target, error) {
	path := "/api/targets"
	if programID != nil {
		param := url.Values{}
		param.Add("program_id", strconv.FormatInt(*programID, 10))
		path = fmt.Sprintf("%s?%s", path, param.Encode())
	}

	ret := make([]models.Target, 0)
	if err := c.do(ctx, http.MethodGet, path, nil, &ret); err != nil {
		return nil, fmt.Errorf("Could not get targets: %w", err)
	}

	return ret, nil
}

func (c Client) CreateTarget(ctx context.Context, target models.TargetCreate) (models.Target, error) {
	var ret models.Target
	if err := c.do(ctx, http.MethodPost, "/api/targets", target, &ret); err != nil {
		return models.Target{}, fmt.Errorf("Could not create target: %w", err)
	}

	return ret, nil
}

func (c Client) DeleteTarget(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/targets/%v", id), nil, nil); err != nil {
		return fmt.Errorf("Could not delete target %v: %w", id, err)
	}

	return nil
}

func (c Client) ListVulnerabilities(ctx context.Context, targetID *int64) ([]models.Vulnerability, error) {
	path := "/api/vulnerabilities"
	if targetID != nil {
		param := url.Values{}
		param.Add("target_id", strconv.FormatInt(*targetID, 10))
		path = fmt.Sprintf("%s?%s", path, param.Encode())
	}

	ret := make([]models.Vulnerability, 0)
	if err := c.do(ctx, http.MethodGet, path, nil, &ret); err != nil {
		return nil, fmt.Errorf("Could not get vulnerabilities: %w", err)
	}

	return ret, nil
}

func (c Client) CreateVulnerability(ctx context.Context, vuln models.VulnerabilityCreate) (models.Vulnerability, error) {
	var ret models.Vulnerability
	if err := c.do(ctx, http.MethodPost, "/api/vulnerabilities", vuln, &ret); err != nil {
		return models.Vulnerability{}, fmt.Errorf("Could not create vulnerability: %w", err)
	}

	return ret, nil
}

func (c Client) UpdateVulnerability(ctx context.Context, id int64, vuln models.VulnerabilityCreate) (models.Vulnerability, error) {
	var ret models.Vulnerability
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/vulnerabilities/%v", id), vuln, &ret); err != nil {
		return models.Vulnerability{}, fmt.Errorf("Could not update vulnerability %v: %w", id, err)
	}

	return ret, nil
}

func (c Client) DeleteVulnerability(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/vulnerabilities/%v", id), nil, nil); err != nil {
		return fmt.Errorf("Could not delete vulnerability %v: %w", id, err)
	}

	return nil
}

func (c Client) do(ctx context.Context, method string, path string, reqBody any, out any) error {
	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("Failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("Failed to build request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return parseError(res)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("Failed to decode API response: %w", err)
	}

	return nil
}

// parseError reads the message envelope, falling back to the raw body or status text.
func parseError(res *http.Response) error {
	raw, _ := io.ReadAll(res.Body)

	msg := gjson.GetBytes(raw, "message").String()
	if msg == "" {
		msg = gjson.GetBytes(raw, "detail").String()
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(res.StatusCode)
	}

	return &Error{StatusCode: res.StatusCode, Message: msg}
}
