// Package client talks to the remote photo-sharing service
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aouyang1/magicframe/api/models"
	"github.com/aouyang1/magicframe/session"
)

const userAgent = "magicframe/1.0"

var (
	// ErrUnauthorized is returned when the service refuses the bearer token
	ErrUnauthorized = errors.New("token rejected by server")
	// ErrInvalidResponse is returned when a 200 response lacks the expected fields
	ErrInvalidResponse = errors.New("invalid response from server")
)

// APIError carries the message the service sent back with a failed call
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Kind is the shape of a not downloaded images response
type Kind int

const (
	KindUnknown Kind = iota
	KindMetadata
	KindZip
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindMetadata:
		return "metadata"
	case KindZip:
		return "zip"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Download is an open response from the polling endpoint. The caller must Close it.
type Download struct {
	Kind               Kind
	ContentType        string
	ContentDisposition string
	Body               io.ReadCloser
}

func (d *Download) Close() error {
	return d.Body.Close()
}

// Metadata decodes a KindMetadata body
func (d *Download) Metadata() (*models.NotDownloadedResponse, error) {
	var resp models.NotDownloadedResponse
	if err := json.NewDecoder(d.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

// ClassifyContentType maps a response content type onto the shapes the poller understands
func ClassifyContentType(contentType string) Kind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/json"):
		return KindMetadata
	case strings.Contains(ct, "application/zip"):
		return KindZip
	case strings.Contains(ct, "image/jpeg"), strings.Contains(ct, "image/png"), strings.Contains(ct, "image/gif"):
		return KindImage
	default:
		return KindUnknown
	}
}

type PhotoClient struct {
	baseURL string
	rootURL string

	client *http.Client
	// transfers stream whole archives so only the request context bounds them
	transfers *http.Client
}

// NewPhotoClient builds a client for the api endpoint at baseURL, e.g.
// http://host/magicframe/website/api.php. Image urls returned by the service are resolved against
// the directory holding the endpoint.
func NewPhotoClient(baseURL string, timeout time.Duration) *PhotoClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &PhotoClient{
		baseURL:   baseURL,
		rootURL:   rootOf(baseURL),
		client:    &http.Client{Timeout: timeout},
		transfers: &http.Client{},
	}
}

func rootOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || path.Ext(u.Path) == "" {
		return baseURL
	}
	u.Path = path.Dir(u.Path)
	return strings.TrimRight(u.String(), "/")
}

// Login exchanges credentials for a session
func (pc *PhotoClient) Login(ctx context.Context, username, password string) (*session.Session, error) {
	jsonData, err := json.Marshal(models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := pc.newRequest(ctx, http.MethodPost, pc.baseURL+"/login", "", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := pc.do(req)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, decodeError(status, body, false)
	}

	var loginResp models.LoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if loginResp.Token == "" {
		return nil, ErrInvalidResponse
	}

	return &session.Session{
		Token:    loginResp.Token,
		UserID:   loginResp.UserID,
		Username: loginResp.Username,
	}, nil
}

// Logout invalidates the token server side and returns the server's message
func (pc *PhotoClient) Logout(ctx context.Context, token string) (string, error) {
	req, err := pc.newRequest(ctx, http.MethodPost, pc.baseURL+"/logout", token, nil)
	if err != nil {
		return "", err
	}

	body, status, err := pc.do(req)
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		return "", decodeError(status, body, true)
	}

	var logoutResp models.LogoutResponse
	if err := json.Unmarshal(body, &logoutResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if !logoutResp.Success {
		msg := logoutResp.Message
		if msg == "" {
			msg = "Unknown error during logout"
		}
		return "", &APIError{StatusCode: status, Message: msg}
	}
	if logoutResp.Message == "" {
		logoutResp.Message = "You have been successfully logged out"
	}
	return logoutResp.Message, nil
}

// VerifyToken issues a lightweight authenticated call. Any non-200 answer is ErrUnauthorized.
func (pc *PhotoClient) VerifyToken(ctx context.Context, token string) error {
	req, err := pc.newRequest(ctx, http.MethodGet, pc.baseURL+"/images", token, nil)
	if err != nil {
		return err
	}

	_, status, err := pc.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnauthorized, status)
	}
	return nil
}

// FetchNew asks for the images not yet downloaded by this user, in download mode
func (pc *PhotoClient) FetchNew(ctx context.Context, token string) (*Download, error) {
	req, err := pc.newRequest(ctx, http.MethodGet, pc.baseURL+"/notDownloadedImages?download=true", token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := pc.transfers.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, decodeError(resp.StatusCode, body, false)
	}

	contentType := resp.Header.Get("Content-Type")
	return &Download{
		Kind:               ClassifyContentType(contentType),
		ContentType:        contentType,
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		Body:               resp.Body,
	}, nil
}

// DownloadFile fetches an image by the relative url the metadata listing carries
func (pc *PhotoClient) DownloadFile(ctx context.Context, relURL string) (io.ReadCloser, error) {
	fileURL := pc.rootURL + "/" + strings.TrimLeft(relURL, "/")
	req, err := pc.newRequest(ctx, http.MethodGet, fileURL, "", nil)
	if err != nil {
		return nil, err
	}

	resp, err := pc.transfers.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("server returned status %d for %s", resp.StatusCode, fileURL)
	}
	return resp.Body, nil
}

func (pc *PhotoClient) newRequest(ctx context.Context, method, target, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (pc *PhotoClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// decodeError turns an error body into an APIError. preferMessage picks the "message" field over
// "error" when both are present, which is how the logout endpoint reports failures.
func decodeError(status int, body []byte, preferMessage bool) error {
	msg := "Unknown error"
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case preferMessage && errResp.Message != "":
			msg = errResp.Message
		case errResp.Error != "":
			msg = errResp.Error
		case errResp.Message != "":
			msg = errResp.Message
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}
