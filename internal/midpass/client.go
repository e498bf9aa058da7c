package midpass

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrNotFound - у midpass нет записи по этому номеру (пустое тело ответа).
	ErrNotFound = errors.New("order not found in midpass")
	// ErrTimeout - запрос не уложился в таймаут. Отличается от прочих ошибок:
	// планировщик трактует его как признак недоступности всего апстрима.
	ErrTimeout = errors.New("midpass request timeout")
)

// Status описывает ответ midpass по заявлению.
type Status struct {
	SourceUID      string         `json:"sourceUid"`
	ReceptionDate  string         `json:"receptionDate"`
	PassportStatus PassportStatus `json:"passportStatus"`
	InternalStatus InternalStatus `json:"internalStatus"`
}

// PassportStatus - публичный статус заявления.
type PassportStatus struct {
	ID           int64  `json:"passportStatusId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Color        string `json:"color"`
	Subscription bool   `json:"subscription"`
}

// InternalStatus - внутренний статус, percent - основной сигнал готовности.
type InternalStatus struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// Client интерфейс получения статуса заявления с конкретного эндпоинта.
type Client interface {
	GetStatus(ctx context.Context, endpoint, uid string) (*Status, error)
}

type HTTPClient struct {
	httpClient *http.Client
}

// NewHTTPClient создаёт HTTP-клиент с жёстким таймаутом на запрос.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetStatus запрашивает статус заявления: GET {endpoint}/{uid}.
func (c *HTTPClient) GetStatus(ctx context.Context, endpoint, uid string) (*Status, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid midpass endpoint: %w", err)
	}
	u.Path = fmt.Sprintf("%s/%s", u.Path, uid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("midpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected midpass status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("read midpass response: %w", err)
	}

	// Пустое тело или литерал null означают "заявление не найдено".
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, ErrNotFound
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decode midpass response: %w", err)
	}

	return &status, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
