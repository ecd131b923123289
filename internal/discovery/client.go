// Package discovery реализует клиент внешнего каталога событий
// (Ticketmaster Discovery API). Ответы внешнего API проксируются
// клиенту как есть, без перекодирования.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
)

// Client выполняет запросы к внешнему discovery API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает новый клиент discovery API.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	const op = "discovery.get"

	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrUpstream, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s: %w", op, resp.Status, apperrors.ErrUpstream)
	}
	return json.RawMessage(body), nil
}

// Search проксирует поиск событий во внешнем каталоге. Параметры
// запроса передаются как есть; ключ API добавляется из конфигурации.
func (c *Client) Search(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.get(ctx, "/events.json", query)
}

// Details возвращает карточку события внешнего каталога по его ID.
func (c *Client) Details(ctx context.Context, id string) (json.RawMessage, error) {
	return c.get(ctx, "/events/"+url.PathEscape(id)+".json", nil)
}
