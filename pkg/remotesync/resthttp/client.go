package resthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/CypherNinjaa/french-learning-app-sub000/pkg/remotesync"
)

// Client posts progress updates to the hosted platform's REST surface.
type Client struct {
	base string
	http *http.Client
}

type Config struct {
	BaseURL string

	// OAuth2 client-credentials. Leave TokenURL empty for an unauthenticated
	// client (local dev mirrors).
	TokenURL     string
	ClientID     string
	ClientSecret string

	Timeout time.Duration
}

func New(cfg Config) *Client {
	var h *http.Client
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		h = cc.Client(context.Background())
	} else {
		h = &http.Client{}
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{base: strings.TrimSuffix(cfg.BaseURL, "/"), http: h}
}

// UpdateLessonProgress POSTs one update; any non-2xx status is an error.
func (c *Client) UpdateLessonProgress(ctx context.Context, userID string, upd remotesync.ProgressUpdate) error {
	body, err := json.Marshal(upd)
	if err != nil {
		return err
	}
	u := fmt.Sprintf("%s/users/%s/lesson-progress", c.base, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("update lesson progress: %s", res.Status)
	}
	return nil
}
