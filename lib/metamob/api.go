// Package metamob talks to the two faces of metamob.fr: the json API
// behind an api key, and the public website behind a login session.
package metamob

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"metamob-tracker/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const DefaultAPIBaseURL = "https://api.metamob.fr"

// Client calls the json API. It performs exactly one HTTP request per
// method call, admission control and retries belong to the caller.
type Client struct {
	http *resty.Client
}

type ClientOptions struct {
	// BaseURL defaults to DefaultAPIBaseURL
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("metamob: an api key is required")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("HTTP-X-APIKEY", opts.APIKey)
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "metamob/api")

	return &Client{http: client}, nil
}

// UserMonsters lists every monster record of the given user.
func (c *Client) UserMonsters(ctx context.Context, pseudo string) ([]UserMonster, error) {
	op := fmt.Sprintf("get monsters of %q", pseudo)

	res, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/utilisateurs/%s/monstres", url.PathEscape(pseudo)))
	if err != nil {
		return nil, transient(op, err)
	}
	if err := classifyStatus(op, res); err != nil {
		return nil, err
	}

	var monsters []UserMonster
	err = json.Unmarshal(res.Body(), &monsters)
	if err != nil {
		return nil, permanent(op, fmt.Errorf("malformed response: %w", err))
	}
	return monsters, nil
}

// User fetches the public profile of the given user.
func (c *Client) User(ctx context.Context, pseudo string) (UserProfile, error) {
	op := fmt.Sprintf("get profile of %q", pseudo)

	res, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/utilisateurs/%s", url.PathEscape(pseudo)))
	if err != nil {
		return UserProfile{}, transient(op, err)
	}
	if err := classifyStatus(op, res); err != nil {
		return UserProfile{}, err
	}

	var profile UserProfile
	err = json.Unmarshal(res.Body(), &profile)
	if err != nil {
		return UserProfile{}, permanent(op, fmt.Errorf("malformed response: %w", err))
	}
	return profile, nil
}

func classifyStatus(op string, res *resty.Response) error {
	code := res.StatusCode()
	switch {
	case code == 200:
		return nil
	case code == 404:
		return permanent(op, ErrNotFound)
	case code == 401 || code == 403:
		return permanent(op, ErrUnauthorized)
	case code == 429 || code >= 500:
		return transient(op, fmt.Errorf("status %d", code))
	default:
		return permanent(op, fmt.Errorf("unexpected status %d", code))
	}
}
