package metamob

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"time"

	"metamob-tracker/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const DefaultSiteBaseURL = "https://www.metamob.fr"

// SiteClient scrapes the public website. The API has no endpoint listing
// recently active accounts, so that list comes from the logged-in
// /utilisateur page.
type SiteClient struct {
	http *resty.Client
}

type SiteOptions struct {
	// BaseURL defaults to DefaultSiteBaseURL
	BaseURL string
	Timeout time.Duration
}

func NewSiteClient(opts SiteOptions) (*SiteClient, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultSiteBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "metamob/site")

	return &SiteClient{http: client}, nil
}

// Login authenticates the session cookie jar against /connexion. The site
// answers 200 on bad credentials with an error banner in the body.
func (c *SiteClient) Login(ctx context.Context, identifiant, password string) error {
	const op = "login"

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"identifiant": identifiant,
			"password":    password,
		}).
		Post("/connexion")
	if err != nil {
		return transient(op, err)
	}
	if res.StatusCode() != 200 {
		return transient(op, fmt.Errorf("status %d", res.StatusCode()))
	}
	if strings.Contains(res.String(), "Identifiants incorrects") {
		return permanent(op, ErrLoginFailed)
	}
	return nil
}

// RecentUsers scrapes the user listing page, which shows roughly the 200
// most recently logged-in accounts. Requires a prior Login.
func (c *SiteClient) RecentUsers(ctx context.Context) ([]string, error) {
	const op = "list recent users"

	res, err := c.http.R().
		SetContext(ctx).
		Get("/utilisateur")
	if err != nil {
		return nil, transient(op, err)
	}
	if err := classifyStatus(op, res); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, permanent(op, fmt.Errorf("malformed page: %w", err))
	}

	var names []string
	doc.Find("div.utilisateur-nom").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Text())
		if name != "" {
			names = append(names, name)
		}
	})
	return names, nil
}
