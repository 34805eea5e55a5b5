package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/Houeta/market-map/internal/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a rejection body is read for its message.
const maxErrorBody = 64 << 10

// Client talks to the remote price-aggregation service.
type Client struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// credentials is the body of login and register requests.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(log *slog.Logger, baseURL string, opts *Options) *Client {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()

	return &Client{
		log:     log,
		baseURL: baseURL,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: opts.limiter(),
	}
}

// ListProducts returns the products matching search. The service filters by name and category.
func (c *Client) ListProducts(ctx context.Context, search string) ([]models.Product, error) {
	const opn = "pricing.ListProducts"

	resp, err := c.do(ctx, http.MethodGet, []string{"products"}, url.Values{"search": {search}}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", opn, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status})
	}

	var products []models.Product
	if err = json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("%s: failed to decode products: %w", opn, err)
	}

	c.log.DebugContext(ctx, "Products received", "op", opn, "search", search, "count", len(products))

	return products, nil
}

// ProductStats returns the market statistics of the products similar to id.
func (c *Client) ProductStats(ctx context.Context, id string) (models.MarketStats, error) {
	const opn = "pricing.ProductStats"

	if _, err := uuid.Parse(id); err != nil {
		return models.MarketStats{}, fmt.Errorf("%s: %w %q: %w", opn, ErrInvalidProductID, id, err)
	}

	resp, err := c.do(ctx, http.MethodGet, []string{"products", id, "stats"}, nil, nil)
	if err != nil {
		return models.MarketStats{}, fmt.Errorf("%s: %w", opn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.MarketStats{}, fmt.Errorf("%s: %w", opn,
			&StatusError{StatusCode: resp.StatusCode, Status: resp.Status})
	}

	var stats models.MarketStats
	if err = json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return models.MarketStats{}, fmt.Errorf("%s: failed to decode stats: %w", opn, err)
	}

	return stats, nil
}

// Login exchanges credentials for the user profile. Any status other than 200
// is reported as ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	const opn = "pricing.Login"

	resp, err := c.do(ctx, http.MethodPost, []string{"login"}, nil, credentials{Email: email, Password: password})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", opn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.InfoContext(ctx, "Login rejected", "op", opn, "status code", resp.StatusCode)
		return models.User{}, fmt.Errorf("%s: %w", opn, ErrInvalidCredentials)
	}

	var user models.User
	if err = json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("%s: failed to decode user: %w", opn, err)
	}

	return user, nil
}

// Register creates an account. A rejection is returned as *RegistrationError
// carrying the service's message.
func (c *Client) Register(ctx context.Context, email, password string) error {
	const opn = "pricing.Register"

	resp, err := c.do(ctx, http.MethodPost, []string{"register"}, nil, credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		return nil
	}

	return &RegistrationError{StatusCode: resp.StatusCode, Message: c.errorMessage(ctx, resp)}
}

// do sends one request to the service. The caller closes the response body.
func (c *Client) do(
	ctx context.Context,
	method string,
	path []string,
	query url.Values,
	payload any,
) (*http.Response, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service URL %s: %w", c.baseURL, err)
	}
	reqURL = reqURL.JoinPath(path...)
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request %s: %w", reqURL.String(), err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err = c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	c.log.DebugContext(ctx, "Send request", "method", req.Method, "URL", req.URL)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", reqURL.Redacted(), err)
	}

	c.log.DebugContext(ctx, "Received http response", "URL", req.URL, "status code", res.StatusCode)

	return res, nil
}

// errorMessage extracts a human readable message from a rejection body.
// HTML error pages from proxies are reduced to their text.
func (c *Client) errorMessage(ctx context.Context, resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		c.log.WarnContext(ctx, "failed to read error body", "error", err)
		return defaultRegistrationMessage
	}

	text := string(data)
	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType == "text/html" {
		text = htmlText(data)
	}

	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return defaultRegistrationMessage
	}

	return text
}

func htmlText(data []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	doc.Find("script, style, title").Remove()

	return doc.Find("body").Text()
}

// IsRegistrationError reports whether err is a signup rejection and returns it.
func IsRegistrationError(err error) (*RegistrationError, bool) {
	var regErr *RegistrationError
	ok := errors.As(err, &regErr)

	return regErr, ok
}
