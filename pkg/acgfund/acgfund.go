// Package acgfund talks to the back office API: one authentication endpoint
// and one generic search endpoint that every view goes through.
package acgfund

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/sw33tLie/fundscope/pkg/whttp"
)

const (
	DEFAULT_BASE_URL = "https://api-acgfund-dev.azurewebsites.net/v1"

	authPath   = "/auth/token"
	searchPath = "/data/search"

	defaultLoginError = "Login failed, invalid credentials."
)

// Logger abstracts logging so callers can use logrus or anything else with
// the same shape.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	log     Logger
}

type Option func(*Client)

func WithHTTPClient(c *retryablehttp.Client) Option { return func(cl *Client) { cl.http = c } }
func WithLogger(l Logger) Option                   { return func(cl *Client) { cl.log = l } }

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DEFAULT_BASE_URL
	}
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), log: nopLogger{}}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		hc, err := whttp.NewClient("")
		if err != nil {
			return nil, err
		}
		c.http = hc
	}
	if c.log == nil {
		c.log = nopLogger{}
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// LoginResult is the useful part of a successful /auth/token response.
type LoginResult struct {
	BearerToken string
	UserID      string
	Email       string
	FirstName   string
	LastName    string
	Roles       []string
}

// AuthError carries the message shown to the user when login is refused.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string { return e.Message }

// ErrInvalidInput is returned before any request when the credentials can't be valid.
var ErrInvalidInput = errors.New("please enter email and password")

// ValidateEmail only checks the address shape: one "@" with something on
// both sides. Whether the account exists is for the server to decide.
func ValidateEmail(email string) error {
	local, host, ok := strings.Cut(email, "@")
	if !ok || local == "" || host == "" || strings.Contains(host, "@") {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}

// emailDomainHint explains why the domain of email looks unusual, or returns "".
func emailDomainHint(email string) string {
	host := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	if _, err := publicsuffix.Domain(host); err != nil {
		return fmt.Sprintf("email domain %q has no registrable domain (%v)", host, err)
	}
	return ""
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidInput
	}
	if err := ValidateEmail(email); err != nil {
		return LoginResult{}, err
	}
	if hint := emailDomainHint(email); hint != "" {
		c.log.Warnf("%s, trying anyway", hint)
	}

	body, err := json.Marshal(struct {
		Email    string
		Password string
	}{email, password})
	if err != nil {
		return LoginResult{}, err
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method:  "POST",
		URL:     c.baseURL + authPath,
		Headers: []whttp.WHTTPHeader{{Name: "Content-Type", Value: "application/json"}},
		Body:    string(body),
	}, c.http)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login request failed: %w", err)
	}

	if !res.IsSuccess() {
		if res.HTTPTitle != "" {
			c.log.Debugf("login returned an HTML page: %s", res.HTTPTitle)
		}
		return LoginResult{}, &AuthError{StatusCode: res.StatusCode, Message: loginErrorMessage(res.BodyString)}
	}

	parsed := gjson.Parse(res.BodyString)
	out := LoginResult{
		BearerToken: parsed.Get("BearerToken").String(),
		UserID:      parsed.Get("UserId").String(),
		Email:       parsed.Get("Email").String(),
		FirstName:   parsed.Get("FirstName").String(),
		LastName:    parsed.Get("LastName").String(),
	}
	for _, r := range parsed.Get("Roles").Array() {
		out.Roles = append(out.Roles, r.String())
	}
	if out.BearerToken == "" || out.UserID == "" {
		return LoginResult{}, &AuthError{StatusCode: res.StatusCode, Message: defaultLoginError}
	}
	return out, nil
}

func loginErrorMessage(body string) string {
	if gjson.Valid(body) {
		parsed := gjson.Parse(body)
		for _, path := range []string{"message", "Message", "error"} {
			if msg := strings.TrimSpace(parsed.Get(path).String()); msg != "" {
				return msg
			}
		}
	}
	return defaultLoginError
}
