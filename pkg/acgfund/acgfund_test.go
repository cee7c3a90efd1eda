package acgfund

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestLoginSuccess(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/token" || r.Method != "POST" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.Write([]byte(`{"BearerToken":"tok","UserId":"42","Email":"ada@example.com","FirstName":"Ada","LastName":"L","Roles":["Admin"]}`))
	})

	res, err := c.Login(context.Background(), "  ada@example.com ", " secret ")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got["Email"] != "ada@example.com" || got["Password"] != "secret" {
		t.Fatalf("credentials were not trimmed: %v", got)
	}
	want := LoginResult{BearerToken: "tok", UserID: "42", Email: "ada@example.com", FirstName: "Ada", LastName: "L", Roles: []string{"Admin"}}
	if !reflect.DeepEqual(res, want) {
		t.Fatalf("want %+v, got %+v", want, res)
	}
}

func TestLoginFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message", body: `{"message":"Bad password"}`, want: "Bad password"},
		{name: "Message", body: `{"Message":"Locked out"}`, want: "Locked out"},
		{name: "error", body: `{"error":"nope"}`, want: "nope"},
		{name: "unknown shape", body: `{"detail":"x"}`, want: defaultLoginError},
		{name: "not json", body: `<html><title>Unauthorized</title></html>`, want: defaultLoginError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(tc.body))
			})
			_, err := c.Login(context.Background(), "ada@example.com", "wrong")
			var authErr *AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthError, got %v", err)
			}
			if authErr.Message != tc.want {
				t.Fatalf("want %q, got %q", tc.want, authErr.Message)
			}
		})
	}
}

func TestLoginRejectsBadInputWithoutRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	if _, err := c.Login(context.Background(), "", "x"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	for _, email := range []string{"no-at-sign", "@example.com", "ada@", "a@b@example.com"} {
		if _, err := c.Login(context.Background(), email, "x"); err == nil {
			t.Fatalf("expected an error for %q", email)
		}
	}
	if called {
		t.Fatal("no request should be sent for invalid credentials")
	}
}

func TestSearchSendsDescriptor(t *testing.T) {
	var auth string
	var body map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &body)
		w.Write([]byte(`{"data":[{"Donor #":"1","Balance":10},{"Donor #":"2","Balance":20}]}`))
	})

	res := c.Search(context.Background(), Descriptor{
		RequestType: CustomReportData,
		Filters:     ReportFilters("7", "99", "01-01-2024", ""),
	}, "tok")

	if auth != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	want := map[string]interface{}{
		"RequestParamType": CustomReportData,
		"Filters": map[string]interface{}{
			"UserID":              "7",
			"AdminCustomReportID": "99",
			"BeginDate":           "01-01-2024",
		},
	}
	if !reflect.DeepEqual(body, want) {
		t.Fatalf("unexpected body.\nwant: %#v\ngot:  %#v", want, body)
	}
	if res.Outcome != OutcomeOK || len(res.Rows) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Rows[1].GetString("Balance") != "20" {
		t.Fatalf("unexpected row: %v", res.Rows[1].Keys())
	}
}

func TestSearchPreconditions(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	res := c.Search(context.Background(), Descriptor{RequestType: DonorBalances}, "")
	if res.Outcome != OutcomeRequestFailed || !errors.Is(res.Err, ErrMissingToken) {
		t.Fatalf("expected missing token, got %+v", res)
	}
	res = c.Search(context.Background(), Descriptor{RequestType: "DropTables"}, "tok")
	if res.Outcome != OutcomeRequestFailed || !errors.Is(res.Err, ErrUnknownRequestType) {
		t.Fatalf("expected unknown request type, got %+v", res)
	}
	if called {
		t.Fatal("no request should be sent")
	}
}

func TestSearchDegradesOnServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html><title>Service Unavailable</title></html>"))
	})
	res := c.Search(context.Background(), Descriptor{RequestType: UserAccessList}, "tok")
	if res.Outcome != OutcomeUnparsable || len(res.Rows) != 0 {
		t.Fatalf("expected an unparsable empty result, got %+v", res)
	}
}

func TestParseRows(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		outcome Outcome
		rows    int
	}{
		{name: "array", body: `[{"a":1},{"a":2}]`, outcome: OutcomeOK, rows: 2},
		{name: "data key", body: `{"data":[{"a":1}]}`, outcome: OutcomeOK, rows: 1},
		{name: "result key", body: `{"result":[{"a":1},{"a":2},{"a":3}]}`, outcome: OutcomeOK, rows: 3},
		{name: "data wins over result", body: `{"result":[{"a":1}],"data":[]}`, outcome: OutcomeOK, rows: 0},
		{name: "really empty", body: `[]`, outcome: OutcomeOK, rows: 0},
		{name: "empty body", body: ``, outcome: OutcomeOK, rows: 0},
		{name: "non object items skipped", body: `[{"a":1},2,"x",null]`, outcome: OutcomeOK, rows: 1},
		{name: "garbage", body: `not json`, outcome: OutcomeUnparsable, rows: 0},
		{name: "object without array", body: `{"data":{"a":1}}`, outcome: OutcomeUnexpectedShape, rows: 0},
		{name: "scalar", body: `42`, outcome: OutcomeUnexpectedShape, rows: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			res := ParseRows(tc.body)
			if res.Outcome != tc.outcome || len(res.Rows) != tc.rows {
				t.Fatalf("want %s/%d rows, got %s/%d rows", tc.outcome, tc.rows, res.Outcome, len(res.Rows))
			}
		})
	}
}

func TestParseReportDate(t *testing.T) {
	if _, err := ParseReportDate(""); err != nil {
		t.Fatalf("empty date should be accepted: %v", err)
	}
	d, err := ParseReportDate("02-29-2024")
	if err != nil || d.Day() != 29 {
		t.Fatalf("unexpected parse: %v %v", d, err)
	}
	if _, err := ParseReportDate("2024-02-29"); err == nil {
		t.Fatal("expected an error for yyyy-mm-dd")
	}
}

type warnRecorder struct{ warnings []string }

func (w *warnRecorder) Debugf(string, ...interface{}) {}
func (w *warnRecorder) Warnf(format string, args ...interface{}) {
	w.warnings = append(w.warnings, fmt.Sprintf(format, args...))
}

func TestLoginSendsIntranetAddresses(t *testing.T) {
	for _, email := range []string{"admin@localhost", "ops@intranet"} {
		t.Run(email, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				got = gjson.GetBytes(body, "Email").String()
				io.WriteString(w, `{"BearerToken":"t","UserId":"1"}`)
			}))
			defer srv.Close()

			rec := &warnRecorder{}
			c, err := NewClient(srv.URL, WithLogger(rec))
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if _, err := c.Login(context.Background(), email, "secret"); err != nil {
				t.Fatalf("Login: %v", err)
			}
			if got != email {
				t.Fatalf("want the server to receive %q, got %q", email, got)
			}
			if len(rec.warnings) != 1 {
				t.Fatalf("expected one domain warning, got %v", rec.warnings)
			}
		})
	}
}
