package acgfund

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/sw33tLie/fundscope/pkg/records"
	"github.com/sw33tLie/fundscope/pkg/whttp"
)

// Operation names understood by the search endpoint.
const (
	DonorBalances         = "DashboardAdminParticipantBalances"
	DonorBalanceDetails   = "DashboardAdminParticipantBalancesDetails"
	AdvisorBalances       = "DashboardAdminAdvisorBalances"
	AdvisorBalanceDetails = "DashboardAdminAdvisorBalancesDetails"
	UserAccessList        = "DashboardParticipantUserAccessList"
	CustomReportsList     = "GetDashboardAdminCustomReportsList"
	CustomReportData      = "GetDashboardAdminCustomReports"
)

var knownRequestTypes = map[string]bool{
	DonorBalances:         true,
	DonorBalanceDetails:   true,
	AdvisorBalances:       true,
	AdvisorBalanceDetails: true,
	UserAccessList:        true,
	CustomReportsList:     true,
	CustomReportData:      true,
}

// ReportDateLayout is the mm-dd-yyyy form the back end expects for report dates.
const ReportDateLayout = "01-02-2006"

var (
	ErrMissingToken       = errors.New("missing bearer token")
	ErrUnknownRequestType = errors.New("unknown request type")
)

// Descriptor is the {RequestParamType, Filters} envelope.
type Descriptor struct {
	RequestType string
	Filters     map[string]interface{}
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	filters := d.Filters
	if filters == nil {
		filters = map[string]interface{}{}
	}
	return json.Marshal(struct {
		RequestParamType string
		Filters          map[string]interface{}
	}{d.RequestType, filters})
}

// Outcome tells a real empty result apart from one that could not be read.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeUnparsable
	OutcomeUnexpectedShape
	OutcomeRequestFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnparsable:
		return "unparsable response"
	case OutcomeUnexpectedShape:
		return "unexpected response shape"
	case OutcomeRequestFailed:
		return "request failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is what Search hands back. Rows is empty whenever Outcome is not OK.
type Result struct {
	Rows    []records.Record
	Outcome Outcome
	// Err holds the transport or validation error behind OutcomeRequestFailed.
	Err error
}

// Degraded reports whether the rows were dropped because of the response.
func (r Result) Degraded() bool { return r.Outcome != OutcomeOK }

// Search runs one descriptor against the search endpoint. It never returns an
// error: anything that goes wrong yields an empty Result with a named outcome.
func (c *Client) Search(ctx context.Context, d Descriptor, token string) Result {
	if token == "" {
		return Result{Outcome: OutcomeRequestFailed, Err: ErrMissingToken}
	}
	if !knownRequestTypes[d.RequestType] {
		return Result{Outcome: OutcomeRequestFailed, Err: fmt.Errorf("%w: %q", ErrUnknownRequestType, d.RequestType)}
	}

	body, err := json.Marshal(d)
	if err != nil {
		return Result{Outcome: OutcomeRequestFailed, Err: err}
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "POST",
		URL:    c.baseURL + searchPath,
		Headers: []whttp.WHTTPHeader{
			{Name: "Content-Type", Value: "application/json"},
			{Name: "Authorization", Value: "Bearer " + token},
		},
		Body: string(body),
	}, c.http)
	if err != nil {
		c.log.Warnf("%s request failed: %v", d.RequestType, err)
		return Result{Outcome: OutcomeRequestFailed, Err: err}
	}

	result := ParseRows(res.BodyString)
	if result.Degraded() {
		c.log.Warnf("%s returned %s (status %d)", d.RequestType, result.Outcome, res.StatusCode)
		if res.HTTPTitle != "" {
			c.log.Debugf("%s page title: %s", d.RequestType, res.HTTPTitle)
		}
	}
	return result
}

// ParseRows normalizes a search response body. Accepted shapes are a top-level
// array, or an object carrying the array under "data" or "result". An empty
// body is a real empty result.
func ParseRows(body string) Result {
	if len(body) == 0 {
		return Result{Outcome: OutcomeOK}
	}
	if !gjson.Valid(body) {
		return Result{Outcome: OutcomeUnparsable}
	}

	parsed := gjson.Parse(body)
	var arr gjson.Result
	switch {
	case parsed.IsArray():
		arr = parsed
	case parsed.IsObject() && parsed.Get("data").IsArray():
		arr = parsed.Get("data")
	case parsed.IsObject() && parsed.Get("result").IsArray():
		arr = parsed.Get("result")
	default:
		return Result{Outcome: OutcomeUnexpectedShape}
	}

	rows := make([]records.Record, 0, len(arr.Array()))
	for _, item := range arr.Array() {
		if rec, ok := records.FromJSON(item); ok {
			rows = append(rows, rec)
		}
	}
	return Result{Rows: rows, Outcome: OutcomeOK}
}

// ReportFilters builds the filters for a custom report run. Empty dates are
// left out of the request.
func ReportFilters(userID, reportID, beginDate, endDate string) map[string]interface{} {
	filters := map[string]interface{}{
		"UserID":              userID,
		"AdminCustomReportID": reportID,
	}
	if beginDate != "" {
		filters["BeginDate"] = beginDate
	}
	if endDate != "" {
		filters["EndDate"] = endDate
	}
	return filters
}

// ParseReportDate validates a mm-dd-yyyy date. The empty string is allowed.
func ParseReportDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(ReportDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected mm-dd-yyyy", s)
	}
	return t, nil
}
