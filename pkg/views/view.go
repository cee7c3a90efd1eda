// Package views defines one View per back office listing. A view knows which
// search operation to run and how to shape the rows for display.
package views

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sw33tLie/fundscope/pkg/acgfund"
	"github.com/sw33tLie/fundscope/pkg/records"
	"github.com/sw33tLie/fundscope/pkg/storage"
)

// Querier is the part of the gateway a view needs.
type Querier interface {
	Search(ctx context.Context, d acgfund.Descriptor, token string) acgfund.Result
}

// Page is one loaded record set and how the response was read. Header is an
// optional summary shown above the rows; it belongs to the same response.
type Page struct {
	Records []records.Record
	Header  records.Record
	Outcome acgfund.Outcome
}

// View defines a common interface for listings, abstracting away which
// operation they call and how rows are renamed.
type View interface {
	Name() string
	// SheetName and FileName are used when the view is exported.
	SheetName() string
	FileName() string
	Load(ctx context.Context, q Querier, sess storage.Session) (Page, error)
}

// search runs d and projects the rows when p is non-nil.
func search(ctx context.Context, q Querier, sess storage.Session, d acgfund.Descriptor, p records.Projection) (Page, error) {
	if !sess.Valid() {
		return Page{}, storage.ErrMissingSession
	}
	res := q.Search(ctx, d, sess.Token)
	rows := res.Rows
	if p != nil {
		rows = records.Project(rows, p)
	}
	return Page{Records: rows, Outcome: res.Outcome}, nil
}

func userFilter(sess storage.Session) map[string]interface{} {
	return map[string]interface{}{"UserID": sess.UserID}
}

var DonorBalancesProjection = records.Projection{
	{From: "Donor #", To: "donorNo"},
	{From: "Donor Name", To: "donorName"},
	{From: "EndDate", To: "endDate"},
	{From: "Balance", To: "balance"},
}

type DonorBalances struct{}

func (DonorBalances) Name() string      { return "donors" }
func (DonorBalances) SheetName() string { return "DonorBalances" }
func (DonorBalances) FileName() string  { return "DonorBalances.xlsx" }

func (DonorBalances) Load(ctx context.Context, q Querier, sess storage.Session) (Page, error) {
	return search(ctx, q, sess, acgfund.Descriptor{
		RequestType: acgfund.DonorBalances,
		Filters:     userFilter(sess),
	}, DonorBalancesProjection)
}

// DonorBalanceDetails keeps the server's own field names.
type DonorBalanceDetails struct {
	ParticipantNumber string
}

func (DonorBalanceDetails) Name() string      { return "donor-details" }
func (DonorBalanceDetails) SheetName() string { return "DonorBalanceDetails" }
func (v DonorBalanceDetails) FileName() string {
	return "DonorBalanceDetails_" + safeFileToken(v.ParticipantNumber) + ".xlsx"
}

func (v DonorBalanceDetails) Load(ctx context.Context, q Querier, sess storage.Session) (Page, error) {
	if v.ParticipantNumber == "" {
		return Page{}, fmt.Errorf("donor number is required")
	}
	filters := userFilter(sess)
	filters["ParticipantNumber"] = v.ParticipantNumber
	return search(ctx, q, sess, acgfund.Descriptor{
		RequestType: acgfund.DonorBalanceDetails,
		Filters:     filters,
	}, nil)
}

var AdvisorBalancesProjection = records.Projection{
	{From: "Advisor#", To: "advisorNo"},
	{From: "Advisor", To: "advisorName"},
	{From: "EndDate", To: "endDate"},
	{From: "Balance", To: "balance"},
}

type AdvisorBalances struct{}

func (AdvisorBalances) Name() string      { return "advisors" }
func (AdvisorBalances) SheetName() string { return "AdvisorBalances" }
func (AdvisorBalances) FileName() string  { return "AdvisorBalances.xlsx" }

func (AdvisorBalances) Load(ctx context.Context, q Querier, sess storage.Session) (Page, error) {
	return search(ctx, q, sess, acgfund.Descriptor{
		RequestType: acgfund.AdvisorBalances,
		Filters:     userFilter(sess),
	}, AdvisorBalancesProjection)
}

var AdvisorDonorsProjection = records.Projection{
	{From: "Donor#", To: "donorNo"},
	{From: "Donor Name", To: "donorName"},
	{From: "Balance", To: "balance"},
}

// AdvisorHeaderProjection names the advisor summary read from the first
// detail row.
var AdvisorHeaderProjection = records.Projection{
	{From: "Advisor#", To: "advisorNo"},
	{From: "Advisor", To: "advisorName"},
	{From: "EndDate", To: "endDate"},
}

// AdvisorHeader reads the advisor summary from the first raw detail row.
func AdvisorHeader(raw []records.Record) (records.Record, bool) {
	if len(raw) == 0 {
		return records.Record{}, false
	}
	return records.Project(raw[:1], AdvisorHeaderProjection)[0], true
}

// AdvisorBalanceDetails lists the donors of one advisor. The page header
// carries the advisor number, name and end date.
type AdvisorBalanceDetails struct {
	AgentNumber string
}

func (AdvisorBalanceDetails) Name() string      { return "advisor-details" }
func (AdvisorBalanceDetails) SheetName() string { return "AdvisorBalanceDetails" }
func (v AdvisorBalanceDetails) FileName() string {
	return "AdvisorBalanceDetails_" + safeFileToken(v.AgentNumber) + ".xlsx"
}

func (v AdvisorBalanceDetails) Load(ctx context.Context, q Querier, sess storage.Session) (Page, error) {
	if v.AgentNumber == "" {
		return Page{}, fmt.Errorf("advisor number is required")
	}
	filters := userFilter(sess)
	filters["AgentNumber"] = v.AgentNumber
	raw, err := search(ctx, q, sess, acgfund.Descriptor{
		RequestType: acgfund.AdvisorBalanceDetails,
		Filters:     filters,
	}, nil)
	if err != nil {
		return Page{}, err
	}
	header, _ := AdvisorHeader(raw.Records)
	return Page{
		Records: records.Project(raw.Records, AdvisorDonorsProjection),
		Header:  header,
		Outcome: raw.Outcome,
	}, nil
}

var UsersProjection = records.Projection{
	{From: "Participant Number", To: "participantNumber"},
	{From: "Participant Name", To: "participantName"},
	{From: "Firstname", To: "firstName"},
	{From: "Lastname", To: "lastName"},
	{From: "EmailAddress", To: "email"},
	{From: "Role Type", To: "role"},
	{From: "City", To: "city"},
	{From: "State", To: "state"},
	{From: "Company", To: "company"},
	{From: "Address1", To: "address1"},
	{From: "Address2", To: "address2"},
	{From: "Cell Phone", To: "cellPhone"},
	{From: "Work Phone", To: "workPhone"},
}

type Users struct{}

func (Users) Name() string      { return "users" }
func (Users) SheetName() string { return "Users" }
func (Users) FileName() string  { return "UsersList.xlsx" }

func (Users) Load(ctx context.Context, q Querier, sess storage.Session) (Page, error) {
	return search(ctx, q, sess, acgfund.Descriptor{
		RequestType: acgfund.UserAccessList,
		Filters:     userFilter(sess),
	}, UsersProjection)
}

// CustomReportsList loads the raw report list used to build the type groups.
type CustomReportsList struct{}

func (CustomReportsList) Name() string      { return "reports" }
func (CustomReportsList) SheetName() string { return "Reports" }
func (CustomReportsList) FileName() string  { return "CustomReports.xlsx" }

func (CustomReportsList) Load(ctx context.Context, q Querier, sess storage.Session) (Page, error) {
	return search(ctx, q, sess, acgfund.Descriptor{
		RequestType: acgfund.CustomReportsList,
		Filters:     userFilter(sess),
	}, nil)
}

// CustomReport runs one report. Columns come from whatever the server sends.
type CustomReport struct {
	ReportID string
	From     string
	To       string
	// Now stamps the export file name; nil means time.Now.
	Now func() time.Time
}

func (CustomReport) Name() string      { return "report" }
func (CustomReport) SheetName() string { return "Report" }

func (v CustomReport) FileName() string {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return fmt.Sprintf("CustomReport_%d.xlsx", now().UnixMilli())
}

func (v CustomReport) Load(ctx context.Context, q Querier, sess storage.Session) (Page, error) {
	if v.ReportID == "" {
		return Page{}, nil
	}
	for _, d := range []string{v.From, v.To} {
		if _, err := acgfund.ParseReportDate(d); err != nil {
			return Page{}, err
		}
	}
	return search(ctx, q, sess, acgfund.Descriptor{
		RequestType: acgfund.CustomReportData,
		Filters:     acgfund.ReportFilters(sess.UserID, v.ReportID, v.From, v.To),
	}, nil)
}

// Registry maps the names accepted on the command line to list views.
var Registry = map[string]View{
	DonorBalances{}.Name():   DonorBalances{},
	AdvisorBalances{}.Name(): AdvisorBalances{},
	Users{}.Name():           Users{},
}

// Names returns the registry keys, sorted.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for n := range Registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func safeFileToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
