package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/sw33tLie/fundscope/pkg/acgfund"
	"github.com/sw33tLie/fundscope/pkg/records"
	"github.com/sw33tLie/fundscope/pkg/storage"
	"github.com/sw33tLie/fundscope/pkg/views"
)

func main() {
	// Usage: go run *.go -email "you@example.org" -password "secret" -search "smith"

	emailFlag := flag.String("email", "", "Back office email")
	passwordFlag := flag.String("password", "", "Back office password")
	searchFlag := flag.String("search", "", "Only print rows containing this text")

	// Parse the command-line flags
	flag.Parse()

	if *emailFlag == "" || *passwordFlag == "" {
		fmt.Println("Email and password are required. Please provide them using the -email and -password flags.")
		return
	}

	ctx := context.Background()
	client, err := acgfund.NewClient(acgfund.DEFAULT_BASE_URL)
	if err != nil {
		fmt.Println(err)
		return
	}

	login, err := client.Login(ctx, *emailFlag, *passwordFlag)
	if err != nil {
		fmt.Println(err)
		return
	}

	// The session doesn't have to be stored to be used
	sess := storage.Session{Token: login.BearerToken, UserID: login.UserID}

	// Every view is loaded the same way
	page, err := views.DonorBalances{}.Load(ctx, client, sess)
	if err != nil {
		fmt.Println(err)
		return
	}

	cols := records.Layout(page.Records)
	for _, rec := range records.Filter(page.Records, *searchFlag) {
		fmt.Println(strings.Join(rec.Row(cols.Inline), "\t"))
	}
}
