// Command obexctl is a smoke-test CLI client for the exchange (spec
// component F5), grounded on the teacher's cmd/client/client.go flag shape
// but speaking HTTP/JSON instead of the teacher's binary TCP protocol.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:8000", "Base URL of the exchange server")
	account := flag.String("account", "", "Account name (compulsory for order actions)")
	apikey := flag.String("apikey", "", "API key, sent as X-Starfighter-Authorization")
	action := flag.String("action", "quote", "Action: ['quote', 'book', 'place', 'status', 'cancel', 'venues']")

	venue := flag.String("venue", "TESTEX", "Venue")
	stock := flag.String("stock", "FOOBAR", "Stock symbol")
	side := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	orderType := flag.String("type", "limit", "Order type: limit, market, immediate-or-cancel, fill-or-kill")
	price := flag.Int64("price", 0, "Limit price in cents")
	qty := flag.Uint64("qty", 10, "Quantity")
	id := flag.Uint64("id", 0, "Order id (for status/cancel)")

	flag.Parse()

	client := resty.New().SetBaseURL(*server)
	if *apikey != "" {
		client.SetHeader("X-Starfighter-Authorization", *apikey)
	}

	var (
		resp *resty.Response
		err  error
	)

	switch strings.ToLower(*action) {
	case "venues":
		resp, err = client.R().Get("/ob/api/venues")

	case "quote":
		resp, err = client.R().Get(fmt.Sprintf("/ob/api/venues/%s/stocks/%s/quote", *venue, *stock))

	case "book":
		resp, err = client.R().Get(fmt.Sprintf("/ob/api/venues/%s/stocks/%s", *venue, *stock))

	case "place":
		if *account == "" {
			log.Fatal("Error: -account is compulsory for place")
		}
		body := map[string]any{
			"account":   *account,
			"venue":     *venue,
			"stock":     *stock,
			"direction": *side,
			"orderType": *orderType,
			"qty":       *qty,
		}
		if *orderType != "market" {
			body["price"] = *price
		}
		resp, err = client.R().SetBody(body).Post(
			fmt.Sprintf("/ob/api/venues/%s/stocks/%s/orders", *venue, *stock))

	case "status":
		resp, err = client.R().Get(
			fmt.Sprintf("/ob/api/venues/%s/stocks/%s/orders/%d", *venue, *stock, *id))

	case "cancel":
		resp, err = client.R().Delete(
			fmt.Sprintf("/ob/api/venues/%s/stocks/%s/orders/%d", *venue, *stock, *id))

	default:
		log.Fatalf("Unknown action: %s", *action)
	}

	if err != nil {
		log.Fatalf("request failed: %v", err)
	}

	printResponse(resp)
}

// printResponse pretty-prints the JSON body, falling back to the raw bytes
// if the response isn't valid JSON (e.g. a scoreboard HTML page).
func printResponse(resp *resty.Response) {
	var pretty map[string]any
	if err := json.Unmarshal(resp.Body(), &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return
	}
	os.Stdout.Write(resp.Body())
}
