// Large Binance Export Generator
//
// This tool generates a matching pair of large Binance exports for
// performance testing and profiling of the importer.
//
// Usage:
//
//	go run main.go exports/            # 100000 trade fills and statement rows
//	go run main.go exports/ 1000000    # Specify the number of rows per export
//
// The exports are written as exports/0binastmt-large.csv and
// exports/bina-large-processed.csv. Extract the statement first.
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

const (
	defaultRows = 100_000
	timeLayout  = "2006-01-02 15:04:05"
)

var (
	quoteAssets = []string{"BTC", "ETH", "BNB", "USDT"}
	baseAssets  = []string{"ADA", "VIA", "STORM", "DOT", "LINK", "XRP", "1INCH"}
	dustAssets  = []string{"TRX", "XLM", "ONT", "IOTA"}
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: generate_large_export DIR [ROWS]")
		os.Exit(2)
	}

	dir := os.Args[1]
	rows := defaultRows
	if len(os.Args) > 2 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil {
			rows = n
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatal(err)
	}

	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

	// Statement rows cover the period before the first trade so the trades
	// find deposited quote assets to spend.
	statement := generateStatement(start, rows)
	if err := writeCSV(filepath.Join(dir, "0binastmt-large.csv"), statementHeader, statement); err != nil {
		fatal(err)
	}

	tradesStart := start.Add(time.Duration(rows+1) * time.Minute)
	trades := generateTrades(tradesStart, rows)
	// Trade exports list the newest fill first.
	slices.Reverse(trades)
	if err := writeCSV(filepath.Join(dir, "bina-large-processed.csv"), tradesHeader, trades); err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "Generated %d statement rows and %d trade fills in %s\n", len(statement), len(trades), dir)
}

var statementHeader = []string{"User_ID", "UTC_Time", "Account", "Operation", "Coin", "Change", "Remark"}

func generateStatement(start time.Time, rows int) [][]string {
	records := make([][]string, 0, rows)
	date := start

	add := func(operation, coin string, change float64) {
		records = append(records, []string{
			"13017299", date.Format(timeLayout), "Spot", operation, coin, formatAmount(change), "",
		})
	}

	for len(records) < rows {
		date = date.Add(time.Minute)

		switch rand.Intn(10) {
		case 0, 1, 2, 3: // 40% - Deposit of a quote asset
			add("Deposit", pick(quoteAssets), randAmount(1, 50))

		case 4, 5: // 20% - Airdrop
			add("Distribution", pick(baseAssets), randAmount(0.1, 10))

		case 6, 7: // 20% - Dust conversion of a few small holdings
			assets := dustAssets[:rand.Intn(len(dustAssets))+1]
			for _, asset := range assets {
				add("Deposit", asset, randAmount(0.01, 0.1))
			}
			for _, asset := range assets {
				add("Small assets exchange BNB", asset, -randAmount(0.001, 0.01))
			}
			add("Small assets exchange BNB", "BNB", randAmount(0.0001, 0.001))

		default: // 20% - Simple trade, spent leg first
			add("The Easiest Way to Trade", pick(quoteAssets), -randAmount(0.01, 0.1))
			add("The Easiest Way to Trade", pick(baseAssets), randAmount(1, 10))
		}
	}

	return records
}

var tradesHeader = []string{
	"date_utc", "fill_date_utc", "description", "order_id", "base_asset", "quote_asset",
	"amount", "price", "comm0_amount", "comm0_asset", "comm1_amount", "comm1_asset",
}

func generateTrades(start time.Time, rows int) [][]string {
	records := make([][]string, 0, rows)
	holdings := make(map[string]float64)
	date := start

	for orderID := 1000000; len(records) < rows; orderID++ {
		date = date.Add(time.Duration(rand.Intn(120)+1) * time.Second)

		base, quote := pick(baseAssets), pick(quoteAssets)
		side := "buy"
		amount := randAmount(1, 100)
		if held := holdings[base]; held > 1 && rand.Intn(3) == 0 {
			side = "sell"
			amount = held / 2
		}
		price := randAmount(0.0001, 0.01)

		if side == "buy" {
			holdings[base] += amount
		} else {
			holdings[base] -= amount
		}

		// Half the fills pay their commission in BNB, some in two assets.
		comm0, comm1 := []string{"", ""}, []string{"", ""}
		switch rand.Intn(4) {
		case 0, 1:
			comm0 = []string{formatAmount(amount * 0.001), base}
		case 2:
			comm0 = []string{formatAmount(0.0001), "BNB"}
		case 3:
			comm0 = []string{formatAmount(amount * 0.0005), base}
			comm1 = []string{formatAmount(0.00005), "BNB"}
		}

		fill := date.Format(timeLayout)
		records = append(records, []string{
			fill, fill,
			fmt.Sprintf("%s%s market %s", base, quote, side),
			strconv.Itoa(orderID),
			base, quote,
			formatAmount(amount), formatAmount(price),
			comm0[0], comm0[1], comm1[0], comm1[1],
		})
	}

	return records
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}

func randAmount(min, max float64) float64 {
	return min + rand.Float64()*(max-min)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 8, 64)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
