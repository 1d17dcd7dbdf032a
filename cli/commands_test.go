package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
)

const tradesCSV = `date_utc,fill_date_utc,description,order_id,base_asset,quote_asset,amount,price,comm0_amount,comm0_asset
2018-04-16 10:00:00,2018-04-16 10:00:00,VIAETH market sell,3589100,VIA,ETH,20,0.004,0.00008,ETH
2018-04-15 15:44:03,2018-04-15 15:44:03,VIAETH market buy,3589044,VIA,ETH,51.9600000000,0.00384300,0.05196,VIA
`

const statementCSV = `User_ID,UTC_Time,Account,Operation,Coin,Change,Remark
13017299,2018-04-13 09:24:23,Spot,Deposit,ETH,1.50000000,
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// run parses args into fresh commands and runs the selected one.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var cli Commands
	var stdout, stderr bytes.Buffer

	parser, err := kong.New(&cli,
		kong.Name("beancount-binance"),
		kong.Writers(&stdout, &stderr),
		kong.Bind(&cli.Globals),
		kong.Exit(func(int) {}),
	)
	assert.NoError(t, err)

	ctx, err := parser.Parse(args)
	if err != nil {
		return stdout.String(), stderr.String(), err
	}

	err = ctx.Run()
	return stdout.String(), stderr.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr), "expected a CommandError, got %v", err)
	return cmdErr.ExitCode()
}

func TestExtractCmd(t *testing.T) {
	t.Run("Stdout", func(t *testing.T) {
		dir := t.TempDir()
		statement := writeFile(t, dir, "0binastmt-2018.csv", statementCSV)
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)

		stdout, stderr, err := run(t, "extract", statement, trades)
		assert.NoError(t, err)
		assert.Equal(t, "", stderr)

		assert.Contains(t, stdout, "; 0binastmt-2018.csv\n")
		assert.Contains(t, stdout, "; bina-2018-processed.csv\n")
		assert.Contains(t, stdout, `2018-04-13 * "Spot Deposit ETH"`)
		assert.Contains(t, stdout, `2018-04-15 * "VIAETH market buy"`)
		assert.Contains(t, stdout, `order-id: "3589044"`)
		assert.Contains(t, stdout, "51.96 VIA @ 0.003843 ETH")
		assert.Contains(t, stdout, "Expenses:Binance:Fees")
	})

	t.Run("AccountFlags", func(t *testing.T) {
		dir := t.TempDir()
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)

		stdout, _, err := run(t, "extract", "--asset-account", "Assets:Crypto:Binance", "--commission-account", "Expenses:Fees", trades)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Assets:Crypto:Binance")
		assert.Contains(t, stdout, "Expenses:Fees")
		assert.NotContains(t, stdout, "Assets:Binance ")
	})

	t.Run("InvalidAccountFlag", func(t *testing.T) {
		dir := t.TempDir()
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)

		_, stderr, err := run(t, "extract", "--asset-account", "Binance", trades)
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stderr, "asset_account")
	})

	t.Run("ConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		statement := writeFile(t, dir, "0binastmt-2018.csv", statementCSV)
		config := writeFile(t, dir, "config.yaml", "unknown_equity_account: Equity:Opening-Balances\n")

		stdout, _, err := run(t, "--config", config, "extract", statement)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "Equity:Opening-Balances")
	})

	t.Run("MissingConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		statement := writeFile(t, dir, "0binastmt-2018.csv", statementCSV)

		_, stderr, err := run(t, "--config", filepath.Join(dir, "missing.yaml"), "extract", statement)
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stderr, "configuration file not found")
	})

	t.Run("OutputFile", func(t *testing.T) {
		dir := t.TempDir()
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)
		output := filepath.Join(dir, "binance.beancount")

		stdout, stderr, err := run(t, "extract", "-o", output, trades)
		assert.NoError(t, err)
		assert.Equal(t, "", stdout)
		assert.Contains(t, stderr, "Wrote 4 transaction(s)")

		data, err := os.ReadFile(output)
		assert.NoError(t, err)
		assert.Contains(t, string(data), `2018-04-16 * "VIAETH market sell"`)
	})

	t.Run("RefusesOverwriteWithoutTerminal", func(t *testing.T) {
		dir := t.TempDir()
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)
		output := writeFile(t, dir, "binance.beancount", "; keep me\n")

		_, stderr, err := run(t, "extract", "-o", output, trades)
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stderr, "--force")

		data, err := os.ReadFile(output)
		assert.NoError(t, err)
		assert.Equal(t, "; keep me\n", string(data))
	})

	t.Run("ForceOverwrite", func(t *testing.T) {
		dir := t.TempDir()
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)
		output := writeFile(t, dir, "binance.beancount", "; replace me\n")

		_, _, err := run(t, "extract", "--force", "-o", output, trades)
		assert.NoError(t, err)

		data, err := os.ReadFile(output)
		assert.NoError(t, err)
		assert.NotContains(t, string(data), "replace me")
	})

	t.Run("Sort", func(t *testing.T) {
		dir := t.TempDir()
		statement := writeFile(t, dir, "0binastmt-2018.csv", `UTC_Time,Account,Operation,Coin,Change,Remark
2018-04-14 00:00:00,Spot,Deposit,BTC,1,
2018-04-13 00:00:00,Spot,Deposit,ETH,1,
`)

		stdout, _, err := run(t, "extract", statement)
		assert.NoError(t, err)
		assert.True(t, strings.Index(stdout, "2018-04-14") < strings.Index(stdout, "2018-04-13"))

		stdout, _, err = run(t, "extract", "--sort", statement)
		assert.NoError(t, err)
		assert.True(t, strings.Index(stdout, "2018-04-13") < strings.Index(stdout, "2018-04-14"))
	})

	t.Run("WatchNeedsOutput", func(t *testing.T) {
		dir := t.TempDir()
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)

		_, stderr, err := run(t, "extract", "--watch", trades)
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stderr, "--watch needs --output")
	})

	t.Run("Warnings", func(t *testing.T) {
		dir := t.TempDir()
		trades := writeFile(t, dir, "bina-2018-processed.csv", `date_utc,fill_date_utc,description,order_id,base_asset,quote_asset,amount,price
2018-04-16 10:00:00,2018-04-16 10:00:00,VIAETH market sell,3589100,VIA,ETH,20,0.004
`)

		stdout, stderr, err := run(t, "extract", trades)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "VIAETH market sell")
		assert.Contains(t, stderr, "not enough VIA")
	})

	t.Run("UnknownSide", func(t *testing.T) {
		dir := t.TempDir()
		trades := writeFile(t, dir, "bina-2018-processed.csv", `date_utc,fill_date_utc,description,order_id,base_asset,quote_asset,amount,price
2018-04-16 10:00:00,2018-04-16 10:00:00,VIAETH market swap,3589100,VIA,ETH,20,0.004
`)

		stdout, stderr, err := run(t, "extract", trades)
		assert.Equal(t, 1, exitCode(t, err))
		assert.Equal(t, "", stdout)
		assert.Contains(t, stderr, "cannot tell buy from sell")
		assert.Contains(t, stderr, "line 2")
		assert.Contains(t, stderr, "      1 | date_utc,fill_date_utc,")
		assert.Contains(t, stderr, " >    2 | 2018-04-16 10:00:00,2018-04-16 10:00:00,VIAETH market swap,")
	})

	t.Run("JSONErrors", func(t *testing.T) {
		dir := t.TempDir()
		trades := writeFile(t, dir, "bina-2018-processed.csv", `date_utc,fill_date_utc,description,order_id,base_asset,quote_asset,amount,price
2018-04-16 10:00:00,2018-04-16 10:00:00,VIAETH market sell,3589100,VIA,ETH,abc,0.004
`)

		_, stderr, err := run(t, "--error-format", "json", "extract", trades)
		assert.Equal(t, 1, exitCode(t, err))

		var got struct {
			Type     string
			Position struct{ Line int }
			Details  map[string]string
		}
		assert.NoError(t, json.Unmarshal([]byte(stderr), &got))
		assert.Equal(t, "*binance.RecordError", got.Type)
		assert.Equal(t, 2, got.Position.Line)
		assert.Equal(t, "amount", got.Details["field"])
	})

	t.Run("UnsupportedFile", func(t *testing.T) {
		dir := t.TempDir()
		other := writeFile(t, dir, "export.csv", statementCSV)

		_, stderr, err := run(t, "extract", other)
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stderr, "export.csv")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, _, err := run(t, "extract", filepath.Join(t.TempDir(), "bina-missing-processed.csv"))
		assert.Error(t, err)
	})

	t.Run("Telemetry", func(t *testing.T) {
		dir := t.TempDir()
		statement := writeFile(t, dir, "0binastmt-2018.csv", statementCSV)

		_, stderr, err := run(t, "--telemetry", "extract", statement)
		assert.NoError(t, err)
		assert.Contains(t, stderr, "extract 0binastmt-2018.csv")
		assert.Contains(t, stderr, "format")
	})
}

func TestIdentifyCmd(t *testing.T) {
	t.Run("KnownFiles", func(t *testing.T) {
		stdout, stderr, err := run(t, "identify", "exports/bina-2018-processed.csv", "0binastmt-2018.csv")
		assert.NoError(t, err)
		assert.Equal(t, "", stderr)
		assert.Equal(t, "exports/bina-2018-processed.csv\ttrades\n0binastmt-2018.csv\tstatement\n", stdout)
	})

	t.Run("UnknownFile", func(t *testing.T) {
		stdout, stderr, err := run(t, "identify", "0binastmt-2018.csv", "notes.txt")
		assert.Equal(t, 1, exitCode(t, err))
		assert.Equal(t, "0binastmt-2018.csv\tstatement\n", stdout)
		assert.Contains(t, stderr, "notes.txt: not a Binance export")
	})
}

func TestLotsCmd(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		dir := t.TempDir()
		statement := writeFile(t, dir, "0binastmt-2018.csv", statementCSV)
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)

		stdout, _, err := run(t, "lots", statement, trades)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "DATE")
		assert.Contains(t, stdout, "2018-04-15")
		assert.Contains(t, stdout, "0.003843 ETH")
		assert.Contains(t, stdout, "BALANCE")
		assert.Contains(t, stdout, "1.57992")
		assert.Contains(t, stdout, "31.90804")
	})

	t.Run("Asset", func(t *testing.T) {
		dir := t.TempDir()
		statement := writeFile(t, dir, "0binastmt-2018.csv", statementCSV)
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)

		stdout, _, err := run(t, "lots", "--asset", "VIA", statement, trades)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "31.90804")
		assert.NotContains(t, stdout, "1.57992")
	})

	t.Run("Dump", func(t *testing.T) {
		dir := t.TempDir()
		statement := writeFile(t, dir, "0binastmt-2018.csv", statementCSV)
		trades := writeFile(t, dir, "bina-2018-processed.csv", tradesCSV)

		stdout, _, err := run(t, "lots", "--dump", statement, trades)
		assert.NoError(t, err)
		assert.Contains(t, stdout, `BaseAsset: "ETH"`)
		assert.Contains(t, stdout, `AmountLeft: "1.49992"`)
		assert.Contains(t, stdout, `BaseAsset: "VIA"`)
		assert.Contains(t, stdout, `Price: "0.003843"`)
	})

	t.Run("NoLots", func(t *testing.T) {
		dir := t.TempDir()
		statement := writeFile(t, dir, "0binastmt-2018.csv", "UTC_Time,Account,Operation,Coin,Change,Remark\n")

		stdout, _, err := run(t, "lots", statement)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "No open lots")
	})
}

func TestExtractCmdWatch(t *testing.T) {
	dir := t.TempDir()
	statement := writeFile(t, dir, "0binastmt-2018.csv", statementCSV)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := &ExtractCmd{Files: []string{statement}}
	reruns := 0
	done := make(chan error, 1)
	go func() {
		var stderr bytes.Buffer
		done <- cmd.watch(ctx, func() {
			reruns++
			cancel()
		}, &stderr)
	}()

	// Keep touching the export, slower than the debounce, until the watcher
	// is set up and reacts.
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for ctx.Err() == nil {
		select {
		case <-ticker.C:
			assert.NoError(t, os.WriteFile(statement, []byte(statementCSV), 0o600))
		case <-ctx.Done():
		}
	}

	assert.NoError(t, <-done)
	assert.True(t, errors.Is(ctx.Err(), context.Canceled), "watcher never reran the extraction")
	assert.True(t, reruns >= 1)
}
