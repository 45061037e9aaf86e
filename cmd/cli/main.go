package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration

	// newRef generates transaction references; swapped out in tests.
	newRef = uuid.NewString
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cashstock-cli",
		Short: "Cashstock CLI tool",
		Long:  `A command line interface for interacting with the Cashstock API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Cashstock API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(kioskCmd())
	rootCmd.AddCommand(stockCmd())
	rootCmd.AddCommand(reserveCmd())
	rootCmd.AddCommand(confirmCmd())
	rootCmd.AddCommand(cancelCmd())
	rootCmd.AddCommand(movementsCmd())
	rootCmd.AddCommand(consistencyCmd())
	rootCmd.AddCommand(refCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// Kiosk commands

func kioskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kiosk",
		Short: "Kiosk operations",
	}

	var location string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a new kiosk",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			createKiosk(args[0], location)
		},
	}
	createCmd.Flags().StringVar(&location, "location", "", "Physical location of the kiosk")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered kiosks",
		Run: func(cmd *cobra.Command, args []string) {
			listKiosks()
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <kiosk-id>",
		Short: "Show a single kiosk",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getKiosk(args[0])
		},
	}

	cmd.AddCommand(createCmd, listCmd, getCmd)
	return cmd
}

func createKiosk(name, location string) {
	status, body := request(http.MethodPost, "/api/v1/kiosks", map[string]any{
		"name":     name,
		"location": location,
	})
	if status != http.StatusCreated {
		fmt.Printf("Create kiosk FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	printJSON(decodeBody(body))
}

func listKiosks() {
	status, body := request(http.MethodGet, "/api/v1/kiosks", nil)
	if status != http.StatusOK {
		fmt.Printf("List kiosks FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Kiosks []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Location string `json:"location"`
			Active   bool   `json:"active"`
		} `json:"kiosks"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-28s %-24s %-24s %s\n", "ID", "NAME", "LOCATION", "ACTIVE")
	for _, k := range result.Kiosks {
		fmt.Printf("%-28s %-24s %-24s %v\n", k.ID, truncate(k.Name, 24), truncate(k.Location, 24), k.Active)
	}
	fmt.Printf("Total: %d\n", result.Total)
}

func getKiosk(kioskID string) {
	status, body := request(http.MethodGet, "/api/v1/kiosks/"+url.PathEscape(kioskID), nil)
	if status != http.StatusOK {
		fmt.Printf("Get kiosk FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	printJSON(decodeBody(body))
}

// Stock commands

func stockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Stock operations",
	}

	statusCmd := &cobra.Command{
		Use:   "status <kiosk-id> <currency>",
		Short: "Show stock levels for a kiosk and currency",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			stockStatus(args[0], args[1])
		},
	}

	depositCmd := &cobra.Command{
		Use:   "deposit <kiosk-id> <currency> <denomination:quantity>...",
		Short: "Deposit cash into a kiosk",
		Args:  cobra.MinimumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			adjustStock("deposits", "Deposit", args[0], args[1], args[2:])
		},
	}

	withdrawCmd := &cobra.Command{
		Use:   "withdraw <kiosk-id> <currency> <denomination:quantity>...",
		Short: "Withdraw free cash from a kiosk",
		Args:  cobra.MinimumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			adjustStock("withdrawals", "Withdrawal", args[0], args[1], args[2:])
		},
	}

	quoteCmd := &cobra.Command{
		Use:   "quote <kiosk-id> <currency> <amount>",
		Short: "Preview the denomination breakdown for an amount",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			quoteAmount(args[0], args[1], args[2])
		},
	}

	cmd.AddCommand(statusCmd, depositCmd, withdrawCmd, quoteCmd)
	return cmd
}

func stockStatus(kioskID, currency string) {
	status, body := request(http.MethodGet, stockPath(kioskID, currency, ""), nil)
	if status != http.StatusOK {
		fmt.Printf("Stock status FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		KioskID  string `json:"kiosk_id"`
		Currency string `json:"currency"`
		Levels   []struct {
			Denomination string `json:"denomination"`
			Total        int64  `json:"total"`
			Reserved     int64  `json:"reserved"`
			Free         int64  `json:"free"`
		} `json:"levels"`
		TotalValue string `json:"total_value"`
		FreeValue  string `json:"free_value"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Stock for kiosk %s (%s)\n", result.KioskID, result.Currency)
	fmt.Printf("%-14s %8s %10s %8s\n", "DENOMINATION", "TOTAL", "RESERVED", "FREE")
	for _, l := range result.Levels {
		fmt.Printf("%-14s %8d %10d %8d\n", l.Denomination, l.Total, l.Reserved, l.Free)
	}
	fmt.Printf("Total value: %s\nFree value: %s\n", result.TotalValue, result.FreeValue)
}

func adjustStock(endpoint, verb, kioskID, currency string, lineArgs []string) {
	status, body := request(http.MethodPost, stockPath(kioskID, currency, endpoint), map[string]any{
		"lines": parseLines(lineArgs),
	})
	if status != http.StatusCreated {
		fmt.Printf("%s FAILED (Status: %d)\nResponse: %s\n", verb, status, string(body))
		os.Exit(1)
	}

	result := decodeBody(body)
	fmt.Printf("%s recorded\n", verb)
	fmt.Printf("Movement: %s\n", result["id"])
	fmt.Printf("Amount: %s %s\n", result["amount"], result["currency"])
}

func quoteAmount(kioskID, currency, amount string) {
	path := stockPath(kioskID, currency, "quote") + "?amount=" + url.QueryEscape(amount)
	status, body := request(http.MethodGet, path, nil)
	if status != http.StatusOK {
		fmt.Printf("Quote FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Currency string `json:"currency"`
		Amount   string `json:"amount"`
		Pieces   int64  `json:"pieces"`
		Lines    []struct {
			Denomination string `json:"denomination"`
			Quantity     int64  `json:"quantity"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Quote for %s %s\n", result.Amount, result.Currency)
	fmt.Printf("%-14s %8s\n", "DENOMINATION", "QUANTITY")
	for _, l := range result.Lines {
		fmt.Printf("%-14s %8d\n", l.Denomination, l.Quantity)
	}
	fmt.Printf("Pieces: %d\n", result.Pieces)
}

// Reservation commands

func reserveCmd() *cobra.Command {
	var mode, ref string
	cmd := &cobra.Command{
		Use:   "reserve <kiosk-id> <currency> <amount>",
		Short: "Reserve cash for a payout",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			reserve(args[0], args[1], args[2], mode, ref)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "immediate", "Reservation mode: immediate or deferred")
	cmd.Flags().StringVar(&ref, "ref", "", "Transaction reference (generated when empty)")
	return cmd
}

func reserve(kioskID, currency, amount, mode, ref string) {
	if ref == "" {
		ref = newRef()
	}

	status, body := request(http.MethodPost, "/api/v1/reservations", map[string]any{
		"transaction_ref": ref,
		"kiosk_id":        kioskID,
		"currency":        currency,
		"amount":          amount,
		"mode":            mode,
	})
	if status != http.StatusCreated {
		fmt.Printf("Reserve FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	result := decodeBody(body)
	fmt.Printf("Reservation created\n")
	fmt.Printf("Movement: %s\n", result["id"])
	fmt.Printf("Status: %s\n", result["status"])
	fmt.Printf("Ref: %s\n", result["transaction_ref"])
}

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <movement-id>",
		Short: "Confirm a pending reservation and hand out the cash",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			confirmMovement(args[0])
		},
	}
}

func confirmMovement(movementID string) {
	status, body := request(http.MethodPost, "/api/v1/movements/"+url.PathEscape(movementID)+"/confirm", nil)
	if status != http.StatusOK {
		fmt.Printf("Confirm FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	result := decodeBody(body)
	fmt.Printf("Movement confirmed\n")
	fmt.Printf("Status: %s\n", result["status"])
}

func cancelCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "cancel <movement-id>",
		Short: "Cancel a pending reservation and release the cash",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cancelMovement(args[0], reason)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Cancellation reason")
	return cmd
}

func cancelMovement(movementID, reason string) {
	status, body := request(http.MethodPost, "/api/v1/movements/"+url.PathEscape(movementID)+"/cancel", map[string]any{
		"reason": reason,
	})
	if status != http.StatusOK {
		fmt.Printf("Cancel FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	result := decodeBody(body)
	fmt.Printf("Movement cancelled\n")
	fmt.Printf("Status: %s\n", result["status"])
}

// Movement commands

func movementsCmd() *cobra.Command {
	var kioskID, currency, status string
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "List stock movements",
		Run: func(cmd *cobra.Command, args []string) {
			listMovements(kioskID, currency, status, limit, offset)
		},
	}
	cmd.Flags().StringVar(&kioskID, "kiosk", "", "Filter by kiosk ID")
	cmd.Flags().StringVar(&currency, "currency", "", "Filter by currency code")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status: pending, confirmed or cancelled")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of movements")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of movements to skip")
	return cmd
}

func listMovements(kioskID, currency, movementStatus string, limit, offset int) {
	params := url.Values{}
	if kioskID != "" {
		params.Set("kiosk_id", kioskID)
	}
	if currency != "" {
		params.Set("currency", currency)
	}
	if movementStatus != "" {
		params.Set("status", movementStatus)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	status, body := request(http.MethodGet, "/api/v1/movements?"+params.Encode(), nil)
	if status != http.StatusOK {
		fmt.Printf("List movements FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Movements []struct {
			ID             string `json:"id"`
			KioskID        string `json:"kiosk_id"`
			Currency       string `json:"currency"`
			Direction      string `json:"direction"`
			Status         string `json:"status"`
			TransactionRef string `json:"transaction_ref"`
			Amount         string `json:"amount"`
		} `json:"movements"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-28s %-28s %-8s %-9s %-10s %12s  %s\n", "ID", "KIOSK", "CURRENCY", "DIRECTION", "STATUS", "AMOUNT", "REF")
	for _, m := range result.Movements {
		fmt.Printf("%-28s %-28s %-8s %-9s %-10s %12s  %s\n",
			m.ID, m.KioskID, m.Currency, m.Direction, m.Status, m.Amount, truncate(m.TransactionRef, 24))
	}
	fmt.Printf("Total: %d\n", result.Total)
}

// Consistency command

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency <kiosk-id> <currency>",
		Short: "Check stock bookkeeping against the movement log",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency(args[0], args[1])
		},
	}
}

func checkConsistency(kioskID, currency string) {
	status, body := request(http.MethodGet, stockPath(kioskID, currency, "consistency"), nil)
	if status != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	result := decodeBody(body)
	if consistent, ok := result["consistent"].(bool); ok && consistent {
		fmt.Printf("Consistency check PASSED\n")
	} else {
		fmt.Printf("Consistency check found DISCREPANCIES\n")
	}
	printJSON(result)
}

// Utility commands

func refCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ref",
		Short: "Generate a transaction reference",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(newRef())
		},
	}
}

// HTTP helpers

func request(method, path string, payload any) (int, []byte) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func stockPath(kioskID, currency, suffix string) string {
	path := "/api/v1/kiosks/" + url.PathEscape(kioskID) + "/stock/" + url.PathEscape(currency)
	if suffix != "" {
		path += "/" + suffix
	}
	return path
}

func parseLines(args []string) []map[string]any {
	lines := make([]map[string]any, 0, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, ":", 2)
		if len(parts) != 2 {
			fmt.Printf("Invalid line %q, expected <denomination>:<quantity>\n", arg)
			os.Exit(1)
		}
		qty, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			fmt.Printf("Invalid quantity in %q: %v\n", arg, err)
			os.Exit(1)
		}
		lines = append(lines, map[string]any{
			"denomination": parts[0],
			"quantity":     qty,
		})
	}
	return lines
}

func decodeBody(body []byte) map[string]any {
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	return result
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
