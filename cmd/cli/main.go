package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankledger-cli",
		Short: "BankLedger CLI tool",
		Long:  `A command line interface for interacting with the BankLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BankLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd(), transactionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var name, balance string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/accounts", map[string]any{
				"name":            name,
				"initial_balance": balance,
			})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Account name")
	createCmd.Flags().StringVar(&balance, "balance", "0", "Opening balance")
	createCmd.MarkFlagRequired("name")

	getCmd := &cobra.Command{
		Use:   "get <number>",
		Short: "Get an account by number",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts/" + args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts")
		},
	}

	transactionsCmd := &cobra.Command{
		Use:   "transactions <number>",
		Short: "List an account's transactions",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts/" + args[0] + "/transactions")
		},
	}

	cmd.AddCommand(createCmd, getCmd, listCmd, transactionsCmd)
	return cmd
}

func transactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Transaction operations",
	}

	var from, to int64
	var amount string

	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit into an account",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/transactions/deposit", map[string]any{
				"to_account_number": to,
				"amount":            amount,
			})
		},
	}
	depositCmd.Flags().Int64Var(&to, "to", 0, "Destination account number")
	depositCmd.Flags().StringVar(&amount, "amount", "", "Amount")
	depositCmd.MarkFlagRequired("to")
	depositCmd.MarkFlagRequired("amount")

	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw from an account",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/transactions/withdraw", map[string]any{
				"from_account_number": from,
				"amount":              amount,
			})
		},
	}
	withdrawCmd.Flags().Int64Var(&from, "from", 0, "Source account number")
	withdrawCmd.Flags().StringVar(&amount, "amount", "", "Amount")
	withdrawCmd.MarkFlagRequired("from")
	withdrawCmd.MarkFlagRequired("amount")

	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer between accounts",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/transactions/transfer", map[string]any{
				"from_account_number": from,
				"to_account_number":   to,
				"amount":              amount,
			})
		},
	}
	transferCmd.Flags().Int64Var(&from, "from", 0, "Source account number")
	transferCmd.Flags().Int64Var(&to, "to", 0, "Destination account number")
	transferCmd.Flags().StringVar(&amount, "amount", "", "Amount")
	transferCmd.MarkFlagRequired("from")
	transferCmd.MarkFlagRequired("to")
	transferCmd.MarkFlagRequired("amount")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a transaction by ID",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/transactions/" + args[0])
		},
	}

	cmd.AddCommand(depositCmd, withdrawCmd, transferCmd, getCmd)
	return cmd
}

func get(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func post(path string, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func printResponse(resp *http.Response) {
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}
