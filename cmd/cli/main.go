package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "creditctl",
		Short: "Credit ledger CLI tool",
		Long:  `A command line interface for the player credit ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the credit ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")

	rootCmd.AddCommand(
		balanceCmd(),
		creditsCmd(),
		payCmd(),
		redeemCmd(),
		topCmd(),
		transactionsCmd(),
		skillsCmd(),
		ledgerCmd(),
	)

	return rootCmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <player-id>",
		Short: "Show a player's credit balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/players/" + args[0] + "/balance")
		},
	}
}

func creditsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Mutate a player's balance",
	}

	for _, op := range []string{"add", "take", "set"} {
		op := op
		cmd.AddCommand(&cobra.Command{
			Use:   op + " <player-id> <amount>",
			Short: op + " credits",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", args[1], err)
				}
				return postJSON("/api/v1/players/"+args[0]+"/credits", map[string]any{
					"op":     op,
					"amount": amount,
				})
			},
		})
	}

	return cmd
}

func payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <from-player-id> <to-player-id> <amount>",
		Short: "Transfer credits between players",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[2], err)
			}
			return postJSON("/api/v1/transfers", map[string]any{
				"from_player_id": args[0],
				"to_player_id":   args[1],
				"amount":         amount,
			})
		},
	}
}

func redeemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redeem <player-id> <skill> <amount>",
		Short: "Convert credits into skill levels",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[2], err)
			}
			return postJSON("/api/v1/redemptions", map[string]any{
				"player_id": args[0],
				"skill":     args[1],
				"amount":    amount,
			})
		},
	}
}

func topCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the balance leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/leaderboard?limit=%d", limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries to show")

	return cmd
}

func transactionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "transactions <player-id>",
		Short: "Show a player's audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/players/%s/transactions?limit=%d", args[0], limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of records to show")

	return cmd
}

func skillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List redeemable skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/skills")
		},
	}
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check every balance against its transaction log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/ledger/consistency")
		},
	})

	return cmd
}

func getJSON(path string) error {
	return request(http.MethodGet, path, nil)
}

func postJSON(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return request(http.MethodPost, path, bytes.NewReader(body))
}

func request(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if len(respBody) == 0 {
		fmt.Println("ok")
		return nil
	}

	var parsed any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		fmt.Println(string(respBody))
		return nil
	}

	printJSON(parsed)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(out))
}
