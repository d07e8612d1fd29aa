package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankrecon-cli",
		Short: "Bank reconciliation CLI tool",
		Long:  `A command line interface for interacting with the bank reconciliation API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the reconciliation API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(uploadCmd(), verifyCmd(), reconcileCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <source> <file>",
		Short: "Upload a statement into a ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postFile(fmt.Sprintf("/api/v1/movements/%s/upload", args[0]), "file", args[1])
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <source> <file>",
		Short: "Diff a statement against a ledger without writing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postFile(fmt.Sprintf("/api/v1/movements/%s/verify", args[0]), "file", args[1])
		},
	}
}

func reconcileCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "reconcile [bank-file accounting-file]",
		Short: "Reconcile two statements, or the stored ledgers over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return postFiles("/api/v1/reconcile", map[string]string{
					"bank":       args[0],
					"accounting": args[1],
				})
			}
			if start == "" || end == "" {
				return fmt.Errorf("either pass two files or set --start and --end")
			}
			return getJSON(fmt.Sprintf("/api/v1/reconcile/range?start=%s&end=%s", start, end))
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Range end date (YYYY-MM-DD)")

	return cmd
}

func statusCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-ledger coverage for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/movements/status"
			if year != 0 {
				path = fmt.Sprintf("%s?year=%d", path, year)
			}
			return getJSON(path)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year to report (defaults to the current year)")

	return cmd
}

func postFile(path, field, filename string) error {
	return postFiles(path, map[string]string{field: filename})
}

func postFiles(path string, files map[string]string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for field, filename := range files {
		data, err := os.ReadFile(filename)
		if err != nil {
			return err
		}

		part, err := w.CreateFormFile(field, filepath.Base(filename))
		if err != nil {
			return err
		}
		if _, err := part.Write(data); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, w.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(body), 300))
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		fmt.Println(string(body))
		return nil
	}

	printJSON(parsed)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
