// Package main provides the Janus command line client.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/TFMV/janus/client"
	"github.com/TFMV/janus/pkg/models"
)

var (
	serverAddress string
	authToken     string
	timeout       time.Duration
	outputJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "janus-cli",
	Short: "Command line client for the Janus query router",
	Long: `Execute, explain, and classify SQL statements against a running
Janus server over its HTTP API.`,
	SilenceUsage: true,
}

var queryCmd = &cobra.Command{
	Use:   "query [sql] [args...]",
	Short: "Execute a SQL statement",
	Long: `Execute a SQL statement and print its result.

Arguments after the statement are bound as query parameters:
  janus-cli query "SELECT * FROM users WHERE id = ?" 42`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var explainCmd = &cobra.Command{
	Use:   "explain [sql]",
	Short: "Show the routing decision and plan for a statement",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [sql]",
	Short: "Classify a statement as Transactional, Analytical, or Hybrid",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server and engine health",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddress, "address", "http://localhost:8080", "server address")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "bearer token for authentication")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print raw JSON instead of tables")

	rootCmd.AddCommand(queryCmd, explainCmd, classifyCmd, healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	return client.New(client.Config{
		Address: serverAddress,
		Token:   authToken,
		Timeout: timeout,
	})
}

func runQuery(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	params := make([]interface{}, 0, len(args)-1)
	for _, arg := range args[1:] {
		params = append(params, arg)
	}

	result, err := c.Query(cmd.Context(), args[0], params...)
	if err != nil {
		return err
	}

	if outputJSON {
		return renderJSON(cmd.OutOrStdout(), result)
	}
	renderResult(cmd.OutOrStdout(), result)
	return nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.Explain(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return renderJSON(cmd.OutOrStdout(), result)
	}
	renderExplain(cmd.OutOrStdout(), result)
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.Classify(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return renderJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.QueryType)
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Health(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

func renderResult(w io.Writer, result *models.QueryResult) {
	if len(result.Rows) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range result.Rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = formatValue(v)
		}
		t.AppendRow(tr)
	}

	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(result.Rows))
}

func renderExplain(w io.Writer, result *models.ExplainResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRow(table.Row{"Query Type", result.QueryType})
	t.AppendRow(table.Row{"Engine", result.Engine})
	t.Render()

	if result.Explanation != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Plan:")
		fmt.Fprintln(w, result.Explanation)
	}
}

func renderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
