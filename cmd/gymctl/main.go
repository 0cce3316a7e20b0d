// Command gymctl is a small operator CLI over the GymBios API.
//
//	gymctl login -email admin@gym.test      # prints a token for GYMBIOS_TOKEN
//	gymctl members -q asha -status active
//	gymctl export -o report.xlsx
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gymbios/internal/adapters/apiclient"
	"gymbios/internal/config"
)

const usage = `usage: gymctl <command> [flags]

commands:
  login      log in and print the token
  me         show the account behind GYMBIOS_TOKEN
  dashboard  print the dashboard cards
  members    list members (-q, -status, -plan, -page)
  import     import members from a CSV file (-f, -dry-run, -update)
  low-stock  list products at or below their reorder level
  stock      print the stock report (-category)
  export     download the community report workbook (-o)
  outbox     list outbox entries (-status), or -retry ID / -abandon ID
  audit      list recent audit events (-category, -severity, -limit)
  perf       print request and query timings (-minutes, -top)
`

func main() {
	cfg := config.LoadClient()
	client := apiclient.New(cfg.APIURL, cfg.Token)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, client, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "gymctl:", err)
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			fmt.Fprintln(os.Stderr, "hint: run `gymctl login` and export GYMBIOS_TOKEN")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, c *apiclient.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}
	cmd, args := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)

	switch cmd {
	case "login":
		email := fs.String("email", "", "account email")
		password := fs.String("password", os.Getenv("GYMBIOS_PASSWORD"), "password (default $GYMBIOS_PASSWORD)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		resp, err := c.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, resp.Token)
		if resp.PasswordChangeRequired {
			fmt.Fprintln(os.Stderr, "note: this account must change its password")
		}
		return nil

	case "me":
		me, err := c.Me(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, me)

	case "dashboard":
		d, err := c.Dashboard(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, d)

	case "members":
		q := fs.String("q", "", "search name, phone or email")
		status := fs.String("status", "", "member status")
		planID := fs.String("plan", "", "plan ID")
		page := fs.String("page", "1", "page number")
		if err := fs.Parse(args); err != nil {
			return err
		}
		query := url.Values{"page": {*page}}
		setIf(query, "q", *q)
		setIf(query, "status", *status)
		setIf(query, "plan_id", *planID)
		result, err := c.ListMembers(ctx, query)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tPHONE\tPLAN\tEXPIRES\tSTATE")
		for _, m := range result.Items {
			state := m.Status
			switch {
			case m.Expired:
				state = "expired"
			case m.ExpiringSoon:
				state = "expiring"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Name, m.Phone, m.MembershipPlan, m.ExpiryDate, state)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "page %d of %d, %d members\n", result.Page.Page, result.Page.TotalPages, result.Page.Total)
		return nil

	case "import":
		file := fs.String("f", "", "CSV file with NAME and EMAIL or PHONE columns")
		dryRun := fs.Bool("dry-run", false, "validate without writing")
		update := fs.Bool("update", false, "update members matched by email or phone")
		if err := fs.Parse(args); err != nil {
			return err
		}
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		res, err := c.ImportMembers(ctx, f, *dryRun, *update)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d rows: %d created, %d updated, %d skipped\n", res.Total, res.Created, res.Updated, res.Skipped)
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  row %d: %s\n", e.Row, e.Message)
		}
		if res.DryRun {
			fmt.Fprintln(out, "dry run: nothing was written")
		}
		return nil

	case "low-stock":
		products, err := c.LowStock(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PRODUCT\tSTOCK\tREORDER AT")
		for _, p := range products {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", p.Name, p.Stock, p.ReorderLevel)
		}
		return tw.Flush()

	case "stock":
		category := fs.String("category", "", "category ID")
		if err := fs.Parse(args); err != nil {
			return err
		}
		r, err := c.StockReport(ctx, *category)
		if err != nil {
			return err
		}
		return printJSON(out, r)

	case "export":
		path := fs.String("o", "", "output file (default: the server's file name)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return export(ctx, c, *path, out)

	case "outbox":
		status := fs.String("status", "", "failed (default), pending, retrying, done, abandoned or all")
		retry := fs.String("retry", "", "entry ID to retry now")
		abandon := fs.String("abandon", "", "entry ID to abandon")
		if err := fs.Parse(args); err != nil {
			return err
		}
		switch {
		case *retry != "":
			e, err := c.RetryOutbox(ctx, *retry)
			if err != nil {
				return err
			}
			return printJSON(out, e)
		case *abandon != "":
			if err := c.AbandonOutbox(ctx, *abandon); err != nil {
				return err
			}
			fmt.Fprintln(out, "abandoned", *abandon)
			return nil
		}
		entries, err := c.ListOutbox(ctx, *status)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTATUS\tATTEMPTS\tERROR")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", e.ID, e.Status, e.Attempts, e.MaxAttempts, e.ErrorMessage)
		}
		return tw.Flush()

	case "audit":
		category := fs.String("category", "", "event category")
		severity := fs.String("severity", "", "minimum severity: info, warning, critical")
		limit := fs.String("limit", "50", "max events")
		if err := fs.Parse(args); err != nil {
			return err
		}
		query := url.Values{"limit": {*limit}}
		setIf(query, "category", *category)
		setIf(query, "severity", *severity)
		events, err := c.ListAudit(ctx, query)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tSEVERITY\tACTOR\tACTION\tDESCRIPTION")
		for _, e := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s/%s\t%s\n", e.Timestamp.Format("2006-01-02 15:04"), e.Severity, e.ActorEmail, e.Category, e.Action, e.Description)
		}
		return tw.Flush()

	case "perf":
		minutes := fs.Int("minutes", 60, "window in minutes")
		top := fs.Int("top", 10, "slowest paths and queries to show")
		if err := fs.Parse(args); err != nil {
			return err
		}
		s, err := c.Perf(ctx, *minutes, *top)
		if err != nil {
			return err
		}
		return printJSON(out, s)

	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}
	fmt.Fprint(out, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func export(ctx context.Context, c *apiclient.Client, path string, out io.Writer) error {
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	}
	tmp, err := os.CreateTemp(dir, "gymctl-export-*.xlsx")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	disposition, err := c.Download(ctx, "/api/community-reports/export", tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if path == "" {
		path = filepath.Join(dir, filenameFrom(disposition, "community-report.xlsx"))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	fmt.Fprintln(out, "wrote", path)
	return nil
}

// filenameFrom pulls filename="..." out of a Content-Disposition header.
func filenameFrom(disposition, fallback string) string {
	_, rest, ok := strings.Cut(disposition, `filename="`)
	if !ok {
		return fallback
	}
	name, _, ok := strings.Cut(rest, `"`)
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return fallback
	}
	return name
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
