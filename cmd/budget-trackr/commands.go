package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Edjery/budget-trackr/internal/amqp"
	"github.com/Edjery/budget-trackr/internal/cache"
	"github.com/Edjery/budget-trackr/internal/cli"
	"github.com/Edjery/budget-trackr/internal/core"
	"github.com/Edjery/budget-trackr/internal/currency"
	"github.com/Edjery/budget-trackr/internal/log"
	"github.com/Edjery/budget-trackr/internal/services"
)

type command struct {
	summary string
	run     func(ctx context.Context, app *cli.App, args []string, out io.Writer) error
}

func commands() map[string]command {
	return map[string]command{
		"add":        {"record earnings or spendings for a day or a day range", runAdd},
		"edit":       {"change one record", runEdit},
		"delete":     {"remove one record", runDelete},
		"list":       {"show records grouped by date, newest first", runList},
		"summary":    {"show all-time, month and year totals", runSummary},
		"move":       {"reorder a record within its date", runMove},
		"settings":   {"show or change currency, theme, language and visibility", runSettings},
		"currencies": {"list supported currencies and languages", runCurrencies},
		"export":     {"write a backup file", runExport},
		"import":     {"replace all data with a backup file", runImport},
		"watch":      {"follow change events and print refreshed totals", runWatch},
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// parseItem reads "type:name:amount"
func parseItem(s string) (core.TransactionItem, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return core.TransactionItem{}, fmt.Errorf("item %q: want type:name:amount", s)
	}
	return core.TransactionItem{
		Type:   core.TransactionType(strings.TrimSpace(parts[0])),
		Name:   strings.TrimSpace(parts[1]),
		Amount: strings.TrimSpace(parts[2]),
	}, nil
}

func runAdd(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	year, month, day := core.CurrentDateValues(time.Now())

	fs := newFlagSet("add", out)
	fs.IntVar(&year, "year", year, "year")
	fs.IntVar(&month, "month", month, "month (1-12)")
	fs.IntVar(&day, "day", day, "day of month")
	endDay := fs.Int("end-day", 0, "last day of a multi-day entry")
	typ := fs.String("type", string(core.Spendings), "earnings or spendings")
	name := fs.String("name", "", "item name")
	amount := fs.String("amount", "", "item amount")
	var extra []core.TransactionItem
	fs.Func("item", "additional item as type:name:amount (repeatable)", func(s string) error {
		item, err := parseItem(s)
		if err != nil {
			return err
		}
		extra = append(extra, item)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}

	var items []core.TransactionItem
	if *name != "" || *amount != "" {
		items = append(items, core.TransactionItem{Type: core.TransactionType(*typ), Name: *name, Amount: *amount})
	}
	items = append(items, extra...)

	f := core.FormValues{
		Year:         year,
		Month:        month,
		DayRangeType: core.SingleDay,
		StartDay:     day,
		EndDay:       day,
		Items:        items,
	}
	if *endDay != 0 && *endDay != day {
		f.DayRangeType = core.MultipleDays
		f.EndDay = *endDay
	}

	before := len(app.Transactions.List())
	tx, err := app.Transactions.Add(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %d record(s), first %s on %s\n", len(app.Transactions.List())-before, tx.ID, tx.Date)
	return nil
}

func runEdit(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("edit", out)
	year := fs.Int("year", 0, "new year (default: unchanged)")
	month := fs.Int("month", 0, "new month (default: unchanged)")
	day := fs.Int("day", 0, "new day (default: unchanged)")
	typ := fs.String("type", "", "new type")
	name := fs.String("name", "", "new name")
	amount := fs.String("amount", "", "new amount")
	sortOrder := fs.Int("sort", -1, "new sort order")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("edit: want exactly one record id")
	}
	id := fs.Arg(0)

	cur, ok := app.Transactions.Get(id)
	if !ok {
		return fmt.Errorf("no record with id %s", id)
	}

	f := core.FormValues{
		Year:         cur.Year,
		Month:        cur.Month,
		DayRangeType: core.SingleDay,
		StartDay:     cur.Day(),
		Items: []core.TransactionItem{{
			Type:   core.TransactionType(*typ),
			Name:   *name,
			Amount: *amount,
		}},
	}
	if *year != 0 {
		f.Year = *year
	}
	if *month != 0 {
		f.Month = *month
	}
	if *day != 0 {
		f.StartDay = *day
	}
	if *sortOrder >= 0 {
		f.Items[0].SortOrder = sortOrder
	}

	tx, found, err := app.Transactions.Update(ctx, id, f)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no record with id %s", id)
	}
	fmt.Fprintf(out, "updated %s: %s %s %s on %s\n", tx.ID, tx.Type, tx.Name, formatAmount(app, core.AmountValue(tx.Amount).InexactFloat64()), tx.Date)
	return nil
}

func runDelete(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("delete", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("delete: want exactly one record id")
	}

	ok, err := app.Transactions.Delete(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(out, "no record with id %s\n", fs.Arg(0))
		return nil
	}
	fmt.Fprintf(out, "deleted %s\n", fs.Arg(0))
	return nil
}

func runList(_ context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("list", out)
	date := fs.String("date", "", "only show this date (YYYY-MM-DD)")
	page := fs.Int("page", 1, "number of pages to show")
	perPage := fs.Int("per-page", 10, "date groups on the first page")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *date != "" {
		if _, _, _, err := core.ParseDateKey(*date); err != nil {
			return err
		}
	}

	p := app.Summary.Page(*date, *perPage, *page)
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	if len(p.Items) == 0 {
		fmt.Fprintln(out, "no records")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, g := range p.Items {
		fmt.Fprintf(tw, "%s\t\t\tnet %s\n", g.Date, formatAmount(app, g.Net))
		for _, tx := range g.Transactions {
			sign := "+"
			if tx.Type == core.Spendings {
				sign = "-"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s%s\t#%d\n", tx.ID, tx.Name, sign, formatAmount(app, core.AmountValue(tx.Amount).InexactFloat64()), tx.SortOrder)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p.HasMore {
		fmt.Fprintf(out, "page %d of %d, use -page %d for more\n", p.Current, p.TotalPages, p.Current+1)
	}
	return nil
}

func runSummary(_ context.Context, app *cli.App, args []string, out io.Writer) error {
	year, month, _ := core.CurrentDateValues(time.Now())

	fs := newFlagSet("summary", out)
	fs.IntVar(&year, "year", year, "year")
	fs.IntVar(&month, "month", month, "month (1-12)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if month < 1 || month > 12 {
		return core.ErrInvalidMonth
	}

	sum := app.Summary.Summary(year, month)
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "period\tearnings\tspendings\tbalance\t")
	rows := []struct {
		label  string
		totals core.Totals
	}{
		{"all time", sum.AllTime},
		{fmt.Sprintf("%04d", sum.Year), sum.ForYear},
		{fmt.Sprintf("%04d-%02d", sum.Year, sum.Month), sum.ForMonth},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.label,
			formatAmount(app, r.totals.Earnings),
			formatAmount(app, r.totals.Spendings),
			formatAmount(app, r.totals.Balance))
	}
	return tw.Flush()
}

func runMove(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("move", out)
	date := fs.String("date", "", "date group (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("move: want <active-id> <over-id>")
	}
	if *date == "" {
		tx, ok := app.Transactions.Get(fs.Arg(0))
		if !ok {
			return fmt.Errorf("no record with id %s", fs.Arg(0))
		}
		*date = tx.Date
	}

	changed, err := app.Order.Move(ctx, *date, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "reordered %s, %d record(s) changed\n", *date, changed)
	for _, tx := range app.Order.Group(*date) {
		fmt.Fprintf(out, "  %d  %s  %s\n", tx.SortOrder, tx.ID, tx.Name)
	}
	return nil
}

func runSettings(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("settings", out)
	theme := fs.String("theme", "", "light, dark or system")
	code := fs.String("currency", "", "currency code, e.g. PHP")
	lang := fs.String("language", "", "language code, e.g. en")
	hide := fs.String("hide-amounts", "", "true or false")
	toggle := fs.Bool("toggle-theme", false, "flip between light and dark")
	systemDark := fs.Bool("system-dark", false, "treat the system theme as dark")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var p services.Patch
	changed := false
	if *theme != "" {
		t := services.Theme(*theme)
		p.Theme = &t
		changed = true
	}
	if *toggle {
		t := services.ToggleTheme(app.Settings.Current().Appearance.Theme, *systemDark)
		p.Theme = &t
		changed = true
	}
	if *code != "" {
		c := strings.ToUpper(*code)
		p.CurrencyCode = &c
		changed = true
	}
	if *lang != "" {
		p.Language = lang
		changed = true
	}
	if *hide != "" {
		v, err := strconv.ParseBool(*hide)
		if err != nil {
			return fmt.Errorf("hide-amounts: %w", err)
		}
		p.Visibility = &services.Visibility{HideAmounts: v}
		changed = true
	}

	s := app.Settings.Current()
	if changed {
		var err error
		if s, err = app.Settings.Update(ctx, p); err != nil {
			return err
		}
	}

	hidden := s.Visibility != nil && s.Visibility.HideAmounts
	fmt.Fprintf(out, "theme:        %s (%s)\n", s.Appearance.Theme, services.ResolveTheme(s.Appearance.Theme, *systemDark))
	fmt.Fprintf(out, "currency:     %s %s (%s)\n", s.Currency.Code, s.Currency.Symbol, s.Currency.Name)
	fmt.Fprintf(out, "language:     %s\n", s.Language)
	fmt.Fprintf(out, "hide amounts: %t\n", hidden)
	return nil
}

func runCurrencies(_ context.Context, _ *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("currencies", out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range currency.Available() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Code, c.Symbol, c.Name, currency.FormatGrouped(c, 1234.5, currency.DefaultOptions()))
	}
	fmt.Fprintln(tw)
	for _, l := range services.Languages() {
		fmt.Fprintf(tw, "%s\t%s\n", l.Code, l.Name)
	}
	return tw.Flush()
}

func runExport(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("export", out)
	dir := fs.String("dir", app.Config.BackupDir, "directory for the backup file")
	toStdout := fs.Bool("stdout", false, "write the backup to stdout instead of a file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *toStdout {
		return app.Backup.WriteTo(out)
	}
	path, err := app.Backup.ExportFile(ctx, *dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "exported %d record(s) to %s\n", len(app.Transactions.List()), path)
	return nil
}

func runImport(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("import", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("import: want a backup file path, or - for stdin")
	}

	var r io.Reader = os.Stdin
	if path := fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open backup: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := app.Backup.Import(ctx, r); err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d record(s)\n", len(app.Transactions.List()))
	return nil
}

func runWatch(parent context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := newFlagSet("watch", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if app.Backend.AMQP == nil {
		return errors.New("watch: AMQP_URL is not configured or the broker is unreachable")
	}

	logger := log.FromContext(parent)
	ctx, done := cli.GracefulShutdown(logger.WithComponent(log.ComponentAMQP), 10*time.Second, nil)
	ctx = log.NewContext(ctx, logger)

	manager := cache.NewManager(logger)
	manager.Register(app.Cache)
	manager.StartCleanup(ctx, app.Config.SummaryCacheTTL)
	defer manager.Stop()

	printCurrent(app, out)
	err := app.Backend.AMQP.ConsumeChanges(ctx, func(e *amqp.ChangeEvent) error {
		if err := app.Reload(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s %s (%d id(s))\n", e.Timestamp.Local().Format(time.TimeOnly), e.Entity, e.Operation, len(e.IDs))
		printCurrent(app, out)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		cli.WaitForShutdown(ctx, done)
		return nil
	}
	return err
}

func printCurrent(app *cli.App, out io.Writer) {
	sum := app.Summary.Current()
	fmt.Fprintf(out, "  month %04d-%02d balance %s, all time %s\n", sum.Year, sum.Month,
		formatAmount(app, sum.ForMonth.Balance), formatAmount(app, sum.AllTime.Balance))
}

func formatAmount(app *cli.App, v float64) string {
	s := app.Settings.Current()
	if s.Visibility != nil && s.Visibility.HideAmounts {
		return "****"
	}
	return currency.FormatGrouped(s.Currency, v, currency.DefaultOptions())
}
