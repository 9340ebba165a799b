package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/dongyar/internal/calculator"
	"github.com/mmynk/dongyar/internal/config"
	"github.com/mmynk/dongyar/internal/format"
	"github.com/mmynk/dongyar/internal/service"
)

type settleOptions struct {
	people      []string
	locale      string
	currency    string
	currencySet bool // --currency given explicitly
	chart       bool
	save        bool
	title       string
}

func newSettleCmd(cfg *config.Config, remote *remoteOptions) *cobra.Command {
	opts := &settleOptions{}

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Compute who owes whom",
		Long: `Compute the transfers that settle a shared expense.

Pass every participant with --person NAME=AMOUNT, or run without --person to
be asked for the number of people and then each name and amount.`,
		Example: `  dongyar settle -p "Sara=1,200+800" -p Ali=0 -p Mina=400
  dongyar settle --remote http://localhost:8080 --save -p A=300 -p B=100 -p C=200`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []calculator.Entry
			var err error
			if len(opts.people) > 0 {
				entries, err = parsePeople(opts.people)
			} else {
				entries, err = promptEntries(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}

			if remote.url != "" {
				opts.currencySet = cmd.Flags().Changed("currency")
				return settleRemote(cmd.Context(), cmd.OutOrStdout(), remote, opts, entries)
			}
			if opts.save {
				return errors.New("--save needs --remote")
			}
			return settleLocal(cmd.OutOrStdout(), opts, entries)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.people, "person", "p", nil, "Participant as NAME=AMOUNT (repeatable)")
	cmd.Flags().StringVar(&opts.locale, "locale", cfg.Locale, "Locale for amounts and sentences (e.g. en, fa)")
	cmd.Flags().StringVar(&opts.currency, "currency", cfg.Currency, "Currency unit shown after amounts")
	cmd.Flags().BoolVar(&opts.chart, "chart", false, "Also print each person's share of the total")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the result on the server (requires --remote)")
	cmd.Flags().StringVar(&opts.title, "title", "", "Title for a saved result")

	return cmd
}

func settleLocal(out io.Writer, opts *settleOptions, entries []calculator.Entry) error {
	result, err := calculator.Settle(entries)
	if err != nil {
		return describeError(err)
	}

	p := format.NewPrinter(opts.locale, opts.currency)
	fmt.Fprintln(out, p.EqualShare(result.EqualShare))
	for _, line := range p.Transfers(result.Transactions) {
		fmt.Fprintln(out, line)
	}

	if opts.chart {
		fmt.Fprintln(out)
		for _, s := range result.Shares() {
			fmt.Fprintln(out, p.Share(s))
		}
	}
	return nil
}

func settleRemote(ctx context.Context, out io.Writer, remote *remoteOptions, opts *settleOptions, entries []calculator.Entry) error {
	req := &service.SettleRequest{
		Participants: make([]service.Participant, len(entries)),
		Save:         opts.save,
		Title:        opts.title,
		Locale:       opts.locale,
	}
	if opts.currencySet {
		req.Currency = opts.currency
	}
	for i, e := range entries {
		req.Participants[i] = service.Participant{Name: e.Name, Amount: e.RawAmount}
	}

	ctx, cancel := context.WithTimeout(ctx, remote.timeout)
	defer cancel()

	resp, err := remote.client().Settle(ctx, withToken(connect.NewRequest(req), remote.token))
	if err != nil {
		return describeRemoteError(err)
	}

	return printView(out, resp.Msg.Settlement, opts.chart)
}

// parsePeople reads NAME=AMOUNT flag values. Validation of the name and the
// amount is left to the calculator so every problem is reported together.
func parsePeople(people []string) ([]calculator.Entry, error) {
	entries := make([]calculator.Entry, len(people))
	for i, p := range people {
		name, amount, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("--person %q: expected NAME=AMOUNT", p)
		}
		entries[i] = calculator.Entry{Name: name, RawAmount: amount}
	}
	return entries, nil
}

// promptEntries runs the interactive form: first the number of people, then
// a name and an amount for each of them.
func promptEntries(in io.Reader, out io.Writer) ([]calculator.Entry, error) {
	scanner := bufio.NewScanner(in)
	ask := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return scanner.Text(), nil
	}

	raw, err := ask("Number of people: ")
	if err != nil {
		return nil, err
	}
	count, err := calculator.ParseCount(raw)
	if err != nil {
		return nil, err
	}

	entries := make([]calculator.Entry, count)
	for i := range entries {
		if entries[i].Name, err = ask(fmt.Sprintf("Name %d: ", i+1)); err != nil {
			return nil, err
		}
		if entries[i].RawAmount, err = ask(fmt.Sprintf("Amount paid by %s: ", strings.TrimSpace(entries[i].Name))); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// describeError turns a validation error into one line per bad row.
func describeError(err error) error {
	var verr *calculator.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	lines := make([]string, len(verr.Problems))
	for i, p := range verr.Problems {
		lines[i] = "  " + p.Error()
	}
	return fmt.Errorf("please fix the following and try again:\n%s", strings.Join(lines, "\n"))
}

func describeRemoteError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return fmt.Errorf("server rejected the request (%s): %s", connectErr.Code(), connectErr.Message())
	}
	return err
}

func (r *remoteOptions) client() *service.SettlementClient {
	return service.NewSettlementClient(http.DefaultClient, r.url)
}

// withToken attaches a bearer token, if any, to req.
func withToken[T any](req *connect.Request[T], token string) *connect.Request[T] {
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

// printView prints a settlement rendered by the server. Chart lines are
// formatted locally in the view's locale and currency.
func printView(out io.Writer, view service.SettlementView, chart bool) error {
	if view.SettlementID != "" {
		fmt.Fprintf(out, "%s (%s)\n", view.Title, view.SettlementID)
	}
	if view.Message != "" {
		fmt.Fprintln(out, view.Message)
	}
	for _, t := range view.Transfers {
		fmt.Fprintln(out, t.Text)
	}
	if !chart {
		return nil
	}

	p := format.NewPrinter(view.Locale, view.Currency)
	fmt.Fprintln(out)
	for _, s := range view.Shares {
		percent, err := decimal.NewFromString(s.Percent)
		if err != nil {
			return fmt.Errorf("share of %s: malformed percent %q: %w", s.Name, s.Percent, err)
		}
		fmt.Fprintln(out, p.Share(calculator.Share{Name: s.Name, Amount: s.Amount, Percent: percent}))
	}
	return nil
}
