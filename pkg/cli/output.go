package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/montybasquiart/sihiri-build/pkg/contracts"
	"github.com/montybasquiart/sihiri-build/pkg/stacks"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render prints v as JSON, or as a table through table when the table format
// is selected.
func (s *state) render(v any, table func(tw *tabwriter.Writer)) error {
	if s.opts.Format == formatJSON {
		return printJSON(s.out, v)
	}
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

// renderKV prints key/value rows in the given order.
func (s *state) renderKV(v any, rows [][2]string) error {
	return s.render(v, func(tw *tabwriter.Writer) {
		for _, row := range rows {
			fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
		}
	})
}

// renderRecord prints a contract tuple with its fields sorted by name.
func (s *state) renderRecord(rec contracts.Record) error {
	return s.render(rec, func(tw *tabwriter.Writer) {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(tw, "%s:\t%v\n", k, rec[k])
		}
	})
}

// renderResult reports a submitted call.
func (s *state) renderResult(app *App, res *contracts.Result) error {
	if res.Status == contracts.StatusCancelled || res.Receipt == nil {
		return s.renderKV(res, [][2]string{{"Status", res.Status.String()}})
	}
	r := res.Receipt
	explorer := r.ExplorerURL
	if explorer == "" {
		explorer = stacks.ExplorerTxURL(app.Registry.Active().ExplorerURL, r.TxID, r.Network)
	}
	return s.renderKV(res, [][2]string{
		{"Status", res.Status.String()},
		{"Transaction", r.TxID},
		{"Contract", r.Contract},
		{"Function", r.Function},
		{"Explorer", explorer},
	})
}
