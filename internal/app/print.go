package app

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
	"github.com/JonMunkholm/ecomrevenue/internal/ingest"
)

// MaxPrintedRejections caps the rejection lines printed after a load.
var MaxPrintedRejections = 20

// PrintLoadReport prints per-table counts, reason totals and the first
// rejections of a load.
func PrintLoadReport(w io.Writer, lr *ingest.LoadReport, counts []ingest.TableCount) {
	stored := make(map[string]int64, len(counts))
	for _, c := range counts {
		stored[c.Entity] = c.Rows
	}

	fmt.Fprintf(w, "\nLoad %s (%s, %s)\n", lr.RunID, lr.Status(), lr.Duration.Round(time.Millisecond))
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Table", "Read", "Accepted", "Rejected", "Stored Rows", "Result"})
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, e := range lr.Entities {
		t.Append([]string{
			e.Entity,
			strconv.Itoa(e.Read),
			strconv.Itoa(e.Accepted),
			strconv.Itoa(e.Rejected),
			strconv.FormatInt(stored[e.Entity], 10),
			entityResult(e),
		})
	}
	read, accepted, rejected := lr.Totals()
	t.SetFooter([]string{"Total", strconv.Itoa(read), strconv.Itoa(accepted), strconv.Itoa(rejected), "", ""})
	t.Render()

	all := lr.Rejections()
	if len(all) == 0 {
		return
	}

	byReason := make(map[core.Reason]int)
	for _, r := range all {
		byReason[r.Reason]++
	}
	parts := make([]string, 0, len(byReason))
	for _, reason := range core.Reasons {
		if n := byReason[reason]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, n))
		}
	}
	fmt.Fprintf(w, "\nRejected rows by reason: %s\n", strings.Join(parts, ", "))

	for i, r := range all {
		if i == MaxPrintedRejections {
			fmt.Fprintf(w, "  ... and %d more\n", len(all)-i)
			break
		}
		fmt.Fprintf(w, "  %s %s: %s: %s\n", r.Entity, r.Ref(), r.Reason, r.Message)
	}
}

func entityResult(e ingest.EntityReport) string {
	switch {
	case e.Committed:
		return "replaced"
	case e.SkippedReason != "":
		return "skipped: " + e.SkippedReason
	case e.Aborted:
		return "aborted"
	default:
		return "-"
	}
}

// PrintSchema prints the registered entities with their fields.
func PrintSchema(w io.Writer) {
	for _, def := range core.All() {
		fmt.Fprintf(w, "\n%s (%s)\n", def.Label, def.Name)
		t := tablewriter.NewWriter(w)
		t.SetHeader([]string{"Field", "Type", "SQL Type", "If Missing", "Key"})
		t.SetAutoFormatHeaders(false)
		t.SetAlignment(tablewriter.ALIGN_LEFT)
		sqlTypes := def.SQLTypes()
		for i, f := range def.Fields {
			t.Append([]string{f.Name, fieldType(f), sqlTypes[i], missingPolicy(f), keyRole(f)})
		}
		t.Render()
	}
}

func fieldType(f core.FieldSpec) string {
	if f.Type != core.FieldEnum {
		return core.FieldTypeName(f.Type)
	}
	values := append([]string(nil), f.EnumValues...)
	sort.Strings(values)
	return "enum(" + strings.Join(values, "|") + ")"
}

func missingPolicy(f core.FieldSpec) string {
	switch f.Missing {
	case core.MissingDefault:
		if f.Default != "" {
			return "default " + f.Default
		}
		return "default"
	case core.MissingNull:
		return "null"
	default:
		return "reject"
	}
}

func keyRole(f core.FieldSpec) string {
	switch f.Key {
	case core.KeyPrimary:
		return "primary"
	case core.KeyForeign:
		return "-> " + f.References
	default:
		return ""
	}
}
