package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// DefaultCurrency prefixes amounts in console output.
const DefaultCurrency = "Rs."

const ruleWidth = 110

// PrintConsole renders the active customers, summary statistics, the top
// ranking and the inactive customer count.
func PrintConsole(w io.Writer, rows []CustomerRevenueRow, summary Summary, currency string) {
	rule := strings.Repeat("=", ruleWidth)
	thin := strings.Repeat("-", ruleWidth)

	fmt.Fprintf(w, "\n%s\nCUSTOMER REVENUE ANALYSIS - ACTIVE CUSTOMERS\n%s\n", rule, rule)
	if summary.ActiveCustomers == 0 {
		fmt.Fprintf(w, "No active customers found.\n%s\n\n", rule)
		return
	}

	active := newTable(w, "Customer ID", "Full Name", "Orders", "Quantity", "Total Revenue")
	for _, r := range rows {
		if r.Active() {
			active.Append(rowCells(r, currency))
		}
	}
	active.Render()

	fmt.Fprintf(w, "\n%s\n\nSUMMARY STATISTICS - ACTIVE CUSTOMERS\n%s\n", rule, thin)
	fmt.Fprintf(w, "  %-31s%d\n", "Active Customers:", summary.ActiveCustomers)
	fmt.Fprintf(w, "  %-31s%d\n", "Total Orders:", summary.TotalOrders)
	fmt.Fprintf(w, "  %-31s%d\n", "Total Quantity Sold:", summary.TotalQuantity)
	fmt.Fprintf(w, "  %-31s%s\n", "Total Revenue:", FormatMoney(currency, summary.TotalRevenue))
	fmt.Fprintf(w, "  %-31s%s\n", "Average Revenue per Customer:", FormatMoney(currency, summary.AverageRevenue))

	fmt.Fprintf(w, "\n%s\nTOP %d CUSTOMERS BY REVENUE\n%s\n", rule, len(summary.TopN), rule)
	top := newTable(w, "Rank", "Customer ID", "Full Name", "Orders", "Quantity", "Total Revenue")
	for i, r := range summary.TopN {
		top.Append(append([]string{strconv.Itoa(i + 1)}, rowCells(r, currency)...))
	}
	top.Render()
	fmt.Fprintf(w, "\n%s\n", rule)

	if summary.InactiveCustomers > 0 {
		fmt.Fprintf(w, "\nINACTIVE CUSTOMERS SUMMARY\n%s\n", thin)
		fmt.Fprintf(w, "  %-31s%d\n", "Total Inactive Customers:", summary.InactiveCustomers)
		fmt.Fprintln(w, "  These customers have not placed any orders yet.")
	}
	fmt.Fprintf(w, "\n%s\n\n", rule)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetRowLine(true)
	return t
}

func rowCells(r CustomerRevenueRow, currency string) []string {
	return []string{
		r.CustomerID,
		r.FullName,
		strconv.FormatInt(r.TotalOrders, 10),
		strconv.FormatInt(r.TotalQuantity, 10),
		FormatMoney(currency, r.TotalRevenue),
	}
}
