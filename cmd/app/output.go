package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/saehwan/assetledger/internal/domain"
)

func printJSON(v any) error {
	b, err := jsonMarshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatMaybeUint(v *uint) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func formatMaybeString(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatMaybeTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func printAssets(items []domain.Asset) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			uintToString(item.ID),
			item.AssetTag,
			string(item.CurrentStatus),
			formatMaybeUint(item.CurrentOwnerID),
			formatMaybeUint(item.CurrentLocationID),
			formatMaybeTime(item.AcquisitionDate),
		})
	}
	printTable([]string{"ID", "TAG", "STATUS", "OWNER", "LOCATION", "ACQUIRED"}, rows)
}

func printAssetDetail(item domain.Asset) {
	printKV([][2]string{
		{"id", uintToString(item.ID)},
		{"tag", item.AssetTag},
		{"serial", formatMaybeString(item.SerialNumber)},
		{"status", string(item.CurrentStatus)},
		{"owner_id", formatMaybeUint(item.CurrentOwnerID)},
		{"location_id", formatMaybeUint(item.CurrentLocationID)},
		{"acquired", formatMaybeTime(item.AcquisitionDate)},
		{"po_line_id", formatMaybeUint(item.POLineID)},
		{"notes", formatMaybeString(item.Notes)},
		{"updated_at", formatTime(item.UpdatedAt)},
	})
}

func printEvents(items []domain.AssetEvent) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		from := "-"
		if item.FromStatus != nil {
			from = string(*item.FromStatus)
		}
		rows = append(rows, []string{
			uintToString(item.ID),
			formatTime(item.EventTime),
			from,
			string(item.ToStatus),
			uintToString(item.PerformedByID),
			formatMaybeUint(item.ToOwnerID),
			formatMaybeUint(item.ToLocationID),
			formatMaybeString(item.Reason),
			formatMaybeString(item.ReferenceDoc),
		})
	}
	printTable([]string{"ID", "AT", "FROM", "TO", "BY", "OWNER", "LOCATION", "REASON", "REF"}, rows)
}

func printPurchaseOrders(items []domain.PurchaseOrder) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			uintToString(item.ID),
			formatMaybeString(item.PONumber),
			formatMaybeString(item.VendorName),
			uintToString(item.RequestedByID),
			formatTime(item.PurchasedAt),
			item.PurchaseReason,
			formatMaybeString(item.CostCenter),
		})
	}
	printTable([]string{"ID", "PO_NUMBER", "VENDOR", "REQUESTED_BY", "PURCHASED_AT", "REASON", "COST_CENTER"}, rows)
}

func printPurchaseOrderLines(items []domain.PurchaseOrderLine) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		price := "-"
		if item.UnitPrice != nil {
			price = strconv.FormatFloat(*item.UnitPrice, 'f', 2, 64)
		}
		rows = append(rows, []string{
			uintToString(item.ID),
			uintToString(item.POID),
			item.ItemCategory,
			formatMaybeString(item.ModelName),
			strconv.Itoa(item.QtyOrdered),
			price,
		})
	}
	printTable([]string{"ID", "PO_ID", "CATEGORY", "MODEL", "QTY", "UNIT_PRICE"}, rows)
}

func printUsers(items []domain.User) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			uintToString(item.ID),
			item.DisplayName,
			string(item.Role),
			formatTime(item.CreatedAt),
		})
	}
	printTable([]string{"ID", "NAME", "ROLE", "CREATED_AT"}, rows)
}

func printLocations(items []domain.Location) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			uintToString(item.ID),
			item.Name,
			formatTime(item.CreatedAt),
		})
	}
	printTable([]string{"ID", "NAME", "CREATED_AT"}, rows)
}
