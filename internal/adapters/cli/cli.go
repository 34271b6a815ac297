package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"packflow/internal/app"
	"packflow/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	if len(args) == 0 {
		log.Fatal("Usage: packflow <orders|order|purchase|payments|manifest|dispatches> [args]")
	}

	switch args[0] {
	case "orders", "ls":
		filters := core.Filters{}
		if len(args) > 1 {
			filters.Search = args[1]
		}
		result, err := svc.ListOrders(ctx, filters)
		if err != nil {
			log.Fatalf("Failed to list orders: %v", err)
		}
		printGroups(result.Groups)

	case "order", "o":
		if len(args) < 2 {
			log.Fatal("Usage: packflow order <order-number>")
		}
		result, err := svc.GetOrder(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to load order: %v", err)
		}
		printOrder(result.Order)

	case "purchase", "p":
		if len(args) < 3 {
			log.Fatal("Usage: packflow purchase <order-number> <product-id>")
		}
		result, err := svc.PurchaseState(ctx, args[1], args[2])
		if err != nil {
			log.Fatalf("Failed to load purchase state: %v", err)
		}
		printPurchase(result)

	case "payments", "pay":
		if len(args) < 2 {
			log.Fatal("Usage: packflow payments <order-number>")
		}
		result, err := svc.OrderPayments(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to load payments: %v", err)
		}
		printPayments(result)

	case "manifest", "m":
		if len(args) < 2 {
			log.Fatal("Usage: packflow manifest <order-number>")
		}
		manifest, err := svc.OrderManifest(ctx, args[1])
		if err != nil {
			log.Fatalf("Failed to build manifest: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(manifest)

	case "dispatches", "d":
		rows, err := svc.ListDispatches(ctx)
		if err != nil {
			log.Fatalf("Failed to list dispatches: %v", err)
		}
		printDispatches(rows)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: orders, order, purchase, payments, manifest, dispatches", args[0])
	}
}

func printGroups(groups []core.CompanyGroup) {
	for _, company := range groups {
		fmt.Println(strings.Repeat("=", 70))
		fmt.Printf("  %s\n", company.Company)
		for _, order := range company.Orders {
			fmt.Printf("  Order %s\n", order.OrderNumber)
			for _, group := range order.Groups {
				fmt.Printf("    [%s]\n", group.Key)
				for _, p := range group.Products {
					fmt.Printf("      %-36s %-8s %18s  %s\n", p.Name, p.Size, p.Quantity, p.Status)
				}
			}
		}
	}
	fmt.Println(strings.Repeat("=", 70))
}

func printOrder(order *core.Order) {
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  ORDER %s\n", order.OrderNumber)
	fmt.Printf("  Company : %s (%s)\n", order.Company.Name, order.Company.Contact)
	fmt.Printf("  Placed  : %s\n", order.OrderedAt.Format("02 Jan 2006"))
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("  %-36s %-10s %18s\n", "PRODUCT", "TYPE", "ORDERED")
	for _, l := range order.Lines {
		fmt.Printf("  %-36s %-10s %18s  %s\n", l.Name, l.Type, l.Ordered, l.Status)
	}
	fmt.Println(strings.Repeat("=", 70))
}

func printPurchase(state *app.PurchaseStateResult) {
	fmt.Printf("Total received : %s\n", state.Total)
	fmt.Printf("Remaining      : %s\n", state.Remaining)
	fmt.Printf("Complete       : %v\n", state.Complete)
	fmt.Println(strings.Repeat("-", 70))
	for _, e := range state.History {
		fmt.Printf("  %s  %18s  %s\n", e.At.Format("02 Jan 2006 15:04"), e.Delta, e.Remarks)
	}
}

func printPayments(result *app.OrderPaymentsResult) {
	for _, p := range result.Payments {
		fmt.Printf("  %s  %-10s %12s  %s\n", p.At.Format("02 Jan 2006"), p.Method, p.Amount.StringFixed(2), p.Remarks)
	}
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("  TOTAL %38s\n", result.Total.StringFixed(2))
}

func printDispatches(rows []app.DispatchRow) {
	fmt.Printf("  %-12s %-24s %-14s %-12s %s\n", "ORDER", "CUSTOMER", "INVOICE", "LR NO", "STATUS")
	fmt.Println(strings.Repeat("-", 76))
	for _, row := range rows {
		fmt.Printf("  %-12s %-24s %-14s %-12s %s\n",
			row.OrderNumber, row.CustomerName, row.InvoiceNumber, row.LRNumber, row.Status)
	}
}
