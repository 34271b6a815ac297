// seed is a one-shot tool that loads demonstration data into the record
// store: two orders walked through to different pipeline stages.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"packflow/internal/app"
	"packflow/internal/core"
	"packflow/internal/db"
	"packflow/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	recordStore, err := store.NewPostgres(ctx, pool)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	svc := app.NewApplicationService(app.NewServices(recordStore), app.Credentials{})

	log.Println("Creating orders...")
	first, err := svc.CreateOrder(ctx, app.CreateOrderRequest{
		OrderNumber: "ORD-2401",
		Company: core.CompanyInfo{
			Name:    "Sagar Plastics",
			Contact: "Ramesh",
			Phone:   "+91-9800000001",
			Address: "Rajkot",
		},
		Lines: []app.OrderLineInput{
			{Name: "500ml Container Lid", Category: "Containers", Size: "500ml", Type: core.TypeLid, Quantity: decimal.NewFromInt(20000)},
			{Name: "1L Round Set", Category: "Containers", Size: "1L", Type: core.TypeLidTub, Lid: decimal.NewFromInt(10000), Tub: decimal.NewFromInt(10000)},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create ORD-2401: %v", err)
	}

	_, err = svc.CreateOrder(ctx, app.CreateOrderRequest{
		OrderNumber: "ORD-2402",
		Company: core.CompanyInfo{
			Name:    "Mehta Packaging",
			Contact: "Suresh",
			Phone:   "+91-9800000002",
			Address: "Ahmedabad",
		},
		Lines: []app.OrderLineInput{
			{Name: "2L Jar Lid", Category: "Jars", Size: "2L", Type: core.TypeLid, Quantity: decimal.NewFromInt(5000)},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create ORD-2402: %v", err)
	}

	log.Println("Recording purchase receipts for ORD-2401...")
	lid := first.Order.Lines[0].ID
	for _, qty := range []int64{8000, 12000} {
		_, err := svc.ReceiveLabels(ctx, app.ReceiveLabelsRequest{
			OrderRef:  first.Order.ID,
			ProductID: lid,
			Quantity:  decimal.NewFromInt(qty),
			Complete:  qty == 12000,
			Remarks:   "seed batch",
		})
		if err != nil {
			log.Fatalf("Failed to record receipt: %v", err)
		}
	}

	log.Println("Verifying inventory for ORD-2401...")
	_, err = svc.VerifyInventory(ctx, app.VerifyRequest{
		OrderRef: first.Order.ID,
		Remarks:  "seed verification",
		Items: []app.VerifyItemInput{
			{ProductID: lid, Quantity: decimal.NewFromInt(19900), SampleQty: decimal.NewFromInt(100), Complete: true},
		},
	})
	if err != nil {
		log.Fatalf("Failed to verify inventory: %v", err)
	}

	log.Println("Creating a sales-payment bill for ORD-2401...")
	bill, err := svc.CreateBill(ctx, app.CreateBillRequest{
		OrderRef:       first.Order.ID,
		EstimatedValue: decimal.NewFromInt(39800),
		Lines: []app.BillLineInput{
			{ProductID: lid, Quantity: decimal.NewFromInt(19900), UnitPrice: decimal.NewFromInt(2)},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create bill: %v", err)
	}
	_, err = svc.AddPayment(ctx, first.Order.ID, bill.Bill.ID, app.PaymentRequest{
		Method: "UPI",
		Amount: decimal.NewFromInt(20000),
		Ref:    "seed-payment-1",
	})
	if err != nil {
		log.Fatalf("Failed to add payment: %v", err)
	}

	log.Println("Seed data loaded.")
}
