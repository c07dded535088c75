// cmd/rentals/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dressrental/internal/booking"
	"dressrental/internal/calendar"
	"dressrental/internal/config"
	"dressrental/internal/platform/logger"
	"dressrental/internal/platform/telemetry"
	"dressrental/internal/product"
	"dressrental/internal/rental"
	"dressrental/internal/storage/postgres"
)

const usage = `usage: rentals <command> [flags]

commands:
  migrate                          apply the database schema
  availability -date YYYY-MM-DD    list products free on a date
  bookings -status STATUS          list bookings in a status
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1], os.Args[2:]); err != nil {
		log.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, cmd string, args []string) error {
	shutdown, err := telemetry.Init(ctx, log, telemetry.Config{
		Enabled:     cfg.TracingEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    !cfg.IsProduction(),
	})
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	switch cmd {
	case "migrate":
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("schema applied")
		return nil

	case "availability":
		fs := flag.NewFlagSet("availability", flag.ContinueOnError)
		raw := fs.String("date", "", "date to check (YYYY-MM-DD)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		date, err := calendar.ParseDate(*raw)
		if err != nil {
			return err
		}
		svc, err := rental.NewService(
			postgres.NewProductRepository(db),
			postgres.NewBookingRepository(db),
			postgres.NewAppointmentRepository(db),
			log,
		)
		if err != nil {
			return err
		}
		ps, err := svc.ListAvailableProducts(ctx, date)
		if err != nil {
			return err
		}
		snapshots := make([]product.Snapshot, len(ps))
		for i, p := range ps {
			snapshots[i] = p.Snapshot()
		}
		return printJSON(snapshots)

	case "bookings":
		fs := flag.NewFlagSet("bookings", flag.ContinueOnError)
		status := fs.String("status", string(booking.StatusPaymentPending), "booking status")
		if err := fs.Parse(args); err != nil {
			return err
		}
		bs, err := postgres.NewBookingRepository(db).FindByStatus(ctx, booking.Status(*status))
		if err != nil {
			return err
		}
		type row struct {
			ID           string  `json:"id"`
			CustomerName string  `json:"customerName"`
			Status       string  `json:"status"`
			AmountPaid   float64 `json:"amountPaid"`
			TotalPrice   float64 `json:"totalPrice"`
		}
		rows := make([]row, len(bs))
		for i, b := range bs {
			rows[i] = row{
				ID:           b.ID().String(),
				CustomerName: b.CustomerName(),
				Status:       string(b.Status()),
				AmountPaid:   b.AmountPaid(),
				TotalPrice:   b.CalculateTotalPrice(),
			}
		}
		return printJSON(rows)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
