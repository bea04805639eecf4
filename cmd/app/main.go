package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	sqliteadapter "github.com/saehwan/assetledger/internal/adapters/db/sqlite"
	httpadapter "github.com/saehwan/assetledger/internal/adapters/http"
	rpcadapter "github.com/saehwan/assetledger/internal/adapters/rpcjson"
	"github.com/saehwan/assetledger/internal/application"
	"github.com/saehwan/assetledger/internal/domain"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "assetledger",
		Usage: "IT asset lifecycle ledger server and CLI",
		Commands: []*cli.Command{
			serverCommand(),
			assetsCommand(),
			receiveCommand(),
			poCommand(),
			mastersCommand(),
			configCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, ":8080", "/tmp/assetledger.sock", "assetledger.db", "IT Admin")
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Run HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "rpc-socket", Value: "/tmp/assetledger.sock", Usage: "JSON-RPC unix socket path"},
			&cli.StringFlag{Name: "db-path", Value: "assetledger.db", Usage: "SQLite database path"},
			&cli.StringFlag{Name: "bootstrap-admin-name", Value: "IT Admin", Usage: "initial admin display name when users are empty"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("addr"), c.String("rpc-socket"), c.String("db-path"), c.String("bootstrap-admin-name"))
		},
	}
}

func runServer(ctx context.Context, addr, rpcSocket, dbPath, bootstrapAdminName string) error {
	db, err := sqliteadapter.Open(dbPath)
	if err != nil {
		return err
	}
	if err := sqliteadapter.RunMigrations(ctx, db); err != nil {
		return err
	}

	repo := sqliteadapter.NewLedgerRepository(db)
	service := application.NewLedgerService(repo)
	if err := service.Bootstrap(ctx, bootstrapAdminName); err != nil {
		return err
	}

	router := httpadapter.NewRouter(service)
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	rpcSrv, err := rpcadapter.Start(rpcSocket, service)
	if err != nil {
		return err
	}

	defer func() {
		_ = rpcSrv.Close()
	}()
	log.Printf("json-rpc listening on unix://%s", rpcSocket)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func assetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "assets",
		Usage: "Asset lifecycle commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List assets",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Asset
					if err := doAssetsList(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAssets(out)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Show one asset",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Asset
					if err := doAssetsGet(ctx, cfg, c.Uint("id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAssetDetail(out)
					return nil
				},
			},
			{
				Name:  "timeline",
				Usage: "Show an asset's event history",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.AssetEvent
					if err := doAssetsTimeline(ctx, cfg, c.Uint("id"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printEvents(out)
					return nil
				},
			},
			{
				Name:  "issue",
				Usage: "Issue an asset to a user",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.UintFlag{Name: "to-owner", Required: true, Usage: "receiving user id"},
					&cli.UintFlag{Name: "performed-by", Required: true},
					&cli.StringFlag{Name: "reason"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Asset
					if err := doAssetsIssue(ctx, cfg, c.Uint("id"), c.Uint("to-owner"), c.Uint("performed-by"), optString(c, "reason"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAssetDetail(out)
					return nil
				},
			},
			{
				Name:  "return",
				Usage: "Return an issued asset to stock",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.UintFlag{Name: "to-location", Required: true, Usage: "stock location id"},
					&cli.UintFlag{Name: "performed-by", Required: true},
					&cli.StringFlag{Name: "reason"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Asset
					if err := doAssetsReturn(ctx, cfg, c.Uint("id"), c.Uint("to-location"), c.Uint("performed-by"), optString(c, "reason"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAssetDetail(out)
					return nil
				},
			},
			{
				Name:  "dispose",
				Usage: "Dispose an asset permanently",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.UintFlag{Name: "performed-by", Required: true},
					&cli.StringFlag{Name: "reason", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Asset
					if err := doAssetsDispose(ctx, cfg, c.Uint("id"), c.Uint("performed-by"), c.String("reason"), &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAssetDetail(out)
					return nil
				},
			},
		},
	}
}

func receiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "receive",
		Usage: "Receive assets from a purchase order line",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "line", Required: true, Usage: "purchase order line id"},
			&cli.IntFlag{Name: "qty", Required: true, Usage: "quantity received"},
			&cli.UintFlag{Name: "location", Required: true, Usage: "stock location id"},
			&cli.UintFlag{Name: "performed-by", Required: true},
			&cli.StringFlag{Name: "reference-doc", Usage: "delivery note or invoice number"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			var out []domain.Asset
			if err := doReceive(ctx, cfg, c.Uint("line"), c.Int("qty"), c.Uint("location"), c.Uint("performed-by"), optString(c, "reference-doc"), &out); err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(out)
			}
			printAssets(out)
			return nil
		},
	}
}

func poCommand() *cli.Command {
	return &cli.Command{
		Name:  "po",
		Usage: "Purchase order commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List purchase orders",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.PurchaseOrder
					if err := doPOList(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printPurchaseOrders(out)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Show one purchase order with its lines",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var po domain.PurchaseOrder
					if err := doPOGet(ctx, cfg, c.Uint("id"), &po); err != nil {
						return err
					}
					var lines []domain.PurchaseOrderLine
					if err := doPOLines(ctx, cfg, c.Uint("id"), &lines); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(map[string]any{"po": po, "lines": lines})
					}
					printPurchaseOrders([]domain.PurchaseOrder{po})
					printPurchaseOrderLines(lines)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a purchase order",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "vendor"},
					&cli.StringFlag{Name: "po-number"},
					&cli.UintFlag{Name: "requested-by", Required: true},
					&cli.StringFlag{Name: "purchased-at", Required: true, Usage: "purchase date, YYYY-MM-DD"},
					&cli.StringFlag{Name: "reason", Required: true},
					&cli.StringFlag{Name: "cost-center"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					purchasedAt, err := time.Parse("2006-01-02", c.String("purchased-at"))
					if err != nil {
						return fmt.Errorf("invalid --purchased-at: %w", err)
					}
					var out domain.PurchaseOrder
					if err := doPOCreate(ctx, cfg, map[string]any{
						"vendor_name":     optString(c, "vendor"),
						"po_number":       optString(c, "po-number"),
						"requested_by_id": c.Uint("requested-by"),
						"purchased_at":    purchasedAt,
						"purchase_reason": c.String("reason"),
						"cost_center":     optString(c, "cost-center"),
					}, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printPurchaseOrders([]domain.PurchaseOrder{out})
					return nil
				},
			},
			{
				Name:  "add-line",
				Usage: "Add a line to a purchase order",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "po", Required: true, Usage: "purchase order id"},
					&cli.StringFlag{Name: "category", Required: true, Usage: "item category, e.g. LAPTOP"},
					&cli.StringFlag{Name: "model"},
					&cli.StringFlag{Name: "description"},
					&cli.IntFlag{Name: "qty", Required: true},
					&cli.FloatFlag{Name: "unit-price"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					payload := map[string]any{
						"item_category": c.String("category"),
						"model_name":    optString(c, "model"),
						"description":   optString(c, "description"),
						"qty_ordered":   c.Int("qty"),
					}
					if c.IsSet("unit-price") {
						payload["unit_price"] = c.Float("unit-price")
					}
					var out domain.PurchaseOrderLine
					if err := doPOAddLine(ctx, cfg, c.Uint("po"), payload, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printPurchaseOrderLines([]domain.PurchaseOrderLine{out})
					return nil
				},
			},
		},
	}
}

func mastersCommand() *cli.Command {
	return &cli.Command{
		Name:  "masters",
		Usage: "Master data commands",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "Manage users",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List users",
						Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out []domain.User
							if err := doUsersList(ctx, cfg, &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printUsers(out)
							return nil
						},
					},
					{
						Name:  "create",
						Usage: "Create user",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true, Usage: "display name"},
							&cli.StringFlag{Name: "role", Value: "USER", Usage: "ADMIN, GA, IT, USER or AUDIT"},
							&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out domain.User
							if err := doUsersCreate(ctx, cfg, c.String("name"), c.String("role"), &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printUsers([]domain.User{out})
							return nil
						},
					},
				},
			},
			{
				Name:  "locations",
				Usage: "Manage stock locations",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "List locations",
						Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out []domain.Location
							if err := doLocationsList(ctx, cfg, &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printLocations(out)
							return nil
						},
					},
					{
						Name:  "create",
						Usage: "Create location",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true},
							&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cfg, err := loadConfig()
							if err != nil {
								return err
							}
							var out domain.Location
							if err := doLocationsCreate(ctx, cfg, c.String("name"), &out); err != nil {
								return err
							}
							if c.Bool("json") {
								return printJSON(out)
							}
							printLocations([]domain.Location{out})
							return nil
						},
					},
				},
			},
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI transport configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show current CLI config",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					printKV([][2]string{
						{"transport", cfg.Transport},
						{"server", cfg.Server},
						{"socket", cfg.Socket},
					})
					return nil
				},
			},
			{
				Name:  "set",
				Usage: "Update CLI config values",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "transport", Usage: "uds or http"},
					&cli.StringFlag{Name: "server", Usage: "HTTP server base URL"},
					&cli.StringFlag{Name: "socket", Usage: "JSON-RPC unix socket path"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if c.IsSet("transport") {
						cfg.Transport = c.String("transport")
					}
					if c.IsSet("server") {
						cfg.Server = c.String("server")
					}
					if c.IsSet("socket") {
						cfg.Socket = c.String("socket")
					}
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Println("config saved")
					return nil
				},
			},
		},
	}
}

func optString(c *cli.Command, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func jsonMarshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
