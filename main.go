// main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Ashtonex/nirvana/internal/config"
	"github.com/Ashtonex/nirvana/internal/engine"
	"github.com/Ashtonex/nirvana/internal/logger"
	"github.com/Ashtonex/nirvana/internal/report"
	"github.com/Ashtonex/nirvana/internal/store"
)

func main() {
	// Step 1: Setup configuration first
	config.LoadEnv()
	config.ConfigurePaths()

	// Step 2: Setup logging
	loggerConfig := config.LoggerConfig()
	if err := logger.SetupLogger(loggerConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Only NOW is logging safe to use!
	logger.LogInfo("Environment and paths loaded. Logger ready.")
	config.LogCurrentEnvironment()

	// Step 3: Open the document store
	if err := config.EnsureDataDirectory(); err != nil {
		logger.LogFatal("Failed to prepare data directory: %v", err)
	}
	fileStore := store.NewFileStore(config.DataFilePath(), config.BackupRetention())
	eng := engine.New(fileStore)

	// Step 4: Dispatch the requested operation
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := run(eng, fileStore, os.Args[1], os.Args[2:]); err != nil {
		logger.LogError("%s failed: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: nirvana <command> [flags]

commands:
  shipment        process a shipment manifest (-file manifest.json)
  stocktake       reconcile a physical count (-file counts.json)
  sale            record a POS sale
  transfer        move stock between shops
  quote           record a quotation (-file quote.json)
  quote-finalize  convert a pending quotation into sales (-id)
  quote-delete    delete a pending quotation (-id)
  shop-add        register a shop with its expense weights
  shop-expenses   update a shop's expense weights
  expense-set     set one global expense category
  employee-add    add an employee
  employee-remove remove an employee
  inventory       list inventory, newest first
  financials      print the financial summary
  report          analytics (-kind bestsellers|trends|reorder|zombie|forecast|leaderboard|history|insights)
  backups         list available backups
  restore         restore a backup over the live data file (-name)
  export          print the full database as JSON`)
}

func run(eng *engine.Engine, fileStore *store.FileStore, command string, args []string) error {
	switch command {
	case "shipment":
		return cmdShipment(eng, args)
	case "stocktake":
		return cmdStocktake(eng, args)
	case "sale":
		return cmdSale(eng, args)
	case "transfer":
		return cmdTransfer(eng, args)
	case "quote":
		return cmdQuote(eng, args)
	case "quote-finalize":
		return cmdQuoteFinalize(eng, args)
	case "quote-delete":
		return cmdQuoteDelete(eng, args)
	case "shop-add":
		return cmdShopAdd(eng, args)
	case "shop-expenses":
		return cmdShopExpenses(eng, args)
	case "expense-set":
		return cmdExpenseSet(eng, args)
	case "employee-add":
		return cmdEmployeeAdd(eng, args)
	case "employee-remove":
		return cmdEmployeeRemove(eng, args)
	case "inventory":
		return cmdInventory(eng)
	case "financials":
		return cmdFinancials(eng)
	case "report":
		return cmdReport(eng, args)
	case "backups":
		return cmdBackups(fileStore)
	case "restore":
		return cmdRestore(fileStore, args)
	case "export":
		return cmdExport(eng)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// decodeFile reads a JSON input file into v.
func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func cmdShipment(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("shipment", flag.ExitOnError)
	file := fs.String("file", "", "path to shipment manifest JSON")
	fs.Parse(args)

	var input engine.ShipmentInput
	if err := decodeFile(*file, &input); err != nil {
		return err
	}

	result, err := eng.ProcessShipment(input)
	if err != nil {
		return err
	}

	fmt.Printf("Shipment %s processed: %d units across %d classes (fee/piece %.4f)\n",
		result.Shipment.ShipmentNumber, result.Shipment.TotalQuantity, len(result.Items), result.FeePerPiece)
	for _, item := range result.Items {
		fmt.Printf("  %-24s qty %-5d landed %.2f\n", item.Name, item.Quantity, item.LandedCost)
	}
	return nil
}

func cmdStocktake(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("stocktake", flag.ExitOnError)
	file := fs.String("file", "", "path to stocktake counts JSON")
	fs.Parse(args)

	var input engine.StocktakeInput
	if err := decodeFile(*file, &input); err != nil {
		return err
	}

	result, err := eng.RecordStocktake(input)
	if err != nil {
		return err
	}
	fmt.Printf("Stocktake complete: %d items adjusted, shrinkage value %.2f\n",
		result.AdjustedItems, result.TotalShrinkageValue)
	return nil
}

func cmdSale(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("sale", flag.ExitOnError)
	shop := fs.String("shop", "", "shop id")
	item := fs.String("item", "", "inventory item id")
	employee := fs.String("employee", "", "employee id")
	client := fs.String("client", "", "optional client name")
	qty := fs.Int("qty", 0, "quantity sold")
	price := fs.Float64("price", 0, "unit price before tax")
	fs.Parse(args)

	sale, err := eng.RecordSale(engine.SaleInput{
		ShopID:     *shop,
		ItemID:     *item,
		EmployeeID: *employee,
		ClientName: *client,
		Quantity:   *qty,
		UnitPrice:  *price,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Sale %s: %d x %s, total $%.2f (tax $%.2f)\n",
		sale.ID, sale.Quantity, sale.ItemName, sale.TotalWithTax, sale.Tax)
	return nil
}

func cmdTransfer(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	item := fs.String("item", "", "inventory item id")
	from := fs.String("from", "", "source shop id")
	to := fs.String("to", "", "destination shop id")
	qty := fs.Int("qty", 0, "quantity to move")
	fs.Parse(args)

	transfer, err := eng.TransferInventory(*item, *from, *to, *qty)
	if err != nil {
		return err
	}
	fmt.Printf("Transferred %d x %s from %s to %s\n",
		transfer.Quantity, transfer.ItemName, transfer.FromShopID, transfer.ToShopID)
	return nil
}

func cmdQuote(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("quote", flag.ExitOnError)
	file := fs.String("file", "", "path to quotation JSON")
	fs.Parse(args)

	var input engine.QuotationInput
	if err := decodeFile(*file, &input); err != nil {
		return err
	}

	quote, err := eng.RecordQuotation(input)
	if err != nil {
		return err
	}
	fmt.Printf("Quotation %s recorded: %d lines, total $%.2f, valid until %s\n",
		quote.ID, len(quote.Items), quote.TotalWithTax, quote.ExpiryDate.Format("2006-01-02"))
	return nil
}

func cmdQuoteFinalize(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("quote-finalize", flag.ExitOnError)
	id := fs.String("id", "", "quotation id")
	fs.Parse(args)

	sales, err := eng.FinalizeQuotation(*id)
	if err != nil {
		return err
	}
	fmt.Printf("Quotation %s converted into %d sales\n", *id, len(sales))
	return nil
}

func cmdQuoteDelete(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("quote-delete", flag.ExitOnError)
	id := fs.String("id", "", "quotation id")
	fs.Parse(args)

	if err := eng.DeleteQuotation(*id); err != nil {
		return err
	}
	fmt.Printf("Quotation %s deleted\n", *id)
	return nil
}

func expenseFlags(fs *flag.FlagSet) (rent, salaries, utilities, misc *float64) {
	rent = fs.Float64("rent", 0, "monthly rent")
	salaries = fs.Float64("salaries", 0, "monthly salaries")
	utilities = fs.Float64("utilities", 0, "monthly utilities")
	misc = fs.Float64("misc", 0, "monthly misc expenses")
	return
}

func cmdShopAdd(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("shop-add", flag.ExitOnError)
	name := fs.String("name", "", "shop name")
	rent, salaries, utilities, misc := expenseFlags(fs)
	fs.Parse(args)

	shop, err := eng.AddShop(*name, store.ShopExpenses{
		Rent: *rent, Salaries: *salaries, Utilities: *utilities, Misc: *misc,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Shop %s added with id %s\n", shop.Name, shop.ID)
	return nil
}

func cmdShopExpenses(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("shop-expenses", flag.ExitOnError)
	shop := fs.String("shop", "", "shop id")
	rent, salaries, utilities, misc := expenseFlags(fs)
	fs.Parse(args)

	return eng.UpdateShopExpenses(*shop, store.ShopExpenses{
		Rent: *rent, Salaries: *salaries, Utilities: *utilities, Misc: *misc,
	})
}

func cmdExpenseSet(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("expense-set", flag.ExitOnError)
	category := fs.String("category", "", "expense category name")
	amount := fs.Float64("amount", 0, "monthly amount")
	fs.Parse(args)

	return eng.SetGlobalExpense(*category, *amount)
}

func cmdEmployeeAdd(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("employee-add", flag.ExitOnError)
	name := fs.String("name", "", "employee name")
	role := fs.String("role", store.RoleSales, "role: sales, manager or owner")
	shop := fs.String("shop", "", "home shop id")
	fs.Parse(args)

	employee, err := eng.AddEmployee(engine.EmployeeInput{
		Name: *name, Role: *role, ShopID: *shop, HireDate: time.Now(),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Employee %s (%s) added with id %s\n", employee.Name, employee.Role, employee.ID)
	return nil
}

func cmdEmployeeRemove(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("employee-remove", flag.ExitOnError)
	id := fs.String("id", "", "employee id")
	fs.Parse(args)

	return eng.DeleteEmployee(*id)
}

func cmdInventory(eng *engine.Engine) error {
	items, err := eng.InventoryHistory()
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("%-36s %-24s qty %-5d landed %8.2f added %s\n",
			item.ID, item.Name, item.Quantity, item.LandedCost, humanize.Time(item.DateAdded))
	}
	return nil
}

func cmdFinancials(eng *engine.Engine) error {
	db, err := eng.Snapshot()
	if err != nil {
		return err
	}
	summary := report.Summarize(db)
	fmt.Printf("Assets:       %12.2f\n", summary.TotalAssets)
	fmt.Printf("Expenses:     %12.2f\n", summary.TotalExpenses)
	fmt.Printf("Sales:        %12.2f (tax %0.2f)\n", summary.SalesRevenue, summary.TaxCollected)
	fmt.Printf("Net position: %12.2f\n", summary.NetPosition)
	fmt.Printf("Monthly burn: %12.2f\n", summary.MonthlyBurn)
	return nil
}

func cmdReport(eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	kind := fs.String("kind", "bestsellers", "report kind")
	itemID := fs.String("item", "", "item id (insights report)")
	days := fs.Int("days", 30, "window in days (history report)")
	fs.Parse(args)

	db, err := eng.Snapshot()
	if err != nil {
		return err
	}
	now := time.Now()

	switch *kind {
	case "bestsellers":
		for _, m := range report.BestSellers(db, now, 30) {
			fmt.Printf("%-24s qty %-5d revenue %10.2f margin %10.2f\n",
				m.ItemName, m.TotalQuantity, m.TotalRevenue, m.GrossMargin)
		}
	case "trends":
		t := report.PerformanceTrends(db, now)
		fmt.Printf("Last 30 days %.2f, previous %.2f, growth %.1f%%\n",
			t.CurrentPeriodRevenue, t.PreviousPeriodRevenue, t.Growth)
	case "reorder":
		for _, s := range report.ReorderSuggestions(db, now) {
			fmt.Printf("%-24s stock %-5d %.1f days left, reorder %d\n",
				s.ItemName, s.CurrentStock, s.DaysToZero, s.SuggestedReorder)
		}
	case "zombie":
		for _, z := range report.ZombieStock(db, now) {
			fmt.Printf("%-24s qty %-5d %d days, dead capital %10.2f, bleed %8.2f\n",
				z.ItemName, z.Quantity, z.DaysInStock, z.DeadCapital, z.TotalBleed)
		}
	case "forecast":
		f := report.RevenueForecast(db, now)
		fmt.Printf("Trend %s (slope %.2f/day), next 30 days %.2f, confidence %.2f\n",
			f.Trend, f.Slope, f.ProjectedNext30, f.Confidence)
	case "leaderboard":
		for i, m := range report.StaffLeaderboard(db) {
			fmt.Printf("%2d. %-20s %4d pts, %d sales, revenue %10.2f\n",
				i+1, m.Name, m.Points, m.SalesCount, m.Revenue)
		}
	case "history":
		for _, day := range report.SalesHistory(db, now, *days) {
			fmt.Printf("%s revenue %10.2f profit %10.2f\n",
				day.Date.Format("2006-01-02"), day.Revenue, day.Profit)
		}
	case "insights":
		insights, err := report.InventoryInsights(db, now, *itemID)
		if err != nil {
			return err
		}
		fmt.Printf("Velocity %.2f/day, %s, %.0f days to zero, break-even %.2f (bleed %.2f over %d days)\n",
			insights.DailyVelocity, insights.Status, insights.DaysToZero,
			insights.RealBreakEven, insights.CumulativeBleed, insights.DaysInStock)
	default:
		return fmt.Errorf("unknown report kind %q", *kind)
	}
	return nil
}

func cmdBackups(fileStore *store.FileStore) error {
	backups, err := fileStore.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("No backups yet")
		return nil
	}
	for _, b := range backups {
		fmt.Printf("%-24s %10s  %s\n", b.Name, humanize.Bytes(uint64(b.Size)), humanize.Time(b.ModTime))
	}
	return nil
}

func cmdRestore(fileStore *store.FileStore, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	name := fs.String("name", "", "backup file name, e.g. db.json.bak.1")
	fs.Parse(args)

	if err := fileStore.RestoreBackup(*name); err != nil {
		return err
	}
	fmt.Printf("Restored %s\n", *name)
	return nil
}

func cmdExport(eng *engine.Engine) error {
	dump, err := eng.ExportDatabase()
	if err != nil {
		return err
	}
	fmt.Println(dump)
	return nil
}
