// Command chronocli plays the trading game in the terminal, driving
// the engine directly without the HTTP server.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/talgya/chronotrade/internal/config"
	"github.com/talgya/chronotrade/internal/entropy"
	"github.com/talgya/chronotrade/internal/game"
	"github.com/talgya/chronotrade/internal/persistence"
)

func money(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

func main() {
	var (
		configPath = flag.String("config", "chronotrade.yaml", "path to config file")
		seedFlag   = flag.Int64("seed", 0, "rng seed (0 = random)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	seed := *seedFlag
	if seed == 0 {
		seed = entropy.Seed()
	}
	engine := game.NewEngine(cfg, rand.New(rand.NewSource(seed)))

	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "database unavailable, save/load disabled:", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
	}

	fmt.Println("ChronoTrade — buy in the past, sell in the present.")
	fmt.Printf("Bankroll: %s. Type 'help' for commands.\n\n", money(cfg.StartingCash))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help", "?":
			printHelp()
		case "status", "s":
			printStatus(engine)
		case "inv", "i":
			printInventory(engine)
		case "preview", "p":
			cmdPreview(engine, fields[1:])
		case "travel", "t":
			cmdTravel(engine, fields[1:])
		case "list", "l":
			cmdList(engine, fields[1:])
		case "cancel":
			cmdCancel(engine, fields[1:])
		case "auction", "a":
			cmdAuction(engine)
		case "apreview":
			cmdAuctionPreview(engine)
		case "save":
			cmdSave(engine, db, fields[1:])
		case "load":
			cmdLoad(engine, db, fields[1:])
		case "saves":
			cmdSaves(db)
		case "reset":
			engine.Reset()
			fmt.Println("Fresh start.")
		case "quit", "q", "exit":
			fmt.Println("Goodbye.")
			return
		default:
			fmt.Println("unknown command; try 'help'")
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  status              cash, assets, turn position
  preview Y D         estimate a trip Y years back, D km out
  travel Y D          make the trip and buy
  inv                 show inventory
  list ID PRICE       put item ID up for auction at PRICE
  cancel ID           pull item ID off the block
  apreview            estimate auction outcomes
  auction             run the auction
  save [slot]         save the session
  load [slot]         load a session
  saves               list save slots
  reset               start over
  quit`)
}

func printStatus(e *game.Engine) {
	s := e.Summary()
	fmt.Printf("cash %s | assets %s | upkeep %s\n",
		money(s.Cash), money(s.TotalAssets), money(s.FixedCost))
	fmt.Printf("turn %d.%d (mult ×%.2f) — %s\n",
		s.MajorTurn, s.MinorTurn, s.CurrentMult, s.Outlook)
	fmt.Printf("inventory %d items, %d listed\n", s.InventoryCount, s.ListingCount)
	if s.GameOver {
		fmt.Println("** you can no longer cover the upkeep — game over **")
	}
}

func printInventory(e *game.Engine) {
	items := e.Inventory()
	if len(items) == 0 {
		fmt.Println("inventory is empty")
		return
	}
	for _, it := range items {
		fmt.Printf("  #%d %-14s %s/%s  worth %s (est. sale %s)\n",
			it.ID, it.Genre, it.RarityTier, it.ConditionName,
			money(it.BaseValue), money(it.EstimatedSalePrice))
	}
}

func parseYD(args []string) (int, int, bool) {
	if len(args) < 2 {
		fmt.Println("usage: Y D  (years back, distance)")
		return 0, 0, false
	}
	y, err1 := strconv.Atoi(args[0])
	d, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Println("years and distance must be integers")
		return 0, 0, false
	}
	return y, d, true
}

func cmdPreview(e *game.Engine, args []string) {
	y, d, ok := parseYD(args)
	if !ok {
		return
	}
	est, err := e.PreviewTravel(y, d)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("trip: %d years, %d km — invest %s + upkeep %s = %s\n",
		est.Years, est.Distance, money(est.Investment), money(est.FixedCost), money(est.TotalCost))
	fmt.Printf("finds would be %s tier; expected haul %s–%s (avg %s)\n",
		est.RarityTier, money(est.ExpectedValue.Min), money(est.ExpectedValue.Max), money(est.ExpectedValue.Avg))
	fmt.Printf("conditions: %s (turbulence %.3f) — %s\n",
		est.TurbulenceTag, est.Turbulence, est.Assessment)
}

func cmdTravel(e *game.Engine, args []string) {
	y, d, ok := parseYD(args)
	if !ok {
		return
	}
	res, err := e.Purchase(y, d)
	if err != nil {
		fmt.Println(err)
		return
	}
	if res.Failed {
		fmt.Printf("the trip went wrong — %s lost, nothing to show for it\n", money(res.TotalCharged))
	} else {
		fmt.Printf("charged %s (×%.2f multiplier), brought back %d items:\n",
			money(res.TotalCharged), res.Multiplier, len(res.Items))
		for _, it := range res.Items {
			fmt.Printf("  #%d %-14s %s/%s  worth %s\n",
				it.ID, it.Genre, it.RarityTier, it.ConditionName, money(it.BaseValue))
		}
	}
	fmt.Printf("cash now %s\n", money(res.CashAfter))
	if res.NewMajorTurn {
		fmt.Printf("new cycle begins: turn %d, target ×%.2f (%s)\n",
			res.Turn.MajorTurn, res.Turn.TargetMultiplier, res.Turn.Outlook)
	}
	if res.GameOver {
		fmt.Println("** you can no longer cover the upkeep — game over **")
	}
}

func cmdList(e *game.Engine, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: list ID PRICE")
		return
	}
	id, err1 := strconv.ParseInt(args[0], 10, 64)
	price, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		fmt.Println("usage: list ID PRICE")
		return
	}
	l, err := e.ListForAuction(id, price)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("#%d %s on the block at %s\n", l.Item.ID, l.Item.Genre, money(l.StartPrice))
}

func cmdCancel(e *game.Engine, args []string) {
	if len(args) < 1 {
		fmt.Println("usage: cancel ID")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("usage: cancel ID")
		return
	}
	it, err := e.CancelListing(id)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("#%d %s back in inventory\n", it.ID, it.Genre)
}

func cmdAuction(e *game.Engine) {
	out, err := e.RunAuction()
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, r := range out.Results {
		if r.Sold {
			fmt.Printf("  #%d SOLD for %s after %d bids (you net %s)\n",
				r.ItemID, money(r.FinalPrice), r.BidCount, money(r.Proceeds))
		} else {
			fmt.Printf("  #%d no takers at %s\n", r.ItemID, money(r.StartPrice))
		}
	}
	fmt.Printf("%d of %d sold — %s credited, cash now %s\n",
		out.SoldCount, len(out.Results), money(out.TotalProfit), money(out.CashAfter))
}

func cmdAuctionPreview(e *game.Engine) {
	pv, err := e.PreviewAuction()
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, p := range pv.Previews {
		fmt.Printf("  #%d at %s — %d interested, est. final %s (%s confidence)\n",
			p.ItemID, money(p.StartPrice), p.InterestedBuyers,
			money(p.EstimatedFinalPrice), p.Confidence)
	}
	fmt.Printf("estimated take: %s\n", money(pv.EstimatedProfit))
}

func slotArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "default"
}

func cmdSave(e *game.Engine, db *persistence.DB, args []string) {
	if db == nil {
		fmt.Println("persistence unavailable")
		return
	}
	info, err := db.Save(slotArg(args), e.Export())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("saved to slot %q\n", info.Slot)
}

func cmdLoad(e *game.Engine, db *persistence.DB, args []string) {
	if db == nil {
		fmt.Println("persistence unavailable")
		return
	}
	blob, err := db.Load(slotArg(args))
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := e.Import(blob); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("loaded.")
	printStatus(e)
}

func cmdSaves(db *persistence.DB) {
	if db == nil {
		fmt.Println("persistence unavailable")
		return
	}
	saves, err := db.ListSaves()
	if err != nil {
		fmt.Println(err)
		return
	}
	if len(saves) == 0 {
		fmt.Println("no saves yet")
		return
	}
	for _, s := range saves {
		fmt.Printf("  %-12s %s\n", s.Slot, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}
