package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/standwait/app"
	"github.com/kilianp07/standwait/core/recommend"
)

var estimateFlags struct {
	at       string
	category string
	opponent string
	weekday  string
}

var routeFlags struct {
	zone     string
	item     string
	budget   float64
	at       string
	opponent string
	weekday  string
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print wait estimates and a stand recommendation",
	RunE:  runEstimate,
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Print the best stand for an item from a seat zone",
	RunE:  runRoute,
}

func init() {
	f := estimateCmd.Flags()
	f.StringVar(&estimateFlags.at, "at", "", "moment to estimate (RFC3339, default now)")
	f.StringVar(&estimateFlags.category, "category", "", "restrict the recommendation to a category")
	f.StringVar(&estimateFlags.opponent, "opponent", "", "demand filter: opponent")
	f.StringVar(&estimateFlags.weekday, "weekday", "", "demand filter: weekday")

	f = routeCmd.Flags()
	f.StringVar(&routeFlags.zone, "zone", "", "seat zone id")
	f.StringVar(&routeFlags.item, "item", "", "menu item")
	f.Float64Var(&routeFlags.budget, "budget", 0, "time budget in minutes (0 disables alternatives)")
	f.StringVar(&routeFlags.at, "at", "", "moment of the trip (RFC3339, default now)")
	f.StringVar(&routeFlags.opponent, "opponent", "", "demand filter: opponent")
	f.StringVar(&routeFlags.weekday, "weekday", "", "demand filter: weekday")
	_ = routeCmd.MarkFlagRequired("zone")
	_ = routeCmd.MarkFlagRequired("item")

	rootCmd.AddCommand(estimateCmd, routeCmd)
}

func parseAt(v string) (time.Time, error) {
	if v == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be RFC3339: %w", err)
	}
	return t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	at, err := parseAt(estimateFlags.at)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	cfg, done, err := bootstrap()
	if err != nil {
		return err
	}
	defer done()

	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Engine.Estimate(ctx, recommend.EstimateRequest{
		At:       at,
		Category: estimateFlags.category,
		Opponent: estimateFlags.opponent,
		Weekday:  estimateFlags.weekday,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runRoute(cmd *cobra.Command, args []string) error {
	at, err := parseAt(routeFlags.at)
	if err != nil {
		return err
	}
	if routeFlags.budget < 0 {
		return fmt.Errorf("--budget must not be negative")
	}
	ctx, stop := signalContext()
	defer stop()
	cfg, done, err := bootstrap()
	if err != nil {
		return err
	}
	defer done()

	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Engine.Route(ctx, recommend.RouteRequest{
		ZoneID:        routeFlags.zone,
		Item:          routeFlags.item,
		BudgetMinutes: routeFlags.budget,
		At:            at,
		Opponent:      routeFlags.opponent,
		Weekday:       routeFlags.weekday,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
