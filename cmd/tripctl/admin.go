package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pvolkova/trip-tracker/internal/entity"
)

// adminFlags carries the profile/trip field flags parsed in main.
type adminFlags struct {
	fio        *string
	tabNo      *string
	department *string
	position   *string
	orgName    *string
	rate       *float64

	profileID  *string
	city       *string
	destOrg    *string
	dateFrom   *string
	dateTo     *string
	departure  *string
	arrival    *string
	purpose    *string
	breakfasts *int
	lunches    *int
	dinners    *int
	advance    *float64
}

func (a *app) profileCmd(ctx context.Context, args []string, f adminFlags) error {
	if len(args) == 0 {
		return fmt.Errorf("profile: expected 'add' or 'list'")
	}
	switch args[0] {
	case "add":
		if *f.fio == "" {
			return fmt.Errorf("profile add: --fio is required")
		}
		p := &entity.Profile{
			FIO:         *f.fio,
			TabNo:       *f.tabNo,
			Department:  *f.department,
			Position:    *f.position,
			OrgName:     *f.orgName,
			PerDiemRate: *f.rate,
		}
		if err := a.profiles.Create(ctx, p); err != nil {
			return err
		}
		fmt.Println(p.ID)
		return nil
	case "list":
		profiles, err := a.profiles.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(profiles)
	default:
		return fmt.Errorf("profile: unknown subcommand %q", args[0])
	}
}

func (a *app) tripCmd(ctx context.Context, args []string, f adminFlags) error {
	if len(args) == 0 {
		return fmt.Errorf("trip: expected 'add', 'list', or 'rm'")
	}
	switch args[0] {
	case "add":
		profileID, err := uuid.Parse(*f.profileID)
		if err != nil {
			return fmt.Errorf("trip add: a valid --profile id is required: %w", err)
		}
		dateFrom, err := parseDate(*f.dateFrom)
		if err != nil {
			return fmt.Errorf("trip add: --from: %w", err)
		}
		dateTo, err := parseDate(*f.dateTo)
		if err != nil {
			return fmt.Errorf("trip add: --to: %w", err)
		}
		departure, err := parseOptTime(*f.departure)
		if err != nil {
			return fmt.Errorf("trip add: --depart: %w", err)
		}
		arrival, err := parseOptTime(*f.arrival)
		if err != nil {
			return fmt.Errorf("trip add: --arrive: %w", err)
		}

		t := &entity.Trip{
			ProfileID:       profileID,
			DestinationCity: *f.city,
			DestinationOrg:  *f.destOrg,
			DateFrom:        dateFrom,
			DateTo:          dateTo,
			DepartureTime:   departure,
			ArrivalTime:     arrival,
			Purpose:         *f.purpose,
			MealsBreakfast:  *f.breakfasts,
			MealsLunch:      *f.lunches,
			MealsDinner:     *f.dinners,
			AdvanceRub:      *f.advance,
		}
		if err := a.trips.Create(ctx, t); err != nil {
			return err
		}
		fmt.Println(t.ID)
		return nil
	case "list":
		profileID, err := uuid.Parse(*f.profileID)
		if err != nil {
			return fmt.Errorf("trip list: a valid --profile id is required: %w", err)
		}
		trips, err := a.trips.ListByProfile(ctx, profileID)
		if err != nil {
			return err
		}
		return printJSON(trips)
	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("trip rm: a trip id is required")
		}
		tripID, err := uuid.Parse(args[1])
		if err != nil {
			return err
		}
		paths, err := a.trips.Delete(ctx, tripID)
		if err != nil {
			return err
		}
		// the trip owns its files; remove them with the rows
		for _, rel := range paths {
			full := rel
			if !filepath.IsAbs(full) {
				full = filepath.Join(a.cfg.BaseDir, rel)
			}
			if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
				a.logger.Warn("receipt file not removed", "path", full, "error", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("trip: unknown subcommand %q", args[0])
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// parseOptTime accepts "YYYY-MM-DD HH:MM" or empty.
func parseOptTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
