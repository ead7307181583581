// tripctl manages business trips and their receipts from the command
// line: upload and scan receipt files, preview reconciliation, and
// render the advance report workbook.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/pvolkova/trip-tracker/constants"
	"github.com/pvolkova/trip-tracker/internal/common"
	"github.com/pvolkova/trip-tracker/internal/docdata"
	"github.com/pvolkova/trip-tracker/internal/entity"
	"github.com/pvolkova/trip-tracker/internal/export"
	"github.com/pvolkova/trip-tracker/internal/extract"
	"github.com/pvolkova/trip-tracker/internal/ingest"
	"github.com/pvolkova/trip-tracker/internal/ocr"
	"github.com/pvolkova/trip-tracker/internal/perdiem"
	"github.com/pvolkova/trip-tracker/internal/pipeline"
	"github.com/pvolkova/trip-tracker/internal/qr"
	"github.com/pvolkova/trip-tracker/internal/reconcile"
	"github.com/pvolkova/trip-tracker/internal/repository"
)

const usage = `usage: tripctl [flags] <command> [args]

commands:
  profile add|list             manage traveller profiles
  trip add|list|rm             manage trips
  scan --trip <id> <path>...   upload receipt files or directories and extract fields
  watch --trip <id> <dir>      ingest receipt files as they appear in a directory
  refill --trip <id>           retry extraction for receipts without an amount
  preview --trip <id>          reconcile all receipts and print the result
  report --trip <id>           render the advance report workbook
`

func main() {
	fs := ff.NewFlagSet("tripctl")
	var (
		dbURL    = fs.StringLong("db-url", "", "Postgres DSN (or TRIP_DB_URL)")
		tripFlag = fs.StringLong("trip", "", "trip id")
		category = fs.StringLong("category", "", "expense category for scanned files")
		docType  = fs.StringLong("doc-type", "fiscal", "document type: fiscal, ticket, boarding, hotel, confirmation, other")
		verbose  = fs.BoolLong("verbose", "enable debug logging")
	)
	admin := adminFlags{
		fio:        fs.StringLong("fio", "", "traveller full name"),
		tabNo:      fs.StringLong("tab-no", "", "personnel number"),
		department: fs.StringLong("department", "", "department"),
		position:   fs.StringLong("position", "", "job title"),
		orgName:    fs.StringLong("org", "", "employer organization"),
		rate:       fs.Float64Long("rate", 0, "per-diem rate, rubles per day"),

		profileID:  fs.StringLong("profile", "", "profile id"),
		city:       fs.StringLong("city", "", "destination city"),
		destOrg:    fs.StringLong("dest-org", "", "destination organization"),
		dateFrom:   fs.StringLong("from", "", "trip start date, YYYY-MM-DD"),
		dateTo:     fs.StringLong("to", "", "trip end date, YYYY-MM-DD"),
		departure:  fs.StringLong("depart", "", "departure time, 'YYYY-MM-DD HH:MM'"),
		arrival:    fs.StringLong("arrive", "", "arrival time, 'YYYY-MM-DD HH:MM'"),
		purpose:    fs.StringLong("purpose", "", "trip purpose"),
		breakfasts: fs.IntLong("breakfasts", 0, "provided breakfasts"),
		lunches:    fs.IntLong("lunches", 0, "provided lunches"),
		dinners:    fs.IntLong("dinners", 0, "provided dinners"),
		advance:    fs.Float64Long("advance", 0, "advance paid, rubles"),
	}

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("TRIP")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	args := fs.GetArgs()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if *dbURL != "" {
		cfg.Database.DSN = *dbURL
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	run := func(f func(context.Context, uuid.UUID) error) {
		tripID, err := uuid.Parse(*tripFlag)
		if err != nil {
			logger.Error("a valid --trip id is required", "error", err)
			os.Exit(1)
		}
		if err := f(ctx, tripID); err != nil {
			logger.Error("command failed", "command", args[0], "error", err)
			os.Exit(1)
		}
	}

	switch args[0] {
	case "profile":
		if err := app.profileCmd(ctx, args[1:], admin); err != nil {
			logger.Error("command failed", "command", "profile", "error", err)
			os.Exit(1)
		}
	case "trip":
		if err := app.tripCmd(ctx, args[1:], admin); err != nil {
			logger.Error("command failed", "command", "trip", "error", err)
			os.Exit(1)
		}
	case "scan":
		run(func(ctx context.Context, tripID uuid.UUID) error {
			return app.scan(ctx, tripID, args[1:], *category, *docType)
		})
	case "watch":
		run(func(ctx context.Context, tripID uuid.UUID) error {
			if len(args) < 2 {
				return fmt.Errorf("watch: a directory is required")
			}
			return app.watch(ctx, tripID, args[1], *category, *docType)
		})
	case "refill":
		run(app.refill)
	case "preview":
		run(app.preview)
	case "report":
		run(app.report)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

type app struct {
	cfg       *common.Config
	logger    *slog.Logger
	pool      *pgxpool.Pool
	profiles  repository.ProfileRepository
	trips     repository.TripRepository
	receipts  repository.ReceiptRepository
	processor *pipeline.Processor
	exporter  *export.Service
}

func newApp(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*app, error) {
	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
		repository.Close(pool, logger)
		return nil, common.WrapError(err, "database health check")
	}
	if err := repository.Bootstrap(ctx, pool, logger); err != nil {
		repository.Close(pool, logger)
		return nil, err
	}

	recognizer := ocr.NewTesseract(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
	}, logger)
	processor := pipeline.NewProcessor(
		qr.NewDecoder(qr.DecoderConfig{DPI: cfg.Decode.DPI, MaxPages: cfg.Decode.MaxPages}, logger),
		extract.NewFallbackExtractor(recognizer, cfg.OCR.DPI, logger),
		cfg.Policy.AmountMin, cfg.Policy.AmountMax, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		profiles:  repository.NewProfileRepository(pool, logger),
		trips:     repository.NewTripRepository(pool, logger),
		receipts:  repository.NewReceiptRepository(pool, logger),
		processor: processor,
		exporter:  export.NewService(cfg.Export, logger),
	}, nil
}

func (a *app) close() {
	repository.Close(a.pool, a.logger)
}

// scan copies each file into the trip's receipt directory, runs
// extraction, and stores the resulting receipt row. Directory
// arguments are expanded recursively with content deduplication.
func (a *app) scan(ctx context.Context, tripID uuid.UUID, args []string, category, docType string) error {
	if len(args) == 0 {
		return fmt.Errorf("scan: at least one file or directory is required")
	}
	if _, err := a.trips.GetByID(ctx, tripID); err != nil {
		return err
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		results, stats, err := ingest.Walk(ctx, arg, true)
		if err != nil {
			return err
		}
		a.logger.Info("directory scanned",
			"root", arg,
			"matched", stats.Matched,
			"deduplicated", stats.Deduplicated,
			"failed", stats.Failed,
		)
		for _, r := range results {
			if r.Err != "" {
				a.logger.Warn("file skipped", "file", r.Path, "error", r.Err)
				continue
			}
			if r.Deduplicated {
				a.logger.Info("duplicate skipped", "file", r.Path)
				continue
			}
			files = append(files, r.Path)
		}
	}

	for _, src := range files {
		if err := a.scanOne(ctx, tripID, src, category, docType); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) scanOne(ctx context.Context, tripID uuid.UUID, src, category, docType string) error {
	ext := constants.NormalizeExt(filepath.Ext(src))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		a.logger.Warn("unsupported file skipped", "file", src)
		return nil
	}

	rel := filepath.Join("receipts", tripID.String(), filepath.Base(src))
	dst := filepath.Join(a.cfg.BaseDir, rel)
	if err := copyFile(src, dst); err != nil {
		return common.WrapError(err, "store file")
	}

	res, err := a.processor.ProcessFile(ctx, dst)
	if err != nil {
		return common.WrapError(err, "process "+src)
	}

	rec := &entity.Receipt{
		TripID:       tripID,
		FilePath:     rel,
		FileName:     filepath.Base(src),
		Category:     constants.Canonicalize(category),
		DocumentType: constants.ParseDocumentType(docType),
		Amount:       res.Fields.Amount,
		ReceiptDate:  res.Fields.Date,
		FN:           res.Fields.FN,
		FD:           res.Fields.FD,
		FP:           res.Fields.FP,
		RawQR:        res.RawQR,
		HasQR:        res.HasQR,
	}
	if err := a.receipts.Create(ctx, rec); err != nil {
		return err
	}

	a.logger.Info("receipt scanned",
		"file", rec.FileName,
		"has_qr", rec.HasQR,
		"amount", res.Fields.Amount,
		"warnings", res.Warnings,
	)
	return nil
}

// watch ingests receipt files dropped into a directory until
// interrupted.
func (a *app) watch(ctx context.Context, tripID uuid.UUID, root, category, docType string) error {
	if _, err := a.trips.GetByID(ctx, tripID); err != nil {
		return err
	}

	events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Root:     root,
		Debounce: 500 * time.Millisecond,
	}, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info("watching for receipts", "root", root, "trip_id", tripID)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if ok && err != nil {
				a.logger.Warn("watch error", "error", err)
			}
		case path, ok := <-events:
			if !ok {
				return nil
			}
			if err := a.scanOne(ctx, tripID, path, category, docType); err != nil {
				a.logger.Error("scan failed", "file", path, "error", err)
			}
		}
	}
}

// refill retries extraction for receipts that still have no amount.
func (a *app) refill(ctx context.Context, tripID uuid.UUID) error {
	receipts, err := a.receipts.ListByTrip(ctx, tripID)
	if err != nil {
		return err
	}
	changed, err := a.processor.FillMissing(ctx, receipts, a.cfg.BaseDir)
	if err != nil {
		return err
	}
	for _, rec := range changed {
		if err := a.receipts.UpdateExtracted(ctx, rec); err != nil {
			return err
		}
	}
	a.logger.Info("refill complete", "receipts", len(receipts), "updated", len(changed))
	return nil
}

func (a *app) reconcile(ctx context.Context, tripID uuid.UUID, mode reconcile.Mode) (*entity.Trip, *entity.Profile, []*entity.Receipt, *reconcile.Result, error) {
	trip, err := a.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	profile, err := a.profiles.GetByID(ctx, trip.ProfileID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	receipts, err := a.receipts.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	rc := reconcile.NewReconciler(reconcile.Config{
		AmountMin: a.cfg.Policy.AmountMin,
		AmountMax: a.cfg.Policy.AmountMax,
		Weights: perdiem.Weights{
			Breakfast: a.cfg.Policy.MealBreakfastWeight,
			Lunch:     a.cfg.Policy.MealLunchWeight,
			Dinner:    a.cfg.Policy.MealDinnerWeight,
		},
	}, a.logger)
	res := rc.Reconcile(reconcile.Input{
		Trip:        trip,
		PerDiemRate: profile.PerDiemRate,
		Receipts:    receipts,
	}, mode)
	return trip, profile, receipts, res, nil
}

// preview reconciles every receipt and prints the outcome as JSON.
// Fatal reconciliation errors never block a preview.
func (a *app) preview(ctx context.Context, tripID uuid.UUID) error {
	_, _, _, res, err := a.reconcile(ctx, tripID, reconcile.ModeAllReceipts)
	if err != nil {
		return err
	}

	out := struct {
		*reconcile.Result
		CanGenerate bool `json:"can_generate"`
	}{res, res.CanGenerate()}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// report reconciles amount-requiring receipts and writes the advance
// report workbook.
func (a *app) report(ctx context.Context, tripID uuid.UUID) error {
	trip, profile, receipts, res, err := a.reconcile(ctx, tripID, reconcile.ModeRequiresAmount)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		a.logger.Warn("reconciliation warning", "code", w.Code, "message", w.Message)
	}
	if err := res.Fatal(); err != nil {
		return err
	}

	data := docdata.Build(trip, profile, receipts, res, a.cfg.BaseDir)
	out, err := a.exporter.RenderAdvanceReport(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.cfg.Export.OutputDir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("AO_%s_%s.xlsx", trip.DestinationCity, trip.DateTo.Format("2006-01-02"))
	path := filepath.Join(a.cfg.Export.OutputDir, name)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return err
	}

	if err := a.trips.SetStatus(ctx, tripID, "reported"); err != nil {
		return err
	}
	a.logger.Info("advance report written", "path", path, "to_return", res.ToReturn)
	fmt.Println(path)
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
