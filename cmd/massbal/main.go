// MassBal CLI - process mass-balance and costing platform
//
// Usage:
//   massbal calculate --intake project.json [options]
//   massbal cost --intake project.json
//   massbal serve --port 8080
//   massbal scenario create --intake project.json --name "North WRF"
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	httpapi "massbal/api"
	"massbal/db/clickhouse"
	"massbal/db/postgres"
	"massbal/internal/costing"
	"massbal/internal/criteria"
	"massbal/internal/engine"
	"massbal/pkg/api"
	perrors "massbal/pkg/errors"
	"massbal/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "massbal",
		Usage:   "Process mass-balance engine - wastewater, anaerobic digestion, and biogas upgrading",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"MASSBAL_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "criteria",
				Usage:   "YAML file overriding design criteria defaults",
				EnvVars: []string{"MASSBAL_CRITERIA"},
			},
			&cli.StringFlag{
				Name:    "postgres-host",
				Value:   "localhost",
				Usage:   "PostgreSQL host",
				EnvVars: []string{"POSTGRES_HOST"},
			},
			&cli.IntFlag{
				Name:    "postgres-port",
				Value:   5432,
				Usage:   "PostgreSQL port",
				EnvVars: []string{"POSTGRES_PORT"},
			},
			&cli.StringFlag{
				Name:    "postgres-database",
				Value:   "massbal",
				Usage:   "PostgreSQL database",
				EnvVars: []string{"POSTGRES_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "postgres-user",
				Value:   "postgres",
				Usage:   "PostgreSQL user",
				EnvVars: []string{"POSTGRES_USER"},
			},
			&cli.StringFlag{
				Name:    "postgres-password",
				Value:   "",
				Usage:   "PostgreSQL password",
				EnvVars: []string{"POSTGRES_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "massbal",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Before: func(c *cli.Context) error {
			platform.InitLogger(c.String("log-level"))
			return nil
		},

		Commands: []*cli.Command{
			calculateCommand(),
			costCommand(),
			serveCommand(),
			scenarioCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadDesign builds the design standard, applying YAML overrides when the
// --criteria flag is set.
func loadDesign(c *cli.Context) (*criteria.Design, error) {
	return criteria.LoadDesign(c.String("criteria"))
}

// loadIntake reads a project intake record from a JSON file, or stdin when
// the path is "-".
func loadIntake(path string) (*api.Intake, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = os.ReadFile("/dev/stdin")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read intake file: %w", err)
	}

	var intake api.Intake
	if err := json.Unmarshal(data, &intake); err != nil {
		return nil, perrors.NewInvalidIntakeError(fmt.Sprintf("failed to parse intake JSON: %v", err))
	}
	return &intake, nil
}

// =============================================================================
// CALCULATE COMMAND
// =============================================================================

func calculateCommand() *cli.Command {
	return &cli.Command{
		Name:  "calculate",
		Usage: "Run the mass-balance calculator for a project intake",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "intake",
				Aliases:  []string{"i"},
				Usage:    "Path to project intake JSON (use - for stdin)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
			&cli.BoolFlag{
				Name:  "include-cost",
				Value: false,
				Usage: "Append a capital/O&M cost estimate",
			},
			&cli.BoolFlag{
				Name:  "archive",
				Value: false,
				Usage: "Archive the run to ClickHouse",
			},
		},
		Action: runCalculate,
	}
}

func runCalculate(c *cli.Context) error {
	intake, err := loadIntake(c.String("intake"))
	if err != nil {
		return err
	}

	design, err := loadDesign(c)
	if err != nil {
		return fmt.Errorf("failed to load design criteria: %w", err)
	}

	run := engine.New(design).Calculate(intake)
	if run.ProjectType == "" {
		return perrors.NewUnknownProjectTypeError(string(intake.ProjectType))
	}

	var est *costing.Estimate
	if c.Bool("include-cost") {
		est = costing.NewEstimator().Estimate(run.Results)
	}

	if c.Bool("archive") {
		store, err := clickhouse.NewStore(&clickhouse.Config{
			Host:     c.String("clickhouse-host"),
			Port:     c.Int("clickhouse-port"),
			Database: c.String("clickhouse-database"),
			Username: c.String("clickhouse-user"),
			Password: c.String("clickhouse-password"),
		})
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		defer store.Close()
		if err := store.ArchiveRun(context.Background(), run, nil); err != nil {
			return fmt.Errorf("failed to archive run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Archived run %s\n", run.ID)
	}

	switch c.String("format") {
	case "json":
		return outputRunJSON(run, est)
	default:
		return outputRunTable(run, est)
	}
}

// =============================================================================
// COST COMMAND
// =============================================================================

func costCommand() *cli.Command {
	return &cli.Command{
		Name:  "cost",
		Usage: "Run the calculator and print the cost estimate only",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "intake",
				Aliases:  []string{"i"},
				Usage:    "Path to project intake JSON (use - for stdin)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		},
		Action: runCost,
	}
}

func runCost(c *cli.Context) error {
	intake, err := loadIntake(c.String("intake"))
	if err != nil {
		return err
	}

	design, err := loadDesign(c)
	if err != nil {
		return fmt.Errorf("failed to load design criteria: %w", err)
	}

	run := engine.New(design).Calculate(intake)
	est := costing.NewEstimator().Estimate(run.Results)

	if c.String("format") == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}
	printCostTable(est)
	return nil
}

// =============================================================================
// SERVE COMMAND
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP port",
				EnvVars: []string{"MASSBAL_PORT"},
			},
			&cli.BoolFlag{
				Name:    "with-stores",
				Value:   false,
				Usage:   "Connect the scenario store and run archive",
				EnvVars: []string{"MASSBAL_WITH_STORES"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	design, err := loadDesign(c)
	if err != nil {
		return fmt.Errorf("failed to load design criteria: %w", err)
	}

	var scenarios *postgres.Store
	var runs *clickhouse.Store
	if c.Bool("with-stores") {
		scenarios, err = postgres.NewStore(postgresConfig(c))
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer scenarios.Close()
		if err := scenarios.InitSchema(context.Background()); err != nil {
			return fmt.Errorf("failed to init scenario schema: %w", err)
		}

		runs, err = clickhouse.NewStore(clickhouseConfig(c))
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		defer runs.Close()
		if err := runs.InitSchema(context.Background()); err != nil {
			return fmt.Errorf("failed to init run archive schema: %w", err)
		}
	}

	cfg := httpapi.DefaultConfig()
	cfg.Port = c.Int("port")

	server := httpapi.NewServer(design, scenarios, runs, cfg)
	return server.StartWithGracefulShutdown()
}

// =============================================================================
// SCENARIO COMMAND
// =============================================================================

func scenarioCommand() *cli.Command {
	return &cli.Command{
		Name:  "scenario",
		Usage: "Manage saved scenarios",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Save a new scenario from an intake file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "intake", Aliases: []string{"i"}, Required: true, Usage: "Path to project intake JSON"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Scenario name"},
				},
				Action: runScenarioCreate,
			},
			{
				Name:  "list",
				Usage: "List saved scenarios",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "project-type", Usage: "Filter by project type"},
				},
				Action: runScenarioList,
			},
			{
				Name:   "delete",
				Usage:  "Delete a scenario by ID",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "id", Required: true, Usage: "Scenario ID"}},
				Action: runScenarioDelete,
			},
			{
				Name:  "run",
				Usage: "Recalculate a saved scenario and archive the result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true, Usage: "Scenario ID"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format (table, json)"},
					&cli.BoolFlag{Name: "include-cost", Value: false, Usage: "Append a capital/O&M cost estimate"},
				},
				Action: runScenarioRun,
			},
		},
	}
}

func postgresConfig(c *cli.Context) *postgres.Config {
	return &postgres.Config{
		Host:     c.String("postgres-host"),
		Port:     c.Int("postgres-port"),
		Database: c.String("postgres-database"),
		Username: c.String("postgres-user"),
		Password: c.String("postgres-password"),
		SSLMode:  "disable",
	}
}

func clickhouseConfig(c *cli.Context) *clickhouse.Config {
	return &clickhouse.Config{
		Host:     c.String("clickhouse-host"),
		Port:     c.Int("clickhouse-port"),
		Database: c.String("clickhouse-database"),
		Username: c.String("clickhouse-user"),
		Password: c.String("clickhouse-password"),
	}
}

func openScenarioStore(c *cli.Context) (*postgres.Store, error) {
	store, err := postgres.NewStore(postgresConfig(c))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := store.InitSchema(context.Background()); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to init scenario schema: %w", err)
	}
	return store, nil
}

func runScenarioCreate(c *cli.Context) error {
	intake, err := loadIntake(c.String("intake"))
	if err != nil {
		return err
	}

	store, err := openScenarioStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	sc, err := store.CreateScenario(context.Background(), c.String("name"), intake)
	if err != nil {
		return err
	}
	fmt.Printf("Created scenario %s (%s)\n", sc.ID, sc.Name)
	return nil
}

func runScenarioList(c *cli.Context) error {
	store, err := openScenarioStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	scenarios, err := store.ListScenarios(context.Background(), c.String("project-type"), 0)
	if err != nil {
		return err
	}

	if len(scenarios) == 0 {
		fmt.Println("No scenarios saved.")
		return nil
	}
	fmt.Printf("%-38s %-14s %-30s %s\n", "ID", "TYPE", "NAME", "UPDATED")
	for _, sc := range scenarios {
		fmt.Printf("%-38s %-14s %-30s %s\n",
			sc.ID, sc.ProjectType, truncate(sc.Name, 30), sc.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runScenarioDelete(c *cli.Context) error {
	id, err := uuid.Parse(c.String("id"))
	if err != nil {
		return fmt.Errorf("invalid scenario id: %w", err)
	}

	store, err := openScenarioStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	found, err := store.DeleteScenario(context.Background(), id)
	if err != nil {
		return err
	}
	if !found {
		return perrors.NewScenarioNotFoundError(id.String())
	}
	fmt.Printf("Deleted scenario %s\n", id)
	return nil
}

func runScenarioRun(c *cli.Context) error {
	id, err := uuid.Parse(c.String("id"))
	if err != nil {
		return fmt.Errorf("invalid scenario id: %w", err)
	}

	store, err := openScenarioStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	sc, err := store.GetScenario(context.Background(), id)
	if err != nil {
		return err
	}
	if sc == nil {
		return perrors.NewScenarioNotFoundError(id.String())
	}

	design, err := loadDesign(c)
	if err != nil {
		return fmt.Errorf("failed to load design criteria: %w", err)
	}

	run := engine.New(design).Calculate(sc.Intake)

	archive, err := clickhouse.NewStore(clickhouseConfig(c))
	if err == nil {
		defer archive.Close()
		if err := archive.InitSchema(context.Background()); err == nil {
			if err := archive.ArchiveRun(context.Background(), run, &sc.ID); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to archive run: %v\n", err)
			}
		}
	} else {
		fmt.Fprintf(os.Stderr, "Warning: run archive unavailable: %v\n", err)
	}

	var est *costing.Estimate
	if c.Bool("include-cost") {
		est = costing.NewEstimator().Estimate(run.Results)
	}

	if c.String("format") == "json" {
		return outputRunJSON(run, est)
	}
	return outputRunTable(run, est)
}
