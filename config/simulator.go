package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrUsage reports that the command line did not ask for any work to be done.
var ErrUsage = errors.New("nothing to do: pass --run or --dry-run")

// SimulatorConfig holds everything the transaction simulator needs for one run.
type SimulatorConfig struct {
	Run            bool          `json:"-"`
	DryRun         bool          `json:"-"`
	Count          int           `json:"count" validate:"gte=0"`
	Database       string        `json:"db" validate:"required"`
	Table          string        `json:"table_name" validate:"required"`
	User           string        `json:"user" validate:"required"`
	Password       string        `json:"password"`
	Host           string        `json:"host" validate:"required"`
	Port           int           `json:"port" validate:"min=1,max=65535"`
	BatchSize      int           `json:"batch_size" validate:"gte=0"`
	Seed           int64         `json:"seed"`
	LogLevel       string        `json:"log_level" validate:"oneof=debug2 debug1 debug0 info warn err crit sec"`
	MetricsAddr    string        `json:"metrics_addr" validate:"omitempty,hostname_port"`
	ConnectTimeout time.Duration `json:"-" validate:"gt=0"`
}

// DefaultSimulatorConfig returns the settings used when nothing overrides them.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		Count:          10,
		Database:       "default_db",
		Table:          "transactions",
		User:           "postgres",
		Password:       "postgres",
		Host:           "localhost",
		Port:           5432,
		LogLevel:       "info",
		ConnectTimeout: 10 * time.Second,
	}
}

// LogFields returns the configuration as log data, without the password.
func (c SimulatorConfig) LogFields() map[string]any {
	return map[string]any{
		"run":            c.Run,
		"dryRun":         c.DryRun,
		"count":          c.Count,
		"db":             c.Database,
		"table":          c.Table,
		"user":           c.User,
		"host":           c.Host,
		"port":           c.Port,
		"batchSize":      c.BatchSize,
		"seed":           c.Seed,
		"logLevel":       c.LogLevel,
		"metricsAddr":    c.MetricsAddr,
		"connectTimeout": c.ConnectTimeout.String(),
	}
}

// setting binds one configuration field to its flag and environment variable.
type setting struct {
	flag  string
	env   string
	usage string
	get   func(c *SimulatorConfig) string
	set   func(c *SimulatorConfig, v string) error
}

func intSetting(flagName, env, usage string, field func(c *SimulatorConfig) *int) setting {
	return setting{
		flag: flagName, env: env, usage: usage,
		get: func(c *SimulatorConfig) string { return strconv.Itoa(*field(c)) },
		set: func(c *SimulatorConfig, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid integer %q", v)
			}
			*field(c) = n
			return nil
		},
	}
}

func stringSetting(flagName, env, usage string, field func(c *SimulatorConfig) *string) setting {
	return setting{
		flag: flagName, env: env, usage: usage,
		get: func(c *SimulatorConfig) string { return *field(c) },
		set: func(c *SimulatorConfig, v string) error {
			*field(c) = v
			return nil
		},
	}
}

var settings = []setting{
	intSetting("count", "SIMULATOR_COUNT", "Number of transactions to generate",
		func(c *SimulatorConfig) *int { return &c.Count }),
	stringSetting("db", "SIMULATOR_DATABASE_NAME", "Database name, will not be created if it does not exist",
		func(c *SimulatorConfig) *string { return &c.Database }),
	stringSetting("table-name", "SIMULATOR_DATABASE_TABLE", "Table name, optionally schema-qualified",
		func(c *SimulatorConfig) *string { return &c.Table }),
	stringSetting("user", "SIMULATOR_DATABASE_USER", "Database user",
		func(c *SimulatorConfig) *string { return &c.User }),
	stringSetting("password", "SIMULATOR_DATABASE_PASSWORD", "Database password",
		func(c *SimulatorConfig) *string { return &c.Password }),
	stringSetting("host", "SIMULATOR_DATABASE_HOST", "Database host",
		func(c *SimulatorConfig) *string { return &c.Host }),
	intSetting("port", "SIMULATOR_DATABASE_PORT", "Database port",
		func(c *SimulatorConfig) *int { return &c.Port }),
	intSetting("batch-size", "SIMULATOR_BATCH_SIZE", "Rows per commit; 0 commits once after all rows",
		func(c *SimulatorConfig) *int { return &c.BatchSize }),
	{
		flag: "seed", env: "SIMULATOR_SEED", usage: "Random seed; 0 picks a new one each run",
		get: func(c *SimulatorConfig) string { return strconv.FormatInt(c.Seed, 10) },
		set: func(c *SimulatorConfig, v string) error {
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer %q", v)
			}
			c.Seed = n
			return nil
		},
	},
	stringSetting("log-level", "SIMULATOR_LOG_LEVEL", "Log level: debug2, debug1, debug0, info, warn, err, crit or sec",
		func(c *SimulatorConfig) *string { return &c.LogLevel }),
	stringSetting("metrics-addr", "SIMULATOR_METRICS_ADDR", "Serve Prometheus metrics on this address during the run",
		func(c *SimulatorConfig) *string { return &c.MetricsAddr }),
	{
		flag: "connect-timeout", env: "SIMULATOR_CONNECT_TIMEOUT", usage: "Database connection timeout",
		get: func(c *SimulatorConfig) string { return c.ConnectTimeout.String() },
		set: func(c *SimulatorConfig, v string) error {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid duration %q", v)
			}
			c.ConnectTimeout = d
			return nil
		},
	},
}

// ParseSimulatorConfig builds the run configuration from args (without the
// program name). Values are resolved, highest first, from command-line flags,
// lookupEnv, the JSON file named by --config, the dotenv file named by
// --env-file, and DefaultSimulatorConfig. Usage and help go to out.
//
// It returns ErrUsage when args is empty or asks for neither --run nor
// --dry-run, and flag.ErrHelp when help was requested.
func ParseSimulatorConfig(args []string, lookupEnv func(string) (string, bool), out io.Writer) (SimulatorConfig, error) {
	cfg := DefaultSimulatorConfig()

	fset := flag.NewFlagSet("txnsim", flag.ContinueOnError)
	fset.SetOutput(out)
	fset.Usage = func() {
		fmt.Fprintln(out, "Generate simulated transactions and store them in a PostgreSQL database.")
		fmt.Fprintln(out, "\nUsage: txnsim --run [options]")
		fset.PrintDefaults()
	}
	run := fset.Bool("run", false, "Run the simulator; required to write transactions")
	dryRun := fset.Bool("dry-run", false, "Generate and summarise transactions without touching the database")
	configFile := fset.String("config", "", "JSON configuration file")
	envFile := fset.String("env-file", ".env", "dotenv file read before the environment; ignored if missing")

	byFlag := make(map[string]setting, len(settings))
	for _, s := range settings {
		fset.String(s.flag, s.get(&cfg), fmt.Sprintf("%s (env %s)", s.usage, s.env))
		byFlag[s.flag] = s
	}

	if len(args) == 0 {
		fmt.Fprintln(out, "No arguments provided. Use --help for more information.")
		fset.Usage()
		return cfg, ErrUsage
	}
	if err := fset.Parse(args); err != nil {
		return cfg, err
	}
	if fset.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(fset.Args(), " "))
	}
	if !*run && !*dryRun {
		fmt.Fprintln(out, "Neither --run nor --dry-run was given.")
		fset.Usage()
		return cfg, ErrUsage
	}
	cfg.Run, cfg.DryRun = *run, *dryRun

	explicit := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	dotenv, err := godotenv.Read(*envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit["env-file"] {
			return cfg, fmt.Errorf("reading env file %s: %w", *envFile, err)
		}
		dotenv = nil
	}
	if err := applyEnv(&cfg, func(key string) (string, bool) {
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return cfg, fmt.Errorf("env file %s: %w", *envFile, err)
	}

	if *configFile != "" {
		if err := LoadConfigFromFile(*configFile, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg, lookupEnv); err != nil {
		return cfg, err
	}

	var flagErr error
	fset.Visit(func(f *flag.Flag) {
		s, ok := byFlag[f.Name]
		if !ok || flagErr != nil {
			return
		}
		if err := s.set(&cfg, f.Value.String()); err != nil {
			flagErr = fmt.Errorf("flag --%s: %w", f.Name, err)
		}
	})
	if flagErr != nil {
		return cfg, flagErr
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	return cfg, cfg.Validate()
}

func applyEnv(cfg *SimulatorConfig, lookupEnv func(string) (string, bool)) error {
	if lookupEnv == nil {
		return nil
	}
	for _, s := range settings {
		v, ok := lookupEnv(s.env)
		if !ok || v == "" {
			continue
		}
		if err := s.set(cfg, v); err != nil {
			return fmt.Errorf("%s: %w", s.env, err)
		}
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks field ranges and required values.
func (c SimulatorConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
