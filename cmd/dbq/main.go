package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/hashicorp/go-multierror"
	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/umputun/dbq/pkg/config"
	"github.com/umputun/dbq/pkg/handler"
	"github.com/umputun/dbq/pkg/query"
	"github.com/umputun/dbq/pkg/runner"
)

type options struct {
	ConfigFile string   `short:"f" long:"config" env:"DBQ_CONFIG" description:"config file" default:"dbq.yml"`
	Conn       string   `long:"conn" env:"DBQ_CONN" description:"connection for all tables, overrides config"`
	Concurrent int      `short:"c" long:"concurrent" env:"DBQ_CONCURRENT" description:"concurrent queries" default:"1"`
	Skip       []string `long:"skip" description:"skip tables"`
	Only       []string `long:"only" description:"run only tables"`

	SelectCmd queryCmd `command:"select" description:"select rows"`
	InsertCmd queryCmd `command:"insert" description:"insert a row, where pairs are the values"`
	UpdateCmd queryCmd `command:"update" description:"update a row by primary key"`
	DeleteCmd queryCmd `command:"delete" description:"delete rows"`

	DDLCmd struct {
		Table string `short:"t" long:"table" required:"true" description:"table name"`
	} `command:"ddl" description:"show create table"`

	RunCmd struct {
		PositionalArgs struct {
			File string `positional-arg-name:"file" description:"batch file with queries"`
		} `positional-args:"yes" positional-optional:"no"`
	} `command:"run" description:"run queries from batch file"`

	Dry     bool `long:"dry" description:"dry run, print statements only"`
	Verbose bool `short:"v" long:"verbose" description:"verbose mode, print statements"`
	Dbg     bool `long:"dbg" description:"debug mode"`
}

type queryCmd struct {
	Table   string   `short:"t" long:"table" required:"true" description:"table name"`
	Where   []string `short:"w" long:"where" description:"key=value pair, repeatable, order preserved"`
	Columns []string `long:"col" description:"columns to read, all if not set"`
	Extra   string   `long:"extra" description:"raw sql appended to the query"`
}

var revision = "latest"

var exitFunc = os.Exit

func main() {
	fmt.Printf("dbq %s\n", revision)

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		exitFunc(1) // can be redefined in tests
		return
	}
	setupLog(opts.Dbg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, p, opts); err != nil {
		if opts.Dbg {
			log.Printf("[ERROR] %v", err)
		}
		fmt.Printf("failed, %s", formatError(err))
		exitFunc(1)
	}
}

func run(ctx context.Context, p *flags.Parser, opts options) error {
	if p.Active == nil {
		return errors.New("no command")
	}
	if opts.Dry {
		fmt.Print(color.New(color.FgHiRed).SprintfFunc()("dry run - statements will be printed but not executed\n"))
	}
	st := time.Now()

	confFile, err := expandPath(opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("can't expand config path %q: %w", opts.ConfigFile, err)
	}
	conf, err := config.Load(confFile)
	if err != nil {
		return fmt.Errorf("can't load config %q: %w", confFile, err)
	}
	setupLog(opts.Dbg, conf.Secrets()...) // mask dsn in logs

	if opts.Conn != "" {
		if _, err = conf.Handler(opts.Conn); err != nil {
			return err
		}
		for i := range conf.Tables {
			conf.Tables[i].Connection = opts.Conn
		}
	}

	conns := conf.Connections
	if opts.Dry {
		conns = dryConnections(conf.Connections)
	}
	sel := handler.NewSelector(conns, handler.WithLogs(handler.MakeLogWriter(opts.Verbose || opts.Dry, false).WithSecrets(conf.Secrets())))
	defer func() {
		if e := sel.Close(); e != nil {
			log.Printf("[WARN] %v", e)
		}
	}()

	dispatchers, err := runner.Bind(ctx, conf, sel)
	if err != nil {
		return err
	}

	var descs []query.Descriptor
	switch p.Active.Name {
	case "ddl":
		d, ok := dispatchers[opts.DDLCmd.Table]
		if !ok {
			return fmt.Errorf("table %q not found in config", opts.DDLCmd.Table)
		}
		ddl, ddlErr := d.ShowCreateTable(ctx)
		if ddlErr != nil {
			return fmt.Errorf("can't show create table %q: %w", opts.DDLCmd.Table, ddlErr)
		}
		fmt.Println(ddl)
		return nil
	case "run":
		batchFile, expErr := expandPath(opts.RunCmd.PositionalArgs.File)
		if expErr != nil {
			return fmt.Errorf("can't expand batch path %q: %w", opts.RunCmd.PositionalArgs.File, expErr)
		}
		if descs, err = runner.LoadBatch(batchFile); err != nil {
			return err
		}
	default:
		qc := map[string]queryCmd{"select": opts.SelectCmd, "insert": opts.InsertCmd,
			"update": opts.UpdateCmd, "delete": opts.DeleteCmd}[p.Active.Name]
		desc, descErr := makeDescriptor(query.ParseKind(p.Active.Name), qc)
		if descErr != nil {
			return descErr
		}
		descs = []query.Descriptor{desc}
	}

	proc := runner.Process{Concurrency: opts.Concurrent, Dispatchers: dispatchers, Skip: opts.Skip, Only: opts.Only}
	resp, err := proc.Run(ctx, descs)
	report(os.Stdout, resp)
	log.Printf("[INFO] completed %d queries, failed %d, skipped %d in %v",
		resp.Queries, resp.Failed, resp.Skipped, time.Since(st).Truncate(time.Millisecond))
	return err
}

// makeDescriptor converts command's flags to descriptor, where pairs keep the order of flags
func makeDescriptor(kind query.Kind, qc queryCmd) (query.Descriptor, error) {
	res := query.Descriptor{Table: qc.Table, Kind: kind, ReadColumns: qc.Columns, Extension: qc.Extra}
	if res.Extension != "" && !strings.HasPrefix(res.Extension, " ") {
		res.Extension = " " + res.Extension
	}
	for _, w := range qc.Where {
		k, v, ok := strings.Cut(w, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return query.Descriptor{}, fmt.Errorf("invalid where %q, should be key=value", w)
		}
		res.Filters = append(res.Filters, query.Field{Key: strings.TrimSpace(k), Value: parseValue(v)})
	}
	return res, nil
}

// parseValue makes a typed value from yaml scalar, i.e. 3 is int, null is nil, anything else is a string
func parseValue(s string) any {
	var res any
	if err := yaml.Unmarshal([]byte(s), &res); err != nil {
		return s
	}
	switch res.(type) {
	case nil, int, float64, bool:
		if s == "" {
			return ""
		}
		return res
	default:
		return s
	}
}

// dryConnections replaces handlers with dry, sql handler names kept as dialect
func dryConnections(conns map[string]handler.Connection) map[string]handler.Connection {
	res := make(map[string]handler.Connection, len(conns))
	for name, c := range conns {
		dialect := c.Dialect
		if _, err := handler.DialectByName(c.Handler); err == nil {
			dialect = c.Handler
		}
		res[name] = handler.Connection{Handler: "dry", Dialect: dialect}
	}
	return res
}

func report(w io.Writer, resp runner.ProcResp) {
	for _, r := range resp.Results {
		switch {
		case r.Skipped:
			fmt.Fprintf(w, "%s %s: skipped\n", r.Descriptor.Kind, r.Descriptor.Table)
		case r.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", r.Descriptor.Kind, r.Descriptor.Table, r.Err)
		case r.Outcome.Kind == query.KindSelect:
			fmt.Fprintf(w, "%s %s: %d rows\n", r.Descriptor.Kind, r.Descriptor.Table, len(r.Outcome.Rows))
			if len(r.Outcome.Rows) > 0 {
				data, err := yaml.Marshal(r.Outcome.Rows)
				if err != nil {
					log.Printf("[WARN] can't marshal rows: %v", err)
					continue
				}
				fmt.Fprint(w, string(data))
			}
		case r.Outcome.Kind == query.KindInsert:
			fmt.Fprintf(w, "%s %s: affected %d, id %v\n", r.Descriptor.Kind, r.Descriptor.Table, r.Outcome.Affected, r.Outcome.InsertID)
		default:
			fmt.Fprintf(w, "%s %s: affected %d\n", r.Descriptor.Kind, r.Descriptor.Table, r.Outcome.Affected)
		}
	}
}

// formatError prints each of multiple errors on its own line
func formatError(err error) string {
	var merr *multierror.Error
	if !errors.As(err, &merr) || len(merr.Errors) < 2 {
		return err.Error() + "\n"
	}
	lines := make([]string, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		lines = append(lines, e.Error())
	}
	sort.Strings(lines)
	res := fmt.Sprintf("%d errors:\n", len(lines))
	for i, l := range lines {
		res += fmt.Sprintf("   [%d] %s\n", i, l)
	}
	return res
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

func setupLog(dbg bool, secrets ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)} // default to discard
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
