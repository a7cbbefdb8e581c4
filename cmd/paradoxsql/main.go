// Command paradoxsql runs a single read-only SELECT against a directory of
// catalog table fixtures and prints the result set as a "|"-delimited
// table to stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wanjarus/paradoxdriver/ast"
	"github.com/wanjarus/paradoxdriver/catalog"
	"github.com/wanjarus/paradoxdriver/engine"
	"github.com/wanjarus/paradoxdriver/parser"
	"github.com/wanjarus/paradoxdriver/resultset"
)

var version string

type options struct {
	CatalogDir string `short:"d" long:"dir" description:"Directory of .tbl catalog fixtures" value-name:"path" default:"."`
	Query      string `short:"q" long:"query" description:"SELECT statement to run"`
	Config     string `long:"config" description:"YAML file with catalog_dir/log_level overrides" value-name:"path"`
	Version    bool   `long:"version" description:"Show this version"`
}

// fileConfig is the shape of the optional --config YAML document.
// catalog_dir applies only while --dir holds its default "."; any other
// --dir value takes precedence over it.
type fileConfig struct {
	CatalogDir string `yaml:"catalog_dir"`
	LogLevel   string `yaml:"log_level"`
}

func parseOptions(args []string) (*options, *fileConfig, error) {
	var opts options
	p := flags.NewParser(&opts, flags.Default)
	p.Usage = "[option...]"
	if _, err := p.ParseArgs(args); err != nil {
		return nil, nil, err
	}

	var fc fileConfig
	if opts.Config != "" {
		data, err := os.ReadFile(opts.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("reading config %q: %w", opts.Config, err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, nil, fmt.Errorf("parsing config %q: %w", opts.Config, err)
		}
	}
	return &opts, &fc, nil
}

func buildLogger(level string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		var lvl zap.AtomicLevel
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("parsing log_level %q: %w", level, err)
		}
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func run(args []string) error {
	opts, fc, err := parseOptions(args)
	if err != nil {
		return err
	}
	if opts.Version {
		fmt.Println(version)
		return nil
	}
	if opts.Query == "" {
		return fmt.Errorf("no query given; pass -q/--query")
	}

	dir := opts.CatalogDir
	if dir == "." && fc.CatalogDir != "" {
		dir = fc.CatalogDir
	}

	log, err := buildLogger(fc.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	stmts, err := parser.Parse(opts.Query)
	if err != nil {
		return fmt.Errorf("parsing query: %w", err)
	}
	if len(stmts) != 1 {
		return fmt.Errorf("expected exactly one statement, got %d", len(stmts))
	}
	sel, ok := stmts[0].(*ast.SelectStatement)
	if !ok {
		return fmt.Errorf("only SELECT statements are supported")
	}
	log.Debugw("parsed statement", "sql", sel.String())

	cat := catalog.NewDirCatalog(dir, log)
	rs, err := engine.Execute(context.Background(), cat, sel)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}
	defer rs.Close()

	return printResultSet(rs)
}

// printResultSet walks rs from BeforeFirst to AfterLast, printing a header
// line of column labels followed by one "|"-delimited line per row.
func printResultSet(rs *resultset.ResultSet) error {
	cols := rs.GetMetadata()
	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
	}
	fmt.Println(strings.Join(labels, "|"))

	for {
		ok, err := rs.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		fields := make([]string, len(cols))
		for i := range cols {
			s, err := rs.GetString(i + 1)
			if err != nil {
				return err
			}
			if rs.WasNull() {
				s = `\N`
			}
			fields[i] = s
		}
		fmt.Println(strings.Join(fields, "|"))
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
