// Command lintel discovers data files, resolves each one's JSON Schema,
// and reports validation diagnostics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/schemalint/schemalint/catalog"
	"github.com/schemalint/schemalint/config"
	"github.com/schemalint/schemalint/diagnostic"
	"github.com/schemalint/schemalint/lintelconfig"
	"github.com/schemalint/schemalint/logging"
	"github.com/schemalint/schemalint/pathfinder"
	"github.com/schemalint/schemalint/pipeline"
	"github.com/schemalint/schemalint/schemacache"
	"github.com/schemalint/schemalint/validationcache"
	"go.uber.org/zap"
)

const exitInvocation = 2

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitInvocation
	}

	switch args[0] {
	case "validate":
		return runValidate(args[1:])
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "lintel: unknown command %q\n", args[0])
		usage()
		return exitInvocation
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: lintel <command> [arguments]

commands:
  validate [globs...]   validate discovered files against their resolved schemas

run "lintel validate -h" for flags`)
}

func validateUsage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(os.Stderr, "usage: lintel validate [globs...] [flags]")
		fs.PrintDefaults()
	}
}

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		excludeFlags      stringSliceFlag
		cacheDir          string
		forceSchemaFetch  bool
		forceValidation   bool
		noCatalog         bool
		schemaCacheTTLRaw string
		verbose           bool
		logLevel          string
		format            string
	)

	fs.Var(&excludeFlags, "exclude", "exclude glob pattern (repeatable)")
	fs.StringVar(&cacheDir, "cache-dir", "", "override the cache root (default: XDG cache dir)")
	fs.BoolVar(&forceSchemaFetch, "force-schema-fetch", false, "bypass the schema cache and re-fetch every remote schema")
	fs.BoolVar(&forceValidation, "force-validation", false, "bypass the validation-result cache")
	fs.BoolVar(&noCatalog, "no-catalog", false, "skip all schema catalogs (custom registries, default, and SchemaStore)")
	fs.StringVar(&schemaCacheTTLRaw, "schema-cache-ttl", "", "schema cache TTL: bare integer seconds, or a duration like 1h30m")
	fs.BoolVar(&verbose, "verbose", false, "enable debug logging")
	fs.StringVar(&logLevel, "log-level", "INFO", "minimum log severity (TRACE|DEBUG|INFO|WARN|ERROR|FATAL|NONE)")
	fs.StringVar(&format, "format", "text", "output format: text|json")
	fs.Usage = validateUsage(fs)

	if err := fs.Parse(args); err != nil {
		return exitInvocation
	}

	logger, err := logging.NewCLI("lintel")
	if err != nil {
		fmt.Fprintf(os.Stderr, "lintel: failed to initialize logging: %v\n", err)
		return exitInvocation
	}
	defer logger.Sync()

	level := logging.ParseSeverity(logLevel)
	if verbose {
		level = logging.DEBUG
	}
	logger.SetLevel(level)

	ttl, err := parseCacheTTL(schemaCacheTTLRaw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lintel: --schema-cache-ttl: %v\n", err)
		return exitInvocation
	}

	globs := fs.Args()

	ctx := context.Background()

	cfg, configDir, configPath, found, err := lintelconfig.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "lintel: loading lintel.toml: %v\n", err)
		return exitInvocation
	}
	if found {
		logger.Debug("loaded config", zap.String("path", configPath))
	}

	exclude := append([]string{}, cfg.Exclude...)
	exclude = append(exclude, excludeFlags...)

	finder := pathfinder.NewFinder()
	discovered, err := finder.FindFiles(ctx, pathfinder.FindQuery{Root: ".", Include: globs, Exclude: exclude})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lintel: discovering files: %v\n", err)
		return exitInvocation
	}

	paths := make([]string, 0, len(discovered))
	for _, p := range discovered {
		paths = append(paths, p.SourcePath)
	}

	cacheRoot := cacheDir
	if cacheRoot == "" {
		cacheRoot = config.GetLintelCacheDir()
	}
	schemaDir := config.GetSchemaCacheDir()
	validationDir := config.GetValidationCacheDir()
	if cacheDir != "" {
		schemaDir = cacheRoot + "/schemas"
		validationDir = cacheRoot + "/validations"
	}

	schemaCache := schemacache.New(schemaDir, schemacache.WithTTL(ttl), schemacache.WithForceFetch(forceSchemaFetch))
	valCache := validationcache.New(validationDir, validationcache.WithForceValidation(forceValidation))

	catalogResolver, catalogErrs := catalog.BuildChain(ctx, schemaCache, cfg.Registries, cfg.NoDefaultCatalog, noCatalog)
	for _, cerr := range catalogErrs {
		logger.Warn("catalog chain", zap.Error(cerr))
	}

	resolver := &pipeline.Resolver{Config: cfg, ConfigDir: configDir, Catalog: catalogResolver}

	result := resolver.Run(ctx, paths, 0, schemaCache, valCache)

	switch format {
	case "json":
		printJSON(result)
	default:
		printText(result)
	}

	if len(result.Diagnostics) > 0 {
		return 1
	}
	return 0
}

func printText(result pipeline.Result) {
	for _, d := range result.Diagnostics {
		fmt.Println(d.String())
	}
	fmt.Fprintf(os.Stderr, "%d file(s) checked, %d diagnostic(s)\n", len(result.Checked), len(result.Diagnostics))
}

func printJSON(result pipeline.Result) {
	type jsonDiag struct {
		Kind    diagnostic.Kind `json:"kind"`
		Path    string          `json:"path"`
		Offset  int             `json:"offset"`
		Message string          `json:"message"`
	}
	out := struct {
		Checked     []pipeline.CheckedFile `json:"checked"`
		Diagnostics []jsonDiag             `json:"diagnostics"`
	}{Checked: result.Checked}

	for _, d := range result.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, jsonDiag{
			Kind:    d.Kind,
			Path:    d.Path(),
			Offset:  d.Offset(),
			Message: d.Message(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

// parseCacheTTL accepts a bare integer (seconds) or a Go duration string
// ("1h30m"). An empty string means no TTL (entries never expire).
func parseCacheTTL(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return d, nil
}

// stringSliceFlag accumulates repeated -exclude flags.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%v", []string(*s))
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}
