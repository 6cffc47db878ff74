package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/DanielSharp01/eprotoc/internal/analyzer"
	"github.com/DanielSharp01/eprotoc/internal/config"
	"github.com/DanielSharp01/eprotoc/internal/diag"
	"github.com/DanielSharp01/eprotoc/internal/driver"
	"github.com/DanielSharp01/eprotoc/internal/report"
)

func main() {
	var (
		definitions = flag.String("d", "", "write the resolved definitions dump to this file (- for stdout)")
		ast         = flag.String("a", "", "write the parsed AST dump to this file (- for stdout)")
		output      = flag.String("o", "", "output directory for generated sources (default \"generated\")")
		gen         = flag.String("g", "", "generation strategy: native, evolved, or skip (default \"native\")")
		configPath  = flag.String("config", "eprotoc.toml", "path to the configuration file")
	)
	flag.StringVar(definitions, "definitions", *definitions, "alias of -d")
	flag.StringVar(ast, "ast", *ast, "alias of -a")
	flag.StringVar(output, "output", *output, "alias of -o")
	flag.StringVar(gen, "gen", *gen, "alias of -g")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: eprotoc [flags] <sourceDir>")
	}
	sourceDir := flag.Arg(0)

	cfg, err := config.Load(*configPath, &config.Config{
		General: config.GeneralConfig{SourceDir: sourceDir, OutputDir: *output, Gen: *gen},
	})
	if err != nil {
		log.Fatal(err)
	}
	if cfg.General.OutputDir == "" {
		cfg.General.OutputDir = "generated"
	}
	if cfg.General.Gen == "" {
		cfg.General.Gen = "native"
	}

	files, err := collectSources(cfg.General.SourceDir)
	if err != nil {
		log.Fatal(err)
	}
	slog.Info("collected sources", "dir", cfg.General.SourceDir, "count", len(files))

	diags := diag.NewBag()
	az := analyzer.New(diags)
	run, err := driver.Compile(az, diags, files)
	if err != nil {
		log.Fatal(err)
	}

	if *definitions != "" {
		if err := writeOut(*definitions, driver.DumpDefinitions(az)); err != nil {
			log.Fatal(err)
		}
	}
	if *ast != "" {
		if err := writeOut(*ast, driver.DumpAST(run.Nodes)); err != nil {
			log.Fatal(err)
		}
	}

	for _, d := range sortedDiagnostics(diags) {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", d.Span.String(), d.Kind, d.Message)
		if d.Related != nil {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Related.Span.String(), d.Related.Message)
		}
	}

	if cfg.Report.Enabled {
		html, err := report.Render(diags)
		if err != nil {
			log.Fatal(err)
		}
		path := cfg.Report.Path
		if path == "" {
			path = "eprotoc-report.html"
		}
		if err := os.WriteFile(path, []byte(html), 0644); err != nil {
			log.Fatal(err)
		}
	}

	if diags.HasErrors() {
		os.Exit(1)
	}

	strategy, ok := driver.ParseStrategy(cfg.General.Gen)
	if !ok {
		log.Fatalf("unknown -gen strategy %q", cfg.General.Gen)
	}
	if strategy != driver.Skip {
		if err := driver.EmitAll(az, run, strategy, cfg.General.OutputDir); err != nil {
			log.Fatal(err)
		}
		slog.Info("generation complete", "strategy", cfg.General.Gen, "output", cfg.General.OutputDir)
	}
}

func collectSources(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(p) == ".eproto" {
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func writeOut(path, text string) error {
	if path == "-" {
		_, err := fmt.Println(text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}

func sortedDiagnostics(diags *diag.Bag) []diag.Diagnostic {
	all := diags.All()
	sort.Slice(all, func(i, j int) bool {
		if all[i].Span.File != all[j].Span.File {
			return all[i].Span.File < all[j].Span.File
		}
		return all[i].Span.Start.Line < all[j].Span.Start.Line
	})
	return all
}
