package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/sniprr/internal/command"
	"github.com/ivlev/sniprr/internal/config"
	"github.com/ivlev/sniprr/internal/document"
	"github.com/ivlev/sniprr/internal/engine"
	"github.com/ivlev/sniprr/internal/journal"
	"github.com/ivlev/sniprr/internal/system"
)

// Version is set at build time.
var Version = "dev"

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var projects stringList
	configPtr := flag.String("config", "", "Path to a YAML config file")
	flag.Var(&projects, "project", "Project file (repeatable; default: the most recent *.yaml in the projects directory)")
	outputPtr := flag.String("output", "", "Where to save: a file for one project, a directory for several (empty with -save: in place)")
	scriptPtr := flag.String("script", "", "YAML file with a commands: list of calls to run on every project")
	savePtr := flag.Bool("save", false, "Save projects after running the script")
	servePtr := flag.Bool("serve", false, "Read one call per line from stdin and print one JSON result per line")
	journalPtr := flag.String("journal", "", "SQLite command journal (empty disables)")
	workersPtr := flag.Int("workers", 0, "Projects processed concurrently in batch mode")
	statsPtr := flag.Bool("stats", false, "Print resource usage")
	versionPtr := flag.Bool("version", false, "Print the version and exit")

	flag.Parse()

	if *versionPtr {
		fmt.Println(Version)
		return
	}

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Error: %v", err)
	}
	cfg.BuildVersion = Version

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "project":
			cfg.ProjectPaths = projects
		case "output":
			cfg.OutputPath = *outputPtr
		case "script":
			cfg.ScriptPath = *scriptPtr
		case "save":
			cfg.Save = *savePtr
		case "serve":
			cfg.Serve = *servePtr
		case "journal":
			cfg.JournalPath = *journalPtr
		case "workers":
			if *workersPtr > 0 {
				cfg.Workers = *workersPtr
			}
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})

	if len(cfg.ProjectPaths) == 0 {
		latest, err := system.FindLatestProject(cfg.ProjectsDir)
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a project file into %s/ or pass -project", err, cfg.ProjectsDir)
		}
		cfg.ProjectPaths = []string{latest}
		log.Printf("[*] Selected project: %s", latest)
	}

	var jr *journal.Journal
	if cfg.JournalPath != "" {
		jr, err = journal.Open(cfg.JournalPath)
		if err != nil {
			log.Fatalf("[-] Error opening journal: %v", err)
		}
		defer jr.Close()
	}

	if cfg.ShowStats {
		printStats("start")
		defer printStats("finish")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Serve {
		if len(cfg.ProjectPaths) > 1 {
			log.Printf("[!] -serve works on one project, using %s", cfg.ProjectPaths[0])
		}
		err = serve(ctx, cfg, cfg.ProjectPaths[0], jr)
	} else {
		err = batch(ctx, cfg, jr)
	}
	if err != nil {
		log.Printf("[-] %v", err)
		if cfg.ShowStats {
			printStats("finish")
		}
		os.Exit(1)
	}
}

func printStats(stage string) {
	st, err := system.ReadStats()
	if err != nil {
		log.Printf("[!] %v", err)
	}
	log.Printf("[*] Resources at %s: %s", stage, st)
}

func newDispatcher(cfg *config.Config, p *document.Project, path string, jr *journal.Journal) *command.Dispatcher {
	e := engine.NewEngine(cfg, p, engine.LogNotifier{})
	if jr == nil {
		return command.NewDispatcher(e, nil)
	}
	return command.NewDispatcher(e, jr.Scope(path))
}

// batch runs the script on every project, several projects at a time.
func batch(ctx context.Context, cfg *config.Config, jr *journal.Journal) error {
	if cfg.ScriptPath == "" {
		return errors.New("batch mode needs -script (or use -serve)")
	}
	script, err := command.ReadScript(cfg.ScriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	log.Printf("[*] Running %d commands on %d project(s) with %d workers", len(script.Commands), len(cfg.ProjectPaths), cfg.Workers)

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for _, path := range cfg.ProjectPaths {
		g.Go(func() error {
			if err := runProject(ctx, cfg, path, script, jr); err != nil {
				log.Printf("[-] %s: %v", filepath.Base(path), err)
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func runProject(ctx context.Context, cfg *config.Config, path string, script *command.Script, jr *journal.Journal) error {
	p, err := document.Load(path)
	if err != nil {
		return err
	}
	d := newDispatcher(cfg, p, path, jr)
	name := filepath.Base(path)

	applied := 0
	for _, line := range script.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := d.Run(ctx, line)
		switch {
		case err != nil:
			log.Printf("[!] %s: %s: %v", name, line, err)
		case res.Status == engine.Applied:
			applied++
			log.Printf("[+] %s: %s (%d layer(s))", name, line, res.Affected)
		default:
			log.Printf("[*] %s: %s changed nothing", name, line)
		}
	}

	if out := outputPath(cfg, path); out != "" {
		if err := p.Save(out); err != nil {
			return fmt.Errorf("save: %w", err)
		}
		log.Printf("[+] %s: %d command(s) applied, saved to %s", name, applied, out)
	}
	return nil
}

// outputPath is where a project is saved, or "" when it is not saved.
func outputPath(cfg *config.Config, path string) string {
	if cfg.OutputPath == "" {
		if cfg.Save {
			return path
		}
		return ""
	}
	if fi, err := os.Stat(cfg.OutputPath); (err == nil && fi.IsDir()) || len(cfg.ProjectPaths) > 1 {
		return filepath.Join(cfg.OutputPath, filepath.Base(path))
	}
	return cfg.OutputPath
}

type reply struct {
	Command  string   `json:"command"`
	Status   string   `json:"status"`
	Affected int      `json:"affected"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
	Undo     string   `json:"undo,omitempty"`
}

// serve is the panel bridge: one call per input line, one JSON reply per
// output line. undo(), redo() and save() are handled here.
func serve(ctx context.Context, cfg *config.Config, path string, jr *journal.Journal) error {
	p, err := document.Load(path)
	if err != nil {
		return err
	}
	d := newDispatcher(cfg, p, path, jr)
	enc := json.NewEncoder(os.Stdout)
	log.Printf("[*] Serving %s, commands: %s", path, strings.Join(command.Names(), ", "))

	lines, scanErr := readLines(ctx, os.Stdin)
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			return <-scanErr
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := enc.Encode(handleLine(ctx, cfg, p, path, d, line)); err != nil {
			return err
		}
	}
}

// readLines scans r in the background. The goroutine exits at end of input,
// when lines is closed and the scan error is sent, or once ctx is done.
func readLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(scanErr)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
		close(lines)
	}()
	return lines, scanErr
}

func handleLine(ctx context.Context, cfg *config.Config, p *document.Project, path string, d *command.Dispatcher, line string) reply {
	if call, err := command.Parse(line); err == nil {
		var name string
		switch call.Name {
		case "undo":
			name, err = p.Undo()
		case "redo":
			name, err = p.Redo()
		case "save":
			out := outputPath(cfg, path)
			if out == "" {
				out = path
			}
			err = p.Save(out)
		default:
			return toReply(d.Run(ctx, line))
		}
		r := reply{Command: call.Name, Status: engine.Applied.String(), Undo: name}
		if err != nil {
			r.Status, r.Error = engine.NoOp.String(), err.Error()
		}
		return r
	}
	return toReply(d.Run(ctx, line))
}

func toReply(res engine.Result, err error) reply {
	r := reply{
		Command:  res.Command,
		Status:   res.Status.String(),
		Affected: res.Affected,
		Warnings: res.Warnings,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
