package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/scrape"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Session *scrape.Session
	Runs    probdoc.RunService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Globals

	Topics    TopicsCmd    `cmd:"" help:"List the topics of a catalog page"`
	Problem   ProblemCmd   `cmd:"" help:"Fetch one problem page and print it as Markdown"`
	Export    ExportCmd    `cmd:"" help:"Walk a catalog and export every problem to Markdown files"`
	Runs      RunsCmd      `cmd:"" help:"List recorded export runs, or the items of one run"`
	Languages LanguagesCmd `cmd:"" help:"List programming languages available for translation"`
}

// Globals are flags shared by every command.
type Globals struct {
	DB          string `name:"db" env:"PROBDOC_DB" help:"Run ledger database path"`
	Verbose     bool   `short:"v" env:"PROBDOC_VERBOSE" help:"Log every fetch, completion and export"`
	NoBrowser   bool   `name:"no-browser" env:"PROBDOC_NO_BROWSER" help:"Fetch pages over plain HTTP instead of a headless browser"`
	Extractor   string `default:"readability" enum:"readability,trafilatura" env:"PROBDOC_EXTRACTOR" help:"Fallback extractor for pages without a title heading"`
	Screenshots string `name:"screenshots" env:"PROBDOC_SCREENSHOTS" help:"Directory for catalog page screenshots"`
}

// TransformFlags select how records are turned into Markdown.
type TransformFlags struct {
	Template  string `short:"t" default:"exercise" enum:"exercise,lesson,translate,raw" env:"PROBDOC_TEMPLATE" help:"Document template"`
	AI        bool   `name:"ai" env:"PROBDOC_AI" help:"Generate documents with a language model"`
	APIKey    string `name:"api-key" env:"PROBDOC_API_KEY,GEMINI_API_KEY" help:"Completion API key"`
	Provider  string `default:"http" enum:"http,gemini" env:"PROBDOC_PROVIDER" help:"Completion backend"`
	BaseURL   string `name:"base-url" env:"PROBDOC_BASE_URL" validate:"omitempty,url" help:"Chat completions endpoint for the http provider"`
	Model     string `env:"PROBDOC_MODEL" help:"Model override"`
	Policy    string `default:"balanced" enum:"fast,balanced,quality" env:"PROBDOC_POLICY" help:"Speed and quality trade-off"`
	From      string `env:"PROBDOC_FROM" validate:"required_if=Template translate" help:"Source language id for the translate template"`
	To        string `env:"PROBDOC_TO" validate:"required_if=Template translate" help:"Target language id for the translate template"`
	Language  string `default:"Vietnamese" env:"PROBDOC_LANGUAGE" validate:"required" help:"Natural language of generated prose"`
	Signature string `env:"PROBDOC_SIGNATURE" validate:"max=500" help:"Text appended to every document"`
	Sections  string `type:"path" env:"PROBDOC_SECTIONS" help:"JSON file overriding the required sections per template"`
}

// TopicsCmd is the "topics" subcommand.
type TopicsCmd struct {
	URL  string `arg:"" validate:"required,url" help:"Catalog page URL"`
	JSON bool   `help:"Print topics as JSON"`
}

// ProblemCmd is the "problem" subcommand.
type ProblemCmd struct {
	URL  string `arg:"" validate:"required,url" help:"Problem page URL"`
	JSON bool   `help:"Print the parsed record as JSON instead of Markdown"`

	TransformFlags
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	URL      string   `arg:"" validate:"required,url" help:"Catalog page URL"`
	Topic    []string `short:"T" name:"topic" validate:"dive,required" help:"Topic id to export (repeatable, default all)"`
	Out      string   `short:"o" default:"output" env:"PROBDOC_OUT" validate:"required" help:"Output directory"`
	Original bool     `help:"Export parsed content with a source link, without any template"`

	TransformFlags
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	ID    string `arg:"" optional:"" help:"Run ID"`
	Limit int    `short:"n" default:"20" validate:"min=1,max=1000" help:"Maximum number of runs to list"`
}

// LanguagesCmd is the "languages" subcommand.
type LanguagesCmd struct{}
