package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"github.com/raymyers/cfront/pkg/cabs"
	"github.com/raymyers/cfront/pkg/lexer"
	"github.com/raymyers/cfront/pkg/lsp"
	"github.com/raymyers/cfront/pkg/parser"

	_ "github.com/tliron/commonlog/simple"
)

var version = "0.1.0"

// Debug flags for dumping intermediate representations
var (
	dParse  bool
	dTokens bool
)

// Output and logging options
var (
	format    string
	verbosity int
	logFile   string
)

// ErrUnknownFormat is returned for a --format other than yaml or json
var ErrUnknownFormat = errors.New("unknown output format")

var log = commonlog.GetLogger("cfront")

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Accept single-dash debug flags (-dparse) alongside --dparse
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		// diagnostics were already reported one per line
		var diags parser.ErrorList
		if !errors.As(err, &diags) {
			fmt.Fprintf(os.Stderr, "cfront: %v\n", err)
		}
		return 1
	}
	return 0
}

// debugFlagNames lists the debug flags that also accept single-dash style
var debugFlagNames = []string{"dparse", "dtokens"}

// normalizeFlags converts single-dash debug flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

// normalizeFlagName lets log_file and log-file name the same flag.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cfront [file]",
		Short: "cfront lexes and parses C source into an AST",
		Long: `cfront is the front end of a C-like language: it tokenizes a
source file and parses it into an abstract syntax tree, reporting
every lexical, syntax and declaration diagnostic it finds.

Use -dtokens or -dparse to dump the token stream or the AST.
A file name of "-" reads standard input.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if format != "yaml" && format != "json" {
				return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
			}
			filename := args[0]

			src, err := readSource(filename, cmd.InOrStdin())
			if err != nil {
				return err
			}

			// Handle -dtokens: lex and dump the token stream
			if dTokens {
				return doTokens(filename, src, out, errOut)
			}

			// Handle -dparse: parse and dump the AST
			if dParse {
				return doParse(filename, src, out, errOut)
			}

			_, err = parseSource(filename, src, errOut)
			return err
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	// Add debug flags
	rootCmd.Flags().BoolVarP(&dParse, "dparse", "", false, "Dump the AST after parsing")
	rootCmd.Flags().BoolVarP(&dTokens, "dtokens", "", false, "Dump the token stream")
	rootCmd.Flags().StringVarP(&format, "format", "f", "yaml", "Dump encoding: yaml or json")

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Infof("starting language server %s", version)
			return lsp.NewServer(version).RunStdio()
		},
	}
}

func configureLogging() {
	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbosity, path)
}

// readSource reads filename, or stdin when filename is "-"
func readSource(filename string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if filename == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filename)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	return string(data), nil
}

// parseSource parses src and reports its diagnostics. Warnings are printed
// but only errors fail the parse.
func parseSource(filename, src string, errOut io.Writer) (*cabs.Program, error) {
	program, diags := parser.Parse(src)
	reportDiagnostics(errOut, filename, diags)
	log.Infof("parsed %s: %d statements, %d diagnostics", filename, len(program.Stmts), len(diags))

	if errs := parser.OnlyErrors(diags); len(errs) > 0 {
		return nil, fmt.Errorf("parsing %s failed with %d errors: %w", filename, len(errs), errs)
	}
	return program, nil
}

// reportDiagnostics prints one file:line:col line per diagnostic
func reportDiagnostics(w io.Writer, filename string, diags []parser.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s: %s\n",
			filename, d.Pos.Line, d.Pos.Column, d.Severity, d.Category, d.Msg)
	}
}

// doParse parses the source and writes the AST to out
func doParse(filename, src string, out, errOut io.Writer) error {
	program, err := parseSource(filename, src, errOut)
	if err != nil {
		return err
	}
	return encode(out, cabs.ProgramTree(program))
}

// tokenDump is the serialized form of one token
type tokenDump struct {
	Type    string `yaml:"type" json:"type"`
	Literal string `yaml:"literal,omitempty" json:"literal,omitempty"`
	Pos     string `yaml:"pos" json:"pos"`
}

// doTokens lexes the source and writes the token stream to out
func doTokens(filename, src string, out, errOut io.Writer) error {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		reportDiagnostics(errOut, filename, []parser.Diagnostic{parser.FromLexError(err)})
		return fmt.Errorf("lexing %s: %w", filename, err)
	}
	log.Debugf("lexed %s: %d tokens", filename, len(toks))

	dump := make([]tokenDump, len(toks))
	for i, tok := range toks {
		dump[i] = tokenDump{Type: tok.Type.String(), Literal: tok.Literal, Pos: tok.Pos.String()}
	}
	return encode(out, dump)
}

func encode(out io.Writer, v any) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
