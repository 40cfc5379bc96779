package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/ctorex/internal/bridge"
	"github.com/funvibe/ctorex/pkg/ast"
	"github.com/funvibe/ctorex/pkg/ctorex"
	"github.com/funvibe/ctorex/pkg/pipeline"
)

var useColor = isatty.IsTerminal(os.Stderr.Fd())

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "parse":
		err = cmdParse(os.Args[2:])
	case "eval":
		err = cmdEval(os.Args[2:])
	case "call":
		err = cmdCall(os.Args[2:])
	case "pipeline":
		err = cmdPipeline(os.Args[2:])
	case "serve":
		err = cmdServe(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, colorize("error: "+err.Error(), "31"))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `ctorex - instantiate objects from constructor expressions

Usage:
  ctorex parse <expression>              print the parsed AST
  ctorex eval <expression> [capability]  build the instance (demo registry)
  ctorex call <expression> <method> [args...]
                                         build, then invoke a method
  ctorex pipeline <file>                 build every pipeline in a YAML file
                                         (or a SQLite catalog: .db/.sqlite)
  ctorex serve <addr>                    serve the gRPC object bridge
`)
}

func colorize(s, code string) string {
	if !useColor {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func cmdParse(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("parse expects exactly one expression")
	}
	node, err := ctorex.Parse(args[0])
	if err != nil {
		return err
	}
	printTree(node, 0)
	fmt.Printf("depth: %d\n", ast.Depth(node))
	return nil
}

func printTree(node ast.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	switch n := node.(type) {
	case *ast.CtorExpression:
		fmt.Printf("%sCtor %s\n", pad, colorize(n.Name, "36"))
		for _, arg := range n.Args {
			printTree(arg, indent+1)
		}
	case *ast.ListLiteral:
		fmt.Printf("%sList\n", pad)
		for _, el := range n.Elements {
			printTree(el, indent+1)
		}
	case *ast.IntegerLiteral:
		fmt.Printf("%sInteger %d\n", pad, n.Value)
	case *ast.FloatLiteral:
		fmt.Printf("%sFloat %s\n", pad, n.String())
	case *ast.SymbolLiteral:
		fmt.Printf("%sSymbol %s\n", pad, n.Name)
	}
}

func cmdEval(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("eval expects an expression and an optional capability")
	}
	reg, err := buildDemoRegistry()
	if err != nil {
		return err
	}

	var inst *ctorex.Instance
	if len(args) == 2 {
		inst, err = reg.Create(args[0], args[1])
	} else {
		inst, err = reg.Create(args[0])
	}
	if err != nil {
		return err
	}
	fmt.Println(colorize(inst.Inspect(), "32"))
	return nil
}

func cmdCall(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("call expects an expression and a method name")
	}
	reg, err := buildDemoRegistry()
	if err != nil {
		return err
	}
	inst, err := reg.Create(args[0])
	if err != nil {
		return err
	}

	callArgs := make([]ctorex.Value, len(args[2:]))
	for i, raw := range args[2:] {
		callArgs[i] = parseRawArg(raw)
	}

	result, err := reg.CallMethod(inst, args[1], callArgs)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Println("ok")
		return nil
	}
	fmt.Println(colorize(result.Inspect(), "32"))
	return nil
}

// parseRawArg classifies a command-line argument the way the grammar
// classifies primitives: float if it has a decimal point, then integer,
// then symbol.
func parseRawArg(raw string) ctorex.Value {
	if strings.Contains(raw, ".") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return ctorex.Flt(f)
		}
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ctorex.Int(i)
	}
	return ctorex.Sym(raw)
}

func cmdPipeline(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("pipeline expects a config file path")
	}
	path := args[0]

	var cfg *pipeline.Config
	var err error
	if strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite") {
		cfg, err = pipeline.LoadCatalog(path)
	} else {
		cfg, err = pipeline.Load(path)
	}
	if err != nil {
		return err
	}

	reg, err := buildDemoRegistry()
	if err != nil {
		return err
	}
	instances, err := cfg.Build(reg)
	if err != nil {
		return err
	}

	for _, def := range cfg.Pipelines {
		fmt.Printf("%s: %s\n", def.Name, colorize(instances[def.Name].Inspect(), "32"))
	}
	return nil
}

func cmdServe(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("serve expects a listen address")
	}
	reg, err := buildDemoRegistry()
	if err != nil {
		return err
	}
	srv, err := bridge.New(reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "serving object bridge on %s\n", args[0])
	return srv.Serve(args[0])
}
