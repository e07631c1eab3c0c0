// Command lemurdb is a line-oriented front end standing in for "the
// interactive shell" of §6's shell contract. Since parsing SQL text is
// an out-of-scope collaborator, this offers a fixed menu of canned
// statement builders instead of a real lexer/parser — enough to drive
// the executor as a real binary.
//
// Grounded on the teacher's cmd/ demo mains (open a context, run a
// sequence of operations, print results), adapted into a persistent
// REPL loop over one environment directory.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tpkdev/lemurdb/internal/ast"
	"github.com/tpkdev/lemurdb/internal/config"
	"github.com/tpkdev/lemurdb/internal/environment"
	"github.com/tpkdev/lemurdb/internal/exec"
)

func main() {
	dir := flag.String("dir", ".", "environment directory holding the relation files")
	level := flag.String("log-level", "info", "debug|info|warn|error")
	flag.Parse()

	cfg := config.Default()
	cfg.DataDir = *dir
	cfg.LogLevel = *level

	env := environment.Open(cfg)
	ex, err := exec.New(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open environment %q: %v\n", *dir, err)
		os.Exit(1)
	}

	repl(ex, os.Stdin, os.Stdout)
}

func repl(ex *exec.Executor, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	printMenu(out)
	for {
		fmt.Fprint(out, "\nlemurdb> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			return
		}
		if line == "menu" {
			printMenu(out)
			continue
		}
		stmt, err := buildStatement(line, scanner, out)
		if err != nil {
			fmt.Fprintf(out, "Invalid SQL: %s\n", line)
			continue
		}
		if stmt == nil {
			continue
		}
		result, err := ex.Execute(stmt)
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		printResult(out, result)
	}
}

func printMenu(out *os.File) {
	fmt.Fprintln(out, "commands: create-table | create-index | drop-table | drop-index | show-tables | show-columns | show-index | insert | delete | select | quit")
}

// buildStatement reads whatever follow-up fields the chosen command
// needs from scanner and assembles the matching internal/ast value.
// This is the "fixed menu of canned statement builders" standing in for
// a real SQL parser.
func buildStatement(command string, scanner *bufio.Scanner, out *os.File) (interface{}, error) {
	prompt := func(label string) string {
		fmt.Fprintf(out, "  %s: ", label)
		scanner.Scan()
		return strings.TrimSpace(scanner.Text())
	}

	switch command {
	case "create-table":
		table := prompt("table name")
		n, _ := strconv.Atoi(prompt("number of columns"))
		cols := make([]ast.ColumnDef, 0, n)
		for i := 0; i < n; i++ {
			name := prompt(fmt.Sprintf("column %d name", i+1))
			typ := prompt(fmt.Sprintf("column %d type (INT|TEXT|DOUBLE)", i+1))
			cols = append(cols, ast.ColumnDef{Name: name, Type: strings.ToUpper(typ)})
		}
		return &ast.CreateTableStmt{Table: table, Columns: cols}, nil

	case "create-index":
		indexName := prompt("index name")
		table := prompt("table name")
		cols := strings.Fields(prompt("key columns (space separated)"))
		kind := strings.ToUpper(prompt("index type (BTREE|HASH)"))
		return &ast.CreateIndexStmt{IndexName: indexName, Table: table, Columns: cols, IndexType: kind}, nil

	case "drop-table":
		return &ast.DropTableStmt{Table: prompt("table name")}, nil

	case "drop-index":
		indexName := prompt("index name")
		table := prompt("table name")
		return &ast.DropIndexStmt{IndexName: indexName, Table: table}, nil

	case "show-tables":
		return &ast.ShowTablesStmt{}, nil

	case "show-columns":
		return &ast.ShowColumnsStmt{Table: prompt("table name")}, nil

	case "show-index":
		return &ast.ShowIndexStmt{Table: prompt("table name")}, nil

	case "insert":
		table := prompt("table name")
		values := strings.Split(prompt("values (comma separated, quote strings)"), ",")
		exprs := make([]ast.Expr, 0, len(values))
		for _, v := range values {
			exprs = append(exprs, parseLiteral(strings.TrimSpace(v)))
		}
		return &ast.InsertStmt{Table: table, Values: exprs}, nil

	case "delete":
		table := prompt("table name")
		return &ast.DeleteStmt{Table: table, Where: parseWherePrompt(prompt)}, nil

	case "select":
		table := prompt("table name")
		colLine := prompt("columns (* or space separated)")
		var cols []string
		if colLine != "*" {
			cols = strings.Fields(colLine)
		}
		return &ast.SelectStmt{Table: table, Columns: cols, Where: parseWherePrompt(prompt)}, nil

	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

func parseLiteral(s string) ast.Expr {
	if strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") && len(s) >= 2 {
		return ast.LiteralString(s[1 : len(s)-1])
	}
	if n, err := strconv.Atoi(s); err == nil {
		return ast.LiteralInt(int32(n))
	}
	return ast.LiteralString(s)
}

func parseWherePrompt(prompt func(string) string) *ast.Expr {
	clause := prompt("where column=value clauses (col=lit[,col=lit...], blank for none)")
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil
	}
	var result *ast.Expr
	for _, part := range strings.Split(clause, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		eq := ast.Equals(ast.ColumnRef(strings.TrimSpace(kv[0])), parseLiteral(strings.TrimSpace(kv[1])))
		if result == nil {
			result = &eq
		} else {
			merged := ast.And(*result, eq)
			result = &merged
		}
	}
	return result
}

func printResult(out *os.File, r *exec.Result) {
	if r.Message != "" {
		fmt.Fprintln(out, r.Message)
	}
	if r.Columns == nil {
		return
	}
	fmt.Fprintln(out, strings.Join(r.Columns, " | "))
	fmt.Fprintln(out, strings.Repeat("-", 8*len(r.Columns)))
	for _, row := range r.Rows {
		cells := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			cells[i] = formatValue(row[col])
		}
		fmt.Fprintln(out, strings.Join(cells, " | "))
	}
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return `"` + val + `"`
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return "???"
	}
}
