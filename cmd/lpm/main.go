package main

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/aglyzov/go-lpm/lpm"
)

var inputFlag = cli.StringFlag{
	Name:     "input",
	Aliases:  []string{"i"},
	Usage:    "file with subnets and AS numbers, one \"subnet as-number\" pair per line",
	Required: true,
}

func main() {
	app := &cli.App{
		Name:  "lpm",
		Usage: "longest-prefix-match of IP addresses against a subnet list",
		Description: "Reads IPv4/IPv6 addresses from stdin, one per line, and prints the\n" +
			"AS number of the most specific subnet containing each address,\n" +
			"or \"-\" when no subnet matches.",
		Flags:  []cli.Flag{&inputFlag},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	table, err := lpm.LoadFile(ctx.String(inputFlag.Name))
	if err != nil {
		return err
	}
	return resolve(table, os.Stdin, os.Stdout)
}

// resolve answers one lookup per input line. A missing match degrades to a
// "-" line; an unparsable address aborts the whole run.
func resolve(table *lpm.Table, in io.Reader, out io.Writer) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		addr, err := netip.ParseAddr(sc.Text())
		if err != nil {
			return fmt.Errorf("bad query address: %w", err)
		}

		if as, ok := table.Lookup(addr); ok {
			fmt.Fprintln(w, as)
		} else {
			fmt.Fprintln(w, "-")
		}
	}
	return sc.Err()
}
