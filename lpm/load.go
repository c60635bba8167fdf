package lpm

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strconv"
	"strings"
)

// Load builds a table out of a subnet list: one "subnet as-number" pair per
// line, e.g. "10.1.0.0/16 64512". Blank lines are skipped; anything
// malformed aborts the load with a line-numbered error.
func Load(r io.Reader) (*Table, error) {
	t := New()
	sc := bufio.NewScanner(r)

	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("lpm: line %d: want \"subnet as-number\", got %q", lineno, line)
		}

		pfx, err := netip.ParsePrefix(fields[0])
		if err != nil {
			return nil, fmt.Errorf("lpm: line %d: %w", lineno, err)
		}
		as, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("lpm: line %d: bad AS number %q", lineno, fields[1])
		}

		t.Insert(pfx, as)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("lpm: reading subnet list: %w", err)
	}
	return t, nil
}

// LoadFile is Load over the named file.
func LoadFile(name string) (*Table, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}
