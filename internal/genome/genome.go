// Package genome reads chromosome size tables.
package genome

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Genome holds chromosome lengths in the order they were listed.
type Genome struct {
	names   []string
	lengths map[string]int64
}

// New creates a genome from parallel name and length slices.
func New(names []string, lengths []int64) (*Genome, error) {
	if len(names) != len(lengths) {
		return nil, fmt.Errorf("got %d names but %d lengths", len(names), len(lengths))
	}
	g := &Genome{lengths: make(map[string]int64, len(names))}
	for i, name := range names {
		if err := g.add(name, lengths[i]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Genome) add(name string, length int64) error {
	if length <= 0 {
		return fmt.Errorf("chromosome %s: length must be positive, got %d", name, length)
	}
	if _, dup := g.lengths[name]; dup {
		return fmt.Errorf("chromosome %s listed twice", name)
	}
	g.names = append(g.names, name)
	g.lengths[name] = length
	return nil
}

// Names returns chromosome names in table order.
func (g *Genome) Names() []string {
	return g.names
}

// Length returns the length of a chromosome and whether it is known.
func (g *Genome) Length(name string) (int64, bool) {
	l, ok := g.lengths[name]
	return l, ok
}

// Len returns the number of chromosomes.
func (g *Genome) Len() int {
	return len(g.names)
}

// Load reads a chromosome size table from path. Files ending in .gz are
// decompressed.
func Load(path string) (*Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chromosome sizes: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return Read(reader)
}

// Read parses a whitespace-separated table of chromosome names and lengths.
// Blank lines and lines starting with '#' are skipped; extra columns are
// ignored.
func Read(r io.Reader) (*Genome, error) {
	g := &Genome{lengths: make(map[string]int64)}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected name and length, got %q", lineNum, line)
		}
		length, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse length: %w", lineNum, err)
		}
		if err := g.add(fields[0], length); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chromosome sizes: %w", err)
	}

	return g, nil
}
