package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/gffannot/internal/cache"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// GeneCache manages gob-serialized gene models on disk, one pair of files
// per source GFF:
//
//	{dir}/{name}.genes.gob       (serialized genes)
//	{dir}/{name}.genes.gob.meta  (source file fingerprint)
type GeneCache struct {
	dir  string
	name string
}

// NewGeneCache creates a gene cache in dir for the GFF file at gffPath.
func NewGeneCache(dir, gffPath string) *GeneCache {
	return &GeneCache{dir: dir, name: filepath.Base(gffPath)}
}

func (gc *GeneCache) gobPath() string {
	return filepath.Join(gc.dir, gc.name+".genes.gob")
}

func (gc *GeneCache) metaPath() string {
	return filepath.Join(gc.dir, gc.name+".genes.gob.meta")
}

// Valid checks whether the cached genes match the current source file.
func (gc *GeneCache) Valid(gff FileFingerprint) bool {
	meta, err := gc.readMeta()
	if err != nil {
		return false
	}

	if meta["gff_size"] != strconv.FormatInt(gff.Size, 10) ||
		meta["gff_modtime"] != gff.ModTime.UTC().Format(time.RFC3339Nano) {
		return false
	}

	if _, err := os.Stat(gc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads serialized genes from disk into the cache.
func (gc *GeneCache) Load(c *cache.Cache) error {
	f, err := os.Open(gc.gobPath())
	if err != nil {
		return fmt.Errorf("open gene cache: %w", err)
	}
	defer f.Close()

	var data map[string][]*cache.Gene
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode gene cache: %w", err)
	}

	chroms := make([]string, 0, len(data))
	for chrom := range data {
		chroms = append(chroms, chrom)
	}
	slices.Sort(chroms)
	for _, chrom := range chroms {
		for _, g := range data[chrom] {
			c.AddGene(g)
		}
	}
	return nil
}

// Write serializes all genes from the cache to disk.
func (gc *GeneCache) Write(c *cache.Cache, gff FileFingerprint) error {
	if err := os.MkdirAll(gc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data := make(map[string][]*cache.Gene)
	for _, chrom := range c.Chromosomes() {
		data[chrom] = c.GenesByChrom(chrom)
	}

	f, err := os.Create(gc.gobPath())
	if err != nil {
		return fmt.Errorf("create gene cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(gc.gobPath())
		return fmt.Errorf("encode gene cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close gene cache: %w", err)
	}

	return gc.writeMeta(gff)
}

// Clear removes the cached gene files.
func (gc *GeneCache) Clear() {
	os.Remove(gc.gobPath())
	os.Remove(gc.metaPath())
}

func (gc *GeneCache) writeMeta(gff FileFingerprint) error {
	lines := []string{
		"gff_path=" + gff.Path,
		"gff_size=" + strconv.FormatInt(gff.Size, 10),
		"gff_modtime=" + gff.ModTime.UTC().Format(time.RFC3339Nano),
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(gc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (gc *GeneCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(gc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
