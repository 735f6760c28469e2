package cache

import "sort"

// Cache holds gene models indexed by chromosome.
type Cache struct {
	// genes stores genes indexed by chromosome, in insertion order
	genes map[string][]*Gene
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		genes: make(map[string][]*Gene),
	}
}

// AddGene adds a gene to the cache.
func (c *Cache) AddGene(g *Gene) {
	c.genes[g.Chrom] = append(c.genes[g.Chrom], g)
}

// GetGene returns a specific gene by ID, or nil if not found.
func (c *Cache) GetGene(id string) *Gene {
	for _, genes := range c.genes {
		for _, g := range genes {
			if g.ID == id {
				return g
			}
		}
	}
	return nil
}

// GeneCount returns the total number of genes in the cache.
func (c *Cache) GeneCount() int {
	count := 0
	for _, genes := range c.genes {
		count += len(genes)
	}
	return count
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	count := 0
	for _, genes := range c.genes {
		for _, g := range genes {
			count += len(g.Transcripts)
		}
	}
	return count
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.genes))
	for chrom := range c.genes {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// GenesByChrom returns all genes for a chromosome.
func (c *Cache) GenesByChrom(chrom string) []*Gene {
	return c.genes[chrom]
}
