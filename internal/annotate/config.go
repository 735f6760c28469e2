package annotate

import "fmt"

// DefaultPromoterSize is the requested promoter length when none is configured.
const DefaultPromoterSize int64 = 300

// Config controls promoter sizing and operon handling.
type Config struct {
	PromoterSize   int64 // requested promoter length in bases
	OperonsEnabled bool  // treat close same-strand genes as operons
	OperonDistance int64 // gap below which same-strand neighbours form an operon
	EmitTSS        bool  // include TSS sites in the written output
	Workers        int   // chromosome workers; 0 means runtime.NumCPU()
}

// DefaultConfig returns the default annotation settings.
func DefaultConfig() Config {
	return Config{
		PromoterSize: DefaultPromoterSize,
		EmitTSS:      true,
	}
}

// Validate rejects settings the annotator cannot run with.
func (c Config) Validate() error {
	if c.PromoterSize <= 0 {
		return fmt.Errorf("promoter size must be positive, got %d", c.PromoterSize)
	}
	if c.OperonDistance < 0 {
		return fmt.Errorf("operon distance must not be negative, got %d", c.OperonDistance)
	}
	if c.OperonsEnabled && c.OperonDistance == 0 {
		return fmt.Errorf("operon distance must be positive when operons are enabled")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
