package subliminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoTiers is returned for a catalog without any selectable tier
	ErrNoTiers = errors.New("subliminal: catalog has no tiers")

	// ErrEmptyTier is returned for a tier without phrases
	ErrEmptyTier = errors.New("subliminal: tier has no phrases")
)

// Tier groups phrases sharing a selection weight
type Tier struct {
	Name    string   `yaml:"name"`
	Weight  float64  `yaml:"weight"`
	Phrases []string `yaml:"phrases"`
}

// Catalog is the full phrase set, tiers are chosen by weight then phrases uniformly
type Catalog struct {
	Tiers []Tier `yaml:"tiers"`
}

// DefaultCatalog returns the built-in six-tier phrase set
func DefaultCatalog() Catalog {
	return Catalog{Tiers: []Tier{
		{Name: "fragment", Weight: 40, Phrases: []string{
			"COLOR", "BEFORE", "LISTEN", "STILL", "HERE", "AGAIN", "DRIFT", "HUE",
		}},
		{Name: "whisper", Weight: 20, Phrases: []string{
			"YOU SAW IT", "NOT NOISE", "KEEP LOOKING", "IT WAS HERE", "COLOR FIRST",
		}},
		{Name: "concept", Weight: 15, Phrases: []string{
			"ARCHIVE OF COLOR", "SIGNAL IN THE RAIN", "LIGHT BEFORE LANGUAGE", "HUE AS MEMORY",
		}},
		{Name: "echo", Weight: 15, Phrases: []string{
			"SAIREN", "ARCHIVE", "COLOR ARCHIVE", "SAIREN COLOR",
		}},
		{Name: "sentence", Weight: 5, Phrases: []string{
			"THE COLOR ARRIVED BEFORE THE WORDS DID",
			"EVERY HUE YOU SAW WAS ALREADY A MESSAGE",
		}},
		{Name: "signature", Weight: 2, Phrases: []string{
			"SAIREN COLOR ARCHIVE WAS HERE BEFORE YOU",
			"YOU HAVE BEEN READING THE RAIN",
		}},
	}}
}

// Validate checks every tier is usable and at least one carries weight
func (c Catalog) Validate() error {
	if len(c.Tiers) == 0 {
		return ErrNoTiers
	}
	total := 0.0
	for i, t := range c.Tiers {
		if t.Weight < 0 {
			return fmt.Errorf("subliminal: tier %q (%d) has negative weight", t.Name, i)
		}
		if countPhrases(t.Phrases) == 0 {
			return fmt.Errorf("%w: %q (%d)", ErrEmptyTier, t.Name, i)
		}
		total += t.Weight
	}
	if total <= 0 {
		return fmt.Errorf("%w: total weight is zero", ErrNoTiers)
	}
	return nil
}

func countPhrases(phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

// LoadCatalog decodes a YAML catalog and validates it
func LoadCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("subliminal: decode catalog: %w", err)
	}
	c = c.trimmed()
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// LoadCatalogFile reads a YAML catalog from disk
func LoadCatalogFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("subliminal: open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// trimmed drops blank phrases and surrounding whitespace
func (c Catalog) trimmed() Catalog {
	out := Catalog{Tiers: make([]Tier, len(c.Tiers))}
	for i, t := range c.Tiers {
		out.Tiers[i] = Tier{Name: t.Name, Weight: t.Weight}
		for _, p := range t.Phrases {
			if p = strings.TrimSpace(p); p != "" {
				out.Tiers[i].Phrases = append(out.Tiers[i].Phrases, p)
			}
		}
	}
	return out
}
