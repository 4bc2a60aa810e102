package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/examforge/internal/credits"
)

type packsFile struct {
	Packs []credits.Pack `yaml:"packs"`
}

// loadPacks reads the pack catalogue from path, or returns the built-in
// packs when path is empty. Per-pack checkout links can be overridden with
// EXAMFORGE_PAYMENT_URL_<ID>.
func loadPacks(path string) ([]credits.Pack, error) {
	packs := credits.DefaultPacks()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read packs file: %w", err)
		}
		var f packsFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse packs file %s: %w", path, err)
		}
		if len(f.Packs) == 0 {
			return nil, fmt.Errorf("packs file %s defines no packs", path)
		}
		packs = f.Packs
	}
	for i := range packs {
		if u := envOr("PAYMENT_URL_"+packs[i].ID, ""); u != "" {
			packs[i].PaymentURL = u
		}
	}
	if _, err := credits.NewCatalog(packs); err != nil {
		return nil, err
	}
	return packs, nil
}
