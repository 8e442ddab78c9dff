package market

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/run-ticker/internal/validate"
)

// Index is one tracked market index.
type Index struct {
	Country string `json:"country" yaml:"country" validate:"required"`
	Name    string `json:"name" yaml:"name" validate:"required"`
	Ticker  string `json:"ticker" yaml:"ticker" validate:"required,ticker"`
}

// Catalog is the ordered list of tracked indices.
type Catalog struct {
	Indices []Index `yaml:"indices" validate:"required,min=1,dive"`
}

// DefaultCatalog returns the built-in set of global indices.
func DefaultCatalog() Catalog {
	return Catalog{Indices: []Index{
		// North America
		{Country: "USA", Name: "S&P 500", Ticker: "^GSPC"},
		{Country: "USA-NASDAQ", Name: "NASDAQ", Ticker: "^IXIC"},
		{Country: "USA-DOW", Name: "Dow Jones", Ticker: "^DJI"},
		{Country: "CANADA", Name: "S&P/TSX", Ticker: "^GSPTSE"},
		{Country: "MEXICO", Name: "IPC", Ticker: "^MXX"},

		// Europe
		{Country: "UK", Name: "FTSE 100", Ticker: "^FTSE"},
		{Country: "GERMANY", Name: "DAX", Ticker: "^GDAXI"},
		{Country: "FRANCE", Name: "CAC 40", Ticker: "^FCHI"},
		{Country: "SPAIN", Name: "IBEX 35", Ticker: "^IBEX"},
		{Country: "ITALY", Name: "FTSE MIB", Ticker: "FTSEMIB.MI"},
		{Country: "SWITZERLAND", Name: "SMI", Ticker: "^SSMI"},
		{Country: "NETHERLANDS", Name: "AEX", Ticker: "^AEX"},

		// Asia-Pacific
		{Country: "JAPAN", Name: "Nikkei 225", Ticker: "^N225"},
		{Country: "CHINA", Name: "Shanghai Composite", Ticker: "000001.SS"},
		{Country: "CHINA-HK", Name: "Hang Seng", Ticker: "^HSI"},
		{Country: "SOUTH KOREA", Name: "KOSPI", Ticker: "^KS11"},
		{Country: "INDIA", Name: "NIFTY 50", Ticker: "^NSEI"},
		{Country: "AUSTRALIA", Name: "ASX 200", Ticker: "^AXJO"},
		{Country: "SINGAPORE", Name: "STI", Ticker: "^STI"},
		{Country: "BRAZIL", Name: "Bovespa", Ticker: "^BVSP"},
	}}
}

// LoadCatalog reads a YAML catalog file. An empty path yields the default catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	expanded, err := expandTilde(path)
	if err != nil {
		return Catalog{}, err
	}
	logrus.Debug("Loading index catalog from: ", expanded)
	data, err := os.ReadFile(expanded)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := validate.Struct(c); err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	seen := make(map[string]struct{}, len(c.Indices))
	for _, idx := range c.Indices {
		if _, dup := seen[idx.Ticker]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate ticker %q", ErrInvalidCatalog, idx.Ticker)
		}
		seen[idx.Ticker] = struct{}{}
	}
	return c, nil
}

// expandTilde expands the tilde in a path to the user's home directory.
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}
