package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Len(t, c.Indices, 20)
	assert.Equal(t, Index{Country: "USA", Name: "S&P 500", Ticker: "^GSPC"}, c.Indices[0])
	assert.Equal(t, Index{Country: "BRAZIL", Name: "Bovespa", Ticker: "^BVSP"}, c.Indices[19])

	// The built-in catalog must pass its own validation.
	data := "indices:\n"
	for _, idx := range c.Indices {
		data += "  - {country: \"" + idx.Country + "\", name: \"" + idx.Name + "\", ticker: \"" + idx.Ticker + "\"}\n"
	}
	parsed, err := ParseCatalog([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		wantLen int
	}{
		{
			name:    "valid",
			yaml:    "indices:\n  - {country: UK, name: FTSE 100, ticker: ^FTSE}\n  - {country: ITALY, name: FTSE MIB, ticker: FTSEMIB.MI}\n",
			wantLen: 2,
		},
		{name: "empty ticker", yaml: "indices:\n  - {country: UK, name: FTSE 100, ticker: \"\"}\n", wantErr: true},
		{name: "bad ticker", yaml: "indices:\n  - {country: UK, name: FTSE 100, ticker: \"FT SE\"}\n", wantErr: true},
		{name: "missing name", yaml: "indices:\n  - {country: UK, ticker: ^FTSE}\n", wantErr: true},
		{name: "no indices", yaml: "indices: []\n", wantErr: true},
		{name: "duplicate ticker", yaml: "indices:\n  - {country: A, name: A, ticker: ^X}\n  - {country: B, name: B, ticker: ^X}\n", wantErr: true},
		{name: "not yaml", yaml: "indices: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCatalog([]byte(tt.yaml))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCatalog)
				return
			}
			require.NoError(t, err)
			assert.Len(t, c.Indices, tt.wantLen)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), c)

	path := filepath.Join(t.TempDir(), "indices.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indices:\n  - {country: JAPAN, name: Nikkei 225, ticker: ^N225}\n"), 0o600))
	c, err = LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, c.Indices, 1)
	assert.Equal(t, "^N225", c.Indices[0].Ticker)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandTilde("~/indices.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "indices.yaml"), got)

	got, err = expandTilde("/abs/indices.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/abs/indices.yaml", got)
}
