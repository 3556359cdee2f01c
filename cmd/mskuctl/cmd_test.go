package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msku-service/internal/resolve/model"
)

const mappingsCSV = `sku,msku,marketplace
GOLDEN-APPLE,APPLE-001,Amazon
GLD,APPLE-001,Shopify
WIDGET-BLUE,WIDGET-001,Amazon
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := New(zerolog.Nop())
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLookup(t *testing.T) {
	mappings := writeFile(t, "mappings.csv", mappingsCSV)

	out, err := run(t, "lookup", "--mappings", mappings, "gld", "shopify")
	require.NoError(t, err)

	var m model.Match
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "APPLE-001", m.MSKU)
	assert.Equal(t, model.MatchExact, m.MatchType)

	_, err = run(t, "lookup", "--mappings", mappings, "NOPE", "Amazon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No mapping found for SKU NOPE in Amazon")
}

func TestResolve(t *testing.T) {
	mappings := writeFile(t, "mappings.csv", mappingsCSV)
	input := writeFile(t, "orders.csv", "sku,marketplace\nGLD,Shopify\nWIDGET-BLUE,Amazon\nUNKNOWN,Amazon\n")

	out, err := run(t, "resolve", "--mappings", mappings, input)
	require.NoError(t, err)

	var reports []struct {
		File   string           `json:"file"`
		Report model.BulkReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, 3, reports[0].Report.Processed)
	assert.Equal(t, 2, reports[0].Report.Matched)
	assert.Equal(t, 1, reports[0].Report.NotMatched)
}

func TestPatterns(t *testing.T) {
	mappings := writeFile(t, "mappings.csv", mappingsCSV)

	out, err := run(t, "patterns", "--mappings", mappings)
	require.NoError(t, err)
	assert.Contains(t, out, `"msku": "APPLE-001"`)
}

func TestMappingsFlagRequired(t *testing.T) {
	_, err := run(t, "patterns")
	require.Error(t, err)
}
