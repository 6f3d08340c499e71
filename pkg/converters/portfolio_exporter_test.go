package converters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

func TestExportOmitsAbsentFields(t *testing.T) {
	e := NewPortfolioExporter()
	record := &models.PortfolioRecord{
		ID: 3,
		Data: models.Portfolio{
			Name:   models.StringPtr("Jane Doe"),
			About:  models.StringPtr(""),
			Skills: []string{},
		},
	}

	data, err := e.Export(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]any{"name": "Jane Doe", "about": "", "skills": []any{}}, decoded)
	assert.Contains(t, string(data), "\n  \"name\"")
}

func TestFileName(t *testing.T) {
	e := NewPortfolioExporter()
	tests := []struct {
		name string
		data models.Portfolio
		want string
	}{
		{"spaces", models.Portfolio{Name: models.StringPtr("Jane  Q Doe")}, "Jane_Q_Doe_portfolio.json"},
		{"path separators", models.Portfolio{Name: models.StringPtr("a/b")}, "a_b_portfolio.json"},
		{"no name", models.Portfolio{}, "portfolio_9.json"},
		{"blank name", models.Portfolio{Name: models.StringPtr("  ")}, "portfolio_9.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.FileName(&models.PortfolioRecord{ID: 9, Data: tt.data}))
		})
	}
}
