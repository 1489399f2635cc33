package models

import (
	"testing"

	"github.com/JerraForge/hydroponic-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadingsPayload_Object(t *testing.T) {
	got, err := ParseReadingsPayload([]byte(` {"ph": 6.2, "temperature": 21.5, "tds": 840} `))
	require.NoError(t, err)
	assert.Equal(t, []domain.Readings{{PH: 6.2, Temperature: 21.5, TDS: 840}}, got)
}

func TestParseReadingsPayload_Array(t *testing.T) {
	got, err := ParseReadingsPayload([]byte(`[{"ph":6,"temperature":20,"tds":500},{"ph":7,"temperature":0,"tds":0}]`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0.0, got[1].Temperature, "zero is a legitimate reading")
}

func TestParseReadingsPayload_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":         "   ",
		"not json":      "ph=7",
		"missing tds":   `{"ph": 7, "temperature": 20}`,
		"string value":  `{"ph": "seven", "temperature": 20, "tds": 1}`,
		"bad array row": `[{"ph":6,"temperature":20,"tds":500},{"ph":7}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseReadingsPayload([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestParseReadingsPayload_EmptyArray(t *testing.T) {
	got, err := ParseReadingsPayload([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, got)
}
