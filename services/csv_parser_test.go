package services_test

import (
	"testing"

	"product-importer/services"

	"github.com/stretchr/testify/assert"
)

func TestParseProductCSV_Basic(t *testing.T) {
	csv := "sku,name,description\nABC-1,Widget,A widget\nabc-2,Gadget,\n"

	records, total, err := services.ParseProductCSV([]byte(csv), true)
	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, records, 2)
	assert.Equal(t, "abc-1", records[0].SKU)
	assert.Equal(t, "Widget", records[0].Name)
	assert.Equal(t, "A widget", records[0].Description)
	assert.True(t, records[0].Active)
	assert.Equal(t, "", records[1].Description)
}

func TestParseProductCSV_UppercaseSKUHeader(t *testing.T) {
	csv := "SKU,name\nXYZ-9,Thing\n"

	records, total, err := services.ParseProductCSV([]byte(csv), true)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, records, 1)
	assert.Equal(t, "xyz-9", records[0].SKU)
}

func TestParseProductCSV_MixedCaseHeaderNotRecognized(t *testing.T) {
	csv := "Sku,name\nXYZ-9,Thing\n"

	records, total, err := services.ParseProductCSV([]byte(csv), true)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, records)
}

func TestParseProductCSV_TrimsAndLowercases(t *testing.T) {
	csv := "sku,name\n  ABC  ,Widget\n"

	records, _, err := services.ParseProductCSV([]byte(csv), true)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "abc", records[0].SKU)
}

func TestParseProductCSV_EmptySkuDroppedButCounted(t *testing.T) {
	csv := "sku,name\n,NoSku\n   ,Whitespace\nok,Fine\n"

	records, total, err := services.ParseProductCSV([]byte(csv), true)
	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].SKU)
}

func TestParseProductCSV_NameDefaultsToSku(t *testing.T) {
	csv := "sku\nabc-1\n"

	records, _, err := services.ParseProductCSV([]byte(csv), true)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "abc-1", records[0].Name)
}

func TestParseProductCSV_DefaultActiveApplied(t *testing.T) {
	csv := "sku\na\nb\n"

	records, _, err := services.ParseProductCSV([]byte(csv), false)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	for _, rec := range records {
		assert.False(t, rec.Active)
	}
}

func TestParseProductCSV_HeaderOnly(t *testing.T) {
	records, total, err := services.ParseProductCSV([]byte("sku,name,description\n"), true)
	assert.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, records)
}

func TestParseProductCSV_EmptyInput(t *testing.T) {
	records, total, err := services.ParseProductCSV(nil, true)
	assert.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, records)
}

func TestParseProductCSV_InvalidUTF8Replaced(t *testing.T) {
	csv := append([]byte("sku,name\nabc,Wid"), 0xff, 0xfe)
	csv = append(csv, []byte("get\n")...)

	records, total, err := services.ParseProductCSV(csv, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, records, 1)
	assert.Contains(t, records[0].Name, "�")
}

func TestParseProductCSV_RaggedRows(t *testing.T) {
	csv := "sku,name,description\nabc,OnlyName\nxyz\n"

	records, total, err := services.ParseProductCSV([]byte(csv), true)
	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, records, 2)
	assert.Equal(t, "OnlyName", records[0].Name)
	assert.Equal(t, "xyz", records[1].Name)
}
