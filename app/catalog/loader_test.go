package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testItemsJSON = `{
  "items": [
    {
      "id": "apple-fresh",
      "name": "Fresh Apples",
      "category": "food-fresh",
      "aliases": ["apples", "apple"],
      "usaToCanada": {"status": "allowed", "declarationRequired": false, "dutyApplies": false},
      "canadaToUsa": {
        "status": "restricted",
        "declarationRequired": true,
        "dutyApplies": false,
        "specialRequirements": ["inspection"],
        "notes": "must be inspected"
      },
      "lastUpdated": "2024-01-15",
      "officialSources": [{"name": "CBP", "url": "https://www.cbp.gov", "type": "CBP"}]
    },
    {
      "id": "wine",
      "name": "Wine",
      "category": "alcohol",
      "aliases": ["red wine"],
      "parentRegulation": "alcohol-general",
      "usaToCanada": {
        "status": "allowed",
        "quantityLimit": {"amount": 1.5, "unit": "liters", "period": "per person"},
        "ageRestriction": 19,
        "declarationRequired": true,
        "dutyApplies": true,
        "inheritedFrom": "alcohol-general"
      },
      "canadaToUsa": {"status": "allowed", "ageRestriction": 21, "declarationRequired": true, "dutyApplies": true},
      "lastUpdated": "2024-01-15",
      "officialSources": [{"name": "CBSA", "url": "https://www.cbsa-asfc.gc.ca", "type": "CBSA"}]
    }
  ],
  "lastUpdated": "2024-01-15"
}`

const testCategoriesJSON = `{
  "categories": [
    {"id": "food-fresh", "name": "Fresh Food", "description": "Fruits and vegetables", "icon": "🍎", "itemCount": 1},
    {"id": "alcohol", "name": "Alcohol", "description": "Alcoholic beverages", "icon": "🍷", "itemCount": 1}
  ],
  "lastUpdated": "2024-01-10"
}`

const testItemsYAML = `items:
  - id: lemon
    name: Lemons
    category: food-fresh
    aliases: [lemon, citrus]
    usaToCanada:
      status: restricted
      quantityLimit: {amount: 5, unit: kg, period: per trip}
      declarationRequired: true
      dutyApplies: false
    canadaToUsa:
      status: prohibited
      declarationRequired: true
      dutyApplies: false
    lastUpdated: "2024-02-01"
    officialSources:
      - name: CFIA
        url: https://inspection.canada.ca
        type: other
lastUpdated: "2024-02-01"
`

const testCategoriesYAML = `categories:
  - id: food-fresh
    name: Fresh Food
    description: Fruits and vegetables
    icon: "🍎"
    itemCount: 1
lastUpdated: "2024-02-01"
`

// writeCatalog writes both catalog files into dir and returns their paths
func writeCatalog(t *testing.T, dir, itemsName, items, catsName, cats string) (itemsPath, catsPath string) {
	t.Helper()
	itemsPath = filepath.Join(dir, itemsName)
	catsPath = filepath.Join(dir, catsName)
	require.NoError(t, os.WriteFile(itemsPath, []byte(items), 0600))
	require.NoError(t, os.WriteFile(catsPath, []byte(cats), 0600))
	return itemsPath, catsPath
}

func TestLoader_LoadJSON(t *testing.T) {
	itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.json", testItemsJSON, "categories.json", testCategoriesJSON)
	loader := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024})

	assert.Equal(t, itemsPath, loader.ItemsFile())
	assert.Equal(t, catsPath, loader.CategoriesFile())

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Entries, 2)
	require.Len(t, snap.Categories, 2)
	assert.Equal(t, "2024-01-15", snap.ItemsUpdated)
	assert.Equal(t, "2024-01-10", snap.CategoriesUpdated)

	apple, ok := snap.Entry("apple-fresh")
	require.True(t, ok)
	assert.Equal(t, "Fresh Apples", apple.Name)
	assert.Equal(t, []string{"apples", "apple"}, apple.Aliases)
	assert.Equal(t, StatusRestricted, apple.CanadaToUSA.Status)
	assert.Equal(t, []string{"inspection"}, apple.CanadaToUSA.SpecialRequirements)
	assert.False(t, apple.USAToCanada.HasQuantityLimit())
	assert.Nil(t, apple.USAToCanada.AgeRestriction)
	assert.Equal(t, []SourceRef{{Name: "CBP", URL: "https://www.cbp.gov", Type: SourceCBP}}, apple.Sources)

	wine, ok := snap.Entry("wine")
	require.True(t, ok)
	assert.Equal(t, "alcohol-general", wine.ParentRegulationID)
	require.NotNil(t, wine.USAToCanada.QuantityLimit)
	assert.Equal(t, QuantityLimit{Amount: 1.5, Unit: "liters", Period: PeriodPerPerson}, *wine.USAToCanada.QuantityLimit)
	require.NotNil(t, wine.USAToCanada.AgeRestriction)
	assert.Equal(t, 19, *wine.USAToCanada.AgeRestriction)
	assert.Equal(t, 21, *wine.CanadaToUSA.AgeRestriction)
	assert.Equal(t, "alcohol-general", wine.USAToCanada.InheritedFrom)

	cat, ok := snap.Category("alcohol")
	require.True(t, ok)
	assert.Equal(t, "🍷", cat.Icon)
	assert.NoError(t, loader.Close())
}

func TestLoader_LoadYAML(t *testing.T) {
	itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.yaml", testItemsYAML, "categories.yml", testCategoriesYAML)
	loader := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024})

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Entries, 1)

	lemon := snap.Entries[0]
	assert.Equal(t, "lemon", lemon.ID)
	assert.Equal(t, StatusProhibited, lemon.CanadaToUSA.Status)
	require.NotNil(t, lemon.USAToCanada.QuantityLimit)
	assert.InDelta(t, 5.0, lemon.USAToCanada.QuantityLimit.Amount, 0.0001)
	assert.Equal(t, PeriodPerTrip, lemon.USAToCanada.QuantityLimit.Period)
	assert.Equal(t, SourceOther, lemon.Sources[0].Type)
	assert.Equal(t, "2024-02-01", snap.CategoriesUpdated)
}

func TestLoader_LoadYAMLUnquotedDates(t *testing.T) {
	items := strings.ReplaceAll(testItemsYAML, `"2024-02-01"`, `2024-02-01`)
	cats := strings.ReplaceAll(testCategoriesYAML, `"2024-02-01"`, `2024-02-01`)
	itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.yaml", items, "categories.yaml", cats)

	snap, err := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024}).
		Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "2024-02-01", snap.Entries[0].LastUpdated)
	assert.Equal(t, "2024-02-01", snap.ItemsUpdated)
	assert.Equal(t, "2024-02-01", snap.CategoriesUpdated)
}

func TestLoader_NumberLiterals(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		wantPath string
		wantKind ErrorKind
	}{
		{name: "decimal age", from: `"ageRestriction": 19`, to: `"ageRestriction": 18.0`,
			wantPath: "items[1].usaToCanada.ageRestriction", wantKind: KindWrongType},
		{name: "age beyond int64", from: `"ageRestriction": 19`, to: `"ageRestriction": 99999999999999999999`,
			wantPath: "items[1].usaToCanada.ageRestriction", wantKind: KindOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, testItemsJSON, tt.from)
			items := strings.Replace(testItemsJSON, tt.from, tt.to, 1)
			itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.json", items, "categories.json", testCategoriesJSON)

			_, err := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024}).
				Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog))
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.wantPath, verrs[0].Path)
			assert.Equal(t, tt.wantKind, verrs[0].Kind)
		})
	}

	t.Run("decimal item count", func(t *testing.T) {
		cats := strings.Replace(testCategoriesJSON, `"itemCount": 1}`, `"itemCount": 3.0}`, 1)
		itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.json", testItemsJSON, "categories.json", cats)
		_, err := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024}).
			Load(context.Background())
		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs), "got %v", err)
		assert.Equal(t, "categories[0].itemCount", verrs[0].Path)
		assert.Equal(t, KindWrongType, verrs[0].Kind)
	})

	t.Run("trailing data", func(t *testing.T) {
		itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.json", testItemsJSON+" {}", "categories.json", testCategoriesJSON)
		_, err := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024}).
			Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})
}

func TestLoader_MixedFormats(t *testing.T) {
	itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.json", testItemsJSON, "categories.yaml", testCategoriesYAML)
	snap, err := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024}).
		Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
	assert.Len(t, snap.Categories, 1)
}

func TestLoader_InvalidCatalog(t *testing.T) {
	items := strings.Replace(testItemsJSON, `"status": "restricted"`, `"status": "banned"`, 1)
	itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.json", items, "categories.json", testCategoriesJSON)
	loader := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024})

	snap, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
	assert.Contains(t, err.Error(), itemsPath)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "items[0].canadaToUsa.status", verrs[0].Path)
	assert.Equal(t, KindInvalidEnum, verrs[0].Kind)
}

func TestLoader_InvalidCategories(t *testing.T) {
	cats := strings.Replace(testCategoriesJSON, `"itemCount": 1}`, `"itemCount": -1}`, 1)
	itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.json", testItemsJSON, "categories.json", cats)

	_, err := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024}).
		Load(context.Background())
	require.Error(t, err)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "categories[0].itemCount", verrs[0].Path)
	assert.Equal(t, KindOutOfRange, verrs[0].Kind)
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	itemsPath, catsPath := writeCatalog(t, dir, "items.json", testItemsJSON, "categories.json", testCategoriesJSON)
	brokenPath := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(brokenPath, []byte(`{"items": [`), 0600))
	txtPath := filepath.Join(dir, "items.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(testItemsJSON), 0600))

	tests := []struct {
		name    string
		params  Params
		wantErr string
	}{
		{
			name:    "missing items file",
			params:  Params{ItemsFile: filepath.Join(dir, "nope.json"), CategoriesFile: catsPath, MaxFileSize: 1024 * 1024},
			wantErr: "file not found",
		},
		{
			name:    "missing categories file",
			params:  Params{ItemsFile: itemsPath, CategoriesFile: filepath.Join(dir, "nope.yaml"), MaxFileSize: 1024 * 1024},
			wantErr: "file not found",
		},
		{
			name:    "malformed json",
			params:  Params{ItemsFile: brokenPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024},
			wantErr: "failed to parse",
		},
		{
			name:    "unsupported extension",
			params:  Params{ItemsFile: txtPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024},
			wantErr: "unsupported catalog file extension",
		},
		{
			name:    "file too large",
			params:  Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 100},
			wantErr: "file too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := NewLoader(tt.params).Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, snap)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, errors.Is(err, ErrInvalidCatalog))
		})
	}
}

func TestLoader_ContextCanceled(t *testing.T) {
	itemsPath, catsPath := writeCatalog(t, t.TempDir(), "items.json", testItemsJSON, "categories.json", testCategoriesJSON)
	loader := NewLoader(Params{ItemsFile: itemsPath, CategoriesFile: catsPath, MaxFileSize: 1024 * 1024})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoader_SampleData(t *testing.T) {
	loader := NewLoader(Params{
		ItemsFile:      filepath.Join("..", "..", "data", "items.json"),
		CategoriesFile: filepath.Join("..", "..", "data", "categories.json"),
		MaxFileSize:    5 * 1024 * 1024,
	})

	snap, err := loader.Load(context.Background())
	require.NoError(t, err, "shipped catalog must be valid")
	require.NotEmpty(t, snap.Entries)

	// stored category counts match the shipped entries
	counts := make(map[string]int)
	for _, e := range snap.Entries {
		counts[e.Category]++
		if e.ParentRegulationID != "" {
			_, ok := snap.Entry(e.ParentRegulationID)
			assert.True(t, ok, "%s has dangling parent %s", e.ID, e.ParentRegulationID)
		}
	}
	for _, c := range snap.Categories {
		assert.Equal(t, c.ItemCount, counts[c.ID], "category %s", c.ID)
	}
}
