package catalog_test

import (
	"testing"

	"been-map/internal/catalog"
	"been-map/internal/identity"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	c := catalog.Default()
	assert.Equal(t, 20, c.Len())

	fr, ok := c.Lookup("FR")
	assert.True(t, ok)
	assert.Equal(t, catalog.Country{Code: "FR", Name: "France", Continent: "Europe"}, fr)

	_, ok = c.Lookup("XK")
	assert.False(t, ok)

	assert.Equal(t, []string{"North America", "South America", "Europe", "Asia", "Oceania", "Africa"}, c.Continents())
	assert.Len(t, c.InContinent("europe"), 5)
}

func TestNewNormalizes(t *testing.T) {
	c := catalog.New([]catalog.Country{
		{Code: " fr ", Name: " France ", Continent: "Europe"},
		{Code: "FR", Name: "Duplicate", Continent: "Europe"},
		{Code: "", Name: "Nowhere"},
		{Code: "jp", Name: "Japan", Continent: "Asia"},
	})
	assert.Equal(t, 2, c.Len())
	fr, _ := c.Lookup("FR")
	assert.Equal(t, "France", fr.Name)
	assert.Equal(t, []identity.Code{"FR", "JP"}, []identity.Code{c.Countries()[0].Code, c.Countries()[1].Code})
}

func TestLabel(t *testing.T) {
	c := catalog.Default()
	assert.Equal(t, "United Kingdom", c.Label("GB", "United Kingdom of Great Britain"))
	assert.Equal(t, "Kosovo", c.Label(identity.Unresolvable, "Kosovo"))
	assert.Equal(t, "Peru", c.Label("PE", "Peru"))

	var nilCatalog *catalog.Catalog
	assert.Equal(t, "Peru", nilCatalog.Label("PE", "Peru"))
	assert.Equal(t, 0, nilCatalog.Len())
}

func TestCountriesIsACopy(t *testing.T) {
	c := catalog.Default()
	list := c.Countries()
	list[0].Name = "changed"
	us, _ := c.Lookup("US")
	assert.Equal(t, "United States", us.Name)
}
