package locator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vishwaguru-be/locator"
)

func loadSample(t *testing.T) *locator.Directory {
	t.Helper()
	dir, err := locator.Load(
		filepath.Join("..", "data", "mh_pincode_sample.json"),
		filepath.Join("..", "data", "mh_mla_sample.json"),
	)
	require.NoError(t, err)
	return dir
}

func TestFindConstituency(t *testing.T) {
	dir := loadSample(t)

	c, ok := dir.FindConstituency("400001")
	require.True(t, ok)
	assert.Equal(t, "Mumbai City", c.District)
	assert.Equal(t, "Maharashtra", c.State)
	// First occurrence wins over the later Mumbadevi row.
	assert.Equal(t, "Colaba", c.AssemblyConstituency)

	for _, bad := range []string{"12345", "abcdef", "4000011", "", "40000a", " 40000"} {
		_, ok := dir.FindConstituency(bad)
		assert.False(t, ok, bad)
	}

	_, ok = dir.FindConstituency("000000")
	assert.False(t, ok)
}

func TestFindRepresentative(t *testing.T) {
	dir := loadSample(t)

	r, ok := dir.FindRepresentative("Colaba")
	require.True(t, ok)
	assert.Equal(t, "Rahul Narwekar", r.Name)
	assert.True(t, r.Available())

	_, ok = dir.FindRepresentative("Atlantis")
	assert.False(t, ok)
	_, ok = dir.FindRepresentative("")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	dir := loadSample(t)

	t.Run("full record", func(t *testing.T) {
		c, err := dir.Resolve("411038")
		require.NoError(t, err)
		assert.Equal(t, "Kothrud", c.AssemblyConstituency)
		assert.Equal(t, "Chandrakant Patil", c.MLA.Name)
		assert.Equal(t, "https://pgportal.gov.in/", c.GrievanceLinks.CentralCPGRAMS)
		assert.Equal(t, "https://aaplesarkar.mahaonline.gov.in/en", c.GrievanceLinks.MaharashtraPortal)
		assert.Empty(t, c.Description)
	})

	t.Run("constituency without mla", func(t *testing.T) {
		c, err := dir.Resolve("400076")
		require.NoError(t, err)
		assert.Equal(t, "Chandivali", c.AssemblyConstituency)
		assert.Equal(t, locator.UnavailableRepresentative(), c.MLA)
		assert.Equal(t, "We found that 400076 belongs to Mumbai Suburban district.", c.Description)
	})

	t.Run("district only", func(t *testing.T) {
		c, err := dir.Resolve("444601")
		require.NoError(t, err)
		assert.Equal(t, "Unknown (District Found)", c.AssemblyConstituency)
		assert.Equal(t, "Amravati", c.District)
		assert.False(t, c.MLA.Available())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := dir.Resolve("000000")
		assert.ErrorIs(t, err, locator.ErrUnknownPincode)
		_, err = dir.Resolve("12ab56")
		assert.ErrorIs(t, err, locator.ErrInvalidPincode)
	})
}

func TestDistrictsSortedAndDistinct(t *testing.T) {
	dir := loadSample(t)
	districts := dir.Districts()

	assert.IsIncreasing(t, districts)
	assert.Contains(t, districts, "Pune")
	assert.Contains(t, districts, "Mumbai City")

	districts[0] = "mutated"
	assert.NotEqual(t, "mutated", dir.Districts()[0])
}

func TestLoadErrors(t *testing.T) {
	_, err := locator.Load("missing.json", "missing.json")
	assert.Error(t, err)

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))
	_, err = locator.Load(broken, broken)
	assert.Error(t, err)
}

func TestLoadResponsibilityMap(t *testing.T) {
	m, err := locator.LoadResponsibilityMap(filepath.Join("..", "data", "responsibility_map.json"))
	require.NoError(t, err)
	assert.Contains(t, m, "Road")

	empty, err := locator.LoadResponsibilityMap(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
