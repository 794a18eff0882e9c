package mikrotik

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lintasbill/backend/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func testFixtures() ([]models.Package, []models.Customer) {
	packages := []models.Package{
		{ID: 1, Name: "Home 10M", RateLimit: "10M/10M", IsActive: true},
		{ID: 2, Name: "Home 20M", RateLimit: "20M/20M", IsActive: true},
		{ID: 3, Name: "Paket Lama", RateLimit: "5M/5M", IsActive: false},
	}
	customers := []models.Customer{
		{ID: 1, Name: "Budi", PPPoEUsername: "budi01", PPPoEPassword: "rahasia", Status: models.CustomerStatusActive,
			PackageID: uintPtr(1), Package: &packages[0]},
		{ID: 2, Name: "Sari", PPPoEUsername: "sari02", PPPoEPassword: "rahasia2", Status: models.CustomerStatusIsolated,
			PackageID: uintPtr(2), Package: &packages[1]},
		{ID: 3, Name: "Tono", PPPoEUsername: "tono03", PPPoEPassword: "rahasia3", Status: models.CustomerStatusInactive},
		{ID: 4, Name: "Tanpa Akun", Status: models.CustomerStatusActive},
	}
	return packages, customers
}

func TestProfileName(t *testing.T) {
	assert.Equal(t, "pkg-home-10m", ProfileName("Home 10M"))
	assert.Equal(t, "pkg-bisnis-dedicated", ProfileName("Bisnis Dedicated"))
	assert.Equal(t, "pkg-paket", ProfileName("[]"))
}

func TestProfileScriptSkipsInactivePackages(t *testing.T) {
	packages, _ := testFixtures()
	script := ProfileScript(packages, ScriptOptions{})

	assert.Contains(t, script, `name="pkg-home-10m"`)
	assert.Contains(t, script, `rate-limit="10M/10M"`)
	assert.Contains(t, script, `name="pkg-home-20m"`)
	assert.NotContains(t, script, "pkg-paket-lama")
}

func TestProfileScriptDefinesIsolationProfile(t *testing.T) {
	packages, _ := testFixtures()
	script := ProfileScript(packages, ScriptOptions{IsolationProfile: "karantina", LocalAddress: "172.16.0.1"})

	assert.Contains(t, script, `name="karantina"`)
	assert.Contains(t, script, `address-list="karantina"`)
	assert.Contains(t, script, "local-address=172.16.0.1")
}

func TestSecretScriptRoutesByStatus(t *testing.T) {
	_, customers := testFixtures()
	script := SecretScript(customers, ScriptOptions{})
	lines := strings.Split(strings.TrimSpace(script), "\n")

	// header + budi + sari; tono is inactive, tanpa akun has no username
	require.Len(t, lines, 3)
	assert.Contains(t, script, `name="budi01" password="rahasia" service=pppoe profile="pkg-home-10m"`)
	assert.Contains(t, script, `name="sari02" password="rahasia2" service=pppoe profile="isolir"`)
	assert.NotContains(t, script, "tono03")
}

func TestSecretScriptFallsBackWithoutPackage(t *testing.T) {
	customers := []models.Customer{
		{Name: "Baru", PPPoEUsername: "baru01", PPPoEPassword: "x", Status: models.CustomerStatusActive},
	}
	script := SecretScript(customers, ScriptOptions{})
	assert.Contains(t, script, `profile="default"`)
}

func TestAddressListScriptOnlyIsolated(t *testing.T) {
	_, customers := testFixtures()
	script := AddressListScript(customers, ScriptOptions{})

	assert.Contains(t, script, `/ip firewall address-list remove [find list="isolir"]`)
	assert.Contains(t, script, `[find name="sari02"]`)
	assert.NotContains(t, script, "budi01")
}

func TestGenerateScriptContainsAllSections(t *testing.T) {
	packages, customers := testFixtures()
	script := GenerateScript(packages, customers, ScriptOptions{CompanyName: "Lintas Jaya"})

	assert.True(t, strings.HasPrefix(script, "# Lintas Jaya"))
	assert.Contains(t, script, "# PPP profiles")
	assert.Contains(t, script, "# PPP secrets")
	assert.Contains(t, script, "# isolated customers")
}

func TestQuoteEscapes(t *testing.T) {
	assert.Equal(t, `"plain"`, quote("plain"))
	assert.Equal(t, `"a \"b\" c"`, quote(`a "b" c`))
	assert.Equal(t, `"back\\slash"`, quote(`back\slash`))
}
