// Package mikrotik generates RouterOS provisioning scripts from billing data.
// The output is plain .rsc text meant to be pasted into a MikroTik terminal
// or imported with /import; nothing here talks to a router directly.
package mikrotik

import (
	"fmt"
	"strings"
	"time"

	"github.com/lintasbill/backend/internal/models"
)

// ScriptOptions carries the branding and addressing knobs from settings.
type ScriptOptions struct {
	CompanyName      string
	IsolationProfile string
	LocalAddress     string
}

func (o ScriptOptions) isolationProfile() string {
	if o.IsolationProfile == "" {
		return "isolir"
	}
	return o.IsolationProfile
}

func (o ScriptOptions) localAddress() string {
	if o.LocalAddress == "" {
		return "10.10.0.1"
	}
	return o.LocalAddress
}

// GenerateScript builds the full provisioning script: PPP profiles for every
// active package, PPP secrets for every customer, and the isolation
// address-list commands.
func GenerateScript(packages []models.Package, customers []models.Customer, opts ScriptOptions) string {
	var b strings.Builder
	writeHeader(&b, opts)
	b.WriteString(ProfileScript(packages, opts))
	b.WriteString("\n")
	b.WriteString(SecretScript(customers, opts))
	b.WriteString("\n")
	b.WriteString(AddressListScript(customers, opts))
	return b.String()
}

// ProfileScript emits one PPP profile per active package plus the isolation
// profile. The isolation profile tags its sessions into the isolation
// address-list so firewall rules can redirect them.
func ProfileScript(packages []models.Package, opts ScriptOptions) string {
	var b strings.Builder
	b.WriteString("# PPP profiles\n")
	b.WriteString(fmt.Sprintf("/ppp profile add name=%s local-address=%s rate-limit=\"64k/64k\" address-list=%s comment=\"profil isolir\"\n",
		quote(opts.isolationProfile()), opts.localAddress(), quote(opts.isolationProfile())))

	for _, pkg := range packages {
		if !pkg.IsActive {
			continue
		}
		b.WriteString(fmt.Sprintf("/ppp profile add name=%s local-address=%s", quote(ProfileName(pkg.Name)), opts.localAddress()))
		if pkg.RateLimit != "" {
			b.WriteString(fmt.Sprintf(" rate-limit=%s", quote(pkg.RateLimit)))
		}
		b.WriteString(fmt.Sprintf(" comment=%s\n", quote(pkg.Name)))
	}
	return b.String()
}

// SecretScript emits one PPP secret per customer with PPPoE credentials.
// Isolated customers land on the isolation profile; inactive customers are
// skipped entirely.
func SecretScript(customers []models.Customer, opts ScriptOptions) string {
	var b strings.Builder
	b.WriteString("# PPP secrets\n")
	for _, cust := range customers {
		if cust.Status == models.CustomerStatusInactive || cust.PPPoEUsername == "" {
			continue
		}

		profile := opts.isolationProfile()
		if cust.Status == models.CustomerStatusActive {
			if cust.Package != nil {
				profile = ProfileName(cust.Package.Name)
			} else {
				profile = "default"
			}
		}

		b.WriteString(fmt.Sprintf("/ppp secret add name=%s password=%s service=pppoe profile=%s comment=%s\n",
			quote(cust.PPPoEUsername), quote(cust.PPPoEPassword), quote(profile), quote(cust.Name)))
	}
	return b.String()
}

// AddressListScript emits address-list entries for isolated customers,
// resolving each address from the active PPP session at run time. The
// :do/on-error wrapper keeps offline customers from aborting the script.
func AddressListScript(customers []models.Customer, opts ScriptOptions) string {
	list := opts.isolationProfile()
	var b strings.Builder
	b.WriteString("# isolated customers\n")
	b.WriteString(fmt.Sprintf("/ip firewall address-list remove [find list=%s]\n", quote(list)))
	for _, cust := range customers {
		if cust.Status != models.CustomerStatusIsolated || cust.PPPoEUsername == "" {
			continue
		}
		b.WriteString(fmt.Sprintf(":do { /ip firewall address-list add list=%s address=[/ppp active get [find name=%s] address] comment=%s } on-error={}\n",
			quote(list), quote(cust.PPPoEUsername), quote(cust.Name)))
	}
	return b.String()
}

// ProfileName derives a stable RouterOS profile name from a package name,
// e.g. "Home 10M" becomes "pkg-home-10m".
func ProfileName(packageName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(packageName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "paket"
	}
	return "pkg-" + name
}

func writeHeader(b *strings.Builder, opts ScriptOptions) {
	company := opts.CompanyName
	if company == "" {
		company = "LintasBill"
	}
	b.WriteString(fmt.Sprintf("# %s - RouterOS provisioning script\n", company))
	b.WriteString(fmt.Sprintf("# generated %s\n", time.Now().Format("2006-01-02 15:04:05")))
	b.WriteString("\n")
}

// quote wraps a value in RouterOS double quotes, escaping embedded quotes
// and backslashes.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
