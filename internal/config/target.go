package config

import (
	"fmt"
	"sort"
)

// Target identifies the tenant on a DSH platform that deployments go to,
// together with the platform urls and domains that templates may refer to.
type Target struct {
	Platform           string `mapstructure:"platform" json:"platform" yaml:"platform"`
	Tenant             string `mapstructure:"tenant" json:"tenant" yaml:"tenant"`
	User               string `mapstructure:"user" json:"user" yaml:"user"`
	Realm              string `mapstructure:"realm" json:"realm" yaml:"realm"`
	Token              string `mapstructure:"token" json:"-" yaml:"-"`
	RestAPIURL         string `mapstructure:"rest-api-url" json:"restApiUrl" yaml:"rest-api-url"`
	RestAccessTokenURL string `mapstructure:"rest-access-token-url" json:"restAccessTokenUrl" yaml:"rest-access-token-url"`
	ConsoleURL         string `mapstructure:"console-url" json:"consoleUrl" yaml:"console-url"`
	MonitoringURL      string `mapstructure:"monitoring-url" json:"monitoringUrl" yaml:"monitoring-url"`
	AppDomain          string `mapstructure:"app-domain" json:"appDomain" yaml:"app-domain"`
	PublicVhostsDomain string `mapstructure:"public-vhosts-domain" json:"publicVhostsDomain" yaml:"public-vhosts-domain"`
	InternalDomain     string `mapstructure:"internal-domain" json:"internalDomain" yaml:"internal-domain"`
}

// platformInfo holds the fixed properties of a known DSH platform
type platformInfo struct {
	realm  string
	domain string
}

var platforms = map[string]platformInfo{
	"np-aws-lz-dsh":   {realm: "dev-lz-dsh", domain: "dsh-dev.dsh.np.aws.kpn.com"},
	"prod-aws-lz-dsh": {realm: "prod-lz-dsh", domain: "dsh-prod.dsh.prod.aws.kpn.com"},
	"poc-aws-dsh":     {realm: "poc-dsh", domain: "poc.kpn-dsh.com"},
	"prod-azure-dsh":  {realm: "prod-azure-dsh", domain: "az.kpn-dsh.com"},
}

// KnownPlatforms returns the names of the platforms with built-in defaults
func KnownPlatforms() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithPlatformDefaults returns a copy of t where every empty url, domain and
// realm is filled in from the platform name, if the platform is known.
// Explicitly configured values are never replaced.
func (t Target) WithPlatformDefaults() Target {
	info, ok := platforms[t.Platform]
	if !ok {
		return t
	}
	fill := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	fill(&t.Realm, info.realm)
	fill(&t.PublicVhostsDomain, info.domain)
	fill(&t.RestAPIURL, fmt.Sprintf("https://api.%s/resources/v0", info.domain))
	fill(&t.RestAccessTokenURL, fmt.Sprintf("https://auth.prod.cp.kpn-dsh.com/auth/realms/%s/protocol/openid-connect/token", t.Realm))
	fill(&t.ConsoleURL, fmt.Sprintf("https://console.%s", info.domain))
	if t.Tenant != "" {
		fill(&t.AppDomain, fmt.Sprintf("%s.%s", t.Tenant, info.domain))
		fill(&t.MonitoringURL, fmt.Sprintf("https://monitoring-%s.%s", t.Tenant, info.domain))
		fill(&t.InternalDomain, fmt.Sprintf("%s.marathon.mesos", t.Tenant))
	}
	return t
}

// Validate checks the fields every platform call needs
func (t Target) Validate() error {
	if t.Platform == "" {
		return fmt.Errorf("target.platform is required")
	}
	if t.Tenant == "" {
		return fmt.Errorf("target.tenant is required")
	}
	if t.RestAPIURL == "" {
		return fmt.Errorf("target.rest-api-url is required for unknown platform %s", t.Platform)
	}
	return nil
}
