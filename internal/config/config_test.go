package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dshctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
target:
  platform: np-aws-lz-dsh
  tenant: greenbox-dev
  user: "1903:1903"
processors-dir: ./procs
separator: ";"
resources:
  topics:
    topica: stream.topica.greenbox-dev
log:
  level: debug
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "greenbox-dev", s.Target.Tenant)
	assert.Equal(t, "1903:1903", s.Target.User)
	assert.Equal(t, "./procs", s.ProcessorsDir)
	assert.Equal(t, ";", s.Separator)
	assert.Equal(t, "stream.topica.greenbox-dev", s.Resources.Topics["topica"])
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "https://api.dsh-dev.dsh.np.aws.kpn.com/resources/v0", s.Target.RestAPIURL)
	assert.Equal(t, "dev-lz-dsh", s.Target.Realm)
	assert.NoError(t, s.Validate())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	path := writeConfig(t, `
target:
  platform: poc-aws-dsh
  tenant: from-file
`)
	t.Setenv("DSHCTL_TARGET_TENANT", "from-env")
	t.Setenv("DSHCTL_TARGET_TOKEN", "secret-token")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Target.Tenant)
	assert.Equal(t, "secret-token", s.Target.Token)
	assert.Equal(t, "from-env.poc.kpn-dsh.com", s.Target.AppDomain)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "target:\n  platform: custom\n")
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSeparator, s.Separator)
	assert.Equal(t, "processors", s.ProcessorsDir)
	assert.Equal(t, "info", s.Log.Level)
}

func TestTarget_WithPlatformDefaults(t *testing.T) {
	explicit := Target{
		Platform:   "prod-azure-dsh",
		Tenant:     "acme",
		RestAPIURL: "https://example.com/api",
	}
	got := explicit.WithPlatformDefaults()

	assert.Equal(t, "https://example.com/api", got.RestAPIURL, "explicit values must not be replaced")
	assert.Equal(t, "prod-azure-dsh", got.Realm)
	assert.Equal(t, "https://console.az.kpn-dsh.com", got.ConsoleURL)
	assert.Equal(t, "acme.marathon.mesos", got.InternalDomain)

	unknown := Target{Platform: "somewhere", Tenant: "acme"}
	assert.Equal(t, unknown, unknown.WithPlatformDefaults())
}

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{name: "complete", target: Target{Platform: "p", Tenant: "t", RestAPIURL: "https://x"}},
		{name: "missing platform", target: Target{Tenant: "t", RestAPIURL: "https://x"}, wantErr: true},
		{name: "missing tenant", target: Target{Platform: "p", RestAPIURL: "https://x"}, wantErr: true},
		{name: "missing api url", target: Target{Platform: "p", Tenant: "t"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTLSConfig_ClientConfig(t *testing.T) {
	cfg, err := TLSConfig{}.ClientConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = TLSConfig{SkipVerify: true}.ClientConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.True(t, cfg.InsecureSkipVerify)

	assert.Error(t, TLSConfig{CAFile: filepath.Join(t.TempDir(), "nope.pem")}.Validate())
}
