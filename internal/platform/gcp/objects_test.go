package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	bucket, object, err := ParseURL("gs://hetionet/v1.0/nodes.tsv.gz")
	require.NoError(t, err)
	assert.Equal(t, "hetionet", bucket)
	assert.Equal(t, "v1.0/nodes.tsv.gz", object)

	for _, bad := range []string{"s3://b/o", "gs://bucket", "gs:///object", "nodes.tsv"} {
		_, _, err := ParseURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestConfigFromEnvPrefersInlineJSON(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", `{"type":"service_account"}`)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/sa.json")
	t.Setenv("STORAGE_EMULATOR_HOST", "")

	cfg := ConfigFromEnv(Config{EmulatorHost: "http://fake-gcs:4443/"})
	assert.Equal(t, `{"type":"service_account"}`, cfg.Credentials)
	assert.Equal(t, "http://fake-gcs:4443", cfg.emulator())
}

func TestClientOptions(t *testing.T) {
	assert.Len(t, Config{}.clientOptions(), 1)
	assert.Len(t, Config{Credentials: "/etc/sa.json"}.clientOptions(), 2)

	t.Setenv("STORAGE_EMULATOR_HOST", "")
	assert.Len(t, Config{EmulatorHost: "http://localhost:4443"}.clientOptions(), 1)
}
