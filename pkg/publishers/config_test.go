package publishers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigsYAML(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "s3cret")
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: " bot-queue "
    type: QUEUE
    queue:
      provider: AWS-SQS
      sqs:
        queue_url: https://sqs.us-east-1.amazonaws.com/123/translated
        region: us-east-1
  - id: slack
    type: http
    http:
      url: https://hooks.example.com/x
      headers:
        Authorization: "Bearer ${TEST_WEBHOOK_TOKEN}"
        " ": dropped
  - id: paused
    type: http
    enabled: false
    http:
      url: https://hooks.example.com/paused
`)

	cfgs, err := LoadConfigs(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)

	q := cfgs[0]
	assert.Equal(t, "bot-queue", q.ID)
	assert.Equal(t, TypeQueue, q.Type)
	assert.Equal(t, QueueProviderAWSSQS, q.Queue.Provider)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/translated", q.Queue.SQS.QueueURL)
	assert.Equal(t, "us-east-1", q.Queue.SQS.Region)
	assert.False(t, q.Queue.SQS.static())

	h := cfgs[1]
	assert.Equal(t, "POST", h.HTTP.Method)
	assert.Equal(t, httpDefaultTimeoutSeconds, h.HTTP.TimeoutSeconds)
	assert.Equal(t, map[string]string{"Authorization": "Bearer s3cret"}, h.HTTP.Headers)
}

func TestLoadConfigsKeepsBareDollar(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_TOKEN", "s3cret")
	t.Setenv("ecret", "leaked")
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: hook
    type: http
    http:
      url: https://hooks.example.com/x
      headers:
        X-Secret: "p@$$w0rd$ecret"
        Authorization: "Bearer ${TEST_WEBHOOK_TOKEN}"
`)

	cfgs, err := LoadConfigs(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Equal(t, map[string]string{
		"X-Secret":      "p@$$w0rd$ecret",
		"Authorization": "Bearer s3cret",
	}, cfgs[0].HTTP.Headers)
}

func TestLoadConfigsJSON(t *testing.T) {
	path := writeFile(t, "publishers.json", `{"publishers":[{"id":"topic","type":"queue","queue":{"provider":"gcp","gcp":{"project_id":"p","topic":"t"}}}]}`)

	cfgs, err := LoadConfigs(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	assert.Equal(t, "t", cfgs[0].Queue.GCP.Topic)
}

func TestLoadConfigsValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing id",
			content: "publishers:\n  - type: http\n    http:\n      url: https://x\n",
			wantErr: "id is required",
		},
		{
			name:    "unknown type",
			content: "publishers:\n  - id: a\n    type: smtp\n",
			wantErr: `type "smtp" not supported`,
		},
		{
			name:    "http without url",
			content: "publishers:\n  - id: a\n    type: http\n    http: {}\n",
			wantErr: "http.url is required",
		},
		{
			name:    "sns without topic",
			content: "publishers:\n  - id: a\n    type: queue\n    queue:\n      provider: aws-sns\n      sns: {}\n",
			wantErr: "sns.topic_arn is required",
		},
		{
			name:    "half static credentials",
			content: "publishers:\n  - id: a\n    type: queue\n    queue:\n      provider: aws-sqs\n      sqs:\n        queue_url: https://q\n        access_key_id: AKIA\n",
			wantErr: "must be set together",
		},
		{
			name:    "unsupported provider",
			content: "publishers:\n  - id: a\n    type: queue\n    queue:\n      provider: azure\n",
			wantErr: `queue provider "azure" not supported`,
		},
		{
			name:    "duplicate id",
			content: "publishers:\n  - id: a\n    type: http\n    http:\n      url: https://x\n  - id: a\n    type: http\n    http:\n      url: https://y\n",
			wantErr: "duplicate publisher id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfigs(writeFile(t, "p.yaml", tc.content))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoadConfigsFileErrors(t *testing.T) {
	_, err := LoadConfigs("")
	assert.Error(t, err)

	_, err = LoadConfigs(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read publishers file")

	_, err = LoadConfigs(writeFile(t, "p.toml", "x = 1"))
	assert.ErrorContains(t, err, "not recognized")
}
