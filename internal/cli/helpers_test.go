package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/symtab/internal/config"
	"github.com/roach88/symtab/internal/testutil"
)

const methodsManifest = `package: httpsym
symbols:
  - name: MethodGet
    text: GET
  - name: MethodPost
    text: POST
`

// testRootOptions returns options with deterministic registry IDs.
func testRootOptions(format string) *RootOptions {
	return &RootOptions{
		Format:      format,
		IDGenerator: testutil.NewFixedIDGenerator("cli-test"),
	}
}

// decodeResponse parses a JSON CLI response, decoding its data into data
// when non-nil.
func decodeResponse(t *testing.T, buf *bytes.Buffer, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw), "output: %s", buf.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

// configWith parses a config document, failing the test on error.
func configWith(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}
