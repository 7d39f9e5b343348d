package report

import (
	"encoding/json"
	"io"

	"github.com/nself-org/secretscan/pkg/model"
)

// JSON emits the full ScanResult for downstream automation. Field order
// follows the struct declaration and is stable across runs; findings are
// sorted before encoding.
func JSON(result *model.ScanResult, w io.Writer) error {
	out := *result
	out.Findings = sortedFindings(result.Findings)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}
