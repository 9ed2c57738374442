package scan

import "fmt"

// Stages at which a launched scan can fail.
const (
	StageLaunch   = "launch"
	StageNavigate = "navigate"
	StageSettle   = "settle"
	StageInject   = "inject"
	StageAudit    = "audit"
	StageDecode   = "decode"
)

// ScanFailedError reports a scan that launched a browser but could not
// produce an audit.
type ScanFailedError struct {
	Stage string
	URL   string
	Err   error
}

func (e *ScanFailedError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("scan failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("scan of %s failed at %s: %v", e.URL, e.Stage, e.Err)
}

func (e *ScanFailedError) Unwrap() error { return e.Err }
