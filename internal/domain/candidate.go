package domain

// Candidate holds the two signals read off a profile page. Values are "" when
// the field could not be extracted. Candidates are ephemeral: produced fresh
// per extraction pass, matched, and discarded; they are never persisted or
// sent anywhere.
type Candidate struct {
	Location string `json:"location,omitempty"`
	Company  string `json:"company,omitempty"`
}

// Failed reports the distinct "could not read this profile" outcome. It is
// surfaced to the UI as unable-to-read, never conflated with "no restriction".
func (c Candidate) Failed() bool {
	return c.Location == "" && c.Company == ""
}

// Equal is used for the idempotence check: a re-extracted candidate identical
// to the last matched one skips re-matching and re-rendering.
func (c Candidate) Equal(o Candidate) bool {
	return c.Location == o.Location && c.Company == o.Company
}

// ScanOutcome labels a completed scan pass for status reporting.
type ScanOutcome string

const (
	ScanSuccess ScanOutcome = "success"
	ScanFailed  ScanOutcome = "failed"
	ScanNoData  ScanOutcome = "no_data"
)

// ScanStatus is pushed to the status collaborator (popup/badge) after each
// pass. The core does not await acknowledgement.
type ScanStatus struct {
	Status   ScanOutcome `json:"status"`
	Location string      `json:"location,omitempty"`
	Company  string      `json:"company,omitempty"`
	Severity string      `json:"severity,omitempty"`
	Message  string      `json:"message,omitempty"`
}
