// internal/model/status.go
package model

// PrinterStatus is the normalized status reported by every transport
type PrinterStatus struct {
	Media TapeSize `json:"media"`
	Ready bool     `json:"ready"`
}

// DefaultRemoteStatus is reported when a relayed printer cannot be queried
func DefaultRemoteStatus() *PrinterStatus {
	return &PrinterStatus{Media: Tape24mm, Ready: false}
}
