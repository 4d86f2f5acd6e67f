// internal/protocol/snmp.go
package protocol

import (
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"
)

// Printer MIB objects queried for status
const (
	// prtInputMediaName, a descriptor such as "24mm(0.94")"
	MediaOID = ".1.3.6.1.2.1.43.8.2.1.12.1.1"

	// prtInputStatus of the tape cassette
	StatusOID = ".1.3.6.1.2.1.43.8.2.1.11.1.1"
)

// readyStatusCodes are the prtInputStatus values reported while the printer can print
var readyStatusCodes = map[int64]bool{0: true, 2: true, 4: true, 6: true}

// SNMPOptions holds SNMP session parameters
type SNMPOptions struct {
	Community string
	Version   gosnmp.SnmpVersion
	Port      uint16
	Timeout   time.Duration
	Retries   int
}

// SNMPClient abstracts gosnmp for easier testing
type SNMPClient interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	Close() error
}

// SNMPClientFactory opens an SNMP session to target
type SNMPClientFactory func(target string, opts SNMPOptions) (SNMPClient, error)

// ParseSNMPVersion converts a configured version string
func ParseSNMPVersion(v string) (gosnmp.SnmpVersion, error) {
	switch v {
	case "1", "v1":
		return gosnmp.Version1, nil
	case "2", "2c", "v2c":
		return gosnmp.Version2c, nil
	default:
		return gosnmp.Version2c, fmt.Errorf("unsupported SNMP version: %s", v)
	}
}

// gosnmpClient implements SNMPClient by delegating to gosnmp.GoSNMP
type gosnmpClient struct {
	conn *gosnmp.GoSNMP
}

// newGoSNMPClient opens a community based session. For UDP this only binds
// the local socket, so it succeeds even when the printer is offline.
func newGoSNMPClient(target string, opts SNMPOptions) (SNMPClient, error) {
	if target == "" {
		return nil, fmt.Errorf("SNMP target required")
	}

	conn := &gosnmp.GoSNMP{
		Target:    target,
		Port:      opts.Port,
		Community: opts.Community,
		Version:   opts.Version,
		Timeout:   opts.Timeout,
		Retries:   opts.Retries,
	}

	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("failed to open SNMP session to %s: %w", target, err)
	}

	return &gosnmpClient{conn: conn}, nil
}

func (c *gosnmpClient) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	return c.conn.Get(oids)
}

func (c *gosnmpClient) Close() error {
	if c.conn != nil && c.conn.Conn != nil {
		return c.conn.Conn.Close()
	}
	return nil
}

// getVariable fetches a single OID and returns its value
func getVariable(client SNMPClient, oid string) (gosnmp.SnmpPDU, error) {
	packet, err := client.Get([]string{oid})
	if err != nil {
		return gosnmp.SnmpPDU{}, fmt.Errorf("SNMP get %s failed: %w", oid, err)
	}
	if packet == nil || len(packet.Variables) == 0 {
		return gosnmp.SnmpPDU{}, fmt.Errorf("SNMP get %s returned no variables", oid)
	}

	pdu := packet.Variables[0]
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.Null:
		return gosnmp.SnmpPDU{}, fmt.Errorf("SNMP object %s not available", oid)
	}

	return pdu, nil
}

// pduString decodes a string valued variable
func pduString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
