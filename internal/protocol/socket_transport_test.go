package protocol

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"label-service/internal/model"
)

type fakeSNMPClient struct {
	values map[string]gosnmp.SnmpPDU
	err    error
	closed bool
}

func (c *fakeSNMPClient) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	if c.err != nil {
		return nil, c.err
	}

	packet := &gosnmp.SnmpPacket{}
	for _, oid := range oids {
		pdu, ok := c.values[oid]
		if !ok {
			pdu = gosnmp.SnmpPDU{Name: oid, Type: gosnmp.NoSuchObject}
		}
		packet.Variables = append(packet.Variables, pdu)
	}
	return packet, nil
}

func (c *fakeSNMPClient) Close() error {
	c.closed = true
	return nil
}

func snmpValues(descriptor string, code int) map[string]gosnmp.SnmpPDU {
	return map[string]gosnmp.SnmpPDU{
		MediaOID:  {Name: MediaOID, Type: gosnmp.OctetString, Value: []byte(descriptor)},
		StatusOID: {Name: StatusOID, Type: gosnmp.Integer, Value: code},
	}
}

func newTestSocketTransport(t *testing.T, uri string, client SNMPClient) *SocketTransport {
	t.Helper()

	parts, err := url.Parse(uri)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.NewSNMPClient = func(target string, _ SNMPOptions) (SNMPClient, error) {
		return client, nil
	}

	st, err := NewSocketTransport(parts, opts, zap.NewNop())
	require.NoError(t, err)
	return st
}

func TestSocketTransport_QueryStatus(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
		code       int
		media      model.TapeSize
		ready      bool
	}{
		{"ready 24mm", "24mm(0.94\")", 2, model.Tape24mm, true},
		{"ready 9mm idle", "9mm(0.35\")", 0, model.Tape9mm, true},
		{"busy 12mm", "12mm(0.47\")", 1, model.Tape12mm, false},
		{"unknown media", "no tape", 4, model.TapeNone, true},
		{"cover open", "6mm(0.23\")", 3, model.Tape6mm, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeSNMPClient{values: snmpValues(tt.descriptor, tt.code)}
			st := newTestSocketTransport(t, "tcp://192.0.2.10", client)

			status, err := st.QueryStatus(context.Background())
			require.NoError(t, err)
			require.NotNil(t, status)

			assert.Equal(t, tt.media, status.Media)
			assert.Equal(t, tt.ready, status.Ready)
		})
	}
}

func TestSocketTransport_QueryStatusMissingObject(t *testing.T) {
	client := &fakeSNMPClient{values: map[string]gosnmp.SnmpPDU{}}
	st := newTestSocketTransport(t, "tcp://192.0.2.10", client)

	_, err := st.QueryStatus(context.Background())
	assert.Error(t, err)
}

func TestSocketTransport_QueryStatusSNMPError(t *testing.T) {
	client := &fakeSNMPClient{err: errors.New("request timeout")}
	st := newTestSocketTransport(t, "tcp://192.0.2.10", client)

	_, err := st.QueryStatus(context.Background())
	assert.Error(t, err)
}

func TestSocketTransport_SendDeliversJob(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	st := newTestSocketTransport(t, "tcp://"+ln.Addr().String(), &fakeSNMPClient{})
	job := []byte{0x1B, 0x40, 0x4D, 0x02, 0x1A}

	require.NoError(t, st.Send(context.Background(), job))
	assert.Equal(t, job, <-received)
}

func TestSocketTransport_SendConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := ln.Addr().String()
	ln.Close()

	st := newTestSocketTransport(t, "tcp://"+address, &fakeSNMPClient{})

	err = st.Send(context.Background(), []byte{0x00})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransmission)
}

func TestSocketTransport_CloseReleasesSNMP(t *testing.T) {
	client := &fakeSNMPClient{}
	st := newTestSocketTransport(t, "tcp://192.0.2.10:9101", client)
	assert.Equal(t, "192.0.2.10:9101", st.Address())

	require.NoError(t, st.Close())
	assert.True(t, client.closed)
	require.NoError(t, st.Close())

	_, err := st.QueryStatus(context.Background())
	assert.Error(t, err)
}

func TestParseSNMPVersion(t *testing.T) {
	v, err := ParseSNMPVersion("2c")
	require.NoError(t, err)
	assert.Equal(t, gosnmp.Version2c, v)

	v, err = ParseSNMPVersion("v1")
	require.NoError(t, err)
	assert.Equal(t, gosnmp.Version1, v)

	_, err = ParseSNMPVersion("3")
	assert.Error(t, err)
}
