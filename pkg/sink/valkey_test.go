package sink

import (
	"net"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ValkeyTestSuite tests the Valkey stream sink
type ValkeyTestSuite struct {
	suite.Suite
}

// TestOpenUnreachable tests that a dead address fails at startup rather than per tick
func (s *ValkeyTestSuite) TestOpenUnreachable() {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	addr := listener.Addr().String()
	s.Require().NoError(listener.Close())

	v, err := OpenValkey(addr, "", "ressample")
	s.Error(err)
	s.Nil(v)
}

// TestValkeySuite runs the Valkey sink test suite
func TestValkeySuite(t *testing.T) {
	suite.Run(t, new(ValkeyTestSuite))
}
