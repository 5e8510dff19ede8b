package sink

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ressample/pkg/models"
)

// HTTPTestSuite tests the push sink against a local server
type HTTPTestSuite struct {
	suite.Suite
	server   *httptest.Server
	handler  http.HandlerFunc
	requests atomic.Int32
}

// SetupTest starts a server whose behavior each test overrides
func (s *HTTPTestSuite) SetupTest() {
	s.requests.Store(0)
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.handler(w, r)
	}))
}

// TearDownTest stops the server
func (s *HTTPTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *HTTPTestSuite) newSink() *HTTP {
	return NewHTTP(s.server.URL+"/ingest", HTTPOptions{
		RunID:        "run-1",
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
		Timeout:      2 * time.Second,
	})
}

// TestPostsJSONPayload tests the request body and headers
func (s *HTTPTestSuite) TestPostsJSONPayload() {
	var got PushPayload
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/ingest", r.URL.Path)
		s.Equal("application/json", r.Header.Get("Content-Type"))
		s.NoError(json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}

	snap := models.Snapshot{CPUUsed: 42.5, MemUsed: 10, MemTotal: 20, DiskUsed: 110, DiskTotal: 300, Timestamp: 1700000000.5}
	push := s.newSink()
	defer push.Close()

	s.Require().NoError(push.Write(snap))
	s.NoError(push.Flush())
	s.Equal("run-1", got.RunID)
	s.NotEmpty(got.Host)
	s.Equal(snap, got.Snapshot)
}

// TestClientErrorIsNotRetried tests that 4xx answers fail immediately
func (s *HTTPTestSuite) TestClientErrorIsNotRetried() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}

	err := s.newSink().Write(models.Snapshot{})
	s.ErrorIs(err, ErrRemoteStatus)
	s.Equal(int32(1), s.requests.Load())
}

// TestServerErrorIsRetried tests recovery after transient 5xx answers
func (s *HTTPTestSuite) TestServerErrorIsRetried() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		if s.requests.Load() < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}

	s.NoError(s.newSink().Write(models.Snapshot{}))
	s.Equal(int32(2), s.requests.Load())
}

// TestPersistentServerErrorFails tests the exhausted retry path
func (s *HTTPTestSuite) TestPersistentServerErrorFails() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}

	err := s.newSink().Write(models.Snapshot{})
	s.ErrorIs(err, ErrRemoteStatus)
	s.Equal(int32(3), s.requests.Load())
}

// TestUnreachableEndpoint tests connection failures
func (s *HTTPTestSuite) TestUnreachableEndpoint() {
	url := s.server.URL
	s.server.Close()

	push := NewHTTP(url, HTTPOptions{RetryMax: 1, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond})
	s.Error(push.Write(models.Snapshot{}))
}

// TestDefaultsApplied tests zero-value options
func (s *HTTPTestSuite) TestDefaultsApplied() {
	push := NewHTTP(s.server.URL, HTTPOptions{})

	s.Equal(defaultPushRetryMax, push.client.RetryMax)
	s.Equal(defaultPushRetryWaitMin, push.client.RetryWaitMin)
	s.Equal(defaultPushRetryWaitMax, push.client.RetryWaitMax)
	s.Equal(defaultPushTimeout, push.timeout)
}

// TestHTTPSuite runs the HTTP sink test suite
func TestHTTPSuite(t *testing.T) {
	suite.Run(t, new(HTTPTestSuite))
}
