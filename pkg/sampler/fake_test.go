package sampler

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"ressample/pkg/models"
)

// tickState is what the scripted provider reports after one refresh.
type tickState struct {
	cpus      []float64
	available uint64
	total     uint64
	volumes   []models.Volume
}

// ScriptedProvider replays one state per refresh cycle; the last state repeats.
type ScriptedProvider struct {
	mu        sync.Mutex
	states    []tickState
	next      int
	current   tickState
	refreshes int
	failCPU   error
}

func newScriptedProvider(states ...tickState) *ScriptedProvider {
	return &ScriptedProvider{states: states}
}

// RefreshCPU advances the script; memory and volume refreshes read the same state.
func (p *ScriptedProvider) RefreshCPU(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refreshes++
	if len(p.states) > 0 {
		idx := p.next
		if idx >= len(p.states) {
			idx = len(p.states) - 1
		}
		p.current = p.states[idx]
		p.next++
	}
	return p.failCPU
}

func (p *ScriptedProvider) RefreshMemory(context.Context) error  { return nil }
func (p *ScriptedProvider) RefreshVolumes(context.Context) error { return nil }

func (p *ScriptedProvider) CPUUsages() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.cpus
}

func (p *ScriptedProvider) AvailableMemory() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.available
}

func (p *ScriptedProvider) TotalMemory() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.total
}

func (p *ScriptedProvider) Volumes() []models.Volume {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.volumes
}

// MockSink is a mock implementation of sink.RecordSink for testing
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Write(snap models.Snapshot) error {
	args := m.Called(snap)
	return args.Error(0)
}

func (m *MockSink) Flush() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockProvider is a mock implementation of provider.HostMetrics for testing
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) RefreshCPU(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockProvider) RefreshMemory(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockProvider) RefreshVolumes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockProvider) CPUUsages() []float64 {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]float64)
}

func (m *MockProvider) AvailableMemory() uint64 {
	return m.Called().Get(0).(uint64)
}

func (m *MockProvider) TotalMemory() uint64 {
	return m.Called().Get(0).(uint64)
}

func (m *MockProvider) Volumes() []models.Volume {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Volume)
}
