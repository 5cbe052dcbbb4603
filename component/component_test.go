package component

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	status   HealthStatus
	events   *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	*f.events = append(*f.events, "start "+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		*f.events = append(*f.events, "stop without deadline "+f.name)
	}
	*f.events = append(*f.events, "stop "+f.name)
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) Health {
	return Health{Name: f.name, Status: f.status}
}

func newFakes(events *[]string, names ...string) (*Registry, map[string]*fakeComponent) {
	r := NewRegistry()
	byName := make(map[string]*fakeComponent, len(names))
	for _, n := range names {
		f := &fakeComponent{name: n, status: StatusHealthy, events: events}
		byName[n] = f
		_ = r.Register(f)
	}
	return r, byName
}

func TestRegistryRegister(t *testing.T) {
	var events []string
	r, fakes := newFakes(&events, "sink", "server")

	if err := r.Register(&fakeComponent{name: "sink", events: &events}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Register = %v, want ErrDuplicate", err)
	}
	if got := strings.Join(r.Names(), ","); got != "sink,server" {
		t.Errorf("Names = %s", got)
	}
	if r.Get("server") != fakes["server"] || r.Get("missing") != nil {
		t.Error("unexpected Get result")
	}
	if all := r.All(); len(all) != 2 || all[0] != fakes["sink"] {
		t.Errorf("All = %v", all)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		setup     func(map[string]*fakeComponent)
		wantStart error
		wantStop  error
		events    string
	}{
		{
			name:   "start in order, stop in reverse",
			events: "start a,start b,start c,stop c,stop b,stop a",
		},
		{
			name:      "failed start rolls back",
			setup:     func(f map[string]*fakeComponent) { f["b"].startErr = boom },
			wantStart: boom,
			events:    "start a,start b,stop a",
		},
		{
			name:     "stop continues past failures",
			setup:    func(f map[string]*fakeComponent) { f["b"].stopErr = boom },
			wantStop: boom,
			events:   "start a,start b,start c,stop c,stop b,stop a",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var events []string
			r, fakes := newFakes(&events, "a", "b", "c")
			if tc.setup != nil {
				tc.setup(fakes)
			}
			if err := r.StartAll(context.Background()); !errors.Is(err, tc.wantStart) || (tc.wantStart == nil) != (err == nil) {
				t.Fatalf("StartAll = %v, want %v", err, tc.wantStart)
			}
			if err := r.StopAll(context.Background()); !errors.Is(err, tc.wantStop) || (tc.wantStop == nil) != (err == nil) {
				t.Fatalf("StopAll = %v, want %v", err, tc.wantStop)
			}
			if got := strings.Join(events, ","); got != tc.events {
				t.Errorf("events = %s, want %s", got, tc.events)
			}
		})
	}
}

func TestRegistryStopTwice(t *testing.T) {
	var events []string
	r, _ := newFakes(&events, "a")
	_ = r.StartAll(context.Background())
	_ = r.StopAll(context.Background())
	_ = r.StopAll(context.Background())
	if got := strings.Join(events, ","); got != "start a,stop a" {
		t.Errorf("events = %s", got)
	}
}

func TestHealthAllAndAggregate(t *testing.T) {
	var events []string
	r, fakes := newFakes(&events, "a", "b")
	fakes["b"].status = StatusDegraded

	h := r.HealthAll(context.Background())
	if len(h) != 2 || h[1].Name != "b" || h[1].Status != StatusDegraded {
		t.Fatalf("HealthAll = %+v", h)
	}

	tests := []struct {
		name  string
		items []Health
		want  HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Health{{Status: StatusHealthy}}, StatusHealthy},
		{"degraded", h, StatusDegraded},
		{"unhealthy wins", []Health{{Status: StatusDegraded}, {Status: StatusUnhealthy}, {Status: StatusHealthy}}, StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Aggregate(tc.items); got != tc.want {
				t.Errorf("Aggregate = %s, want %s", got, tc.want)
			}
		})
	}
}
