package harvest

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeSurface scripts a browser surface: a fixed page document plus a series
// of extent measurements for the scroll loop.
type fakeSurface struct {
	mu        sync.Mutex
	html      string
	extents   []float64
	extentIdx int
	scrolls   int
	navigated []string
	navErr    error
}

func (f *fakeSurface) Navigate(_ context.Context, url string, _ WaitPolicy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, url)
	return f.navErr
}

func (f *fakeSurface) Evaluate(_ context.Context, _ string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := out.(*float64)
	if !ok {
		return fmt.Errorf("unexpected evaluate destination %T", out)
	}
	if f.extentIdx >= len(f.extents) {
		return fmt.Errorf("extent script evaluated %d times, only %d scripted",
			f.extentIdx+1, len(f.extents))
	}
	*p = f.extents[f.extentIdx]
	f.extentIdx++
	return nil
}

func (f *fakeSurface) ScrollBy(_ context.Context, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolls++
	return nil
}

func (f *fakeSurface) PageHTML(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.html, nil
}

// scriptedLoader returns queued results per URL, then repeats the last one.
type loadResult struct {
	state PageState
	err   error
}

type scriptedLoader struct {
	mu       sync.Mutex
	results  map[string][]loadResult
	calls    map[string]int
	policies map[string]WaitPolicy
}

func newScriptedLoader() *scriptedLoader {
	return &scriptedLoader{
		results:  make(map[string][]loadResult),
		calls:    make(map[string]int),
		policies: make(map[string]WaitPolicy),
	}
}

func (l *scriptedLoader) script(url string, state PageState, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results[url] = append(l.results[url], loadResult{state: state, err: err})
}

func (l *scriptedLoader) callCount(url string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[url]
}

func (l *scriptedLoader) policy(url string) WaitPolicy {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.policies[url]
}

func (l *scriptedLoader) Load(_ context.Context, url string, policy WaitPolicy) (PageState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[url]++
	l.policies[url] = policy
	queue := l.results[url]
	if len(queue) == 0 {
		return PageState{}, fmt.Errorf("no scripted result for %s", url)
	}
	idx := l.calls[url] - 1
	if idx >= len(queue) {
		idx = len(queue) - 1
	}
	res := queue[idx]
	return res.state, res.err
}

// memSink records every published snapshot and can be made to fail.
type memSink struct {
	mu           sync.Mutex
	name         string
	err          error
	publications int
	lastRows     [][]string
}

func newMemSink(name string) *memSink {
	return &memSink{name: name}
}

func (s *memSink) Name() string { return s.name }

func (s *memSink) Publish(_ context.Context, _ []string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.publications++
	s.lastRows = rows
	return nil
}

func (s *memSink) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *memSink) published() (int, [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publications, s.lastRows
}

// profileState builds a PageState carrying a hydration payload for one
// founder, the common fixture shape across tests.
func profileState(url, name, linkedin, company string) PageState {
	return PageState{
		URL: url,
		Company: &CompanyProps{
			Name:    company,
			Website: "https://" + company + ".example.com",
			Founders: []FounderProps{
				{FullName: name, LinkedIn: linkedin},
			},
		},
	}
}

var fixedNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
