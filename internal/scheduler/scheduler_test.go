package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edkuperman/pairsort/internal/dag"
)

type staticLister struct {
	ids []string
	err error
}

func (l staticLister) IDs(context.Context) ([]string, error) { return l.ids, l.err }

type mapSource map[string][]dag.Edge

func (m mapSource) Edges(_ context.Context, id string) ([]dag.Edge, error) {
	edges, ok := m[id]
	if !ok {
		return nil, errors.New("no such dag " + id)
	}
	return edges, nil
}

func newAuditor(ids []string, src dag.EdgeSource) (*Auditor, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Auditor{
		DAGs:   staticLister{ids: ids},
		Edges:  src,
		Logger: log.New(&buf),
	}, &buf
}

func TestAuditorRun(t *testing.T) {
	a, _ := newAuditor([]string{"ok", "loop", "pair"}, mapSource{
		"ok":   {{From: "A", To: "B"}},
		"loop": {{From: "A", To: "A"}},
		"pair": {{From: "A", To: "B"}, {From: "B", To: "A"}},
	})

	findings, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, "loop", findings[0].DagID)
	assert.Equal(t, "A", findings[0].Diagnostic.MostOutgoing)
	assert.Equal(t, [][]string{{"A", "A"}}, findings[0].Cycles)

	assert.Equal(t, "pair", findings[1].DagID)
	assert.Equal(t, [][]string{{"B", "A", "B"}}, findings[1].Cycles)
}

func TestAuditorRunNoFindings(t *testing.T) {
	a, _ := newAuditor(nil, mapSource{})

	findings, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
}

func TestAuditorRunErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &Auditor{DAGs: staticLister{err: boom}, Edges: mapSource{}}
	_, err := a.Run(context.Background())
	assert.ErrorIs(t, err, boom)

	a, _ = newAuditor([]string{"missing"}, mapSource{})
	_, err = a.Run(context.Background())
	assert.Error(t, err)
}

func TestAuditorRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, _ := newAuditor([]string{"loop"}, mapSource{"loop": {{From: "A", To: "A"}}})
	_, err := a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTickLogsFindings(t *testing.T) {
	a, buf := newAuditor([]string{"loop"}, mapSource{"loop": {{From: "X", To: "X"}}})
	s := New(a, a.Logger)

	s.Tick(context.Background())

	out := buf.String()
	assert.Contains(t, out, "cyclic dag")
	assert.Contains(t, out, "dag=loop")
	assert.Contains(t, out, "audit done")
}

func TestTickLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	s := New(&Auditor{DAGs: staticLister{err: errors.New("db down")}, Edges: mapSource{}}, logger)

	s.Tick(context.Background())

	assert.Contains(t, buf.String(), "audit failed")
	assert.Contains(t, buf.String(), "db down")
}

func TestRegister(t *testing.T) {
	a, _ := newAuditor(nil, mapSource{})
	s := New(a, a.Logger)

	require.NoError(t, s.Register(context.Background(), "0 */5 * * * *"))
	assert.Error(t, s.Register(context.Background(), "every five minutes"))

	s.Start()
	s.Stop()
}
