package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGenerator_DeterministicAndBounded(t *testing.T) {
	a := NewGenerator(42)
	b := NewGenerator(42)

	counts := map[Scenario]int{}
	for i := 0; i < 2000; i++ {
		ra, rb := a.Next(), b.Next()
		require.Equal(t, ra, rb)
		counts[ra.Scenario]++

		assert.GreaterOrEqual(t, ra.PH, 4.8)
		assert.LessOrEqual(t, ra.PH, 10.2)
		assert.GreaterOrEqual(t, ra.Turbidity, 0.1)
		assert.LessOrEqual(t, ra.Turbidity, 51.0)
		assert.GreaterOrEqual(t, ra.Chloramines, 0.0)
		assert.LessOrEqual(t, ra.Chloramines, 5.1)
		assert.Equal(t, ra.PH, math.Round(ra.PH*100)/100)
	}

	// weights 0.40 / 0.35 / 0.25
	assert.InDelta(t, 800, counts[ScenarioPotable], 120)
	assert.InDelta(t, 700, counts[ScenarioMild], 120)
	assert.InDelta(t, 500, counts[ScenarioSevere], 120)
}

func TestGenerator_PotableRanges(t *testing.T) {
	g := NewGenerator(7)
	for i := 0; i < 500; i++ {
		r := g.Next()
		if r.Scenario != ScenarioPotable {
			continue
		}
		assert.GreaterOrEqual(t, r.PH, 6.3)
		assert.LessOrEqual(t, r.PH, 8.7)
		assert.LessOrEqual(t, r.Turbidity, 5.0)
		assert.LessOrEqual(t, r.Chloramines, 2.1)
	}
}

func TestHTTPSender(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"ph": q.Get("ph"), "turbidity": q.Get("turbidity"), "chlorine": q.Get("chlorine"), "device": q.Get("device"),
		}
		if q.Get("ph") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("ERRO: ph"))
			return
		}
		_, _ = w.Write([]byte("POTAVEL\n"))
	}))
	defer srv.Close()

	sender := NewHTTPSender(srv.URL, zap.NewNop())
	label, err := sender.Send(context.Background(), "sim-1", Reading{PH: 7.2, Turbidity: 3.5, Chloramines: 1.8})
	require.NoError(t, err)
	assert.Equal(t, "POTAVEL", label)
	assert.Equal(t, map[string]string{"ph": "7.20", "turbidity": "3.50", "chlorine": "1.80", "device": "sim-1"}, gotQuery)
}

func TestHTTPSender_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("ERRO: turbidity: deve ser numérico"))
	}))
	defer srv.Close()

	_, err := NewHTTPSender(srv.URL, zap.NewNop()).Send(context.Background(), "", Reading{PH: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

type fakePublisher struct {
	topic   string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(topic string, _ byte, _ bool, payload []byte) error {
	f.topic = topic
	f.payload = payload
	return f.err
}

func TestMQTTSender(t *testing.T) {
	pub := &fakePublisher{}
	label, err := NewMQTTSender(pub, 1).Send(context.Background(), "tank-3", Reading{Scenario: ScenarioMild, PH: 6.2, Turbidity: 8, Chloramines: 0.15})
	require.NoError(t, err)
	assert.Empty(t, label)
	assert.Equal(t, "water/tank-3/reading", pub.topic)

	var body map[string]float64
	require.NoError(t, json.Unmarshal(pub.payload, &body))
	assert.Equal(t, map[string]float64{"ph": 6.2, "turbidity": 8, "chloramines": 0.15}, body)
}

type scriptedSender struct {
	labels []string
	errs   []error
	n      int
}

func (s *scriptedSender) Send(context.Context, string, Reading) (string, error) {
	i := s.n
	s.n++
	return s.labels[i], s.errs[i]
}

func TestRunner(t *testing.T) {
	sender := &scriptedSender{
		labels: []string{"POTAVEL", "", "NAO_POTAVEL", "POTAVEL"},
		errs:   []error{nil, errors.New("refused"), nil, nil},
	}
	r := &Runner{Generator: NewGenerator(1), Sender: sender, Count: 4}

	summary := r.Run(context.Background())
	assert.Equal(t, 3, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, map[string]int{"POTAVEL": 2, "NAO_POTAVEL": 1}, summary.Labels)
	assert.InDelta(t, 75.0, summary.SuccessRate(), 1e-9)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Generator: NewGenerator(1), Sender: &scriptedSender{}, Count: 10}

	summary := r.Run(ctx)
	assert.Equal(t, 0, summary.Sent+summary.Failed)
	assert.Equal(t, 0.0, summary.SuccessRate())
}
