package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"DefiPrime/internal/domain/models"
	pkgkafka "DefiPrime/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows(n int) []models.CompositeRow {
	rows := make([]models.CompositeRow, n)
	for i := range rows {
		rows[i] = models.CompositeRow{Date: models.Date(19417 + i), CompositeRate: float64(i), TrendRate: float64(i) / 2}
	}
	return rows
}

func TestConsoleSinkPreview(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, 2)
	require.NoError(t, sink.Write(context.Background(), sampleRows(10)))

	out := buf.String()
	assert.Contains(t, out, "2023-03-01")
	assert.Contains(t, out, "2023-03-10")
	assert.Contains(t, out, "(10 rows)")
	assert.NotContains(t, out, "2023-03-05")
}

func TestCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, NewCSVSink(path).Write(context.Background(), sampleRows(2)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, []string{
		"date,composite_rate,trend_rate",
		"2023-03-01,0,0",
		"2023-03-02,1,0.5",
	}, lines)
}

func TestJSONSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	rows := sampleRows(3)
	require.NoError(t, NewJSONSink(path).Write(context.Background(), rows))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []models.CompositeRow
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, rows, got)
	assert.Contains(t, string(b), `"date": "2023-03-01"`)
}

type fakePublisher struct {
	topic  string
	msgs   []pkgkafka.Message
	closed bool
}

func (p *fakePublisher) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	p.topic = topic
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *fakePublisher) Close() error { p.closed = true; return nil }

func TestKafkaSink(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewKafkaSink(pub, "composite")

	require.NoError(t, sink.Write(context.Background(), nil))
	assert.Empty(t, pub.msgs)

	require.NoError(t, sink.Write(context.Background(), sampleRows(2)))
	assert.Equal(t, "composite", pub.topic)
	require.Len(t, pub.msgs, 2)
	assert.Equal(t, []byte("2023-03-02"), pub.msgs[1].Key)

	require.NoError(t, sink.Close())
	assert.True(t, pub.closed)
}

func sampleValues() models.ValueTable {
	return models.ValueTable{
		Entities: []string{"aave", "curve"},
		Rows: []models.ValueRow{
			{Date: 19417, Values: map[string]float64{"aave": 100, "curve": 250.25}},
			{Date: 19418, Values: map[string]float64{"aave": 120}},
		},
	}
}

func TestConsoleSinkValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleSink(&buf, 0).WriteValues(context.Background(), sampleValues()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"date", "aave", "curve"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"2023-03-01", "100", "250"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2023-03-02", "120", "-"}, strings.Fields(lines[2]))
}

func TestCSVSinkValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tvl.csv")
	require.NoError(t, NewCSVSink(path).WriteValues(context.Background(), sampleValues()))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, []string{
		"date,aave,curve",
		"2023-03-01,100,250.25",
		"2023-03-02,120,",
	}, lines)
}

func TestJSONSinkValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tvl.json")
	table := sampleValues()
	require.NoError(t, NewJSONSink(path).WriteValues(context.Background(), table))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var got models.ValueTable
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, table, got)
}

func TestKafkaSinkValues(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewKafkaSink(pub, "tvl")

	require.NoError(t, sink.WriteValues(context.Background(), models.ValueTable{}))
	assert.Empty(t, pub.msgs)

	require.NoError(t, sink.WriteValues(context.Background(), sampleValues()))
	require.Len(t, pub.msgs, 2)
	assert.Equal(t, []byte("2023-03-01"), pub.msgs[0].Key)
	assert.Equal(t, sampleValues().Rows[1], pub.msgs[1].Value)
}
