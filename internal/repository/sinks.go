package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"DefiPrime/internal/domain/models"
	domrepo "DefiPrime/internal/domain/repository"
	pkgkafka "DefiPrime/pkg/kafka"
)

// ConsoleSink prints the first and last rows of the table.
type ConsoleSink struct {
	w       io.Writer
	preview int
}

// NewConsoleSink creates a console sink. preview <= 0 prints every row.
func NewConsoleSink(w io.Writer, preview int) domrepo.CompositeSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{w: w, preview: preview}
}

func (s *ConsoleSink) Write(_ context.Context, rows []models.CompositeRow) error {
	tw := tabwriter.NewWriter(s.w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "date\tcomposite_rate\ttrend_rate\t")

	line := func(r models.CompositeRow) {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t\n", r.Date, r.CompositeRate, r.TrendRate)
	}
	if s.preview <= 0 || len(rows) <= 2*s.preview {
		for _, r := range rows {
			line(r)
		}
	} else {
		for _, r := range rows[:s.preview] {
			line(r)
		}
		fmt.Fprintf(tw, "...\t(%d rows)\t\t\n", len(rows))
		for _, r := range rows[len(rows)-s.preview:] {
			line(r)
		}
	}
	return tw.Flush()
}

// WriteValues prints one column per entity; "-" marks a missing value.
func (s *ConsoleSink) WriteValues(_ context.Context, table models.ValueTable) error {
	tw := tabwriter.NewWriter(s.w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "date\t")
	for _, id := range table.Entities {
		fmt.Fprintf(tw, "%s\t", id)
	}
	fmt.Fprintln(tw)

	line := func(r models.ValueRow) {
		fmt.Fprintf(tw, "%s\t", r.Date)
		for _, id := range table.Entities {
			if v, ok := r.Values[id]; ok {
				fmt.Fprintf(tw, "%.0f\t", v)
			} else {
				fmt.Fprint(tw, "-\t")
			}
		}
		fmt.Fprintln(tw)
	}
	rows := table.Rows
	if s.preview <= 0 || len(rows) <= 2*s.preview {
		for _, r := range rows {
			line(r)
		}
	} else {
		for _, r := range rows[:s.preview] {
			line(r)
		}
		fmt.Fprintf(tw, "...\t(%d rows)\t\n", len(rows))
		for _, r := range rows[len(rows)-s.preview:] {
			line(r)
		}
	}
	return tw.Flush()
}

func (s *ConsoleSink) Close() error { return nil }

// CSVSink writes the table to a CSV file.
type CSVSink struct {
	path string
}

func NewCSVSink(path string) domrepo.CompositeSink { return &CSVSink{path: path} }

func (s *CSVSink) Write(_ context.Context, rows []models.CompositeRow) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "composite_rate", "trend_rate"}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Date.String(),
			strconv.FormatFloat(r.CompositeRate, 'f', -1, 64),
			strconv.FormatFloat(r.TrendRate, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// WriteValues writes a date column and one column per entity. Missing values are empty cells.
func (s *CSVSink) WriteValues(_ context.Context, table models.ValueTable) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"date"}, table.Entities...)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, r := range table.Rows {
		rec := make([]string, 0, len(table.Entities)+1)
		rec = append(rec, r.Date.String())
		for _, id := range table.Entities {
			if v, ok := r.Values[id]; ok {
				rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				rec = append(rec, "")
			}
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

func (s *CSVSink) Close() error { return nil }

// JSONSink writes the table as a JSON array.
type JSONSink struct {
	path string
}

func NewJSONSink(path string) domrepo.CompositeSink { return &JSONSink{path: path} }

func (s *JSONSink) Write(_ context.Context, rows []models.CompositeRow) error {
	return s.write(rows)
}

func (s *JSONSink) WriteValues(_ context.Context, table models.ValueTable) error {
	return s.write(table)
}

func (s *JSONSink) write(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func (s *JSONSink) Close() error { return nil }

// BatchPublisher is the part of the Kafka producer used by KafkaSink.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaSink publishes one message per row, keyed by date.
type KafkaSink struct {
	producer BatchPublisher
	topic    string
}

// NewKafkaSink creates Kafka sink.
func NewKafkaSink(producer BatchPublisher, topic string) domrepo.CompositeSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Write(ctx context.Context, rows []models.CompositeRow) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(rows))
	for i, r := range rows {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.Date.String()),
			Value: r,
		}
	}
	return s.producer.PublishBatch(ctx, s.topic, msgs)
}

// WriteValues publishes one message per date with the values of every reporting entity.
func (s *KafkaSink) WriteValues(ctx context.Context, table models.ValueTable) error {
	if len(table.Rows) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(table.Rows))
	for i, r := range table.Rows {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.Date.String()),
			Value: r,
		}
	}
	return s.producer.PublishBatch(ctx, s.topic, msgs)
}

func (s *KafkaSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
