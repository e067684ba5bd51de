package core

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimedesk/ingest/internal/schema"
)

const sampleCSV = `Report Number,Date of Occurrence,City,Crime Description,Victim Age,Victim Gender
R1,15/01/2024,Metro,Theft,30,Male
R2,2024-01-16,Metro,Assault,45,Female
R3,17/01/2024,Harbor,Burglary,28,Male
`

func TestValidateCSV_SingleRowScenario(t *testing.T) {
	csvData := "Report Number,Date of Occurrence,City,Crime Description,Victim Age,Victim Gender\n" +
		"R1,15/01/2024,Metro,Theft,30,Male\n"

	p := NewPipeline(DefaultOptions())
	agg, err := p.ValidateCSV(context.Background(), strings.NewReader(csvData), int64(len(csvData)))
	require.NoError(t, err)

	require.Len(t, agg.Records, 1)
	require.Empty(t, agg.Failures)

	rec := agg.Records[0]
	assert.Equal(t, "R1", rec.ID)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), rec.OccurrenceDate)
	assert.Equal(t, "Metro", rec.Location)
	assert.Equal(t, "Theft", rec.Description)
	assert.Equal(t, 30, rec.VictimAge)
	assert.Equal(t, schema.GenderMale, rec.VictimGender)

	assert.Equal(t, 1, agg.Summary.TotalRows)
	assert.Equal(t, 1, agg.Summary.ValidRows)
	assert.Equal(t, 0, agg.Summary.InvalidRows)
	assert.Equal(t, 0.0, agg.Summary.ErrorRate)
}

func TestValidateCSV_SummaryInvariant(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	agg, err := p.ValidateCSV(context.Background(), strings.NewReader(sampleCSV), int64(len(sampleCSV)))
	require.NoError(t, err)

	assert.Equal(t, agg.Summary.TotalRows, agg.Summary.ValidRows+agg.Summary.InvalidRows)
	assert.Equal(t, agg.Summary.TotalRows, len(agg.Records)+len(agg.Failures))
}

func TestValidateCSV_RowOrderPreserved(t *testing.T) {
	var b strings.Builder
	b.WriteString("Report Number,Date of Occurrence,City,Crime Description,Victim Age,Victim Gender\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "R%03d,2024-01-15,Metro,Theft,30,Male\n", i)
	}

	opts := DefaultOptions()
	opts.BatchSize = 7 // force multiple batches
	p := NewPipeline(opts)

	agg, err := p.ValidateCSV(context.Background(), strings.NewReader(b.String()), int64(b.Len()))
	require.NoError(t, err)
	require.Len(t, agg.Records, 25)

	for i, rec := range agg.Records {
		assert.Equal(t, fmt.Sprintf("R%03d", i), rec.ID)
	}
}

func TestValidateCSV_EmptyFile(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	_, err := p.ValidateCSV(context.Background(), strings.NewReader(""), 0)
	require.Error(t, err)

	var structErr *StructuralError
	require.ErrorAs(t, err, &structErr)
	assert.Equal(t, "STR003", MapError(err).Code)
}

func TestValidateCSV_RowCeiling(t *testing.T) {
	var b strings.Builder
	b.WriteString("Report Number,Date of Occurrence,City,Crime Description,Victim Age,Victim Gender\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "R%d,2024-01-15,Metro,Theft,30,Male\n", i)
	}

	opts := DefaultOptions()
	opts.MaxRows = 10
	opts.BatchSize = 4
	p := NewPipeline(opts)

	_, err := p.ValidateCSV(context.Background(), strings.NewReader(b.String()), int64(b.Len()))
	require.Error(t, err)
	assert.Equal(t, "STR002", MapError(err).Code)
}

func TestValidateCSV_SkipsEmptyRows(t *testing.T) {
	csvData := "Report Number,Date of Occurrence,City,Crime Description,Victim Age,Victim Gender\n" +
		"R1,2024-01-15,Metro,Theft,30,Male\n" +
		",,,,,\n" +
		"R2,2024-01-16,Metro,Assault,40,Female\n"

	p := NewPipeline(DefaultOptions())
	agg, err := p.ValidateCSV(context.Background(), strings.NewReader(csvData), int64(len(csvData)))
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Summary.TotalRows)
}

func TestValidateCSV_StrictHeaders(t *testing.T) {
	csvData := "Report Number,City\nR1,Metro\n"

	opts := DefaultOptions()
	opts.StrictHeaders = true
	p := NewPipeline(opts)

	_, err := p.ValidateCSV(context.Background(), strings.NewReader(csvData), int64(len(csvData)))
	require.Error(t, err)

	var hdrErr *HeaderError
	require.ErrorAs(t, err, &hdrErr)
	assert.Contains(t, hdrErr.Missing, schema.FieldOccurrenceDate)
	assert.Equal(t, "HDR001", MapError(err).Code)
}

func TestValidateCSV_LenientHeadersUseDefaults(t *testing.T) {
	csvData := "Report Number,City\nR1,Metro\n"

	p := NewPipeline(DefaultOptions())
	agg, err := p.ValidateCSV(context.Background(), strings.NewReader(csvData), int64(len(csvData)))
	require.NoError(t, err)
	require.Len(t, agg.Records, 1)

	rec := agg.Records[0]
	assert.Equal(t, schema.DefaultDescription, rec.Description)
	assert.Equal(t, schema.DefaultAge, rec.VictimAge)
	assert.False(t, rec.OccurrenceDate.IsZero())
}

func TestValidateCSV_ProgressMonotonic(t *testing.T) {
	var b strings.Builder
	b.WriteString("Report Number,Date of Occurrence,City,Crime Description,Victim Age,Victim Gender\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "R%d,2024-01-15,Metro,Theft,30,Male\n", i)
	}

	var events []Progress
	opts := DefaultOptions()
	opts.BatchSize = 5
	opts.Progress = func(p Progress) { events = append(events, p) }
	p := NewPipeline(opts)

	_, err := p.ValidateCSV(context.Background(), strings.NewReader(b.String()), int64(b.Len()))
	require.NoError(t, err)
	require.NotEmpty(t, events)

	last := -1.0
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.Percent, last, "progress went backwards at stage %q", ev.Stage)
		assert.GreaterOrEqual(t, ev.Percent, 0.0)
		assert.LessOrEqual(t, ev.Percent, 100.0)
		assert.NotEmpty(t, ev.Stage)
		last = ev.Percent
	}
	assert.Equal(t, 100.0, events[len(events)-1].Percent)
}

func TestValidateCSV_ContextCancelled(t *testing.T) {
	var b strings.Builder
	b.WriteString("Report Number,Date of Occurrence,City,Crime Description,Victim Age,Victim Gender\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "R%d,2024-01-15,Metro,Theft,30,Male\n", i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.BatchSize = 2
	p := NewPipeline(opts)

	_, err := p.ValidateCSV(ctx, strings.NewReader(b.String()), int64(b.Len()))
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidateCSV_BOMAndInvalidUTF8(t *testing.T) {
	csvData := "\xEF\xBB\xBFReport Number,Date of Occurrence,City,Crime Description,Victim Age,Victim Gender\n" +
		"R1,2024-01-15,M\xFFtro,Theft,30,Male\n"

	p := NewPipeline(DefaultOptions())
	agg, err := p.ValidateCSV(context.Background(), strings.NewReader(csvData), int64(len(csvData)))
	require.NoError(t, err)
	require.Len(t, agg.Records, 1)

	assert.Equal(t, "R1", agg.Records[0].ID, "BOM must not leak into the first header")
	assert.Equal(t, "M?tro", agg.Records[0].Location)
}

func TestValidateRows(t *testing.T) {
	rows := []RawRow{
		{
			"Report Number":      "R1",
			"Date of Occurrence": time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
			"City":               "Metro",
			"Crime Description":  "Theft",
			"Victim Age":         float64(30),
			"Victim Gender":      "Male",
		},
		{
			"Report Number":      "R2",
			"Date of Occurrence": time.Time{}, // invalid: zero date from the decoder
			"City":               "Metro",
			"Crime Description":  "Assault",
			"Victim Age":         float64(40),
			"Victim Gender":      "Female",
		},
	}

	p := NewPipeline(DefaultOptions())
	agg, err := p.ValidateRows(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 2, agg.Summary.TotalRows)
	assert.Equal(t, 1, agg.Summary.ValidRows)
	assert.Equal(t, 1, agg.Summary.InvalidRows)
	assert.Equal(t, 50.0, agg.Summary.ErrorRate)

	require.Len(t, agg.Failures, 1)
	assert.Equal(t, 1, agg.Failures[0].Row)
}

func TestValidateRows_Empty(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	_, err := p.ValidateRows(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "STR003", MapError(err).Code)
}

func TestErrorRate(t *testing.T) {
	assert.Equal(t, 0.0, errorRate(0, 0))
	assert.Equal(t, 0.0, errorRate(0, 100))
	assert.Equal(t, 100.0, errorRate(7, 7))
	assert.Equal(t, 33.33, errorRate(1, 3))
	assert.Equal(t, 66.67, errorRate(2, 3))
}
