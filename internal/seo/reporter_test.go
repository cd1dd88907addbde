package seo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporter_RecordsAndPrints(t *testing.T) {
	var buf bytes.Buffer
	summary := NewSummary()
	r := NewReporter(&buf, summary, true)

	r.Page("/post-1")
	r.Success("/post-1", "canonical", "canonical link present")
	r.Failure("/post-1", "single-h1", "No h1 tag present.")

	out := buf.String()
	assert.Contains(t, out, "\n\t📄 /post-1\n")
	assert.Contains(t, out, "\t\t✓ canonical link present\n")
	assert.Contains(t, out, "\t\t✗ No h1 tag present.\n")
	assert.NotContains(t, out, "\x1b[", "color escape codes written with noColor")

	assert.Equal(t, 1, summary.Passed())
	assert.Equal(t, 1, summary.Failed())
	assert.Equal(t, 1, summary.Pages())
	assert.Equal(t, 1, summary.ExitCode())

	outcomes := summary.Outcomes()
	if assert.Len(t, outcomes, 2) {
		assert.Equal(t, "canonical", outcomes[0].Check)
		assert.True(t, outcomes[0].Passed)
		assert.Equal(t, "/post-1", outcomes[1].Route)
		assert.False(t, outcomes[1].Passed)
	}
}

func TestReporter_NotFoundRecordedOnce(t *testing.T) {
	var buf bytes.Buffer
	summary := NewSummary()
	r := NewReporter(&buf, summary, true)

	r.NotFound("http://localhost:9000/blog/gone")
	r.NotFound("http://localhost:9000/blog/gone")

	assert.Equal(t, []string{"http://localhost:9000/blog/gone"}, summary.NotFound())
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("not found: http://localhost:9000/blog/gone")))
	assert.Zero(t, summary.Passed())
	assert.Zero(t, summary.Failed())
	assert.Equal(t, 1, summary.ExitCode())
}

func TestReporter_Summarize(t *testing.T) {
	var buf bytes.Buffer
	summary := NewSummary()
	r := NewReporter(&buf, summary, true)

	r.Success("/", "canonical", "canonical link present")
	r.NotFound("http://localhost:9000/blog/login")
	buf.Reset()

	r.Summarize()
	r.Done()

	out := buf.String()
	assert.Contains(t, out, "Total 1 test(s) passed.\n")
	assert.Contains(t, out, "Total 0 test(s) failed.\n")
	assert.Contains(t, out, "Total 1 route(s) not found:\n\thttp://localhost:9000/blog/login\n")
	assert.Contains(t, out, "👋 All tests completed.")
}

func TestReporter_Banner(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, NewSummary(), true).Banner("public/blog")

	assert.Equal(t, "\n⏳ Testing the built files for SEO issues...\n\n📁 public/blog\n", buf.String())
}

func TestSummary_ReportSnapshot(t *testing.T) {
	summary := NewSummary()
	r := NewReporter(nil, summary, true)
	r.Page("/a")
	r.Skip()
	r.Success("/a", "canonical", "canonical link present")

	report := summary.Report("run-1", "file")

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "file", report.Source)
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, []string{}, report.NotFound)
	assert.True(t, report.OK())
	assert.Zero(t, summary.ExitCode())
}
