package indexing

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Add(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 100, 10)

	p.Start()
	p.Add(25)
	p.Add(25)
	p.Add(50)

	assert.GreaterOrEqual(t, p.Elapsed(), time.Duration(0))
	assert.Contains(t, buf.String(), "100/100")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestProgress_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 100, 50)

	p.Start()
	p.Add(10)
	assert.Empty(t, buf.String())

	p.Add(40)
	assert.Contains(t, buf.String(), "50/100")
}

func TestProgress_Finish(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 100, 10)

	p.Start()
	p.Add(75)
	p.Finish()

	out := buf.String()
	assert.Contains(t, out, "100/100")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgress_ClampsToTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 100, 10)

	p.Start()
	p.Add(150)

	assert.Contains(t, buf.String(), "100/100")
}

func TestProgress_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 10, 1)

	p.Add(5)
	p.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, p.Elapsed())
}

func TestProgress_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 0, 10)

	p.Start()
	p.Finish()

	assert.Contains(t, buf.String(), "0/0")
}
