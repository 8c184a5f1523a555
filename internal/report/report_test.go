package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/workshopai/internal/consumer"
	"github.com/davidbz/workshopai/internal/report"
)

func testFooter() report.Footer {
	return report.Footer{
		Workshop:     "Workshop Pengoptimalan AI",
		Date:         "25-28 Februari 2025",
		Organization: "Nusantara Power Services",
		Facilitator:  "Akhmad Guntar",
		Role:         "Workshop Facilitator",
	}
}

func testEntries() []consumer.Entry {
	at := time.Date(2025, time.February, 25, 9, 30, 0, 0, time.UTC)
	return []consumer.Entry{
		{Version: 1, Prompt: "Write a memo", Response: "Too vague.\nAdd a goal.", At: at},
		{Version: 2, Prompt: "Write a <b>memo</b> to staff\nabout leave", Feedback: "Much clearer", At: at.Add(time.Minute)},
	}
}

func TestRenderer_Render(t *testing.T) {
	renderer, err := report.NewRenderer()
	require.NoError(t, err)

	t.Run("should render the text body", func(t *testing.T) {
		msg, err := renderer.Render(report.Report{
			To:      " member@example.com ",
			Role:    "HR manager",
			Entries: testEntries(),
			Footer:  testFooter(),
		})

		require.NoError(t, err)
		require.Equal(t, "member@example.com", msg.To)
		require.Equal(t, report.DefaultSubject, msg.Subject)
		require.Contains(t, msg.Text, "Peran: HR manager\n\n")
		require.Contains(t, msg.Text, "Version 1:\nWrite a memo\n\nFeedback:\nToo vague.\nAdd a goal.\n\n")
		require.Contains(t, msg.Text, "Version 2:\nWrite a <b>memo</b> to staff\nabout leave\n\nFeedback:\nMuch clearer\n\n")
	})

	t.Run("should escape content and convert newlines in the html body", func(t *testing.T) {
		msg, err := renderer.Render(report.Report{
			To:      "member@example.com",
			Role:    "HR & people",
			Entries: testEntries(),
			Footer:  testFooter(),
		})

		require.NoError(t, err)
		require.Contains(t, msg.HTML, "<h1>Latihan Kejelasan Instruksi</h1>")
		require.Contains(t, msg.HTML, "HR &amp; people")
		require.Contains(t, msg.HTML, "Write a &lt;b&gt;memo&lt;/b&gt; to staff<br>about leave")
		require.Contains(t, msg.HTML, "Too vague.<br>Add a goal.")
		require.Contains(t, msg.HTML, "Prompt Versi 2")
		require.Contains(t, msg.HTML, "25/02/2025 09:30:00")
		require.Contains(t, msg.HTML, "Nusantara Power Services")
		require.NotContains(t, msg.HTML, "<b>memo</b>")
	})

	t.Run("should fall back to the default feedback text", func(t *testing.T) {
		msg, err := renderer.Render(report.Report{
			To:      "member@example.com",
			Entries: []consumer.Entry{{Version: 1, Prompt: "p"}},
		})

		require.NoError(t, err)
		require.Contains(t, msg.Text, "Feedback:\nNo feedback yet")
		require.NotContains(t, msg.HTML, "Feedback AI:")
	})

	t.Run("should use a custom subject and title", func(t *testing.T) {
		msg, err := renderer.Render(report.Report{
			To:      "member@example.com",
			Subject: "Workshop AI - Latihan Peran",
			Title:   "Latihan Peran",
			Entries: testEntries(),
		})

		require.NoError(t, err)
		require.Equal(t, "Workshop AI - Latihan Peran", msg.Subject)
		require.Contains(t, msg.HTML, "<h1>Latihan Peran</h1>")
	})

	t.Run("should reject an empty history", func(t *testing.T) {
		_, err := renderer.Render(report.Report{To: "member@example.com"})

		require.ErrorIs(t, err, report.ErrNoEntries)
	})

	t.Run("should reject a missing recipient", func(t *testing.T) {
		_, err := renderer.Render(report.Report{Entries: testEntries()})

		require.ErrorIs(t, err, report.ErrNoRecipient)
	})
}
