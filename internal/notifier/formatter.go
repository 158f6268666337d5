package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"

	"NiftyRSI/internal/model"
	"NiftyRSI/internal/zone"
)

var zoneIcon = map[model.Zone]string{
	model.ZoneOversold:   "🟢",
	model.ZoneNeutral:    "⚪",
	model.ZoneOverbought: "🔴",
	model.ZoneGap:        "▫️",
}

// FormatWatchReport formats a watch run into a Telegram message. Indices
// outside the neutral band are listed under a separate heading.
func FormatWatchReport(rep *model.RunReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>NiftyRSI</b> | RSI(%d) | %s\n\n",
		rep.Request.Window, rep.FinishedAt.Format("2006-01-02 15:04")))

	var flagged []*model.IndexResult
	for _, res := range rep.Results {
		if !res.OK() {
			b.WriteString(fmt.Sprintf("⚠️ %s: %s\n", html.EscapeString(res.Index.Name), html.EscapeString(res.Err.Error())))
			continue
		}
		s := res.Summary
		b.WriteString(fmt.Sprintf("%s %s: %s | close %.2f (%s)\n",
			zoneIcon[s.Zone], html.EscapeString(res.Index.Name), formatRSI(s.LastRSI), s.LastClose, s.LastDate.Format("2006-01-02")))
		if s.Zone == model.ZoneOversold || s.Zone == model.ZoneOverbought {
			flagged = append(flagged, res)
		}
	}

	if len(flagged) > 0 {
		b.WriteString("\n🚨 <b>Outside neutral band:</b>\n")
		for _, res := range flagged {
			b.WriteString(fmt.Sprintf("  %s %s (%s)\n",
				html.EscapeString(res.Index.Name), zone.Label(res.Summary.Zone), formatRSI(res.Summary.LastRSI)))
		}
	}

	return b.String()
}

// FormatIndices lists the configured index mapping.
func FormatIndices(indices []model.Index) string {
	var b strings.Builder
	b.WriteString("📋 <b>Indices</b>\n\n")
	for _, idx := range indices {
		b.WriteString(fmt.Sprintf("%s → <code>%s</code>\n", html.EscapeString(idx.Name), html.EscapeString(idx.Symbol)))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "🤖 <b>NiftyRSI commands</b>\n\n" +
		"/rsi - latest RSI for the watchlist\n" +
		"/indices - index to ticker mapping\n" +
		"/help - this message"
}

func formatRSI(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
