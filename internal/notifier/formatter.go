package notifier

import (
	"fmt"
	"html"
	"strings"

	"MarketLens/internal/model"
)

// FormatAnalysis renders an analysis as a Telegram HTML message.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	if a == nil || a.Series == nil || len(a.Series.Bars) == 0 {
		return "no data"
	}
	bars := a.Series.Bars
	s := a.Summary

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s ~ %s\n\n", html.EscapeString(a.Series.Symbol),
		bars[0].Time.Format("2006-01-02"), bars[len(bars)-1].Time.Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Price: %.2f → %.2f (%+.2f%%)\n", s.StartPrice, s.EndPrice, s.ReturnPct))
	b.WriteString(fmt.Sprintf("Range: %.2f ~ %.2f (position %.0f%%)\n", s.Low, s.High, s.Position*100))

	if last, ok := a.Indicators.Last(); ok {
		b.WriteString(fmt.Sprintf("SMA: %s | EMA: %.2f | RSI: %s\n",
			optional(last.SMA.Valid, last.SMA.Float64, "%.2f"), last.EMA,
			optional(last.RSI.Valid, last.RSI.Float64, "%.1f")))
	}

	if sig := a.Signal; sig != nil {
		b.WriteString("\n📈 <b>Factors:</b>\n")
		for _, f := range sig.Factors {
			b.WriteString(fmt.Sprintf("  %s(%s): %+.1f (×%.2f) = %+.3f\n",
				f.Name, f.Commentary, f.RawScore, f.Weight, f.Weighted))
		}
		b.WriteString("  ─────────────────\n")
		b.WriteString(fmt.Sprintf("  Total: %+.3f\n\n", sig.TotalScore))
		b.WriteString(fmt.Sprintf("💡 <b>Signal:</b> %s\n", sig.Tier.Label))
		if sig.WarningMsg != "" {
			b.WriteString(fmt.Sprintf("\n⚠️ %s\n", sig.WarningMsg))
		}
	}
	return b.String()
}

// FormatRecommendations renders a ranked item list under a title.
func FormatRecommendations(title string, recs []model.Recommendation) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🛒 <b>%s</b>\n\n", html.EscapeString(title)))
	if len(recs) == 0 {
		b.WriteString("No recommendations.\n")
		return b.String()
	}
	for i, r := range recs {
		b.WriteString(fmt.Sprintf("%d. %s [%s]", i+1, html.EscapeString(r.Item.Name), html.EscapeString(r.Item.Category)))
		if r.Score != 0 {
			b.WriteString(fmt.Sprintf(" %.3f", r.Score))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatZoneAlert renders the message sent when a symbol enters an RSI zone.
func FormatZoneAlert(symbol string, point model.IndicatorPoint, sig *model.Signal) string {
	icon := "🔻"
	if sig.Zone == model.ZoneOverbought {
		icon = "🔺"
	}
	return fmt.Sprintf("%s <b>%s %s</b> | %s\nClose %.2f, RSI %.1f\nSignal: %s (%+.3f)",
		icon, html.EscapeString(symbol), sig.Zone, point.Time.Format("2006-01-02"),
		point.Close, point.RSI.Float64, sig.Tier.Label, sig.TotalScore)
}

func optional(valid bool, v float64, format string) string {
	if !valid {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}
