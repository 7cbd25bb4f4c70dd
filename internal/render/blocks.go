package render

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/layout"
)

// 各区块策略的HTML模板，进程启动时解析一次
var blockTemplates = template.Must(template.New("blocks").Parse(`
{{define "hero"}}
<div class="donate-block donate-block-hero"{{if .BackgroundColor}} style="background-color: {{.BackgroundColor}}"{{end}}>
  {{if .ImageURL}}<div class="donate-block-hero-image"><img src="{{.ImageURL}}" alt=""></div>{{end}}
  <h1>{{.Title}}</h1>
  {{if .Subtitle}}<p>{{.Subtitle}}</p>{{end}}
</div>
{{end}}

{{define "campaign_info"}}
<div class="donate-block donate-block-campaign-info">
  {{if .ShowGoal}}<p><strong>${{.Raised}}</strong> of ${{.Goal}} goal</p>{{end}}
  {{if .ShowProgressBar}}<div class="donate-block-progress"><div class="donate-block-progress-fill" style="width: {{.Percent}}%"></div></div>{{end}}
  {{if .Winner}}<p class="donate-block-winner">Congratulations to <strong>{{.Winner.Donor}}</strong>, our giveaway winner!{{if .Winner.DrawnAt}} <span class="donate-block-winner-date">(Drawn {{.Winner.DrawnAt}})</span>{{end}}</p>{{end}}
</div>
{{end}}

{{define "donate_button"}}
<div class="donate-block donate-block-donate-button">
  <a class="donate-block-donate-cta" href="{{.DonateURL}}">{{.Label}}</a>
</div>
{{end}}

{{define "text"}}
<div class="donate-block donate-block-text donate-block-text-{{.Align}}">{{.Content}}</div>
{{end}}

{{define "media_gallery"}}
<div class="donate-block donate-block-media-gallery" style="--media-cols: {{.Columns}}">
  {{if .Error}}<p class="donation-error">{{.Error}}</p>
  {{else if not .Items}}<p class="donate-block-media-empty">No media yet.</p>
  {{else}}<div class="donate-block-media-grid">
    {{range .Items}}<div class="donate-block-media-item"><img src="{{.URL}}" alt=""></div>{{end}}
  </div>{{end}}
</div>
{{end}}

{{define "embed"}}
<div class="donate-block donate-block-embed">
  {{if .URL}}<iframe src="{{.URL}}" title="Embed" width="100%" height="{{.Height}}" frameborder="0" allowfullscreen></iframe>
  {{else}}<p>No embed URL configured.</p>{{end}}
</div>
{{end}}

{{define "footer"}}
<div class="donate-block donate-block-footer"><p>{{.Text}}{{if and .Text .ShowOrgName}} &middot; {{end}}{{if .ShowOrgName}}Powered by Helping Hands{{end}}</p></div>
{{end}}

{{define "progress_tube"}}
<div class="donate-block donate-block-progress-tube">
  {{if .Label}}<p class="donate-block-progress-tube-label">{{.Label}}</p>{{end}}
  <div class="progress-tube"><div class="progress-tube-fill" style="height: {{.Percent}}%"></div></div>
  {{if .ShowPercent}}<p class="donate-block-progress-tube-percent">{{.Percent}}%</p>{{end}}
</div>
{{end}}

{{define "unknown"}}
<div class="donate-block donate-block-unknown">[Unknown block: {{.Type}}]</div>
{{end}}
`))

// safeCSSColor 背景色白名单：十六进制或简单颜色名，其余丢弃以免污染style属性
var safeCSSColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|rgba?\([0-9,.\s%]+\))$`)

func renderHero(b layout.Block, c *layout.Campaign) (template.HTML, error) {
	title := b.StringProp("title", "")
	if title == "" {
		title = c.Title
	}
	if title == "" {
		title = "Campaign"
	}
	var bg template.CSS
	if color := b.StringProp("background_color", ""); safeCSSColor.MatchString(color) {
		bg = template.CSS(color)
	}
	return execBlock("hero", map[string]any{
		"Title":           title,
		"Subtitle":        b.StringProp("subtitle", ""),
		"ImageURL":        b.StringProp("image_url", ""),
		"BackgroundColor": bg,
	})
}

type winnerView struct {
	Donor   string
	DrawnAt string
}

func renderCampaignInfo(b layout.Block, c *layout.Campaign) (template.HTML, error) {
	goal := c.Goal
	raised := c.TotalRaised
	percent := 0.0
	if goal > 0 {
		percent = raised / goal * 100
		if percent > 100 {
			percent = 100
		}
	}

	var winner *winnerView
	if b.BoolProp("show_winner", false) && c.LatestWinner != nil {
		view := &winnerView{Donor: c.LatestWinner.Donor}
		if t, err := time.Parse(time.RFC3339, c.LatestWinner.CreatedAt); err == nil {
			view.DrawnAt = t.Format("Jan 2, 2006")
		}
		winner = view
	}

	return execBlock("campaign_info", map[string]any{
		"ShowGoal":        b.BoolProp("show_goal", true),
		"ShowProgressBar": b.BoolProp("show_progress_bar", true) && goal > 0,
		"Raised":          formatAmount(raised),
		"Goal":            formatAmount(goal),
		"Percent":         fmt.Sprintf("%.1f", percent),
		"Winner":          winner,
	})
}

func renderDonateButton(b layout.Block, donateURL string) (template.HTML, error) {
	return execBlock("donate_button", map[string]any{
		"Label":     b.StringProp("label", "Donate"),
		"DonateURL": template.URL(donateURL),
	})
}

func renderText(b layout.Block) (template.HTML, error) {
	content := b.StringProp("content", "")
	// 与原有行为一致：实体转义后把换行变成<br>；CRLF内容先去掉\r
	escaped := template.HTMLEscapeString(content)
	escaped = strings.ReplaceAll(escaped, "\r", "")
	escaped = strings.ReplaceAll(escaped, "\n", "<br />")

	align := b.StringProp("align", "left")
	switch align {
	case "left", "center", "right":
	default:
		align = "left"
	}
	return execBlock("text", map[string]any{
		"Align":   align,
		"Content": template.HTML(escaped),
	})
}

func renderMediaGallery(b layout.Block, media []backend.MediaItem, fetchErr error) (template.HTML, error) {
	columns := int(b.NumberProp("columns", 2))
	if columns < 1 {
		columns = 1
	}
	if columns > 4 {
		columns = 4
	}

	errMsg := ""
	if fetchErr != nil {
		errMsg = fetchErr.Error()
	}

	items := make([]backend.MediaItem, 0, len(media))
	for _, item := range media {
		if item.URL != "" {
			items = append(items, item)
		}
	}

	return execBlock("media_gallery", map[string]any{
		"Columns": columns,
		"Items":   items,
		"Error":   errMsg,
	})
}

func renderEmbed(b layout.Block) (template.HTML, error) {
	height := int(b.NumberProp("height", 400))
	if height < 100 {
		height = 100
	}
	if height > 1000 {
		height = 1000
	}
	return execBlock("embed", map[string]any{
		"URL":    b.StringProp("url", ""),
		"Height": height,
	})
}

func renderFooter(b layout.Block) (template.HTML, error) {
	return execBlock("footer", map[string]any{
		"Text":        b.StringProp("text", ""),
		"ShowOrgName": b.BoolProp("show_org_name", false),
	})
}

func renderProgressTube(b layout.Block, c *layout.Campaign) (template.HTML, error) {
	percent := 0.0
	if c.Goal > 0 {
		percent = c.TotalRaised / c.Goal * 100
		if percent > 100 {
			percent = 100
		}
	}
	return execBlock("progress_tube", map[string]any{
		"Label":       b.StringProp("label", ""),
		"Percent":     fmt.Sprintf("%.1f", percent),
		"ShowPercent": b.BoolProp("show_percent", false),
	})
}

func renderUnknown(b layout.Block) (template.HTML, error) {
	return execBlock("unknown", map[string]any{"Type": string(b.Type)})
}

func execBlock(name string, data any) (template.HTML, error) {
	var buf strings.Builder
	if err := blockTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// formatAmount 千分位金额格式化（整数部分）
func formatAmount(amount float64) string {
	whole := fmt.Sprintf("%.0f", amount)
	if len(whole) <= 3 {
		return whole
	}
	var out strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		out.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if out.Len() > 0 {
			out.WriteString(",")
		}
		out.WriteString(whole[i : i+3])
	}
	return out.String()
}
